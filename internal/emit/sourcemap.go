package emit

import (
	"encoding/json"
	"sort"
	"strings"
)

// SourceMap collects mappings for a single-source revision 3 source map.
type SourceMap struct {
	file    string
	source  string
	content string
	entries []mapping
}

type mapping struct {
	genLine, genCol int
	srcLine, srcCol int
}

// NewSourceMap returns an empty map from file (the generated output) to
// source (the original module), embedding content when non-empty.
func NewSourceMap(file, source, content string) *SourceMap {
	return &SourceMap{file: file, source: source, content: content}
}

// Add records that generated (line, col) comes from source (line, col).
// All positions are 0-based.
func (m *SourceMap) Add(genLine, genCol, srcLine, srcCol int) {
	m.entries = append(m.entries, mapping{genLine, genCol, srcLine, srcCol})
}

// Shift moves every recorded generated position down by n lines.
func (m *SourceMap) Shift(n int) {
	for i := range m.entries {
		m.entries[i].genLine += n
	}
}

// Len returns the number of recorded mappings.
func (m *SourceMap) Len() int { return len(m.entries) }

type sourceMapJSON struct {
	Version        int      `json:"version"`
	File           string   `json:"file,omitempty"`
	Sources        []string `json:"sources"`
	SourcesContent []string `json:"sourcesContent,omitempty"`
	Names          []string `json:"names"`
	Mappings       string   `json:"mappings"`
}

// JSON renders the map.
func (m *SourceMap) JSON() (string, error) {
	out := sourceMapJSON{
		Version:  3,
		File:     m.file,
		Sources:  []string{m.source},
		Names:    []string{},
		Mappings: m.mappings(),
	}
	if m.content != "" {
		out.SourcesContent = []string{m.content}
	}
	data, err := json.Marshal(out)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func (m *SourceMap) mappings() string {
	entries := append([]mapping(nil), m.entries...)
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].genLine != entries[j].genLine {
			return entries[i].genLine < entries[j].genLine
		}
		return entries[i].genCol < entries[j].genCol
	})

	var b strings.Builder
	line, prevCol, prevSrcLine, prevSrcCol := 0, 0, 0, 0
	first := true
	for _, e := range entries {
		for line < e.genLine {
			b.WriteByte(';')
			line++
			prevCol = 0
			first = true
		}
		if !first {
			b.WriteByte(',')
		}
		first = false
		writeVLQ(&b, e.genCol-prevCol)
		writeVLQ(&b, 0) // single source
		writeVLQ(&b, e.srcLine-prevSrcLine)
		writeVLQ(&b, e.srcCol-prevSrcCol)
		prevCol, prevSrcLine, prevSrcCol = e.genCol, e.srcLine, e.srcCol
	}
	return b.String()
}

const base64Chars = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789+/"

func writeVLQ(b *strings.Builder, v int) {
	u := v << 1
	if v < 0 {
		u = (-v << 1) | 1
	}
	for {
		digit := u & 31
		u >>= 5
		if u > 0 {
			digit |= 32
		}
		b.WriteByte(base64Chars[digit])
		if u == 0 {
			return
		}
	}
}
