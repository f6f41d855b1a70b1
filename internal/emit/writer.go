package emit

import (
	"fmt"
	"strings"
)

// Writer accumulates indented JavaScript output and tracks the generated
// position so callers can record source-map mappings as they write.
type Writer struct {
	sb     *strings.Builder
	indent int
	line   int // 0-based generated line
	col    int // 0-based generated column
	maps   *SourceMap
}

// NewWriter returns a writer. maps may be nil when no source map is wanted.
func NewWriter(maps *SourceMap) *Writer {
	return &Writer{sb: &strings.Builder{}, maps: maps}
}

// Line writes an indented, formatted line followed by a newline.
func (w *Writer) Line(format string, args ...any) {
	w.Raw(strings.Repeat("  ", w.indent))
	w.Raw(fmt.Sprintf(format, args...))
	w.Raw("\n")
}

// Raw writes text without indentation.
func (w *Writer) Raw(s string) {
	w.sb.WriteString(s)
	if i := strings.LastIndexByte(s, '\n'); i >= 0 {
		w.line += strings.Count(s, "\n")
		w.col = len(s) - i - 1
	} else {
		w.col += len(s)
	}
}

// Indent increases the indentation level.
func (w *Writer) Indent() { w.indent++ }

// Dedent decreases the indentation level.
func (w *Writer) Dedent() {
	if w.indent > 0 {
		w.indent--
	}
}

// Pos returns the 0-based generated line and column of the next byte.
func (w *Writer) Pos() (line, col int) { return w.line, w.col }

// Map records that the next generated byte comes from the given 1-based
// source line and 0-based column.
func (w *Writer) Map(srcLine, srcCol int) {
	if w.maps == nil || srcLine < 1 {
		return
	}
	w.maps.Add(w.line, w.col, srcLine-1, srcCol)
}

// String returns the accumulated output.
func (w *Writer) String() string { return w.sb.String() }

// Capture runs fn against a temporary buffer and returns what it wrote.
// Mappings are not recorded while capturing.
func (w *Writer) Capture(fn func()) string {
	saved, savedLine, savedCol, savedMaps := w.sb, w.line, w.col, w.maps
	w.sb, w.maps = &strings.Builder{}, nil
	fn()
	out := w.sb.String()
	w.sb, w.line, w.col, w.maps = saved, savedLine, savedCol, savedMaps
	return out
}
