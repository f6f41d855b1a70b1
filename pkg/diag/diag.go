package diag

import (
	"fmt"
	"strings"
)

// Category represents the area of the toolchain that produced an error.
type Category string

const (
	CategoryCompile Category = "compile"
	CategoryConfig  Category = "config"
	CategoryCLI     Category = "cli"
	CategoryBuild   Category = "build"
)

// Severity classifies how a compilation reacts to an error.
type Severity int

const (
	// Recoverable issues are reported and a placeholder is emitted.
	Recoverable Severity = iota
	// Structural issues are reported and compilation continues best-effort.
	Structural
	// Fatal issues abort the compilation; no code is returned.
	Fatal
)

func (s Severity) String() string {
	switch s {
	case Recoverable:
		return "recoverable"
	case Structural:
		return "structural"
	case Fatal:
		return "fatal"
	}
	return fmt.Sprintf("severity(%d)", int(s))
}

// MarshalText implements encoding.TextMarshaler.
func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Severity) UnmarshalText(b []byte) error {
	switch string(b) {
	case "recoverable":
		*s = Recoverable
	case "structural":
		*s = Structural
	case "fatal":
		*s = Fatal
	default:
		return fmt.Errorf("diag: unknown severity %q", b)
	}
	return nil
}

// Location represents a position in a source file.
type Location struct {
	File   string `json:"file" msgpack:"file"`
	Line   int    `json:"line" msgpack:"line"`
	Column int    `json:"column" msgpack:"column"`
}

// String returns the location as file:line:column.
func (l *Location) String() string {
	if l == nil {
		return ""
	}
	if l.Column > 0 {
		return fmt.Sprintf("%s:%d:%d", l.File, l.Line, l.Column)
	}
	return fmt.Sprintf("%s:%d", l.File, l.Line)
}

// Error is a coded diagnostic with an optional source location.
// Compilation reports non-fatal ones in its result and returns fatal ones
// as its error.
type Error struct {
	Code       string    `json:"code,omitempty" msgpack:"code"`
	Category   Category  `json:"category" msgpack:"category"`
	Severity   Severity  `json:"severity" msgpack:"severity"`
	Message    string    `json:"message" msgpack:"message"`
	Detail     string    `json:"detail,omitempty" msgpack:"detail"`
	Location   *Location `json:"location,omitempty" msgpack:"location"`
	Suggestion string    `json:"suggestion,omitempty" msgpack:"suggestion"`
	DocURL     string    `json:"docUrl,omitempty" msgpack:"docUrl"`

	// Context holds source lines around Location, starting at ContextStart.
	Context      []string `json:"-" msgpack:"-"`
	ContextStart int      `json:"-" msgpack:"-"`

	Wrapped error `json:"-" msgpack:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return e.Message
}

// Unwrap returns the wrapped error for errors.Is/As support.
func (e *Error) Unwrap() error {
	return e.Wrapped
}

// Fatal reports whether the error aborts compilation.
func (e *Error) Fatal() bool {
	return e.Severity == Fatal
}

// WithLocation adds a source position to the error.
func (e *Error) WithLocation(file string, line, column int) *Error {
	e.Location = &Location{File: file, Line: line, Column: column}
	return e
}

// WithSource fills Context with the lines surrounding the error's location
// taken from the in-memory source text.
func (e *Error) WithSource(source string) *Error {
	if e.Location == nil || source == "" {
		return e
	}
	e.Context, e.ContextStart = contextLines(source, e.Location.Line, 5)
	return e
}

// WithDetail replaces the detailed explanation.
func (e *Error) WithDetail(d string) *Error {
	e.Detail = d
	return e
}

// WithDetailf replaces the detailed explanation with a formatted string.
func (e *Error) WithDetailf(format string, args ...any) *Error {
	e.Detail = fmt.Sprintf(format, args...)
	return e
}

// WithSuggestion adds a fix suggestion.
func (e *Error) WithSuggestion(s string) *Error {
	e.Suggestion = s
	return e
}

// WithContext replaces the context lines.
func (e *Error) WithContext(lines []string) *Error {
	e.Context = lines
	return e
}

// Wrap wraps another error.
func (e *Error) Wrap(err error) *Error {
	e.Wrapped = err
	return e
}

func contextLines(source string, target, size int) ([]string, int) {
	lines := strings.Split(source, "\n")
	start := target - size/2
	end := target + size/2
	if start < 1 {
		start = 1
	}
	if end > len(lines) {
		end = len(lines)
	}
	if target < 1 || start > end {
		return nil, 0
	}
	return lines[start-1 : end], start
}

// New creates an Error from a registered code.
func New(code string) *Error {
	tmpl, ok := registry[code]
	if !ok {
		return &Error{
			Code:     code,
			Severity: Fatal,
			Message:  "Unknown error",
		}
	}
	return &Error{
		Code:     code,
		Category: tmpl.Category,
		Severity: tmpl.Severity,
		Message:  tmpl.Message,
		Detail:   tmpl.Detail,
		DocURL:   tmpl.DocURL,
	}
}

// Newf creates an uncoded Error with a formatted message.
func Newf(category Category, format string, args ...any) *Error {
	return &Error{
		Category: category,
		Severity: Fatal,
		Message:  fmt.Sprintf(format, args...),
	}
}

// FromError wraps err in an Error with the given code unless it already is one.
func FromError(err error, code string) *Error {
	if err == nil {
		return nil
	}
	if de, ok := err.(*Error); ok {
		return de
	}
	return New(code).Wrap(err)
}
