// Package pass holds the state owned by a single compilation call: the
// options snapshot, the runtime helpers referenced so far, delegated event
// registrations, identifier counters and collected diagnostics.
package pass

import (
	"fmt"
	"sort"

	"github.com/vango-dev/jsxc/pkg/diag"
	"github.com/vango-dev/jsxc/pkg/jsx"
)

// Mode selects the generator.
type Mode string

const (
	ModeDOM Mode = "dom"
	ModeSSR Mode = "ssr"
)

// Config is the immutable option snapshot for one call.
type Config struct {
	Runtime                     string
	Mode                        Mode
	Hydratable                  bool
	DelegateEvents              bool
	WrapConditionals            bool
	PassContextToCustomElements bool
	VerifyTemplates             bool
	// BuiltIns replaces the recognised built-in names when non-nil.
	BuiltIns        []string
	DelegatedEvents []string
	Filename        string
	Source          string
}

// Pass is the mutable state of one compilation call. It is never shared
// between calls.
type Pass struct {
	Config

	helpers  map[string]bool
	events   []string
	eventSet map[string]bool
	counters map[string]int
	diags    []*diag.Error
}

// New starts a pass.
func New(cfg Config) *Pass {
	return &Pass{
		Config:   cfg,
		helpers:  make(map[string]bool),
		eventSet: make(map[string]bool),
		counters: make(map[string]int),
	}
}

// Use records that generated code references a runtime helper and returns
// its name, so call sites read p.Use(HelperInsert) + "(...)".
func (p *Pass) Use(helper string) string {
	p.helpers[helper] = true
	return helper
}

// Helpers returns the referenced helpers sorted by name.
func (p *Pass) Helpers() []string {
	out := make([]string, 0, len(p.helpers))
	for h := range p.helpers {
		out = append(out, h)
	}
	sort.Strings(out)
	return out
}

// Delegate registers an event for module-level delegation.
func (p *Pass) Delegate(event string) {
	if p.eventSet[event] {
		return
	}
	p.eventSet[event] = true
	p.events = append(p.events, event)
}

// Delegated returns the events registered through Delegate, in first-use
// order. It is distinct from Config.DelegatedEvents, the extra event names
// the caller asked to delegate.
func (p *Pass) Delegated() []string {
	return p.events
}

// UID returns the next identifier for prefix: _el$1, _el$2, ...
func (p *Pass) UID(prefix string) string {
	p.counters[prefix]++
	return fmt.Sprintf("%s%d", prefix, p.counters[prefix])
}

// Report records a non-fatal diagnostic located at span.
func (p *Pass) Report(code string, at jsx.Span, detail string) *diag.Error {
	err := p.locate(diag.New(code), at)
	if detail != "" {
		err.Detail = detail
	}
	p.diags = append(p.diags, err)
	return err
}

// Fatal builds a fatal diagnostic located at span. It is returned to the
// caller rather than recorded.
func (p *Pass) Fatal(code string, at jsx.Span, detail string) *diag.Error {
	err := p.locate(diag.New(code), at)
	if detail != "" {
		err.Detail = detail
	}
	return err
}

func (p *Pass) locate(err *diag.Error, at jsx.Span) *diag.Error {
	if at.IsZero() {
		if p.Filename != "" {
			err.Location = &diag.Location{File: p.Filename}
		}
		return err
	}
	return err.WithLocation(p.Filename, at.Start.Line, at.Start.Column+1).WithSource(p.Source)
}

// Diagnostics returns the recorded diagnostics in report order.
func (p *Pass) Diagnostics() []*diag.Error {
	return p.diags
}

// Position formats a span as file:line:col for generated comments.
func (p *Pass) Position(at jsx.Span) string {
	return fmt.Sprintf("%s:%d:%d", p.Filename, at.Start.Line, at.Start.Column+1)
}
