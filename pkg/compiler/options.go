package compiler

import (
	"github.com/vango-dev/jsxc/internal/builtins"
	"github.com/vango-dev/jsxc/internal/pass"
	"github.com/vango-dev/jsxc/pkg/diag"
)

// Mode selects the code generator.
type Mode string

const (
	// ModeDOM generates client code that clones templates.
	ModeDOM Mode = "dom"
	// ModeSSR generates server code that renders markup strings.
	ModeSSR Mode = "ssr"
)

// DefaultRuntime is the module generated code imports helpers from.
const DefaultRuntime = "solid-js/web"

// Options configures one compilation. Start from DefaultOptions: the zero
// value turns event delegation and conservative wrapping off.
type Options struct {
	// RuntimeModuleName is the import source of runtime helpers.
	RuntimeModuleName string `json:"runtimeModuleName,omitempty"`

	// GenerateMode is "dom" (default) or "ssr".
	GenerateMode Mode `json:"generateMode,omitempty"`

	// Hydratable makes client code claim server-rendered nodes and server
	// code emit hydration markers.
	Hydratable bool `json:"hydratable"`

	// DelegateEvents attaches common events through one document listener.
	DelegateEvents bool `json:"delegateEvents"`

	// WrapConditionals wraps every dynamic attribute in an effect. When off,
	// only expressions that may read reactive state are wrapped.
	WrapConditionals bool `json:"wrapConditionals"`

	// PassContextToCustomElements hands the reactive owner to custom
	// elements through their _$owner property.
	PassContextToCustomElements bool `json:"contextToCustomElements"`

	// BuiltInComponentNames replaces the recognised built-in components
	// when non-nil.
	BuiltInComponentNames []string `json:"builtIns,omitempty"`

	// DelegatedEvents adds event names to the default delegated set.
	DelegatedEvents []string `json:"delegatedEvents,omitempty"`

	// Filename is used in diagnostics and source maps.
	Filename string `json:"filename,omitempty"`

	// EmitSourceMap requests a revision 3 source map in the result.
	EmitSourceMap bool `json:"sourceMap"`

	// VerifyTemplates replays every slot path against the parsed skeleton.
	VerifyTemplates bool `json:"verifyTemplates"`
}

// DefaultOptions returns the documented defaults.
func DefaultOptions() Options {
	return Options{
		RuntimeModuleName: DefaultRuntime,
		GenerateMode:      ModeDOM,
		DelegateEvents:    true,
		WrapConditionals:  true,
	}
}

// DefaultBuiltIns returns the built-in component names recognised when
// BuiltInComponentNames is nil.
func DefaultBuiltIns() []string {
	return builtins.DefaultNames()
}

// Validate checks option values.
func (o Options) Validate() error {
	switch o.GenerateMode {
	case "", ModeDOM, ModeSSR:
	default:
		return diag.New("E122").WithDetailf("generateMode is %q; expected %q or %q", o.GenerateMode, ModeDOM, ModeSSR)
	}
	return nil
}

func (o Options) withDefaults() Options {
	if o.RuntimeModuleName == "" {
		o.RuntimeModuleName = DefaultRuntime
	}
	if o.GenerateMode == "" {
		o.GenerateMode = ModeDOM
	}
	return o
}

func (o Options) passConfig(filename, source string) pass.Config {
	mode := pass.ModeDOM
	if o.GenerateMode == ModeSSR {
		mode = pass.ModeSSR
	}
	if o.Filename != "" {
		filename = o.Filename
	}
	return pass.Config{
		Runtime:                     o.RuntimeModuleName,
		Mode:                        mode,
		Hydratable:                  o.Hydratable,
		DelegateEvents:              o.DelegateEvents,
		WrapConditionals:            o.WrapConditionals,
		PassContextToCustomElements: o.PassContextToCustomElements,
		VerifyTemplates:             o.VerifyTemplates,
		BuiltIns:                    o.BuiltInComponentNames,
		DelegatedEvents:             o.DelegatedEvents,
		Filename:                    filename,
		Source:                      source,
	}
}
