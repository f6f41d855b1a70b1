// Package builtins maps the runtime's control-flow component names to the
// rules that shape their calls.
package builtins

// Kind identifies the control-flow construct a built-in implements.
type Kind int

const (
	Conditional Kind = iota
	KeyedList
	IndexedList
	MultiBranch
	Branch
	Boundary
	Portal
	DynamicTag
)

var kindNames = [...]string{
	Conditional: "conditional",
	KeyedList:   "keyed-list",
	IndexedList: "indexed-list",
	MultiBranch: "multi-branch",
	Branch:      "branch",
	Boundary:    "boundary",
	Portal:      "portal",
	DynamicTag:  "dynamic",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// Children describes how a built-in receives its children.
type Children int

const (
	// Getter passes children through a lazy accessor property, like any
	// component.
	Getter Children = iota
	// Thunk passes children as a zero-argument callback the built-in
	// invokes when the branch is taken.
	Thunk
	// Callback requires children to be a function literal that the
	// built-in calls per item.
	Callback
)

// Rule is the shaping rule for one built-in.
type Rule struct {
	Name     string
	Kind     Kind
	Children Children
	// Params documents the callback parameters for Callback children.
	Params []string
}

var rules = map[string]Rule{
	"Show":          {Name: "Show", Kind: Conditional, Children: Thunk},
	"For":           {Name: "For", Kind: KeyedList, Children: Callback, Params: []string{"item", "index"}},
	"Index":         {Name: "Index", Kind: IndexedList, Children: Callback, Params: []string{"item", "index"}},
	"Switch":        {Name: "Switch", Kind: MultiBranch, Children: Getter},
	"Match":         {Name: "Match", Kind: Branch, Children: Thunk},
	"Suspense":      {Name: "Suspense", Kind: Boundary, Children: Getter},
	"SuspenseList":  {Name: "SuspenseList", Kind: Boundary, Children: Getter},
	"ErrorBoundary": {Name: "ErrorBoundary", Kind: Boundary, Children: Getter},
	"Portal":        {Name: "Portal", Kind: Portal, Children: Getter},
	"Dynamic":       {Name: "Dynamic", Kind: DynamicTag, Children: Getter},
}

// DefaultNames returns the names recognised when no override is configured.
func DefaultNames() []string {
	return []string{"Show", "For", "Index", "Switch", "Match", "Suspense", "SuspenseList", "ErrorBoundary", "Portal", "Dynamic"}
}

// Resolver answers which component names are built-ins for one compilation.
type Resolver struct {
	names map[string]bool
}

// NewResolver returns a resolver for names, or for DefaultNames when names
// is nil.
func NewResolver(names []string) *Resolver {
	if names == nil {
		names = DefaultNames()
	}
	r := &Resolver{names: make(map[string]bool, len(names))}
	for _, n := range names {
		r.names[n] = true
	}
	return r
}

// Lookup returns the rule for name. known is false when name is not a
// recognised built-in; configured reports whether name was in the set at
// all, so callers can flag configured names that have no rule.
func (r *Resolver) Lookup(name string) (rule Rule, known, configured bool) {
	if !r.names[name] {
		return Rule{}, false, false
	}
	rule, ok := rules[name]
	return rule, ok, true
}
