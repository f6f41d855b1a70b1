package builtins

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLookupDefaults(t *testing.T) {
	r := NewResolver(nil)

	tests := []struct {
		name     string
		kind     Kind
		children Children
	}{
		{"Show", Conditional, Thunk},
		{"For", KeyedList, Callback},
		{"Index", IndexedList, Callback},
		{"Switch", MultiBranch, Getter},
		{"Match", Branch, Thunk},
		{"Suspense", Boundary, Getter},
		{"ErrorBoundary", Boundary, Getter},
		{"Portal", Portal, Getter},
		{"Dynamic", DynamicTag, Getter},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rule, known, configured := r.Lookup(tt.name)
			assert.True(t, known)
			assert.True(t, configured)
			assert.Equal(t, tt.kind, rule.Kind)
			assert.Equal(t, tt.children, rule.Children)
		})
	}

	_, known, configured := r.Lookup("Button")
	assert.False(t, known)
	assert.False(t, configured)
}

func TestLookupOverride(t *testing.T) {
	r := NewResolver([]string{"Show", "Repeat"})

	_, known, _ := r.Lookup("For")
	assert.False(t, known, "names outside the override are regular components")

	rule, known, _ := r.Lookup("Show")
	assert.True(t, known)
	assert.Equal(t, "Show", rule.Name)

	_, known, configured := r.Lookup("Repeat")
	assert.False(t, known)
	assert.True(t, configured)

	empty := NewResolver([]string{})
	_, known, _ = empty.Lookup("Show")
	assert.False(t, known)
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "keyed-list", KeyedList.String())
	assert.Equal(t, "unknown", Kind(99).String())
}
