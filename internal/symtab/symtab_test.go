package symtab

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveWalksParentChain(t *testing.T) {
	global := New("Global", nil, ScopeGlobal)
	global.Define("Debug", "Debug", KindClass)

	module := New("Module1", global, ScopeModule)
	module.Define("Counter", "Long", KindVariable)

	proc := New("DoWork", module, ScopeProcedure)
	proc.Define("x", "Integer", KindVariable)

	testCases := []struct {
		description string
		name        string
		expectKind  Kind
		expectFound bool
	}{
		{"local symbol resolves directly", "x", KindVariable, true},
		{"module symbol resolves through parent", "Counter", KindVariable, true},
		{"global symbol resolves through full chain", "Debug", KindClass, true},
		{"case-insensitive lookup", "COUNTER", KindVariable, true},
		{"undefined name does not resolve", "Nope", "", false},
	}

	for _, tc := range testCases {
		t.Run(tc.description, func(t *testing.T) {
			sym, ok := proc.Resolve(tc.name)
			assert.Equal(t, tc.expectFound, ok)
			if tc.expectFound {
				assert.Equal(t, tc.expectKind, sym.Kind)
			}
		})
	}
}

func TestHasOnlyChecksLocalScope(t *testing.T) {
	global := New("Global", nil, ScopeGlobal)
	global.Define("Shared", "Variant", KindVariable)
	module := New("Module1", global, ScopeModule)

	assert.False(t, module.Has("Shared"))
	_, ok := module.Resolve("Shared")
	assert.True(t, ok)
}

func TestInScopeType(t *testing.T) {
	global := New("Global", nil, ScopeGlobal)
	form := New("Form1", global, ScopeForm)
	proc := New("Click", form, ScopeProcedure)

	assert.True(t, proc.InScopeType(ScopeForm))
	assert.False(t, proc.InScopeType(ScopeClass))
}
