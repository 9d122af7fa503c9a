// Package symtab implements the case-insensitive, parent-chained scope
// model the analyzer resolves identifiers against. It is a structural
// port of original_source/src/analyzer.py's SymbolTable, generalized
// into its own package the way viant's linage analyzer separates its
// Scope model from the analyzer that drives it.
package symtab

import "strings"

// Kind tags what a Symbol denotes.
type Kind string

const (
	KindVariable  Kind = "Variable"
	KindProcedure Kind = "Procedure"
	KindType      Kind = "Type"
	KindClass     Kind = "Class"
	KindLibrary   Kind = "Library"
	KindModule    Kind = "Module"
	KindEnumItem  Kind = "EnumItem"
	KindUnknown   Kind = "Unknown"
)

// ScopeType tags what a Scope represents in the module/procedure nesting.
type ScopeType string

const (
	ScopeGlobal    ScopeType = "Global"
	ScopeModule    ScopeType = "Module"
	ScopeClass     ScopeType = "Class"
	ScopeForm      ScopeType = "Form"
	ScopeProcedure ScopeType = "Procedure"
	ScopeBlock     ScopeType = "Block"
)

// Symbol is one resolved entry in a Scope: a declared or predeclared
// identifier's type and kind.
type Symbol struct {
	Name string
	Type string
	Kind Kind
}

// Scope is one link in the Global -> Module -> Procedure (-> Block)
// chain. Lookups walk Resolve up through Parent when a name is not
// locally defined; Define always inserts case-insensitively, and the
// lower-cased key is authoritative.
type Scope struct {
	Name      string
	Parent    *Scope
	ScopeType ScopeType
	symbols   map[string]Symbol
}

// New returns an empty Scope with the given name and type, optionally
// chained to parent (nil for the root Global scope).
func New(name string, parent *Scope, scopeType ScopeType) *Scope {
	return &Scope{
		Name:      name,
		Parent:    parent,
		ScopeType: scopeType,
		symbols:   map[string]Symbol{},
	}
}

// Define inserts or overwrites a symbol in this scope, case-insensitively.
func (s *Scope) Define(name, typeName string, kind Kind) {
	s.symbols[strings.ToLower(name)] = Symbol{Name: name, Type: typeName, Kind: kind}
}

// Has reports whether name is defined directly in this scope (not its
// ancestors) - used by the analyzer's duplicate-declaration check.
func (s *Scope) Has(name string) bool {
	_, ok := s.symbols[strings.ToLower(name)]
	return ok
}

// Resolve looks up name in this scope, then its ancestors, returning the
// first match.
func (s *Scope) Resolve(name string) (Symbol, bool) {
	key := strings.ToLower(name)
	if sym, ok := s.symbols[key]; ok {
		return sym, true
	}
	if s.Parent != nil {
		return s.Parent.Resolve(name)
	}
	return Symbol{}, false
}

// InScopeType reports whether this scope or any ancestor has the given
// ScopeType - used for the implicit-Control heuristic, which only
// applies inside a Form.
func (s *Scope) InScopeType(t ScopeType) bool {
	for cur := s; cur != nil; cur = cur.Parent {
		if cur.ScopeType == t {
			return true
		}
	}
	return false
}
