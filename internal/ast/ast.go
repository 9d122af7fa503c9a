// Package ast defines the coarse syntax tree produced by the parser.
// Only With survives as a structural node: its body needs to be nested
// so dot-chains inside it resolve against an implicit receiver. If, For,
// Do, Select, and While are parsed recursively (so the parser tracks
// their matching end markers correctly) but their header, body, and
// boundary keywords (Else/ElseIf/Next/Loop/Wend/Case/End If/End Select)
// are spliced back into the flat Statement sequence of their enclosing
// block - generalizing parser.py's WithNode/IfNode/StatementNode family
// so the analyzer's linear unreachable-code walk sees every statement,
// including the ones the original's IfNode bodies hid from analysis.
package ast

import "github.com/kestrelcode/vbalint/internal/token"

// Node is any member of a procedure or With body.
type Node interface {
	node()
}

// Variable is a declared name: a Dim/Private/Public/Const/Global variable,
// a UDT or Enum member, or a procedure argument.
type Variable struct {
	Name          string
	TypeName      string
	Scope         string // Dim, Private, Public, Global, Local, Friend
	IsOptional    bool
	IsParamArray  bool
	Mechanism     string // ByRef, ByVal, ParamArray
	DeclaredLine  int
}

// Statement is an unparsed run of tokens between two structural boundaries
// (newline, colon, or block keyword). The analyzer walks its tokens
// directly rather than through a sub-grammar.
type Statement struct {
	Tokens []token.Token
}

func (*Statement) node() {}

// Line returns the statement's originating source line, or 0 if empty.
func (s *Statement) Line() int {
	if len(s.Tokens) == 0 {
		return 0
	}
	return s.Tokens[0].Line
}

// With represents a `With <expr> ... End With` block; its body is
// recursively parsed so that dot-chains inside it can resolve against
// expr's implicit receiver.
type With struct {
	ExprTokens []token.Token
	Body       []Node
	Line       int
}

func (*With) node() {}

// Procedure is a Sub, Function, Property Get/Let/Set, Event, or Declare.
type Procedure struct {
	Name       string
	ProcType   string // Sub, Function, Property Get, Property Let, Property Set, Event
	ReturnType string
	Scope      string
	IsDeclare  bool
	LibName    string
	AliasName  string
	Args       []*Variable
	Locals     []*Variable
	Body       []Node
	Line       int
}

// UDT is a `Type ... End Type` user-defined record, or (reused, as the
// original parser does) the synthetic type standing in for an Enum.
type UDT struct {
	Name    string
	Scope   string
	Members []*Variable
	IsEnum  bool
	Line    int
}

// Module is the root of one parsed source file: a standard Module, a
// Class, or a Form.
type Module struct {
	FileName   string
	Name       string
	ModuleType string // Module, Class, Form
	Attributes map[string]string
	Variables  []*Variable
	Procedures []*Procedure
	Types      map[string]*UDT
}

// NewModule returns an empty Module ready for the parser to populate.
func NewModule(fileName, moduleType string) *Module {
	return &Module{
		FileName:   fileName,
		Name:       "Unknown",
		ModuleType: moduleType,
		Attributes: map[string]string{},
		Types:      map[string]*UDT{},
	}
}
