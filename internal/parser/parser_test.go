package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kestrelcode/vbalint/internal/ast"
	"github.com/kestrelcode/vbalint/internal/lexer"
)

func parseModule(t *testing.T, code string) *ast.Module {
	t.Helper()
	toks := lexer.New(code).Tokenize()
	p := New(toks, "Module1.bas")
	module := p.ParseModule("Module")
	assert.Empty(t, p.Errors, "unexpected syntax errors: %v", p.Errors)
	return module
}

func TestParseModuleDeclarations(t *testing.T) {
	testCases := []struct {
		description string
		code        string
		assertOn    func(t *testing.T, m *ast.Module)
	}{
		{
			description: "Attribute VB_Name sets module name",
			code:        "Attribute VB_Name = \"MyModule\"\n",
			assertOn: func(t *testing.T, m *ast.Module) {
				assert.Equal(t, "MyModule", m.Name)
			},
		},
		{
			description: "Public variable declaration",
			code:        "Public Counter As Long\n",
			assertOn: func(t *testing.T, m *ast.Module) {
				assert.Len(t, m.Variables, 1)
				assert.Equal(t, "Counter", m.Variables[0].Name)
				assert.Equal(t, "Long", m.Variables[0].TypeName)
				assert.Equal(t, "Public", m.Variables[0].Scope)
			},
		},
		{
			description: "multiple variables on one Dim line",
			code:        "Dim A As Integer, B As String\n",
			assertOn: func(t *testing.T, m *ast.Module) {
				assert.Len(t, m.Variables, 2)
				assert.Equal(t, "A", m.Variables[0].Name)
				assert.Equal(t, "B", m.Variables[1].Name)
			},
		},
		{
			description: "Sub with args and a body statement",
			code:        "Sub DoWork(ByVal x As Integer, Optional y As Integer)\nDim z As Integer\nz = x + y\nEnd Sub\n",
			assertOn: func(t *testing.T, m *ast.Module) {
				assert.Len(t, m.Procedures, 1)
				proc := m.Procedures[0]
				assert.Equal(t, "DoWork", proc.Name)
				assert.Equal(t, "Sub", proc.ProcType)
				assert.Len(t, proc.Args, 2)
				assert.Equal(t, "ByVal", proc.Args[0].Mechanism)
				assert.True(t, proc.Args[1].IsOptional)
				assert.Len(t, proc.Body, 2)
			},
		},
		{
			description: "Type with members",
			code:        "Public Type Point\nX As Long\nY As Long\nEnd Type\n",
			assertOn: func(t *testing.T, m *ast.Module) {
				udt, ok := m.Types["Point"]
				assert.True(t, ok)
				assert.Len(t, udt.Members, 2)
			},
		},
		{
			description: "Enum registers type and Long members",
			code:        "Public Enum Color\nRed\nGreen\nBlue\nEnd Enum\n",
			assertOn: func(t *testing.T, m *ast.Module) {
				udt, ok := m.Types["Color"]
				assert.True(t, ok)
				assert.True(t, udt.IsEnum)
				assert.Len(t, udt.Members, 3)
				assert.Len(t, m.Variables, 3)
			},
		},
		{
			description: "block If/ElseIf/Else flattens into marker + body statements",
			code:        "Sub S()\nIf x > 1 Then\nA = 1\nElseIf x > 0 Then\nA = 2\nElse\nA = 3\nEnd If\nEnd Sub\n",
			assertOn: func(t *testing.T, m *ast.Module) {
				proc := m.Procedures[0]
				var firstWords []string
				for _, n := range proc.Body {
					s, ok := n.(*ast.Statement)
					assert.True(t, ok)
					assert.NotEmpty(t, s.Tokens)
					firstWords = append(firstWords, s.Tokens[0].Value)
				}
				assert.Equal(t, []string{"If", "A", "ElseIf", "A", "Else", "A", "End"}, firstWords)
			},
		},
		{
			description: "With block body parses recursively",
			code:        "Sub S()\nWith Foo\n.Bar = 1\nEnd With\nEnd Sub\n",
			assertOn: func(t *testing.T, m *ast.Module) {
				proc := m.Procedures[0]
				withNode, ok := proc.Body[0].(*ast.With)
				assert.True(t, ok)
				assert.Len(t, withNode.Body, 1)
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.description, func(t *testing.T) {
			tc.assertOn(t, parseModule(t, tc.code))
		})
	}
}

func TestParseFormControls(t *testing.T) {
	content := "VERSION 5.00\nBegin VB.Form Form1\n   Begin VB.CommandButton Command1\n   End\nEnd\n"
	controls := ParseFormControls(content)
	assert.Len(t, controls, 2)
	assert.Equal(t, "Form1", controls[0].Name)
	assert.Equal(t, "Form", controls[0].TypeName)
	assert.Equal(t, "Command1", controls[1].Name)
	assert.Equal(t, "CommandButton", controls[1].TypeName)
}
