package preprocessor

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kestrelcode/vbalint/internal/lexer"
	"github.com/kestrelcode/vbalint/internal/token"
)

func identValues(toks []token.Token) []string {
	var out []string
	for _, tok := range toks {
		if tok.Kind == token.Newline || tok.Kind == token.EOF {
			continue
		}
		out = append(out, tok.Value)
	}
	return out
}

func TestProcess(t *testing.T) {
	testCases := []struct {
		description string
		code        string
		defines     map[string]Value
		expect      []string
	}{
		{
			description: "true branch kept, else branch dropped",
			code:        "#If True Then\nKeepMe\n#Else\nDropMe\n#End If",
			defines:     nil,
			expect:      []string{"KeepMe"},
		},
		{
			description: "false branch dropped, else branch kept",
			code:        "#If False Then\nDropMe\n#Else\nKeepMe\n#End If",
			defines:     nil,
			expect:      []string{"KeepMe"},
		},
		{
			description: "elseif selects the first matching branch",
			code:        "#If False Then\nA\n#ElseIf True Then\nB\n#ElseIf True Then\nC\n#Else\nD\n#End If",
			defines:     nil,
			expect:      []string{"B"},
		},
		{
			description: "undefined identifier evaluates to false",
			code:        "#If Unset Then\nDropMe\n#End If\nKeepMe",
			defines:     nil,
			expect:      []string{"KeepMe"},
		},
		{
			description: "defined constant drives the branch",
			code:        "#If DEBUGMODE Then\nKeepMe\n#End If",
			defines:     map[string]Value{"DEBUGMODE": BoolValue(true)},
			expect:      []string{"KeepMe"},
		},
		{
			description: "Const registers a new definition used by a later If",
			code:        "#Const FLAG = True\n#If FLAG Then\nKeepMe\n#End If",
			defines:     nil,
			expect:      []string{"KeepMe"},
		},
		{
			description: "not/and/or compose",
			code:        "#If Not False And (True Or False) Then\nKeepMe\n#End If",
			defines:     nil,
			expect:      []string{"KeepMe"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.description, func(t *testing.T) {
			toks := lexer.New(tc.code).Tokenize()
			defines := tc.defines
			got := New(toks, defines).Process()
			assert.Equal(t, tc.expect, identValues(got), tc.description)
		})
	}
}
