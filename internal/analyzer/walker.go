package analyzer

import (
	"strings"

	"github.com/kestrelcode/vbalint/internal/ast"
	"github.com/kestrelcode/vbalint/internal/symtab"
	"github.com/kestrelcode/vbalint/internal/token"
)

// analyzeBlock walks a flat node sequence - a procedure body or a With
// body - tracking the linear
// unreachable-code flag described by the statement/expression walker:
// set after an unconditional jump (GoTo, Exit Sub/Function/Property, a
// bare End), cleared at a label definition or a control-flow boundary
// marker (Else/ElseIf/Next/Loop/Wend/Case/End If|Select|With).
func (a *Analyzer) analyzeBlock(body []ast.Node, scope *symtab.Scope, file, procName string, withStack []string) {
	unreachable := false
	lastIfLine := -1

	for _, n := range body {
		switch node := n.(type) {
		case *ast.With:
			exprType := a.resolveExprType(node.ExprTokens, scope, file, withStack)
			a.analyzeBlock(node.Body, scope, file, procName, append(append([]string{}, withStack...), exprType))

		case *ast.Statement:
			if len(node.Tokens) == 0 {
				continue
			}
			first := node.Tokens[0]
			if first.Kind == token.Identifier && strings.EqualFold(first.Value, "If") {
				lastIfLine = node.Line()
			}

			boundary := isBoundaryClear(node) || isLabelDef(node)
			if unreachable {
				if boundary {
					unreachable = false
				} else {
					a.diagnostics.AddWarning(file, node.Line(), "unreachable code")
				}
			}

			a.analyzeStatement(node, scope, file, withStack)

			if isUnconditionalJump(node) {
				if node.Line() != lastIfLine {
					unreachable = true
				}
			} else if boundary {
				unreachable = false
			}
		}
	}
}

func isLabelDef(s *ast.Statement) bool {
	return len(s.Tokens) == 2 && s.Tokens[0].Kind == token.Identifier && s.Tokens[1].Is(":")
}

func isUnconditionalJump(s *ast.Statement) bool {
	toks := s.Tokens
	if len(toks) == 0 {
		return false
	}
	first := toks[0]
	if first.Kind != token.Identifier {
		return false
	}
	switch strings.ToLower(first.Value) {
	case "goto":
		return true
	case "exit":
		return len(toks) >= 2 && toks[1].Kind == token.Identifier &&
			(strings.EqualFold(toks[1].Value, "sub") || strings.EqualFold(toks[1].Value, "function") || strings.EqualFold(toks[1].Value, "property"))
	case "end":
		return len(toks) == 1
	}
	return false
}

func isBoundaryClear(s *ast.Statement) bool {
	toks := s.Tokens
	if len(toks) == 0 || toks[0].Kind != token.Identifier {
		return false
	}
	switch strings.ToLower(toks[0].Value) {
	case "else", "elseif", "next", "loop", "wend", "case":
		return true
	case "end":
		if len(toks) >= 2 && toks[1].Kind == token.Identifier {
			switch strings.ToLower(toks[1].Value) {
			case "if", "select", "with":
				return true
			}
		}
		return false
	}
	return false
}
