package analyzer

import (
	"strings"

	"github.com/kestrelcode/vbalint/internal/symtab"
	"github.com/kestrelcode/vbalint/internal/token"
)

// processDim extracts the comma-separated Name [(dims)] [As [New] Type]
// [= expr] declarations off a Dim/Static/Const statement. Array
// dimensions give the declared type a "()" suffix. Each variable is
// registered into scope only after its initializer expression (if any)
// is analyzed, so a self-referencing initializer ("Dim x = x + 1")
// correctly reports x as undefined rather than resolving against the
// name it is itself declaring. A name already defined directly in scope
// is reported as a duplicate declaration and is not redefined.
func (a *Analyzer) processDim(toks []token.Token, scope *symtab.Scope, file string) {
	i := 1 // skip the Dim/Static/Const keyword itself
	n := len(toks)

	for i < n {
		if toks[i].Kind != token.Identifier || keywords[strings.ToLower(toks[i].Value)] {
			i++
			continue
		}

		name := toks[i].Value
		nameLine := toks[i].Line
		i++

		typeName := "Variant"
		isArray := false

		if i < n && toks[i].Is("(") {
			_, end := extractParenArgs(toks, i)
			i = end
			isArray = true
		}

		if i < n && toks[i].Kind == token.Identifier && strings.EqualFold(toks[i].Value, "As") {
			i++
			if i < n && toks[i].Kind == token.Identifier && strings.EqualFold(toks[i].Value, "New") {
				i++
			}
			var parts []string
			for i < n && toks[i].Kind == token.Identifier {
				parts = append(parts, toks[i].Value)
				i++
				if i < n && toks[i].Is(".") {
					parts = append(parts, ".")
					i++
					continue
				}
				break
			}
			if len(parts) > 0 {
				typeName = strings.Join(parts, "")
			}
		}
		if isArray {
			typeName += "()"
		}

		if i < n && toks[i].Is("=") {
			i++
			var initTokens []token.Token
			depth := 0
			for i < n {
				if toks[i].Is("(") {
					depth++
				}
				if toks[i].Is(")") {
					depth--
				}
				if depth == 0 && toks[i].Is(",") {
					break
				}
				initTokens = append(initTokens, toks[i])
				i++
			}
			a.analyzeTokens(initTokens, scope, file, nil)
		}

		if scope.Has(name) {
			a.diagnostics.Add(file, nameLine, "%s is already declared in this scope", name)
		} else {
			scope.Define(name, typeName, symtab.KindVariable)
		}

		if i < n && toks[i].Is(",") {
			i++
			continue
		}
		break
	}
}
