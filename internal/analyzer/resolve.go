package analyzer

import (
	"strings"

	"github.com/kestrelcode/vbalint/internal/ast"
	"github.com/kestrelcode/vbalint/internal/symtab"
	"github.com/kestrelcode/vbalint/internal/token"
)

// keywords is the closed set of statement/expression keywords that are
// never themselves resolved as identifiers, matching analyzer.py's
// KEYWORDS constant.
var keywords = map[string]bool{
	"dim": true, "static": true, "const": true, "public": true, "private": true,
	"global": true, "friend": true, "if": true, "then": true, "else": true,
	"elseif": true, "end": true, "for": true, "each": true, "to": true, "step": true,
	"next": true, "do": true, "loop": true, "while": true, "wend": true, "until": true,
	"select": true, "case": true, "is": true, "with": true, "sub": true, "function": true,
	"property": true, "exit": true, "goto": true, "gosub": true, "resume": true,
	"on": true, "error": true, "byval": true, "byref": true, "optional": true,
	"paramarray": true, "as": true, "new": true, "set": true, "let": true, "call": true,
	"true": true, "false": true, "nothing": true, "null": true, "empty": true,
	"and": true, "or": true, "not": true, "xor": true, "eqv": true, "imp": true,
	"mod": true, "like": true, "redim": true, "preserve": true, "type": true,
	"enum": true, "declare": true, "lib": true, "alias": true, "return": true,
	"stop": true, "withevents": true, "implements": true, "event": true, "raiseevent": true,
}

// scalarTypes are built-in value types that cannot be called/indexed -
// applying "(" to a value of one of these is a non-callable-scalar
// error (unless the callee is itself a known procedure or callable
// global returning that type), as opposed to Object/Variant which might
// hold an indexable default member at runtime and so are never flagged.
var scalarTypes = map[string]bool{
	"long": true, "integer": true, "string": true, "boolean": true,
	"single": true, "double": true, "byte": true, "currency": true, "date": true,
}

// analyzeStatement is the entry point for one flat Statement: it special
// -cases Dim/Static/Const declarations (the parser never extracts these
// into ast.Variable for procedure-local scope, unlike module-level
// declarations), label definitions, and otherwise walks the token list.
func (a *Analyzer) analyzeStatement(s *ast.Statement, scope *symtab.Scope, file string, withStack []string) {
	toks := s.Tokens
	if len(toks) == 0 {
		return
	}
	if isLabelDefTokens(toks) {
		return
	}
	if toks[0].Kind == token.Identifier {
		switch strings.ToLower(toks[0].Value) {
		case "dim", "static", "const":
			a.processDim(toks, scope, file)
			return
		}
	}
	a.analyzeTokens(toks, scope, file, withStack)
}

func isLabelDefTokens(toks []token.Token) bool {
	return len(toks) == 2 && toks[0].Kind == token.Identifier && toks[1].Is(":")
}

// analyzeTokens is the statement/expression walker proper: it scans
// left to right, skipping keywords, GoTo/Resume/GoSub label targets,
// and name:=named-argument pairs, and resolving every other identifier
// or dot-chain it encounters.
func (a *Analyzer) analyzeTokens(toks []token.Token, scope *symtab.Scope, file string, withStack []string) {
	i := 0
	n := len(toks)
	for i < n {
		t := toks[i]

		if t.Is(".") {
			consumed, _ := a.resolveFromDot(toks, i, scope, file, withStack)
			if consumed <= 0 {
				consumed = 1
			}
			i += consumed
			continue
		}

		if t.Kind != token.Identifier {
			i++
			continue
		}

		lw := strings.ToLower(t.Value)
		if lw == "goto" || lw == "gosub" || lw == "resume" {
			i++
			if i < n && toks[i].Kind == token.Identifier && !keywords[strings.ToLower(toks[i].Value)] {
				i++
			}
			continue
		}
		if keywords[lw] {
			i++
			continue
		}
		if i+2 < n && toks[i+1].Is(":") && toks[i+2].Is("=") {
			i += 3
			continue
		}

		consumed, _ := a.resolveIdentifierChain(toks, i, scope, file, withStack)
		if consumed <= 0 {
			consumed = 1
		}
		i += consumed
	}
}

// resolveRoot resolves a root-position (non-member) identifier: local
// scope chain, then object-model global, then enum member, then (inside
// a Form) the implicit-Control fallback that swallows the diagnostic
// entirely, and only then reports it undefined.
func (a *Analyzer) resolveRoot(name string, scope *symtab.Scope, file string, line int) (string, bool) {
	if sym, found := scope.Resolve(name); found {
		return sym.Type, true
	}
	if g, found := a.model.GetGlobal(name); found {
		return g.TypeName(), true
	}
	if _, found := a.model.ResolveEnumMember(name); found {
		return "Long", true
	}
	if scope.InScopeType(symtab.ScopeForm) {
		return "Object", true
	}
	a.diagnostics.Add(file, line, "%s is not defined", name)
	return "", false
}

// resolveMember resolves memberName against typeName in priority order:
// UDT members, object-model class members, a project module of the
// same name (its public variables/procedures), then - only for Forms
// and the ThisDocument module - the fallbacks that keep implicit
// controls and host-document members from ever producing a diagnostic.
// A qualified type ("A.B.C") retries against its trailing segment.
func (a *Analyzer) resolveMember(typeName, memberName string) (string, bool) {
	key := strings.ToLower(typeName)

	// Object/Variant/Unknown/Control/Form are opaque: member access
	// against them can't be checked statically (no declared member set to
	// check against), so it is never flagged - this also backs the Form
	// implicit-control heuristic, whose resolved type is the sentinel
	// "Object".
	switch key {
	case "object", "variant", "unknown", "control", "form":
		return "Object", true
	}

	if udt, ok := a.udts[key]; ok {
		for _, m := range udt.Members {
			if strings.EqualFold(m.Name, memberName) {
				return m.TypeName, true
			}
		}
	}

	if cls, ok := a.model.GetClass(typeName); ok {
		for mName, mDef := range cls.Members {
			if strings.EqualFold(mName, memberName) {
				return mDef.Type, true
			}
		}
	}

	if mod, ok := a.modulesByName[key]; ok {
		for _, v := range mod.Variables {
			if isPublicLike(v.Scope) && strings.EqualFold(v.Name, memberName) {
				return v.TypeName, true
			}
		}
		for _, p := range mod.Procedures {
			if (strings.EqualFold(p.Scope, "public") || strings.EqualFold(p.Scope, "friend")) && strings.EqualFold(p.Name, memberName) {
				return p.ReturnType, true
			}
		}
		if mod.ModuleType == "Form" {
			if t, ok := a.resolveMember("UserForm", memberName); ok {
				return t, true
			}
			return "Object", true
		}
		if strings.EqualFold(mod.Name, "ThisDocument") {
			if t, ok := a.resolveMember("Document", memberName); ok {
				return t, true
			}
			if t, ok := a.resolveMember("IVDocument", memberName); ok {
				return t, true
			}
		}
	}

	if idx := strings.LastIndex(typeName, "."); idx >= 0 {
		return a.resolveMember(typeName[idx+1:], memberName)
	}

	return "", false
}

// resolveIdentifierChain resolves the identifier at toks[i] and any
// trailing .member / (args) chain, returning tokens consumed and the
// chain's resulting type. When i is the first token of the whole
// statement and no "(", "." or "=" follows, the remainder of the
// statement is treated as an implicit sub-style call's argument list
// (e.g. "MsgBox "hi", vbOKOnly") and validated against the callee's
// signature.
func (a *Analyzer) resolveIdentifierChain(toks []token.Token, i int, scope *symtab.Scope, file string, withStack []string) (int, string) {
	start := i
	name := toks[i].Value
	line := toks[i].Line
	i++

	curType, ok := a.resolveRoot(name, scope, file, line)

	if i < len(toks) && toks[i].Is("(") {
		argTokens, end := extractParenArgs(toks, i)
		a.analyzeTokens(argTokens, scope, file, withStack)
		a.validateArgCount(name, splitArgs(argTokens), file, line)
		curType = a.applyParens(name, curType, ok, argTokens, file, line)
		ok = curType != ""
		i = end
	} else if start == 0 && i >= len(toks) {
		a.validateArgCount(name, nil, file, line)
		return len(toks) - start, curType
	} else if start == 0 && i < len(toks) && !toks[i].Is(".") && !toks[i].Is("=") {
		rest := toks[i:]
		a.analyzeTokens(rest, scope, file, withStack)
		a.validateArgCount(name, splitArgs(rest), file, line)
		return len(toks) - start, curType
	}

	for i < len(toks) && toks[i].Is(".") {
		i++
		if i >= len(toks) || toks[i].Kind != token.Identifier {
			break
		}
		memberName := toks[i].Value
		memberLine := toks[i].Line
		i++
		if ok {
			next, found := a.resolveMember(curType, memberName)
			if !found {
				a.diagnostics.Add(file, memberLine, "%s is not a member of %s", memberName, curType)
				ok = false
			} else {
				curType = next
			}
		}
		if i < len(toks) && toks[i].Is("(") {
			argTokens, end := extractParenArgs(toks, i)
			a.analyzeTokens(argTokens, scope, file, withStack)
			curType = a.applyParens(memberName, curType, ok, argTokens, file, memberLine)
			ok = curType != ""
			i = end
		}
	}

	return i - start, curType
}

// resolveFromDot handles a statement (or chain position) starting with
// a bare "." - the implicit-receiver dot-chain syntax valid only inside
// a With block. Outside one, this is the orphan-dot diagnostic.
func (a *Analyzer) resolveFromDot(toks []token.Token, i int, scope *symtab.Scope, file string, withStack []string) (int, string) {
	start := i
	dotLine := toks[i].Line

	if len(withStack) == 0 {
		a.diagnostics.Add(file, dotLine, "'.' has no enclosing With block")
		for i < len(toks) {
			if toks[i].Is(".") || toks[i].Kind == token.Identifier {
				i++
				continue
			}
			if toks[i].Is("(") {
				_, end := extractParenArgs(toks, i)
				i = end
				continue
			}
			break
		}
		return i - start, ""
	}

	curType := withStack[len(withStack)-1]
	ok := true
	i++

	for i < len(toks) {
		if toks[i].Kind != token.Identifier {
			break
		}
		memberName := toks[i].Value
		memberLine := toks[i].Line
		i++
		if ok {
			next, found := a.resolveMember(curType, memberName)
			if !found {
				a.diagnostics.Add(file, memberLine, "%s is not a member of %s", memberName, curType)
				ok = false
			} else {
				curType = next
			}
		}
		if i < len(toks) && toks[i].Is("(") {
			argTokens, end := extractParenArgs(toks, i)
			a.analyzeTokens(argTokens, scope, file, withStack)
			curType = a.applyParens(memberName, curType, ok, argTokens, file, memberLine)
			ok = curType != ""
			i = end
		}
		if i < len(toks) && toks[i].Is(".") {
			i++
			continue
		}
		break
	}

	return i - start, curType
}

// applyParens resolves the type a "(" following callee/curType produces:
// CreateObject("ProgId") infers ProgId's final segment as a class name;
// an array type ("X()") collapses to X; a UDT keeps its own type; a
// class with a default member collapses to that member's type, while
// other classes and project modules give Variant; a plain scalar type
// reports a non-callable diagnostic unless callee is a known procedure
// or callable global, whose scalar return type is kept; anything else
// (an as-yet-unmodeled Object) is assumed callable and returns Variant.
func (a *Analyzer) applyParens(callee, curType string, ok bool, argTokens []token.Token, file string, line int) string {
	if strings.EqualFold(callee, "CreateObject") && len(argTokens) > 0 && argTokens[0].Kind == token.String {
		clsName := unquote(argTokens[0].Value)
		if idx := strings.LastIndex(clsName, "."); idx >= 0 {
			clsName = clsName[idx+1:]
		}
		return clsName
	}

	if !ok {
		return ""
	}

	if strings.HasSuffix(curType, "()") {
		return strings.TrimSuffix(curType, "()")
	}
	if _, isUDT := a.udts[strings.ToLower(curType)]; isUDT {
		return curType
	}
	if cls, isClass := a.model.GetClass(curType); isClass {
		if cls.DefaultMember != "" {
			if mem, found := cls.Members[cls.DefaultMember]; found {
				return mem.Type
			}
		}
		return "Variant"
	}
	if _, isMod := a.modulesByName[strings.ToLower(curType)]; isMod {
		return "Variant"
	}
	if scalarTypes[strings.ToLower(curType)] {
		if _, _, callable := a.signatureFor(callee); callable {
			return curType
		}
		a.diagnostics.Add(file, line, "%s is not callable", callee)
		return ""
	}
	return "Variant"
}

// resolveExprType resolves a With statement's receiver expression,
// returning the type later pushed onto the With stack so dot-chains
// inside the block can resolve against it.
func (a *Analyzer) resolveExprType(toks []token.Token, scope *symtab.Scope, file string, withStack []string) string {
	if len(toks) == 0 {
		return "Variant"
	}
	i := 0
	if toks[0].Kind == token.Identifier && strings.EqualFold(toks[0].Value, "New") {
		i++
	}
	if i >= len(toks) {
		return "Variant"
	}
	if toks[i].Is(".") {
		_, t := a.resolveFromDot(toks, i, scope, file, withStack)
		if t == "" {
			return "Variant"
		}
		return t
	}
	if toks[i].Kind != token.Identifier {
		return "Variant"
	}
	_, t := a.resolveIdentifierChain(toks, i, scope, file, withStack)
	if t == "" {
		return "Variant"
	}
	return t
}

func extractParenArgs(toks []token.Token, openIdx int) ([]token.Token, int) {
	depth := 1
	i := openIdx + 1
	var args []token.Token
	for i < len(toks) && depth > 0 {
		if toks[i].Is("(") {
			depth++
		}
		if toks[i].Is(")") {
			depth--
			if depth == 0 {
				i++
				break
			}
		}
		args = append(args, toks[i])
		i++
	}
	return args, i
}

func splitArgs(toks []token.Token) [][]token.Token {
	if len(toks) == 0 {
		return nil
	}
	var groups [][]token.Token
	var cur []token.Token
	depth := 0
	for _, t := range toks {
		if t.Is("(") {
			depth++
		}
		if t.Is(")") {
			depth--
		}
		if depth == 0 && t.Is(",") {
			groups = append(groups, cur)
			cur = nil
			continue
		}
		cur = append(cur, t)
	}
	groups = append(groups, cur)
	return groups
}

// validateArgCount checks callee's resolved signature, if any, against
// the argument groups a call site supplied, matching signature
// validation's "at least"/"at most" diagnostics.
func (a *Analyzer) validateArgCount(callee string, argGroups [][]token.Token, file string, line int) {
	minArgs, maxArgs, ok := a.signatureFor(callee)
	if !ok {
		return
	}
	n := len(argGroups)
	if n == 1 && len(argGroups[0]) == 0 {
		n = 0
	}
	if n < minArgs {
		a.diagnostics.Add(file, line, "%s requires at least %d argument(s)", callee, minArgs)
		return
	}
	if maxArgs >= 0 && n > maxArgs {
		a.diagnostics.Add(file, line, "%s accepts at most %d argument(s)", callee, maxArgs)
	}
}

func (a *Analyzer) signatureFor(name string) (minArgs, maxArgs int, ok bool) {
	if g, found := a.model.GetGlobal(name); found && (g.MinArgs != nil || g.MaxArgs != nil) {
		if g.MinArgs != nil {
			minArgs = *g.MinArgs
		}
		maxArgs = -1
		if g.MaxArgs != nil {
			maxArgs = *g.MaxArgs
		}
		return minArgs, maxArgs, true
	}
	if procs, found := a.procsByName[strings.ToLower(name)]; found && len(procs) > 0 {
		proc := procs[0]
		unbounded := false
		for _, arg := range proc.Args {
			if arg.IsParamArray {
				unbounded = true
				continue
			}
			if !arg.IsOptional {
				minArgs++
			}
		}
		maxArgs = len(proc.Args)
		if unbounded {
			maxArgs = -1
		}
		return minArgs, maxArgs, true
	}
	return 0, -1, false
}

func unquote(s string) string {
	s = strings.TrimPrefix(s, `"`)
	s = strings.TrimSuffix(s, `"`)
	return strings.ReplaceAll(s, `""`, `"`)
}
