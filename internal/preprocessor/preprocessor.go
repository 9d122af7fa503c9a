// Package preprocessor evaluates conditional-compilation directives
// (#If/#ElseIf/#Else/#End If/#Const) over a token stream, eliding tokens
// from inactive branches while preserving line numbers. It is a
// structural port of original_source/src/preprocessor.py.
package preprocessor

import (
	"strconv"
	"strings"

	"github.com/kestrelcode/vbalint/internal/token"
)

// Value is a preprocessor definition's value: a bool, a string, or an int.
// VBA conditional-compilation constants are untyped Variants in practice;
// this closed sum covers every literal the evaluator produces.
type Value struct {
	Bool   bool
	Str    string
	Int    int
	Kind   ValueKind
}

// ValueKind tags which field of Value is meaningful.
type ValueKind int

const (
	KindBool ValueKind = iota
	KindString
	KindInt
)

func BoolValue(b bool) Value { return Value{Bool: b, Kind: KindBool} }
func StringValue(s string) Value { return Value{Str: s, Kind: KindString} }
func IntValue(i int) Value { return Value{Int: i, Kind: KindInt} }

// Truthy mirrors Python's bool(...) coercion used when the evaluator's
// result feeds an #If/#ElseIf branch decision.
func (v Value) Truthy() bool {
	switch v.Kind {
	case KindBool:
		return v.Bool
	case KindString:
		return v.Str != ""
	case KindInt:
		return v.Int != 0
	}
	return false
}

// frame is one entry of the #If/#ElseIf/#Else/#End If stack.
type frame struct {
	active bool
	taken  bool
}

// Preprocessor filters a token stream against a map of definitions.
type Preprocessor struct {
	tokens  []token.Token
	defines map[string]Value
	stack   []frame
}

// New creates a Preprocessor over tokens, mutating defines in place as
// #Const statements are evaluated (matching the Python original, which
// shares the definitions dict across files within one CLI run).
func New(tokens []token.Token, defines map[string]Value) *Preprocessor {
	if defines == nil {
		defines = map[string]Value{}
	}
	return &Preprocessor{
		tokens:  tokens,
		defines: defines,
		stack:   []frame{{active: true, taken: false}},
	}
}

// Process returns the filtered token stream.
func (p *Preprocessor) Process() []token.Token {
	var out []token.Token
	i := 0
	n := len(p.tokens)

	for i < n {
		tok := p.tokens[i]

		if tok.Kind != token.Preproc {
			top := p.stack[len(p.stack)-1]
			if top.active {
				out = append(out, tok)
			} else if tok.Kind == token.Newline {
				out = append(out, tok)
			}
			i++
			continue
		}

		directive := strings.ToLower(tok.Value)
		i++

		switch directive {
		case "#if":
			cond, next := p.collectCondition(i)
			i = next
			parent := p.stack[len(p.stack)-1]
			if parent.active {
				result := p.evaluate(cond)
				p.stack = append(p.stack, frame{active: result, taken: result})
			} else {
				p.stack = append(p.stack, frame{active: false, taken: true})
			}

		case "#elseif":
			cond, next := p.collectCondition(i)
			i = next
			cur := &p.stack[len(p.stack)-1]
			if len(p.stack) >= 2 {
				parent := p.stack[len(p.stack)-2]
				if parent.active && !cur.taken {
					result := p.evaluate(cond)
					cur.active = result
					if result {
						cur.taken = true
					}
				} else {
					cur.active = false
				}
			} else {
				cur.active = false
			}

		case "#else":
			cur := &p.stack[len(p.stack)-1]
			if len(p.stack) >= 2 {
				parent := p.stack[len(p.stack)-2]
				if parent.active && !cur.taken {
					cur.active = true
					cur.taken = true
				} else {
					cur.active = false
				}
			} else {
				cur.active = false
			}

		case "#end":
			if i < n && strings.EqualFold(p.tokens[i].Value, "if") {
				i++
			}
			if len(p.stack) > 1 {
				p.stack = p.stack[:len(p.stack)-1]
			}

		case "#const":
			i = p.processConst(i)

		default:
			// Unknown directive: ignore it, matching the Python
			// fallback which yields the directive token unchanged.
		}

		if i < n && p.tokens[i].Kind == token.Newline {
			out = append(out, p.tokens[i])
			i++
		}
	}

	return out
}

// collectCondition gathers tokens up to (and consuming) a trailing 'Then',
// or up to (not consuming) a NEWLINE/EOF.
func (p *Preprocessor) collectCondition(i int) ([]token.Token, int) {
	var cond []token.Token
	n := len(p.tokens)
	for i < n && p.tokens[i].Kind != token.Newline && p.tokens[i].Kind != token.EOF {
		if p.tokens[i].IsIdent("then") {
			i++
			break
		}
		cond = append(cond, p.tokens[i])
		i++
	}
	return cond, i
}

func (p *Preprocessor) processConst(i int) int {
	n := len(p.tokens)
	if i >= n || p.tokens[i].Kind != token.Identifier {
		return p.skipToLineEnd(i)
	}
	name := p.tokens[i].Value
	i++
	if i >= n || !p.tokens[i].Is("=") {
		return p.skipToLineEnd(i)
	}
	i++

	var exprToks []token.Token
	for i < n && p.tokens[i].Kind != token.Newline && p.tokens[i].Kind != token.EOF {
		exprToks = append(exprToks, p.tokens[i])
		i++
	}

	if p.stack[len(p.stack)-1].active {
		p.defines[strings.ToUpper(name)] = p.evaluateValue(exprToks)
	}
	return i
}

func (p *Preprocessor) skipToLineEnd(i int) int {
	n := len(p.tokens)
	for i < n && p.tokens[i].Kind != token.Newline && p.tokens[i].Kind != token.EOF {
		i++
	}
	return i
}

// evaluate runs the boolean/arithmetic mini-grammar and coerces the
// result to a bool, as #If/#ElseIf require.
func (p *Preprocessor) evaluate(toks []token.Token) bool {
	return p.evaluateValue(toks).Truthy()
}

// evaluateValue implements the tiny expression grammar described in the
// spec: and/or/not, =/<> comparisons, identifiers resolved against
// defines (undefined -> false), and literal values. Any malformed input
// yields false, never a panic, matching the Python original's blanket
// try/except around eval().
func (p *Preprocessor) evaluateValue(toks []token.Token) Value {
	toks = stripParens(toks)
	ev := &exprEval{toks: toks, defines: p.defines}
	defer func() { recover() }()
	v, ok := ev.parseOr()
	if !ok || ev.pos != len(ev.toks) {
		return BoolValue(false)
	}
	return v
}

// stripParens removes one layer of fully-enclosing parentheses, allowing
// `#If (X)` to evaluate the same as `#If X`.
func stripParens(toks []token.Token) []token.Token {
	for len(toks) >= 2 && toks[0].Is("(") && toks[len(toks)-1].Is(")") {
		depth := 0
		enclosing := true
		for idx, t := range toks {
			if t.Is("(") {
				depth++
			} else if t.Is(")") {
				depth--
				if depth == 0 && idx != len(toks)-1 {
					enclosing = false
					break
				}
			}
		}
		if !enclosing {
			break
		}
		toks = toks[1 : len(toks)-1]
	}
	return toks
}

// exprEval is a small recursive-descent evaluator over the preprocessor
// mini-grammar: or > and > not > equality > primary.
type exprEval struct {
	toks    []token.Token
	pos     int
	defines map[string]Value
}

func (e *exprEval) peek() (token.Token, bool) {
	if e.pos < len(e.toks) {
		return e.toks[e.pos], true
	}
	return token.Token{}, false
}

func (e *exprEval) parseOr() (Value, bool) {
	left, ok := e.parseAnd()
	if !ok {
		return Value{}, false
	}
	for {
		t, has := e.peek()
		if !has || !t.IsIdent("or") {
			return left, true
		}
		e.pos++
		right, ok := e.parseAnd()
		if !ok {
			return Value{}, false
		}
		left = BoolValue(left.Truthy() || right.Truthy())
	}
}

func (e *exprEval) parseAnd() (Value, bool) {
	left, ok := e.parseNot()
	if !ok {
		return Value{}, false
	}
	for {
		t, has := e.peek()
		if !has || !t.IsIdent("and") {
			return left, true
		}
		e.pos++
		right, ok := e.parseNot()
		if !ok {
			return Value{}, false
		}
		left = BoolValue(left.Truthy() && right.Truthy())
	}
}

func (e *exprEval) parseNot() (Value, bool) {
	if t, has := e.peek(); has && t.IsIdent("not") {
		e.pos++
		v, ok := e.parseNot()
		if !ok {
			return Value{}, false
		}
		return BoolValue(!v.Truthy()), true
	}
	return e.parseEquality()
}

func (e *exprEval) parseEquality() (Value, bool) {
	left, ok := e.parsePrimary()
	if !ok {
		return Value{}, false
	}
	t, has := e.peek()
	if !has || !(t.Is("=") || t.Is("<>")) {
		return left, true
	}
	op := t.Value
	e.pos++
	right, ok := e.parsePrimary()
	if !ok {
		return Value{}, false
	}
	eq := valuesEqual(left, right)
	if op == "<>" {
		eq = !eq
	}
	return BoolValue(eq), true
}

func (e *exprEval) parsePrimary() (Value, bool) {
	t, has := e.peek()
	if !has {
		return Value{}, false
	}
	switch t.Kind {
	case token.Int:
		e.pos++
		n, err := strconv.Atoi(t.Value)
		if err != nil {
			return Value{}, false
		}
		return IntValue(n), true
	case token.Float:
		e.pos++
		return StringValue(t.Value), true
	case token.String:
		e.pos++
		return StringValue(unquote(t.Value)), true
	case token.Identifier:
		e.pos++
		switch strings.ToLower(t.Value) {
		case "true":
			return BoolValue(true), true
		case "false":
			return BoolValue(false), true
		}
		if v, ok := e.defines[strings.ToUpper(t.Value)]; ok {
			return v, true
		}
		return BoolValue(false), true
	case token.Operator:
		if t.Is("(") {
			e.pos++
			v, ok := e.parseOr()
			if !ok {
				return Value{}, false
			}
			if t2, has2 := e.peek(); !has2 || !t2.Is(")") {
				return Value{}, false
			}
			e.pos++
			return v, true
		}
	}
	return Value{}, false
}

func valuesEqual(a, b Value) bool {
	if a.Kind == KindString || b.Kind == KindString {
		return valueToString(a) == valueToString(b)
	}
	if a.Kind == KindBool || b.Kind == KindBool {
		return a.Truthy() == b.Truthy()
	}
	return a.Int == b.Int
}

func valueToString(v Value) string {
	switch v.Kind {
	case KindString:
		return v.Str
	case KindBool:
		if v.Bool {
			return "True"
		}
		return "False"
	case KindInt:
		return strconv.Itoa(v.Int)
	}
	return ""
}

func unquote(s string) string {
	s = strings.TrimPrefix(s, `"`)
	s = strings.TrimSuffix(s, `"`)
	return strings.ReplaceAll(s, `""`, `"`)
}
