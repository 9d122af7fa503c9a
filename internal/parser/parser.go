// Package parser builds the coarse ast.Module tree described in package
// ast from a token stream. It is a structural port of
// original_source/src/parser.py's VBAParser/FormParser, trading the
// original's print-and-continue error recovery for a collected slice of
// syntax errors the caller can route into internal/diagnostic.
package parser

import (
	"fmt"
	"strings"

	"github.com/kestrelcode/vbalint/internal/ast"
	"github.com/kestrelcode/vbalint/internal/token"
)

// Parser consumes a token stream produced by lexer+preprocessor and
// builds one ast.Module.
type Parser struct {
	tokens   []token.Token
	pos      int
	current  token.Token
	fileName string

	// Errors accumulates recoverable syntax errors encountered while
	// parsing, in the order they were found. Parsing never aborts on
	// one; it resynchronizes at the next statement boundary.
	Errors []string
}

// New returns a Parser over tokens, reporting fileName in error messages.
func New(tokens []token.Token, fileName string) *Parser {
	p := &Parser{tokens: tokens, fileName: fileName}
	p.advance()
	return p
}

func (p *Parser) advance() {
	if p.pos < len(p.tokens) {
		p.current = p.tokens[p.pos]
		p.pos++
	} else {
		p.current = token.EOFToken()
	}
}

func (p *Parser) peek() token.Token {
	if p.pos < len(p.tokens) {
		return p.tokens[p.pos]
	}
	return token.EOFToken()
}

// match reports whether the current token satisfies kind/value without
// consuming it. Either may be zero to skip that check (kind zero means
// "don't check kind"; pass token.Invalid to skip).
func (p *Parser) match(kind token.Kind, value string) bool {
	if kind != token.Invalid && p.current.Kind != kind {
		return false
	}
	if value != "" && !strings.EqualFold(p.current.Value, value) {
		return false
	}
	return true
}

func (p *Parser) matchIdent(value string) bool {
	return p.match(token.Identifier, value)
}

// consume advances past the current token if it matches, returning
// whether it did.
func (p *Parser) consume(kind token.Kind, value string) bool {
	if !p.match(kind, value) {
		return false
	}
	p.advance()
	return true
}

func (p *Parser) errorf(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	p.Errors = append(p.Errors, fmt.Sprintf("%s:%d: Syntax Error: %s", p.fileName, p.current.Line, msg))
}

// ParseModule parses the whole token stream into a Module.
func (p *Parser) ParseModule(moduleType string) *ast.Module {
	module := ast.NewModule(p.fileName, moduleType)

	for p.current.Kind != token.EOF {
		switch {
		case p.matchIdent("Attribute"):
			p.parseAttribute(module)
		case p.matchIdent("Option"):
			p.advance()
			p.consumeStatement()
		case p.matchIdent("Implements"):
			p.advance()
			p.consumeStatement()
		case p.current.Kind == token.Identifier && strings.HasPrefix(strings.ToLower(p.current.Value), "def"):
			p.advance()
			p.consumeStatement()
		case p.matchIdent("Public") || p.matchIdent("Private") || p.matchIdent("Friend") ||
			p.matchIdent("Dim") || p.matchIdent("Const") || p.matchIdent("Global"):
			p.parseDeclaration(module)
		case p.matchIdent("Sub") || p.matchIdent("Function") || p.matchIdent("Property"):
			p.parseProcedure(module, "Public")
		case p.matchIdent("Type"):
			p.parseUDT(module, "Public")
		case p.matchIdent("Event"):
			p.advance()
			eventName := "Unknown"
			if p.current.Kind == token.Identifier {
				eventName = p.current.Value
				p.advance()
			}
			proc := &ast.Procedure{Name: eventName, ProcType: "Event", Scope: "Public", ReturnType: "Variant", Line: p.current.Line}
			if p.match(token.Operator, "(") {
				p.parseArgList(proc)
			}
			p.consumeStatement()
			module.Procedures = append(module.Procedures, proc)
		case p.matchIdent("Enum"):
			p.parseEnum(module, "Public")
		case p.current.Kind == token.Newline:
			p.advance()
		default:
			p.consumeStatement()
		}
	}

	return module
}

// consumeStatement discards tokens to the next newline/colon/EOF, mirroring
// the Python original's blanket skip used for unhandled top-level forms.
func (p *Parser) consumeStatement() {
	for p.current.Kind != token.Newline && p.current.Kind != token.EOF {
		if p.current.Is(":") {
			break
		}
		p.advance()
	}
	if p.current.Kind == token.Newline {
		p.advance()
	}
}

func (p *Parser) parseAttribute(module *ast.Module) {
	p.consume(token.Identifier, "Attribute")

	attrName := "Unknown"
	if p.current.Kind == token.Identifier {
		attrName = p.current.Value
		p.advance()
	}
	p.consume(token.Operator, "=")

	attrValue := "Unknown"
	switch {
	case p.current.Kind == token.String:
		attrValue = unquote(p.current.Value)
		p.advance()
	case p.current.Kind == token.Identifier:
		attrValue = p.current.Value
		p.advance()
	}

	module.Attributes[attrName] = attrValue
	if strings.EqualFold(attrName, "VB_Name") {
		module.Name = attrValue
	}
	p.consumeStatement()
}

func (p *Parser) parseDeclaration(module *ast.Module) {
	scope := p.current.Value
	p.advance()

	if p.matchIdent("Event") {
		p.advance()
		eventName := "Unknown"
		if p.current.Kind == token.Identifier {
			eventName = p.current.Value
			p.advance()
		}
		proc := &ast.Procedure{Name: eventName, ProcType: "Event", Scope: scope, ReturnType: "Variant", Line: p.current.Line}
		if p.match(token.Operator, "(") {
			p.parseArgList(proc)
		}
		p.consumeStatement()
		module.Procedures = append(module.Procedures, proc)
		return
	}

	if p.matchIdent("Declare") {
		p.advance()
		if p.matchIdent("PtrSafe") {
			p.advance()
		}
		procType := "Sub"
		if p.matchIdent("Function") {
			procType = "Function"
			p.advance()
		} else if p.matchIdent("Sub") {
			p.advance()
		}
		procName := "Unknown"
		if p.current.Kind == token.Identifier {
			procName = p.current.Value
			p.advance()
		}
		var libName, aliasName string
		if p.matchIdent("Lib") {
			p.advance()
			if p.current.Kind == token.String {
				libName = p.current.Value
				p.advance()
			}
		}
		if p.matchIdent("Alias") {
			p.advance()
			if p.current.Kind == token.String {
				aliasName = p.current.Value
				p.advance()
			}
		}
		proc := &ast.Procedure{
			Name: procName, ProcType: procType, Scope: scope, IsDeclare: true,
			LibName: libName, AliasName: aliasName, ReturnType: "Variant", Line: p.current.Line,
		}
		if p.match(token.Operator, "(") {
			p.parseArgList(proc)
		}
		if p.matchIdent("As") {
			p.advance()
			proc.ReturnType = p.parseTypeSignature()
		}
		p.consumeStatement()
		module.Procedures = append(module.Procedures, proc)
		return
	}

	if p.matchIdent("Sub") || p.matchIdent("Function") || p.matchIdent("Property") {
		p.parseProcedure(module, scope)
		return
	}
	if p.matchIdent("Type") {
		p.parseUDT(module, scope)
		return
	}
	if p.matchIdent("Enum") {
		p.parseEnum(module, scope)
		return
	}

	switch strings.ToLower(scope) {
	case "public", "private", "global", "friend":
		if p.matchIdent("Const") {
			p.advance()
		}
	}
	if p.matchIdent("WithEvents") {
		p.advance()
	}

	for {
		if p.current.Kind == token.Identifier {
			varName := p.current.Value
			line := p.current.Line
			p.advance()
			varType := "Variant"

			if p.matchIdent("As") {
				p.advance()
				varType = p.parseTypeSignature()
			}
			if p.match(token.Operator, "(") {
				for p.current.Kind != token.EOF && !p.match(token.Operator, ")") {
					p.advance()
				}
				p.consume(token.Operator, ")")
				varType += "()"
			}
			if p.match(token.Operator, "=") {
				for p.current.Kind != token.Newline && p.current.Kind != token.EOF && !p.match(token.Operator, ",") {
					p.advance()
				}
			}
			module.Variables = append(module.Variables, &ast.Variable{Name: varName, TypeName: varType, Scope: scope, DeclaredLine: line})
		}

		if p.match(token.Operator, ",") {
			p.advance()
			continue
		}
		break
	}

	p.consumeStatement()
}

func (p *Parser) parseTypeSignature() string {
	if p.matchIdent("New") {
		p.advance()
	}
	var parts []string
	for p.current.Kind == token.Identifier {
		parts = append(parts, p.current.Value)
		p.advance()
		if p.match(token.Operator, ".") {
			p.advance()
			parts = append(parts, ".")
		} else {
			break
		}
	}
	return strings.Join(parts, "")
}

func (p *Parser) parseProcedure(module *ast.Module, scope string) {
	procType := p.current.Value
	line := p.current.Line
	p.advance()

	if p.matchIdent("Get") || p.matchIdent("Let") || p.matchIdent("Set") {
		procType += " " + p.current.Value
		p.advance()
	}

	procName := "Unknown"
	if p.current.Kind == token.Identifier {
		procName = p.current.Value
		p.advance()
	}

	proc := &ast.Procedure{Name: procName, ProcType: procType, Scope: scope, ReturnType: "Variant", Line: line}

	if p.match(token.Operator, "(") {
		p.parseArgList(proc)
	}
	if p.matchIdent("As") {
		p.advance()
		proc.ReturnType = p.parseTypeSignature()
	}
	p.consumeStatement()

	endMarker := strings.ToLower(strings.Fields(procType)[0])
	proc.Body = p.parseBlock([]string{"End " + endMarker, "End"})

	if p.matchIdent("End") {
		p.advance()
		if strings.EqualFold(p.current.Value, endMarker) {
			p.advance()
		}
	}
	p.consumeStatement()

	module.Procedures = append(module.Procedures, proc)
}

// parseBlock recursively parses statements until one of endMarkers is
// found, matching VBAParser.parse_block's lookahead-based termination
// and unexpected-terminator diagnostics.
func (p *Parser) parseBlock(endMarkers []string) []ast.Node {
	var nodes []ast.Node

	for p.current.Kind != token.EOF {
		if p.current.Kind == token.Identifier && strings.EqualFold(p.current.Value, "end") {
			combined := "end " + strings.ToLower(p.peek().Value)
			for _, marker := range endMarkers {
				if strings.ToLower(marker) == combined {
					return nodes
				}
			}
		}

		if p.current.Kind == token.Identifier {
			val := strings.ToLower(p.current.Value)
			matched := false
			for _, marker := range endMarkers {
				if strings.ToLower(strings.Fields(marker)[0]) == val {
					matched = true
					break
				}
			}
			if matched {
				return nodes
			}

			switch val {
			case "next", "loop", "else", "elseif", "wend":
				p.errorf("Unexpected '%s'", p.current.Value)
				p.consumeStatement()
				continue
			case "end":
				peekVal := strings.ToLower(p.peek().Value)
				switch peekVal {
				case "if", "select", "with", "function", "sub", "property":
					p.errorf("Unexpected 'End %s'", p.peek().Value)
					p.advance()
					p.advance()
					p.consumeStatement()
					continue
				}
			}
		}

		switch {
		case p.matchIdent("With"):
			nodes = append(nodes, p.parseWith())
		case p.matchIdent("If"):
			nodes = append(nodes, p.parseIfStmt()...)
		case p.matchIdent("For"):
			nodes = append(nodes, p.parseFor()...)
		case p.matchIdent("Do"):
			nodes = append(nodes, p.parseDo()...)
		case p.matchIdent("Select"):
			nodes = append(nodes, p.parseSelect()...)
		case p.matchIdent("While"):
			nodes = append(nodes, p.parseWhile()...)
		default:
			stmt := p.collectStatement(true)
			if len(stmt) > 0 {
				nodes = append(nodes, &ast.Statement{Tokens: stmt})
			} else if p.current.Kind == token.Newline {
				p.advance()
			}
		}
	}

	return nodes
}

// stmt builds a marker/header Statement node out of a keyword plus
// trailing tokens - used for the boundary and header lines (If/Then,
// ElseIf/Then, Else, End If, For header, Next, Do/Loop headers, Wend,
// Select Case, End Select) that get spliced directly into the flat
// statement sequence instead of being wrapped in their own node type.
func stmt(line int, words ...string) *ast.Statement {
	toks := make([]token.Token, 0, len(words))
	for _, w := range words {
		toks = append(toks, token.Token{Kind: token.Identifier, Value: w, Line: line})
	}
	return &ast.Statement{Tokens: toks}
}

func withTokens(s *ast.Statement, extra []token.Token) *ast.Statement {
	s.Tokens = append(s.Tokens, extra...)
	return s
}

func (p *Parser) parseWhile() []ast.Node {
	line := p.current.Line
	p.consume(token.Identifier, "While")
	condition := p.collectStatement(true)
	body := p.parseBlock([]string{"Wend"})
	p.consume(token.Identifier, "Wend")
	p.consumeStatement()

	var out []ast.Node
	out = append(out, withTokens(stmt(line, "While"), condition))
	out = append(out, body...)
	out = append(out, stmt(line, "Wend"))
	return out
}

func (p *Parser) parseWith() ast.Node {
	line := p.current.Line
	p.consume(token.Identifier, "With")
	var exprToks []token.Token
	for p.current.Kind != token.Newline && p.current.Kind != token.EOF {
		exprToks = append(exprToks, p.current)
		p.advance()
	}
	p.consumeStatement()

	body := p.parseBlock([]string{"End With"})

	p.consume(token.Identifier, "End")
	p.consume(token.Identifier, "With")
	p.consumeStatement()

	return &ast.With{ExprTokens: exprToks, Body: body, Line: line}
}

// parseIfStmt parses a block or single-line If and returns its flattened
// representation: a header Statement, the (already flat) body nodes, any
// ElseIf headers and bodies, an Else marker and body, and a closing
// "End If" marker. The analyzer's unreachable-code walk (package
// analyzer) relies on these markers to know where a conditional branch
// starts and ends.
func (p *Parser) parseIfStmt() []ast.Node {
	line := p.current.Line
	p.consume(token.Identifier, "If")

	var conditionToks []token.Token
	for p.current.Kind != token.EOF {
		if p.matchIdent("Then") {
			break
		}
		conditionToks = append(conditionToks, p.current)
		p.advance()
	}
	if !p.matchIdent("Then") {
		p.errorf("Missing 'Then'")
		p.consumeStatement()
		return nil
	}
	p.consume(token.Identifier, "Then")

	if p.current.Kind == token.Newline || p.current.Kind == token.Comment {
		p.consumeStatement()

		var out []ast.Node
		out = append(out, withTokens(stmt(line, "If"), conditionToks))
		out = append(out, p.parseBlock([]string{"Else", "ElseIf", "End If"})...)

		for {
			if p.current.Kind != token.Identifier {
				break
			}
			val := strings.ToLower(p.current.Value)
			switch val {
			case "elseif":
				elseifLine := p.current.Line
				p.advance()
				var elseifCond []token.Token
				for !p.matchIdent("Then") && p.current.Kind != token.EOF {
					elseifCond = append(elseifCond, p.current)
					p.advance()
				}
				p.consume(token.Identifier, "Then")
				p.consumeStatement()
				out = append(out, withTokens(stmt(elseifLine, "ElseIf"), elseifCond))
				out = append(out, p.parseBlock([]string{"Else", "ElseIf", "End If"})...)
			case "else":
				elseLine := p.current.Line
				p.advance()
				p.consumeStatement()
				out = append(out, stmt(elseLine, "Else"))
				out = append(out, p.parseBlock([]string{"End If"})...)
			case "end":
				endLine := p.current.Line
				if strings.EqualFold(p.peek().Value, "if") {
					p.advance()
					p.advance()
					p.consumeStatement()
				}
				out = append(out, stmt(endLine, "End", "If"))
				return out
			default:
				return out
			}
		}

		return out
	}

	// Single-line If: the header becomes its own marker (so the analyzer
	// can compare source lines for the Exit-Sub-on-the-same-line
	// unreachable-code exception) and each colon-separated fragment
	// becomes its own Statement, since only the first fragment is
	// actually gated by the condition - the rest run unconditionally.
	var out []ast.Node
	out = append(out, withTokens(stmt(line, "If"), conditionToks))
	for p.current.Kind != token.Newline && p.current.Kind != token.EOF {
		fragment := p.collectStatement(false)
		if len(fragment) > 0 {
			out = append(out, &ast.Statement{Tokens: fragment})
		}
	}
	if p.current.Kind == token.Newline {
		p.advance()
	}
	return out
}

func (p *Parser) parseFor() []ast.Node {
	line := p.current.Line
	p.consume(token.Identifier, "For")
	var header []token.Token
	for p.current.Kind != token.Newline && p.current.Kind != token.EOF {
		header = append(header, p.current)
		p.advance()
	}
	p.consumeStatement()

	body := p.parseBlock([]string{"Next"})

	nextLine := p.current.Line
	p.consume(token.Identifier, "Next")
	if p.current.Kind == token.Identifier {
		p.advance()
	}
	p.consumeStatement()

	var out []ast.Node
	out = append(out, withTokens(stmt(line, "For"), header))
	out = append(out, body...)
	out = append(out, stmt(nextLine, "Next"))
	return out
}

func (p *Parser) parseDo() []ast.Node {
	line := p.current.Line
	p.consume(token.Identifier, "Do")
	var header []token.Token
	for p.current.Kind != token.Newline && p.current.Kind != token.EOF {
		header = append(header, p.current)
		p.advance()
	}
	p.consumeStatement()

	body := p.parseBlock([]string{"Loop"})

	loopLine := p.current.Line
	p.consume(token.Identifier, "Loop")
	var loopCond []token.Token
	for p.current.Kind != token.Newline && p.current.Kind != token.EOF {
		loopCond = append(loopCond, p.current)
		p.advance()
	}
	p.consumeStatement()

	var out []ast.Node
	out = append(out, withTokens(stmt(line, "Do"), header))
	out = append(out, body...)
	out = append(out, withTokens(stmt(loopLine, "Loop"), loopCond))
	return out
}

func (p *Parser) parseSelect() []ast.Node {
	line := p.current.Line
	p.consume(token.Identifier, "Select")
	p.consume(token.Identifier, "Case")
	var expr []token.Token
	for p.current.Kind != token.Newline && p.current.Kind != token.EOF {
		expr = append(expr, p.current)
		p.advance()
	}
	p.consumeStatement()

	body := p.parseBlock([]string{"End Select"})

	endLine := p.current.Line
	p.consume(token.Identifier, "End")
	p.consume(token.Identifier, "Select")
	p.consumeStatement()

	var out []ast.Node
	out = append(out, withTokens(stmt(line, "Select", "Case"), expr))
	out = append(out, body...)
	out = append(out, stmt(endLine, "End", "Select"))
	return out
}

func (p *Parser) collectStatement(consumeNewline bool) []token.Token {
	var toks []token.Token
	for p.current.Kind != token.Newline && p.current.Kind != token.EOF {
		toks = append(toks, p.current)
		if p.current.Is(":") {
			p.advance()
			return toks
		}
		p.advance()
	}
	if consumeNewline && p.current.Kind == token.Newline {
		p.advance()
	}
	return toks
}

func (p *Parser) parseArgList(proc *ast.Procedure) {
	p.consume(token.Operator, "(")
	for !p.match(token.Operator, ")") && p.current.Kind != token.EOF {
		isOptional, isParamArray := false, false
		mechanism := "ByRef"

		for p.matchIdent("Optional") || p.matchIdent("ByVal") || p.matchIdent("ByRef") || p.matchIdent("ParamArray") {
			switch strings.ToLower(p.current.Value) {
			case "optional":
				isOptional = true
			case "paramarray":
				isParamArray = true
				mechanism = "ParamArray"
			case "byval":
				mechanism = "ByVal"
			case "byref":
				mechanism = "ByRef"
			}
			p.advance()
		}

		if p.current.Kind == token.Identifier {
			argName := p.current.Value
			p.advance()

			isArray := false
			if p.match(token.Operator, "(") {
				p.advance()
				p.consume(token.Operator, ")")
				isArray = true
			}

			argType := "Variant"
			if p.matchIdent("As") {
				p.advance()
				argType = p.parseTypeSignature()
			}
			if p.match(token.Operator, "(") {
				p.advance()
				p.consume(token.Operator, ")")
				isArray = true
			}
			if isArray && !strings.HasSuffix(argType, "()") {
				argType += "()"
			}

			if p.match(token.Operator, "=") {
				p.advance()
				for p.current.Kind != token.EOF {
					if p.current.Kind == token.Operator && (p.current.Value == "," || p.current.Value == ")") {
						break
					}
					p.advance()
				}
			}

			proc.Args = append(proc.Args, &ast.Variable{
				Name: argName, TypeName: argType, Scope: "Local",
				IsOptional: isOptional, IsParamArray: isParamArray, Mechanism: mechanism,
			})
		}

		if p.match(token.Operator, ",") {
			p.advance()
		} else if p.current.Kind != token.EOF && !p.match(token.Operator, ")") {
			p.advance()
		}
	}
	p.consume(token.Operator, ")")
}

func (p *Parser) parseUDT(module *ast.Module, scope string) {
	p.consume(token.Identifier, "Type")
	line := p.current.Line
	typeName := p.current.Value
	p.advance()
	p.consumeStatement()

	udt := &ast.UDT{Name: typeName, Scope: scope, Line: line}

	for p.current.Kind != token.EOF {
		if p.matchIdent("End") && strings.EqualFold(p.peek().Value, "type") {
			p.advance()
			p.advance()
			p.consumeStatement()
			break
		}

		if p.current.Kind == token.Identifier {
			varName := p.current.Value
			p.advance()
			varType := "Variant"
			if p.matchIdent("As") {
				p.advance()
				varType = p.parseTypeSignature()
			}
			if p.match(token.Operator, "(") {
				for !p.match(token.Operator, ")") && p.current.Kind != token.EOF {
					p.advance()
				}
				p.consume(token.Operator, ")")
				varType += "()"
			}
			if p.match(token.Operator, "*") {
				p.advance()
				p.advance()
			}
			udt.Members = append(udt.Members, &ast.Variable{Name: varName, TypeName: varType, Scope: "Public"})
		}

		p.consumeStatement()
	}

	module.Types[typeName] = udt
}

func (p *Parser) parseEnum(module *ast.Module, scope string) {
	p.consume(token.Identifier, "Enum")
	line := p.current.Line
	enumName := p.current.Value
	p.advance()
	p.consumeStatement()

	udt := &ast.UDT{Name: enumName, Scope: scope, IsEnum: true, Line: line}

	for p.current.Kind != token.EOF {
		if p.matchIdent("End") && strings.EqualFold(p.peek().Value, "enum") {
			p.advance()
			p.advance()
			p.consumeStatement()
			break
		}

		if p.current.Kind == token.Identifier {
			memberName := p.current.Value
			p.advance()

			v := &ast.Variable{Name: memberName, TypeName: "Long", Scope: scope}
			module.Variables = append(module.Variables, v)
			udt.Members = append(udt.Members, v)

			if p.match(token.Operator, "=") {
				p.advance()
				for p.current.Kind != token.Newline && p.current.Kind != token.EOF && p.current.Kind != token.Comment {
					p.advance()
				}
			}
		}

		p.consumeStatement()
	}

	module.Types[enumName] = udt
}

// ParseFormControls extracts `Begin <Class> <Name>` control declarations
// from a .frm file's GUI definition block, matching FormParser.parse.
func ParseFormControls(content string) []*ast.Variable {
	var out []*ast.Variable
	for _, line := range strings.Split(content, "\n") {
		trimmed := strings.TrimLeft(line, " \t")
		if !strings.HasPrefix(strings.ToLower(trimmed), "begin ") {
			continue
		}
		fields := strings.Fields(trimmed)
		if len(fields) < 3 {
			continue
		}
		clsType := fields[1]
		name := fields[2]
		if idx := strings.LastIndex(clsType, "."); idx >= 0 {
			clsType = clsType[idx+1:]
		}
		out = append(out, &ast.Variable{Name: name, TypeName: clsType, Scope: "Public"})
	}
	return out
}

func unquote(s string) string {
	s = strings.TrimPrefix(s, `"`)
	s = strings.TrimSuffix(s, `"`)
	return strings.ReplaceAll(s, `""`, `"`)
}
