// Package lexer turns raw source text into a stream of tokens. It is a
// direct structural port of the Python original's regex-driven lexer
// (original_source/src/lexer.py): one master alternation, evaluated
// left to right, feeding a single forward scan over the source.
package lexer

import (
	"regexp"

	"github.com/kestrelcode/vbalint/internal/token"
)

// masterPattern mirrors lexer.py's token_specs, in the same order: first
// alternative that matches at the current position wins (Go's regexp
// package, like Python's re, is leftmost-first over alternation for
// unanchored non-POSIX matching).
var masterPattern = regexp.MustCompile(`(?i)` +
	`(?P<COMMENT>'.*)` +
	`|(?P<STRING>"(?:""|[^"])*")` +
	`|(?P<PREPROC>#[a-zA-Z_]\w*)` +
	`|(?P<DATELITERAL>#[^#\r\n]+#)` +
	`|(?P<HEX>&H[0-9A-Fa-f]+)` +
	`|(?P<FLOAT>\d+\.\d+)` +
	`|(?P<INT>\d+)` +
	`|(?P<LINECONT>[ \t]+_(?:\r\n|\n))` +
	`|(?P<NEWLINE>\r\n|\n)` +
	`|(?P<SKIP>[ \t]+)` +
	`|(?P<OPERATOR><>|<=|>=|:=|[+\-*/^=&<>().,:])` +
	`|(?P<IDENTIFIER>[a-zA-Z_]\w*)` +
	`|(?P<MISMATCH>.)`,
)

var groupNames = masterPattern.SubexpNames()

// Lexer converts source text into a flat token slice.
type Lexer struct {
	code string
}

// New returns a Lexer over code.
func New(code string) *Lexer {
	return &Lexer{code: code}
}

// Tokenize scans the full source and returns its token stream, terminated
// by a single EOF token. Line continuations and skipped whitespace never
// appear in the output; inactive-branch elision is the Preprocessor's job,
// not the Lexer's.
func (l *Lexer) Tokenize() []token.Token {
	var out []token.Token
	line := 1
	col := 1

	matches := masterPattern.FindAllStringSubmatchIndex(l.code, -1)
	for _, m := range matches {
		kind, start, end := matchedGroup(m)
		value := l.code[start:end]

		switch kind {
		case "LINECONT":
			line++
			col = 1
		case "NEWLINE":
			line++
			out = append(out, token.Token{Kind: token.Newline, Value: "\n", Line: line, Column: 1})
			col = 1
		case "SKIP":
			col += len(value)
		case "MISMATCH":
			col += len(value)
		case "COMMENT":
			out = append(out, token.Token{Kind: token.Comment, Value: value, Line: line, Column: col})
			col += len(value)
		case "STRING":
			out = append(out, token.Token{Kind: token.String, Value: value, Line: line, Column: col})
			col += len(value)
		case "PREPROC":
			out = append(out, token.Token{Kind: token.Preproc, Value: value, Line: line, Column: col})
			col += len(value)
		case "DATELITERAL":
			out = append(out, token.Token{Kind: token.String, Value: value, Line: line, Column: col})
			col += len(value)
		case "HEX":
			out = append(out, token.Token{Kind: token.Int, Value: value, Line: line, Column: col})
			col += len(value)
		case "FLOAT":
			out = append(out, token.Token{Kind: token.Float, Value: value, Line: line, Column: col})
			col += len(value)
		case "INT":
			out = append(out, token.Token{Kind: token.Int, Value: value, Line: line, Column: col})
			col += len(value)
		case "OPERATOR":
			out = append(out, token.Token{Kind: token.Operator, Value: value, Line: line, Column: col})
			col += len(value)
		case "IDENTIFIER":
			out = append(out, token.Token{Kind: token.Identifier, Value: value, Line: line, Column: col})
			col += len(value)
		}
	}

	out = append(out, token.Token{Kind: token.EOF, Value: "", Line: line, Column: col})
	return out
}

func matchedGroup(m []int) (name string, start, end int) {
	for i := 2; i < len(m); i += 2 {
		if m[i] == -1 {
			continue
		}
		return groupNames[i/2], m[i], m[i+1]
	}
	return "", 0, 0
}

// StripFormHeader removes the GUI header that precedes the first
// `Attribute VB_Name` line in an exported .frm file, matching the Python
// original's regex-based header strip in main.py.
func StripFormHeader(content string) string {
	idx := formHeaderPattern.FindStringIndex(content)
	if idx == nil {
		return content
	}
	return content[idx[0]:]
}

var formHeaderPattern = regexp.MustCompile(`(?m)Attribute\s+VB_Name`)
