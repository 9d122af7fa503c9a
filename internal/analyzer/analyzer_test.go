package analyzer

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kestrelcode/vbalint/internal/diagnostic"
	"github.com/kestrelcode/vbalint/internal/lexer"
	"github.com/kestrelcode/vbalint/internal/objectmodel"
	"github.com/kestrelcode/vbalint/internal/parser"
)

func analyzeSource(t *testing.T, moduleType, fileName, code string) *diagnostic.Buffer {
	t.Helper()
	toks := lexer.New(code).Tokenize()
	p := parser.New(toks, fileName)
	module := p.ParseModule(moduleType)
	assert.Empty(t, p.Errors, "unexpected syntax errors: %v", p.Errors)

	a := New(objectmodel.New())
	a.AddModule(module)
	return a.Analyze()
}

func messages(buf *diagnostic.Buffer) []string {
	var out []string
	for _, d := range buf.Items() {
		out = append(out, d.Message)
	}
	return out
}

func TestAnalyzeUndefinedIdentifier(t *testing.T) {
	buf := analyzeSource(t, "Module", "Module1.bas",
		"Sub S()\nx = Undeclared + 1\nEnd Sub\n")

	found := false
	for _, m := range messages(buf) {
		if m == "Undeclared is not defined" {
			found = true
		}
	}
	assert.True(t, found, "expected undefined-identifier diagnostic, got %v", messages(buf))
}

func TestAnalyzeMemberNotFoundStopsChainAtFirstFailure(t *testing.T) {
	buf := analyzeSource(t, "Module", "Module1.bas",
		"Sub S()\nCreateObject(\"Scripting.Dictionary\").Bogus.AlsoBogus = 1\nEnd Sub\n")

	count := 0
	for _, m := range messages(buf) {
		if m == "Bogus is not a member of Dictionary" {
			count++
		}
	}
	assert.Equal(t, 1, count, "expected exactly one member-not-found diagnostic, got %v", messages(buf))
}

func TestAnalyzeOrphanDotAfterWith(t *testing.T) {
	buf := analyzeSource(t, "Module", "Module1.bas",
		"Sub S()\nWith Err\n.Number = 1\nEnd With\n.Number = 2\nEnd Sub\n")

	found := false
	for _, m := range messages(buf) {
		if m == "'.' has no enclosing With block" {
			found = true
		}
	}
	assert.True(t, found, "expected orphan-dot diagnostic, got %v", messages(buf))
}

func TestAnalyzeUnreachableCodeAfterExitSub(t *testing.T) {
	buf := analyzeSource(t, "Module", "Module1.bas",
		"Sub S()\nExit Sub\nDebug.Print \"never\"\nEnd Sub\n")

	found := false
	for _, d := range buf.Items() {
		if d.Severity == diagnostic.SeverityWarning && d.Message == "unreachable code" {
			found = true
		}
	}
	assert.True(t, found, "expected unreachable-code warning, got %v", messages(buf))
}

func TestAnalyzeSingleLineIfJumpDoesNotMakeLaterFragmentsUnreachable(t *testing.T) {
	buf := analyzeSource(t, "Module", "Module1.bas",
		"Sub S()\nDim y As Long\nIf True Then GoTo Skip: y = 1\nSkip:\nEnd Sub\n")

	for _, d := range buf.Items() {
		assert.NotEqual(t, "unreachable code", d.Message, "single-line-If fragments must not be flagged unreachable")
	}
}

func TestAnalyzeArgumentCountDiagnostics(t *testing.T) {
	buf := analyzeSource(t, "Module", "Module1.bas",
		"Sub S()\nMsgBox\nEnd Sub\n")

	found := false
	for _, m := range messages(buf) {
		if m == "MsgBox requires at least 1 argument(s)" {
			found = true
		}
	}
	assert.True(t, found, "expected min-argument diagnostic, got %v", messages(buf))
}

func TestAnalyzeFormImplicitControlHeuristicProducesNoDiagnostics(t *testing.T) {
	buf := analyzeSource(t, "Form", "Form1.frm",
		"Sub S()\nCommandButton1.Caption = \"Go\"\nEnd Sub\n")

	assert.Empty(t, buf.Items(), "Form implicit-control references should never be flagged, got %v", messages(buf))
}

func TestProcessDimRegistersDeclaredNames(t *testing.T) {
	buf := analyzeSource(t, "Module", "Module1.bas",
		"Sub S()\nDim total As Long\ntotal = total + 1\nDim again As Long, alreadyUsed As Long\nEnd Sub\n")

	for _, m := range messages(buf) {
		assert.NotEqual(t, "total is not defined", m)
	}
}

func TestAnalyzeEnumMemberResolvesAsLong(t *testing.T) {
	buf := analyzeSource(t, "Module", "Module1.bas",
		"Sub S()\nx = vbYesNo\nEnd Sub\n")

	for _, m := range messages(buf) {
		assert.NotEqual(t, "vbYesNo is not defined", m)
	}
}
