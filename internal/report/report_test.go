package report

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kestrelcode/vbalint/internal/diagnostic"
)

func TestNewSummarizesIssueCount(t *testing.T) {
	items := []diagnostic.Diagnostic{
		{File: "Module1.bas", Line: 3, Message: "x is not defined", Severity: diagnostic.SeverityError},
		{File: "Module1.bas", Line: 9, Message: "unreachable code", Severity: diagnostic.SeverityWarning},
	}

	r := New("Acme", 5, items)

	assert.Equal(t, "Acme", r.ProjectName)
	assert.Equal(t, 5, r.Summary.FilesScanned)
	assert.Equal(t, 2, r.Summary.IssuesFound)
	assert.Len(t, r.Issues, 2)
	assert.Equal(t, Issue{File: "Module1.bas", Line: 3, Message: "x is not defined"}, r.Issues[0])
	assert.NotEmpty(t, r.RunID)
}

func TestWriteJSONProducesValidDocument(t *testing.T) {
	items := []diagnostic.Diagnostic{
		{File: "Module1.bas", Line: 3, Message: "x is not defined", Severity: diagnostic.SeverityError},
	}
	path := filepath.Join(t.TempDir(), "report.json")

	assert.NoError(t, New("Acme", 1, items).WriteJSON(path))

	data, err := os.ReadFile(path)
	assert.NoError(t, err)

	var decoded map[string]interface{}
	assert.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "Acme", decoded["project_name"])
	summary := decoded["summary"].(map[string]interface{})
	assert.Equal(t, float64(1), summary["files_scanned"])
	assert.Equal(t, float64(1), summary["issues_found"])
}

func TestWriteConsoleListsEachIssueAndASummaryLine(t *testing.T) {
	items := []diagnostic.Diagnostic{
		{File: "Module1.bas", Line: 3, Message: "x is not defined", Severity: diagnostic.SeverityError},
	}

	var buf bytes.Buffer
	WriteConsole(&buf, items)

	out := buf.String()
	assert.Contains(t, out, "Module1.bas:3: x is not defined")
	assert.Contains(t, out, "1 issue(s) found")
}
