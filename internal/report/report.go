// Package report formats an analysis run's diagnostics for output: a
// machine-readable JSON report (via jsoniter, matching the teacher
// pack's json-iterator/go dependency) and a colored console summary
// (fatih/color gated on go-isatty, so piped/CI output stays plain).
package report

import (
	"fmt"
	"io"
	"os"

	jsoniter "github.com/json-iterator/go"
	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/mattn/go-isatty"

	"github.com/kestrelcode/vbalint/internal/diagnostic"
)

var jsonAPI = jsoniter.ConfigCompatibleWithStandardLibrary

// Summary totals a run for the JSON report's "summary" section.
type Summary struct {
	FilesScanned int `json:"files_scanned"`
	IssuesFound  int `json:"issues_found"`
}

// Issue is one reported diagnostic in the JSON report's flat "issues"
// list.
type Issue struct {
	File    string `json:"file"`
	Line    int    `json:"line"`
	Message string `json:"message"`
}

// Report is the full JSON document a run emits: a run identifier, the
// project it scanned, the summary totals, and the flat issue list.
type Report struct {
	RunID       string  `json:"run_id"`
	ProjectName string  `json:"project_name,omitempty"`
	Summary     Summary `json:"summary"`
	Issues      []Issue `json:"issues"`
}

// New builds a Report from a run's diagnostics. filesScanned is passed
// in separately since the diagnostic buffer only knows about files
// that produced at least one finding.
func New(projectName string, filesScanned int, items []diagnostic.Diagnostic) *Report {
	issues := make([]Issue, 0, len(items))
	for _, d := range items {
		issues = append(issues, Issue{File: d.File, Line: d.Line, Message: d.Message})
	}
	return &Report{
		RunID:       uuid.NewString(),
		ProjectName: projectName,
		Summary: Summary{
			FilesScanned: filesScanned,
			IssuesFound:  len(issues),
		},
		Issues: issues,
	}
}

// WriteJSON encodes r as indented JSON to path.
func (r *Report) WriteJSON(path string) error {
	data, err := jsonAPI.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("report: encode: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// WriteConsole writes items to w as "file:line: message" lines
// followed by a summary line, coloring findings and the summary count
// when w is a terminal.
func WriteConsole(w io.Writer, items []diagnostic.Diagnostic) {
	useColor := false
	if f, ok := w.(*os.File); ok {
		useColor = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}

	errColor := color.New(color.FgRed)
	warnColor := color.New(color.FgYellow)
	boldColor := color.New(color.Bold)

	for _, d := range items {
		line := fmt.Sprintf("%s:%d: %s", d.File, d.Line, d.Message)
		if !useColor {
			fmt.Fprintln(w, line)
			continue
		}
		if d.Severity == diagnostic.SeverityWarning {
			warnColor.Fprintln(w, line)
		} else {
			errColor.Fprintln(w, line)
		}
	}

	summary := fmt.Sprintf("%d issue(s) found", len(items))
	if useColor {
		boldColor.Fprintln(w, summary)
	} else {
		fmt.Fprintln(w, summary)
	}
}
