package runner

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kestrelcode/vbalint/internal/diagnostic"
)

func TestRunAnalyzesEveryDiscoveredModule(t *testing.T) {
	dir := t.TempDir()
	assert.NoError(t, os.WriteFile(filepath.Join(dir, "Module1.bas"), []byte(
		"Attribute VB_Name = \"Module1\"\n"+
			"Sub Foo()\n"+
			"Dim total As Long\n"+
			"total = Missing + 1\n"+
			"End Sub\n"), 0o644))

	items, filesScanned, err := Run(context.Background(), Options{Root: dir})
	assert.NoError(t, err)
	assert.Equal(t, 1, filesScanned)

	var messages []string
	for _, d := range items {
		messages = append(messages, d.Message)
	}
	assert.Contains(t, messages, "Missing is not defined")
}

func TestRunSkipsReanalysisWhenCacheHits(t *testing.T) {
	dir := t.TempDir()
	source := "Attribute VB_Name = \"Module1\"\nSub Foo()\nx = Missing\nEnd Sub\n"
	assert.NoError(t, os.WriteFile(filepath.Join(dir, "Module1.bas"), []byte(source), 0o644))

	cachePath := filepath.Join(t.TempDir(), "cache.db")

	first, _, err := Run(context.Background(), Options{Root: dir, CachePath: cachePath})
	assert.NoError(t, err)
	assert.NotEmpty(t, first)

	second, _, err := Run(context.Background(), Options{Root: dir, CachePath: cachePath})
	assert.NoError(t, err)

	firstMessages := messagesOf(first)
	secondMessages := messagesOf(second)
	assert.ElementsMatch(t, firstMessages, secondMessages)
}

func messagesOf(items []diagnostic.Diagnostic) []string {
	var out []string
	for _, d := range items {
		out = append(out, d.Message)
	}
	return out
}
