package discover

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsSourceFile(t *testing.T) {
	assert.True(t, IsSourceFile("Module1.bas"))
	assert.True(t, IsSourceFile("Class1.CLS"))
	assert.True(t, IsSourceFile("Form1.frm"))
	assert.False(t, IsSourceFile("readme.txt"))
}

func TestScanParsesEveryModuleInADirectory(t *testing.T) {
	dir := t.TempDir()
	assert.NoError(t, os.WriteFile(filepath.Join(dir, "Module1.bas"), []byte(
		"Attribute VB_Name = \"Module1\"\nSub Foo()\nDim x As Long\nx = 1\nEnd Sub\n"), 0o644))
	assert.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("not VBA"), 0o644))

	results, err := Scan(context.Background(), dir, Options{})
	assert.NoError(t, err)
	assert.Len(t, results, 1)
	assert.Equal(t, "Module1", results[0].Module.Name)
	assert.Equal(t, "Module", results[0].Module.ModuleType)
}
