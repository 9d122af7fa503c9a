package project

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetectFindsVbalintYAMLMarker(t *testing.T) {
	root := t.TempDir()
	assert.NoError(t, os.WriteFile(filepath.Join(root, ".vbalint.yaml"), []byte("model: m.json\n"), 0o644))

	sub := filepath.Join(root, "src", "forms")
	assert.NoError(t, os.MkdirAll(sub, 0o755))

	info, err := Detect(sub)
	assert.NoError(t, err)

	absRoot, _ := filepath.Abs(root)
	assert.Equal(t, absRoot, info.RootPath)
	assert.Equal(t, filepath.Base(absRoot), info.Name)
}

func TestDetectFallsBackToScannedDirName(t *testing.T) {
	root := t.TempDir()

	info, err := Detect(root)
	assert.NoError(t, err)

	absRoot, _ := filepath.Abs(root)
	assert.Equal(t, absRoot, info.RootPath)
	assert.Equal(t, filepath.Base(absRoot), info.Name)
}
