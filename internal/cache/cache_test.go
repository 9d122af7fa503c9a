package cache

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kestrelcode/vbalint/internal/diagnostic"
)

func TestStoreThenLookupRoundTrips(t *testing.T) {
	c, err := Open(filepath.Join(t.TempDir(), "cache.db"))
	assert.NoError(t, err)
	defer c.Close()

	items := []diagnostic.Diagnostic{
		{File: "Module1.bas", Line: 3, Message: "x is not defined", Severity: diagnostic.SeverityError},
	}
	assert.NoError(t, c.Store("Module1.bas", "fp-1", items))

	got, ok := c.Lookup("Module1.bas", "fp-1")
	assert.True(t, ok)
	assert.Equal(t, items, got)
}

func TestLookupMissesOnFingerprintChange(t *testing.T) {
	c, err := Open(filepath.Join(t.TempDir(), "cache.db"))
	assert.NoError(t, err)
	defer c.Close()

	assert.NoError(t, c.Store("Module1.bas", "fp-1", nil))

	_, ok := c.Lookup("Module1.bas", "fp-2")
	assert.False(t, ok)
}

func TestStoreOverwritesPriorEntry(t *testing.T) {
	c, err := Open(filepath.Join(t.TempDir(), "cache.db"))
	assert.NoError(t, err)
	defer c.Close()

	assert.NoError(t, c.Store("Module1.bas", "fp-1", []diagnostic.Diagnostic{{File: "Module1.bas", Line: 1, Message: "old"}}))
	assert.NoError(t, c.Store("Module1.bas", "fp-2", []diagnostic.Diagnostic{{File: "Module1.bas", Line: 2, Message: "new"}}))

	got, ok := c.Lookup("Module1.bas", "fp-2")
	assert.True(t, ok)
	assert.Equal(t, "new", got[0].Message)
}
