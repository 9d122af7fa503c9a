package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kestrelcode/vbalint/internal/preprocessor"
)

func TestLoadMissingFileReturnsZeroValue(t *testing.T) {
	f, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.NoError(t, err)
	assert.Equal(t, &File{}, f)
}

func TestLoadParsesYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".vbalint.yaml")
	content := "model: model.json\ncache: .vbalint-cache.db\nexclude:\n  - vendor/**\ndefines:\n  DEBUG: \"true\"\n"
	assert.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	f, err := Load(path)
	assert.NoError(t, err)
	assert.Equal(t, "model.json", f.Model)
	assert.Equal(t, ".vbalint-cache.db", f.Cache)
	assert.Equal(t, []string{"vendor/**"}, f.Exclude)
	assert.Equal(t, "true", f.Defines["DEBUG"])
}

func TestParseDefines(t *testing.T) {
	testCases := []struct {
		description string
		raw         string
		expect      map[string]preprocessor.Value
	}{
		{
			description: "empty input yields empty map",
			raw:         "",
			expect:      map[string]preprocessor.Value{},
		},
		{
			description: "bool coercion is case-insensitive",
			raw:         "DEBUG=True,RELEASE=false",
			expect: map[string]preprocessor.Value{
				"DEBUG":   preprocessor.BoolValue(true),
				"RELEASE": preprocessor.BoolValue(false),
			},
		},
		{
			description: "integer literal becomes an int",
			raw:         "version=7",
			expect: map[string]preprocessor.Value{
				"VERSION": preprocessor.IntValue(7),
			},
		},
		{
			description: "anything else stays a string, key uppercased",
			raw:         "target=win32",
			expect: map[string]preprocessor.Value{
				"TARGET": preprocessor.StringValue("win32"),
			},
		},
	}

	for _, tc := range testCases {
		got, err := ParseDefines(tc.raw)
		assert.NoError(t, err, tc.description)
		assert.Equal(t, tc.expect, got, tc.description)
	}
}

func TestParseDefinesRejectsMalformedPair(t *testing.T) {
	_, err := ParseDefines("NOVALUE")
	assert.Error(t, err)
}
