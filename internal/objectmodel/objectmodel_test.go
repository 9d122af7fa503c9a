package objectmodel

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewLoadsEmbeddedStandardModel(t *testing.T) {
	m := New()

	g, ok := m.GetGlobal("debug")
	assert.True(t, ok)
	assert.Equal(t, "Debug", g.Type)

	cls, ok := m.GetClass("Collection")
	assert.True(t, ok)
	assert.Equal(t, "Item", cls.DefaultMember)
	_, hasAdd := cls.Members["Add"]
	assert.True(t, hasAdd)

	val, ok := m.ResolveEnumMember("vbYesNo")
	assert.True(t, ok)
	assert.Equal(t, "4", val)
}

func TestLoadFileMergesOverStandardModel(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "project.json")
	err := os.WriteFile(path, []byte(`{
		"classes": {
			"Collection": { "members": { "Custom": { "type": "String" } } },
			"MyClass": { "members": { "Foo": { "type": "Long" } } }
		},
		"globals": { "MyGlobal": { "type": "MyClass" } },
		"references": [ { "name": "VBA" }, { "name": "MyLib" } ]
	}`), 0o644)
	assert.NoError(t, err)

	m := New()
	assert.NoError(t, m.LoadFile(path))

	cls, ok := m.GetClass("collection")
	assert.True(t, ok)
	_, hasAdd := cls.Members["Add"]
	assert.True(t, hasAdd, "existing members survive the merge")
	_, hasCustom := cls.Members["Custom"]
	assert.True(t, hasCustom, "new members are added")

	_, ok = m.GetClass("myclass")
	assert.True(t, ok)

	g, ok := m.GetGlobal("MyGlobal")
	assert.True(t, ok)
	assert.Equal(t, "MyClass", g.Type)

	assert.Len(t, m.References, 3, "VBA reference deduped, MyLib added")
}
