// Package objectmodel loads and merges the VBA host object model: the
// globals, classes, enums, and library references an analysis run
// resolves identifiers against. It is a structural port of
// original_source/src/config.py's Config.load_model/load_standard_model,
// generalized so a project can layer its own JSON model(s) over the
// embedded standard one.
package objectmodel

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/pkg/errors"
)

// Member describes one field or method of a Class.
type Member struct {
	Type string `json:"type"`
}

// Class describes a host object type: its members and, optionally, its
// default ("Item") member used when a class instance is indexed or
// dereferenced without an explicit member name.
type Class struct {
	Members        map[string]Member `json:"members"`
	DefaultMember  string             `json:"defaultMember,omitempty"`
}

// Global describes a predeclared identifier injected directly into the
// global scope (e.g. Debug, Application, ThisWorkbook). MinArgs/MaxArgs,
// when present, make the global a callable signature that argument-count
// validation checks against (see internal/analyzer).
type Global struct {
	Type    string `json:"type"`
	Returns string `json:"returns,omitempty"`
	MinArgs *int   `json:"min_args,omitempty"`
	MaxArgs *int   `json:"max_args,omitempty"`
}

// TypeName returns Returns if set, else Type, else "Variant" - globals
// may describe their resolved type under either key (the schema accepts
// "returns" for callables and "type" for plain values).
func (g Global) TypeName() string {
	if g.Returns != "" {
		return g.Returns
	}
	if g.Type != "" {
		return g.Type
	}
	return "Variant"
}

// Reference describes an external type library entry (e.g. "Excel",
// "Scripting.FileSystemObject"); references are tracked by name only,
// each resolving to an opaque Object in the global scope.
type Reference struct {
	Name string `json:"name"`
	GUID string `json:"guid,omitempty"`
}

// Model is the merged object model: case-insensitive maps keyed by
// lower-cased identifier, plus a reference list deduped by name.
type Model struct {
	Globals    map[string]Global
	Classes    map[string]Class
	Enums      map[string]map[string]string
	EnumOrder  []string // enum names (lower-cased) in first-merge order
	References []Reference
}

// document is the on-disk JSON shape, matching the Python config's
// {"globals": ..., "classes": ..., "enums": ..., "references": [...]}.
type document struct {
	Globals    map[string]Global            `json:"globals"`
	Classes    map[string]Class             `json:"classes"`
	Enums      map[string]map[string]string `json:"enums"`
	References []Reference                  `json:"references"`
}

//go:embed standard.json
var standardModelJSON []byte

// New returns a Model preloaded with the embedded standard object model.
func New() *Model {
	m := &Model{
		Globals: map[string]Global{},
		Classes: map[string]Class{},
		Enums:   map[string]map[string]string{},
	}
	if err := m.mergeJSON(standardModelJSON); err != nil {
		panic(fmt.Sprintf("objectmodel: embedded standard.json is invalid: %v", err))
	}
	return m
}

// LoadFile merges an external JSON object model file into m, on top of
// whatever is already loaded (later files win for globals/enums;
// class members accumulate; references dedupe by name). A file with none
// of the globals, classes, enums or references sections is rejected.
func (m *Model) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrapf(err, "objectmodel: read %s", path)
	}
	if err := m.mergeJSON(data); err != nil {
		return errors.Wrapf(err, "objectmodel: parse %s", path)
	}
	return nil
}

func (m *Model) mergeJSON(data []byte) error {
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return err
	}
	if doc.Globals == nil && doc.Classes == nil && doc.Enums == nil && doc.References == nil {
		return errors.New("no globals, classes, enums or references section")
	}

	for name, defn := range doc.Globals {
		m.Globals[strings.ToLower(name)] = defn
	}

	for name, cls := range doc.Classes {
		key := strings.ToLower(name)
		existing, ok := m.Classes[key]
		if !ok {
			m.Classes[key] = cls
			continue
		}
		if existing.Members == nil {
			existing.Members = map[string]Member{}
		}
		for mName, mDef := range cls.Members {
			existing.Members[mName] = mDef
		}
		if cls.DefaultMember != "" {
			existing.DefaultMember = cls.DefaultMember
		}
		m.Classes[key] = existing
	}

	existingRefNames := map[string]bool{}
	for _, r := range m.References {
		existingRefNames[r.Name] = true
	}
	for _, r := range doc.References {
		if !existingRefNames[r.Name] {
			m.References = append(m.References, r)
			existingRefNames[r.Name] = true
		}
	}

	for name, members := range doc.Enums {
		key := strings.ToLower(name)
		if _, ok := m.Enums[key]; !ok {
			m.EnumOrder = append(m.EnumOrder, key)
		}
		m.Enums[key] = members
	}

	return nil
}

// GetGlobal returns the Global definition for name, case-insensitively.
func (m *Model) GetGlobal(name string) (Global, bool) {
	g, ok := m.Globals[strings.ToLower(name)]
	return g, ok
}

// GetClass returns the Class definition for name, case-insensitively.
func (m *Model) GetClass(name string) (Class, bool) {
	c, ok := m.Classes[strings.ToLower(name)]
	return c, ok
}

// ResolveEnumMember returns the underlying value of an enum member name,
// searching every enum in the model, case-insensitively - mirroring
// Config.resolve_enum's linear scan. A member name declared in more than
// one enum is ambiguous in the original too (Python dict iteration order
// is incidental there); this port makes the tie-break deterministic by
// walking enums in merge order (EnumOrder) and returning the first match.
func (m *Model) ResolveEnumMember(name string) (string, bool) {
	lower := strings.ToLower(name)
	for _, enumKey := range m.EnumOrder {
		for mName, mVal := range m.Enums[enumKey] {
			if strings.ToLower(mName) == lower {
				return mVal, true
			}
		}
	}
	return "", false
}
