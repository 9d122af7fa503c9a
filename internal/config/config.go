// Package config loads the project-level .vbalint.yaml configuration
// file and parses the --define KEY=VALUE,... CLI flag, grounded on
// original_source/src/config.py's Config.parse_defines and the
// teacher pack's gopkg.in/yaml.v3 dependency for the file layer.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/kestrelcode/vbalint/internal/preprocessor"
)

// File is the shape of a .vbalint.yaml project configuration.
type File struct {
	Model   string            `yaml:"model"`
	Defines map[string]string `yaml:"defines"`
	Exclude []string          `yaml:"exclude"`
	Cache   string            `yaml:"cache"`
}

// Load reads and parses a .vbalint.yaml file at path. A missing file is
// not an error - it returns a zero-value File, since every field is
// optional and overridable from the command line.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &File{}, nil
		}
		return nil, errors.Wrapf(err, "config: read %s", path)
	}
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, errors.Wrapf(err, "config: parse %s", path)
	}
	return &f, nil
}

// ParseDefines parses a comma-separated KEY=VALUE list (the --define
// flag, or a .vbalint.yaml defines: map already split into key/value
// pairs) into preprocessor values, matching Config.parse_defines: keys
// are upper-cased, and a value of "true"/"false" (case-insensitively)
// becomes a bool, an integer literal becomes an int, and anything else
// is kept as a string.
func ParseDefines(raw string) (map[string]preprocessor.Value, error) {
	out := map[string]preprocessor.Value{}
	if strings.TrimSpace(raw) == "" {
		return out, nil
	}
	for _, pair := range strings.Split(raw, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		parts := strings.SplitN(pair, "=", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("config: malformed define %q, expected KEY=VALUE", pair)
		}
		key := strings.ToUpper(strings.TrimSpace(parts[0]))
		out[key] = coerce(strings.TrimSpace(parts[1]))
	}
	return out, nil
}

func coerce(value string) preprocessor.Value {
	switch strings.ToLower(value) {
	case "true":
		return preprocessor.BoolValue(true)
	case "false":
		return preprocessor.BoolValue(false)
	}
	if i, err := strconv.Atoi(value); err == nil {
		return preprocessor.IntValue(i)
	}
	return preprocessor.StringValue(value)
}
