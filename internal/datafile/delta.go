package datafile

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/specialistvlad/dataflowgo/internal/model"
	"github.com/zclconf/go-cty/cty"
	ctyjson "github.com/zclconf/go-cty/cty/json"
	"gopkg.in/yaml.v3"
)

// LoadDelta reads a YAML (.yaml, .yml) or JSON (.json) file into a delta.
// Items are ordered by name.
func LoadDelta(path string) (model.DataDelta, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read data file: %w", err)
	}

	doc := map[string]any{}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(raw, &doc)
	case ".json":
		err = json.Unmarshal(raw, &doc)
	default:
		return nil, fmt.Errorf("data file %s: unsupported extension %q", path, ext)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to decode data file %s: %w", path, err)
	}

	names := make([]string, 0, len(doc))
	for name := range doc {
		names = append(names, name)
	}
	sort.Strings(names)

	delta := make(model.DataDelta, 0, len(names))
	for _, name := range names {
		val, err := valueFromGo(doc[name])
		if err != nil {
			return nil, fmt.Errorf("data file %s: item %q: %w", path, name, err)
		}
		delta = append(delta, model.NewData(name, val))
	}
	return delta, nil
}

// ParseSet parses a "name=value" assignment. The value is read as a YAML
// scalar or flow collection, so "3" is a number, "true" a bool and
// "[a, b]" a tuple. Anything else is a string.
func ParseSet(assignment string) (*model.Data, error) {
	name, rawValue, ok := strings.Cut(assignment, "=")
	name = strings.TrimSpace(name)
	if !ok || name == "" {
		return nil, fmt.Errorf("invalid assignment %q, expected name=value", assignment)
	}

	var decoded any
	if err := yaml.Unmarshal([]byte(rawValue), &decoded); err != nil {
		return model.StringData(name, rawValue), nil
	}
	if decoded == nil && strings.TrimSpace(rawValue) == "" {
		return model.StringData(name, rawValue), nil
	}
	val, err := valueFromGo(decoded)
	if err != nil {
		return nil, fmt.Errorf("assignment %q: %w", assignment, err)
	}
	return model.NewData(name, val), nil
}

// ParseSets parses every assignment. Later assignments to the same name win.
func ParseSets(assignments []string) (model.DataDelta, error) {
	var delta model.DataDelta
	index := map[string]int{}
	for _, a := range assignments {
		d, err := ParseSet(a)
		if err != nil {
			return nil, err
		}
		if i, seen := index[d.Name]; seen {
			delta[i] = d
			continue
		}
		index[d.Name] = len(delta)
		delta = append(delta, d)
	}
	return delta, nil
}

// valueFromGo converts decoded YAML/JSON data into a cty value by way of
// its JSON encoding, so both formats share cty's implied-type rules.
func valueFromGo(v any) (cty.Value, error) {
	if v == nil {
		return cty.NullVal(cty.DynamicPseudoType), nil
	}
	buf, err := json.Marshal(v)
	if err != nil {
		return cty.NilVal, err
	}
	ty, err := ctyjson.ImpliedType(buf)
	if err != nil {
		return cty.NilVal, err
	}
	return ctyjson.Unmarshal(buf, ty)
}
