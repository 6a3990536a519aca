// Package config loads and validates the configuration file that drives a
// conversion run. The document may be written in YAML or JSON (YAML is a
// superset). It is first decoded generically and checked against a declared
// schema; unknown keys and type mismatches are reported as warnings with
// best-effort coercion, missing required keys are fatal.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/ghodss/yaml"

	"github.com/notargets/inp2feap/logging"
	"github.com/notargets/inp2feap/mesh"
	"github.com/notargets/inp2feap/writers"
)

// Config is the validated, typed form of a configuration file.
type Config struct {
	Input  string // .inp file to read mesh data from
	Output string // FEAP input file to write

	NodesPerElement int    // 0 = determine from the first element
	Header          string // optional file inserted before the coor block
	Footer          string // optional file appended after all mesh data
	CenterMesh      bool

	Elsets      []mesh.ElsetEdit
	Nsets       []mesh.NsetEdit
	CustomInput []writers.CustomBlock

	// Dir is the directory of the configuration file. Input, Header and
	// Footer resolve against it; Output resolves against the working
	// directory.
	Dir string
}

// fieldKind is the expected shape of a configuration value.
type fieldKind int

const (
	kindString fieldKind = iota
	kindInt
	kindBool
	kindIntList
	kindStringList
	kindBlockList // list of objects validated against a child schema
)

// schema declares the recognized keys of one object level: the expected
// kind per key and which keys must be present.
type schema struct {
	context  string
	fields   map[string]fieldKind
	required []string
}

var topSchema = schema{
	context: "config file",
	fields: map[string]fieldKind{
		"input":           kindString,
		"output":          kindString,
		"nodesPerElement": kindInt,
		"header":          kindString,
		"footer":          kindString,
		"centerMesh":      kindBool,
		"elsets":          kindBlockList,
		"nsets":           kindBlockList,
		"customInput":     kindBlockList,
	},
	required: []string{"input", "output"},
}

var elsetSchema = schema{
	context: "elset",
	fields: map[string]fieldKind{
		"name":               kindString,
		"materialNumber":     kindInt,
		"duplicateMaterials": kindIntList,
	},
	required: []string{"name"},
}

var nsetSchema = schema{
	context: "nset",
	fields: map[string]fieldKind{
		"name":         kindString,
		"boundaryCard": kindString,
		"loadCard":     kindString,
	},
	required: []string{"name"},
}

var customInputSchema = schema{
	context: "custom input",
	fields: map[string]fieldKind{
		"block":    kindString,
		"position": kindInt,
		"cards":    kindStringList,
	},
	required: []string{"block", "position", "cards"},
}

// Load reads, validates and coerces the configuration file at path.
func Load(path string) (*Config, error) {
	logger := logging.GetLogger("config")

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var raw map[string]interface{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("couldn't parse config file %s: %w", path, err)
	}

	if err := topSchema.check(raw); err != nil {
		return nil, err
	}

	cfg := &Config{Dir: filepath.Dir(path)}
	for key, value := range raw {
		if _, known := topSchema.fields[key]; !known {
			continue // already warned by check
		}
		switch key {
		case "input":
			cfg.Input = coerceString(value, topSchema.context, key)
		case "output":
			cfg.Output = coerceString(value, topSchema.context, key)
		case "header":
			cfg.Header = coerceString(value, topSchema.context, key)
		case "footer":
			cfg.Footer = coerceString(value, topSchema.context, key)
		case "nodesPerElement":
			cfg.NodesPerElement = coerceInt(value, topSchema.context, key)
		case "centerMesh":
			cfg.CenterMesh = coerceBool(value, topSchema.context, key)
		case "elsets":
			if cfg.Elsets, err = parseElsets(value); err != nil {
				return nil, err
			}
		case "nsets":
			if cfg.Nsets, err = parseNsets(value); err != nil {
				return nil, err
			}
		case "customInput":
			if cfg.CustomInput, err = parseCustomInput(value); err != nil {
				return nil, err
			}
		}
	}

	for _, key := range []*string{&cfg.Input, &cfg.Header, &cfg.Footer} {
		if *key != "" && !filepath.IsAbs(*key) {
			*key = filepath.Join(cfg.Dir, *key)
		}
	}

	sort.SliceStable(cfg.CustomInput, func(i, j int) bool {
		return cfg.CustomInput[i].Position < cfg.CustomInput[j].Position
	})

	logger.Info().Str("file", path).
		Int("nsets", len(cfg.Nsets)).Int("elsets", len(cfg.Elsets)).
		Int("customInput", len(cfg.CustomInput)).
		Msg("Parsed config file")

	return cfg, nil
}

// check warns about unknown keys and fails on missing required ones.
func (s schema) check(obj map[string]interface{}) error {
	logger := logging.GetLogger("config")
	for _, key := range s.required {
		if _, ok := obj[key]; !ok {
			return fmt.Errorf("required parameter %q not found in %s", key, s.context)
		}
	}
	for key := range obj {
		if _, ok := s.fields[key]; !ok {
			logger.Warn().Str("key", key).Str("in", s.context).Msg("Unknown parameter will be ignored")
		}
	}
	return nil
}

func parseElsets(value interface{}) ([]mesh.ElsetEdit, error) {
	items, err := blockList(value, elsetSchema)
	if err != nil {
		return nil, err
	}
	edits := make([]mesh.ElsetEdit, 0, len(items))
	for _, item := range items {
		edit := mesh.ElsetEdit{Name: coerceString(item["name"], elsetSchema.context, "name"), MatNum: 1}
		if v, ok := item["materialNumber"]; ok {
			edit.MatNum = coerceInt(v, elsetSchema.context, "materialNumber")
		}
		if v, ok := item["duplicateMaterials"]; ok {
			edit.Duplicate = coerceIntList(v, elsetSchema.context, "duplicateMaterials")
		}
		edits = append(edits, edit)
	}
	return edits, nil
}

func parseNsets(value interface{}) ([]mesh.NsetEdit, error) {
	items, err := blockList(value, nsetSchema)
	if err != nil {
		return nil, err
	}
	edits := make([]mesh.NsetEdit, 0, len(items))
	for _, item := range items {
		edit := mesh.NsetEdit{Name: coerceString(item["name"], nsetSchema.context, "name")}
		if v, ok := item["boundaryCard"]; ok {
			edit.BoundaryCard = coerceString(v, nsetSchema.context, "boundaryCard")
		}
		if v, ok := item["loadCard"]; ok {
			edit.LoadCard = coerceString(v, nsetSchema.context, "loadCard")
		}
		edits = append(edits, edit)
	}
	return edits, nil
}

func parseCustomInput(value interface{}) ([]writers.CustomBlock, error) {
	items, err := blockList(value, customInputSchema)
	if err != nil {
		return nil, err
	}
	blocks := make([]writers.CustomBlock, 0, len(items))
	for _, item := range items {
		blocks = append(blocks, writers.CustomBlock{
			Block:    coerceString(item["block"], customInputSchema.context, "block"),
			Position: coerceInt(item["position"], customInputSchema.context, "position"),
			Cards:    coerceStringList(item["cards"], customInputSchema.context, "cards"),
		})
	}
	return blocks, nil
}

// blockList validates a list-of-objects value against its child schema.
func blockList(value interface{}, s schema) ([]map[string]interface{}, error) {
	list, ok := value.([]interface{})
	if !ok {
		// A single object is accepted where a list is expected.
		if obj, ok := value.(map[string]interface{}); ok {
			list = []interface{}{obj}
		} else {
			return nil, fmt.Errorf("expected a list of %s entries, got %T", s.context, value)
		}
	}
	items := make([]map[string]interface{}, 0, len(list))
	for _, entry := range list {
		obj, ok := entry.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("expected a %s object, got %T", s.context, entry)
		}
		if err := s.check(obj); err != nil {
			return nil, err
		}
		items = append(items, obj)
	}
	return items, nil
}

// The coerce helpers implement best-effort conversion of a decoded value to
// the schema's expected kind, warning on every mismatch.

func warnType(context, key string, value interface{}) {
	logger := logging.GetLogger("config")
	logger.Warn().
		Str("key", key).Str("in", context).Str("type", fmt.Sprintf("%T", value)).
		Msg("Unsupported type for parameter")
}

func coerceString(value interface{}, context, key string) string {
	switch v := value.(type) {
	case string:
		return v
	case nil:
		warnType(context, key, value)
		return ""
	default:
		warnType(context, key, value)
		return fmt.Sprintf("%v", v)
	}
}

func coerceInt(value interface{}, context, key string) int {
	switch v := value.(type) {
	case float64: // all JSON/YAML numbers decode as float64
		if v != float64(int(v)) {
			warnType(context, key, value)
		}
		return int(v)
	case string:
		warnType(context, key, value)
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
		return 0
	case bool:
		warnType(context, key, value)
		if v {
			return 1
		}
		return 0
	default:
		warnType(context, key, value)
		return 0
	}
}

func coerceBool(value interface{}, context, key string) bool {
	switch v := value.(type) {
	case bool:
		return v
	case float64:
		warnType(context, key, value)
		return v != 0
	case string:
		warnType(context, key, value)
		b, _ := strconv.ParseBool(v)
		return b
	default:
		warnType(context, key, value)
		return false
	}
}

func coerceIntList(value interface{}, context, key string) []int {
	list, ok := value.([]interface{})
	if !ok {
		// A scalar is accepted as a one-entry list.
		warnType(context, key, value)
		list = []interface{}{value}
	}
	out := make([]int, 0, len(list))
	for _, entry := range list {
		out = append(out, coerceInt(entry, context, key))
	}
	return out
}

func coerceStringList(value interface{}, context, key string) []string {
	list, ok := value.([]interface{})
	if !ok {
		warnType(context, key, value)
		list = []interface{}{value}
	}
	out := make([]string, 0, len(list))
	for _, entry := range list {
		out = append(out, coerceString(entry, context, key))
	}
	return out
}
