// Package contextstore resolves deployment context values.
//
// Values come from the project context file (the "context" object of a
// cdk.json style file), the local lookup cache, and -c key=value overrides,
// in that order of precedence. Settings is built once from the store at the
// entry point and passed down to every builder.
package contextstore

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Context keys read by the stack.
const (
	KeyInstance          = "instance"
	KeyAwsEnv            = "awsEnv"
	KeyVpcID             = "vpcId"
	KeyVpcCidr           = "vpcCidr"
	KeyIsolatedSubnetIDs = "isolatedSubnetIds"
)

// DevEnv is used verbatim; every other environment has its organization prefix stripped.
const DevEnv = "dev"

const orgPrefix = "tcmm"

// NormalizeEnv applies the awsEnv naming rule: "dev" is returned unchanged,
// anything else has every occurrence of "tcmm" removed.
func NormalizeEnv(raw string) string {
	if raw == DevEnv {
		return raw
	}
	return strings.ReplaceAll(raw, orgPrefix, "")
}

// Sources lists where context values are read from.
type Sources struct {
	// ContextFile is the project file with a top-level "context" object.
	ContextFile string
	// CacheFile is the flat lookup cache written by network lookups.
	CacheFile string
	// Overrides are key=value pairs from the command line.
	Overrides []string
}

// Store is a flat, read-only view over the merged context values.
type Store struct {
	values map[string]any
}

// New returns a store over the given values.
func New(values map[string]any) *Store {
	merged := make(map[string]any, len(values))
	for k, v := range values {
		merged[k] = v
	}
	return &Store{values: merged}
}

// Open reads and merges every source. A missing cache file is not an error.
func Open(src Sources) (*Store, error) {
	values := make(map[string]any)

	if src.ContextFile != "" {
		project, err := readProjectFile(src.ContextFile)
		if err != nil {
			return nil, err
		}
		for k, v := range project {
			values[k] = v
		}
	}

	if src.CacheFile != "" {
		cache, err := ReadCache(src.CacheFile)
		if err != nil {
			return nil, err
		}
		for k, v := range cache {
			values[k] = v
		}
	}

	for _, override := range src.Overrides {
		key, value, err := ParseOverride(override)
		if err != nil {
			return nil, err
		}
		values[key] = value
	}

	return &Store{values: values}, nil
}

// ParseOverride splits a -c key=value argument.
func ParseOverride(s string) (string, string, error) {
	key, value, ok := strings.Cut(s, "=")
	key = strings.TrimSpace(key)
	if !ok || key == "" {
		return "", "", fmt.Errorf("invalid context override %q: expected key=value", s)
	}
	return key, value, nil
}

// Lookup returns the raw value for key.
func (s *Store) Lookup(key string) (any, bool) {
	v, ok := s.values[key]
	if !ok || v == nil {
		return nil, false
	}
	return v, true
}

// Resolve returns the string value for key or a *MissingContextError.
// The awsEnv key is normalized with NormalizeEnv.
func (s *Store) Resolve(key string) (string, error) {
	v, ok := s.Lookup(key)
	if !ok {
		return "", &MissingContextError{Key: key}
	}

	var value string
	switch typed := v.(type) {
	case string:
		value = typed
	case int, int64, float64, bool:
		value = fmt.Sprint(typed)
	default:
		return "", fmt.Errorf("context value %q is not a scalar (%T)", key, v)
	}

	if key == KeyAwsEnv {
		value = NormalizeEnv(value)
	}
	return value, nil
}

// Keys returns every key in sorted order.
func (s *Store) Keys() []string {
	keys := make([]string, 0, len(s.values))
	for k := range s.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

type projectFile struct {
	Context map[string]any `yaml:"context"`
}

// readProjectFile reads the "context" object of a cdk.json style file.
// JSON is read through the YAML decoder.
func readProjectFile(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading context file: %w", err)
	}

	var project projectFile
	if err := yaml.Unmarshal(data, &project); err != nil {
		return nil, fmt.Errorf("parsing context file %s: %w", path, err)
	}
	if project.Context == nil {
		return nil, errors.New("context file " + path + " has no context object")
	}
	return project.Context, nil
}
