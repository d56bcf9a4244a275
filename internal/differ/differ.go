// Package differ provides semantic comparison of CloudFormation templates.
package differ

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"gopkg.in/yaml.v3"

	webfocus "github.com/lex00/webfocus-db"
)

// Options configures the differ.
type Options struct {
	// IgnoreOrder ignores array element order in comparisons
	IgnoreOrder bool
}

// Result contains the difference between two templates.
type Result struct {
	Diff    webfocus.TemplateDiff
	Summary webfocus.DiffSummary
}

// Compare compares two CloudFormation templates and returns differences.
func Compare(template1, template2 *webfocus.Template, opts Options) (*Result, error) {
	result := &Result{}

	res1, err := normalizeResources(template1.Resources)
	if err != nil {
		return nil, err
	}
	res2, err := normalizeResources(template2.Resources)
	if err != nil {
		return nil, err
	}

	// Find added resources (in template2 but not in template1)
	for name, def := range res2 {
		if _, exists := res1[name]; !exists {
			result.Diff.Added = append(result.Diff.Added, webfocus.DiffEntry{
				Resource: name,
				Type:     def.Type,
			})
		}
	}

	// Find removed resources (in template1 but not in template2)
	for name, def := range res1 {
		if _, exists := res2[name]; !exists {
			result.Diff.Removed = append(result.Diff.Removed, webfocus.DiffEntry{
				Resource: name,
				Type:     def.Type,
			})
		}
	}

	// Find modified resources
	for name, def1 := range res1 {
		if def2, exists := res2[name]; exists {
			changes := compareResources(def1, def2, opts)
			if len(changes) > 0 {
				result.Diff.Modified = append(result.Diff.Modified, webfocus.DiffEntry{
					Resource: name,
					Type:     def1.Type,
					Changes:  changes,
				})
			}
		}
	}

	// Sort entries for consistent output
	sortEntries(result.Diff.Added)
	sortEntries(result.Diff.Removed)
	sortEntries(result.Diff.Modified)

	result.Summary = webfocus.DiffSummary{
		Added:    len(result.Diff.Added),
		Removed:  len(result.Diff.Removed),
		Modified: len(result.Diff.Modified),
	}
	result.Summary.Total = result.Summary.Added + result.Summary.Removed + result.Summary.Modified

	return result, nil
}

// CompareFiles compares two template files.
func CompareFiles(file1, file2 string, opts Options) (*Result, error) {
	t1, err := LoadTemplate(file1)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", file1, err)
	}

	t2, err := LoadTemplate(file2)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", file2, err)
	}

	return Compare(t1, t2, opts)
}

// LoadTemplate loads a CloudFormation template from a file.
func LoadTemplate(path string) (*webfocus.Template, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var template webfocus.Template

	// Try JSON first
	if err := json.Unmarshal(data, &template); err != nil {
		// Try YAML
		if err := yaml.Unmarshal(data, &template); err != nil {
			return nil, fmt.Errorf("failed to parse as JSON or YAML: %w", err)
		}
	}

	return &template, nil
}

// normalizeResources round-trips resources through JSON so that a freshly
// synthesized template and one loaded from disk hold the same value types.
func normalizeResources(resources map[string]webfocus.ResourceDef) (map[string]webfocus.ResourceDef, error) {
	data, err := json.Marshal(resources)
	if err != nil {
		return nil, fmt.Errorf("normalizing resources: %w", err)
	}
	var out map[string]webfocus.ResourceDef
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("normalizing resources: %w", err)
	}
	return out, nil
}

// compareResources compares two resource definitions and returns changes.
func compareResources(def1, def2 webfocus.ResourceDef, opts Options) []string {
	var changes []string

	if def1.Type != def2.Type {
		changes = append(changes, fmt.Sprintf("Type changed: %s → %s", def1.Type, def2.Type))
	}

	changes = append(changes, compareProperties("", def1.Properties, def2.Properties, opts)...)

	if !cmp.Equal(def1.DependsOn, def2.DependsOn, cmpopts.EquateEmpty()) {
		changes = append(changes, "DependsOn changed")
	}

	if def1.DeletionPolicy != def2.DeletionPolicy {
		changes = append(changes, fmt.Sprintf("DeletionPolicy changed: %s → %s", policyName(def1.DeletionPolicy), policyName(def2.DeletionPolicy)))
	}
	if def1.UpdateReplacePolicy != def2.UpdateReplacePolicy {
		changes = append(changes, fmt.Sprintf("UpdateReplacePolicy changed: %s → %s", policyName(def1.UpdateReplacePolicy), policyName(def2.UpdateReplacePolicy)))
	}

	return changes
}

// policyName renders an unset policy as CloudFormation's default.
func policyName(p string) string {
	if p == "" {
		return webfocus.PolicyDelete + " (default)"
	}
	return p
}

// compareProperties compares property maps key by key.
func compareProperties(prefix string, props1, props2 map[string]any, opts Options) []string {
	var changes []string

	// Find added/modified properties
	for key, val2 := range props2 {
		path := key
		if prefix != "" {
			path = prefix + "." + key
		}

		if val1, exists := props1[key]; exists {
			if !deepEqual(val1, val2, opts) {
				changes = append(changes, fmt.Sprintf("%s modified", path))
			}
		} else {
			changes = append(changes, fmt.Sprintf("%s added", path))
		}
	}

	// Find removed properties
	for key := range props1 {
		path := key
		if prefix != "" {
			path = prefix + "." + key
		}

		if _, exists := props2[key]; !exists {
			changes = append(changes, fmt.Sprintf("%s removed", path))
		}
	}

	sort.Strings(changes)
	return changes
}

// deepEqual compares two values deeply, optionally ignoring slice order.
func deepEqual(a, b any, opts Options) bool {
	var cmpOpts []cmp.Option
	if opts.IgnoreOrder {
		cmpOpts = append(cmpOpts, cmpopts.SortSlices(func(x, y any) bool {
			return fmt.Sprint(x) < fmt.Sprint(y)
		}))
	}
	return cmp.Equal(a, b, cmpOpts...)
}

// sortEntries sorts diff entries by resource name.
func sortEntries(entries []webfocus.DiffEntry) {
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Resource < entries[j].Resource
	})
}
