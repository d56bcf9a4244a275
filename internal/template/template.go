// Package template provides CloudFormation template building from typed resources.
package template

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	webfocus "github.com/lex00/webfocus-db"
	"github.com/lex00/webfocus-db/internal/serialize"
)

// Builder constructs CloudFormation templates from registered resources.
type Builder struct {
	description string
	resources   map[string]*entry
	outputs     map[string]webfocus.Output
}

type entry struct {
	value          webfocus.Resource
	dependsOn      []string
	deletionPolicy string
	replacePolicy  string

	// props and refs are filled in by Build.
	props map[string]any
	refs  []string
}

// Option configures a registered resource.
type Option func(*entry)

// DependsOn adds explicit DependsOn entries.
func DependsOn(names ...string) Option {
	return func(e *entry) {
		e.dependsOn = append(e.dependsOn, names...)
	}
}

// WithRemovalPolicy sets both DeletionPolicy and UpdateReplacePolicy.
func WithRemovalPolicy(policy string) Option {
	return func(e *entry) {
		e.deletionPolicy = policy
		e.replacePolicy = policy
	}
}

// NewBuilder creates an empty template builder.
func NewBuilder(description string) *Builder {
	return &Builder{
		description: description,
		resources:   make(map[string]*entry),
		outputs:     make(map[string]webfocus.Output),
	}
}

// Add registers a resource under its logical name.
func (b *Builder) Add(name string, r webfocus.Resource, opts ...Option) error {
	if name == "" {
		return errors.New("resource logical name is empty")
	}
	if r == nil {
		return fmt.Errorf("resource %s is nil", name)
	}
	if _, exists := b.resources[name]; exists {
		return fmt.Errorf("duplicate resource logical name: %s", name)
	}

	e := &entry{value: r}
	for _, opt := range opts {
		opt(e)
	}
	b.resources[name] = e
	return nil
}

// AddOutput registers a template output.
func (b *Builder) AddOutput(name string, o webfocus.Output) {
	b.outputs[name] = o
}

// Build constructs the CloudFormation template.
func (b *Builder) Build() (*webfocus.Template, error) {
	if err := b.prepare(); err != nil {
		return nil, err
	}

	// Resolve the dependency order first so cycles are reported before output.
	if _, err := b.topologicalSort(); err != nil {
		return nil, err
	}

	template := &webfocus.Template{
		AWSTemplateFormatVersion: "2010-09-09",
		Description:              b.description,
		Resources:                make(map[string]webfocus.ResourceDef, len(b.resources)),
	}

	for name, e := range b.resources {
		var dependsOn []string
		if len(e.dependsOn) > 0 {
			dependsOn = append(dependsOn, e.dependsOn...)
			sort.Strings(dependsOn)
		}
		template.Resources[name] = webfocus.ResourceDef{
			Type:                e.value.ResourceType(),
			Properties:          e.props,
			DependsOn:           dependsOn,
			DeletionPolicy:      e.deletionPolicy,
			UpdateReplacePolicy: e.replacePolicy,
		}
	}

	if len(b.outputs) > 0 {
		template.Outputs = make(map[string]webfocus.Output, len(b.outputs))
		for name, o := range b.outputs {
			value, err := normalize(o.Value)
			if err != nil {
				return nil, fmt.Errorf("output %s: %w", name, err)
			}
			o.Value = value
			template.Outputs[name] = o
		}
	}

	return template, nil
}

// Order returns logical names in dependency order.
func (b *Builder) Order() ([]string, error) {
	if err := b.prepare(); err != nil {
		return nil, err
	}
	return b.topologicalSort()
}

// prepare serializes every resource and collects its references.
func (b *Builder) prepare() error {
	for name, e := range b.resources {
		for _, dep := range e.dependsOn {
			if _, ok := b.resources[dep]; !ok {
				return fmt.Errorf("%s depends on unknown resource %s", name, dep)
			}
		}

		props, err := serialize.Properties(e.value)
		if err != nil {
			return fmt.Errorf("serializing %s: %w", name, err)
		}
		e.props = props

		seen := make(map[string]bool)
		collectRefs(props, seen)
		e.refs = e.refs[:0]
		for ref := range seen {
			if _, ok := b.resources[ref]; ok && ref != name {
				e.refs = append(e.refs, ref)
			}
		}
		sort.Strings(e.refs)
	}
	return nil
}

// collectRefs walks serialized properties for Ref and Fn::GetAtt targets.
func collectRefs(value any, seen map[string]bool) {
	switch v := value.(type) {
	case map[string]any:
		if ref, ok := v["Ref"].(string); ok {
			seen[ref] = true
		}
		if getAtt, ok := v["Fn::GetAtt"].([]any); ok && len(getAtt) > 0 {
			if name, ok := getAtt[0].(string); ok {
				seen[name] = true
			}
		}
		for _, val := range v {
			collectRefs(val, seen)
		}
	case []any:
		for _, elem := range v {
			collectRefs(elem, seen)
		}
	}
}

func (e *entry) dependencies() []string {
	deps := append([]string{}, e.dependsOn...)
	return append(deps, e.refs...)
}

// topologicalSort returns resources in dependency order.
func (b *Builder) topologicalSort() ([]string, error) {
	graph := make(map[string][]string)
	inDegree := make(map[string]int)

	for name := range b.resources {
		graph[name] = nil
		inDegree[name] = 0
	}

	for name, e := range b.resources {
		seen := make(map[string]bool)
		for _, dep := range e.dependencies() {
			if seen[dep] {
				continue
			}
			seen[dep] = true
			graph[dep] = append(graph[dep], name)
			inDegree[name]++
		}
	}

	// Kahn's algorithm
	var queue []string
	for name, degree := range inDegree {
		if degree == 0 {
			queue = append(queue, name)
		}
	}
	sort.Strings(queue)

	var result []string
	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]
		result = append(result, node)

		for _, neighbor := range graph[node] {
			inDegree[neighbor]--
			if inDegree[neighbor] == 0 {
				queue = append(queue, neighbor)
				sort.Strings(queue)
			}
		}
	}

	if len(result) != len(b.resources) {
		return nil, b.detectCycle()
	}

	return result, nil
}

// detectCycle finds and reports a cycle in the dependency graph.
func (b *Builder) detectCycle() error {
	visited := make(map[string]bool)
	path := make(map[string]bool)

	var cycle []string
	var findCycle func(node string) bool
	findCycle = func(node string) bool {
		visited[node] = true
		path[node] = true

		for _, dep := range b.resources[node].dependencies() {
			if !visited[dep] {
				if findCycle(dep) {
					cycle = append([]string{node}, cycle...)
					return true
				}
			} else if path[dep] {
				cycle = append([]string{dep, node}, cycle...)
				return true
			}
		}

		path[node] = false
		return false
	}

	names := make([]string, 0, len(b.resources))
	for name := range b.resources {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if !visited[name] && findCycle(name) {
			break
		}
	}

	if len(cycle) > 0 {
		return fmt.Errorf("circular dependency detected: %s", strings.Join(cycle, " → "))
	}
	return errors.New("circular dependency detected")
}

// normalize renders intrinsics to plain maps so YAML output keeps their JSON shape.
func normalize(v any) (any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ToJSON serializes the template to JSON.
func ToJSON(t *webfocus.Template) ([]byte, error) {
	return json.MarshalIndent(t, "", "  ")
}

// ToYAML serializes the template to YAML.
func ToYAML(t *webfocus.Template) ([]byte, error) {
	return yaml.Marshal(t)
}
