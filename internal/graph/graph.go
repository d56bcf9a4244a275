// Package graph renders the resource dependencies of a synthesized template
// as DOT or Mermaid.
package graph

import (
	"io"
	"sort"
	"strings"

	"github.com/emicklei/dot"

	webfocus "github.com/lex00/webfocus-db"
)

// Format specifies the output format for the graph.
type Format string

const (
	// FormatDOT outputs Graphviz DOT format.
	FormatDOT Format = "dot"
	// FormatMermaid outputs Mermaid format for GitHub/markdown rendering.
	FormatMermaid Format = "mermaid"
)

// Edge kinds, in increasing order of precedence when a pair is linked more than once.
const (
	edgeRef = iota
	edgeGetAtt
	edgeDependsOn
)

// Generator creates dependency graphs from templates.
type Generator struct {
	// Format specifies the output format (dot or mermaid). Defaults to dot.
	Format Format

	// ClusterByType groups resources by AWS service.
	ClusterByType bool
}

// Generate creates a dependency graph and writes it to w.
func (g *Generator) Generate(tmpl *webfocus.Template, w io.Writer) error {
	graph := g.buildGraph(tmpl)

	format := g.Format
	if format == "" {
		format = FormatDOT
	}

	var output string
	if format == FormatMermaid {
		output = dot.MermaidGraph(graph, dot.MermaidTopToBottom)
	} else {
		output = graph.String()
	}

	_, err := w.Write([]byte(output))
	return err
}

// GenerateString is a convenience method that returns the graph as a string.
func (g *Generator) GenerateString(tmpl *webfocus.Template) (string, error) {
	var sb strings.Builder
	if err := g.Generate(tmpl, &sb); err != nil {
		return "", err
	}
	return sb.String(), nil
}

// buildGraph creates the dot.Graph structure from template resources.
func (g *Generator) buildGraph(tmpl *webfocus.Template) *dot.Graph {
	graph := dot.NewGraph(dot.Directed)
	graph.Attr("rankdir", "TB")

	graph.NodeInitializer(func(n dot.Node) {
		n.Attr("shape", "box")
		n.Attr("fontname", "Arial")
	})

	graph.EdgeInitializer(func(e dot.Edge) {
		e.Attr("fontname", "Arial")
		e.Attr("fontsize", "10")
	})

	names := sortedNames(tmpl.Resources)

	if g.ClusterByType {
		g.addClusteredNodes(graph, tmpl.Resources, names)
	} else {
		for _, name := range names {
			addNode(graph, name, tmpl.Resources[name].Type)
		}
	}

	for _, name := range names {
		deps := dependencies(tmpl.Resources[name])
		targets := make([]string, 0, len(deps))
		for dep := range deps {
			if _, ok := tmpl.Resources[dep]; ok {
				targets = append(targets, dep)
			}
		}
		sort.Strings(targets)

		for _, dep := range targets {
			e := graph.Edge(graph.Node(name), graph.Node(dep))
			switch deps[dep] {
			case edgeGetAtt:
				e.Attr("color", "blue")
			case edgeDependsOn:
				e.Attr("style", "dashed")
			}
		}
	}

	return graph
}

// dependencies returns the logical names a resource points at, keyed to the
// strongest kind of link found.
func dependencies(def webfocus.ResourceDef) map[string]int {
	deps := make(map[string]int)
	walkRefs(def.Properties, deps)
	for _, dep := range def.DependsOn {
		deps[dep] = edgeDependsOn
	}
	return deps
}

func walkRefs(value any, deps map[string]int) {
	switch v := value.(type) {
	case map[string]any:
		if ref, ok := v["Ref"].(string); ok && !strings.HasPrefix(ref, "AWS::") {
			link(deps, ref, edgeRef)
		}
		if getAtt, ok := v["Fn::GetAtt"].([]any); ok && len(getAtt) > 0 {
			if name, ok := getAtt[0].(string); ok {
				link(deps, name, edgeGetAtt)
			}
		}
		for _, val := range v {
			walkRefs(val, deps)
		}
	case []any:
		for _, elem := range v {
			walkRefs(elem, deps)
		}
	}
}

func link(deps map[string]int, name string, kind int) {
	if current, ok := deps[name]; !ok || kind > current {
		deps[name] = kind
	}
}

func addNode(graph *dot.Graph, name, cfType string) {
	graph.Node(name).Label(name + "\\n[" + cfType + "]")
}

// addClusteredNodes adds resource nodes grouped by AWS service.
func (g *Generator) addClusteredNodes(graph *dot.Graph, resources map[string]webfocus.ResourceDef, names []string) {
	serviceResources := make(map[string][]string)
	var services []string

	for _, name := range names {
		service := extractService(resources[name].Type)
		if _, ok := serviceResources[service]; !ok {
			services = append(services, service)
		}
		serviceResources[service] = append(serviceResources[service], name)
	}
	sort.Strings(services)

	for _, service := range services {
		resNames := serviceResources[service]
		if len(resNames) == 1 {
			addNode(graph, resNames[0], resources[resNames[0]].Type)
			continue
		}

		cluster := graph.Subgraph("cluster_"+service, dot.ClusterOption{})
		cluster.Attr("label", service)
		cluster.Attr("style", "rounded")
		cluster.Attr("bgcolor", "lightyellow")

		for _, name := range resNames {
			cluster.Node(name).Label(name + "\\n[" + resources[name].Type + "]")
		}
	}
}

// extractService extracts the service name from a CloudFormation type.
// e.g., "AWS::RDS::DBInstance" -> "RDS"
func extractService(cfType string) string {
	parts := strings.Split(cfType, "::")
	if len(parts) == 3 {
		return parts[1]
	}
	return "Other"
}

func sortedNames(resources map[string]webfocus.ResourceDef) []string {
	names := make([]string, 0, len(resources))
	for name := range resources {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
