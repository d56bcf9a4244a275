package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lex00/webfocus-db/internal/graph"
)

func newGraphCmd(g *globalFlags) *cobra.Command {
	var (
		outputFormat  string
		clusterByType bool
	)

	cmd := &cobra.Command{
		Use:   "graph",
		Short: "Generate DOT graph of resource dependencies",
		Long: `Generate a DOT or Mermaid format graph showing resource dependencies.

GetAtt references are drawn in blue and explicit DependsOn edges dashed.

The output can be rendered with Graphviz:
    webfocus-db graph | dot -Tpng -o deps.png

Or used in GitHub markdown (Mermaid format):
    webfocus-db graph -f mermaid

Examples:
    webfocus-db graph
    webfocus-db graph --cluster           # cluster by service
    webfocus-db graph -f mermaid          # mermaid format`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGraph(cmd, g, outputFormat, clusterByType)
		},
	}

	cmd.Flags().StringVarP(&outputFormat, "format", "f", "dot", "Output format: dot or mermaid")
	cmd.Flags().BoolVar(&clusterByType, "cluster", false, "Cluster resources by AWS service")

	return cmd
}

func runGraph(cmd *cobra.Command, g *globalFlags, format string, cluster bool) error {
	var graphFormat graph.Format
	switch format {
	case "dot":
		graphFormat = graph.FormatDOT
	case "mermaid":
		graphFormat = graph.FormatMermaid
	default:
		return fmt.Errorf("unknown format: %s (use 'dot' or 'mermaid')", format)
	}

	_, tmpl, err := g.synthesize(cmd.Context())
	if err != nil {
		return err
	}

	gen := &graph.Generator{
		Format:        graphFormat,
		ClusterByType: cluster,
	}
	return gen.Generate(tmpl, cmd.OutOrStdout())
}
