package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	webfocus "github.com/lex00/webfocus-db"
)

func newListCmd(g *globalFlags) *cobra.Command {
	var outputFormat string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Show the stack name and its resources",
		Long: `List prints the stack name followed by its resources in deployment order.

Examples:
    webfocus-db list
    webfocus-db list -c instance=b --format json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(cmd, g, outputFormat)
		},
	}

	cmd.Flags().StringVarP(&outputFormat, "format", "f", "text", "Output format: text or json")

	return cmd
}

func runList(cmd *cobra.Command, g *globalFlags, format string) error {
	s, tmpl, err := g.synthesize(cmd.Context())
	if err != nil {
		return err
	}

	order, err := s.Order()
	if err != nil {
		return err
	}

	listResult := webfocus.ListResult{
		StackName: s.Name,
		Resources: make([]webfocus.ListResource, 0, len(order)),
	}
	for _, name := range order {
		def := tmpl.Resources[name]
		listResult.Resources = append(listResult.Resources, webfocus.ListResource{
			Name:           name,
			Type:           def.Type,
			DeletionPolicy: def.DeletionPolicy,
			DependsOn:      def.DependsOn,
		})
	}

	return outputListResult(cmd.OutOrStdout(), listResult, format)
}

func outputListResult(w io.Writer, result webfocus.ListResult, format string) error {
	switch format {
	case "json":
		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(w, string(data))

	case "text":
		fmt.Fprintln(w, result.StackName)
		fmt.Fprintf(w, "\nResources (%d):\n\n", len(result.Resources))
		for _, res := range result.Resources {
			if res.DeletionPolicy != "" {
				fmt.Fprintf(w, "  %s: %s [%s]\n", res.Name, res.Type, res.DeletionPolicy)
			} else {
				fmt.Fprintf(w, "  %s: %s\n", res.Name, res.Type)
			}
		}

	default:
		return fmt.Errorf("unknown format: %s", format)
	}

	return nil
}
