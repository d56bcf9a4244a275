package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	webfocus "github.com/lex00/webfocus-db"
	"github.com/lex00/webfocus-db/internal/differ"
)

func newDiffCmd(g *globalFlags) *cobra.Command {
	var (
		outputFormat string
		ignoreOrder  bool
	)

	cmd := &cobra.Command{
		Use:   "diff <template1> [template2]",
		Short: "Compare templates by resource",
		Long: `Diff compares two templates resource by resource.

With one argument the file is compared against the template synthesized
from the current context, which shows what a deployment would change.

Examples:
    webfocus-db diff deployed.json
    webfocus-db diff old.json new.yaml --ignore-order
    webfocus-db diff deployed.json --format json`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDiff(cmd, g, args, outputFormat, ignoreOrder)
		},
	}

	cmd.Flags().StringVarP(&outputFormat, "format", "f", "text", "Output format: text or json")
	cmd.Flags().BoolVar(&ignoreOrder, "ignore-order", false, "Ignore array element order")

	return cmd
}

func runDiff(cmd *cobra.Command, g *globalFlags, args []string, format string, ignoreOrder bool) error {
	opts := differ.Options{IgnoreOrder: ignoreOrder}

	var (
		result *differ.Result
		err    error
	)
	if len(args) == 2 {
		result, err = differ.CompareFiles(args[0], args[1], opts)
	} else {
		var old, current *webfocus.Template
		old, err = differ.LoadTemplate(args[0])
		if err != nil {
			return fmt.Errorf("failed to load %s: %w", args[0], err)
		}
		_, current, err = g.synthesize(cmd.Context())
		if err != nil {
			return err
		}
		result, err = differ.Compare(old, current, opts)
	}
	if err != nil {
		return err
	}

	return outputDiffResult(cmd.OutOrStdout(), result, format)
}

func outputDiffResult(w io.Writer, result *differ.Result, format string) error {
	switch format {
	case "json":
		data, err := json.MarshalIndent(struct {
			Diff    webfocus.TemplateDiff `json:"diff"`
			Summary webfocus.DiffSummary  `json:"summary"`
		}{result.Diff, result.Summary}, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(w, string(data))

	case "text":
		if result.Summary.Total == 0 {
			fmt.Fprintln(w, "No differences.")
			return nil
		}
		for _, e := range result.Diff.Added {
			fmt.Fprintf(w, "+ %s (%s)\n", e.Resource, e.Type)
		}
		for _, e := range result.Diff.Removed {
			fmt.Fprintf(w, "- %s (%s)\n", e.Resource, e.Type)
		}
		for _, e := range result.Diff.Modified {
			fmt.Fprintf(w, "~ %s (%s)\n", e.Resource, e.Type)
			for _, change := range e.Changes {
				fmt.Fprintf(w, "    %s\n", change)
			}
		}
		fmt.Fprintf(w, "\n%d added, %d removed, %d modified\n",
			result.Summary.Added, result.Summary.Removed, result.Summary.Modified)

	default:
		return fmt.Errorf("unknown format: %s", format)
	}

	return nil
}
