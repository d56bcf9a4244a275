package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	webfocus "github.com/lex00/webfocus-db"
	"github.com/lex00/webfocus-db/internal/policy"
	"github.com/lex00/webfocus-db/internal/validation"
)

// newValidateCmd creates the "validate" subcommand for checking the synthesized template.
func newValidateCmd(g *globalFlags) *cobra.Command {
	var (
		outputFormat string
		policyDir    string
		skipPolicy   bool
	)

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Lint the template and check guardrails",
		Long: `Validate synthesizes the template and checks it for issues.

Checks performed:
  - cfn-lint: CloudFormation schema and best-practice rules
  - Guardrails: built-in Rego policies plus any in --policy-dir

Examples:
    webfocus-db validate
    webfocus-db validate --format json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(cmd, g, outputFormat, policyDir, skipPolicy)
		},
	}

	cmd.Flags().StringVarP(&outputFormat, "format", "f", "text", "Output format: text or json")
	cmd.Flags().StringVar(&policyDir, "policy-dir", "", "Directory of additional .rego guardrails")
	cmd.Flags().BoolVar(&skipPolicy, "skip-policy", false, "Only run cfn-lint")

	return cmd
}

func runValidate(cmd *cobra.Command, g *globalFlags, format, policyDir string, skipPolicy bool) error {
	ctx := cmd.Context()

	_, tmpl, err := g.synthesize(ctx)
	if err != nil {
		return err
	}

	var engine *policy.Engine
	if !skipPolicy {
		engine, err = g.policyEngine(ctx, policyDir)
		if err != nil {
			return err
		}
	}

	result, err := validation.Validate(ctx, tmpl, engine)
	if err != nil {
		return err
	}

	if err := outputValidateResult(cmd.OutOrStdout(), *result, format); err != nil {
		return err
	}
	if !result.Success {
		return fmt.Errorf("validation failed with %d error(s)", len(result.Errors))
	}
	return nil
}

func outputValidateResult(w io.Writer, result webfocus.ValidateResult, format string) error {
	switch format {
	case "json":
		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(w, string(data))

	case "text":
		if result.Success {
			fmt.Fprintf(w, "Validation passed: %d resources OK\n", result.Resources)
		} else {
			fmt.Fprintln(w, "Validation FAILED:")
			for _, errMsg := range result.Errors {
				fmt.Fprintf(w, "  - %s\n", errMsg)
			}
		}
		if len(result.Warnings) > 0 {
			fmt.Fprintln(w, "Warnings:")
			for _, warn := range result.Warnings {
				fmt.Fprintf(w, "  - %s\n", warn)
			}
		}

	default:
		return fmt.Errorf("unknown format: %s", format)
	}

	return nil
}
