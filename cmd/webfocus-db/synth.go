package main

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"github.com/spf13/cobra"

	webfocus "github.com/lex00/webfocus-db"
	"github.com/lex00/webfocus-db/internal/policy"
)

func newSynthCmd(g *globalFlags) *cobra.Command {
	var (
		outputFormat string
		outputFile   string
		policyDir    string
		skipPolicy   bool
		report       bool
	)

	cmd := &cobra.Command{
		Use:   "synth",
		Short: "Generate the CloudFormation template",
		Long: `Synth resolves the deployment context, assembles the stack and writes the template.

Guardrail policies run on the template before it is written. Error-severity
violations fail the command unless --skip-policy is set.

Examples:
    webfocus-db synth
    webfocus-db synth -c instance=b -o template.json
    webfocus-db synth --format yaml --policy-dir ./policies`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSynth(cmd, g, synthOptions{
				format:     outputFormat,
				outputFile: outputFile,
				policyDir:  policyDir,
				skipPolicy: skipPolicy,
				report:     report,
			})
		},
	}

	cmd.Flags().StringVarP(&outputFormat, "format", "f", "json", "Output format: json or yaml")
	cmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output file (default: stdout)")
	cmd.Flags().StringVar(&policyDir, "policy-dir", "", "Directory of additional .rego guardrails")
	cmd.Flags().BoolVar(&skipPolicy, "skip-policy", false, "Do not fail on guardrail violations")
	cmd.Flags().BoolVar(&report, "report", false, "Write a JSON result object instead of the bare template")

	return cmd
}

type synthOptions struct {
	format     string
	outputFile string
	policyDir  string
	skipPolicy bool
	report     bool
}

func runSynth(cmd *cobra.Command, g *globalFlags, opts synthOptions) error {
	ctx := cmd.Context()

	s, tmpl, err := g.synthesize(ctx)
	if err != nil {
		if opts.report {
			return outputSynthReport(cmd.OutOrStdout(), webfocus.SynthResult{Errors: []string{err.Error()}}, opts.outputFile, err)
		}
		return err
	}

	engine, err := g.policyEngine(ctx, opts.policyDir)
	if err != nil {
		return err
	}
	violations, err := engine.Evaluate(ctx, tmpl)
	if err != nil {
		return err
	}
	for _, v := range violations {
		event := g.logger.Warn()
		if v.Severity == policy.SeverityError {
			event = g.logger.Error()
		}
		event.Str("policy", v.Policy).Str("resource", v.Resource).Msg(v.Message)
	}
	if policy.HasErrors(violations) && !opts.skipPolicy {
		err := fmt.Errorf("synth failed: %d guardrail violation(s)", len(violations))
		if opts.report {
			result := webfocus.SynthResult{StackName: s.Name}
			for _, v := range violations {
				result.Errors = append(result.Errors, formatViolation(v))
			}
			return outputSynthReport(cmd.OutOrStdout(), result, opts.outputFile, err)
		}
		return err
	}

	if opts.report {
		result := webfocus.SynthResult{
			Success:   true,
			StackName: s.Name,
			Template:  *tmpl,
			Resources: resourceNames(tmpl),
		}
		return outputSynthReport(cmd.OutOrStdout(), result, opts.outputFile, nil)
	}

	data, err := encodeTemplate(tmpl, opts.format)
	if err != nil {
		return err
	}
	if err := writeOutput(cmd.OutOrStdout(), data, opts.outputFile); err != nil {
		return err
	}
	if opts.outputFile != "" {
		g.logger.Info().Str("file", opts.outputFile).Msg("wrote template")
	}
	return nil
}

// outputSynthReport writes result as JSON and returns failure unchanged.
func outputSynthReport(w io.Writer, result webfocus.SynthResult, outputFile string, failure error) error {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return err
	}
	if err := writeOutput(w, data, outputFile); err != nil {
		return err
	}
	return failure
}

func formatViolation(v policy.Violation) string {
	return fmt.Sprintf("[%s] %s: %s", v.Severity, v.Policy, v.Message)
}

func resourceNames(tmpl *webfocus.Template) []string {
	names := make([]string, 0, len(tmpl.Resources))
	for name := range tmpl.Resources {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
