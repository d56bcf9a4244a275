// Package validation checks synthesized templates before they reach the pipeline.
//
// Two checks run:
//   - cfn-lint-go: CloudFormation schema and best-practice rules (library dependency)
//   - guardrails: Rego policies from internal/policy
package validation

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/lex00/cfn-lint-go/pkg/lint"

	webfocus "github.com/lex00/webfocus-db"
	"github.com/lex00/webfocus-db/internal/policy"
	"github.com/lex00/webfocus-db/internal/template"
)

// CfnLintResult contains the result of running cfn-lint.
type CfnLintResult struct {
	Passed        bool     `json:"passed"`
	Errors        []string `json:"errors"`
	Warnings      []string `json:"warnings"`
	Informational []string `json:"informational"`
}

// TotalIssues returns the total number of issues found.
func (r CfnLintResult) TotalIssues() int {
	return len(r.Errors) + len(r.Warnings) + len(r.Informational)
}

// RunCfnLint runs cfn-lint-go on the given template file.
func RunCfnLint(templatePath string) (*CfnLintResult, error) {
	if _, err := os.Stat(templatePath); err != nil {
		return &CfnLintResult{
			Passed: false,
			Errors: []string{fmt.Sprintf("Template file not found: %s", templatePath)},
		}, nil
	}

	linter := lint.New(lint.Options{})
	matches, err := linter.LintFile(templatePath)
	if err != nil {
		return &CfnLintResult{
			Passed: false,
			Errors: []string{fmt.Sprintf("Linter error: %v", err)},
		}, nil
	}

	result := &CfnLintResult{
		Errors:        []string{},
		Warnings:      []string{},
		Informational: []string{},
	}

	for _, match := range matches {
		formatted := formatMatch(match)

		switch match.Level {
		case "Error":
			result.Errors = append(result.Errors, formatted)
		case "Warning":
			result.Warnings = append(result.Warnings, formatted)
		default:
			result.Informational = append(result.Informational, formatted)
		}
	}

	// Warnings are acceptable
	result.Passed = len(result.Errors) == 0

	return result, nil
}

// LintTemplate writes tmpl to a temporary file and lints it.
func LintTemplate(tmpl *webfocus.Template) (*CfnLintResult, error) {
	data, err := template.ToJSON(tmpl)
	if err != nil {
		return nil, fmt.Errorf("encoding template: %w", err)
	}

	dir, err := os.MkdirTemp("", "webfocus-db-lint-")
	if err != nil {
		return nil, fmt.Errorf("creating temp dir: %w", err)
	}
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, "template.json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return nil, fmt.Errorf("writing template: %w", err)
	}

	return RunCfnLint(path)
}

// formatMatch formats a cfn-lint-go match for display.
func formatMatch(match lint.Match) string {
	pathStr := ""
	if len(match.Location.Path) > 0 {
		parts := make([]string, len(match.Location.Path))
		for i, p := range match.Location.Path {
			parts[i] = fmt.Sprintf("%v", p)
		}
		pathStr = strings.Join(parts, "/")
	}

	if pathStr != "" {
		return fmt.Sprintf("%s: %s (at %s)", match.Rule.ID, match.Message, pathStr)
	}
	return fmt.Sprintf("%s: %s", match.Rule.ID, match.Message)
}

// formatViolation formats a guardrail violation for display.
func formatViolation(v policy.Violation) string {
	if v.Resource != "" {
		return fmt.Sprintf("%s: %s (at Resources/%s)", v.Policy, v.Message, v.Resource)
	}
	return fmt.Sprintf("%s: %s", v.Policy, v.Message)
}

// Validate runs cfn-lint and the guardrails. A nil engine skips the guardrails.
func Validate(ctx context.Context, tmpl *webfocus.Template, engine *policy.Engine) (*webfocus.ValidateResult, error) {
	result := &webfocus.ValidateResult{Resources: len(tmpl.Resources)}

	lintResult, err := LintTemplate(tmpl)
	if err != nil {
		return nil, fmt.Errorf("running cfn-lint: %w", err)
	}
	result.Errors = append(result.Errors, lintResult.Errors...)
	result.Warnings = append(result.Warnings, lintResult.Warnings...)

	if engine != nil {
		violations, err := engine.Evaluate(ctx, tmpl)
		if err != nil {
			return nil, fmt.Errorf("evaluating guardrails: %w", err)
		}
		for _, v := range violations {
			if v.Severity == policy.SeverityError {
				result.Errors = append(result.Errors, formatViolation(v))
			} else {
				result.Warnings = append(result.Warnings, formatViolation(v))
			}
		}
	}

	result.Success = len(result.Errors) == 0
	return result, nil
}
