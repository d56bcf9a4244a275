// Package policy evaluates Rego guardrails against synthesized templates.
package policy

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/open-policy-agent/opa/v1/ast"
	"github.com/open-policy-agent/opa/v1/rego"
	"github.com/rs/zerolog"

	webfocus "github.com/lex00/webfocus-db"
)

// Engine holds prepared guardrail queries.
type Engine struct {
	policies []compiledPolicy
	logger   zerolog.Logger
}

type compiledPolicy struct {
	policy Policy
	query  rego.PreparedEvalQuery
}

// NewEngine compiles the builtin guardrails plus any extra policies.
func NewEngine(ctx context.Context, logger zerolog.Logger, extra ...Policy) (*Engine, error) {
	e := &Engine{
		logger: logger.With().Str("component", "policy-engine").Logger(),
	}

	for _, p := range append(Builtin(), extra...) {
		compiled, err := compile(ctx, p)
		if err != nil {
			return nil, err
		}
		e.policies = append(e.policies, compiled)
	}

	e.logger.Debug().Int("policies", len(e.policies)).Msg("policies compiled")
	return e, nil
}

func compile(ctx context.Context, p Policy) (compiledPolicy, error) {
	module, err := ast.ParseModule(p.Name+".rego", p.Rego)
	if err != nil {
		return compiledPolicy{}, fmt.Errorf("parsing policy %s: %w", p.Name, err)
	}

	query := module.Package.Path.String() + ".deny"
	prepared, err := rego.New(
		rego.Query(query),
		rego.Module(p.Name+".rego", p.Rego),
	).PrepareForEval(ctx)
	if err != nil {
		return compiledPolicy{}, fmt.Errorf("compiling policy %s: %w", p.Name, err)
	}

	return compiledPolicy{policy: p, query: prepared}, nil
}

// Policies returns the names of the compiled policies.
func (e *Engine) Policies() []string {
	names := make([]string, len(e.policies))
	for i, cp := range e.policies {
		names[i] = cp.policy.Name
	}
	return names
}

// Evaluate runs every policy against the template. Violations are sorted by
// policy then resource.
func (e *Engine) Evaluate(ctx context.Context, tmpl *webfocus.Template) ([]Violation, error) {
	input, err := templateInput(tmpl)
	if err != nil {
		return nil, err
	}

	var violations []Violation
	for _, cp := range e.policies {
		results, err := cp.query.Eval(ctx, rego.EvalInput(input))
		if err != nil {
			return nil, fmt.Errorf("evaluating policy %s: %w", cp.policy.Name, err)
		}

		for _, result := range results {
			if len(result.Expressions) == 0 {
				continue
			}
			denySet, ok := result.Expressions[0].Value.([]interface{})
			if !ok {
				continue
			}
			for _, d := range denySet {
				violations = append(violations, newViolation(cp.policy, d))
			}
		}
	}

	sort.SliceStable(violations, func(i, j int) bool {
		if violations[i].Policy != violations[j].Policy {
			return violations[i].Policy < violations[j].Policy
		}
		return violations[i].Resource < violations[j].Resource
	})

	e.logger.Debug().Int("violations", len(violations)).Msg("policy evaluation completed")
	return violations, nil
}

func newViolation(p Policy, result interface{}) Violation {
	v := Violation{Policy: p.Name, Severity: p.Severity}
	switch r := result.(type) {
	case string:
		v.Message = r
	case map[string]interface{}:
		v.Message, _ = r["message"].(string)
		v.Resource, _ = r["resource"].(string)
	default:
		v.Message = fmt.Sprint(r)
	}
	return v
}

// templateInput converts the template to the generic form Rego sees:
// {"resources": {...}, "outputs": {...}}.
func templateInput(tmpl *webfocus.Template) (map[string]any, error) {
	data, err := json.Marshal(tmpl)
	if err != nil {
		return nil, fmt.Errorf("encoding policy input: %w", err)
	}
	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decoding policy input: %w", err)
	}
	return map[string]any{
		"resources": doc["Resources"],
		"outputs":   doc["Outputs"],
	}, nil
}

// LoadDir reads every .rego file in dir as an error-severity policy named
// after the file.
func LoadDir(dir string) ([]Policy, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading policy dir: %w", err)
	}

	var policies []Policy
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".rego" {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("reading policy %s: %w", entry.Name(), err)
		}
		policies = append(policies, Policy{
			Name:     strings.TrimSuffix(entry.Name(), ".rego"),
			Rego:     string(data),
			Severity: SeverityError,
		})
	}
	return policies, nil
}
