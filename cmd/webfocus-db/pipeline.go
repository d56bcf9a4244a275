package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"

	webfocus "github.com/lex00/webfocus-db"
	"github.com/lex00/webfocus-db/internal/contextstore"
	"github.com/lex00/webfocus-db/internal/logging"
	"github.com/lex00/webfocus-db/internal/network"
	"github.com/lex00/webfocus-db/internal/policy"
	"github.com/lex00/webfocus-db/internal/secretstatus"
	"github.com/lex00/webfocus-db/internal/stack"
	"github.com/lex00/webfocus-db/internal/template"
)

// globalFlags holds the persistent flags and what they resolve to.
type globalFlags struct {
	contextFile string
	cacheFile   string
	overrides   []string
	lookup      bool
	verbose     bool

	getenv func(string) string
	logger zerolog.Logger

	// client overrides for tests
	networkOpts []network.Option
	secretOpts  []secretstatus.Option
}

// settings loads the context store and resolves Settings from it.
func (g *globalFlags) settings() (*contextstore.Settings, *contextstore.Store, error) {
	return contextstore.Load(contextstore.Options{
		Sources: contextstore.Sources{
			ContextFile: g.contextFile,
			CacheFile:   g.cacheFile,
			Overrides:   g.overrides,
		},
		Lookup: g.lookup,
		Getenv: g.getenv,
	})
}

// assemble resolves settings and the network, then composes the stack.
func (g *globalFlags) assemble(ctx context.Context) (*stack.Stack, error) {
	settings, store, err := g.settings()
	if err != nil {
		return nil, err
	}
	g.logger.Debug().
		Str("env", settings.Env).
		Str("instance", settings.Instance).
		Str("region", settings.Region).
		Msg("resolved context")

	opts := append([]network.Option{
		network.WithCacheFile(g.cacheFile),
		network.WithLogger(logging.Component(g.logger, "network")),
	}, g.networkOpts...)

	net, err := network.NewResolver(opts...).Resolve(ctx, settings, store)
	if err != nil {
		return nil, fmt.Errorf("resolving network: %w", err)
	}

	return stack.Assemble(settings, net)
}

// synthesize assembles the stack and builds its template.
func (g *globalFlags) synthesize(ctx context.Context) (*stack.Stack, *webfocus.Template, error) {
	s, err := g.assemble(ctx)
	if err != nil {
		return nil, nil, err
	}
	tmpl, err := s.Template()
	if err != nil {
		return nil, nil, fmt.Errorf("building template: %w", err)
	}
	g.logger.Info().Str("stack", s.Name).Int("resources", len(tmpl.Resources)).Msg("synthesized")
	return s, tmpl, nil
}

// policyEngine compiles the built-in guardrails plus any in policyDir.
func (g *globalFlags) policyEngine(ctx context.Context, policyDir string) (*policy.Engine, error) {
	var extra []policy.Policy
	if policyDir != "" {
		loaded, err := policy.LoadDir(policyDir)
		if err != nil {
			return nil, err
		}
		extra = loaded
	}
	return policy.NewEngine(ctx, logging.Component(g.logger, "policy"), extra...)
}

// encodeTemplate renders tmpl as json or yaml.
func encodeTemplate(tmpl *webfocus.Template, format string) ([]byte, error) {
	switch format {
	case "json":
		return template.ToJSON(tmpl)
	case "yaml":
		return template.ToYAML(tmpl)
	default:
		return nil, fmt.Errorf("unknown format: %s", format)
	}
}

// writeOutput writes data to outputFile, or to stdout when it is empty.
func writeOutput(stdout io.Writer, data []byte, outputFile string) error {
	if outputFile == "" {
		_, err := fmt.Fprintln(stdout, string(data))
		return err
	}
	return os.WriteFile(outputFile, data, 0644)
}
