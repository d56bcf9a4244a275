package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lex00/webfocus-db/internal/contextstore"
	"github.com/lex00/webfocus-db/internal/stack"
)

func newContextCmd(g *globalFlags) *cobra.Command {
	var (
		outputFormat string
		keysOnly     bool
	)

	cmd := &cobra.Command{
		Use:   "context",
		Short: "Show the resolved deployment context",
		Long: `Context resolves the context the same way synth does and prints the result.

It fails with the name of the first missing key, which makes it a quick
check of a new environment profile.

Examples:
    webfocus-db context
    webfocus-db context -c awsEnv=tcmmprod --format json
    webfocus-db context --keys`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runContext(cmd.OutOrStdout(), g, outputFormat, keysOnly)
		},
	}

	cmd.Flags().StringVarP(&outputFormat, "format", "f", "text", "Output format: text or json")
	cmd.Flags().BoolVar(&keysOnly, "keys", false, "List the merged context keys without resolving them")

	return cmd
}

// contextView is the resolved context as printed by the context command.
type contextView struct {
	Env           string                         `json:"env"`
	Instance      string                         `json:"instance"`
	Account       string                         `json:"account,omitempty"`
	Region        string                         `json:"region,omitempty"`
	StackName     string                         `json:"stack_name"`
	Database      string                         `json:"database"`
	SecretName    string                         `json:"secret_name"`
	RemovalPolicy string                         `json:"removal_policy"`
	Network       *contextstore.NetworkKeys      `json:"network,omitempty"`
	Deployment    contextstore.DeploymentContext `json:"deployment"`
}

func runContext(w io.Writer, g *globalFlags, format string, keysOnly bool) error {
	if keysOnly {
		store, err := contextstore.Open(contextstore.Sources{
			ContextFile: g.contextFile,
			CacheFile:   g.cacheFile,
			Overrides:   g.overrides,
		})
		if err != nil {
			return err
		}
		for _, key := range store.Keys() {
			fmt.Fprintln(w, key)
		}
		return nil
	}

	settings, _, err := g.settings()
	if err != nil {
		return err
	}

	dc := settings.Deployment
	view := contextView{
		Env:           settings.Env,
		Instance:      settings.Instance,
		Account:       settings.Account,
		Region:        settings.Region,
		StackName:     stack.StackName(settings.Instance),
		Database:      stack.DatabaseIdentifier(settings.Env, dc, settings.Instance),
		SecretName:    stack.SecretName(settings.Env, dc, settings.Instance),
		RemovalPolicy: stack.MapRemovalPolicy(dc.RemovalPolicy),
		Deployment:    dc,
	}
	if settings.Network.Static() {
		view.Network = &settings.Network
	}

	switch format {
	case "json":
		data, err := json.MarshalIndent(view, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(w, string(data))

	case "text":
		fmt.Fprintf(w, "Environment:     %s\n", view.Env)
		fmt.Fprintf(w, "Instance:        %s\n", view.Instance)
		fmt.Fprintf(w, "Account:         %s\n", orUnset(view.Account))
		fmt.Fprintf(w, "Region:          %s\n", orUnset(view.Region))
		fmt.Fprintf(w, "Stack:           %s\n", view.StackName)
		fmt.Fprintf(w, "Database:        %s\n", view.Database)
		fmt.Fprintf(w, "Secret:          %s\n", view.SecretName)
		fmt.Fprintf(w, "Removal policy:  %s (%s)\n", view.RemovalPolicy, dc.RemovalPolicy)
		fmt.Fprintf(w, "Allowed CIDRs:   %s\n", strings.Join(dc.InternalIP, ", "))
		if view.Network != nil {
			fmt.Fprintf(w, "VPC:             %s (%s)\n", view.Network.VpcID, view.Network.VpcCidr)
			fmt.Fprintf(w, "Subnets:         %s\n", strings.Join(view.Network.IsolatedSubnetIDs, ", "))
		} else {
			fmt.Fprintln(w, "VPC:             lookup")
		}

	default:
		return fmt.Errorf("unknown format: %s", format)
	}

	return nil
}

func orUnset(s string) string {
	if s == "" {
		return "(unset)"
	}
	return s
}
