package main

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/lex00/webfocus-db/internal/logging"
	"github.com/lex00/webfocus-db/internal/secretstatus"
	"github.com/lex00/webfocus-db/internal/stack"
)

func newSecretStatusCmd(g *globalFlags) *cobra.Command {
	var outputFormat string

	cmd := &cobra.Command{
		Use:   "secret-status",
		Short: "Check whether the master credential secret exists",
		Long: `Secret-status describes the Secrets Manager secret the stack would create.

A secret left behind by an earlier stack, or one pending deletion, blocks the
create with a name conflict. This command is read-only.

Examples:
    webfocus-db secret-status
    webfocus-db secret-status -c instance=b --format json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSecretStatus(cmd, g, outputFormat)
		},
	}

	cmd.Flags().StringVarP(&outputFormat, "format", "f", "text", "Output format: text or json")

	return cmd
}

func runSecretStatus(cmd *cobra.Command, g *globalFlags, format string) error {
	ctx := cmd.Context()

	settings, _, err := g.settings()
	if err != nil {
		return err
	}
	name := stack.SecretName(settings.Env, settings.Deployment, settings.Instance)

	opts := append([]secretstatus.Option{
		secretstatus.WithRegion(settings.Region),
		secretstatus.WithLogger(logging.Component(g.logger, "secretstatus")),
	}, g.secretOpts...)

	checker, err := secretstatus.NewChecker(ctx, opts...)
	if err != nil {
		return err
	}
	status, err := checker.Check(ctx, name)
	if err != nil {
		return err
	}

	return outputSecretStatus(cmd.OutOrStdout(), status, format)
}

func outputSecretStatus(w io.Writer, status secretstatus.Status, format string) error {
	switch format {
	case "json":
		data, err := json.MarshalIndent(status, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(w, string(data))

	case "text":
		switch {
		case !status.Exists:
			fmt.Fprintf(w, "%s: not found\n", status.Name)
		case status.PendingDeletion:
			fmt.Fprintf(w, "%s: pending deletion on %s\n", status.Name, status.DeletionDate.Format(time.DateOnly))
		default:
			fmt.Fprintf(w, "%s: exists\n", status.Name)
			fmt.Fprintf(w, "  ARN:      %s\n", status.ARN)
			if status.LastChangedDate != nil {
				fmt.Fprintf(w, "  Changed:  %s\n", status.LastChangedDate.Format(time.RFC3339))
			}
			fmt.Fprintf(w, "  Rotation: %t\n", status.RotationEnabled)
		}

	default:
		return fmt.Errorf("unknown format: %s", format)
	}

	return nil
}
