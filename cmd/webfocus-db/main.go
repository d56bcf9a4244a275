// Command webfocus-db synthesizes the WebFOCUS PostgreSQL stack for one instance.
//
// Usage:
//
//	webfocus-db synth -c instance=a           Generate CloudFormation template
//	webfocus-db validate                      Lint the template and check guardrails
//	webfocus-db list                          Show the stack and its resources
//	webfocus-db version                       Show version
package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/lex00/webfocus-db/internal/logging"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	g := &globalFlags{getenv: os.Getenv, logger: zerolog.Nop()}

	rootCmd := &cobra.Command{
		Use:   "webfocus-db",
		Short: "Synthesize the WebFOCUS PostgreSQL stack",
		Long: `webfocus-db builds the CloudFormation template for a WebFOCUS PostgreSQL
instance from the deployment context in cdk.json.

The context names the environment and instance and carries one deployment
profile per environment:

    {"context": {"awsEnv": "tcmmuat", "instance": "a", "uat": {...}}}

Then generate the template:

    webfocus-db synth -o template.json`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			g.logger = logging.Setup(cmd.ErrOrStderr(), g.verbose)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&g.contextFile, "context-file", "cdk.json", "Project file holding the context object (JSON or YAML)")
	flags.StringVar(&g.cacheFile, "cache-file", "cdk.context.json", "Lookup cache file")
	flags.StringArrayVarP(&g.overrides, "context", "c", nil, "Context override key=value (repeatable)")
	flags.BoolVar(&g.lookup, "lookup", false, "Look up the VPC and account in AWS when not in context")
	flags.BoolVarP(&g.verbose, "verbose", "v", false, "Debug logging")

	rootCmd.AddCommand(
		newSynthCmd(g),
		newValidateCmd(g),
		newListCmd(g),
		newGraphCmd(g),
		newDiffCmd(g),
		newWatchCmd(g),
		newContextCmd(g),
		newSecretStatusCmd(g),
		newVersionCmd(),
	)

	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "webfocus-db %s\n", getVersion())
		},
	}
}
