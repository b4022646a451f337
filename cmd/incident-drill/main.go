// Command incident-drill runs the AI incident response walkthrough, either as
// an HTTP service or as a scripted simulation on the terminal.
package main

import (
	"fmt"
	"os"

	"github.com/bissquit/incident-drill/internal/config"
	"github.com/bissquit/incident-drill/internal/version"
	"github.com/spf13/cobra"
)

// options shared by all subcommands.
type options struct {
	configPath string
	cfg        *config.Config
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:   "incident-drill",
		Short: "AI model incident response walkthrough",
		Long: `incident-drill walks a responder through the incident response lifecycle of a
degraded AI trading model: Detect, Contain, Investigate, Remediate, Document and
Prevent, and compiles the formal incident report from the record built on the way.

Configuration is read from an optional YAML file and DRILL_ environment
variables, e.g. DRILL_SERVER__PORT=8081.`,
		Version:       version.String(),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			cfg, err := config.Load(opts.configPath)
			if err != nil {
				return err
			}
			opts.cfg = cfg
			return nil
		},
	}

	root.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "path to YAML config file")

	root.AddCommand(
		newServeCmd(opts),
		newWalkthroughCmd(opts),
		newReportCmd(opts),
	)
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
