package main

import (
	"fmt"
	"io"
	"time"

	"github.com/bissquit/incident-drill/internal/domain"
	"github.com/bissquit/incident-drill/internal/drill"
	"github.com/bissquit/incident-drill/internal/report"
	"github.com/spf13/cobra"
)

func newReportCmd(_ *options) *cobra.Command {
	flags := &runFlags{}
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print the final formal report as plain text",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			clock, err := flags.clock()
			if err != nil {
				return err
			}
			return runReport(cmd.OutOrStdout(), clock)
		},
	}
	flags.register(cmd)
	return cmd
}

func runReport(w io.Writer, clock func() time.Time) error {
	ctrl := drill.NewController(drill.NewIncident(), clock)
	for _, p := range domain.Phases() {
		if p.IsTerminal() {
			break
		}
		if err := ctrl.Trigger(p); err != nil {
			return err
		}
	}

	body, err := report.Compile(ctrl.Incident())
	if err != nil {
		return err
	}
	_, err = fmt.Fprint(w, body)
	return err
}
