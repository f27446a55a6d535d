package main

import (
	"github.com/spf13/cobra"

	"github.com/aanand-mishra/student-records/internal/tui"
)

// logFileFlag names the tui flag that sends logs to a file. Without it the
// tui discards logs, since the screen belongs to the UI.
const logFileFlag = "log-file"

func newTUICmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:         "tui",
		Short:       "Open the interactive terminal form and table",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{needsStore: "true"},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return tui.Run(cmd.Context(), a.store, a.logger)
		},
	}
	cmd.Flags().String(logFileFlag, "", "append logs to this file while the UI runs")
	return cmd
}
