package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/seantiz/switchyard/internal/engine"
)

func newStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show aggregate dispatch counters",
		RunE: func(cmd *cobra.Command, args []string) error {
			var st engine.Stats
			if err := client.Get(cmd.Context(), "/v1/stats", &st); err != nil {
				return fmt.Errorf("get stats: %w", err)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Requests:  %d total, %d pending, %d processed\n", st.Total, st.Pending, st.Processed)
			fmt.Fprintf(out, "Queue:     %d waiting\n", st.QueueDepth)
			fmt.Fprintf(out, "Workers:   %d of %d active\n", st.ActiveWorkers, st.Workers)
			return nil
		},
	}
}
