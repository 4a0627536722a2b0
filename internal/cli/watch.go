package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/seantiz/switchyard/internal/model"
)

const watchLogLines = 3

func newWatchCmd() *cobra.Command {
	var (
		interval time.Duration
		count    int
	)

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Print workers, pending requests and recent logs periodically",
		Long:  "Poll the server and print a status snapshot every interval until interrupted.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if interval <= 0 {
				return fmt.Errorf("interval must be positive")
			}
			err := watch(cmd.Context(), cmd.OutOrStdout(), interval, count)
			if errors.Is(err, context.Canceled) {
				fmt.Fprintln(cmd.OutOrStdout(), "\nMonitoring stopped.")
				return nil
			}
			return err
		},
	}

	cmd.Flags().DurationVar(&interval, "interval", 5*time.Second, "Polling interval")
	cmd.Flags().IntVar(&count, "count", 0, "Stop after N snapshots (0 runs until interrupted)")
	return cmd
}

// watch prints a snapshot immediately and then every interval. Fetch errors
// are reported inline and do not stop the loop.
func watch(ctx context.Context, out io.Writer, interval time.Duration, count int) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for n := 1; ; n++ {
		if err := printSnapshot(ctx, out); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			fmt.Fprintf(out, "Error: %v\n", err)
		}
		if count > 0 && n >= count {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func printSnapshot(ctx context.Context, out io.Writer) error {
	var workers []model.Worker
	if err := client.Get(ctx, "/v1/workers", &workers); err != nil {
		return fmt.Errorf("list workers: %w", err)
	}
	var reqs []model.Request
	if err := client.Get(ctx, "/v1/requests", &reqs); err != nil {
		return fmt.Errorf("list requests: %w", err)
	}
	logs, err := fetchLogs(ctx, watchLogLines)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "\n== Status at %s ==\n", time.Now().Format(time.TimeOnly))
	fmt.Fprintln(out, "Workers:")
	printWorkers(out, workers)
	fmt.Fprintln(out, "Pending requests:")
	printRequests(out, filterPending(reqs))
	fmt.Fprintln(out, "Recent logs:")
	for _, l := range logs {
		fmt.Fprintf(out, "  %s\n", l)
	}
	return nil
}
