package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
)

func newLogsCmd() *cobra.Command {
	var (
		tail   int
		follow bool
	)

	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Show the dispatch log",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logs, err := fetchLogs(ctx, tail)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, l := range logs {
				fmt.Fprintln(out, l)
			}
			if !follow {
				return nil
			}
			return followLogs(ctx, out)
		},
	}

	cmd.Flags().IntVar(&tail, "tail", 0, "Show only the last N lines (0 for all)")
	cmd.Flags().BoolVarP(&follow, "follow", "f", false, "Stream new lines until interrupted")
	return cmd
}

func fetchLogs(ctx context.Context, tail int) ([]string, error) {
	path := "/v1/logs"
	if tail > 0 {
		path = fmt.Sprintf("/v1/logs?tail=%d", tail)
	}
	var resp struct {
		Logs []string `json:"logs"`
	}
	if err := client.Get(ctx, path, &resp); err != nil {
		return nil, fmt.Errorf("get logs: %w", err)
	}
	return resp.Logs, nil
}

// followLogs prints the data lines of the server's log event stream until
// the stream ends or ctx is cancelled.
func followLogs(ctx context.Context, out io.Writer) error {
	body, err := client.Stream(ctx, "/v1/logs/stream")
	if err != nil {
		return fmt.Errorf("stream logs: %w", err)
	}
	defer body.Close()

	sc := bufio.NewScanner(body)
	event := ""
	for sc.Scan() {
		line := sc.Text()
		switch {
		case line == "":
			event = ""
		case strings.HasPrefix(line, "event: "):
			event = strings.TrimPrefix(line, "event: ")
		case strings.HasPrefix(line, "data: "):
			if event == "done" {
				return nil
			}
			fmt.Fprintln(out, strings.TrimPrefix(line, "data: "))
		}
	}
	if err := sc.Err(); err != nil && !errors.Is(ctx.Err(), context.Canceled) {
		return fmt.Errorf("read log stream: %w", err)
	}
	return nil
}
