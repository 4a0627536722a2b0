package cli

import (
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/seantiz/switchyard/internal/model"
)

func newWorkersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "workers",
		Short: "List workers with their load and state",
		RunE: func(cmd *cobra.Command, args []string) error {
			var workers []model.Worker
			if err := client.Get(cmd.Context(), "/v1/workers", &workers); err != nil {
				return fmt.Errorf("list workers: %w", err)
			}
			printWorkers(cmd.OutOrStdout(), workers)
			return nil
		},
	}
}

func newWorkerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "worker",
		Short: "Take a worker down or bring it back online",
	}
	cmd.AddCommand(newWorkerToggleCmd("down", "Stop assigning requests to a worker"))
	cmd.AddCommand(newWorkerToggleCmd("up", "Resume assigning requests to a worker"))
	return cmd
}

func newWorkerToggleCmd(action, short string) *cobra.Command {
	return &cobra.Command{
		Use:   action + " <worker-id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid worker id %q", args[0])
			}
			var resp struct {
				Message string `json:"message"`
			}
			if err := client.Post(cmd.Context(), fmt.Sprintf("/v1/workers/%d/%s", id, action), nil, &resp); err != nil {
				return fmt.Errorf("worker %s: %w", action, err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), resp.Message)
			return nil
		},
	}
}

func printWorkers(w io.Writer, workers []model.Worker) {
	if len(workers) == 0 {
		fmt.Fprintln(w, "No workers configured.")
		return
	}
	fmt.Fprintf(w, "%-8s  %-8s  %s\n", "WORKER", "STATE", "HANDLED")
	fmt.Fprintf(w, "%-8s  %-8s  %s\n", "------", "-----", "-------")
	for _, wk := range workers {
		state := "down"
		if wk.Active {
			state = "active"
		}
		fmt.Fprintf(w, "%-8d  %-8s  %d\n", wk.ID, state, wk.HandledCount)
	}
}
