package cli

import (
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/seantiz/switchyard/internal/model"
)

func newRequestsCmd() *cobra.Command {
	var pendingOnly bool

	cmd := &cobra.Command{
		Use:   "requests",
		Short: "List every admitted request in admission order",
		RunE: func(cmd *cobra.Command, args []string) error {
			var reqs []model.Request
			if err := client.Get(cmd.Context(), "/v1/requests", &reqs); err != nil {
				return fmt.Errorf("list requests: %w", err)
			}
			if pendingOnly {
				reqs = filterPending(reqs)
			}
			printRequests(cmd.OutOrStdout(), reqs)
			return nil
		},
	}

	cmd.Flags().BoolVar(&pendingOnly, "pending", false, "Show only pending requests")
	return cmd
}

func newClientsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clients",
		Short: "List clients with their remaining quota",
		RunE: func(cmd *cobra.Command, args []string) error {
			var clients []model.Client
			if err := client.Get(cmd.Context(), "/v1/clients", &clients); err != nil {
				return fmt.Errorf("list clients: %w", err)
			}
			out := cmd.OutOrStdout()
			if len(clients) == 0 {
				fmt.Fprintln(out, "No clients configured.")
				return nil
			}
			fmt.Fprintf(out, "%-8s  %s\n", "CLIENT", "REMAINING")
			fmt.Fprintf(out, "%-8s  %s\n", "------", "---------")
			for _, c := range clients {
				fmt.Fprintf(out, "%-8d  %d\n", c.ID, c.RemainingQuota)
			}
			return nil
		},
	}
}

func filterPending(reqs []model.Request) []model.Request {
	var out []model.Request
	for _, r := range reqs {
		if r.Status == model.StatusPending {
			out = append(out, r)
		}
	}
	return out
}

func printRequests(w io.Writer, reqs []model.Request) {
	if len(reqs) == 0 {
		fmt.Fprintln(w, "No requests found.")
		return
	}
	fmt.Fprintf(w, "%-8s  %-8s  %-8s  %-10s  %s\n", "CLIENT", "REQUEST", "PRIORITY", "STATUS", "WORKER")
	fmt.Fprintf(w, "%-8s  %-8s  %-8s  %-10s  %s\n", "------", "-------", "--------", "------", "------")
	for _, r := range reqs {
		worker := "-"
		if r.WorkerID != nil {
			worker = strconv.Itoa(*r.WorkerID)
		}
		fmt.Fprintf(w, "%-8d  %-8d  %-8d  %-10s  %s\n", r.ClientID, r.RequestID, r.Priority, r.Status, worker)
	}
}
