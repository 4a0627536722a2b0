package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/seantiz/switchyard/internal/model"
)

func newConfigureCmd() *cobra.Command {
	var workers, clients, quota int

	cmd := &cobra.Command{
		Use:   "configure",
		Short: "Reset the pool with a new number of workers and clients",
		Long:  "Reset the pool. All pending and processed requests are discarded.",
		RunE: func(cmd *cobra.Command, args []string) error {
			var cfg model.Configuration
			err := client.Post(cmd.Context(), "/v1/configure", map[string]int{
				"num_workers":         workers,
				"num_clients":         clients,
				"requests_per_client": quota,
			}, &cfg)
			if err != nil {
				return fmt.Errorf("configure: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Configured %d workers, %d clients, %d requests per client.\n",
				cfg.NumWorkers, cfg.NumClients, cfg.RequestsPerClient)
			return nil
		},
	}

	cmd.Flags().IntVar(&workers, "workers", 0, "Number of workers")
	cmd.Flags().IntVar(&clients, "clients", 0, "Number of clients")
	cmd.Flags().IntVar(&quota, "quota", 0, "Requests allowed per client")
	cmd.MarkFlagRequired("workers")
	cmd.MarkFlagRequired("clients")
	cmd.MarkFlagRequired("quota")

	return cmd
}
