package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/seantiz/switchyard/internal/engine"
)

func newSubmitCmd() *cobra.Command {
	var clientID, requestID, priority int

	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Submit a request for dispatch",
		Long:  "Submit a request. Lower priority values are dispatched first.",
		RunE: func(cmd *cobra.Command, args []string) error {
			var receipt engine.Receipt
			err := client.Post(cmd.Context(), "/v1/requests", map[string]int{
				"client_id":  clientID,
				"request_id": requestID,
				"priority":   priority,
			}, &receipt)
			if err != nil {
				return fmt.Errorf("submit: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s (remaining quota: %d)\n", receipt.Message, receipt.RemainingQuota)
			return nil
		},
	}

	cmd.Flags().IntVar(&clientID, "client", 0, "Client id")
	cmd.Flags().IntVar(&requestID, "request", 0, "Request id")
	cmd.Flags().IntVar(&priority, "priority", 1, "Priority (1 is highest)")
	cmd.MarkFlagRequired("client")
	cmd.MarkFlagRequired("request")

	return cmd
}
