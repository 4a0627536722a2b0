package cli

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/seantiz/switchyard/internal/config"
)

var (
	flagServer    string
	flagDebug     bool
	flagLogLevel  string
	flagLogFormat string

	logger *slog.Logger
	client *Client
)

// defaultServer returns the default server URL, checking SWITCHYARD_SERVER first.
func defaultServer() string {
	if s := os.Getenv("SWITCHYARD_SERVER"); s != "" {
		return s
	}
	return "http://localhost:8080"
}

// NewRootCmd creates the root cobra command for the yardctl CLI.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "yardctl",
		Short: "yardctl drives a switchyard dispatch server",
		Long:  "yardctl configures the worker pool, submits requests, toggles workers and watches dispatch progress on a switchyard server.",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if flagDebug {
				flagLogLevel = "debug"
			}
			logger = config.NewLogger(cmd.ErrOrStderr(), config.ParseLogLevel(flagLogLevel), flagLogFormat)
			client = NewClient(flagServer, logger)
		},
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVar(&flagServer, "server", defaultServer(), "switchyard server URL (or SWITCHYARD_SERVER env)")
	root.PersistentFlags().BoolVar(&flagDebug, "debug", false, "Enable debug logging")
	root.PersistentFlags().StringVar(&flagLogLevel, "log-level", "warn", "Log level (debug, info, warn, error)")
	root.PersistentFlags().StringVar(&flagLogFormat, "log-format", "text", "Log format (text, json)")

	root.AddCommand(
		newConfigureCmd(),
		newSubmitCmd(),
		newWorkersCmd(),
		newWorkerCmd(),
		newRequestsCmd(),
		newClientsCmd(),
		newLogsCmd(),
		newStatsCmd(),
		newWatchCmd(),
	)

	return root
}
