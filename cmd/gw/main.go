package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/alfredjeanlab/gatewatch/internal/client"
	"github.com/alfredjeanlab/gatewatch/internal/ui"
)

var (
	apiURL     string
	apiToken   string
	jsonOutput bool

	gateClient client.GateClient
)

func defaultAPIURL() string {
	if s := os.Getenv("GATEWATCH_API_URL"); s != "" {
		return s
	}
	return "http://localhost:8080"
}

// noClient is used by commands that do not talk to a running daemon.
func noClient(*cobra.Command, []string) error { return nil }

var rootCmd = &cobra.Command{
	Use:           "gw <command>",
	Short:         "Gate monitor daemon and CLI",
	SilenceUsage:  true,
	SilenceErrors: false,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		gateClient = client.NewHTTPClient(apiURL, apiToken)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if gateClient != nil {
			gateClient.Close()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", defaultAPIURL(), "monitor API URL")
	rootCmd.PersistentFlags().StringVar(&apiToken, "token", os.Getenv("GATEWATCH_AUTH_TOKEN"), "bearer token for the monitor API")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "output as JSON")

	rootCmd.AddGroup(
		&cobra.Group{ID: "monitor", Title: "Monitor:"},
		&cobra.Group{ID: "query", Title: "Query:"},
	)

	// Decided before Execute so --help output is styled the same way.
	if !ui.ShouldUseColor(os.Stdout) {
		ui.ForceNoColor()
	}
	cobra.EnableCommandSorting = false
	rootCmd.SetUsageTemplate(usageTemplate)

	// Monitor
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(fetchCmd)

	// Query
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(logsCmd)
	rootCmd.AddCommand(transitionsCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(healthCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
