package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var logsCmd = &cobra.Command{
	Use:     "logs",
	Short:   "Show the gate activity log, most recent first",
	GroupID: "query",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		resp, err := gateClient.Logs(context.Background())
		if err != nil {
			return fmt.Errorf("getting logs: %w", err)
		}

		if jsonOutput {
			printJSON(resp)
		} else {
			printLogs(resp.Entries)
		}
		return nil
	},
}

var logsClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Clear the gate activity log",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := gateClient.ClearLogs(context.Background()); err != nil {
			return fmt.Errorf("clearing logs: %w", err)
		}
		if jsonOutput {
			printJSON(map[string]bool{"cleared": true})
		} else {
			fmt.Println("History cleared")
		}
		return nil
	},
}

func init() {
	logsCmd.AddCommand(logsClearCmd)
}
