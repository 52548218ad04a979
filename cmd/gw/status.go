package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:     "status",
	Short:   "Show gate state, link status and the latest reading",
	GroupID: "query",
	RunE: func(cmd *cobra.Command, args []string) error {
		snap, err := gateClient.Status(context.Background())
		if err != nil {
			return fmt.Errorf("getting status: %w", err)
		}

		if jsonOutput {
			printJSON(snap)
		} else {
			printSnapshot(snap)
		}
		return nil
	},
}
