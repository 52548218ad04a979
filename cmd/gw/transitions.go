package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/alfredjeanlab/gatewatch/internal/client"
	"github.com/alfredjeanlab/gatewatch/internal/model"
)

var transitionsCmd = &cobra.Command{
	Use:     "transitions",
	Short:   "List journaled gate transitions",
	GroupID: "query",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		since, _ := cmd.Flags().GetDuration("since")
		to, _ := cmd.Flags().GetString("to")

		req := &client.TransitionsRequest{Limit: limit}
		if since > 0 {
			req.Since = time.Now().Add(-since)
		}
		if to != "" {
			st := model.GateState(to)
			if !st.IsValid() {
				return fmt.Errorf("--to must be open or closed, got %q", to)
			}
			req.To = st
		}

		rows, err := gateClient.Transitions(context.Background(), req)
		if err != nil {
			return fmt.Errorf("listing transitions: %w", err)
		}

		if jsonOutput {
			printJSON(rows)
		} else {
			printTransitions(rows)
		}
		return nil
	},
}

func init() {
	transitionsCmd.Flags().Int("limit", 20, "maximum number of transitions")
	transitionsCmd.Flags().Duration("since", 0, "only transitions newer than this (e.g. 24h)")
	transitionsCmd.Flags().String("to", "", "only transitions into this state (open|closed)")
}
