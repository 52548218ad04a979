package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/alfredjeanlab/gatewatch/internal/device"
	"github.com/alfredjeanlab/gatewatch/internal/gate"
	"github.com/alfredjeanlab/gatewatch/internal/model"
	"github.com/alfredjeanlab/gatewatch/internal/ui"
)

// fetchResult is the JSON form of gw fetch.
type fetchResult struct {
	Reading *model.Reading   `json:"reading,omitempty"`
	Gate    model.GateState  `json:"gate,omitempty"`
	Link    model.LinkStatus `json:"link"`
	Message string           `json:"link_message"`
	Error   string           `json:"error,omitempty"`
}

var fetchCmd = &cobra.Command{
	Use:     "fetch",
	Short:   "Poll the gate controller once and print the reading",
	GroupID: "monitor",
	// No daemon needed.
	PersistentPreRunE: noClient,
	RunE: func(cmd *cobra.Command, args []string) error {
		deviceURL, _ := cmd.Flags().GetString("device")
		timeout, _ := cmd.Flags().GetDuration("timeout")
		threshold, _ := cmd.Flags().GetFloat64("threshold")
		if threshold <= 0 {
			return fmt.Errorf("--threshold must be positive")
		}

		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		dev := device.New(deviceURL, timeout)
		r, err := dev.Fetch(ctx)
		res := fetchResult{Link: device.Classify(err)}
		res.Message = res.Link.Message()
		if err != nil {
			res.Error = err.Error()
		} else {
			res.Reading = r
			res.Gate = model.GateClosed
			if gate.Detects(r.Distance1, threshold) || gate.Detects(r.Distance2, threshold) {
				res.Gate = model.GateOpen
			}
		}

		if jsonOutput {
			printJSON(res)
		} else {
			printFetch(res)
		}
		if err != nil {
			return fmt.Errorf("fetching %s: %w", dev.URL(), err)
		}
		return nil
	},
}

func printFetch(res fetchResult) {
	fmt.Printf("Link:      %s\n", ui.RenderLink(res.Link))
	if res.Reading == nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", res.Error)
		return
	}
	printReading(res.Reading)
	fmt.Printf("Gate:      %s\n", ui.RenderGate(res.Gate))
}

func init() {
	fetchCmd.Flags().String("device", envOr("GATEWATCH_DEVICE_URL", device.DefaultURL), "gate controller URL")
	fetchCmd.Flags().Duration("timeout", device.DefaultTimeout, "request timeout")
	fetchCmd.Flags().Float64("threshold", gate.DefaultThreshold, "detection threshold in cm")
}
