package main

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/alfredjeanlab/gatewatch/internal/model"
	"github.com/alfredjeanlab/gatewatch/internal/ui"
)

const timeLayout = "2006-01-02 15:04:05"

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func printJSON(v any) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error marshaling JSON: %v\n", err)
		return
	}
	fmt.Println(string(data))
}

// formatTime renders t in local time, or "-" when unset.
func formatTime(t *time.Time) string {
	if t == nil || t.IsZero() {
		return "-"
	}
	return t.Local().Format(timeLayout)
}

func formatDistance(d float64) string {
	return fmt.Sprintf("%.1f cm", d)
}

func printReading(r *model.Reading) {
	fmt.Printf("Sensor 1:  %s\n", formatDistance(r.Distance1))
	fmt.Printf("Sensor 2:  %s\n", formatDistance(r.Distance2))
	fmt.Printf("Light:     %.0f\n", r.Light)
}

func printSnapshot(s *model.Snapshot) {
	fmt.Printf("Gate:      %s\n", ui.RenderGate(s.Gate))
	fmt.Printf("Link:      %s\n", ui.RenderLink(s.Link))
	if s.Reading != nil {
		printReading(s.Reading)
	} else {
		fmt.Printf("Reading:   %s\n", ui.RenderMuted("none yet"))
	}
	fmt.Printf("Status:    %s\n", s.StatusMessage)
	fmt.Printf("Last Act:  %s\n", formatTime(s.StatusTime))
	fmt.Printf("Last Data: %s\n", formatTime(s.LastSuccess))
	if s.Failures > 0 {
		fmt.Printf("Failures:  %d\n", s.Failures)
	}
	fmt.Printf("Log:       %d/%d\n", s.LogLength, s.LogCap)
	journal := "disabled"
	if s.Journal {
		journal = "enabled"
	}
	fmt.Printf("Journal:   %s\n", journal)
	fmt.Printf("Monitor:   %s\n", ui.RenderMuted(s.MonitorID))
}

func printLogs(entries []model.LogEntry) {
	if len(entries) == 0 {
		fmt.Println(ui.RenderMuted("No activity"))
		return
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TIME\tSTATE\tMESSAGE")
	for _, e := range entries {
		at := e.Time
		fmt.Fprintf(w, "%s\t%s\t%s\n", formatTime(&at), ui.RenderGate(e.State), e.Message)
	}
	w.Flush()
}

func printTransitions(rows []*model.Transition) {
	if len(rows) == 0 {
		fmt.Println(ui.RenderMuted("No transitions"))
		return
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tAT\tFROM\tTO\tSENSOR1\tSENSOR2")
	for _, t := range rows {
		at := t.At
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			t.ID, formatTime(&at), t.From, t.To,
			formatDistance(t.Reading.Distance1), formatDistance(t.Reading.Distance2))
	}
	w.Flush()
}
