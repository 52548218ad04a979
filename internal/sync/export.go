package sync

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/alfredjeanlab/gatewatch/internal/model"
)

// exportPageSize is how many journal rows one export query asks for.
const exportPageSize = 500

// header is the first JSONL record written by ExportJSONL. It carries no
// wall-clock time, so an unchanged journal exports to identical bytes.
type header struct {
	Version         string     `json:"version"`
	Type            string     `json:"type"`
	TransitionCount int        `json:"transition_count"`
	FirstAt         *time.Time `json:"first_at,omitempty"`
	LastAt          *time.Time `json:"last_at,omitempty"`
	MonitorIDs      []string   `json:"monitor_ids,omitempty"`
}

// record wraps a single JSONL line with a type discriminator.
type record struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// Summary describes one export of the journal.
type Summary struct {
	Transitions int
	First       time.Time // zero when the journal is empty
	Last        time.Time
	MonitorIDs  []string // distinct, sorted
}

func summarize(transitions []*model.Transition) Summary {
	sum := Summary{Transitions: len(transitions)}
	if len(transitions) == 0 {
		return sum
	}
	sum.First = transitions[0].At
	sum.Last = transitions[len(transitions)-1].At

	seen := make(map[string]bool)
	for _, t := range transitions {
		if t.MonitorID != "" && !seen[t.MonitorID] {
			seen[t.MonitorID] = true
			sum.MonitorIDs = append(sum.MonitorIDs, t.MonitorID)
		}
	}
	sort.Strings(sum.MonitorIDs)
	return sum
}

// readJournal pages backwards through the whole journal.
func readJournal(ctx context.Context, s Source) ([]*model.Transition, error) {
	var (
		all    []*model.Transition
		filter = model.TransitionFilter{Limit: exportPageSize}
	)
	for {
		page, err := s.ListTransitions(ctx, filter)
		if err != nil {
			return nil, err
		}
		all = append(all, page...)
		if len(page) < exportPageSize {
			return all, nil
		}
		last := page[len(page)-1].Key()
		filter.Before = &last
	}
}

// ExportJSONL writes every journaled transition as JSONL to w, oldest
// first, and returns a summary of what was written.
func ExportJSONL(ctx context.Context, s Source, w io.Writer) (Summary, error) {
	transitions, err := readJournal(ctx, s)
	if err != nil {
		return Summary{}, fmt.Errorf("list transitions: %w", err)
	}
	sort.SliceStable(transitions, func(i, j int) bool {
		return transitions[i].Key().Less(transitions[j].Key())
	})
	sum := summarize(transitions)

	h := header{
		Version:         "1",
		Type:            "header",
		TransitionCount: sum.Transitions,
		MonitorIDs:      sum.MonitorIDs,
	}
	if sum.Transitions > 0 {
		first, last := sum.First.UTC(), sum.Last.UTC()
		h.FirstAt, h.LastAt = &first, &last
	}

	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(h); err != nil {
		return Summary{}, fmt.Errorf("encode header: %w", err)
	}
	for _, t := range transitions {
		if err := enc.Encode(record{Type: "transition", Data: t}); err != nil {
			return Summary{}, fmt.Errorf("encode transition %s: %w", t.ID, err)
		}
	}
	return sum, nil
}
