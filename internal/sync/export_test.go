package sync

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/alfredjeanlab/gatewatch/internal/model"
)

func TestExportJSONL_Empty(t *testing.T) {
	ms := newMockStore()
	var buf bytes.Buffer
	sum, err := ExportJSONL(context.Background(), ms, &buf)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sum.Transitions != 0 || !sum.First.IsZero() || sum.MonitorIDs != nil {
		t.Fatalf("unexpected summary: %+v", sum)
	}

	lines := nonEmptyLines(buf.String())
	if len(lines) != 1 {
		t.Fatalf("expected 1 line (header only), got %d", len(lines))
	}

	var h header
	if err := json.Unmarshal([]byte(lines[0]), &h); err != nil {
		t.Fatalf("unmarshal header: %v", err)
	}
	if h.Version != "1" || h.Type != "header" || h.TransitionCount != 0 || h.FirstAt != nil {
		t.Fatalf("unexpected header: %+v", h)
	}
}

func TestExportJSONL_OldestFirst(t *testing.T) {
	ms := newMockStore()
	base := time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)
	ms.transitions = []*model.Transition{
		{ID: "gt-a", MonitorID: "mon-2", From: model.GateClosed, To: model.GateOpen, At: base, Reading: model.Reading{Distance1: 20}},
		{ID: "gt-b", MonitorID: "mon-1", From: model.GateOpen, To: model.GateClosed, At: base.Add(time.Minute)},
		{ID: "gt-c", MonitorID: "mon-2", From: model.GateClosed, To: model.GateOpen, At: base.Add(2 * time.Minute)},
	}

	var buf bytes.Buffer
	sum, err := ExportJSONL(context.Background(), ms, &buf)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sum.Transitions != 3 || !sum.First.Equal(base) || !sum.Last.Equal(base.Add(2*time.Minute)) {
		t.Fatalf("unexpected summary: %+v", sum)
	}
	if strings.Join(sum.MonitorIDs, ",") != "mon-1,mon-2" {
		t.Fatalf("MonitorIDs = %v", sum.MonitorIDs)
	}

	lines := nonEmptyLines(buf.String())
	if len(lines) != 4 {
		t.Fatalf("expected 4 lines, got %d", len(lines))
	}

	var h header
	if err := json.Unmarshal([]byte(lines[0]), &h); err != nil {
		t.Fatalf("unmarshal header: %v", err)
	}
	if h.TransitionCount != 3 {
		t.Fatalf("expected transition_count=3, got %d", h.TransitionCount)
	}
	if h.FirstAt == nil || !h.FirstAt.Equal(base) || h.LastAt == nil || !h.LastAt.Equal(base.Add(2*time.Minute)) {
		t.Fatalf("unexpected header span: %+v", h)
	}

	wantIDs := []string{"gt-a", "gt-b", "gt-c"}
	for i, line := range lines[1:] {
		var rec struct {
			Type string           `json:"type"`
			Data model.Transition `json:"data"`
		}
		if err := json.Unmarshal([]byte(line), &rec); err != nil {
			t.Fatalf("unmarshal line %d: %v", i+1, err)
		}
		if rec.Type != "transition" {
			t.Fatalf("line %d: expected type=transition, got %q", i+1, rec.Type)
		}
		if rec.Data.ID != wantIDs[i] {
			t.Fatalf("line %d: expected %s, got %s", i+1, wantIDs[i], rec.Data.ID)
		}
	}
}

func TestExportJSONL_StoreError(t *testing.T) {
	ms := newMockStore()
	ms.err = errors.New("db down")
	var buf bytes.Buffer
	if _, err := ExportJSONL(context.Background(), ms, &buf); err == nil {
		t.Fatal("expected error")
	}
	if buf.Len() != 0 {
		t.Fatalf("expected nothing written, got %q", buf.String())
	}
}

func TestExportJSONL_WholeJournal(t *testing.T) {
	ms := newMockStore()
	base := time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)
	const n = 2500
	for i := 0; i < n; i++ {
		// Pairs share a timestamp so paging must break ties on ID.
		ms.transitions = append(ms.transitions, &model.Transition{
			ID: fmt.Sprintf("gt-%05d", i),
			At: base.Add(time.Duration(i/2) * time.Second),
		})
	}

	var buf bytes.Buffer
	sum, err := ExportJSONL(context.Background(), ms, &buf)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sum.Transitions != n {
		t.Fatalf("summary has %d transitions, want %d", sum.Transitions, n)
	}
	if want := n/exportPageSize + 1; ms.calls != want {
		t.Fatalf("expected %d journal queries, got %d", want, ms.calls)
	}

	lines := nonEmptyLines(buf.String())
	if len(lines) != n+1 {
		t.Fatalf("expected %d lines, got %d", n+1, len(lines))
	}
	var h header
	if err := json.Unmarshal([]byte(lines[0]), &h); err != nil {
		t.Fatalf("unmarshal header: %v", err)
	}
	if h.TransitionCount != n {
		t.Fatalf("expected transition_count=%d, got %d", n, h.TransitionCount)
	}
	for i, line := range lines[1:] {
		var rec struct {
			Data model.Transition `json:"data"`
		}
		if err := json.Unmarshal([]byte(line), &rec); err != nil {
			t.Fatalf("unmarshal line %d: %v", i+1, err)
		}
		if want := fmt.Sprintf("gt-%05d", i); rec.Data.ID != want {
			t.Fatalf("line %d: expected %s, got %s", i+1, want, rec.Data.ID)
		}
	}
}

func TestExportJSONL_Stable(t *testing.T) {
	ms := newMockStore()
	ms.transitions = []*model.Transition{
		{ID: "gt-a", From: model.GateClosed, To: model.GateOpen, At: time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)},
	}
	var first, second bytes.Buffer
	if _, err := ExportJSONL(context.Background(), ms, &first); err != nil {
		t.Fatalf("first export: %v", err)
	}
	if _, err := ExportJSONL(context.Background(), ms, &second); err != nil {
		t.Fatalf("second export: %v", err)
	}
	if first.String() != second.String() {
		t.Fatalf("unchanged journal exported differently:\n%s\n%s", first.String(), second.String())
	}
}
