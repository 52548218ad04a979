package sync

import (
	"context"
	"sort"
	"strings"

	"github.com/alfredjeanlab/gatewatch/internal/model"
)

// mockMaxLimit mirrors the Postgres journal's per-query bound.
const mockMaxLimit = 1000

// mockStore is an in-memory Source for sync tests.
type mockStore struct {
	transitions []*model.Transition
	err         error
	calls       int
}

func newMockStore() *mockStore {
	return &mockStore{}
}

func (m *mockStore) ListTransitions(_ context.Context, f model.TransitionFilter) ([]*model.Transition, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	limit := f.Limit
	if limit <= 0 || limit > mockMaxLimit {
		limit = mockMaxLimit
	}

	rows := append([]*model.Transition(nil), m.transitions...)
	sort.Slice(rows, func(i, j int) bool { return rows[j].Key().Less(rows[i].Key()) })

	var out []*model.Transition
	for _, t := range rows {
		if f.Before != nil && !t.Key().Less(*f.Before) {
			continue
		}
		out = append(out, t)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func nonEmptyLines(s string) []string {
	var out []string
	for _, line := range strings.Split(s, "\n") {
		if strings.TrimSpace(line) != "" {
			out = append(out, line)
		}
	}
	return out
}
