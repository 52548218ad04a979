package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/alfredjeanlab/gatewatch/internal/model"
)

// transitionColumns is the column list used for SELECT statements on the transitions table.
const transitionColumns = `id, monitor_id, from_state, to_state,
	distance1, distance2, light, received_at, at`

// maxListLimit bounds a single journal query.
const maxListLimit = 1000

// executor is the interface satisfied by both *sql.DB and *sql.Tx.
type executor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func queryRecordTransition(ctx context.Context, db executor, t *model.Transition) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO transitions (
			id, monitor_id, from_state, to_state,
			distance1, distance2, light, received_at, at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		t.ID,
		t.MonitorID,
		string(t.From),
		string(t.To),
		t.Reading.Distance1,
		t.Reading.Distance2,
		t.Reading.Light,
		nullTime(t.Reading.ReceivedAt),
		t.At,
	)
	if err != nil {
		return fmt.Errorf("insert transition %s: %w", t.ID, err)
	}
	return nil
}

func queryListTransitions(ctx context.Context, db executor, f model.TransitionFilter) ([]*model.Transition, error) {
	var (
		where []string
		args  []any
	)
	if !f.Since.IsZero() {
		args = append(args, f.Since)
		where = append(where, fmt.Sprintf("at >= $%d", len(args)))
	}
	if f.To != "" {
		args = append(args, string(f.To))
		where = append(where, fmt.Sprintf("to_state = $%d", len(args)))
	}
	if f.Before != nil {
		args = append(args, f.Before.At, f.Before.ID)
		where = append(where, fmt.Sprintf("(at, id) < ($%d, $%d)", len(args)-1, len(args)))
	}

	q := `SELECT ` + transitionColumns + ` FROM transitions`
	if len(where) > 0 {
		q += ` WHERE ` + strings.Join(where, " AND ")
	}
	args = append(args, clampLimit(f.Limit))
	q += fmt.Sprintf(` ORDER BY at DESC, id DESC LIMIT $%d`, len(args))

	rows, err := db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list transitions: %w", err)
	}
	defer rows.Close()

	var out []*model.Transition
	for rows.Next() {
		t, err := scanTransition(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transition: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func clampLimit(limit int) int {
	if limit <= 0 || limit > maxListLimit {
		return maxListLimit
	}
	return limit
}
