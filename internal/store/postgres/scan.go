package postgres

import (
	"database/sql"
	"time"

	"github.com/alfredjeanlab/gatewatch/internal/model"
)

// scannable is the interface satisfied by both *sql.Row and *sql.Rows.
type scannable interface {
	Scan(dest ...any) error
}

// scanTransition scans a single row into a model.Transition.
// The row must contain columns in the order defined by transitionColumns.
func scanTransition(row scannable) (*model.Transition, error) {
	var (
		t          model.Transition
		from, to   string
		receivedAt sql.NullTime
	)
	err := row.Scan(
		&t.ID,
		&t.MonitorID,
		&from,
		&to,
		&t.Reading.Distance1,
		&t.Reading.Distance2,
		&t.Reading.Light,
		&receivedAt,
		&t.At,
	)
	if err != nil {
		return nil, err
	}
	t.From = model.GateState(from)
	t.To = model.GateState(to)
	if receivedAt.Valid {
		t.Reading.ReceivedAt = receivedAt.Time
	}
	return &t, nil
}

// nullTime converts a zero time to a NULL column value.
func nullTime(t time.Time) sql.NullTime {
	if t.IsZero() {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t, Valid: true}
}
