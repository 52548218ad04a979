package model

import "time"

// TransitionFilter narrows a journal query. Zero values mean no constraint.
type TransitionFilter struct {
	Since time.Time
	To    GateState
	Limit int
	// Before resumes a newest-first listing after the given row.
	Before *TransitionKey
}

// TransitionKey orders journal rows by (At, ID).
type TransitionKey struct {
	At time.Time
	ID string
}

// Key returns the ordering key of t.
func (t *Transition) Key() TransitionKey {
	return TransitionKey{At: t.At, ID: t.ID}
}

// Less reports whether k sorts before o.
func (k TransitionKey) Less(o TransitionKey) bool {
	if k.At.Equal(o.At) {
		return k.ID < o.ID
	}
	return k.At.Before(o.At)
}
