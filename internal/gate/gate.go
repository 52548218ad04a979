// Package gate holds the open/closed state machine driven by the
// controller's two distance sensors.
package gate

import (
	"sync"

	"github.com/alfredjeanlab/gatewatch/internal/model"
)

// DefaultThreshold is the detection distance used by the controller firmware.
const DefaultThreshold = 50

// Detects reports whether a single distance reading counts as an object at
// the gate: strictly positive (0 means no echo) and no further than threshold.
func Detects(distance, threshold float64) bool {
	return distance > 0 && distance <= threshold
}

// Machine tracks the gate state. It starts closed.
//
// A closed gate opens when either sensor detects an object within the
// threshold. An open gate stays open while either sensor detects an object
// within threshold+band. With a zero band both edges use the same
// comparison and the state always mirrors the most recent reading.
type Machine struct {
	mu        sync.Mutex
	threshold float64
	band      float64
	state     model.GateState
}

// New returns a closed machine. Non-positive thresholds fall back to
// DefaultThreshold and negative bands to zero.
func New(threshold, band float64) *Machine {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	if band < 0 {
		band = 0
	}
	return &Machine{threshold: threshold, band: band, state: model.GateClosed}
}

// Evaluate feeds one reading into the machine and returns the state before
// and after. changed is true iff the state flipped.
func (m *Machine) Evaluate(r model.Reading) (from, to model.GateState, changed bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	from = m.state
	limit := m.threshold
	if from == model.GateOpen {
		limit += m.band
	}
	detected := Detects(r.Distance1, limit) || Detects(r.Distance2, limit)

	to = model.GateClosed
	if detected {
		to = model.GateOpen
	}
	m.state = to
	return from, to, from != to
}

// State returns the current gate state.
func (m *Machine) State() model.GateState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Threshold returns the detection threshold.
func (m *Machine) Threshold() float64 {
	return m.threshold
}

// Reset puts the machine back in the closed state.
func (m *Machine) Reset() {
	m.mu.Lock()
	m.state = model.GateClosed
	m.mu.Unlock()
}
