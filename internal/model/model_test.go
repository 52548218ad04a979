package model

import (
	"encoding/json"
	"testing"
	"time"
)

func TestGateStateIsValid(t *testing.T) {
	for _, tc := range []struct {
		state GateState
		want  bool
	}{
		{GateOpen, true},
		{GateClosed, true},
		{GateState(""), false},
		{GateState("ajar"), false},
	} {
		if got := tc.state.IsValid(); got != tc.want {
			t.Errorf("GateState(%q).IsValid() = %v, want %v", tc.state, got, tc.want)
		}
	}
}

func TestLinkStatusMessage(t *testing.T) {
	for _, s := range []LinkStatus{LinkWaiting, LinkConnected, LinkNoNetwork, LinkTimeout} {
		if s.Message() == "" || s.Message() == string(s) {
			t.Errorf("LinkStatus(%q).Message() = %q, want a human message", s, s.Message())
		}
	}
	if got := LinkStatus("weird").Message(); got != "weird" {
		t.Errorf("unknown status message = %q, want %q", got, "weird")
	}
	if !LinkConnected.Healthy() || LinkTimeout.Healthy() {
		t.Error("only connected should be healthy")
	}
}

func TestReadingJSONNames(t *testing.T) {
	data, err := json.Marshal(Reading{Distance1: 12.5, Distance2: 80, Light: 300})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	for _, key := range []string{"sensor1", "sensor2", "ldr"} {
		if _, ok := raw[key]; !ok {
			t.Errorf("missing JSON key %q in %s", key, data)
		}
	}
}

func TestTransitionKeyLess(t *testing.T) {
	at := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	a := (&Transition{ID: "gt-a", At: at}).Key()
	b := (&Transition{ID: "gt-b", At: at}).Key()
	later := (&Transition{ID: "gt-0", At: at.Add(time.Second)}).Key()

	if !a.Less(b) || b.Less(a) {
		t.Error("equal times should order by ID")
	}
	if !b.Less(later) || later.Less(a) {
		t.Error("earlier time should sort first regardless of ID")
	}
	if a.Less(a) {
		t.Error("a key is not less than itself")
	}
}
