package idgen

import (
	"regexp"
	"testing"
)

func TestLogID_Shape(t *testing.T) {
	pattern := regexp.MustCompile(`^` + regexp.QuoteMeta(LogPrefix) + `[a-zA-Z0-9]+$`)
	for i := 0; i < 100; i++ {
		id := LogID()
		if len(id) != len(LogPrefix)+Length {
			t.Fatalf("LogID() length = %d, want %d (id=%q)", len(id), len(LogPrefix)+Length, id)
		}
		if !pattern.MatchString(id) {
			t.Fatalf("LogID() = %q, does not match expected charset pattern", id)
		}
	}
}

func TestTransitionID_Prefix(t *testing.T) {
	id := TransitionID()
	if id[:len(TransitionPrefix)] != TransitionPrefix {
		t.Errorf("TransitionID() = %q, want prefix %q", id, TransitionPrefix)
	}
}

func TestLogID_Uniqueness(t *testing.T) {
	const count = 10_000
	seen := make(map[string]struct{}, count)
	for i := 0; i < count; i++ {
		id := LogID()
		if _, dup := seen[id]; dup {
			t.Fatalf("duplicate ID after %d generations: %q", i, id)
		}
		seen[id] = struct{}{}
	}
}

func TestGenerateWithPrefix(t *testing.T) {
	prefix := "test-"
	id, err := GenerateWithPrefix(prefix)
	if err != nil {
		t.Fatalf("GenerateWithPrefix(%q) error: %v", prefix, err)
	}
	if id[:len(prefix)] != prefix {
		t.Errorf("GenerateWithPrefix(%q) = %q, want prefix %q", prefix, id, prefix)
	}
	if len(id) != len(prefix)+Length {
		t.Errorf("GenerateWithPrefix(%q) length = %d, want %d (id=%q)", prefix, len(id), len(prefix)+Length, id)
	}
}
