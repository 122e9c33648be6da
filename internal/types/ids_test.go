package types

import (
	"testing"
	"time"
)

func TestTreeID(t *testing.T) {
	before := time.Now().Add(-time.Second)
	id := NewTreeID()

	if _, err := ParseTreeID(string(id)); err != nil {
		t.Fatalf("ParseTreeID(%q) error = %v", id, err)
	}
	if ts := TreeIDTime(id); ts.Before(before) {
		t.Errorf("TreeIDTime() = %v, want after %v", ts, before)
	}
	if _, err := ParseTreeID("not-a-uuid"); err == nil {
		t.Errorf("ParseTreeID(not-a-uuid) error = nil, want error")
	}
	if !TreeIDTime("garbage").IsZero() {
		t.Errorf("TreeIDTime(garbage) is not zero")
	}
}
