package tally

import (
	"path/filepath"
	"testing"
)

func TestCounterPersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "finished_count.json")

	counter := NewCounter(path, nil)
	if counter.Value() != 0 {
		t.Fatalf("fresh counter = %d", counter.Value())
	}
	if err := counter.Add(3); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := counter.Subtract(1); err != nil {
		t.Fatalf("Subtract: %v", err)
	}
	if counter.Value() != 2 {
		t.Fatalf("counter = %d, want 2", counter.Value())
	}

	reopened := NewCounter(path, nil)
	if reopened.Value() != 2 {
		t.Fatalf("reopened counter = %d, want 2", reopened.Value())
	}
}

func TestCounterFloorsAtZero(t *testing.T) {
	path := filepath.Join(t.TempDir(), "finished_count.json")
	counter := NewCounter(path, nil)

	if err := counter.Add(1); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := counter.Subtract(5); err != nil {
		t.Fatalf("Subtract: %v", err)
	}
	if counter.Value() != 0 {
		t.Fatalf("counter = %d, want 0", counter.Value())
	}
}

func TestCounterNoopWithoutPath(t *testing.T) {
	counter := NewCounter("", nil)
	if err := counter.Add(10); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if counter.Value() != 0 {
		t.Fatalf("pathless counter should stay at zero, got %d", counter.Value())
	}
}
