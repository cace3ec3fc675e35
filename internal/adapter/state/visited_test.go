package state

import "testing"

func TestVisitedFlagLifecycle(t *testing.T) {
	f, err := NewVisitedFlag(t.TempDir())
	if err != nil {
		t.Fatalf("NewVisitedFlag: %v", err)
	}

	visited, err := f.Visited()
	if err != nil {
		t.Fatalf("Visited: %v", err)
	}
	if visited {
		t.Fatal("fresh flag should be unset")
	}

	if err := f.MarkVisited(); err != nil {
		t.Fatalf("MarkVisited: %v", err)
	}
	visited, err = f.Visited()
	if err != nil || !visited {
		t.Fatalf("after mark: visited=%v err=%v", visited, err)
	}

	if err := f.Reset(); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	visited, _ = f.Visited()
	if visited {
		t.Fatal("flag should be cleared after reset")
	}
}

func TestResetIdempotent(t *testing.T) {
	f, err := NewVisitedFlag(t.TempDir())
	if err != nil {
		t.Fatalf("NewVisitedFlag: %v", err)
	}
	if err := f.Reset(); err != nil {
		t.Fatalf("Reset on unset flag: %v", err)
	}
}
