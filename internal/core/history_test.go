package core

import "testing"

func TestHistoryPushPopOrder(t *testing.T) {
	h := NewHistory(5)

	for _, v := range []string{"one", "two", "three"} {
		h.Push(Table{Columns: []string{"a"}, Rows: []Row{{"a": v}}}, true)
	}

	for _, want := range []string{"three", "two", "one"} {
		snap, ok := h.Pop()
		if !ok {
			t.Fatalf("pop returned empty, want %q", want)
		}
		if got := snap.Table.Rows[0]["a"]; got != want {
			t.Errorf("popped %q, want %q", got, want)
		}
	}
	if _, ok := h.Pop(); ok {
		t.Error("pop on empty history should report false")
	}
}

func TestHistoryEvictsOldestAtCapacity(t *testing.T) {
	h := NewHistory(2)
	for _, v := range []string{"one", "two", "three"} {
		h.Push(Table{Columns: []string{"a"}, Rows: []Row{{"a": v}}}, false)
	}

	if h.Depth() != 2 {
		t.Fatalf("depth = %d, want 2", h.Depth())
	}
	snap, _ := h.Pop()
	if snap.Table.Rows[0]["a"] != "three" {
		t.Errorf("newest = %q, want three", snap.Table.Rows[0]["a"])
	}
	snap, _ = h.Pop()
	if snap.Table.Rows[0]["a"] != "two" {
		t.Errorf("remaining = %q, want two (one evicted)", snap.Table.Rows[0]["a"])
	}
}

func TestHistorySnapshotsAreIsolated(t *testing.T) {
	h := NewHistory(3)
	live := Table{Columns: []string{"a"}, Rows: []Row{{"a": "before"}}}
	h.Push(live, true)

	live.Rows[0]["a"] = "after"

	snap, _ := h.Pop()
	if snap.Table.Rows[0]["a"] != "before" {
		t.Error("history snapshot aliased the live table")
	}
}

func TestHistoryDefaultLimit(t *testing.T) {
	h := NewHistory(0)
	if h.Limit() != DefaultHistoryLimit {
		t.Errorf("limit = %d, want %d", h.Limit(), DefaultHistoryLimit)
	}
}
