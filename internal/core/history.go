package core

// history.go implements the bounded undo stack.
//
// Snapshots are pushed before each mutation, most-recent-last. When the
// capacity is exceeded the oldest snapshot is evicted (FIFO), so very long
// edit sessions lose the ability to undo past that point. That bound is
// deliberate: it keeps memory proportional to capacity rather than to the
// length of the edit session.

// DefaultHistoryLimit is the default undo stack capacity.
const DefaultHistoryLimit = 10

// Snapshot captures the full pre-edit state of a session: the table plus the
// header flag, since a header toggle changes both together.
type Snapshot struct {
	Table     Table
	UseHeader bool
}

// History is a capacity-bounded stack of session snapshots.
type History struct {
	snapshots []Snapshot
	limit     int
}

// NewHistory creates a history with the given capacity. Non-positive limits
// fall back to DefaultHistoryLimit.
func NewHistory(limit int) *History {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	return &History{limit: limit}
}

// Push records a snapshot, evicting the oldest entry when full.
// The table is cloned so later edits to the live table cannot reach it.
func (h *History) Push(t Table, useHeader bool) {
	if len(h.snapshots) >= h.limit {
		// Evict oldest; shift in place so the backing array is reused.
		copy(h.snapshots, h.snapshots[1:])
		h.snapshots = h.snapshots[:len(h.snapshots)-1]
	}
	h.snapshots = append(h.snapshots, Snapshot{Table: t.Clone(), UseHeader: useHeader})
}

// Pop removes and returns the most recent snapshot.
// The second return is false when the history is empty.
func (h *History) Pop() (Snapshot, bool) {
	if len(h.snapshots) == 0 {
		return Snapshot{}, false
	}
	last := h.snapshots[len(h.snapshots)-1]
	h.snapshots = h.snapshots[:len(h.snapshots)-1]
	return last, true
}

// Clear discards all snapshots.
func (h *History) Clear() {
	h.snapshots = h.snapshots[:0]
}

// Depth returns the number of undoable steps.
func (h *History) Depth() int { return len(h.snapshots) }

// Limit returns the capacity of the stack.
func (h *History) Limit() int { return h.limit }
