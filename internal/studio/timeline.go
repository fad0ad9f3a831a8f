package studio

// Timeline is a linear undo/redo history over Result snapshots. It is always
// seeded with one Empty snapshot, so the cursor stays within bounds and
// Current never has nothing to return.
type Timeline struct {
	snapshots []Result
	cursor    int
}

// NewTimeline returns a timeline seeded with a single Empty snapshot.
func NewTimeline() *Timeline {
	return &Timeline{snapshots: []Result{EmptyResult()}}
}

// Commit records a new snapshot. With overwrite false, snapshots after the
// cursor are discarded, r is appended, and the cursor advances to it
// (standard linear-history push). With overwrite true, the snapshot at the
// cursor is replaced in place and any redo history is left untouched.
func (t *Timeline) Commit(r Result, overwrite bool) {
	if overwrite {
		t.snapshots[t.cursor] = r
		return
	}
	t.snapshots = append(t.snapshots[:t.cursor+1], r)
	t.cursor = len(t.snapshots) - 1
}

// Undo steps the cursor back one snapshot. No-op at the beginning.
func (t *Timeline) Undo() {
	if t.cursor > 0 {
		t.cursor--
	}
}

// Redo steps the cursor forward one snapshot. No-op at the end.
func (t *Timeline) Redo() {
	if t.cursor < len(t.snapshots)-1 {
		t.cursor++
	}
}

// Current returns the snapshot at the cursor.
func (t *Timeline) Current() Result {
	return t.snapshots[t.cursor]
}

// CanUndo reports whether Undo would move the cursor.
func (t *Timeline) CanUndo() bool {
	return t.cursor > 0
}

// CanRedo reports whether Redo would move the cursor.
func (t *Timeline) CanRedo() bool {
	return t.cursor < len(t.snapshots)-1
}

// Len returns the number of snapshots.
func (t *Timeline) Len() int {
	return len(t.snapshots)
}
