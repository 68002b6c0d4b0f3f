package application

// undoStack is a bounded LIFO history of committed operations. Pushing past
// the bound silently drops the oldest entry; undo is stack-discipline only,
// there is no random access into the history.
type undoStack struct {
	depth   int
	entries []UndoEntry
}

func newUndoStack(depth int) *undoStack {
	if depth <= 0 {
		depth = 5
	}
	return &undoStack{depth: depth}
}

func (s *undoStack) Push(entry UndoEntry) {
	s.entries = append(s.entries, entry)
	if len(s.entries) > s.depth {
		s.entries = s.entries[len(s.entries)-s.depth:]
	}
}

func (s *undoStack) Pop() (UndoEntry, bool) {
	if len(s.entries) == 0 {
		return UndoEntry{}, false
	}
	entry := s.entries[len(s.entries)-1]
	s.entries = s.entries[:len(s.entries)-1]
	return entry, true
}

func (s *undoStack) Len() int {
	return len(s.entries)
}
