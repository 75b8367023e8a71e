package pitch

// HistoryEntry is one accepted reading.
type HistoryEntry struct {
	Name      string  // pitch class name, e.g. "A#"
	Frequency float64 // measured fundamental in Hz
}

// NoteHistory is a bounded FIFO of the most recent readings.
type NoteHistory struct {
	entries  []HistoryEntry
	capacity int
}

// NewNoteHistory creates a history holding at most capacity entries.
// Capacities below 1 are raised to 1.
func NewNoteHistory(capacity int) *NoteHistory {
	if capacity < 1 {
		capacity = 1
	}
	return &NoteHistory{
		entries:  make([]HistoryEntry, 0, capacity),
		capacity: capacity,
	}
}

// Push appends an entry, evicting the oldest one when full.
func (h *NoteHistory) Push(e HistoryEntry) {
	if len(h.entries) == h.capacity {
		copy(h.entries, h.entries[1:])
		h.entries = h.entries[:len(h.entries)-1]
	}
	h.entries = append(h.entries, e)
}

func (h *NoteHistory) Len() int { return len(h.entries) }

func (h *NoteHistory) Cap() int { return h.capacity }

// Entries returns a copy, oldest first.
func (h *NoteHistory) Entries() []HistoryEntry {
	return append([]HistoryEntry(nil), h.entries...)
}

// Newest returns the most recent entry.
func (h *NoteHistory) Newest() (HistoryEntry, bool) {
	if len(h.entries) == 0 {
		return HistoryEntry{}, false
	}
	return h.entries[len(h.entries)-1], true
}

func (h *NoteHistory) Reset() {
	h.entries = h.entries[:0]
}
