package automaton

// Transcript is the ordered, append-only history of a single agent run.
//
// Entries are kept in insertion order and are never reordered, replaced or removed. The caller
// owns the transcript; the agent loop only appends to it.
//
// Transcript is NOT safe for concurrent writers. Drive a transcript from one loop at a time.
type Transcript struct {
	entries []Entry
}

// NewTranscript creates a transcript seeded with the given entries.
func NewTranscript(seed ...Entry) *Transcript {
	t := &Transcript{entries: make([]Entry, 0, len(seed))}
	t.Append(seed...)
	return t
}

// Append adds entries to the end of the transcript. Nil entries are skipped.
func (t *Transcript) Append(entries ...Entry) {
	for _, e := range entries {
		if e == nil {
			continue
		}
		t.entries = append(t.entries, e)
	}
}

// Len returns the number of entries.
func (t *Transcript) Len() int {
	if t == nil {
		return 0
	}
	return len(t.entries)
}

// Last returns the most recent entry, or false if the transcript is empty.
func (t *Transcript) Last() (Entry, bool) {
	if t.Len() == 0 {
		return nil, false
	}
	return t.entries[len(t.entries)-1], true
}

// At returns the entry at index i. Panics if i is out of range.
func (t *Transcript) At(i int) Entry {
	return t.entries[i]
}

// Entries returns a copy of all entries in insertion order.
func (t *Transcript) Entries() []Entry {
	if t == nil {
		return nil
	}
	out := make([]Entry, len(t.entries))
	copy(out, t.entries)
	return out
}

// Finished reports whether the last entry is a [Finish].
func (t *Transcript) Finished() bool {
	last, ok := t.Last()
	if !ok {
		return false
	}
	_, done := last.(Finish)
	return done
}

// FinalResult returns the result of the trailing [Finish] entry, if any.
func (t *Transcript) FinalResult() (any, bool) {
	last, ok := t.Last()
	if !ok {
		return nil, false
	}
	f, done := last.(Finish)
	if !done {
		return nil, false
	}
	return f.Result, true
}
