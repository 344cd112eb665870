package pond

import "math"

// Selection couples a Cursor with a Filter and an optional upper id bound
// (endID). It is the unit a Connection query drains records through: one
// Rewind seeds the starting position (from a time-range seek if the filter
// sets Since/Until, else from the oldest live record), and Advance walks
// forward, skipping records that fail the filter, until the bound or the
// live end of the database is reached.
type Selection struct {
	db     *Database
	cursor *Cursor
	Filter Filter
	endID  uint64

	onMatch func(*Record)
}

// NewSelection creates a Selection over db with the given filter, not yet
// positioned. Call Rewind before use.
func NewSelection(db *Database, f Filter) *Selection {
	s := &Selection{db: db, Filter: f, endID: math.MaxUint64}
	s.cursor = NewCursor(db)
	s.cursor.matcher = s.onCursorAppend
	s.cursor.onReady = s.onCursorReady
	return s
}

func (s *Selection) onCursorAppend(r *Record) bool { return s.Filter.Match(r.Parsed) }

func (s *Selection) onCursorReady() {
	if s.onMatch == nil {
		return
	}
	if r, ok := s.cursor.Current(); ok {
		s.onMatch(r)
	}
}

// Rewind seeds the cursor at the start of the selection's range and
// advances past any leading mismatch.
//
// If the filter sets a time bound, the start and end ids come from a
// Database.TimeRange seek; otherwise the selection starts at the oldest
// live record and has no upper bound.
func (s *Selection) Rewind() {
	s.cursor.unlink()
	s.endID = math.MaxUint64

	if s.Filter.HasSince || s.Filter.HasUntil {
		first, last := s.db.TimeRange(s.Filter.Since, s.Filter.Until, s.Filter.HasSince, s.Filter.HasUntil)
		if first == nil {
			s.cursor.reset()
			return
		}
		s.cursor.LightCursor.SetNext(first)
		s.cursor.id = first.ID
		if last != nil {
			s.endID = last.ID
		}
	} else {
		s.cursor.Rewind()
	}
	s.SkipMismatches()
}

// SkipMismatches advances the cursor past any currently-positioned record
// that fails the filter.
func (s *Selection) SkipMismatches() {
	for {
		r, ok := s.cursor.Current()
		if !ok {
			return
		}
		if s.Filter.Match(r.Parsed) {
			return
		}
		s.cursor.Advance()
	}
}

// Advance moves to the next matching record, or unpositions the selection
// if none remains.
func (s *Selection) Advance() {
	s.cursor.Advance()
	s.SkipMismatches()
}

// FixDeleted repositions the selection's cursor if its current record was
// evicted, re-applying the filter at the new position. Reports whether a
// reposition happened.
func (s *Selection) FixDeleted() bool {
	if !s.cursor.FixDeleted() {
		return false
	}
	s.SkipMismatches()
	return true
}

// Valid reports whether the selection is positioned on a record within its
// upper id bound.
func (s *Selection) Valid() bool {
	r, ok := s.cursor.Current()
	return ok && r.ID <= s.endID
}

// Current returns the currently selected record.
func (s *Selection) Current() (*Record, bool) {
	if !s.Valid() {
		return nil, false
	}
	return s.cursor.Current()
}

// Follow registers the selection to receive the next appended record that
// matches its filter, invoking onMatch exactly once when it arrives. Any
// previously delivered match is cleared first, so calling Follow again
// after a delivery re-arms it rather than no-opping against the cursor's
// now-stale position.
func (s *Selection) Follow(onMatch func(*Record)) {
	s.onMatch = onMatch
	s.cursor.reset()
	s.cursor.Follow()
}

// Unlink cancels a pending Follow registration, if any.
func (s *Selection) Unlink() { s.cursor.unlink() }
