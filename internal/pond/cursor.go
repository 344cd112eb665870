package pond

// LightCursor is a raw, deletion-aware iterator over a Database. It holds
// no identity beyond its current position: once unpositioned, the id it
// last pointed at is forgotten. Cursor layers a persistent id and an
// append callback on top of this.
type LightCursor struct {
	db  *Database
	cur uint64 // 0 means unpositioned
}

// NewLightCursor returns a LightCursor over db, unpositioned.
func NewLightCursor(db *Database) LightCursor {
	return LightCursor{db: db}
}

// Positioned reports whether the cursor currently refers to a live record.
func (lc *LightCursor) Positioned() bool { return lc.cur != 0 }

// Current returns the record the cursor is positioned on.
func (lc *LightCursor) Current() (*Record, bool) {
	if lc.cur == 0 {
		return nil, false
	}
	return lc.db.Find(lc.cur)
}

// Rewind positions the cursor on the oldest live record, or unpositions it
// if the database is empty.
func (lc *LightCursor) Rewind() {
	lc.cur = lc.db.minLiveID
}

func (lc *LightCursor) reset() { lc.cur = 0 }

// SetNext positions the cursor directly on r.
func (lc *LightCursor) SetNext(r *Record) { lc.cur = r.ID }

// Advance moves the cursor to the next live record by id. It returns false
// and unpositions the cursor if there is none (the database has no record
// past the current one).
func (lc *LightCursor) Advance() bool {
	if lc.cur == 0 {
		return false
	}
	next := lc.cur + 1
	if lc.db.minLiveID == 0 || next > lc.db.lastID {
		lc.cur = 0
		return false
	}
	lc.cur = next
	return true
}

// FixDeleted checks whether id (the caller's last-known position) is still
// live. If it is, this is a no-op and returns false. If it isn't -- the
// record at id was evicted -- the cursor is repositioned to the smallest
// still-live id (or unpositioned, if the database is now empty) and true
// is returned.
//
// This relies on the database's live ids always forming a contiguous
// interval: eviction only ever removes the single smallest live id, so a
// stale id is always smaller than minLiveID, and the smallest live id
// greater than it is always exactly minLiveID.
func (lc *LightCursor) FixDeleted(id uint64) bool {
	live := lc.db.minLiveID != 0 && id >= lc.db.minLiveID
	if live {
		return false
	}
	lc.cur = lc.db.minLiveID
	return true
}

// Cursor extends LightCursor with a persistent id that survives eviction
// of the record it once pointed at, and an append callback delivered
// through Database's listener list while following.
type Cursor struct {
	LightCursor

	id uint64 // last-known id; 0 if never positioned

	// matcher gates which appended records position this cursor; onReady
	// fires exactly once, synchronously, after a match positions it.
	matcher func(*Record) bool
	onReady func()

	linked     bool
	prev, next *Cursor
}

// NewCursor returns a Cursor over db, unpositioned.
func NewCursor(db *Database) *Cursor {
	return &Cursor{LightCursor: NewLightCursor(db)}
}

// ID returns the cursor's last-known record id, or 0 if it was never
// positioned.
func (c *Cursor) ID() uint64 { return c.id }

// Rewind unlinks the cursor from any follow registration and repositions
// it on the oldest live record.
func (c *Cursor) Rewind() {
	c.unlink()
	c.LightCursor.Rewind()
	c.refreshID()
}

// Advance moves to the next live record and refreshes id if still
// positioned afterward.
func (c *Cursor) Advance() bool {
	ok := c.LightCursor.Advance()
	if ok {
		c.refreshID()
	}
	return ok
}

// FixDeleted repositions the cursor if its last-known id was evicted. A
// cursor that was never positioned (id == 0) has nothing to fix.
func (c *Cursor) FixDeleted() bool {
	if c.id == 0 {
		return false
	}
	if !c.LightCursor.FixDeleted(c.id) {
		return false
	}
	c.unlink()
	c.refreshID()
	return true
}

// Follow registers the cursor as an append listener, if it isn't already
// positioned or linked. Calling Follow repeatedly is idempotent.
func (c *Cursor) Follow() {
	if c.Positioned() || c.linked {
		return
	}
	c.db.addAppendListener(c)
}

// OnAppend is called by Database for each record appended while this
// cursor is linked. It reports whether r matched. On a mismatch the
// cursor is left unpositioned and Database re-links it to keep waiting.
// On a match the cursor is positioned on the record and onReady fires
// once, synchronously, before OnAppend returns.
func (c *Cursor) OnAppend(r *Record) bool {
	if c.matcher != nil && !c.matcher(r) {
		return false
	}
	c.LightCursor.SetNext(r)
	c.id = r.ID
	if c.onReady != nil {
		c.onReady()
	}
	return true
}

func (c *Cursor) reset() {
	c.LightCursor.reset()
}

func (c *Cursor) refreshID() {
	if r, ok := c.LightCursor.Current(); ok {
		c.id = r.ID
	}
}

func (c *Cursor) unlink() {
	if c.linked {
		c.db.removeListener(c)
	}
}
