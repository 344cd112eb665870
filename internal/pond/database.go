package pond

import (
	"fmt"
	"sort"
	"time"

	"github.com/pondhq/pond/internal/datagram"
)

// Database is a fixed-capacity, append-only ring of Records. It assigns
// monotonic ids, evicts the oldest record on overflow, and notifies
// follow-mode cursors synchronously on every append.
//
// Database is not safe for concurrent use. It is owned by exactly one
// goroutine (the pondserver event loop); see internal/pondserver.
type Database struct {
	capacity int
	ring     []*Record

	lastID    uint64 // highest id ever assigned; 0 if none yet
	minLiveID uint64 // smallest live id; 0 if the database is empty
	count     int
	evicted   uint64

	timeIdx []timeEntry // sorted by (timestamp, id) ascending; only timestamped records

	listHead, listTail *Cursor // intrusive append-listener list, FIFO
}

type timeEntry struct {
	ts time.Time
	id uint64
}

func lessTimeEntry(a, b timeEntry) bool {
	if a.ts.Equal(b.ts) {
		return a.id < b.id
	}
	return a.ts.Before(b.ts)
}

// NewDatabase creates a Database that holds at most capacity records.
func NewDatabase(capacity int) *Database {
	if capacity < 1 {
		capacity = 1
	}
	return &Database{
		capacity: capacity,
		ring:     make([]*Record, capacity),
	}
}

// Capacity returns the maximum number of live records.
func (db *Database) Capacity() int { return db.capacity }

// Len returns the number of currently live records.
func (db *Database) Len() int { return db.count }

// Evicted returns the total number of records evicted since creation.
func (db *Database) Evicted() uint64 { return db.evicted }

// LastID returns the highest id ever assigned, or 0 if none yet.
func (db *Database) LastID() uint64 { return db.lastID }

func (db *Database) slot(id uint64) int { return int((id - 1) % uint64(db.capacity)) }

// Emplace parses raw and, on success, appends it as a new Record with the
// next monotonic id, evicting the oldest record first if the database is
// full. On parse failure no id is consumed and nothing is evicted.
func (db *Database) Emplace(raw []byte) (*Record, error) {
	parsed, err := datagram.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedRecord, err)
	}

	if db.count == db.capacity {
		db.evictOldest()
	}

	db.lastID++
	id := db.lastID
	rec := &Record{ID: id, Raw: append([]byte(nil), raw...), Parsed: parsed}

	db.ring[db.slot(id)] = rec
	db.count++
	if db.minLiveID == 0 {
		db.minLiveID = id
	}
	if parsed.HasTimestamp {
		db.timeInsert(timeEntry{ts: parsed.Timestamp, id: id})
	}

	db.notifyAppend(rec)
	return rec, nil
}

func (db *Database) evictOldest() {
	oldID := db.minLiveID
	slot := db.slot(oldID)
	old := db.ring[slot]
	db.ring[slot] = nil
	db.count--
	db.evicted++
	if db.count == 0 {
		db.minLiveID = 0
	} else {
		db.minLiveID = oldID + 1
	}
	if old != nil && old.Parsed.HasTimestamp {
		db.timeRemove(timeEntry{ts: old.Parsed.Timestamp, id: old.ID})
	}
}

// Find returns the live record with the given id, if any.
func (db *Database) Find(id uint64) (*Record, bool) {
	if id == 0 || db.minLiveID == 0 || id < db.minLiveID || id > db.lastID {
		return nil, false
	}
	r := db.ring[db.slot(id)]
	if r == nil || r.ID != id {
		return nil, false
	}
	return r, true
}

// First returns the oldest live record.
func (db *Database) First() (*Record, bool) { return db.Find(db.minLiveID) }

// Last returns the newest live record.
func (db *Database) Last() (*Record, bool) { return db.Find(db.lastID) }

// TimeRange returns the id-interval endpoints of live records whose
// timestamp lies in the requested range. An unset bound (hasSince/hasUntil
// false) is open on that side. If no record matches, both return values
// are nil.
func (db *Database) TimeRange(since, until time.Time, hasSince, hasUntil bool) (first, last *Record) {
	lo := 0
	if hasSince {
		lo = sort.Search(len(db.timeIdx), func(i int) bool {
			return !db.timeIdx[i].ts.Before(since)
		})
	}
	hi := len(db.timeIdx)
	if hasUntil {
		hi = sort.Search(len(db.timeIdx), func(i int) bool {
			return db.timeIdx[i].ts.After(until)
		})
	}
	if lo >= hi {
		return nil, nil
	}

	var minID, maxID uint64
	for i, e := range db.timeIdx[lo:hi] {
		if i == 0 || e.id < minID {
			minID = e.id
		}
		if i == 0 || e.id > maxID {
			maxID = e.id
		}
	}
	first, _ = db.Find(minID)
	last, _ = db.Find(maxID)
	return first, last
}

func (db *Database) timeInsert(e timeEntry) {
	i := sort.Search(len(db.timeIdx), func(i int) bool { return !lessTimeEntry(db.timeIdx[i], e) })
	db.timeIdx = append(db.timeIdx, timeEntry{})
	copy(db.timeIdx[i+1:], db.timeIdx[i:])
	db.timeIdx[i] = e
}

func (db *Database) timeRemove(e timeEntry) {
	i := sort.Search(len(db.timeIdx), func(i int) bool { return !lessTimeEntry(db.timeIdx[i], e) })
	if i < len(db.timeIdx) && db.timeIdx[i].id == e.id && db.timeIdx[i].ts.Equal(e.ts) {
		db.timeIdx = append(db.timeIdx[:i], db.timeIdx[i+1:]...)
	}
}

// addAppendListener links c onto the end of the append-listener list. c
// must not already be linked.
func (db *Database) addAppendListener(c *Cursor) {
	if c.linked {
		panic("pond: cursor already linked")
	}
	c.linked = true
	c.prev = db.listTail
	c.next = nil
	if db.listTail != nil {
		db.listTail.next = c
	} else {
		db.listHead = c
	}
	db.listTail = c
}

func (db *Database) removeListener(c *Cursor) {
	if !c.linked {
		return
	}
	if c.prev != nil {
		c.prev.next = c.next
	} else {
		db.listHead = c.next
	}
	if c.next != nil {
		c.next.prev = c.prev
	} else {
		db.listTail = c.prev
	}
	c.prev, c.next = nil, nil
	c.linked = false
}

// notifyAppend delivers rec to every linked listener exactly once, in
// registration order, unlinking each before calling it. A listener that
// matches stays unlinked (the caller re-follows once it has consumed the
// match); a listener that doesn't match is re-linked immediately so it
// keeps waiting for a later append without the caller having to notice.
func (db *Database) notifyAppend(rec *Record) {
	c := db.listHead
	last := db.listTail
	for c != nil {
		next := c.next
		db.removeListener(c)
		if !c.OnAppend(rec) {
			db.addAppendListener(c)
		}
		if c == last {
			break
		}
		c = next
	}
}
