// Package pond implements the in-memory log-record store: a fixed-capacity
// ring of Records, indexed by id and by timestamp, with cursors that can
// replay a historical range or follow new appends live.
package pond

import "github.com/pondhq/pond/internal/datagram"

// Record is an immutable parsed log datagram with a monotonically assigned
// id. Ids are never reused and never zero. A Record is owned exclusively by
// the Database that created it; everything else holds a borrowed id that
// must be revalidated against the Database (see Cursor.FixDeleted) before
// use, since the Database may evict the record it refers to at any time.
type Record struct {
	ID     uint64
	Raw    []byte
	Parsed datagram.Parsed
}
