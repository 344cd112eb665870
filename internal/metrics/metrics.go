// Package metrics holds the plain atomic counters the admin HTTP surface
// reads. The event loop is the only writer; the admin handler is the only
// reader, from its own goroutine -- the one place in this repo that isn't
// single-threaded by construction.
package metrics

import "sync/atomic"

// Counters tracks server-wide counts.
type Counters struct {
	Records     atomic.Int64
	Evicted     atomic.Int64
	OldestID    atomic.Int64
	NewestID    atomic.Int64
	Connections atomic.Int64
	Queries     atomic.Int64
}

// Snapshot is a point-in-time copy of Counters, safe to marshal.
type Snapshot struct {
	Records     int64 `json:"records"`
	Evicted     int64 `json:"evicted"`
	OldestID    int64 `json:"oldest_id"`
	NewestID    int64 `json:"newest_id"`
	Connections int64 `json:"connections"`
	Queries     int64 `json:"queries"`
}

// Snapshot reads all counters into a Snapshot.
func (c *Counters) Snapshot() Snapshot {
	return Snapshot{
		Records:     c.Records.Load(),
		Evicted:     c.Evicted.Load(),
		OldestID:    c.OldestID.Load(),
		NewestID:    c.NewestID.Load(),
		Connections: c.Connections.Load(),
		Queries:     c.Queries.Load(),
	}
}
