package pondserver

import "github.com/pondhq/pond/internal/pond"

// queryState is this connection's per-id state machine position.
type queryState int

const (
	stateBuilding queryState = iota // QUERY seen; FILTER_*/FOLLOW accumulate, waiting for COMMIT
	stateDraining                   // COMMIT seen; replaying the historical range
	statePaused                     // draining or following, blocked on backpressure
	stateFollowing                  // historical range drained; waiting for live appends
	stateEnded                      // END sent or CANCELed; about to be removed
)

// query is one client-chosen id's worth of state on a connection.
type query struct {
	id     uint16
	conn   *connection
	state  queryState
	filter pond.Filter
	follow bool

	sel *pond.Selection

	// pending holds a follow-mode match that couldn't be enqueued due to
	// backpressure; it is retried before re-arming Follow.
	pending *pond.Record
}

func newQuery(id uint16, c *connection) *query {
	return &query{id: id, conn: c, state: stateBuilding}
}
