// Package pondserver implements the TCP front end: accepting connections,
// decoding frames, and driving the per-connection Query state machine
// against a pond.Database. All Database/Cursor/Selection access happens
// on a single event-loop goroutine; connections only move bytes.
package pondserver

import (
	"context"
	"encoding/binary"
	"fmt"
	"net"
	"time"

	"github.com/pondhq/pond/internal/metrics"
	"github.com/pondhq/pond/internal/pond"
	"github.com/pondhq/pond/internal/protocol"
	"github.com/pondhq/pond/pkg/log"
)

// heartbeatInterval is how often each idle following query receives a NOP,
// so a client blocked in a blocking recv can tell the query is still alive.
const heartbeatInterval = 30 * time.Second

// Sink is implemented by internal/sitesink.Pool; kept as an interface so
// Server doesn't require one in tests.
type Sink interface {
	Write(site string, raw []byte) error
}

// Server owns the Database and every connection's Query state. Exactly
// one goroutine -- the one running ListenAndServe -- ever touches db or any
// Selection/Cursor.
type Server struct {
	db      *pond.Database
	log     log.Logger
	metrics *metrics.Counters
	sink    Sink

	events chan event

	listener net.Listener
	conns    map[*connection]struct{}
}

// event is the union of everything the event loop reacts to.
type event interface{}

type connOpened struct{ c *connection }
type connClosed struct {
	c   *connection
	err error
}
type frameReceived struct {
	c     *connection
	frame protocol.Frame
}
type resumeDrain struct{ c *connection }

// New creates a Server over db. sink may be nil to disable per-site
// append output.
func New(db *pond.Database, logger log.Logger, counters *metrics.Counters, sink Sink) *Server {
	if counters == nil {
		counters = &metrics.Counters{}
	}
	return &Server{
		db:      db,
		log:     logger.WithComponent("server"),
		metrics: counters,
		sink:    sink,
		events:  make(chan event, 256),
		conns:   make(map[*connection]struct{}),
	}
}

// ListenAndServe binds addr and runs the accept loop and event loop until
// ctx is canceled or the listener fails.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	l, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("pondserver: listen: %w", err)
	}
	s.listener = l
	s.log.Info("listening", log.String("addr", addr))

	acceptErr := make(chan error, 1)
	go func() {
		for {
			nc, err := l.Accept()
			if err != nil {
				acceptErr <- err
				return
			}
			c := newConnection(nc, s)
			go c.readLoop()
			go c.writeLoop()
			s.events <- connOpened{c: c}
		}
	}()

	ticker := time.NewTicker(heartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			_ = l.Close()
			return nil
		case err := <-acceptErr:
			return err
		case <-ticker.C:
			s.heartbeat()
		case ev := <-s.events:
			s.handle(ev)
		}
	}
}

// Close stops accepting new connections. Connections already accepted are
// not closed by it.
func (s *Server) Close() error {
	if s.listener != nil {
		return s.listener.Close()
	}
	return nil
}

// heartbeat sends a NOP on every idle following query, so a client blocked
// in a blocking recv can tell the query is still alive. Connections with no
// following query (e.g. pure injectors) get nothing.
func (s *Server) heartbeat() {
	for c := range s.conns {
		for id, q := range c.queries {
			if q.state == stateFollowing {
				c.enqueue(id, uint16(protocol.CmdNop), nil)
			}
		}
	}
}

func (s *Server) handle(ev event) {
	switch e := ev.(type) {
	case connOpened:
		s.conns[e.c] = struct{}{}
		s.metrics.Connections.Add(1)
	case connClosed:
		s.closeConnection(e.c)
	case frameReceived:
		s.handleFrame(e.c, e.frame)
	case resumeDrain:
		s.handleResumeDrain(e.c)
	}
}

func (s *Server) closeConnection(c *connection) {
	if _, ok := s.conns[c]; !ok {
		return
	}
	for _, q := range c.queries {
		if q.sel != nil {
			q.sel.Unlink()
		}
	}
	delete(s.conns, c)
	c.close()
	s.metrics.Connections.Add(-1)
}

func (s *Server) handleResumeDrain(c *connection) {
	for _, q := range c.queries {
		if q.state == statePaused {
			s.drive(q)
		}
	}
}

func (s *Server) handleFrame(c *connection, f protocol.Frame) {
	cmd := protocol.RequestCommand(f.Command)

	if cmd == protocol.CmdInjectLogRecord {
		s.handleInject(c, f)
		return
	}

	q, ok := c.queries[f.ID]
	switch cmd {
	case protocol.CmdQuery:
		if ok {
			c.enqueue(f.ID, uint16(protocol.CmdError), []byte("duplicate id"))
			return
		}
		q = newQuery(f.ID, c)
		c.queries[f.ID] = q
		s.metrics.Queries.Add(1)
		return
	case protocol.CmdCancel:
		if ok {
			s.cancelQuery(q)
		}
		return
	}

	if !ok {
		c.enqueue(f.ID, uint16(protocol.CmdError), []byte("no such query: send QUERY first"))
		return
	}
	if q.state != stateBuilding {
		c.enqueue(f.ID, uint16(protocol.CmdError), []byte("query already committed"))
		return
	}

	switch cmd {
	case protocol.CmdFilterSite:
		q.filter.Site = string(f.Payload)
	case protocol.CmdFilterHost:
		q.filter.Host = string(f.Payload)
	case protocol.CmdFilterURI:
		q.filter.URISubstring = string(f.Payload)
	case protocol.CmdFilterSince:
		if ns, ok := decodeTimestamp(f.Payload); ok {
			q.filter.Since, q.filter.HasSince = ns, true
		}
	case protocol.CmdFilterUntil:
		if ns, ok := decodeTimestamp(f.Payload); ok {
			q.filter.Until, q.filter.HasUntil = ns, true
		}
	case protocol.CmdFilterStatus:
		s.applyStatusFilter(q, f.Payload)
	case protocol.CmdFollow:
		q.follow = true
	case protocol.CmdCommit:
		s.commit(q)
	default:
		c.enqueue(f.ID, uint16(protocol.CmdError), []byte("unknown command"))
	}
}

func (s *Server) applyStatusFilter(q *query, payload []byte) {
	if len(payload) != 3 {
		return
	}
	mode := payload[0]
	value := int(binary.BigEndian.Uint16(payload[1:3]))
	if mode == 0 {
		q.filter.Status = value
	} else {
		q.filter.StatusClass = value
	}
}

func decodeTimestamp(payload []byte) (time.Time, bool) {
	if len(payload) != 8 {
		return time.Time{}, false
	}
	nanos := int64(binary.BigEndian.Uint64(payload))
	return time.Unix(0, nanos).UTC(), true
}

func (s *Server) commit(q *query) {
	q.sel = pond.NewSelection(s.db, q.filter)
	q.sel.Rewind()
	q.state = stateDraining
	s.drive(q)
}

func (s *Server) cancelQuery(q *query) {
	if q.sel != nil {
		q.sel.Unlink()
	}
	delete(q.conn.queries, q.id)
	q.state = stateEnded
}

func (s *Server) endQuery(q *query) {
	delete(q.conn.queries, q.id)
	q.state = stateEnded
}

// drive advances q as far as it can go without blocking: either draining
// more of the historical range, retrying a follow-mode delivery that was
// previously blocked, or doing nothing if q isn't in a drivable state.
func (s *Server) drive(q *query) {
	if q.pending != nil {
		s.resumeFollowing(q)
		return
	}
	if q.state == stateDraining || q.state == statePaused {
		s.drainHistorical(q)
	}
}

func (s *Server) drainHistorical(q *query) {
	for {
		q.sel.FixDeleted()
		if !q.sel.Valid() {
			break
		}
		rec, _ := q.sel.Current()
		if !q.conn.enqueue(q.id, uint16(protocol.CmdLogRecord), rec.Raw) {
			q.state = statePaused
			return
		}
		q.sel.Advance()
	}

	if q.follow {
		q.state = stateFollowing
		q.sel.Follow(func(r *pond.Record) { s.onFollowMatch(q, r) })
		return
	}
	q.conn.enqueue(q.id, uint16(protocol.CmdEnd), nil)
	s.endQuery(q)
}

// onFollowMatch runs synchronously from Database.Emplace, on the event
// loop goroutine, whenever an appended record matches q's filter.
func (s *Server) onFollowMatch(q *query, r *pond.Record) {
	if !q.conn.enqueue(q.id, uint16(protocol.CmdLogRecord), r.Raw) {
		q.pending = r
		q.state = statePaused
		return
	}
	q.sel.Follow(func(r *pond.Record) { s.onFollowMatch(q, r) })
}

func (s *Server) resumeFollowing(q *query) {
	r := q.pending
	if !q.conn.enqueue(q.id, uint16(protocol.CmdLogRecord), r.Raw) {
		return
	}
	q.pending = nil
	q.state = stateFollowing
	q.sel.Follow(func(r *pond.Record) { s.onFollowMatch(q, r) })
}

func (s *Server) handleInject(c *connection, f protocol.Frame) {
	rec, err := s.db.Emplace(f.Payload)
	if err != nil {
		c.enqueue(f.ID, uint16(protocol.CmdError), []byte(err.Error()))
		return
	}
	s.metrics.Records.Add(1)
	s.metrics.NewestID.Store(int64(rec.ID))
	if first, ok := s.db.First(); ok {
		s.metrics.OldestID.Store(int64(first.ID))
	}
	s.metrics.Evicted.Store(int64(s.db.Evicted()))

	if s.sink != nil {
		if err := s.sink.Write(rec.Parsed.Site, rec.Raw); err != nil {
			s.log.Warn("sitesink write failed", log.Err(err))
		}
	}
}
