package pondserver

import (
	"net"
	"sync/atomic"

	"github.com/pondhq/pond/internal/protocol"
)

// outboxCapacity bounds how many pending frames a connection's writer
// goroutine can have queued; highWaterMark/lowWaterMark bound it in bytes.
// A query stops being drained once a connection crosses the high mark and
// resumes once it falls back under the low mark -- simple hysteresis so a
// connection hovering right at the limit doesn't thrash between paused and
// draining on every single frame.
const (
	outboxCapacity = 256
	highWaterMark  = 1 << 20 // 1 MiB queued and unsent
	lowWaterMark   = 1 << 18 // 256 KiB: safe to resume below this
)

// connection is one accepted TCP client. Its reader and writer goroutines
// only ever move bytes; every decision about protocol state is made on
// the Server's single event-loop goroutine.
type connection struct {
	nc  net.Conn
	srv *Server

	out    chan []byte
	queued atomic.Int64

	queries map[uint16]*query

	closed bool
}

func newConnection(nc net.Conn, srv *Server) *connection {
	return &connection{
		nc:      nc,
		srv:     srv,
		out:     make(chan []byte, outboxCapacity),
		queries: make(map[uint16]*query),
	}
}

// enqueue frames (id, command, payload) for sending if the connection
// isn't over its high water mark and its outbox has room. It returns
// false if the caller should treat this query as paused and retry later.
func (c *connection) enqueue(id uint16, command uint16, payload []byte) bool {
	if c.queued.Load() >= highWaterMark {
		return false
	}
	buf, err := protocol.Encode(id, command, payload)
	if err != nil {
		// Payload too large for the wire format: tell the client and
		// move on rather than wedging the query forever.
		buf, _ = protocol.Encode(id, uint16(protocol.CmdError), []byte(err.Error()))
	}
	select {
	case c.out <- buf:
		c.queued.Add(int64(len(buf)))
		return true
	default:
		return false
	}
}

func (c *connection) readLoop() {
	for {
		f, err := protocol.ReadFrame(c.nc)
		if err != nil {
			c.srv.events <- connClosed{c: c, err: err}
			return
		}
		c.srv.events <- frameReceived{c: c, frame: f}
	}
}

func (c *connection) writeLoop() {
	for buf := range c.out {
		if _, err := c.nc.Write(buf); err != nil {
			_ = c.nc.Close()
			return
		}
		if c.queued.Add(-int64(len(buf))) <= lowWaterMark {
			select {
			case c.srv.events <- resumeDrain{c: c}:
			default:
			}
		}
	}
}

func (c *connection) close() {
	if c.closed {
		return
	}
	c.closed = true
	_ = c.nc.Close()
	close(c.out)
}
