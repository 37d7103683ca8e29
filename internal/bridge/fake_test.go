package bridge

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/Alia5/mogaserial/internal/transport"
	"github.com/Alia5/mogaserial/pkg/moga"
)

// read is one scripted Read result.
type read struct {
	data []byte
	err  error
}

// fakeConn replays scripted reads and records writes. Once the script is
// exhausted every Read times out.
type fakeConn struct {
	mu      sync.Mutex
	reads   []read
	writes  [][]byte
	nreads  int
	closed  bool
	onRead  func(n int)
	timeout time.Duration
}

func newFakeConn(reads ...read) *fakeConn { return &fakeConn{reads: reads} }

func (c *fakeConn) Read(p []byte) (int, error) {
	c.mu.Lock()
	c.nreads++
	n := c.nreads
	hook := c.onRead
	if c.closed {
		c.mu.Unlock()
		return 0, io.ErrClosedPipe
	}
	var r read
	if len(c.reads) > 0 {
		r, c.reads = c.reads[0], c.reads[1:]
	} else {
		r.err = transport.ErrTimeout
	}
	c.mu.Unlock()
	if hook != nil {
		hook(n)
	}
	if r.err != nil {
		return 0, r.err
	}
	return copy(p, r.data), nil
}

func (c *fakeConn) Write(p []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return 0, io.ErrClosedPipe
	}
	c.writes = append(c.writes, append([]byte(nil), p...))
	return len(p), nil
}

func (c *fakeConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

func (c *fakeConn) SetReadTimeout(d time.Duration) error {
	c.mu.Lock()
	c.timeout = d
	c.mu.Unlock()
	return nil
}

func (c *fakeConn) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// commands returns the command codes written so far.
func (c *fakeConn) commands() []moga.Command {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]moga.Command, 0, len(c.writes))
	for _, w := range c.writes {
		out = append(out, moga.Command(w[2]))
	}
	return out
}

// fakeDialer hands out scripted connections, then fails.
type fakeDialer struct {
	mu    sync.Mutex
	conns []*fakeConn
	errs  []error
	dials int
	// onDial runs before every dial with the 1-based attempt number.
	onDial func(n int)
}

func (d *fakeDialer) Dial(ctx context.Context, _ transport.Address) (transport.Conn, error) {
	d.mu.Lock()
	d.dials++
	n := d.dials
	hook := d.onDial
	d.mu.Unlock()
	if hook != nil {
		hook(n)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.errs) > 0 {
		err := d.errs[0]
		d.errs = d.errs[1:]
		if err != nil {
			return nil, err
		}
	}
	if len(d.conns) == 0 {
		return nil, errors.New("host is down")
	}
	c := d.conns[0]
	d.conns = d.conns[1:]
	return c, nil
}

func (d *fakeDialer) count() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.dials
}

// frame builds a valid analog response carrying state.
func frame(state ...byte) []byte {
	b := make([]byte, moga.LongResponseLen)
	b[0] = moga.MarkerResponse
	b[1] = moga.LongResponseLen
	b[2] = byte(moga.RespListenAnalog)
	b[3] = 1
	copy(b[4:], state)
	b[12] = 0x10
	b[13] = moga.Checksum(b[:13])
	return b
}

func ok(b []byte) read { return read{data: b} }

func fail(err error) read { return read{err: err} }
