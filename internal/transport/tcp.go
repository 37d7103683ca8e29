package transport

import (
	"context"
	"errors"
	"net"
	"time"
)

type tcpConn struct {
	net.Conn
	timeout time.Duration
}

func dialTCP(ctx context.Context, a Address, cfg Config) (Conn, error) {
	d := &net.Dialer{Timeout: cfg.DialTimeout}
	c, err := d.DialContext(ctx, "tcp", a.Target)
	if err != nil {
		return nil, err
	}
	return &tcpConn{Conn: c}, nil
}

func (c *tcpConn) SetReadTimeout(d time.Duration) error {
	c.timeout = d
	return nil
}

func (c *tcpConn) Read(p []byte) (int, error) {
	if c.timeout > 0 {
		_ = c.Conn.SetReadDeadline(time.Now().Add(c.timeout))
	} else {
		_ = c.Conn.SetReadDeadline(time.Time{})
	}
	n, err := c.Conn.Read(p)
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return n, ErrTimeout
	}
	return n, err
}
