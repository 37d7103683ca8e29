//go:build linux

package transport

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"golang.org/x/sys/unix"
)

type rfcommConn struct {
	fd        int
	closeOnce sync.Once
	closeErr  error
}

const rfcommSupported = true

func dialRFCOMM(ctx context.Context, a Address, cfg Config) (Conn, error) {
	mac, err := a.MAC()
	if err != nil {
		return nil, err
	}
	fd, err := unix.Socket(unix.AF_BLUETOOTH, unix.SOCK_STREAM|unix.SOCK_NONBLOCK|unix.SOCK_CLOEXEC, unix.BTPROTO_RFCOMM)
	if err != nil {
		return nil, err
	}
	c := &rfcommConn{fd: fd}

	ch := a.Channel
	if ch == 0 {
		ch = cfg.Channel
	}
	sa := &unix.SockaddrRFCOMM{Channel: ch}
	// bdaddr_t is little endian.
	for i := range mac {
		sa.Addr[i] = mac[len(mac)-1-i]
	}
	if err := connectFD(ctx, fd, sa, cfg.DialTimeout); err != nil {
		_ = c.Close()
		return nil, err
	}
	return c, nil
}

const connectPollInterval = 50 * time.Millisecond

// connectFD connects the non-blocking socket fd to sa and gives up once ctx
// is done or timeout has passed. On success fd is switched back to blocking
// mode so reads honour SO_RCVTIMEO.
func connectFD(ctx context.Context, fd int, sa unix.Sockaddr, timeout time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := unix.Connect(fd, sa)
	if err != nil && !errors.Is(err, unix.EINPROGRESS) {
		return err
	}
	if err != nil {
		var deadline time.Time
		if timeout > 0 {
			deadline = time.Now().Add(timeout)
		}
		if err := waitWritable(ctx, fd, deadline); err != nil {
			return err
		}
		soErr, err := unix.GetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_ERROR)
		if err != nil {
			return err
		}
		if soErr != 0 {
			return unix.Errno(soErr)
		}
	}
	return unix.SetNonblock(fd, false)
}

// waitWritable polls fd until it is writable, ctx is done or deadline
// passes. A zero deadline waits for ctx only.
func waitWritable(ctx context.Context, fd int, deadline time.Time) error {
	fds := []unix.PollFd{{Fd: int32(fd), Events: unix.POLLOUT}}
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		wait := connectPollInterval
		if !deadline.IsZero() {
			left := time.Until(deadline)
			if left <= 0 {
				return unix.ETIMEDOUT
			}
			wait = min(wait, left)
		}
		n, err := unix.Poll(fds, int(wait.Milliseconds()))
		switch {
		case errors.Is(err, unix.EINTR):
			continue
		case err != nil:
			return err
		case n > 0:
			return nil
		}
	}
}

func (c *rfcommConn) SetReadTimeout(d time.Duration) error {
	tv := unix.NsecToTimeval(d.Nanoseconds())
	return unix.SetsockoptTimeval(c.fd, unix.SOL_SOCKET, unix.SO_RCVTIMEO, &tv)
}

func (c *rfcommConn) Read(p []byte) (int, error) {
	for {
		n, err := unix.Read(c.fd, p)
		switch {
		case errors.Is(err, unix.EINTR):
			continue
		case errors.Is(err, unix.EAGAIN), errors.Is(err, unix.EWOULDBLOCK):
			return 0, ErrTimeout
		case err != nil:
			return 0, err
		case n == 0 && len(p) > 0:
			return 0, io.EOF
		}
		return n, nil
	}
}

func (c *rfcommConn) Write(p []byte) (int, error) {
	written := 0
	for written < len(p) {
		n, err := unix.Write(c.fd, p[written:])
		if errors.Is(err, unix.EINTR) {
			continue
		}
		if err != nil {
			return written, err
		}
		written += n
	}
	return written, nil
}

func (c *rfcommConn) Close() error {
	c.closeOnce.Do(func() { c.closeErr = unix.Close(c.fd) })
	return c.closeErr
}
