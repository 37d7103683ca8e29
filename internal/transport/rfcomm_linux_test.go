//go:build linux

package transport

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

func tcpSocket(t *testing.T) int {
	t.Helper()
	fd, err := unix.Socket(unix.AF_INET, unix.SOCK_STREAM|unix.SOCK_NONBLOCK|unix.SOCK_CLOEXEC, 0)
	require.NoError(t, err)
	t.Cleanup(func() { _ = unix.Close(fd) })
	return fd
}

func loopback(port int) *unix.SockaddrInet4 {
	return &unix.SockaddrInet4{Port: port, Addr: [4]byte{127, 0, 0, 1}}
}

// fullSocket returns one end of a socket pair whose send buffer is full, so
// it never becomes writable.
func fullSocket(t *testing.T) int {
	t.Helper()
	fds, err := unix.Socketpair(unix.AF_UNIX, unix.SOCK_STREAM|unix.SOCK_CLOEXEC, 0)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = unix.Close(fds[0])
		_ = unix.Close(fds[1])
	})
	require.NoError(t, unix.SetNonblock(fds[0], true))
	buf := make([]byte, 64<<10)
	for {
		if _, err := unix.Write(fds[0], buf); err != nil {
			require.ErrorIs(t, err, unix.EAGAIN)
			return fds[0]
		}
	}
}

func TestConnectFD(t *testing.T) {
	ln, err := net.Listen("tcp4", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	fd := tcpSocket(t)
	require.NoError(t, connectFD(context.Background(), fd, loopback(ln.Addr().(*net.TCPAddr).Port), time.Second))

	flags, err := unix.FcntlInt(uintptr(fd), unix.F_GETFL, 0)
	require.NoError(t, err)
	assert.Zero(t, flags&unix.O_NONBLOCK)
}

func TestConnectFD_Refused(t *testing.T) {
	ln, err := net.Listen("tcp4", "127.0.0.1:0")
	require.NoError(t, err)
	port := ln.Addr().(*net.TCPAddr).Port
	require.NoError(t, ln.Close())

	err = connectFD(context.Background(), tcpSocket(t), loopback(port), time.Second)
	assert.ErrorIs(t, err, unix.ECONNREFUSED)
}

func TestConnectFD_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := connectFD(ctx, tcpSocket(t), loopback(1), time.Second)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestWaitWritable(t *testing.T) {
	t.Run("cancel", func(t *testing.T) {
		fd := fullSocket(t)
		ctx, cancel := context.WithCancel(context.Background())
		time.AfterFunc(20*time.Millisecond, cancel)

		start := time.Now()
		err := waitWritable(ctx, fd, time.Time{})
		assert.ErrorIs(t, err, context.Canceled)
		assert.Less(t, time.Since(start), time.Second)
	})
	t.Run("deadline", func(t *testing.T) {
		fd := fullSocket(t)
		err := waitWritable(context.Background(), fd, time.Now().Add(30*time.Millisecond))
		assert.ErrorIs(t, err, unix.ETIMEDOUT)
	})
	t.Run("writable", func(t *testing.T) {
		fds, err := unix.Socketpair(unix.AF_UNIX, unix.SOCK_STREAM|unix.SOCK_CLOEXEC, 0)
		require.NoError(t, err)
		defer unix.Close(fds[0])
		defer unix.Close(fds[1])
		assert.NoError(t, waitWritable(context.Background(), fds[0], time.Time{}))
	})
}
