package transport

import (
	"context"
	"io"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTCP_TimeoutAndEOF(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	accepted := make(chan net.Conn, 1)
	go func() {
		c, err := ln.Accept()
		if err != nil {
			return
		}
		accepted <- c
	}()

	a, err := ParseAddress("tcp://" + ln.Addr().String())
	require.NoError(t, err)
	c, err := Dial(context.Background(), a, Config{ReadTimeout: 50 * time.Millisecond, DialTimeout: time.Second})
	require.NoError(t, err)
	defer c.Close()

	var remote net.Conn
	select {
	case remote = <-accepted:
	case <-time.After(time.Second):
		t.Fatal("no connection accepted")
	}

	buf := make([]byte, 4)
	_, err = c.Read(buf)
	assert.ErrorIs(t, err, ErrTimeout)

	_, err = remote.Write([]byte{1, 2, 3, 4})
	require.NoError(t, err)
	_, err = io.ReadFull(c, buf)
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3, 4}, buf)

	_, err = c.Write([]byte{9})
	require.NoError(t, err)
	got := make([]byte, 1)
	_, err = io.ReadFull(remote, got)
	require.NoError(t, err)
	assert.Equal(t, []byte{9}, got)

	require.NoError(t, remote.Close())
	_, err = c.Read(buf)
	assert.ErrorIs(t, err, io.EOF)
}

func TestDial_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Dial(ctx, Address{Scheme: SchemeTCP, Target: "127.0.0.1:9"}, Config{})
	assert.ErrorIs(t, err, context.Canceled)
}
