package viiper

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alia5/mogaserial/internal/vpad"
	"github.com/Alia5/mogaserial/internal/vpad/viiper/viipertest"
	"github.com/Alia5/mogaserial/pkg/gamepad"
)

func openBackend(t *testing.T, srv *viipertest.Server, bus uint32) *Backend {
	t.Helper()
	b, err := Open(context.Background(), vpad.Options{ViiperAddr: srv.Addr(), ViiperBus: bus, Slots: 4}, nil)
	require.NoError(t, err)
	return b
}

func TestOpenCreatesBus(t *testing.T) {
	srv := viipertest.Start(t)
	b := openBackend(t, srv, 0)
	assert.Equal(t, uint32(1), b.BusID())
	assert.Equal(t, []uint32{1}, srv.Buses())

	require.NoError(t, b.Close())
	assert.Empty(t, srv.Buses(), "bus created by Open is removed on Close")
}

func TestOpenUsesExistingBus(t *testing.T) {
	srv := viipertest.Start(t)
	srv.AddBus(7)
	srv.AddBus(5)
	b := openBackend(t, srv, 0)
	assert.Equal(t, uint32(5), b.BusID())

	require.NoError(t, b.Close())
	assert.Equal(t, []uint32{5, 7}, srv.Buses(), "foreign buses survive Close")
}

func TestOpenRequestedBus(t *testing.T) {
	srv := viipertest.Start(t)
	b := openBackend(t, srv, 9)
	assert.Equal(t, uint32(9), b.BusID())
	assert.Equal(t, []uint32{9}, srv.Buses())
	require.NoError(t, b.Close())
}

func TestOpenUnreachable(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())

	_, err = Open(context.Background(), vpad.Options{ViiperAddr: addr}, nil)
	assert.ErrorIs(t, err, vpad.ErrUnavailable)
}

func TestRegistered(t *testing.T) {
	assert.Contains(t, vpad.Names(), "viiper")
}

func TestPlugUpdateUnplug(t *testing.T) {
	srv := viipertest.Start(t)
	srv.AddBus(1)
	srv.AddDevice(1) // slot 1 taken by another controller
	b := openBackend(t, srv, 1)
	ctx := context.Background()

	before, err := b.Slots(ctx)
	require.NoError(t, err)
	assert.Equal(t, []bool{true, false, false, false}, before)

	require.NoError(t, b.Plug(ctx, 0xdeadbeef))
	after, err := b.Slots(ctx)
	require.NoError(t, err)
	assert.Equal(t, []bool{true, true, false, false}, after)
	assert.Error(t, b.Plug(ctx, 1), "second plug")

	r := gamepad.Neutral()
	r.Buttons = gamepad.ButtonA
	r.LT = 0x40
	require.NoError(t, b.Update(ctx, r))

	var want InputState
	want.Buttons = uint32(gamepad.XInputA)
	want.LT = 0x40
	wantBytes, _ := want.MarshalBinary()
	assert.Eventually(t, func() bool { return len(srv.Inputs(1, 2)) == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, [][]byte{wantBytes}, srv.Inputs(1, 2))

	require.NoError(t, b.Unplug(ctx))
	assert.Equal(t, []int{1}, srv.Devices(1))
	assert.ErrorIs(t, b.Update(ctx, r), errNotPlugged)
	require.NoError(t, b.Unplug(ctx), "unplug without device is a no-op")
	require.NoError(t, b.Close())
}

func TestRumbleIsDrained(t *testing.T) {
	srv := viipertest.Start(t)
	b := openBackend(t, srv, 0)
	ctx := context.Background()
	require.NoError(t, b.Plug(ctx, 1))
	assert.Eventually(t, func() bool { return srv.Streaming(1, 1) }, time.Second, 5*time.Millisecond)
	require.NoError(t, srv.Rumble(1, 1, 0x80, 0x10))
	require.NoError(t, b.Update(ctx, gamepad.Neutral()))
	require.NoError(t, b.Close())
	assert.Empty(t, srv.Buses())
}

func TestClosePlugged(t *testing.T) {
	srv := viipertest.Start(t)
	srv.AddBus(2)
	b := openBackend(t, srv, 2)
	require.NoError(t, b.Plug(context.Background(), 1))
	require.NoError(t, b.Close())
	assert.Empty(t, srv.Devices(2))
}
