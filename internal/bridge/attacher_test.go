package bridge

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alia5/mogaserial/internal/transport"
	"github.com/Alia5/mogaserial/internal/vpad"
	"github.com/Alia5/mogaserial/internal/vpad/vpadtest"
	"github.com/Alia5/mogaserial/pkg/gamepad"
	"github.com/Alia5/mogaserial/pkg/moga"
)

func testSession(t *testing.T) *Session {
	t.Helper()
	a, err := transport.ParseAddress("tcp://127.0.0.1:7000")
	require.NoError(t, err)
	return NewSession(a)
}

func TestDiffSlots(t *testing.T) {
	tests := []struct {
		name          string
		before, after []bool
		want          uint8
		ok            bool
	}{
		{"second slot", []bool{false, false, false, false}, []bool{false, true, false, false}, 2, true},
		{"first free", []bool{true, false, false, false}, []bool{true, true, false, false}, 2, true},
		{"first of several", []bool{false, false, false, false}, []bool{false, false, true, true}, 3, true},
		{"unchanged", []bool{true, false, false, false}, []bool{true, false, false, false}, moga.CIDUnknown, false},
		{"only disconnects", []bool{true, true, false, false}, []bool{false, true, false, false}, moga.CIDUnknown, false},
		{"empty", nil, nil, moga.CIDUnknown, false},
		{"length mismatch", []bool{false}, []bool{false, true}, moga.CIDUnknown, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := DiffSlots(tt.before, tt.after)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.ok, ok)
		})
	}
}

func TestAttach(t *testing.T) {
	rec := vpadtest.New()
	rec.SlotSnapshots = [][]bool{
		{false, false, false, false},
		{false, true, false, false},
	}
	s := testSession(t)
	s.State = moga.State{0xff, 0xff}

	require.NoError(t, NewAttacher(rec, 0, nil).Attach(context.Background(), s))
	assert.Equal(t, uint8(2), s.CID)
	assert.True(t, s.State.IsZero())
	assert.Equal(t, []string{"slots", "plug", "update", "slots"}, rec.Ops())
	assert.Equal(t, s.Address.Serial(), rec.Calls()[1].Serial)
	assert.Equal(t, []gamepad.Report{gamepad.Neutral()}, rec.Updates())
}

func TestAttachAmbiguous(t *testing.T) {
	rec := vpadtest.New()
	rec.SlotSnapshots = [][]bool{{true, false, false, false}}
	s := testSession(t)
	s.CID = 3

	err := NewAttacher(rec, 0, nil).Attach(context.Background(), s)
	assert.Equal(t, KindSlotAmbiguous, KindOf(err))
	assert.Equal(t, moga.CIDUnknown, s.CID)
	assert.Contains(t, rec.Ops(), "plug", "pad stays plugged")
}

func TestAttachEnumerationFailure(t *testing.T) {
	rec := vpadtest.New()
	rec.SlotsErr = errors.New("enumeration broke")
	s := testSession(t)

	err := NewAttacher(rec, 0, nil).Attach(context.Background(), s)
	assert.Equal(t, KindSlotAmbiguous, KindOf(err))
	assert.Equal(t, moga.CIDUnknown, s.CID)
}

func TestAttachAdapterUnavailable(t *testing.T) {
	rec := vpadtest.New()
	rec.SlotsErr = fmt.Errorf("scp: %w", vpad.ErrUnavailable)

	err := NewAttacher(rec, 0, nil).Attach(context.Background(), testSession(t))
	assert.Equal(t, KindAdapterUnavailable, KindOf(err))
	assert.NotContains(t, rec.Ops(), "plug")
}

func TestAttachPlugFailure(t *testing.T) {
	rec := vpadtest.New()
	rec.PlugErr = fmt.Errorf("add device: %w", vpad.ErrUnavailable)

	err := NewAttacher(rec, 0, nil).Attach(context.Background(), testSession(t))
	var be *Error
	require.ErrorAs(t, err, &be)
	assert.Equal(t, "plug", be.Op)
	assert.Equal(t, KindAdapterUnavailable, be.Kind)
}

func TestAttachCanceledDuringSettle(t *testing.T) {
	rec := vpadtest.New()
	ctx, cancel := context.WithCancel(context.Background())
	rec.OnPlug = cancel
	s := testSession(t)

	err := NewAttacher(rec, time.Hour, nil).Attach(ctx, s)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, moga.CIDUnknown, s.CID)
}

func TestDetach(t *testing.T) {
	rec := vpadtest.New()
	s := testSession(t)
	s.CID = 2
	s.State = moga.State{0x04}

	require.NoError(t, NewAttacher(rec, 0, nil).Detach(context.Background(), s))
	assert.Equal(t, []string{"update", "unplug"}, rec.Ops())
	assert.Equal(t, []gamepad.Report{gamepad.Neutral()}, rec.Updates())
	assert.True(t, s.State.IsZero())
	assert.Equal(t, moga.CIDUnknown, s.CID)
}
