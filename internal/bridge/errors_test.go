package bridge

import (
	"context"
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Alia5/mogaserial/internal/transport"
	"github.com/Alia5/mogaserial/internal/vpad"
	"github.com/Alia5/mogaserial/pkg/moga"
)

func TestKindOf(t *testing.T) {
	_, badSum := moga.DecodeResponse(append(frame()[:13], 0x00))
	_, badFrame := moga.DecodeResponse([]byte{1, 2, 3})

	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"nil", nil, KindOther},
		{"plain", errors.New("x"), KindOther},
		{"eof", io.EOF, KindOther},
		{"timeout", fmt.Errorf("read: %w", transport.ErrTimeout), KindFrameTimeout},
		{"checksum", badSum, KindChecksum},
		{"framing", badFrame, KindFraming},
		{"adapter", fmt.Errorf("open: %w", vpad.ErrUnavailable), KindAdapterUnavailable},
		{"slot", ErrSlotAmbiguous, KindSlotAmbiguous},
		{"tagged", &Error{Kind: KindTransportConnect, Op: "connect", Err: errors.New("refused")}, KindTransportConnect},
		{"tagged other falls through", &Error{Op: "x", Err: transport.ErrTimeout}, KindFrameTimeout},
		{"wrapped tagged", fmt.Errorf("run: %w", &Error{Kind: KindAdapterUnavailable, Op: "plug", Err: context.Canceled}), KindAdapterUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, KindOf(tt.err))
		})
	}
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, ExitOK, ExitCode(nil))
	assert.Equal(t, ExitAdapterUnavailable, ExitCode(fmt.Errorf("x: %w", vpad.ErrUnavailable)))
	assert.Equal(t, ExitTransportSetup, ExitCode(&Error{Kind: KindTransportConnect, Op: "connect", Err: io.EOF}))
	assert.Equal(t, ExitFailure, ExitCode(errors.New("boom")))
}

func TestErrorMessage(t *testing.T) {
	err := &Error{Kind: KindFrameTimeout, Op: "receive", Err: transport.ErrTimeout}
	assert.Equal(t, "receive (frame timeout): transport: receive timed out", err.Error())
	assert.ErrorIs(t, err, transport.ErrTimeout)
}

func TestStatsNilSafe(t *testing.T) {
	var s *Stats
	s.Frame()
	s.BadFrame()
	s.Timeout()
	s.PollFallback()
	s.Reconnect()
	assert.Equal(t, StatsSnapshot{}, s.Snapshot())
}
