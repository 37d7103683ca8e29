package scp

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Alia5/mogaserial/pkg/gamepad"
	"github.com/Alia5/mogaserial/pkg/moga"
)

func TestBusRequest(t *testing.T) {
	assert.Equal(t, []byte{
		0x10, 0, 0, 0,
		0x78, 0x56, 0x34, 0x12,
		0, 0, 0, 0, 0, 0, 0, 0,
	}, BusRequest(0x12345678))
}

func TestReportRequestNeutral(t *testing.T) {
	b := ReportRequest(1, gamepad.XInput(gamepad.Neutral()))
	want := make([]byte, 28)
	want[0] = 0x1c
	want[4] = 1
	want[9] = 0x14
	assert.Equal(t, want, b)
}

// The driver expects the raw Moga bytes in the high byte of each axis and
// the trigger bytes unchanged.
func TestReportRequestFromState(t *testing.T) {
	st := moga.State{
		0x34, // Start+Select (Guide), A
		0x51, // L3, L2, hat north
		0x40, 0xc0, 0x7f, 0x81,
		0x20, 0xff,
	}
	b := ReportRequest(0xaabbccdd, gamepad.XInput(gamepad.Translate(st)))

	assert.Equal(t, []byte{0xdd, 0xcc, 0xbb, 0xaa}, b[4:8])
	buttons := uint16(b[10]) | uint16(b[11])<<8
	assert.Equal(t,
		gamepad.XInputA|gamepad.XInputStart|gamepad.XInputBack|gamepad.XInputGuide|gamepad.XInputLThumb|gamepad.XInputDPadUp,
		buttons)
	assert.Equal(t, byte(0x20), b[12])
	assert.Equal(t, byte(0xff), b[13])
	assert.Equal(t, []byte{0x00, 0x40, 0x00, 0xc0, 0x00, 0x7f, 0x00, 0x81}, b[14:22])
	assert.Equal(t, make([]byte, 6), b[22:])
}
