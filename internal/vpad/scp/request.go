// Package scp drives a virtual Xbox 360 controller through the ScpVBus
// driver on Windows. The request buffers are built here on every platform;
// the driver calls only exist on Windows.
package scp

import (
	"encoding/binary"

	"github.com/Alia5/mogaserial/pkg/gamepad"
)

// InterfaceGUID is the device interface class of the ScpVBus bus driver.
const InterfaceGUID = "{F679F562-3164-42CE-A4DB-E7DDBE723909}"

// Bus driver control codes.
const (
	IOCTLPlugIn uint32 = 0x2A4000
	IOCTLUnplug uint32 = 0x2A4004
	IOCTLReport uint32 = 0x2A400C
)

const (
	busRequestLen    = 16
	reportRequestLen = 28
	reportPayloadLen = 0x14
)

// BusRequest builds the plug in / unplug buffer for the pad identified by
// serial.
func BusRequest(serial uint32) []byte {
	b := make([]byte, busRequestLen)
	b[0] = busRequestLen
	binary.LittleEndian.PutUint32(b[4:8], serial)
	return b
}

// ReportRequest builds the input report buffer:
//
//	0:      request size (28)
//	4..7:   serial (LE)
//	9:      payload size (0x14)
//	10..11: XInput buttons (LE)
//	12, 13: left, right trigger
//	14..21: LX, LY, RX, RY (LE int16)
func ReportRequest(serial uint32, g gamepad.XInputGamepad) []byte {
	b := make([]byte, reportRequestLen)
	b[0] = reportRequestLen
	binary.LittleEndian.PutUint32(b[4:8], serial)
	b[9] = reportPayloadLen
	binary.LittleEndian.PutUint16(b[10:12], g.Buttons)
	b[12] = g.LeftTrigger
	b[13] = g.RightTrigger
	binary.LittleEndian.PutUint16(b[14:16], uint16(g.ThumbLX))
	binary.LittleEndian.PutUint16(b[16:18], uint16(g.ThumbLY))
	binary.LittleEndian.PutUint16(b[18:20], uint16(g.ThumbRX))
	binary.LittleEndian.PutUint16(b[20:22], uint16(g.ThumbRY))
	return b
}
