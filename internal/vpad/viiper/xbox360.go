package viiper

import (
	"encoding/binary"
	"io"

	"github.com/Alia5/mogaserial/pkg/gamepad"
)

// DeviceType is the VIIPER device type created for the controller.
const DeviceType = "xbox360"

// InputStateSize is the size of an xbox360 input state on the stream.
const InputStateSize = 14

// InputState is the xbox360 device stream input.
//
//	Buttons: 4 bytes (LE uint32, XInput button bits)
//	LT, RT:  1 byte each
//	LX, LY, RX, RY: 2 bytes each (LE int16, Y up)
type InputState struct {
	Buttons uint32
	LT, RT  uint8
	LX, LY  int16
	RX, RY  int16
}

// InputStateFromReport maps a normalized report onto the xbox360 input.
func InputStateFromReport(r gamepad.Report) InputState {
	g := gamepad.XInput(r)
	return InputState{
		Buttons: uint32(g.Buttons),
		LT:      g.LeftTrigger,
		RT:      g.RightTrigger,
		LX:      g.ThumbLX,
		LY:      g.ThumbLY,
		RX:      g.ThumbRX,
		RY:      g.ThumbRY,
	}
}

func (s InputState) MarshalBinary() ([]byte, error) {
	b := make([]byte, InputStateSize)
	binary.LittleEndian.PutUint32(b[0:4], s.Buttons)
	b[4] = s.LT
	b[5] = s.RT
	binary.LittleEndian.PutUint16(b[6:8], uint16(s.LX))
	binary.LittleEndian.PutUint16(b[8:10], uint16(s.LY))
	binary.LittleEndian.PutUint16(b[10:12], uint16(s.RX))
	binary.LittleEndian.PutUint16(b[12:14], uint16(s.RY))
	return b, nil
}

func (s *InputState) UnmarshalBinary(data []byte) error {
	if len(data) < InputStateSize {
		return io.ErrUnexpectedEOF
	}
	s.Buttons = binary.LittleEndian.Uint32(data[0:4])
	s.LT = data[4]
	s.RT = data[5]
	s.LX = int16(binary.LittleEndian.Uint16(data[6:8]))
	s.LY = int16(binary.LittleEndian.Uint16(data[8:10]))
	s.RX = int16(binary.LittleEndian.Uint16(data[10:12]))
	s.RY = int16(binary.LittleEndian.Uint16(data[12:14]))
	return nil
}

// Rumble is the feedback the xbox360 device writes back on the stream.
type Rumble struct {
	LeftMotor  uint8
	RightMotor uint8
}
