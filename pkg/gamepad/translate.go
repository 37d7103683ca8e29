package gamepad

import "github.com/Alia5/mogaserial/pkg/moga"

// TriggerThreshold is the analog value above which a trigger also counts as
// a digital press. It matches XINPUT_GAMEPAD_TRIGGER_THRESHOLD.
const TriggerThreshold = 30

// AxisNeutral is the raw stick byte reported by the controller at rest.
const AxisNeutral byte = 0x00

// Byte 0 carries the face, shoulder and menu buttons in a scrambled order.
var byte0Buttons = [8]Buttons{
	ButtonY,      // bit 0
	ButtonB,      // bit 1
	ButtonA,      // bit 2
	ButtonX,      // bit 3
	ButtonStart,  // bit 4
	ButtonSelect, // bit 5
	ButtonL1,     // bit 6
	ButtonR1,     // bit 7
}

// Byte 1 high nibble.
var byte1Buttons = [4]Buttons{
	ButtonL2, // bit 4
	ButtonR2, // bit 5
	ButtonL3, // bit 6
	ButtonR3, // bit 7
}

// hatCodes maps the d-pad nibble (bit 0 N, bit 1 S, bit 2 W, bit 3 E) to a
// hat direction. Codes not listed, including impossible combinations such
// as N+S, are neutral.
var hatCodes = map[byte]Hat{
	0x01: HatNorth,
	0x09: HatNorthEast,
	0x08: HatEast,
	0x0a: HatSouthEast,
	0x02: HatSouth,
	0x06: HatSouthWest,
	0x04: HatWest,
	0x05: HatNorthWest,
}

// Translate converts raw controller state into a normalized report. It
// never fails; a zeroed state yields Neutral().
func Translate(s moga.State) Report {
	r := Report{Hat: decodeHat(s[1])}

	for bit, b := range byte0Buttons {
		if s[0]&(1<<bit) != 0 {
			r.Buttons |= b
		}
	}
	for bit, b := range byte1Buttons {
		if s[1]&(1<<(bit+4)) != 0 {
			r.Buttons |= b
		}
	}
	if r.Buttons.Has(ButtonStart | ButtonSelect) {
		r.Buttons |= ButtonGuide
	}

	r.LX = Axis(s[2])
	r.LY = InvertAxis(Axis(s[3]))
	r.RX = Axis(s[4])
	r.RY = InvertAxis(Axis(s[5]))

	r.LT = s[6]
	r.RT = s[7]
	if r.LT > TriggerThreshold {
		r.Buttons |= ButtonL2
	}
	if r.RT > TriggerThreshold {
		r.Buttons |= ButtonR2
	}
	return r
}

func decodeHat(b byte) Hat {
	if h, ok := hatCodes[b&0x0f]; ok {
		return h
	}
	return HatNeutral
}

// fixAxis moves the stick's rest value to the middle of the unsigned byte
// range. The controller reports sticks as two's complement bytes.
func fixAxis(raw byte) uint8 { return raw ^ 0x80 }

// Axis converts a raw stick byte into a signed 16 bit axis. AxisNeutral
// maps to exactly 0.
func Axis(raw byte) int16 {
	return int16(int32(fixAxis(raw))<<8 - 0x8000)
}
