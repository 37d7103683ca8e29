// Package gamepad defines the normalized controller report consumed by
// virtual-controller backends and the translation from raw Moga state.
package gamepad

import "math"

// Buttons is the normalized button bitset. Bit positions are a fixed
// contract with the backends and follow the DirectInput default order.
type Buttons uint16

const (
	ButtonA Buttons = 1 << iota
	ButtonB
	ButtonX
	ButtonY
	ButtonL1
	ButtonR1
	ButtonSelect
	ButtonStart
	ButtonL3
	ButtonR3
	ButtonL2
	ButtonR2
	ButtonGuide
)

// Has reports whether every button in b is held.
func (b Buttons) Has(mask Buttons) bool { return b&mask == mask }

// Hat is a discrete 8-way direction, clockwise from north.
type Hat uint8

const (
	HatNorth Hat = iota
	HatNorthEast
	HatEast
	HatSouthEast
	HatSouth
	HatSouthWest
	HatWest
	HatNorthWest
	// HatNeutral is reported when no direction (or an invalid one) is held.
	HatNeutral Hat = 0x0f
)

// Centidegrees returns the hat angle in hundredths of a degree, or -1 when
// neutral.
func (h Hat) Centidegrees() int {
	if h > HatNorthWest {
		return -1
	}
	return int(h) * 4500
}

// Up reports whether the hat points north, north-east or north-west.
func (h Hat) Up() bool {
	return h == HatNorthWest || h == HatNorth || h == HatNorthEast
}

func (h Hat) Right() bool {
	return h == HatNorthEast || h == HatEast || h == HatSouthEast
}

func (h Hat) Down() bool {
	return h == HatSouthEast || h == HatSouth || h == HatSouthWest
}

func (h Hat) Left() bool {
	return h == HatSouthWest || h == HatWest || h == HatNorthWest
}

// Report is the normalized controller state.
//
// Stick axes are signed with center 0; X grows to the right and Y grows
// downwards. Triggers are 0 (released) to 255 (fully pressed).
type Report struct {
	Buttons Buttons
	Hat     Hat
	LX, LY  int16
	RX, RY  int16
	LT, RT  uint8
}

// Neutral returns the report of an idle controller.
func Neutral() Report { return Report{Hat: HatNeutral} }

// InvertAxis flips the direction of a signed axis. It is an involution over
// the whole int16 range, so the extremes swap instead of overflowing.
func InvertAxis(v int16) int16 {
	switch v {
	case math.MinInt16:
		return math.MaxInt16
	case math.MaxInt16:
		return math.MinInt16
	default:
		return -v
	}
}
