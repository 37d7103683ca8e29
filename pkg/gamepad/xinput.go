package gamepad

// XInput button bits (XINPUT_GAMEPAD wButtons).
const (
	XInputDPadUp    uint16 = 0x0001
	XInputDPadDown  uint16 = 0x0002
	XInputDPadLeft  uint16 = 0x0004
	XInputDPadRight uint16 = 0x0008
	XInputStart     uint16 = 0x0010
	XInputBack      uint16 = 0x0020
	XInputLThumb    uint16 = 0x0040
	XInputRThumb    uint16 = 0x0080
	XInputLShoulder uint16 = 0x0100
	XInputRShoulder uint16 = 0x0200
	XInputGuide     uint16 = 0x0400
	XInputA         uint16 = 0x1000
	XInputB         uint16 = 0x2000
	XInputX         uint16 = 0x4000
	XInputY         uint16 = 0x8000
)

// XInputGamepad mirrors the XINPUT_GAMEPAD structure. Stick Y axes grow
// upwards.
type XInputGamepad struct {
	Buttons      uint16
	LeftTrigger  uint8
	RightTrigger uint8
	ThumbLX      int16
	ThumbLY      int16
	ThumbRX      int16
	ThumbRY      int16
}

var xinputButtons = []struct {
	from Buttons
	to   uint16
}{
	{ButtonA, XInputA},
	{ButtonB, XInputB},
	{ButtonX, XInputX},
	{ButtonY, XInputY},
	{ButtonL1, XInputLShoulder},
	{ButtonR1, XInputRShoulder},
	{ButtonSelect, XInputBack},
	{ButtonStart, XInputStart},
	{ButtonL3, XInputLThumb},
	{ButtonR3, XInputRThumb},
	{ButtonGuide, XInputGuide},
}

// XInput maps a report onto the XInput gamepad layout. XInput has no
// digital trigger buttons, so a digital-only L2/R2 press becomes a fully
// pulled trigger.
func XInput(r Report) XInputGamepad {
	g := XInputGamepad{
		LeftTrigger:  r.LT,
		RightTrigger: r.RT,
		ThumbLX:      r.LX,
		ThumbLY:      InvertAxis(r.LY),
		ThumbRX:      r.RX,
		ThumbRY:      InvertAxis(r.RY),
	}
	if r.Buttons.Has(ButtonL2) && g.LeftTrigger == 0 {
		g.LeftTrigger = 0xff
	}
	if r.Buttons.Has(ButtonR2) && g.RightTrigger == 0 {
		g.RightTrigger = 0xff
	}
	for _, m := range xinputButtons {
		if r.Buttons.Has(m.from) {
			g.Buttons |= m.to
		}
	}
	if r.Hat.Up() {
		g.Buttons |= XInputDPadUp
	}
	if r.Hat.Down() {
		g.Buttons |= XInputDPadDown
	}
	if r.Hat.Left() {
		g.Buttons |= XInputDPadLeft
	}
	if r.Hat.Right() {
		g.Buttons |= XInputDPadRight
	}
	return g
}
