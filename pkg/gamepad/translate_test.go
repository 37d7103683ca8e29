package gamepad

import (
	"testing"

	"github.com/Alia5/mogaserial/pkg/moga"
	"github.com/stretchr/testify/assert"
)

func TestTranslate_Neutral(t *testing.T) {
	assert.Equal(t, Neutral(), Translate(moga.State{}))
}

func TestTranslate_Byte0Buttons(t *testing.T) {
	tests := []struct {
		name string
		raw  byte
		want Buttons
	}{
		{name: "Y", raw: 1 << 0, want: ButtonY},
		{name: "B", raw: 1 << 1, want: ButtonB},
		{name: "A", raw: 0b00000100, want: ButtonA},
		{name: "X", raw: 1 << 3, want: ButtonX},
		{name: "Start", raw: 1 << 4, want: ButtonStart},
		{name: "Select", raw: 1 << 5, want: ButtonSelect},
		{name: "L1", raw: 1 << 6, want: ButtonL1},
		{name: "R1", raw: 1 << 7, want: ButtonR1},
		{name: "Start+Select is Guide", raw: 0x30, want: ButtonStart | ButtonSelect | ButtonGuide},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := Translate(moga.State{tt.raw})
			assert.Equal(t, tt.want, r.Buttons)
			assert.Equal(t, HatNeutral, r.Hat)
		})
	}
}

func TestTranslate_Byte1Buttons(t *testing.T) {
	assert.Equal(t, ButtonL2, Translate(moga.State{0, 0x10}).Buttons)
	assert.Equal(t, ButtonR2, Translate(moga.State{0, 0x20}).Buttons)
	assert.Equal(t, ButtonL3, Translate(moga.State{0, 0x40}).Buttons)
	assert.Equal(t, ButtonR3, Translate(moga.State{0, 0x80}).Buttons)
}

func TestTranslate_Hat(t *testing.T) {
	want := map[byte]Hat{
		0x01: HatNorth,
		0x09: HatNorthEast,
		0x08: HatEast,
		0x0a: HatSouthEast,
		0x02: HatSouth,
		0x06: HatSouthWest,
		0x04: HatWest,
		0x05: HatNorthWest,
	}
	for nibble := byte(0); nibble <= 0x0f; nibble++ {
		r := Translate(moga.State{0, nibble | 0xc0})
		if h, ok := want[nibble]; ok {
			assert.Equal(t, h, r.Hat, "nibble 0x%x", nibble)
		} else {
			assert.Equal(t, HatNeutral, r.Hat, "nibble 0x%x", nibble)
			assert.Equal(t, -1, r.Hat.Centidegrees())
		}
		// the high bits never leak into the hat
		assert.True(t, r.Buttons.Has(ButtonL3|ButtonR3))
	}
}

func TestHat_Centidegrees(t *testing.T) {
	assert.Equal(t, 0, HatNorth.Centidegrees())
	assert.Equal(t, 9000, HatEast.Centidegrees())
	assert.Equal(t, 31500, HatNorthWest.Centidegrees())
	assert.Equal(t, -1, HatNeutral.Centidegrees())
}

func TestAxis_NeutralIsCenter(t *testing.T) {
	r := Translate(moga.State{0, 0, AxisNeutral, AxisNeutral, AxisNeutral, AxisNeutral})
	assert.Equal(t, int16(0), r.LX)
	assert.Equal(t, int16(0), r.LY)
	assert.Equal(t, int16(0), r.RX)
	assert.Equal(t, int16(0), r.RY)
	assert.Equal(t, int16(0), Axis(AxisNeutral))
	assert.Equal(t, int16(0), InvertAxis(Axis(AxisNeutral)))
}

func TestAxis_Range(t *testing.T) {
	assert.Equal(t, int16(32512), Axis(0x7f))
	assert.Equal(t, int16(-32768), Axis(0x80))
	assert.Equal(t, int16(-256), Axis(0xff))

	for raw := 0; raw <= 255; raw++ {
		assert.Equal(t, int16(int8(raw))*256, Axis(byte(raw)))
	}
}

func TestTranslate_YInverted(t *testing.T) {
	r := Translate(moga.State{0, 0, 0x40, 0x40, 0x40, 0x40})
	assert.Equal(t, int16(0x4000), r.LX)
	assert.Equal(t, int16(-0x4000), r.LY)
	assert.Equal(t, int16(0x4000), r.RX)
	assert.Equal(t, int16(-0x4000), r.RY)

	r = Translate(moga.State{0, 0, 0, 0x80, 0, 0x80})
	assert.Equal(t, int16(32767), r.LY)
	assert.Equal(t, int16(32767), r.RY)
}

func TestInvertAxis_Involution(t *testing.T) {
	for v := -32768; v <= 32767; v += 127 {
		assert.Equal(t, int16(v), InvertAxis(InvertAxis(int16(v))))
	}
	assert.Equal(t, int16(32767), InvertAxis(-32768))
	assert.Equal(t, int16(-32768), InvertAxis(32767))
}

func TestTranslate_Triggers(t *testing.T) {
	r := Translate(moga.State{6: TriggerThreshold, 7: 0xff})
	assert.Equal(t, uint8(TriggerThreshold), r.LT)
	assert.Equal(t, uint8(0xff), r.RT)
	assert.False(t, r.Buttons.Has(ButtonL2))
	assert.True(t, r.Buttons.Has(ButtonR2))

	r = Translate(moga.State{6: TriggerThreshold + 1})
	assert.True(t, r.Buttons.Has(ButtonL2))
}
