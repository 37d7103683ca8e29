// Package moga implements the MODE A serial protocol spoken by Moga
// controllers over Bluetooth RFCOMM.
//
// Outbound command frames are 5 bytes:
//
//	0: 0x5a (identifier)
//	1: 0x05 (length)
//	2: command code
//	3: controller id
//	4: checksum
//
// Inbound response frames are 12 (digital triggers) or 14 (analog
// triggers) bytes:
//
//	0: 0x7a (identifier)
//	1: length
//	2: response code
//	3: controller id
//	4..9 or 4..11: controller state
//	10 or 12: 0x10, controller family marker
//	11 or 13: checksum
//
// The checksum is the XOR of every preceding byte in the frame.
package moga

const (
	// MarkerCommand identifies frames sent to the controller.
	MarkerCommand byte = 0x5a
	// MarkerResponse identifies frames received from the controller.
	MarkerResponse byte = 0x7a

	CommandLen       = 5
	ShortResponseLen = 12
	LongResponseLen  = 14

	// StateLen is the size of the controller state carried by a long response.
	StateLen = 8
	// ShortStateLen is the number of state bytes carried by a short response.
	ShortStateLen = 6

	stateOffset = 4
)

// CIDUnknown is used when the virtual slot could not be identified. The
// controller keeps working but its slot LEDs stay dark.
const CIDUnknown uint8 = 5

// Command is a command code sent to the controller.
type Command uint8

const (
	CmdPollDigital   Command = 65
	CmdSetCID        Command = 67
	CmdListenDigital Command = 68
	CmdPollAnalog    Command = 69
	CmdListenAnalog  Command = 70
)

// Response is a status code received from the controller.
type Response uint8

const (
	RespPollDigital   Response = 97
	RespListenDigital Response = 100
	RespPollAnalog    Response = 101
	RespListenAnalog  Response = 102
)

// Mode selects between the digital (12 byte) and analog (14 byte) trigger
// variants of the protocol.
type Mode string

const (
	ModeAnalog  Mode = "analog"
	ModeDigital Mode = "digital"
)

// PollCommand returns the state poll command for the mode.
func (m Mode) PollCommand() Command {
	if m == ModeDigital {
		return CmdPollDigital
	}
	return CmdPollAnalog
}

// ListenCommand returns the command enabling passive listen mode.
func (m Mode) ListenCommand() Command {
	if m == ModeDigital {
		return CmdListenDigital
	}
	return CmdListenAnalog
}

// ResponseLen returns the size of a response frame in this mode.
func (m Mode) ResponseLen() int {
	if m == ModeDigital {
		return ShortResponseLen
	}
	return LongResponseLen
}

// Decode validates a response frame of this mode and extracts the state.
func (m Mode) Decode(b []byte) (State, error) {
	if m == ModeDigital {
		return DecodeShortResponse(b)
	}
	return DecodeResponse(b)
}

// State is the raw controller state carried by a response frame.
//
//	byte 0: R1 L1 Sel Start X A B Y   (bit 7 .. bit 0)
//	byte 1: R3 L3 R2 L2 E W S N
//	byte 2: left stick X     byte 3: left stick Y
//	byte 4: right stick X    byte 5: right stick Y
//	byte 6: left trigger     byte 7: right trigger
type State [StateLen]byte

// Reset zeroes the state so it translates to a neutral report.
func (s *State) Reset() { *s = State{} }

// IsZero reports whether the state is all zeroes.
func (s State) IsZero() bool { return s == State{} }
