package moga

import (
	"errors"
	"fmt"
)

var (
	// ErrFraming reports a frame with a bad identifier or length.
	ErrFraming = errors.New("moga: framing error")
	// ErrChecksum reports a frame whose trailing checksum does not match.
	ErrChecksum = errors.New("moga: checksum mismatch")
)

// FrameError describes why a frame was rejected. It matches ErrFraming or
// ErrChecksum with errors.Is.
type FrameError struct {
	Kind error
	Want byte
	Got  byte
	Len  int
}

func (e *FrameError) Error() string {
	switch e.Kind {
	case ErrChecksum:
		return fmt.Sprintf("%v: want 0x%02x, got 0x%02x", e.Kind, e.Want, e.Got)
	default:
		return fmt.Sprintf("%v: identifier 0x%02x, %d bytes", e.Kind, e.Got, e.Len)
	}
}

func (e *FrameError) Unwrap() error { return e.Kind }

// Frame is one decoded protocol message.
type Frame struct {
	Identifier byte
	Length     byte
	Code       byte
	CID        uint8
	Payload    []byte
	Checksum   byte
}

// Checksum XOR-folds b. Frames carry the fold of every byte before the
// checksum byte.
func Checksum(b []byte) byte {
	var c byte
	for _, v := range b {
		c ^= v
	}
	return c
}

// EncodeCommand builds the 5 byte command frame for code addressed to cid.
func EncodeCommand(code Command, cid uint8) []byte {
	b := make([]byte, CommandLen)
	b[0] = MarkerCommand
	b[1] = CommandLen
	b[2] = byte(code)
	b[3] = cid
	b[4] = Checksum(b[:CommandLen-1])
	return b
}

// ParseFrame validates any command or response frame and splits it into
// its fields. The declared length must match len(b).
func ParseFrame(b []byte) (Frame, error) {
	if len(b) < CommandLen {
		return Frame{}, frameErr(b)
	}
	if b[0] != MarkerCommand && b[0] != MarkerResponse {
		return Frame{}, frameErr(b)
	}
	if int(b[1]) != len(b) {
		return Frame{}, frameErr(b)
	}
	if err := verifyChecksum(b); err != nil {
		return Frame{}, err
	}
	n := len(b)
	return Frame{
		Identifier: b[0],
		Length:     b[1],
		Code:       b[2],
		CID:        b[3],
		Payload:    append([]byte(nil), b[stateOffset:n-1]...),
		Checksum:   b[n-1],
	}, nil
}

// DecodeResponse validates a 14 byte analog response frame and returns the
// controller state it carries.
func DecodeResponse(b []byte) (State, error) {
	var s State
	if err := validateResponse(b, LongResponseLen); err != nil {
		return s, err
	}
	copy(s[:], b[stateOffset:stateOffset+StateLen])
	return s, nil
}

// DecodeShortResponse validates a 12 byte digital response frame. The
// trigger bytes of the returned state are zero.
func DecodeShortResponse(b []byte) (State, error) {
	var s State
	if err := validateResponse(b, ShortResponseLen); err != nil {
		return s, err
	}
	copy(s[:ShortStateLen], b[stateOffset:stateOffset+ShortStateLen])
	return s, nil
}

func validateResponse(b []byte, n int) error {
	if len(b) != n || b[0] != MarkerResponse {
		return frameErr(b)
	}
	return verifyChecksum(b)
}

func verifyChecksum(b []byte) error {
	n := len(b)
	if want := Checksum(b[:n-1]); want != b[n-1] {
		return &FrameError{Kind: ErrChecksum, Want: want, Got: b[n-1], Len: n}
	}
	return nil
}

func frameErr(b []byte) *FrameError {
	e := &FrameError{Kind: ErrFraming, Len: len(b)}
	if len(b) > 0 {
		e.Got = b[0]
	}
	return e
}
