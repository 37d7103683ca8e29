package bridge

import (
	"errors"
	"fmt"

	"github.com/Alia5/mogaserial/internal/transport"
	"github.com/Alia5/mogaserial/internal/vpad"
	"github.com/Alia5/mogaserial/pkg/moga"
)

// Kind classifies bridge failures.
type Kind int

const (
	KindOther Kind = iota
	KindTransportConnect
	KindFrameTimeout
	KindChecksum
	KindFraming
	KindAdapterUnavailable
	KindSlotAmbiguous
)

func (k Kind) String() string {
	switch k {
	case KindTransportConnect:
		return "transport connect"
	case KindFrameTimeout:
		return "frame timeout"
	case KindChecksum:
		return "checksum"
	case KindFraming:
		return "framing"
	case KindAdapterUnavailable:
		return "adapter unavailable"
	case KindSlotAmbiguous:
		return "slot ambiguous"
	default:
		return "other"
	}
}

// ErrSlotAmbiguous reports that no controller slot turned connected while
// the virtual pad was plugged.
var ErrSlotAmbiguous = errors.New("no controller slot changed to connected")

// Error is a bridge failure tagged with its Kind.
type Error struct {
	Kind Kind
	Op   string // "connect", "receive", "send", "attach", "detach", "plug"
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s (%s): %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// wrap tags err with op, classifying it with KindOf.
func wrap(op string, err error) *Error {
	return &Error{Kind: KindOf(err), Op: op, Err: err}
}

// KindOf classifies err. Tagged errors keep their kind; otherwise the
// sentinels of the transport, codec and adapter packages are recognized.
func KindOf(err error) Kind {
	if err == nil {
		return KindOther
	}
	var be *Error
	if errors.As(err, &be) && be.Kind != KindOther {
		return be.Kind
	}
	switch {
	case errors.Is(err, vpad.ErrUnavailable):
		return KindAdapterUnavailable
	case errors.Is(err, transport.ErrTimeout):
		return KindFrameTimeout
	case errors.Is(err, moga.ErrChecksum):
		return KindChecksum
	case errors.Is(err, moga.ErrFraming):
		return KindFraming
	case errors.Is(err, ErrSlotAmbiguous):
		return KindSlotAmbiguous
	}
	return KindOther
}

// Process exit codes for fatal errors.
const (
	ExitOK                 = 0
	ExitFailure            = 1
	ExitAdapterUnavailable = 4
	ExitTransportSetup     = 5
)

// ExitCode maps a fatal error to the process exit code.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	switch KindOf(err) {
	case KindAdapterUnavailable:
		return ExitAdapterUnavailable
	case KindTransportConnect:
		return ExitTransportSetup
	default:
		return ExitFailure
	}
}
