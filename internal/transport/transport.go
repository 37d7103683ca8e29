// Package transport opens the byte stream to the controller.
//
// Three kinds of links are supported: native Bluetooth RFCOMM sockets,
// serial ports (the virtual COM/rfcomm ports created for paired serial
// port profile devices) and plain TCP for relayed links. All of them
// deliver a distinguishable ErrTimeout when a receive sees no data within
// the configured timeout, and io.EOF when the remote side closed.
package transport

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"
)

var (
	// ErrTimeout is returned by Read when no data arrived in time.
	ErrTimeout = errors.New("transport: receive timed out")
	// ErrUnsupported is returned when a link kind is not available on
	// this platform.
	ErrUnsupported = errors.New("transport: unsupported on this platform")
)

// Config holds link settings shared by all schemes.
type Config struct {
	ReadTimeout time.Duration `help:"Receive timeout; silence longer than this triggers a poll" default:"2s" env:"MOGASERIAL_READ_TIMEOUT" json:"read-timeout" yaml:"read-timeout" toml:"read-timeout"`
	DialTimeout time.Duration `help:"Connection attempt timeout" default:"10s" env:"MOGASERIAL_DIAL_TIMEOUT" json:"dial-timeout" yaml:"dial-timeout" toml:"dial-timeout"`
	BaudRate    int           `help:"Baud rate for serial ports" default:"115200" env:"MOGASERIAL_BAUD_RATE" json:"baud-rate" yaml:"baud-rate" toml:"baud-rate"`
	Channel     uint8         `help:"RFCOMM channel used when the address does not name one" default:"1" env:"MOGASERIAL_RFCOMM_CHANNEL" json:"channel" yaml:"channel" toml:"channel"`
}

// Conn is an open link to the controller. It is owned by a single caller.
type Conn interface {
	io.ReadWriteCloser
	// SetReadTimeout bounds every subsequent Read. Zero disables the bound.
	SetReadTimeout(d time.Duration) error
}

// Dialer opens links. It exists so the connection manager can be driven
// by fakes in tests.
type Dialer interface {
	Dial(ctx context.Context, a Address) (Conn, error)
}

// DialerFunc adapts a function to the Dialer interface.
type DialerFunc func(ctx context.Context, a Address) (Conn, error)

func (f DialerFunc) Dial(ctx context.Context, a Address) (Conn, error) { return f(ctx, a) }

// NewDialer returns a Dialer opening real links with cfg.
func NewDialer(cfg Config) Dialer {
	return DialerFunc(func(ctx context.Context, a Address) (Conn, error) {
		return Dial(ctx, a, cfg)
	})
}

// Supported reports ErrUnsupported for addresses this platform cannot dial.
func Supported(a Address) error {
	if a.Scheme == SchemeRFCOMM && !rfcommSupported {
		return fmt.Errorf("%s: %w", a, ErrUnsupported)
	}
	return nil
}

// Dial opens a link to a and applies cfg.ReadTimeout.
func Dial(ctx context.Context, a Address, cfg Config) (Conn, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("dial %s: %w", a, err)
	}
	var (
		c   Conn
		err error
	)
	switch a.Scheme {
	case SchemeRFCOMM:
		c, err = dialRFCOMM(ctx, a, cfg)
	case SchemeSerial:
		c, err = dialSerial(a, cfg)
	case SchemeTCP:
		c, err = dialTCP(ctx, a, cfg)
	default:
		err = fmt.Errorf("unknown scheme %q", a.Scheme)
	}
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", a, err)
	}
	if err := c.SetReadTimeout(cfg.ReadTimeout); err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("dial %s: set read timeout: %w", a, err)
	}
	return c, nil
}
