//go:build !linux

package transport

import (
	"context"
	"fmt"
)

const rfcommSupported = false

func dialRFCOMM(context.Context, Address, Config) (Conn, error) {
	return nil, fmt.Errorf("%w: native rfcomm sockets need linux, use the paired controller's serial port instead (serial://COM5)", ErrUnsupported)
}
