// Package vpad defines the capability interfaces of a virtual controller
// backend and the registry backends add themselves to.
package vpad

import (
	"context"
	"errors"
	"io"

	"github.com/Alia5/mogaserial/pkg/gamepad"
)

// ErrUnavailable reports that the virtual controller driver or service is
// missing or cannot be reached.
var ErrUnavailable = errors.New("vpad: virtual controller driver unavailable")

// Pad is a single virtual gamepad.
type Pad interface {
	// Plug makes the host see a newly connected gamepad. serial identifies
	// the physical controller it stands in for.
	Plug(ctx context.Context, serial uint32) error
	// Unplug removes the gamepad from the host.
	Unplug(ctx context.Context) error
	// Update pushes a new report to the plugged gamepad.
	Update(ctx context.Context, r gamepad.Report) error
}

// Enumerator reports which controller slots the host currently sees as
// connected. The result is indexed from slot 1 at position 0.
type Enumerator interface {
	Slots(ctx context.Context) ([]bool, error)
}

// Backend is an opened virtual controller driver.
type Backend interface {
	Pad
	Enumerator
	io.Closer
}

// Options configures backend selection and the backend specific settings.
type Options struct {
	Backend    string `help:"Virtual controller backend (${backends})" default:"viiper" env:"MOGASERIAL_PAD_BACKEND" json:"backend" yaml:"backend" toml:"backend"`
	Slots      int    `help:"Number of controller slots inspected to identify the attached pad" default:"4" env:"MOGASERIAL_PAD_SLOTS" json:"slots" yaml:"slots" toml:"slots"`
	ViiperAddr string `name:"viiper-addr" help:"VIIPER API server address" default:"localhost:3242" env:"MOGASERIAL_VIIPER_ADDR" json:"viiper-addr" yaml:"viiper-addr" toml:"viiper-addr"`
	ViiperBus  uint32 `name:"viiper-bus" help:"VIIPER bus number (0: lowest existing bus, or create one)" default:"0" env:"MOGASERIAL_VIIPER_BUS" json:"viiper-bus" yaml:"viiper-bus" toml:"viiper-bus"`
}
