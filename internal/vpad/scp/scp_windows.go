//go:build windows

package scp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"unsafe"

	"golang.org/x/sys/windows"

	"github.com/Alia5/mogaserial/internal/vpad"
	"github.com/Alia5/mogaserial/pkg/gamepad"
)

// XInput exposes four user slots.
const xinputSlots = 4

var (
	xinput              = windows.NewLazySystemDLL("xinput1_4.dll")
	procXInputGetState  = xinput.NewProc("XInputGetState")
	xinputLegacy        = windows.NewLazySystemDLL("xinput9_1_0.dll")
	procXInputGetState9 = xinputLegacy.NewProc("XInputGetState")
)

func init() {
	vpad.Register("scp", func(opts vpad.Options, logger *slog.Logger) (vpad.Backend, error) {
		b, err := Open(logger)
		if err != nil {
			return nil, err
		}
		return b, nil
	})
}

// Backend holds the open ScpVBus device.
type Backend struct {
	logger *slog.Logger
	handle windows.Handle
	state  *windows.LazyProc

	mu      sync.Mutex
	serial  uint32
	plugged bool
}

// Open locates the ScpVBus device interface and opens it. A missing driver
// is reported as vpad.ErrUnavailable.
func Open(logger *slog.Logger) (*Backend, error) {
	if logger == nil {
		logger = slog.Default()
	}
	guid, err := windows.GUIDFromString(InterfaceGUID)
	if err != nil {
		return nil, err
	}
	paths, err := windows.CM_Get_Device_Interface_List("", &guid, windows.CM_GET_DEVICE_INTERFACE_LIST_PRESENT)
	if err != nil {
		return nil, fmt.Errorf("%w: scp driver not installed: %v", vpad.ErrUnavailable, err)
	}
	if len(paths) == 0 || paths[0] == "" {
		return nil, fmt.Errorf("%w: scp driver not active", vpad.ErrUnavailable)
	}
	name, err := windows.UTF16PtrFromString(paths[0])
	if err != nil {
		return nil, err
	}
	h, err := windows.CreateFile(name,
		windows.GENERIC_READ|windows.GENERIC_WRITE,
		windows.FILE_SHARE_READ|windows.FILE_SHARE_WRITE,
		nil, windows.OPEN_EXISTING, windows.FILE_ATTRIBUTE_NORMAL, 0)
	if err != nil {
		return nil, fmt.Errorf("%w: open scp driver: %v", vpad.ErrUnavailable, err)
	}

	state := procXInputGetState
	if xinput.Load() != nil {
		state = procXInputGetState9
	}
	if err := state.Find(); err != nil {
		_ = windows.CloseHandle(h)
		return nil, fmt.Errorf("%w: xinput: %v", vpad.ErrUnavailable, err)
	}
	logger.Info("Using SCP virtual bus", "path", paths[0])
	return &Backend{logger: logger, handle: h, state: state}, nil
}

func (b *Backend) ioctl(code uint32, in []byte) error {
	var n uint32
	return windows.DeviceIoControl(b.handle, code, &in[0], uint32(len(in)), nil, 0, &n, nil)
}

// Plug attaches a pad identified by serial. The driver refuses a serial
// that is already attached; that case is logged and the pad is kept.
func (b *Backend) Plug(_ context.Context, serial uint32) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.ioctl(IOCTLPlugIn, BusRequest(serial)); err != nil {
		b.logger.Warn("Controller already attached", "serial", fmt.Sprintf("%08X", serial), "error", err)
	}
	b.serial = serial
	b.plugged = true
	return nil
}

func (b *Backend) Unplug(context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.plugged {
		return nil
	}
	b.plugged = false
	if err := b.ioctl(IOCTLUnplug, BusRequest(b.serial)); err != nil {
		return fmt.Errorf("scp unplug: %w", err)
	}
	return nil
}

func (b *Backend) Update(_ context.Context, r gamepad.Report) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.plugged {
		return errors.New("scp: no pad plugged")
	}
	if err := b.ioctl(IOCTLReport, ReportRequest(b.serial, gamepad.XInput(r))); err != nil {
		return fmt.Errorf("scp report: %w", err)
	}
	return nil
}

// Slots queries XInputGetState for every user index.
func (b *Backend) Slots(context.Context) ([]bool, error) {
	var state [16]byte // XINPUT_STATE
	out := make([]bool, xinputSlots)
	for i := range out {
		r, _, _ := b.state.Call(uintptr(i), uintptr(unsafe.Pointer(&state[0])))
		out[i] = windows.Errno(r) == windows.ERROR_SUCCESS
	}
	return out, nil
}

func (b *Backend) Close() error {
	err := b.Unplug(context.Background())
	return errors.Join(err, windows.CloseHandle(b.handle))
}
