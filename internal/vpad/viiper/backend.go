// Package viiper drives a virtual xbox360 controller through a VIIPER
// API server (USBIP based, cross platform).
package viiper

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/Alia5/mogaserial/internal/vpad"
	"github.com/Alia5/mogaserial/pkg/gamepad"
)

const (
	openTimeout  = 5 * time.Second
	writeTimeout = time.Second
	maxBusProbe  = 100
)

var errNotPlugged = errors.New("viiper: no device plugged")

func init() {
	vpad.Register("viiper", func(opts vpad.Options, logger *slog.Logger) (vpad.Backend, error) {
		b, err := Open(context.Background(), opts, logger)
		if err != nil {
			return nil, err
		}
		return b, nil
	})
}

// Backend is a vpad.Backend holding at most one xbox360 device on a
// VIIPER bus.
type Backend struct {
	client  *Client
	logger  *slog.Logger
	busID   uint32
	ownsBus bool
	slots   int

	mu     sync.Mutex
	devID  string
	stream net.Conn
	done   chan struct{}
}

// Open connects to the API server at opts.ViiperAddr and selects a bus.
// Failing to reach the server is reported as vpad.ErrUnavailable.
func Open(ctx context.Context, opts vpad.Options, logger *slog.Logger) (*Backend, error) {
	if logger == nil {
		logger = slog.Default()
	}
	ctx, cancel := context.WithTimeout(ctx, openTimeout)
	defer cancel()

	c := NewClient(opts.ViiperAddr)
	busID, owns, err := selectBus(ctx, c, opts.ViiperBus)
	if err != nil {
		return nil, fmt.Errorf("%w: viiper at %s: %v", vpad.ErrUnavailable, opts.ViiperAddr, err)
	}
	slots := opts.Slots
	if slots <= 0 {
		slots = 4
	}
	logger.Info("Using VIIPER bus", "addr", opts.ViiperAddr, "bus", busID, "created", owns)
	return &Backend{
		client:  c,
		logger:  logger,
		busID:   busID,
		ownsBus: owns,
		slots:   slots,
	}, nil
}

// selectBus uses the requested bus, creating it when missing. With no
// request it takes the lowest existing bus or creates the first free one.
func selectBus(ctx context.Context, c *Client, want uint32) (uint32, bool, error) {
	list, err := c.BusList(ctx)
	if err != nil {
		return 0, false, err
	}
	if want != 0 {
		for _, b := range list.Buses {
			if b == want {
				return want, false, nil
			}
		}
		if _, err := c.BusCreate(ctx, want); err != nil {
			return 0, false, err
		}
		return want, true, nil
	}
	if len(list.Buses) > 0 {
		lowest := list.Buses[0]
		for _, b := range list.Buses[1:] {
			lowest = min(lowest, b)
		}
		return lowest, false, nil
	}
	var lastErr error
	for id := uint32(1); id <= maxBusProbe; id++ {
		if _, err := c.BusCreate(ctx, id); err != nil {
			lastErr = err
			continue
		}
		return id, true, nil
	}
	return 0, false, fmt.Errorf("no free bus: %w", lastErr)
}

func (b *Backend) BusID() uint32 { return b.busID }

// Plug adds an xbox360 device to the bus and opens its input stream.
func (b *Backend) Plug(ctx context.Context, serial uint32) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.stream != nil {
		return fmt.Errorf("viiper: device %s already plugged", b.devID)
	}
	resp, err := b.client.DeviceAdd(ctx, b.busID, DeviceType)
	if err != nil {
		return fmt.Errorf("add device: %w", err)
	}
	devID := resp.DevID
	if devID == "" {
		_, devID, _ = strings.Cut(resp.ID, "-")
	}
	if devID == "" {
		return fmt.Errorf("add device: unexpected response id %q", resp.ID)
	}
	stream, err := b.client.OpenStream(ctx, b.busID, devID)
	if err != nil {
		_, _ = b.client.DeviceRemove(context.WithoutCancel(ctx), b.busID, devID)
		return fmt.Errorf("open stream: %w", err)
	}
	b.devID = devID
	b.stream = stream
	b.done = make(chan struct{})
	go b.readFeedback(stream, b.done)
	b.logger.Info("Plugged virtual xbox360", "bus", b.busID, "device", devID, "serial", fmt.Sprintf("%08x", serial))
	return nil
}

// readFeedback drains rumble packets until the stream closes.
func (b *Backend) readFeedback(r io.Reader, done chan struct{}) {
	defer close(done)
	buf := make([]byte, 2)
	for {
		if _, err := io.ReadFull(r, buf); err != nil {
			return
		}
		rumble := Rumble{LeftMotor: buf[0], RightMotor: buf[1]}
		b.logger.Debug("Rumble", "left", rumble.LeftMotor, "right", rumble.RightMotor)
	}
}

// Update writes the report to the device stream.
func (b *Backend) Update(_ context.Context, r gamepad.Report) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.stream == nil {
		return errNotPlugged
	}
	data, _ := InputStateFromReport(r).MarshalBinary()
	_ = b.stream.SetWriteDeadline(time.Now().Add(writeTimeout))
	if _, err := b.stream.Write(data); err != nil {
		return fmt.Errorf("write input: %w", err)
	}
	return nil
}

// Unplug closes the stream and removes the device from the bus.
func (b *Backend) Unplug(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.unplug(ctx)
}

func (b *Backend) unplug(ctx context.Context) error {
	if b.stream == nil {
		return nil
	}
	_ = b.stream.Close()
	<-b.done
	devID := b.devID
	b.stream, b.devID, b.done = nil, "", nil
	if _, err := b.client.DeviceRemove(ctx, b.busID, devID); err != nil {
		return fmt.Errorf("remove device: %w", err)
	}
	b.logger.Info("Unplugged virtual xbox360", "bus", b.busID, "device", devID)
	return nil
}

// Slots maps the bus device ids 1..n onto controller slots.
func (b *Backend) Slots(ctx context.Context) ([]bool, error) {
	resp, err := b.client.DevicesList(ctx, b.busID)
	if err != nil {
		return nil, fmt.Errorf("list devices: %w", err)
	}
	slots := make([]bool, b.slots)
	for _, d := range resp.Devices {
		n, err := strconv.Atoi(d.DevID)
		if err != nil || n < 1 || n > b.slots {
			continue
		}
		slots[n-1] = true
	}
	return slots, nil
}

// Close unplugs any device and removes the bus if Open created it.
func (b *Backend) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), openTimeout)
	defer cancel()

	b.mu.Lock()
	defer b.mu.Unlock()
	err := b.unplug(ctx)
	if b.ownsBus {
		if _, rerr := b.client.BusRemove(ctx, b.busID); rerr != nil {
			err = errors.Join(err, fmt.Errorf("remove bus: %w", rerr))
		}
		b.ownsBus = false
	}
	return err
}
