package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Alia5/mogaserial/internal/bridge"
	"github.com/Alia5/mogaserial/internal/log"
	"github.com/Alia5/mogaserial/internal/transport"
	"github.com/Alia5/mogaserial/internal/vpad"
)

// Run bridges a controller to a virtual gamepad until interrupted.
type Run struct {
	Address  string `arg:"" help:"Controller address: AA:BB:CC:DD:EE:FF, rfcomm://AA:BB:CC:DD:EE:FF/1, serial://COM5, /dev/rfcomm0 or tcp://host:port"`
	Settings `embed:""`

	ExitDelay time.Duration `help:"Pause before exiting after a fatal error, so a console window stays readable" default:"5s" env:"MOGASERIAL_EXIT_DELAY"`
}

// Run is called by Kong when the run command is executed.
func (r *Run) Run(logger *slog.Logger, rawLogger log.RawLogger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := r.run(ctx, logger, rawLogger)
	if err == nil {
		return nil
	}
	logger.Error("mogaserial stopped", "error", err, "exitCode", bridge.ExitCode(err))
	if r.ExitDelay > 0 {
		time.Sleep(r.ExitDelay)
	}
	return err
}

func (r *Run) run(ctx context.Context, logger *slog.Logger, rawLogger log.RawLogger) error {
	addr, err := transport.ParseAddress(r.Address)
	if err == nil {
		err = transport.Supported(addr)
	}
	if err != nil {
		return &bridge.Error{Kind: bridge.KindTransportConnect, Op: "address", Err: err}
	}

	backend, err := vpad.Open(r.Pad, logger)
	if err != nil {
		return fmt.Errorf("open %s backend: %w", r.Pad.Backend, err)
	}
	defer func() {
		if err := backend.Close(); err != nil {
			logger.Warn("Closing backend failed", "error", err)
		}
	}()

	logger.Info("Starting mogaserial",
		"address", addr,
		"backend", r.Pad.Backend,
		"mode", r.Bridge.Mode,
		"readTimeout", r.Transport.ReadTimeout,
	)
	session := bridge.NewSession(addr)
	m := bridge.NewManager(r.Bridge, session, transport.NewDialer(r.Transport), backend, logger, rawLogger)
	return m.Run(ctx)
}
