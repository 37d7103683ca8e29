// Package bridge keeps the link to a Moga controller alive and feeds its
// state into a virtual gamepad.
package bridge

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/Alia5/mogaserial/internal/log"
	"github.com/Alia5/mogaserial/internal/transport"
	"github.com/Alia5/mogaserial/pkg/gamepad"
	"github.com/Alia5/mogaserial/pkg/moga"
)

// Config holds the connection manager settings.
type Config struct {
	Mode           moga.Mode     `help:"Trigger reporting mode (analog, digital)" default:"analog" enum:"analog,digital" env:"MOGASERIAL_MODE" json:"mode" yaml:"mode" toml:"mode"`
	ReconnectDelay time.Duration `help:"Delay before reconnecting after the controller is lost" default:"3s" env:"MOGASERIAL_RECONNECT_DELAY" json:"reconnect-delay" yaml:"reconnect-delay" toml:"reconnect-delay"`
	SettleDelay    time.Duration `help:"Time the host gets to register a plugged or unplugged pad" default:"100ms" env:"MOGASERIAL_SETTLE_DELAY" json:"settle-delay" yaml:"settle-delay" toml:"settle-delay"`
}

// State is the connection state of the Manager.
type State int32

const (
	Disconnected State = iota
	Connecting
	Listening
)

func (s State) String() string {
	switch s {
	case Connecting:
		return "connecting"
	case Listening:
		return "listening"
	default:
		return "disconnected"
	}
}

// Manager owns a Session: it connects, listens for state frames, falls
// back to polling when frames stop, and reconnects after a fixed delay.
type Manager struct {
	cfg      Config
	session  *Session
	dialer   transport.Dialer
	pad      Adapter
	attacher *Attacher
	logger   *slog.Logger
	raw      log.RawLogger
	stats    *Stats
	state    atomic.Int32

	updateFailing bool
	last          gamepad.Report
}

// NewManager wires a manager for s. raw may be nil.
func NewManager(cfg Config, s *Session, d transport.Dialer, pad Adapter, logger *slog.Logger, raw log.RawLogger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	if raw == nil {
		raw = log.NewRaw(nil)
	}
	if cfg.Mode == "" {
		cfg.Mode = moga.ModeAnalog
	}
	return &Manager{
		cfg:      cfg,
		session:  s,
		dialer:   d,
		pad:      pad,
		attacher: NewAttacher(pad, cfg.SettleDelay, logger),
		logger:   logger,
		raw:      raw,
		stats:    &Stats{},
		last:     gamepad.Neutral(),
	}
}

func (m *Manager) State() State { return State(m.state.Load()) }

func (m *Manager) Stats() *Stats { return m.stats }

func (m *Manager) setState(s State) {
	if State(m.state.Swap(int32(s))) != s {
		m.logger.Debug("Link state", "state", s)
	}
}

// Run attaches the virtual pad and keeps the controller connected until
// ctx is done. Only setup failures are returned; a lost or unreachable
// controller is retried forever. The pad is detached and the transport
// closed on every return path.
func (m *Manager) Run(ctx context.Context) error {
	aerr := m.attacher.Attach(ctx, m.session)
	if aerr != nil && ctx.Err() == nil && KindOf(aerr) != KindSlotAmbiguous {
		return aerr
	}
	defer func() {
		m.closeConn()
		dctx := context.WithoutCancel(ctx)
		if derr := m.attacher.Detach(dctx, m.session); derr != nil {
			m.logger.Warn("Detaching virtual pad failed", "error", derr)
		}
		m.logger.Info("Bridge stopped", "stats", m.stats.Snapshot())
	}()
	if KindOf(aerr) == KindSlotAmbiguous {
		m.logger.Warn("Could not identify the controller slot, slot LEDs stay off", "cid", m.session.CID)
	} else if aerr == nil {
		m.logger.Info("Virtual pad attached", "cid", m.session.CID)
	}

	for ctx.Err() == nil {
		if cerr := m.Connect(ctx); cerr != nil {
			if ctx.Err() != nil {
				break
			}
			m.logger.Warn("Connecting to controller failed", "address", m.session.Address, "error", cerr)
		} else if lerr := m.Listen(ctx); lerr != nil {
			m.logger.Warn("Controller disconnected", "error", lerr)
		}
		m.reset(ctx)
		if ctx.Err() != nil {
			break
		}
		m.logger.Info("Reconnecting", "delay", m.cfg.ReconnectDelay)
		if sleep(ctx, m.cfg.ReconnectDelay) != nil {
			break
		}
		m.stats.Reconnect()
	}
	return nil
}

// Connect opens the transport and tells the controller its CID.
func (m *Manager) Connect(ctx context.Context) error {
	m.setState(Connecting)
	m.logger.Info("Connecting to controller", "address", m.session.Address, "cid", m.session.CID)
	conn, err := m.dialer.Dial(ctx, m.session.Address)
	if err != nil {
		m.setState(Disconnected)
		return &Error{Kind: KindTransportConnect, Op: "connect", Err: err}
	}
	m.session.conn = conn
	if err := m.send(moga.CmdSetCID); err != nil {
		m.closeConn()
		return &Error{Kind: KindTransportConnect, Op: "connect", Err: err}
	}
	m.logger.Info("Controller connected", "address", m.session.Address)
	return nil
}

// Listen switches the controller to listen mode and applies every frame
// it sends. When a receive fails the controller is polled once; if that
// fails too the link is considered lost and the error is returned. Listen
// returns nil once ctx is done.
func (m *Manager) Listen(ctx context.Context) error {
	if m.session.conn == nil {
		return &Error{Kind: KindTransportConnect, Op: "listen", Err: errors.New("not connected")}
	}
	poll, listen := m.cfg.Mode.PollCommand(), m.cfg.Mode.ListenCommand()
	if err := m.send(poll); err != nil {
		return err
	}
	if err := m.send(listen); err != nil {
		return err
	}
	m.setState(Listening)

	for {
		if ctx.Err() != nil {
			return nil
		}
		st, err := m.receive()
		if err == nil {
			m.apply(ctx, st)
			continue
		}
		if ctx.Err() != nil {
			return nil
		}
		if !m.recoverable(err) {
			return err
		}

		m.logger.Debug("No valid frame, polling controller", "error", err)
		m.stats.PollFallback()
		if err := m.send(poll); err != nil {
			return err
		}
		st, err = m.receive()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			m.recoverable(err)
			return err
		}
		m.apply(ctx, st)
		if err := m.send(listen); err != nil {
			return err
		}
	}
}

// recoverable counts a receive failure and reports whether a poll may
// bring the link back.
func (m *Manager) recoverable(err error) bool {
	switch KindOf(err) {
	case KindFrameTimeout:
		m.stats.Timeout()
		return true
	case KindChecksum, KindFraming:
		m.stats.BadFrame()
		return true
	default:
		return false
	}
}

func (m *Manager) send(code moga.Command) error {
	if m.session.conn == nil {
		return &Error{Kind: KindTransportConnect, Op: "send", Err: errors.New("not connected")}
	}
	frame := moga.EncodeCommand(code, m.session.CID)
	m.raw.Log(log.Outbound, frame)
	if _, err := m.session.conn.Write(frame); err != nil {
		return wrap("send", fmt.Errorf("command %d: %w", code, err))
	}
	return nil
}

func (m *Manager) receive() (moga.State, error) {
	buf := make([]byte, m.cfg.Mode.ResponseLen())
	n, err := io.ReadFull(m.session.conn, buf)
	if n > 0 {
		m.raw.Log(log.Inbound, buf[:n])
	}
	if err != nil {
		return moga.State{}, wrap("receive", err)
	}
	st, err := m.cfg.Mode.Decode(buf)
	if err != nil {
		return moga.State{}, wrap("receive", err)
	}
	m.stats.Frame()
	if f, err := moga.ParseFrame(buf); err == nil {
		m.logger.Log(context.Background(), log.LevelTrace, "Frame", "code", f.Code, "cid", f.CID)
	}
	return st, nil
}

func (m *Manager) apply(ctx context.Context, st moga.State) {
	m.session.State = st
	r := m.push(ctx)
	if r.Buttons != m.last.Buttons || r.Hat != m.last.Hat {
		m.logger.Debug("Input changed", "buttons", fmt.Sprintf("%#04x", uint16(r.Buttons)), "hat", r.Hat.Centidegrees())
	}
	m.last = r
}

// push sends the translated session state to the pad and returns the
// report it sent. Failures are logged once per streak.
func (m *Manager) push(ctx context.Context) gamepad.Report {
	r := gamepad.Translate(m.session.State)
	err := m.pad.Update(ctx, r)
	switch {
	case err != nil && !m.updateFailing:
		m.updateFailing = true
		m.logger.Warn("Updating virtual pad failed", "error", err)
	case err == nil && m.updateFailing:
		m.updateFailing = false
		m.logger.Info("Virtual pad updates recovered")
	}
	return r
}

// reset drops the transport and releases every input on the pad.
func (m *Manager) reset(ctx context.Context) {
	m.closeConn()
	m.session.State.Reset()
	m.last = m.push(context.WithoutCancel(ctx))
}

func (m *Manager) closeConn() {
	if err := m.session.closeConn(); err != nil {
		m.logger.Debug("Closing transport failed", "error", err)
	}
	m.setState(Disconnected)
}
