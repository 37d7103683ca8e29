package bridge

import (
	"context"
	"log/slog"
	"time"

	"github.com/Alia5/mogaserial/internal/vpad"
	"github.com/Alia5/mogaserial/pkg/gamepad"
	"github.com/Alia5/mogaserial/pkg/moga"
)

// Adapter is the part of a virtual controller backend the bridge drives.
type Adapter interface {
	vpad.Pad
	vpad.Enumerator
}

// Attacher plugs the virtual pad and works out which controller slot the
// host assigned to it.
type Attacher struct {
	pad    Adapter
	settle time.Duration
	logger *slog.Logger
}

func NewAttacher(pad Adapter, settle time.Duration, logger *slog.Logger) *Attacher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Attacher{pad: pad, settle: settle, logger: logger}
}

// Attach plugs the virtual pad and sets s.CID to the slot that turned
// connected. If no slot (or the enumeration) can tell, s.CID becomes
// moga.CIDUnknown and an error of KindSlotAmbiguous is returned; the pad
// stays plugged. Another process plugging a pad during the settle window
// can be mistaken for ours.
func (a *Attacher) Attach(ctx context.Context, s *Session) error {
	before, err := a.pad.Slots(ctx)
	if err != nil {
		if KindOf(err) == KindAdapterUnavailable {
			return wrap("attach", err)
		}
		a.logger.Warn("Slot enumeration failed", "error", err)
		before = nil
	}

	if err := a.pad.Plug(ctx, s.Address.Serial()); err != nil {
		return wrap("plug", err)
	}
	s.State.Reset()
	if err := a.pad.Update(ctx, gamepad.Translate(s.State)); err != nil {
		a.logger.Warn("Initial report failed", "error", err)
	}

	if err := sleep(ctx, a.settle); err != nil {
		s.CID = moga.CIDUnknown
		return wrap("attach", err)
	}

	after, err := a.pad.Slots(ctx)
	if err != nil {
		a.logger.Warn("Slot enumeration failed", "error", err)
	}
	cid, ok := DiffSlots(before, after)
	if err != nil || before == nil || !ok {
		s.CID = moga.CIDUnknown
		return &Error{Kind: KindSlotAmbiguous, Op: "attach", Err: ErrSlotAmbiguous}
	}
	s.CID = cid
	a.logger.Debug("Identified controller slot", "cid", cid, "before", before, "after", after)
	return nil
}

// Detach pushes a neutral report, lets the host settle and unplugs the
// virtual pad.
func (a *Attacher) Detach(ctx context.Context, s *Session) error {
	s.State.Reset()
	if err := a.pad.Update(ctx, gamepad.Translate(s.State)); err != nil {
		a.logger.Debug("Final report failed", "error", err)
	}
	_ = sleep(ctx, a.settle)
	if err := a.pad.Unplug(ctx); err != nil {
		return wrap("detach", err)
	}
	s.CID = moga.CIDUnknown
	return nil
}

// DiffSlots returns the 1-based index of the first slot that is
// disconnected in before and connected in after.
func DiffSlots(before, after []bool) (uint8, bool) {
	n := min(len(before), len(after))
	for i := range n {
		if !before[i] && after[i] {
			return uint8(i + 1), true
		}
	}
	return moga.CIDUnknown, false
}

// sleep waits for d or until ctx is done.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
