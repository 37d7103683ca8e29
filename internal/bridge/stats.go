package bridge

import (
	"log/slog"
	"sync/atomic"
)

// Stats counts link events. A nil *Stats is a valid no-op receiver.
type Stats struct {
	frames        atomic.Int64
	badFrames     atomic.Int64
	timeouts      atomic.Int64
	pollFallbacks atomic.Int64
	reconnects    atomic.Int64
}

func (s *Stats) Frame() {
	if s == nil {
		return
	}
	s.frames.Add(1)
}

func (s *Stats) BadFrame() {
	if s == nil {
		return
	}
	s.badFrames.Add(1)
}

func (s *Stats) Timeout() {
	if s == nil {
		return
	}
	s.timeouts.Add(1)
}

func (s *Stats) PollFallback() {
	if s == nil {
		return
	}
	s.pollFallbacks.Add(1)
}

func (s *Stats) Reconnect() {
	if s == nil {
		return
	}
	s.reconnects.Add(1)
}

// StatsSnapshot is a point-in-time copy of Stats.
type StatsSnapshot struct {
	Frames        int64 `json:"frames"`
	BadFrames     int64 `json:"badFrames"`
	Timeouts      int64 `json:"timeouts"`
	PollFallbacks int64 `json:"pollFallbacks"`
	Reconnects    int64 `json:"reconnects"`
}

func (s *Stats) Snapshot() StatsSnapshot {
	if s == nil {
		return StatsSnapshot{}
	}
	return StatsSnapshot{
		Frames:        s.frames.Load(),
		BadFrames:     s.badFrames.Load(),
		Timeouts:      s.timeouts.Load(),
		PollFallbacks: s.pollFallbacks.Load(),
		Reconnects:    s.reconnects.Load(),
	}
}

// LogValue renders the snapshot as a slog group.
func (s StatsSnapshot) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int64("frames", s.Frames),
		slog.Int64("badFrames", s.BadFrames),
		slog.Int64("timeouts", s.Timeouts),
		slog.Int64("pollFallbacks", s.PollFallbacks),
		slog.Int64("reconnects", s.Reconnects),
	)
}
