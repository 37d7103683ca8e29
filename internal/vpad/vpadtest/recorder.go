// Package vpadtest provides an in-memory virtual controller backend that
// records every call.
package vpadtest

import (
	"context"
	"sync"

	"github.com/Alia5/mogaserial/pkg/gamepad"
)

// Call is one recorded backend call.
type Call struct {
	Op     string // "plug", "unplug", "update", "slots", "close"
	Serial uint32
	Report gamepad.Report
}

// Recorder implements vpad.Backend.
type Recorder struct {
	mu    sync.Mutex
	calls []Call

	// SlotSnapshots are returned by successive Slots calls; the last one
	// repeats once exhausted.
	SlotSnapshots [][]bool
	slotCalls     int

	PlugErr   error
	UpdateErr error
	SlotsErr  error

	// OnPlug runs inside Plug, after the call is recorded.
	OnPlug func()
}

func New() *Recorder { return &Recorder{} }

func (r *Recorder) record(c Call) {
	r.mu.Lock()
	r.calls = append(r.calls, c)
	r.mu.Unlock()
}

func (r *Recorder) Plug(_ context.Context, serial uint32) error {
	r.record(Call{Op: "plug", Serial: serial})
	if r.OnPlug != nil {
		r.OnPlug()
	}
	return r.PlugErr
}

func (r *Recorder) Unplug(context.Context) error {
	r.record(Call{Op: "unplug"})
	return nil
}

func (r *Recorder) Update(_ context.Context, rep gamepad.Report) error {
	r.record(Call{Op: "update", Report: rep})
	return r.UpdateErr
}

func (r *Recorder) Slots(context.Context) ([]bool, error) {
	r.record(Call{Op: "slots"})
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.SlotsErr != nil {
		return nil, r.SlotsErr
	}
	if len(r.SlotSnapshots) == 0 {
		return make([]bool, 4), nil
	}
	i := min(r.slotCalls, len(r.SlotSnapshots)-1)
	r.slotCalls++
	return append([]bool(nil), r.SlotSnapshots[i]...), nil
}

func (r *Recorder) Close() error {
	r.record(Call{Op: "close"})
	return nil
}

// Calls returns a copy of the recorded calls.
func (r *Recorder) Calls() []Call {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Call(nil), r.calls...)
}

// Ops returns the recorded operation names in order.
func (r *Recorder) Ops() []string {
	calls := r.Calls()
	ops := make([]string, len(calls))
	for i, c := range calls {
		ops[i] = c.Op
	}
	return ops
}

// Updates returns the reports pushed so far.
func (r *Recorder) Updates() []gamepad.Report {
	var out []gamepad.Report
	for _, c := range r.Calls() {
		if c.Op == "update" {
			out = append(out, c.Report)
		}
	}
	return out
}
