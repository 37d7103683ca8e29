package log

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"
)

// Direction of a raw frame relative to this host.
type Direction bool

const (
	Outbound Direction = true
	Inbound  Direction = false
)

func (d Direction) arrow() string {
	if d == Outbound {
		return "→"
	}
	return "←"
}

// RawLogger records raw controller frames as hex dumps.
type RawLogger interface {
	Log(dir Direction, frame []byte)
}

type rawLogger struct {
	mu  sync.Mutex
	w   io.Writer
	now func() time.Time
}

// NewRaw returns a RawLogger writing to w. A nil writer discards frames.
func NewRaw(w io.Writer) RawLogger {
	if w == nil {
		return nopRaw{}
	}
	return &rawLogger{w: w, now: time.Now}
}

func (l *rawLogger) Log(dir Direction, frame []byte) {
	line := FormatFrame(l.now(), dir, frame)
	l.mu.Lock()
	defer l.mu.Unlock()
	_, _ = io.WriteString(l.w, line)
}

// FormatFrame renders one raw log line:
//
//	[15:04:05.000] → 5a 05 45 01 1b
func FormatFrame(t time.Time, dir Direction, frame []byte) string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s", t.Format("15:04:05.000"), dir.arrow())
	for _, v := range frame {
		fmt.Fprintf(&b, " %02x", v)
	}
	b.WriteByte('\n')
	return b.String()
}

type nopRaw struct{}

func (nopRaw) Log(Direction, []byte) {}
