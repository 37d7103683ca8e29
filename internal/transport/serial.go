package transport

import (
	"time"

	"go.bug.st/serial"
)

type serialConn struct {
	port serial.Port
}

func dialSerial(a Address, cfg Config) (Conn, error) {
	mode := &serial.Mode{
		BaudRate: cfg.BaudRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}
	port, err := serial.Open(a.Target, mode)
	if err != nil {
		return nil, err
	}
	// Drop anything the port buffered while nobody was listening.
	if err := port.ResetInputBuffer(); err != nil {
		_ = port.Close()
		return nil, err
	}
	return &serialConn{port: port}, nil
}

func (c *serialConn) SetReadTimeout(d time.Duration) error {
	if d <= 0 {
		d = serial.NoTimeout
	}
	return c.port.SetReadTimeout(d)
}

// Read reports ErrTimeout when the port returns without data.
func (c *serialConn) Read(p []byte) (int, error) {
	n, err := c.port.Read(p)
	if err == nil && n == 0 && len(p) > 0 {
		return 0, ErrTimeout
	}
	return n, err
}

func (c *serialConn) Write(p []byte) (int, error) { return c.port.Write(p) }

func (c *serialConn) Close() error { return c.port.Close() }
