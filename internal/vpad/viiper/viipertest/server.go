// Package viipertest runs an in-process stand-in for the VIIPER API server:
// bus and device bookkeeping plus xbox360 input streams.
package viipertest

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"slices"
	"strconv"
	"strings"
	"sync"
	"testing"
)

type device struct {
	id     int
	inputs [][]byte
	stream net.Conn
}

// Server serves the VIIPER line protocol on a loopback port.
type Server struct {
	ln net.Listener

	mu    sync.Mutex
	buses map[uint32][]*device
}

// Start listens on a free loopback port and serves until the test ends.
func Start(t *testing.T) *Server {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen failed: %v", err)
	}
	s := &Server{ln: ln, buses: make(map[uint32][]*device)}
	go s.serve()
	t.Cleanup(s.Close)
	return s
}

func (s *Server) Addr() string { return s.ln.Addr().String() }

func (s *Server) Close() {
	_ = s.ln.Close()
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, devs := range s.buses {
		for _, d := range devs {
			if d.stream != nil {
				_ = d.stream.Close()
			}
		}
	}
}

// AddBus creates a bus as if another client had done it.
func (s *Server) AddBus(id uint32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.buses[id]; !ok {
		s.buses[id] = nil
	}
}

// AddDevice plugs a device on bus as if another client had done it and
// returns its id.
func (s *Server) AddDevice(bus uint32) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addDevice(bus).id
}

// Buses lists the existing bus ids.
func (s *Server) Buses() []uint32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.busIDs()
}

// Devices lists the device ids on bus.
func (s *Server) Devices(bus uint32) []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	var ids []int
	for _, d := range s.buses[bus] {
		ids = append(ids, d.id)
	}
	return ids
}

// Inputs returns the input states received on the device stream.
func (s *Server) Inputs(bus uint32, dev int) [][]byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	if d := s.find(bus, strconv.Itoa(dev)); d != nil {
		return slices.Clone(d.inputs)
	}
	return nil
}

// Streaming reports whether the device has an open input stream.
func (s *Server) Streaming(bus uint32, dev int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	d := s.find(bus, strconv.Itoa(dev))
	return d != nil && d.stream != nil
}

// Rumble writes a feedback packet to the device stream.
func (s *Server) Rumble(bus uint32, dev int, left, right uint8) error {
	s.mu.Lock()
	d := s.find(bus, strconv.Itoa(dev))
	s.mu.Unlock()
	if d == nil || d.stream == nil {
		return errors.New("no stream")
	}
	_, err := d.stream.Write([]byte{left, right})
	return err
}

func (s *Server) serve() {
	for {
		c, err := s.ln.Accept()
		if err != nil {
			return
		}
		go s.handleConn(c)
	}
}

func (s *Server) busIDs() []uint32 {
	ids := make([]uint32, 0, len(s.buses))
	for id := range s.buses {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

func (s *Server) find(bus uint32, devID string) *device {
	for _, d := range s.buses[bus] {
		if strconv.Itoa(d.id) == devID {
			return d
		}
	}
	return nil
}

// addDevice takes the lowest free id starting at 1.
func (s *Server) addDevice(bus uint32) *device {
	id := 1
	for s.find(bus, strconv.Itoa(id)) != nil {
		id++
	}
	d := &device{id: id}
	s.buses[bus] = append(s.buses[bus], d)
	return d
}

func writeError(w io.Writer, msg string) {
	b, _ := json.Marshal(map[string]string{"error": msg})
	fmt.Fprintf(w, "%s\n", b)
}

func writeJSON(w io.Writer, v any) {
	b, _ := json.Marshal(v)
	fmt.Fprintf(w, "%s\n", b)
}

func (s *Server) handleConn(conn net.Conn) {
	r := bufio.NewReader(conn)
	line, err := r.ReadString('\n')
	if err != nil {
		_ = conn.Close()
		return
	}
	fields := strings.Fields(strings.TrimSpace(line))
	if len(fields) == 0 {
		writeError(conn, "empty")
		_ = conn.Close()
		return
	}
	parts := strings.Split(strings.ToLower(fields[0]), "/")
	args := fields[1:]

	if len(parts) == 3 && parts[0] == "bus" {
		if bus, err := strconv.ParseUint(parts[1], 10, 32); err == nil {
			if _, err := strconv.Atoi(parts[2]); err == nil {
				s.stream(conn, r, uint32(bus), parts[2])
				return
			}
		}
	}
	defer conn.Close()
	if err := s.route(conn, parts, args); err != nil {
		writeError(conn, err.Error())
	}
}

func (s *Server) route(w io.Writer, parts, args []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	arg := func() (uint32, error) {
		if len(args) == 0 {
			return 0, errors.New("missing argument")
		}
		v, err := strconv.ParseUint(args[0], 10, 32)
		return uint32(v), err
	}

	switch {
	case len(parts) == 2 && parts[1] == "list":
		writeJSON(w, map[string]any{"buses": s.busIDs()})
	case len(parts) == 2 && parts[1] == "create":
		id, err := arg()
		if err != nil {
			return err
		}
		if _, ok := s.buses[id]; ok {
			return fmt.Errorf("bus %d already exists", id)
		}
		s.buses[id] = nil
		writeJSON(w, map[string]any{"busId": id})
	case len(parts) == 2 && parts[1] == "remove":
		id, err := arg()
		if err != nil {
			return err
		}
		if _, ok := s.buses[id]; !ok {
			return fmt.Errorf("bus %d not found", id)
		}
		delete(s.buses, id)
		writeJSON(w, map[string]any{"busId": id})
	case len(parts) == 3:
		v, err := strconv.ParseUint(parts[1], 10, 32)
		if err != nil {
			return fmt.Errorf("invalid busId: %v", err)
		}
		bus := uint32(v)
		if _, ok := s.buses[bus]; !ok {
			return errors.New("bus not found")
		}
		switch parts[2] {
		case "add":
			if len(args) == 0 || args[0] != "xbox360" {
				return errors.New("unknown device type")
			}
			d := s.addDevice(bus)
			writeJSON(w, map[string]any{"id": fmt.Sprintf("%d-%d", bus, d.id)})
		case "remove":
			if len(args) == 0 {
				return errors.New("missing device id")
			}
			devs := s.buses[bus]
			i := slices.IndexFunc(devs, func(d *device) bool { return strconv.Itoa(d.id) == args[0] })
			if i < 0 {
				return errors.New("device not found")
			}
			if devs[i].stream != nil {
				_ = devs[i].stream.Close()
			}
			s.buses[bus] = slices.Delete(devs, i, i+1)
			writeJSON(w, map[string]any{"busId": bus, "devId": args[0]})
		case "list":
			out := []map[string]any{}
			for _, d := range s.buses[bus] {
				out = append(out, map[string]any{
					"busId": bus, "devId": strconv.Itoa(d.id),
					"vid": "0x045e", "pid": "0x028e", "type": "xbox360",
				})
			}
			writeJSON(w, map[string]any{"devices": out})
		default:
			return errors.New("unknown path")
		}
	default:
		return errors.New("unknown path")
	}
	return nil
}

func (s *Server) stream(conn net.Conn, r *bufio.Reader, bus uint32, devID string) {
	defer conn.Close()
	s.mu.Lock()
	d := s.find(bus, devID)
	if d == nil {
		s.mu.Unlock()
		writeError(conn, "device not found")
		return
	}
	d.stream = conn
	s.mu.Unlock()

	buf := make([]byte, 14)
	for {
		if _, err := io.ReadFull(r, buf); err != nil {
			break
		}
		s.mu.Lock()
		d.inputs = append(d.inputs, slices.Clone(buf))
		s.mu.Unlock()
	}

	s.mu.Lock()
	if d.stream == conn {
		d.stream = nil
	}
	s.mu.Unlock()
}
