package transport

import (
	"fmt"
	"hash/fnv"
	"net"
	"strconv"
	"strings"
)

// Scheme names a link kind.
type Scheme string

const (
	SchemeRFCOMM Scheme = "rfcomm"
	SchemeSerial Scheme = "serial"
	SchemeTCP    Scheme = "tcp"
)

// Address identifies the controller link.
//
//	rfcomm://AA:BB:CC:DD:EE:FF[/channel]   or a bare AA:BB:CC:DD:EE:FF
//	serial:///dev/rfcomm0, serial://COM5   or a bare /dev/... or COMn
//	tcp://host:port
type Address struct {
	Scheme Scheme
	// Target is the MAC address, the port path or host:port.
	Target string
	// Channel is the RFCOMM channel; zero means the configured default.
	Channel uint8
}

// ParseAddress parses the textual address forms listed on Address.
func ParseAddress(s string) (Address, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Address{}, fmt.Errorf("empty address")
	}
	scheme, rest, ok := strings.Cut(s, "://")
	if !ok {
		return parseBare(s)
	}
	switch Scheme(strings.ToLower(scheme)) {
	case SchemeRFCOMM:
		return parseRFCOMM(rest)
	case SchemeSerial:
		if rest == "" {
			return Address{}, fmt.Errorf("address %q: missing port", s)
		}
		return Address{Scheme: SchemeSerial, Target: rest}, nil
	case SchemeTCP:
		if _, _, err := net.SplitHostPort(rest); err != nil {
			return Address{}, fmt.Errorf("address %q: %w", s, err)
		}
		return Address{Scheme: SchemeTCP, Target: rest}, nil
	default:
		return Address{}, fmt.Errorf("address %q: unknown scheme %q", s, scheme)
	}
}

func parseBare(s string) (Address, error) {
	if mac, err := net.ParseMAC(s); err == nil && len(mac) == 6 {
		return Address{Scheme: SchemeRFCOMM, Target: strings.ToUpper(mac.String())}, nil
	}
	if strings.HasPrefix(s, "/") || isCOMPort(s) {
		return Address{Scheme: SchemeSerial, Target: s}, nil
	}
	if _, _, err := net.SplitHostPort(s); err == nil {
		return Address{Scheme: SchemeTCP, Target: s}, nil
	}
	return Address{}, fmt.Errorf("address %q: not a bluetooth address, serial port or host:port", s)
}

func parseRFCOMM(rest string) (Address, error) {
	mac, ch, hasCh := strings.Cut(rest, "/")
	hw, err := net.ParseMAC(mac)
	if err != nil || len(hw) != 6 {
		return Address{}, fmt.Errorf("address %q: invalid bluetooth address", rest)
	}
	a := Address{Scheme: SchemeRFCOMM, Target: strings.ToUpper(hw.String())}
	if hasCh {
		n, err := strconv.ParseUint(ch, 10, 8)
		if err != nil || n < 1 || n > 30 {
			return Address{}, fmt.Errorf("address %q: invalid rfcomm channel %q", rest, ch)
		}
		a.Channel = uint8(n)
	}
	return a, nil
}

func isCOMPort(s string) bool {
	u := strings.ToUpper(s)
	if !strings.HasPrefix(u, "COM") {
		return false
	}
	_, err := strconv.Atoi(u[3:])
	return err == nil
}

func (a Address) String() string {
	if a.Scheme == SchemeRFCOMM && a.Channel != 0 {
		return fmt.Sprintf("%s://%s/%d", a.Scheme, a.Target, a.Channel)
	}
	return fmt.Sprintf("%s://%s", a.Scheme, a.Target)
}

// MAC returns the bluetooth address in display order (most significant
// octet first).
func (a Address) MAC() ([6]byte, error) {
	var out [6]byte
	if a.Scheme != SchemeRFCOMM {
		return out, fmt.Errorf("%s is not a bluetooth address", a)
	}
	hw, err := net.ParseMAC(a.Target)
	if err != nil || len(hw) != 6 {
		return out, fmt.Errorf("%s: invalid bluetooth address", a)
	}
	copy(out[:], hw)
	return out, nil
}

// Serial returns a stable 32 bit identifier for the controller, used as the
// virtual device serial. For bluetooth addresses these are the four least
// significant octets; other links hash their target.
func (a Address) Serial() uint32 {
	if mac, err := a.MAC(); err == nil {
		return uint32(mac[5]) | uint32(mac[4])<<8 | uint32(mac[3])<<16 | uint32(mac[2])<<24
	}
	h := fnv.New32a()
	_, _ = h.Write([]byte(string(a.Scheme) + ":" + a.Target))
	return h.Sum32()
}
