package bridge

import (
	"github.com/Alia5/mogaserial/internal/transport"
	"github.com/Alia5/mogaserial/pkg/moga"
)

// Session is the state of one controller link. It outlives individual
// connections: the address and CID survive reconnects, the transport and
// the raw state do not.
type Session struct {
	Address transport.Address
	// CID is the controller id sent with every command. moga.CIDUnknown
	// until the attacher identifies the virtual slot.
	CID uint8
	// State is the last validated raw controller state.
	State moga.State

	conn transport.Conn
}

func NewSession(a transport.Address) *Session {
	return &Session{Address: a, CID: moga.CIDUnknown}
}

// Connected reports whether the session holds an open transport.
func (s *Session) Connected() bool { return s.conn != nil }

func (s *Session) closeConn() error {
	if s.conn == nil {
		return nil
	}
	err := s.conn.Close()
	s.conn = nil
	return err
}
