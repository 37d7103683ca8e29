package cmd

import (
	"github.com/Alia5/mogaserial/internal/bridge"
	"github.com/Alia5/mogaserial/internal/transport"
	"github.com/Alia5/mogaserial/internal/vpad"
)

// Settings are the bridge settings shared by every command that needs
// them. Flag names double as configuration file keys.
type Settings struct {
	Bridge    bridge.Config    `embed:"" yaml:",inline"`
	Transport transport.Config `embed:"" yaml:",inline"`
	Pad       vpad.Options     `embed:"" yaml:",inline"`
}
