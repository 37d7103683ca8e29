package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"text/tabwriter"

	"go.bug.st/serial/enumerator"
)

// Ports lists the serial ports a paired controller may show up as.
type Ports struct {
	USBOnly bool `name:"usb-only" help:"Only list USB backed ports"`
}

func (p *Ports) Run(logger *slog.Logger) error {
	ports, err := enumerator.GetDetailedPortsList()
	if err != nil {
		return fmt.Errorf("list ports: %w", err)
	}
	logger.Debug("Enumerated serial ports", "count", len(ports))
	return writePorts(os.Stdout, ports, p.USBOnly)
}

func writePorts(w io.Writer, ports []*enumerator.PortDetails, usbOnly bool) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "PORT\tADDRESS\tUSB\tVID:PID\tPRODUCT")
	for _, port := range ports {
		if usbOnly && !port.IsUSB {
			continue
		}
		usb, ids := "no", "-"
		if port.IsUSB {
			usb = "yes"
			ids = port.VID + ":" + port.PID
		}
		product := port.Product
		if product == "" {
			product = "-"
		}
		fmt.Fprintf(tw, "%s\tserial://%s\t%s\t%s\t%s\n", port.Name, port.Name, usb, ids, product)
	}
	return tw.Flush()
}
