package viiper

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"
)

// ClientConfig controls the timeouts of API requests.
type ClientConfig struct {
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

func defaultClientConfig() ClientConfig {
	return ClientConfig{
		DialTimeout:  3 * time.Second,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
	}
}

// Client speaks the VIIPER API line protocol: each request is one
// connection carrying "<path> <payload>\n" and answered by one JSON line.
type Client struct {
	addr string
	cfg  ClientConfig
}

// NewClient returns a client for the API server at addr (host:port).
func NewClient(addr string) *Client {
	return &Client{addr: addr, cfg: defaultClientConfig()}
}

func (c *Client) BusList(ctx context.Context) (*BusListResponse, error) {
	return call[BusListResponse](ctx, c, "bus/list", "")
}

func (c *Client) BusCreate(ctx context.Context, busID uint32) (*BusCreateResponse, error) {
	return call[BusCreateResponse](ctx, c, "bus/create", fmt.Sprint(busID))
}

func (c *Client) BusRemove(ctx context.Context, busID uint32) (*BusRemoveResponse, error) {
	return call[BusRemoveResponse](ctx, c, "bus/remove", fmt.Sprint(busID))
}

// DeviceAdd creates a device of devType ("xbox360") on the bus.
func (c *Client) DeviceAdd(ctx context.Context, busID uint32, devType string) (*DeviceAddResponse, error) {
	return call[DeviceAddResponse](ctx, c, fmt.Sprintf("bus/%d/add", busID), devType)
}

func (c *Client) DeviceRemove(ctx context.Context, busID uint32, devID string) (*DeviceRemoveResponse, error) {
	return call[DeviceRemoveResponse](ctx, c, fmt.Sprintf("bus/%d/remove", busID), devID)
}

func (c *Client) DevicesList(ctx context.Context, busID uint32) (*DevicesListResponse, error) {
	return call[DevicesListResponse](ctx, c, fmt.Sprintf("bus/%d/list", busID), "")
}

// OpenStream opens the long-lived input stream of a device. Input states
// are written to the returned connection; the server writes feedback
// (rumble) back.
func (c *Client) OpenStream(ctx context.Context, busID uint32, devID string) (net.Conn, error) {
	conn, err := c.dial(ctx)
	if err != nil {
		return nil, err
	}
	if c.cfg.WriteTimeout > 0 {
		_ = conn.SetWriteDeadline(time.Now().Add(c.cfg.WriteTimeout))
	}
	if _, err := fmt.Fprintf(conn, "bus/%d/%s\n", busID, devID); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("write: %w", err)
	}
	_ = conn.SetWriteDeadline(time.Time{})
	return conn, nil
}

func (c *Client) dial(ctx context.Context) (net.Conn, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("dial: %w", err)
	}
	d := &net.Dialer{Timeout: c.cfg.DialTimeout}
	conn, err := d.DialContext(ctx, "tcp", c.addr)
	if err != nil {
		return nil, fmt.Errorf("dial: %w", err)
	}
	return conn, nil
}

// do sends one request line and returns the response line without its
// trailing newline.
func (c *Client) do(ctx context.Context, path, payload string) (string, error) {
	conn, err := c.dial(ctx)
	if err != nil {
		return "", err
	}
	defer conn.Close()

	line := path
	if payload != "" {
		line += " " + payload
	}
	if c.cfg.WriteTimeout > 0 {
		_ = conn.SetWriteDeadline(time.Now().Add(c.cfg.WriteTimeout))
	}
	if _, err := conn.Write([]byte(line + "\n")); err != nil {
		return "", fmt.Errorf("write: %w", err)
	}
	if c.cfg.ReadTimeout > 0 {
		_ = conn.SetReadDeadline(time.Now().Add(c.cfg.ReadTimeout))
	}
	resp, err := bufio.NewReader(conn).ReadString('\n')
	if err != nil && resp == "" {
		return "", fmt.Errorf("read: %w", err)
	}
	return strings.TrimRight(resp, "\r\n"), nil
}

func call[T any](ctx context.Context, c *Client, path, payload string) (*T, error) {
	line, err := c.do(ctx, path, payload)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	out, err := parse[T](line)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return out, nil
}

func parse[T any](line string) (*T, error) {
	if line == "" {
		return nil, errors.New("empty response")
	}
	var ae apiError
	if err := json.Unmarshal([]byte(line), &ae); err == nil && ae.Error != "" {
		return nil, errors.New(ae.Error)
	}
	var out T
	if err := json.Unmarshal([]byte(line), &out); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return &out, nil
}
