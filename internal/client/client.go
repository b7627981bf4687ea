// Package client is a small library for talking to an arena server over its
// line protocol.
package client

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"strings"
	"sync"

	"github.com/pixil98/go-arena/internal/player"
)

var (
	ErrNameTaken = errors.New("name already in use")
	ErrRejected  = errors.New("handshake rejected")
)

const welcomePositionMarker = "You are at "

type Client struct {
	conn    io.ReadWriteCloser
	scanner *bufio.Scanner

	writeMu   sync.Mutex
	closeOnce sync.Once

	name string
	x, y int
}

// Dial connects to addr over TCP and registers as name.
func Dial(ctx context.Context, addr, name string) (*Client, error) {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("dialing %s: %w", addr, err)
	}

	c, err := Handshake(conn, name)
	if err != nil {
		conn.Close()
		return nil, err
	}
	return c, nil
}

// Handshake registers as name on an already open connection and waits for
// the server's answer.
func Handshake(conn io.ReadWriteCloser, name string) (*Client, error) {
	req, err := json.Marshal(player.Request{Name: name})
	if err != nil {
		return nil, fmt.Errorf("encoding handshake: %w", err)
	}
	if _, err := conn.Write(append(req, '\n')); err != nil {
		return nil, fmt.Errorf("sending handshake: %w", err)
	}

	c := &Client{
		conn:    conn,
		scanner: bufio.NewScanner(conn),
		name:    name,
	}

	if !c.scanner.Scan() {
		if err := c.scanner.Err(); err != nil {
			return nil, fmt.Errorf("reading handshake reply: %w", err)
		}
		return nil, fmt.Errorf("reading handshake reply: %w", io.ErrUnexpectedEOF)
	}
	reply := c.scanner.Text()

	switch {
	case strings.HasPrefix(reply, player.NameTakenMarker):
		return nil, fmt.Errorf("%q: %w", name, ErrNameTaken)
	case strings.HasPrefix(reply, "Welcome,"):
		if err := c.parseWelcome(reply); err != nil {
			return nil, err
		}
		return c, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrRejected, reply)
	}
}

func (c *Client) parseWelcome(reply string) error {
	i := strings.LastIndex(reply, welcomePositionMarker)
	if i < 0 {
		return fmt.Errorf("unexpected welcome %q", reply)
	}
	_, err := fmt.Sscanf(reply[i+len(welcomePositionMarker):], "%d %d.", &c.x, &c.y)
	if err != nil {
		return fmt.Errorf("parsing welcome %q: %w", reply, err)
	}
	return nil
}

func (c *Client) Name() string {
	return c.name
}

// StartPosition is where the server placed the player on registration.
func (c *Client) StartPosition() (int, int) {
	return c.x, c.y
}

// Send writes a raw command line.
func (c *Client) Send(line string) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	_, err := io.WriteString(c.conn, strings.TrimRight(line, "\r\n")+"\n")
	if err != nil {
		return fmt.Errorf("sending %q: %w", line, err)
	}
	return nil
}

func (c *Client) Move(direction string, distance int) error {
	if distance <= 1 {
		return c.Send("move " + direction)
	}
	return c.Send(fmt.Sprintf("move %s %d", direction, distance))
}

func (c *Client) Attack(target string) error {
	return c.Send("attack " + target)
}

func (c *Client) Shutdown() error {
	return c.Send("shutdown")
}

// Receive calls fn with every line the server sends until the connection
// closes or ctx is canceled.
func (c *Client) Receive(ctx context.Context, fn func(line string)) error {
	stop := context.AfterFunc(ctx, func() {
		c.Close()
	})
	defer stop()

	for c.scanner.Scan() {
		fn(c.scanner.Text())
	}

	if ctx.Err() != nil {
		return nil
	}
	err := c.scanner.Err()
	if err != nil && !errors.Is(err, net.ErrClosed) {
		return fmt.Errorf("receiving: %w", err)
	}
	return nil
}

func (c *Client) Close() error {
	var err error
	c.closeOnce.Do(func() {
		err = c.conn.Close()
	})
	return err
}
