package player

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"

	"github.com/pixil98/go-arena/internal/commands"
	"github.com/pixil98/go-arena/internal/game"
	"github.com/pixil98/go-arena/internal/session"
)

// Executor runs a single command line for a player.
type Executor interface {
	Exec(ctx context.Context, actor *game.Player, line string) error
}

type PlayerManager struct {
	registry     *session.Registry
	cmdHandler   Executor
	maxHandshake int64
}

type ManagerOpt func(*PlayerManager)

// WithMaxHandshakeBytes bounds the size of the handshake payload.
func WithMaxHandshakeBytes(n int64) ManagerOpt {
	return func(m *PlayerManager) {
		if n > 0 {
			m.maxHandshake = n
		}
	}
}

func NewPlayerManager(reg *session.Registry, cmd Executor, opts ...ManagerOpt) *PlayerManager {
	m := &PlayerManager{
		registry:     reg,
		cmdHandler:   cmd,
		maxHandshake: DefaultMaxHandshakeBytes,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// RunSession performs the handshake on conn and then runs the player's
// command loop until they disconnect, are removed, or the server stops.
// The caller still owns conn and should close it once this returns.
func (m *PlayerManager) RunSession(ctx context.Context, conn io.ReadWriteCloser) error {
	logger := slog.With("remote", remoteAddr(conn))

	p, rd, err := m.handshake(conn)
	if err != nil {
		return err
	}
	defer m.registry.Remove(p)

	logger = logger.With("player", p.Name(), "session", p.Id())
	logger.InfoContext(ctx, "player joined")

	m.registry.Notify(fmt.Sprintf(session.JoinedMessage, p.Name()), p)

	err = m.play(ctx, p, rd)
	if err != nil {
		return fmt.Errorf("player %q: %w", p.Name(), err)
	}
	return nil
}

func (m *PlayerManager) handshake(conn io.ReadWriteCloser) (*game.Player, io.Reader, error) {
	req, rd, err := ReadRequest(conn, m.maxHandshake)
	if err != nil {
		writeLine(conn, InvalidNameMessage)
		return nil, nil, err
	}
	if err := req.Validate(); err != nil {
		writeLine(conn, InvalidNameMessage)
		return nil, nil, fmt.Errorf("handshake: %w", err)
	}

	p, err := m.registry.RegisterWithWelcome(req.Name, conn, func(p *game.Player, pos game.Position) string {
		return fmt.Sprintf(WelcomeMessage, p.Name(), pos.X, pos.Y)
	})
	switch {
	case errors.Is(err, session.ErrNameTaken):
		writeLine(conn, NameTakenMessage)
		return nil, nil, fmt.Errorf("handshake %q: %w", req.Name, err)
	case errors.Is(err, session.ErrShuttingDown):
		writeLine(conn, session.ShutdownMessage)
		return nil, nil, fmt.Errorf("handshake %q: %w", req.Name, err)
	case errors.Is(err, session.ErrInvalidName):
		writeLine(conn, InvalidNameMessage)
		return nil, nil, fmt.Errorf("handshake %q: %w", req.Name, err)
	case err != nil:
		// The welcome could not be delivered; the connection is already gone.
		return nil, nil, fmt.Errorf("handshake %q: %w", req.Name, err)
	}

	return p, rd, nil
}

func (m *PlayerManager) play(ctx context.Context, p *game.Player, rd io.Reader) error {
	done := make(chan struct{})
	defer close(done)

	// Read input lines into a channel so the loop can also watch for shutdown.
	inputChan := make(chan string)
	inputErrChan := make(chan error, 1)
	go func() {
		defer close(inputChan)
		scanner := bufio.NewScanner(rd)
		for scanner.Scan() {
			select {
			case inputChan <- scanner.Text():
			case <-done:
				return
			}
		}
		inputErrChan <- scanner.Err()
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case <-m.registry.Done():
			return nil

		case line, ok := <-inputChan:
			if !ok {
				// Connection lost or closed by removal.
				select {
				case err := <-inputErrChan:
					if err != nil && m.registry.Live(p) {
						return err
					}
				default:
				}
				return nil
			}

			err := m.cmdHandler.Exec(ctx, p, line)
			if err != nil {
				var userErr *commands.UserError
				if !errors.As(err, &userErr) {
					return fmt.Errorf("command execution failed: %w", err)
				}
				if err := p.Send(userErr.Message); err != nil {
					return err
				}
			}

			// Defeated or shut down while handling the line.
			if !m.registry.Live(p) {
				return nil
			}
		}
	}
}

func writeLine(w io.Writer, msg string) {
	if _, err := w.Write([]byte(msg + "\n")); err != nil {
		slog.Debug("writing handshake reply", "error", err)
	}
}

func remoteAddr(conn any) string {
	if c, ok := conn.(interface{ RemoteAddr() net.Addr }); ok && c.RemoteAddr() != nil {
		return c.RemoteAddr().String()
	}
	return "unknown"
}
