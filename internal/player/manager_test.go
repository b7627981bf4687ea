package player

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/pixil98/go-arena/internal/commands"
	"github.com/pixil98/go-arena/internal/game"
	"github.com/pixil98/go-arena/internal/session"
	"github.com/pixil98/go-testutil"
)

type mockConn struct {
	io.Reader

	mu     sync.Mutex
	out    strings.Builder
	closed bool
}

func newMockConn(input string) *mockConn {
	return &mockConn{Reader: strings.NewReader(input)}
}

func (c *mockConn) Write(p []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.out.Write(p)
}

func (c *mockConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

func (c *mockConn) Lines() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return strings.Split(strings.TrimSuffix(c.out.String(), "\n"), "\n")
}

// hookConn runs onFirstWrite just before the first line is written.
type hookConn struct {
	*mockConn
	once         sync.Once
	onFirstWrite func()
}

func (c *hookConn) Write(p []byte) (int, error) {
	c.once.Do(c.onFirstWrite)
	return c.mockConn.Write(p)
}

// brokenConn accepts input but fails every write.
type brokenConn struct {
	*mockConn
}

func (c *brokenConn) Write([]byte) (int, error) {
	return 0, errors.New("connection reset")
}

type nopConn struct{}

func (nopConn) Write(p []byte) (int, error) { return len(p), nil }
func (nopConn) Close() error                { return nil }

func newTestManager(opts ...ManagerOpt) (*PlayerManager, *session.Registry) {
	reg := session.NewRegistry(session.WithPlacer(func() game.Position {
		return game.Position{X: 3, Y: 4}
	}))
	return NewPlayerManager(reg, commands.NewHandler(reg), opts...), reg
}

func TestReadRequest(t *testing.T) {
	tests := map[string]struct {
		input   string
		limit   int64
		expName string
		expRest string
		expErr  string
	}{
		"name only": {
			input:   `{"name":"alice"}`,
			limit:   DefaultMaxHandshakeBytes,
			expName: "alice",
		},
		"pipelined commands": {
			input:   "{\"name\":\"alice\"}\nmove up\nattack bob\n",
			limit:   DefaultMaxHandshakeBytes,
			expName: "alice",
			expRest: "\nmove up\nattack bob\n",
		},
		"unknown fields ignored": {
			input:   `{"name":"bob","color":"red"}`,
			limit:   DefaultMaxHandshakeBytes,
			expName: "bob",
		},
		"not json": {
			input:  "alice\n",
			limit:  DefaultMaxHandshakeBytes,
			expErr: "decoding handshake",
		},
		"wrong type": {
			input:  `{"name":5}`,
			limit:  DefaultMaxHandshakeBytes,
			expErr: "decoding handshake",
		},
		"over limit": {
			input:  `{"name":"` + strings.Repeat("a", 64) + `"}`,
			limit:  32,
			expErr: "decoding handshake",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			req, rest, err := ReadRequest(strings.NewReader(tt.input), tt.limit)
			if tt.expErr != "" {
				testutil.AssertErrorContains(t, err, tt.expErr)
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			testutil.AssertEqual(t, "name", req.Name, tt.expName)

			b, err := io.ReadAll(rest)
			if err != nil {
				t.Fatalf("reading rest: %v", err)
			}
			testutil.AssertEqual(t, "rest", string(b), tt.expRest)
		})
	}
}

func TestPlayerManager_RunSession(t *testing.T) {
	tests := map[string]struct {
		existing []string
		input    string
		expLines []string
		expErr   error
	}{
		"welcome then commands": {
			input: "{\"name\":\"alice\"}\nmove up 2\ndance\n\nmove sideways\n",
			expLines: []string{
				"Welcome, alice! You are at 3 4.",
				"Moved up to 3 6.",
				"Unknown command.",
				"Invalid direction. Use: up, down, left, right.",
			},
		},
		"commands on handshake line": {
			input: `{"name":"alice"}move left`,
			expLines: []string{
				"Welcome, alice! You are at 3 4.",
				"Moved left to 2 4.",
			},
		},
		"malformed handshake": {
			input:    "hello there\n",
			expLines: []string{InvalidNameMessage},
		},
		"empty name": {
			input:    `{"name":"  "}`,
			expLines: []string{InvalidNameMessage},
			expErr:   session.ErrInvalidName,
		},
		"missing name": {
			input:    `{}`,
			expLines: []string{InvalidNameMessage},
			expErr:   session.ErrInvalidName,
		},
		"name taken": {
			existing: []string{"alice"},
			input:    "{\"name\":\"alice\"}\nmove up\n",
			expLines: []string{NameTakenMessage},
			expErr:   session.ErrNameTaken,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			m, reg := newTestManager()
			for _, n := range tt.existing {
				// Existing players are placed away from the newcomer's tile.
				p, err := reg.Register(n, nopConn{})
				if err != nil {
					t.Fatalf("registering %q: %v", n, err)
				}
				reg.Exec(func(v *session.View) {
					p.SetPosition(game.Position{X: -50, Y: -50})
				})
			}

			conn := newMockConn(tt.input)
			err := m.RunSession(context.Background(), conn)
			if tt.expErr != nil && !errors.Is(err, tt.expErr) {
				t.Errorf("error = %v, expected %v", err, tt.expErr)
			}

			testutil.AssertEqual(t, "lines", strings.Join(conn.Lines(), "|"), strings.Join(tt.expLines, "|"))
			testutil.AssertEqual(t, "registered", reg.Len(), len(tt.existing))
		})
	}
}

func TestPlayerManager_RunSessionShuttingDown(t *testing.T) {
	m, reg := newTestManager()
	reg.Shutdown(session.ShutdownMessage)

	conn := newMockConn(`{"name":"alice"}`)
	err := m.RunSession(context.Background(), conn)
	if !errors.Is(err, session.ErrShuttingDown) {
		t.Errorf("error = %v, expected %v", err, session.ErrShuttingDown)
	}
	testutil.AssertEqual(t, "lines", strings.Join(conn.Lines(), "|"), session.ShutdownMessage)
}

func TestPlayerManager_RunSessionAnnouncesArrivalAndDeparture(t *testing.T) {
	m, reg := newTestManager()

	watcher := &mockConn{Reader: strings.NewReader("")}
	p, err := reg.Register("bob", watcher)
	if err != nil {
		t.Fatalf("registering bob: %v", err)
	}
	reg.Exec(func(v *session.View) {
		p.SetPosition(game.Position{X: -50, Y: -50})
	})

	conn := newMockConn(`{"name":"alice"}`)
	if err := m.RunSession(context.Background(), conn); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	testutil.AssertEqual(t, "bob lines", strings.Join(watcher.Lines(), "|"),
		"alice has joined the game.|alice has left the game.")
	testutil.AssertEqual(t, "alice closed", conn.closed, true)
}

func TestPlayerManager_RunSessionEndsOnShutdown(t *testing.T) {
	m, reg := newTestManager()

	pr, pw := io.Pipe()
	defer pw.Close()
	conn := &mockConn{Reader: pr}

	errCh := make(chan error, 1)
	go func() {
		errCh <- m.RunSession(context.Background(), conn)
	}()

	if _, err := pw.Write([]byte("{\"name\":\"alice\"}\nshutdown\n")); err != nil {
		t.Fatalf("writing input: %v", err)
	}

	if err := <-errCh; err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	testutil.AssertEqual(t, "running", reg.Running(), false)
	testutil.AssertEqual(t, "last line", conn.Lines()[len(conn.Lines())-1], session.ShutdownMessage)
}

func TestPlayerManager_RunSessionEndsOnCancel(t *testing.T) {
	m, reg := newTestManager()

	pr, pw := io.Pipe()
	defer pw.Close()
	conn := &mockConn{Reader: pr}

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		errCh <- m.RunSession(ctx, conn)
	}()

	if _, err := pw.Write([]byte("{\"name\":\"alice\"}\n")); err != nil {
		t.Fatalf("writing input: %v", err)
	}
	cancel()

	if err := <-errCh; err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	testutil.AssertEqual(t, "registered", reg.Len(), 0)
}

func TestPlayerManager_WelcomeIsFirstLine(t *testing.T) {
	m, reg := newTestManager()

	notified := make(chan struct{})
	conn := &hookConn{mockConn: newMockConn(`{"name":"new"}`)}
	conn.onFirstWrite = func() {
		// The new player is already registered; broadcast while its welcome
		// is being written.
		go func() {
			defer close(notified)
			reg.Notify("old has left the game.", nil)
		}()
		time.Sleep(20 * time.Millisecond)
	}

	if err := m.RunSession(context.Background(), conn); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	<-notified

	lines := conn.Lines()
	testutil.AssertEqual(t, "line count", len(lines), 2)
	testutil.AssertEqual(t, "first line", lines[0], "Welcome, new! You are at 3 4.")
	testutil.AssertEqual(t, "second line", lines[1], "old has left the game.")
}

func TestPlayerManager_WelcomeFailureIsNotAnnounced(t *testing.T) {
	m, reg := newTestManager()

	watcher := &mockConn{Reader: strings.NewReader("")}
	if _, err := reg.Register("bob", watcher); err != nil {
		t.Fatalf("registering bob: %v", err)
	}

	conn := &brokenConn{mockConn: newMockConn(`{"name":"alice"}`)}
	err := m.RunSession(context.Background(), conn)
	testutil.AssertErrorContains(t, err, "connection reset")

	testutil.AssertEqual(t, "registered", reg.Len(), 1)
	testutil.AssertEqual(t, "alice closed", conn.closed, true)
	testutil.AssertEqual(t, "bob lines", watcher.out.String(), "")
}
