package listener

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	wsWriteWait    = 5 * time.Second
	wsMaxMessage   = 64 * 1024
	wsShutdownWait = 5 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// WebsocketListener serves player sessions over websocket. Each text
// message from the client is one line of input and each line the server
// sends is one text message.
type WebsocketListener struct {
	addr string
	path string
	cm   *ConnectionManager

	mu      sync.Mutex
	closed  bool
	wg      sync.WaitGroup
	connCtx context.Context
	cancel  context.CancelFunc
}

func NewWebsocketListener(addr, path string, cm *ConnectionManager) *WebsocketListener {
	if path == "" {
		path = "/"
	}
	connCtx, cancel := context.WithCancel(context.Background())
	return &WebsocketListener{
		addr:    addr,
		path:    path,
		cm:      cm,
		connCtx: connCtx,
		cancel:  cancel,
	}
}

func (l *WebsocketListener) Start(ctx context.Context) error {
	mux := http.NewServeMux()
	mux.Handle(l.path, l)

	svr := &http.Server{
		Addr:              l.addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.InfoContext(ctx, "listening for websocket", "addr", l.addr, "path", l.path)
		errCh <- svr.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		l.stopSessions()
		return fmt.Errorf("serving websocket on %s: %w", l.addr, err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), wsShutdownWait)
	defer cancel()
	err := svr.Shutdown(shutdownCtx)

	// Hijacked connections are not tracked by the http server.
	l.stopSessions()

	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("shutting down websocket server: %w", err)
	}
	return nil
}

// stopSessions refuses new upgrades, ends running sessions and waits for them.
func (l *WebsocketListener) stopSessions() {
	l.mu.Lock()
	l.closed = true
	l.mu.Unlock()

	l.cancel()
	l.wg.Wait()
}

func (l *WebsocketListener) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		http.Error(w, "server is shutting down", http.StatusServiceUnavailable)
		return
	}
	l.wg.Add(1)
	l.mu.Unlock()
	defer l.wg.Done()

	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.WarnContext(r.Context(), "websocket upgrade", "remote", r.RemoteAddr, "error", err)
		return
	}
	ws.SetReadLimit(wsMaxMessage)

	conn := newWsConn(ws)

	// Closing the socket unblocks any pending read once the server stops.
	stop := context.AfterFunc(l.connCtx, func() {
		conn.Close()
	})
	defer stop()

	l.cm.AcceptConnection(l.connCtx, conn)
}

// wsConn adapts a websocket connection to a line-oriented stream.
type wsConn struct {
	ws *websocket.Conn

	readBuf []byte

	writeMu   sync.Mutex
	closeOnce sync.Once
	closeErr  error
}

func newWsConn(ws *websocket.Conn) *wsConn {
	return &wsConn{ws: ws}
}

func (c *wsConn) Read(p []byte) (int, error) {
	for len(c.readBuf) == 0 {
		_, msg, err := c.ws.ReadMessage()
		if err != nil {
			return 0, err
		}
		if len(msg) == 0 || msg[len(msg)-1] != '\n' {
			msg = append(msg, '\n')
		}
		c.readBuf = msg
	}

	n := copy(p, c.readBuf)
	c.readBuf = c.readBuf[n:]
	return n, nil
}

func (c *wsConn) Write(p []byte) (int, error) {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	for _, line := range bytes.Split(bytes.TrimSuffix(p, []byte("\n")), []byte("\n")) {
		c.ws.SetWriteDeadline(time.Now().Add(wsWriteWait))
		if err := c.ws.WriteMessage(websocket.TextMessage, line); err != nil {
			return 0, err
		}
	}
	return len(p), nil
}

func (c *wsConn) Close() error {
	c.closeOnce.Do(func() {
		c.writeMu.Lock()
		msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
		c.ws.WriteControl(websocket.CloseMessage, msg, time.Now().Add(wsWriteWait))
		c.writeMu.Unlock()

		c.closeErr = c.ws.Close()
	})
	return c.closeErr
}

func (c *wsConn) RemoteAddr() net.Addr {
	return c.ws.RemoteAddr()
}
