package listener

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"sync"
	"syscall"
)

// TcpListener accepts raw line-oriented TCP connections.
type TcpListener struct {
	addr string
	cm   *ConnectionManager
}

func NewTcpListener(addr string, cm *ConnectionManager) *TcpListener {
	return &TcpListener{
		addr: addr,
		cm:   cm,
	}
}

func (l *TcpListener) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", l.addr)
	if err != nil {
		if errors.Is(err, syscall.EADDRINUSE) {
			return fmt.Errorf("address %s is already in use (another server running?)", l.addr)
		}
		return fmt.Errorf("listening on %s: %w", l.addr, err)
	}

	slog.InfoContext(ctx, "listening for tcp", "addr", ln.Addr().String())
	return l.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is canceled, then waits for
// every open session to finish.
func (l *TcpListener) Serve(ctx context.Context, ln net.Listener) error {
	connCtx, cancelConns := context.WithCancel(context.Background())
	defer cancelConns()
	var wg sync.WaitGroup

	go func() {
		<-ctx.Done()
		ln.Close()
	}()

	for {
		conn, err := ln.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				cancelConns()
				wg.Wait()
				return nil
			default:
			}
			if errors.Is(err, net.ErrClosed) {
				cancelConns()
				wg.Wait()
				return fmt.Errorf("accepting tcp connection: %w", err)
			}
			slog.ErrorContext(ctx, "accepting tcp connection", "error", err)
			continue
		}

		slog.DebugContext(ctx, "tcp connection established", "remote", conn.RemoteAddr())

		wg.Add(1)
		go func() {
			defer wg.Done()
			l.cm.AcceptConnection(connCtx, conn)
		}()
	}
}
