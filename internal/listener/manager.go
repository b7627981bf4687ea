package listener

import (
	"context"
	"io"
	"log/slog"
)

// SessionRunner runs a complete player session over a connection.
type SessionRunner interface {
	RunSession(ctx context.Context, conn io.ReadWriteCloser) error
}

type ConnectionManager struct {
	sr SessionRunner
}

func NewConnectionManager(sr SessionRunner) *ConnectionManager {
	return &ConnectionManager{
		sr: sr,
	}
}

// AcceptConnection runs a session on conn and closes it afterwards.
func (m *ConnectionManager) AcceptConnection(ctx context.Context, conn io.ReadWriteCloser) {
	defer conn.Close()

	if err := m.sr.RunSession(ctx, conn); err != nil {
		slog.WarnContext(ctx, "player session", "error", err)
	}
}
