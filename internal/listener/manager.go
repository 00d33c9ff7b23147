package listener

import (
	"context"
	"io"
	"log/slog"
	"sync/atomic"
)

// SessionRunner plays a session over an accepted connection.
type SessionRunner interface {
	RunSession(ctx context.Context, rw io.ReadWriter) error
}

// ConnectionManager hands accepted connections from every listener to the
// session runner.
type ConnectionManager struct {
	runner SessionRunner
	active atomic.Int64
}

func NewConnectionManager(r SessionRunner) *ConnectionManager {
	return &ConnectionManager{
		runner: r,
	}
}

// Active is the number of connections currently in a session.
func (m *ConnectionManager) Active() int64 {
	return m.active.Load()
}

func (m *ConnectionManager) AcceptConnection(ctx context.Context, conn io.ReadWriter) {
	n := m.active.Add(1)
	defer m.active.Add(-1)
	slog.DebugContext(ctx, "session starting", "active", n)

	if err := m.runner.RunSession(ctx, conn); err != nil {
		slog.WarnContext(ctx, "player session", "error", err)
	}
}
