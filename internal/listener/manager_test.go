package listener

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/pixil98/go-testutil"
)

type stubRunner struct {
	active int64
	cm     *ConnectionManager
	err    error
	read   string
}

func (s *stubRunner) RunSession(_ context.Context, rw io.ReadWriter) error {
	s.active = s.cm.Active()
	data, _ := io.ReadAll(rw)
	s.read = string(data)
	return s.err
}

type readOnly struct {
	io.Reader
}

func (readOnly) Write(p []byte) (int, error) { return len(p), nil }

func TestConnectionManager_AcceptConnection(t *testing.T) {
	tests := map[string]struct {
		err error
	}{
		"clean exit":    {},
		"session fails": {err: errors.New("connection reset")},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			runner := &stubRunner{err: tt.err}
			cm := NewConnectionManager(runner)
			runner.cm = cm

			cm.AcceptConnection(context.Background(), readOnly{strings.NewReader("quit\n")})

			testutil.AssertEqual(t, "active during session", runner.active, int64(1))
			testutil.AssertEqual(t, "active after session", cm.Active(), int64(0))
			testutil.AssertEqual(t, "read", runner.read, "quit\n")
		})
	}
}
