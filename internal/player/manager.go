package player

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"regexp"

	"github.com/google/uuid"
	"github.com/pixil98/go-drive/internal"
	"github.com/pixil98/go-drive/internal/game"
	"github.com/pixil98/go-drive/internal/listener"
	"github.com/pixil98/go-drive/internal/progress"
)

const (
	maxVisitorTries = 3
	messageBacklog  = 64
)

var visitorPattern = regexp.MustCompile(`^[a-zA-Z0-9-]{1,64}$`)

// PlayerManager connects sessions to the world: it identifies the visitor,
// spawns or reattaches their vehicle and saves their progress when they
// leave.
type PlayerManager struct {
	world    *game.WorldState
	store    progress.Store
	sink     game.ProgressSink
	renderer *Renderer
}

type PlayerManagerOpt func(*PlayerManager)

// WithRenderer replaces the stock event messages.
func WithRenderer(r *Renderer) PlayerManagerOpt {
	return func(m *PlayerManager) {
		m.renderer = r
	}
}

func NewPlayerManager(world *game.WorldState, store progress.Store, sink game.ProgressSink, opts ...PlayerManagerOpt) *PlayerManager {
	m := &PlayerManager{
		world: world,
		store: store,
		sink:  sink,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.renderer == nil {
		m.renderer = DefaultRenderer()
	}
	return m
}

func (m *PlayerManager) RunSession(ctx context.Context, rw io.ReadWriter) error {
	br := bufio.NewReader(rw)

	if _, err := io.WriteString(rw, "Welcome to go-drive!\n"); err != nil {
		return err
	}

	visitorID, err := m.identify(ctx, br, rw)
	if err != nil {
		return fmt.Errorf("identifying visitor: %w", err)
	}

	msgs := make(chan []byte, messageBacklog)
	ps, err := m.attach(ctx, visitorID, msgs)
	if err != nil {
		return err
	}
	done := ps.Done()

	if err := m.world.Subscribe(visitorID, game.PlayerSubject(visitorID)); err != nil {
		slog.WarnContext(ctx, "subscribing player", "visitor", visitorID, "error", err)
	}
	slog.InfoContext(ctx, "player connected", "visitor", visitorID)

	p := &Player{
		conn:      rw,
		in:        br,
		visitorID: visitorID,
		world:     m.world,
		renderer:  m.renderer,
		msgs:      msgs,
		done:      done,
	}
	playErr := p.Play(ctx)

	prog, removed, err := m.world.EndSession(visitorID, done)
	if err != nil && !errors.Is(err, game.ErrPlayerNotFound) {
		slog.WarnContext(ctx, "ending session", "visitor", visitorID, "error", err)
	}
	if removed && m.sink != nil {
		m.sink.Enqueue(prog)
	}
	slog.InfoContext(ctx, "player disconnected", "visitor", visitorID, "removed", removed)

	return playErr
}

// identify uses the transport's user name when there is one, and otherwise
// asks. A blank answer starts a new anonymous visitor.
func (m *PlayerManager) identify(ctx context.Context, br *bufio.Reader, w io.Writer) (string, error) {
	if user, ok := listener.RemoteUser(ctx); ok && visitorPattern.MatchString(user) {
		return user, nil
	}

	id, err := internal.Prompt(br, w, "Visitor id (blank for a new one): ",
		internal.WithMaxTries(maxVisitorTries),
		internal.WithValidator(func(s string) (bool, string) {
			if s == "" || visitorPattern.MatchString(s) {
				return true, ""
			}
			return false, "Visitor ids are letters, digits and dashes.\n"
		}),
	)
	if err != nil {
		return "", err
	}

	if id == "" {
		id = uuid.NewString()
		if _, err := fmt.Fprintf(w, "Your visitor id is %s. Use it to come back to your progress.\n", id); err != nil {
			return "", err
		}
	}
	return id, nil
}

func (m *PlayerManager) attach(ctx context.Context, visitorID string, msgs chan []byte) (*game.PlayerState, error) {
	prog, err := m.store.Load(ctx, visitorID)
	if err != nil {
		return nil, fmt.Errorf("loading progress: %w", err)
	}

	ps, err := m.world.AddPlayer(visitorID, prog, msgs)
	if errors.Is(err, game.ErrPlayerExists) {
		slog.InfoContext(ctx, "player reconnected", "visitor", visitorID)
		return m.world.ReattachPlayer(visitorID, msgs)
	}
	if err != nil {
		return nil, fmt.Errorf("adding player: %w", err)
	}
	return ps, nil
}
