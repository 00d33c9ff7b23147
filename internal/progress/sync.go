package progress

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

const (
	DefaultRetryInterval = 5 * time.Second
	DefaultFlushTimeout  = 5 * time.Second
)

// Syncer writes progress to a Store in the background. Enqueued progress for
// the same visitor is merged until it is written, and failed writes are kept
// for the next attempt.
type Syncer struct {
	store         Store
	retryInterval time.Duration
	flushTimeout  time.Duration

	mu      sync.Mutex
	pending map[string]Progress
	wake    chan struct{}
}

type SyncerOpt func(*Syncer)

func WithRetryInterval(d time.Duration) SyncerOpt {
	return func(s *Syncer) {
		s.retryInterval = d
	}
}

// WithFlushTimeout bounds the final flush on shutdown.
func WithFlushTimeout(d time.Duration) SyncerOpt {
	return func(s *Syncer) {
		s.flushTimeout = d
	}
}

func NewSyncer(store Store, opts ...SyncerOpt) *Syncer {
	s := &Syncer{
		store:         store,
		retryInterval: DefaultRetryInterval,
		flushTimeout:  DefaultFlushTimeout,
		pending:       map[string]Progress{},
		wake:          make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Enqueue schedules p to be saved. It never blocks.
func (s *Syncer) Enqueue(p Progress) {
	if p.VisitorID == "" {
		return
	}

	s.mu.Lock()
	s.pending[p.VisitorID] = Merge(s.pending[p.VisitorID], p)
	s.mu.Unlock()

	select {
	case s.wake <- struct{}{}:
	default:
	}
}

// Pending is the number of visitors with unsaved progress.
func (s *Syncer) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

func (s *Syncer) Start(ctx context.Context) error {
	ticker := time.NewTicker(s.retryInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			flushCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.flushTimeout)
			defer cancel()
			if err := s.Flush(flushCtx); err != nil {
				slog.ErrorContext(ctx, "flushing progress on shutdown", "pending", s.Pending(), "error", err)
			}
			return nil
		case <-s.wake:
			s.flushAndLog(ctx)
		case <-ticker.C:
			s.flushAndLog(ctx)
		}
	}
}

func (s *Syncer) flushAndLog(ctx context.Context) {
	if err := s.Flush(ctx); err != nil {
		slog.ErrorContext(ctx, "saving progress", "error", err)
	}
}

// Flush saves everything pending. Progress that fails to save is queued
// again and the last error is returned.
func (s *Syncer) Flush(ctx context.Context) error {
	s.mu.Lock()
	batch := s.pending
	s.pending = map[string]Progress{}
	s.mu.Unlock()

	var lastErr error
	for id, p := range batch {
		if _, err := s.store.Save(ctx, p); err != nil {
			slog.WarnContext(ctx, "saving progress failed, will retry", "visitor", id, "error", err)
			lastErr = err

			s.mu.Lock()
			s.pending[id] = Merge(s.pending[id], p)
			s.mu.Unlock()
		}
	}
	return lastErr
}
