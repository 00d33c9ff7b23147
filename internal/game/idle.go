package game

import (
	"context"
	"log/slog"
	"time"
)

const DefaultIdleTimeout = 15 * time.Minute

// IdleTicker kicks players that have sent no input for too long.
type IdleTicker struct {
	world       *WorldState
	publisher   Publisher
	idleTimeout time.Duration
	now         func() time.Time
}

type IdleTickerOpt func(*IdleTicker)

func NewIdleTicker(world *WorldState, pub Publisher, opts ...IdleTickerOpt) *IdleTicker {
	it := &IdleTicker{
		world:       world,
		publisher:   pub,
		idleTimeout: DefaultIdleTimeout,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(it)
	}
	return it
}

func WithIdleTimeout(d time.Duration) IdleTickerOpt {
	return func(it *IdleTicker) {
		it.idleTimeout = d
	}
}

func WithIdleClock(now func() time.Time) IdleTickerOpt {
	return func(it *IdleTicker) {
		it.now = now
	}
}

func (it *IdleTicker) Tick(ctx context.Context, _ time.Duration) error {
	now := it.now()
	cutoff := now.Add(-it.idleTimeout)

	// Kicking under the world lock keeps it ordered with ReattachPlayer,
	// which swaps the done channel.
	it.world.ForEachPlayer(func(_ string, ps *PlayerState) {
		if ps.kicked() || !ps.LastActivity.Before(cutoff) {
			return
		}
		if it.publisher != nil {
			if data, err := NewNoticeEvent(now, "You have been idle too long.").Encode(); err == nil {
				_ = it.publisher.PublishToPlayer(ps.VisitorID, data)
			}
		}
		ps.Kick()
		slog.InfoContext(ctx, "idle player kicked", "visitor", ps.VisitorID)
	})

	return nil
}
