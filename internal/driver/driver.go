// Package driver runs the fixed-rate frame loop.
package driver

import (
	"context"
	"time"
)

const (
	DefaultFrameInterval = time.Second / 60
	DefaultMaxDelta      = 250 * time.Millisecond
)

// Ticker is advanced once per frame by the elapsed time since the last one.
type Ticker interface {
	Tick(ctx context.Context, delta time.Duration) error
}

type FrameDriver struct {
	frameInterval time.Duration
	maxDelta      time.Duration
	now           func() time.Time
	tickers       []Ticker

	last time.Time
}

func NewFrameDriver(tickers []Ticker, opts ...FrameDriverOpt) *FrameDriver {
	d := &FrameDriver{
		frameInterval: DefaultFrameInterval,
		maxDelta:      DefaultMaxDelta,
		now:           time.Now,
		tickers:       tickers,
	}

	for _, opt := range opts {
		opt(d)
	}

	return d
}

func (d *FrameDriver) Start(ctx context.Context) error {
	ticker := time.NewTicker(d.frameInterval)
	defer ticker.Stop()

	d.last = d.now()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := d.Tick(ctx); err != nil {
				return err
			}
		}
	}
}

// Tick runs one frame. The delta handed to tickers is the real time since the
// previous frame, capped at the max delta so a stall doesn't launch vehicles.
func (d *FrameDriver) Tick(ctx context.Context) error {
	now := d.now()
	delta := d.frameInterval
	if !d.last.IsZero() {
		delta = now.Sub(d.last)
	}
	d.last = now

	if delta < 0 {
		delta = 0
	}
	if delta > d.maxDelta {
		delta = d.maxDelta
	}

	for _, t := range d.tickers {
		if err := t.Tick(ctx, delta); err != nil {
			return err
		}
	}
	return nil
}
