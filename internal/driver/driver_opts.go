package driver

import "time"

type FrameDriverOpt func(*FrameDriver)

func WithFrameInterval(interval time.Duration) FrameDriverOpt {
	return func(d *FrameDriver) {
		d.frameInterval = interval
	}
}

// WithMaxDelta caps the delta passed to tickers after a slow frame.
func WithMaxDelta(max time.Duration) FrameDriverOpt {
	return func(d *FrameDriver) {
		d.maxDelta = max
	}
}

// WithClock overrides the time source used to measure frame deltas.
func WithClock(now func() time.Time) FrameDriverOpt {
	return func(d *FrameDriver) {
		d.now = now
	}
}
