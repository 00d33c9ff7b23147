package vehicle

import (
	"math"
	"time"

	"github.com/go-gl/mathgl/mgl64"
)

// Snapshot is the published view of a vehicle. Values are copies and never
// change after being returned.
type Snapshot struct {
	Position mgl64.Vec3 `json:"position"`
	Heading  float64    `json:"heading"`
	Speed    float64    `json:"speed"`
	EngineOn bool       `json:"engine_on"`
	Boosting bool       `json:"boosting"`
	ParkedAt string     `json:"parked_at,omitempty"`
}

// Publisher throttles controller frames into snapshots. Position and heading
// publish when they have changed and either the position interval has elapsed
// or the move exceeds PositionEpsilon on x or z. Speed follows the same rule
// with its own, coarser thresholds. Flag changes publish immediately.
type Publisher struct {
	tuning Tuning

	started     bool
	last        Snapshot
	lastPosAt   time.Time
	lastSpeedAt time.Time
}

func NewPublisher(tuning Tuning) *Publisher {
	return &Publisher{tuning: tuning}
}

// Last returns the most recently published snapshot.
func (p *Publisher) Last() Snapshot {
	return p.last
}

// Publish returns a new snapshot when f is dirty and due, and false otherwise.
func (p *Publisher) Publish(now time.Time, f Frame) (Snapshot, bool) {
	if !p.started {
		p.started = true
		p.last = snapshotOf(f)
		p.lastPosAt = now
		p.lastSpeedAt = now
		return p.last, true
	}

	next := p.last
	changed := false

	dx := math.Abs(f.Position.X() - p.last.Position.X())
	dz := math.Abs(f.Position.Z() - p.last.Position.Z())
	posDirty := f.Position != p.last.Position || f.Heading != p.last.Heading
	posDue := now.Sub(p.lastPosAt) > p.tuning.PositionPublishInterval ||
		dx > p.tuning.PositionEpsilon || dz > p.tuning.PositionEpsilon
	if posDirty && posDue {
		next.Position = f.Position
		next.Heading = f.Heading
		p.lastPosAt = now
		changed = true
	}

	speedDirty := f.Speed != p.last.Speed
	speedDue := now.Sub(p.lastSpeedAt) > p.tuning.SpeedPublishInterval ||
		math.Abs(f.Speed-p.last.Speed) > p.tuning.SpeedEpsilon
	if speedDirty && speedDue {
		next.Speed = f.Speed
		p.lastSpeedAt = now
		changed = true
	}

	if f.EngineOn != p.last.EngineOn || f.Boosting != p.last.Boosting || f.ParkedAt != p.last.ParkedAt {
		next.EngineOn = f.EngineOn
		next.Boosting = f.Boosting
		next.ParkedAt = f.ParkedAt
		changed = true
	}

	if !changed {
		return p.last, false
	}
	p.last = next
	return next, true
}

func snapshotOf(f Frame) Snapshot {
	return Snapshot{
		Position: f.Position,
		Heading:  f.Heading,
		Speed:    f.Speed,
		EngineOn: f.EngineOn,
		Boosting: f.Boosting,
		ParkedAt: f.ParkedAt,
	}
}
