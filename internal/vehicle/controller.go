// Package vehicle turns held controls into rigid-body motion and decides when
// the resulting state is worth publishing.
package vehicle

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/pixil98/go-drive/internal/input"
	"github.com/pixil98/go-drive/internal/physics"
	"github.com/pixil98/go-drive/internal/proximity"
)

// ParkingZone is a spot the vehicle can park at. A zero Radius uses the
// tuning default.
type ParkingZone struct {
	ID     string
	Center mgl64.Vec3
	Radius float64
}

// Frame is the controller output for one simulation step.
type Frame struct {
	Position mgl64.Vec3
	Heading  float64
	Speed    float64
	EngineOn bool
	Boosting bool
	ParkedAt string

	// ParkedChanged is set on the frame where ParkedAt differs from the previous frame.
	ParkedChanged bool
}

// Controller owns a vehicle's runtime state. It is not safe for concurrent use.
type Controller struct {
	tuning Tuning
	body   physics.Body
	zones  []ParkingZone

	heading  float64
	speed    float64
	position mgl64.Vec3
	boosting bool
	parkedAt string
}

func NewController(body physics.Body, tuning Tuning, zones []ParkingZone) *Controller {
	c := &Controller{
		tuning: tuning,
		body:   body,
		zones:  zones,
	}
	if pos, ok := body.Position(); ok {
		c.position = pos
	}
	c.heading = body.Rotation()
	return c
}

func (c *Controller) Heading() float64 { return c.heading }
func (c *Controller) Speed() float64 { return c.speed }
func (c *Controller) Position() mgl64.Vec3 { return c.position }
func (c *Controller) ParkedAt() string { return c.parkedAt }

// Stationary reports whether the vehicle is slow enough to count as stopped.
func (c *Controller) Stationary() bool {
	return math.Abs(c.speed) < c.tuning.ParkingSpeedThreshold
}

// SetSpeed overrides the current speed, e.g. when resetting a vehicle.
func (c *Controller) SetSpeed(v float64) {
	c.speed = v
}

// Step advances the controller by delta seconds.
func (c *Controller) Step(delta float64, controls input.ControlState, engineOn bool) Frame {
	if pos, ok := c.body.Position(); ok {
		c.position = pos
	}

	target := c.targetSpeed(controls, engineOn)
	c.boosting = engineOn && controls.Forward && controls.Boost
	c.speed += (target - c.speed) * c.tuning.smoothingAlpha(delta)

	if math.Abs(c.speed) > c.tuning.MinTurnSpeed {
		steer := controls.Steer()
		if c.speed < 0 {
			steer = -steer
		}
		rate := c.tuning.TurnSpeed * math.Abs(c.speed) / c.tuning.MoveSpeed
		c.heading += rate * delta * steer
	}

	fwd := Forward(c.heading)
	vel := c.body.Velocity()
	c.body.SetVelocity(mgl64.Vec3{fwd.X() * c.speed, vel.Y(), fwd.Y() * c.speed})
	c.body.SetRotation(c.heading)

	prev := c.parkedAt
	c.parkedAt = c.findParking()

	return Frame{
		Position:      c.position,
		Heading:       c.heading,
		Speed:         c.speed,
		EngineOn:      engineOn,
		Boosting:      c.boosting,
		ParkedAt:      c.parkedAt,
		ParkedChanged: prev != c.parkedAt,
	}
}

func (c *Controller) targetSpeed(controls input.ControlState, engineOn bool) float64 {
	switch {
	case !engineOn:
		return 0
	case controls.Forward:
		if controls.Boost {
			return c.tuning.MoveSpeed * c.tuning.BoostMultiplier
		}
		return c.tuning.MoveSpeed
	case controls.Backward:
		return -c.tuning.ReverseSpeed
	default:
		return 0
	}
}

// findParking returns the first zone the stationary vehicle is in, or "" when
// moving or outside every zone.
func (c *Controller) findParking() string {
	if !c.Stationary() {
		return ""
	}
	for _, z := range c.zones {
		r := z.Radius
		if r <= 0 {
			r = c.tuning.ParkingRadius
		}
		if proximity.PlanarDistance(c.position, z.Center) < r {
			return z.ID
		}
	}
	return ""
}

// Forward is the unit heading vector on the ground plane as (x, z).
func Forward(heading float64) mgl64.Vec2 {
	return mgl64.Vec2{-math.Sin(heading), -math.Cos(heading)}
}
