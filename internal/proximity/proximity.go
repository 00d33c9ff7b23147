// Package proximity turns per-frame player positions into discrete enter and
// exit events around fixed targets.
package proximity

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/pixil98/go-drive/internal/latch"
)

// PlanarDistance is the distance between a and b ignoring the vertical axis.
func PlanarDistance(a, b mgl64.Vec3) float64 {
	return math.Hypot(a.X()-b.X(), a.Z()-b.Z())
}

// Evaluator fires once each time the player comes within Radius of Target.
// It re-arms when the player is at least ExitRadius away. An ExitRadius larger
// than Radius gives a hysteresis band that stops flicker on the boundary.
type Evaluator struct {
	Target     mgl64.Vec3
	Radius     float64
	ExitRadius float64

	inside latch.Edge
}

// NewEvaluator creates an evaluator with no hysteresis.
func NewEvaluator(target mgl64.Vec3, radius float64) *Evaluator {
	return &Evaluator{Target: target, Radius: radius, ExitRadius: radius}
}

// NewHysteresisEvaluator creates an evaluator whose exit radius is radius+buffer.
func NewHysteresisEvaluator(target mgl64.Vec3, radius, buffer float64) *Evaluator {
	return &Evaluator{Target: target, Radius: radius, ExitRadius: radius + buffer}
}

// Update samples the player position and reports whether this frame is an approach.
func (e *Evaluator) Update(player mgl64.Vec3) bool {
	entered, _ := e.update(player)
	return entered
}

// Inside reports whether the evaluator currently considers the player inside.
func (e *Evaluator) Inside() bool {
	return e.inside.Set()
}

// Reset re-arms the evaluator.
func (e *Evaluator) Reset() {
	e.inside.Clear()
}

func (e *Evaluator) update(player mgl64.Vec3) (entered, exited bool) {
	d := PlanarDistance(player, e.Target)

	exit := e.ExitRadius
	if exit < e.Radius {
		exit = e.Radius
	}

	if d >= exit {
		exited = e.inside.Set()
		e.inside.Update(false)
		return false, exited
	}
	if d < e.Radius {
		return e.inside.Update(true), false
	}
	// Between Radius and ExitRadius: hold the current state.
	return false, false
}

// Transition is the result of a Zone update.
type Transition int

const (
	TransitionNone Transition = iota
	TransitionEntered
	TransitionExited
)

// Zone is an Evaluator that also reports exits, for areas whose occupancy
// matters rather than a one-shot pickup.
type Zone struct {
	Evaluator
}

func NewZone(target mgl64.Vec3, radius, buffer float64) *Zone {
	return &Zone{Evaluator: *NewHysteresisEvaluator(target, radius, buffer)}
}

func (z *Zone) Update(player mgl64.Vec3) Transition {
	entered, exited := z.update(player)
	switch {
	case entered:
		return TransitionEntered
	case exited:
		return TransitionExited
	default:
		return TransitionNone
	}
}
