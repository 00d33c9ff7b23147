package physics

import (
	"github.com/go-gl/mathgl/mgl64"
)

const (
	DefaultGravity = -9.81
)

// Space integrates a set of rigid bodies.
type Space struct {
	gravity float64
	bodies  map[*RigidBody]struct{}
}

type SpaceOpt func(*Space)

// WithGravity sets the vertical acceleration applied to every body.
func WithGravity(g float64) SpaceOpt {
	return func(s *Space) {
		s.gravity = g
	}
}

func NewSpace(opts ...SpaceOpt) *Space {
	s := &Space{
		gravity: DefaultGravity,
		bodies:  map[*RigidBody]struct{}{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Add creates a body at pos and starts simulating it.
func (s *Space) Add(pos mgl64.Vec3) *RigidBody {
	b := &RigidBody{space: s, pos: pos}
	s.bodies[b] = struct{}{}
	return b
}

// Remove stops simulating b. Its last position is no longer reported.
func (s *Space) Remove(b *RigidBody) {
	if b == nil {
		return
	}
	delete(s.bodies, b)
	b.space = nil
}

func (s *Space) Len() int {
	return len(s.bodies)
}

// Step advances every body by dt seconds: v.y += g*dt; p += v*dt, then clamps
// to the ground plane.
func (s *Space) Step(dt float64) {
	if dt <= 0 {
		return
	}
	for b := range s.bodies {
		b.vel[1] += s.gravity * dt
		b.pos = b.pos.Add(b.vel.Mul(dt))

		if b.pos[1] < 0 {
			b.pos[1] = 0
			if b.vel[1] < 0 {
				b.vel[1] = 0
			}
		}
	}
}
