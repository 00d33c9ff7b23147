// Package physics is a minimal rigid-body space: bodies have a position,
// linear velocity and a yaw rotation, fall under gravity and rest on a flat
// ground plane at y=0.
package physics

import (
	"github.com/go-gl/mathgl/mgl64"
)

// Body is the view of a rigid body used by controllers.
type Body interface {
	// Position returns the body position. ok is false when the body is not
	// currently simulated.
	Position() (pos mgl64.Vec3, ok bool)
	Velocity() mgl64.Vec3
	SetVelocity(v mgl64.Vec3)
	Rotation() float64
	SetRotation(yaw float64)
}

// RigidBody is a body simulated by a Space.
type RigidBody struct {
	space *Space

	pos mgl64.Vec3
	vel mgl64.Vec3
	yaw float64
}

func (b *RigidBody) Position() (mgl64.Vec3, bool) {
	if b.space == nil {
		return mgl64.Vec3{}, false
	}
	return b.pos, true
}

func (b *RigidBody) Velocity() mgl64.Vec3 {
	return b.vel
}

// SetVelocity overrides the linear velocity.
func (b *RigidBody) SetVelocity(v mgl64.Vec3) {
	b.vel = v
}

func (b *RigidBody) Rotation() float64 {
	return b.yaw
}

func (b *RigidBody) SetRotation(yaw float64) {
	b.yaw = yaw
}

// Teleport moves the body without integrating, e.g. for respawns.
func (b *RigidBody) Teleport(pos mgl64.Vec3) {
	b.pos = pos
	b.vel = mgl64.Vec3{}
}
