package game

import (
	"fmt"
	"math"
	"slices"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/pixil98/go-drive/internal/storage"
	"github.com/pixil98/go-errors"
)

const (
	DefaultPickupRadius  = 2.5
	DefaultRingRadius    = 6.0
	DefaultTriggerRadius = 8.0
	DefaultTriggerBuffer = 2.0
)

// ContainerKind is what a collectible is hidden in.
type ContainerKind string

const (
	ContainerNone ContainerKind = "none"
	ContainerBox  ContainerKind = "box"
	ContainerBush ContainerKind = "bush"
)

func (k *ContainerKind) UnmarshalText(text []byte) error {
	switch v := ContainerKind(text); v {
	case "":
		*k = ContainerNone
	case ContainerNone, ContainerBox, ContainerBush:
		*k = v
	default:
		return fmt.Errorf("unknown container kind: %s", text)
	}
	return nil
}

// Collectible is a permanent item placed in the world.
type Collectible struct {
	Type      string        `json:"type"`
	Position  mgl64.Vec3    `json:"position"`
	Container ContainerKind `json:"container,omitempty"`
	Radius    float64       `json:"radius,omitempty"`
}

// Validate satisfies storage.ValidatingSpec.
func (c *Collectible) Validate() error {
	el := errors.NewErrorList()

	if c.Type == "" {
		el.Add(fmt.Errorf("type is required"))
	}
	el.Add(validateVec("position", c.Position))
	if c.Radius < 0 {
		el.Add(fmt.Errorf("radius must not be negative"))
	}

	return el.Err()
}

// PickupRadius is the capture radius, falling back to DefaultPickupRadius.
func (c *Collectible) PickupRadius() float64 {
	if c.Radius > 0 {
		return c.Radius
	}
	return DefaultPickupRadius
}

// ParkingZone is a spot in front of a building where the vehicle can park.
type ParkingZone struct {
	Building string     `json:"building"`
	Position mgl64.Vec3 `json:"position"`
	Radius   float64    `json:"radius,omitempty"`
}

// Validate satisfies storage.ValidatingSpec.
func (z *ParkingZone) Validate() error {
	el := errors.NewErrorList()

	if z.Building == "" {
		el.Add(fmt.Errorf("building is required"))
	}
	el.Add(validateVec("position", z.Position))
	if z.Radius < 0 {
		el.Add(fmt.Errorf("radius must not be negative"))
	}

	return el.Err()
}

// Course is a speedrun: a trigger zone to start from and rings to collect.
type Course struct {
	Name          string       `json:"name"`
	Trigger       mgl64.Vec3   `json:"trigger"`
	TriggerRadius float64      `json:"trigger_radius,omitempty"`
	TriggerBuffer float64      `json:"trigger_buffer,omitempty"`
	Rings         []mgl64.Vec3 `json:"rings"`
	RingRadius    float64      `json:"ring_radius,omitempty"`
}

// Validate satisfies storage.ValidatingSpec.
func (c *Course) Validate() error {
	el := errors.NewErrorList()

	if c.Name == "" {
		el.Add(fmt.Errorf("name is required"))
	}
	el.Add(validateVec("trigger", c.Trigger))
	if len(c.Rings) == 0 {
		el.Add(fmt.Errorf("at least one ring is required"))
	}
	for i, r := range c.Rings {
		el.Add(validateVec(fmt.Sprintf("ring %d", i), r))
	}
	if c.TriggerRadius < 0 || c.TriggerBuffer < 0 || c.RingRadius < 0 {
		el.Add(fmt.Errorf("radii must not be negative"))
	}

	return el.Err()
}

// RingID names the i-th ring of the course.
func (c *Course) RingID(i int) string {
	return fmt.Sprintf("ring-%d", i)
}

func (c *Course) triggerRadius() float64 {
	if c.TriggerRadius > 0 {
		return c.TriggerRadius
	}
	return DefaultTriggerRadius
}

func (c *Course) triggerBuffer() float64 {
	if c.TriggerBuffer > 0 {
		return c.TriggerBuffer
	}
	return DefaultTriggerBuffer
}

func (c *Course) ringRadius() float64 {
	if c.RingRadius > 0 {
		return c.RingRadius
	}
	return DefaultRingRadius
}

func validateVec(name string, v mgl64.Vec3) error {
	for _, f := range v {
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return fmt.Errorf("%s must be finite", name)
		}
	}
	return nil
}

// Dictionary holds the authored world content.
type Dictionary struct {
	Collectibles storage.Storer[*Collectible]
	ParkingZones storage.Storer[*ParkingZone]
	Courses      storage.Storer[*Course]
}

// Course looks up a course by id.
func (d *Dictionary) Course(id storage.Identifier) (*Course, error) {
	if d.Courses == nil {
		return nil, fmt.Errorf("%w: %s", ErrCourseNotFound, id)
	}
	c, ok := d.Courses.Get(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrCourseNotFound, id)
	}
	return c, nil
}

// parkingZones returns the zones in a stable order so the first match is
// deterministic.
func (d *Dictionary) parkingZones() []parkingEntry {
	if d.ParkingZones == nil {
		return nil
	}

	all := d.ParkingZones.GetAll()
	ids := make([]storage.Identifier, 0, len(all))
	for id := range all {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	out := make([]parkingEntry, 0, len(ids))
	for _, id := range ids {
		out = append(out, parkingEntry{id: id, zone: all[id]})
	}
	return out
}

type parkingEntry struct {
	id   storage.Identifier
	zone *ParkingZone
}

func (d *Dictionary) collectibles() map[storage.Identifier]*Collectible {
	if d.Collectibles == nil {
		return nil
	}
	return d.Collectibles.GetAll()
}
