package command

import (
	"fmt"

	"github.com/pixil98/go-drive/internal/input"
	"github.com/pixil98/go-drive/internal/vehicle"
	"github.com/pixil98/go-errors"
)

// VehicleConfig overrides the stock handling. Unset fields keep their
// defaults.
type VehicleConfig struct {
	MoveSpeed             *float64               `json:"move_speed"`
	BoostMultiplier       *float64               `json:"boost_multiplier"`
	ReverseSpeed          *float64               `json:"reverse_speed"`
	TurnSpeed             *float64               `json:"turn_speed"`
	MinTurnSpeed          *float64               `json:"min_turn_speed"`
	Smoothing             *float64               `json:"smoothing"`
	SmoothingMode         *vehicle.SmoothingMode `json:"smoothing_mode"`
	ParkingSpeedThreshold *float64               `json:"parking_speed_threshold"`
	ParkingRadius         *float64               `json:"parking_radius"`

	PositionPublishInterval string   `json:"position_publish_interval"`
	PositionEpsilon         *float64 `json:"position_epsilon"`
	SpeedPublishInterval    string   `json:"speed_publish_interval"`
	SpeedEpsilon            *float64 `json:"speed_epsilon"`

	// Bindings are layered over the default key layout.
	Bindings input.Bindings `json:"bindings"`
}

func (c *VehicleConfig) validate() error {
	el := errors.NewErrorList()

	t, err := c.Tuning()
	if err != nil {
		el.Add(err)
	} else {
		el.Add(t.Validate())
	}
	el.Add(c.Bindings.Validate())

	return el.Err()
}

func (c *VehicleConfig) Tuning() (vehicle.Tuning, error) {
	t := vehicle.DefaultTuning()

	set(&t.MoveSpeed, c.MoveSpeed)
	set(&t.BoostMultiplier, c.BoostMultiplier)
	set(&t.ReverseSpeed, c.ReverseSpeed)
	set(&t.TurnSpeed, c.TurnSpeed)
	set(&t.MinTurnSpeed, c.MinTurnSpeed)
	set(&t.Smoothing, c.Smoothing)
	set(&t.SmoothingMode, c.SmoothingMode)
	set(&t.ParkingSpeedThreshold, c.ParkingSpeedThreshold)
	set(&t.ParkingRadius, c.ParkingRadius)
	set(&t.PositionEpsilon, c.PositionEpsilon)
	set(&t.SpeedEpsilon, c.SpeedEpsilon)

	d, err := parseOptionalDuration("position_publish_interval", c.PositionPublishInterval)
	if err != nil {
		return vehicle.Tuning{}, err
	}
	if d > 0 {
		t.PositionPublishInterval = d
	}

	d, err = parseOptionalDuration("speed_publish_interval", c.SpeedPublishInterval)
	if err != nil {
		return vehicle.Tuning{}, err
	}
	if d > 0 {
		t.SpeedPublishInterval = d
	}

	if t.PositionEpsilon < 0 || t.SpeedEpsilon < 0 {
		return vehicle.Tuning{}, fmt.Errorf("publish epsilons must not be negative")
	}

	return t, nil
}

func (c *VehicleConfig) KeyBindings() input.Bindings {
	return input.DefaultBindings().Merge(c.Bindings)
}

func set[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}
