package vehicle

import (
	"fmt"
	"math"
	"time"

	"github.com/pixil98/go-errors"
)

// SmoothingMode selects how the speed smoothing factor is applied.
type SmoothingMode int

const (
	// SmoothingTimeBased converts the factor into a rate so convergence depends
	// on elapsed time rather than frame count.
	SmoothingTimeBased SmoothingMode = iota
	// SmoothingPerFrame applies the factor once per frame regardless of delta.
	SmoothingPerFrame
)

func (m *SmoothingMode) UnmarshalText(text []byte) error {
	switch string(text) {
	case "time_based", "":
		*m = SmoothingTimeBased
	case "per_frame":
		*m = SmoothingPerFrame
	default:
		return fmt.Errorf("unknown smoothing mode: %s", text)
	}
	return nil
}

func (m SmoothingMode) MarshalText() ([]byte, error) {
	if m == SmoothingPerFrame {
		return []byte("per_frame"), nil
	}
	return []byte("time_based"), nil
}

// Tuning holds the handling constants of a vehicle.
type Tuning struct {
	MoveSpeed       float64 // units/s at full throttle
	BoostMultiplier float64
	ReverseSpeed    float64 // units/s, never boosted
	TurnSpeed       float64 // rad/s at MoveSpeed
	MinTurnSpeed    float64 // below this the vehicle cannot steer

	Smoothing          float64 // fraction of the speed gap closed per reference frame
	SmoothingMode      SmoothingMode
	ReferenceFrameRate float64 // frames/s the smoothing factor was tuned at

	ParkingSpeedThreshold float64
	ParkingRadius         float64

	PositionPublishInterval time.Duration
	PositionEpsilon         float64
	SpeedPublishInterval    time.Duration
	SpeedEpsilon            float64
}

// DefaultTuning returns the stock handling.
func DefaultTuning() Tuning {
	return Tuning{
		MoveSpeed:       15,
		BoostMultiplier: 1.8,
		ReverseSpeed:    7,
		TurnSpeed:       2.5,
		MinTurnSpeed:    0.5,

		Smoothing:          0.1,
		SmoothingMode:      SmoothingTimeBased,
		ReferenceFrameRate: 60,

		ParkingSpeedThreshold: 0.5,
		ParkingRadius:         6,

		PositionPublishInterval: 100 * time.Millisecond,
		PositionEpsilon:         0.1,
		SpeedPublishInterval:    200 * time.Millisecond,
		SpeedEpsilon:            0.5,
	}
}

func (t Tuning) Validate() error {
	el := errors.NewErrorList()

	if t.MoveSpeed <= 0 {
		el.Add(fmt.Errorf("move_speed must be positive"))
	}
	if t.BoostMultiplier < 1 {
		el.Add(fmt.Errorf("boost_multiplier must be at least 1"))
	}
	if t.ReverseSpeed <= 0 || t.ReverseSpeed >= t.MoveSpeed {
		el.Add(fmt.Errorf("reverse_speed must be positive and slower than move_speed"))
	}
	if t.TurnSpeed <= 0 {
		el.Add(fmt.Errorf("turn_speed must be positive"))
	}
	if t.MinTurnSpeed < 0 {
		el.Add(fmt.Errorf("min_turn_speed must not be negative"))
	}
	if t.Smoothing <= 0 || t.Smoothing > 1 {
		el.Add(fmt.Errorf("smoothing must be in (0, 1]"))
	}
	if t.SmoothingMode == SmoothingTimeBased && t.ReferenceFrameRate <= 0 {
		el.Add(fmt.Errorf("reference_frame_rate must be positive for time based smoothing"))
	}
	if t.ParkingRadius <= 0 {
		el.Add(fmt.Errorf("parking_radius must be positive"))
	}

	return el.Err()
}

// smoothingAlpha is the fraction of the speed gap closed over delta seconds.
func (t Tuning) smoothingAlpha(delta float64) float64 {
	if t.SmoothingMode == SmoothingPerFrame {
		return t.Smoothing
	}
	if t.Smoothing >= 1 {
		return 1
	}
	// Per-frame factor s at rate f is equivalent to 1-exp(-k*dt) with
	// k = -ln(1-s)*f, which matches exactly at dt = 1/f.
	k := -math.Log(1-t.Smoothing) * t.ReferenceFrameRate
	return 1 - math.Exp(-k*delta)
}
