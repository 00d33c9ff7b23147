package vehicle

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/pixil98/go-drive/internal/input"
	"github.com/pixil98/go-testutil"
)

type fakeBody struct {
	pos mgl64.Vec3
	ok  bool
	vel mgl64.Vec3
	yaw float64
}

func (b *fakeBody) Position() (mgl64.Vec3, bool) { return b.pos, b.ok }
func (b *fakeBody) Velocity() mgl64.Vec3 { return b.vel }
func (b *fakeBody) SetVelocity(v mgl64.Vec3) { b.vel = v }
func (b *fakeBody) Rotation() float64 { return b.yaw }
func (b *fakeBody) SetRotation(yaw float64) { b.yaw = yaw }

func perFrameTuning() Tuning {
	t := DefaultTuning()
	t.SmoothingMode = SmoothingPerFrame
	return t
}

func approx(t *testing.T, name string, got, exp float64) {
	t.Helper()
	if math.Abs(got-exp) > 1e-9 {
		t.Errorf("%s = %v, expected %v", name, got, exp)
	}
}

func TestController_TargetSpeed(t *testing.T) {
	tun := perFrameTuning()

	tests := map[string]struct {
		controls input.ControlState
		engineOn bool
		exp      float64
	}{
		"engine off ignores throttle": {
			controls: input.ControlState{Forward: true, Boost: true},
			engineOn: false,
			exp:      0,
		},
		"forward": {
			controls: input.ControlState{Forward: true},
			engineOn: true,
			exp:      tun.MoveSpeed * tun.Smoothing,
		},
		"boosted forward": {
			controls: input.ControlState{Forward: true, Boost: true},
			engineOn: true,
			exp:      tun.MoveSpeed * tun.BoostMultiplier * tun.Smoothing,
		},
		"reverse is never boosted": {
			controls: input.ControlState{Backward: true, Boost: true},
			engineOn: true,
			exp:      -tun.ReverseSpeed * tun.Smoothing,
		},
		"forward wins over backward": {
			controls: input.ControlState{Forward: true, Backward: true},
			engineOn: true,
			exp:      tun.MoveSpeed * tun.Smoothing,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			body := &fakeBody{ok: true}
			c := NewController(body, tun, nil)

			f := c.Step(1.0/60, tt.controls, tt.engineOn)
			approx(t, "speed", f.Speed, tt.exp)
		})
	}
}

func TestController_SpeedConverges(t *testing.T) {
	body := &fakeBody{ok: true}
	c := NewController(body, perFrameTuning(), nil)

	for i := 0; i < 300; i++ {
		c.Step(1.0/60, input.ControlState{Forward: true}, true)
	}
	if math.Abs(c.Speed()-15) > 1e-6 {
		t.Errorf("speed = %v, expected to converge to 15", c.Speed())
	}
}

func TestController_TurningRequiresMotion(t *testing.T) {
	body := &fakeBody{ok: true}
	c := NewController(body, perFrameTuning(), nil)

	for i := 0; i < 10; i++ {
		c.Step(0.1, input.ControlState{Left: true}, true)
	}
	testutil.AssertEqual(t, "heading", c.Heading(), 0.0)

	// Below the turn threshold still does not steer.
	c.SetSpeed(0.4)
	c.Step(0.1, input.ControlState{Left: true}, false)
	testutil.AssertEqual(t, "heading below threshold", c.Heading(), 0.0)
}

func TestController_TurnRateScalesWithSpeed(t *testing.T) {
	tun := perFrameTuning()

	tests := map[string]struct {
		start    float64
		controls input.ControlState
	}{
		"left while moving forward":  {start: 7.5, controls: input.ControlState{Left: true}},
		"right while moving forward": {start: 7.5, controls: input.ControlState{Right: true}},
		"left while reversing":       {start: -5, controls: input.ControlState{Left: true}},
		"both held cancel":           {start: 7.5, controls: input.ControlState{Left: true, Right: true}},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			body := &fakeBody{ok: true}
			c := NewController(body, tun, nil)
			c.SetSpeed(tt.start)

			c.Step(0.1, tt.controls, false)

			speed := tt.start * (1 - tun.Smoothing)
			steer := tt.controls.Steer()
			if speed < 0 {
				steer = -steer
			}
			exp := tun.TurnSpeed * math.Abs(speed) / tun.MoveSpeed * 0.1 * steer
			approx(t, "heading", c.Heading(), exp)
		})
	}
}

func TestController_VelocityFollowsHeading(t *testing.T) {
	body := &fakeBody{ok: true, vel: mgl64.Vec3{0, -3, 0}}
	c := NewController(body, perFrameTuning(), nil)
	c.SetSpeed(10)

	c.Step(0.1, input.ControlState{}, false)

	// heading 0 faces -z
	approx(t, "vx", body.vel.X(), 0)
	approx(t, "vy", body.vel.Y(), -3)
	approx(t, "vz", body.vel.Z(), -9)
}

func TestController_RetainsLastKnownPosition(t *testing.T) {
	body := &fakeBody{ok: true, pos: mgl64.Vec3{4, 0, 5}}
	c := NewController(body, perFrameTuning(), nil)
	c.Step(0.1, input.ControlState{}, true)

	body.ok = false
	body.pos = mgl64.Vec3{}
	f := c.Step(0.1, input.ControlState{}, true)

	testutil.AssertEqual(t, "position", f.Position, mgl64.Vec3{4, 0, 5})
}

func TestController_Parking(t *testing.T) {
	zones := []ParkingZone{
		{ID: "garage", Center: mgl64.Vec3{0, 0, 0}},
		{ID: "shop", Center: mgl64.Vec3{50, 0, 0}, Radius: 2},
	}

	tests := map[string]struct {
		pos       mgl64.Vec3
		speed     float64
		expParked string
	}{
		"stationary in default radius": {pos: mgl64.Vec3{3, 0, 0}, expParked: "garage"},
		"stationary in custom radius":  {pos: mgl64.Vec3{51, 0, 0}, expParked: "shop"},
		"outside custom radius":        {pos: mgl64.Vec3{53, 0, 0}, expParked: ""},
		"moving is not parked":         {pos: mgl64.Vec3{0, 0, 0}, speed: 10, expParked: ""},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			body := &fakeBody{ok: true, pos: tt.pos}
			c := NewController(body, perFrameTuning(), zones)
			c.SetSpeed(tt.speed)

			f := c.Step(0.01, input.ControlState{Forward: tt.speed > 0}, tt.speed > 0)
			testutil.AssertEqual(t, "parked", f.ParkedAt, tt.expParked)
			testutil.AssertEqual(t, "changed", f.ParkedChanged, tt.expParked != "")
		})
	}
}

func TestController_ParkedChangedOnlyOnTransition(t *testing.T) {
	body := &fakeBody{ok: true}
	c := NewController(body, perFrameTuning(), []ParkingZone{{ID: "garage"}})

	f := c.Step(0.1, input.ControlState{}, false)
	testutil.AssertEqual(t, "first", f.ParkedChanged, true)
	f = c.Step(0.1, input.ControlState{}, false)
	testutil.AssertEqual(t, "second", f.ParkedChanged, false)
	testutil.AssertEqual(t, "still parked", f.ParkedAt, "garage")
}

func TestTuning_TimeBasedMatchesPerFrameAtReferenceRate(t *testing.T) {
	tun := DefaultTuning()
	approx(t, "alpha", tun.smoothingAlpha(1/tun.ReferenceFrameRate), tun.Smoothing)

	// Two half frames close the same gap as one full frame.
	half := tun.smoothingAlpha(0.5 / tun.ReferenceFrameRate)
	approx(t, "two halves", 1-(1-half)*(1-half), tun.Smoothing)
}

func TestTuning_Validate(t *testing.T) {
	if err := DefaultTuning().Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	bad := DefaultTuning()
	bad.ReverseSpeed = bad.MoveSpeed + 1
	bad.Smoothing = 0
	err := bad.Validate()
	testutil.AssertErrorContains(t, err, "reverse_speed")
	testutil.AssertErrorContains(t, err, "smoothing")
}

func TestForward(t *testing.T) {
	f := Forward(math.Pi / 2)
	approx(t, "x", f.X(), -1)
	approx(t, "z", f.Y(), 0)
}
