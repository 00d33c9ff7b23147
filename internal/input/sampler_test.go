package input

import (
	"testing"

	"github.com/pixil98/go-testutil"
)

func TestSampler_PressRelease(t *testing.T) {
	tests := map[string]struct {
		press   []string
		release []string
		exp     ControlState
	}{
		"forward held": {
			press: []string{"w"},
			exp:   ControlState{Forward: true},
		},
		"forward released": {
			press:   []string{"w"},
			release: []string{"w"},
			exp:     ControlState{},
		},
		"two keys same axis, one released": {
			press:   []string{"w", "up"},
			release: []string{"w"},
			exp:     ControlState{Forward: true},
		},
		"case insensitive": {
			press: []string{"SHIFT", "D"},
			exp:   ControlState{Boost: true, Right: true},
		},
		"unknown key ignored": {
			press: []string{"z"},
			exp:   ControlState{},
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			s := NewSampler(nil)
			for _, k := range tt.press {
				s.Press(k)
			}
			for _, k := range tt.release {
				s.Release(k)
			}
			testutil.AssertEqual(t, "state", s.Snapshot(), tt.exp)
		})
	}
}

func TestSampler_CommandsFireOncePerPress(t *testing.T) {
	s := NewSampler(nil)

	s.Press("e")
	s.Press("e") // key repeat
	cmds := s.Drain()
	testutil.AssertEqual(t, "command count", len(cmds), 1)
	testutil.AssertEqual(t, "command", cmds[0], CommandEngine)
	testutil.AssertEqual(t, "drained", len(s.Drain()), 0)

	s.Release("e")
	s.Press("e")
	testutil.AssertEqual(t, "after re-press", len(s.Drain()), 1)
}

func TestSampler_HonkIsHeldAndCommand(t *testing.T) {
	s := NewSampler(nil)

	s.Press("h")
	testutil.AssertEqual(t, "honk held", s.Snapshot().Honk, true)
	cmds := s.Drain()
	testutil.AssertEqual(t, "command count", len(cmds), 1)
	testutil.AssertEqual(t, "command", cmds[0], CommandHonk)

	s.Release("h")
	testutil.AssertEqual(t, "honk released", s.Snapshot().Honk, false)
}

func TestSampler_ReleaseAll(t *testing.T) {
	s := NewSampler(nil)
	s.Press("w")
	s.Press("a")
	s.ReleaseAll()
	testutil.AssertEqual(t, "state", s.Snapshot(), ControlState{})

	// A press after ReleaseAll is a fresh press.
	s.Press("w")
	testutil.AssertEqual(t, "forward", s.Snapshot().Forward, true)
}

func TestControlState_Steer(t *testing.T) {
	tests := map[string]struct {
		state ControlState
		exp   float64
	}{
		"none":  {state: ControlState{}, exp: 0},
		"left":  {state: ControlState{Left: true}, exp: 1},
		"right": {state: ControlState{Right: true}, exp: -1},
		"both":  {state: ControlState{Left: true, Right: true}, exp: 0},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			testutil.AssertEqual(t, "steer", tt.state.Steer(), tt.exp)
		})
	}
}

func TestAction_UnmarshalText(t *testing.T) {
	var a Action
	if err := a.UnmarshalText([]byte("Boost")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	testutil.AssertEqual(t, "action", a, ActionBoost)

	err := a.UnmarshalText([]byte("fly"))
	testutil.AssertErrorContains(t, err, "unknown action")
}

func TestBindings_Merge(t *testing.T) {
	b := DefaultBindings().Merge(Bindings{"I": ActionForward})

	act, ok := b.Lookup("i")
	testutil.AssertEqual(t, "found", ok, true)
	testutil.AssertEqual(t, "action", act, ActionForward)

	act, ok = b.Lookup("w")
	testutil.AssertEqual(t, "default kept", ok, true)
	testutil.AssertEqual(t, "default action", act, ActionForward)
}

func TestBindings_Validate(t *testing.T) {
	err := Bindings{"x": ActionNone}.Validate()
	testutil.AssertErrorContains(t, err, `key "x" is not bound`)

	if err := DefaultBindings().Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}
