// Package input turns raw key transitions into a held ControlState and a
// queue of one-shot commands.
//
// A Sampler is confined to the simulation goroutine: the session loop hands it
// key events through the world, and the frame tick is its only reader.
package input

import "strings"

// Sampler is the single writer of a player's ControlState.
type Sampler struct {
	bindings Bindings
	state    ControlState
	pending  []Command

	// keys held per action so releasing one of two keys bound to the same
	// action does not release the axis
	held map[Action]map[string]struct{}
}

func NewSampler(b Bindings) *Sampler {
	if b == nil {
		b = DefaultBindings()
	}
	return &Sampler{
		bindings: b,
		held:     map[Action]map[string]struct{}{},
	}
}

// Press records a key-down transition. Unknown keys are ignored. Repeated
// presses of a held key do not re-fire its command.
func (s *Sampler) Press(key string) bool {
	key = strings.ToLower(key)
	act, ok := s.bindings.Lookup(key)
	if !ok {
		return false
	}

	keys, ok := s.held[act]
	if !ok {
		keys = map[string]struct{}{}
		s.held[act] = keys
	}
	if _, down := keys[key]; down {
		return true
	}
	wasHeld := len(keys) > 0
	keys[key] = struct{}{}

	s.setAxis(act, true)
	if cmd, ok := act.Command(); ok && !wasHeld {
		s.pending = append(s.pending, cmd)
	}
	return true
}

// Release records a key-up transition.
func (s *Sampler) Release(key string) bool {
	key = strings.ToLower(key)
	act, ok := s.bindings.Lookup(key)
	if !ok {
		return false
	}

	keys := s.held[act]
	delete(keys, key)
	if len(keys) == 0 {
		s.setAxis(act, false)
	}
	return true
}

// ReleaseAll clears every held key, used when a connection drops.
func (s *Sampler) ReleaseAll() {
	s.held = map[Action]map[string]struct{}{}
	s.state = ControlState{}
}

// Snapshot returns a copy of the held controls.
func (s *Sampler) Snapshot() ControlState {
	return s.state
}

// Drain returns and clears the commands queued since the last call.
func (s *Sampler) Drain() []Command {
	if len(s.pending) == 0 {
		return nil
	}
	cmds := s.pending
	s.pending = nil
	return cmds
}

func (s *Sampler) setAxis(act Action, down bool) {
	switch act {
	case ActionForward:
		s.state.Forward = down
	case ActionBackward:
		s.state.Backward = down
	case ActionLeft:
		s.state.Left = down
	case ActionRight:
		s.state.Right = down
	case ActionBoost:
		s.state.Boost = down
	case ActionHonk:
		s.state.Honk = down
	}
}
