package input

// ControlState is the set of currently held control axes.
type ControlState struct {
	Forward  bool `json:"forward"`
	Backward bool `json:"backward"`
	Left     bool `json:"left"`
	Right    bool `json:"right"`
	Boost    bool `json:"boost"`
	Honk     bool `json:"honk"`
}

// Steer returns +1 for left, -1 for right and 0 when neither or both are held.
func (c ControlState) Steer() float64 {
	switch {
	case c.Left && !c.Right:
		return 1
	case c.Right && !c.Left:
		return -1
	default:
		return 0
	}
}

func (c ControlState) Idle() bool {
	return c == ControlState{}
}
