package input

import (
	"fmt"
	"strings"
)

// Action is what a bound key does. Axis actions are held while the key is down,
// command actions fire once per press.
type Action int

const (
	ActionNone Action = iota
	ActionForward
	ActionBackward
	ActionLeft
	ActionRight
	ActionBoost
	ActionHonk
	ActionEngine
	ActionBegin
	ActionConfirm
	ActionCancel
)

var actionNames = map[Action]string{
	ActionForward:  "forward",
	ActionBackward: "backward",
	ActionLeft:     "left",
	ActionRight:    "right",
	ActionBoost:    "boost",
	ActionHonk:     "honk",
	ActionEngine:   "engine",
	ActionBegin:    "begin",
	ActionConfirm:  "confirm",
	ActionCancel:   "cancel",
}

func (a Action) String() string {
	if n, ok := actionNames[a]; ok {
		return n
	}
	return "none"
}

func (a *Action) UnmarshalText(text []byte) error {
	name := strings.ToLower(string(text))
	for act, n := range actionNames {
		if n == name {
			*a = act
			return nil
		}
	}
	return fmt.Errorf("unknown action: %s", text)
}

func (a Action) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// Command returns the one-shot command fired by this action, if any. Honk is
// both held and a command so the horn fires once per press.
func (a Action) Command() (Command, bool) {
	switch a {
	case ActionEngine:
		return CommandEngine, true
	case ActionHonk:
		return CommandHonk, true
	case ActionBegin:
		return CommandBegin, true
	case ActionConfirm:
		return CommandConfirm, true
	case ActionCancel:
		return CommandCancel, true
	default:
		return CommandNone, false
	}
}

// Command is a one-shot request produced by a toggle-type key.
type Command int

const (
	CommandNone Command = iota
	CommandEngine
	CommandHonk
	CommandBegin
	CommandConfirm
	CommandCancel
)

func (c Command) String() string {
	switch c {
	case CommandEngine:
		return "engine"
	case CommandHonk:
		return "honk"
	case CommandBegin:
		return "begin"
	case CommandConfirm:
		return "confirm"
	case CommandCancel:
		return "cancel"
	default:
		return "none"
	}
}
