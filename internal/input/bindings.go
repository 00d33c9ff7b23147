package input

import (
	"fmt"
	"strings"

	"github.com/pixil98/go-errors"
)

// Bindings maps key names to actions. Key names are case-insensitive.
type Bindings map[string]Action

// DefaultBindings returns the standard keyboard layout.
func DefaultBindings() Bindings {
	return Bindings{
		"w":      ActionForward,
		"up":     ActionForward,
		"s":      ActionBackward,
		"down":   ActionBackward,
		"a":      ActionLeft,
		"left":   ActionLeft,
		"d":      ActionRight,
		"right":  ActionRight,
		"shift":  ActionBoost,
		"h":      ActionHonk,
		"e":      ActionEngine,
		"b":      ActionBegin,
		"enter":  ActionConfirm,
		"escape": ActionCancel,
	}
}

// Lookup returns the action bound to key.
func (b Bindings) Lookup(key string) (Action, bool) {
	act, ok := b[strings.ToLower(key)]
	return act, ok
}

// Merge returns a copy of b with the entries of o layered on top.
func (b Bindings) Merge(o Bindings) Bindings {
	out := make(Bindings, len(b)+len(o))
	for k, v := range b {
		out[strings.ToLower(k)] = v
	}
	for k, v := range o {
		out[strings.ToLower(k)] = v
	}
	return out
}

func (b Bindings) Validate() error {
	el := errors.NewErrorList()

	for k, v := range b {
		if strings.TrimSpace(k) == "" {
			el.Add(fmt.Errorf("binding key must not be empty"))
		}
		if v == ActionNone {
			el.Add(fmt.Errorf("key %q is not bound to an action", k))
		}
	}

	return el.Err()
}
