// Package latch provides the one-shot primitives shared by per-frame code:
// a rising-edge detector and a resettable once-latch.
package latch

// Edge fires when a boolean condition goes from false to true. It is re-armed
// only after the condition has been observed false again.
type Edge struct {
	set bool
}

// Update samples the condition and reports whether this sample is a rising edge.
func (e *Edge) Update(cond bool) bool {
	if !cond {
		e.set = false
		return false
	}
	if e.set {
		return false
	}
	e.set = true
	return true
}

// Set reports whether the edge has fired and not yet been re-armed.
func (e *Edge) Set() bool {
	return e.set
}

// Clear re-arms the edge without sampling a false condition.
func (e *Edge) Clear() {
	e.set = false
}

// Once allows an action to happen a single time until Reset.
type Once struct {
	done bool
}

// Try returns true the first time it is called after construction or Reset.
func (o *Once) Try() bool {
	if o.done {
		return false
	}
	o.done = true
	return true
}

// Done reports whether Try has already succeeded.
func (o *Once) Done() bool {
	return o.done
}

func (o *Once) Reset() {
	o.done = false
}
