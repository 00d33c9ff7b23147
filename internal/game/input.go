package game

import "strings"

// InputKind is the kind of a queued player input.
type InputKind int

const (
	InputPress InputKind = iota
	InputRelease
	InputTap
	InputInitials
)

// InputEvent is a player input waiting for the next frame. Inputs are only
// applied on the frame thread.
type InputEvent struct {
	Kind InputKind
	Key  string
	Text string
}

func Press(key string) InputEvent {
	return InputEvent{Kind: InputPress, Key: strings.ToLower(key)}
}

func Release(key string) InputEvent {
	return InputEvent{Kind: InputRelease, Key: strings.ToLower(key)}
}

// Tap presses key for a single frame.
func Tap(key string) InputEvent {
	return InputEvent{Kind: InputTap, Key: strings.ToLower(key)}
}

// Initials enters and confirms speedrun initials.
func Initials(text string) InputEvent {
	return InputEvent{Kind: InputInitials, Text: text}
}
