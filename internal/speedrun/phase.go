package speedrun

// Phase is one state of a speedrun session. The set of phases is closed.
type Phase interface {
	Name() string
	isPhase()
}

// Idle is the resting phase; nothing is timed or tracked.
type Idle struct{}

// Ready means the player is inside the trigger zone.
type Ready struct{}

// EnteringInitials means the player is typing the initials for the board.
type EnteringInitials struct{}

// Countdown counts down to the start of the run.
type Countdown struct {
	Remaining int
}

// Go is shown between the end of the countdown and the start of the run.
type Go struct{}

// Running is the timed part of the run.
type Running struct{}

// Completed means every item was collected and the time is fixed.
type Completed struct{}

// Submitted means the submission has resolved, successfully or not.
type Submitted struct{}

func (Idle) Name() string             { return "idle" }
func (Ready) Name() string            { return "ready" }
func (EnteringInitials) Name() string { return "entering_initials" }
func (Countdown) Name() string        { return "countdown" }
func (Go) Name() string               { return "go" }
func (Running) Name() string          { return "running" }
func (Completed) Name() string        { return "completed" }
func (Submitted) Name() string        { return "submitted" }

func (Idle) isPhase()             {}
func (Ready) isPhase()            {}
func (EnteringInitials) isPhase() {}
func (Countdown) isPhase()        {}
func (Go) isPhase()               {}
func (Running) isPhase()          {}
func (Completed) isPhase()        {}
func (Submitted) isPhase()        {}
