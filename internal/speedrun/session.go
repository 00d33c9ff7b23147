// Package speedrun runs the timed challenge: zone entry, initials, countdown,
// the run itself and the submission of the final time.
//
// A Session has a single writer, the frame loop that owns the player. The
// only work done elsewhere is the leaderboard call, whose result is handed
// back through a channel and applied by Poll.
package speedrun

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"time"

	"github.com/pixil98/go-drive/internal/latch"
	"github.com/pixil98/go-drive/internal/leaderboard"
)

const (
	DefaultCountdownFrom     = 3
	DefaultCountdownInterval = time.Second
	DefaultGoDelay           = 500 * time.Millisecond
	DefaultSubmitTimeout     = 10 * time.Second
)

// Config holds the timing and size of a course.
type Config struct {
	TotalItems        int
	CountdownFrom     int
	CountdownInterval time.Duration
	GoDelay           time.Duration
	SubmitTimeout     time.Duration
}

func (c Config) withDefaults() Config {
	if c.CountdownFrom <= 0 {
		c.CountdownFrom = DefaultCountdownFrom
	}
	if c.CountdownInterval <= 0 {
		c.CountdownInterval = DefaultCountdownInterval
	}
	if c.GoDelay <= 0 {
		c.GoDelay = DefaultGoDelay
	}
	if c.SubmitTimeout <= 0 {
		c.SubmitTimeout = DefaultSubmitTimeout
	}
	return c
}

type submitResult struct {
	generation uint64
	result     leaderboard.Result
	err        error
}

// Session is one player's speedrun state.
type Session struct {
	cfg       Config
	now       func() time.Time
	permanent func() map[string]struct{}

	phase      Phase
	initials   string
	deadline   time.Time
	start      time.Time
	end        time.Time
	finalTime  time.Duration
	finalFixed bool

	collected map[string]struct{}
	saved     map[string]struct{}

	rank    *int
	message string

	submission latch.Once
	generation uint64
	results    chan submitResult
}

type SessionOpt func(*Session)

// WithClock overrides the time source used for run timing.
func WithClock(now func() time.Time) SessionOpt {
	return func(s *Session) {
		s.now = now
	}
}

// WithPermanent sets the source of the player's permanent collectible set,
// read once when a run starts.
func WithPermanent(f func() map[string]struct{}) SessionOpt {
	return func(s *Session) {
		s.permanent = f
	}
}

func NewSession(cfg Config, opts ...SessionOpt) *Session {
	s := &Session{
		cfg:       cfg.withDefaults(),
		now:       time.Now,
		permanent: func() map[string]struct{} { return nil },
		phase:     Idle{},
		collected: map[string]struct{}{},
		results:   make(chan submitResult, 1),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Phase returns the current phase.
func (s *Session) Phase() Phase {
	return s.phase
}

// Config returns the session timing and course size.
func (s *Session) Config() Config {
	return s.cfg
}

// Initials returns the sanitized initials entered so far.
func (s *Session) Initials() string {
	return s.initials
}

// EnterZone moves Idle to Ready.
func (s *Session) EnterZone() bool {
	if _, ok := s.phase.(Idle); !ok {
		return false
	}
	s.phase = Ready{}
	return true
}

// ExitZone moves Ready back to Idle. Leaving the zone in any other phase has
// no effect.
func (s *Session) ExitZone() bool {
	if _, ok := s.phase.(Ready); !ok {
		return false
	}
	s.phase = Idle{}
	return true
}

// Begin starts initials entry. The vehicle must be stationary.
func (s *Session) Begin(stationary bool) bool {
	if _, ok := s.phase.(Ready); !ok || !stationary {
		return false
	}
	s.initials = ""
	s.phase = EnteringInitials{}
	return true
}

// SetInitials replaces the initials with the sanitized form of raw.
func (s *Session) SetInitials(raw string) bool {
	if _, ok := s.phase.(EnteringInitials); !ok {
		return false
	}
	s.initials = Sanitize(raw)
	return true
}

// SubmitInitials starts the countdown. Empty initials block the transition.
func (s *Session) SubmitInitials() bool {
	if _, ok := s.phase.(EnteringInitials); !ok || s.initials == "" {
		return false
	}
	s.phase = Countdown{Remaining: s.cfg.CountdownFrom}
	s.deadline = s.now().Add(s.cfg.CountdownInterval)
	return true
}

// Cancel abandons whatever is in progress and returns to Idle. It has no
// effect before initials entry has begun.
func (s *Session) Cancel() bool {
	switch s.phase.(type) {
	case Idle, Ready:
		return false
	}
	s.Reset()
	return true
}

// Acknowledge dismisses a finished run. A run that is still waiting on its
// submission can be dismissed early.
func (s *Session) Acknowledge() bool {
	switch s.phase.(type) {
	case Completed, Submitted:
		s.Reset()
		return true
	}
	return false
}

// Tick advances the countdown and the GO delay. It makes at most one
// transition per call.
func (s *Session) Tick(now time.Time) bool {
	switch p := s.phase.(type) {
	case Countdown:
		if now.Before(s.deadline) {
			return false
		}
		if p.Remaining > 1 {
			s.phase = Countdown{Remaining: p.Remaining - 1}
			s.deadline = s.deadline.Add(s.cfg.CountdownInterval)
			return true
		}
		s.phase = Go{}
		s.deadline = now.Add(s.cfg.GoDelay)
		return true

	case Go:
		if now.Before(s.deadline) {
			return false
		}
		s.startRun(now)
		return true
	}
	return false
}

func (s *Session) startRun(now time.Time) {
	s.saved = maps.Clone(s.permanent())
	if s.saved == nil {
		s.saved = map[string]struct{}{}
	}
	s.collected = map[string]struct{}{}
	s.start = now
	s.phase = Running{}
}

// Collect records a run item. It only counts while running and reports
// whether id was new.
func (s *Session) Collect(id string) bool {
	if _, ok := s.phase.(Running); !ok {
		return false
	}
	if _, ok := s.collected[id]; ok {
		return false
	}
	s.collected[id] = struct{}{}
	return true
}

// Collected reports whether id has been collected in this run.
func (s *Session) Collected(id string) bool {
	_, ok := s.collected[id]
	return ok
}

// CollectedCount is the number of run items collected.
func (s *Session) CollectedCount() int {
	return len(s.collected)
}

// CompleteRun fixes the final time. It only applies while running, and the
// final time is never recomputed.
func (s *Session) CompleteRun() bool {
	if _, ok := s.phase.(Running); !ok || s.start.IsZero() || s.finalFixed {
		return false
	}
	s.end = s.now()
	s.finalTime = s.end.Sub(s.start)
	s.finalFixed = true
	s.phase = Completed{}
	return true
}

// FinalTime returns the fixed run time once the run is complete.
func (s *Session) FinalTime() (time.Duration, bool) {
	return s.finalTime, s.finalFixed
}

// CompletionPercent is the share of course items collected this run.
func (s *Session) CompletionPercent() float64 {
	if s.cfg.TotalItems <= 0 {
		return 100
	}
	pct := float64(len(s.collected)) / float64(s.cfg.TotalItems) * 100
	if pct > 100 {
		return 100
	}
	return pct
}

// Submit sends the final time to board. It fires at most once per completed
// run; the outcome is applied later by Poll.
func (s *Session) Submit(ctx context.Context, board leaderboard.Board, visitorID string) bool {
	if _, ok := s.phase.(Completed); !ok || !s.finalFixed {
		return false
	}
	if !s.submission.Try() {
		return false
	}

	sub := leaderboard.Submission{
		VisitorID:         visitorID,
		Nickname:          s.initials,
		SpeedRunTime:      s.finalTime.Milliseconds(),
		CompletionPercent: s.CompletionPercent(),
	}
	gen := s.generation
	timeout := s.cfg.SubmitTimeout
	results := s.results

	go func() {
		subCtx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()

		res, err := board.SubmitScore(subCtx, sub)
		if err != nil {
			slog.WarnContext(ctx, "score submission failed", "visitor", visitorID, "error", err)
		}

		select {
		case results <- submitResult{generation: gen, result: res, err: err}:
		case <-ctx.Done():
		}
	}()
	return true
}

// Poll applies a finished submission, if any. Results from a run that has
// since been reset are dropped.
func (s *Session) Poll() bool {
	select {
	case r := <-s.results:
		if r.generation != s.generation {
			return false
		}
		if _, ok := s.phase.(Completed); !ok {
			return false
		}
		s.applyResult(r)
		s.phase = Submitted{}
		return true
	default:
		return false
	}
}

func (s *Session) applyResult(r submitResult) {
	switch {
	case r.err != nil:
		failed := 0
		s.rank = &failed
		s.message = fmt.Sprintf("Could not submit your time: %v", r.err)
	case r.result.Success && r.result.Rank != nil:
		rank := *r.result.Rank
		s.rank = &rank
		s.message = r.result.Message
	default:
		s.rank = nil
		s.message = r.result.Message
	}
}

// Rank is the leaderboard rank after submission. Zero means the submission
// failed.
func (s *Session) Rank() (int, bool) {
	if s.rank == nil {
		return 0, false
	}
	return *s.rank, true
}

// Message is the latest submission message.
func (s *Session) Message() string {
	return s.message
}

// Saved returns the permanent collectible set captured at run start.
func (s *Session) Saved() (map[string]struct{}, bool) {
	if s.saved == nil {
		return nil, false
	}
	return maps.Clone(s.saved), true
}

// Reset returns to Idle and discards all run state.
func (s *Session) Reset() {
	s.phase = Idle{}
	s.initials = ""
	s.deadline = time.Time{}
	s.start = time.Time{}
	s.end = time.Time{}
	s.finalTime = 0
	s.finalFixed = false
	s.collected = map[string]struct{}{}
	s.saved = nil
	s.rank = nil
	s.message = ""
	s.submission.Reset()
	s.generation++

	// Drop a result that was already delivered for the abandoned run.
	select {
	case <-s.results:
	default:
	}
}

// View is a read-only copy of the session for display.
type View struct {
	Phase     string        `json:"phase"`
	Countdown int           `json:"countdown,omitempty"`
	Initials  string        `json:"initials,omitempty"`
	Elapsed   time.Duration `json:"elapsed"`
	Collected int           `json:"collected"`
	Total     int           `json:"total"`
	Rank      *int          `json:"rank,omitempty"`
	Message   string        `json:"message,omitempty"`
}

// Snapshot returns the state as seen at now.
func (s *Session) Snapshot(now time.Time) View {
	v := View{
		Phase:     s.phase.Name(),
		Initials:  s.initials,
		Collected: len(s.collected),
		Total:     s.cfg.TotalItems,
		Message:   s.message,
	}
	if c, ok := s.phase.(Countdown); ok {
		v.Countdown = c.Remaining
	}
	switch s.phase.(type) {
	case Running:
		v.Elapsed = now.Sub(s.start)
	case Completed, Submitted:
		v.Elapsed = s.finalTime
	}
	if s.rank != nil {
		rank := *s.rank
		v.Rank = &rank
	}
	return v
}
