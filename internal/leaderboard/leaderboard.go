// Package leaderboard stores the best speedrun time per visitor and ranks
// submissions against it.
//
// A visitor has at most one entry. An entry is only replaced by a strictly
// faster time, and the rank of a time is one more than the number of stored
// entries that are strictly faster.
package leaderboard

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/pixil98/go-errors"
)

const (
	DefaultLimit      = 10
	MinNicknameLength = 1
	MaxNicknameLength = 20
)

// Submission is a finished run offered to the board.
type Submission struct {
	VisitorID         string  `json:"visitorId"`
	Nickname          string  `json:"nickname"`
	SpeedRunTime      int64   `json:"speedRunTime"` // milliseconds
	CompletionPercent float64 `json:"completionPercent"`
}

// Validate checks the submission without touching any stored state.
func (s Submission) Validate() error {
	el := errors.NewErrorList()

	if s.VisitorID == "" {
		el.Add(fmt.Errorf("visitor id is required"))
	}
	if n := utf8.RuneCountInString(strings.TrimSpace(s.Nickname)); n < MinNicknameLength || n > MaxNicknameLength {
		el.Add(fmt.Errorf("nickname must be between %d and %d characters", MinNicknameLength, MaxNicknameLength))
	}
	if s.SpeedRunTime <= 0 {
		el.Add(fmt.Errorf("time must be positive"))
	}
	if s.CompletionPercent < 100 {
		el.Add(fmt.Errorf("all items must be collected to submit a time"))
	}

	return el.Err()
}

// Result is the outcome of a submission. Rank is only set on success.
type Result struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Rank    *int   `json:"rank,omitempty"`
}

func rejected(msg string) Result {
	return Result{Success: false, Message: msg}
}

func accepted(rank int) Result {
	return Result{
		Success: true,
		Message: fmt.Sprintf("New best time! You are ranked #%d.", rank),
		Rank:    &rank,
	}
}

func notImproved(best int64) Result {
	return rejected(fmt.Sprintf("Your best time of %s is already faster.", FormatTime(best)))
}

// Entry is a stored best time.
type Entry struct {
	ID                uint      `json:"id"`
	VisitorID         string    `json:"-"`
	Nickname          string    `json:"nickname"`
	SpeedRunTime      int64     `json:"speedRunTime"`
	CompletionPercent float64   `json:"completionPercent"`
	SubmittedAt       time.Time `json:"submittedAt"`
}

// Board is a leaderboard backend.
type Board interface {
	// SubmitScore validates and records a run. Validation and "not faster"
	// outcomes are reported in the Result; the error is reserved for
	// storage failures.
	SubmitScore(ctx context.Context, s Submission) (Result, error)

	// TopScores returns up to limit entries, fastest first. A limit <= 0
	// means DefaultLimit.
	TopScores(ctx context.Context, limit int) ([]Entry, error)
}

// FormatTime renders milliseconds as m:ss.mmm.
func FormatTime(ms int64) string {
	if ms < 0 {
		ms = 0
	}
	d := time.Duration(ms) * time.Millisecond
	m := int64(d / time.Minute)
	s := int64((d % time.Minute) / time.Second)
	rem := ms % 1000
	return fmt.Sprintf("%d:%02d.%03d", m, s, rem)
}

func normalizeLimit(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	return limit
}
