package leaderboard

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"
)

// MemoryBoard is an in-process Board.
type MemoryBoard struct {
	mu      sync.Mutex
	now     func() time.Time
	nextID  uint
	entries map[string]*Entry
}

type MemoryBoardOpt func(*MemoryBoard)

// WithClock overrides the submission timestamp source.
func WithClock(now func() time.Time) MemoryBoardOpt {
	return func(b *MemoryBoard) {
		b.now = now
	}
}

func NewMemoryBoard(opts ...MemoryBoardOpt) *MemoryBoard {
	b := &MemoryBoard{
		now:     time.Now,
		entries: map[string]*Entry{},
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

func (b *MemoryBoard) SubmitScore(_ context.Context, s Submission) (Result, error) {
	if err := s.Validate(); err != nil {
		return rejected(err.Error()), nil
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	e, ok := b.entries[s.VisitorID]
	if ok && e.SpeedRunTime <= s.SpeedRunTime {
		return notImproved(e.SpeedRunTime), nil
	}
	if !ok {
		b.nextID++
		e = &Entry{ID: b.nextID, VisitorID: s.VisitorID}
		b.entries[s.VisitorID] = e
	}
	e.Nickname = strings.TrimSpace(s.Nickname)
	e.SpeedRunTime = s.SpeedRunTime
	e.CompletionPercent = s.CompletionPercent
	e.SubmittedAt = b.now()

	faster := 0
	for _, other := range b.entries {
		if other.SpeedRunTime < s.SpeedRunTime {
			faster++
		}
	}
	return accepted(faster + 1), nil
}

func (b *MemoryBoard) TopScores(_ context.Context, limit int) ([]Entry, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]Entry, 0, len(b.entries))
	for _, e := range b.entries {
		out = append(out, *e)
	}
	slices.SortFunc(out, compareEntries)

	if n := normalizeLimit(limit); len(out) > n {
		out = out[:n]
	}
	return out, nil
}

func compareEntries(a, b Entry) int {
	switch {
	case a.SpeedRunTime != b.SpeedRunTime:
		if a.SpeedRunTime < b.SpeedRunTime {
			return -1
		}
		return 1
	case !a.SubmittedAt.Equal(b.SubmittedAt):
		if a.SubmittedAt.Before(b.SubmittedAt) {
			return -1
		}
		return 1
	case a.ID < b.ID:
		return -1
	case a.ID > b.ID:
		return 1
	default:
		return 0
	}
}
