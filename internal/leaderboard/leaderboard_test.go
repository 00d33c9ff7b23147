package leaderboard

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/pixil98/go-drive/internal/database"
	"github.com/pixil98/go-testutil"
)

type boardFactory func(t *testing.T) Board

func boards() map[string]boardFactory {
	return map[string]boardFactory{
		"memory": func(*testing.T) Board {
			return NewMemoryBoard()
		},
		"gorm": func(t *testing.T) Board {
			db, err := database.OpenSqlite(context.Background(), filepath.Join(t.TempDir(), "board.db"))
			if err != nil {
				t.Fatalf("opening database: %v", err)
			}
			t.Cleanup(func() { _ = database.Close(db) })

			b, err := NewGormBoard(db)
			if err != nil {
				t.Fatalf("creating board: %v", err)
			}
			return b
		},
	}
}

func submission(visitor string, ms int64) Submission {
	return Submission{
		VisitorID:         visitor,
		Nickname:          "AAA",
		SpeedRunTime:      ms,
		CompletionPercent: 100,
	}
}

func TestSubmission_Validate(t *testing.T) {
	tests := map[string]struct {
		sub    Submission
		expErr string
	}{
		"valid": {
			sub: submission("v1", 1000),
		},
		"incomplete run": {
			sub:    Submission{VisitorID: "v1", Nickname: "AAA", SpeedRunTime: 1000, CompletionPercent: 99.9},
			expErr: "all items must be collected",
		},
		"empty nickname": {
			sub:    Submission{VisitorID: "v1", Nickname: "  ", SpeedRunTime: 1000, CompletionPercent: 100},
			expErr: "nickname must be between 1 and 20",
		},
		"long nickname": {
			sub:    Submission{VisitorID: "v1", Nickname: "ABCDEFGHIJKLMNOPQRSTU", SpeedRunTime: 1000, CompletionPercent: 100},
			expErr: "nickname must be between 1 and 20",
		},
		"zero time": {
			sub:    Submission{VisitorID: "v1", Nickname: "AAA", SpeedRunTime: 0, CompletionPercent: 100},
			expErr: "time must be positive",
		},
		"missing visitor": {
			sub:    Submission{Nickname: "AAA", SpeedRunTime: 10, CompletionPercent: 100},
			expErr: "visitor id is required",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			err := tt.sub.Validate()
			if tt.expErr != "" {
				testutil.AssertErrorContains(t, err, tt.expErr)
				return
			}
			if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestBoard_RejectsWithoutMutation(t *testing.T) {
	for name, factory := range boards() {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			b := factory(t)

			res, err := b.SubmitScore(ctx, submission("v1", 5000))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			testutil.AssertEqual(t, "first success", res.Success, true)

			bad := submission("v1", 1000)
			bad.CompletionPercent = 50
			res, err = b.SubmitScore(ctx, bad)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			testutil.AssertEqual(t, "incomplete success", res.Success, false)
			if res.Rank != nil {
				t.Errorf("expected no rank on rejection, got %d", *res.Rank)
			}

			top, err := b.TopScores(ctx, 0)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			testutil.AssertEqual(t, "entries", len(top), 1)
			testutil.AssertEqual(t, "time", top[0].SpeedRunTime, int64(5000))
		})
	}
}

func TestBoard_OnlyImprovementsReplace(t *testing.T) {
	tests := map[string]struct {
		first      int64
		second     int64
		expSuccess bool
		expStored  int64
	}{
		"faster replaces": {
			first:      5000,
			second:     4000,
			expSuccess: true,
			expStored:  4000,
		},
		"equal is not an improvement": {
			first:      5000,
			second:     5000,
			expSuccess: false,
			expStored:  5000,
		},
		"slower is kept out": {
			first:      5000,
			second:     6000,
			expSuccess: false,
			expStored:  5000,
		},
	}

	for boardName, factory := range boards() {
		for name, tt := range tests {
			t.Run(boardName+"/"+name, func(t *testing.T) {
				ctx := context.Background()
				b := factory(t)

				if _, err := b.SubmitScore(ctx, submission("v1", tt.first)); err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				res, err := b.SubmitScore(ctx, submission("v1", tt.second))
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				testutil.AssertEqual(t, "success", res.Success, tt.expSuccess)

				top, err := b.TopScores(ctx, 10)
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				testutil.AssertEqual(t, "entries", len(top), 1)
				testutil.AssertEqual(t, "stored", top[0].SpeedRunTime, tt.expStored)
			})
		}
	}
}

func TestBoard_Rank(t *testing.T) {
	for name, factory := range boards() {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			b := factory(t)

			for i, ms := range []int64{3000, 1000, 2000, 2000} {
				visitor := string(rune('a' + i))
				if _, err := b.SubmitScore(ctx, submission(visitor, ms)); err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
			}

			res, err := b.SubmitScore(ctx, submission("new", 2500))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			testutil.AssertEqual(t, "success", res.Success, true)
			if res.Rank == nil {
				t.Fatalf("expected a rank")
			}
			testutil.AssertEqual(t, "rank", *res.Rank, 4)

			res, err = b.SubmitScore(ctx, submission("tie", 2000))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			testutil.AssertEqual(t, "tie rank", *res.Rank, 2)
		})
	}
}

func TestBoard_TopScores(t *testing.T) {
	for name, factory := range boards() {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			b := factory(t)

			for i := 0; i < 12; i++ {
				visitor := string(rune('a' + i))
				if _, err := b.SubmitScore(ctx, submission(visitor, int64(12000-i*1000))); err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
			}

			top, err := b.TopScores(ctx, 0)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			testutil.AssertEqual(t, "default limit", len(top), DefaultLimit)
			for i := 1; i < len(top); i++ {
				if top[i-1].SpeedRunTime > top[i].SpeedRunTime {
					t.Errorf("entries out of order at %d: %d > %d", i, top[i-1].SpeedRunTime, top[i].SpeedRunTime)
				}
			}
			testutil.AssertEqual(t, "fastest", top[0].SpeedRunTime, int64(1000))

			top, err = b.TopScores(ctx, 3)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			testutil.AssertEqual(t, "limit", len(top), 3)
		})
	}
}

func TestBoard_ConcurrentSubmissions(t *testing.T) {
	for name, factory := range boards() {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			b := factory(t)

			var wg sync.WaitGroup
			for i := 0; i < 8; i++ {
				wg.Add(1)
				go func(ms int64) {
					defer wg.Done()
					if _, err := b.SubmitScore(ctx, submission("v1", ms)); err != nil {
						t.Errorf("unexpected error: %v", err)
					}
				}(int64(1000 + i*100))
			}
			wg.Wait()

			top, err := b.TopScores(ctx, 10)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			testutil.AssertEqual(t, "entries", len(top), 1)
			testutil.AssertEqual(t, "best kept", top[0].SpeedRunTime, int64(1000))
		})
	}
}

func TestMemoryBoard_TieOrder(t *testing.T) {
	now := time.Unix(0, 0)
	b := NewMemoryBoard(WithClock(func() time.Time {
		now = now.Add(time.Second)
		return now
	}))
	ctx := context.Background()

	for _, v := range []string{"late", "later"} {
		if _, err := b.SubmitScore(ctx, submission(v, 2000)); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	top, err := b.TopScores(ctx, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	testutil.AssertEqual(t, "first", top[0].VisitorID, "late")
	testutil.AssertEqual(t, "second", top[1].VisitorID, "later")
}

func TestFormatTime(t *testing.T) {
	tests := map[string]struct {
		ms  int64
		exp string
	}{
		"zero":        {ms: 0, exp: "0:00.000"},
		"sub second":  {ms: 45, exp: "0:00.045"},
		"over minute": {ms: 83456, exp: "1:23.456"},
		"negative":    {ms: -5, exp: "0:00.000"},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			testutil.AssertEqual(t, "formatted", FormatTime(tt.ms), tt.exp)
		})
	}
}
