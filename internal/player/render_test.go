package player

import (
	"strings"
	"testing"

	"github.com/pixil98/go-drive/internal/input"
	"github.com/pixil98/go-drive/internal/leaderboard"
	"github.com/pixil98/go-testutil"
)

func TestRenderLeaderboard(t *testing.T) {
	testutil.AssertEqual(t, "empty", renderLeaderboard(nil), "No times have been posted yet.")

	got := renderLeaderboard([]leaderboard.Entry{
		{Nickname: "ABC", SpeedRunTime: 42100},
		{Nickname: "ZZ", SpeedRunTime: 62000},
	})
	exp := "#  Name  Time\n" +
		"1  ABC   0:42.100\n" +
		"2  ZZ    1:02.000"
	testutil.AssertEqual(t, "table", got, exp)
}

func TestHelpText(t *testing.T) {
	got := helpText(input.DefaultBindings())

	for _, exp := range []string{"forward   up, w", "cancel    escape", "'top [count]'"} {
		if !strings.Contains(got, exp) {
			t.Errorf("expected help to contain %q, got:\n%s", exp, got)
		}
	}
}
