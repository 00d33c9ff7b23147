package player

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/pixil98/go-drive/internal/display"
	"github.com/pixil98/go-drive/internal/game"
	"github.com/pixil98/go-drive/internal/input"
	"github.com/pixil98/go-drive/internal/leaderboard"
)

const commandHelp = "Hold a key with +key and let go with -key, for example '+w' to " +
	"drive forward and '-w' to stop. A key on its own is pressed for a single frame. " +
	"Several keys can be given on one line: '+w +shift'. Arrow keys followed by enter " +
	"tap the matching direction. Other commands: " +
	"'initials ABC' enters your speedrun initials, 'top [count]' shows the leaderboard, " +
	"'status' shows your vehicle and progress, 'watch' toggles live vehicle updates " +
	"and 'quit' leaves."

func helpText(b input.Bindings) string {
	keys := map[input.Action][]string{}
	for key, act := range b {
		keys[act] = append(keys[act], key)
	}

	actions := make([]input.Action, 0, len(keys))
	for act := range keys {
		actions = append(actions, act)
	}
	slices.Sort(actions)

	rows := [][]string{{"Action", "Keys"}}
	for _, act := range actions {
		ks := keys[act]
		slices.Sort(ks)
		rows = append(rows, []string{act.String(), strings.Join(ks, ", ")})
	}

	return display.Wrap(commandHelp) + "\n\n" + display.Table(rows)
}

func renderLeaderboard(entries []leaderboard.Entry) string {
	if len(entries) == 0 {
		return "No times have been posted yet."
	}

	rows := [][]string{{"#", "Name", "Time"}}
	for i, e := range entries {
		rows = append(rows, []string{strconv.Itoa(i + 1), e.Nickname, leaderboard.FormatTime(e.SpeedRunTime)})
	}
	return strings.TrimSuffix(display.Table(rows), "\n")
}

func renderStatus(st game.Status) string {
	v := st.Vehicle

	engine := "off"
	if v.EngineOn {
		engine = "on"
	}
	parked := "-"
	if v.ParkedAt != "" {
		parked = display.Capitalize(v.ParkedAt)
	}

	rows := [][]string{
		{"Engine", engine},
		{"Speed", fmt.Sprintf("%.1f", v.Speed)},
		{"Position", fmt.Sprintf("%.1f, %.1f", v.Position.X(), v.Position.Z())},
		{"Parked", parked},
		{"Speedrun", strings.ReplaceAll(st.Run.Phase, "_", " ")},
		{"Collected", strconv.Itoa(len(st.Progress.Collectibles))},
		{"Visited", listOrDash(st.Progress.VisitedBuildings)},
		{"Achievements", listOrDash(st.Progress.Achievements)},
	}
	return strings.TrimSuffix(display.Table(rows), "\n")
}

func listOrDash(items []string) string {
	if len(items) == 0 {
		return "-"
	}
	return strings.Join(items, ", ")
}
