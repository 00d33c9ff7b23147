package player

import (
	"bytes"
	"fmt"
	"log/slog"
	"maps"
	"math"
	"slices"
	"text/template"
	"time"

	"github.com/Masterminds/sprig/v3"
	"github.com/pixil98/go-drive/internal/display"
	"github.com/pixil98/go-drive/internal/game"
	"github.com/pixil98/go-drive/internal/leaderboard"
	"github.com/pixil98/go-drive/internal/speedrun"
	"github.com/pixil98/go-drive/internal/vehicle"
	"github.com/pixil98/go-errors"
)

// Message keys. Speedrun phases are keyed by their phase name.
const (
	MessagePickup      = "pickup"
	MessageRing        = "ring"
	MessageParked      = "parked"
	MessageHonk        = "honk"
	MessageEngineOn    = "engine_on"
	MessageEngineOff   = "engine_off"
	MessageState       = "state"
	MessageAchievement = "achievement"
	MessageNotice      = "notice"
)

// Messages maps a message key to a text/template. Event messages are
// expanded with the event, state with the vehicle snapshot and speedrun
// phases with the run view.
type Messages map[string]string

func DefaultMessages() Messages {
	return Messages{
		MessagePickup:      "You found a collectible ({{ .Item }})!",
		MessageRing:        "Ring collected!",
		MessageParked:      "You parked at the {{ .Building | capitalize }}.",
		MessageHonk:        "Beep beep!",
		MessageEngineOn:    "The engine starts.",
		MessageEngineOff:   "The engine stops.",
		MessageState:       `pos {{ printf "%.1f" .Position.X }}, {{ printf "%.1f" .Position.Z }}  heading {{ degrees .Heading | printf "%.0f" }}  speed {{ printf "%.1f" .Speed }}{{ if .Boosting }}  BOOST{{ end }}`,
		MessageAchievement: "Achievement unlocked: {{ .Achievement | capitalize }}!",
		MessageNotice:      "{{ .Message }}",

		speedrun.Idle{}.Name():             "You are free to roam.",
		speedrun.Ready{}.Name():            "You are at the start line. Stop and press b to begin a speedrun.",
		speedrun.EnteringInitials{}.Name(): "Enter your initials with 'initials ABC', or press escape to cancel.",
		speedrun.Countdown{}.Name():        "{{ .Countdown }}...",
		speedrun.Go{}.Name():               "GO!",
		speedrun.Running{}.Name():          "Rings {{ .Collected }}/{{ .Total }}  {{ laptime .Elapsed }}",
		speedrun.Completed{}.Name():        "Finished in {{ laptime .Elapsed }}! Submitting your time...",
		speedrun.Submitted{}.Name():        "{{ .Message }} Press enter to continue.",
	}
}

// sampleData is what each key is expanded with, used to check templates
// before they are needed.
func sampleData(key string) any {
	switch key {
	case MessageState:
		return vehicle.Snapshot{}
	case MessagePickup, MessageRing, MessageParked, MessageHonk, MessageEngineOn,
		MessageEngineOff, MessageAchievement, MessageNotice:
		return game.Event{}
	}
	return speedrun.View{}
}

// Merge returns m with the entries of o laid over it.
func (m Messages) Merge(o Messages) Messages {
	out := maps.Clone(m)
	if out == nil {
		out = Messages{}
	}
	maps.Copy(out, o)
	return out
}

func (m Messages) Validate() error {
	el := errors.NewErrorList()

	known := DefaultMessages()
	for _, key := range slices.Sorted(maps.Keys(m)) {
		if _, ok := known[key]; !ok {
			el.Add(fmt.Errorf("unknown message %q", key))
			continue
		}
		tmpl, err := parseMessage(key, m[key])
		if err != nil {
			el.Add(err)
			continue
		}
		if err := tmpl.Execute(&bytes.Buffer{}, sampleData(key)); err != nil {
			el.Add(fmt.Errorf("message %q: %w", key, err))
		}
	}

	return el.Err()
}

var templateFuncs = func() template.FuncMap {
	funcs := sprig.TxtFuncMap()
	funcs["capitalize"] = display.Capitalize
	funcs["degrees"] = headingDegrees
	funcs["laptime"] = func(d time.Duration) string {
		return leaderboard.FormatTime(d.Milliseconds())
	}
	return funcs
}()

func parseMessage(key, text string) (*template.Template, error) {
	tmpl, err := template.New(key).Funcs(templateFuncs).Option("missingkey=error").Parse(text)
	if err != nil {
		return nil, fmt.Errorf("message %q: parsing template: %w", key, err)
	}
	return tmpl, nil
}

func headingDegrees(rad float64) float64 {
	deg := math.Mod(rad*180/math.Pi, 360)
	if deg < 0 {
		deg += 360
	}
	return deg
}

// Renderer turns published events into the text shown to a player.
type Renderer struct {
	templates map[string]*template.Template
}

// NewRenderer parses msgs laid over the defaults.
func NewRenderer(msgs Messages) (*Renderer, error) {
	msgs = DefaultMessages().Merge(msgs)
	if err := msgs.Validate(); err != nil {
		return nil, err
	}

	r := &Renderer{templates: make(map[string]*template.Template, len(msgs))}
	for key, text := range msgs {
		tmpl, err := parseMessage(key, text)
		if err != nil {
			return nil, err
		}
		r.templates[key] = tmpl
	}
	return r, nil
}

// DefaultRenderer renders the stock messages.
func DefaultRenderer() *Renderer {
	r, err := NewRenderer(nil)
	if err != nil {
		panic(fmt.Sprintf("default messages: %v", err))
	}
	return r
}

// Event returns the text for an event, or false when the event has nothing
// to show. State updates only render while watching.
func (r *Renderer) Event(ev game.Event, watch bool) (string, bool) {
	switch ev.Kind {
	case game.EventPickup:
		if ev.Speedrun {
			return r.expand(MessageRing, ev)
		}
		return r.expand(MessagePickup, ev)

	case game.EventParked:
		return r.expand(MessageParked, ev)

	case game.EventHonk:
		return r.expand(MessageHonk, ev)

	case game.EventEngine:
		if ev.EngineOn != nil && *ev.EngineOn {
			return r.expand(MessageEngineOn, ev)
		}
		return r.expand(MessageEngineOff, ev)

	case game.EventState:
		if !watch || ev.State == nil {
			return "", false
		}
		return r.expand(MessageState, *ev.State)

	case game.EventSpeedrun:
		if ev.Run == nil {
			return "", false
		}
		return r.expand(ev.Run.Phase, *ev.Run)

	case game.EventAchievement:
		return r.expand(MessageAchievement, ev)

	case game.EventNotice:
		return r.expand(MessageNotice, ev)
	}
	return "", false
}

func (r *Renderer) expand(key string, data any) (string, bool) {
	tmpl, ok := r.templates[key]
	if !ok {
		return "", false
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		slog.Warn("expanding message", "message", key, "error", err)
		return "", false
	}
	if buf.Len() == 0 {
		return "", false
	}
	return buf.String(), true
}
