package game

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/pixil98/go-drive/internal/speedrun"
	"github.com/pixil98/go-drive/internal/vehicle"
)

// EventKind tags the payload carried by an Event.
type EventKind string

const (
	EventPickup      EventKind = "pickup"
	EventParked      EventKind = "parked"
	EventHonk        EventKind = "honk"
	EventEngine      EventKind = "engine"
	EventState       EventKind = "state"
	EventSpeedrun    EventKind = "speedrun"
	EventAchievement EventKind = "achievement"
	EventNotice      EventKind = "notice"
)

// Event is a message sent to a single player. Exactly the payload fields
// matching Kind are set.
type Event struct {
	ID   string    `json:"id"`
	Kind EventKind `json:"kind"`
	At   time.Time `json:"at"`

	Item        string            `json:"item,omitempty"`
	Speedrun    bool              `json:"speedrun,omitempty"`
	Building    string            `json:"building,omitempty"`
	EngineOn    *bool             `json:"engine_on,omitempty"`
	State       *vehicle.Snapshot `json:"state,omitempty"`
	Run         *speedrun.View    `json:"run,omitempty"`
	Achievement string            `json:"achievement,omitempty"`
	Message     string            `json:"message,omitempty"`
}

func newEvent(kind EventKind, at time.Time) Event {
	return Event{
		ID:   uuid.NewString(),
		Kind: kind,
		At:   at,
	}
}

// NewPickupEvent reports a collected item. run marks speedrun items.
func NewPickupEvent(at time.Time, item string, run bool) Event {
	e := newEvent(EventPickup, at)
	e.Item = item
	e.Speedrun = run
	return e
}

func NewParkedEvent(at time.Time, building string) Event {
	e := newEvent(EventParked, at)
	e.Building = building
	return e
}

func NewHonkEvent(at time.Time) Event {
	return newEvent(EventHonk, at)
}

func NewEngineEvent(at time.Time, on bool) Event {
	e := newEvent(EventEngine, at)
	e.EngineOn = &on
	return e
}

func NewStateEvent(at time.Time, s vehicle.Snapshot) Event {
	e := newEvent(EventState, at)
	e.State = &s
	return e
}

func NewSpeedrunEvent(at time.Time, v speedrun.View) Event {
	e := newEvent(EventSpeedrun, at)
	e.Run = &v
	return e
}

func NewAchievementEvent(at time.Time, name string) Event {
	e := newEvent(EventAchievement, at)
	e.Achievement = name
	return e
}

// NewNoticeEvent carries a server message for the player.
func NewNoticeEvent(at time.Time, msg string) Event {
	e := newEvent(EventNotice, at)
	e.Message = msg
	return e
}

// Validate checks that the payload matches the kind.
func (e Event) Validate() error {
	switch e.Kind {
	case EventPickup:
		if e.Item == "" {
			return fmt.Errorf("pickup event requires an item")
		}
	case EventParked:
		if e.Building == "" {
			return fmt.Errorf("parked event requires a building")
		}
	case EventHonk:
	case EventEngine:
		if e.EngineOn == nil {
			return fmt.Errorf("engine event requires a state")
		}
	case EventState:
		if e.State == nil {
			return fmt.Errorf("state event requires a snapshot")
		}
	case EventSpeedrun:
		if e.Run == nil {
			return fmt.Errorf("speedrun event requires a view")
		}
	case EventAchievement:
		if e.Achievement == "" {
			return fmt.Errorf("achievement event requires a name")
		}
	case EventNotice:
		if e.Message == "" {
			return fmt.Errorf("notice event requires a message")
		}
	default:
		return fmt.Errorf("unknown event kind: %q", e.Kind)
	}
	return nil
}

// Encode validates e and returns its wire form.
func (e Event) Encode() ([]byte, error) {
	if err := e.Validate(); err != nil {
		return nil, err
	}
	return json.Marshal(e)
}

// DecodeEvent parses and validates a wire event.
func DecodeEvent(data []byte) (Event, error) {
	var e Event
	if err := json.Unmarshal(data, &e); err != nil {
		return Event{}, fmt.Errorf("unmarshalling event: %w", err)
	}
	if err := e.Validate(); err != nil {
		return Event{}, err
	}
	return e, nil
}
