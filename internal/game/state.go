package game

import (
	"fmt"
	"maps"
	"slices"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/pixil98/go-drive/internal/input"
	"github.com/pixil98/go-drive/internal/physics"
	"github.com/pixil98/go-drive/internal/progress"
	"github.com/pixil98/go-drive/internal/proximity"
	"github.com/pixil98/go-drive/internal/speedrun"
	"github.com/pixil98/go-drive/internal/storage"
	"github.com/pixil98/go-drive/internal/vehicle"
)

const inputBacklog = 64

// PlayerState holds all mutable state for an active player. Everything except
// the input queue and the connection fields is owned by the frame thread.
type PlayerState struct {
	VisitorID string

	sampler    *input.Sampler
	body       *physics.RigidBody
	controller *vehicle.Controller
	publisher  *vehicle.Publisher
	engineOn   bool
	frame      vehicle.Frame

	inputs chan InputEvent
	taps   []string

	pickups  map[storage.Identifier]*proximity.Evaluator
	course   *Course
	rings    []*proximity.Evaluator
	trigger  *proximity.Zone
	run      *speedrun.Session
	inRun    bool
	runSaved map[string]struct{}
	runSeen  speedrun.View

	progress      progress.Progress
	progressDirty bool

	subscriber Subscriber
	subs       map[string]func()
	msgs       chan []byte

	// Session state
	Quit         bool
	LastActivity time.Time

	// Closed to signal the active session goroutine to exit.
	done chan struct{}
}

// Position returns the last known vehicle position.
func (p *PlayerState) Position() mgl64.Vec3 {
	if pos, ok := p.body.Position(); ok {
		return pos
	}
	return p.controller.Position()
}

// Progress returns a copy of the player's permanent progress.
func (p *PlayerState) Progress() progress.Progress {
	return progress.Merge(p.progress, progress.Progress{})
}

// Run returns the player's speedrun view as of now.
func (p *PlayerState) Run(now time.Time) speedrun.View {
	return p.run.Snapshot(now)
}

// Vehicle returns the last published vehicle snapshot.
func (p *PlayerState) Vehicle() vehicle.Snapshot {
	return p.publisher.Last()
}

func (p *PlayerState) permanentSet() map[string]struct{} {
	return p.progress.CollectibleSet()
}

// enqueue hands an input to the frame thread without blocking.
func (p *PlayerState) enqueue(ev InputEvent) error {
	select {
	case p.inputs <- ev:
		return nil
	default:
		return ErrInputBacklog
	}
}

// armPickups builds evaluators for every collectible not yet found.
func (p *PlayerState) armPickups(all map[storage.Identifier]*Collectible) {
	p.pickups = make(map[storage.Identifier]*proximity.Evaluator, len(all))
	for id, c := range all {
		if p.progress.HasCollectible(string(id)) {
			continue
		}
		p.pickups[id] = proximity.NewEvaluator(c.Position, c.PickupRadius())
	}
}

func (p *PlayerState) armRings() {
	p.rings = p.rings[:0]
	if p.course == nil {
		return
	}
	for _, pos := range p.course.Rings {
		p.rings = append(p.rings, proximity.NewEvaluator(pos, p.course.ringRadius()))
	}
}

// restoreCollectibles puts back the permanent set captured when the run
// started.
func (p *PlayerState) restoreCollectibles(saved map[string]struct{}, all map[storage.Identifier]*Collectible) {
	ids := slices.Sorted(maps.Keys(saved))
	if !slices.Equal(ids, p.progress.Collectibles) {
		p.progressDirty = true
	}
	p.progress.Collectibles = ids
	p.armPickups(all)
}

// Subscribe adds a new subscription.
func (p *PlayerState) Subscribe(subject string) error {
	if p.subscriber == nil {
		return fmt.Errorf("subscriber is nil")
	}

	unsub, err := p.subscriber.Subscribe(subject, func(data []byte) {
		select {
		case p.msgs <- data:
		default:
			// Drop when the reader has fallen behind.
		}
	})

	// Replace an existing subscription to the same subject.
	if old, ok := p.subs[subject]; ok {
		old()
		delete(p.subs, subject)
	}

	if err != nil {
		return fmt.Errorf("subscribing to channel '%s': %w", subject, err)
	}
	p.subs[subject] = unsub
	return nil
}

// Unsubscribe removes a subscription by name.
func (p *PlayerState) Unsubscribe(subject string) {
	if unsub, ok := p.subs[subject]; ok {
		unsub()
		delete(p.subs, subject)
	}
}

// UnsubscribeAll removes all subscriptions.
func (p *PlayerState) UnsubscribeAll() {
	for name, unsub := range p.subs {
		unsub()
		delete(p.subs, name)
	}
}

// Done returns the channel that is closed when this session is kicked.
func (p *PlayerState) Done() <-chan struct{} {
	return p.done
}

func (p *PlayerState) kicked() bool {
	select {
	case <-p.done:
		return true
	default:
		return false
	}
}

// Kick closes the done channel, signaling the active session to exit.
// Subsequent calls are no-ops.
func (p *PlayerState) Kick() {
	select {
	case <-p.done:
	default:
		close(p.done)
	}
}

// Reattach swaps in the channels of a new connection for the same visitor.
// The caller re-subscribes afterwards.
func (p *PlayerState) Reattach(msgs chan []byte, now time.Time) {
	p.UnsubscribeAll()
	p.msgs = msgs
	p.done = make(chan struct{})
	p.Quit = false
	p.LastActivity = now
}
