package game

import (
	"context"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/pixil98/go-drive/internal/input"
	"github.com/pixil98/go-drive/internal/leaderboard"
	"github.com/pixil98/go-drive/internal/physics"
	"github.com/pixil98/go-drive/internal/progress"
	"github.com/pixil98/go-drive/internal/proximity"
	"github.com/pixil98/go-drive/internal/speedrun"
	"github.com/pixil98/go-drive/internal/vehicle"
)

const (
	AchievementCollector   = "collector"
	AchievementTourist     = "tourist"
	AchievementSpeedrunner = "speedrunner"
)

// ProgressSink receives progress that needs to be persisted.
type ProgressSink interface {
	Enqueue(p progress.Progress)
}

// WorldState is the single source of truth for all mutable game state.
// All access must go through its methods to ensure thread-safety.
type WorldState struct {
	mu      sync.Mutex
	players map[string]*PlayerState

	dict     *Dictionary
	space    *physics.Space
	course   *Course
	spawn    mgl64.Vec3
	tuning   vehicle.Tuning
	bindings input.Bindings
	runCfg   speedrun.Config
	now      func() time.Time

	board      leaderboard.Board
	publisher  Publisher
	subscriber Subscriber
	sink       ProgressSink
}

type WorldOpt func(*WorldState)

func WithTuning(t vehicle.Tuning) WorldOpt {
	return func(w *WorldState) {
		w.tuning = t
	}
}

func WithBindings(b input.Bindings) WorldOpt {
	return func(w *WorldState) {
		w.bindings = b
	}
}

// WithCourse enables the speedrun on course.
func WithCourse(c *Course) WorldOpt {
	return func(w *WorldState) {
		w.course = c
	}
}

func WithSpeedrunConfig(cfg speedrun.Config) WorldOpt {
	return func(w *WorldState) {
		w.runCfg = cfg
	}
}

func WithSpawn(pos mgl64.Vec3) WorldOpt {
	return func(w *WorldState) {
		w.spawn = pos
	}
}

func WithBoard(b leaderboard.Board) WorldOpt {
	return func(w *WorldState) {
		w.board = b
	}
}

func WithPublisher(p Publisher) WorldOpt {
	return func(w *WorldState) {
		w.publisher = p
	}
}

func WithSubscriber(s Subscriber) WorldOpt {
	return func(w *WorldState) {
		w.subscriber = s
	}
}

func WithProgressSink(s ProgressSink) WorldOpt {
	return func(w *WorldState) {
		w.sink = s
	}
}

// WithWorldClock overrides the time source used for timing and events.
func WithWorldClock(now func() time.Time) WorldOpt {
	return func(w *WorldState) {
		w.now = now
	}
}

func WithSpace(s *physics.Space) WorldOpt {
	return func(w *WorldState) {
		w.space = s
	}
}

func NewWorldState(dict *Dictionary, opts ...WorldOpt) *WorldState {
	if dict == nil {
		dict = &Dictionary{}
	}
	w := &WorldState{
		players:  map[string]*PlayerState{},
		dict:     dict,
		space:    physics.NewSpace(),
		tuning:   vehicle.DefaultTuning(),
		bindings: input.DefaultBindings(),
		now:      time.Now,
		board:    leaderboard.NewMemoryBoard(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Course returns the active speedrun course, if any.
func (w *WorldState) Course() *Course {
	return w.course
}

// Board returns the leaderboard runs are submitted to.
func (w *WorldState) Board() leaderboard.Board {
	return w.board
}

// Bindings returns the key bindings every player's sampler uses.
func (w *WorldState) Bindings() input.Bindings {
	return w.bindings
}

// Status is a consistent read of one player's state.
type Status struct {
	Vehicle  vehicle.Snapshot
	Run      speedrun.View
	Progress progress.Progress
}

// Status returns the player's current state.
func (w *WorldState) Status(visitorID string) (Status, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	ps, exists := w.players[visitorID]
	if !exists {
		return Status{}, ErrPlayerNotFound
	}
	return Status{
		Vehicle:  ps.Vehicle(),
		Run:      ps.Run(w.now()),
		Progress: ps.Progress(),
	}, nil
}

// AddPlayer spawns a vehicle for the visitor with their stored progress.
func (w *WorldState) AddPlayer(visitorID string, prog progress.Progress, msgs chan []byte) (*PlayerState, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if _, exists := w.players[visitorID]; exists {
		return nil, ErrPlayerExists
	}

	prog.VisitorID = visitorID
	body := w.space.Add(w.spawn)

	ps := &PlayerState{
		VisitorID:    visitorID,
		sampler:      input.NewSampler(w.bindings),
		body:         body,
		controller:   vehicle.NewController(body, w.tuning, w.parkingZones()),
		publisher:    vehicle.NewPublisher(w.tuning),
		inputs:       make(chan InputEvent, inputBacklog),
		course:       w.course,
		progress:     prog,
		subscriber:   w.subscriber,
		subs:         map[string]func(){},
		msgs:         msgs,
		LastActivity: w.now(),
		done:         make(chan struct{}),
	}
	ps.armPickups(w.dict.collectibles())

	runCfg := w.runCfg
	if w.course != nil {
		runCfg.TotalItems = len(w.course.Rings)
		ps.trigger = proximity.NewZone(w.course.Trigger, w.course.triggerRadius(), w.course.triggerBuffer())
		ps.armRings()
	}
	ps.run = speedrun.NewSession(runCfg,
		speedrun.WithClock(w.now),
		speedrun.WithPermanent(ps.permanentSet),
	)
	ps.runSeen = ps.run.Snapshot(w.now())

	w.players[visitorID] = ps
	return ps, nil
}

func (w *WorldState) parkingZones() []vehicle.ParkingZone {
	entries := w.dict.parkingZones()
	zones := make([]vehicle.ParkingZone, 0, len(entries))
	for _, e := range entries {
		r := e.zone.Radius
		if r <= 0 {
			r = w.tuning.ParkingRadius
		}
		zones = append(zones, vehicle.ParkingZone{ID: e.zone.Building, Center: e.zone.Position, Radius: r})
	}
	return zones
}

// RemovePlayer despawns the visitor's vehicle and returns their final
// progress.
func (w *WorldState) RemovePlayer(visitorID string) (progress.Progress, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	ps, exists := w.players[visitorID]
	if !exists {
		return progress.Progress{}, ErrPlayerNotFound
	}
	return w.removeLocked(ps), nil
}

func (w *WorldState) removeLocked(ps *PlayerState) progress.Progress {
	if ps.inRun {
		ps.restoreCollectibles(ps.runSaved, w.dict.collectibles())
	}
	ps.run.Reset()
	ps.UnsubscribeAll()
	w.space.Remove(ps.body)
	delete(w.players, ps.VisitorID)

	return ps.Progress()
}

// ReattachPlayer hands an existing player over to a new connection. The
// previous session is kicked.
func (w *WorldState) ReattachPlayer(visitorID string, msgs chan []byte) (*PlayerState, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	ps, exists := w.players[visitorID]
	if !exists {
		return nil, ErrPlayerNotFound
	}
	ps.Kick()
	ps.Reattach(msgs, w.now())
	return ps, nil
}

// EndSession removes the player unless another connection has taken over
// since done was handed out. It reports whether the player was removed.
func (w *WorldState) EndSession(visitorID string, done <-chan struct{}) (progress.Progress, bool, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	ps, exists := w.players[visitorID]
	if !exists {
		return progress.Progress{}, false, ErrPlayerNotFound
	}
	if ps.done != done {
		return progress.Progress{}, false, nil
	}
	return w.removeLocked(ps), true, nil
}

// Subscribe subscribes the player's connection to subject.
func (w *WorldState) Subscribe(visitorID, subject string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	ps, exists := w.players[visitorID]
	if !exists {
		return ErrPlayerNotFound
	}
	return ps.Subscribe(subject)
}

// GetPlayer returns the player state. Returns nil if player not found.
func (w *WorldState) GetPlayer(visitorID string) *PlayerState {
	w.mu.Lock()
	defer w.mu.Unlock()

	return w.players[visitorID]
}

// Input queues an input for the visitor's next frame.
func (w *WorldState) Input(visitorID string, ev InputEvent) error {
	w.mu.Lock()
	ps, ok := w.players[visitorID]
	if ok {
		ps.LastActivity = w.now()
	}
	w.mu.Unlock()

	if !ok {
		return ErrPlayerNotFound
	}
	return ps.enqueue(ev)
}

// SetPlayerQuit sets the quit flag for a player.
func (w *WorldState) SetPlayerQuit(visitorID string, quit bool) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	ps, exists := w.players[visitorID]
	if !exists {
		return ErrPlayerNotFound
	}
	ps.Quit = quit
	return nil
}

// MarkPlayerActive resets the player's idle timer.
func (w *WorldState) MarkPlayerActive(visitorID string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if ps, ok := w.players[visitorID]; ok {
		ps.LastActivity = w.now()
	}
}

// ForEachPlayer calls fn for each player in the world while holding the lock.
func (w *WorldState) ForEachPlayer(fn func(string, *PlayerState)) {
	w.mu.Lock()
	defer w.mu.Unlock()

	for id, ps := range w.players {
		fn(id, ps)
	}
}

// Tick advances every player by delta: inputs and vehicle control first, one
// physics step for the whole space, then pickups, the speedrun and
// publication.
func (w *WorldState) Tick(ctx context.Context, delta time.Duration) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	now := w.now()
	dt := delta.Seconds()

	for _, ps := range w.players {
		w.applyInput(ctx, ps, now)
		ps.frame = ps.controller.Step(dt, ps.sampler.Snapshot(), ps.engineOn)
	}

	w.space.Step(dt)

	for _, ps := range w.players {
		w.evaluate(ctx, ps, now)
	}
	return nil
}

func (w *WorldState) applyInput(ctx context.Context, ps *PlayerState, now time.Time) {
	for _, key := range ps.taps {
		ps.sampler.Release(key)
	}
	ps.taps = ps.taps[:0]

drain:
	for {
		select {
		case ev := <-ps.inputs:
			switch ev.Kind {
			case InputPress:
				ps.sampler.Press(ev.Key)
			case InputRelease:
				ps.sampler.Release(ev.Key)
			case InputTap:
				if ps.sampler.Press(ev.Key) {
					ps.taps = append(ps.taps, ev.Key)
				}
			case InputInitials:
				if ps.run.SetInitials(ev.Text) {
					ps.run.SubmitInitials()
				}
			}
		default:
			break drain
		}
	}

	for _, cmd := range ps.sampler.Drain() {
		switch cmd {
		case input.CommandEngine:
			ps.engineOn = !ps.engineOn
			w.emit(ctx, ps, NewEngineEvent(now, ps.engineOn))
		case input.CommandHonk:
			w.emit(ctx, ps, NewHonkEvent(now))
		case input.CommandBegin:
			ps.run.Begin(ps.controller.Stationary())
		case input.CommandConfirm:
			if !ps.run.SubmitInitials() {
				ps.run.Acknowledge()
			}
		case input.CommandCancel:
			ps.run.Cancel()
		}
	}
}

func (w *WorldState) evaluate(ctx context.Context, ps *PlayerState, now time.Time) {
	pos := ps.Position()

	switch ps.run.Phase().(type) {
	case speedrun.Idle, speedrun.Ready, speedrun.EnteringInitials:
		w.collectPermanent(ctx, ps, pos, now)
	case speedrun.Running:
		w.collectRings(ctx, ps, pos, now)
	}

	if ps.trigger != nil {
		if ps.trigger.Update(pos) == proximity.TransitionExited {
			ps.run.ExitZone()
		} else if ps.trigger.Inside() {
			ps.run.EnterZone()
		}
	}

	ps.run.Tick(now)
	ps.run.Poll()
	w.trackRun(ps)

	if ps.frame.ParkedChanged && ps.frame.ParkedAt != "" {
		w.emit(ctx, ps, NewParkedEvent(now, ps.frame.ParkedAt))
		ps.progress = ps.progress.WithVisited(ps.frame.ParkedAt)
		ps.progressDirty = true
		if w.visitedAll(ps.progress) {
			w.award(ctx, ps, AchievementTourist, now)
		}
	}

	if snap, ok := ps.publisher.Publish(now, ps.frame); ok {
		w.emit(ctx, ps, NewStateEvent(now, snap))
	}

	if view := ps.run.Snapshot(now); runChanged(ps.runSeen, view) {
		ps.runSeen = view
		w.emit(ctx, ps, NewSpeedrunEvent(now, view))
	}

	if ps.progressDirty && w.sink != nil {
		w.sink.Enqueue(ps.Progress())
		ps.progressDirty = false
	}
}

func (w *WorldState) collectPermanent(ctx context.Context, ps *PlayerState, pos mgl64.Vec3, now time.Time) {
	found := false
	for id, ev := range ps.pickups {
		if !ev.Update(pos) {
			continue
		}
		delete(ps.pickups, id)
		if ps.progress.HasCollectible(string(id)) {
			continue
		}

		ps.progress = ps.progress.WithCollectible(string(id))
		ps.progressDirty = true
		found = true
		w.emit(ctx, ps, NewPickupEvent(now, string(id), false))
	}

	if found && w.foundAll(ps.progress) {
		w.award(ctx, ps, AchievementCollector, now)
	}
}

// foundAll reports whether every collectible in the world is in p. Stored
// ids of collectibles that no longer exist do not count.
func (w *WorldState) foundAll(p progress.Progress) bool {
	all := w.dict.collectibles()
	if len(all) == 0 {
		return false
	}
	for id := range all {
		if !p.HasCollectible(string(id)) {
			return false
		}
	}
	return true
}

// visitedAll reports whether p has parked at every building with a zone.
func (w *WorldState) visitedAll(p progress.Progress) bool {
	zones := w.dict.parkingZones()
	if len(zones) == 0 {
		return false
	}
	for _, e := range zones {
		if !p.HasVisited(e.zone.Building) {
			return false
		}
	}
	return true
}

func (w *WorldState) collectRings(ctx context.Context, ps *PlayerState, pos mgl64.Vec3, now time.Time) {
	for i, ev := range ps.rings {
		if ev.Update(pos) && ps.run.Collect(ps.course.RingID(i)) {
			w.emit(ctx, ps, NewPickupEvent(now, ps.course.RingID(i), true))
		}
	}

	if ps.run.CollectedCount() < len(ps.rings) || !ps.run.CompleteRun() {
		return
	}

	final, _ := ps.run.FinalTime()
	slog.InfoContext(ctx, "speedrun completed", "visitor", ps.VisitorID, "time", final)
	w.award(ctx, ps, AchievementSpeedrunner, now)
	ps.run.Submit(ctx, w.board, ps.VisitorID)
}

// trackRun notices a run starting or ending. Rings re-arm at the start and
// the permanent set is put back at the end.
func (w *WorldState) trackRun(ps *PlayerState) {
	switch ps.run.Phase().(type) {
	case speedrun.Running:
		if !ps.inRun {
			ps.inRun = true
			ps.runSaved, _ = ps.run.Saved()
			ps.armRings()
		}
	case speedrun.Idle:
		if ps.inRun {
			ps.inRun = false
			ps.restoreCollectibles(ps.runSaved, w.dict.collectibles())
			ps.runSaved = nil
		}
	}
}

func (w *WorldState) award(ctx context.Context, ps *PlayerState, name string, now time.Time) {
	if slices.Contains(ps.progress.Achievements, name) {
		return
	}
	ps.progress = ps.progress.WithAchievement(name)
	ps.progressDirty = true
	w.emit(ctx, ps, NewAchievementEvent(now, name))
}

func (w *WorldState) emit(ctx context.Context, ps *PlayerState, ev Event) {
	if w.publisher == nil {
		return
	}

	data, err := ev.Encode()
	if err != nil {
		slog.WarnContext(ctx, "encoding event", "visitor", ps.VisitorID, "kind", ev.Kind, "error", err)
		return
	}
	if err := w.publisher.PublishToPlayer(ps.VisitorID, data); err != nil {
		slog.WarnContext(ctx, "publishing event", "visitor", ps.VisitorID, "kind", ev.Kind, "error", err)
	}
}

func runChanged(a, b speedrun.View) bool {
	if a.Phase != b.Phase || a.Countdown != b.Countdown || a.Initials != b.Initials ||
		a.Collected != b.Collected || a.Message != b.Message {
		return true
	}
	if (a.Rank == nil) != (b.Rank == nil) {
		return true
	}
	return a.Rank != nil && *a.Rank != *b.Rank
}
