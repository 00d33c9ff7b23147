package command

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/pixil98/go-drive/internal/database"
	"github.com/pixil98/go-drive/internal/driver"
	"github.com/pixil98/go-drive/internal/game"
	"github.com/pixil98/go-drive/internal/leaderboard"
	"github.com/pixil98/go-drive/internal/listener"
	"github.com/pixil98/go-drive/internal/messaging"
	"github.com/pixil98/go-drive/internal/player"
	"github.com/pixil98/go-drive/internal/progress"
	"github.com/pixil98/go-service"
)

type workerFunc func(context.Context) error

func (f workerFunc) Start(ctx context.Context) error {
	return f(ctx)
}

// afterReady holds a worker back until ready is closed.
func afterReady(ready <-chan struct{}, w service.Worker) service.Worker {
	return workerFunc(func(ctx context.Context) error {
		select {
		case <-ready:
		case <-ctx.Done():
			return nil
		}
		return w.Start(ctx)
	})
}

func BuildWorkers(config interface{}) (service.WorkerList, error) {
	cfg, ok := config.(*Config)
	if !ok {
		return nil, fmt.Errorf("unable to cast config")
	}

	dict, err := cfg.Storage.BuildDictionary()
	if err != nil {
		return nil, fmt.Errorf("building dictionary: %w", err)
	}

	// Persistence
	db, err := cfg.Database.Open(context.Background())
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	board, err := leaderboard.NewGormBoard(db)
	if err != nil {
		return nil, fmt.Errorf("creating leaderboard: %w", err)
	}
	store, err := progress.NewGormStore(db)
	if err != nil {
		return nil, fmt.Errorf("creating progress store: %w", err)
	}
	syncer := progress.NewSyncer(store)

	// Messaging
	natsServer, err := cfg.Nats.buildNatsServer()
	if err != nil {
		return nil, fmt.Errorf("creating nats server: %w", err)
	}
	publisher := messaging.NewNatsPublisher(natsServer)

	// World
	world, err := buildWorld(cfg, dict, board, publisher, natsServer, syncer)
	if err != nil {
		return nil, err
	}

	idleOpts, err := cfg.Session.idleOpts()
	if err != nil {
		return nil, err
	}
	idle := game.NewIdleTicker(world, publisher, idleOpts...)

	interval, err := cfg.frameInterval()
	if err != nil {
		return nil, err
	}
	frames := driver.NewFrameDriver([]driver.Ticker{world, idle}, driver.WithFrameInterval(interval))

	// Create Listeners
	renderer, err := player.NewRenderer(cfg.Messages)
	if err != nil {
		return nil, fmt.Errorf("building messages: %w", err)
	}
	pm := player.NewPlayerManager(world, store, syncer, player.WithRenderer(renderer))
	cm := listener.NewConnectionManager(pm)

	listeners := make(service.WorkerList, len(cfg.Listeners))
	for i, l := range cfg.Listeners {
		lw, err := l.BuildListener(cm)
		if err != nil {
			return nil, fmt.Errorf("creating listener %d: %w", i, err)
		}
		listeners[fmt.Sprintf("listener-%d", i)] = lw
	}

	// The syncer flushes on shutdown before the database is closed.
	persistence := workerFunc(func(ctx context.Context) error {
		defer func() {
			if err := database.Close(db); err != nil {
				slog.WarnContext(ctx, "closing database", "error", err)
			}
		}()
		return syncer.Start(ctx)
	})

	return service.WorkerList{
		"nats":      natsServer,
		"progress":  persistence,
		"driver":    afterReady(natsServer.Ready(), frames),
		"listeners": afterReady(natsServer.Ready(), &listeners),
	}, nil
}

func buildWorld(
	cfg *Config,
	dict *game.Dictionary,
	board leaderboard.Board,
	publisher game.Publisher,
	subscriber game.Subscriber,
	sink game.ProgressSink,
) (*game.WorldState, error) {
	tuning, err := cfg.Vehicle.Tuning()
	if err != nil {
		return nil, fmt.Errorf("building vehicle tuning: %w", err)
	}
	runCfg, err := cfg.Speedrun.build()
	if err != nil {
		return nil, fmt.Errorf("building speedrun config: %w", err)
	}

	opts := []game.WorldOpt{
		game.WithTuning(tuning),
		game.WithBindings(cfg.Vehicle.KeyBindings()),
		game.WithSpeedrunConfig(runCfg),
		game.WithSpawn(cfg.Session.Spawn),
		game.WithBoard(board),
		game.WithPublisher(publisher),
		game.WithSubscriber(subscriber),
		game.WithProgressSink(sink),
	}

	course, err := cfg.Speedrun.course(dict)
	if err != nil {
		return nil, fmt.Errorf("resolving speedrun course: %w", err)
	}
	if course != nil {
		opts = append(opts, game.WithCourse(course))
	}

	return game.NewWorldState(dict, opts...), nil
}
