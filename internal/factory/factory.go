package factory

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"

	"github.com/mcoot/arenagame-go/internal/api"
	"github.com/mcoot/arenagame-go/internal/config"
	"github.com/mcoot/arenagame-go/internal/dependencies/clock"
	"github.com/mcoot/arenagame-go/internal/dependencies/idgen"
	"github.com/mcoot/arenagame-go/internal/dependencies/random"
	"github.com/mcoot/arenagame-go/internal/services/directory"
	"github.com/mcoot/arenagame-go/internal/services/history"
	"github.com/mcoot/arenagame-go/internal/services/scheduler"
	"github.com/mcoot/arenagame-go/internal/services/session"
	"github.com/mcoot/arenagame-go/internal/storage"
	"github.com/mcoot/arenagame-go/internal/storage/memory"
	redisstorage "github.com/mcoot/arenagame-go/internal/storage/redis"
	"github.com/mcoot/arenagame-go/internal/transport/ws"
)

// App contains all wired application components
type App struct {
	Config config.Config
	Logger *slog.Logger

	// Storage
	Storage storage.Storage

	// External dependencies
	Clock  clock.Clock
	Random random.Random
	IDs    idgen.Generator

	// Services
	Directory *directory.Directory
	Hub       *ws.Hub
	Session   *session.Handler
	Recorder  *history.Recorder
	Scheduler *scheduler.Scheduler

	// HTTP API and WebSocket endpoint
	Router http.Handler

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates a new application with all dependencies wired. A nil
// logger discards output.
func New(cfg config.Config, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	var store storage.Storage
	switch cfg.Storage.Type {
	case "", config.StorageTypeMemory:
		store = memory.New()
	case config.StorageTypeRedis:
		redisStore, err := redisstorage.New(cfg.Storage.Redis)
		if err != nil {
			return nil, fmt.Errorf("connect to redis: %w", err)
		}
		store = redisStore
	default:
		return nil, fmt.Errorf("invalid storage type %q", cfg.Storage.Type)
	}

	return newWithDependencies(cfg, store, clock.New(), random.New(), idgen.New(), logger), nil
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(
	cfg config.Config,
	store storage.Storage,
	clk clock.Clock,
	rnd random.Random,
	ids idgen.Generator,
	logger *slog.Logger,
) *App {
	dir := directory.New(cfg.Directory, cfg.Game, clk, rnd, ids, logger)
	hub := ws.NewHub(cfg.Transport, ids, logger)
	handler := session.NewHandler(dir, hub, logger)
	recorder := history.NewRecorder(store, cfg.History.QueueSize, logger)
	sched := scheduler.New(
		scheduler.Config{
			TickInterval: cfg.Game.TickInterval,
			ReapInterval: cfg.Directory.ReapInterval,
		},
		scheduler.FromDirectory(dir),
		dir,
		hub,
		recorder,
		clk,
		logger,
	)

	router := api.NewRouter(api.RouterConfig{
		Logger:    logger,
		Directory: dir,
		History:   recorder,
		Hub:       hub,
		Frames:    handler,
	})

	return &App{
		Config:    cfg,
		Logger:    logger,
		Storage:   store,
		Clock:     clk,
		Random:    rnd,
		IDs:       ids,
		Directory: dir,
		Hub:       hub,
		Session:   handler,
		Recorder:  recorder,
		Scheduler: sched,
		Router:    router,
	}
}

// Start launches the history writer and the tick and reaper loops
func (a *App) Start(ctx context.Context) {
	ctx, a.cancel = context.WithCancel(ctx)
	a.Recorder.Start()
	a.wg.Go(func() { a.Scheduler.Run(ctx) })
}

// Stop halts the loops, flushes match history and releases storage
func (a *App) Stop() error {
	if a.cancel != nil {
		a.cancel()
	}
	a.wg.Wait()
	a.Hub.Close()
	a.Recorder.Close()
	if closer, ok := a.Storage.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}
