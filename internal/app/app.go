package app

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ateliervote/concours/internal/auth"
	"github.com/ateliervote/concours/internal/config"
	"github.com/ateliervote/concours/internal/handlers"
	"github.com/ateliervote/concours/internal/logger"
	"github.com/ateliervote/concours/internal/platform"
	"github.com/ateliervote/concours/internal/repository"
	"github.com/ateliervote/concours/internal/scheduler"
	"github.com/ateliervote/concours/internal/services"
	"github.com/ateliervote/concours/internal/websocket"
)

// App holds all application dependencies
type App struct {
	log             logger.Logger
	handlers        *handlers.Handlers
	repo            *repository.Repository
	engine          *services.EngineService
	cancelScheduler context.CancelFunc
}

// New creates and initializes a new application instance. The contest
// identified by cfg.ContestID is recovered from its snapshot if one
// exists and created fresh otherwise.
func New(log logger.Logger, cfg config.Config, threads platform.ThreadCreator, adminAuth *auth.Auth) (*App, error) {
	repo, err := repository.New(cfg.DBPath)
	if err != nil {
		return nil, err
	}

	// Initialize services
	engine := services.NewEngineService(log, repo, threads, cfg.FinalChannel)
	links := services.NewLinkService(cfg.BaseURL)

	ctx := context.Background()
	if err := engine.Recover(ctx, cfg.ContestID); err != nil {
		if !stderrors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("recovering contest %s: %w", cfg.ContestID, err)
		}
		log.Info("No snapshot found, starting fresh contest", "contest_id", cfg.ContestID)
		if err := engine.Init(ctx, cfg.ContestID, cfg.Schedule, cfg.Categories); err != nil {
			return nil, fmt.Errorf("initializing contest %s: %w", cfg.ContestID, err)
		}
	} else {
		log.Info("Contest recovered from snapshot", "contest_id", cfg.ContestID, "phase", engine.Phase().String())
	}

	// Initialize WebSocket hub with DI
	hub := websocket.New(log, engine)
	hub.Start()
	engine.SetBroadcaster(hub)

	// Start the phase scheduler with context for graceful shutdown
	schedCtx, cancel := context.WithCancel(context.Background())
	go scheduler.New(log, engine, cfg.TickInterval).Run(schedCtx)

	h := handlers.New(engine, links, adminAuth, hub, log)

	return &App{
		log:             log,
		handlers:        h,
		repo:            repo,
		engine:          engine,
		cancelScheduler: cancel,
	}, nil
}

// Router returns the configured HTTP router
func (a *App) Router() chi.Router {
	return a.handlers.Router()
}

// Engine exposes the engine for the command layer.
func (a *App) Engine() *services.EngineService {
	return a.engine
}

// Close performs graceful shutdown of app resources
func (a *App) Close() {
	if a.cancelScheduler != nil {
		a.cancelScheduler()
	}
	if a.repo != nil {
		a.repo.Close()
	}
}

// Run starts the HTTP server
func (a *App) Run(addr string) error {
	a.log.Info("Server starting", "addr", addr)
	return http.ListenAndServe(addr, a.Router())
}
