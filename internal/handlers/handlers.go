package handlers

import (
	"github.com/ateliervote/concours/internal/auth"
	"github.com/ateliervote/concours/internal/services"
	"github.com/ateliervote/concours/internal/websocket"
)

// Handlers holds all HTTP handler dependencies
type Handlers struct {
	Engine services.EngineServicer
	Links  *services.LinkService
	Auth   *auth.Auth
	Hub    *websocket.Hub
	Log    HTTPLogger
}

// HTTPLogger is an interface for loggers that support HTTP logging control
type HTTPLogger interface {
	IsHTTPLoggingEnabled() bool
}

// New creates a new Handlers instance with all dependencies
func New(
	engine services.EngineServicer,
	links *services.LinkService,
	adminAuth *auth.Auth,
	hub *websocket.Hub,
	log HTTPLogger,
) *Handlers {
	return &Handlers{
		Engine: engine,
		Links:  links,
		Auth:   adminAuth,
		Hub:    hub,
		Log:    log,
	}
}

// NoopHTTPLogger is a test logger that always returns false for HTTP logging
type NoopHTTPLogger struct{}

func (NoopHTTPLogger) IsHTTPLoggingEnabled() bool { return false }

// NewForTesting creates a Handlers instance for exercising API endpoints
func NewForTesting(engine services.EngineServicer) *Handlers {
	return &Handlers{
		Engine: engine,
		Links:  services.NewLinkService("http://localhost:8081"),
		Auth:   auth.New("test-password"),
		Log:    NoopHTTPLogger{},
	}
}
