package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/arenagame-go/internal/api/handler"
	apimiddleware "github.com/mcoot/arenagame-go/internal/api/middleware"
	"github.com/mcoot/arenagame-go/internal/middleware"
	"github.com/mcoot/arenagame-go/internal/services/directory"
	"github.com/mcoot/arenagame-go/internal/services/history"
	"github.com/mcoot/arenagame-go/internal/transport/ws"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger    *slog.Logger
	Directory *directory.Directory
	History   *history.Recorder
	Hub       *ws.Hub
	Frames    ws.FrameHandler
}

// NewRouter creates the HTTP router: the JSON API under /api/v1 and the
// WebSocket endpoint at /ws
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	// Create handlers
	roomHandler := handler.NewRoomHandler(cfg.Directory)
	matchHandler := handler.NewMatchHandler(cfg.History)
	healthHandler := handler.NewHealthHandler(
		func() int { return len(cfg.Directory.Rooms()) },
		cfg.Hub.ClientCount,
	)

	// Create middleware
	loggingMiddleware := middleware.Logging(cfg.Logger)
	recoveryMiddleware := apimiddleware.Recovery(cfg.Logger)

	// API subrouter with common middleware
	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(recoveryMiddleware)
	api.Use(loggingMiddleware)

	api.HandleFunc("/health", healthHandler.Get).Methods(http.MethodGet)

	api.HandleFunc("/rooms", roomHandler.List).Methods(http.MethodGet)
	api.HandleFunc("/rooms/{id}", roomHandler.Get).Methods(http.MethodGet)

	api.HandleFunc("/matches", matchHandler.List).Methods(http.MethodGet)
	api.HandleFunc("/matches/{id}", matchHandler.Get).Methods(http.MethodGet)
	api.HandleFunc("/players/{username}/stats", matchHandler.Stats).Methods(http.MethodGet)

	// WebSocket upgrade. Recovery is left out because a hijacked
	// connection cannot take an HTTP error response.
	r.Handle("/ws", loggingMiddleware(cfg.Hub.Handler(cfg.Frames))).Methods(http.MethodGet)

	return r
}
