// Package rest serves the persisted pipeline artifacts read-only. It is a
// consumer of the output files, not part of the core pipeline contract.
package rest

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/fortuna/victoria/internal/events"
	"github.com/fortuna/victoria/internal/metrics"
	"github.com/fortuna/victoria/internal/model"
)

// Server represents the artifacts API server.
type Server struct {
	server  *http.Server
	handler *Handler
}

// NewServer wires the routes over the data dir's artifact files.
func NewServer(addr, dataDir string, groups []model.Group, bus *events.Bus) *Server {
	handler := NewHandler(dataDir, groups)

	router := mux.NewRouter()

	router.Use(RecoveryMiddleware)
	router.Use(LoggingMiddleware)
	router.Use(CORSMiddleware)

	router.HandleFunc("/health", handler.HealthCheck).Methods("GET")
	router.Handle("/metrics", metrics.Handler()).Methods("GET")
	router.HandleFunc("/ws/runs", RunEventsHandler(bus))

	api := router.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/groups", handler.GetGroups).Methods("GET")
	api.HandleFunc("/groups/{group}/matches", handler.GetMatches).Methods("GET")
	api.HandleFunc("/groups/{group}/leaderboard", handler.GetLeaderboard).Methods("GET")
	api.HandleFunc("/groups/{group}/standings", handler.GetStandings).Methods("GET")

	return &Server{
		handler: handler,
		server: &http.Server{
			Addr:    addr,
			Handler: router,
		},
	}
}

// Start starts the artifacts API server.
func (s *Server) Start() error {
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}
