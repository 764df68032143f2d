package handlers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"moviehouse/internal/config"
	"moviehouse/internal/core"
	"moviehouse/internal/utils"
	"moviehouse/web"

	"github.com/gorilla/mux"
)

type Server struct {
	config     *config.Config
	manager    *core.Manager
	logger     *utils.Logger
	httpServer *http.Server
	apiHandler *APIHandler
}

func NewServer(cfg *config.Config, manager *core.Manager, logger *utils.Logger) *Server {
	return &Server{
		config:     cfg,
		manager:    manager,
		logger:     logger,
		apiHandler: NewAPIHandler(manager, logger),
	}
}

// Router builds the HTTP routes. Exposed separately from Start for tests.
func (s *Server) Router() *mux.Router {
	router := mux.NewRouter()
	router.Use(requestLogger(s.logger))

	api := router.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/status", s.apiHandler.GetSystemStatus).Methods("GET")
	api.HandleFunc("/sessions", s.apiHandler.CreateSession).Methods("POST")
	api.HandleFunc("/sessions/{id}", s.apiHandler.GetSession).Methods("GET")
	api.HandleFunc("/sessions/{id}", s.apiHandler.DeleteSession).Methods("DELETE")
	api.HandleFunc("/sessions/{id}/events", s.apiHandler.PostEvent).Methods("POST")
	api.HandleFunc("/sessions/{id}/ws", s.apiHandler.SessionSocket).Methods("GET")
	api.HandleFunc("/playback/{type}/{id:[0-9]+}", s.apiHandler.GetPlaybackURL).Methods("GET")

	// Web UI (if enabled)
	if s.config.App.UIEnabled {
		router.PathPrefix("/").Handler(http.FileServer(http.FS(web.Static())))
	}

	return router
}

func (s *Server) Start() error {
	s.httpServer = &http.Server{
		Addr:        fmt.Sprintf(":%d", s.config.App.Port),
		Handler:     s.Router(),
		ReadTimeout: 15 * time.Second,
		// No WriteTimeout: it would cut long-lived websocket connections
		IdleTimeout: 60 * time.Second,
	}

	s.logger.Info("Starting server on port", s.config.App.Port)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) Stop(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}
