// Package status exposes a small HTTP endpoint for inspecting a running
// responder: peer identity, listen addresses and the ping counter.
package status

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/libp2p/go-libp2p/core/host"
	"go.uber.org/zap"

	"github.com/ShreejithBabuG/kameo-ping/pkg/ping"
)

// Server serves the status endpoint
type Server struct {
	host   host.Host
	actor  *ping.Actor
	name   string
	logger *zap.Logger
	srv    *http.Server
}

// StatusResponse is the JSON body of GET /v1/status
type StatusResponse struct {
	PeerID     string   `json:"peer_id"`
	Addrs      []string `json:"addrs"`
	Actor      string   `json:"actor"`
	TotalPings uint64   `json:"total_pings"`
	Peers      int      `json:"peers"`
}

// NewServer creates the status server for the given host and ping actor
func NewServer(h host.Host, actor *ping.Actor, actorName string, logger *zap.Logger) *Server {
	return &Server{
		host:   h,
		actor:  actor,
		name:   actorName,
		logger: logger,
	}
}

// Router builds the HTTP routes
func (s *Server) Router() http.Handler {
	router := chi.NewRouter()
	router.Use(middleware.Recoverer)
	router.Use(middleware.Timeout(10 * time.Second))

	router.Get("/v1/health", s.handleHealth)
	router.Get("/v1/status", s.handleStatus)

	return router
}

// Start begins serving on the given address. Non-blocking; serve errors other
// than graceful shutdown are logged.
func (s *Server) Start(listenAddr string) {
	s.srv = &http.Server{
		Addr:    listenAddr,
		Handler: s.Router(),
	}

	go func() {
		s.logger.Info("Status endpoint listening", zap.String("addr", listenAddr))
		if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Error("Status endpoint failed", zap.Error(err))
		}
	}()
}

// Stop shuts the HTTP server down gracefully
func (s *Server) Stop(ctx context.Context) error {
	if s.srv == nil {
		return nil
	}
	return s.srv.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	var addrs []string
	for _, addr := range s.host.Addrs() {
		addrs = append(addrs, addr.String())
	}

	resp := StatusResponse{
		PeerID:     s.host.ID().String(),
		Addrs:      addrs,
		Actor:      s.name,
		TotalPings: s.actor.Count(),
		Peers:      len(s.host.Network().Peers()),
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		s.logger.Error("Failed to encode status response", zap.Error(err))
	}
}
