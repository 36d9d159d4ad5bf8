// Package monitor serves the operational HTTP endpoints: /health with
// provider circuit states and /metrics with the Prometheus registry.
package monitor

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"github.com/tokenscope/tokenscope/internal/httpx"
)

// Server exposes health and metrics over HTTP.
type Server struct {
	router    *mux.Router
	providers []*httpx.Client
	start     time.Time
}

type healthResponse struct {
	Status    string            `json:"status"`
	UptimeSec int64             `json:"uptime_seconds"`
	Providers map[string]string `json:"providers"`
}

// New creates a server tracking the given provider clients.
func New(providers ...*httpx.Client) *Server {
	s := &Server{
		router:    mux.NewRouter(),
		providers: providers,
		start:     time.Now(),
	}
	s.router.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	s.router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	return s
}

// Handler returns the HTTP handler, mainly for tests.
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	resp := healthResponse{
		Status:    "ok",
		UptimeSec: int64(time.Since(s.start).Seconds()),
		Providers: make(map[string]string, len(s.providers)),
	}
	for _, p := range s.providers {
		state := "closed"
		if p.BreakerOpen() {
			state = "open"
			resp.Status = "degraded"
		}
		resp.Providers[p.Provider()] = state
	}

	w.Header().Set("Content-Type", "application/json")
	if resp.Status != "ok" {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	json.NewEncoder(w).Encode(resp)
}

// ListenAndServe runs the server until the context is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, port int) error {
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      s.router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Int("port", port).Msg("monitor server listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}
