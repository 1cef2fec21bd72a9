// Package api exposes the read-only HTTP query surface.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"TickerVault/internal/fetcher"
	"TickerVault/internal/store"
)

type Server struct {
	store      *store.Store
	fetcher    fetcher.Fetcher
	interval   string
	httpServer *http.Server
}

// NewServer wires the query routes. The server only ever reads the
// per-symbol stores; writes stay with the ingestion side.
func NewServer(st *store.Store, f fetcher.Fetcher, port int, corsOrigin, interval string) *Server {
	s := &Server{store: st, fetcher: f, interval: interval}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/history", s.handleHistory)
	mux.HandleFunc("GET /api/current", s.handleCurrent)
	mux.HandleFunc("GET /health", s.handleHealth)

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      corsMiddleware(mux, corsOrigin),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 90 * time.Second, // /api/current may sit through provider retries
	}
	return s
}

// Handler returns the root handler, middleware included.
func (s *Server) Handler() http.Handler { return s.httpServer.Handler }

func (s *Server) Start() error {
	fmt.Printf("[API] query server listening on %s\n", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func corsMiddleware(next http.Handler, allowOrigin string) http.Handler {
	if allowOrigin == "" {
		allowOrigin = "*"
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", allowOrigin)
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// --- response helpers ---

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
