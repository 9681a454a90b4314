// Package httpapi exposes the chat pipeline over HTTP: POST /chat plus
// health and stats endpoints for deployment probes.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/izu-labs/izuchat/internal/core/ports/driving"
	"github.com/izu-labs/izuchat/internal/logger"
)

// SystemInfo describes the loaded corpus and models, reported by the
// health and stats endpoints.
type SystemInfo struct {
	ChunksLoaded        int
	IndexSize           int
	EmbeddingModel      string
	EmbeddingDimensions int
	LLMModel            string
	AvgChunkLength      float64
}

// Server serves the chat API.
type Server struct {
	httpServer *http.Server
	chat       driving.ChatService
	info       SystemInfo
}

// NewServer creates a server listening on addr.
func NewServer(addr string, chat driving.ChatService, info SystemInfo) *Server {
	s := &Server{
		chat: chat,
		info: info,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /", s.handleRoot)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("POST /chat", s.handleChat)
	mux.HandleFunc("GET /stats", s.handleStats)

	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           withCORS(mux),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Start serves until the listener fails or Shutdown is called.
func (s *Server) Start() error {
	logger.Info("http server listening on %s", s.httpServer.Addr)
	err := s.httpServer.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown drains in-flight requests and stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// Handler returns the configured HTTP handler, for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// withCORS allows browser clients on other origins to call the API.
func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
