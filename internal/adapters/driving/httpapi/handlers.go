package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/izu-labs/izuchat/internal/core/domain"
	"github.com/izu-labs/izuchat/internal/logger"
)

// errorResponse is the JSON error body.
type errorResponse struct {
	Detail string `json:"detail"`
}

// healthResponse reports readiness for deployment probes.
type healthResponse struct {
	Status       string `json:"status"`
	ChunksLoaded int    `json:"chunks_loaded"`
	IndexSize    int    `json:"index_size"`
	Timestamp    string `json:"timestamp"`
}

// statsResponse describes the loaded system.
type statsResponse struct {
	TotalChunks         int     `json:"total_chunks"`
	IndexType           string  `json:"index_type"`
	EmbeddingModel      string  `json:"embedding_model"`
	EmbeddingDimensions int     `json:"embedding_dimension"`
	LLMModel            string  `json:"llm_model"`
	AvgChunkLength      float64 `json:"average_chunk_length"`
}

func (s *Server) handleRoot(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "IZU RAG Chatbot API",
		"status":  "running",
		"endpoints": map[string]string{
			"chat":   "/chat",
			"health": "/health",
			"stats":  "/stats",
		},
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	status := "healthy"
	if s.info.ChunksLoaded == 0 || s.info.IndexSize == 0 {
		status = "not ready"
	}
	writeJSON(w, http.StatusOK, healthResponse{
		Status:       status,
		ChunksLoaded: s.info.ChunksLoaded,
		IndexSize:    s.info.IndexSize,
		Timestamp:    time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleStats(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, statsResponse{
		TotalChunks:         s.info.ChunksLoaded,
		IndexType:           "flat-ip",
		EmbeddingModel:      s.info.EmbeddingModel,
		EmbeddingDimensions: s.info.EmbeddingDimensions,
		LLMModel:            s.info.LLMModel,
		AvgChunkLength:      s.info.AvgChunkLength,
	})
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req domain.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	answer, err := s.chat.Ask(r.Context(), req)
	if err != nil {
		writeChatError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, answer)
}

// writeChatError maps pipeline errors onto HTTP statuses: input
// problems are the caller's fault, everything else is a server error.
func writeChatError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrEmptyQuery):
		writeError(w, http.StatusBadRequest, "Message cannot be empty")
	case errors.Is(err, domain.ErrQueryTooLong):
		writeError(w, http.StatusBadRequest, "Message too long (max 500 characters)")
	default:
		logger.Error("chat request failed: %v", err)
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, errorResponse{Detail: detail})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Error("encoding response: %v", err)
	}
}
