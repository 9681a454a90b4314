package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/izu-labs/izuchat/internal/core/domain"
)

// mockChatService implements driving.ChatService for handler tests.
type mockChatService struct {
	askFunc func(ctx context.Context, req domain.ChatRequest) (*domain.ChatAnswer, error)
}

func (m *mockChatService) Ask(ctx context.Context, req domain.ChatRequest) (*domain.ChatAnswer, error) {
	return m.askFunc(ctx, req)
}

func newTestServer(chat *mockChatService) *Server {
	return NewServer(":0", chat, SystemInfo{
		ChunksLoaded:        1713,
		IndexSize:           1713,
		EmbeddingModel:      "text-embedding-3-small",
		EmbeddingDimensions: 1536,
		LLMModel:            "gpt-4o-mini",
		AvgChunkLength:      812.5,
	})
}

func doRequest(t *testing.T, srv *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, http.NoBody)
	}
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	return rec
}

func TestChatEndpoint(t *testing.T) {
	chat := &mockChatService{
		askFunc: func(_ context.Context, req domain.ChatRequest) (*domain.ChatAnswer, error) {
			assert.Equal(t, "Yillik ucret nedir?", req.Message)
			return &domain.ChatAnswer{
				Answer:         "Yillik ucret 75000 TL'dir.",
				ConversationID: "conv-1",
				Sources: []domain.Source{
					{Title: "Ucretler", URL: "https://www.izu.edu.tr/ucretler", Score: 0.83, Snippet: "..."},
				},
				TotalMs: 950,
			}, nil
		},
	}

	rec := doRequest(t, newTestServer(chat), http.MethodPost, "/chat",
		`{"message": "Yillik ucret nedir?", "language": "tr"}`)

	require.Equal(t, http.StatusOK, rec.Code)

	var answer domain.ChatAnswer
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &answer))
	assert.Equal(t, "Yillik ucret 75000 TL'dir.", answer.Answer)
	assert.Equal(t, "conv-1", answer.ConversationID)
	require.Len(t, answer.Sources, 1)
	assert.Equal(t, "Ucretler", answer.Sources[0].Title)
}

func TestChatEmptyMessageIs400(t *testing.T) {
	chat := &mockChatService{
		askFunc: func(_ context.Context, _ domain.ChatRequest) (*domain.ChatAnswer, error) {
			return nil, domain.ErrEmptyQuery
		},
	}

	rec := doRequest(t, newTestServer(chat), http.MethodPost, "/chat", `{"message": "   "}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "empty")
}

func TestChatTooLongMessageIs400(t *testing.T) {
	chat := &mockChatService{
		askFunc: func(_ context.Context, _ domain.ChatRequest) (*domain.ChatAnswer, error) {
			return nil, domain.ErrQueryTooLong
		},
	}

	rec := doRequest(t, newTestServer(chat), http.MethodPost, "/chat",
		`{"message": "x"}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "too long")
}

func TestChatRemoteFailureIs500(t *testing.T) {
	chat := &mockChatService{
		askFunc: func(_ context.Context, _ domain.ChatRequest) (*domain.ChatAnswer, error) {
			return nil, &domain.RemoteServiceError{Service: "openai-chat", StatusCode: 503}
		},
	}

	rec := doRequest(t, newTestServer(chat), http.MethodPost, "/chat", `{"message": "hi"}`)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestChatInvalidJSONIs400(t *testing.T) {
	chat := &mockChatService{
		askFunc: func(_ context.Context, _ domain.ChatRequest) (*domain.ChatAnswer, error) {
			t.Fatal("pipeline must not run on malformed input")
			return nil, nil
		},
	}

	rec := doRequest(t, newTestServer(chat), http.MethodPost, "/chat", `{"message": `)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHealthEndpoint(t *testing.T) {
	rec := doRequest(t, newTestServer(nil), http.MethodGet, "/health", "")

	require.Equal(t, http.StatusOK, rec.Code)

	var health healthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &health))
	assert.Equal(t, "healthy", health.Status)
	assert.Equal(t, 1713, health.ChunksLoaded)
	assert.Equal(t, 1713, health.IndexSize)
}

func TestHealthNotReadyWithoutCorpus(t *testing.T) {
	srv := NewServer(":0", nil, SystemInfo{})
	rec := doRequest(t, srv, http.MethodGet, "/health", "")

	var health healthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &health))
	assert.Equal(t, "not ready", health.Status)
}

func TestStatsEndpoint(t *testing.T) {
	rec := doRequest(t, newTestServer(nil), http.MethodGet, "/stats", "")

	require.Equal(t, http.StatusOK, rec.Code)

	var stats statsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	assert.Equal(t, 1713, stats.TotalChunks)
	assert.Equal(t, "text-embedding-3-small", stats.EmbeddingModel)
	assert.Equal(t, 1536, stats.EmbeddingDimensions)
	assert.Equal(t, "gpt-4o-mini", stats.LLMModel)
}

func TestCORSPreflight(t *testing.T) {
	rec := doRequest(t, newTestServer(nil), http.MethodOptions, "/chat", "")

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}
