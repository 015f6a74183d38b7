package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lexdesk/lexdesk/internal/config"
	apperrors "github.com/lexdesk/lexdesk/internal/errors"
	"github.com/lexdesk/lexdesk/internal/operation"
	"github.com/lexdesk/lexdesk/pkg/protocol"
)

func newBackend(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(Config{BaseURL: srv.URL + "/api/", APIKey: "secret", Timeout: time.Second}, srv.Client())
}

// stallingHandler holds every request until release is closed. The body is
// drained first so the server sees the client hang up.
func stallingHandler(release <-chan struct{}) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.Copy(io.Discard, r.Body)
		select {
		case <-r.Context().Done():
		case <-release:
		}
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func TestBackendRoutesAndRequestBody(t *testing.T) {
	for kind, path := range Endpoints {
		t.Run(string(kind), func(t *testing.T) {
			c := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodPost, r.Method)
				assert.Equal(t, "/api"+path, r.URL.Path)
				assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))

				var body protocol.OperationRequest
				require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
				assert.Equal(t, "texto", body.Text)
				assert.Equal(t, "**texto**", body.Markdown)
				assert.Equal(t, "civil", body.Context["area"])

				writeJSON(w, http.StatusOK, protocol.OperationResponse{Content: "ok", Confidence: 0.9})
			})

			r, err := c.Execute(context.Background(), operation.Request{
				Kind:     kind,
				Text:     "texto",
				Markdown: "**texto**",
				Context:  map[string]any{"area": "civil"},
			})
			require.NoError(t, err)
			assert.Equal(t, "ok", r.Content)
			assert.Equal(t, 0.9, r.Confidence)
		})
	}
}

func TestBackendEnvelope(t *testing.T) {
	score := 77
	c := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		data, _ := json.Marshal(protocol.OperationResponse{
			Content: "análise",
			Score:   &score,
			Clauses: []protocol.Clause{{Title: "Multa", Risk: "high"}},
		})
		writeJSON(w, http.StatusOK, protocol.Envelope{Success: boolPtr(true), Data: data})
	})

	r, err := c.Execute(context.Background(), operation.Request{Kind: operation.AnalyzeContract, Text: "x"})
	require.NoError(t, err)

	assert.Equal(t, "análise", r.Content)
	require.NotNil(t, r.Details.Score)
	assert.Equal(t, 77, *r.Details.Score)
	require.Len(t, r.Details.Clauses, 1)
	assert.Equal(t, operation.RiskHigh, r.Details.Clauses[0].Risk)
}

func TestBackendErrors(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		kind    apperrors.Kind
		status  int
	}{
		{
			name: "server error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "down", http.StatusBadGateway)
			},
			kind:   apperrors.KindServerError,
			status: http.StatusBadGateway,
		},
		{
			name: "client error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "nope", http.StatusUnprocessableEntity)
			},
			kind:   apperrors.KindClientError,
			status: http.StatusUnprocessableEntity,
		},
		{
			name: "not json",
			handler: func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprint(w, "<html>proxy page</html>")
			},
			kind: apperrors.KindInvalidResponse,
		},
		{
			name: "envelope failure",
			handler: func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, http.StatusOK, protocol.Envelope{Success: boolPtr(false), Error: "quota exceeded"})
			},
			kind: apperrors.KindInvalidResponse,
		},
		{
			name: "wrong shape",
			handler: func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprint(w, `{"content": 42}`)
			},
			kind: apperrors.KindInvalidResponse,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newBackend(t, tt.handler)

			_, err := c.Execute(context.Background(), operation.Request{Kind: operation.GenerateText, Text: "x"})
			require.Error(t, err)
			assert.Equal(t, tt.kind, apperrors.Classify(err))
			assert.True(t, apperrors.IsFallbackable(err))
			assert.Equal(t, tt.status, apperrors.StatusCode(err))
		})
	}
}

func TestBackendTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(stallingHandler(release))
	defer srv.Close()
	defer close(release)

	c := NewClient(Config{BaseURL: srv.URL, Timeout: 50 * time.Millisecond}, srv.Client())
	start := time.Now()
	_, err := c.Execute(context.Background(), operation.Request{Kind: operation.GenerateText, Text: "x"})

	require.Error(t, err)
	assert.Equal(t, apperrors.KindTimeout, apperrors.Classify(err))
	assert.Less(t, time.Since(start), time.Second)
}

func TestBackendCallerCancellation(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(stallingHandler(release))
	defer srv.Close()
	defer close(release)

	c := NewClient(Config{BaseURL: srv.URL, Timeout: 5 * time.Second}, srv.Client())
	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(20*time.Millisecond, cancel)

	_, err := c.Execute(ctx, operation.Request{Kind: operation.GenerateText, Text: "x"})
	require.Error(t, err)
	assert.Equal(t, apperrors.KindCanceled, apperrors.Classify(err))
	assert.False(t, apperrors.IsFallbackable(err))
}

func TestBackendUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := NewClient(Config{BaseURL: url}, nil)
	_, err := c.Execute(context.Background(), operation.Request{Kind: operation.SummarizeText, Text: "x"})

	require.Error(t, err)
	assert.Equal(t, apperrors.KindNetworkUnreachable, apperrors.Classify(err))
}

func TestBackendUnknownOperation(t *testing.T) {
	c := NewClient(Config{BaseURL: "http://127.0.0.1:1"}, nil)
	_, err := c.Execute(context.Background(), operation.Request{Kind: "translate"})

	assert.True(t, apperrors.IsKind(err, apperrors.KindClientError))
	assert.True(t, apperrors.IsFallbackable(err))
}

func TestBackendUnencodableContextIsClientError(t *testing.T) {
	var hits atomic.Int32
	c := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	})

	_, err := c.Execute(context.Background(), operation.Request{
		Kind:    operation.GenerateText,
		Text:    "x",
		Context: map[string]any{"x": math.NaN()},
	})

	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindClientError))
	assert.True(t, apperrors.IsFallbackable(err))
	assert.Equal(t, int32(0), hits.Load())
}

func TestNewSelectsProvider(t *testing.T) {
	cfg := config.Default().Remote

	e, err := New(cfg, nil)
	require.NoError(t, err)
	assert.Equal(t, "backend", e.Name())

	cfg.Provider = config.ProviderOpenAI
	e, err = New(cfg, nil)
	require.NoError(t, err)
	assert.Equal(t, "openai", e.Name())

	cfg.Provider = "carrier-pigeon"
	_, err = New(cfg, nil)
	assert.Error(t, err)

	cfg.BaseURL = ""
	_, err = New(cfg, nil)
	assert.Error(t, err)
}

func boolPtr(b bool) *bool { return &b }
