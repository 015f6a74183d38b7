package remote

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/lexdesk/lexdesk/internal/errors"
	"github.com/lexdesk/lexdesk/internal/operation"
)

func newChatServer(t *testing.T, handler http.HandlerFunc) *OpenAI {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewOpenAI(OpenAIConfig{BaseURL: srv.URL + "/v1", APIKey: "sk-test", Model: "test-model", Timeout: time.Second}, srv.Client())
}

func chatReply(w http.ResponseWriter, content string) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(openai.ChatCompletionResponse{
		ID:    "chatcmpl-1",
		Model: "test-model",
		Choices: []openai.ChatCompletionChoice{{
			Index:   0,
			Message: openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: content},
		}},
	})
}

func TestOpenAIStructuredAnswer(t *testing.T) {
	o := newChatServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))

		var req openai.ChatCompletionRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "test-model", req.Model)
		require.Len(t, req.Messages, 2)
		assert.Equal(t, openai.ChatMessageRoleSystem, req.Messages[0].Role)
		assert.Equal(t, "## Contrato", req.Messages[1].Content)

		chatReply(w, "```json\n"+`{"content":"Resumo","confidence":0.65,"keyPoints":["a","b"]}`+"\n```")
	})

	r, err := o.Execute(context.Background(), operation.Request{
		Kind:     operation.SummarizeText,
		Text:     "Contrato",
		Markdown: "## Contrato",
	})
	require.NoError(t, err)

	assert.Equal(t, "Resumo", r.Content)
	assert.Equal(t, 0.65, r.Confidence)
	assert.Equal(t, []string{"a", "b"}, r.Details.KeyPoints)
	assert.Equal(t, []string{"openai:test-model"}, r.Sources)
}

func TestOpenAIPlainTextAnswer(t *testing.T) {
	o := newChatServer(t, func(w http.ResponseWriter, r *http.Request) {
		chatReply(w, "Texto livre sem JSON.")
	})

	r, err := o.Execute(context.Background(), operation.Request{Kind: operation.GenerateText, Text: "x"})
	require.NoError(t, err)

	assert.Equal(t, "Texto livre sem JSON.", r.Content)
	assert.Equal(t, defaultConfidence, r.Confidence)
}

func TestOpenAIStatusErrors(t *testing.T) {
	tests := []struct {
		code int
		kind apperrors.Kind
	}{
		{http.StatusServiceUnavailable, apperrors.KindServerError},
		{http.StatusUnauthorized, apperrors.KindClientError},
		{http.StatusTooManyRequests, apperrors.KindClientError},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.code), func(t *testing.T) {
			o := newChatServer(t, func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.code)
				_, _ = w.Write([]byte(`{"error":{"message":"failure","type":"server_error"}}`))
			})

			_, err := o.Execute(context.Background(), operation.Request{Kind: operation.AnalyzeDocument, Text: "x"})
			require.Error(t, err)
			assert.Equal(t, tt.kind, apperrors.Classify(err))
			assert.Equal(t, tt.code, apperrors.StatusCode(err))
		})
	}
}

func TestOpenAIEmptyChoices(t *testing.T) {
	o := newChatServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"x","choices":[]}`))
	})

	_, err := o.Execute(context.Background(), operation.Request{Kind: operation.GenerateText, Text: "x"})
	assert.True(t, apperrors.IsKind(err, apperrors.KindInvalidResponse))
}

func TestParseAnswerClauses(t *testing.T) {
	r := parseAnswer(`{"content":"ok","clauses":[{"title":"Multa","risk":"medium"},{"title":"Foro","risk":"medium"}]}`)

	require.Len(t, r.Details.Clauses, 2)
	assert.Equal(t, operation.RiskMedium, r.Details.Clauses[0].Risk)
	assert.Equal(t, defaultConfidence, r.Confidence)
}
