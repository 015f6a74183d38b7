package remote

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"

	apperrors "github.com/lexdesk/lexdesk/internal/errors"
	"github.com/lexdesk/lexdesk/internal/operation"
	"github.com/lexdesk/lexdesk/pkg/protocol"
)

const (
	defaultModel      = "gpt-4o-mini"
	defaultConfidence = 0.8
)

// OpenAIConfig configures the chat completion executor.
type OpenAIConfig struct {
	BaseURL string // e.g. https://api.openai.com/v1
	APIKey  string
	Model   string
	Timeout time.Duration
}

// OpenAI runs operations as chat completions on an OpenAI-compatible API.
type OpenAI struct {
	cfg    OpenAIConfig
	client *openai.Client
}

// NewOpenAI creates the executor. A nil httpClient keeps the library default.
func NewOpenAI(cfg OpenAIConfig, httpClient *http.Client) *OpenAI {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.Model == "" {
		cfg.Model = defaultModel
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	}
	if httpClient != nil {
		clientConfig.HTTPClient = httpClient
	}

	return &OpenAI{
		cfg:    cfg,
		client: openai.NewClientWithConfig(clientConfig),
	}
}

// Name identifies the provider in logs.
func (o *OpenAI) Name() string {
	return "openai"
}

// Execute sends one chat completion and maps the reply to a result.
func (o *OpenAI) Execute(ctx context.Context, req operation.Request) (operation.Result, error) {
	instructions, ok := systemPrompts[req.Kind]
	if !ok {
		return operation.Result{}, unsupported(req.Kind)
	}

	input := req.Text
	if req.Markdown != "" {
		input = req.Markdown
	}

	ctx, cancel := context.WithTimeout(ctx, o.cfg.Timeout)
	defer cancel()

	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: o.cfg.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: instructions + answerFormat},
			{Role: openai.ChatMessageRoleUser, Content: input},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return operation.Result{}, mapOpenAIError(err)
	}
	if len(resp.Choices) == 0 {
		return operation.Result{}, apperrors.NewBuilder(apperrors.CodeRemoteInvalidAnswer, "empty chat response").
			Kind(apperrors.KindInvalidResponse).
			Build()
	}

	result := parseAnswer(resp.Choices[0].Message.Content)
	result.Sources = append(result.Sources, "openai:"+o.cfg.Model)
	return result, nil
}

// chatAnswer is the JSON object the model is asked to produce.
type chatAnswer struct {
	Content         string            `json:"content"`
	Confidence      *float64          `json:"confidence"`
	LegalReferences []string          `json:"legalReferences"`
	Score           *int              `json:"score"`
	Issues          []string          `json:"issues"`
	Suggestions     []string          `json:"suggestions"`
	KeyPoints       []string          `json:"keyPoints"`
	Clauses         []protocol.Clause `json:"clauses"`
	OverallRisk     string            `json:"overallRisk"`
}

// parseAnswer reads the model's JSON answer. A reply that is not JSON is
// used verbatim as content.
func parseAnswer(raw string) operation.Result {
	text := strings.TrimSpace(raw)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	text = strings.TrimSpace(text)

	var a chatAnswer
	if err := json.Unmarshal([]byte(text), &a); err != nil || strings.TrimSpace(a.Content) == "" {
		return operation.Result{Content: strings.TrimSpace(raw), Confidence: defaultConfidence}
	}

	confidence := defaultConfidence
	if a.Confidence != nil {
		confidence = *a.Confidence
	}

	return operation.FromWire(protocol.OperationResponse{
		Content:         a.Content,
		Confidence:      confidence,
		LegalReferences: a.LegalReferences,
		Score:           a.Score,
		Issues:          a.Issues,
		Suggestions:     a.Suggestions,
		KeyPoints:       a.KeyPoints,
		Clauses:         a.Clauses,
		OverallRisk:     a.OverallRisk,
	})
}

// mapOpenAIError reduces library errors to the remote taxonomy.
func mapOpenAIError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) && apiErr.HTTPStatusCode != 0 {
		return apperrors.FromStatus(apiErr.HTTPStatusCode, apiErr.Message)
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) && reqErr.HTTPStatusCode != 0 {
		msg := ""
		if reqErr.Err != nil {
			msg = reqErr.Err.Error()
		}
		return apperrors.FromStatus(reqErr.HTTPStatusCode, msg)
	}

	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		return apperrors.NewBuilder(apperrors.CodeRemoteInvalidAnswer, "chat response is not JSON").
			Kind(apperrors.KindInvalidResponse).
			Wrap(err).
			Build()
	}

	return apperrors.FromTransport(err)
}

const answerFormat = `

Responda somente com um objeto JSON com os campos:
"content" (texto da resposta), "confidence" (0 a 1), "legalReferences" (lista),
e, quando aplicável, "score" (0 a 100), "issues", "suggestions", "keyPoints",
"clauses" (cada uma com "title", "excerpt", "risk": low|medium|high, "recommendation")
e "overallRisk".`

var systemPrompts = map[operation.Kind]string{
	operation.GenerateText: "Você é um assistente jurídico brasileiro. Redija o texto jurídico solicitado " +
		"com linguagem formal e cite a legislação aplicável.",
	operation.AnalyzeDocument: "Você é um revisor jurídico. Avalie o documento, atribua uma nota de 0 a 100, " +
		"aponte termos problemáticos em \"issues\" e cláusulas ausentes em \"suggestions\".",
	operation.SummarizeText: "Você resume documentos jurídicos. Liste no máximo cinco pontos principais em " +
		"\"keyPoints\" e escreva o resumo em \"content\".",
	operation.AnalyzeContract: "Você analisa contratos. Identifique as cláusulas de maior risco em \"clauses\" " +
		"e classifique o risco geral em \"overallRisk\".",
}
