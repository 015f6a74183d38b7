package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	apperrors "github.com/lexdesk/lexdesk/internal/errors"
	"github.com/lexdesk/lexdesk/internal/operation"
	"github.com/lexdesk/lexdesk/pkg/protocol"
)

const maxBodyBytes = 4 << 20

// Endpoints maps each operation to its backend route.
var Endpoints = map[operation.Kind]string{
	operation.GenerateText:    "/ai/generate",
	operation.SummarizeText:   "/ai/summarize",
	operation.AnalyzeDocument: "/ai/analyze-document",
	operation.AnalyzeContract: "/contract-analyzer/analyze",
}

// Config configures the backend client.
type Config struct {
	BaseURL string // e.g. http://localhost:3001/api
	APIKey  string // Optional bearer token
	Timeout time.Duration
}

// Client calls the LexDesk REST backend.
type Client struct {
	cfg    Config
	client *http.Client
}

// NewClient creates a backend client. A nil httpClient gets a plain client;
// the per-request timeout comes from the context.
func NewClient(cfg Config, httpClient *http.Client) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &Client{cfg: cfg, client: httpClient}
}

// Name identifies the provider in logs.
func (c *Client) Name() string {
	return "backend"
}

// Execute posts the operation to its endpoint and maps the answer.
func (c *Client) Execute(ctx context.Context, req operation.Request) (operation.Result, error) {
	path, ok := Endpoints[req.Kind]
	if !ok {
		return operation.Result{}, unsupported(req.Kind)
	}

	body, err := json.Marshal(protocol.OperationRequest{
		Text:     req.Text,
		Markdown: req.Markdown,
		Context:  req.Context,
	})
	if err != nil {
		return operation.Result{}, apperrors.Wrap(err, apperrors.CodeRemoteClientError, "failed to marshal request", apperrors.KindClientError)
	}

	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+path, bytes.NewReader(body))
	if err != nil {
		return operation.Result{}, apperrors.Wrap(err, apperrors.CodeRemoteNotConfigured, "failed to create HTTP request", apperrors.KindClientError)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	if c.cfg.APIKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	}

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return operation.Result{}, apperrors.FromTransport(err)
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return operation.Result{}, apperrors.FromTransport(err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return operation.Result{}, apperrors.FromStatus(resp.StatusCode, string(b))
	}

	wire, err := decodeResponse(b)
	if err != nil {
		return operation.Result{}, err
	}
	return operation.FromWire(wire), nil
}

// decodeResponse accepts a bare result or one wrapped in
// {"success": ..., "data": ...}.
func decodeResponse(b []byte) (protocol.OperationResponse, error) {
	var env protocol.Envelope
	if err := json.Unmarshal(b, &env); err != nil {
		return protocol.OperationResponse{}, invalidResponse("response is not JSON", err, b)
	}

	if env.Success != nil && !*env.Success {
		msg := env.Error
		if msg == "" {
			msg = "backend reported failure"
		}
		return protocol.OperationResponse{}, invalidResponse(msg, nil, b)
	}

	payload := b
	if len(env.Data) > 0 && !bytes.Equal(env.Data, []byte("null")) {
		payload = env.Data
	}

	var wire protocol.OperationResponse
	if err := json.Unmarshal(payload, &wire); err != nil {
		return protocol.OperationResponse{}, invalidResponse("response does not match the result shape", err, b)
	}
	return wire, nil
}

// unsupported is a client-side failure: the remote has no route for kind.
func unsupported(kind operation.Kind) *apperrors.AppError {
	return apperrors.New(apperrors.CodeRemoteClientError, "remote does not support operation "+string(kind), apperrors.KindClientError)
}

func invalidResponse(msg string, err error, body []byte) *apperrors.AppError {
	if len(body) > 512 {
		body = body[:512]
	}
	return apperrors.NewBuilder(apperrors.CodeRemoteInvalidAnswer, msg).
		Kind(apperrors.KindInvalidResponse).
		Wrap(err).
		WithContext("body", string(body)).
		Build()
}
