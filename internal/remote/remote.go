// Package remote talks to the remote AI service. Two providers exist: the
// LexDesk REST backend and any OpenAI-compatible chat completion API.
package remote

import (
	"context"
	"net/http"
	"time"

	"github.com/lexdesk/lexdesk/internal/config"
	apperrors "github.com/lexdesk/lexdesk/internal/errors"
	"github.com/lexdesk/lexdesk/internal/operation"
)

const defaultTimeout = 5 * time.Second

// Executor runs operations on a remote service. A single call makes exactly
// one attempt; fallback is the caller's decision.
type Executor interface {
	Execute(ctx context.Context, req operation.Request) (operation.Result, error)
	Name() string
}

// New builds the executor for cfg.Provider.
func New(cfg config.RemoteConfig, httpClient *http.Client) (Executor, error) {
	if cfg.BaseURL == "" {
		return nil, apperrors.NewBuilder(apperrors.CodeRemoteNotConfigured, "remote base_url is empty").
			Kind(apperrors.KindInvalidInput).
			WithSuggestion("Set [remote] base_url or LEXDESK_REMOTE_URL").
			Build()
	}

	switch cfg.Provider {
	case "", config.ProviderBackend:
		return NewClient(Config{
			BaseURL: cfg.BaseURL,
			APIKey:  cfg.APIKey,
			Timeout: cfg.Timeout.D(),
		}, httpClient), nil
	case config.ProviderOpenAI:
		return NewOpenAI(OpenAIConfig{
			BaseURL: cfg.BaseURL,
			APIKey:  cfg.APIKey,
			Model:   cfg.Model,
			Timeout: cfg.Timeout.D(),
		}, httpClient), nil
	default:
		return nil, apperrors.NewBuilder(apperrors.CodeConfigInvalid, "unknown remote provider").
			Kind(apperrors.KindInvalidInput).
			WithContext("provider", cfg.Provider).
			WithSuggestion("Use provider = \"backend\" or \"openai\"").
			Build()
	}
}
