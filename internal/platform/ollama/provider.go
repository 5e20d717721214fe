// Package ollama implements generation.Provider for models served by a local
// Ollama daemon. No API key is required.
package ollama

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/ollama/ollama/api"
	"github.com/phrazzld/scholar-api/internal/generation"
	"github.com/phrazzld/scholar-api/internal/platform/logger"
	"github.com/phrazzld/scholar-api/internal/redact"
)

// DefaultBaseURL is where the Ollama daemon listens by default.
const DefaultBaseURL = "http://localhost:11434"

// Config configures the Ollama backend.
type Config struct {
	BaseURL    string
	HTTPClient *http.Client
	Defaults   generation.CallOptions
}

// Provider is a generation.Provider backed by the Ollama chat API.
type Provider struct {
	client   *api.Client
	model    string
	defaults generation.CallOptions
	logger   *slog.Logger
}

var _ generation.Provider = (*Provider)(nil)

// New creates a provider for model. The base URL may carry an OpenAI-style
// "/v1" suffix, which is stripped.
func New(cfg Config, model string, logger *slog.Logger) (*Provider, error) {
	if strings.TrimSpace(model) == "" {
		return nil, fmt.Errorf("%w: model cannot be empty", generation.ErrInvalidConfig)
	}
	if logger == nil {
		logger = slog.Default()
	}

	base := cfg.BaseURL
	if base == "" {
		base = DefaultBaseURL
	}
	base = strings.TrimSuffix(strings.TrimSuffix(base, "/"), "/v1")
	parsed, err := url.Parse(base)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("%w: invalid ollama base URL %q", generation.ErrInvalidConfig, base)
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	return &Provider{
		client:   api.NewClient(parsed, httpClient),
		model:    model,
		defaults: cfg.Defaults,
		logger:   logger.With("component", "ollama_provider", "model", model),
	}, nil
}

// Name implements generation.Provider.
func (p *Provider) Name() string { return string(generation.BackendOllama) }

// Model implements generation.Provider.
func (p *Provider) Model() string { return p.model }

// TestConnection implements generation.Provider.
func (p *Provider) TestConnection(ctx context.Context) generation.ConnectionStatus {
	return generation.Probe(ctx, p)
}

// Call implements generation.Provider.
func (p *Provider) Call(ctx context.Context, prompt string, opts generation.CallOptions) (string, error) {
	log := logger.FromContextOrDefault(ctx, p.logger)
	if opts.SystemPrompt == "" {
		opts.SystemPrompt = p.defaults.SystemPrompt
	}
	if opts.Temperature == 0 {
		opts.Temperature = p.defaults.Temperature
	}
	if opts.MaxOutputTokens <= 0 {
		opts.MaxOutputTokens = p.defaults.MaxOutputTokens
	}
	if opts.Timeout <= 0 {
		opts.Timeout = p.defaults.Timeout
	}
	opts = opts.WithDefaults()
	if opts.SystemPrompt == "" {
		opts.SystemPrompt = generation.DefaultSystemPrompt
	}

	ctx, cancel := context.WithTimeout(ctx, opts.Timeout)
	defer cancel()

	stream := false
	req := &api.ChatRequest{
		Model: p.model,
		Messages: []api.Message{
			{Role: "system", Content: opts.SystemPrompt},
			{Role: "user", Content: prompt},
		},
		Stream: &stream,
		Options: map[string]any{
			"temperature": opts.Temperature,
			"num_predict": opts.MaxOutputTokens,
		},
	}

	var resp api.ChatResponse
	err := p.client.Chat(ctx, req, func(r api.ChatResponse) error {
		resp = r
		return nil
	})
	if err != nil {
		perr := wrapError(p.model, err)
		log.WarnContext(ctx, "ollama chat failed",
			"status", perr.StatusCode,
			"timeout", perr.Timeout,
			"error", perr.Message)
		return "", perr
	}

	log.DebugContext(ctx, "ollama chat completed",
		"prompt_eval_count", resp.PromptEvalCount,
		"eval_count", resp.EvalCount)
	return resp.Message.Content, nil
}

func wrapError(model string, err error) *generation.ProviderError {
	var statusErr api.StatusError
	if errors.As(err, &statusErr) {
		msg := statusErr.ErrorMessage
		if msg == "" {
			msg = statusErr.Status
		}
		return generation.NewProviderError(string(generation.BackendOllama), model, statusErr.StatusCode,
			redact.String(msg), err)
	}
	return generation.NewProviderError(string(generation.BackendOllama), model, 0, redact.Error(err), err)
}

// Register installs the Ollama backend on r. The API key is ignored.
func Register(r *generation.Registry, cfg Config, logger *slog.Logger) {
	r.Register(generation.BackendOllama, func(_ context.Context, model, _ string) (generation.Provider, error) {
		return New(cfg, model, logger)
	})
}
