package gemini

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/phrazzld/scholar-api/internal/generation"
	"github.com/phrazzld/scholar-api/internal/platform/logger"
	"github.com/phrazzld/scholar-api/internal/redact"
	"google.golang.org/genai"
)

// Models lists the canonical Gemini model ids.
var Models = []string{"gemini-2.0-flash", "gemini-2.0-flash-lite", "gemini-1.5-pro", "gemini-1.5-flash"}

// Config configures the Gemini backend.
type Config struct {
	// BaseURL overrides the API endpoint. Used by tests.
	BaseURL string
	// HTTPClient is used for all requests. Nil uses the library default.
	HTTPClient *http.Client
	// Defaults fill unset CallOptions fields.
	Defaults generation.CallOptions
}

// Provider implements generation.Provider using the Gemini API.
type Provider struct {
	client   *genai.Client
	model    string
	apiKey   string
	defaults generation.CallOptions
	logger   *slog.Logger
}

var _ generation.Provider = (*Provider)(nil)

// New creates a Gemini provider for model authenticated with apiKey.
func New(ctx context.Context, cfg Config, model, apiKey string, logger *slog.Logger) (*Provider, error) {
	if strings.TrimSpace(model) == "" {
		return nil, fmt.Errorf("%w: model name cannot be empty", generation.ErrInvalidConfig)
	}
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("%w: gemini API key cannot be empty", generation.ErrInvalidConfig)
	}
	if logger == nil {
		logger = slog.Default()
	}

	clientConfig := &genai.ClientConfig{
		APIKey:     apiKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: cfg.HTTPClient,
	}
	if cfg.BaseURL != "" {
		clientConfig.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}

	client, err := genai.NewClient(ctx, clientConfig)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create Gemini client: %v",
			generation.ErrInvalidConfig, redact.Secrets(err.Error(), apiKey))
	}

	return &Provider{
		client:   client,
		model:    model,
		apiKey:   apiKey,
		defaults: cfg.Defaults,
		logger:   logger.With("component", "gemini_provider", "model", model),
	}, nil
}

// Name implements generation.Provider.
func (p *Provider) Name() string { return string(generation.BackendGemini) }

// Model implements generation.Provider.
func (p *Provider) Model() string { return p.model }

// TestConnection implements generation.Provider.
func (p *Provider) TestConnection(ctx context.Context) generation.ConnectionStatus {
	return generation.Probe(ctx, p)
}

// Call implements generation.Provider.
func (p *Provider) Call(ctx context.Context, prompt string, opts generation.CallOptions) (string, error) {
	log := logger.FromContextOrDefault(ctx, p.logger)
	opts = withFallback(opts, p.defaults).WithDefaults()

	ctx, cancel := context.WithTimeout(ctx, opts.Timeout)
	defer cancel()

	config := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(opts.Temperature),
		MaxOutputTokens: int32(opts.MaxOutputTokens),
	}
	system := opts.SystemPrompt
	if system == "" {
		system = generation.DefaultSystemPrompt
	}
	config.SystemInstruction = &genai.Content{
		Parts: []*genai.Part{{Text: system}},
	}

	log.DebugContext(ctx, "Making Gemini API call",
		"prompt_length", len(prompt),
		"max_output_tokens", opts.MaxOutputTokens)

	resp, err := p.client.Models.GenerateContent(ctx, p.model, genai.Text(prompt), config)
	if err != nil {
		perr := p.wrapError(err)
		log.WarnContext(ctx, "Gemini API call failed",
			"status", perr.StatusCode,
			"timeout", perr.Timeout,
			"error", perr.Message)
		return "", perr
	}

	switch {
	case resp == nil || len(resp.Candidates) == 0:
		return "", generation.NewProviderError(p.Name(), p.model, 0, "no candidates in response", nil)
	case resp.Candidates[0].FinishReason == genai.FinishReasonSafety:
		return "", generation.NewProviderError(p.Name(), p.model, 0, ErrContentBlocked.Error(), ErrContentBlocked)
	case resp.Candidates[0].Content == nil:
		return "", nil
	}

	var text strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if part != nil {
			text.WriteString(part.Text)
		}
	}
	return text.String(), nil
}

func (p *Provider) wrapError(err error) *generation.ProviderError {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return generation.NewProviderError(p.Name(), p.model, apiErr.Code,
			redact.Secrets(apiErr.Message, p.apiKey), err)
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) && apiErrPtr != nil {
		return generation.NewProviderError(p.Name(), p.model, apiErrPtr.Code,
			redact.Secrets(apiErrPtr.Message, p.apiKey), err)
	}
	return generation.NewProviderError(p.Name(), p.model, 0, redact.Secrets(err.Error(), p.apiKey), err)
}

func withFallback(opts, defaults generation.CallOptions) generation.CallOptions {
	if opts.SystemPrompt == "" {
		opts.SystemPrompt = defaults.SystemPrompt
	}
	if opts.Temperature == 0 {
		opts.Temperature = defaults.Temperature
	}
	if opts.MaxOutputTokens <= 0 {
		opts.MaxOutputTokens = defaults.MaxOutputTokens
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaults.Timeout
	}
	return opts
}

// Register installs the Gemini backend on r.
func Register(r *generation.Registry, cfg Config, logger *slog.Logger) {
	r.Register(generation.BackendGemini, func(ctx context.Context, model, apiKey string) (generation.Provider, error) {
		return New(ctx, cfg, model, apiKey, logger)
	}, Models...)
}
