package openai

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
	goopenai "github.com/sashabaranov/go-openai"
)

// DeepSeekBaseURL is the OpenAI-compatible DeepSeek endpoint.
const DeepSeekBaseURL = "https://api.deepseek.com/v1"

// Canonical model ids registered for each backend.
var (
	OpenAIModels   = []string{"gpt-4o", "gpt-4o-mini", "gpt-4.1", "gpt-4.1-mini", "gpt-3.5-turbo", "o3-mini"}
	DeepSeekModels = []string{"deepseek-chat", "deepseek-reasoner"}
)

// Config configures one OpenAI-compatible backend.
type Config struct {
	// Backend is reported as the provider name.
	Backend generation.Backend
	// BaseURL overrides the API endpoint. Empty uses the library default.
	BaseURL string
	// HTTPClient is used for all requests. Nil uses http.DefaultClient.
	HTTPClient *http.Client
	// Defaults fill unset CallOptions fields.
	Defaults generation.CallOptions
}

// Provider is a generation.Provider backed by an OpenAI-compatible API.
type Provider struct {
	client   *goopenai.Client
	name     string
	model    string
	apiKey   string
	defaults generation.CallOptions
	logger   *slog.Logger
}

var _ generation.Provider = (*Provider)(nil)

// New creates a provider for model authenticated with apiKey.
func New(cfg Config, model, apiKey string, logger *slog.Logger) (*Provider, error) {
	if strings.TrimSpace(model) == "" {
		return nil, fmt.Errorf("%w: model cannot be empty", generation.ErrInvalidConfig)
	}
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("%w: %s requires an API key", generation.ErrInvalidConfig, cfg.Backend)
	}
	if logger == nil {
		logger = slog.Default()
	}
	name := string(cfg.Backend)
	if name == "" {
		name = string(generation.BackendOpenAI)
	}

	clientCfg := goopenai.DefaultConfig(apiKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = strings.TrimSuffix(cfg.BaseURL, "/")
	}
	if cfg.HTTPClient != nil {
		clientCfg.HTTPClient = cfg.HTTPClient
	}

	return &Provider{
		client:   goopenai.NewClientWithConfig(clientCfg),
		name:     name,
		model:    model,
		apiKey:   apiKey,
		defaults: cfg.Defaults,
		logger:   logger.With("component", name+"_provider", "model", model),
	}, nil
}

// Name implements generation.Provider.
func (p *Provider) Name() string { return p.name }

// Model implements generation.Provider.
func (p *Provider) Model() string { return p.model }

// TestConnection implements generation.Provider.
func (p *Provider) TestConnection(ctx context.Context) generation.ConnectionStatus {
	return generation.Probe(ctx, p)
}

// Call implements generation.Provider.
func (p *Provider) Call(ctx context.Context, prompt string, opts generation.CallOptions) (string, error) {
	log := logger.FromContextOrDefault(ctx, p.logger)
	opts = mergeOptions(opts, p.defaults).WithDefaults()

	ctx, cancel := context.WithTimeout(ctx, opts.Timeout)
	defer cancel()

	system := opts.SystemPrompt
	if system == "" {
		system = generation.DefaultSystemPrompt
	}
	req := goopenai.ChatCompletionRequest{
		Model: p.model,
		Messages: []goopenai.ChatCompletionMessage{
			{Role: goopenai.ChatMessageRoleSystem, Content: system},
			{Role: goopenai.ChatMessageRoleUser, Content: prompt},
		},
	}
	if isReasoningModel(p.model) {
		// Reasoning models reject max_tokens and any non-default temperature.
		req.MaxCompletionTokens = opts.MaxOutputTokens
	} else {
		req.Temperature = opts.Temperature
		req.MaxTokens = opts.MaxOutputTokens
	}

	log.DebugContext(ctx, "sending chat completion",
		"prompt_length", len(prompt),
		"max_tokens", opts.MaxOutputTokens)

	resp, err := p.client.CreateChatCompletion(ctx, req)
	if err != nil {
		perr := p.wrapError(err)
		log.WarnContext(ctx, "chat completion failed",
			"status", perr.StatusCode,
			"timeout", perr.Timeout,
			"error", perr.Message)
		return "", perr
	}
	if len(resp.Choices) == 0 {
		return "", generation.NewProviderError(p.name, p.model, 0, "response contained no choices", nil)
	}

	return resp.Choices[0].Message.Content, nil
}

// wrapError converts a go-openai error into a redacted ProviderError.
func (p *Provider) wrapError(err error) *generation.ProviderError {
	var apiErr *goopenai.APIError
	if errors.As(err, &apiErr) {
		return generation.NewProviderError(p.name, p.model, apiErr.HTTPStatusCode,
			redact.Secrets(apiErr.Message, p.apiKey), err)
	}
	var reqErr *goopenai.RequestError
	if errors.As(err, &reqErr) {
		return generation.NewProviderError(p.name, p.model, reqErr.HTTPStatusCode,
			redact.Secrets(reqErr.Error(), p.apiKey), err)
	}
	return generation.NewProviderError(p.name, p.model, 0, redact.Secrets(err.Error(), p.apiKey), err)
}

func isReasoningModel(model string) bool {
	m := strings.ToLower(model)
	return strings.HasPrefix(m, "o1") || strings.HasPrefix(m, "o3") || strings.HasPrefix(m, "o4")
}

func mergeOptions(opts, defaults generation.CallOptions) generation.CallOptions {
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

// NewFactory returns a generation.Factory building providers from cfg.
func NewFactory(cfg Config, logger *slog.Logger) generation.Factory {
	return func(_ context.Context, model, apiKey string) (generation.Provider, error) {
		return New(cfg, model, apiKey, logger)
	}
}

// Register installs the OpenAI backend on r.
func Register(r *generation.Registry, cfg Config, logger *slog.Logger) {
	cfg.Backend = generation.BackendOpenAI
	r.Register(generation.BackendOpenAI, NewFactory(cfg, logger), OpenAIModels...)
}

// RegisterDeepSeek installs the DeepSeek backend on r. An empty BaseURL
// uses DeepSeekBaseURL.
func RegisterDeepSeek(r *generation.Registry, cfg Config, logger *slog.Logger) {
	cfg.Backend = generation.BackendDeepSeek
	if cfg.BaseURL == "" {
		cfg.BaseURL = DeepSeekBaseURL
	}
	r.Register(generation.BackendDeepSeek, NewFactory(cfg, logger), DeepSeekModels...)
}
