package generation

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
)

// Backend names a provider implementation.
type Backend string

// Known backends.
const (
	BackendOpenAI   Backend = "openai"
	BackendDeepSeek Backend = "deepseek"
	BackendGemini   Backend = "gemini"
	BackendOllama   Backend = "ollama"
)

// Factory builds a Provider for model using the caller's API key.
type Factory func(ctx context.Context, model, apiKey string) (Provider, error)

// Decorator wraps a Provider, e.g. with retries or metrics.
type Decorator func(Provider) Provider

// Resolution records how a requested model name was mapped.
type Resolution struct {
	Requested string  `json:"requested"`
	Model     string  `json:"model"`
	Backend   Backend `json:"backend"`
	Fallback  bool    `json:"fallback"`
}

type familyRule struct {
	match   func(model string) bool
	backend Backend
}

func contains(sub string) func(string) bool {
	return func(m string) bool { return strings.Contains(m, sub) }
}

func hasPrefix(prefix string) func(string) bool {
	return func(m string) bool { return strings.HasPrefix(m, prefix) }
}

// defaultFamilies are checked in order against the lower-cased model name.
var defaultFamilies = []familyRule{
	{contains("deepseek"), BackendDeepSeek},
	{contains("gemini"), BackendGemini},
	{contains("gpt"), BackendOpenAI},
	{hasPrefix("o1"), BackendOpenAI},
	{hasPrefix("o3"), BackendOpenAI},
	{hasPrefix("o4"), BackendOpenAI},
	{contains("llama"), BackendOllama},
	{contains("qwen"), BackendOllama},
	{contains("mistral"), BackendOllama},
	{contains("gemma"), BackendOllama},
	{contains("phi"), BackendOllama},
}

// ollamaPrefix forces the ollama backend, e.g. "ollama/deepseek-r1".
const ollamaPrefix = "ollama/"

// Registry maps model names onto backend factories. Exact canonical ids win,
// then model families, then an explicit, logged fallback to the default model.
type Registry struct {
	logger       *slog.Logger
	defaultModel string

	mu         sync.RWMutex
	factories  map[Backend]Factory
	canonical  map[string]Backend
	decorators []Decorator
}

// NewRegistry creates an empty registry that falls back to defaultModel.
func NewRegistry(logger *slog.Logger, defaultModel string) (*Registry, error) {
	if logger == nil {
		return nil, fmt.Errorf("%w: logger cannot be nil", ErrInvalidConfig)
	}
	if strings.TrimSpace(defaultModel) == "" {
		return nil, fmt.Errorf("%w: default model cannot be empty", ErrInvalidConfig)
	}
	return &Registry{
		logger:       logger.With("component", "provider_registry"),
		defaultModel: defaultModel,
		factories:    make(map[Backend]Factory),
		canonical:    make(map[string]Backend),
	}, nil
}

// Register installs the factory for backend along with the canonical model
// ids it serves.
func (r *Registry) Register(backend Backend, factory Factory, models ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[backend] = factory
	for _, m := range models {
		r.canonical[strings.ToLower(m)] = backend
	}
}

// Use appends decorators applied to every resolved provider, outermost last.
func (r *Registry) Use(decorators ...Decorator) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.decorators = append(r.decorators, decorators...)
}

// DefaultModel returns the fallback model.
func (r *Registry) DefaultModel() string {
	return r.defaultModel
}

// Match maps a model name onto a backend without building a provider.
func (r *Registry) Match(model string) (Resolution, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	res := Resolution{Requested: model}
	name := strings.TrimSpace(model)
	if backend, resolved, ok := r.lookup(name); ok {
		res.Model, res.Backend = resolved, backend
		return res, nil
	}

	backend, resolved, ok := r.lookup(r.defaultModel)
	if !ok {
		return res, fmt.Errorf("%w: default model %q matches no backend", ErrUnknownBackend, r.defaultModel)
	}
	res.Model, res.Backend, res.Fallback = resolved, backend, true
	return res, nil
}

// lookup must be called with r.mu held.
func (r *Registry) lookup(model string) (Backend, string, bool) {
	if model == "" {
		return "", "", false
	}
	lower := strings.ToLower(model)
	if b, ok := r.canonical[lower]; ok {
		return b, model, true
	}
	if strings.HasPrefix(lower, ollamaPrefix) {
		return BackendOllama, model[len(ollamaPrefix):], true
	}
	for _, rule := range defaultFamilies {
		if rule.match(lower) {
			return rule.backend, model, true
		}
	}
	return "", "", false
}

// Resolve builds the decorated provider for creds.Model.
func (r *Registry) Resolve(ctx context.Context, creds Credentials) (Provider, Resolution, error) {
	res, err := r.Match(creds.Model)
	if err != nil {
		return nil, res, err
	}
	if res.Fallback {
		r.logger.WarnContext(ctx, "unrecognised model, falling back to default",
			"requested_model", creds.Model,
			"fallback_model", res.Model,
			"backend", res.Backend)
	}

	r.mu.RLock()
	factory, ok := r.factories[res.Backend]
	decorators := append([]Decorator(nil), r.decorators...)
	r.mu.RUnlock()
	if !ok {
		return nil, res, fmt.Errorf("%w: %s", ErrUnknownBackend, res.Backend)
	}

	p, err := factory(ctx, res.Model, creds.APIKey)
	if err != nil {
		return nil, res, fmt.Errorf("failed to create %s provider: %w", res.Backend, err)
	}
	for _, d := range decorators {
		p = d(p)
	}

	r.logger.DebugContext(ctx, "resolved provider",
		"model", res.Model,
		"backend", res.Backend)
	return p, res, nil
}
