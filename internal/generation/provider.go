package generation

import (
	"context"
	"time"
)

// Default call parameters.
const (
	DefaultTemperature     float32 = 0.7
	DefaultMaxOutputTokens         = 4000
	DefaultTimeout                 = 120 * time.Second

	// DefaultSystemPrompt is sent as the system message by chat backends.
	DefaultSystemPrompt = "You are an experienced middle-school teacher who writes clear, accurate study materials."
)

// CallOptions tunes a single provider call. Zero values take the defaults.
type CallOptions struct {
	SystemPrompt    string
	Temperature     float32
	MaxOutputTokens int
	Timeout         time.Duration
}

// WithDefaults returns o with zero fields replaced by the package defaults.
func (o CallOptions) WithDefaults() CallOptions {
	if o.Temperature == 0 {
		o.Temperature = DefaultTemperature
	}
	if o.MaxOutputTokens <= 0 {
		o.MaxOutputTokens = DefaultMaxOutputTokens
	}
	if o.Timeout <= 0 {
		o.Timeout = DefaultTimeout
	}
	return o
}

// Credentials identify the caller's provider account for one request. They
// are never persisted or logged.
type Credentials struct {
	Model  string
	APIKey string
}

// ConnectionStatus is the outcome of a provider connectivity probe.
type ConnectionStatus struct {
	OK       bool          `json:"ok"`
	Provider string        `json:"provider"`
	Model    string        `json:"model"`
	Message  string        `json:"message"`
	Latency  time.Duration `json:"latency"`
}

// Provider is a text-in/text-out LLM backend. Implementations must map every
// failure onto a *ProviderError and honour the context deadline.
type Provider interface {
	// Call sends prompt and returns the completion text.
	Call(ctx context.Context, prompt string, opts CallOptions) (string, error)

	// TestConnection issues a minimal call and reports whether it succeeded.
	TestConnection(ctx context.Context) ConnectionStatus

	// Name returns the backend name.
	Name() string

	// Model returns the model this provider calls.
	Model() string
}

// ProbePrompt is the prompt used by connection probes.
const ProbePrompt = "Reply with the single word: pong"

// Probe runs a short call against p and converts the result into a
// ConnectionStatus. Backends use it to implement TestConnection.
func Probe(ctx context.Context, p Provider) ConnectionStatus {
	start := time.Now()
	out, err := p.Call(ctx, ProbePrompt, CallOptions{MaxOutputTokens: 16, Timeout: 30 * time.Second})
	status := ConnectionStatus{
		Provider: p.Name(),
		Model:    p.Model(),
		Latency:  time.Since(start),
	}
	if err != nil {
		status.Message = err.Error()
		return status
	}
	status.OK = true
	status.Message = out
	return status
}
