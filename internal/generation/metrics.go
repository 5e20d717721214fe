package generation

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/pkoukk/tiktoken-go"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus collectors for provider calls.
type Metrics struct {
	calls        *prometheus.CounterVec
	duration     *prometheus.HistogramVec
	promptTokens *prometheus.CounterVec
	outputChars  *prometheus.CounterVec
}

// NewMetrics registers the provider collectors with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		calls: f.NewCounterVec(prometheus.CounterOpts{
			Name: "llm_provider_calls_total",
			Help: "Total number of LLM provider calls by outcome",
		}, []string{"provider", "model", "status"}),
		duration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "llm_provider_call_duration_seconds",
			Help:    "Duration of LLM provider calls",
			Buckets: []float64{0.5, 1, 2, 5, 10, 20, 30, 60, 120},
		}, []string{"provider", "model"}),
		promptTokens: f.NewCounterVec(prometheus.CounterOpts{
			Name: "llm_prompt_tokens_total",
			Help: "Estimated prompt tokens sent to LLM providers",
		}, []string{"provider", "model"}),
		outputChars: f.NewCounterVec(prometheus.CounterOpts{
			Name: "llm_output_characters_total",
			Help: "Characters returned by LLM providers",
		}, []string{"provider", "model"}),
	}
}

// TokenCounter estimates the token count of a prompt.
type TokenCounter interface {
	Count(text string) int
}

// TiktokenCounter counts tokens with a tiktoken encoding, falling back to a
// four-characters-per-token estimate when the encoding cannot be loaded.
type TiktokenCounter struct {
	enc *tiktoken.Tiktoken
}

// NewTiktokenCounter loads the cl100k_base encoding. Loading may require
// network access on first use; failures are logged and the counter degrades
// to an estimate.
func NewTiktokenCounter(logger *slog.Logger) *TiktokenCounter {
	enc, err := tiktoken.GetEncoding("cl100k_base")
	if err != nil {
		logger.Warn("tiktoken encoding unavailable, using length estimate", "error", err)
		return &TiktokenCounter{}
	}
	return &TiktokenCounter{enc: enc}
}

// Count implements TokenCounter.
func (c *TiktokenCounter) Count(text string) int {
	if c == nil || c.enc == nil {
		return (len([]rune(text)) + 3) / 4
	}
	return len(c.enc.Encode(text, nil, nil))
}

type instrumentedProvider struct {
	Provider
	metrics *Metrics
	tokens  TokenCounter
}

// Instrument returns a Decorator recording call counts, latency and volume.
// tokens may be nil.
func Instrument(m *Metrics, tokens TokenCounter) Decorator {
	return func(p Provider) Provider {
		return &instrumentedProvider{Provider: p, metrics: m, tokens: tokens}
	}
}

// TestConnection probes through the decorator so the probe call is recorded.
func (p *instrumentedProvider) TestConnection(ctx context.Context) ConnectionStatus {
	return Probe(ctx, p)
}

func (p *instrumentedProvider) Call(ctx context.Context, prompt string, opts CallOptions) (string, error) {
	name, model := p.Name(), p.Model()
	if p.tokens != nil {
		p.metrics.promptTokens.WithLabelValues(name, model).Add(float64(p.tokens.Count(prompt)))
	}

	start := time.Now()
	out, err := p.Provider.Call(ctx, prompt, opts)
	p.metrics.duration.WithLabelValues(name, model).Observe(time.Since(start).Seconds())

	status := "success"
	switch {
	case errors.Is(err, ErrProviderTimeout):
		status = "timeout"
	case err != nil:
		status = "error"
	}
	p.metrics.calls.WithLabelValues(name, model, status).Inc()
	if err == nil {
		p.metrics.outputChars.WithLabelValues(name, model).Add(float64(len(out)))
	}
	return out, err
}
