package generation

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"math/rand"
	"sync"
	"time"
)

// RetryPolicy configures WithRetry.
type RetryPolicy struct {
	// MaxRetries is the number of additional attempts after the first.
	MaxRetries int
	// BaseDelay is the backoff before the first retry.
	BaseDelay time.Duration
}

type retryingProvider struct {
	Provider
	policy RetryPolicy
	logger *slog.Logger

	mu  sync.Mutex
	rng *rand.Rand
	// sleep is replaceable in tests.
	sleep func(ctx context.Context, d time.Duration) error
}

// WithRetry returns a Decorator that retries transient provider failures with
// exponential backoff and jitter. Timeouts are not retried: the caller's
// deadline already covers the whole call.
func WithRetry(logger *slog.Logger, policy RetryPolicy) Decorator {
	return func(p Provider) Provider {
		return newRetryingProvider(p, logger, policy)
	}
}

func newRetryingProvider(p Provider, logger *slog.Logger, policy RetryPolicy) *retryingProvider {
	if policy.MaxRetries < 0 {
		policy.MaxRetries = 0
	}
	if policy.BaseDelay <= 0 {
		policy.BaseDelay = 500 * time.Millisecond
	}
	return &retryingProvider{
		Provider: p,
		policy:   policy,
		logger:   logger.With("component", "provider_retry"),
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
		sleep:    sleepContext,
	}
}

// TestConnection probes through the decorator so transient failures are
// retried like any other call.
func (r *retryingProvider) TestConnection(ctx context.Context) ConnectionStatus {
	return Probe(ctx, r)
}

func (r *retryingProvider) Call(ctx context.Context, prompt string, opts CallOptions) (string, error) {
	var lastErr error
	for attempt := 0; attempt <= r.policy.MaxRetries; attempt++ {
		out, err := r.Provider.Call(ctx, prompt, opts)
		if err == nil {
			return out, nil
		}
		lastErr = err

		var pe *ProviderError
		if !errors.As(err, &pe) || !pe.Transient || pe.Timeout {
			return "", err
		}
		if attempt == r.policy.MaxRetries {
			break
		}

		delay := r.backoff(attempt)
		r.logger.WarnContext(ctx, "transient provider failure, retrying",
			"provider", r.Name(),
			"model", r.Model(),
			"attempt", attempt+1,
			"delay_ms", delay.Milliseconds(),
			"error", err)

		if err := r.sleep(ctx, delay); err != nil {
			return "", lastErr
		}
	}
	return "", lastErr
}

// backoff computes base * 2^attempt * (0.5..1.0).
func (r *retryingProvider) backoff(attempt int) time.Duration {
	r.mu.Lock()
	jitter := 0.5 + r.rng.Float64()*0.5
	r.mu.Unlock()
	d := float64(r.policy.BaseDelay) * math.Pow(2, float64(attempt)) * jitter
	return time.Duration(d)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
