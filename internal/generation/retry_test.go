package generation

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type scriptedProvider struct {
	results []error
	calls   int
}

func (s *scriptedProvider) Call(context.Context, string, CallOptions) (string, error) {
	err := s.results[s.calls]
	s.calls++
	if err != nil {
		return "", err
	}
	return "done", nil
}

func (s *scriptedProvider) TestConnection(ctx context.Context) ConnectionStatus { return Probe(ctx, s) }
func (s *scriptedProvider) Name() string                                       { return "scripted" }
func (s *scriptedProvider) Model() string                                      { return "m" }

func newTestRetry(p Provider, maxRetries int) (*retryingProvider, *[]time.Duration) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	r := newRetryingProvider(p, logger, RetryPolicy{MaxRetries: maxRetries, BaseDelay: 100 * time.Millisecond})
	var delays []time.Duration
	r.sleep = func(_ context.Context, d time.Duration) error {
		delays = append(delays, d)
		return nil
	}
	return r, &delays
}

func TestRetry(t *testing.T) {
	transient := NewProviderError("scripted", "m", 503, "unavailable", nil)
	permanent := NewProviderError("scripted", "m", 401, "bad key", nil)
	timeout := NewProviderError("scripted", "m", 0, "", context.DeadlineExceeded)

	t.Run("recovers after transient failure", func(t *testing.T) {
		p := &scriptedProvider{results: []error{transient, nil}}
		r, delays := newTestRetry(p, 2)

		out, err := r.Call(context.Background(), "x", CallOptions{})
		require.NoError(t, err)
		assert.Equal(t, "done", out)
		assert.Equal(t, 2, p.calls)
		require.Len(t, *delays, 1)
		assert.GreaterOrEqual(t, (*delays)[0], 50*time.Millisecond)
		assert.LessOrEqual(t, (*delays)[0], 100*time.Millisecond)
	})

	t.Run("gives up after max retries", func(t *testing.T) {
		p := &scriptedProvider{results: []error{transient, transient, transient}}
		r, _ := newTestRetry(p, 2)

		_, err := r.Call(context.Background(), "x", CallOptions{})
		assert.ErrorIs(t, err, ErrProviderCallFailed)
		assert.Equal(t, 3, p.calls)
	})

	t.Run("does not retry permanent failures", func(t *testing.T) {
		p := &scriptedProvider{results: []error{permanent}}
		r, _ := newTestRetry(p, 3)

		_, err := r.Call(context.Background(), "x", CallOptions{})
		assert.ErrorIs(t, err, ErrProviderCallFailed)
		assert.Equal(t, 1, p.calls)
	})

	t.Run("does not retry timeouts", func(t *testing.T) {
		p := &scriptedProvider{results: []error{timeout}}
		r, _ := newTestRetry(p, 3)

		_, err := r.Call(context.Background(), "x", CallOptions{})
		assert.ErrorIs(t, err, ErrProviderTimeout)
		assert.Equal(t, 1, p.calls)
	})

	t.Run("connection test retries transient failures", func(t *testing.T) {
		p := &scriptedProvider{results: []error{transient, nil}}
		r, delays := newTestRetry(p, 2)

		status := r.TestConnection(context.Background())
		assert.True(t, status.OK)
		assert.Equal(t, "done", status.Message)
		assert.Equal(t, 2, p.calls)
		assert.Len(t, *delays, 1)
	})

	t.Run("does not retry foreign errors", func(t *testing.T) {
		p := &scriptedProvider{results: []error{errors.New("boom")}}
		r, _ := newTestRetry(p, 3)

		_, err := r.Call(context.Background(), "x", CallOptions{})
		assert.EqualError(t, err, "boom")
		assert.Equal(t, 1, p.calls)
	})
}
