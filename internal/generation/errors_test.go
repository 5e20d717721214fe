package generation

import (
	"context"
	"errors"
	"fmt"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
)

type timeoutNetErr struct{}

func (timeoutNetErr) Error() string   { return "i/o timeout" }
func (timeoutNetErr) Timeout() bool   { return true }
func (timeoutNetErr) Temporary() bool { return true }

var _ net.Error = timeoutNetErr{}

func TestProviderErrorMatching(t *testing.T) {
	t.Run("plain failure matches call failed only", func(t *testing.T) {
		err := NewProviderError("openai", "gpt-4o", 401, "invalid api key", errors.New("unauthorized"))
		assert.ErrorIs(t, err, ErrProviderCallFailed)
		assert.NotErrorIs(t, err, ErrProviderTimeout)
		assert.False(t, err.Transient)
		assert.Contains(t, err.Error(), "status 401")
	})

	t.Run("deadline exceeded is a timeout", func(t *testing.T) {
		cause := fmt.Errorf("post: %w", context.DeadlineExceeded)
		err := NewProviderError("deepseek", "deepseek-chat", 0, "", cause)
		wrapped := fmt.Errorf("summary: %w", err)
		assert.ErrorIs(t, wrapped, ErrProviderCallFailed)
		assert.ErrorIs(t, wrapped, ErrProviderTimeout)
		assert.ErrorIs(t, wrapped, context.DeadlineExceeded)
		assert.Contains(t, err.Error(), "timed out")
	})

	t.Run("net timeout is a timeout", func(t *testing.T) {
		err := NewProviderError("ollama", "llama3", 0, "", timeoutNetErr{})
		assert.True(t, err.Timeout)
	})

	t.Run("server errors are transient", func(t *testing.T) {
		assert.True(t, NewProviderError("openai", "m", 503, "", nil).Transient)
		assert.True(t, NewProviderError("openai", "m", 429, "", nil).Transient)
		assert.False(t, NewProviderError("openai", "m", 400, "", nil).Transient)
	})

	t.Run("cancellation is not transient", func(t *testing.T) {
		err := NewProviderError("openai", "m", 0, "", context.Canceled)
		assert.False(t, err.Transient)
		assert.False(t, err.Timeout)
	})
}

func TestCallOptionsWithDefaults(t *testing.T) {
	opts := CallOptions{}.WithDefaults()
	assert.Equal(t, DefaultTemperature, opts.Temperature)
	assert.Equal(t, DefaultMaxOutputTokens, opts.MaxOutputTokens)
	assert.Equal(t, DefaultTimeout, opts.Timeout)

	custom := CallOptions{Temperature: 0.2, MaxOutputTokens: 50}.WithDefaults()
	assert.InDelta(t, 0.2, custom.Temperature, 0.0001)
	assert.Equal(t, 50, custom.MaxOutputTokens)
}
