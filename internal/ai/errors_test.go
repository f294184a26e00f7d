package ai

import (
	"errors"
	"testing"

	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
)

func TestIsRetryable(t *testing.T) {
	t.Run("timeouts are retryable", func(t *testing.T) {
		assert.True(t, IsRetryable(&TimeoutError{Provider: "openrouter", Attempt: 1}))
	})

	t.Run("wrapped timeouts stay retryable", func(t *testing.T) {
		err := &ProviderError{Provider: "openrouter", Attempt: 2, Err: &TimeoutError{Provider: "openrouter", Attempt: 2}}
		assert.True(t, IsRetryable(err))
	})

	t.Run("overload status codes are retryable", func(t *testing.T) {
		for _, code := range []int{429, 500, 502, 503, 504, 524, 529} {
			err := &ProviderError{Provider: "openai", Attempt: 1, Err: &openai.APIError{HTTPStatusCode: code}}
			assert.True(t, IsRetryable(err), "status %d", code)
		}
	})

	t.Run("transient message markers are retryable", func(t *testing.T) {
		assert.True(t, IsRetryable(errors.New("rate limit exceeded")))
		assert.True(t, IsRetryable(errors.New("connection reset by peer")))
		assert.True(t, IsRetryable(errors.New("model is at capacity")))
	})

	t.Run("request rejections are not retryable", func(t *testing.T) {
		err := &ProviderError{Provider: "openai", Attempt: 1, Err: &openai.APIError{HTTPStatusCode: 401}}
		assert.False(t, IsRetryable(err))
		assert.False(t, IsRetryable(errors.New("invalid model name")))
		assert.False(t, IsRetryable(nil))
	})
}

func TestIsFallbackWorthy(t *testing.T) {
	t.Run("every retryable error qualifies", func(t *testing.T) {
		assert.True(t, IsFallbackWorthy(&TimeoutError{Provider: "openrouter", Attempt: 1}))
		assert.True(t, IsFallbackWorthy(errors.New("503 service unavailable")))
	})

	t.Run("auth and request rejections qualify", func(t *testing.T) {
		for _, code := range []int{400, 401, 403, 404, 422} {
			err := &ProviderError{Provider: "openai", Attempt: 1, Err: &openai.APIError{HTTPStatusCode: code}}
			assert.True(t, IsFallbackWorthy(err), "status %d", code)
		}
		assert.True(t, IsFallbackWorthy(errors.New("unsupported parameter: logprobs")))
	})

	t.Run("unknown errors stay with the primary", func(t *testing.T) {
		assert.False(t, IsFallbackWorthy(errors.New("content blocked by moderation")))
		assert.False(t, IsFallbackWorthy(nil))
	})
}
