package ai

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"article-server/internal/models"
)

// DefaultProvider is used when job settings do not name one.
const DefaultProvider = "openrouter"

// DefaultFallbackPriority is the fixed roster order tried when the primary
// provider is exhausted.
var DefaultFallbackPriority = []string{"openrouter", "openai", "ollama"}

const (
	defaultMaxRetries       = 2
	defaultCallTimeout      = 140 * time.Second
	defaultRetryableBackoff = 2 * time.Second
	defaultRejectionBackoff = 1 * time.Second
)

// Registry is the provider capability map: only providers with configured
// credentials are registered, so a caller structurally cannot invoke an
// unconfigured one.
type Registry struct {
	clients  map[string]ProviderClient
	priority []string
}

// NewRegistry creates an empty registry with the default fallback priority.
func NewRegistry() *Registry {
	return &Registry{
		clients:  make(map[string]ProviderClient),
		priority: DefaultFallbackPriority,
	}
}

// Register adds a credentialed provider client.
func (r *Registry) Register(client ProviderClient) {
	r.clients[client.Name()] = client
}

// Get returns the client for name, if credentialed.
func (r *Registry) Get(name string) (ProviderClient, bool) {
	c, ok := r.clients[name]
	return c, ok
}

// Len returns the number of credentialed providers.
func (r *Registry) Len() int { return len(r.clients) }

// Settings select the primary provider for one call.
type Settings struct {
	Provider string
}

func (s Settings) primary() string {
	if s.Provider == "" {
		return DefaultProvider
	}
	return s.Provider
}

// RouterOptions tune the retry/fallback discipline. Zero values take the
// defaults above.
type RouterOptions struct {
	MaxRetries       int
	CallTimeout      time.Duration
	RetryableBackoff time.Duration
	RejectionBackoff time.Duration
}

// Router calls a text-generation provider with timeout, retry and
// cross-provider fallback.
type Router struct {
	registry         *Registry
	logger           *zap.Logger
	maxRetries       int
	callTimeout      time.Duration
	retryableBackoff time.Duration
	rejectionBackoff time.Duration
}

// NewRouter builds a Router over a provider registry.
func NewRouter(registry *Registry, logger *zap.Logger, opts RouterOptions) *Router {
	if opts.MaxRetries <= 0 {
		opts.MaxRetries = defaultMaxRetries
	}
	if opts.CallTimeout <= 0 {
		opts.CallTimeout = defaultCallTimeout
	}
	if opts.RetryableBackoff <= 0 {
		opts.RetryableBackoff = defaultRetryableBackoff
	}
	if opts.RejectionBackoff <= 0 {
		opts.RejectionBackoff = defaultRejectionBackoff
	}
	return &Router{
		registry:         registry,
		logger:           logger.Named("ProviderRouter"),
		maxRetries:       opts.MaxRetries,
		callTimeout:      opts.CallTimeout,
		retryableBackoff: opts.RetryableBackoff,
		rejectionBackoff: opts.RejectionBackoff,
	}
}

// CallWithFallback runs up to maxRetries attempts against the primary
// provider and then tries each credentialed fallback provider once. It fails
// only after the whole roster is exhausted.
func (r *Router) CallWithFallback(ctx context.Context, settings Settings, prompt Prompt, params GenerationParams) (string, Usage, error) {
	primary := settings.primary()
	log := r.logger.With(zap.String("primary", primary))

	var lastErr error

	if client, ok := r.registry.Get(primary); ok {
		for attempt := 1; attempt <= r.maxRetries; attempt++ {
			text, usage, err := r.callOnce(ctx, client, prompt, params, attempt)
			if err == nil {
				return text, usage, nil
			}
			lastErr = err
			log.Warn("Primary provider attempt failed",
				zap.Int("attempt", attempt),
				zap.Int("max_attempts", r.maxRetries),
				zap.Error(err))

			if attempt == r.maxRetries {
				break
			}
			if sleepErr := r.backoff(ctx, err, attempt); sleepErr != nil {
				return "", Usage{}, sleepErr
			}
		}

		if !IsFallbackWorthy(lastErr) {
			return "", Usage{}, lastErr
		}
	} else {
		lastErr = fmt.Errorf("primary provider '%s' has no configured credentials", primary)
		log.Warn("Primary provider not credentialed, going straight to fallback")
	}

	return r.fallback(ctx, primary, prompt, params, lastErr)
}

// fallback tries each credentialed provider from the priority roster once,
// never including the primary.
func (r *Router) fallback(ctx context.Context, primary string, prompt Prompt, params GenerationParams, lastErr error) (string, Usage, error) {
	tried := 0
	for _, name := range r.registry.priority {
		if name == primary {
			continue
		}
		client, ok := r.registry.Get(name)
		if !ok {
			continue
		}
		tried++
		aiFallbacksTotal.WithLabelValues(primary, name).Inc()
		r.logger.Info("Trying fallback provider",
			zap.String("from", primary),
			zap.String("to", name))

		text, usage, err := r.callOnce(ctx, client, prompt, params, 1)
		if err == nil {
			return text, usage, nil
		}
		lastErr = err
		r.logger.Warn("Fallback provider failed", zap.String("provider", name), zap.Error(err))
	}

	if tried == 0 && r.registry.Len() == 0 {
		return "", Usage{}, models.ErrNoProvidersConfigured
	}
	return "", Usage{}, lastErr
}

// callOnce wraps one provider call in the timeout race. A deadline loss is
// surfaced as a synthetic TimeoutError naming the provider and attempt.
func (r *Router) callOnce(ctx context.Context, client ProviderClient, prompt Prompt, params GenerationParams, attempt int) (string, Usage, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, r.callTimeout)
	defer cancel()

	text, usage, err := client.GenerateText(attemptCtx, prompt, params)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
			return "", usage, &TimeoutError{Provider: client.Name(), Attempt: attempt}
		}
		return "", usage, &ProviderError{Provider: client.Name(), Attempt: attempt, Err: err}
	}
	return text, usage, nil
}

// backoff sleeps the classification-dependent delay, doubling per attempt.
func (r *Router) backoff(ctx context.Context, err error, attempt int) error {
	base := r.rejectionBackoff
	if IsRetryable(err) {
		base = r.retryableBackoff
	}
	delay := base * (1 << (attempt - 1))

	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
