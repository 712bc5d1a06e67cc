package resilience

import (
	"context"
	"sync"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/zurychhh/alpha-machine/errs"
	"github.com/zurychhh/alpha-machine/observability"
)

// BreakerConfig controls one provider's circuit breaker.
type BreakerConfig struct {
	ConsecutiveFailures uint32        // trips the breaker after this many consecutive failures
	Window              time.Duration // rolling window the failure count resets over while closed
	Cooldown            time.Duration // time spent open before a half-open probe is allowed
}

// DefaultBreakerConfig matches the design's default: N=5 consecutive failures
// within a 60s window, 30s cooldown before a half-open probe.
var DefaultBreakerConfig = BreakerConfig{
	ConsecutiveFailures: 5,
	Window:              60 * time.Second,
	Cooldown:            30 * time.Second,
}

// Registry manages one gobreaker instance per provider name. It is the only
// process-wide shared mutable state besides the cache, and is safe for
// concurrent use.
type Registry struct {
	mu       sync.RWMutex
	breakers map[string]*gobreaker.CircuitBreaker[any]
	config   BreakerConfig
}

// NewRegistry creates a registry with the given config.
func NewRegistry(config BreakerConfig) *Registry {
	return &Registry{
		breakers: make(map[string]*gobreaker.CircuitBreaker[any]),
		config:   config,
	}
}

// GetBreaker returns (or lazily creates) the breaker for name.
func (r *Registry) GetBreaker(name string) *gobreaker.CircuitBreaker[any] {
	r.mu.RLock()
	cb, exists := r.breakers[name]
	r.mu.RUnlock()
	if exists {
		return cb
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if cb, exists = r.breakers[name]; exists {
		return cb
	}

	threshold := r.config.ConsecutiveFailures
	settings := gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Interval:    r.config.Window,
		Timeout:     r.config.Cooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			observability.Warn("circuit breaker state change", "breaker", name, "from", from.String(), "to", to.String())
			metrics := observability.GetMetrics()
			metrics.SetCircuitBreakerState(name, stateToInt(to))
			if to == gobreaker.StateOpen {
				metrics.RecordCircuitBreakerTrip(name)
			}
		},
	}

	cb = gobreaker.NewCircuitBreaker[any](settings)
	r.breakers[name] = cb
	return cb
}

// Execute runs fn through the named breaker. A tripped or half-open-saturated
// breaker returns an Unavailable error without invoking fn.
func (r *Registry) Execute(ctx context.Context, name string, fn func() (any, error)) (any, error) {
	cb := r.GetBreaker(name)

	result, err := cb.Execute(func() (any, error) {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return fn()
	})

	if err != nil {
		if err == gobreaker.ErrOpenState || err == gobreaker.ErrTooManyRequests {
			return nil, errs.New(errs.Unavailable, name, err)
		}
	}

	return result, err
}

// Status reports the current state of every registered breaker.
func (r *Registry) Status() map[string]BreakerStatus {
	r.mu.RLock()
	defer r.mu.RUnlock()

	status := make(map[string]BreakerStatus, len(r.breakers))
	for name, cb := range r.breakers {
		counts := cb.Counts()
		status[name] = BreakerStatus{
			Name:             name,
			State:            cb.State().String(),
			Requests:         counts.Requests,
			TotalSuccesses:   counts.TotalSuccesses,
			TotalFailures:    counts.TotalFailures,
			ConsecutiveSucc:  counts.ConsecutiveSuccesses,
			ConsecutiveFails: counts.ConsecutiveFailures,
		}
	}
	return status
}

// BreakerStatus is a point-in-time snapshot of one breaker.
type BreakerStatus struct {
	Name             string `json:"name"`
	State            string `json:"state"`
	Requests         uint32 `json:"requests"`
	TotalSuccesses   uint32 `json:"total_successes"`
	TotalFailures    uint32 `json:"total_failures"`
	ConsecutiveSucc  uint32 `json:"consecutive_successes"`
	ConsecutiveFails uint32 `json:"consecutive_failures"`
}

var (
	globalRegistry *Registry
	registryOnce   sync.Once
)

// GlobalRegistry returns the process-wide registry, created lazily with
// DefaultBreakerConfig.
func GlobalRegistry() *Registry {
	registryOnce.Do(func() {
		globalRegistry = NewRegistry(DefaultBreakerConfig)
	})
	return globalRegistry
}

// SetGlobalRegistry overrides the process-wide registry; used by tests that
// need isolated breaker state.
func SetGlobalRegistry(r *Registry) {
	globalRegistry = r
}

// WithBreaker wraps fn with circuit-breaker protection on the global registry.
func WithBreaker[T any](ctx context.Context, name string, fn func() (T, error)) (T, error) {
	result, err := GlobalRegistry().Execute(ctx, name, func() (any, error) {
		return fn()
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return result.(T), nil
}

// Breaker names for the provider chain and LLM adapters.
const (
	BreakerMarketPrimary   = "market_primary"
	BreakerMarketSecondary = "market_secondary"
	BreakerMarketTertiary  = "market_tertiary"
	BreakerMarketQuaternary = "market_quaternary"
	BreakerSentimentNews   = "sentiment_news"
	BreakerSentimentSocial = "sentiment_social"
	BreakerLLMOpenAI       = "llm_openai"
	BreakerLLMBedrock      = "llm_bedrock"
)

func stateToInt(state gobreaker.State) int {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}
