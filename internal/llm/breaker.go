package llm

import (
	"context"
	"errors"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"
	"go.uber.org/zap"

	"socialdash/internal/metrics"
)

// ErrCircuitOpen is returned while the breaker is rejecting calls.
var ErrCircuitOpen = errors.New("llm circuit breaker is open")

// BreakerSettings tunes the circuit breaker around a provider.
type BreakerSettings struct {
	MaxRequests  uint32
	Interval     time.Duration
	Timeout      time.Duration
	MinRequests  uint32
	FailureRatio float64
}

// DefaultBreakerSettings opens after 60% failures over at least 5 calls
// and probes again after 30 seconds.
func DefaultBreakerSettings() BreakerSettings {
	return BreakerSettings{
		MaxRequests:  1,
		Interval:     time.Minute,
		Timeout:      30 * time.Second,
		MinRequests:  5,
		FailureRatio: 0.6,
	}
}

// BreakerClient guards a Client with a circuit breaker. It never retries.
type BreakerClient struct {
	inner Client
	cb    *gobreaker.CircuitBreaker[string]
	name  string
}

// NewBreakerClient wraps inner.
func NewBreakerClient(inner Client, name string, s BreakerSettings, logger *zap.Logger) *BreakerClient {
	if name == "" {
		name = ProviderAnthropic
	}
	log := logger.Named("breaker")
	metrics.CircuitBreakerState.WithLabelValues(name).Set(0)

	cb := gobreaker.NewCircuitBreaker[string](gobreaker.Settings{
		Name:        name,
		MaxRequests: s.MaxRequests,
		Interval:    s.Interval,
		Timeout:     s.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < s.MinRequests {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= s.FailureRatio
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn("Circuit breaker state change",
				zap.String("name", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateValue(to))
		},
		IsSuccessful: func(err error) bool {
			// A cancelled caller says nothing about provider health.
			return err == nil || errors.Is(err, context.Canceled)
		},
	})

	return &BreakerClient{inner: inner, cb: cb, name: name}
}

// Generate forwards the request unless the circuit is open.
func (b *BreakerClient) Generate(ctx context.Context, req Request) (string, error) {
	text, err := b.cb.Execute(func() (string, error) {
		return b.inner.Generate(ctx, req)
	})
	switch {
	case err == nil:
		metrics.LLMRequests.WithLabelValues(b.name, "ok").Inc()
		return text, nil
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		metrics.LLMRequests.WithLabelValues(b.name, "rejected").Inc()
		return "", ErrCircuitOpen
	default:
		metrics.LLMRequests.WithLabelValues(b.name, "error").Inc()
		return "", err
	}
}

// State reports the breaker state, e.g. "closed".
func (b *BreakerClient) State() string {
	return b.cb.State().String()
}

func stateValue(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return 0
	}
}
