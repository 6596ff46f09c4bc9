package resilience

import (
	"context"
	"errors"
	"time"

	pkgerrors "biolink-gateway/pkg/errors"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

// CircuitBreakerConfig holds configuration for a circuit breaker
type CircuitBreakerConfig struct {
	Name        string
	MaxRequests uint32
	Interval    time.Duration
	Timeout     time.Duration
	// FailureThreshold is the failure ratio that trips the breaker once
	// MinRequests have been counted.
	FailureThreshold float64
	MinRequests      uint32
}

// DefaultCircuitBreakerConfig returns a default configuration
func DefaultCircuitBreakerConfig(name string) CircuitBreakerConfig {
	return CircuitBreakerConfig{
		Name:             name,
		MaxRequests:      5,
		Interval:         30 * time.Second,
		Timeout:          60 * time.Second,
		FailureThreshold: 0.8,
		MinRequests:      5,
	}
}

// Breaker guards calls to one upstream
type Breaker struct {
	cb     *gobreaker.CircuitBreaker
	logger *zap.Logger
}

// NewBreaker creates a breaker. Only upstream errors count as failures; a
// not-found or validation result means the upstream answered.
func NewBreaker(config CircuitBreakerConfig, logger *zap.Logger) *Breaker {
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        config.Name,
		MaxRequests: config.MaxRequests,
		Interval:    config.Interval,
		Timeout:     config.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < config.MinRequests {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return failureRatio >= config.FailureThreshold
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn("Circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
		IsSuccessful: func(err error) bool {
			return err == nil || !isFailure(err)
		},
	})

	return &Breaker{cb: cb, logger: logger}
}

// Execute runs fn through the breaker. A rejected call is reported as an
// unavailable error for the breaker's upstream.
func (b *Breaker) Execute(fn func() (interface{}, error)) (interface{}, error) {
	result, err := b.cb.Execute(fn)
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		b.logger.Warn("Circuit breaker rejected call",
			zap.String("breaker", b.cb.Name()),
			zap.Error(err),
		)
		return nil, pkgerrors.NewUnavailableError(b.cb.Name()).WithCause(err)
	}
	return result, err
}

// State reports the breaker state
func (b *Breaker) State() gobreaker.State {
	return b.cb.State()
}

// isFailure reports whether err says something about the upstream's health.
// Caller cancellation never does.
func isFailure(err error) bool {
	if errors.Is(err, context.Canceled) || pkgerrors.IsType(err, pkgerrors.ErrorTypeCanceled) {
		return false
	}
	if !pkgerrors.IsAppError(err) {
		return true
	}
	return pkgerrors.IsUpstream(err) || pkgerrors.IsType(err, pkgerrors.ErrorTypeInternal)
}
