package resilience

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	pkgerrors "biolink-gateway/pkg/errors"

	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testConfig() CircuitBreakerConfig {
	cfg := DefaultCircuitBreakerConfig("neo4j")
	cfg.MinRequests = 2
	cfg.FailureThreshold = 0.5
	cfg.Timeout = time.Hour
	return cfg
}

func TestBreaker_TripsOnUpstreamFailures(t *testing.T) {
	b := NewBreaker(testConfig(), zap.NewNop())
	fail := func() (interface{}, error) { return nil, errors.New("connection refused") }

	_, _ = b.Execute(fail)
	_, _ = b.Execute(fail)
	require.Equal(t, gobreaker.StateOpen, b.State())

	_, err := b.Execute(func() (interface{}, error) { return "never", nil })

	assert.True(t, pkgerrors.IsType(err, pkgerrors.ErrorTypeUnavailable))
	assert.Contains(t, err.Error(), "neo4j")
}

func TestBreaker_NotFoundDoesNotTrip(t *testing.T) {
	b := NewBreaker(testConfig(), zap.NewNop())
	missing := func() (interface{}, error) { return nil, pkgerrors.NewNotFoundError("entity") }

	for i := 0; i < 5; i++ {
		_, err := b.Execute(missing)
		assert.True(t, pkgerrors.IsNotFound(err))
	}

	assert.Equal(t, gobreaker.StateClosed, b.State())
}

func TestBreaker_CancellationDoesNotTrip(t *testing.T) {
	b := NewBreaker(testConfig(), zap.NewNop())
	errs := []error{
		context.Canceled,
		fmt.Errorf("read: %w", context.Canceled),
		pkgerrors.NewCanceledError("neo4j read").WithCause(context.Canceled),
	}

	for i := 0; i < 3; i++ {
		for _, e := range errs {
			e := e
			_, err := b.Execute(func() (interface{}, error) { return nil, e })
			assert.ErrorIs(t, err, context.Canceled)
		}
	}

	assert.Equal(t, gobreaker.StateClosed, b.State())
}

func TestBreaker_PassesResults(t *testing.T) {
	b := NewBreaker(testConfig(), zap.NewNop())

	v, err := b.Execute(func() (interface{}, error) { return 42, nil })

	require.NoError(t, err)
	assert.Equal(t, 42, v)
}
