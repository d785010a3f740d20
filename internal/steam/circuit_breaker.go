// Steam Shame - Game Library Shame Analytics
// Copyright 2026 DrawedC
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/DrawedC/steam-shame

package steam

import (
	"errors"
	"fmt"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/DrawedC/steam-shame/internal/logging"
	"github.com/DrawedC/steam-shame/internal/metrics"
)

// Circuit breaker tuning. Five consecutive failures open the circuit; after
// 30 seconds a handful of probe requests decide whether it closes again.
const (
	breakerMaxRequests         = 3
	breakerInterval            = 60 * time.Second
	breakerTimeout             = 30 * time.Second
	breakerConsecutiveFailures = 5
)

// CircuitBreaker guards an upstream API so a dead Steam endpoint fails fast
// instead of tying up workers on timeouts. Wraps sony/gobreaker with state
// metrics and logging.
type CircuitBreaker struct {
	name string
	cb   *gobreaker.CircuitBreaker[any]
}

// NewCircuitBreaker creates a named breaker with production defaults.
func NewCircuitBreaker(name string) *CircuitBreaker {
	settings := gobreaker.Settings{
		Name:        name,
		MaxRequests: breakerMaxRequests,
		Interval:    breakerInterval,
		Timeout:     breakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= breakerConsecutiveFailures
		},
		// Rate limiting is backpressure, not an outage. Retrying with a delay
		// is the right response; tripping the breaker is not.
		IsSuccessful: func(err error) bool {
			if err == nil {
				return true
			}
			var rl *rateLimitError
			return errors.As(err, &rl)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateValue(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, from.String(), to.String()).Inc()
			logging.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("Circuit breaker state changed")
		},
	}

	metrics.CircuitBreakerState.WithLabelValues(name).Set(stateValue(gobreaker.StateClosed))

	return &CircuitBreaker{
		name: name,
		cb:   gobreaker.NewCircuitBreaker[any](settings),
	}
}

func stateValue(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	default:
		return 2
	}
}

// Execute runs fn through the breaker, preserving the function's result type.
func Execute[T any](cb *CircuitBreaker, fn func() (T, error)) (T, error) {
	res, err := cb.cb.Execute(func() (any, error) {
		return fn()
	})

	switch {
	case err == nil:
		metrics.CircuitBreakerRequests.WithLabelValues(cb.name, "success").Inc()
	case errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests):
		metrics.CircuitBreakerRequests.WithLabelValues(cb.name, "rejected").Inc()
	default:
		metrics.CircuitBreakerRequests.WithLabelValues(cb.name, "failure").Inc()
	}

	return castResult[T](res, err)
}

// castResult converts the breaker's untyped result back to T. A type
// mismatch here is a programming error, reported rather than panicking.
func castResult[T any](res any, err error) (T, error) {
	var zero T
	if err != nil {
		return zero, err
	}
	if res == nil {
		return zero, nil
	}
	v, ok := res.(T)
	if !ok {
		return zero, fmt.Errorf("circuit breaker returned unexpected type %T", res)
	}
	return v, nil
}
