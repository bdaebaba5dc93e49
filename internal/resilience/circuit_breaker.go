package resilience

import (
	"errors"
	"log/slog"
	"time"

	"github.com/sony/gobreaker"
)

// CircuitBreakerConfig holds configuration for the circuit breaker
type CircuitBreakerConfig struct {
	FailureThreshold uint32        `json:"failure_threshold"` // Consecutive failures before opening
	RecoveryTimeout  time.Duration `json:"recovery_timeout"`  // Time spent open before probing again
	SuccessThreshold uint32        `json:"success_threshold"` // Probe requests allowed while half-open
}

// DefaultCircuitBreakerConfig returns the settings used for the emotion API
func DefaultCircuitBreakerConfig() CircuitBreakerConfig {
	return CircuitBreakerConfig{
		FailureThreshold: 5,
		RecoveryTimeout:  30 * time.Second,
		SuccessThreshold: 1,
	}
}

// StateChangeFunc is notified whenever the breaker moves between states
type StateChangeFunc func(name string, from, to gobreaker.State)

// CircuitBreaker protects calls to one external service
type CircuitBreaker struct {
	name string
	cb   *gobreaker.CircuitBreaker
}

// NewCircuitBreaker creates a breaker that opens after FailureThreshold consecutive failures
func NewCircuitBreaker(name string, config CircuitBreakerConfig, onChange ...StateChangeFunc) *CircuitBreaker {
	defaults := DefaultCircuitBreakerConfig()
	if config.FailureThreshold == 0 {
		config.FailureThreshold = defaults.FailureThreshold
	}
	if config.RecoveryTimeout == 0 {
		config.RecoveryTimeout = defaults.RecoveryTimeout
	}
	if config.SuccessThreshold == 0 {
		config.SuccessThreshold = defaults.SuccessThreshold
	}

	threshold := config.FailureThreshold
	settings := gobreaker.Settings{
		Name:        name,
		MaxRequests: config.SuccessThreshold,
		Timeout:     config.RecoveryTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			slog.Warn("Circuit breaker state changed",
				"component", name,
				"from", from.String(),
				"to", to.String(),
			)
			for _, fn := range onChange {
				fn(name, from, to)
			}
		},
	}

	return &CircuitBreaker{
		name: name,
		cb:   gobreaker.NewCircuitBreaker(settings),
	}
}

// Call runs fn unless the breaker is open. A non-nil error from fn counts as a failure.
func (c *CircuitBreaker) Call(fn func() error) error {
	_, err := c.cb.Execute(func() (interface{}, error) {
		return nil, fn()
	})
	return err
}

// Name returns the protected service name
func (c *CircuitBreaker) Name() string {
	return c.name
}

// State returns the current breaker state
func (c *CircuitBreaker) State() gobreaker.State {
	return c.cb.State()
}

// IsOpen reports whether calls are currently rejected without being attempted
func (c *CircuitBreaker) IsOpen() bool {
	return c.cb.State() == gobreaker.StateOpen
}

// GetStats returns breaker statistics for health reporting
func (c *CircuitBreaker) GetStats() map[string]interface{} {
	counts := c.cb.Counts()
	return map[string]interface{}{
		"state":                c.cb.State().String(),
		"requests":             counts.Requests,
		"total_failures":       counts.TotalFailures,
		"consecutive_failures": counts.ConsecutiveFailures,
	}
}

// IsRejection reports whether err was produced by the breaker rather than the call
func IsRejection(err error) bool {
	return errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests)
}
