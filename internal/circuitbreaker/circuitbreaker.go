// Package circuitbreaker wraps sony/gobreaker with typed results and the
// project's default trip policy.
package circuitbreaker

import (
	"errors"
	"time"

	"github.com/sony/gobreaker/v2"
)

// Config tunes a breaker. Zero values fall back to DefaultConfig.
type Config struct {
	Name string
	// MaxRequests allowed through while half-open.
	MaxRequests uint32
	// Interval clears the closed-state counts; 0 never clears.
	Interval time.Duration
	// Timeout is how long the breaker stays open before probing.
	Timeout time.Duration
	// ConsecutiveFailures trips the breaker.
	ConsecutiveFailures uint32

	OnStateChange func(name string, from, to gobreaker.State)
}

// DefaultConfig trips after 5 consecutive failures and probes every 30s.
func DefaultConfig(name string) Config {
	return Config{
		Name:                name,
		MaxRequests:         1,
		Interval:            time.Minute,
		Timeout:             30 * time.Second,
		ConsecutiveFailures: 5,
	}
}

// CircuitBreaker guards calls returning T.
type CircuitBreaker[T any] struct {
	cb *gobreaker.CircuitBreaker[T]
}

// New builds a breaker from cfg.
func New[T any](cfg Config) *CircuitBreaker[T] {
	def := DefaultConfig(cfg.Name)
	if cfg.MaxRequests == 0 {
		cfg.MaxRequests = def.MaxRequests
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = def.Timeout
	}
	if cfg.ConsecutiveFailures == 0 {
		cfg.ConsecutiveFailures = def.ConsecutiveFailures
	}
	threshold := cfg.ConsecutiveFailures

	return &CircuitBreaker[T]{
		cb: gobreaker.NewCircuitBreaker[T](gobreaker.Settings{
			Name:        cfg.Name,
			MaxRequests: cfg.MaxRequests,
			Interval:    cfg.Interval,
			Timeout:     cfg.Timeout,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= threshold
			},
			OnStateChange: cfg.OnStateChange,
		}),
	}
}

// Execute runs fn unless the breaker is open.
func (c *CircuitBreaker[T]) Execute(fn func() (T, error)) (T, error) {
	return c.cb.Execute(fn)
}

// State reports the current breaker state.
func (c *CircuitBreaker[T]) State() gobreaker.State {
	return c.cb.State()
}

// Name returns the breaker name.
func (c *CircuitBreaker[T]) Name() string {
	return c.cb.Name()
}

// IsOpen reports whether err was produced by an open or saturated breaker
// rather than by the guarded call.
func IsOpen(err error) bool {
	return errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests)
}
