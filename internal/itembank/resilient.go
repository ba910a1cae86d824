package itembank

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/felixgeelhaar/fortify/bulkhead"
	"github.com/felixgeelhaar/fortify/circuitbreaker"
	"github.com/felixgeelhaar/fortify/ratelimit"

	"github.com/felixgeelhaar/attune/internal/domain"
)

// ResilientSelector wraps a Selector with resilience patterns from fortify.
// Item lookups must fail fast: the engine has no retry loop of its own and
// a stalled bank stalls every in-flight assessment turn. Retry is
// deliberately not applied here for the same reason.
type ResilientSelector struct {
	inner          Selector
	circuitBreaker circuitbreaker.CircuitBreaker[*domain.AssessmentItem]
	bulkhead       bulkhead.Bulkhead[*domain.AssessmentItem]
	rateLimit      ratelimit.RateLimiter
	logger         *slog.Logger
	name           string
}

// ResilientConfig holds configuration for the resilient wrapper.
type ResilientConfig struct {
	// Name identifies the wrapped bank in logs and rate-limit keys.
	Name string

	// EnableCircuitBreaker trips the bank open after consecutive failures.
	EnableCircuitBreaker bool

	// EnableBulkhead bounds concurrent lookups.
	EnableBulkhead bool

	// EnableRateLimit bounds lookup rate (generators bill per call).
	EnableRateLimit bool

	// MaxConcurrent for bulkhead (default: 8)
	MaxConcurrent int

	// RatePerSecond for rate limiting (default: 5)
	RatePerSecond int

	// Logger for resilience events
	Logger *slog.Logger
}

// DefaultResilientConfig returns sensible defaults for an external bank.
func DefaultResilientConfig(name string) ResilientConfig {
	return ResilientConfig{
		Name:                 name,
		EnableCircuitBreaker: true,
		EnableBulkhead:       true,
		EnableRateLimit:      true,
		MaxConcurrent:        8,
		RatePerSecond:        5,
	}
}

// NewResilientSelector wraps a selector with fail-fast protection.
func NewResilientSelector(inner Selector, cfg ResilientConfig) *ResilientSelector {
	rs := &ResilientSelector{
		inner:  inner,
		logger: cfg.Logger,
		name:   cfg.Name,
	}
	if rs.name == "" {
		rs.name = "itembank"
	}

	if cfg.EnableCircuitBreaker {
		rs.circuitBreaker = circuitbreaker.New[*domain.AssessmentItem](circuitbreaker.Config{
			MaxRequests: 2,
			Interval:    10 * time.Second,
			Timeout:     30 * time.Second,
			ReadyToTrip: func(counts circuitbreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 3
			},
			OnStateChange: func(from, to circuitbreaker.State) {
				if rs.logger != nil {
					rs.logger.Warn("item bank circuit breaker state change",
						"bank", rs.name,
						"from", from.String(),
						"to", to.String())
				}
			},
		})
	}

	if cfg.EnableBulkhead {
		maxConcurrent := cfg.MaxConcurrent
		if maxConcurrent <= 0 {
			maxConcurrent = 8
		}
		rs.bulkhead = bulkhead.New[*domain.AssessmentItem](bulkhead.Config{
			MaxConcurrent: maxConcurrent,
			MaxQueue:      maxConcurrent * 2,
			QueueTimeout:  5 * time.Second,
		})
	}

	if cfg.EnableRateLimit {
		rate := cfg.RatePerSecond
		if rate <= 0 {
			rate = 5
		}
		rs.rateLimit = ratelimit.New(&ratelimit.Config{
			Rate:     rate,
			Burst:    rate * 3,
			Interval: time.Second,
		})
	}

	return rs
}

// Find implements Selector.
func (r *ResilientSelector) Find(ctx context.Context, subject, course string, difficulty domain.Difficulty, excluded []string) (*domain.AssessmentItem, error) {
	if r.rateLimit != nil {
		if !r.rateLimit.Allow(ctx, r.name) {
			return nil, fmt.Errorf("rate limit exceeded for item bank %s", r.name)
		}
	}

	operation := func(ctx context.Context) (*domain.AssessmentItem, error) {
		return r.inner.Find(ctx, subject, course, difficulty, excluded)
	}

	if r.bulkhead != nil {
		inner := operation
		operation = func(ctx context.Context) (*domain.AssessmentItem, error) {
			return r.bulkhead.Execute(ctx, inner)
		}
	}

	if r.circuitBreaker != nil {
		return r.circuitBreaker.Execute(ctx, operation)
	}
	return operation(ctx)
}

// Close releases resources held by the wrapper.
func (r *ResilientSelector) Close() error {
	if r.rateLimit != nil {
		return r.rateLimit.Close()
	}
	return nil
}
