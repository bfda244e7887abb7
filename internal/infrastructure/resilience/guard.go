// Package resilience wraps calls to a downstream dependency with bounded
// retries and a circuit breaker.
package resilience

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/sony/gobreaker/v2"
)

// Outcome classifies one failure: whether the call may be retried and
// whether the breaker should count it.
type Outcome struct {
	Retry        bool
	CountFailure bool
}

type Classifier func(err error) Outcome

// Policy bounds the retry loop and configures the breaker. Zero fields fall
// back to defaults.
type Policy struct {
	MaxAttempts    int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
	Multiplier     float64

	BreakerDisabled      bool
	BreakerMinRequests   uint32
	BreakerFailureRatio  float64
	BreakerOpenTimeout   time.Duration
	BreakerHalfOpenCalls uint32
}

func (p Policy) withDefaults() Policy {
	if p.MaxAttempts <= 0 {
		p.MaxAttempts = 3
	}
	if p.InitialBackoff <= 0 {
		p.InitialBackoff = 100 * time.Millisecond
	}
	if p.MaxBackoff < p.InitialBackoff {
		p.MaxBackoff = 4 * p.InitialBackoff
	}
	if p.Multiplier < 1.0 {
		p.Multiplier = 2.0
	}
	if p.BreakerMinRequests == 0 {
		p.BreakerMinRequests = 10
	}
	if p.BreakerFailureRatio <= 0 || p.BreakerFailureRatio > 1 {
		p.BreakerFailureRatio = 0.5
	}
	if p.BreakerOpenTimeout <= 0 {
		p.BreakerOpenTimeout = 30 * time.Second
	}
	if p.BreakerHalfOpenCalls == 0 {
		p.BreakerHalfOpenCalls = 2
	}
	return p
}

// Guard protects one downstream dependency. The classifier is fixed at
// construction so breaker accounting and retry decisions always agree.
type Guard struct {
	policy   Policy
	classify Classifier
	breaker  *gobreaker.CircuitBreaker[any]
}

func NewGuard(name string, policy Policy, classify Classifier) *Guard {
	policy = policy.withDefaults()
	if classify == nil {
		classify = func(error) Outcome { return Outcome{CountFailure: true} }
	}
	g := &Guard{policy: policy, classify: classify}
	if policy.BreakerDisabled {
		return g
	}
	g.breaker = gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
		Name:        name,
		MaxRequests: policy.BreakerHalfOpenCalls,
		Timeout:     policy.BreakerOpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < policy.BreakerMinRequests {
				return false
			}
			ratio := float64(counts.TotalFailures) / float64(counts.Requests)
			return ratio >= policy.BreakerFailureRatio
		},
		IsSuccessful: func(err error) bool {
			if err == nil {
				return true
			}
			return !classify(err).CountFailure
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			slog.Warn("circuit_breaker_state_change",
				"dependency", name, "from", from.String(), "to", to.String())
		},
	})
	return g
}

// Do runs fn with retries inside the breaker.
func (g *Guard) Do(ctx context.Context, operation string, fn func(context.Context) error) error {
	if fn == nil {
		return fmt.Errorf("resilience: operation callback is nil")
	}
	if g.breaker == nil {
		return g.retry(ctx, operation, fn)
	}
	_, err := g.breaker.Execute(func() (any, error) {
		return nil, g.retry(ctx, operation, fn)
	})
	return err
}

func (g *Guard) retry(ctx context.Context, operation string, fn func(context.Context) error) error {
	backoff := g.policy.InitialBackoff
	for attempt := 1; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		err := fn(ctx)
		if err == nil {
			return nil
		}
		if !g.classify(err).Retry || attempt == g.policy.MaxAttempts {
			return err
		}

		slog.Warn("retry_attempt",
			"operation", operation,
			"attempt", attempt,
			"max_attempts", g.policy.MaxAttempts,
			"backoff_ms", float64(backoff.Microseconds())/1000.0,
			"error", err,
		)
		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return err
		case <-timer.C:
		}
		backoff = time.Duration(float64(backoff) * g.policy.Multiplier)
		if backoff > g.policy.MaxBackoff {
			backoff = g.policy.MaxBackoff
		}
	}
}

func IsCircuitOpen(err error) bool {
	return errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests)
}
