package events

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

type ResilientOptions struct {
	MaxRetries      uint64
	InitialInterval time.Duration
	MaxElapsedTime  time.Duration
	// Consecutive failed publishes before the breaker opens.
	TripAfter   uint32
	OpenTimeout time.Duration
}

func DefaultResilientOptions() ResilientOptions {
	return ResilientOptions{
		MaxRetries:      3,
		InitialInterval: 100 * time.Millisecond,
		MaxElapsedTime:  2 * time.Second,
		TripAfter:       5,
		OpenTimeout:     30 * time.Second,
	}
}

// Resilient retries a publisher with exponential backoff inside a circuit
// breaker. While the breaker is open publishes fail immediately.
type Resilient struct {
	next Publisher
	cb   *gobreaker.CircuitBreaker
	opts ResilientOptions
	log  *zap.Logger
}

func NewResilient(next Publisher, opts ResilientOptions, logger *zap.Logger) *Resilient {
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "event-publisher",
		MaxRequests: 1,
		Timeout:     opts.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= opts.TripAfter
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})
	return &Resilient{next: next, cb: cb, opts: opts, log: logger}
}

func (r *Resilient) Publish(ctx context.Context, ev Event) error {
	_, err := r.cb.Execute(func() (interface{}, error) {
		b := backoff.NewExponentialBackOff()
		b.InitialInterval = r.opts.InitialInterval
		b.MaxElapsedTime = r.opts.MaxElapsedTime

		op := func() error {
			err := r.next.Publish(ctx, ev)
			if err != nil && (errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)) {
				return backoff.Permanent(err)
			}
			return err
		}
		return nil, backoff.Retry(op, backoff.WithContext(backoff.WithMaxRetries(b, r.opts.MaxRetries), ctx))
	})
	return err
}

func (r *Resilient) State() gobreaker.State { return r.cb.State() }

func (r *Resilient) Close() error { return r.next.Close() }
