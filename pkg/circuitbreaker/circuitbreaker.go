package circuitbreaker

import (
	"errors"
	"time"

	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"
)

type Options struct {
	Name string
	// MaxFailures consecutive failures open the breaker.
	MaxFailures uint32
	// OpenTimeout is how long the breaker stays open before a trial request.
	OpenTimeout time.Duration
	// IsSuccessful decides which errors count as failures. Nil counts every error.
	IsSuccessful func(err error) bool
	Logger       *zap.Logger
}

func New[T any](opts Options) *gobreaker.CircuitBreaker[T] {
	if opts.MaxFailures == 0 {
		opts.MaxFailures = 5
	}
	if opts.OpenTimeout <= 0 {
		opts.OpenTimeout = 30 * time.Second
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return gobreaker.NewCircuitBreaker[T](gobreaker.Settings{
		Name:        opts.Name,
		MaxRequests: 1,
		Timeout:     opts.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= opts.MaxFailures
		},
		IsSuccessful: opts.IsSuccessful,
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	})
}

// IsOpen reports whether err was returned without calling through because
// the breaker is open or half-open and saturated.
func IsOpen(err error) bool {
	return errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests)
}
