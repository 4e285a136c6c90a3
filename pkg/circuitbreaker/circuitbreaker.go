package circuitbreaker

import (
	"log/slog"
	"time"

	"github.com/sony/gobreaker/v2"
)

// Settings configures a breaker. Zero values fall back to the defaults below.
type Settings struct {
	Name                string
	MaxRequests         uint32        // allowed through while half-open
	Interval            time.Duration // closed-state counter reset period
	Timeout             time.Duration // open -> half-open delay
	ConsecutiveFailures uint32        // failures that trip the breaker
}

const (
	defaultMaxRequests         = 1
	defaultInterval            = time.Minute
	defaultTimeout             = 30 * time.Second
	defaultConsecutiveFailures = 5
)

// ErrOpenState is returned by Execute while the breaker is open.
var ErrOpenState = gobreaker.ErrOpenState

func New[T any](s Settings, log *slog.Logger) *gobreaker.CircuitBreaker[T] {
	if s.MaxRequests == 0 {
		s.MaxRequests = defaultMaxRequests
	}
	if s.Interval == 0 {
		s.Interval = defaultInterval
	}
	if s.Timeout == 0 {
		s.Timeout = defaultTimeout
	}
	if s.ConsecutiveFailures == 0 {
		s.ConsecutiveFailures = defaultConsecutiveFailures
	}
	threshold := s.ConsecutiveFailures

	return gobreaker.NewCircuitBreaker[T](gobreaker.Settings{
		Name:        s.Name,
		MaxRequests: s.MaxRequests,
		Interval:    s.Interval,
		Timeout:     s.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			if log != nil {
				log.Warn("circuit breaker state changed",
					slog.String("breaker", name),
					slog.String("from", from.String()),
					slog.String("to", to.String()))
			}
		},
	})
}
