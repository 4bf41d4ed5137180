// Package rest provides resilience wrappers for outbound HTTP clients.
package rest

import (
	"errors"
	"net/http"

	"github.com/ankit-modi39/fi-inventory-management/pkg/config"
	"github.com/sony/gobreaker/v2"
)

// Doer executes a single HTTP request. *http.Client satisfies it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// errUpstreamFailure marks a 5xx reply so the breaker counts it as a failure
// while the response is still handed back to the caller.
var errUpstreamFailure = errors.New("upstream server failure")

// BreakerDoer wraps a Doer in a Circuit Breaker. Transport errors and 5xx
// replies trip the breaker; client errors (4xx) do not count as system failures.
type BreakerDoer struct {
	next Doer
	cb   *gobreaker.CircuitBreaker[*http.Response]
}

// NewBreakerDoer creates a BreakerDoer around next, configured from cfg.
func NewBreakerDoer(name string, next Doer, cfg config.CircuitBreakerConfig) *BreakerDoer {
	st := gobreaker.Settings{
		Name:        name,
		MaxRequests: 3,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures > cfg.ConsecutiveFailures ||
				(counts.TotalSuccesses+counts.TotalFailures > cfg.ConsecutiveFailures &&
					float64(counts.TotalFailures)/float64(counts.TotalSuccesses+counts.TotalFailures)*100 > float64(cfg.ErrorRatePercent))
		},
	}
	return &BreakerDoer{
		next: next,
		cb:   gobreaker.NewCircuitBreaker[*http.Response](st),
	}
}

// Do executes the request through the circuit breaker.
// When the breaker is open it fails fast with gobreaker.ErrOpenState.
func (d *BreakerDoer) Do(req *http.Request) (*http.Response, error) {
	resp, err := d.cb.Execute(func() (*http.Response, error) {
		resp, err := d.next.Do(req)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode >= http.StatusInternalServerError {
			return resp, errUpstreamFailure
		}
		return resp, nil
	})
	if errors.Is(err, errUpstreamFailure) && resp != nil {
		// The failure is recorded; the caller still interprets the 5xx body.
		return resp, nil
	}
	return resp, err
}
