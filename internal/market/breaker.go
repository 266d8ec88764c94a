package market

import (
	"time"

	cb "github.com/sony/gobreaker"
)

// Breaker wraps sony/gobreaker around a single exchange's fetch calls. It
// trips after 3 consecutive failures or a >5% failure rate over a 20+
// request window, forcing that exchange absent for the remainder of the
// cooldown rather than retrying into a known-bad endpoint.
type Breaker struct {
	cb   *cb.CircuitBreaker
	name string
}

func NewBreaker(name string) *Breaker {
	st := cb.Settings{Name: name}
	st.Interval = 60 * time.Second
	st.Timeout = 60 * time.Second
	st.ReadyToTrip = func(counts cb.Counts) bool {
		if counts.ConsecutiveFailures >= 3 {
			return true
		}
		total := counts.Requests
		if total < 20 {
			return false
		}
		return float64(counts.TotalFailures)/float64(total) > 0.05
	}
	return &Breaker{cb: cb.NewCircuitBreaker(st), name: name}
}

func (b *Breaker) Execute(fn func() (any, error)) (any, error) {
	return b.cb.Execute(fn)
}

// Open reports whether the breaker is currently tripped.
func (b *Breaker) Open() bool {
	return b.cb.State() == cb.StateOpen
}
