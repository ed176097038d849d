package resilience

import "time"

// Policy bounds how often a model backend is retried and when its breaker
// stops sending it traffic.
type Policy struct {
	Attempts   int
	Backoff    time.Duration
	MaxBackoff time.Duration

	Breaker       bool
	TripAfter     uint32
	TripRatio     float64
	Cooldown      time.Duration
	HalfOpenCalls uint32
}

// ModelPolicy makes one attempt per model call. Inference requests are slow
// and the caller already waits on a long timeout, so retrying is opt-in; the
// breaker only sheds load once a backend keeps failing.
func ModelPolicy() Policy {
	return Policy{
		Attempts:   1,
		Backoff:    100 * time.Millisecond,
		MaxBackoff: 400 * time.Millisecond,

		Breaker:       true,
		TripAfter:     5,
		TripRatio:     0.5,
		Cooldown:      30 * time.Second,
		HalfOpenCalls: 2,
	}
}

// withDefaults fills zero fields from ModelPolicy. Breaker is left as given.
func (p Policy) withDefaults() Policy {
	def := ModelPolicy()
	if p.Attempts <= 0 {
		p.Attempts = def.Attempts
	}
	if p.Backoff <= 0 {
		p.Backoff = def.Backoff
	}
	if p.MaxBackoff < p.Backoff {
		p.MaxBackoff = max(def.MaxBackoff, p.Backoff)
	}
	if p.TripAfter == 0 {
		p.TripAfter = def.TripAfter
	}
	if p.TripRatio <= 0 || p.TripRatio > 1 {
		p.TripRatio = def.TripRatio
	}
	if p.Cooldown <= 0 {
		p.Cooldown = def.Cooldown
	}
	if p.HalfOpenCalls == 0 {
		p.HalfOpenCalls = def.HalfOpenCalls
	}
	return p
}
