package resilience

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/kirillkom/idu-service/internal/core/domain"
)

// Verdict says what a failed model call means for the guard.
type Verdict struct {
	// Retry allows another attempt within the same call.
	Retry bool
	// Failure counts the error against the backend's breaker.
	Failure bool
}

// Classifier maps a backend error to a Verdict.
type Classifier func(err error) Verdict

// Guard sits in front of the model backends (hf, ollama, openai). Each
// backend operation gets its own breaker so a broken summarizer does not
// block entity tagging.
type Guard struct {
	policy Policy

	mu       sync.Mutex
	breakers map[string]*gobreaker.CircuitBreaker[struct{}]
}

func NewGuard(policy Policy) *Guard {
	return &Guard{
		policy:   policy.withDefaults(),
		breakers: make(map[string]*gobreaker.CircuitBreaker[struct{}]),
	}
}

// Call runs fn for backend/operation under g and returns its value. Errors
// the classifier marks retryable, and calls rejected by an open breaker, come
// back tagged with domain.ErrTemporary so the API answers 503. A nil guard
// runs fn once; a nil classifier means ClassifyHTTPError.
func Call[T any](ctx context.Context, g *Guard, backend, operation string, classify Classifier, fn func(context.Context) (T, error)) (T, error) {
	if classify == nil {
		classify = ClassifyHTTPError
	}
	var out T
	attempt := func(callCtx context.Context) error {
		value, err := fn(callCtx)
		if err == nil {
			out = value
		}
		return err
	}

	var err error
	if g == nil {
		err = attempt(ctx)
	} else {
		err = g.run(ctx, backend+"."+operation, attempt, classify)
	}
	if err != nil {
		return out, markTemporary(backend+" "+operation, err, classify)
	}
	return out, nil
}

func (g *Guard) run(ctx context.Context, key string, attempt func(context.Context) error, classify Classifier) error {
	if !g.policy.Breaker {
		return g.retry(ctx, key, attempt, classify)
	}
	_, err := g.breaker(key, classify).Execute(func() (struct{}, error) {
		return struct{}{}, g.retry(ctx, key, attempt, classify)
	})
	return err
}

func (g *Guard) retry(ctx context.Context, key string, attempt func(context.Context) error, classify Classifier) error {
	wait := g.policy.Backoff
	for n := 1; ; n++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		err := attempt(ctx)
		if err == nil {
			return nil
		}
		if n >= g.policy.Attempts || !classify(err).Retry {
			return err
		}

		slog.Warn("model_call_retry",
			"call", key,
			"attempt", n,
			"max_attempts", g.policy.Attempts,
			"backoff_ms", wait.Milliseconds(),
			"error", err,
		)
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return err
		case <-timer.C:
		}
		wait = min(2*wait, g.policy.MaxBackoff)
	}
}

func (g *Guard) breaker(key string, classify Classifier) *gobreaker.CircuitBreaker[struct{}] {
	g.mu.Lock()
	defer g.mu.Unlock()

	if cb, ok := g.breakers[key]; ok {
		return cb
	}
	p := g.policy
	cb := gobreaker.NewCircuitBreaker[struct{}](gobreaker.Settings{
		Name:        key,
		MaxRequests: p.HalfOpenCalls,
		Timeout:     p.Cooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < p.TripAfter {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= p.TripRatio
		},
		IsSuccessful: func(err error) bool {
			return err == nil || !classify(err).Failure
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			slog.Warn("model_breaker_state_change", "call", name, "from", from.String(), "to", to.String())
		},
	})
	g.breakers[key] = cb
	return cb
}

// IsCircuitOpen reports whether err is a breaker rejection.
func IsCircuitOpen(err error) bool {
	return errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests)
}

func markTemporary(op string, err error, classify Classifier) error {
	if domain.IsKind(err, domain.ErrTemporary) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	if IsCircuitOpen(err) || classify(err).Retry {
		return domain.WrapError(domain.ErrTemporary, op, err)
	}
	return err
}
