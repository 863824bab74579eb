package backoff

import (
	"context"
	"math"
	"math/rand"
	"time"
)

// Policy controls how long to wait between retry attempts.
type Policy struct {
	Kind        string // fixed, linear, exponential, exp_equal_jitter, exp_full_jitter
	Base        time.Duration
	Max         time.Duration
	MaxAttempts int
}

// Exponential returns a plain exponential policy capped at max.
func Exponential(maxAttempts int, base, max time.Duration) Policy {
	return Policy{
		Kind:        "exponential",
		Base:        base,
		Max:         max,
		MaxAttempts: maxAttempts,
	}
}

// Delay returns the wait before retry number attempt. attempt is expected
// to be >= 0; the first retry is attempt 0.
func (p Policy) Delay(attempt int, rng *rand.Rand) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	base := p.Base
	if base <= 0 {
		base = time.Second
	}
	max := p.Max
	if max <= 0 {
		max = base
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(1))
	}
	switch p.Kind {
	case "fixed":
		return minDuration(base, max)
	case "linear":
		n := attempt + 1
		return minDuration(base*time.Duration(n), max)
	case "exponential":
		return expDelay(base, max, attempt)
	case "exp_equal_jitter":
		d := expDelay(base, max, attempt)
		half := d / 2
		return half + time.Duration(rng.Int63n(int64(half)+1))
	default: // exp_full_jitter
		d := expDelay(base, max, attempt)
		if d <= 0 {
			return 0
		}
		return time.Duration(rng.Int63n(int64(d) + 1))
	}
}

func expDelay(base, max time.Duration, attempt int) time.Duration {
	f := float64(base) * math.Pow(2, float64(attempt))
	if f >= float64(max) {
		return max
	}
	return time.Duration(f)
}

// Retry runs op up to MaxAttempts times, sleeping per the policy between
// failures. It returns the last error, or the context error if the context
// is cancelled while waiting.
func Retry(ctx context.Context, p Policy, op func(ctx context.Context) error) error {
	attempts := p.MaxAttempts
	if attempts <= 0 {
		attempts = 1
	}
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	var err error
	for i := 0; i < attempts; i++ {
		if err = op(ctx); err == nil {
			return nil
		}
		if i == attempts-1 {
			break
		}
		timer := time.NewTimer(p.Delay(i, rng))
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
	return err
}

func minDuration(a, b time.Duration) time.Duration {
	if a < b {
		return a
	}
	return b
}
