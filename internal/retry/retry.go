package retry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v5"
)

var (
	// ErrRateLimited marks a failure that is worth another attempt (HTTP 429).
	ErrRateLimited = errors.New("rate limited")
	// ErrMaxRetriesExceeded is returned when every attempt was rate limited.
	ErrMaxRetriesExceeded = errors.New("max retry attempts reached")
)

const (
	longPatienceAttempts  = 30
	shortPatienceAttempts = 3
	defaultDelay          = 2 * time.Second
)

// Policy retries an operation on ErrRateLimited only, waiting a fixed Delay
// between attempts. Any other error ends the loop after that attempt.
type Policy struct {
	MaxAttempts uint
	Delay       time.Duration
	// OnRetry is called before each wait with the failed attempt number.
	OnRetry func(attempt uint, err error)
}

// LongPatience is the login profile.
func LongPatience() Policy {
	return Policy{MaxAttempts: longPatienceAttempts, Delay: defaultDelay}
}

// ShortPatience is the check-in profile.
func ShortPatience() Policy {
	return Policy{MaxAttempts: shortPatienceAttempts, Delay: defaultDelay}
}

func (p Policy) Validate() error {
	if p.MaxAttempts == 0 {
		return errors.New("retry attempts must be positive")
	}
	if p.Delay < 0 {
		return errors.New("retry delay must not be negative")
	}
	return nil
}

// Do runs op until it succeeds, fails with a non rate-limit error, or the
// attempt budget is spent.
func Do[T any](ctx context.Context, p Policy, op func(context.Context) (T, error)) (T, error) {
	maxAttempts := p.MaxAttempts
	if maxAttempts == 0 {
		maxAttempts = 1
	}

	var attempt uint
	result, err := backoff.Retry(ctx, func() (T, error) {
		attempt++
		value, err := op(ctx)
		if err == nil {
			return value, nil
		}
		if !errors.Is(err, ErrRateLimited) {
			return value, backoff.Permanent(err)
		}
		return value, err
	},
		backoff.WithBackOff(backoff.NewConstantBackOff(p.Delay)),
		backoff.WithMaxTries(maxAttempts),
		backoff.WithMaxElapsedTime(0),
		backoff.WithNotify(func(err error, _ time.Duration) {
			if p.OnRetry != nil {
				p.OnRetry(attempt, err)
			}
		}),
	)
	if err == nil {
		return result, nil
	}

	var permanent *backoff.PermanentError
	if errors.As(err, &permanent) {
		err = permanent.Unwrap()
	}
	if errors.Is(err, ErrRateLimited) {
		return result, fmt.Errorf("%w after %d attempts: %w", ErrMaxRetriesExceeded, attempt, err)
	}

	return result, err
}
