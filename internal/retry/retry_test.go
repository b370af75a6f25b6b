package retry

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastPolicy(attempts uint) Policy {
	return Policy{MaxAttempts: attempts, Delay: time.Millisecond}
}

func TestDoStopsAfterMaxAttemptsWhenAlwaysRateLimited(t *testing.T) {
	t.Parallel()

	policy := LongPatience()
	policy.Delay = time.Millisecond

	calls := 0
	_, err := Do(context.Background(), policy, func(context.Context) (string, error) {
		calls++
		return "", fmt.Errorf("siwe init: %w", ErrRateLimited)
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMaxRetriesExceeded)
	assert.ErrorIs(t, err, ErrRateLimited)
	assert.Equal(t, 30, calls)
}

func TestDoMakesOneAttemptOnOtherFailure(t *testing.T) {
	t.Parallel()

	boom := errors.New("connection refused")
	calls := 0
	_, err := Do(context.Background(), fastPolicy(30), func(context.Context) (int, error) {
		calls++
		return 0, boom
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, ErrMaxRetriesExceeded)
	assert.Equal(t, 1, calls)
}

func TestDoReturnsValueAfterRateLimitClears(t *testing.T) {
	t.Parallel()

	calls := 0
	var retried []uint
	policy := fastPolicy(3)
	policy.OnRetry = func(attempt uint, _ error) {
		retried = append(retried, attempt)
	}

	got, err := Do(context.Background(), policy, func(context.Context) (string, error) {
		calls++
		if calls < 3 {
			return "", ErrRateLimited
		}
		return "token", nil
	})

	require.NoError(t, err)
	assert.Equal(t, "token", got)
	assert.Equal(t, 3, calls)
	assert.Equal(t, []uint{1, 2}, retried)
}

func TestDoShortPatienceBudget(t *testing.T) {
	t.Parallel()

	policy := ShortPatience()
	policy.Delay = time.Millisecond

	calls := 0
	_, err := Do(context.Background(), policy, func(context.Context) (struct{}, error) {
		calls++
		return struct{}{}, ErrRateLimited
	})

	assert.ErrorIs(t, err, ErrMaxRetriesExceeded)
	assert.Equal(t, 3, calls)
}

func TestDoStopsWhenContextCancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	_, err := Do(ctx, Policy{MaxAttempts: 30, Delay: time.Hour}, func(context.Context) (int, error) {
		calls++
		cancel()
		return 0, ErrRateLimited
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}

func TestPolicyValidate(t *testing.T) {
	t.Parallel()

	assert.NoError(t, LongPatience().Validate())
	assert.Error(t, Policy{}.Validate())
	assert.Error(t, Policy{MaxAttempts: 1, Delay: -time.Second}.Validate())
}
