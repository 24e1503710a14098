package apperror

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRetryOnConflictRetriesOnce(t *testing.T) {
	calls := 0
	err := RetryOnConflict(context.Background(), func(ctx context.Context) error {
		calls++
		if calls == 1 {
			return fmt.Errorf("lock wallet: %w", ErrConcurrencyConflict)
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestRetryOnConflictSurfacesTransientRejection(t *testing.T) {
	calls := 0
	err := RetryOnConflict(context.Background(), func(ctx context.Context) error {
		calls++
		return ErrConcurrencyConflict
	})

	require.Error(t, err)
	assert.Equal(t, 2, calls)

	rej, ok := AsRejection(err)
	require.True(t, ok)
	assert.Equal(t, KindConcurrencyConflict, rej.Kind)
	assert.True(t, rej.Transient())
	assert.True(t, errors.Is(err, ErrConcurrencyConflict))
}

func TestRetryOnConflictDoesNotRetryOtherErrors(t *testing.T) {
	calls := 0
	boom := errors.New("boom")
	err := RetryOnConflict(context.Background(), func(ctx context.Context) error {
		calls++
		return boom
	})

	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, calls)
}

func TestRejectionHelpers(t *testing.T) {
	err := fmt.Errorf("checkout: %w", Reject(ReasonSubscriptionLimitReached, "monthly join limit reached"))

	assert.True(t, IsReason(err, ReasonSubscriptionLimitReached))
	assert.True(t, IsKind(err, KindValidation))
	assert.False(t, IsReason(err, ReasonInsufficientBalance))

	rej, ok := AsRejection(err)
	require.True(t, ok)
	assert.False(t, rej.Transient())
	assert.Contains(t, rej.Error(), "subscription_limit_reached")
}
