package utils

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRetryFirstAttempt(t *testing.T) {
	calls := 0
	err := RetryWithBackoff(context.Background(), 3, func() error {
		calls++
		return nil
	}, NopLogger())
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestRetryRecovers(t *testing.T) {
	calls := 0
	err := RetryWithBackoff(context.Background(), 2, func() error {
		calls++
		if calls == 1 {
			return errors.New("flaky")
		}
		return nil
	}, NopLogger())
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestRetryGivesUp(t *testing.T) {
	boom := errors.New("boom")
	err := RetryWithBackoff(context.Background(), 1, func() error { return boom }, NopLogger())
	assert.ErrorIs(t, err, boom)
}

func TestRetryStopsWhenCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	err := RetryWithBackoff(ctx, 5, func() error {
		calls++
		cancel()
		return errors.New("down")
	}, NopLogger())
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}
