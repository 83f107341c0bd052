package common

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sthwalo/acc-sub003/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithRetry(t *testing.T) {
	opts := service.RetryOptions{MaxAttempts: 3, InitialDelay: time.Millisecond, MaxDelay: time.Millisecond}
	busy := &RetryableError{Err: errors.New("database is locked"), Retryable: true}

	t.Run("retries retryable errors until success", func(t *testing.T) {
		calls := 0
		err := WithRetry(context.Background(), func() error {
			calls++
			if calls < 3 {
				return busy
			}
			return nil
		}, opts)
		require.NoError(t, err)
		assert.Equal(t, 3, calls)
	})

	t.Run("returns non-retryable errors immediately", func(t *testing.T) {
		calls := 0
		err := WithRetry(context.Background(), func() error {
			calls++
			return ErrUnbalancedEntry
		}, opts)
		require.ErrorIs(t, err, ErrUnbalancedEntry)
		assert.Equal(t, 1, calls)
	})

	t.Run("gives up after max attempts", func(t *testing.T) {
		calls := 0
		err := WithRetry(context.Background(), func() error {
			calls++
			return busy
		}, opts)
		require.ErrorIs(t, err, ErrMaxRetries)
		assert.Equal(t, 3, calls)
	})
}

func TestParseErrorMatchesSentinel(t *testing.T) {
	err := &ParseError{Line: "16 01 ???", Number: 4, Err: errors.New("bad amount")}
	assert.ErrorIs(t, err, ErrParse)
	assert.Contains(t, err.Error(), "line 4")
}

func TestParseLevel(t *testing.T) {
	level, err := ParseLevel("debug")
	require.NoError(t, err)
	assert.Equal(t, "DEBUG", level.String())

	_, err = ParseLevel("chatty")
	assert.ErrorIs(t, err, ErrInvalidConfig)
}
