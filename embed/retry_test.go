package embed_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/poiesic/dirtycat/embed"
	"github.com/poiesic/dirtycat/embed/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRetryWithBackoff_Success(t *testing.T) {
	attempts := 0
	operation := func() error {
		attempts++
		return nil
	}

	err := embed.RetryWithBackoff(context.Background(), operation, 3, 10*time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, 1, attempts, "should succeed on first try")
}

func TestRetryWithBackoff_EventualSuccess(t *testing.T) {
	attempts := 0
	operation := func() error {
		attempts++
		if attempts < 3 {
			return errors.New("temporary error")
		}
		return nil
	}

	err := embed.RetryWithBackoff(context.Background(), operation, 5, 10*time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, 3, attempts, "should succeed on third attempt")
}

func TestRetryWithBackoff_AllAttemptsFail(t *testing.T) {
	attempts := 0
	expectedErr := errors.New("persistent error")
	operation := func() error {
		attempts++
		return expectedErr
	}

	err := embed.RetryWithBackoff(context.Background(), operation, 3, 10*time.Millisecond)
	require.Error(t, err)
	assert.Equal(t, expectedErr, err, "should return the original error")
	assert.Equal(t, 3, attempts, "should attempt exactly maxAttempts times")
}

func TestRetryWithBackoff_ContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	attempts := 0
	operation := func() error {
		attempts++
		if attempts == 2 {
			cancel() // Cancel after second attempt
		}
		return errors.New("error")
	}

	err := embed.RetryWithBackoff(ctx, operation, 10, 10*time.Millisecond)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled, "should return context.Canceled")
	assert.LessOrEqual(t, attempts, 2, "should stop when context is canceled")
}

func TestRetryWithBackoff_InvalidMaxAttempts(t *testing.T) {
	attempts := 0
	operation := func() error {
		attempts++
		return errors.New("error")
	}

	err := embed.RetryWithBackoff(context.Background(), operation, 0, 10*time.Millisecond)
	assert.ErrorIs(t, err, embed.ErrInvalidMaxAttempts)
	assert.Equal(t, 0, attempts, "should not attempt with maxAttempts=0")

	err = embed.RetryWithBackoff(context.Background(), operation, -1, 10*time.Millisecond)
	assert.ErrorIs(t, err, embed.ErrInvalidMaxAttempts)
	assert.Equal(t, 0, attempts)
}

func TestWithRetry(t *testing.T) {
	ctx := context.Background()

	t.Run("passes through on success", func(t *testing.T) {
		inner := mock.NewEmbedder()
		embedder := embed.WithRetry(inner, 3, time.Millisecond)

		vector, err := embedder.EmbedText(ctx, "london")
		require.NoError(t, err)
		assert.NotEmpty(t, vector)
		assert.Equal(t, 1, inner.CallCount())
	})

	t.Run("retries transient failures", func(t *testing.T) {
		calls := 0
		inner := mock.NewEmbedder()
		inner.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
			calls++
			if calls < 3 {
				return nil, errors.New("transient")
			}
			return make([][]float32, len(texts)), nil
		}
		embedder := embed.WithRetry(inner, 5, time.Millisecond)

		out, err := embedder.EmbedTexts(ctx, []string{"a", "b"})
		require.NoError(t, err)
		assert.Len(t, out, 2)
		assert.Equal(t, 3, calls)
	})

	t.Run("gives up after max attempts", func(t *testing.T) {
		persistent := errors.New("down")
		inner := mock.NewEmbedder()
		inner.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
			return nil, persistent
		}
		embedder := embed.WithRetry(inner, 2, time.Millisecond)

		_, err := embedder.EmbedText(ctx, "london")
		assert.ErrorIs(t, err, persistent)
	})
}
