package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_DerivesCategoryAndSeverity(t *testing.T) {
	err := New(ErrCodeConfigInvalid, "bad config", nil)
	assert.Equal(t, CategoryConfig, err.Category)
	assert.Equal(t, SeverityFatal, err.Severity)
	assert.False(t, err.Retryable)

	err = New(ErrCodeStoreUnavailable, "down", nil)
	assert.Equal(t, CategoryStore, err.Category)
	assert.Equal(t, SeverityError, err.Severity)
	assert.True(t, err.Retryable)
}

func TestError_FormatsCodeAndMessage(t *testing.T) {
	err := New(ErrCodeEmptyQuery, "query is empty", nil)
	assert.Equal(t, "[ERR_402_EMPTY_QUERY] query is empty", err.Error())
}

func TestError_UnwrapAndIs(t *testing.T) {
	cause := fmt.Errorf("connection refused")
	err := New(ErrCodeStoreUnavailable, "cannot reach store", cause)

	require.ErrorIs(t, err, cause)
	assert.True(t, stderrors.Is(err, New(ErrCodeStoreUnavailable, "other message", nil)))
	assert.False(t, stderrors.Is(err, New(ErrCodeConfigInvalid, "", nil)))
}

func TestWrap_NilReturnsNil(t *testing.T) {
	assert.Nil(t, Wrap(ErrCodeInternal, nil))
}

func TestWithDetailAndSuggestion(t *testing.T) {
	err := New(ErrCodeConstraintViolated, "duplicate id", nil).
		WithDetail("label", "Crop").
		WithSuggestion("deduplicate ids before applying constraints")

	assert.Equal(t, "Crop", err.Details["label"])
	assert.NotEmpty(t, err.Suggestion)
}

func TestIsRetryable(t *testing.T) {
	assert.False(t, IsRetryable(nil))
	assert.False(t, IsRetryable(fmt.Errorf("plain")))
	assert.True(t, IsRetryable(New(ErrCodeLockHeld, "locked", nil)))
	assert.False(t, IsRetryable(New(ErrCodeConstraintViolated, "dup", nil)))
}

func TestGetCode(t *testing.T) {
	assert.Equal(t, ErrCodeInternal, GetCode(New(ErrCodeInternal, "boom", nil)))
	assert.Equal(t, "", GetCode(fmt.Errorf("plain")))
}
