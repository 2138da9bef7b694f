package types

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError_WrappingAndMetadata(t *testing.T) {
	root := errors.New("connection refused")
	err := NewError(ErrStoreUnavailable, "redis unreachable").
		WithCause(root).
		WithHTTPStatus(503).
		WithRetryable(true)

	assert.Equal(t, ErrStoreUnavailable, err.Code)
	assert.Equal(t, 503, err.HTTPStatus)
	assert.True(t, IsRetryable(err))
	assert.ErrorIs(t, err, root)
	assert.Contains(t, err.Error(), "STORE_UNAVAILABLE")
	assert.Contains(t, err.Error(), "connection refused")
}

func TestError_WithoutCause(t *testing.T) {
	err := NewError(ErrInvalidRequest, "text is required")
	assert.Equal(t, "[INVALID_REQUEST] text is required", err.Error())
	assert.NoError(t, err.Unwrap())
	assert.False(t, IsRetryable(err))
}

func TestGetErrorCode(t *testing.T) {
	assert.Equal(t, ErrTimeout, GetErrorCode(NewError(ErrTimeout, "deadline exceeded")))
	assert.Equal(t, ErrorCode(""), GetErrorCode(fmt.Errorf("plain error")))
	assert.False(t, IsRetryable(errors.New("plain")))
}
