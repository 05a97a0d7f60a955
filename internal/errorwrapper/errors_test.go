package errorwrapper

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWrapError(t *testing.T) {
	base := errors.New("boom")
	wrapped := WrapError(base, "context")

	assert.ErrorIs(t, wrapped, base)
	assert.Contains(t, wrapped.Error(), "context")
}

func TestNetworkError_Unwrap(t *testing.T) {
	inner := errors.New("connection refused")
	err := NewNetworkError("http://alist.local/api/fs/list", "dial failed", inner)

	assert.ErrorIs(t, err, inner)
	assert.Contains(t, err.Error(), "http://alist.local/api/fs/list")
}

func TestIsAuthError(t *testing.T) {
	assert.True(t, IsAuthError(ErrAuthenticationFailed))
	assert.True(t, IsAuthError(WrapError(ErrAuthenticationFailed, "login")))
	assert.True(t, IsAuthError(NewRemoteAPIError("/api/fs/list", 401, 401, "token expired")))
	assert.False(t, IsAuthError(NewRemoteAPIError("/api/fs/list", 500, 500, "storage error")))
	assert.False(t, IsAuthError(errors.New("other")))
}

func TestValidationError_Message(t *testing.T) {
	err := NewValidationError("check_interval", 0, "must be positive")
	assert.Contains(t, err.Error(), "check_interval")
	assert.Contains(t, err.Error(), "must be positive")
}
