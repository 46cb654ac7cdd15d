package errors

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAppErrorMessageIncludesInternal(t *testing.T) {
	cause := errors.New("dial tcp: connection refused")
	err := ErrBackendUnavailable.WithInternal(cause)

	require.Contains(t, err.Error(), "connection refused")
	require.ErrorIs(t, err, cause)
}

func TestFromErrorPassesThroughAppErrors(t *testing.T) {
	err := FromError(ErrNotFound)
	require.Same(t, ErrNotFound, err)
}

func TestFromErrorWrapsGenericErrors(t *testing.T) {
	cause := errors.New("boom")
	err := FromError(cause)

	require.Equal(t, ErrInternalServer.Code, err.Code)
	require.Equal(t, http.StatusInternalServerError, err.StatusCode)
	require.ErrorIs(t, err, cause)
}

func TestFromErrorNil(t *testing.T) {
	require.Nil(t, FromError(nil))
}

func TestNewBadRequest(t *testing.T) {
	err := NewBadRequest("quantity must be positive")
	require.Equal(t, "BAD_REQUEST", err.Code)
	require.Equal(t, http.StatusBadRequest, err.StatusCode)
	require.Equal(t, "quantity must be positive", err.Message)
}
