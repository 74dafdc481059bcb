package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInternalHidesCause(t *testing.T) {
	cause := errors.New("pq: connection refused")
	err := Internal(cause)

	assert.Equal(t, http.StatusInternalServerError, err.Status())
	assert.Equal(t, CodeInternal, err.Code())
	assert.NotContains(t, err.Error(), "connection refused")
	assert.ErrorIs(t, err, cause)
}

func TestAsThroughWrapping(t *testing.T) {
	err := fmt.Errorf("update details: %w", Forbidden(CodeAddressMismatch, "nope"))

	e, ok := As(err)
	require.True(t, ok)
	assert.Equal(t, CodeAddressMismatch, e.Code())
	assert.Equal(t, http.StatusForbidden, StatusOf(err))
	assert.Equal(t, http.StatusInternalServerError, StatusOf(errors.New("plain")))
}

func TestZeroStatusDefaultsTo500(t *testing.T) {
	assert.Equal(t, http.StatusInternalServerError, (&Error{}).Status())
}
