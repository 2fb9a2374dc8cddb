package usecase_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"secondhand/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorKind_StatusAndCode(t *testing.T) {
	cases := []struct {
		kind   usecase.ErrorKind
		status int
		code   string
	}{
		{usecase.KindValidation, http.StatusBadRequest, "VALIDATION_ERROR"},
		{usecase.KindUnauthorized, http.StatusUnauthorized, "UNAUTHORIZED"},
		{usecase.KindForbidden, http.StatusForbidden, "FORBIDDEN"},
		{usecase.KindNotFound, http.StatusNotFound, "NOT_FOUND"},
		{usecase.KindConflict, http.StatusConflict, "CONFLICT"},
		{usecase.KindInternal, http.StatusInternalServerError, "INTERNAL"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.status, tc.kind.Status(), tc.kind)
		assert.Equal(t, tc.code, tc.kind.Code(), tc.kind)
	}
}

func TestAsAppError_Wrapped(t *testing.T) {
	cause := errors.New("boom")
	err := fmt.Errorf("outer: %w", &usecase.AppError{Kind: usecase.KindInternal, Message: "Internal server error.", Err: cause})

	ae, ok := usecase.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, usecase.KindInternal, ae.Kind)
	assert.ErrorIs(t, err, cause)

	_, ok = usecase.AsAppError(cause)
	assert.False(t, ok)
}
