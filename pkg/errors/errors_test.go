package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromErrorKeepsTypedErrors(t *testing.T) {
	wrapped := fmt.Errorf("outer: %w", Clone(ErrNotFound, "student not found"))

	appErr := FromError(wrapped)
	require.NotNil(t, appErr)
	assert.Equal(t, ErrNotFound.Code, appErr.Code)
	assert.Equal(t, http.StatusNotFound, appErr.Status)
	assert.Equal(t, "student not found", appErr.Message)
}

func TestFromErrorDefaultsToInternal(t *testing.T) {
	appErr := FromError(errors.New("connection reset"))
	require.NotNil(t, appErr)
	assert.Equal(t, ErrInternal.Code, appErr.Code)
	assert.Equal(t, http.StatusInternalServerError, appErr.Status)
	assert.EqualError(t, appErr.Unwrap(), "connection reset")
	assert.Nil(t, FromError(nil))
}

func TestCloneMatchesTemplate(t *testing.T) {
	clone := Clone(ErrDuplicateEmail, "")
	assert.True(t, errors.Is(clone, ErrDuplicateEmail))
	assert.False(t, errors.Is(clone, ErrValidation))
	assert.Equal(t, ErrDuplicateEmail.Message, clone.Message)
}

func TestWithFieldsCopiesViolations(t *testing.T) {
	fields := []FieldViolation{{Field: "firstName", Message: "First name is required"}}
	appErr := WithFields(ErrValidation, "First name is required", fields)
	fields[0].Field = "mutated"

	require.Len(t, appErr.Fields, 1)
	assert.Equal(t, "firstName", appErr.Fields[0].Field)
	assert.Empty(t, ErrValidation.Fields)
}
