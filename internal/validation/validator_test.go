package validation

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/code-resources/internal/apperror"
)

type signup struct {
	Email    string `json:"email"    validate:"required,email"`
	Name     string `json:"name"     validate:"max=10"`
	Language string `json:"language" validate:"omitempty,oneof=go python"`
}

func TestValidate_OK(t *testing.T) {
	v := New()
	assert.NoError(t, v.Validate(signup{Email: "dev@example.com", Name: "dev"}))
}

func TestValidate_SingleField(t *testing.T) {
	v := New()

	err := v.Validate(signup{Email: "not-an-email"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperror.ErrValidation))

	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "email", appErr.Field)
	assert.Equal(t, "email must be a valid email address", appErr.Message)
}

func TestValidate_MultipleFields(t *testing.T) {
	v := New()

	err := v.Validate(signup{Name: "far too long a name", Language: "cobol"})

	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, map[string]string{
		"email":    "is required",
		"name":     "must not exceed 10 characters",
		"language": "must be one of: go python",
	}, appErr.Details)
}
