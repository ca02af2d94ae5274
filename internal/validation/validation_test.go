package validation

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type address struct {
	Line1 string `json:"address_line1" validate:"required,max=10"`
	State string `json:"state" validate:"required,us_state"`
	ZIP   string `json:"zip_code" validate:"len=5,digits"`
}

func TestStructCollectsEveryViolation(t *testing.T) {
	v := New()
	errs := v.Struct(address{Line1: "", State: "XX", ZIP: "12a45"}, Messages{
		"address_line1.required": "Address is required.",
	})

	require.Len(t, errs, 3)
	assert.Equal(t, FieldError{Field: "address_line1", Code: "required", Message: "Address is required."}, errs[0])
	assert.Equal(t, "state", errs[1].Field)
	assert.Equal(t, "invalid_state", errs[1].Code)
	assert.Equal(t, "zip_code", errs[2].Field)
	assert.Equal(t, "invalid_format", errs[2].Code)
}

func TestStructOneErrorPerField(t *testing.T) {
	errs := New().Struct(address{Line1: "1 Main", State: "ny", ZIP: "1a"}, nil)
	require.Len(t, errs, 1)
	assert.Equal(t, "zip_code", errs[0].Field)
}

func TestStructValid(t *testing.T) {
	errs := New().Struct(address{Line1: "1 Main", State: "vi", ZIP: "12345"}, nil)
	assert.Nil(t, errs)
	assert.NoError(t, errs.Err())
}

func TestErrorsMatchSentinel(t *testing.T) {
	var errs Errors
	errs.Add("title", "required", "Movie must have a title.")
	wrapped := fmt.Errorf("create movie: %w", errs.Err())

	assert.True(t, errors.Is(wrapped, ErrValidationFailed))
	got, ok := As(wrapped)
	require.True(t, ok)
	assert.Equal(t, "title", got[0].Field)

	_, ok = As(errors.New("boom"))
	assert.False(t, ok)
}

func TestIsUSState(t *testing.T) {
	for _, code := range []string{"AL", "wy", " Dc ", "PR", "vi"} {
		assert.True(t, IsUSState(code), code)
	}
	for _, code := range []string{"", "ZZ", "GU", "New York"} {
		assert.False(t, IsUSState(code), code)
	}
}

func TestIsDigits(t *testing.T) {
	assert.True(t, IsDigits("0123456789"))
	assert.False(t, IsDigits(""))
	assert.False(t, IsDigits("12 34"))
	assert.False(t, IsDigits("١٢٣"))
}
