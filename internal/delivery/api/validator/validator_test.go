package validator

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type evidence struct {
	URL  string `json:"url" validate:"required,url"`
	Kind string `json:"kind" validate:"required,oneof=portfolio certificate student_id"`
}

type submitRequest struct {
	Email    string     `json:"email" validate:"required,email"`
	Evidence []evidence `json:"evidence" validate:"required,min=1,dive"`
}

func TestValidate(t *testing.T) {
	v := New()

	assert.NoError(t, v.Validate(&submitRequest{
		Email:    "tunde@example.com",
		Evidence: []evidence{{URL: "https://files.bazaar.test/cert.pdf", Kind: "certificate"}},
	}))
}

func TestFieldErrors(t *testing.T) {
	v := New()

	err := v.Validate(&submitRequest{
		Email:    "not-an-email",
		Evidence: []evidence{{URL: "", Kind: "selfie"}},
	})
	require.Error(t, err)

	fields := FieldErrors(err)
	assert.Equal(t, "must be a valid email address", fields["email"])
	assert.Equal(t, "is required", fields["evidence[0].url"])
	assert.Equal(t, "must be one of: portfolio certificate student_id", fields["evidence[0].kind"])
}

func TestFieldErrors_NonValidationError(t *testing.T) {
	fields := FieldErrors(errors.New("boom"))

	assert.Equal(t, map[string]string{"request": "boom"}, fields)
}
