package validator

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsValidNIC(t *testing.T) {
	for _, ok := range []string{"123456789V", "123456789v", "200012345678"} {
		assert.True(t, IsValidNIC(ok), ok)
	}
	for _, bad := range []string{"", "12345678V", "123456789X", "20001234567", "2000123456789"} {
		assert.False(t, IsValidNIC(bad), bad)
	}
}

func TestIsValidContactAndEmail(t *testing.T) {
	assert.True(t, IsValidContact("0771234567"))
	assert.False(t, IsValidContact("077123456"))
	assert.False(t, IsValidContact("07712345a7"))
	assert.True(t, IsValidEmail("a.b@example.org"))
	assert.False(t, IsValidEmail("nobody@localhost"))
}

type participantReq struct {
	Email   string `json:"email" validate:"required,email"`
	NIC     string `json:"nic" validate:"required,nic"`
	Contact string `json:"contact_number" validate:"contact"`
	Gender  string `json:"gender" validate:"gender"`
}

func TestFieldErrorsUseJSONNames(t *testing.T) {
	v := validator.New()
	v.SetTagName("validate")
	require.NoError(t, Configure(v))

	err := v.Struct(participantReq{Email: "x", NIC: "bad", Contact: "1", Gender: "Unknown"})
	fields := FieldErrors(err)
	require.Len(t, fields, 4)
	assert.Equal(t, "must be a valid email address", fields["email"])
	assert.Equal(t, "must be 9 digits followed by V, or 12 digits", fields["nic"])
	assert.Equal(t, "must be exactly 10 digits", fields["contact_number"])
	assert.Equal(t, "must be one of Male, Female, Other", fields["gender"])

	assert.NoError(t, v.Struct(participantReq{Email: "a@b.co", NIC: "123456789V", Contact: "0771234567", Gender: "Female"}))
	assert.Nil(t, FieldErrors(nil))
}
