package validation

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsAdmissionNumber(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"ST/001/21", true},
		{" st/001/21 ", true},
		{"BT/2021/0045", true},
		{"ST001", false},
		{"ST//21", false},
		{"ST/001/21/", false},
		{"ST 001 21", false},
		{"", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, IsAdmissionNumber(tt.in), tt.in)
	}
}

func TestIsStrongPassword(t *testing.T) {
	assert.True(t, IsStrongPassword("abcdefg1"))
	assert.False(t, IsStrongPassword("abcdefgh"))
	assert.False(t, IsStrongPassword("12345678"))
	assert.False(t, IsStrongPassword("ab1"))
}

func TestRegister(t *testing.T) {
	v := validator.New()
	require.NoError(t, Register(v))

	type req struct {
		Admission string `validate:"required,admission"`
		Password  string `validate:"required,password"`
	}
	assert.NoError(t, v.Struct(req{Admission: "ST/001/21", Password: "Passw0rd!"}))

	err := v.Struct(req{Admission: "nope", Password: "password"})
	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Len(t, verrs, 2)
}
