package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsDuplicateAccount(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"registered phrase", &ProviderError{Status: 400, Message: "User already registered"}, true},
		{"not allowed phrase", &ProviderError{Status: 403, Message: "User not allowed"}, true},
		{"error code only", &ProviderError{Status: 422, Code: "user_already_exists"}, true},
		{"wrapped", fmt.Errorf("sign up: %w", &ProviderError{Message: "User already registered"}), true},
		{"weak password", &ProviderError{Status: 422, Code: "weak_password", Message: "Password should be at least 6 characters"}, false},
		{"plain error with phrase", errors.New("User already registered"), false},
		{"nil", nil, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, IsDuplicateAccount(tc.err))
		})
	}
}

func TestFailure_UnwrapsKindAndCause(t *testing.T) {
	cause := &ProviderError{Status: 400, Message: "Signups not allowed for this instance"}
	err := Fail(ErrAuth, cause.Message, cause)

	assert.Equal(t, "Signups not allowed for this instance", err.Error())
	assert.True(t, errors.Is(err, ErrAuth))
	assert.False(t, errors.Is(err, ErrProvision))

	var pe *ProviderError
	assert.True(t, errors.As(err, &pe))
	assert.Equal(t, 400, pe.Status)
}

func TestFailure_WithoutCause(t *testing.T) {
	err := Fail(ErrValidation, "Email and password are required", nil)
	assert.True(t, errors.Is(err, ErrValidation))
	assert.Equal(t, "Email and password are required", err.Error())
}
