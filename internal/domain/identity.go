package domain

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Metadata keys written on wallet-bound accounts.
const (
	MetaProvider      = "provider"
	MetaFullPublicKey = "full_public_key"
	WalletProvider    = "wallet"
)

// IdentityProvider is the contract over the external account provider.
// Rejections are reported as *ProviderError.
type IdentityProvider interface {
	SignIn(ctx context.Context, email, password string) (*Session, error)
	SignUp(ctx context.Context, email, password string, metadata map[string]any) (*Account, error)
	ForceConfirm(ctx context.Context, accountID string) error
}

// ProviderError is a rejection returned by the identity provider.
// Message is the provider's own wording and is surfaced to clients verbatim.
type ProviderError struct {
	Status  int
	Code    string
	Message string
}

func (e *ProviderError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("identity provider error (status %d)", e.Status)
	}
	return e.Message
}

var duplicateAccountCodes = map[string]bool{
	"user_already_exists": true,
	"email_exists":        true,
}

var duplicateAccountPhrases = []string{
	"User already registered",
	"User not allowed",
}

// IsDuplicateAccount reports whether err is the provider telling us the
// account already exists (or is otherwise blocked from sign-up in a way a
// sign-in may resolve). The provider only exposes this reliably through its
// message text, so the phrase match is kept here and nowhere else.
func IsDuplicateAccount(err error) bool {
	var pe *ProviderError
	if !errors.As(err, &pe) {
		return false
	}
	if duplicateAccountCodes[pe.Code] {
		return true
	}
	for _, phrase := range duplicateAccountPhrases {
		if strings.Contains(pe.Message, phrase) {
			return true
		}
	}
	return false
}
