package domain

import "time"

// Account is an identity-provider account. It is owned by the provider;
// this service only reads it back from sign-up and sign-in responses.
type Account struct {
	ID               string         `json:"id" dynamodbav:"account_id"`
	Email            string         `json:"email" dynamodbav:"email"`
	PasswordHash     string         `json:"-" dynamodbav:"password_hash"`
	EmailConfirmedAt *time.Time     `json:"email_confirmed_at,omitempty" dynamodbav:"email_confirmed_at"`
	UserMetadata     map[string]any `json:"user_metadata,omitempty" dynamodbav:"user_metadata"`
	CreatedAt        time.Time      `json:"created_at" dynamodbav:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at" dynamodbav:"updated_at"`
}

// Confirmed reports whether the account's email has been confirmed.
func (a *Account) Confirmed() bool { return a.EmailConfirmedAt != nil }

// Session is an authenticated session materialized by a successful sign-in.
type Session struct {
	AccessToken  string   `json:"access_token"`
	TokenType    string   `json:"token_type"`
	ExpiresIn    int      `json:"expires_in"`
	RefreshToken string   `json:"refresh_token,omitempty"`
	User         *Account `json:"user,omitempty"`
}
