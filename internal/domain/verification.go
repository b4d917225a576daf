package domain

import "time"

// VerificationCode is a single-use code proving control of an email address.
// PK: email, SK: code. ExpiresAt is a Unix timestamp also used as DynamoDB TTL.
type VerificationCode struct {
	Email     string `json:"email" dynamodbav:"email"`
	Code      string `json:"code" dynamodbav:"code"`
	ExpiresAt int64  `json:"expires_at" dynamodbav:"expires_at"` // TTL (Unix seconds)
}

// Expired reports whether the code is no longer usable at now. A code is
// still valid at the exact second it expires, but not a nanosecond after.
func (v *VerificationCode) Expired(now time.Time) bool {
	return now.After(time.Unix(v.ExpiresAt, 0))
}
