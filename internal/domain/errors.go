package domain

import "errors"

// Sentinel errors for domain-level error discrimination.
// Services wrap these so handlers can map to HTTP status codes without leaking infrastructure details.
var (
	ErrNotFound    = errors.New("not found")
	ErrConflict    = errors.New("already exists")
	ErrValidation  = errors.New("validation failed")
	ErrInvalidCode = errors.New("invalid or expired code")
	ErrAuth        = errors.New("identity provider rejected credentials")
	ErrProvision   = errors.New("account provisioning failed")
	ErrStorage     = errors.New("storage failure")
	ErrDelivery    = errors.New("delivery failure")
)

// Failure is a terminal request error. Message is what the client sees;
// Kind is one of the sentinels above and Err the underlying cause, if any.
type Failure struct {
	Kind    error
	Message string
	Err     error
}

func (f *Failure) Error() string { return f.Message }

func (f *Failure) Unwrap() []error {
	if f.Err == nil {
		return []error{f.Kind}
	}
	return []error{f.Kind, f.Err}
}

// Fail builds a Failure of the given kind.
func Fail(kind error, message string, cause error) error {
	return &Failure{Kind: kind, Message: message, Err: cause}
}
