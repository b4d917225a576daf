package http

import (
	"context"
	"time"

	"github.com/web3ix-api/internal/domain"
)

// CodeRepository is the minimal interface the router requires from a verification code store.
type CodeRepository interface {
	ClearActive(ctx context.Context, email string) error
	Issue(ctx context.Context, v *domain.VerificationCode) error
	// FindValid returns domain.ErrNotFound for unknown and expired codes alike.
	FindValid(ctx context.Context, email, code string, now time.Time) (*domain.VerificationCode, error)
	Consume(ctx context.Context, email, code string) error
}

// PostRepository is the minimal interface the router requires from a post store.
type PostRepository interface {
	List(ctx context.Context) ([]domain.Post, error)
	ListVideos(ctx context.Context) ([]domain.Post, error)
}

// Mailer is the minimal interface the router requires from an email transport.
type Mailer interface {
	SendEmail(ctx context.Context, to, subject, body string) error
}
