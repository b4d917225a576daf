package localauth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/web3ix-api/internal/domain"
	"github.com/web3ix-api/internal/pkg/id"
	pkgtoken "github.com/web3ix-api/internal/pkg/token"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const minPasswordLength = 6

// Rejections mirror the wording and codes a GoTrue server uses so callers
// classify them the same way.
var (
	errInvalidCredentials = &domain.ProviderError{Status: http.StatusBadRequest, Code: "invalid_credentials", Message: "Invalid login credentials"}
	errNotConfirmed       = &domain.ProviderError{Status: http.StatusBadRequest, Code: "email_not_confirmed", Message: "Email not confirmed"}
	errAlreadyRegistered  = &domain.ProviderError{Status: http.StatusUnprocessableEntity, Code: "user_already_exists", Message: "User already registered"}
	errWeakPassword       = &domain.ProviderError{Status: http.StatusUnprocessableEntity, Code: "weak_password", Message: fmt.Sprintf("Password should be at least %d characters.", minPasswordLength)}
	errUserNotFound       = &domain.ProviderError{Status: http.StatusNotFound, Code: "user_not_found", Message: "User not found"}
)

// accountStore.Put must fail with domain.ErrConflict when the email is taken,
// and GetByEmail must observe writes that have already returned.
type accountStore interface {
	Put(ctx context.Context, a *domain.Account) error
	GetByEmail(ctx context.Context, email string) (*domain.Account, error)
	MarkEmailConfirmed(ctx context.Context, accountID string, at time.Time) error
}

type tokenSigner interface {
	Sign(acct *domain.Account) (string, int, error)
}

// Provider is a self-hosted identity provider over the accounts table,
// for running against LocalStack without a GoTrue server.
type Provider struct {
	accounts accountStore
	signer   tokenSigner
	log      *zap.Logger
	cost     int
	now      func() time.Time
}

func NewProvider(accounts accountStore, signer tokenSigner, log *zap.Logger) *Provider {
	return &Provider{accounts: accounts, signer: signer, log: log, cost: bcrypt.DefaultCost, now: time.Now}
}

func (p *Provider) SignIn(ctx context.Context, email, password string) (*domain.Session, error) {
	acct, err := p.accounts.GetByEmail(ctx, email)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, errInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("load account: %w", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(acct.PasswordHash), []byte(password)) != nil {
		return nil, errInvalidCredentials
	}
	if !acct.Confirmed() {
		return nil, errNotConfirmed
	}

	access, expiresIn, err := p.signer.Sign(acct)
	if err != nil {
		return nil, err
	}
	refresh, err := pkgtoken.NewRefreshToken()
	if err != nil {
		return nil, err
	}
	return &domain.Session{
		AccessToken:  access,
		TokenType:    "bearer",
		ExpiresIn:    expiresIn,
		RefreshToken: refresh,
		User:         acct,
	}, nil
}

func (p *Provider) SignUp(ctx context.Context, email, password string, metadata map[string]any) (*domain.Account, error) {
	if len(password) < minPasswordLength {
		return nil, errWeakPassword
	}
	_, err := p.accounts.GetByEmail(ctx, email)
	if err == nil {
		return nil, errAlreadyRegistered
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("load account: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), p.cost)
	if err != nil {
		return nil, err
	}
	now := p.now().UTC()
	acct := &domain.Account{
		ID:           id.New(),
		Email:        email,
		PasswordHash: string(hash),
		UserMetadata: metadata,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	// The lookup above is a fast path; Put is what makes the email unique.
	err = p.accounts.Put(ctx, acct)
	if errors.Is(err, domain.ErrConflict) {
		return nil, errAlreadyRegistered
	}
	if err != nil {
		return nil, fmt.Errorf("store account: %w", err)
	}
	p.log.Info("local account created", zap.String("account_id", acct.ID), zap.String("email", email))
	return acct, nil
}

func (p *Provider) ForceConfirm(ctx context.Context, accountID string) error {
	err := p.accounts.MarkEmailConfirmed(ctx, accountID, p.now())
	if errors.Is(err, domain.ErrNotFound) {
		return errUserNotFound
	}
	return err
}
