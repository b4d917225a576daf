package localauth

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/web3ix-api/internal/domain"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type memAccounts struct {
	mu   sync.Mutex
	byID map[string]*domain.Account
	// beforeLookup, when set, runs ahead of every GetByEmail.
	beforeLookup func()
}

func (m *memAccounts) Put(_ context.Context, a *domain.Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.byID {
		if existing.Email == a.Email {
			return fmt.Errorf("account for %s: %w", a.Email, domain.ErrConflict)
		}
	}
	cp := *a
	m.byID[a.ID] = &cp
	return nil
}

func (m *memAccounts) countEmail(email string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, a := range m.byID {
		if a.Email == email {
			n++
		}
	}
	return n
}

func (m *memAccounts) GetByEmail(_ context.Context, email string) (*domain.Account, error) {
	if m.beforeLookup != nil {
		m.beforeLookup()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.byID {
		if a.Email == email {
			cp := *a
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("account not found: %w", domain.ErrNotFound)
}

func (m *memAccounts) MarkEmailConfirmed(_ context.Context, accountID string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.byID[accountID]
	if !ok {
		return fmt.Errorf("account not found: %w", domain.ErrNotFound)
	}
	a.EmailConfirmedAt = &at
	return nil
}

type stubSigner struct{}

func (stubSigner) Sign(acct *domain.Account) (string, int, error) {
	return "access-" + acct.ID, 3600, nil
}

func newProvider() *Provider {
	p := NewProvider(&memAccounts{byID: map[string]*domain.Account{}}, stubSigner{}, zap.NewNop())
	p.cost = bcrypt.MinCost
	return p
}

func providerErr(t *testing.T, err error) *domain.ProviderError {
	t.Helper()
	var pe *domain.ProviderError
	require.True(t, errors.As(err, &pe), "expected ProviderError, got %v", err)
	return pe
}

func TestLifecycle_SignUpConfirmSignIn(t *testing.T) {
	p := newProvider()
	ctx := context.Background()

	_, err := p.SignIn(ctx, "a@x.com", "secret1")
	assert.Equal(t, "Invalid login credentials", providerErr(t, err).Message)

	acct, err := p.SignUp(ctx, "a@x.com", "secret1", map[string]any{domain.MetaProvider: domain.WalletProvider})
	require.NoError(t, err)
	assert.NotEmpty(t, acct.ID)
	assert.False(t, acct.Confirmed())

	_, err = p.SignIn(ctx, "a@x.com", "secret1")
	assert.Equal(t, "Email not confirmed", providerErr(t, err).Message)

	require.NoError(t, p.ForceConfirm(ctx, acct.ID))

	sess, err := p.SignIn(ctx, "a@x.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "access-"+acct.ID, sess.AccessToken)
	assert.Equal(t, "bearer", sess.TokenType)
	assert.Len(t, sess.RefreshToken, 64)
	assert.Equal(t, domain.WalletProvider, sess.User.UserMetadata[domain.MetaProvider])
}

func TestSignIn_WrongPassword(t *testing.T) {
	p := newProvider()
	ctx := context.Background()
	acct, err := p.SignUp(ctx, "a@x.com", "secret1", nil)
	require.NoError(t, err)
	require.NoError(t, p.ForceConfirm(ctx, acct.ID))

	_, err = p.SignIn(ctx, "a@x.com", "wrong-password")

	assert.Equal(t, "invalid_credentials", providerErr(t, err).Code)
}

func TestSignUp_Duplicate(t *testing.T) {
	p := newProvider()
	ctx := context.Background()
	_, err := p.SignUp(ctx, "a@x.com", "secret1", nil)
	require.NoError(t, err)

	_, err = p.SignUp(ctx, "a@x.com", "another1", nil)

	assert.True(t, domain.IsDuplicateAccount(err))
}

func TestSignUp_ConcurrentSameEmail(t *testing.T) {
	store := &memAccounts{byID: map[string]*domain.Account{}}
	// Hold both lookups until each sign-up has passed its existence check.
	var arrived sync.WaitGroup
	arrived.Add(2)
	store.beforeLookup = func() {
		arrived.Done()
		arrived.Wait()
	}
	p := NewProvider(store, stubSigner{}, zap.NewNop())
	p.cost = bcrypt.MinCost

	errs := make([]error, 2)
	var wg sync.WaitGroup
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = p.SignUp(context.Background(), "a@x.com", "secret1", nil)
		}(i)
	}
	wg.Wait()

	failures := 0
	for _, err := range errs {
		if err != nil {
			failures++
			assert.True(t, domain.IsDuplicateAccount(err), "unexpected error %v", err)
		}
	}
	assert.Equal(t, 1, failures)
	assert.Equal(t, 1, store.countEmail("a@x.com"))
}

func TestSignUp_WeakPassword(t *testing.T) {
	_, err := newProvider().SignUp(context.Background(), "a@x.com", "abc", nil)

	pe := providerErr(t, err)
	assert.Equal(t, "weak_password", pe.Code)
	assert.False(t, domain.IsDuplicateAccount(err))
}

func TestForceConfirm_UnknownAccount(t *testing.T) {
	err := newProvider().ForceConfirm(context.Background(), "missing")

	assert.Equal(t, 404, providerErr(t, err).Status)
}
