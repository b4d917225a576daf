package wallet

import (
	"context"
	"crypto/ed25519"
	"fmt"

	"github.com/mr-tron/base58/base58"
	"github.com/web3ix-api/internal/domain"
	"github.com/web3ix-api/internal/metrics"
	"github.com/web3ix-api/internal/pkg/validate"
	"go.uber.org/zap"
)

const msgFieldsRequired = "Email, password, and public key are required"

type Service interface {
	Provision(ctx context.Context, email, password, publicKey string) (*domain.Session, error)
}

type provisioner interface {
	SignInOrProvision(ctx context.Context, flow, email, password string, metadata map[string]any) (*domain.Session, error)
}

type service struct {
	provisioner provisioner
	log         *zap.Logger
	metrics     *metrics.Provisioning
}

type ServiceDeps struct {
	Provisioner provisioner
	Logger      *zap.Logger
	Metrics     *metrics.Provisioning
}

func NewService(deps ServiceDeps) Service {
	log := deps.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &service{provisioner: deps.Provisioner, log: log, metrics: deps.Metrics}
}

type provisionInput struct {
	Email     string `validate:"required"`
	Password  string `validate:"required"`
	PublicKey string `validate:"required"`
}

// Provision signs the caller in, creating a wallet-bound account on first use.
// No verification code gates this flow.
func (s *service) Provision(ctx context.Context, email, password, publicKey string) (*domain.Session, error) {
	if err := validate.Struct(provisionInput{Email: email, Password: password, PublicKey: publicKey}); err != nil {
		s.metrics.Outcome(metrics.FlowWallet, metrics.OutcomeValidation)
		return nil, domain.Fail(domain.ErrValidation, msgFieldsRequired, err)
	}
	// The key is stored as given; one that is not a wallet address is only noted.
	if err := checkPublicKey(publicKey); err != nil {
		s.log.Warn("public key is not an ed25519 wallet address", zap.String("email", email), zap.Error(err))
	}

	metadata := map[string]any{
		domain.MetaProvider:      domain.WalletProvider,
		domain.MetaFullPublicKey: publicKey,
	}
	sess, err := s.provisioner.SignInOrProvision(ctx, metrics.FlowWallet, email, password, metadata)
	if err != nil {
		s.metrics.Outcome(metrics.FlowWallet, metrics.OutcomeOf(err))
		return nil, err
	}
	s.log.Info("wallet account signed in", zap.String("email", email))
	s.metrics.Outcome(metrics.FlowWallet, metrics.OutcomeSuccess)
	return sess, nil
}

// checkPublicKey fails unless key base58-decodes to an ed25519 public key,
// which is the shape of a Solana wallet address.
func checkPublicKey(key string) error {
	raw, err := base58.Decode(key)
	if err != nil {
		return fmt.Errorf("decode public key: %w", err)
	}
	if len(raw) != ed25519.PublicKeySize {
		return fmt.Errorf("public key is %d bytes, want %d", len(raw), ed25519.PublicKeySize)
	}
	return nil
}
