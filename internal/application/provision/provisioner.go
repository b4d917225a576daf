package provision

import (
	"context"

	"github.com/web3ix-api/internal/domain"
	"github.com/web3ix-api/internal/metrics"
	"go.uber.org/zap"
)

// Provisioner drives the identity provider from "maybe an account exists" to
// an authenticated session. It is shared by the verification and wallet
// flows, which differ only in what gates them and the sign-up metadata.
type Provisioner struct {
	idp     domain.IdentityProvider
	log     *zap.Logger
	metrics *metrics.Provisioning
}

type Deps struct {
	IdentityProvider domain.IdentityProvider
	Logger           *zap.Logger
	Metrics          *metrics.Provisioning
}

func New(deps Deps) *Provisioner {
	log := deps.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Provisioner{idp: deps.IdentityProvider, log: log, metrics: deps.Metrics}
}

// SignInOrProvision returns a session for email/password, creating and
// force-confirming the account when sign-in fails.
//
// Failures are *domain.Failure: ErrAuth when sign-up is rejected (including
// a duplicate-account rejection whose retried sign-in also fails, reported
// with the sign-up message), ErrProvision when confirmation or the final
// sign-in fails.
func (p *Provisioner) SignInOrProvision(ctx context.Context, flow, email, password string, metadata map[string]any) (*domain.Session, error) {
	sess, err := p.idp.SignIn(ctx, email, password)
	if err == nil {
		return sess, nil
	}
	p.log.Debug("sign-in failed, provisioning account",
		zap.String("flow", flow), zap.String("email", email), zap.Error(err))

	acct, err := p.idp.SignUp(ctx, email, password, metadata)
	if err != nil {
		if domain.IsDuplicateAccount(err) {
			p.metrics.Retry(flow)
			sess, retryErr := p.idp.SignIn(ctx, email, password)
			if retryErr == nil {
				return sess, nil
			}
			p.log.Info("sign-in retry after duplicate sign-up failed",
				zap.String("flow", flow), zap.String("email", email), zap.Error(retryErr))
		}
		return nil, domain.Fail(domain.ErrAuth, err.Error(), err)
	}

	if err := p.idp.ForceConfirm(ctx, acct.ID); err != nil {
		p.log.Error("force confirm failed",
			zap.String("flow", flow), zap.String("account_id", acct.ID), zap.Error(err))
		return nil, domain.Fail(domain.ErrProvision, err.Error(), err)
	}

	sess, err = p.idp.SignIn(ctx, email, password)
	if err != nil {
		p.log.Error("sign-in after confirmation failed",
			zap.String("flow", flow), zap.String("account_id", acct.ID), zap.Error(err))
		return nil, domain.Fail(domain.ErrProvision, err.Error(), err)
	}
	return sess, nil
}
