package verification

import (
	"context"
	"errors"
	"time"

	"github.com/web3ix-api/internal/domain"
	"github.com/web3ix-api/internal/metrics"
	"github.com/web3ix-api/internal/pkg/validate"
	"go.uber.org/zap"
)

// Client-facing messages.
const (
	MsgCodeSent             = "Verification code sent. Please check your inbox."
	msgSignupFieldsRequired = "Email and password are required"
	msgVerifyFieldsRequired = "Email, password, and code are required"
	msgInvalidCode          = "Invalid or expired code"
	msgDeliveryFailed       = "Failed to send verification email"
)

type Service interface {
	RequestCode(ctx context.Context, email, password string) error
	VerifyCode(ctx context.Context, email, password, code string) (*domain.Session, error)
}

type codeStore interface {
	ClearActive(ctx context.Context, email string) error
	Issue(ctx context.Context, v *domain.VerificationCode) error
	FindValid(ctx context.Context, email, code string, now time.Time) (*domain.VerificationCode, error)
	Consume(ctx context.Context, email, code string) error
}

type codeGenerator interface {
	Generate() (string, time.Time, error)
}

type notifier interface {
	SendVerificationCode(ctx context.Context, email, code string) error
}

type provisioner interface {
	SignInOrProvision(ctx context.Context, flow, email, password string, metadata map[string]any) (*domain.Session, error)
}

type service struct {
	codes       codeStore
	generator   codeGenerator
	notifier    notifier
	provisioner provisioner
	log         *zap.Logger
	metrics     *metrics.Provisioning
	now         func() time.Time
}

type ServiceDeps struct {
	CodeRepo    codeStore
	Generator   codeGenerator
	Notifier    notifier
	Provisioner provisioner
	Logger      *zap.Logger
	Metrics     *metrics.Provisioning
	Now         func() time.Time
}

func NewService(deps ServiceDeps) Service {
	s := &service{
		codes:       deps.CodeRepo,
		generator:   deps.Generator,
		notifier:    deps.Notifier,
		provisioner: deps.Provisioner,
		log:         deps.Logger,
		metrics:     deps.Metrics,
		now:         deps.Now,
	}
	if s.log == nil {
		s.log = zap.NewNop()
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

type requestCodeInput struct {
	Email    string `validate:"required"`
	Password string `validate:"required"`
}

type verifyCodeInput struct {
	Email    string `validate:"required"`
	Password string `validate:"required"`
	Code     string `validate:"required"`
}

// RequestCode replaces any active code for email with a fresh one and mails
// it. A delivery failure leaves the stored code valid.
func (s *service) RequestCode(ctx context.Context, email, password string) error {
	if err := validate.Struct(requestCodeInput{Email: email, Password: password}); err != nil {
		s.metrics.Outcome(metrics.FlowSignup, metrics.OutcomeValidation)
		return domain.Fail(domain.ErrValidation, msgSignupFieldsRequired, err)
	}

	code, expiresAt, err := s.generator.Generate()
	if err != nil {
		s.metrics.Outcome(metrics.FlowSignup, metrics.OutcomeStorage)
		return domain.Fail(domain.ErrStorage, err.Error(), err)
	}

	if err := s.codes.ClearActive(ctx, email); err != nil {
		s.log.Error("clear active codes failed", zap.String("email", email), zap.Error(err))
		s.metrics.Outcome(metrics.FlowSignup, metrics.OutcomeStorage)
		return domain.Fail(domain.ErrStorage, err.Error(), err)
	}
	v := &domain.VerificationCode{Email: email, Code: code, ExpiresAt: expiresAt.Unix()}
	if err := s.codes.Issue(ctx, v); err != nil {
		s.log.Error("store verification code failed", zap.String("email", email), zap.Error(err))
		s.metrics.Outcome(metrics.FlowSignup, metrics.OutcomeStorage)
		return domain.Fail(domain.ErrStorage, err.Error(), err)
	}

	if err := s.notifier.SendVerificationCode(ctx, email, code); err != nil {
		s.log.Error("send verification email failed", zap.String("email", email), zap.Error(err))
		s.metrics.Outcome(metrics.FlowSignup, metrics.OutcomeDelivery)
		return domain.Fail(domain.ErrDelivery, msgDeliveryFailed, err)
	}

	s.log.Info("verification code issued", zap.String("email", email), zap.Time("expires_at", expiresAt))
	s.metrics.Outcome(metrics.FlowSignup, metrics.OutcomeSuccess)
	return nil
}

// VerifyCode checks code for email and, if valid, signs the caller in,
// provisioning the account first when needed. The code is consumed only
// when a session is returned.
func (s *service) VerifyCode(ctx context.Context, email, password, code string) (*domain.Session, error) {
	if err := validate.Struct(verifyCodeInput{Email: email, Password: password, Code: code}); err != nil {
		s.metrics.Outcome(metrics.FlowVerification, metrics.OutcomeValidation)
		return nil, domain.Fail(domain.ErrValidation, msgVerifyFieldsRequired, err)
	}

	v, err := s.codes.FindValid(ctx, email, code, s.now())
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			s.log.Error("verification code lookup failed", zap.String("email", email), zap.Error(err))
		}
		s.metrics.Outcome(metrics.FlowVerification, metrics.OutcomeInvalidCode)
		return nil, domain.Fail(domain.ErrInvalidCode, msgInvalidCode, err)
	}

	sess, err := s.provisioner.SignInOrProvision(ctx, metrics.FlowVerification, email, password, nil)
	if err != nil {
		s.metrics.Outcome(metrics.FlowVerification, metrics.OutcomeOf(err))
		return nil, err
	}

	if err := s.codes.Consume(ctx, v.Email, v.Code); err != nil {
		s.log.Warn("consume verification code failed", zap.String("email", email), zap.Error(err))
	}
	s.metrics.Outcome(metrics.FlowVerification, metrics.OutcomeSuccess)
	return sess, nil
}
