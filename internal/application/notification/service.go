package notification

import (
	"context"
	"fmt"
	"math"
	"time"
)

type Service interface {
	SendVerificationCode(ctx context.Context, email, code string) error
}

type mailer interface {
	SendEmail(ctx context.Context, to, subject, body string) error
}

type service struct {
	mailer  mailer
	subject string
	ttl     time.Duration
}

// NewService returns a notifier that mails verification codes through m.
// ttl is only used to tell the recipient how long the code is valid.
func NewService(m mailer, subject string, ttl time.Duration) Service {
	return &service{mailer: m, subject: subject, ttl: ttl}
}

func (s *service) SendVerificationCode(ctx context.Context, email, code string) error {
	if err := s.mailer.SendEmail(ctx, email, s.subject, verificationBody(code, s.ttl)); err != nil {
		return fmt.Errorf("send verification code: %w", err)
	}
	return nil
}

func verificationBody(code string, ttl time.Duration) string {
	return fmt.Sprintf("Your 6-digit verification code is: %s\nThis code expires in %s.", code, humanize(ttl))
}

func humanize(d time.Duration) string {
	if d >= time.Minute && d%time.Minute == 0 {
		return plural(int(d/time.Minute), "minute")
	}
	return plural(int(math.Ceil(d.Seconds())), "second")
}

func plural(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", unit)
	}
	return fmt.Sprintf("%d %ss", n, unit)
}
