package sendgrid

import (
	"context"
	"fmt"

	"github.com/sendgrid/rest"
	sg "github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"github.com/web3ix-api/internal/config"
	"go.uber.org/zap"
)

const senderName = "Web3ix"

type sender interface {
	SendWithContext(ctx context.Context, email *mail.SGMailV3) (*rest.Response, error)
}

// Mailer sends plain-text email through the SendGrid v3 mail API.
type Mailer struct {
	client sender
	from   *mail.Email
	log    *zap.Logger
}

func NewMailer(cfg *config.Config, log *zap.Logger) *Mailer {
	return &Mailer{
		client: sg.NewSendClient(cfg.SendGridAPIKey),
		from:   mail.NewEmail(senderName, cfg.SMTPFrom),
		log:    log,
	}
}

// SendEmail treats any non-2xx response as a failure.
func (m *Mailer) SendEmail(ctx context.Context, to, subject, body string) error {
	msg := mail.NewV3MailInit(m.from, subject, mail.NewEmail("", to), mail.NewContent("text/plain", body))
	resp, err := m.client.SendWithContext(ctx, msg)
	if err != nil {
		return fmt.Errorf("sendgrid send: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		m.log.Error("sendgrid returned error status",
			zap.Int("status", resp.StatusCode), zap.String("body", resp.Body), zap.String("to", to))
		return fmt.Errorf("sendgrid error: status %d", resp.StatusCode)
	}
	m.log.Debug("email sent", zap.String("to", to), zap.String("subject", subject))
	return nil
}
