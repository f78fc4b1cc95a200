package enroll

import (
	"context"
	"fmt"

	goerrors "github.com/goliatone/go-errors"
	gomail "gopkg.in/gomail.v2"
)

// SMTPMailerConfig holds the connection settings for the SMTP mailer.
type SMTPMailerConfig struct {
	Host string
	Port int
	User string
	Pass string
	From string
}

// SMTPMailer delivers verification codes over SMTP via gomail.
type SMTPMailer struct {
	cfg    SMTPMailerConfig
	logger Logger
}

var _ Mailer = (*SMTPMailer)(nil)

func NewSMTPMailer(cfg SMTPMailerConfig, logger Logger) *SMTPMailer {
	if logger == nil {
		logger = defLogger{}
	}
	return &SMTPMailer{
		cfg:    cfg,
		logger: logger,
	}
}

func (m *SMTPMailer) SendVerificationCode(ctx context.Context, email, code string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if m.cfg.Host == "" || m.cfg.From == "" {
		return goerrors.New("mailer is not configured", goerrors.CategoryOperation)
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.cfg.From)
	msg.SetHeader("To", email)
	msg.SetHeader("Subject", "Your verification code")
	msg.SetBody("text/html", verificationBody(code))

	dialer := gomail.NewDialer(m.cfg.Host, m.cfg.Port, m.cfg.User, m.cfg.Pass)

	if err := dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("send verification email: %w", err)
	}

	m.logger.Info("verification email sent", "to", email)
	return nil
}

func verificationBody(code string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif;">
  <div style="max-width: 520px; margin: 0 auto; padding: 16px;">
    <h2>Email verification</h2>
    <p>Your verification code is:</p>
    <div style="font-size: 28px; font-weight: bold; letter-spacing: 3px;">%s</div>
    <p>The code is valid for 10 minutes.</p>
  </div>
</body>
</html>`, code)
}
