package notify

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/healthmate/server/pkg/slogx"
	"github.com/wneessen/go-mail"
)

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// SMTPNotifier sends the OTP as a multipart HTML and text email.
type SMTPNotifier struct {
	client   *mail.Client
	from     string
	validFor time.Duration
}

// NewSMTPNotifier builds a client for cfg. Authentication is only enabled
// when a username is set. validFor is quoted in the email body.
func NewSMTPNotifier(cfg SMTPConfig, validFor time.Duration) (*SMTPNotifier, error) {
	opts := []mail.Option{
		mail.WithPort(cfg.Port),
		mail.WithTLSPolicy(mail.TLSOpportunistic),
	}
	if cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(cfg.Username),
			mail.WithPassword(cfg.Password),
		)
	}

	client, err := mail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("notify: smtp client: %w", err)
	}

	return &SMTPNotifier{client: client, from: cfg.From, validFor: validFor}, nil
}

func (n *SMTPNotifier) SendOTP(ctx context.Context, email, otp string) error {
	msg, err := n.message(email, otp)
	if err != nil {
		return err
	}

	if err := n.client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("notify: send otp: %w", err)
	}

	slogx.FromContext(ctx).Debug("otp email sent", slog.String("email", email))
	return nil
}

func (n *SMTPNotifier) message(email, otp string) (*mail.Msg, error) {
	msg := mail.NewMsg()
	if err := msg.From(n.from); err != nil {
		return nil, fmt.Errorf("notify: from address: %w", err)
	}
	if err := msg.To(email); err != nil {
		return nil, fmt.Errorf("notify: to address: %w", err)
	}
	msg.Subject(Subject)

	data := newOTPData(otp, n.validFor)
	if err := msg.SetBodyHTMLTemplate(htmlTemplate, data); err != nil {
		return nil, fmt.Errorf("notify: render html: %w", err)
	}
	if err := msg.AddAlternativeTextTemplate(textTemplate, data); err != nil {
		return nil, fmt.Errorf("notify: render text: %w", err)
	}
	return msg, nil
}
