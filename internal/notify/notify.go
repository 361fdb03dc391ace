// Package notify sends booking confirmation and cancellation emails.
package notify

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"log/slog"
	"strings"
	"time"

	"github.com/wneessen/go-mail"
)

// Mailer delivers one rendered HTML message.
type Mailer interface {
	Send(ctx context.Context, to, subject, htmlBody string) error
}

// Payload is the data every notification template renders.
type Payload struct {
	Name    string
	Message string
	Date    string
	Event   string
}

var bookingTemplate = template.Must(template.New("booking").Parse(`<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; color: #333;">
  <h2>Namaste {{.Name}},</h2>
  <p>{{.Message}}</p>
  <table cellpadding="6" style="border-collapse: collapse;">
    <tr><td><strong>Date</strong></td><td>{{.Date}}</td></tr>
    {{if .Event}}<tr><td><strong>Event</strong></td><td>{{.Event}}</td></tr>{{end}}
  </table>
  <p>If you have any questions, please contact the dharamshala directly.</p>
  <p>Regards,<br>Dharamshala Booking Team</p>
</body>
</html>`))

type Dispatcher struct {
	mailer Mailer
	logger *slog.Logger
}

func NewDispatcher(mailer Mailer, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{mailer: mailer, logger: logger}
}

// Send renders the payload and delivers it. Failures are logged and returned;
// callers that treat mail as best-effort may ignore the error.
func (d *Dispatcher) Send(ctx context.Context, to, subject string, p Payload) error {
	var buf bytes.Buffer
	if err := bookingTemplate.Execute(&buf, p); err != nil {
		d.logger.Error("failed to render email", "to", to, "subject", subject, "error", err)
		return fmt.Errorf("failed to render email: %w", err)
	}

	if err := d.mailer.Send(ctx, to, subject, buf.String()); err != nil {
		d.logger.Error("failed to send email", "to", to, "subject", subject, "error", err)
		return fmt.Errorf("failed to send email to %s: %w", to, err)
	}

	d.logger.Info("email sent", "to", to, "subject", subject)
	return nil
}

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

type SMTPMailer struct {
	client *mail.Client
	from   string
}

func NewSMTPMailer(cfg SMTPConfig) (*SMTPMailer, error) {
	opts := []mail.Option{
		mail.WithPort(cfg.Port),
		mail.WithTLSPortPolicy(mail.TLSOpportunistic),
		mail.WithTimeout(15 * time.Second),
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
		return nil, fmt.Errorf("failed to create mail client: %w", err)
	}

	from := cfg.From
	if from == "" {
		from = cfg.Username
	}
	return &SMTPMailer{client: client, from: from}, nil
}

func (m *SMTPMailer) Send(ctx context.Context, to, subject, htmlBody string) error {
	msg := mail.NewMsg()
	if err := msg.From(m.from); err != nil {
		return fmt.Errorf("invalid sender %q: %w", m.from, err)
	}
	if err := msg.To(to); err != nil {
		return fmt.Errorf("invalid recipient %q: %w", to, err)
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextHTML, htmlBody)
	return m.client.DialAndSendWithContext(ctx, msg)
}

// LogMailer writes messages to the log instead of sending them.
type LogMailer struct {
	logger *slog.Logger
}

func NewLogMailer(logger *slog.Logger) *LogMailer {
	return &LogMailer{logger: logger}
}

func (m *LogMailer) Send(_ context.Context, to, subject, htmlBody string) error {
	m.logger.Info("mock email",
		"to", to,
		"subject", subject,
		"body", strings.TrimSpace(htmlBody),
	)
	return nil
}
