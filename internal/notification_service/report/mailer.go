package report

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/resend/resend-go/v2"
	"gopkg.in/gomail.v2"
)

// Email is a message with an HTML body, a plain-text alternative and optional attachments.
type Email struct {
	From        string
	To          []string
	Subject     string
	HTML        string
	Text        string
	Attachments []Attachment
}

type Attachment struct {
	Filename string
	Content  []byte
}

// Mailer delivers an Email.
type Mailer interface {
	Send(ctx context.Context, email Email) error
	Name() string
}

// SMTPMailer sends through an SMTP relay.
type SMTPMailer struct {
	sender gomail.Sender
	dialer *gomail.Dialer
	logger *slog.Logger
}

func NewSMTPMailer(host string, port int, username, password string, logger *slog.Logger) *SMTPMailer {
	return &SMTPMailer{
		dialer: gomail.NewDialer(host, port, username, password),
		logger: logger.With("mailer", "smtp"),
	}
}

// newSMTPMailerWithSender bypasses dialing; used by tests.
func newSMTPMailerWithSender(sender gomail.Sender, logger *slog.Logger) *SMTPMailer {
	return &SMTPMailer{sender: sender, logger: logger.With("mailer", "smtp")}
}

func (m *SMTPMailer) Name() string { return "smtp" }

func (m *SMTPMailer) Send(ctx context.Context, email Email) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", email.From)
	msg.SetHeader("To", email.To...)
	msg.SetHeader("Subject", email.Subject)
	msg.SetBody("text/plain", email.Text)
	msg.AddAlternative("text/html", email.HTML)
	for _, a := range email.Attachments {
		content := a.Content
		msg.Attach(a.Filename, gomail.SetCopyFunc(func(w io.Writer) error {
			_, err := w.Write(content)
			return err
		}))
	}

	// gomail has no context support; give up early if the caller already has.
	if err := ctx.Err(); err != nil {
		return err
	}

	var err error
	if m.sender != nil {
		err = gomail.Send(m.sender, msg)
	} else {
		err = m.dialer.DialAndSend(msg)
	}
	if err != nil {
		m.logger.ErrorContext(ctx, "SMTP send failed", "error", err, "to", email.To)
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}

// ResendMailer sends through the Resend HTTP API.
type ResendMailer struct {
	client *resend.Client
	logger *slog.Logger
}

func NewResendMailer(apiKey string, httpClient *http.Client, logger *slog.Logger) *ResendMailer {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &ResendMailer{
		client: resend.NewCustomClient(httpClient, apiKey),
		logger: logger.With("mailer", "resend"),
	}
}

// WithBaseURL points the client at another API host.
func (m *ResendMailer) WithBaseURL(raw string) (*ResendMailer, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("parsing resend base url: %w", err)
	}
	m.client.BaseURL = u
	return m, nil
}

func (m *ResendMailer) Name() string { return "resend" }

func (m *ResendMailer) Send(ctx context.Context, email Email) error {
	req := &resend.SendEmailRequest{
		From:    email.From,
		To:      email.To,
		Subject: email.Subject,
		Html:    email.HTML,
		Text:    email.Text,
	}
	for _, a := range email.Attachments {
		req.Attachments = append(req.Attachments, &resend.Attachment{
			Filename: a.Filename,
			Content:  a.Content,
		})
	}
	sent, err := m.client.Emails.SendWithContext(ctx, req)
	if err != nil {
		m.logger.ErrorContext(ctx, "Resend send failed", "error", err, "to", email.To)
		return fmt.Errorf("resend send: %w", err)
	}
	m.logger.InfoContext(ctx, "Email accepted by Resend", "email_id", sent.Id)
	return nil
}
