package notify

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gopkg.in/gomail.v2"

	"github.com/associacaosimplesatitude-debug/projetoananias-sub008/internal/domain/messaging"
)

// MailDialer is the subset of gomail.Dialer used by SMTPSender
type MailDialer interface {
	DialAndSend(m ...*gomail.Message) error
}

// SMTPSender sends email over SMTP with gomail. It is the fallback when no
// Resend key is configured.
type SMTPSender struct {
	dialer MailDialer
	from   string
	domain string
}

// NewSMTPSender creates a sender dialing host:port with the given credentials
func NewSMTPSender(host string, port int, username, password, from string) *SMTPSender {
	return NewSMTPSenderWithDialer(gomail.NewDialer(host, port, username, password), from)
}

// NewSMTPSenderWithDialer creates a sender over an existing dialer
func NewSMTPSenderWithDialer(dialer MailDialer, from string) *SMTPSender {
	domain := "localhost"
	if at := strings.LastIndex(from, "@"); at >= 0 {
		domain = strings.TrimRight(from[at+1:], ">")
	}
	return &SMTPSender{dialer: dialer, from: from, domain: domain}
}

// SendEmail implements messaging.EmailSender. The generated Message-ID is
// returned as the provider id.
func (s *SMTPSender) SendEmail(ctx context.Context, email messaging.Email) (string, error) {
	if email.To == "" {
		return "", messaging.ErrInvalidRecipient
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	from := email.From
	if from == "" {
		from = s.from
	}
	messageID := fmt.Sprintf("<%s@%s>", uuid.NewString(), s.domain)

	m := gomail.NewMessage()
	m.SetHeader("From", from)
	m.SetHeader("To", email.To)
	m.SetHeader("Subject", email.Subject)
	m.SetHeader("Message-ID", messageID)
	switch {
	case email.HTML != "" && email.Text != "":
		m.SetBody("text/plain", email.Text)
		m.AddAlternative("text/html", email.HTML)
	case email.HTML != "":
		m.SetBody("text/html", email.HTML)
	default:
		m.SetBody("text/plain", email.Text)
	}

	if err := s.dialer.DialAndSend(m); err != nil {
		return "", fmt.Errorf("smtp: send to %s: %w", email.To, err)
	}
	return messageID, nil
}

var _ messaging.EmailSender = (*SMTPSender)(nil)
