// Package notify delivers transactional email (Resend or SMTP) and WhatsApp
// messages.
package notify

import (
	"context"
	"fmt"
	"net/http"

	"github.com/associacaosimplesatitude-debug/projetoananias-sub008/internal/domain/integration"
	"github.com/associacaosimplesatitude-debug/projetoananias-sub008/internal/domain/messaging"
	"github.com/associacaosimplesatitude-debug/projetoananias-sub008/internal/infrastructure/provider"
)

// ResendBaseURL is the production Resend API root
const ResendBaseURL = "https://api.resend.com"

type resendEmailRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html,omitempty"`
	Text    string   `json:"text,omitempty"`
}

type resendEmailResponse struct {
	ID string `json:"id"`
}

// ResendSender sends email through the Resend HTTP API
type ResendSender struct {
	client *provider.Client
	from   string
}

// NewResendSender creates a sender. The client must carry the API key as its
// static bearer token.
func NewResendSender(client *provider.Client, from string) *ResendSender {
	return &ResendSender{client: client, from: from}
}

// SendEmail implements messaging.EmailSender
func (s *ResendSender) SendEmail(ctx context.Context, email messaging.Email) (string, error) {
	if email.To == "" {
		return "", messaging.ErrInvalidRecipient
	}
	from := email.From
	if from == "" {
		from = s.from
	}

	var resp resendEmailResponse
	if err := s.client.DoJSON(ctx, &provider.Request{
		Method: http.MethodPost,
		Path:   "/emails",
		Body: resendEmailRequest{
			From:    from,
			To:      []string{email.To},
			Subject: email.Subject,
			HTML:    email.HTML,
			Text:    email.Text,
		},
	}, &resp); err != nil {
		return "", err
	}
	if resp.ID == "" {
		return "", fmt.Errorf("%w: resend returned no id", integration.ErrPlatformInvalidResponse)
	}
	return resp.ID, nil
}

var _ messaging.EmailSender = (*ResendSender)(nil)
