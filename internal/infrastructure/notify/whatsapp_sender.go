package notify

import (
	"context"
	"fmt"
	"net/http"

	"github.com/associacaosimplesatitude-debug/projetoananias-sub008/internal/domain/integration"
	"github.com/associacaosimplesatitude-debug/projetoananias-sub008/internal/domain/messaging"
	"github.com/associacaosimplesatitude-debug/projetoananias-sub008/internal/infrastructure/provider"
)

// WhatsAppBaseURL is the Graph API root used by the WhatsApp Cloud API
const WhatsAppBaseURL = "https://graph.facebook.com"

type waText struct {
	Body string `json:"body"`
}

type waLanguage struct {
	Code string `json:"code"`
}

type waParameter struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type waComponent struct {
	Type       string        `json:"type"`
	Parameters []waParameter `json:"parameters"`
}

type waTemplate struct {
	Name       string        `json:"name"`
	Language   waLanguage    `json:"language"`
	Components []waComponent `json:"components,omitempty"`
}

type waMessageRequest struct {
	MessagingProduct string      `json:"messaging_product"`
	RecipientType    string      `json:"recipient_type"`
	To               string      `json:"to"`
	Type             string      `json:"type"`
	Text             *waText     `json:"text,omitempty"`
	Template         *waTemplate `json:"template,omitempty"`
}

type waMessageResponse struct {
	Messages []struct {
		ID string `json:"id"`
	} `json:"messages"`
}

// WhatsAppSender sends messages through the WhatsApp Cloud API
type WhatsAppSender struct {
	client        *provider.Client
	apiVersion    string
	phoneNumberID string
}

// NewWhatsAppSender creates a sender for one business phone number
func NewWhatsAppSender(client *provider.Client, apiVersion, phoneNumberID string) *WhatsAppSender {
	return &WhatsAppSender{client: client, apiVersion: apiVersion, phoneNumberID: phoneNumberID}
}

// SendWhatsApp implements messaging.WhatsAppSender. Messages with a Template
// are sent as templates; otherwise Text is sent as a session message.
func (s *WhatsAppSender) SendWhatsApp(ctx context.Context, msg messaging.WhatsAppMessage) (string, error) {
	to := NormalizePhoneBR(msg.To)
	if to == "" {
		return "", messaging.ErrInvalidRecipient
	}

	req := waMessageRequest{
		MessagingProduct: "whatsapp",
		RecipientType:    "individual",
		To:               to,
	}
	if msg.Template != "" {
		lang := msg.LanguageCode
		if lang == "" {
			lang = "pt_BR"
		}
		tpl := &waTemplate{Name: msg.Template, Language: waLanguage{Code: lang}}
		if len(msg.Params) > 0 {
			params := make([]waParameter, 0, len(msg.Params))
			for _, p := range msg.Params {
				params = append(params, waParameter{Type: "text", Text: p})
			}
			tpl.Components = []waComponent{{Type: "body", Parameters: params}}
		}
		req.Type = "template"
		req.Template = tpl
	} else {
		if msg.Text == "" {
			return "", fmt.Errorf("%w: whatsapp message has neither text nor template", integration.ErrPlatformRequestFailed)
		}
		req.Type = "text"
		req.Text = &waText{Body: msg.Text}
	}

	var resp waMessageResponse
	if err := s.client.DoJSON(ctx, &provider.Request{
		Method: http.MethodPost,
		Path:   fmt.Sprintf("/%s/%s/messages", s.apiVersion, s.phoneNumberID),
		Body:   req,
	}, &resp); err != nil {
		return "", err
	}
	if len(resp.Messages) == 0 || resp.Messages[0].ID == "" {
		return "", fmt.Errorf("%w: whatsapp returned no message id", integration.ErrPlatformInvalidResponse)
	}
	return resp.Messages[0].ID, nil
}

// NormalizePhoneBR strips formatting and prefixes the Brazil country code to
// local numbers (DDD plus 8 or 9 digits).
func NormalizePhoneBR(phone string) string {
	digits := make([]byte, 0, len(phone))
	for i := 0; i < len(phone); i++ {
		if phone[i] >= '0' && phone[i] <= '9' {
			digits = append(digits, phone[i])
		}
	}
	switch len(digits) {
	case 0:
		return ""
	case 10, 11:
		return "55" + string(digits)
	default:
		return string(digits)
	}
}

var _ messaging.WhatsAppSender = (*WhatsAppSender)(nil)
