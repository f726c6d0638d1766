// Package messaging sends transactional email and WhatsApp messages and
// records what recipients do with them.
package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/associacaosimplesatitude-debug/projetoananias-sub008/internal/domain/messaging"
	"github.com/associacaosimplesatitude-debug/projetoananias-sub008/internal/domain/shared"
	"github.com/associacaosimplesatitude-debug/projetoananias-sub008/internal/infrastructure/notify"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// EmailInput is either a raw message (Subject plus HTML and/or Text) or a
// named template with its data
type EmailInput struct {
	To       string                 `json:"to" binding:"required,email"`
	Subject  string                 `json:"subject"`
	HTML     string                 `json:"html"`
	Text     string                 `json:"text"`
	Template messaging.TemplateName `json:"template"`
	Data     any                    `json:"-"`
}

// WhatsAppInput is a free-text or template WhatsApp message
type WhatsAppInput struct {
	To           string   `json:"to" binding:"required,phone_br"`
	Text         string   `json:"text"`
	Template     string   `json:"template"`
	LanguageCode string   `json:"language_code"`
	Params       []string `json:"params"`
}

// Metrics counts send attempts by channel and final status
type Metrics interface {
	RecordMessage(ctx context.Context, channel, status string)
}

// Service delivers messages and keeps the message log
type Service struct {
	logs     messaging.Repository
	email    messaging.EmailSender
	fallback messaging.EmailSender
	whatsapp messaging.WhatsAppSender
	renderer messaging.Renderer
	tracker  *Tracker
	from     string
	now      func() time.Time
	metrics  Metrics
	logger   *zap.Logger
}

// ServiceConfig wires a Service. Email is the primary sender (Resend) and
// Fallback is tried when it fails (SMTP); either may be nil.
type ServiceConfig struct {
	Logs            messaging.Repository
	Email           messaging.EmailSender
	Fallback        messaging.EmailSender
	WhatsApp        messaging.WhatsAppSender
	Renderer        messaging.Renderer
	TrackingBaseURL string
	TrackingKey     string
	From            string
	Metrics         Metrics
	Logger          *zap.Logger
}

// NewService creates a Service
func NewService(cfg ServiceConfig) *Service {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		logs:     cfg.Logs,
		email:    cfg.Email,
		fallback: cfg.Fallback,
		whatsapp: cfg.WhatsApp,
		renderer: cfg.Renderer,
		tracker:  NewTracker(cfg.TrackingBaseURL, cfg.TrackingKey),
		from:     cfg.From,
		now:      func() time.Time { return time.Now().UTC() },
		metrics:  cfg.Metrics,
		logger:   logger.Named("messaging"),
	}
}

// ---------------------------------------------------------------------------
// Sending
// ---------------------------------------------------------------------------

// SendEmail logs, instruments and sends one email. A provider failure is
// recorded on the returned log and also returned as the error.
func (s *Service) SendEmail(ctx context.Context, tenantID uuid.UUID, in EmailInput) (*messaging.MessageLog, error) {
	if s.email == nil && s.fallback == nil {
		return nil, fmt.Errorf("%w: email", messaging.ErrSenderUnavailable)
	}
	if in.Template != "" {
		if s.renderer == nil {
			return nil, messaging.ErrUnknownTemplate
		}
		rendered, err := s.renderer.Render(in.Template, in.Data)
		if err != nil {
			return nil, err
		}
		if in.Subject == "" {
			in.Subject = rendered.Subject
		}
		in.HTML, in.Text = rendered.HTML, rendered.Text
	}
	if in.Subject == "" || (in.HTML == "" && in.Text == "") {
		return nil, shared.NewDomainError("INVALID_INPUT", "email needs a subject and a body")
	}

	msg, err := messaging.NewMessageLog(tenantID, messaging.ChannelEmail, in.To, string(in.Template), in.Subject)
	if err != nil {
		return nil, err
	}
	if err := s.logs.Create(ctx, msg); err != nil {
		return nil, err
	}

	email := messaging.Email{
		From:    s.from,
		To:      in.To,
		Subject: in.Subject,
		HTML:    s.tracker.Instrument(in.HTML, msg.ID),
		Text:    in.Text,
	}
	providerID, sendErr := s.deliverEmail(ctx, email)
	return s.finish(ctx, msg, providerID, sendErr)
}

func (s *Service) deliverEmail(ctx context.Context, email messaging.Email) (string, error) {
	var err error
	if s.email != nil {
		var id string
		if id, err = s.email.SendEmail(ctx, email); err == nil {
			return id, nil
		}
		if s.fallback == nil {
			return "", err
		}
		s.logger.Warn("primary email sender failed, trying fallback", zap.Error(err))
	}
	return s.fallback.SendEmail(ctx, email)
}

// SendWhatsApp logs and sends one WhatsApp message
func (s *Service) SendWhatsApp(ctx context.Context, tenantID uuid.UUID, in WhatsAppInput) (*messaging.MessageLog, error) {
	if s.whatsapp == nil {
		return nil, fmt.Errorf("%w: whatsapp", messaging.ErrSenderUnavailable)
	}
	if in.Text == "" && in.Template == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "whatsapp message needs text or a template")
	}
	to := notify.NormalizePhoneBR(in.To)

	msg, err := messaging.NewMessageLog(tenantID, messaging.ChannelWhatsApp, to, in.Template, "")
	if err != nil {
		return nil, err
	}
	if err := s.logs.Create(ctx, msg); err != nil {
		return nil, err
	}

	providerID, sendErr := s.whatsapp.SendWhatsApp(ctx, messaging.WhatsAppMessage{
		To:           to,
		Text:         in.Text,
		Template:     in.Template,
		LanguageCode: in.LanguageCode,
		Params:       in.Params,
	})
	return s.finish(ctx, msg, providerID, sendErr)
}

func (s *Service) finish(ctx context.Context, msg *messaging.MessageLog, providerID string, sendErr error) (*messaging.MessageLog, error) {
	if sendErr != nil {
		msg.MarkFailed(sendErr)
	} else {
		msg.MarkSent(providerID)
	}
	if err := s.logs.Update(ctx, msg); err != nil {
		s.logger.Error("failed to update message log", zap.String("message_id", msg.ID.String()), zap.Error(err))
	}
	if s.metrics != nil {
		s.metrics.RecordMessage(ctx, string(msg.Channel), string(msg.Status))
	}
	if sendErr != nil {
		s.logger.Warn("message not delivered",
			zap.String("message_id", msg.ID.String()),
			zap.String("channel", string(msg.Channel)),
			zap.Error(sendErr))
		return msg, sendErr
	}
	s.logger.Info("message sent",
		zap.String("message_id", msg.ID.String()),
		zap.String("channel", string(msg.Channel)),
		zap.String("provider_id", providerID))
	return msg, nil
}

// ---------------------------------------------------------------------------
// Tracking
// ---------------------------------------------------------------------------

// GetMessage returns a log entry owned by the tenant
func (s *Service) GetMessage(ctx context.Context, tenantID, id uuid.UUID) (*messaging.MessageLog, error) {
	msg, err := s.logs.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if msg.TenantID != tenantID {
		return nil, messaging.ErrMessageNotFound
	}
	return msg, nil
}

// RecordOpen counts a pixel hit
func (s *Service) RecordOpen(ctx context.Context, id uuid.UUID) error {
	msg, err := s.logs.FindByID(ctx, id)
	if err != nil {
		return err
	}
	msg.RecordOpen(s.now())
	return s.logs.Update(ctx, msg)
}

// VerifyClick reports whether a click link was issued by this service
func (s *Service) VerifyClick(id uuid.UUID, target, sig string) bool {
	return s.tracker.VerifyClick(id, target, sig)
}

// RecordClick counts a tracked link hit. Only http(s) targets are accepted
// so the redirect cannot be used to open other schemes.
func (s *Service) RecordClick(ctx context.Context, id uuid.UUID, target string) error {
	if !ValidTarget(target) {
		return messaging.ErrInvalidTarget
	}
	msg, err := s.logs.FindByID(ctx, id)
	if err != nil {
		return err
	}
	msg.RecordClick(s.now(), target)
	return s.logs.Update(ctx, msg)
}

// ---------------------------------------------------------------------------
// Template data
// ---------------------------------------------------------------------------

// DecodeTemplateData unmarshals raw JSON into the data type a template expects
func DecodeTemplateData(name messaging.TemplateName, raw json.RawMessage) (any, error) {
	var target any
	switch name {
	case messaging.TemplateOrderConfirmation:
		target = &messaging.OrderConfirmation{}
	case messaging.TemplatePayoutPaid:
		target = &messaging.PayoutPaid{}
	case messaging.TemplateInvoiceIssued:
		target = &messaging.InvoiceIssued{}
	default:
		return nil, messaging.ErrUnknownTemplate
	}
	if len(raw) == 0 {
		return target, nil
	}
	if err := json.Unmarshal(raw, target); err != nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "template data: "+err.Error())
	}
	return target, nil
}
