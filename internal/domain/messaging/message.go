// Package messaging models outbound transactional messages (email and
// WhatsApp) and their open/click tracking.
package messaging

import (
	"context"
	"errors"
	"time"

	"github.com/associacaosimplesatitude-debug/projetoananias-sub008/internal/domain/shared"
	"github.com/google/uuid"
)

var (
	ErrMessageNotFound   = shared.NewDomainError("NOT_FOUND", "messaging: message not found")
	ErrInvalidRecipient  = errors.New("messaging: recipient is required")
	ErrSenderUnavailable = errors.New("messaging: no sender configured for channel")
	ErrInvalidTarget     = shared.NewDomainError("INVALID_INPUT", "messaging: redirect target must be an http(s) URL")
)

// Channel is the delivery medium
type Channel string

const (
	ChannelEmail    Channel = "email"
	ChannelWhatsApp Channel = "whatsapp"
)

// Status of a message log entry
type Status string

const (
	StatusQueued Status = "queued"
	StatusSent   Status = "sent"
	StatusFailed Status = "failed"
)

// MessageLog records one outbound message and what the recipient did with it.
type MessageLog struct {
	shared.TenantEntity
	Channel     Channel
	Recipient   string
	Template    string
	Subject     string
	Status      Status
	ProviderID  string
	Error       string
	SentAt      *time.Time
	OpenedAt    *time.Time
	ClickedAt   *time.Time
	OpenCount   int
	ClickCount  int
	LastClicked string
}

// NewMessageLog creates a queued entry
func NewMessageLog(tenantID uuid.UUID, channel Channel, recipient, template, subject string) (*MessageLog, error) {
	if recipient == "" {
		return nil, ErrInvalidRecipient
	}
	return &MessageLog{
		TenantEntity: shared.NewTenantEntity(tenantID),
		Channel:      channel,
		Recipient:    recipient,
		Template:     template,
		Subject:      subject,
		Status:       StatusQueued,
	}, nil
}

// MarkSent records a successful hand-off to the provider
func (m *MessageLog) MarkSent(providerID string) {
	now := time.Now().UTC()
	m.Status = StatusSent
	m.ProviderID = providerID
	m.SentAt = &now
	m.UpdatedAt = now
}

// MarkFailed records a provider error
func (m *MessageLog) MarkFailed(err error) {
	m.Status = StatusFailed
	m.Error = err.Error()
	m.Touch()
}

// RecordOpen counts a pixel hit; OpenedAt keeps the first one.
func (m *MessageLog) RecordOpen(at time.Time) {
	if m.OpenedAt == nil {
		m.OpenedAt = &at
	}
	m.OpenCount++
}

// RecordClick counts a tracked link hit. A click implies an open.
func (m *MessageLog) RecordClick(at time.Time, target string) {
	if m.ClickedAt == nil {
		m.ClickedAt = &at
	}
	if m.OpenedAt == nil {
		m.OpenedAt = &at
	}
	m.ClickCount++
	m.LastClicked = target
}

// Repository persists message logs
type Repository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*MessageLog, error)
	Create(ctx context.Context, msg *MessageLog) error
	Update(ctx context.Context, msg *MessageLog) error
}

// Email is a rendered email ready to send
type Email struct {
	From    string
	To      string
	Subject string
	HTML    string
	Text    string
}

// EmailSender delivers email; returns the provider message id.
type EmailSender interface {
	SendEmail(ctx context.Context, email Email) (string, error)
}

// WhatsAppMessage is either free text or a named template with parameters.
type WhatsAppMessage struct {
	To           string
	Text         string
	Template     string
	LanguageCode string
	Params       []string
}

// WhatsAppSender delivers WhatsApp messages; returns the provider message id.
type WhatsAppSender interface {
	SendWhatsApp(ctx context.Context, msg WhatsAppMessage) (string, error)
}
