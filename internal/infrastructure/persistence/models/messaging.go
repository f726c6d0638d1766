package models

import (
	"time"

	"github.com/associacaosimplesatitude-debug/projetoananias-sub008/internal/domain/messaging"
)

// MessageLogModel is the persistence model for messaging.MessageLog
type MessageLogModel struct {
	TenantModel
	Channel     messaging.Channel `gorm:"type:varchar(20);not null"`
	Recipient   string            `gorm:"type:varchar(200);not null"`
	Template    string            `gorm:"type:varchar(50)"`
	Subject     string            `gorm:"type:varchar(255)"`
	Status      messaging.Status  `gorm:"type:varchar(20);not null;index"`
	ProviderID  string            `gorm:"type:varchar(100)"`
	Error       string            `gorm:"type:text"`
	SentAt      *time.Time
	OpenedAt    *time.Time
	ClickedAt   *time.Time
	OpenCount   int    `gorm:"not null;default:0"`
	ClickCount  int    `gorm:"not null;default:0"`
	LastClicked string `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (MessageLogModel) TableName() string {
	return "message_logs"
}

// ToDomain converts the model to a domain MessageLog
func (m *MessageLogModel) ToDomain() *messaging.MessageLog {
	return &messaging.MessageLog{
		TenantEntity: m.ToTenantEntity(),
		Channel:      m.Channel,
		Recipient:    m.Recipient,
		Template:     m.Template,
		Subject:      m.Subject,
		Status:       m.Status,
		ProviderID:   m.ProviderID,
		Error:        m.Error,
		SentAt:       m.SentAt,
		OpenedAt:     m.OpenedAt,
		ClickedAt:    m.ClickedAt,
		OpenCount:    m.OpenCount,
		ClickCount:   m.ClickCount,
		LastClicked:  m.LastClicked,
	}
}

// MessageLogModelFromDomain creates a model from a domain MessageLog
func MessageLogModelFromDomain(msg *messaging.MessageLog) *MessageLogModel {
	m := &MessageLogModel{
		Channel:     msg.Channel,
		Recipient:   msg.Recipient,
		Template:    msg.Template,
		Subject:     msg.Subject,
		Status:      msg.Status,
		ProviderID:  msg.ProviderID,
		Error:       msg.Error,
		SentAt:      msg.SentAt,
		OpenedAt:    msg.OpenedAt,
		ClickedAt:   msg.ClickedAt,
		OpenCount:   msg.OpenCount,
		ClickCount:  msg.ClickCount,
		LastClicked: msg.LastClicked,
	}
	m.FromTenantEntity(msg.TenantEntity)
	return m
}
