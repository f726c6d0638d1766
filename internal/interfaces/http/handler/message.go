package handler

import (
	"context"
	"encoding/json"
	"time"

	messagingapp "github.com/associacaosimplesatitude-debug/projetoananias-sub008/internal/application/messaging"
	"github.com/associacaosimplesatitude-debug/projetoananias-sub008/internal/domain/messaging"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// MessageAPI sends and looks up outbound messages
type MessageAPI interface {
	SendEmail(ctx context.Context, tenantID uuid.UUID, in messagingapp.EmailInput) (*messaging.MessageLog, error)
	SendWhatsApp(ctx context.Context, tenantID uuid.UUID, in messagingapp.WhatsAppInput) (*messaging.MessageLog, error)
	GetMessage(ctx context.Context, tenantID, id uuid.UUID) (*messaging.MessageLog, error)
}

// MessageHandler serves email and WhatsApp sending
type MessageHandler struct {
	BaseHandler
	service MessageAPI
}

// NewMessageHandler creates a new MessageHandler
func NewMessageHandler(service MessageAPI) *MessageHandler {
	return &MessageHandler{service: service}
}

// SendEmailRequest is the body of POST /messages/email. With a template the
// body is rendered from data and subject may be left empty.
type SendEmailRequest struct {
	To       string          `json:"to" binding:"required,email"`
	Subject  string          `json:"subject" binding:"max=300"`
	HTML     string          `json:"html"`
	Text     string          `json:"text"`
	Template string          `json:"template" binding:"omitempty,oneof=order_confirmation payout_paid invoice_issued"`
	Data     json.RawMessage `json:"data"`
}

// MessageResponse is the JSON view of a message log entry
type MessageResponse struct {
	ID          uuid.UUID         `json:"id"`
	Channel     messaging.Channel `json:"channel"`
	Recipient   string            `json:"recipient"`
	Template    string            `json:"template,omitempty"`
	Subject     string            `json:"subject,omitempty"`
	Status      messaging.Status  `json:"status"`
	ProviderID  string            `json:"provider_id,omitempty"`
	Error       string            `json:"error,omitempty"`
	SentAt      *time.Time        `json:"sent_at,omitempty"`
	OpenedAt    *time.Time        `json:"opened_at,omitempty"`
	ClickedAt   *time.Time        `json:"clicked_at,omitempty"`
	OpenCount   int               `json:"open_count"`
	ClickCount  int               `json:"click_count"`
	LastClicked string            `json:"last_clicked,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
}

func toMessageResponse(m *messaging.MessageLog) MessageResponse {
	return MessageResponse{
		ID:          m.ID,
		Channel:     m.Channel,
		Recipient:   m.Recipient,
		Template:    m.Template,
		Subject:     m.Subject,
		Status:      m.Status,
		ProviderID:  m.ProviderID,
		Error:       m.Error,
		SentAt:      m.SentAt,
		OpenedAt:    m.OpenedAt,
		ClickedAt:   m.ClickedAt,
		OpenCount:   m.OpenCount,
		ClickCount:  m.ClickCount,
		LastClicked: m.LastClicked,
		CreatedAt:   m.CreatedAt,
	}
}

// SendEmail handles POST /messages/email
// @ID           sendEmail
// @Summary      Send an email
// @Description  Logs, instruments and sends an email through Resend, falling back to SMTP
// @Tags         messages
// @Accept       json
// @Produce      json
// @Param        request body SendEmailRequest true "Email"
// @Success      201 {object} APIResponse[MessageResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Failure      502 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /api/v1/messages/email [post]
func (h *MessageHandler) SendEmail(c *gin.Context) {
	tenantID, ok := h.tenantOrAbort(c)
	if !ok {
		return
	}

	var req SendEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	in := messagingapp.EmailInput{
		To:      req.To,
		Subject: req.Subject,
		HTML:    req.HTML,
		Text:    req.Text,
	}
	if req.Template != "" {
		in.Template = messaging.TemplateName(req.Template)
		data, err := messagingapp.DecodeTemplateData(in.Template, req.Data)
		if err != nil {
			h.HandleError(c, err)
			return
		}
		in.Data = data
	}

	msg, err := h.service.SendEmail(c.Request.Context(), tenantID, in)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, toMessageResponse(msg))
}

// SendWhatsApp handles POST /messages/whatsapp
// @ID           sendWhatsApp
// @Summary      Send a WhatsApp message
// @Tags         messages
// @Accept       json
// @Produce      json
// @Param        request body messagingapp.WhatsAppInput true "Message"
// @Success      201 {object} APIResponse[MessageResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Failure      502 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /api/v1/messages/whatsapp [post]
func (h *MessageHandler) SendWhatsApp(c *gin.Context) {
	tenantID, ok := h.tenantOrAbort(c)
	if !ok {
		return
	}

	var req messagingapp.WhatsAppInput
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	if req.Text == "" && req.Template == "" {
		h.BadRequest(c, "text or template is required")
		return
	}

	msg, err := h.service.SendWhatsApp(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, toMessageResponse(msg))
}

// GetMessage handles GET /messages/:id
// @ID           getMessage
// @Summary      Get a message log
// @Tags         messages
// @Produce      json
// @Param        id path string true "Message ID" format(uuid)
// @Success      200 {object} APIResponse[MessageResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /api/v1/messages/{id} [get]
func (h *MessageHandler) GetMessage(c *gin.Context) {
	tenantID, ok := h.tenantOrAbort(c)
	if !ok {
		return
	}
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid message ID format")
		return
	}

	msg, err := h.service.GetMessage(c.Request.Context(), tenantID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toMessageResponse(msg))
}
