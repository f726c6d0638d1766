package handler

import (
	"context"
	"time"

	commissionapp "github.com/associacaosimplesatitude-debug/projetoananias-sub008/internal/application/commission"
	"github.com/associacaosimplesatitude-debug/projetoananias-sub008/internal/domain/commission"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CommissionService is the sales, balance and payout API used by CommissionHandler
type CommissionService interface {
	SaveConfig(ctx context.Context, tenantID uuid.UUID, in commissionapp.SaveConfigInput) (*commission.CommissionConfig, error)
	RecordSale(ctx context.Context, tenantID uuid.UUID, in commissionapp.RecordSaleInput) (*commission.Sale, error)
	AttachPaymentLink(ctx context.Context, tenantID, saleID uuid.UUID, link string) (*commission.Sale, error)
	GetSale(ctx context.Context, tenantID, saleID uuid.UUID) (*commission.Sale, error)
	ListSales(ctx context.Context, tenantID uuid.UUID, filter commission.SaleFilter) ([]commission.Sale, int64, error)
	CreatePayout(ctx context.Context, tenantID uuid.UUID, saleIDs []uuid.UUID) (*commission.PayoutBatch, error)
	GetPayout(ctx context.Context, tenantID, payoutID uuid.UUID) (*commission.PayoutBatch, error)
	ApprovePayout(ctx context.Context, tenantID, payoutID uuid.UUID) (*commission.PayoutBatch, error)
	MarkPayoutPaid(ctx context.Context, tenantID, payoutID uuid.UUID, reference string) (*commission.PayoutBatch, error)
	CancelPayout(ctx context.Context, tenantID, payoutID uuid.UUID, reason string) (*commission.PayoutBatch, error)
	BeneficiaryBalance(ctx context.Context, tenantID, beneficiaryID uuid.UUID) (*commission.Balance, error)
}

// CommissionHandler serves commission configs, sales, balances and payouts
type CommissionHandler struct {
	BaseHandler
	service CommissionService
}

// NewCommissionHandler creates a new CommissionHandler
func NewCommissionHandler(service CommissionService) *CommissionHandler {
	return &CommissionHandler{service: service}
}

// ---------------------------------------------------------------------------
// Request / response bodies
// ---------------------------------------------------------------------------

// SaveConfigRequest is the body of POST /commission/configs
type SaveConfigRequest struct {
	ProductID            string          `json:"product_id" binding:"required"`
	Kind                 string          `json:"kind" binding:"required,oneof=commission royalty"`
	Pct                  decimal.Decimal `json:"pct" binding:"gte=0,lte=100"`
	DefaultBeneficiaryID string          `json:"default_beneficiary_id" binding:"omitempty,uuid"`
}

// RecordSaleRequest is the body of POST /sales
type RecordSaleRequest struct {
	ProductID       string          `json:"product_id" binding:"required"`
	ProductTitle    string          `json:"product_title"`
	Kind            string          `json:"kind" binding:"required,oneof=commission royalty"`
	BeneficiaryID   string          `json:"beneficiary_id" binding:"omitempty,uuid"`
	Quantity        int             `json:"quantity" binding:"required,min=1"`
	UnitPrice       decimal.Decimal `json:"unit_price" binding:"gte=0"`
	ExternalOrderID string          `json:"external_order_id" binding:"max=100"`
}

// ListSalesQuery is the query of GET /sales
type ListSalesQuery struct {
	BeneficiaryID string `form:"beneficiary_id" binding:"omitempty,uuid"`
	Kind          string `form:"kind" binding:"omitempty,oneof=commission royalty"`
	Page          int    `form:"page" binding:"omitempty,min=1"`
	PageSize      int    `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// PaymentLinkRequest is the body of POST /sales/:id/payment-link. An empty
// link asks Mercado Pago for a checkout preference.
type PaymentLinkRequest struct {
	Link string `json:"link" binding:"omitempty,url"`
}

// CreatePayoutRequest is the body of POST /payouts
type CreatePayoutRequest struct {
	SaleIDs []string `json:"sale_ids" binding:"required,min=1,dive,uuid"`
}

// PayPayoutRequest is the body of POST /payouts/:id/pay
type PayPayoutRequest struct {
	Reference string `json:"reference" binding:"max=200"`
}

// CancelPayoutRequest is the body of POST /payouts/:id/cancel
type CancelPayoutRequest struct {
	Reason string `json:"reason" binding:"max=500"`
}

// CommissionConfigResponse is the JSON view of a commission config
type CommissionConfigResponse struct {
	ID                   uuid.UUID           `json:"id"`
	ProductID            string              `json:"product_id"`
	Kind                 commission.SaleKind `json:"kind"`
	Pct                  decimal.Decimal     `json:"pct"`
	DefaultBeneficiaryID *uuid.UUID          `json:"default_beneficiary_id,omitempty"`
}

// SaleResponse is the JSON view of a sale. Commission values are shown
// rounded to cents; the stored values stay exact.
type SaleResponse struct {
	ID              uuid.UUID           `json:"id"`
	ProductID       string              `json:"product_id"`
	ProductTitle    string              `json:"product_title"`
	Kind            commission.SaleKind `json:"kind"`
	BeneficiaryID   uuid.UUID           `json:"beneficiary_id"`
	Quantity        int                 `json:"quantity"`
	UnitPrice       decimal.Decimal     `json:"unit_price"`
	CommissionPct   decimal.Decimal     `json:"commission_pct"`
	CommissionUnit  decimal.Decimal     `json:"commission_unit"`
	CommissionTotal decimal.Decimal     `json:"commission_total"`
	ExternalOrderID string              `json:"external_order_id,omitempty"`
	PaymentLink     string              `json:"payment_link,omitempty"`
	CreatedAt       time.Time           `json:"created_at"`
}

// PayoutResponse is the JSON view of a payout batch
type PayoutResponse struct {
	ID            uuid.UUID               `json:"id"`
	BeneficiaryID uuid.UUID               `json:"beneficiary_id"`
	SaleIDs       []uuid.UUID             `json:"sale_ids"`
	Total         decimal.Decimal         `json:"total"`
	Status        commission.PayoutStatus `json:"status"`
	Reference     string                  `json:"reference,omitempty"`
	ApprovedAt    *time.Time              `json:"approved_at,omitempty"`
	PaidAt        *time.Time              `json:"paid_at,omitempty"`
	CancelledAt   *time.Time              `json:"cancelled_at,omitempty"`
	CancelReason  string                  `json:"cancel_reason,omitempty"`
	CreatedAt     time.Time               `json:"created_at"`
}

func toConfigResponse(cfg *commission.CommissionConfig) CommissionConfigResponse {
	return CommissionConfigResponse{
		ID:                   cfg.ID,
		ProductID:            cfg.ProductID,
		Kind:                 cfg.Kind,
		Pct:                  cfg.Pct,
		DefaultBeneficiaryID: cfg.DefaultBeneficiaryID,
	}
}

func toSaleResponse(s *commission.Sale) SaleResponse {
	return SaleResponse{
		ID:              s.ID,
		ProductID:       s.ProductID,
		ProductTitle:    s.ProductTitle,
		Kind:            s.Kind,
		BeneficiaryID:   s.BeneficiaryID,
		Quantity:        s.Quantity,
		UnitPrice:       s.UnitPrice,
		CommissionPct:   s.CommissionPct,
		CommissionUnit:  s.CommissionUnit.Round(2),
		CommissionTotal: s.CommissionTotal.Round(2),
		ExternalOrderID: s.ExternalOrderID,
		PaymentLink:     s.PaymentLink,
		CreatedAt:       s.CreatedAt,
	}
}

func toPayoutResponse(b *commission.PayoutBatch) PayoutResponse {
	return PayoutResponse{
		ID:            b.ID,
		BeneficiaryID: b.BeneficiaryID,
		SaleIDs:       b.SaleIDs,
		Total:         b.Total.Round(2),
		Status:        b.Status,
		Reference:     b.Reference,
		ApprovedAt:    b.ApprovedAt,
		PaidAt:        b.PaidAt,
		CancelledAt:   b.CancelledAt,
		CancelReason:  b.CancelReason,
		CreatedAt:     b.CreatedAt,
	}
}

// ---------------------------------------------------------------------------
// Configs and sales
// ---------------------------------------------------------------------------

// SaveConfig handles POST /commission/configs
// @ID           saveCommissionConfig
// @Summary      Save a commission config
// @Description  Stores the commission or royalty rate of a beneficiary
// @Tags         commission
// @Accept       json
// @Produce      json
// @Param        request body SaveConfigRequest true "Config"
// @Success      200 {object} APIResponse[CommissionConfigResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /api/v1/commission/configs [post]
func (h *CommissionHandler) SaveConfig(c *gin.Context) {
	tenantID, ok := h.tenantOrAbort(c)
	if !ok {
		return
	}

	var req SaveConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	in := commissionapp.SaveConfigInput{
		ProductID: req.ProductID,
		Kind:      commission.SaleKind(req.Kind),
		Pct:       req.Pct,
	}
	if req.DefaultBeneficiaryID != "" {
		id := uuid.MustParse(req.DefaultBeneficiaryID)
		in.DefaultBeneficiaryID = &id
	}

	cfg, err := h.service.SaveConfig(c.Request.Context(), tenantID, in)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toConfigResponse(cfg))
}

// RecordSale handles POST /sales
// @ID           recordSale
// @Summary      Record a sale
// @Description  Stores a sale and computes its commission at the configured rate
// @Tags         sales
// @Accept       json
// @Produce      json
// @Param        request body RecordSaleRequest true "Sale"
// @Success      201 {object} APIResponse[SaleResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /api/v1/sales [post]
func (h *CommissionHandler) RecordSale(c *gin.Context) {
	tenantID, ok := h.tenantOrAbort(c)
	if !ok {
		return
	}

	var req RecordSaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	in := commissionapp.RecordSaleInput{
		ProductID:       req.ProductID,
		ProductTitle:    req.ProductTitle,
		Kind:            commission.SaleKind(req.Kind),
		Quantity:        req.Quantity,
		UnitPrice:       req.UnitPrice,
		ExternalOrderID: req.ExternalOrderID,
	}
	if req.BeneficiaryID != "" {
		in.BeneficiaryID = uuid.MustParse(req.BeneficiaryID)
	}

	sale, err := h.service.RecordSale(c.Request.Context(), tenantID, in)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, toSaleResponse(sale))
}

// ListSales handles GET /sales
// @ID           listSales
// @Summary      List sales
// @Tags         sales
// @Produce      json
// @Param        beneficiary_id query string false "Beneficiary ID" format(uuid)
// @Param        kind query string false "Earning kind" Enums(commission, royalty)
// @Param        page query int false "Page" default(1)
// @Param        page_size query int false "Page size" default(20) maximum(100)
// @Success      200 {object} APIResponse[[]SaleResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /api/v1/sales [get]
func (h *CommissionHandler) ListSales(c *gin.Context) {
	tenantID, ok := h.tenantOrAbort(c)
	if !ok {
		return
	}

	var q ListSalesQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.BindError(c, err)
		return
	}

	filter := commission.SaleFilter{
		Kind:     commission.SaleKind(q.Kind),
		Page:     q.Page,
		PageSize: q.PageSize,
	}
	if q.BeneficiaryID != "" {
		id := uuid.MustParse(q.BeneficiaryID)
		filter.BeneficiaryID = &id
	}

	sales, total, err := h.service.ListSales(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	out := make([]SaleResponse, 0, len(sales))
	for i := range sales {
		out = append(out, toSaleResponse(&sales[i]))
	}
	page, size := max(q.Page, 1), q.PageSize
	if size == 0 {
		size = 20
	}
	h.SuccessWithMeta(c, out, total, (page-1)*size, size)
}

// GetSale handles GET /sales/:id
// @ID           getSale
// @Summary      Get a sale
// @Tags         sales
// @Produce      json
// @Param        id path string true "Sale ID" format(uuid)
// @Success      200 {object} APIResponse[SaleResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /api/v1/sales/{id} [get]
func (h *CommissionHandler) GetSale(c *gin.Context) {
	tenantID, ok := h.tenantOrAbort(c)
	if !ok {
		return
	}
	saleID, ok := parseUUIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid sale ID format")
		return
	}

	sale, err := h.service.GetSale(c.Request.Context(), tenantID, saleID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toSaleResponse(sale))
}

// AttachPaymentLink handles POST /sales/:id/payment-link
// @ID           attachSalePaymentLink
// @Summary      Attach a payment link
// @Description  An empty link asks Mercado Pago for a checkout preference
// @Tags         sales
// @Accept       json
// @Produce      json
// @Param        id path string true "Sale ID" format(uuid)
// @Param        request body PaymentLinkRequest false "Payment link"
// @Success      200 {object} APIResponse[SaleResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      502 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /api/v1/sales/{id}/payment-link [post]
func (h *CommissionHandler) AttachPaymentLink(c *gin.Context) {
	tenantID, ok := h.tenantOrAbort(c)
	if !ok {
		return
	}
	saleID, ok := parseUUIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid sale ID format")
		return
	}

	var req PaymentLinkRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			h.BindError(c, err)
			return
		}
	}

	sale, err := h.service.AttachPaymentLink(c.Request.Context(), tenantID, saleID, req.Link)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toSaleResponse(sale))
}

// Balance handles GET /beneficiaries/:id/balance
// @ID           getBeneficiaryBalance
// @Summary      Get a beneficiary balance
// @Description  Pending, batched and paid totals
// @Tags         beneficiaries
// @Produce      json
// @Param        id path string true "Beneficiary ID" format(uuid)
// @Success      200 {object} APIResponse[commission.Balance]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /api/v1/beneficiaries/{id}/balance [get]
func (h *CommissionHandler) Balance(c *gin.Context) {
	tenantID, ok := h.tenantOrAbort(c)
	if !ok {
		return
	}
	beneficiaryID, ok := parseUUIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid beneficiary ID format")
		return
	}

	balance, err := h.service.BeneficiaryBalance(c.Request.Context(), tenantID, beneficiaryID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, balance)
}

// ---------------------------------------------------------------------------
// Payouts
// ---------------------------------------------------------------------------

// CreatePayout handles POST /payouts
// @ID           createPayout
// @Summary      Create a payout batch
// @Description  Groups unbatched sales of one beneficiary into an open batch
// @Tags         payouts
// @Accept       json
// @Produce      json
// @Param        request body CreatePayoutRequest true "Sales to batch"
// @Success      201 {object} APIResponse[PayoutResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /api/v1/payouts [post]
func (h *CommissionHandler) CreatePayout(c *gin.Context) {
	tenantID, ok := h.tenantOrAbort(c)
	if !ok {
		return
	}

	var req CreatePayoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	ids := make([]uuid.UUID, 0, len(req.SaleIDs))
	for _, s := range req.SaleIDs {
		ids = append(ids, uuid.MustParse(s))
	}

	batch, err := h.service.CreatePayout(c.Request.Context(), tenantID, ids)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, toPayoutResponse(batch))
}

// GetPayout handles GET /payouts/:id
// @ID           getPayout
// @Summary      Get a payout batch
// @Tags         payouts
// @Produce      json
// @Param        id path string true "Payout ID" format(uuid)
// @Success      200 {object} APIResponse[PayoutResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /api/v1/payouts/{id} [get]
func (h *CommissionHandler) GetPayout(c *gin.Context) {
	h.payoutAction(c, func(ctx context.Context, tenantID, id uuid.UUID) (*commission.PayoutBatch, error) {
		return h.service.GetPayout(ctx, tenantID, id)
	})
}

// ApprovePayout handles POST /payouts/:id/approve
// @ID           approvePayout
// @Summary      Approve a payout batch
// @Tags         payouts
// @Accept       json
// @Produce      json
// @Param        id path string true "Payout ID" format(uuid)
// @Success      200 {object} APIResponse[PayoutResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /api/v1/payouts/{id}/approve [post]
func (h *CommissionHandler) ApprovePayout(c *gin.Context) {
	h.payoutAction(c, func(ctx context.Context, tenantID, id uuid.UUID) (*commission.PayoutBatch, error) {
		return h.service.ApprovePayout(ctx, tenantID, id)
	})
}

// PayPayout handles POST /payouts/:id/pay
// @ID           payPayout
// @Summary      Mark a payout batch paid
// @Tags         payouts
// @Accept       json
// @Produce      json
// @Param        id path string true "Payout ID" format(uuid)
// @Param        request body PayPayoutRequest false "Payment reference"
// @Success      200 {object} APIResponse[PayoutResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /api/v1/payouts/{id}/pay [post]
func (h *CommissionHandler) PayPayout(c *gin.Context) {
	var req PayPayoutRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			h.BindError(c, err)
			return
		}
	}
	h.payoutAction(c, func(ctx context.Context, tenantID, id uuid.UUID) (*commission.PayoutBatch, error) {
		return h.service.MarkPayoutPaid(ctx, tenantID, id, req.Reference)
	})
}

// CancelPayout handles POST /payouts/:id/cancel
// @ID           cancelPayout
// @Summary      Cancel a payout batch
// @Description  Cancelling releases the batch sales
// @Tags         payouts
// @Accept       json
// @Produce      json
// @Param        id path string true "Payout ID" format(uuid)
// @Param        request body CancelPayoutRequest false "Cancellation reason"
// @Success      200 {object} APIResponse[PayoutResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /api/v1/payouts/{id}/cancel [post]
func (h *CommissionHandler) CancelPayout(c *gin.Context) {
	var req CancelPayoutRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			h.BindError(c, err)
			return
		}
	}
	h.payoutAction(c, func(ctx context.Context, tenantID, id uuid.UUID) (*commission.PayoutBatch, error) {
		return h.service.CancelPayout(ctx, tenantID, id, req.Reason)
	})
}

func (h *CommissionHandler) payoutAction(c *gin.Context, action func(ctx context.Context, tenantID, id uuid.UUID) (*commission.PayoutBatch, error)) {
	tenantID, ok := h.tenantOrAbort(c)
	if !ok {
		return
	}
	payoutID, ok := parseUUIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid payout ID format")
		return
	}

	batch, err := action(c.Request.Context(), tenantID, payoutID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toPayoutResponse(batch))
}
