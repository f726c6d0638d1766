package handler

import (
	"context"
	"time"

	pricingapp "github.com/associacaosimplesatitude-debug/projetoananias-sub008/internal/application/pricing"
	"github.com/associacaosimplesatitude-debug/projetoananias-sub008/internal/domain/pricing"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PricingService is the quote and client profile API used by PricingHandler
type PricingService interface {
	Quote(ctx context.Context, tenantID, clientID uuid.UUID, items []pricing.LineItem) (*pricingapp.QuoteResult, error)
	QuoteAnonymous(ctx context.Context, items []pricing.LineItem, profile pricing.ClientProfile) (*pricingapp.QuoteResult, error)
	Classify(title string) pricing.Category
	GetProfile(ctx context.Context, tenantID, clientID uuid.UUID) (*pricing.ClientProfile, error)
	ListProfiles(ctx context.Context, tenantID uuid.UUID) ([]pricing.ClientProfile, error)
	SaveProfile(ctx context.Context, tenantID, clientID uuid.UUID, in pricingapp.ProfileInput) (*pricing.ClientProfile, error)
	SetCategoryDiscounts(ctx context.Context, tenantID, clientID uuid.UUID, overrides map[pricing.Category]decimal.Decimal) (*pricing.ClientProfile, error)
}

// PricingHandler serves discount quotes and client discount profiles
type PricingHandler struct {
	BaseHandler
	service PricingService
}

// NewPricingHandler creates a new PricingHandler
func NewPricingHandler(service PricingService) *PricingHandler {
	return &PricingHandler{service: service}
}

// ---------------------------------------------------------------------------
// Request / response bodies
// ---------------------------------------------------------------------------

// QuoteItemRequest is one cart line
type QuoteItemRequest struct {
	ProductID string          `json:"product_id"`
	Title     string          `json:"title" binding:"required"`
	UnitPrice decimal.Decimal `json:"unit_price" binding:"gte=0"`
	Quantity  int             `json:"quantity" binding:"required,min=1"`
	Category  string          `json:"category"`
}

// QuoteProfileRequest describes a prospective client that has no stored profile
type QuoteProfileRequest struct {
	Type               string                     `json:"type"`
	OnboardingComplete bool                       `json:"onboarding_complete"`
	SellerDiscountPct  decimal.Decimal            `json:"seller_discount_pct" binding:"gte=0,lte=100"`
	CategoryDiscounts  map[string]decimal.Decimal `json:"category_discounts"`
}

// QuoteRequest is the body of POST /pricing/quote
type QuoteRequest struct {
	ClientID string               `json:"client_id" binding:"omitempty,uuid"`
	Profile  *QuoteProfileRequest `json:"profile"`
	Items    []QuoteItemRequest   `json:"items" binding:"required,min=1,dive"`
}

// ClassifyResponse is the body returned by GET /pricing/classify
type ClassifyResponse struct {
	Title    string           `json:"title"`
	Category pricing.Category `json:"category"`
}

// ProfileRequest is the body of PUT /clients/:id/profile
type ProfileRequest struct {
	Name               string          `json:"name" binding:"required,max=200"`
	Type               string          `json:"type" binding:"required"`
	OnboardingComplete bool            `json:"onboarding_complete"`
	SellerDiscountPct  decimal.Decimal `json:"seller_discount_pct" binding:"gte=0,lte=100"`
}

// CategoryDiscountsRequest is the body of PUT /clients/:id/category-discounts
type CategoryDiscountsRequest struct {
	Discounts map[string]decimal.Decimal `json:"discounts" binding:"required,dive,gte=0,lte=100"`
}

// ProfileResponse is the JSON view of a client profile
type ProfileResponse struct {
	ID                 uuid.UUID                  `json:"id"`
	Name               string                     `json:"name"`
	Type               pricing.ClientType         `json:"type"`
	OnboardingComplete bool                       `json:"onboarding_complete"`
	SellerDiscountPct  decimal.Decimal            `json:"seller_discount_pct" binding:"gte=0,lte=100"`
	CategoryDiscounts  map[string]decimal.Decimal `json:"category_discounts"`
	UpdatedAt          time.Time                  `json:"updated_at"`
}

func toProfileResponse(p *pricing.ClientProfile) ProfileResponse {
	overrides := make(map[string]decimal.Decimal, len(p.CategoryOverrides))
	for cat, pct := range p.CategoryOverrides {
		overrides[cat.String()] = pct
	}
	return ProfileResponse{
		ID:                 p.ID,
		Name:               p.Name,
		Type:               p.Type,
		OnboardingComplete: p.OnboardingComplete,
		SellerDiscountPct:  p.SellerDiscountPct,
		CategoryDiscounts:  overrides,
		UpdatedAt:          p.UpdatedAt,
	}
}

func toLineItems(reqs []QuoteItemRequest) []pricing.LineItem {
	items := make([]pricing.LineItem, 0, len(reqs))
	for _, r := range reqs {
		items = append(items, pricing.LineItem{
			ProductID: r.ProductID,
			Title:     r.Title,
			UnitPrice: r.UnitPrice,
			Quantity:  r.Quantity,
			Category:  pricing.Category(r.Category),
		})
	}
	return items
}

func toCategoryMap(in map[string]decimal.Decimal) (map[pricing.Category]decimal.Decimal, bool) {
	out := make(map[pricing.Category]decimal.Decimal, len(in))
	for k, v := range in {
		cat := pricing.Category(k)
		if !cat.IsValid() {
			return nil, false
		}
		out[cat] = v
	}
	return out, true
}

// ---------------------------------------------------------------------------
// Handlers
// ---------------------------------------------------------------------------

// Quote handles POST /pricing/quote. A stored client is used when client_id
// is given; otherwise the inline profile (or none) decides the discount.
// @ID           quotePricing
// @Summary      Quote a cart
// @Description  Resolves the discount policy for a stored client or an inline profile
// @Tags         pricing
// @Accept       json
// @Produce      json
// @Param        request body QuoteRequest true "Cart and client"
// @Success      200 {object} APIResponse[pricingapp.QuoteResult]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /api/v1/pricing/quote [post]
func (h *PricingHandler) Quote(c *gin.Context) {
	tenantID, ok := h.tenantOrAbort(c)
	if !ok {
		return
	}

	var req QuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	for _, it := range req.Items {
		if it.UnitPrice.IsNegative() {
			h.BadRequest(c, "unit_price cannot be negative")
			return
		}
	}
	items := toLineItems(req.Items)

	var (
		result *pricingapp.QuoteResult
		err    error
	)
	if req.ClientID != "" {
		result, err = h.service.Quote(c.Request.Context(), tenantID, uuid.MustParse(req.ClientID), items)
	} else {
		profile := pricing.ClientProfile{Type: pricing.ClientTypeOther}
		if p := req.Profile; p != nil {
			overrides, valid := toCategoryMap(p.CategoryDiscounts)
			if !valid {
				h.BadRequest(c, "unknown category in category_discounts")
				return
			}
			profile.Type = pricing.ParseClientType(p.Type)
			profile.OnboardingComplete = p.OnboardingComplete
			profile.SellerDiscountPct = p.SellerDiscountPct
			profile.CategoryOverrides = overrides
		}
		result, err = h.service.QuoteAnonymous(c.Request.Context(), items, profile)
	}
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// Classify handles GET /pricing/classify?title=
// @ID           classifyPricing
// @Summary      Classify a product title
// @Description  Maps a product title to its discount category
// @Tags         pricing
// @Produce      json
// @Param        title query string true "Product title"
// @Success      200 {object} APIResponse[ClassifyResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /api/v1/pricing/classify [get]
func (h *PricingHandler) Classify(c *gin.Context) {
	title := c.Query("title")
	if title == "" {
		h.BadRequest(c, "title is required")
		return
	}
	h.Success(c, ClassifyResponse{Title: title, Category: h.service.Classify(title)})
}

// ListProfiles handles GET /clients
// @ID           listClientProfiles
// @Summary      List client profiles
// @Tags         clients
// @Produce      json
// @Success      200 {object} APIResponse[[]ProfileResponse]
// @Failure      401 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /api/v1/clients [get]
func (h *PricingHandler) ListProfiles(c *gin.Context) {
	tenantID, ok := h.tenantOrAbort(c)
	if !ok {
		return
	}

	profiles, err := h.service.ListProfiles(c.Request.Context(), tenantID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	out := make([]ProfileResponse, 0, len(profiles))
	for i := range profiles {
		out = append(out, toProfileResponse(&profiles[i]))
	}
	h.Success(c, out)
}

// GetProfile handles GET /clients/:id/profile
// @ID           getClientProfile
// @Summary      Get a client profile
// @Tags         clients
// @Produce      json
// @Param        id path string true "Client ID" format(uuid)
// @Success      200 {object} APIResponse[ProfileResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /api/v1/clients/{id}/profile [get]
func (h *PricingHandler) GetProfile(c *gin.Context) {
	tenantID, ok := h.tenantOrAbort(c)
	if !ok {
		return
	}
	clientID, ok := parseUUIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid client ID format")
		return
	}

	profile, err := h.service.GetProfile(c.Request.Context(), tenantID, clientID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toProfileResponse(profile))
}

// SaveProfile handles PUT /clients/:id/profile
// @ID           saveClientProfile
// @Summary      Create or replace a client profile
// @Tags         clients
// @Accept       json
// @Produce      json
// @Param        id path string true "Client ID" format(uuid)
// @Param        request body ProfileRequest true "Profile"
// @Success      200 {object} APIResponse[ProfileResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /api/v1/clients/{id}/profile [put]
func (h *PricingHandler) SaveProfile(c *gin.Context) {
	tenantID, ok := h.tenantOrAbort(c)
	if !ok {
		return
	}
	clientID, ok := parseUUIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid client ID format")
		return
	}

	var req ProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	profile, err := h.service.SaveProfile(c.Request.Context(), tenantID, clientID, pricingapp.ProfileInput{
		Name:               req.Name,
		Type:               req.Type,
		OnboardingComplete: req.OnboardingComplete,
		SellerDiscountPct:  req.SellerDiscountPct,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toProfileResponse(profile))
}

// SetCategoryDiscounts handles PUT /clients/:id/category-discounts
// @ID           setClientCategoryDiscounts
// @Summary      Replace per-category discounts
// @Tags         clients
// @Accept       json
// @Produce      json
// @Param        id path string true "Client ID" format(uuid)
// @Param        request body CategoryDiscountsRequest true "Category overrides"
// @Success      200 {object} APIResponse[ProfileResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /api/v1/clients/{id}/category-discounts [put]
func (h *PricingHandler) SetCategoryDiscounts(c *gin.Context) {
	tenantID, ok := h.tenantOrAbort(c)
	if !ok {
		return
	}
	clientID, ok := parseUUIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid client ID format")
		return
	}

	var req CategoryDiscountsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	overrides, valid := toCategoryMap(req.Discounts)
	if !valid {
		h.BadRequest(c, "unknown category in discounts")
		return
	}

	profile, err := h.service.SetCategoryDiscounts(c.Request.Context(), tenantID, clientID, overrides)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toProfileResponse(profile))
}
