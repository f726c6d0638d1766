package handler

import (
	"context"

	"github.com/associacaosimplesatitude-debug/projetoananias-sub008/internal/domain/integration"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// StorefrontAPI is the buyer-facing catalogue and cart
type StorefrontAPI interface {
	ListProducts(ctx context.Context, first int, after string) (*integration.ProductPage, error)
	CreateCart(ctx context.Context, lines []integration.CartLine) (*integration.Cart, error)
}

// StorefrontHandler serves storefront products and carts
type StorefrontHandler struct {
	BaseHandler
	storefront StorefrontAPI
}

// NewStorefrontHandler creates a new StorefrontHandler
func NewStorefrontHandler(storefront StorefrontAPI) *StorefrontHandler {
	return &StorefrontHandler{storefront: storefront}
}

// ListProductsQuery is the query of GET /storefront/products
type ListProductsQuery struct {
	First int    `form:"first" binding:"omitempty,min=1,max=250"`
	After string `form:"after"`
}

// CartLineRequest is one variant to add to a cart
type CartLineRequest struct {
	VariantID string `json:"variant_id" binding:"required"`
	Quantity  int    `json:"quantity" binding:"required,min=1"`
}

// CreateCartRequest is the body of POST /storefront/cart
type CreateCartRequest struct {
	Lines []CartLineRequest `json:"lines" binding:"required,min=1,dive"`
}

// StorefrontProductResponse is the JSON view of a storefront product
type StorefrontProductResponse struct {
	ID        string          `json:"id"`
	Handle    string          `json:"handle"`
	Title     string          `json:"title"`
	VariantID string          `json:"variant_id"`
	Price     decimal.Decimal `json:"price"`
	Available bool            `json:"available"`
}

// ProductPageResponse is one cursor page of products
type ProductPageResponse struct {
	Products  []StorefrontProductResponse `json:"products"`
	EndCursor string                      `json:"end_cursor,omitempty"`
	HasMore   bool                        `json:"has_more"`
}

// CartResponse is the JSON view of a created cart
type CartResponse struct {
	ID          string `json:"id"`
	CheckoutURL string `json:"checkout_url"`
}

// ListProducts handles GET /storefront/products
// @ID           listStorefrontProducts
// @Summary      List storefront products
// @Tags         storefront
// @Produce      json
// @Param        first query int false "Page size" maximum(250)
// @Param        after query string false "Cursor"
// @Success      200 {object} APIResponse[ProductPageResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      502 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /api/v1/storefront/products [get]
func (h *StorefrontHandler) ListProducts(c *gin.Context) {
	var q ListProductsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.BindError(c, err)
		return
	}

	page, err := h.storefront.ListProducts(c.Request.Context(), q.First, q.After)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	resp := ProductPageResponse{
		Products:  make([]StorefrontProductResponse, 0, len(page.Products)),
		EndCursor: page.EndCursor,
		HasMore:   page.HasMore,
	}
	for _, p := range page.Products {
		resp.Products = append(resp.Products, StorefrontProductResponse(p))
	}
	h.Success(c, resp)
}

// CreateCart handles POST /storefront/cart
// @ID           createStorefrontCart
// @Summary      Create a storefront cart
// @Tags         storefront
// @Accept       json
// @Produce      json
// @Param        request body CreateCartRequest true "Cart lines"
// @Success      201 {object} APIResponse[CartResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Failure      502 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /api/v1/storefront/cart [post]
func (h *StorefrontHandler) CreateCart(c *gin.Context) {
	var req CreateCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	lines := make([]integration.CartLine, 0, len(req.Lines))
	for _, l := range req.Lines {
		lines = append(lines, integration.CartLine{VariantID: l.VariantID, Quantity: l.Quantity})
	}

	cart, err := h.storefront.CreateCart(c.Request.Context(), lines)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, CartResponse{ID: cart.ID, CheckoutURL: cart.CheckoutURL})
}
