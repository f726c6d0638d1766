package handler

import (
	"errors"
	"net/http"

	"github.com/associacaosimplesatitude-debug/projetoananias-sub008/internal/domain/commission"
	"github.com/associacaosimplesatitude-debug/projetoananias-sub008/internal/domain/integration"
	"github.com/associacaosimplesatitude-debug/projetoananias-sub008/internal/domain/messaging"
	"github.com/associacaosimplesatitude-debug/projetoananias-sub008/internal/domain/shared"
	"github.com/associacaosimplesatitude-debug/projetoananias-sub008/internal/interfaces/http/dto"
	"github.com/associacaosimplesatitude-debug/projetoananias-sub008/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

var errMissingTenant = errors.New("tenant not found in token")

// BaseHandler provides common handler utilities
type BaseHandler struct{}

// getRequestID extracts the request ID from the context
func getRequestID(c *gin.Context) string {
	if id := c.GetString(middleware.RequestIDContextKey); id != "" {
		return id
	}
	return c.GetHeader(middleware.RequestIDKey)
}

// getTenantID extracts the tenant from JWT claims. There is no header
// fallback: every authenticated route is tenant scoped.
func getTenantID(c *gin.Context) (uuid.UUID, error) {
	tenantIDStr := middleware.GetJWTTenantID(c)
	if tenantIDStr == "" {
		return uuid.Nil, errMissingTenant
	}
	return uuid.Parse(tenantIDStr)
}

// parseUUIDParam reads a path parameter as a UUID
func parseUUIDParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

// Success sends a success response
func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

// SuccessWithMeta sends a success response with pagination meta
func (h *BaseHandler) SuccessWithMeta(c *gin.Context, data any, total int64, offset, limit int) {
	c.JSON(http.StatusOK, dto.NewSuccessResponseWithMeta(data, total, offset, limit))
}

// Created sends a 201 created response
func (h *BaseHandler) Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, dto.NewSuccessResponse(data))
}

// Error sends an error response with the appropriate status code
func (h *BaseHandler) Error(c *gin.Context, statusCode int, code, message string) {
	c.JSON(statusCode, dto.NewErrorResponseWithRequestID(code, message, getRequestID(c)))
}

// BadRequest sends a 400 bad request response
func (h *BaseHandler) BadRequest(c *gin.Context, message string) {
	h.Error(c, http.StatusBadRequest, dto.ErrCodeBadRequest, message)
}

// Unauthorized sends a 401 unauthorized response
func (h *BaseHandler) Unauthorized(c *gin.Context, message string) {
	h.Error(c, http.StatusUnauthorized, dto.ErrCodeUnauthorized, message)
}

// InternalError sends a 500 internal server error response
func (h *BaseHandler) InternalError(c *gin.Context, message string) {
	h.Error(c, http.StatusInternalServerError, dto.ErrCodeInternal, message)
}

// BindError answers a failed ShouldBind* call, listing field errors when the
// validator produced them
func (h *BaseHandler) BindError(c *gin.Context, err error) {
	middleware.HandleValidationError(c, err)
}

// tenantOrAbort resolves the caller's tenant and answers 401 when it is missing
func (h *BaseHandler) tenantOrAbort(c *gin.Context) (uuid.UUID, bool) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Tenant not found in token")
		return uuid.Nil, false
	}
	return tenantID, true
}

// HandleError converts service errors into HTTP responses. Domain errors
// carry their own code; provider and validation sentinels are mapped here.
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}

	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		code := dto.NormalizeErrorCode(domainErr.Code)
		h.Error(c, dto.GetHTTPStatus(code), code, domainErr.Message)
		return
	}

	if code, ok := sentinelCode(err); ok {
		h.Error(c, dto.GetHTTPStatus(code), code, err.Error())
		return
	}

	h.InternalError(c, "An unexpected error occurred")
}

type sentinelMapping struct {
	errs []error
	code string
}

var sentinelMappings = []sentinelMapping{
	{[]error{integration.ErrInvalidSignature}, dto.ErrCodeInvalidSignature},
	{[]error{integration.ErrProviderNotConfigured, messaging.ErrSenderUnavailable}, dto.ErrCodeProviderNotConfigured},
	{[]error{integration.ErrProviderNotConnected}, dto.ErrCodeProviderNotConnected},
	{[]error{integration.ErrPlatformRateLimited, integration.ErrPlatformUnavailable}, dto.ErrCodeProviderUnavailable},
	{[]error{
		integration.ErrPlatformRequestFailed,
		integration.ErrPlatformInvalidResponse,
		integration.ErrPlatformAuthFailed,
		integration.ErrArchiveFailed,
	}, dto.ErrCodeProviderFailed},
	{[]error{
		integration.ErrOrderNotFound,
		integration.ErrInvoiceNotFound,
		integration.ErrPaymentNotFound,
	}, dto.ErrCodeNotFound},
	{[]error{
		integration.ErrMissingExternalID,
		messaging.ErrInvalidRecipient,
		commission.ErrInvalidQuantity,
		commission.ErrInvalidUnitPrice,
		commission.ErrInvalidPercent,
		commission.ErrInvalidKind,
		commission.ErrMissingBeneficiary,
		commission.ErrMissingProduct,
		commission.ErrEmptyPayout,
		commission.ErrMixedBeneficiaries,
	}, dto.ErrCodeInvalidInput},
}

func sentinelCode(err error) (string, bool) {
	for _, m := range sentinelMappings {
		for _, target := range m.errs {
			if errors.Is(err, target) {
				return m.code, true
			}
		}
	}
	return "", false
}
