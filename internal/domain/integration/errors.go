package integration

import "errors"

// ---------------------------------------------------------------------------
// Integration Errors
// ---------------------------------------------------------------------------

var (
	// Provider errors
	ErrProviderNotConfigured   = errors.New("integration: provider not configured")
	ErrProviderNotConnected    = errors.New("integration: provider not connected for tenant")
	ErrPlatformRequestFailed   = errors.New("integration: platform request failed")
	ErrPlatformInvalidResponse = errors.New("integration: invalid platform response")
	ErrPlatformAuthFailed      = errors.New("integration: platform authentication failed")
	ErrPlatformRateLimited     = errors.New("integration: platform rate limited")
	ErrPlatformUnavailable     = errors.New("integration: platform temporarily unavailable")
	ErrInvalidSignature        = errors.New("integration: invalid webhook signature")

	// Entity errors
	ErrOrderNotFound     = errors.New("integration: order not found")
	ErrInvoiceNotFound   = errors.New("integration: invoice not found")
	ErrPaymentNotFound   = errors.New("integration: payment not found")
	ErrMissingExternalID = errors.New("integration: external id is required")
	ErrArchiveFailed     = errors.New("integration: invoice archive failed")
)
