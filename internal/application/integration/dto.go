package integration

import (
	"time"

	"github.com/associacaosimplesatitude-debug/projetoananias-sub008/internal/domain/integration"
)

// ---------------------------------------------------------------------------
// Query results
// ---------------------------------------------------------------------------

// OrderList is one page of local order copies
type OrderList struct {
	Orders []integration.ERPOrder `json:"orders"`
	Total  int64                  `json:"total"`
	Offset int                    `json:"offset"`
	Limit  int                    `json:"limit"`
}

// InvoiceDownload is a time-limited link to an archived NF-e XML
type InvoiceDownload struct {
	InvoiceID string    `json:"invoice_id"`
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expires_at"`
}

// ShopifyOrderDetail is an Admin order together with its fulfillments and metafields
type ShopifyOrderDetail struct {
	Order        *integration.RemoteOrder  `json:"order"`
	Fulfillments []integration.Fulfillment `json:"fulfillments"`
	Metafields   []integration.Metafield   `json:"metafields"`
}

// ---------------------------------------------------------------------------
// Commands
// ---------------------------------------------------------------------------

// ConnectInput is the initial token pair obtained by the OAuth consent flow
type ConnectInput struct {
	AccessToken  string `json:"access_token" binding:"required"`
	RefreshToken string `json:"refresh_token" binding:"required"`
	// ExpiresIn is in seconds; zero means the provider default.
	ExpiresIn int `json:"expires_in" binding:"omitempty,min=60"`
}

// Connection describes the stored token without exposing secrets
type Connection struct {
	Provider  integration.Provider `json:"provider"`
	ExpiresAt time.Time            `json:"expires_at"`
}

// WebhookOutcome tells the caller what happened to a delivery
type WebhookOutcome string

const (
	WebhookProcessed WebhookOutcome = "processed"
	WebhookDuplicate WebhookOutcome = "duplicate"
	WebhookIgnored   WebhookOutcome = "ignored"
)
