// Package payment adapts Mercado Pago to the integration payment port.
package payment

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/associacaosimplesatitude-debug/projetoananias-sub008/internal/domain/integration"
	"github.com/associacaosimplesatitude-debug/projetoananias-sub008/internal/infrastructure/provider"
)

// MercadoPagoBaseURL is the production API root
const MercadoPagoBaseURL = "https://api.mercadopago.com"

const (
	mpPaymentPath    = "/v1/payments/%s"
	mpPreferencePath = "/checkout/preferences"
)

// MercadoPagoAdapter implements integration.PaymentGateway. The access token
// is a static credential configured on the provider client.
type MercadoPagoAdapter struct {
	client    *provider.Client
	notifyURL string
}

// NewMercadoPagoAdapter creates the adapter; notifyURL is sent with every
// preference so payment notifications reach the webhook.
func NewMercadoPagoAdapter(client *provider.Client, notifyURL string) *MercadoPagoAdapter {
	return &MercadoPagoAdapter{client: client, notifyURL: notifyURL}
}

// GetPayment polls one payment
func (a *MercadoPagoAdapter) GetPayment(ctx context.Context, tenantID uuid.UUID, externalID string) (*integration.RemotePayment, error) {
	if _, err := strconv.ParseInt(externalID, 10, 64); err != nil {
		return nil, fmt.Errorf("%w: payment id %q", integration.ErrMissingExternalID, externalID)
	}

	var p mpPayment
	err := a.client.DoJSON(ctx, &provider.Request{
		TenantID: tenantID,
		Method:   http.MethodGet,
		Path:     fmt.Sprintf(mpPaymentPath, externalID),
	}, &p)
	if provider.IsNotFound(err) {
		return nil, fmt.Errorf("%w: %s", integration.ErrPaymentNotFound, externalID)
	}
	if err != nil {
		return nil, err
	}

	return &integration.RemotePayment{
		ExternalID:        strconv.FormatInt(p.ID, 10),
		ExternalReference: p.ExternalReference,
		ProviderStatus:    p.Status,
		StatusDetail:      p.StatusDetail,
		State:             MapMercadoPagoStatus(p.Status),
		Amount:            p.TransactionAmount,
		PaidAt:            p.DateApproved,
	}, nil
}

// CreatePreference creates a single-item checkout and returns its link
func (a *MercadoPagoAdapter) CreatePreference(ctx context.Context, tenantID uuid.UUID, req integration.PreferenceRequest) (*integration.Preference, error) {
	if req.Quantity <= 0 || !req.UnitPrice.GreaterThan(decimal.Zero) {
		return nil, fmt.Errorf("%w: quantity and unit price must be positive", integration.ErrPlatformRequestFailed)
	}
	notify := req.NotificationURL
	if notify == "" {
		notify = a.notifyURL
	}
	body := mpPreferenceRequest{
		Items: []mpPreferenceItem{{
			Title:      req.Title,
			Quantity:   req.Quantity,
			UnitPrice:  json.Number(req.UnitPrice.StringFixed(2)),
			CurrencyID: "BRL",
		}},
		ExternalReference: req.ExternalReference,
		NotificationURL:   notify,
	}

	var resp mpPreferenceResponse
	if err := a.client.DoJSON(ctx, &provider.Request{
		TenantID: tenantID,
		Method:   http.MethodPost,
		Path:     mpPreferencePath,
		Body:     body,
	}, &resp); err != nil {
		return nil, err
	}
	link := resp.InitPoint
	if link == "" {
		link = resp.SandboxInitPoint
	}
	if resp.ID == "" || link == "" {
		return nil, fmt.Errorf("%w: preference without checkout link", integration.ErrPlatformInvalidResponse)
	}
	return &integration.Preference{ID: resp.ID, InitPoint: link}, nil
}

// MapMercadoPagoStatus maps a payment status to a local state. MP's
// "authorized" is a hold awaiting capture, so it stays processing until the
// payment is approved. Refunds and chargebacks map to rejected; after an
// approval the state machine keeps approved and only the provider status
// records the reversal.
func MapMercadoPagoStatus(status string) integration.SyncState {
	switch strings.ToLower(status) {
	case "pending":
		return integration.SyncStatePending
	case "authorized", "in_process", "in_mediation":
		return integration.SyncStateProcessing
	case "approved":
		return integration.SyncStateApproved
	case "rejected", "cancelled", "refunded", "charged_back":
		return integration.SyncStateRejected
	default:
		return integration.SyncStateError
	}
}

var _ integration.PaymentGateway = (*MercadoPagoAdapter)(nil)
