package ecommerce

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/associacaosimplesatitude-debug/projetoananias-sub008/internal/domain/integration"
)

// Shopify webhook headers
const (
	HeaderHmac      = "X-Shopify-Hmac-Sha256"
	HeaderTopic     = "X-Shopify-Topic"
	HeaderWebhookID = "X-Shopify-Webhook-Id"
	HeaderShop      = "X-Shopify-Shop-Domain"
)

// Webhook topics handled by the service
const (
	TopicOrdersPaid      = "orders/paid"
	TopicOrdersFulfilled = "orders/fulfilled"
)

// VerifyWebhook checks that signature is base64(HMAC-SHA256(body, secret))
// using a constant-time comparison.
func VerifyWebhook(body []byte, signature, secret string) error {
	if secret == "" || signature == "" {
		return integration.ErrInvalidSignature
	}
	given, err := base64.StdEncoding.DecodeString(signature)
	if err != nil {
		return integration.ErrInvalidSignature
	}
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	if !hmac.Equal(mac.Sum(nil), given) {
		return integration.ErrInvalidSignature
	}
	return nil
}

// SignWebhook computes the signature Shopify would send for body
func SignWebhook(body []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

// DecodeWebhookOrder parses an orders/* webhook payload
func DecodeWebhookOrder(body []byte) (*integration.RemoteOrder, error) {
	var o shopifyOrder
	if err := json.Unmarshal(body, &o); err != nil {
		return nil, fmt.Errorf("%w: %v", integration.ErrPlatformInvalidResponse, err)
	}
	if o.ID == 0 {
		return nil, integration.ErrMissingExternalID
	}
	order := convertShopifyOrder(o)
	return &order, nil
}
