package ecommerce

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// ---------------------------------------------------------------------------
// Admin REST payloads
// ---------------------------------------------------------------------------

type shopifyOrderEnvelope struct {
	Order shopifyOrder `json:"order"`
}

type shopifyOrder struct {
	ID                int64                  `json:"id"`
	Name              string                 `json:"name"`
	Email             string                 `json:"email"`
	FinancialStatus   string                 `json:"financial_status"`
	FulfillmentStatus *string                `json:"fulfillment_status"`
	CancelledAt       *time.Time             `json:"cancelled_at"`
	TotalPrice        decimal.Decimal        `json:"total_price"`
	CreatedAt         *time.Time             `json:"created_at"`
	Customer          *shopifyCustomer       `json:"customer"`
	BillingAddress    *shopifyAddress        `json:"billing_address"`
	LineItems         []shopifyLineItem      `json:"line_items"`
	NoteAttributes    []shopifyNoteAttribute `json:"note_attributes"`
}

type shopifyCustomer struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
}

type shopifyAddress struct {
	Name    string `json:"name"`
	Company string `json:"company"`
	Phone   string `json:"phone"`
}

type shopifyLineItem struct {
	SKU      string          `json:"sku"`
	Title    string          `json:"title"`
	Quantity int             `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
}

type shopifyNoteAttribute struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type shopifyFulfillmentsEnvelope struct {
	Fulfillments []struct {
		ID              int64  `json:"id"`
		Status          string `json:"status"`
		TrackingCompany string `json:"tracking_company"`
		TrackingNumber  string `json:"tracking_number"`
		TrackingURL     string `json:"tracking_url"`
	} `json:"fulfillments"`
}

type shopifyMetafieldsEnvelope struct {
	Metafields []struct {
		Namespace string          `json:"namespace"`
		Key       string          `json:"key"`
		Value     json.RawMessage `json:"value"`
		Type      string          `json:"type"`
	} `json:"metafields"`
}

// ---------------------------------------------------------------------------
// Storefront GraphQL payloads
// ---------------------------------------------------------------------------

type graphQLRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

type graphQLError struct {
	Message string `json:"message"`
}

type productsResponse struct {
	Data struct {
		Products struct {
			PageInfo struct {
				HasNextPage bool   `json:"hasNextPage"`
				EndCursor   string `json:"endCursor"`
			} `json:"pageInfo"`
			Edges []struct {
				Node struct {
					ID               string `json:"id"`
					Handle           string `json:"handle"`
					Title            string `json:"title"`
					AvailableForSale bool   `json:"availableForSale"`
					Variants         struct {
						Edges []struct {
							Node struct {
								ID    string `json:"id"`
								Price struct {
									Amount decimal.Decimal `json:"amount"`
								} `json:"price"`
							} `json:"node"`
						} `json:"edges"`
					} `json:"variants"`
				} `json:"node"`
			} `json:"edges"`
		} `json:"products"`
	} `json:"data"`
	Errors []graphQLError `json:"errors"`
}

type cartCreateResponse struct {
	Data struct {
		CartCreate struct {
			Cart *struct {
				ID          string `json:"id"`
				CheckoutURL string `json:"checkoutUrl"`
			} `json:"cart"`
			UserErrors []struct {
				Field   []string `json:"field"`
				Message string   `json:"message"`
			} `json:"userErrors"`
		} `json:"cartCreate"`
	} `json:"data"`
	Errors []graphQLError `json:"errors"`
}

const productsQuery = `query Products($first: Int!, $after: String) {
  products(first: $first, after: $after) {
    pageInfo { hasNextPage endCursor }
    edges {
      node {
        id handle title availableForSale
        variants(first: 1) { edges { node { id price { amount } } } }
      }
    }
  }
}`

const cartCreateMutation = `mutation CartCreate($input: CartInput!) {
  cartCreate(input: $input) {
    cart { id checkoutUrl }
    userErrors { field message }
  }
}`
