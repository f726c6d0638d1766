// Package provider holds the pieces every outbound REST adapter shares: the
// per-tenant OAuth token manager and an HTTP client that retries, paces and
// traces calls to Bling, Shopify and Mercado Pago.
package provider
