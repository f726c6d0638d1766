// Package integration contains the Integration bounded context: the external
// systems this back office reconciles with (Bling ERP, Shopify, Mercado Pago).
//
// Key concepts:
//   - ProviderToken / TokenSource: stored OAuth credentials and the port that
//     hands out a valid access token, refreshing it when close to expiry
//   - SyncState: the per-entity state machine shared by orders, invoices and payments
//   - SyncResult / BatchResult: per-item outcome of one bounded sync page
//   - ERPOrder, Invoice, PaymentRecord: local copies upserted by external id
//
// Design Pattern: Ports & Adapters
//   - Ports (interfaces) are defined here in the domain layer
//   - Adapters (implementations) are in the infrastructure layer
package integration
