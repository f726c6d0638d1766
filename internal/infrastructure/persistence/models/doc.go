// Package models contains GORM-specific persistence models that map to database tables.
// These models are separate from domain entities to keep the domain layer pure and free
// from ORM concerns.
//
// Structure:
//   - base.go: BaseModel and TenantModel
//   - pricing.go: client profiles and their category overrides
//   - commission.go: commission configs, sales, payout batches
//   - integration.go: provider tokens and local copies of ERP orders, invoices, payments
//   - messaging.go: outbound message log
package models
