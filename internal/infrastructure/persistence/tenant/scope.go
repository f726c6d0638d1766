// Package tenant scopes GORM queries to a single tenant.
//
// Usage:
//
//	db.WithContext(ctx).Scopes(tenant.Scope(tenantID)).Find(&sales)
package tenant

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Column is the tenant key on every tenant-owned table
const Column = "tenant_id"

// ErrTenantIDRequired is returned when a query is scoped to the nil tenant
var ErrTenantIDRequired = errors.New("tenant_id is required")

// Scope filters a query by tenant. The nil tenant poisons the statement
// with ErrTenantIDRequired instead of matching every row.
func Scope(tenantID uuid.UUID) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if tenantID == uuid.Nil {
			_ = db.AddError(ErrTenantIDRequired)
			return db
		}
		return db.Where(Column+" = ?", tenantID)
	}
}

// QualifiedScope is Scope for joined queries where the column needs its table
func QualifiedScope(table string, tenantID uuid.UUID) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if tenantID == uuid.Nil {
			_ = db.AddError(ErrTenantIDRequired)
			return db
		}
		return db.Where(table+"."+Column+" = ?", tenantID)
	}
}
