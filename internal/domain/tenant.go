package domain

import "context"

type tenantKey struct{}

// DefaultTenantID is used when a request carries no tenant.
const DefaultTenantID int64 = 1

// WithTenant stores the tenant id in ctx.
func WithTenant(ctx context.Context, tenantID int64) context.Context {
	return context.WithValue(ctx, tenantKey{}, tenantID)
}

// TenantFromContext returns the tenant id stored in ctx, or DefaultTenantID.
func TenantFromContext(ctx context.Context) int64 {
	if id, ok := ctx.Value(tenantKey{}).(int64); ok && id > 0 {
		return id
	}
	return DefaultTenantID
}
