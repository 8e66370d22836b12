package domain

import (
	"fmt"
	"time"
)

// EntityType names a primary-store entity kind. It doubles as the local_type
// column of the mapping table.
type EntityType string

// Entity types owned by the primary store.
const (
	EntityAccount       EntityType = "Account"
	EntityCategory      EntityType = "Category"
	EntityPortfolio     EntityType = "Portfolio"
	EntityPaymentFlow   EntityType = "PaymentFlow"
	EntityBudget        EntityType = "Budget"
	EntityBudgetLine    EntityType = "BudgetLine"
	EntityForecastEvent EntityType = "ForecastEvent"
	EntityTransaction   EntityType = "Transaction"

	// EntityCompany only exists in the mapping table (tenant -> ERP company).
	EntityCompany EntityType = "Company"
)

// EntityTypes lists every synchronized entity type in dependency order.
var EntityTypes = []EntityType{
	EntityAccount,
	EntityCategory,
	EntityPortfolio,
	EntityPaymentFlow,
	EntityBudget,
	EntityBudgetLine,
	EntityForecastEvent,
	EntityTransaction,
}

// IsValid reports whether t is a known local type.
func (t EntityType) IsValid() bool {
	if t == EntityCompany {
		return true
	}
	for _, known := range EntityTypes {
		if t == known {
			return true
		}
	}
	return false
}

// Entity is the closed set of domain entities mirrored to the ERP.
// Only types declared in this package implement it.
type Entity interface {
	EntityType() EntityType
	GetID() int64
	GetTenantID() int64
	Assign(id, tenantID int64)
	Times() *Timestamps
	Validate() error

	sealed()
}

// EntityKey identifies one local entity.
type EntityKey struct {
	Type EntityType
	ID   int64
}

// KeyOf returns the key of e.
func KeyOf(e Entity) EntityKey {
	return EntityKey{Type: e.EntityType(), ID: e.GetID()}
}

func (k EntityKey) String() string {
	return fmt.Sprintf("%s:%d", k.Type, k.ID)
}

// Timestamps is embedded by every entity.
type Timestamps struct {
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Times exposes the embedded timestamps of an entity.
func (t *Timestamps) Times() *Timestamps { return t }

// Touch sets both timestamps on create, or UpdatedAt only afterwards.
func (t *Timestamps) Touch(now time.Time) {
	if t.CreatedAt.IsZero() {
		t.CreatedAt = now
	}
	t.UpdatedAt = now
}
