package domain

import "strings"

// CategoryKind separates income from expense categories.
type CategoryKind string

const (
	CategoryKindIncome   CategoryKind = "INCOME"
	CategoryKindExpense  CategoryKind = "EXPENSE"
	CategoryKindTransfer CategoryKind = "TRANSFER"
)

// Category groups transactions for reporting and budgeting.
type Category struct {
	ID       int64        `json:"id" db:"id"`
	TenantID int64        `json:"tenant_id" db:"tenant_id"`
	Name     string       `json:"name" db:"name"`
	Kind     CategoryKind `json:"kind" db:"kind"`
	ParentID *int64       `json:"parent_id,omitempty" db:"parent_id"`
	Timestamps
}

func (c *Category) EntityType() EntityType { return EntityCategory }
func (c *Category) GetID() int64           { return c.ID }
func (c *Category) GetTenantID() int64     { return c.TenantID }
func (c *Category) sealed()                {}

func (c *Category) Assign(id, tenantID int64) {
	c.ID, c.TenantID = id, tenantID
}

func (c *Category) Validate() error {
	c.Kind = CategoryKind(strings.ToUpper(string(c.Kind)))
	if c.Kind == "" {
		c.Kind = CategoryKindExpense
	}
	return ValidateName(c.Name)
}
