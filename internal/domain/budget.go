package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// BudgetStatus is the lifecycle state of a budget.
type BudgetStatus string

const (
	BudgetDraft  BudgetStatus = "DRAFT"
	BudgetActive BudgetStatus = "ACTIVE"
	BudgetClosed BudgetStatus = "CLOSED"
)

// Budget is a spending plan over a period.
type Budget struct {
	ID          int64        `json:"id" db:"id"`
	TenantID    int64        `json:"tenant_id" db:"tenant_id"`
	Name        string       `json:"name" db:"name"`
	Currency    string       `json:"currency" db:"currency"`
	PeriodStart time.Time    `json:"period_start" db:"period_start"`
	PeriodEnd   time.Time    `json:"period_end" db:"period_end"`
	Status      BudgetStatus `json:"status" db:"status"`
	Timestamps
}

func (b *Budget) EntityType() EntityType { return EntityBudget }
func (b *Budget) GetID() int64           { return b.ID }
func (b *Budget) GetTenantID() int64     { return b.TenantID }
func (b *Budget) sealed()                {}

func (b *Budget) Assign(id, tenantID int64) {
	b.ID, b.TenantID = id, tenantID
}

func (b *Budget) Validate() error {
	if err := ValidateName(b.Name); err != nil {
		return err
	}
	if b.PeriodStart.IsZero() || b.PeriodEnd.Before(b.PeriodStart) {
		return ErrInvalidPeriod
	}
	b.Status = BudgetStatus(strings.ToUpper(string(b.Status)))
	if b.Status == "" {
		b.Status = BudgetDraft
	}
	b.Currency = NormalizeCurrency(b.Currency)
	return ValidateCurrency(b.Currency)
}

// BudgetLine is the planned amount of one category within a budget.
type BudgetLine struct {
	ID            int64           `json:"id" db:"id"`
	TenantID      int64           `json:"tenant_id" db:"tenant_id"`
	BudgetID      int64           `json:"budget_id" db:"budget_id"`
	CategoryID    int64           `json:"category_id" db:"category_id"`
	PlannedAmount decimal.Decimal `json:"planned_amount" db:"planned_amount"`
	Timestamps
}

func (l *BudgetLine) EntityType() EntityType { return EntityBudgetLine }
func (l *BudgetLine) GetID() int64           { return l.ID }
func (l *BudgetLine) GetTenantID() int64     { return l.TenantID }
func (l *BudgetLine) sealed()                {}

func (l *BudgetLine) Assign(id, tenantID int64) {
	l.ID, l.TenantID = id, tenantID
}

func (l *BudgetLine) Validate() error {
	if l.BudgetID <= 0 {
		return fmt.Errorf("%w: budget_id is required", ErrMissingReference)
	}
	if l.CategoryID <= 0 {
		return fmt.Errorf("%w: category_id is required", ErrMissingReference)
	}
	if l.PlannedAmount.IsNegative() {
		return ErrInvalidAmount
	}
	return nil
}
