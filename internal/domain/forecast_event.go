package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ForecastStatus is the lifecycle state of a forecast event.
type ForecastStatus string

const (
	ForecastPlanned   ForecastStatus = "PLANNED"
	ForecastRealized  ForecastStatus = "REALIZED"
	ForecastCancelled ForecastStatus = "CANCELLED"
)

// ForecastEvent is an expected future movement on an account.
type ForecastEvent struct {
	ID           int64           `json:"id" db:"id"`
	TenantID     int64           `json:"tenant_id" db:"tenant_id"`
	AccountID    int64           `json:"account_id" db:"account_id"`
	CategoryID   *int64          `json:"category_id,omitempty" db:"category_id"`
	Name         string          `json:"name" db:"name"`
	Type         EntryType       `json:"type" db:"type"`
	Amount       decimal.Decimal `json:"amount" db:"amount"`
	ExpectedDate time.Time       `json:"expected_date" db:"expected_date"`
	Status       ForecastStatus  `json:"status" db:"status"`
	Timestamps
}

func (f *ForecastEvent) EntityType() EntityType { return EntityForecastEvent }
func (f *ForecastEvent) GetID() int64           { return f.ID }
func (f *ForecastEvent) GetTenantID() int64     { return f.TenantID }
func (f *ForecastEvent) sealed()                {}

func (f *ForecastEvent) Assign(id, tenantID int64) {
	f.ID, f.TenantID = id, tenantID
}

func (f *ForecastEvent) Validate() error {
	if err := ValidateName(f.Name); err != nil {
		return err
	}
	if f.AccountID <= 0 {
		return fmt.Errorf("%w: account_id is required", ErrMissingReference)
	}
	if err := ValidateAmount(f.Amount); err != nil {
		return err
	}
	if err := f.Type.Validate(); err != nil {
		return err
	}
	f.Status = ForecastStatus(strings.ToUpper(string(f.Status)))
	if f.Status == "" {
		f.Status = ForecastPlanned
	}
	return nil
}

// SignedAmount is positive for credits and negative for debits.
func (f *ForecastEvent) SignedAmount() decimal.Decimal {
	if f.Type == EntryDebit {
		return f.Amount.Neg()
	}
	return f.Amount
}
