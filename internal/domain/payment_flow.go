package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// FlowDirection tells whether a payment flow brings money in or out.
type FlowDirection string

const (
	FlowInflow  FlowDirection = "INFLOW"
	FlowOutflow FlowDirection = "OUTFLOW"
)

// FlowFrequency is the recurrence of a payment flow.
type FlowFrequency string

const (
	FrequencyOnce      FlowFrequency = "ONCE"
	FrequencyWeekly    FlowFrequency = "WEEKLY"
	FrequencyMonthly   FlowFrequency = "MONTHLY"
	FrequencyQuarterly FlowFrequency = "QUARTERLY"
	FrequencyYearly    FlowFrequency = "YEARLY"
)

// FlowStatus is the lifecycle state of a payment flow.
type FlowStatus string

const (
	FlowActive    FlowStatus = "ACTIVE"
	FlowPaused    FlowStatus = "PAUSED"
	FlowCompleted FlowStatus = "COMPLETED"
)

// PaymentFlow is a scheduled, possibly recurring, payment on an account.
type PaymentFlow struct {
	ID         int64           `json:"id" db:"id"`
	TenantID   int64           `json:"tenant_id" db:"tenant_id"`
	AccountID  int64           `json:"account_id" db:"account_id"`
	CategoryID *int64          `json:"category_id,omitempty" db:"category_id"`
	Name       string          `json:"name" db:"name"`
	Direction  FlowDirection   `json:"direction" db:"direction"`
	Amount     decimal.Decimal `json:"amount" db:"amount"`
	Currency   string          `json:"currency" db:"currency"`
	Frequency  FlowFrequency   `json:"frequency" db:"frequency"`
	StartDate  time.Time       `json:"start_date" db:"start_date"`
	EndDate    *time.Time      `json:"end_date,omitempty" db:"end_date"`
	Status     FlowStatus      `json:"status" db:"status"`
	Timestamps
}

func (p *PaymentFlow) EntityType() EntityType { return EntityPaymentFlow }
func (p *PaymentFlow) GetID() int64           { return p.ID }
func (p *PaymentFlow) GetTenantID() int64     { return p.TenantID }
func (p *PaymentFlow) sealed()                {}

func (p *PaymentFlow) Assign(id, tenantID int64) {
	p.ID, p.TenantID = id, tenantID
}

func (p *PaymentFlow) Validate() error {
	if err := ValidateName(p.Name); err != nil {
		return err
	}
	if p.AccountID <= 0 {
		return fmt.Errorf("%w: account_id is required", ErrMissingReference)
	}
	if err := ValidateAmount(p.Amount); err != nil {
		return err
	}
	if p.EndDate != nil && p.EndDate.Before(p.StartDate) {
		return ErrInvalidPeriod
	}

	p.Direction = FlowDirection(strings.ToUpper(string(p.Direction)))
	p.Frequency = FlowFrequency(strings.ToUpper(string(p.Frequency)))
	p.Status = FlowStatus(strings.ToUpper(string(p.Status)))
	if p.Status == "" {
		p.Status = FlowActive
	}

	p.Currency = NormalizeCurrency(p.Currency)
	return ValidateCurrency(p.Currency)
}
