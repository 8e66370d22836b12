package domain

import (
	"fmt"
	"strings"
)

// AccountKind is the primary-store classification of an account.
type AccountKind string

const (
	AccountKindBank       AccountKind = "BANK"
	AccountKindCash       AccountKind = "CASH"
	AccountKindSavings    AccountKind = "SAVINGS"
	AccountKindCreditCard AccountKind = "CREDIT_CARD"
	AccountKindInvestment AccountKind = "INVESTMENT"
	AccountKindLoan       AccountKind = "LOAN"
	AccountKindOther      AccountKind = "OTHER"
)

// Account represents a money account owned by a tenant.
type Account struct {
	ID       int64       `json:"id" db:"id"`
	TenantID int64       `json:"tenant_id" db:"tenant_id"`
	Name     string      `json:"name" db:"name"`
	Kind     AccountKind `json:"kind" db:"kind"`
	Currency string      `json:"currency" db:"currency"`
	Timestamps
}

func (a *Account) EntityType() EntityType { return EntityAccount }
func (a *Account) GetID() int64           { return a.ID }
func (a *Account) GetTenantID() int64     { return a.TenantID }
func (a *Account) sealed()                {}

func (a *Account) Assign(id, tenantID int64) {
	a.ID, a.TenantID = id, tenantID
}

// Validate checks the fields a client may set.
func (a *Account) Validate() error {
	if err := ValidateName(a.Name); err != nil {
		return err
	}
	if a.Kind == "" {
		return fmt.Errorf("%w: kind is required", ErrInvalidEnum)
	}
	a.Kind = AccountKind(strings.ToUpper(string(a.Kind)))
	a.Currency = NormalizeCurrency(a.Currency)
	return ValidateCurrency(a.Currency)
}
