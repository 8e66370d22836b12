package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// EntryType is the side of a signed movement.
type EntryType string

const (
	EntryCredit EntryType = "CREDIT"
	EntryDebit  EntryType = "DEBIT"
)

// Validate normalizes casing and rejects unknown sides.
func (t *EntryType) Validate() error {
	*t = EntryType(strings.ToUpper(string(*t)))
	switch *t {
	case EntryCredit, EntryDebit:
		return nil
	default:
		return fmt.Errorf("%w: type must be CREDIT or DEBIT", ErrInvalidEnum)
	}
}

// TransactionStatus is the lifecycle state of a transaction.
type TransactionStatus string

const (
	TransactionPending   TransactionStatus = "PENDING"
	TransactionConfirmed TransactionStatus = "CONFIRMED"
	TransactionCancelled TransactionStatus = "CANCELLED"
)

// Transaction is a single signed money movement on an account.
type Transaction struct {
	ID          int64             `json:"id" db:"id"`
	TenantID    int64             `json:"tenant_id" db:"tenant_id"`
	AccountID   int64             `json:"account_id" db:"account_id"`
	CategoryID  *int64            `json:"category_id,omitempty" db:"category_id"`
	PortfolioID *int64            `json:"portfolio_id,omitempty" db:"portfolio_id"`
	Type        EntryType         `json:"type" db:"type"`
	Amount      decimal.Decimal   `json:"amount" db:"amount"`
	Currency    string            `json:"currency" db:"currency"`
	Date        time.Time         `json:"date" db:"date"`
	Description string            `json:"description" db:"description"`
	Reference   string            `json:"reference" db:"reference"`
	Status      TransactionStatus `json:"status" db:"status"`
	Timestamps
}

func (t *Transaction) EntityType() EntityType { return EntityTransaction }
func (t *Transaction) GetID() int64           { return t.ID }
func (t *Transaction) GetTenantID() int64     { return t.TenantID }
func (t *Transaction) sealed()                {}

func (t *Transaction) Assign(id, tenantID int64) {
	t.ID, t.TenantID = id, tenantID
}

func (t *Transaction) Validate() error {
	if t.AccountID <= 0 {
		return fmt.Errorf("%w: account_id is required", ErrMissingReference)
	}
	if err := ValidateAmount(t.Amount); err != nil {
		return err
	}
	if err := t.Type.Validate(); err != nil {
		return err
	}
	t.Status = TransactionStatus(strings.ToUpper(string(t.Status)))
	if t.Status == "" {
		t.Status = TransactionPending
	}
	if t.Date.IsZero() {
		t.Date = time.Now().UTC()
	}
	t.Currency = NormalizeCurrency(t.Currency)
	return ValidateCurrency(t.Currency)
}

// IsConfirmed reports whether the transaction reached its terminal state.
// Confirmed transactions are posted on the ERP side.
func (t *Transaction) IsConfirmed() bool {
	return t.Status == TransactionConfirmed
}
