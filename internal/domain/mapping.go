package domain

import "time"

// ERP model names. The external_type column of the mapping table holds these.
const (
	ModelLedgerAccount   = "account.account"
	ModelAnalyticAccount = "account.analytic.account"
	ModelAnalyticPlan    = "account.analytic.plan"
	ModelAnalyticLine    = "account.analytic.line"
	ModelPayment         = "account.payment"
	ModelBudget          = "crossovered.budget"
	ModelBudgetLine      = "crossovered.budget.lines"
	ModelLedgerEntry     = "account.move"
	ModelLedgerLine      = "account.move.line"
	ModelJournal         = "account.journal"
	ModelCurrency        = "res.currency"
	ModelCompany         = "res.company"
)

// MappingRecord correlates one local entity with one ERP record.
// Both (LocalType, LocalID) and (ExternalType, ExternalID) are unique.
type MappingRecord struct {
	ID           int64      `json:"id" db:"id"`
	LocalType    EntityType `json:"local_type" db:"local_type"`
	LocalID      int64      `json:"local_id" db:"local_id"`
	ExternalType string     `json:"external_type" db:"external_type"`
	ExternalID   int64      `json:"external_id" db:"external_id"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
}

// Same reports whether r pairs exactly the given sides.
func (r *MappingRecord) Same(localType EntityType, localID int64, externalType string, externalID int64) bool {
	return r.LocalType == localType &&
		r.LocalID == localID &&
		r.ExternalType == externalType &&
		r.ExternalID == externalID
}
