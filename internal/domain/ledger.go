package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// LedgerHeader is the journal entry header sent to the ERP.
type LedgerHeader struct {
	Date      time.Time
	Reference string
	Narration string
	JournalID int64
	CompanyID int64
	Currency  int64
}

// LedgerLine is one side of a journal entry. Exactly one of Debit and Credit
// is non-zero.
type LedgerLine struct {
	AccountID         int64
	AnalyticAccountID *int64
	Name              string
	Debit             decimal.Decimal
	Credit            decimal.Decimal
}

// LedgerEntry is a balanced two-line journal entry.
// Lines[0] is the principal line, Lines[1] the counterpart on the clearing account.
// State is the ERP state the entry should end up in; Post is set when that
// state is posted.
type LedgerEntry struct {
	Header LedgerHeader
	Lines  [2]LedgerLine
	State  string
	Post   bool
}

// Totals returns the debit and credit sums over both lines.
func (e *LedgerEntry) Totals() (debit, credit decimal.Decimal) {
	debit, credit = decimal.Zero, decimal.Zero
	for _, l := range e.Lines {
		debit = debit.Add(l.Debit)
		credit = credit.Add(l.Credit)
	}
	return debit, credit
}

// Balanced reports whether debits equal credits.
func (e *LedgerEntry) Balanced() bool {
	debit, credit := e.Totals()
	return debit.Equal(credit)
}

// Ledger entry states on the ERP side.
const (
	LedgerStateDraft  = "draft"
	LedgerStatePosted = "posted"
	LedgerStateCancel = "cancel"
)

// Ledger entry lifecycle methods invoked through the ERP call primitive.
const (
	MethodPost   = "action_post"
	MethodDraft  = "button_draft"
	MethodCancel = "button_cancel"
)
