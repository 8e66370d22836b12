package translator

import (
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/iho/ledgersync/internal/domain"
)

// Odoo one2many command codes.
const (
	lineCommandCreate = 0
	lineCommandUpdate = 1
)

// BuildEntry turns a transaction into a balanced two-line journal entry.
// The principal line sits on the transaction account, the counterpart on the
// clearing account with debit and credit swapped.
//
// The amount must be positive; callers validate it. A non-positive amount is
// a programming error and panics.
func BuildEntry(t *domain.Transaction, c Context) (*domain.LedgerEntry, error) {
	if !t.Amount.IsPositive() {
		panic(fmt.Errorf("%w: transaction %d has non-positive amount %s",
			domain.ErrPreconditionViolation, t.ID, t.Amount))
	}

	accountID, err := c.requireRef(domain.EntityAccount, t.AccountID)
	if err != nil {
		return nil, err
	}

	var analytic *int64
	if t.CategoryID != nil {
		if id, ok := c.Ref(domain.EntityCategory, *t.CategoryID); ok {
			analytic = &id
		}
	}

	debit, credit := decimal.Zero, decimal.Zero
	if t.Type == domain.EntryDebit {
		debit = t.Amount
	} else {
		credit = t.Amount
	}

	label := t.Description
	if label == "" {
		label = t.Reference
	}

	return &domain.LedgerEntry{
		Header: domain.LedgerHeader{
			Date:      t.Date,
			Reference: t.Reference,
			Narration: t.Description,
			JournalID: c.Journal.ID,
			CompanyID: c.Company.ID,
			Currency:  c.Currency.ID,
		},
		Lines: [2]domain.LedgerLine{
			{
				AccountID:         accountID,
				AnalyticAccountID: analytic,
				Name:              label,
				Debit:             debit,
				Credit:            credit,
			},
			{
				AccountID: c.Clearing.ID,
				Name:      label,
				Debit:     credit,
				Credit:    debit,
			},
		},
		State: MoveState(t.Status),
		Post:  t.IsConfirmed(),
	}, nil
}

// EntryValues renders an entry as a single account.move create payload.
func EntryValues(e *domain.LedgerEntry) Values {
	v := HeaderValues(e)
	lines := make([]any, 0, len(e.Lines))
	for _, l := range e.Lines {
		lines = append(lines, []any{lineCommandCreate, 0, LineValues(l)})
	}
	v["line_ids"] = lines
	return v
}

// HeaderValues renders the account.move header fields.
func HeaderValues(e *domain.LedgerEntry) Values {
	return Values{
		"date":        formatDate(e.Header.Date),
		"ref":         e.Header.Reference,
		"narration":   e.Header.Narration,
		"journal_id":  e.Header.JournalID,
		"company_id":  e.Header.CompanyID,
		"currency_id": e.Header.Currency,
		"move_type":   "entry",
	}
}

// LineValues renders one account.move.line.
func LineValues(l domain.LedgerLine) Values {
	v := Values{
		"account_id": l.AccountID,
		"name":       l.Name,
		"debit":      l.Debit,
		"credit":     l.Credit,
	}
	if l.AnalyticAccountID != nil {
		v["analytic_distribution"] = map[string]any{
			strconv.FormatInt(*l.AnalyticAccountID, 10): 100,
		}
	}
	return v
}

// EntryChanges holds what differs between two versions of an entry.
type EntryChanges struct {
	Header Values
	Lines  [2]Values
}

// Empty reports whether nothing changed.
func (c EntryChanges) Empty() bool {
	return len(c.Header) == 0 && len(c.Lines[0]) == 0 && len(c.Lines[1]) == 0
}

// LineCommands builds update commands for the changed lines. lineIDs holds
// the ERP ids of the principal and counterpart lines, in that order.
func (c EntryChanges) LineCommands(lineIDs [2]int64) []any {
	var cmds []any
	for i, vals := range c.Lines {
		if len(vals) == 0 {
			continue
		}
		cmds = append(cmds, []any{lineCommandUpdate, lineIDs[i], vals})
	}
	return cmds
}

// DiffEntry compares two entries field by field.
func DiffEntry(before, after *domain.LedgerEntry) EntryChanges {
	changes := EntryChanges{Header: Diff(HeaderValues(before), HeaderValues(after))}
	for i := range after.Lines {
		changes.Lines[i] = Diff(LineValues(before.Lines[i]), LineValues(after.Lines[i]))
	}
	return changes
}
