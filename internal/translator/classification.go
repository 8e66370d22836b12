package translator

import (
	"fmt"
	"strings"

	"github.com/iho/ledgersync/internal/domain"
)

// ERP account classifications.
const (
	AccountTypeCash         = "asset_cash"
	AccountTypeCurrent      = "asset_current"
	AccountTypeNonCurrent   = "asset_non_current"
	AccountTypeCreditCard   = "liability_credit_card"
	AccountTypeLongTermDebt = "liability_non_current"
	defaultAccountType      = AccountTypeCurrent
	defaultJournalType      = "general"
	paymentJournalType      = "bank"
)

const (
	defaultAnalyticPlan  = "other"
	defaultPaymentType   = "outbound"
	defaultFrequency     = "once"
	defaultBudgetState   = "draft"
	defaultForecastState = "planned"
	defaultMoveState     = domain.LedgerStateDraft

	categoryCodeFormat = "CAT-%05d"
	forecastStateField = "x_forecast_state"
)

var accountTypes = map[domain.AccountKind]string{
	domain.AccountKindBank:       AccountTypeCash,
	domain.AccountKindCash:       AccountTypeCash,
	domain.AccountKindSavings:    AccountTypeCurrent,
	domain.AccountKindCreditCard: AccountTypeCreditCard,
	domain.AccountKindInvestment: AccountTypeNonCurrent,
	domain.AccountKindLoan:       AccountTypeLongTermDebt,
}

var accountCodePrefixes = map[string]string{
	AccountTypeCash:         "101",
	AccountTypeCurrent:      "110",
	AccountTypeNonCurrent:   "150",
	AccountTypeCreditCard:   "205",
	AccountTypeLongTermDebt: "250",
}

var analyticPlans = map[domain.CategoryKind]string{
	domain.CategoryKindIncome:  "income",
	domain.CategoryKindExpense: "expense",
}

var paymentTypes = map[domain.FlowDirection]string{
	domain.FlowInflow:  "inbound",
	domain.FlowOutflow: "outbound",
}

var budgetStates = map[domain.BudgetStatus]string{
	domain.BudgetDraft:  "draft",
	domain.BudgetActive: "validate",
	domain.BudgetClosed: "done",
}

var moveStates = map[domain.TransactionStatus]string{
	domain.TransactionPending:   domain.LedgerStateDraft,
	domain.TransactionConfirmed: domain.LedgerStatePosted,
	domain.TransactionCancelled: domain.LedgerStateCancel,
}

// AccountType maps an account kind to its ERP classification.
// Unknown kinds fall back to the generic current-asset type.
func AccountType(kind domain.AccountKind) string {
	if t, ok := accountTypes[normalize(kind)]; ok {
		return t
	}
	return defaultAccountType
}

// AccountCode builds the deterministic ERP account code of a local account.
func AccountCode(accountType string, localID int64) string {
	prefix, ok := accountCodePrefixes[accountType]
	if !ok {
		prefix = accountCodePrefixes[defaultAccountType]
	}
	return fmt.Sprintf("%s%05d", prefix, localID)
}

// AnalyticPlan maps a category kind to the name of its ERP analytic plan.
func AnalyticPlan(kind domain.CategoryKind) string {
	if p, ok := analyticPlans[normalize(kind)]; ok {
		return p
	}
	return defaultAnalyticPlan
}

// PaymentType maps a flow direction to the ERP payment type.
func PaymentType(d domain.FlowDirection) string {
	if p, ok := paymentTypes[normalize(d)]; ok {
		return p
	}
	return defaultPaymentType
}

// PaymentFrequency lower-cases a frequency, defaulting to a one-off payment.
func PaymentFrequency(f domain.FlowFrequency) string {
	switch normalize(f) {
	case domain.FrequencyOnce, domain.FrequencyWeekly, domain.FrequencyMonthly,
		domain.FrequencyQuarterly, domain.FrequencyYearly:
		return strings.ToLower(string(f))
	}
	return defaultFrequency
}

// BudgetState maps a budget status to the ERP budget state.
func BudgetState(s domain.BudgetStatus) string {
	if st, ok := budgetStates[normalize(s)]; ok {
		return st
	}
	return defaultBudgetState
}

// ForecastState lower-cases a forecast status, defaulting to planned.
func ForecastState(s domain.ForecastStatus) string {
	switch normalize(s) {
	case domain.ForecastPlanned, domain.ForecastRealized, domain.ForecastCancelled:
		return strings.ToLower(string(s))
	}
	return defaultForecastState
}

// MoveState maps a transaction status to the ERP journal entry state.
func MoveState(s domain.TransactionStatus) string {
	if st, ok := moveStates[normalize(s)]; ok {
		return st
	}
	return defaultMoveState
}

func normalize[S ~string](s S) S {
	return S(strings.ToUpper(string(s)))
}
