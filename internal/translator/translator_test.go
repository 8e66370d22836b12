package translator

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/ledgersync/internal/domain"
)

func testContext() Context {
	c := NewContext(domain.Resolved(7))
	c.Currency = domain.Resolved(3)
	c.Journal = domain.Resolved(9)
	c.Clearing = domain.Resolved(499)
	c.Plan = domain.Resolved(11)
	return c
}

func TestAccountType(t *testing.T) {
	tests := []struct {
		kind domain.AccountKind
		want string
	}{
		{domain.AccountKindBank, AccountTypeCash},
		{"bank", AccountTypeCash},
		{domain.AccountKindCash, AccountTypeCash},
		{domain.AccountKindSavings, AccountTypeCurrent},
		{domain.AccountKindCreditCard, AccountTypeCreditCard},
		{domain.AccountKindInvestment, AccountTypeNonCurrent},
		{domain.AccountKindLoan, AccountTypeLongTermDebt},
		{domain.AccountKindOther, AccountTypeCurrent},
		{"CRYPTO_WALLET", AccountTypeCurrent},
		{"", AccountTypeCurrent},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			if got := AccountType(tt.kind); got != tt.want {
				t.Errorf("AccountType(%q) = %q, want %q", tt.kind, got, tt.want)
			}
		})
	}
}

func TestAccountCode(t *testing.T) {
	assert.Equal(t, "10100042", AccountCode(AccountTypeCash, 42))
	assert.Equal(t, "25012345", AccountCode(AccountTypeLongTermDebt, 12345))
	assert.Equal(t, "110123456", AccountCode("unknown", 123456))
	assert.Equal(t, AccountCode(AccountTypeCash, 42), AccountCode(AccountTypeCash, 42))
}

func TestClassificationDefaults(t *testing.T) {
	assert.Equal(t, "income", AnalyticPlan("income"))
	assert.Equal(t, "other", AnalyticPlan(domain.CategoryKindTransfer))
	assert.Equal(t, "inbound", PaymentType(domain.FlowInflow))
	assert.Equal(t, "outbound", PaymentType("SIDEWAYS"))
	assert.Equal(t, "monthly", PaymentFrequency(domain.FrequencyMonthly))
	assert.Equal(t, "once", PaymentFrequency("FORTNIGHTLY"))
	assert.Equal(t, "validate", BudgetState(domain.BudgetActive))
	assert.Equal(t, "done", BudgetState("closed"))
	assert.Equal(t, "draft", BudgetState("ARCHIVED"))
	assert.Equal(t, "realized", ForecastState(domain.ForecastRealized))
	assert.Equal(t, "planned", ForecastState("LOST"))
	assert.Equal(t, "posted", MoveState(domain.TransactionConfirmed))
	assert.Equal(t, "cancel", MoveState(domain.TransactionCancelled))
	assert.Equal(t, "draft", MoveState("DISPUTED"))
}

func TestFor_Models(t *testing.T) {
	tests := []struct {
		entityType domain.EntityType
		model      string
	}{
		{domain.EntityAccount, domain.ModelLedgerAccount},
		{domain.EntityCategory, domain.ModelAnalyticAccount},
		{domain.EntityPortfolio, domain.ModelAnalyticPlan},
		{domain.EntityPaymentFlow, domain.ModelPayment},
		{domain.EntityBudget, domain.ModelBudget},
		{domain.EntityBudgetLine, domain.ModelBudgetLine},
		{domain.EntityForecastEvent, domain.ModelAnalyticLine},
		{domain.EntityTransaction, domain.ModelLedgerEntry},
	}

	for _, tt := range tests {
		t.Run(string(tt.entityType), func(t *testing.T) {
			tr, err := ForType(tt.entityType)
			require.NoError(t, err)
			assert.Equal(t, tt.model, tr.Model())
		})
	}

	_, err := ForType(domain.EntityCompany)
	assert.Error(t, err)
}

func TestTranslate_Account(t *testing.T) {
	acc := &domain.Account{ID: 42, Name: "Main", Kind: domain.AccountKindBank, Currency: "EUR"}

	tr := For(acc)
	assert.Equal(t, Needs{Currency: "EUR"}, tr.Needs(acc))

	res, err := tr.Translate(acc, testContext())
	require.NoError(t, err)
	assert.Equal(t, domain.ModelLedgerAccount, res.Model)
	assert.Equal(t, Values{
		"name":         "Main",
		"code":         "10100042",
		"account_type": AccountTypeCash,
		"currency_id":  int64(3),
		"company_id":   int64(7),
	}, res.Values)
	assert.Equal(t, domain.Resolved(3), res.Lookups["currency"])
}

func TestTranslate_CategoryUsesPlan(t *testing.T) {
	parent := int64(4)
	cat := &domain.Category{ID: 5, Name: "Salary", Kind: domain.CategoryKindIncome, ParentID: &parent}

	needs := For(cat).Needs(cat)
	assert.Equal(t, "income", needs.Plan)
	require.Len(t, needs.Refs, 1)
	assert.False(t, needs.Refs[0].Required)

	c := testContext()
	res, err := For(cat).Translate(cat, c)
	require.NoError(t, err)
	assert.Equal(t, "CAT-00005", res.Values["code"])
	assert.Equal(t, int64(11), res.Values["plan_id"])
	assert.NotContains(t, res.Values, "parent_id")

	c.SetRef(domain.EntityCategory, 4, 804)
	res, err = For(cat).Translate(cat, c)
	require.NoError(t, err)
	assert.Equal(t, int64(804), res.Values["parent_id"])
}

func TestTranslate_BudgetLineRequiresRefs(t *testing.T) {
	line := &domain.BudgetLine{ID: 1, BudgetID: 2, CategoryID: 3, PlannedAmount: decimal.NewFromInt(500)}
	c := testContext()

	_, err := For(line).Translate(line, c)
	assert.True(t, errors.Is(err, domain.ErrReferenceUnresolved))

	c.SetRef(domain.EntityBudget, 2, 20)
	c.SetRef(domain.EntityCategory, 3, 30)
	res, err := For(line).Translate(line, c)
	require.NoError(t, err)
	assert.Equal(t, int64(20), res.Values["crossovered_budget_id"])
	assert.Equal(t, int64(30), res.Values["analytic_account_id"])
	assert.True(t, decimal.NewFromInt(500).Equal(res.Values["planned_amount"].(decimal.Decimal)))
}

func TestTranslate_ForecastEventSignedAmount(t *testing.T) {
	ev := &domain.ForecastEvent{
		ID:           1,
		AccountID:    2,
		Name:         "Rent",
		Type:         domain.EntryDebit,
		Amount:       decimal.RequireFromString("900.00"),
		ExpectedDate: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		Status:       domain.ForecastPlanned,
	}
	c := testContext()
	c.SetRef(domain.EntityAccount, 2, 602)

	res, err := For(ev).Translate(ev, c)
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("-900").Equal(res.Values["amount"].(decimal.Decimal)))
	assert.Equal(t, "2026-03-01", res.Values["date"])
	assert.Equal(t, "planned", res.Values[forecastStateField])
	assert.Equal(t, int64(602), res.Values["general_account_id"])
}

func TestTranslate_PaymentFlow(t *testing.T) {
	p := &domain.PaymentFlow{
		ID:        1,
		AccountID: 2,
		Name:      "Subscription",
		Direction: domain.FlowInflow,
		Amount:    decimal.NewFromInt(10),
		Currency:  "USD",
		Frequency: domain.FrequencyMonthly,
		StartDate: time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC),
	}

	needs := For(p).Needs(p)
	assert.Equal(t, "USD", needs.Currency)
	assert.Equal(t, "bank", needs.JournalType)

	res, err := For(p).Translate(p, testContext())
	require.NoError(t, err)
	assert.Equal(t, "inbound", res.Values["payment_type"])
	assert.Equal(t, "customer", res.Values["partner_type"])
	assert.Equal(t, "monthly", res.Values["x_frequency"])
	assert.Equal(t, int64(9), res.Values["journal_id"])
}

func TestTranslate_WrongTypeIsRejected(t *testing.T) {
	_, err := For(&domain.Budget{}).Translate(&domain.Account{}, testContext())
	assert.True(t, errors.Is(err, domain.ErrPreconditionViolation))
}

func TestDiff(t *testing.T) {
	before := Values{
		"name":   "Old",
		"amount": decimal.RequireFromString("10.50"),
		"state":  "draft",
		"stale":  int64(1),
	}
	after := Values{
		"name":   "New",
		"amount": decimal.RequireFromString("10.5"),
		"state":  "draft",
	}

	changed := Diff(before, after)
	assert.Equal(t, Values{"name": "New", "stale": false}, changed)
	assert.Empty(t, Diff(after, after))
}

func TestNeeds_Merge(t *testing.T) {
	a := Needs{Currency: "EUR", Refs: []Ref{{Type: domain.EntityAccount, ID: 1, Required: true}}}
	b := Needs{Currency: "USD", Clearing: true, Refs: []Ref{{Type: domain.EntityAccount, ID: 2, Required: true}}}

	m := a.Merge(b)
	assert.Equal(t, "USD", m.Currency)
	assert.True(t, m.Clearing)
	assert.Len(t, m.Refs, 2)
	assert.Len(t, a.Refs, 1)
}
