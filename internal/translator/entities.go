package translator

import (
	"fmt"
	"time"

	"github.com/iho/ledgersync/internal/domain"
)

const dateLayout = "2006-01-02"

func formatDate(t time.Time) string {
	return t.UTC().Format(dateLayout)
}

func accountNeeds(a *domain.Account) Needs {
	return Needs{Currency: a.Currency}
}

func translateAccount(a *domain.Account, c Context) (Result, error) {
	accountType := AccountType(a.Kind)
	return Result{
		Values: Values{
			"name":         a.Name,
			"code":         AccountCode(accountType, a.ID),
			"account_type": accountType,
			"currency_id":  c.Currency.ID,
			"company_id":   c.Company.ID,
		},
		Lookups: map[string]domain.Resolution{"company": c.Company, "currency": c.Currency},
	}, nil
}

func categoryNeeds(cat *domain.Category) Needs {
	n := Needs{Plan: AnalyticPlan(cat.Kind)}
	if cat.ParentID != nil {
		n.Refs = append(n.Refs, Ref{Type: domain.EntityCategory, ID: *cat.ParentID})
	}
	return n
}

func translateCategory(cat *domain.Category, c Context) (Result, error) {
	v := Values{
		"name":       cat.Name,
		"code":       fmt.Sprintf(categoryCodeFormat, cat.ID),
		"plan_id":    c.Plan.ID,
		"company_id": c.Company.ID,
	}
	if cat.ParentID != nil {
		if parent, ok := c.Ref(domain.EntityCategory, *cat.ParentID); ok {
			v["parent_id"] = parent
		}
	}
	return Result{
		Values:  v,
		Lookups: map[string]domain.Resolution{"company": c.Company, "plan": c.Plan},
	}, nil
}

func portfolioNeeds(*domain.Portfolio) Needs {
	return Needs{}
}

func translatePortfolio(p *domain.Portfolio, c Context) (Result, error) {
	return Result{
		Values: Values{
			"name":        p.Name,
			"description": p.Description,
			"company_id":  c.Company.ID,
		},
		Lookups: c.lookups(),
	}, nil
}

func paymentFlowNeeds(p *domain.PaymentFlow) Needs {
	return Needs{Currency: p.Currency, JournalType: paymentJournalType}
}

func translatePaymentFlow(p *domain.PaymentFlow, c Context) (Result, error) {
	paymentType := PaymentType(p.Direction)
	partnerType := "supplier"
	if paymentType == "inbound" {
		partnerType = "customer"
	}
	return Result{
		Values: Values{
			"payment_type": paymentType,
			"partner_type": partnerType,
			"amount":       p.Amount,
			"currency_id":  c.Currency.ID,
			"date":         formatDate(p.StartDate),
			"journal_id":   c.Journal.ID,
			"ref":          p.Name,
			"x_frequency":  PaymentFrequency(p.Frequency),
			"company_id":   c.Company.ID,
		},
		Lookups: map[string]domain.Resolution{
			"company":  c.Company,
			"currency": c.Currency,
			"journal":  c.Journal,
		},
	}, nil
}

func budgetNeeds(*domain.Budget) Needs {
	return Needs{}
}

func translateBudget(b *domain.Budget, c Context) (Result, error) {
	return Result{
		Values: Values{
			"name":       b.Name,
			"date_from":  formatDate(b.PeriodStart),
			"date_to":    formatDate(b.PeriodEnd),
			"state":      BudgetState(b.Status),
			"company_id": c.Company.ID,
		},
		Lookups: c.lookups(),
	}, nil
}

func budgetLineNeeds(l *domain.BudgetLine) Needs {
	return Needs{Refs: []Ref{
		{Type: domain.EntityBudget, ID: l.BudgetID, Required: true},
		{Type: domain.EntityCategory, ID: l.CategoryID, Required: true},
	}}
}

func translateBudgetLine(l *domain.BudgetLine, c Context) (Result, error) {
	budgetID, err := c.requireRef(domain.EntityBudget, l.BudgetID)
	if err != nil {
		return Result{}, err
	}
	analyticID, err := c.requireRef(domain.EntityCategory, l.CategoryID)
	if err != nil {
		return Result{}, err
	}
	return Result{
		Values: Values{
			"crossovered_budget_id": budgetID,
			"analytic_account_id":   analyticID,
			"planned_amount":        l.PlannedAmount,
			"company_id":            c.Company.ID,
		},
		Lookups: c.lookups(),
	}, nil
}

func forecastEventNeeds(f *domain.ForecastEvent) Needs {
	n := Needs{Refs: []Ref{{Type: domain.EntityAccount, ID: f.AccountID, Required: true}}}
	if f.CategoryID != nil {
		n.Refs = append(n.Refs, Ref{Type: domain.EntityCategory, ID: *f.CategoryID})
	}
	return n
}

func translateForecastEvent(f *domain.ForecastEvent, c Context) (Result, error) {
	accountID, err := c.requireRef(domain.EntityAccount, f.AccountID)
	if err != nil {
		return Result{}, err
	}
	v := Values{
		"name":               f.Name,
		"date":               formatDate(f.ExpectedDate),
		"amount":             f.SignedAmount(),
		"general_account_id": accountID,
		"company_id":         c.Company.ID,
		forecastStateField:   ForecastState(f.Status),
	}
	if f.CategoryID != nil {
		if analyticID, ok := c.Ref(domain.EntityCategory, *f.CategoryID); ok {
			v["account_id"] = analyticID
		}
	}
	return Result{Values: v, Lookups: c.lookups()}, nil
}

// transactionNeeds leaves PortfolioID out: portfolios mirror as analytic
// plans, and analytic_distribution only accepts analytic accounts.
func transactionNeeds(t *domain.Transaction) Needs {
	n := Needs{
		Currency:    t.Currency,
		JournalType: defaultJournalType,
		Clearing:    true,
		Refs:        []Ref{{Type: domain.EntityAccount, ID: t.AccountID, Required: true}},
	}
	if t.CategoryID != nil {
		n.Refs = append(n.Refs, Ref{Type: domain.EntityCategory, ID: *t.CategoryID})
	}
	return n
}

func translateTransaction(t *domain.Transaction, c Context) (Result, error) {
	entry, err := BuildEntry(t, c)
	if err != nil {
		return Result{}, err
	}
	return Result{
		Values: EntryValues(entry),
		Entry:  entry,
		Lookups: map[string]domain.Resolution{
			"company":  c.Company,
			"currency": c.Currency,
			"journal":  c.Journal,
			"clearing": c.Clearing,
		},
	}, nil
}
