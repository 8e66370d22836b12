// Package translator turns primary-store entities into ERP field sets.
// Everything here is pure: ERP ids the translation depends on arrive through
// a Context resolved beforehand.
package translator

import (
	"fmt"
	"reflect"

	"github.com/shopspring/decimal"

	"github.com/iho/ledgersync/internal/domain"
)

// Values is an ERP field map.
type Values map[string]any

// Result is the output of a translation.
type Result struct {
	Model   string
	Values  Values
	Lookups map[string]domain.Resolution
	// Entry is set for transactions only.
	Entry *domain.LedgerEntry
}

// Ref is a foreign reference a translation depends on.
type Ref struct {
	Type     domain.EntityType
	ID       int64
	Required bool
}

// Needs lists the lookups a translation requires.
type Needs struct {
	Currency    string
	Refs        []Ref
	JournalType string
	Clearing    bool
	Plan        string
}

// Merge combines two requirement sets. Currency, journal and plan of other win
// when set.
func (n Needs) Merge(other Needs) Needs {
	out := n
	if other.Currency != "" {
		out.Currency = other.Currency
	}
	if other.JournalType != "" {
		out.JournalType = other.JournalType
	}
	if other.Plan != "" {
		out.Plan = other.Plan
	}
	out.Clearing = n.Clearing || other.Clearing
	out.Refs = append(append([]Ref{}, n.Refs...), other.Refs...)
	return out
}

// Context carries the resolved ERP ids for one translation.
type Context struct {
	Company  domain.Resolution
	Currency domain.Resolution
	Journal  domain.Resolution
	Clearing domain.Resolution
	Plan     domain.Resolution

	refs map[domain.EntityKey]int64
}

// NewContext returns a context for the given company.
func NewContext(company domain.Resolution) Context {
	return Context{Company: company, refs: make(map[domain.EntityKey]int64)}
}

// SetRef records the ERP id of a local entity.
func (c *Context) SetRef(t domain.EntityType, localID, externalID int64) {
	if c.refs == nil {
		c.refs = make(map[domain.EntityKey]int64)
	}
	c.refs[domain.EntityKey{Type: t, ID: localID}] = externalID
}

// Ref returns the ERP id of a local entity, if it was resolved.
func (c Context) Ref(t domain.EntityType, localID int64) (int64, bool) {
	id, ok := c.refs[domain.EntityKey{Type: t, ID: localID}]
	return id, ok
}

func (c Context) requireRef(t domain.EntityType, localID int64) (int64, error) {
	id, ok := c.Ref(t, localID)
	if !ok {
		return 0, fmt.Errorf("%w: %s %d has no external mapping", domain.ErrReferenceUnresolved, t, localID)
	}
	return id, nil
}

func (c Context) lookups() map[string]domain.Resolution {
	return map[string]domain.Resolution{"company": c.Company}
}

// Translator is the capability every entity type implements.
type Translator interface {
	Model() string
	Needs(e domain.Entity) Needs
	Translate(e domain.Entity, c Context) (Result, error)
}

// typed adapts strongly typed translation functions to Translator.
type typed[T domain.Entity] struct {
	model     string
	needs     func(T) Needs
	translate func(T, Context) (Result, error)
}

func (t typed[T]) Model() string { return t.model }

func (t typed[T]) Needs(e domain.Entity) Needs {
	v, ok := e.(T)
	if !ok {
		return Needs{}
	}
	return t.needs(v)
}

func (t typed[T]) Translate(e domain.Entity, c Context) (Result, error) {
	v, ok := e.(T)
	if !ok {
		return Result{}, fmt.Errorf("%w: %s translator got %T", domain.ErrPreconditionViolation, t.model, e)
	}
	res, err := t.translate(v, c)
	if err != nil {
		return Result{}, err
	}
	res.Model = t.model
	return res, nil
}

var (
	accounts       = typed[*domain.Account]{model: domain.ModelLedgerAccount, needs: accountNeeds, translate: translateAccount}
	categories     = typed[*domain.Category]{model: domain.ModelAnalyticAccount, needs: categoryNeeds, translate: translateCategory}
	portfolios     = typed[*domain.Portfolio]{model: domain.ModelAnalyticPlan, needs: portfolioNeeds, translate: translatePortfolio}
	paymentFlows   = typed[*domain.PaymentFlow]{model: domain.ModelPayment, needs: paymentFlowNeeds, translate: translatePaymentFlow}
	budgets        = typed[*domain.Budget]{model: domain.ModelBudget, needs: budgetNeeds, translate: translateBudget}
	budgetLines    = typed[*domain.BudgetLine]{model: domain.ModelBudgetLine, needs: budgetLineNeeds, translate: translateBudgetLine}
	forecastEvents = typed[*domain.ForecastEvent]{model: domain.ModelAnalyticLine, needs: forecastEventNeeds, translate: translateForecastEvent}
	transactions   = typed[*domain.Transaction]{model: domain.ModelLedgerEntry, needs: transactionNeeds, translate: translateTransaction}
)

// For returns the translator of e's concrete type.
func For(e domain.Entity) Translator {
	switch e.(type) {
	case *domain.Account:
		return accounts
	case *domain.Category:
		return categories
	case *domain.Portfolio:
		return portfolios
	case *domain.PaymentFlow:
		return paymentFlows
	case *domain.Budget:
		return budgets
	case *domain.BudgetLine:
		return budgetLines
	case *domain.ForecastEvent:
		return forecastEvents
	case *domain.Transaction:
		return transactions
	}
	// domain.Entity is sealed; every implementation is listed above.
	panic(fmt.Sprintf("translator: unhandled entity %T", e))
}

// ForType returns the translator registered for an entity type.
func ForType(t domain.EntityType) (Translator, error) {
	e, err := domain.NewEntity(t)
	if err != nil {
		return nil, err
	}
	return For(e), nil
}

// Diff returns the keys of after whose value differs from before.
func Diff(before, after Values) Values {
	changed := Values{}
	for k, v := range after {
		old, ok := before[k]
		if !ok || !equalValue(old, v) {
			changed[k] = v
		}
	}
	for k := range before {
		if _, ok := after[k]; !ok {
			changed[k] = false
		}
	}
	return changed
}

func equalValue(a, b any) bool {
	da, okA := a.(decimal.Decimal)
	db, okB := b.(decimal.Decimal)
	if okA && okB {
		return da.Equal(db)
	}
	return reflect.DeepEqual(a, b)
}
