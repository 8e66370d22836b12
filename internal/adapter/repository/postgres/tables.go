package postgres

import (
	"github.com/iho/ledgersync/internal/domain"
)

// AccountRepository stores accounts.
type AccountRepository = EntityRepository[domain.Account, *domain.Account]

// NewAccountRepository creates a new AccountRepository.
func NewAccountRepository(db DBTX) *AccountRepository {
	return newEntityRepository(db, table[*domain.Account]{
		name:    "accounts",
		columns: []string{"name", "kind", "currency"},
		values: func(a *domain.Account) []any {
			return []any{a.Name, a.Kind, a.Currency}
		},
	})
}

// CategoryRepository stores categories.
type CategoryRepository = EntityRepository[domain.Category, *domain.Category]

// NewCategoryRepository creates a new CategoryRepository.
func NewCategoryRepository(db DBTX) *CategoryRepository {
	return newEntityRepository(db, table[*domain.Category]{
		name:    "categories",
		columns: []string{"name", "kind", "parent_id"},
		values: func(c *domain.Category) []any {
			return []any{c.Name, c.Kind, c.ParentID}
		},
	})
}

// PortfolioRepository stores portfolios.
type PortfolioRepository = EntityRepository[domain.Portfolio, *domain.Portfolio]

// NewPortfolioRepository creates a new PortfolioRepository.
func NewPortfolioRepository(db DBTX) *PortfolioRepository {
	return newEntityRepository(db, table[*domain.Portfolio]{
		name:    "portfolios",
		columns: []string{"name", "description", "currency"},
		values: func(p *domain.Portfolio) []any {
			return []any{p.Name, p.Description, p.Currency}
		},
	})
}

// PaymentFlowRepository stores payment flows.
type PaymentFlowRepository = EntityRepository[domain.PaymentFlow, *domain.PaymentFlow]

// NewPaymentFlowRepository creates a new PaymentFlowRepository.
func NewPaymentFlowRepository(db DBTX) *PaymentFlowRepository {
	return newEntityRepository(db, table[*domain.PaymentFlow]{
		name: "payment_flows",
		columns: []string{
			"account_id", "category_id", "name", "direction", "amount",
			"currency", "frequency", "start_date", "end_date", "status",
		},
		values: func(f *domain.PaymentFlow) []any {
			return []any{
				f.AccountID, f.CategoryID, f.Name, f.Direction, f.Amount,
				f.Currency, f.Frequency, f.StartDate, f.EndDate, f.Status,
			}
		},
	})
}

// BudgetRepository stores budgets.
type BudgetRepository = EntityRepository[domain.Budget, *domain.Budget]

// NewBudgetRepository creates a new BudgetRepository.
func NewBudgetRepository(db DBTX) *BudgetRepository {
	return newEntityRepository(db, table[*domain.Budget]{
		name:    "budgets",
		columns: []string{"name", "currency", "period_start", "period_end", "status"},
		values: func(b *domain.Budget) []any {
			return []any{b.Name, b.Currency, b.PeriodStart, b.PeriodEnd, b.Status}
		},
	})
}

// BudgetLineRepository stores budget lines.
type BudgetLineRepository = EntityRepository[domain.BudgetLine, *domain.BudgetLine]

// NewBudgetLineRepository creates a new BudgetLineRepository.
func NewBudgetLineRepository(db DBTX) *BudgetLineRepository {
	return newEntityRepository(db, table[*domain.BudgetLine]{
		name:    "budget_lines",
		columns: []string{"budget_id", "category_id", "planned_amount"},
		values: func(l *domain.BudgetLine) []any {
			return []any{l.BudgetID, l.CategoryID, l.PlannedAmount}
		},
	})
}

// ForecastEventRepository stores forecast events.
type ForecastEventRepository = EntityRepository[domain.ForecastEvent, *domain.ForecastEvent]

// NewForecastEventRepository creates a new ForecastEventRepository.
func NewForecastEventRepository(db DBTX) *ForecastEventRepository {
	return newEntityRepository(db, table[*domain.ForecastEvent]{
		name:    "forecast_events",
		columns: []string{"account_id", "category_id", "name", "type", "amount", "expected_date", "status"},
		values: func(e *domain.ForecastEvent) []any {
			return []any{e.AccountID, e.CategoryID, e.Name, e.Type, e.Amount, e.ExpectedDate, e.Status}
		},
	})
}

// TransactionRepository stores transactions.
type TransactionRepository = EntityRepository[domain.Transaction, *domain.Transaction]

// NewTransactionRepository creates a new TransactionRepository.
func NewTransactionRepository(db DBTX) *TransactionRepository {
	return newEntityRepository(db, table[*domain.Transaction]{
		name: "transactions",
		columns: []string{
			"account_id", "category_id", "portfolio_id", "type", "amount",
			"currency", "date", "description", "reference", "status",
		},
		values: func(t *domain.Transaction) []any {
			return []any{
				t.AccountID, t.CategoryID, t.PortfolioID, t.Type, t.Amount,
				t.Currency, t.Date, t.Description, t.Reference, t.Status,
			}
		},
	})
}
