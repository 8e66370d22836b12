package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/iho/ledgersync/internal/domain"
	"github.com/iho/ledgersync/internal/translator"
)

// LookupDefaults holds the ERP ids assumed when a reference is not found.
type LookupDefaults struct {
	CompanyID           int64
	CurrencyID          int64
	JournalID           int64
	ClearingAccountID   int64
	AnalyticPlanID      int64
	ClearingAccountCode string
}

func (d LookupDefaults) withFallbacks() LookupDefaults {
	for _, id := range []*int64{&d.CompanyID, &d.CurrencyID, &d.JournalID, &d.ClearingAccountID, &d.AnalyticPlanID} {
		if *id <= 0 {
			*id = DefaultExternalID
		}
	}
	if d.ClearingAccountCode == "" {
		d.ClearingAccountCode = DefaultClearingAccountCode
	}
	return d
}

// Lookup resolves local and ERP identifiers for the external phase.
// Resolutions that fall back to a default are tagged, logged and counted.
type Lookup struct {
	mappings MappingStore
	client   ExternalClient
	cache    ReferenceCache
	metrics  SyncMetrics
	defaults LookupDefaults
	logger   zerolog.Logger
}

// NewLookup creates a new Lookup.
func NewLookup(
	mappings MappingStore,
	client ExternalClient,
	cache ReferenceCache,
	metrics SyncMetrics,
	defaults LookupDefaults,
	logger zerolog.Logger,
) *Lookup {
	return &Lookup{
		mappings: mappings,
		client:   client,
		cache:    cache,
		metrics:  metrics,
		defaults: defaults.withFallbacks(),
		logger:   logger,
	}
}

// ResolveExternal returns the ERP id of a local entity, if synchronized.
func (l *Lookup) ResolveExternal(ctx context.Context, localType domain.EntityType, localID int64) (int64, bool, error) {
	return l.mappings.ResolveExternal(ctx, localType, localID)
}

// ResolveLocal returns the local id of an ERP record, if mapped.
func (l *Lookup) ResolveLocal(ctx context.Context, externalType string, externalID int64) (int64, bool, error) {
	return l.mappings.ResolveLocal(ctx, externalType, externalID)
}

// Company returns the ERP company of a tenant.
func (l *Lookup) Company(ctx context.Context, tenantID int64) (domain.Resolution, error) {
	id, ok, err := l.mappings.ResolveExternal(ctx, domain.EntityCompany, tenantID)
	if err != nil {
		return domain.Resolution{}, err
	}
	if ok {
		return domain.Resolved(id), nil
	}
	return l.fallback("company", l.defaults.CompanyID, fmt.Sprintf("tenant %d has no company mapping", tenantID)), nil
}

// Currency returns the ERP currency with the given ISO code.
func (l *Lookup) Currency(ctx context.Context, code string) (domain.Resolution, error) {
	code = domain.NormalizeCurrency(code)
	return l.search(ctx, "currency", "currency:"+code, l.defaults.CurrencyID,
		domain.ModelCurrency, []domain.Condition{domain.Where("name", code)})
}

// Journal returns the first ERP journal of the given type in a company.
func (l *Lookup) Journal(ctx context.Context, companyID int64, journalType string) (domain.Resolution, error) {
	return l.search(ctx, "journal", fmt.Sprintf("journal:%d:%s", companyID, journalType), l.defaults.JournalID,
		domain.ModelJournal, []domain.Condition{
			domain.Where("type", journalType),
			domain.Where("company_id", companyID),
		})
}

// ClearingAccount returns the suspense account that balances journal
// entries: the account with the conventional code, else any current asset
// account, else the configured default.
func (l *Lookup) ClearingAccount(ctx context.Context, companyID int64) (domain.Resolution, error) {
	key := fmt.Sprintf("clearing:%d", companyID)
	if id, ok := l.cache.Get(key); ok {
		return domain.Resolved(id), nil
	}

	candidates := [][]domain.Condition{
		{domain.Where("code", l.defaults.ClearingAccountCode), domain.Where("company_id", companyID)},
		{domain.Where("account_type", translator.AccountTypeCurrent), domain.Where("company_id", companyID)},
	}
	for _, filter := range candidates {
		id, found, err := l.searchFirst(ctx, domain.ModelLedgerAccount, filter)
		if err != nil {
			return domain.Resolution{}, err
		}
		if found {
			l.cache.Set(key, id)
			return domain.Resolved(id), nil
		}
	}

	return l.fallback("clearing_account", l.defaults.ClearingAccountID,
		fmt.Sprintf("no clearing account %s in company %d", l.defaults.ClearingAccountCode, companyID)), nil
}

// AnalyticPlan returns the ERP analytic plan with the given name.
func (l *Lookup) AnalyticPlan(ctx context.Context, name string) (domain.Resolution, error) {
	return l.search(ctx, "analytic_plan", "plan:"+name, l.defaults.AnalyticPlanID,
		domain.ModelAnalyticPlan, []domain.Condition{domain.Where("name", name)})
}

// Context resolves everything a translation of e needs. A missing required
// foreign mapping fails with domain.ErrReferenceUnresolved.
func (l *Lookup) Context(ctx context.Context, e domain.Entity, needs translator.Needs) (translator.Context, error) {
	company, err := l.Company(ctx, e.GetTenantID())
	if err != nil {
		return translator.Context{}, err
	}
	c := translator.NewContext(company)

	if needs.Currency != "" {
		if c.Currency, err = l.Currency(ctx, needs.Currency); err != nil {
			return translator.Context{}, err
		}
	}
	if needs.JournalType != "" {
		if c.Journal, err = l.Journal(ctx, company.ID, needs.JournalType); err != nil {
			return translator.Context{}, err
		}
	}
	if needs.Clearing {
		if c.Clearing, err = l.ClearingAccount(ctx, company.ID); err != nil {
			return translator.Context{}, err
		}
	}
	if needs.Plan != "" {
		if c.Plan, err = l.AnalyticPlan(ctx, needs.Plan); err != nil {
			return translator.Context{}, err
		}
	}

	for _, ref := range needs.Refs {
		id, ok, err := l.mappings.ResolveExternal(ctx, ref.Type, ref.ID)
		if err != nil {
			return translator.Context{}, err
		}
		if ok {
			c.SetRef(ref.Type, ref.ID, id)
			continue
		}
		if ref.Required {
			return translator.Context{}, fmt.Errorf("%w: %s %d referenced by %s %d is not synchronized",
				domain.ErrReferenceUnresolved, ref.Type, ref.ID, e.EntityType(), e.GetID())
		}
	}

	return c, nil
}

func (l *Lookup) search(
	ctx context.Context,
	reference, cacheKey string,
	fallbackID int64,
	model string,
	filter []domain.Condition,
) (domain.Resolution, error) {
	if id, ok := l.cache.Get(cacheKey); ok {
		return domain.Resolved(id), nil
	}

	id, found, err := l.searchFirst(ctx, model, filter)
	if err != nil {
		return domain.Resolution{}, err
	}
	if !found {
		return l.fallback(reference, fallbackID, fmt.Sprintf("no %s matches %s", model, describe(filter))), nil
	}

	l.cache.Set(cacheKey, id)
	return domain.Resolved(id), nil
}

func (l *Lookup) searchFirst(ctx context.Context, model string, filter []domain.Condition) (int64, bool, error) {
	records, err := l.client.Search(ctx, model, filter, domain.SearchOptions{Fields: []string{"id"}, Limit: 1})
	if err != nil {
		return 0, false, err
	}
	if len(records) == 0 {
		return 0, false, nil
	}
	id, ok := recordID(records[0])
	return id, ok, nil
}

func (l *Lookup) fallback(reference string, id int64, reason string) domain.Resolution {
	l.metrics.ObserveFallback(reference)
	l.logger.Warn().
		Str("reference", reference).
		Int64("default_id", id).
		Str("reason", reason).
		Msg("reference defaulted")
	return domain.DefaultedTo(id, reason)
}

func describe(filter []domain.Condition) string {
	s := ""
	for i, c := range filter {
		if i > 0 {
			s += " and "
		}
		s += fmt.Sprintf("%s %s %v", c.Field, c.Operator, c.Value)
	}
	return s
}

// recordID extracts the "id" field of an ERP record.
func recordID(rec map[string]any) (int64, bool) {
	return toInt64(rec["id"])
}

func toInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int64:
		return n, true
	case int:
		return int64(n), true
	case float64:
		return int64(n), true
	case json.Number:
		id, err := n.Int64()
		return id, err == nil
	case string:
		id, err := strconv.ParseInt(n, 10, 64)
		return id, err == nil
	default:
		return 0, false
	}
}
