package usecase_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/ledgersync/internal/domain"
	"github.com/iho/ledgersync/internal/usecase"
	"github.com/iho/ledgersync/internal/usecase/mocks"
)

type syncHarness struct {
	client      *mocks.FakeExternalClient
	mappings    *mocks.MemoryMappingStore
	metrics     *mocks.RecordingMetrics
	lookup      *usecase.Lookup
	coordinator *usecase.Coordinator
}

func newSyncHarness(t *testing.T) *syncHarness {
	t.Helper()

	h := &syncHarness{
		client:   mocks.NewFakeExternalClient(501),
		mappings: mocks.NewMemoryMappingStore(),
		metrics:  &mocks.RecordingMetrics{},
	}
	h.lookup = usecase.NewLookup(h.mappings, h.client, mocks.NewMapReferenceCache(), h.metrics, usecase.LookupDefaults{}, zerolog.Nop())
	h.coordinator = usecase.NewCoordinator(h.client, h.mappings, h.lookup, h.metrics, zerolog.Nop())
	return h
}

func (h *syncHarness) mapEntity(t *testing.T, localType domain.EntityType, localID int64, model string, externalID int64) {
	t.Helper()
	_, err := h.mappings.Put(context.Background(), localType, localID, model, externalID)
	require.NoError(t, err)
}

func createTask(e domain.Entity) *domain.SyncTask {
	return domain.NewSyncTask("task", domain.OpCreate, nil, e, time.Now())
}

func updateTask(before, after domain.Entity) *domain.SyncTask {
	return domain.NewSyncTask("task", domain.OpUpdate, before, after, time.Now())
}

func (h *syncHarness) primitives() []string {
	var out []string
	for _, c := range h.client.Calls() {
		name := c.Primitive
		if c.Method != "" {
			name += ":" + c.Method
		}
		out = append(out, name)
	}
	return out
}

func TestCoordinator_CreateAccountScenario(t *testing.T) {
	h := newSyncHarness(t)
	h.client.Seed(domain.ModelCurrency, 3, map[string]any{"name": "EUR"})
	ctx := context.Background()

	account := &domain.Account{ID: 1, TenantID: 1, Name: "Checking", Kind: "bank", Currency: "EUR"}
	res := h.coordinator.Process(ctx, createTask(account))

	require.NoError(t, res.Err)
	assert.Equal(t, domain.OutcomeSynced, res.Outcome)
	assert.Equal(t, int64(501), res.ExternalID)

	externalID, ok, err := h.mappings.ResolveExternal(ctx, domain.EntityAccount, 1)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, int64(501), externalID)

	localID, ok, err := h.mappings.ResolveLocal(ctx, domain.ModelLedgerAccount, 501)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, int64(1), localID)

	rec, ok := h.client.Record(domain.ModelLedgerAccount, 501)
	require.True(t, ok)
	assert.Equal(t, "asset_cash", rec["account_type"])
	assert.Equal(t, "10100001", rec["code"])
	assert.Equal(t, int64(3), rec["currency_id"])

	// Company is not mapped for tenant 1, so it fell back to the default.
	assert.Equal(t, []string{"company"}, h.metrics.Fallbacks)
}

func TestCoordinator_LowerCaseCurrencyResolves(t *testing.T) {
	h := newSyncHarness(t)
	h.client.Seed(domain.ModelCurrency, 3, map[string]any{"name": "EUR"})

	account := &domain.Account{ID: 2, TenantID: 1, Name: "Savings", Kind: "BANK", Currency: "eur"}
	res := h.coordinator.Process(context.Background(), createTask(account))
	require.NoError(t, res.Err)

	rec, ok := h.client.Record(domain.ModelLedgerAccount, res.ExternalID)
	require.True(t, ok)
	assert.Equal(t, int64(3), rec["currency_id"])
	assert.NotContains(t, h.metrics.Fallbacks, "currency")
}

func TestCoordinator_ProcessRejectsDeleteTasks(t *testing.T) {
	h := newSyncHarness(t)
	h.mapEntity(t, domain.EntityPortfolio, 4, domain.ModelAnalyticPlan, 900)

	task := domain.NewSyncTask("task", domain.OpDelete, &domain.Portfolio{ID: 4, TenantID: 1, Name: "P"}, nil, time.Now())
	res := h.coordinator.Process(context.Background(), task)

	assert.Equal(t, domain.OutcomeFailed, res.Outcome)
	assert.ErrorIs(t, res.Err, domain.ErrPreconditionViolation)
	assert.Equal(t, 0, h.client.CallCount())

	_, ok, err := h.mappings.ResolveExternal(context.Background(), domain.EntityPortfolio, 4)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestCoordinator_CreateIsReplaySafe(t *testing.T) {
	h := newSyncHarness(t)
	h.mapEntity(t, domain.EntityPortfolio, 4, domain.ModelAnalyticPlan, 900)

	res := h.coordinator.Process(context.Background(), createTask(&domain.Portfolio{ID: 4, TenantID: 1, Name: "P"}))

	assert.Equal(t, domain.OutcomeSkipped, res.Outcome)
	assert.Equal(t, int64(900), res.ExternalID)
	assert.Equal(t, 0, h.client.CallCount())
}

func TestCoordinator_CreateDebitTransactionScenario(t *testing.T) {
	h := newSyncHarness(t)
	h.mapEntity(t, domain.EntityAccount, 1, domain.ModelLedgerAccount, 400)
	h.client.Seed(domain.ModelLedgerAccount, 499, map[string]any{"code": usecase.DefaultClearingAccountCode, "company_id": int64(1)})

	tx := &domain.Transaction{
		ID:        7,
		TenantID:  1,
		AccountID: 1,
		Type:      domain.EntryDebit,
		Amount:    decimal.RequireFromString("42.50"),
		Currency:  "EUR",
		Date:      time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC),
		Status:    domain.TransactionPending,
	}
	res := h.coordinator.Process(context.Background(), createTask(tx))
	require.NoError(t, res.Err)
	assert.Equal(t, domain.OutcomeSynced, res.Outcome)

	lines, err := h.client.Search(context.Background(), domain.ModelLedgerLine,
		[]domain.Condition{domain.Where("move_id", res.ExternalID)}, domain.SearchOptions{})
	require.NoError(t, err)
	require.Len(t, lines, 2)

	assert.Equal(t, int64(400), lines[0]["account_id"])
	assert.True(t, decimal.RequireFromString("42.50").Equal(lines[0]["debit"].(decimal.Decimal)))
	assert.True(t, lines[0]["credit"].(decimal.Decimal).IsZero())
	assert.Equal(t, int64(499), lines[1]["account_id"])
	assert.True(t, lines[1]["debit"].(decimal.Decimal).IsZero())
	assert.True(t, decimal.RequireFromString("42.50").Equal(lines[1]["credit"].(decimal.Decimal)))

	move, _ := h.client.Record(domain.ModelLedgerEntry, res.ExternalID)
	assert.Equal(t, domain.LedgerStateDraft, move["state"])
	assert.NotContains(t, h.primitives(), "call:"+domain.MethodPost)
}

func TestCoordinator_CreateConfirmedTransactionPosts(t *testing.T) {
	h := newSyncHarness(t)
	h.mapEntity(t, domain.EntityAccount, 1, domain.ModelLedgerAccount, 400)

	tx := &domain.Transaction{ID: 8, TenantID: 1, AccountID: 1, Type: domain.EntryCredit,
		Amount: decimal.NewFromInt(10), Currency: "EUR", Status: domain.TransactionConfirmed}
	res := h.coordinator.Process(context.Background(), createTask(tx))
	require.NoError(t, res.Err)

	move, _ := h.client.Record(domain.ModelLedgerEntry, res.ExternalID)
	assert.Equal(t, domain.LedgerStatePosted, move["state"])

	prims := h.primitives()
	assert.Equal(t, "call:"+domain.MethodPost, prims[len(prims)-1])
}

func TestCoordinator_CreateWithUnresolvedReference(t *testing.T) {
	h := newSyncHarness(t)

	line := &domain.BudgetLine{ID: 1, TenantID: 1, BudgetID: 2, CategoryID: 3, PlannedAmount: decimal.NewFromInt(50)}
	res := h.coordinator.Process(context.Background(), createTask(line))

	assert.Equal(t, domain.OutcomeFailed, res.Outcome)
	assert.True(t, errors.Is(res.Err, domain.ErrReferenceUnresolved))
	assert.Equal(t, domain.ModelBudgetLine, res.Model)
	assert.Equal(t, 0, h.mappings.Len())
	assert.NotContains(t, h.primitives(), "create")
}

func TestCoordinator_ExternalUnavailableLeavesNoMapping(t *testing.T) {
	h := newSyncHarness(t)
	h.client.Err = domain.ErrExternalUnavailable

	res := h.coordinator.Process(context.Background(), createTask(&domain.Budget{ID: 1, TenantID: 1, Name: "B"}))

	assert.Equal(t, domain.OutcomeFailed, res.Outcome)
	assert.True(t, errors.Is(res.Err, domain.ErrExternalUnavailable))
	assert.Equal(t, 0, h.mappings.Len())
	assert.Equal(t, "external_unavailable", domain.ErrorClass(res.Err))
}

func TestCoordinator_UpdateUnmappedMakesNoExternalCalls(t *testing.T) {
	h := newSyncHarness(t)

	before := &domain.Budget{ID: 5, TenantID: 1, Name: "Q1", Currency: "EUR"}
	after := &domain.Budget{ID: 5, TenantID: 1, Name: "Q1 revised", Currency: "EUR"}
	res := h.coordinator.Process(context.Background(), updateTask(before, after))

	assert.Equal(t, domain.OutcomeSkipped, res.Outcome)
	assert.NoError(t, res.Err)
	assert.Equal(t, 0, h.client.CallCount())
}

func TestCoordinator_UpdateWritesOnlyChangedFields(t *testing.T) {
	h := newSyncHarness(t)
	h.mapEntity(t, domain.EntityBudget, 5, domain.ModelBudget, 610)
	h.client.Seed(domain.ModelBudget, 610, map[string]any{"name": "Q1"})

	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	before := &domain.Budget{ID: 5, TenantID: 1, Name: "Q1", PeriodStart: start, PeriodEnd: start.AddDate(0, 3, 0), Status: domain.BudgetDraft}
	after := *before
	after.Name = "Q1 revised"
	after.Status = domain.BudgetActive

	res := h.coordinator.Process(context.Background(), updateTask(before, &after))
	require.NoError(t, res.Err)
	assert.Equal(t, domain.OutcomeSynced, res.Outcome)

	var writes []mocks.ExternalCall
	for _, c := range h.client.Calls() {
		if c.Primitive == "write" {
			writes = append(writes, c)
		}
	}
	require.Len(t, writes, 1)
	assert.Equal(t, map[string]any{"name": "Q1 revised", "state": "validate"}, writes[0].Values)
}

func TestCoordinator_UpdateWithoutChangesIsSkipped(t *testing.T) {
	h := newSyncHarness(t)
	h.mapEntity(t, domain.EntityPortfolio, 2, domain.ModelAnalyticPlan, 77)

	p := &domain.Portfolio{ID: 2, TenantID: 1, Name: "Same"}
	res := h.coordinator.Process(context.Background(), updateTask(p, p))

	assert.Equal(t, domain.OutcomeSkipped, res.Outcome)
	assert.NotContains(t, h.primitives(), "write")
}

func TestCoordinator_UpdatePostedEntryIsUnsupported(t *testing.T) {
	h := newSyncHarness(t)
	h.mapEntity(t, domain.EntityTransaction, 9, domain.ModelLedgerEntry, 880)

	before := &domain.Transaction{ID: 9, TenantID: 1, AccountID: 1, Type: domain.EntryDebit,
		Amount: decimal.NewFromInt(10), Status: domain.TransactionConfirmed}
	after := *before
	after.Amount = decimal.NewFromInt(11)

	res := h.coordinator.Process(context.Background(), updateTask(before, &after))

	assert.Equal(t, domain.OutcomeUnsupported, res.Outcome)
	assert.True(t, errors.Is(res.Err, domain.ErrUnsupported))
	assert.Equal(t, 0, h.client.CallCount())
}

func TestCoordinator_UpdateOpenEntryRewritesLinesAndPosts(t *testing.T) {
	h := newSyncHarness(t)
	h.mapEntity(t, domain.EntityAccount, 1, domain.ModelLedgerAccount, 400)
	ctx := context.Background()

	before := &domain.Transaction{ID: 3, TenantID: 1, AccountID: 1, Type: domain.EntryDebit,
		Amount: decimal.NewFromInt(20), Currency: "EUR", Status: domain.TransactionPending}
	created := h.coordinator.Process(ctx, createTask(before))
	require.NoError(t, created.Err)

	after := *before
	after.Amount = decimal.NewFromInt(25)
	after.Status = domain.TransactionConfirmed

	res := h.coordinator.Process(ctx, updateTask(before, &after))
	require.NoError(t, res.Err)
	assert.Equal(t, domain.OutcomeSynced, res.Outcome)

	var write *mocks.ExternalCall
	for _, c := range h.client.Calls() {
		if c.Primitive == "write" {
			c := c
			write = &c
		}
	}
	require.NotNil(t, write)
	cmds, ok := write.Values["line_ids"].([]any)
	require.True(t, ok)
	assert.Len(t, cmds, 2)

	move, _ := h.client.Record(domain.ModelLedgerEntry, created.ExternalID)
	assert.Equal(t, domain.LedgerStatePosted, move["state"])
}

func TestCoordinator_DeletePostedEntry(t *testing.T) {
	h := newSyncHarness(t)
	h.mapEntity(t, domain.EntityTransaction, 4, domain.ModelLedgerEntry, 880)
	h.client.Seed(domain.ModelLedgerEntry, 880, map[string]any{"state": domain.LedgerStatePosted})

	deleted := false
	res, err := h.coordinator.Delete(context.Background(), domain.EntityKey{Type: domain.EntityTransaction, ID: 4},
		func(context.Context) error {
			deleted = true
			return nil
		})

	require.NoError(t, err)
	assert.True(t, deleted)
	assert.Equal(t, domain.OutcomeSynced, res.Outcome)
	assert.Equal(t, []string{"read", "call:" + domain.MethodDraft, "unlink"}, h.primitives())
	assert.Equal(t, 0, h.mappings.Len())
	_, exists := h.client.Record(domain.ModelLedgerEntry, 880)
	assert.False(t, exists)
}

func TestCoordinator_DeleteProceedsWhenExternalFails(t *testing.T) {
	h := newSyncHarness(t)
	h.mapEntity(t, domain.EntityTransaction, 4, domain.ModelLedgerEntry, 880)
	h.client.Seed(domain.ModelLedgerEntry, 880, map[string]any{"state": domain.LedgerStatePosted})
	h.client.UnlinkFunc = func(context.Context, string, []int64) error {
		return domain.ErrExternalUnavailable
	}

	deleted := false
	res, err := h.coordinator.Delete(context.Background(), domain.EntityKey{Type: domain.EntityTransaction, ID: 4},
		func(context.Context) error {
			deleted = true
			return nil
		})

	require.NoError(t, err)
	assert.True(t, deleted, "primary entity must be deleted even if the ERP fails")
	assert.Equal(t, domain.OutcomeFailed, res.Outcome)
	assert.Equal(t, 1, h.mappings.Len(), "mapping is left dangling")
}

func TestCoordinator_DeleteReturnsPrimaryErrorOnly(t *testing.T) {
	h := newSyncHarness(t)
	h.client.Err = domain.ErrExternalUnavailable
	h.mapEntity(t, domain.EntityAccount, 1, domain.ModelLedgerAccount, 501)

	primaryErr := errors.New("primary down")
	_, err := h.coordinator.Delete(context.Background(), domain.EntityKey{Type: domain.EntityAccount, ID: 1},
		func(context.Context) error { return primaryErr })
	assert.ErrorIs(t, err, primaryErr)

	_, err = h.coordinator.Delete(context.Background(), domain.EntityKey{Type: domain.EntityAccount, ID: 1},
		func(context.Context) error { return nil })
	assert.NoError(t, err)
}

func TestCoordinator_DeleteUnmappedSkipsExternal(t *testing.T) {
	h := newSyncHarness(t)

	res, err := h.coordinator.Delete(context.Background(), domain.EntityKey{Type: domain.EntityBudget, ID: 1},
		func(context.Context) error { return nil })

	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeSkipped, res.Outcome)
	assert.Equal(t, 0, h.client.CallCount())
}

func TestCoordinator_ConcurrentCreateRace(t *testing.T) {
	h := newSyncHarness(t)

	var (
		nextID  atomic.Int64
		arrived sync.WaitGroup
	)
	nextID.Store(700)
	arrived.Add(2)
	h.client.CreateFunc = func(context.Context, string, map[string]any) (int64, error) {
		arrived.Done()
		arrived.Wait()
		return nextID.Add(1), nil
	}

	category := &domain.Category{ID: 12, TenantID: 1, Name: "Food", Kind: domain.CategoryKindExpense}
	results := make([]usecase.SyncResult, 2)
	var wg sync.WaitGroup
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = h.coordinator.Process(context.Background(), createTask(category))
		}(i)
	}
	wg.Wait()

	outcomes := []domain.SyncOutcome{results[0].Outcome, results[1].Outcome}
	assert.ElementsMatch(t, []domain.SyncOutcome{domain.OutcomeSynced, domain.OutcomeConflict}, outcomes)
	assert.Equal(t, 1, h.mappings.Len())

	loser := results[0]
	if loser.Outcome != domain.OutcomeConflict {
		loser = results[1]
	}
	assert.True(t, errors.Is(loser.Err, domain.ErrMappingConflict))

	var unlinked []int64
	for _, c := range h.client.Calls() {
		if c.Primitive == "unlink" {
			unlinked = append(unlinked, c.IDs...)
		}
	}
	assert.Equal(t, []int64{loser.ExternalID}, unlinked)
}

func TestCoordinator_RecordsOutcomeMetrics(t *testing.T) {
	h := newSyncHarness(t)

	h.coordinator.Process(context.Background(), createTask(&domain.Portfolio{ID: 1, TenantID: 1, Name: "A"}))
	h.coordinator.Process(context.Background(), updateTask(&domain.Budget{ID: 2, TenantID: 1}, &domain.Budget{ID: 2, TenantID: 1}))

	assert.Equal(t, []domain.SyncOutcome{domain.OutcomeSynced, domain.OutcomeSkipped}, h.metrics.Outcomes)
}
