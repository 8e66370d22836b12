package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/iho/ledgersync/internal/domain"
	"github.com/iho/ledgersync/internal/usecase"
	"github.com/iho/ledgersync/internal/usecase/mocks"
)

func newInlineUseCase[T domain.Entity](h *syncHarness, repo usecase.EntityRepository[T]) *usecase.EntityUseCase[T] {
	return usecase.NewEntityUseCase(usecase.SyncDeps{
		TxManager:   mocks.NewStubTransactionManager(),
		Scheduler:   usecase.NewInlineScheduler(h.coordinator),
		Coordinator: h.coordinator,
		Mappings:    h.mappings,
		IDGen:       &mocks.StubIDGenerator{},
		Retrier:     mocks.StubRetrier{},
		Logger:      zerolog.Nop(),
	}, repo)
}

func TestEntityUseCase_CreateMirrorsAccount(t *testing.T) {
	h := newSyncHarness(t)
	repo := mocks.NewStubEntityRepository[*domain.Account]()
	uc := newInlineUseCase[*domain.Account](h, repo)
	ctx := domain.WithTenant(context.Background(), 1)

	account, err := uc.Create(ctx, &domain.Account{Name: "Checking", Kind: "bank", Currency: "EUR"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), account.ID)
	assert.Equal(t, domain.AccountKindBank, account.Kind)
	assert.False(t, account.CreatedAt.IsZero())

	got, err := uc.Get(ctx, account.ID)
	require.NoError(t, err)
	require.NotNil(t, got.ExternalID)
	assert.Equal(t, int64(501), *got.ExternalID)
}

func TestEntityUseCase_CreateStoresCanonicalCurrency(t *testing.T) {
	h := newSyncHarness(t)
	h.client.Seed(domain.ModelCurrency, 3, map[string]any{"name": "EUR"})
	repo := mocks.NewStubEntityRepository[*domain.Account]()
	uc := newInlineUseCase[*domain.Account](h, repo)
	ctx := domain.WithTenant(context.Background(), 1)

	account, err := uc.Create(ctx, &domain.Account{Name: "Checking", Kind: "bank", Currency: "eur"})
	require.NoError(t, err)
	assert.Equal(t, "EUR", account.Currency)

	rec, ok := h.client.Record(domain.ModelLedgerAccount, 501)
	require.True(t, ok)
	assert.Equal(t, int64(3), rec["currency_id"])
	assert.Equal(t, []string{"company"}, h.metrics.Fallbacks)
}

func TestEntityUseCase_CreateRejectsInvalidInput(t *testing.T) {
	h := newSyncHarness(t)
	repo := mocks.NewStubEntityRepository[*domain.Transaction]()
	uc := newInlineUseCase[*domain.Transaction](h, repo)

	_, err := uc.Create(context.Background(), &domain.Transaction{
		AccountID: 1,
		Type:      domain.EntryDebit,
		Amount:    decimal.Zero,
		Currency:  "EUR",
	})

	assert.ErrorIs(t, err, domain.ErrInvalidAmount)
	assert.Equal(t, 0, repo.Len())
	assert.Equal(t, 0, h.client.CallCount())
}

// Primary-store transitions are identical whether or not the ERP is reachable.
func TestEntityUseCase_PrimaryIndependentOfExternalAvailability(t *testing.T) {
	run := func(t *testing.T, externalErr error) (*mocks.StubEntityRepository[*domain.Budget], *syncHarness) {
		h := newSyncHarness(t)
		h.client.Err = externalErr
		repo := mocks.NewStubEntityRepository[*domain.Budget]()
		uc := newInlineUseCase[*domain.Budget](h, repo)
		ctx := context.Background()
		start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

		first, err := uc.Create(ctx, &domain.Budget{Name: "Q1", Currency: "EUR", PeriodStart: start, PeriodEnd: start.AddDate(0, 3, 0)})
		require.NoError(t, err)
		second, err := uc.Create(ctx, &domain.Budget{Name: "Q2", Currency: "EUR", PeriodStart: start, PeriodEnd: start.AddDate(0, 6, 0)})
		require.NoError(t, err)

		_, err = uc.Update(ctx, first.ID, &domain.Budget{Name: "Q1 revised", Currency: "EUR", PeriodStart: start, PeriodEnd: start.AddDate(0, 3, 0)})
		require.NoError(t, err)
		require.NoError(t, uc.Delete(ctx, second.ID))

		return repo, h
	}

	healthyRepo, healthy := run(t, nil)
	downRepo, down := run(t, domain.ErrExternalUnavailable)

	assert.Equal(t, healthyRepo.Len(), downRepo.Len())
	healthyList, err := healthyRepo.List(context.Background(), 1, 10, 0)
	require.NoError(t, err)
	downList, err := downRepo.List(context.Background(), 1, 10, 0)
	require.NoError(t, err)
	require.Len(t, downList, 1)
	assert.Equal(t, healthyList[0].Name, downList[0].Name)

	assert.Equal(t, 1, healthy.mappings.Len())
	assert.Equal(t, 0, down.mappings.Len())
}

func TestEntityUseCase_UpdateOtherTenantIsNotFound(t *testing.T) {
	h := newSyncHarness(t)
	repo := mocks.NewStubEntityRepository[*domain.Portfolio]()
	uc := newInlineUseCase[*domain.Portfolio](h, repo)

	p, err := uc.Create(domain.WithTenant(context.Background(), 1), &domain.Portfolio{Name: "Growth", Currency: "USD"})
	require.NoError(t, err)

	other := domain.WithTenant(context.Background(), 2)
	_, err = uc.Update(other, p.ID, &domain.Portfolio{Name: "Stolen", Currency: "USD"})
	assert.ErrorIs(t, err, domain.ErrEntityNotFound)

	_, err = uc.Get(other, p.ID)
	assert.ErrorIs(t, err, domain.ErrEntityNotFound)
	assert.ErrorIs(t, uc.Delete(other, p.ID), domain.ErrEntityNotFound)
}

func TestEntityUseCase_UpdateKeepsCreatedAt(t *testing.T) {
	h := newSyncHarness(t)
	repo := mocks.NewStubEntityRepository[*domain.Category]()
	uc := newInlineUseCase[*domain.Category](h, repo)
	ctx := context.Background()

	created, err := uc.Create(ctx, &domain.Category{Name: "Food"})
	require.NoError(t, err)
	createdAt := created.CreatedAt

	updated, err := uc.Update(ctx, created.ID, &domain.Category{Name: "Groceries", Kind: "expense"})
	require.NoError(t, err)
	assert.Equal(t, createdAt, updated.CreatedAt)
	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, domain.CategoryKindExpense, updated.Kind)
}

func TestEntityUseCase_SchedulesWithinTransaction(t *testing.T) {
	ctrl := gomock.NewController(t)
	scheduler := mocks.NewMockSyncScheduler(ctrl)
	txManager := mocks.NewMockTransactionManager(ctrl)
	tx := mocks.NewMockTransaction(ctrl)
	h := newSyncHarness(t)

	repo := mocks.NewStubEntityRepository[*domain.Portfolio]()
	uc := usecase.NewEntityUseCase(usecase.SyncDeps{
		TxManager:   txManager,
		Scheduler:   scheduler,
		Coordinator: h.coordinator,
		Mappings:    h.mappings,
		IDGen:       &mocks.StubIDGenerator{},
		Retrier:     mocks.StubRetrier{},
		Logger:      zerolog.Nop(),
	}, usecase.EntityRepository[*domain.Portfolio](repo))

	gomock.InOrder(
		txManager.EXPECT().Begin(gomock.Any()).Return(tx, nil),
		scheduler.EXPECT().Schedule(gomock.Any(), tx, gomock.Any()).DoAndReturn(
			func(_ context.Context, _ usecase.Transaction, task *domain.SyncTask) error {
				assert.Equal(t, domain.OpCreate, task.Operation)
				assert.Equal(t, domain.EntityPortfolio, task.EntityType)
				assert.Equal(t, int64(1), task.EntityID)
				assert.Nil(t, task.Before)
				return nil
			}),
		tx.EXPECT().Commit(gomock.Any()).Return(nil),
		tx.EXPECT().Rollback(gomock.Any()).Return(nil),
		scheduler.EXPECT().Committed(gomock.Any(), gomock.Any()),
	)

	_, err := uc.Create(context.Background(), &domain.Portfolio{Name: "Income", Currency: "EUR"})
	require.NoError(t, err)
}

func TestEntityUseCase_ScheduleFailureRollsBack(t *testing.T) {
	ctrl := gomock.NewController(t)
	scheduler := mocks.NewMockSyncScheduler(ctrl)
	txManager := mocks.NewMockTransactionManager(ctrl)
	tx := mocks.NewMockTransaction(ctrl)
	h := newSyncHarness(t)

	uc := usecase.NewEntityUseCase[*domain.Portfolio](usecase.SyncDeps{
		TxManager:   txManager,
		Scheduler:   scheduler,
		Coordinator: h.coordinator,
		Mappings:    h.mappings,
		IDGen:       &mocks.StubIDGenerator{},
		Retrier:     mocks.StubRetrier{},
		Logger:      zerolog.Nop(),
	}, mocks.NewStubEntityRepository[*domain.Portfolio]())

	txManager.EXPECT().Begin(gomock.Any()).Return(tx, nil)
	scheduler.EXPECT().Schedule(gomock.Any(), tx, gomock.Any()).Return(errors.New("outbox full"))
	tx.EXPECT().Rollback(gomock.Any()).Return(nil)

	_, err := uc.Create(context.Background(), &domain.Portfolio{Name: "Income", Currency: "EUR"})
	assert.EqualError(t, err, "outbox full")
}

func TestEntityUseCase_DeleteDrainsAndCancels(t *testing.T) {
	ctrl := gomock.NewController(t)
	scheduler := mocks.NewMockSyncScheduler(ctrl)
	h := newSyncHarness(t)
	repo := mocks.NewStubEntityRepository[*domain.Portfolio]()

	deps := usecase.SyncDeps{
		TxManager:   mocks.NewStubTransactionManager(),
		Scheduler:   scheduler,
		Coordinator: h.coordinator,
		Mappings:    h.mappings,
		IDGen:       &mocks.StubIDGenerator{},
		Retrier:     mocks.StubRetrier{},
		Logger:      zerolog.Nop(),
	}
	uc := usecase.NewEntityUseCase[*domain.Portfolio](deps, repo)

	scheduler.EXPECT().Schedule(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
	scheduler.EXPECT().Committed(gomock.Any(), gomock.Any())
	p, err := uc.Create(context.Background(), &domain.Portfolio{Name: "Old", Currency: "EUR"})
	require.NoError(t, err)

	key := domain.EntityKey{Type: domain.EntityPortfolio, ID: p.ID}
	gomock.InOrder(
		scheduler.EXPECT().Drain(gomock.Any(), key).Return(context.DeadlineExceeded),
		scheduler.EXPECT().Cancel(gomock.Any(), gomock.Any(), key).Return(nil),
	)

	require.NoError(t, uc.Delete(context.Background(), p.ID))
	assert.Equal(t, 0, repo.Len())
}

func TestEntityUseCase_ListPaginates(t *testing.T) {
	h := newSyncHarness(t)
	repo := mocks.NewStubEntityRepository[*domain.Portfolio]()
	uc := newInlineUseCase[*domain.Portfolio](h, repo)
	ctx := context.Background()

	for _, name := range []string{"A", "B", "C"} {
		_, err := uc.Create(ctx, &domain.Portfolio{Name: name, Currency: "EUR"})
		require.NoError(t, err)
	}

	page, err := uc.List(ctx, 2, 1)
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, "B", page[0].Name)
	assert.Equal(t, "C", page[1].Name)
}
