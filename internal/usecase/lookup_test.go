package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/iho/ledgersync/internal/domain"
	"github.com/iho/ledgersync/internal/translator"
	"github.com/iho/ledgersync/internal/usecase"
	"github.com/iho/ledgersync/internal/usecase/mocks"
)

func TestLookup_Company(t *testing.T) {
	h := newSyncHarness(t)
	ctx := context.Background()

	res, err := h.lookup.Company(ctx, 2)
	require.NoError(t, err)
	assert.True(t, res.Defaulted)
	assert.Equal(t, usecase.DefaultExternalID, res.ID)
	assert.Contains(t, res.Reason, "tenant 2")

	h.mapEntity(t, domain.EntityCompany, 2, domain.ModelCompany, 42)
	res, err = h.lookup.Company(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, domain.Resolved(42), res)
}

func TestLookup_ClearingAccountFallbackChain(t *testing.T) {
	ctx := context.Background()

	t.Run("by code", func(t *testing.T) {
		h := newSyncHarness(t)
		h.client.Seed(domain.ModelLedgerAccount, 10, map[string]any{"account_type": "asset_current", "company_id": int64(1)})
		h.client.Seed(domain.ModelLedgerAccount, 20, map[string]any{"code": "499000", "company_id": int64(1)})

		res, err := h.lookup.ClearingAccount(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, domain.Resolved(20), res)
	})

	t.Run("any current asset", func(t *testing.T) {
		h := newSyncHarness(t)
		h.client.Seed(domain.ModelLedgerAccount, 10, map[string]any{"account_type": "asset_current", "company_id": int64(1)})

		res, err := h.lookup.ClearingAccount(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, domain.Resolved(10), res)
	})

	t.Run("default", func(t *testing.T) {
		h := newSyncHarness(t)

		res, err := h.lookup.ClearingAccount(ctx, 1)
		require.NoError(t, err)
		assert.True(t, res.Defaulted)
		assert.Equal(t, int64(1), res.ID)
		assert.Equal(t, []string{"clearing_account"}, h.metrics.Fallbacks)
	})
}

func TestLookup_CachesResolvedReferences(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := mocks.NewMockExternalClient(ctrl)
	mappings := mocks.NewMockMappingStore(ctrl)

	client.EXPECT().
		Search(gomock.Any(), domain.ModelCurrency, []domain.Condition{domain.Where("name", "USD")}, gomock.Any()).
		Return([]map[string]any{{"id": float64(2)}}, nil).
		Times(1)

	lookup := usecase.NewLookup(mappings, client, mocks.NewMapReferenceCache(), mocks.NoopMetrics{}, usecase.LookupDefaults{}, zerolog.Nop())

	for i := 0; i < 3; i++ {
		res, err := lookup.Currency(context.Background(), "USD")
		require.NoError(t, err)
		assert.Equal(t, domain.Resolved(2), res)
	}
}

func TestLookup_SearchErrorPropagates(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := mocks.NewMockExternalClient(ctrl)
	mappings := mocks.NewMockMappingStore(ctrl)

	client.EXPECT().
		Search(gomock.Any(), domain.ModelJournal, gomock.Any(), gomock.Any()).
		Return(nil, domain.ErrExternalUnavailable)

	lookup := usecase.NewLookup(mappings, client, mocks.NewMapReferenceCache(), mocks.NoopMetrics{}, usecase.LookupDefaults{JournalID: 5}, zerolog.Nop())

	_, err := lookup.Journal(context.Background(), 1, "general")
	assert.True(t, errors.Is(err, domain.ErrExternalUnavailable))
}

func TestLookup_ContextResolvesRefs(t *testing.T) {
	h := newSyncHarness(t)
	h.mapEntity(t, domain.EntityAccount, 3, domain.ModelLedgerAccount, 503)
	ctx := context.Background()

	category := int64(8)
	ev := &domain.ForecastEvent{ID: 1, TenantID: 1, AccountID: 3, CategoryID: &category}
	needs := translator.For(ev).Needs(ev)

	c, err := h.lookup.Context(ctx, ev, needs)
	require.NoError(t, err)

	id, ok := c.Ref(domain.EntityAccount, 3)
	assert.True(t, ok)
	assert.Equal(t, int64(503), id)
	_, ok = c.Ref(domain.EntityCategory, 8)
	assert.False(t, ok, "optional unmapped category stays unresolved")

	ev.AccountID = 4
	_, err = h.lookup.Context(ctx, ev, translator.For(ev).Needs(ev))
	assert.True(t, errors.Is(err, domain.ErrReferenceUnresolved))
}
