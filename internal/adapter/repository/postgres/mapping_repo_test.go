package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"

	"github.com/iho/ledgersync/internal/domain"
)

var mappingCols = []string{"id", "local_type", "local_id", "external_type", "external_id", "created_at"}

func TestMappingPutInserts(t *testing.T) {
	mock := newMockPool(t)
	now := time.Now()
	mock.ExpectQuery("INSERT INTO sync_mappings").
		WithArgs(domain.EntityAccount, int64(1), domain.ModelLedgerAccount, int64(501)).
		WillReturnRows(pgxmock.NewRows(mappingCols).
			AddRow(int64(9), domain.EntityAccount, int64(1), domain.ModelLedgerAccount, int64(501), now))

	rec, err := NewMappingRepository(mock).Put(context.Background(), domain.EntityAccount, 1, domain.ModelLedgerAccount, 501)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.ID != 9 || rec.ExternalID != 501 {
		t.Fatalf("unexpected record: %+v", rec)
	}
	assertExpectations(t, mock)
}

func TestMappingPutIdenticalPairIsIdempotent(t *testing.T) {
	mock := newMockPool(t)
	now := time.Now()
	mock.ExpectQuery("INSERT INTO sync_mappings").
		WillReturnRows(pgxmock.NewRows(mappingCols))
	mock.ExpectQuery("SELECT (.+) FROM sync_mappings").
		WithArgs(domain.EntityAccount, int64(1), domain.ModelLedgerAccount, int64(501)).
		WillReturnRows(pgxmock.NewRows(mappingCols).
			AddRow(int64(9), domain.EntityAccount, int64(1), domain.ModelLedgerAccount, int64(501), now))

	rec, err := NewMappingRepository(mock).Put(context.Background(), domain.EntityAccount, 1, domain.ModelLedgerAccount, 501)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.ID != 9 {
		t.Fatalf("expected stored record, got %+v", rec)
	}
	assertExpectations(t, mock)
}

func TestMappingPutConflict(t *testing.T) {
	mock := newMockPool(t)
	now := time.Now()
	mock.ExpectQuery("INSERT INTO sync_mappings").
		WillReturnRows(pgxmock.NewRows(mappingCols))
	mock.ExpectQuery("SELECT (.+) FROM sync_mappings").
		WillReturnRows(pgxmock.NewRows(mappingCols).
			AddRow(int64(9), domain.EntityAccount, int64(1), domain.ModelLedgerAccount, int64(777), now))

	_, err := NewMappingRepository(mock).Put(context.Background(), domain.EntityAccount, 1, domain.ModelLedgerAccount, 501)
	if !errors.Is(err, domain.ErrMappingConflict) {
		t.Fatalf("expected mapping conflict, got %v", err)
	}
	assertExpectations(t, mock)
}

func TestMappingResolveExternal(t *testing.T) {
	mock := newMockPool(t)
	mock.ExpectQuery("SELECT external_id FROM sync_mappings").
		WithArgs(domain.EntityCategory, int64(4)).
		WillReturnRows(pgxmock.NewRows([]string{"external_id"}).AddRow(int64(88)))
	mock.ExpectQuery("SELECT external_id FROM sync_mappings").
		WithArgs(domain.EntityCategory, int64(5)).
		WillReturnRows(pgxmock.NewRows([]string{"external_id"}))

	repo := NewMappingRepository(mock)

	id, ok, err := repo.ResolveExternal(context.Background(), domain.EntityCategory, 4)
	if err != nil || !ok || id != 88 {
		t.Fatalf("expected 88, got id=%d ok=%v err=%v", id, ok, err)
	}

	_, ok, err = repo.ResolveExternal(context.Background(), domain.EntityCategory, 5)
	if err != nil || ok {
		t.Fatalf("expected not found, got ok=%v err=%v", ok, err)
	}
	assertExpectations(t, mock)
}

func TestMappingResolveLocalPropagatesErrors(t *testing.T) {
	mock := newMockPool(t)
	dbErr := errors.New("connection reset")
	mock.ExpectQuery("SELECT local_id FROM sync_mappings").WillReturnError(dbErr)

	_, _, err := NewMappingRepository(mock).ResolveLocal(context.Background(), domain.ModelBudget, 3)
	if !errors.Is(err, dbErr) {
		t.Fatalf("expected db error, got %v", err)
	}
}

func TestMappingGetByLocalNotFound(t *testing.T) {
	mock := newMockPool(t)
	mock.ExpectQuery("SELECT (.+) FROM sync_mappings").
		WillReturnRows(pgxmock.NewRows(mappingCols))

	_, err := NewMappingRepository(mock).GetByLocal(context.Background(), domain.EntityBudget, 2)
	if !errors.Is(err, domain.ErrMappingNotFound) {
		t.Fatalf("expected mapping not found, got %v", err)
	}
}

func TestMappingDeleteMissingIsNoop(t *testing.T) {
	mock := newMockPool(t)
	mock.ExpectExec("DELETE FROM sync_mappings").
		WithArgs(domain.EntityBudget, int64(2)).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	if err := NewMappingRepository(mock).Delete(context.Background(), domain.EntityBudget, 2); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertExpectations(t, mock)
}
