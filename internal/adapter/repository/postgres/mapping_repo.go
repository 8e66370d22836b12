package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/iho/ledgersync/internal/domain"
)

const mappingColumns = "id, local_type, local_id, external_type, external_id, created_at"

// MappingRepository implements usecase.MappingStore. The two unique
// constraints on sync_mappings keep the correspondence one-to-one.
type MappingRepository struct {
	db DBTX
}

// NewMappingRepository creates a new MappingRepository.
func NewMappingRepository(db DBTX) *MappingRepository {
	return &MappingRepository{db: db}
}

// Put records a correspondence. Re-recording the identical pair returns the
// stored record; any other clash is ErrMappingConflict.
func (r *MappingRepository) Put(ctx context.Context, localType domain.EntityType, localID int64, externalType string, externalID int64) (*domain.MappingRecord, error) {
	rows, err := r.db.Query(ctx, `
		INSERT INTO sync_mappings (local_type, local_id, external_type, external_id)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT DO NOTHING
		RETURNING `+mappingColumns,
		localType, localID, externalType, externalID)
	if err != nil {
		return nil, err
	}

	rec, err := pgx.CollectExactlyOneRow(rows, pgx.RowToAddrOfStructByName[domain.MappingRecord])
	if err == nil {
		return rec, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	rows, err = r.db.Query(ctx, `
		SELECT `+mappingColumns+` FROM sync_mappings
		WHERE (local_type = $1 AND local_id = $2) OR (external_type = $3 AND external_id = $4)`,
		localType, localID, externalType, externalID)
	if err != nil {
		return nil, err
	}
	existing, err := pgx.CollectRows(rows, pgx.RowToAddrOfStructByName[domain.MappingRecord])
	if err != nil {
		return nil, err
	}

	if len(existing) == 1 && existing[0].Same(localType, localID, externalType, externalID) {
		return existing[0], nil
	}
	return nil, conflict(localType, localID, externalType, externalID, existing)
}

// ResolveExternal returns the ERP id of a local entity.
func (r *MappingRepository) ResolveExternal(ctx context.Context, localType domain.EntityType, localID int64) (int64, bool, error) {
	var id int64
	err := r.db.QueryRow(ctx,
		`SELECT external_id FROM sync_mappings WHERE local_type = $1 AND local_id = $2`,
		localType, localID).Scan(&id)
	return found(id, err)
}

// ResolveLocal returns the local id of an ERP record.
func (r *MappingRepository) ResolveLocal(ctx context.Context, externalType string, externalID int64) (int64, bool, error) {
	var id int64
	err := r.db.QueryRow(ctx,
		`SELECT local_id FROM sync_mappings WHERE external_type = $1 AND external_id = $2`,
		externalType, externalID).Scan(&id)
	return found(id, err)
}

// GetByLocal returns the full record of a local entity.
func (r *MappingRepository) GetByLocal(ctx context.Context, localType domain.EntityType, localID int64) (*domain.MappingRecord, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+mappingColumns+` FROM sync_mappings WHERE local_type = $1 AND local_id = $2`,
		localType, localID)
	if err != nil {
		return nil, err
	}

	rec, err := pgx.CollectExactlyOneRow(rows, pgx.RowToAddrOfStructByName[domain.MappingRecord])
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrMappingNotFound
	}
	return rec, err
}

// ListByLocalType lists the records of one local type ordered by local id.
func (r *MappingRepository) ListByLocalType(ctx context.Context, localType domain.EntityType, limit, offset int) ([]*domain.MappingRecord, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+mappingColumns+` FROM sync_mappings WHERE local_type = $1 ORDER BY local_id LIMIT $2 OFFSET $3`,
		localType, limit, offset)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowToAddrOfStructByName[domain.MappingRecord])
}

// Delete removes the record of a local entity. Deleting a missing record is
// not an error.
func (r *MappingRepository) Delete(ctx context.Context, localType domain.EntityType, localID int64) error {
	_, err := r.db.Exec(ctx,
		`DELETE FROM sync_mappings WHERE local_type = $1 AND local_id = $2`,
		localType, localID)
	return err
}

func found(id int64, err error) (int64, bool, error) {
	switch {
	case err == nil:
		return id, true, nil
	case errors.Is(err, pgx.ErrNoRows):
		return 0, false, nil
	default:
		return 0, false, err
	}
}

func conflict(localType domain.EntityType, localID int64, externalType string, externalID int64, existing []*domain.MappingRecord) error {
	if len(existing) == 0 {
		return fmt.Errorf("%w: %s:%d <-> %s:%d was claimed concurrently",
			domain.ErrMappingConflict, localType, localID, externalType, externalID)
	}
	rec := existing[0]
	return fmt.Errorf("%w: %s:%d <-> %s:%d clashes with %s:%d <-> %s:%d",
		domain.ErrMappingConflict, localType, localID, externalType, externalID,
		rec.LocalType, rec.LocalID, rec.ExternalType, rec.ExternalID)
}
