package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/iho/ledgersync/internal/domain"
)

const mappingColumns = "id, local_type, local_id, external_type, external_id, created_at"

// MappingRepository implements usecase.MappingStore on SQLite.
type MappingRepository struct {
	db  *sql.DB
	now func() time.Time
}

// NewMappingRepository creates a new MappingRepository.
func NewMappingRepository(db *sql.DB) *MappingRepository {
	return &MappingRepository{
		db:  db,
		now: func() time.Time { return time.Now().UTC() },
	}
}

// Put records a correspondence. Re-recording the identical pair returns the
// stored record; any other clash is ErrMappingConflict.
func (r *MappingRepository) Put(ctx context.Context, localType domain.EntityType, localID int64, externalType string, externalID int64) (*domain.MappingRecord, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO sync_mappings (local_type, local_id, external_type, external_id, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT DO NOTHING`,
		string(localType), localID, externalType, externalID, r.now())
	if err != nil {
		return nil, fmt.Errorf("insert mapping: %w", err)
	}

	inserted, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}

	existing, err := r.query(ctx, `
		SELECT `+mappingColumns+` FROM sync_mappings
		WHERE (local_type = ? AND local_id = ?) OR (external_type = ? AND external_id = ?)`,
		string(localType), localID, externalType, externalID)
	if err != nil {
		return nil, err
	}

	if len(existing) == 1 && existing[0].Same(localType, localID, externalType, externalID) {
		return existing[0], nil
	}
	if inserted == 1 {
		return nil, fmt.Errorf("inserted mapping %s:%d not readable", localType, localID)
	}

	if len(existing) == 0 {
		return nil, fmt.Errorf("%w: %s:%d <-> %s:%d", domain.ErrMappingConflict, localType, localID, externalType, externalID)
	}
	rec := existing[0]
	return nil, fmt.Errorf("%w: %s:%d <-> %s:%d clashes with %s:%d <-> %s:%d",
		domain.ErrMappingConflict, localType, localID, externalType, externalID,
		rec.LocalType, rec.LocalID, rec.ExternalType, rec.ExternalID)
}

// ResolveExternal returns the ERP id of a local entity.
func (r *MappingRepository) ResolveExternal(ctx context.Context, localType domain.EntityType, localID int64) (int64, bool, error) {
	var id int64
	err := r.db.QueryRowContext(ctx,
		`SELECT external_id FROM sync_mappings WHERE local_type = ? AND local_id = ?`,
		string(localType), localID).Scan(&id)
	return found(id, err)
}

// ResolveLocal returns the local id of an ERP record.
func (r *MappingRepository) ResolveLocal(ctx context.Context, externalType string, externalID int64) (int64, bool, error) {
	var id int64
	err := r.db.QueryRowContext(ctx,
		`SELECT local_id FROM sync_mappings WHERE external_type = ? AND external_id = ?`,
		externalType, externalID).Scan(&id)
	return found(id, err)
}

// GetByLocal returns the full record of a local entity.
func (r *MappingRepository) GetByLocal(ctx context.Context, localType domain.EntityType, localID int64) (*domain.MappingRecord, error) {
	recs, err := r.query(ctx,
		`SELECT `+mappingColumns+` FROM sync_mappings WHERE local_type = ? AND local_id = ?`,
		string(localType), localID)
	if err != nil {
		return nil, err
	}
	if len(recs) == 0 {
		return nil, domain.ErrMappingNotFound
	}
	return recs[0], nil
}

// ListByLocalType lists the records of one local type ordered by local id.
func (r *MappingRepository) ListByLocalType(ctx context.Context, localType domain.EntityType, limit, offset int) ([]*domain.MappingRecord, error) {
	return r.query(ctx,
		`SELECT `+mappingColumns+` FROM sync_mappings WHERE local_type = ? ORDER BY local_id LIMIT ? OFFSET ?`,
		string(localType), limit, offset)
}

// Delete removes the record of a local entity.
func (r *MappingRepository) Delete(ctx context.Context, localType domain.EntityType, localID int64) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM sync_mappings WHERE local_type = ? AND local_id = ?`,
		string(localType), localID)
	return err
}

func (r *MappingRepository) query(ctx context.Context, query string, args ...any) ([]*domain.MappingRecord, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query mappings: %w", err)
	}
	defer rows.Close()

	var recs []*domain.MappingRecord
	for rows.Next() {
		var (
			rec       domain.MappingRecord
			localType string
		)
		if err := rows.Scan(&rec.ID, &localType, &rec.LocalID, &rec.ExternalType, &rec.ExternalID, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan mapping: %w", err)
		}
		rec.LocalType = domain.EntityType(localType)
		recs = append(recs, &rec)
	}
	return recs, rows.Err()
}

func found(id int64, err error) (int64, bool, error) {
	switch {
	case err == nil:
		return id, true, nil
	case errors.Is(err, sql.ErrNoRows):
		return 0, false, nil
	default:
		return 0, false, err
	}
}
