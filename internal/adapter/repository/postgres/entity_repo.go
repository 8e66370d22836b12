package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/iho/ledgersync/internal/domain"
	"github.com/iho/ledgersync/internal/usecase"
)

// entityPtr constrains T to a pointer to an entity struct E.
type entityPtr[E any] interface {
	*E
	domain.Entity
}

// table describes how one entity type is stored. columns are the
// client-settable columns in the order values returns them.
type table[T domain.Entity] struct {
	name    string
	columns []string
	values  func(T) []any
}

// EntityRepository implements usecase.EntityRepository for one table.
type EntityRepository[E any, T entityPtr[E]] struct {
	db    DBTX
	table table[T]

	insertSQL    string
	updateSQL    string
	deleteSQL    string
	getSQL       string
	getLockedSQL string
	listSQL      string
}

func newEntityRepository[E any, T entityPtr[E]](db DBTX, t table[T]) *EntityRepository[E, T] {
	n := len(t.columns)

	placeholders := make([]string, n)
	assignments := make([]string, n)
	for i, col := range t.columns {
		placeholders[i] = fmt.Sprintf("$%d", i+2)
		assignments[i] = fmt.Sprintf("%s = $%d", col, i+2)
	}
	cols := strings.Join(t.columns, ", ")
	selectSQL := fmt.Sprintf("SELECT id, tenant_id, %s, created_at, updated_at FROM %s", cols, t.name)

	return &EntityRepository[E, T]{
		db:    db,
		table: t,
		insertSQL: fmt.Sprintf(
			"INSERT INTO %s (tenant_id, %s, created_at, updated_at) VALUES ($1, %s, $%d, $%d) RETURNING id",
			t.name, cols, strings.Join(placeholders, ", "), n+2, n+3),
		updateSQL: fmt.Sprintf(
			"UPDATE %s SET %s, updated_at = $%d WHERE id = $1",
			t.name, strings.Join(assignments, ", "), n+2),
		deleteSQL:    fmt.Sprintf("DELETE FROM %s WHERE id = $1", t.name),
		getSQL:       selectSQL + " WHERE id = $1",
		getLockedSQL: selectSQL + " WHERE id = $1 FOR UPDATE",
		listSQL:      selectSQL + " WHERE tenant_id = $1 ORDER BY id LIMIT $2 OFFSET $3",
	}
}

// Create inserts the entity and assigns its generated id.
func (r *EntityRepository[E, T]) Create(ctx context.Context, tx usecase.Transaction, entity T) error {
	times := entity.Times()
	args := append([]any{entity.GetTenantID()}, r.table.values(entity)...)
	args = append(args, times.CreatedAt, times.UpdatedAt)

	var id int64
	if err := querier(r.db, tx).QueryRow(ctx, r.insertSQL, args...).Scan(&id); err != nil {
		return mapWriteError(err, false)
	}

	entity.Assign(id, entity.GetTenantID())
	return nil
}

// Update overwrites the client-settable columns.
func (r *EntityRepository[E, T]) Update(ctx context.Context, tx usecase.Transaction, entity T) error {
	args := append([]any{entity.GetID()}, r.table.values(entity)...)
	args = append(args, entity.Times().UpdatedAt)

	tag, err := querier(r.db, tx).Exec(ctx, r.updateSQL, args...)
	if err != nil {
		return mapWriteError(err, false)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrEntityNotFound
	}
	return nil
}

// Delete removes the row.
func (r *EntityRepository[E, T]) Delete(ctx context.Context, tx usecase.Transaction, id int64) error {
	tag, err := querier(r.db, tx).Exec(ctx, r.deleteSQL, id)
	if err != nil {
		return mapWriteError(err, true)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrEntityNotFound
	}
	return nil
}

// GetByID retrieves an entity by ID.
func (r *EntityRepository[E, T]) GetByID(ctx context.Context, id int64) (T, error) {
	return r.getOne(ctx, r.db, r.getSQL, id)
}

// GetByIDForUpdate retrieves an entity by ID with a FOR UPDATE lock.
func (r *EntityRepository[E, T]) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id int64) (T, error) {
	return r.getOne(ctx, querier(r.db, tx), r.getLockedSQL, id)
}

// List lists the entities of a tenant ordered by id.
func (r *EntityRepository[E, T]) List(ctx context.Context, tenantID int64, limit, offset int) ([]T, error) {
	rows, err := r.db.Query(ctx, r.listSQL, tenantID, limit, offset)
	if err != nil {
		return nil, err
	}

	items, err := pgx.CollectRows(rows, pgx.RowToAddrOfStructByName[E])
	if err != nil {
		return nil, err
	}

	out := make([]T, len(items))
	for i, item := range items {
		out[i] = T(item)
	}
	return out, nil
}

func (r *EntityRepository[E, T]) getOne(ctx context.Context, q DBTX, sql string, id int64) (T, error) {
	rows, err := q.Query(ctx, sql, id)
	if err != nil {
		return nil, err
	}

	item, err := pgx.CollectExactlyOneRow(rows, pgx.RowToAddrOfStructByName[E])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrEntityNotFound
		}
		return nil, err
	}
	return T(item), nil
}
