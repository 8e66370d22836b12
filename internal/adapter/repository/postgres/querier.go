package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/iho/ledgersync/internal/domain"
	"github.com/iho/ledgersync/internal/usecase"
)

// PostgreSQL error code mapped to domain errors.
const pgErrForeignKeyViolation = "23503"

// DBTX is satisfied by *pgxpool.Pool and pgx.Tx.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// querier returns the transaction behind tx, or db when tx is nil.
func querier(db DBTX, tx usecase.Transaction) DBTX {
	if tx == nil {
		return db
	}
	return tx.(*Tx).PgxTx()
}

// mapWriteError translates foreign key violations. On delete they mean the
// row is still referenced, otherwise a referenced row does not exist.
func mapWriteError(err error, deleting bool) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != pgErrForeignKeyViolation {
		return err
	}

	if deleting {
		return fmt.Errorf("%w: referenced by %s", domain.ErrEntityInUse, pgErr.TableName)
	}
	return fmt.Errorf("%w: %s", domain.ErrMissingReference, pgErr.ConstraintName)
}
