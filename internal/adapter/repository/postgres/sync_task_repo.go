package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/iho/ledgersync/internal/domain"
	"github.com/iho/ledgersync/internal/usecase"
)

const taskColumns = `id, seq, entity_type, entity_id, tenant_id, operation, before, after,
	status, outcome, detail, attempts, claimed_by, created_at, claimed_at, finished_at`

// SyncTaskRepository implements usecase.SyncTaskRepository on the
// sync_tasks outbox table.
type SyncTaskRepository struct {
	db DBTX
}

// NewSyncTaskRepository creates a new SyncTaskRepository.
func NewSyncTaskRepository(db DBTX) *SyncTaskRepository {
	return &SyncTaskRepository{db: db}
}

// taskRow is a sync_tasks row with undecoded snapshots.
type taskRow struct {
	ID         string               `db:"id"`
	Seq        int64                `db:"seq"`
	EntityType domain.EntityType    `db:"entity_type"`
	EntityID   int64                `db:"entity_id"`
	TenantID   int64                `db:"tenant_id"`
	Operation  domain.SyncOperation `db:"operation"`
	Before     []byte               `db:"before"`
	After      []byte               `db:"after"`
	Status     domain.TaskStatus    `db:"status"`
	Outcome    domain.SyncOutcome   `db:"outcome"`
	Detail     string               `db:"detail"`
	Attempts   int                  `db:"attempts"`
	ClaimedBy  string               `db:"claimed_by"`
	CreatedAt  time.Time            `db:"created_at"`
	ClaimedAt  *time.Time           `db:"claimed_at"`
	FinishedAt *time.Time           `db:"finished_at"`
}

func (row *taskRow) toTask() (*domain.SyncTask, error) {
	before, err := domain.DecodeSnapshot(row.EntityType, row.Before)
	if err != nil {
		return nil, err
	}
	after, err := domain.DecodeSnapshot(row.EntityType, row.After)
	if err != nil {
		return nil, err
	}

	return &domain.SyncTask{
		ID:         row.ID,
		Seq:        row.Seq,
		EntityType: row.EntityType,
		EntityID:   row.EntityID,
		TenantID:   row.TenantID,
		Operation:  row.Operation,
		Before:     before,
		After:      after,
		Status:     row.Status,
		Outcome:    row.Outcome,
		Detail:     row.Detail,
		Attempts:   row.Attempts,
		ClaimedBy:  row.ClaimedBy,
		CreatedAt:  row.CreatedAt,
		ClaimedAt:  row.ClaimedAt,
		FinishedAt: row.FinishedAt,
	}, nil
}

// Create stores a pending task within the primary transaction and assigns
// its sequence number.
func (r *SyncTaskRepository) Create(ctx context.Context, tx usecase.Transaction, task *domain.SyncTask) error {
	before, err := domain.EncodeSnapshot(task.Before)
	if err != nil {
		return err
	}
	after, err := domain.EncodeSnapshot(task.After)
	if err != nil {
		return err
	}

	return querier(r.db, tx).QueryRow(ctx, `
		INSERT INTO sync_tasks (id, entity_type, entity_id, tenant_id, operation, before, after, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING seq`,
		task.ID, task.EntityType, task.EntityID, task.TenantID, task.Operation,
		before, after, domain.TaskPending, task.CreatedAt,
	).Scan(&task.Seq)
}

// Claim marks up to limit pending tasks as processing by worker. A task is
// only claimable while no earlier task of its entity key is unfinished, so
// tasks of one key are handed out one at a time in seq order.
func (r *SyncTaskRepository) Claim(ctx context.Context, worker string, limit int) ([]*domain.SyncTask, error) {
	rows, err := r.db.Query(ctx, `
		UPDATE sync_tasks SET
			status = 'processing',
			claimed_by = $1,
			claimed_at = NOW(),
			attempts = attempts + 1
		WHERE id IN (
			SELECT t.id FROM sync_tasks t
			WHERE t.status = 'pending'
			  AND NOT EXISTS (
				SELECT 1 FROM sync_tasks p
				WHERE p.entity_type = t.entity_type
				  AND p.entity_id = t.entity_id
				  AND p.seq < t.seq
				  AND p.status IN ('pending', 'processing')
			  )
			ORDER BY t.seq
			LIMIT $2
			FOR UPDATE SKIP LOCKED
		)
		RETURNING `+taskColumns,
		worker, limit)
	if err != nil {
		return nil, err
	}

	tasks, err := collectTasks(rows)
	if err != nil {
		return nil, err
	}
	sortBySeq(tasks)
	return tasks, nil
}

// Finish records the outcome of a processing task.
func (r *SyncTaskRepository) Finish(ctx context.Context, id string, status domain.TaskStatus, outcome domain.SyncOutcome, detail string, at time.Time) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE sync_tasks SET status = $2, outcome = $3, detail = $4, finished_at = $5
		WHERE id = $1 AND status = 'processing'`,
		id, status, outcome, detail, at)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTaskNotFound
	}
	return nil
}

// CancelPending cancels the pending tasks of a key within tx.
func (r *SyncTaskRepository) CancelPending(ctx context.Context, tx usecase.Transaction, key domain.EntityKey) (int64, error) {
	tag, err := querier(r.db, tx).Exec(ctx, `
		UPDATE sync_tasks SET status = 'cancelled', finished_at = NOW()
		WHERE entity_type = $1 AND entity_id = $2 AND status = 'pending'`,
		key.Type, key.ID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// CountUnfinished counts pending and processing tasks of a key.
func (r *SyncTaskRepository) CountUnfinished(ctx context.Context, key domain.EntityKey) (int, error) {
	var n int
	err := r.db.QueryRow(ctx, `
		SELECT COUNT(*) FROM sync_tasks
		WHERE entity_type = $1 AND entity_id = $2 AND status IN ('pending', 'processing')`,
		key.Type, key.ID).Scan(&n)
	return n, err
}

// ListByEntity returns the task history of a key, newest first.
func (r *SyncTaskRepository) ListByEntity(ctx context.Context, key domain.EntityKey, limit, offset int) ([]*domain.SyncTask, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+taskColumns+` FROM sync_tasks
		WHERE entity_type = $1 AND entity_id = $2
		ORDER BY seq DESC
		LIMIT $3 OFFSET $4`,
		key.Type, key.ID, limit, offset)
	if err != nil {
		return nil, err
	}
	return collectTasks(rows)
}

// ReleaseStale returns processing tasks claimed before the cutoff to the
// pending state.
func (r *SyncTaskRepository) ReleaseStale(ctx context.Context, claimedBefore time.Time) (int64, error) {
	tag, err := r.db.Exec(ctx, `
		UPDATE sync_tasks SET status = 'pending', claimed_by = '', claimed_at = NULL
		WHERE status = 'processing' AND claimed_at < $1`,
		claimedBefore)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// DeleteFinished deletes finished tasks older than the cutoff.
func (r *SyncTaskRepository) DeleteFinished(ctx context.Context, finishedBefore time.Time) (int64, error) {
	tag, err := r.db.Exec(ctx, `
		DELETE FROM sync_tasks
		WHERE status IN ('done', 'failed', 'cancelled') AND finished_at < $1`,
		finishedBefore)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func collectTasks(rows pgx.Rows) ([]*domain.SyncTask, error) {
	taskRows, err := pgx.CollectRows(rows, pgx.RowToAddrOfStructByName[taskRow])
	if err != nil {
		return nil, err
	}

	tasks := make([]*domain.SyncTask, 0, len(taskRows))
	for _, row := range taskRows {
		task, err := row.toTask()
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}
	return tasks, nil
}

// sortBySeq orders tasks returned by UPDATE ... RETURNING, which carries no
// ordering guarantee.
func sortBySeq(tasks []*domain.SyncTask) {
	for i := 1; i < len(tasks); i++ {
		for j := i; j > 0 && tasks[j].Seq < tasks[j-1].Seq; j-- {
			tasks[j], tasks[j-1] = tasks[j-1], tasks[j]
		}
	}
}
