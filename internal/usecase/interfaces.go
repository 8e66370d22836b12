package usecase

import (
	"context"
	"time"

	"github.com/iho/ledgersync/internal/domain"
)

//go:generate mockgen -destination=mocks/mock_interfaces.go -package=mocks github.com/iho/ledgersync/internal/usecase MappingStore,ExternalClient,SyncTaskRepository,SyncScheduler,TransactionManager,Transaction

// EntityRepository defines primary-store access for one entity type.
type EntityRepository[T domain.Entity] interface {
	// Create inserts the entity and sets its ID.
	Create(ctx context.Context, tx Transaction, entity T) error
	Update(ctx context.Context, tx Transaction, entity T) error
	Delete(ctx context.Context, tx Transaction, id int64) error
	GetByID(ctx context.Context, id int64) (T, error)
	GetByIDForUpdate(ctx context.Context, tx Transaction, id int64) (T, error)
	List(ctx context.Context, tenantID int64, limit, offset int) ([]T, error)
}

// MappingStore is the bidirectional identifier mapping between local
// entities and ERP records.
type MappingStore interface {
	// Put records a mapping. It is idempotent for an identical pair and fails
	// with domain.ErrMappingConflict when either side already maps elsewhere.
	Put(ctx context.Context, localType domain.EntityType, localID int64, externalType string, externalID int64) (*domain.MappingRecord, error)
	// ResolveExternal returns false when the entity was never synchronized.
	ResolveExternal(ctx context.Context, localType domain.EntityType, localID int64) (int64, bool, error)
	ResolveLocal(ctx context.Context, externalType string, externalID int64) (int64, bool, error)
	GetByLocal(ctx context.Context, localType domain.EntityType, localID int64) (*domain.MappingRecord, error)
	ListByLocalType(ctx context.Context, localType domain.EntityType, limit, offset int) ([]*domain.MappingRecord, error)
	Delete(ctx context.Context, localType domain.EntityType, localID int64) error
}

// ExternalClient is the ERP RPC surface.
type ExternalClient interface {
	Create(ctx context.Context, model string, values map[string]any) (int64, error)
	Read(ctx context.Context, model string, ids []int64, fields []string) ([]map[string]any, error)
	Write(ctx context.Context, model string, id int64, values map[string]any) error
	Unlink(ctx context.Context, model string, ids []int64) error
	Search(ctx context.Context, model string, filter []domain.Condition, opts domain.SearchOptions) ([]map[string]any, error)
	Call(ctx context.Context, model, method string, args ...any) (any, error)
}

// SyncTaskRepository defines data access for the sync task outbox.
type SyncTaskRepository interface {
	Create(ctx context.Context, tx Transaction, task *domain.SyncTask) error
	// Claim marks up to limit pending tasks as processing by worker, in
	// sequence order, skipping keys with an earlier unfinished task.
	Claim(ctx context.Context, worker string, limit int) ([]*domain.SyncTask, error)
	Finish(ctx context.Context, id string, status domain.TaskStatus, outcome domain.SyncOutcome, detail string, at time.Time) error
	CancelPending(ctx context.Context, tx Transaction, key domain.EntityKey) (int64, error)
	CountUnfinished(ctx context.Context, key domain.EntityKey) (int, error)
	ListByEntity(ctx context.Context, key domain.EntityKey, limit, offset int) ([]*domain.SyncTask, error)
	ReleaseStale(ctx context.Context, claimedBefore time.Time) (int64, error)
	DeleteFinished(ctx context.Context, finishedBefore time.Time) (int64, error)
}

// SyncScheduler decides when the external phase of a write runs.
type SyncScheduler interface {
	// Schedule is called inside the primary transaction.
	Schedule(ctx context.Context, tx Transaction, task *domain.SyncTask) error
	// Committed is called once the primary transaction committed.
	Committed(ctx context.Context, task *domain.SyncTask)
	// Cancel drops tasks not yet started for key, inside the primary transaction.
	Cancel(ctx context.Context, tx Transaction, key domain.EntityKey) error
	// Drain waits until no task for key is in flight.
	Drain(ctx context.Context, key domain.EntityKey) error
}

// ReferenceCache caches ERP reference ids such as currencies and journals.
type ReferenceCache interface {
	Get(key string) (int64, bool)
	Set(key string, id int64)
}

// SyncMetrics records external phase outcomes.
type SyncMetrics interface {
	ObserveSync(entityType domain.EntityType, op domain.SyncOperation, outcome domain.SyncOutcome)
	ObserveFallback(reference string)
}

// Transaction represents a database transaction.
type Transaction interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// TransactionManager handles transaction lifecycle.
type TransactionManager interface {
	Begin(ctx context.Context) (Transaction, error)
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
}

// Retrier retries an operation on transient primary-store errors.
type Retrier interface {
	Retry(ctx context.Context, operation func() error) error
}

// IdempotencyProcessing is the stored value of an idempotency key whose
// first request has not finished yet.
const IdempotencyProcessing = "processing"

// IdempotencyStore handles idempotency key storage.
type IdempotencyStore interface {
	// CheckAndSet atomically checks if key exists, sets if not.
	// Returns (exists, existingValue, error).
	CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	// Update updates an existing key with the final response.
	Update(ctx context.Context, key string, response []byte, ttl time.Duration) error
	// Release drops a claimed key so the request can be retried.
	Release(ctx context.Context, key string) error
}
