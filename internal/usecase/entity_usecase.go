package usecase

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/iho/ledgersync/internal/domain"
)

// SyncDeps are the collaborators shared by every entity use case.
type SyncDeps struct {
	TxManager   TransactionManager
	Scheduler   SyncScheduler
	Coordinator *Coordinator
	Mappings    MappingStore
	IDGen       IDGenerator
	Retrier     Retrier
	Logger      zerolog.Logger
}

// Mirrored is an entity read back together with its ERP id, if any.
type Mirrored[T domain.Entity] struct {
	Entity     T
	ExternalID *int64
}

// EntityUseCase handles the primary-store lifecycle of one entity type and
// hands every committed write to the sync scheduler.
type EntityUseCase[T domain.Entity] struct {
	repo        EntityRepository[T]
	txManager   TransactionManager
	scheduler   SyncScheduler
	coordinator *Coordinator
	mappings    MappingStore
	idGen       IDGenerator
	retrier     Retrier
	logger      zerolog.Logger
	now         func() time.Time
}

// NewEntityUseCase creates a new EntityUseCase.
func NewEntityUseCase[T domain.Entity](deps SyncDeps, repo EntityRepository[T]) *EntityUseCase[T] {
	return &EntityUseCase[T]{
		repo:        repo,
		txManager:   deps.TxManager,
		scheduler:   deps.Scheduler,
		coordinator: deps.Coordinator,
		mappings:    deps.Mappings,
		idGen:       deps.IDGen,
		retrier:     deps.Retrier,
		logger:      deps.Logger,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// Create stores a new entity. The result depends on the primary store only.
func (uc *EntityUseCase[T]) Create(ctx context.Context, entity T) (T, error) {
	var zero T

	if err := entity.Validate(); err != nil {
		return zero, err
	}

	now := uc.now()
	entity.Assign(0, domain.TenantFromContext(ctx))
	entity.Times().Touch(now)

	var task *domain.SyncTask
	err := uc.inTx(ctx, func(tx Transaction) error {
		if err := uc.repo.Create(ctx, tx, entity); err != nil {
			return err
		}
		task = domain.NewSyncTask(uc.idGen.Generate(), domain.OpCreate, nil, entity, now)
		return uc.scheduler.Schedule(ctx, tx, task)
	})
	if err != nil {
		return zero, err
	}

	uc.scheduler.Committed(ctx, task)
	return entity, nil
}

// Update replaces the client-settable fields of an existing entity.
func (uc *EntityUseCase[T]) Update(ctx context.Context, id int64, entity T) (T, error) {
	var zero T

	if err := entity.Validate(); err != nil {
		return zero, err
	}

	now := uc.now()
	tenantID := domain.TenantFromContext(ctx)

	var task *domain.SyncTask
	err := uc.inTx(ctx, func(tx Transaction) error {
		current, err := uc.repo.GetByIDForUpdate(ctx, tx, id)
		if err != nil {
			return err
		}
		if current.GetTenantID() != tenantID {
			return domain.ErrEntityNotFound
		}

		entity.Assign(id, tenantID)
		times := entity.Times()
		times.CreatedAt = current.Times().CreatedAt
		times.UpdatedAt = now

		if err := uc.repo.Update(ctx, tx, entity); err != nil {
			return err
		}
		task = domain.NewSyncTask(uc.idGen.Generate(), domain.OpUpdate, current, entity, now)
		return uc.scheduler.Schedule(ctx, tx, task)
	})
	if err != nil {
		return zero, err
	}

	uc.scheduler.Committed(ctx, task)
	return entity, nil
}

// Delete removes the ERP record first, then the primary row. ERP failures
// never prevent the primary deletion.
func (uc *EntityUseCase[T]) Delete(ctx context.Context, id int64) error {
	entity, err := uc.get(ctx, id)
	if err != nil {
		return err
	}
	key := domain.KeyOf(entity)

	if err := uc.scheduler.Drain(ctx, key); err != nil {
		uc.logger.Warn().
			Err(err).
			Str("local_type", string(key.Type)).
			Int64("local_id", key.ID).
			Msg("pending sync tasks not drained before delete")
	}

	_, err = uc.coordinator.Delete(ctx, key, func(ctx context.Context) error {
		return uc.inTx(ctx, func(tx Transaction) error {
			if err := uc.scheduler.Cancel(ctx, tx, key); err != nil {
				return err
			}
			return uc.repo.Delete(ctx, tx, id)
		})
	})
	return err
}

// Get returns an entity of the current tenant with its ERP id.
func (uc *EntityUseCase[T]) Get(ctx context.Context, id int64) (*Mirrored[T], error) {
	entity, err := uc.get(ctx, id)
	if err != nil {
		return nil, err
	}

	out := &Mirrored[T]{Entity: entity}
	externalID, ok, err := uc.mappings.ResolveExternal(ctx, entity.EntityType(), id)
	switch {
	case err != nil:
		uc.logger.Warn().
			Err(err).
			Str("local_type", string(entity.EntityType())).
			Int64("local_id", id).
			Msg("failed to resolve external id")
	case ok:
		out.ExternalID = &externalID
	}

	return out, nil
}

// List lists entities of the current tenant with pagination.
func (uc *EntityUseCase[T]) List(ctx context.Context, limit, offset int) ([]T, error) {
	limit, offset = domain.ValidatePagination(limit, offset)
	return uc.repo.List(ctx, domain.TenantFromContext(ctx), limit, offset)
}

func (uc *EntityUseCase[T]) get(ctx context.Context, id int64) (T, error) {
	var zero T

	entity, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return zero, err
	}
	if entity.GetTenantID() != domain.TenantFromContext(ctx) {
		return zero, domain.ErrEntityNotFound
	}
	return entity, nil
}

func (uc *EntityUseCase[T]) inTx(ctx context.Context, fn func(tx Transaction) error) error {
	return uc.retrier.Retry(ctx, func() error {
		tx, err := uc.txManager.Begin(ctx)
		if err != nil {
			return err
		}
		defer tx.Rollback(ctx)

		if err := fn(tx); err != nil {
			return err
		}
		return tx.Commit(ctx)
	})
}
