package usecase

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/iho/ledgersync/internal/domain"
)

// SyncAdminUseCase exposes the mapping store and the task history to
// operators.
type SyncAdminUseCase struct {
	mappings MappingStore
	tasks    SyncTaskRepository
	logger   zerolog.Logger
}

// NewSyncAdminUseCase creates a new SyncAdminUseCase. tasks may be nil when
// the external phase runs inline and no history is kept.
func NewSyncAdminUseCase(mappings MappingStore, tasks SyncTaskRepository, logger zerolog.Logger) *SyncAdminUseCase {
	return &SyncAdminUseCase{
		mappings: mappings,
		tasks:    tasks,
		logger:   logger,
	}
}

// MappingByLocal returns the mapping of a local entity.
func (uc *SyncAdminUseCase) MappingByLocal(ctx context.Context, localType domain.EntityType, localID int64) (*domain.MappingRecord, error) {
	if !localType.IsValid() {
		return nil, fmt.Errorf("%w: unknown local type %q", domain.ErrInvalidEnum, localType)
	}
	return uc.mappings.GetByLocal(ctx, localType, localID)
}

// LocalByExternal returns the local id mapped to an ERP record.
func (uc *SyncAdminUseCase) LocalByExternal(ctx context.Context, externalType string, externalID int64) (int64, error) {
	id, ok, err := uc.mappings.ResolveLocal(ctx, externalType, externalID)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, domain.ErrMappingNotFound
	}
	return id, nil
}

// ListMappings lists the mappings of one local type.
func (uc *SyncAdminUseCase) ListMappings(ctx context.Context, localType domain.EntityType, limit, offset int) ([]*domain.MappingRecord, error) {
	if !localType.IsValid() {
		return nil, fmt.Errorf("%w: unknown local type %q", domain.ErrInvalidEnum, localType)
	}
	limit, offset = domain.ValidatePagination(limit, offset)
	return uc.mappings.ListByLocalType(ctx, localType, limit, offset)
}

// RegisterCompany maps a tenant to its ERP company. Companies are
// provisioned outside this service; this only records the correspondence.
func (uc *SyncAdminUseCase) RegisterCompany(ctx context.Context, tenantID, companyID int64) (*domain.MappingRecord, error) {
	if tenantID <= 0 || companyID <= 0 {
		return nil, fmt.Errorf("%w: tenant and company ids must be positive", domain.ErrMissingReference)
	}

	rec, err := uc.mappings.Put(ctx, domain.EntityCompany, tenantID, domain.ModelCompany, companyID)
	if err != nil {
		return nil, err
	}

	uc.logger.Info().
		Int64("tenant_id", tenantID).
		Int64("company_id", companyID).
		Msg("company mapping registered")
	return rec, nil
}

// ListTasks returns the sync task history of an entity, newest first.
func (uc *SyncAdminUseCase) ListTasks(ctx context.Context, key domain.EntityKey, limit, offset int) ([]*domain.SyncTask, error) {
	if !key.Type.IsValid() || key.Type == domain.EntityCompany {
		return nil, fmt.Errorf("%w: unknown entity type %q", domain.ErrInvalidEnum, key.Type)
	}
	if uc.tasks == nil {
		return []*domain.SyncTask{}, nil
	}
	limit, offset = domain.ValidatePagination(limit, offset)
	return uc.tasks.ListByEntity(ctx, key, limit, offset)
}
