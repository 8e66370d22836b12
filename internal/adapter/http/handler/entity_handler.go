package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/iho/ledgersync/internal/adapter/http/dto"
	"github.com/iho/ledgersync/internal/domain"
	"github.com/iho/ledgersync/internal/usecase"
)

// EntityService defines the behavior needed by EntityHandler.
type EntityService[T domain.Entity] interface {
	Create(ctx context.Context, entity T) (T, error)
	Update(ctx context.Context, id int64, entity T) (T, error)
	Delete(ctx context.Context, id int64) error
	Get(ctx context.Context, id int64) (*usecase.Mirrored[T], error)
	List(ctx context.Context, limit, offset int) ([]T, error)
}

// entityPtr constrains T to a pointer to an entity struct E.
type entityPtr[E any] interface {
	*E
	domain.Entity
}

// EntityHandler serves CRUD requests for one entity type. Responses depend
// on the primary store only; ERP failures are never reported here.
type EntityHandler[E any, T entityPtr[E]] struct {
	service EntityService[T]
	name    string
}

// NewEntityHandler creates a new EntityHandler. name is used in error
// messages, e.g. "account".
func NewEntityHandler[E any, T entityPtr[E]](service EntityService[T], name string) *EntityHandler[E, T] {
	return &EntityHandler[E, T]{service: service, name: name}
}

// Create creates a new entity.
func (h *EntityHandler[E, T]) Create(w http.ResponseWriter, r *http.Request) {
	entity, ok := h.decode(w, r)
	if !ok {
		return
	}

	created, err := h.service.Create(r.Context(), entity)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to create "+h.name, err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, created)
}

// Get retrieves an entity with its ERP id.
func (h *EntityHandler[E, T]) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid "+h.name+" ID", "")
		return
	}

	mirrored, err := h.service.Get(r.Context(), id)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get "+h.name, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.MirroredResponse{
		Entity:     mirrored.Entity,
		ExternalID: mirrored.ExternalID,
	})
}

// List lists entities of the caller's tenant.
func (h *EntityHandler[E, T]) List(w http.ResponseWriter, r *http.Request) {
	limit, offset := domain.ValidatePagination(parseIntQuery(r, "limit", 20), parseIntQuery(r, "offset", 0))

	items, err := h.service.List(r.Context(), limit, offset)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to list "+h.name+"s", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.NewListResponse(items, limit, offset))
}

// Update replaces the client-settable fields of an entity.
func (h *EntityHandler[E, T]) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid "+h.name+" ID", "")
		return
	}

	entity, ok := h.decode(w, r)
	if !ok {
		return
	}

	updated, err := h.service.Update(r.Context(), id, entity)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to update "+h.name, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, updated)
}

// Delete removes an entity.
func (h *EntityHandler[E, T]) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid "+h.name+" ID", "")
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		writeError(w, mapDomainError(err), "failed to delete "+h.name, err.Error())
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *EntityHandler[E, T]) decode(w http.ResponseWriter, r *http.Request) (T, bool) {
	entity := T(new(E))
	if err := json.NewDecoder(r.Body).Decode(entity); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return nil, false
	}
	return entity, true
}
