package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/iho/ledgersync/internal/adapter/http/dto"
	"github.com/iho/ledgersync/internal/domain"
)

// SyncService defines the behavior needed by SyncHandler.
type SyncService interface {
	MappingByLocal(ctx context.Context, localType domain.EntityType, localID int64) (*domain.MappingRecord, error)
	LocalByExternal(ctx context.Context, externalType string, externalID int64) (int64, error)
	ListMappings(ctx context.Context, localType domain.EntityType, limit, offset int) ([]*domain.MappingRecord, error)
	RegisterCompany(ctx context.Context, tenantID, companyID int64) (*domain.MappingRecord, error)
	ListTasks(ctx context.Context, key domain.EntityKey, limit, offset int) ([]*domain.SyncTask, error)
}

// SyncHandler serves the mapping and sync task endpoints.
type SyncHandler struct {
	service SyncService
}

// NewSyncHandler creates a new SyncHandler.
func NewSyncHandler(service SyncService) *SyncHandler {
	return &SyncHandler{service: service}
}

// Mappings answers three queries:
//
//	?local_type=Account&local_id=1            the mapping of one entity
//	?external_type=account.account&external_id=501  the local id of an ERP record
//	?local_type=Account                       all mappings of a type
func (h *SyncHandler) Mappings(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	localType := domain.EntityType(q.Get("local_type"))

	switch {
	case q.Get("external_type") != "":
		externalID, err := strconv.ParseInt(q.Get("external_id"), 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid external_id", q.Get("external_id"))
			return
		}
		localID, err := h.service.LocalByExternal(r.Context(), q.Get("external_type"), externalID)
		if err != nil {
			writeError(w, mapDomainError(err), "failed to resolve mapping", err.Error())
			return
		}
		writeJSON(w, http.StatusOK, dto.ReverseLookupResponse{
			ExternalType: q.Get("external_type"),
			ExternalID:   externalID,
			LocalID:      localID,
		})

	case localType != "" && q.Get("local_id") != "":
		localID, err := strconv.ParseInt(q.Get("local_id"), 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid local_id", q.Get("local_id"))
			return
		}
		rec, err := h.service.MappingByLocal(r.Context(), localType, localID)
		if err != nil {
			writeError(w, mapDomainError(err), "failed to resolve mapping", err.Error())
			return
		}
		writeJSON(w, http.StatusOK, dto.MappingFromDomain(rec))

	case localType != "":
		limit, offset := domain.ValidatePagination(parseIntQuery(r, "limit", 20), parseIntQuery(r, "offset", 0))
		recs, err := h.service.ListMappings(r.Context(), localType, limit, offset)
		if err != nil {
			writeError(w, mapDomainError(err), "failed to list mappings", err.Error())
			return
		}
		writeJSON(w, http.StatusOK, dto.NewListResponse(dto.MappingsFromDomain(recs), limit, offset))

	default:
		writeError(w, http.StatusBadRequest, "local_type or external_type is required", "")
	}
}

// RegisterCompany records the ERP company of a tenant.
func (h *SyncHandler) RegisterCompany(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterCompanyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request", err.Error())
		return
	}

	rec, err := h.service.RegisterCompany(r.Context(), req.TenantID, req.CompanyID)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to register company", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, dto.MappingFromDomain(rec))
}

// Tasks lists the sync task history of one entity.
func (h *SyncHandler) Tasks(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	entityID, err := strconv.ParseInt(q.Get("entity_id"), 10, 64)
	if err != nil || q.Get("entity_type") == "" {
		writeError(w, http.StatusBadRequest, "entity_type and entity_id are required", "")
		return
	}

	limit, offset := domain.ValidatePagination(parseIntQuery(r, "limit", 20), parseIntQuery(r, "offset", 0))
	key := domain.EntityKey{Type: domain.EntityType(q.Get("entity_type")), ID: entityID}

	tasks, err := h.service.ListTasks(r.Context(), key, limit, offset)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to list sync tasks", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.NewListResponse(dto.TasksFromDomain(tasks), limit, offset))
}
