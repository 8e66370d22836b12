package dto

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/iho/ledgersync/internal/domain"
)

// ErrorResponse represents an error in API responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// MirroredResponse renders an entity with its ERP id added as external_id,
// null when the entity was never synchronized.
type MirroredResponse struct {
	Entity     domain.Entity
	ExternalID *int64
}

// MarshalJSON flattens the entity fields and external_id into one object.
func (m MirroredResponse) MarshalJSON() ([]byte, error) {
	raw, err := json.Marshal(m.Entity)
	if err != nil {
		return nil, err
	}

	fields := map[string]json.RawMessage{}
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("entity %s is not a JSON object: %w", m.Entity.EntityType(), err)
	}

	externalID := []byte("null")
	if m.ExternalID != nil {
		externalID = []byte(fmt.Sprintf("%d", *m.ExternalID))
	}
	fields["external_id"] = externalID

	return json.Marshal(fields)
}

// ListResponse is a page of entities.
type ListResponse[T any] struct {
	Items  []T `json:"items"`
	Count  int `json:"count"`
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

// NewListResponse wraps a page, rendering a nil page as an empty list.
func NewListResponse[T any](items []T, limit, offset int) ListResponse[T] {
	if items == nil {
		items = []T{}
	}
	return ListResponse[T]{Items: items, Count: len(items), Limit: limit, Offset: offset}
}

// MappingResponse represents a mapping record in API responses.
type MappingResponse struct {
	ID           int64     `json:"id"`
	LocalType    string    `json:"local_type"`
	LocalID      int64     `json:"local_id"`
	ExternalType string    `json:"external_type"`
	ExternalID   int64     `json:"external_id"`
	CreatedAt    time.Time `json:"created_at"`
}

// MappingFromDomain converts a mapping record to a response.
func MappingFromDomain(r *domain.MappingRecord) *MappingResponse {
	return &MappingResponse{
		ID:           r.ID,
		LocalType:    string(r.LocalType),
		LocalID:      r.LocalID,
		ExternalType: r.ExternalType,
		ExternalID:   r.ExternalID,
		CreatedAt:    r.CreatedAt,
	}
}

// MappingsFromDomain converts mapping records to responses.
func MappingsFromDomain(records []*domain.MappingRecord) []*MappingResponse {
	result := make([]*MappingResponse, len(records))
	for i, r := range records {
		result[i] = MappingFromDomain(r)
	}
	return result
}

// ReverseLookupResponse is the local side of an ERP record.
type ReverseLookupResponse struct {
	ExternalType string `json:"external_type"`
	ExternalID   int64  `json:"external_id"`
	LocalID      int64  `json:"local_id"`
}

// TaskResponse represents a sync task in API responses. Snapshots are not
// rendered.
type TaskResponse struct {
	ID         string     `json:"id"`
	Seq        int64      `json:"seq"`
	EntityType string     `json:"entity_type"`
	EntityID   int64      `json:"entity_id"`
	Operation  string     `json:"operation"`
	Status     string     `json:"status"`
	Outcome    string     `json:"outcome,omitempty"`
	Detail     string     `json:"detail,omitempty"`
	Attempts   int        `json:"attempts"`
	CreatedAt  time.Time  `json:"created_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
}

// TaskFromDomain converts a sync task to a response.
func TaskFromDomain(t *domain.SyncTask) *TaskResponse {
	return &TaskResponse{
		ID:         t.ID,
		Seq:        t.Seq,
		EntityType: string(t.EntityType),
		EntityID:   t.EntityID,
		Operation:  string(t.Operation),
		Status:     string(t.Status),
		Outcome:    string(t.Outcome),
		Detail:     t.Detail,
		Attempts:   t.Attempts,
		CreatedAt:  t.CreatedAt,
		FinishedAt: t.FinishedAt,
	}
}

// TasksFromDomain converts sync tasks to responses.
func TasksFromDomain(tasks []*domain.SyncTask) []*TaskResponse {
	result := make([]*TaskResponse, len(tasks))
	for i, t := range tasks {
		result[i] = TaskFromDomain(t)
	}
	return result
}
