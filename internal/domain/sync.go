package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

// SyncOperation is the mutating operation mirrored to the ERP.
type SyncOperation string

const (
	OpCreate SyncOperation = "create"
	OpUpdate SyncOperation = "update"
	OpDelete SyncOperation = "delete"
)

// TaskStatus is the queue state of a sync task.
type TaskStatus string

const (
	TaskPending    TaskStatus = "pending"
	TaskProcessing TaskStatus = "processing"
	TaskDone       TaskStatus = "done"
	TaskFailed     TaskStatus = "failed"
	TaskCancelled  TaskStatus = "cancelled"
)

// SyncOutcome is what the external phase ended up doing.
type SyncOutcome string

const (
	OutcomeSynced      SyncOutcome = "synced"
	OutcomeSkipped     SyncOutcome = "skipped"
	OutcomeUnsupported SyncOutcome = "unsupported"
	OutcomeFailed      SyncOutcome = "failed"
	OutcomeConflict    SyncOutcome = "conflict"
)

// SyncTask is the external phase of one committed primary-store write.
// Tasks for the same entity key are executed in Seq order.
type SyncTask struct {
	ID         string        `json:"id"`
	Seq        int64         `json:"seq"`
	EntityType EntityType    `json:"entity_type"`
	EntityID   int64         `json:"entity_id"`
	TenantID   int64         `json:"tenant_id"`
	Operation  SyncOperation `json:"operation"`
	Before     Entity        `json:"-"`
	After      Entity        `json:"-"`
	Status     TaskStatus    `json:"status"`
	Outcome    SyncOutcome   `json:"outcome,omitempty"`
	Detail     string        `json:"detail,omitempty"`
	Attempts   int           `json:"attempts"`
	ClaimedBy  string        `json:"claimed_by,omitempty"`
	CreatedAt  time.Time     `json:"created_at"`
	ClaimedAt  *time.Time    `json:"claimed_at,omitempty"`
	FinishedAt *time.Time    `json:"finished_at,omitempty"`
}

// NewSyncTask builds a pending task. before is nil on create, after is nil on delete.
func NewSyncTask(id string, op SyncOperation, before, after Entity, now time.Time) *SyncTask {
	subject := after
	if subject == nil {
		subject = before
	}

	return &SyncTask{
		ID:         id,
		EntityType: subject.EntityType(),
		EntityID:   subject.GetID(),
		TenantID:   subject.GetTenantID(),
		Operation:  op,
		Before:     before,
		After:      after,
		Status:     TaskPending,
		CreatedAt:  now,
	}
}

// Key returns the entity key the task belongs to.
func (t *SyncTask) Key() EntityKey {
	return EntityKey{Type: t.EntityType, ID: t.EntityID}
}

// NewEntity returns an empty entity of the given type.
func NewEntity(t EntityType) (Entity, error) {
	switch t {
	case EntityAccount:
		return &Account{}, nil
	case EntityCategory:
		return &Category{}, nil
	case EntityPortfolio:
		return &Portfolio{}, nil
	case EntityPaymentFlow:
		return &PaymentFlow{}, nil
	case EntityBudget:
		return &Budget{}, nil
	case EntityBudgetLine:
		return &BudgetLine{}, nil
	case EntityForecastEvent:
		return &ForecastEvent{}, nil
	case EntityTransaction:
		return &Transaction{}, nil
	default:
		return nil, fmt.Errorf("%w: unknown entity type %q", ErrInvalidEnum, t)
	}
}

// EncodeSnapshot serializes an entity for the task outbox. A nil entity
// encodes to nil.
func EncodeSnapshot(e Entity) ([]byte, error) {
	if e == nil {
		return nil, nil
	}
	return json.Marshal(e)
}

// DecodeSnapshot is the inverse of EncodeSnapshot.
func DecodeSnapshot(t EntityType, data []byte) (Entity, error) {
	if len(data) == 0 {
		return nil, nil
	}

	e, err := NewEntity(t)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(data, e); err != nil {
		return nil, fmt.Errorf("decode %s snapshot: %w", t, err)
	}

	return e, nil
}
