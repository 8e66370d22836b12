package mocks

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/iho/ledgersync/internal/domain"
	"github.com/iho/ledgersync/internal/usecase"
)

// StubEntityRepository is an in-memory EntityRepository.
type StubEntityRepository[T domain.Entity] struct {
	mu       sync.RWMutex
	entities map[int64]T
	nextID   int64

	CreateFunc func(ctx context.Context, tx usecase.Transaction, entity T) error
	UpdateFunc func(ctx context.Context, tx usecase.Transaction, entity T) error
	DeleteFunc func(ctx context.Context, tx usecase.Transaction, id int64) error
}

func NewStubEntityRepository[T domain.Entity]() *StubEntityRepository[T] {
	return &StubEntityRepository[T]{entities: make(map[int64]T)}
}

func (r *StubEntityRepository[T]) Create(ctx context.Context, tx usecase.Transaction, entity T) error {
	if r.CreateFunc != nil {
		return r.CreateFunc(ctx, tx, entity)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	entity.Assign(r.nextID, entity.GetTenantID())
	r.entities[r.nextID] = entity
	return nil
}

func (r *StubEntityRepository[T]) Update(ctx context.Context, tx usecase.Transaction, entity T) error {
	if r.UpdateFunc != nil {
		return r.UpdateFunc(ctx, tx, entity)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.entities[entity.GetID()]; !ok {
		return domain.ErrEntityNotFound
	}
	r.entities[entity.GetID()] = entity
	return nil
}

func (r *StubEntityRepository[T]) Delete(ctx context.Context, tx usecase.Transaction, id int64) error {
	if r.DeleteFunc != nil {
		return r.DeleteFunc(ctx, tx, id)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.entities[id]; !ok {
		return domain.ErrEntityNotFound
	}
	delete(r.entities, id)
	return nil
}

func (r *StubEntityRepository[T]) GetByID(ctx context.Context, id int64) (T, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if e, ok := r.entities[id]; ok {
		return e, nil
	}
	var zero T
	return zero, domain.ErrEntityNotFound
}

func (r *StubEntityRepository[T]) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id int64) (T, error) {
	return r.GetByID(ctx, id)
}

func (r *StubEntityRepository[T]) List(ctx context.Context, tenantID int64, limit, offset int) ([]T, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]int64, 0, len(r.entities))
	for id, e := range r.entities {
		if e.GetTenantID() == tenantID {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	var out []T
	for i := offset; i < len(ids) && len(out) < limit; i++ {
		out = append(out, r.entities[ids[i]])
	}
	return out, nil
}

// Len returns the number of stored entities.
func (r *StubEntityRepository[T]) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entities)
}

// StubTransactionManager is a TransactionManager handing out StubTransactions.
type StubTransactionManager struct {
	BeginFunc func(ctx context.Context) (usecase.Transaction, error)

	mu        sync.Mutex
	Committed int
}

func NewStubTransactionManager() *StubTransactionManager {
	return &StubTransactionManager{}
}

func (m *StubTransactionManager) Begin(ctx context.Context) (usecase.Transaction, error) {
	if m.BeginFunc != nil {
		return m.BeginFunc(ctx)
	}
	return &StubTransaction{CommitFunc: func(context.Context) error {
		m.mu.Lock()
		m.Committed++
		m.mu.Unlock()
		return nil
	}}, nil
}

// StubTransaction is a no-op Transaction.
type StubTransaction struct {
	CommitFunc   func(ctx context.Context) error
	RollbackFunc func(ctx context.Context) error
}

func (m *StubTransaction) Commit(ctx context.Context) error {
	if m.CommitFunc != nil {
		return m.CommitFunc(ctx)
	}
	return nil
}

func (m *StubTransaction) Rollback(ctx context.Context) error {
	if m.RollbackFunc != nil {
		return m.RollbackFunc(ctx)
	}
	return nil
}

// StubIDGenerator returns sequential ids.
type StubIDGenerator struct {
	mu      sync.Mutex
	counter int
}

func (m *StubIDGenerator) Generate() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counter++
	return fmt.Sprintf("task-%04d", m.counter)
}

// StubRetrier runs the operation exactly once.
type StubRetrier struct{}

func (StubRetrier) Retry(_ context.Context, operation func() error) error {
	return operation()
}

// NoopMetrics discards sync metrics.
type NoopMetrics struct{}

func (NoopMetrics) ObserveSync(domain.EntityType, domain.SyncOperation, domain.SyncOutcome) {}
func (NoopMetrics) ObserveFallback(string)                                                  {}

// RecordingMetrics counts sync outcomes and fallbacks.
type RecordingMetrics struct {
	mu        sync.Mutex
	Outcomes  []domain.SyncOutcome
	Fallbacks []string
}

func (m *RecordingMetrics) ObserveSync(_ domain.EntityType, _ domain.SyncOperation, outcome domain.SyncOutcome) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Outcomes = append(m.Outcomes, outcome)
}

func (m *RecordingMetrics) ObserveFallback(reference string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Fallbacks = append(m.Fallbacks, reference)
}

// MapReferenceCache is a ReferenceCache without expiry.
type MapReferenceCache struct {
	mu   sync.Mutex
	data map[string]int64
}

func NewMapReferenceCache() *MapReferenceCache {
	return &MapReferenceCache{data: make(map[string]int64)}
}

func (c *MapReferenceCache) Get(key string) (int64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	id, ok := c.data[key]
	return id, ok
}

func (c *MapReferenceCache) Set(key string, id int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = id
}

// StubIdempotencyStore is an in-memory IdempotencyStore.
type StubIdempotencyStore struct {
	mu   sync.RWMutex
	data map[string][]byte

	CheckAndSetFunc func(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	UpdateFunc      func(ctx context.Context, key string, response []byte, ttl time.Duration) error
}

func NewStubIdempotencyStore() *StubIdempotencyStore {
	return &StubIdempotencyStore{
		data: make(map[string][]byte),
	}
}

func (m *StubIdempotencyStore) CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error) {
	if m.CheckAndSetFunc != nil {
		return m.CheckAndSetFunc(ctx, key, response, ttl)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.data[key]; ok {
		return true, existing, nil
	}
	if response != nil {
		m.data[key] = response
	} else {
		m.data[key] = []byte(usecase.IdempotencyProcessing)
	}
	return false, nil, nil
}

func (m *StubIdempotencyStore) Update(ctx context.Context, key string, response []byte, ttl time.Duration) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, key, response, ttl)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = response
	return nil
}

func (m *StubIdempotencyStore) Release(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}
