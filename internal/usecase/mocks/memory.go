package mocks

import (
	"context"
	"fmt"
	"reflect"
	"sort"
	"sync"
	"time"

	"github.com/iho/ledgersync/internal/domain"
)

type localKey struct {
	Type domain.EntityType
	ID   int64
}

type externalKey struct {
	Model string
	ID    int64
}

// MemoryMappingStore is an in-memory MappingStore enforcing the same
// uniqueness rules as the database implementations.
type MemoryMappingStore struct {
	mu         sync.Mutex
	byLocal    map[localKey]*domain.MappingRecord
	byExternal map[externalKey]*domain.MappingRecord
	nextID     int64

	// PutHook runs before every Put, outside the lock.
	PutHook func()
	Err     error
}

func NewMemoryMappingStore() *MemoryMappingStore {
	return &MemoryMappingStore{
		byLocal:    make(map[localKey]*domain.MappingRecord),
		byExternal: make(map[externalKey]*domain.MappingRecord),
	}
}

func (s *MemoryMappingStore) Put(_ context.Context, localType domain.EntityType, localID int64, externalType string, externalID int64) (*domain.MappingRecord, error) {
	if s.PutHook != nil {
		s.PutHook()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}

	lk, ek := localKey{localType, localID}, externalKey{externalType, externalID}
	if rec, ok := s.byLocal[lk]; ok {
		if rec.Same(localType, localID, externalType, externalID) {
			return rec, nil
		}
		return nil, fmt.Errorf("%w: %s %d already maps to %s %d", domain.ErrMappingConflict, localType, localID, rec.ExternalType, rec.ExternalID)
	}
	if rec, ok := s.byExternal[ek]; ok {
		return nil, fmt.Errorf("%w: %s %d already maps to %s %d", domain.ErrMappingConflict, externalType, externalID, rec.LocalType, rec.LocalID)
	}

	s.nextID++
	rec := &domain.MappingRecord{
		ID:           s.nextID,
		LocalType:    localType,
		LocalID:      localID,
		ExternalType: externalType,
		ExternalID:   externalID,
		CreatedAt:    time.Now().UTC(),
	}
	s.byLocal[lk] = rec
	s.byExternal[ek] = rec
	return rec, nil
}

func (s *MemoryMappingStore) ResolveExternal(_ context.Context, localType domain.EntityType, localID int64) (int64, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return 0, false, s.Err
	}
	if rec, ok := s.byLocal[localKey{localType, localID}]; ok {
		return rec.ExternalID, true, nil
	}
	return 0, false, nil
}

func (s *MemoryMappingStore) ResolveLocal(_ context.Context, externalType string, externalID int64) (int64, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return 0, false, s.Err
	}
	if rec, ok := s.byExternal[externalKey{externalType, externalID}]; ok {
		return rec.LocalID, true, nil
	}
	return 0, false, nil
}

func (s *MemoryMappingStore) GetByLocal(_ context.Context, localType domain.EntityType, localID int64) (*domain.MappingRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	if rec, ok := s.byLocal[localKey{localType, localID}]; ok {
		return rec, nil
	}
	return nil, domain.ErrMappingNotFound
}

func (s *MemoryMappingStore) ListByLocalType(_ context.Context, localType domain.EntityType, limit, offset int) ([]*domain.MappingRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var all []*domain.MappingRecord
	for _, rec := range s.byLocal {
		if rec.LocalType == localType {
			all = append(all, rec)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].LocalID < all[j].LocalID })
	if offset >= len(all) {
		return nil, nil
	}
	all = all[offset:]
	if len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

func (s *MemoryMappingStore) Delete(_ context.Context, localType domain.EntityType, localID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	lk := localKey{localType, localID}
	if rec, ok := s.byLocal[lk]; ok {
		delete(s.byExternal, externalKey{rec.ExternalType, rec.ExternalID})
		delete(s.byLocal, lk)
	}
	return nil
}

// Len returns the number of mappings.
func (s *MemoryMappingStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.byLocal)
}

// ExternalCall is one recorded ERP primitive invocation.
type ExternalCall struct {
	Primitive string
	Model     string
	Method    string
	IDs       []int64
	Values    map[string]any
}

// FakeExternalClient is an in-memory ERP. Journal entries created with line
// commands get their lines stored as account.move.line records; lifecycle
// methods change the entry state.
type FakeExternalClient struct {
	mu      sync.Mutex
	records map[string]map[int64]map[string]any
	nextID  int64
	calls   []ExternalCall

	// Err is returned by every primitive when set.
	Err        error
	CreateFunc func(ctx context.Context, model string, values map[string]any) (int64, error)
	SearchFunc func(ctx context.Context, model string, filter []domain.Condition, opts domain.SearchOptions) ([]map[string]any, error)
	UnlinkFunc func(ctx context.Context, model string, ids []int64) error
}

// NewFakeExternalClient returns a client whose first created record gets firstID.
func NewFakeExternalClient(firstID int64) *FakeExternalClient {
	return &FakeExternalClient{
		records: make(map[string]map[int64]map[string]any),
		nextID:  firstID - 1,
	}
}

func (c *FakeExternalClient) record(call ExternalCall) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls = append(c.calls, call)
}

// Calls returns every recorded invocation.
func (c *FakeExternalClient) Calls() []ExternalCall {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]ExternalCall(nil), c.calls...)
}

// CallCount returns the number of recorded invocations.
func (c *FakeExternalClient) CallCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.calls)
}

// Record returns a stored record.
func (c *FakeExternalClient) Record(model string, id int64) (map[string]any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	rec, ok := c.records[model][id]
	return rec, ok
}

// Seed stores a record as if it already existed in the ERP.
func (c *FakeExternalClient) Seed(model string, id int64, values map[string]any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.store(model, id, values)
}

func (c *FakeExternalClient) store(model string, id int64, values map[string]any) {
	if c.records[model] == nil {
		c.records[model] = make(map[int64]map[string]any)
	}
	rec := map[string]any{"id": id}
	for k, v := range values {
		rec[k] = v
	}
	c.records[model][id] = rec
}

func (c *FakeExternalClient) Create(ctx context.Context, model string, values map[string]any) (int64, error) {
	c.record(ExternalCall{Primitive: "create", Model: model, Values: values})
	if c.Err != nil {
		return 0, c.Err
	}
	if c.CreateFunc != nil {
		return c.CreateFunc(ctx, model, values)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.nextID++
	id := c.nextID

	fields := make(map[string]any, len(values))
	for k, v := range values {
		if k != "line_ids" {
			fields[k] = v
		}
	}
	if model == domain.ModelLedgerEntry {
		fields["state"] = domain.LedgerStateDraft
		lines, _ := values["line_ids"].([]any)
		for _, cmd := range lines {
			parts, _ := cmd.([]any)
			if len(parts) != 3 {
				continue
			}
			c.nextID++
			line := map[string]any{"move_id": id}
			for k, v := range toMap(parts[2]) {
				line[k] = v
			}
			c.store(domain.ModelLedgerLine, c.nextID, line)
		}
	}
	c.store(model, id, fields)
	return id, nil
}

func (c *FakeExternalClient) Read(_ context.Context, model string, ids []int64, fields []string) ([]map[string]any, error) {
	c.record(ExternalCall{Primitive: "read", Model: model, IDs: ids})
	if c.Err != nil {
		return nil, c.Err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	var out []map[string]any
	for _, id := range ids {
		rec, ok := c.records[model][id]
		if !ok {
			continue
		}
		row := map[string]any{"id": id}
		for _, f := range fields {
			row[f] = rec[f]
		}
		out = append(out, row)
	}
	return out, nil
}

func (c *FakeExternalClient) Write(_ context.Context, model string, id int64, values map[string]any) error {
	c.record(ExternalCall{Primitive: "write", Model: model, IDs: []int64{id}, Values: values})
	if c.Err != nil {
		return c.Err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	rec, ok := c.records[model][id]
	if !ok {
		return fmt.Errorf("%w: %s %d does not exist", domain.ErrExternalRejected, model, id)
	}
	for k, v := range values {
		if k == "line_ids" {
			continue
		}
		rec[k] = v
	}
	return nil
}

func (c *FakeExternalClient) Unlink(ctx context.Context, model string, ids []int64) error {
	c.record(ExternalCall{Primitive: "unlink", Model: model, IDs: ids})
	if c.Err != nil {
		return c.Err
	}
	if c.UnlinkFunc != nil {
		return c.UnlinkFunc(ctx, model, ids)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	for _, id := range ids {
		if rec, ok := c.records[model][id]; ok && rec["state"] == domain.LedgerStatePosted {
			return fmt.Errorf("%w: cannot delete posted entry %d", domain.ErrExternalRejected, id)
		}
		delete(c.records[model], id)
	}
	return nil
}

func (c *FakeExternalClient) Search(ctx context.Context, model string, filter []domain.Condition, opts domain.SearchOptions) ([]map[string]any, error) {
	c.record(ExternalCall{Primitive: "search", Model: model})
	if c.Err != nil {
		return nil, c.Err
	}
	if c.SearchFunc != nil {
		return c.SearchFunc(ctx, model, filter, opts)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	ids := make([]int64, 0, len(c.records[model]))
	for id := range c.records[model] {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	var out []map[string]any
	for _, id := range ids {
		rec := c.records[model][id]
		if !matches(rec, filter) {
			continue
		}
		out = append(out, rec)
		if opts.Limit > 0 && len(out) == opts.Limit {
			break
		}
	}
	return out, nil
}

func (c *FakeExternalClient) Call(_ context.Context, model, method string, args ...any) (any, error) {
	var ids []int64
	if len(args) > 0 {
		ids, _ = args[0].([]int64)
	}
	c.record(ExternalCall{Primitive: "call", Model: model, Method: method, IDs: ids})
	if c.Err != nil {
		return nil, c.Err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	state := map[string]string{
		domain.MethodPost:   domain.LedgerStatePosted,
		domain.MethodDraft:  domain.LedgerStateDraft,
		domain.MethodCancel: domain.LedgerStateCancel,
	}[method]
	for _, id := range ids {
		if rec, ok := c.records[model][id]; ok && state != "" {
			rec["state"] = state
		}
	}
	return true, nil
}

func matches(rec map[string]any, filter []domain.Condition) bool {
	for _, cond := range filter {
		if fmt.Sprint(rec[cond.Field]) != fmt.Sprint(cond.Value) {
			return false
		}
	}
	return true
}

// toMap accepts any map with string keys, including named map types.
func toMap(v any) map[string]any {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Map || rv.Type().Key().Kind() != reflect.String {
		return nil
	}
	out := make(map[string]any, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		out[iter.Key().String()] = iter.Value().Interface()
	}
	return out
}
