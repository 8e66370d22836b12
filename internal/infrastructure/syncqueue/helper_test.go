package syncqueue

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/iho/ledgersync/internal/domain"
	"github.com/iho/ledgersync/internal/usecase"
)

// memoryTaskRepo mirrors the claim rules of the Postgres outbox: only the
// earliest unfinished task of a key is claimable.
type memoryTaskRepo struct {
	mu    sync.Mutex
	seq   int64
	tasks []*domain.SyncTask

	released time.Time
	pruned   time.Time
}

func (r *memoryTaskRepo) add(op domain.SyncOperation, key domain.EntityKey) *domain.SyncTask {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	task := &domain.SyncTask{
		ID:         key.String() + "#" + string(op),
		Seq:        r.seq,
		EntityType: key.Type,
		EntityID:   key.ID,
		Operation:  op,
		Status:     domain.TaskPending,
	}
	r.tasks = append(r.tasks, task)
	return task
}

func (r *memoryTaskRepo) Create(_ context.Context, _ usecase.Transaction, task *domain.SyncTask) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	task.Seq = r.seq
	r.tasks = append(r.tasks, task)
	return nil
}

func (r *memoryTaskRepo) Claim(_ context.Context, worker string, limit int) ([]*domain.SyncTask, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	blocked := map[domain.EntityKey]bool{}
	var out []*domain.SyncTask
	for _, t := range r.tasks {
		key := t.Key()
		switch t.Status {
		case domain.TaskProcessing:
			blocked[key] = true
		case domain.TaskPending:
			if !blocked[key] && len(out) < limit {
				now := time.Now()
				t.Status = domain.TaskProcessing
				t.ClaimedBy = worker
				t.ClaimedAt = &now
				t.Attempts++
				copied := *t
				out = append(out, &copied)
			}
			blocked[key] = true
		}
	}
	return out, nil
}

func (r *memoryTaskRepo) Finish(_ context.Context, id string, status domain.TaskStatus, outcome domain.SyncOutcome, detail string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.tasks {
		if t.ID == id {
			t.Status, t.Outcome, t.Detail, t.FinishedAt = status, outcome, detail, &at
			return nil
		}
	}
	return domain.ErrTaskNotFound
}

func (r *memoryTaskRepo) CancelPending(_ context.Context, _ usecase.Transaction, key domain.EntityKey) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, t := range r.tasks {
		if t.Key() == key && t.Status == domain.TaskPending {
			t.Status = domain.TaskCancelled
			n++
		}
	}
	return n, nil
}

func (r *memoryTaskRepo) CountUnfinished(_ context.Context, key domain.EntityKey) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, t := range r.tasks {
		if t.Key() == key && (t.Status == domain.TaskPending || t.Status == domain.TaskProcessing) {
			n++
		}
	}
	return n, nil
}

func (r *memoryTaskRepo) ListByEntity(_ context.Context, key domain.EntityKey, limit, offset int) ([]*domain.SyncTask, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.SyncTask
	for _, t := range r.tasks {
		if t.Key() == key {
			copied := *t
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Seq < out[j].Seq })
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *memoryTaskRepo) ReleaseStale(_ context.Context, claimedBefore time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.released = claimedBefore
	var n int64
	for _, t := range r.tasks {
		if t.Status == domain.TaskProcessing && t.ClaimedAt != nil && t.ClaimedAt.Before(claimedBefore) {
			t.Status = domain.TaskPending
			t.ClaimedBy = ""
			n++
		}
	}
	return n, nil
}

func (r *memoryTaskRepo) DeleteFinished(_ context.Context, finishedBefore time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pruned = finishedBefore
	kept := r.tasks[:0]
	var n int64
	for _, t := range r.tasks {
		if t.FinishedAt != nil && t.FinishedAt.Before(finishedBefore) {
			n++
			continue
		}
		kept = append(kept, t)
	}
	r.tasks = kept
	return n, nil
}

func (r *memoryTaskRepo) status(id string) domain.TaskStatus {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.tasks {
		if t.ID == id {
			return t.Status
		}
	}
	return ""
}

func (r *memoryTaskRepo) finished() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, t := range r.tasks {
		if t.FinishedAt != nil {
			n++
		}
	}
	return n
}

func (r *memoryTaskRepo) task(id string) domain.SyncTask {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.tasks {
		if t.ID == id {
			return *t
		}
	}
	return domain.SyncTask{}
}

type processorFunc func(ctx context.Context, task *domain.SyncTask) usecase.SyncResult

func (f processorFunc) Process(ctx context.Context, task *domain.SyncTask) usecase.SyncResult {
	return f(ctx, task)
}

type countingNotifier struct {
	mu sync.Mutex
	n  int
}

func (c *countingNotifier) Notify() {
	c.mu.Lock()
	c.n++
	c.mu.Unlock()
}

func (c *countingNotifier) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.n
}
