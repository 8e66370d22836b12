// Package syncqueue runs the external phase of committed writes in the
// background. Tasks are read from the sync_tasks outbox and executed in
// sequence order per entity key.
package syncqueue

import (
	"context"
	"fmt"
	"hash/fnv"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"

	"github.com/iho/ledgersync/internal/domain"
	"github.com/iho/ledgersync/internal/usecase"
)

// Processor executes one sync task against the ERP.
type Processor interface {
	Process(ctx context.Context, task *domain.SyncTask) usecase.SyncResult
}

// Config for Dispatcher.
type Config struct {
	Repo            usecase.SyncTaskRepository
	Processor       Processor
	Logger          zerolog.Logger
	Workers         int           // Number of worker shards
	BatchSize       int           // Number of tasks claimed per poll
	Interval        time.Duration // Polling interval
	Lease           time.Duration // Claims older than this are released
	Retention       time.Duration // Finished tasks older than this are deleted, 0 keeps them
	CleanupInterval time.Duration
}

// Dispatcher claims pending sync tasks and routes each to a worker shard
// chosen by its entity key, so tasks of one key never run concurrently.
type Dispatcher struct {
	repo      usecase.SyncTaskRepository
	processor Processor
	logger    zerolog.Logger
	batchSize int
	interval  time.Duration
	lease     time.Duration
	retention time.Duration
	cleanup   time.Duration

	id     string
	wake   chan struct{}
	shards []chan *domain.SyncTask
	now    func() time.Time
}

// NewDispatcher creates a new Dispatcher.
func NewDispatcher(cfg Config) *Dispatcher {
	if cfg.Workers <= 0 {
		cfg.Workers = 4
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 100
	}
	if cfg.Interval <= 0 {
		cfg.Interval = time.Second
	}
	if cfg.Lease <= 0 {
		cfg.Lease = 5 * time.Minute
	}
	if cfg.CleanupInterval <= 0 {
		cfg.CleanupInterval = time.Minute
	}

	shards := make([]chan *domain.SyncTask, cfg.Workers)
	for i := range shards {
		shards[i] = make(chan *domain.SyncTask, cfg.BatchSize)
	}

	return &Dispatcher{
		repo:      cfg.Repo,
		processor: cfg.Processor,
		logger:    cfg.Logger.With().Str("component", "syncqueue").Logger(),
		batchSize: cfg.BatchSize,
		interval:  cfg.Interval,
		lease:     cfg.Lease,
		retention: cfg.Retention,
		cleanup:   cfg.CleanupInterval,
		id:        ulid.Make().String(),
		wake:      make(chan struct{}, 1),
		shards:    shards,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// ID identifies this dispatcher instance in task claims.
func (d *Dispatcher) ID() string {
	return d.id
}

// Notify wakes the dispatcher without waiting for the next poll.
func (d *Dispatcher) Notify() {
	select {
	case d.wake <- struct{}{}:
	default:
	}
}

// Start runs the dispatcher until the context is cancelled.
func (d *Dispatcher) Start(ctx context.Context) error {
	d.logger.Info().
		Str("instance", d.id).
		Int("workers", len(d.shards)).
		Int("batch_size", d.batchSize).
		Dur("interval", d.interval).
		Msg("sync dispatcher started")

	var wg sync.WaitGroup
	for i := range d.shards {
		wg.Add(1)
		go func(shard <-chan *domain.SyncTask) {
			defer wg.Done()
			d.work(ctx, shard)
		}(d.shards[i])
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		d.maintain(ctx)
	}()

	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	d.poll(ctx)
	for {
		select {
		case <-ctx.Done():
			wg.Wait()
			d.logger.Info().Msg("sync dispatcher shutting down")
			return ctx.Err()
		case <-ticker.C:
			d.poll(ctx)
		case <-d.wake:
			d.poll(ctx)
		}
	}
}

func (d *Dispatcher) poll(ctx context.Context) {
	if _, err := d.dispatch(ctx); err != nil && ctx.Err() == nil {
		d.logger.Error().Err(err).Msg("error claiming sync tasks")
	}
}

// dispatch claims one batch and hands it to the shards.
func (d *Dispatcher) dispatch(ctx context.Context) (int, error) {
	tasks, err := d.repo.Claim(ctx, d.id, d.batchSize)
	if err != nil {
		return 0, err
	}
	if len(tasks) == 0 {
		return 0, nil
	}

	d.logger.Debug().Int("count", len(tasks)).Msg("claimed sync tasks")

	for i, task := range tasks {
		select {
		case d.shards[d.shardFor(task.Key())] <- task:
		case <-ctx.Done():
			return i, ctx.Err()
		}
	}

	return len(tasks), nil
}

func (d *Dispatcher) shardFor(key domain.EntityKey) int {
	h := fnv.New32a()
	fmt.Fprintf(h, "%s/%d", key.Type, key.ID)
	return int(h.Sum32() % uint32(len(d.shards)))
}

func (d *Dispatcher) work(ctx context.Context, shard <-chan *domain.SyncTask) {
	for {
		select {
		case <-ctx.Done():
			return
		case task := <-shard:
			d.execute(ctx, task)
			// The next task of this key becomes claimable now.
			d.Notify()
		}
	}
}

// execute runs one task to completion even if shutdown begins meanwhile.
func (d *Dispatcher) execute(ctx context.Context, task *domain.SyncTask) {
	ctx = context.WithoutCancel(ctx)
	res := d.run(ctx, task)

	status := domain.TaskDone
	if res.Outcome == domain.OutcomeFailed || res.Outcome == domain.OutcomeConflict {
		status = domain.TaskFailed
	}

	if err := d.repo.Finish(ctx, task.ID, status, res.Outcome, res.Detail(), d.now()); err != nil {
		d.logger.Error().
			Err(err).
			Str("task_id", task.ID).
			Msg("failed to finish sync task")
	}
}

func (d *Dispatcher) run(ctx context.Context, task *domain.SyncTask) (res usecase.SyncResult) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error().
				Str("task_id", task.ID).
				Str("local_type", string(task.EntityType)).
				Int64("local_id", task.EntityID).
				Str("operation", string(task.Operation)).
				Interface("panic", r).
				Msg("sync task panicked")
			res = usecase.SyncResult{
				Outcome: domain.OutcomeFailed,
				Err:     fmt.Errorf("%w: %v", domain.ErrPreconditionViolation, r),
			}
		}
	}()

	return d.processor.Process(ctx, task)
}

// maintain releases stale claims and prunes finished tasks.
func (d *Dispatcher) maintain(ctx context.Context) {
	ticker := time.NewTicker(d.cleanup)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			d.housekeep(ctx)
		}
	}
}

func (d *Dispatcher) housekeep(ctx context.Context) {
	now := d.now()

	released, err := d.repo.ReleaseStale(ctx, now.Add(-d.lease))
	switch {
	case err != nil:
		d.logger.Error().Err(err).Msg("failed to release stale sync tasks")
	case released > 0:
		d.logger.Warn().Int64("count", released).Msg("released stale sync tasks")
		d.Notify()
	}

	if d.retention <= 0 {
		return
	}

	deleted, err := d.repo.DeleteFinished(ctx, now.Add(-d.retention))
	switch {
	case err != nil:
		d.logger.Error().Err(err).Msg("failed to delete finished sync tasks")
	case deleted > 0:
		d.logger.Debug().Int64("count", deleted).Msg("deleted finished sync tasks")
	}
}
