package syncqueue

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"

	"github.com/iho/ledgersync/internal/domain"
	"github.com/iho/ledgersync/internal/usecase"
)

var errTasksPending = errors.New("sync tasks still pending")

// Notifier is woken after a task has been committed.
type Notifier interface {
	Notify()
}

// OutboxScheduler implements usecase.SyncScheduler on top of the sync_tasks
// outbox. Tasks are written in the caller's transaction and executed by a
// Dispatcher after commit.
type OutboxScheduler struct {
	repo         usecase.SyncTaskRepository
	notifier     Notifier
	drainTimeout time.Duration
	drainPoll    time.Duration
	logger       zerolog.Logger
}

// NewOutboxScheduler creates a new OutboxScheduler.
func NewOutboxScheduler(repo usecase.SyncTaskRepository, notifier Notifier, drainTimeout time.Duration, logger zerolog.Logger) *OutboxScheduler {
	if drainTimeout <= 0 {
		drainTimeout = 10 * time.Second
	}
	return &OutboxScheduler{
		repo:         repo,
		notifier:     notifier,
		drainTimeout: drainTimeout,
		drainPoll:    50 * time.Millisecond,
		logger:       logger,
	}
}

// Schedule stores the task in the primary transaction.
func (s *OutboxScheduler) Schedule(ctx context.Context, tx usecase.Transaction, task *domain.SyncTask) error {
	if err := s.repo.Create(ctx, tx, task); err != nil {
		return fmt.Errorf("failed to schedule sync task: %w", err)
	}
	return nil
}

// Committed wakes the dispatcher.
func (s *OutboxScheduler) Committed(_ context.Context, _ *domain.SyncTask) {
	if s.notifier != nil {
		s.notifier.Notify()
	}
}

// Cancel marks the pending tasks of a key cancelled in the caller's transaction.
func (s *OutboxScheduler) Cancel(ctx context.Context, tx usecase.Transaction, key domain.EntityKey) error {
	n, err := s.repo.CancelPending(ctx, tx, key)
	if err != nil {
		return err
	}
	if n > 0 {
		s.logger.Debug().
			Str("local_type", string(key.Type)).
			Int64("local_id", key.ID).
			Int64("count", n).
			Msg("cancelled pending sync tasks")
	}
	return nil
}

// Drain waits until no task of the key is pending or running, bounded by
// the drain timeout.
func (s *OutboxScheduler) Drain(ctx context.Context, key domain.EntityKey) error {
	ctx, cancel := context.WithTimeout(ctx, s.drainTimeout)
	defer cancel()

	if s.notifier != nil {
		s.notifier.Notify()
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = s.drainPoll
	b.MaxInterval = time.Second
	b.MaxElapsedTime = 0

	return backoff.Retry(func() error {
		n, err := s.repo.CountUnfinished(ctx, key)
		if err != nil {
			return backoff.Permanent(err)
		}
		if n > 0 {
			return errTasksPending
		}
		return nil
	}, backoff.WithContext(b, ctx))
}
