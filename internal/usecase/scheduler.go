package usecase

import (
	"context"

	"github.com/iho/ledgersync/internal/domain"
)

// InlineScheduler runs the external phase right after the primary commit,
// in the calling goroutine.
type InlineScheduler struct {
	coordinator *Coordinator
}

// NewInlineScheduler creates a new InlineScheduler.
func NewInlineScheduler(coordinator *Coordinator) *InlineScheduler {
	return &InlineScheduler{coordinator: coordinator}
}

func (s *InlineScheduler) Schedule(context.Context, Transaction, *domain.SyncTask) error {
	return nil
}

// Committed runs the task. The request context may be cancelled by then;
// the external phase is not cancellable once the primary write committed.
func (s *InlineScheduler) Committed(ctx context.Context, task *domain.SyncTask) {
	s.coordinator.Process(context.WithoutCancel(ctx), task)
}

func (s *InlineScheduler) Cancel(context.Context, Transaction, domain.EntityKey) error {
	return nil
}

func (s *InlineScheduler) Drain(context.Context, domain.EntityKey) error {
	return nil
}
