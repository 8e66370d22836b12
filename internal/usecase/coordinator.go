package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/iho/ledgersync/internal/domain"
	"github.com/iho/ledgersync/internal/translator"
)

// SyncResult is the outcome of the external phase of one operation.
type SyncResult struct {
	Outcome    domain.SyncOutcome
	Model      string
	ExternalID int64
	Err        error
}

// Detail renders the result for the task log.
func (r SyncResult) Detail() string {
	if r.Err != nil {
		return r.Err.Error()
	}
	return ""
}

// Coordinator mirrors committed primary-store writes to the ERP.
// Nothing it does can fail the primary operation: every external error is
// logged with the entity key and absorbed into a SyncResult.
type Coordinator struct {
	client   ExternalClient
	mappings MappingStore
	lookup   *Lookup
	metrics  SyncMetrics
	logger   zerolog.Logger
}

// NewCoordinator creates a new Coordinator.
func NewCoordinator(
	client ExternalClient,
	mappings MappingStore,
	lookup *Lookup,
	metrics SyncMetrics,
	logger zerolog.Logger,
) *Coordinator {
	return &Coordinator{
		client:   client,
		mappings: mappings,
		lookup:   lookup,
		metrics:  metrics,
		logger:   logger,
	}
}

// Process runs the external phase of a committed create or update.
func (c *Coordinator) Process(ctx context.Context, task *domain.SyncTask) SyncResult {
	var res SyncResult
	switch task.Operation {
	case domain.OpCreate:
		if task.After == nil {
			res = failed("", fmt.Errorf("%w: create task %s has no snapshot", domain.ErrPreconditionViolation, task.ID))
			break
		}
		res = c.create(ctx, task.After)
	case domain.OpUpdate:
		if task.After == nil {
			res = failed("", fmt.Errorf("%w: update task %s has no snapshot", domain.ErrPreconditionViolation, task.ID))
			break
		}
		res = c.update(ctx, task.Before, task.After)
	default:
		// Deletes run synchronously through Delete and are never queued.
		res = failed("", fmt.Errorf("%w: operation %q cannot be processed from a task", domain.ErrPreconditionViolation, task.Operation))
	}

	c.record(task.Key(), task.Operation, res)
	return res
}

// Delete removes the ERP record of key first, then always runs deletePrimary.
// Only the primary deletion error is returned.
func (c *Coordinator) Delete(
	ctx context.Context,
	key domain.EntityKey,
	deletePrimary func(ctx context.Context) error,
) (SyncResult, error) {
	res := c.deleteExternal(ctx, key)
	c.record(key, domain.OpDelete, res)

	if err := deletePrimary(ctx); err != nil {
		return res, err
	}
	return res, nil
}

func (c *Coordinator) create(ctx context.Context, e domain.Entity) SyncResult {
	key := domain.KeyOf(e)
	tr := translator.For(e)

	if id, ok, err := c.mappings.ResolveExternal(ctx, key.Type, key.ID); err != nil {
		return failed(tr.Model(), err)
	} else if ok {
		return SyncResult{Outcome: domain.OutcomeSkipped, Model: tr.Model(), ExternalID: id}
	}

	tctx, err := c.lookup.Context(ctx, e, tr.Needs(e))
	if err != nil {
		return failed(tr.Model(), err)
	}

	res, err := tr.Translate(e, tctx)
	if err != nil {
		return failed(tr.Model(), err)
	}

	externalID, err := c.client.Create(ctx, res.Model, res.Values)
	if err != nil {
		return failed(res.Model, err)
	}

	if _, err := c.mappings.Put(ctx, key.Type, key.ID, res.Model, externalID); err != nil {
		if errors.Is(err, domain.ErrMappingConflict) {
			c.discardOrphan(ctx, key, res.Model, externalID)
			return SyncResult{Outcome: domain.OutcomeConflict, Model: res.Model, ExternalID: externalID, Err: err}
		}
		return SyncResult{Outcome: domain.OutcomeFailed, Model: res.Model, ExternalID: externalID, Err: err}
	}

	if res.Entry != nil {
		if err := c.settle(ctx, externalID, domain.LedgerStateDraft, res.Entry.State); err != nil {
			return SyncResult{Outcome: domain.OutcomeFailed, Model: res.Model, ExternalID: externalID, Err: err}
		}
	}

	return SyncResult{Outcome: domain.OutcomeSynced, Model: res.Model, ExternalID: externalID}
}

func (c *Coordinator) update(ctx context.Context, before, after domain.Entity) SyncResult {
	key := domain.KeyOf(after)
	tr := translator.For(after)

	externalID, ok, err := c.mappings.ResolveExternal(ctx, key.Type, key.ID)
	if err != nil {
		return failed(tr.Model(), err)
	}
	if !ok {
		return SyncResult{Outcome: domain.OutcomeSkipped, Model: tr.Model()}
	}

	if prev, isTx := before.(*domain.Transaction); isTx && prev.IsConfirmed() {
		return SyncResult{
			Outcome:    domain.OutcomeUnsupported,
			Model:      tr.Model(),
			ExternalID: externalID,
			Err:        fmt.Errorf("%w: journal entry %d is posted", domain.ErrUnsupported, externalID),
		}
	}

	needs := tr.Needs(after)
	if before != nil {
		prevNeeds := tr.Needs(before)
		for i := range prevNeeds.Refs {
			prevNeeds.Refs[i].Required = false
		}
		needs = prevNeeds.Merge(needs)
	}

	tctx, err := c.lookup.Context(ctx, after, needs)
	if err != nil {
		return failed(tr.Model(), err)
	}

	next, err := tr.Translate(after, tctx)
	if err != nil {
		return failed(tr.Model(), err)
	}

	// A previous version that no longer translates is diffed as empty, so
	// every field is written.
	var prev translator.Result
	if before != nil {
		if prev, err = tr.Translate(before, tctx); err != nil {
			prev = translator.Result{}
		}
	}

	if next.Entry != nil {
		return c.updateEntry(ctx, externalID, prev.Entry, next.Entry)
	}

	changed := translator.Diff(prev.Values, next.Values)
	if len(changed) == 0 {
		return SyncResult{Outcome: domain.OutcomeSkipped, Model: next.Model, ExternalID: externalID}
	}
	if err := c.client.Write(ctx, next.Model, externalID, changed); err != nil {
		return SyncResult{Outcome: domain.OutcomeFailed, Model: next.Model, ExternalID: externalID, Err: err}
	}

	return SyncResult{Outcome: domain.OutcomeSynced, Model: next.Model, ExternalID: externalID}
}

func (c *Coordinator) updateEntry(ctx context.Context, externalID int64, before, after *domain.LedgerEntry) SyncResult {
	model := domain.ModelLedgerEntry
	if before == nil {
		before = &domain.LedgerEntry{}
	}

	changes := translator.DiffEntry(before, after)
	if changes.Empty() && before.State == after.State {
		return SyncResult{Outcome: domain.OutcomeSkipped, Model: model, ExternalID: externalID}
	}

	values := map[string]any(changes.Header)
	if len(changes.Lines[0]) > 0 || len(changes.Lines[1]) > 0 {
		lineIDs, err := c.entryLines(ctx, externalID)
		if err != nil {
			return SyncResult{Outcome: domain.OutcomeFailed, Model: model, ExternalID: externalID, Err: err}
		}
		values["line_ids"] = changes.LineCommands(lineIDs)
	}

	if len(values) > 0 {
		if err := c.client.Write(ctx, model, externalID, values); err != nil {
			return SyncResult{Outcome: domain.OutcomeFailed, Model: model, ExternalID: externalID, Err: err}
		}
	}

	if before.State != after.State {
		if err := c.settle(ctx, externalID, before.State, after.State); err != nil {
			return SyncResult{Outcome: domain.OutcomeFailed, Model: model, ExternalID: externalID, Err: err}
		}
	}

	return SyncResult{Outcome: domain.OutcomeSynced, Model: model, ExternalID: externalID}
}

// entryLines returns the ERP ids of the principal and counterpart lines of a
// journal entry. Lines are created in that order, so ascending ids match.
func (c *Coordinator) entryLines(ctx context.Context, moveID int64) ([2]int64, error) {
	var ids [2]int64

	records, err := c.client.Search(ctx, domain.ModelLedgerLine,
		[]domain.Condition{domain.Where("move_id", moveID)},
		domain.SearchOptions{Fields: []string{"id"}, Order: "id asc"})
	if err != nil {
		return ids, err
	}
	if len(records) != len(ids) {
		return ids, fmt.Errorf("%w: journal entry %d has %d lines", domain.ErrExternalRejected, moveID, len(records))
	}

	for i, rec := range records {
		id, ok := recordID(rec)
		if !ok {
			return ids, fmt.Errorf("%w: journal line without id", domain.ErrExternalRejected)
		}
		ids[i] = id
	}
	return ids, nil
}

func (c *Coordinator) deleteExternal(ctx context.Context, key domain.EntityKey) SyncResult {
	mapping, err := c.mappings.GetByLocal(ctx, key.Type, key.ID)
	if errors.Is(err, domain.ErrMappingNotFound) {
		return SyncResult{Outcome: domain.OutcomeSkipped}
	}
	if err != nil {
		return failed("", err)
	}

	model, externalID := mapping.ExternalType, mapping.ExternalID

	if model == domain.ModelLedgerEntry {
		records, err := c.client.Read(ctx, model, []int64{externalID}, []string{"state"})
		if err != nil {
			return SyncResult{Outcome: domain.OutcomeFailed, Model: model, ExternalID: externalID, Err: err}
		}
		if len(records) > 0 && records[0]["state"] == domain.LedgerStatePosted {
			if _, err := c.client.Call(ctx, model, domain.MethodDraft, []int64{externalID}); err != nil {
				return SyncResult{Outcome: domain.OutcomeFailed, Model: model, ExternalID: externalID, Err: err}
			}
		}
	}

	if err := c.client.Unlink(ctx, model, []int64{externalID}); err != nil {
		return SyncResult{Outcome: domain.OutcomeFailed, Model: model, ExternalID: externalID, Err: err}
	}

	if err := c.mappings.Delete(ctx, key.Type, key.ID); err != nil {
		return SyncResult{Outcome: domain.OutcomeFailed, Model: model, ExternalID: externalID, Err: err}
	}

	return SyncResult{Outcome: domain.OutcomeSynced, Model: model, ExternalID: externalID}
}

// settle moves a journal entry from one ERP state to another. Entries are
// always created as drafts with header and both lines in place.
func (c *Coordinator) settle(ctx context.Context, moveID int64, from, to string) error {
	var method string
	switch {
	case from == to:
		return nil
	case to == domain.LedgerStatePosted:
		method = domain.MethodPost
	case to == domain.LedgerStateCancel:
		method = domain.MethodCancel
	case to == domain.LedgerStateDraft && from == domain.LedgerStateCancel:
		method = domain.MethodDraft
	default:
		return nil
	}

	if _, err := c.client.Call(ctx, domain.ModelLedgerEntry, method, []int64{moveID}); err != nil {
		return fmt.Errorf("%s on journal entry %d: %w", method, moveID, err)
	}
	return nil
}

// discardOrphan removes an ERP record whose mapping lost a race.
func (c *Coordinator) discardOrphan(ctx context.Context, key domain.EntityKey, model string, externalID int64) {
	if err := c.client.Unlink(ctx, model, []int64{externalID}); err != nil {
		c.logger.Error().
			Err(err).
			Str("local_type", string(key.Type)).
			Int64("local_id", key.ID).
			Str("external_model", model).
			Int64("external_id", externalID).
			Msg("failed to remove orphaned external record")
	}
}

func (c *Coordinator) record(key domain.EntityKey, op domain.SyncOperation, res SyncResult) {
	c.metrics.ObserveSync(key.Type, op, res.Outcome)

	var event *zerolog.Event
	switch res.Outcome {
	case domain.OutcomeFailed, domain.OutcomeConflict:
		event = c.logger.Error()
	case domain.OutcomeUnsupported:
		event = c.logger.Warn()
	default:
		event = c.logger.Debug()
	}

	event.
		Str("local_type", string(key.Type)).
		Int64("local_id", key.ID).
		Str("operation", string(op)).
		Str("external_model", res.Model).
		Int64("external_id", res.ExternalID).
		Str("outcome", string(res.Outcome))
	if res.Err != nil {
		event.Str("error_class", domain.ErrorClass(res.Err)).Err(res.Err)
	}
	event.Msg("external sync")
}

func failed(model string, err error) SyncResult {
	return SyncResult{Outcome: domain.OutcomeFailed, Model: model, Err: err}
}
