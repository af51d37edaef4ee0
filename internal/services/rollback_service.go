package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/schooldesk/backend/internal/events"
	"github.com/schooldesk/backend/internal/models"
	"github.com/schooldesk/backend/internal/repositories"
	"github.com/schooldesk/backend/internal/snapshot"
	"github.com/schooldesk/backend/internal/store"
	"go.uber.org/zap"
)

// RollbackService computes and applies the compensating write(s) for one
// logged action. All inverse writes for a rollback go through a single
// atomic batch: either the whole rollback lands or the store is untouched.
//
// A rollback unconditionally overwrites with the logged snapshot; changes
// made to the same documents since the original action are clobbered. That
// race is accepted, the log records what was restored. Concurrent rollbacks
// of the same entry are not serialized here; callers that retry must do so
// one at a time.
type RollbackService struct {
	store       store.Store
	logs        *repositories.LogRepo
	audit       *AuditService
	collections *models.CollectionTable
	publisher   events.Publisher
	log         *zap.Logger
}

func NewRollbackService(
	st store.Store,
	logs *repositories.LogRepo,
	audit *AuditService,
	collections *models.CollectionTable,
	publisher events.Publisher,
	log *zap.Logger,
) *RollbackService {
	return &RollbackService{
		store:       st,
		logs:        logs,
		audit:       audit,
		collections: collections,
		publisher:   publisher,
		log:         log,
	}
}

// rollbackPlan is the computed inverse of one entry, ready to commit.
type rollbackPlan struct {
	writes   []store.Write
	restored []string // target ids overwritten or field-restored
	deleted  []string // target ids deleted
	skipped  int      // batch records dropped for lack of a usable id
}

// Rollback undoes the action recorded at logID. Every failure is terminal
// for this attempt and leaves a rollback_action_failed entry behind; success
// leaves a rollback_action entry referencing the original.
func (s *RollbackService) Rollback(ctx context.Context, logID, actorID string) error {
	if actorID == "" {
		actorID = models.ActorSystem
	}

	entry, err := s.logs.Get(ctx, logID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			err = fmt.Errorf("log entry %s: %w", logID, ErrLogNotFound)
		}
		s.recordFailure(ctx, logID, "", actorID, err)
		return err
	}

	plan, err := s.computeInverse(entry)
	if err != nil {
		s.recordFailure(ctx, logID, entry.Action, actorID, err)
		return err
	}

	if err := s.store.Commit(ctx, plan.writes); err != nil {
		err = fmt.Errorf("%w: %w", ErrBatchCommitFailed, err)
		s.recordFailure(ctx, logID, entry.Action, actorID, err)
		return err
	}

	s.recordSuccess(ctx, entry, actorID, plan)

	s.log.Info("rollback applied",
		zap.String("log_id", logID),
		zap.String("action", entry.Action),
		zap.Int("restored", len(plan.restored)),
		zap.Int("deleted", len(plan.deleted)),
		zap.Int("skipped", plan.skipped),
	)
	return nil
}

// computeInverse classifies the entry and builds its compensating writes.
// No store write happens here; every rejection leaves the store untouched.
func (s *RollbackService) computeInverse(entry *models.LogEntry) (*rollbackPlan, error) {
	kind := entry.Kind
	if kind == "" {
		// Entry written before kinds were stored; classify from the tag.
		var ok bool
		if kind, ok = models.ClassifyTag(entry.Action); !ok {
			return nil, &UnsupportedActionError{Tag: entry.Action}
		}
	}

	switch kind {
	case models.KindRollback:
		return nil, &NotReversibleError{Tag: entry.Action, Reason: "cannot roll back a rollback"}
	case models.KindIrreversible:
		return nil, &NotReversibleError{Tag: entry.Action, Reason: "affects an open-ended set of documents"}
	}

	collection, err := s.collections.Resolve(entry.Action)
	if err != nil {
		return nil, fmt.Errorf("resolve collection: %w", err)
	}

	plan := &rollbackPlan{}
	switch kind {
	case models.KindCreate:
		// The action created a document; the inverse removes it.
		id := entry.TargetID()
		if id == "" {
			return nil, fmt.Errorf("action %q: %w", entry.Action, ErrMissingTargetID)
		}
		plan.writes = append(plan.writes, store.Write{Op: store.OpDelete, Collection: collection, ID: id})
		plan.deleted = append(plan.deleted, id)

	case models.KindUpdate, models.KindUpsert:
		id := entry.TargetID()
		if id == "" {
			return nil, fmt.Errorf("action %q: %w", entry.Action, ErrMissingTargetID)
		}
		if len(entry.Details.Before) == 0 {
			// Nothing existed before an upsert/update-created document.
			plan.writes = append(plan.writes, store.Write{Op: store.OpDelete, Collection: collection, ID: id})
			plan.deleted = append(plan.deleted, id)
		} else {
			plan.writes = append(plan.writes, store.Write{
				Op:         store.OpSet,
				Collection: collection,
				ID:         id,
				Body:       snapshot.DocumentBody(entry.Details.Before),
			})
			plan.restored = append(plan.restored, id)
		}

	case models.KindDelete:
		if len(entry.Details.Before) == 0 {
			return nil, fmt.Errorf("action %q: %w", entry.Action, ErrMissingRestoreData)
		}
		id := entry.TargetID()
		if id == "" {
			return nil, fmt.Errorf("action %q: %w", entry.Action, ErrMissingTargetID)
		}
		plan.writes = append(plan.writes, store.Write{
			Op:         store.OpSet,
			Collection: collection,
			ID:         id,
			Body:       snapshot.DocumentBody(entry.Details.Before),
		})
		plan.restored = append(plan.restored, id)

	case models.KindBatchUpdate, models.KindReset:
		records := entry.Details.BeforeList
		if len(records) == 0 {
			return nil, fmt.Errorf("action %q: %w", entry.Action, ErrMissingRestoreData)
		}
		for _, rec := range records {
			if rec.ID == "" {
				plan.skipped++
				continue
			}
			plan.writes = append(plan.writes, store.Write{
				Op:         store.OpUpdate,
				Collection: collection,
				ID:         rec.ID,
				Body:       snapshot.DocumentBody(rec.Fields),
			})
			plan.restored = append(plan.restored, rec.ID)
		}

	default:
		return nil, &UnsupportedActionError{Tag: entry.Action}
	}

	return plan, nil
}

// recordSuccess logs the rollback_action entry. Counts and ids only, never
// full bodies, to bound log size.
func (s *RollbackService) recordSuccess(ctx context.Context, entry *models.LogEntry, actorID string, plan *rollbackPlan) {
	meta := map[string]any{
		"rolls_back":      entry.ID,
		"original_action": entry.Action,
		"restored":        toAnySlice(plan.restored),
		"deleted":         toAnySlice(plan.deleted),
		"skipped":         plan.skipped,
	}
	s.audit.Log(ctx, models.ActionRollback, models.Details{Meta: meta}, actorID)
	s.publish(ctx, events.EventRollbackCompleted, entry.ID, entry.Action, "")
}

func (s *RollbackService) recordFailure(ctx context.Context, logID, action, actorID string, cause error) {
	meta := map[string]any{
		"rolls_back": logID,
		"error":      cause.Error(),
	}
	if action != "" {
		meta["original_action"] = action
	}
	s.audit.Log(ctx, models.ActionRollbackFailed, models.Details{Meta: meta}, actorID)
	s.publish(ctx, events.EventRollbackFailed, logID, action, cause.Error())
}

func (s *RollbackService) publish(ctx context.Context, eventType, logID, action, errMsg string) {
	if s.publisher == nil {
		return
	}
	payload := map[string]any{"log_id": logID, "action": action}
	if errMsg != "" {
		payload["error"] = errMsg
	}
	if err := s.publisher.Publish(ctx, events.StreamAudit, events.Event{Type: eventType, Payload: payload}); err != nil {
		s.log.Warn("failed to publish rollback event", zap.Error(err))
	}
}

func toAnySlice(ids []string) []any {
	out := make([]any, len(ids))
	for i, id := range ids {
		out[i] = id
	}
	return out
}
