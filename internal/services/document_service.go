package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/schooldesk/backend/internal/events"
	"github.com/schooldesk/backend/internal/models"
	"github.com/schooldesk/backend/internal/store"
	"go.uber.org/zap"
)

// DocumentService is the generic write path for entity documents: it applies
// the mutation, then logs it with the before/after pair the rollback engine
// needs. Entity-specific validation lives with the callers; this layer only
// guarantees that every mutation leaves a reversible audit trail.
type DocumentService struct {
	store       store.Store
	audit       *AuditService
	collections *models.CollectionTable
	publisher   events.Publisher
	log         *zap.Logger
}

func NewDocumentService(
	st store.Store,
	audit *AuditService,
	collections *models.CollectionTable,
	publisher events.Publisher,
	log *zap.Logger,
) *DocumentService {
	return &DocumentService{
		store:       st,
		audit:       audit,
		collections: collections,
		publisher:   publisher,
		log:         log,
	}
}

// Get loads one entity document.
func (s *DocumentService) Get(ctx context.Context, entity, id string) (map[string]any, error) {
	collection, err := s.collections.Resolve(entity)
	if err != nil {
		return nil, err
	}
	return s.store.Get(ctx, collection, id)
}

// Save creates or replaces a document and logs add_<entity> or
// update_<entity> with the captured snapshots. Returns whether the document
// was created. The log write never fails the mutation.
func (s *DocumentService) Save(ctx context.Context, entity, id string, body map[string]any, actorID string) (bool, error) {
	collection, err := s.collections.Resolve(entity)
	if err != nil {
		return false, err
	}

	before, err := s.store.Get(ctx, collection, id)
	created := false
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			return false, fmt.Errorf("read before snapshot: %w", err)
		}
		before = nil
		created = true
	}

	if err := s.store.Set(ctx, collection, id, body); err != nil {
		return false, err
	}

	tag := "update_" + entity
	if created {
		tag = "add_" + entity
	}
	s.audit.Log(ctx, tag, models.Details{
		TargetID: id,
		Before:   before,
		After:    body,
	}, actorID)

	s.publishChange(ctx, entity, id, tag)
	return created, nil
}

// Delete removes a document and logs delete_<entity> with the before
// snapshot needed to restore it.
func (s *DocumentService) Delete(ctx context.Context, entity, id, actorID string) error {
	collection, err := s.collections.Resolve(entity)
	if err != nil {
		return err
	}

	before, err := s.store.Get(ctx, collection, id)
	if err != nil {
		return err
	}

	if err := s.store.Delete(ctx, collection, id); err != nil {
		return err
	}

	tag := "delete_" + entity
	s.audit.Log(ctx, tag, models.Details{
		TargetID: id,
		Before:   before,
	}, actorID)

	s.publishChange(ctx, entity, id, tag)
	return nil
}

func (s *DocumentService) publishChange(ctx context.Context, entity, id, action string) {
	if s.publisher == nil {
		return
	}
	event := events.Event{
		Type:    events.EventDocumentChanged,
		Payload: map[string]any{"entity": entity, "id": id, "action": action},
	}
	if err := s.publisher.Publish(ctx, events.StreamAudit, event); err != nil {
		s.log.Warn("failed to publish document event", zap.Error(err))
	}
}
