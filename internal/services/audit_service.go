package services

import (
	"context"

	"github.com/schooldesk/backend/internal/models"
	"github.com/schooldesk/backend/internal/repositories"
	"go.uber.org/zap"
)

// AuditService appends immutable action log entries. Losing an audit record
// is preferable to failing a mutation that already completed, so Log never
// returns an error and never panics: any failure is written to the
// operational log and reported as an empty id.
type AuditService struct {
	logs *repositories.LogRepo
	log  *zap.Logger
}

func NewAuditService(logs *repositories.LogRepo, log *zap.Logger) *AuditService {
	return &AuditService{logs: logs, log: log}
}

// Log appends one entry for a performed action and returns its id, or ""
// if the entry could not be written. The tag is classified into its typed
// kind here, once, so the rollback engine never re-parses the string.
func (s *AuditService) Log(ctx context.Context, action string, details models.Details, actorID string) (logID string) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Warn("action log write panicked", zap.String("action", action), zap.Any("panic", r))
			logID = ""
		}
	}()

	if action == "" {
		s.log.Warn("action log entry dropped: empty action tag")
		return ""
	}
	if actorID == "" {
		actorID = models.ActorAnonymous
	}

	// Tags outside the taxonomy are still recorded; they just carry no kind
	// and can never be rolled back.
	kind, _ := models.ClassifyTag(action)

	entry := &models.LogEntry{
		Action:  action,
		Kind:    kind,
		ActorID: actorID,
		Details: details,
	}

	id, err := s.logs.Append(ctx, entry)
	if err != nil {
		s.log.Warn("action log write failed",
			zap.String("action", action),
			zap.String("actor_id", actorID),
			zap.Error(err),
		)
		return ""
	}
	return id
}

// List returns recent log entries, newest first.
func (s *AuditService) List(ctx context.Context, limit, offset int) ([]models.LogEntry, error) {
	return s.logs.List(ctx, limit, offset)
}

// Get loads one entry by id.
func (s *AuditService) Get(ctx context.Context, id string) (*models.LogEntry, error) {
	return s.logs.Get(ctx, id)
}
