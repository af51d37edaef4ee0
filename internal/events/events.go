package events

import "context"

// Event types
const (
	EventRollbackCompleted = "rollback_completed"
	EventRollbackFailed    = "rollback_failed"
	EventDocumentChanged   = "document_changed"
)

// StreamAudit carries rollback and document-change notifications for the
// admin UI.
const StreamAudit = "events:audit"

type Event struct {
	Type    string         `json:"type"`
	Payload map[string]any `json:"payload"`
}

type Publisher interface {
	Publish(ctx context.Context, stream string, event Event) error
}

type Subscriber interface {
	Subscribe(ctx context.Context, stream string, handler func(Event)) error
}
