package models

import (
	"strings"
	"time"
)

// Actor sentinels for log entries written without an operator identity.
const (
	ActorAnonymous = "anonymous"
	ActorSystem    = "system"
)

// Well-known action tags emitted by the engine itself.
const (
	ActionRollback       = "rollback_action"
	ActionRollbackFailed = "rollback_action_failed"
)

// ActionKind is the typed classification of an action tag. It is computed
// once, when the action is logged, and stored on the entry; the rollback
// engine dispatches on it instead of re-parsing the tag string.
type ActionKind string

const (
	KindCreate       ActionKind = "create"       // add_* — inverse: delete the created document
	KindUpdate       ActionKind = "update"       // update_* — inverse: restore the before snapshot
	KindUpsert       ActionKind = "upsert"       // upsert_* — inverse: restore, or delete if nothing existed before
	KindDelete       ActionKind = "delete"       // delete_* — inverse: recreate from the before snapshot
	KindBatchUpdate  ActionKind = "batch_update" // batch_update_* — inverse: per-document field restore
	KindReset        ActionKind = "reset"        // reset_* — inverse: per-document field restore
	KindRollback     ActionKind = "rollback"     // a rollback itself; never reversible
	KindIrreversible ActionKind = "irreversible" // open-ended effect; never reversible
)

// IrreversibleTags lists actions whose effect touches an open-ended set of
// documents (future-dated bulk writes). They are classified as irreversible
// at log time so a rollback attempt is rejected before any write is computed.
var IrreversibleTags = map[string]bool{
	"apply_template_future": true,
	"reset_future_dates":    true,
}

// ClassifyTag maps an action tag to its kind. Returns false for tags outside
// the taxonomy; such actions are still logged but can never be rolled back.
func ClassifyTag(tag string) (ActionKind, bool) {
	switch {
	case tag == ActionRollback || tag == ActionRollbackFailed:
		return KindRollback, true
	case IrreversibleTags[tag]:
		return KindIrreversible, true
	case strings.HasPrefix(tag, "batch_update_"):
		return KindBatchUpdate, true
	case strings.HasPrefix(tag, "reset_"):
		return KindReset, true
	case strings.HasPrefix(tag, "add_"):
		return KindCreate, true
	case strings.HasPrefix(tag, "update_"):
		return KindUpdate, true
	case strings.HasPrefix(tag, "upsert_"):
		return KindUpsert, true
	case strings.HasPrefix(tag, "delete_"):
		return KindDelete, true
	default:
		return "", false
	}
}

// BatchRecord is one document's worth of state inside a batch_update_* or
// reset_* entry: the document id plus the fields the action touched.
type BatchRecord struct {
	ID     string         `json:"id"`
	Fields map[string]any `json:"fields"`
}

// Details carries the state needed to invert an action. For single-document
// actions Before/After hold full snapshots; for batch actions BeforeList and
// AfterList hold per-document field sets. TargetID is the uniform explicit
// document id; entries written by older callers may instead carry an "id"
// field inside the snapshots, which the engine accepts as a fallback.
type Details struct {
	TargetID   string         `json:"target_id,omitempty"`
	Before     map[string]any `json:"before,omitempty"`
	After      map[string]any `json:"after,omitempty"`
	BeforeList []BatchRecord  `json:"before_list,omitempty"`
	AfterList  []BatchRecord  `json:"after_list,omitempty"`
	Meta       map[string]any `json:"meta,omitempty"`
}

// LogEntry is one immutable record of a performed action. Entries are created
// once by the audit service and never updated; a rollback produces a new
// entry referencing the original through Details.Meta.
type LogEntry struct {
	ID        string     `json:"id"`
	Action    string     `json:"action"`
	Kind      ActionKind `json:"kind,omitempty"`
	ActorID   string     `json:"actor_id"`
	Timestamp time.Time  `json:"timestamp"`
	Details   Details    `json:"details"`
}

// TargetID resolves the explicit target id, falling back to an "id" field in
// the before then after snapshot for entries predating the explicit field.
func (e *LogEntry) TargetID() string {
	if e.Details.TargetID != "" {
		return e.Details.TargetID
	}
	if id, ok := e.Details.Before["id"].(string); ok && id != "" {
		return id
	}
	if id, ok := e.Details.After["id"].(string); ok && id != "" {
		return id
	}
	return ""
}
