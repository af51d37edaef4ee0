package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/schooldesk/backend/internal/models"
	"github.com/schooldesk/backend/internal/snapshot"
	"github.com/schooldesk/backend/internal/store"
)

// LogCollection is where action log entries live in the document store.
const LogCollection = "action_log"

// LogRepo persists log entries as documents in the action_log collection.
// Entries are append-only: there is no update or delete path.
type LogRepo struct {
	store store.Store
}

func NewLogRepo(st store.Store) *LogRepo {
	return &LogRepo{store: st}
}

// Append writes one entry with a store-assigned id and timestamp and returns
// the id. The entry's snapshots are normalized before storage.
func (r *LogRepo) Append(ctx context.Context, entry *models.LogEntry) (string, error) {
	ts, err := r.store.Now(ctx)
	if err != nil {
		return "", fmt.Errorf("server timestamp: %w", err)
	}
	entry.Timestamp = ts

	id, err := r.store.Add(ctx, LogCollection, encodeEntry(entry))
	if err != nil {
		return "", fmt.Errorf("append log entry: %w", err)
	}
	entry.ID = id
	return id, nil
}

// Get loads one entry by id. Returns store.ErrNotFound when it does not exist.
func (r *LogRepo) Get(ctx context.Context, id string) (*models.LogEntry, error) {
	body, err := r.store.Get(ctx, LogCollection, id)
	if err != nil {
		return nil, err
	}
	return decodeEntry(id, body), nil
}

// List returns recent entries, newest first.
func (r *LogRepo) List(ctx context.Context, limit, offset int) ([]models.LogEntry, error) {
	docs, err := r.store.List(ctx, LogCollection, limit, offset)
	if err != nil {
		return nil, err
	}

	entries := make([]models.LogEntry, 0, len(docs))
	for _, d := range docs {
		entries = append(entries, *decodeEntry(d.ID, d.Body))
	}
	return entries, nil
}

func encodeEntry(e *models.LogEntry) map[string]any {
	details := map[string]any{}
	if e.Details.TargetID != "" {
		details["target_id"] = e.Details.TargetID
	}
	if e.Details.Before != nil {
		details["before"] = snapshot.NormalizeMap(e.Details.Before)
	}
	if e.Details.After != nil {
		details["after"] = snapshot.NormalizeMap(e.Details.After)
	}
	if len(e.Details.BeforeList) > 0 {
		details["before_list"] = encodeRecords(e.Details.BeforeList)
	}
	if len(e.Details.AfterList) > 0 {
		details["after_list"] = encodeRecords(e.Details.AfterList)
	}
	if e.Details.Meta != nil {
		details["meta"] = snapshot.NormalizeMap(e.Details.Meta)
	}

	return map[string]any{
		"action":    e.Action,
		"kind":      string(e.Kind),
		"actor_id":  e.ActorID,
		"timestamp": snapshot.Normalize(e.Timestamp),
		"details":   details,
	}
}

func encodeRecords(records []models.BatchRecord) []any {
	out := make([]any, 0, len(records))
	for _, rec := range records {
		out = append(out, map[string]any{
			"id":     rec.ID,
			"fields": snapshot.NormalizeMap(rec.Fields),
		})
	}
	return out
}

func decodeEntry(id string, body map[string]any) *models.LogEntry {
	e := &models.LogEntry{
		ID:      id,
		Action:  asString(body["action"]),
		Kind:    models.ActionKind(asString(body["kind"])),
		ActorID: asString(body["actor_id"]),
	}
	if ts, ok := snapshot.Denormalize(body["timestamp"]).(time.Time); ok {
		e.Timestamp = ts
	}

	details, _ := body["details"].(map[string]any)
	e.Details = models.Details{
		TargetID:   asString(details["target_id"]),
		Before:     asMap(details["before"]),
		After:      asMap(details["after"]),
		BeforeList: decodeRecords(details["before_list"]),
		AfterList:  decodeRecords(details["after_list"]),
		Meta:       asMap(details["meta"]),
	}
	return e
}

func decodeRecords(v any) []models.BatchRecord {
	items, ok := v.([]any)
	if !ok {
		return nil
	}
	records := make([]models.BatchRecord, 0, len(items))
	for _, item := range items {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		records = append(records, models.BatchRecord{
			ID:     asString(m["id"]),
			Fields: asMap(m["fields"]),
		})
	}
	return records
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}

func asMap(v any) map[string]any {
	m, _ := v.(map[string]any)
	return m
}
