package services

import (
	"context"
	"errors"
	"testing"

	"github.com/schooldesk/backend/internal/models"
	"github.com/schooldesk/backend/internal/store"
	"go.uber.org/zap"
)

func newDocumentService() (*DocumentService, *testEngine) {
	e := newTestEngine()
	docs := NewDocumentService(e.store, e.audit, models.DefaultCollectionTable(), nil, zap.NewNop())
	return docs, e
}

func TestSaveNewDocumentLogsAdd(t *testing.T) {
	ctx := context.Background()
	docs, e := newDocumentService()

	created, err := docs.Save(ctx, "subject", "s1", map[string]any{"name": "Math"}, "admin:1")
	if err != nil {
		t.Fatal(err)
	}
	if !created {
		t.Error("expected created = true")
	}

	entries := e.entriesByAction(t, "add_subject")
	if len(entries) != 1 {
		t.Fatalf("expected one add_subject entry, got %d", len(entries))
	}
	if entries[0].Details.TargetID != "s1" {
		t.Errorf("target_id = %q", entries[0].Details.TargetID)
	}
	if entries[0].Details.Before != nil {
		t.Error("before must be absent for a create")
	}
}

func TestSaveExistingDocumentLogsUpdateWithBefore(t *testing.T) {
	ctx := context.Background()
	docs, e := newDocumentService()

	_, _ = docs.Save(ctx, "subject", "s1", map[string]any{"name": "Math"}, "admin:1")
	created, err := docs.Save(ctx, "subject", "s1", map[string]any{"name": "Mathematics"}, "admin:1")
	if err != nil {
		t.Fatal(err)
	}
	if created {
		t.Error("expected created = false")
	}

	entries := e.entriesByAction(t, "update_subject")
	if len(entries) != 1 {
		t.Fatalf("expected one update_subject entry, got %d", len(entries))
	}
	if entries[0].Details.Before["name"] != "Math" {
		t.Errorf("before = %v", entries[0].Details.Before)
	}
	if entries[0].Details.After["name"] != "Mathematics" {
		t.Errorf("after = %v", entries[0].Details.After)
	}
}

func TestDeleteLogsBeforeSnapshot(t *testing.T) {
	ctx := context.Background()
	docs, e := newDocumentService()

	_, _ = docs.Save(ctx, "event", "e1", map[string]any{"title": "Sports Day"}, "admin:1")
	if err := docs.Delete(ctx, "event", "e1", "admin:1"); err != nil {
		t.Fatal(err)
	}

	if _, err := e.store.Get(ctx, "events", "e1"); !errors.Is(err, store.ErrNotFound) {
		t.Error("document should be gone")
	}

	entries := e.entriesByAction(t, "delete_event")
	if len(entries) != 1 {
		t.Fatalf("expected one delete_event entry, got %d", len(entries))
	}
	if entries[0].Details.Before["title"] != "Sports Day" {
		t.Errorf("before = %v", entries[0].Details.Before)
	}
}

func TestDeleteMissingDocument(t *testing.T) {
	docs, _ := newDocumentService()
	if err := docs.Delete(context.Background(), "event", "missing", "admin:1"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestSaveUnknownEntity(t *testing.T) {
	docs, _ := newDocumentService()
	if _, err := docs.Save(context.Background(), "homework", "h1", map[string]any{}, "admin:1"); err == nil {
		t.Error("expected error for entity with no collection rule")
	}
}

// End to end: mutate through the document service, then undo through the
// rollback engine.
func TestSaveThenRollback(t *testing.T) {
	ctx := context.Background()
	docs, e := newDocumentService()

	_, _ = docs.Save(ctx, "subject", "s1", map[string]any{"name": "Math"}, "admin:1")
	_, _ = docs.Save(ctx, "subject", "s1", map[string]any{"name": "Mathematics"}, "admin:1")

	updates := e.entriesByAction(t, "update_subject")
	if len(updates) != 1 {
		t.Fatal("setup failed")
	}

	if err := e.rollback.Rollback(ctx, updates[0].ID, "admin:2"); err != nil {
		t.Fatal(err)
	}

	body, err := e.store.Get(ctx, "subjects", "s1")
	if err != nil {
		t.Fatal(err)
	}
	if body["name"] != "Math" {
		t.Errorf("name = %v, want rollback to original", body["name"])
	}
}
