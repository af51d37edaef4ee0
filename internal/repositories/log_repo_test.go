package repositories

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/schooldesk/backend/internal/models"
	"github.com/schooldesk/backend/internal/store"
)

func TestLogRepoAppendAndGet(t *testing.T) {
	ctx := context.Background()
	repo := NewLogRepo(store.NewMemory())

	due := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)
	entry := &models.LogEntry{
		Action:  "update_event",
		Kind:    models.KindUpdate,
		ActorID: "admin:1",
		Details: models.Details{
			TargetID: "e1",
			Before:   map[string]any{"title": "Sports Day", "startDate": due},
			After:    map[string]any{"title": "Field Day", "startDate": due},
			Meta:     map[string]any{"reason": "rename"},
		},
	}

	id, err := repo.Append(ctx, entry)
	if err != nil {
		t.Fatal(err)
	}
	if id == "" {
		t.Fatal("expected store-assigned id")
	}
	if entry.Timestamp.IsZero() {
		t.Error("expected store-assigned timestamp")
	}

	got, err := repo.Get(ctx, id)
	if err != nil {
		t.Fatal(err)
	}
	if got.Action != "update_event" || got.Kind != models.KindUpdate || got.ActorID != "admin:1" {
		t.Errorf("header round trip: %+v", got)
	}
	if got.Details.TargetID != "e1" {
		t.Errorf("target_id = %q", got.Details.TargetID)
	}
	// Snapshots are stored normalized; times come back as canonical strings.
	if got.Details.Before["startDate"] != "2024-05-01T08:00:00.000Z" {
		t.Errorf("before.startDate = %v", got.Details.Before["startDate"])
	}
	if got.Details.Meta["reason"] != "rename" {
		t.Errorf("meta = %v", got.Details.Meta)
	}
	if got.Timestamp.IsZero() {
		t.Error("timestamp should be re-hydrated")
	}
}

func TestLogRepoBatchRecordsRoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := NewLogRepo(store.NewMemory())

	entry := &models.LogEntry{
		Action: "batch_update_fixed_timetable",
		Kind:   models.KindBatchUpdate,
		Details: models.Details{
			BeforeList: []models.BatchRecord{
				{ID: "mon-1", Fields: map[string]any{"subjectId": "s1"}},
				{ID: "mon-2", Fields: map[string]any{"subjectId": "s2"}},
			},
		},
	}

	id, err := repo.Append(ctx, entry)
	if err != nil {
		t.Fatal(err)
	}

	got, err := repo.Get(ctx, id)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(got.Details.BeforeList, entry.Details.BeforeList) {
		t.Errorf("before_list = %+v", got.Details.BeforeList)
	}
}

func TestLogRepoGetMissing(t *testing.T) {
	repo := NewLogRepo(store.NewMemory())
	if _, err := repo.Get(context.Background(), "nope"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected store.ErrNotFound, got %v", err)
	}
}

func TestLogRepoListNewestFirst(t *testing.T) {
	ctx := context.Background()
	repo := NewLogRepo(store.NewMemory())

	first, _ := repo.Append(ctx, &models.LogEntry{Action: "add_subject", Kind: models.KindCreate})
	second, _ := repo.Append(ctx, &models.LogEntry{Action: "delete_subject", Kind: models.KindDelete})

	entries, err := repo.List(ctx, 10, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 {
		t.Fatalf("len = %d", len(entries))
	}
	if entries[0].ID != second || entries[1].ID != first {
		t.Errorf("order = [%s %s], want [%s %s]", entries[0].ID, entries[1].ID, second, first)
	}
}
