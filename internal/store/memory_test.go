package store

import (
	"context"
	"errors"
	"testing"
)

func TestMemorySetGetDelete(t *testing.T) {
	ctx := context.Background()
	s := NewMemory()

	if err := s.Set(ctx, "subjects", "s1", map[string]any{"name": "Math"}); err != nil {
		t.Fatal(err)
	}

	body, err := s.Get(ctx, "subjects", "s1")
	if err != nil {
		t.Fatal(err)
	}
	if body["name"] != "Math" {
		t.Errorf("name = %v", body["name"])
	}

	// The returned body is a copy; mutating it must not touch the store.
	body["name"] = "Physics"
	body2, _ := s.Get(ctx, "subjects", "s1")
	if body2["name"] != "Math" {
		t.Error("Get must return an isolated copy")
	}

	if err := s.Delete(ctx, "subjects", "s1"); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Get(ctx, "subjects", "s1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	// Deleting a missing document is a no-op, not an error.
	if err := s.Delete(ctx, "subjects", "missing"); err != nil {
		t.Errorf("delete of missing doc: %v", err)
	}
}

func TestMemoryUpdateMergesFields(t *testing.T) {
	ctx := context.Background()
	s := NewMemory()

	_ = s.Set(ctx, "settings", "timetable", map[string]any{"periodsPerDay": 6, "weekStart": "mon"})
	if err := s.Update(ctx, "settings", "timetable", map[string]any{"periodsPerDay": 7}); err != nil {
		t.Fatal(err)
	}

	body, _ := s.Get(ctx, "settings", "timetable")
	if body["periodsPerDay"] != 7 || body["weekStart"] != "mon" {
		t.Errorf("merge result = %v", body)
	}

	if err := s.Update(ctx, "settings", "missing", map[string]any{"x": 1}); !errors.Is(err, ErrNotFound) {
		t.Errorf("update of missing doc: %v", err)
	}
}

func TestMemoryAddAssignsID(t *testing.T) {
	ctx := context.Background()
	s := NewMemory()

	id1, err := s.Add(ctx, "action_log", map[string]any{"action": "add_subject"})
	if err != nil {
		t.Fatal(err)
	}
	id2, _ := s.Add(ctx, "action_log", map[string]any{"action": "delete_subject"})
	if id1 == "" || id1 == id2 {
		t.Errorf("ids must be unique and non-empty: %q %q", id1, id2)
	}

	docs, err := s.List(ctx, "action_log", 10, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(docs) != 2 {
		t.Fatalf("len = %d", len(docs))
	}
	// Newest first.
	if docs[0].ID != id2 {
		t.Errorf("expected newest first, got %q", docs[0].ID)
	}
}

func TestMemoryCommitAppliesAllWrites(t *testing.T) {
	ctx := context.Background()
	s := NewMemory()
	_ = s.Set(ctx, "timetable_slots", "mon-1", map[string]any{"subjectId": "s1", "room": "101"})

	err := s.Commit(ctx, []Write{
		{Op: OpSet, Collection: "events", ID: "e1", Body: map[string]any{"title": "Sports Day"}},
		{Op: OpUpdate, Collection: "timetable_slots", ID: "mon-1", Body: map[string]any{"subjectId": "s2"}},
		{Op: OpDelete, Collection: "timetable_slots", ID: "mon-2"},
	})
	if err != nil {
		t.Fatal(err)
	}

	if _, err := s.Get(ctx, "events", "e1"); err != nil {
		t.Errorf("set write not applied: %v", err)
	}
	slot, _ := s.Get(ctx, "timetable_slots", "mon-1")
	if slot["subjectId"] != "s2" || slot["room"] != "101" {
		t.Errorf("update write result = %v", slot)
	}
}

func TestMemoryCommitIsAtomic(t *testing.T) {
	ctx := context.Background()
	s := NewMemory()

	err := s.Commit(ctx, []Write{
		{Op: OpSet, Collection: "events", ID: "e1", Body: map[string]any{"title": "Sports Day"}},
		{Op: OpUpdate, Collection: "timetable_slots", ID: "missing", Body: map[string]any{"x": 1}},
	})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	// The failing update must prevent the preceding set from landing.
	if _, err := s.Get(ctx, "events", "e1"); !errors.Is(err, ErrNotFound) {
		t.Error("batch was partially applied")
	}
}
