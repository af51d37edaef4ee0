package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Memory is an in-process Store for tests and local development. Commit
// validates every write against the current state before touching it, so a
// failing batch leaves the store unchanged, matching the Postgres
// transaction semantics.
type Memory struct {
	mu   sync.RWMutex
	data map[string]map[string]map[string]any // collection -> id -> body
	seq  map[string]map[string]int64          // insertion order, for List
	next int64
}

func NewMemory() *Memory {
	return &Memory{
		data: make(map[string]map[string]map[string]any),
		seq:  make(map[string]map[string]int64),
	}
}

func (s *Memory) Get(_ context.Context, collection, id string) (map[string]any, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	body, ok := s.data[collection][id]
	if !ok {
		return nil, ErrNotFound
	}
	return copyBody(body), nil
}

func (s *Memory) Set(_ context.Context, collection, id string, body map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.set(collection, id, body)
	return nil
}

func (s *Memory) Update(_ context.Context, collection, id string, fields map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.update(collection, id, fields)
}

func (s *Memory) Delete(_ context.Context, collection, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data[collection], id)
	delete(s.seq[collection], id)
	return nil
}

func (s *Memory) Add(_ context.Context, collection string, body map[string]any) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := uuid.NewString()
	s.set(collection, id, body)
	return id, nil
}

func (s *Memory) List(_ context.Context, collection string, limit, offset int) ([]Document, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.data[collection]))
	for id := range s.data[collection] {
		ids = append(ids, id)
	}
	// Newest first, like the Postgres created_at ordering.
	sort.Slice(ids, func(i, j int) bool {
		return s.seq[collection][ids[i]] > s.seq[collection][ids[j]]
	})

	if offset >= len(ids) {
		return nil, nil
	}
	ids = ids[offset:]
	if len(ids) > limit {
		ids = ids[:limit]
	}

	docs := make([]Document, 0, len(ids))
	for _, id := range ids {
		docs = append(docs, Document{ID: id, Body: copyBody(s.data[collection][id])})
	}
	return docs, nil
}

func (s *Memory) Commit(_ context.Context, writes []Write) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Validate first: an unknown op or an update against a missing document
	// fails the whole batch before anything is applied.
	for _, w := range writes {
		switch w.Op {
		case OpSet, OpDelete:
		case OpUpdate:
			if _, ok := s.data[w.Collection][w.ID]; !ok {
				return fmt.Errorf("batch write update %s/%s: %w", w.Collection, w.ID, ErrNotFound)
			}
		default:
			return fmt.Errorf("unknown write op %q", w.Op)
		}
	}

	for _, w := range writes {
		switch w.Op {
		case OpSet:
			s.set(w.Collection, w.ID, w.Body)
		case OpUpdate:
			_ = s.update(w.Collection, w.ID, w.Body)
		case OpDelete:
			delete(s.data[w.Collection], w.ID)
			delete(s.seq[w.Collection], w.ID)
		}
	}
	return nil
}

func (s *Memory) Now(_ context.Context) (time.Time, error) {
	return time.Now().UTC(), nil
}

func (s *Memory) set(collection, id string, body map[string]any) {
	if s.data[collection] == nil {
		s.data[collection] = make(map[string]map[string]any)
		s.seq[collection] = make(map[string]int64)
	}
	if _, ok := s.seq[collection][id]; !ok {
		s.next++
		s.seq[collection][id] = s.next
	}
	s.data[collection][id] = copyBody(body)
}

func (s *Memory) update(collection, id string, fields map[string]any) error {
	body, ok := s.data[collection][id]
	if !ok {
		return fmt.Errorf("update %s/%s: %w", collection, id, ErrNotFound)
	}
	for k, v := range fields {
		body[k] = v
	}
	return nil
}

func copyBody(body map[string]any) map[string]any {
	if body == nil {
		return nil
	}
	out := make(map[string]any, len(body))
	for k, v := range body {
		out[k] = copyValue(v)
	}
	return out
}

func copyValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		return copyBody(val)
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = copyValue(item)
		}
		return out
	default:
		return v
	}
}
