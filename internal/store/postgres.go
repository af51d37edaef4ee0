package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// Postgres stores every collection in a single documents table keyed by
// (collection, id) with a jsonb body. Commit maps to one transaction, which
// is what gives rollbacks their all-or-nothing guarantee.
type Postgres struct {
	pool *pgxpool.Pool
	log  *zap.Logger
}

func NewPostgres(pool *pgxpool.Pool, log *zap.Logger) *Postgres {
	return &Postgres{pool: pool, log: log}
}

func (s *Postgres) Get(ctx context.Context, collection, id string) (map[string]any, error) {
	var body map[string]any
	err := s.pool.QueryRow(ctx, `
		SELECT body FROM documents WHERE collection = $1 AND id = $2
	`, collection, id).Scan(&body)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return body, nil
}

func (s *Postgres) Set(ctx context.Context, collection, id string, body map[string]any) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO documents (collection, id, body) VALUES ($1, $2, $3)
		ON CONFLICT (collection, id) DO UPDATE SET body = EXCLUDED.body, updated_at = now()
	`, collection, id, body)
	return err
}

func (s *Postgres) Update(ctx context.Context, collection, id string, fields map[string]any) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE documents SET body = body || $3, updated_at = now()
		WHERE collection = $1 AND id = $2
	`, collection, id, fields)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("update %s/%s: %w", collection, id, ErrNotFound)
	}
	return nil
}

func (s *Postgres) Delete(ctx context.Context, collection, id string) error {
	_, err := s.pool.Exec(ctx, `
		DELETE FROM documents WHERE collection = $1 AND id = $2
	`, collection, id)
	return err
}

func (s *Postgres) Add(ctx context.Context, collection string, body map[string]any) (string, error) {
	var id string
	err := s.pool.QueryRow(ctx, `
		INSERT INTO documents (collection, id, body)
		VALUES ($1, gen_random_uuid()::text, $2)
		RETURNING id
	`, collection, body).Scan(&id)
	if err != nil {
		return "", err
	}
	return id, nil
}

func (s *Postgres) List(ctx context.Context, collection string, limit, offset int) ([]Document, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	rows, err := s.pool.Query(ctx, `
		SELECT id, body FROM documents WHERE collection = $1
		ORDER BY created_at DESC LIMIT $2 OFFSET $3
	`, collection, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var docs []Document
	for rows.Next() {
		var d Document
		if err := rows.Scan(&d.ID, &d.Body); err != nil {
			return nil, err
		}
		docs = append(docs, d)
	}
	return docs, rows.Err()
}

func (s *Postgres) Commit(ctx context.Context, writes []Write) error {
	if len(writes) == 0 {
		return nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	for _, w := range writes {
		switch w.Op {
		case OpSet:
			_, err = tx.Exec(ctx, `
				INSERT INTO documents (collection, id, body) VALUES ($1, $2, $3)
				ON CONFLICT (collection, id) DO UPDATE SET body = EXCLUDED.body, updated_at = now()
			`, w.Collection, w.ID, w.Body)
		case OpUpdate:
			var tag pgconn.CommandTag
			tag, err = tx.Exec(ctx, `
				UPDATE documents SET body = body || $3, updated_at = now()
				WHERE collection = $1 AND id = $2
			`, w.Collection, w.ID, w.Body)
			if err == nil && tag.RowsAffected() == 0 {
				err = fmt.Errorf("update %s/%s: %w", w.Collection, w.ID, ErrNotFound)
			}
		case OpDelete:
			_, err = tx.Exec(ctx, `
				DELETE FROM documents WHERE collection = $1 AND id = $2
			`, w.Collection, w.ID)
		default:
			err = fmt.Errorf("unknown write op %q", w.Op)
		}
		if err != nil {
			return fmt.Errorf("batch write %s %s/%s: %w", w.Op, w.Collection, w.ID, err)
		}
	}

	return tx.Commit(ctx)
}

func (s *Postgres) Now(ctx context.Context) (time.Time, error) {
	var t time.Time
	if err := s.pool.QueryRow(ctx, `SELECT now()`).Scan(&t); err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}
