package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore keeps documents in a single jsonb table:
//
//	CREATE TABLE IF NOT EXISTS documents (
//	    collection  text        NOT NULL,
//	    id          text        NOT NULL,
//	    data        jsonb       NOT NULL,
//	    created_at  timestamptz NOT NULL DEFAULT now(),
//	    updated_at  timestamptz NOT NULL DEFAULT now(),
//	    PRIMARY KEY (collection, id)
//	);
//
// Scan order is created_at descending with id as the tiebreak, which
// gives the Query contract its stable newest-first order.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Migrate creates the documents table.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS documents (
			collection  text        NOT NULL,
			id          text        NOT NULL,
			data        jsonb       NOT NULL,
			created_at  timestamptz NOT NULL DEFAULT now(),
			updated_at  timestamptz NOT NULL DEFAULT now(),
			PRIMARY KEY (collection, id)
		)`)
	if err != nil {
		return fmt.Errorf("migrate documents table: %w", err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, collection, id string, dest interface{}) error {
	var raw []byte
	err := s.pool.QueryRow(ctx,
		`SELECT data FROM documents WHERE collection = $1 AND id = $2`,
		collection, id,
	).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("get document: %w", err)
	}
	return json.Unmarshal(raw, dest)
}

func (s *PostgresStore) Set(ctx context.Context, collection, id string, value interface{}) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO documents (collection, id, data)
		VALUES ($1, $2, $3)
		ON CONFLICT (collection, id)
		DO UPDATE SET data = EXCLUDED.data, updated_at = now()`,
		collection, id, raw)
	if err != nil {
		return fmt.Errorf("set document: %w", err)
	}
	return nil
}

func (s *PostgresStore) Update(ctx context.Context, collection, id string, patch map[string]interface{}) error {
	raw, err := json.Marshal(patch)
	if err != nil {
		return err
	}
	tag, err := s.pool.Exec(ctx, `
		UPDATE documents
		SET data = data || $3::jsonb, updated_at = now()
		WHERE collection = $1 AND id = $2`,
		collection, id, raw)
	if err != nil {
		return fmt.Errorf("update document: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) Delete(ctx context.Context, collection, id string) error {
	_, err := s.pool.Exec(ctx,
		`DELETE FROM documents WHERE collection = $1 AND id = $2`,
		collection, id)
	if err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	return nil
}

func (s *PostgresStore) Add(ctx context.Context, collection string, value interface{}) (string, error) {
	id := uuid.NewString()
	if err := s.Set(ctx, collection, id, value); err != nil {
		return "", err
	}
	return id, nil
}

func (s *PostgresStore) Query(ctx context.Context, collection string, q Query) ([]Document, error) {
	var (
		where = []string{"collection = $1"}
		args  = []interface{}{collection}
	)

	for _, p := range q.Predicates {
		switch p.Op {
		case OpEqual:
			args = append(args, fmt.Sprintf("%v", p.Value))
			where = append(where, fmt.Sprintf("data->>'%s' = $%d", sanitizeField(p.Field), len(args)))
		case OpArrayContainsAny:
			values, ok := p.Value.([]string)
			if !ok {
				return nil, fmt.Errorf("array-contains-any needs a []string value, got %T", p.Value)
			}
			args = append(args, values)
			where = append(where, fmt.Sprintf("data->'%s' ?| $%d", sanitizeField(p.Field), len(args)))
		default:
			return nil, fmt.Errorf("unsupported predicate operator %q", p.Op)
		}
	}

	if q.Cursor != nil {
		// Resume strictly after the cursor row in scan order. A cursor
		// pointing at a deleted row resumes from the top of the scan;
		// the catalog tolerates that the same way the original does.
		var anchorAt time.Time
		var anchorID string
		err := s.pool.QueryRow(ctx,
			`SELECT created_at, id FROM documents WHERE collection = $1 AND id = $2`,
			collection, q.Cursor.LastID,
		).Scan(&anchorAt, &anchorID)
		if err == nil {
			args = append(args, anchorAt, anchorID)
			where = append(where, fmt.Sprintf(
				"(created_at, id) < ($%d, $%d)", len(args)-1, len(args)))
		} else if !errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("resolve cursor: %w", err)
		}
	}

	sql := fmt.Sprintf(
		`SELECT id, data FROM documents WHERE %s ORDER BY created_at DESC, id DESC`,
		strings.Join(where, " AND "))
	if q.Limit > 0 {
		args = append(args, q.Limit)
		sql += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	rows, err := s.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("query documents: %w", err)
	}
	defer rows.Close()

	var out []Document
	for rows.Next() {
		var doc Document
		if err := rows.Scan(&doc.ID, &doc.Data); err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		out = append(out, doc)
	}
	return out, rows.Err()
}

func (s *PostgresStore) Increment(ctx context.Context, collection, id, field string, delta int64) error {
	field = sanitizeField(field)
	tag, err := s.pool.Exec(ctx, fmt.Sprintf(`
		UPDATE documents
		SET data = jsonb_set(data, '{%s}',
			to_jsonb(COALESCE((data->>'%s')::bigint, 0) + $3), true),
		    updated_at = now()
		WHERE collection = $1 AND id = $2`, field, field),
		collection, id, delta)
	if err != nil {
		return fmt.Errorf("increment field: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// sanitizeField keeps interpolated jsonb paths to identifier-safe
// characters. Field names come from code, not user input, but the
// query text is built by interpolation so the guard stays.
func sanitizeField(field string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			return r
		}
		return -1
	}, field)
}
