package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"minorityScope/internal/model"
	"minorityScope/internal/storage"
)

const schema = `
CREATE TABLE IF NOT EXISTS entities (
	kind       TEXT        NOT NULL,
	chain_id   BIGINT      NOT NULL,
	id         TEXT        NOT NULL,
	data       JSONB       NOT NULL,
	indexes    JSONB       NOT NULL DEFAULT '{}'::jsonb,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (kind, chain_id, id)
);
CREATE INDEX IF NOT EXISTS entities_indexes_gin ON entities USING GIN (indexes);
`

// Store persists entities in Postgres.
type Store struct {
	pool *pgxpool.Pool
}

var _ storage.Store = (*Store)(nil)

func NewStore(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		return nil, fmt.Errorf("pg dsn is required")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	return &Store{pool: pool}, nil
}

func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// EnsureSchema creates the entity table when missing.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

func (s *Store) Get(ctx context.Context, key model.Key) (storage.Record, bool, error) {
	var data, indexes []byte
	row := s.pool.QueryRow(ctx, `SELECT data, indexes FROM entities WHERE kind=$1 AND chain_id=$2 AND id=$3`,
		string(key.Kind), int64(key.ChainID), key.ID)
	if err := row.Scan(&data, &indexes); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return storage.Record{}, false, nil
		}
		return storage.Record{}, false, err
	}
	rec := storage.Record{Key: key, Data: data}
	if err := decodeIndexes(indexes, &rec); err != nil {
		return storage.Record{}, false, err
	}
	return rec, true, nil
}

func (s *Store) List(ctx context.Context, q storage.Query) ([]storage.Record, error) {
	sql := `SELECT chain_id, id, data, indexes FROM entities WHERE kind=$1`
	args := []any{string(q.Kind)}
	if q.ChainID != nil {
		args = append(args, int64(*q.ChainID))
		sql += fmt.Sprintf(" AND chain_id=$%d", len(args))
	}
	if len(q.Match) > 0 {
		match, err := json.Marshal(q.Match)
		if err != nil {
			return nil, err
		}
		args = append(args, string(match))
		sql += fmt.Sprintf(" AND indexes @> $%d::jsonb", len(args))
	}
	sql += " ORDER BY chain_id, id"
	if q.Limit > 0 {
		args = append(args, q.Limit)
		sql += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	rows, err := s.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []storage.Record
	for rows.Next() {
		var (
			chainID       int64
			id            string
			data, indexes []byte
		)
		if err := rows.Scan(&chainID, &id, &data, &indexes); err != nil {
			return nil, err
		}
		rec := storage.Record{Key: model.Key{Kind: q.Kind, ChainID: uint64(chainID), ID: id}, Data: data}
		if err := decodeIndexes(indexes, &rec); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// Commit upserts every record in one transaction.
func (s *Store) Commit(ctx context.Context, records []storage.Record) error {
	if len(records) == 0 {
		return nil
	}
	return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		batch := &pgx.Batch{}
		for _, rec := range records {
			indexes := rec.Indexes
			if indexes == nil {
				indexes = map[string]string{}
			}
			encoded, err := json.Marshal(indexes)
			if err != nil {
				return err
			}
			batch.Queue(`
				INSERT INTO entities (kind, chain_id, id, data, indexes, updated_at)
				VALUES ($1, $2, $3, $4::jsonb, $5::jsonb, now())
				ON CONFLICT (kind, chain_id, id)
				DO UPDATE SET
					data = EXCLUDED.data,
					indexes = EXCLUDED.indexes,
					updated_at = now()
			`,
				string(rec.Key.Kind),
				int64(rec.Key.ChainID),
				rec.Key.ID,
				string(rec.Data),
				string(encoded),
			)
		}

		br := tx.SendBatch(ctx, batch)
		for range records {
			if _, err := br.Exec(); err != nil {
				br.Close()
				return err
			}
		}
		return br.Close()
	})
}

func decodeIndexes(raw []byte, rec *storage.Record) error {
	if len(raw) == 0 {
		return nil
	}
	var indexes map[string]string
	if err := json.Unmarshal(raw, &indexes); err != nil {
		return fmt.Errorf("decode indexes for %s: %w", rec.Key, err)
	}
	if len(indexes) > 0 {
		rec.Indexes = indexes
	}
	return nil
}
