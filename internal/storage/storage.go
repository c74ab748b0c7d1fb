package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"minorityScope/internal/model"
)

// ErrNotFound is returned by typed reads when a key holds no record.
var ErrNotFound = errors.New("entity not found")

// LogSink defines a sink for raw log records.
type LogSink interface {
	PutLogBatch(logs []model.LogRecord) error
}

// Record is a stored entity: its key, JSON body and filterable fields.
type Record struct {
	Key     model.Key         `json:"key"`
	Data    json.RawMessage   `json:"data"`
	Indexes map[string]string `json:"indexes,omitempty"`
}

// Query filters records of one kind. A nil ChainID spans every chain. Match
// requires every listed index field to equal the given value.
type Query struct {
	Kind    model.Kind
	ChainID *uint64
	Match   map[string]string
	Limit   int
}

// Matches reports whether r satisfies q.
func (q Query) Matches(r Record) bool {
	if r.Key.Kind != q.Kind {
		return false
	}
	if q.ChainID != nil && r.Key.ChainID != *q.ChainID {
		return false
	}
	for k, v := range q.Match {
		if r.Indexes[k] != v {
			return false
		}
	}
	return true
}

// Reader is the read side of the entity store.
type Reader interface {
	Get(ctx context.Context, key model.Key) (Record, bool, error)
	List(ctx context.Context, q Query) ([]Record, error)
}

// Store persists entities. Commit applies every record or none.
type Store interface {
	Reader
	Commit(ctx context.Context, records []Record) error
}

// NewRecord encodes an entity.
func NewRecord(e model.Entity) (Record, error) {
	data, err := json.Marshal(e)
	if err != nil {
		return Record{}, fmt.Errorf("marshal %s: %w", e.StoreKey(), err)
	}
	return Record{Key: e.StoreKey(), Data: data, Indexes: copyIndexes(e.StoreIndexes())}, nil
}

// Decode unmarshals a record body into dst.
func (r Record) Decode(dst any) error {
	if err := json.Unmarshal(r.Data, dst); err != nil {
		return fmt.Errorf("decode %s: %w", r.Key, err)
	}
	return nil
}

// Load reads key from r into dst and returns ErrNotFound when absent.
func Load(ctx context.Context, r Reader, key model.Key, dst any) error {
	rec, ok, err := r.Get(ctx, key)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%s: %w", key, ErrNotFound)
	}
	return rec.Decode(dst)
}

func copyIndexes(in map[string]string) map[string]string {
	if len(in) == 0 {
		return nil
	}
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
