package storage

import (
	"context"

	"minorityScope/internal/model"
)

// Unit stages the writes of one event. Reads see staged writes first, so a
// handler can read back what it wrote earlier in the same event.
type Unit struct {
	reader Reader
	staged map[model.Key]Record
	order  []model.Key
}

func NewUnit(reader Reader) *Unit {
	return &Unit{reader: reader, staged: make(map[model.Key]Record)}
}

// Get loads key into dst. It reports false when the key holds nothing.
func (u *Unit) Get(ctx context.Context, key model.Key, dst any) (bool, error) {
	if rec, ok := u.staged[key]; ok {
		return true, rec.Decode(dst)
	}
	rec, ok, err := u.reader.Get(ctx, key)
	if err != nil || !ok {
		return false, err
	}
	return true, rec.Decode(dst)
}

func (u *Unit) Exists(ctx context.Context, key model.Key) (bool, error) {
	if _, ok := u.staged[key]; ok {
		return true, nil
	}
	_, ok, err := u.reader.Get(ctx, key)
	return ok, err
}

// GetOrCreate loads key into dst, or calls init to populate dst when absent.
// The created entity is not staged until Put.
func (u *Unit) GetOrCreate(ctx context.Context, key model.Key, dst any, init func()) (bool, error) {
	found, err := u.Get(ctx, key, dst)
	if err != nil {
		return false, err
	}
	if found {
		return false, nil
	}
	init()
	return true, nil
}

// Put stages an entity. A later Put of the same key replaces the earlier one.
func (u *Unit) Put(e model.Entity) error {
	rec, err := NewRecord(e)
	if err != nil {
		return err
	}
	if _, ok := u.staged[rec.Key]; !ok {
		u.order = append(u.order, rec.Key)
	}
	u.staged[rec.Key] = rec
	return nil
}

// List queries the backing store and overlays staged writes.
func (u *Unit) List(ctx context.Context, q Query) ([]Record, error) {
	base, err := u.reader.List(ctx, Query{Kind: q.Kind, ChainID: q.ChainID, Match: q.Match})
	if err != nil {
		return nil, err
	}
	out := make([]Record, 0, len(base))
	seen := make(map[model.Key]struct{}, len(base))
	for _, rec := range base {
		seen[rec.Key] = struct{}{}
		if staged, ok := u.staged[rec.Key]; ok {
			if q.Matches(staged) {
				out = append(out, staged)
			}
			continue
		}
		out = append(out, rec)
	}
	for _, key := range u.order {
		if _, ok := seen[key]; ok {
			continue
		}
		if rec := u.staged[key]; q.Matches(rec) {
			out = append(out, rec)
		}
	}
	SortRecords(out)
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

// Writes returns staged records in first-write order.
func (u *Unit) Writes() []Record {
	out := make([]Record, 0, len(u.order))
	for _, key := range u.order {
		out = append(out, u.staged[key])
	}
	return out
}

// Len returns the number of staged records.
func (u *Unit) Len() int { return len(u.order) }
