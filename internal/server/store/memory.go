package store

import (
	"context"
	"sync"

	"github.com/xtbe/arcbp-editor/internal/common"
	"github.com/xtbe/arcbp-editor/internal/models"
)

// MemoryRepository keeps records in process memory.
type MemoryRepository struct {
	mu      sync.RWMutex
	order   []string
	records map[string]Record
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{records: make(map[string]Record)}
}

func (r *MemoryRepository) List(ctx context.Context, offset, limit int) ([]Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if offset < 0 {
		offset = 0
	}
	if offset >= len(r.order) {
		return []Record{}, nil
	}
	end := len(r.order)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}

	out := make([]Record, 0, end-offset)
	for _, id := range r.order[offset:end] {
		out = append(out, cloneRecord(r.records[id]))
	}
	return out, nil
}

func (r *MemoryRepository) Count(ctx context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order), nil
}

func (r *MemoryRepository) Get(ctx context.Context, id string) (Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.records[id]
	if !ok {
		return Record{}, common.ErrNotFound
	}
	return cloneRecord(rec), nil
}

func (r *MemoryRepository) Create(ctx context.Context, bp models.Blueprint) (Record, error) {
	if err := Validate(bp); err != nil {
		return Record{}, err
	}

	bp = bp.Clone()
	normalizeRecipe(&bp)
	ts := now()

	r.mu.Lock()
	defer r.mu.Unlock()

	bp.ID = NewID()
	for r.records[bp.ID].ID != "" {
		bp.ID = NewID()
	}

	rec := Record{Blueprint: bp, Created: ts, Updated: ts}
	r.records[bp.ID] = rec
	r.order = append(r.order, bp.ID)
	return cloneRecord(rec), nil
}

func (r *MemoryRepository) Update(ctx context.Context, id string, patch models.BlueprintPatch) (Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.records[id]
	if !ok {
		return Record{}, common.ErrNotFound
	}

	bp := rec.Blueprint.Clone()
	patch.Apply(&bp)
	if err := Validate(bp); err != nil {
		return Record{}, err
	}
	normalizeRecipe(&bp)

	rec.Blueprint = bp
	rec.Updated = now()
	r.records[id] = rec
	return cloneRecord(rec), nil
}

func (r *MemoryRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.records[id]; !ok {
		return common.ErrNotFound
	}
	delete(r.records, id)
	for i, v := range r.order {
		if v == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

func cloneRecord(rec Record) Record {
	rec.Blueprint = rec.Blueprint.Clone()
	return rec
}
