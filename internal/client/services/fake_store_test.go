package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/xtbe/arcbp-editor/internal/models"
)

// fakeStore is an in-memory Store with failure injection.
type fakeStore struct {
	mu      sync.Mutex
	records []models.Blueprint
	nextID  int

	listErr   error
	createErr error
	updateErr error
	deleteErr error
	// failCreateAt makes the n-th Create call (1-based) fail with createErr.
	failCreateAt int

	// listFn, when set, replaces List entirely.
	listFn func(ctx context.Context) ([]models.Blueprint, error)
	// deleteHook, when set, runs before each Delete outside the lock.
	deleteHook func(ctx context.Context, id string) error

	creates int
	updates []string
	deletes []string
}

func newFakeStore(names ...string) *fakeStore {
	f := &fakeStore{}
	for _, n := range names {
		f.records = append(f.records, f.newRecord(models.Blueprint{Name: n, CraftingRecipe: []models.RecipeItem{}}))
	}
	return f
}

func (f *fakeStore) newRecord(bp models.Blueprint) models.Blueprint {
	f.nextID++
	bp = bp.Clone()
	bp.ID = fmt.Sprintf("id%03d", f.nextID)
	return bp
}

func (f *fakeStore) snapshot() []models.Blueprint {
	f.mu.Lock()
	defer f.mu.Unlock()
	return models.CloneAll(f.records)
}

func (f *fakeStore) List(ctx context.Context) ([]models.Blueprint, error) {
	if f.listFn != nil {
		return f.listFn(ctx)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	return models.CloneAll(f.records), nil
}

func (f *fakeStore) Create(ctx context.Context, bp models.Blueprint) (models.Blueprint, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.creates++
	if f.createErr != nil && (f.failCreateAt == 0 || f.failCreateAt == f.creates) {
		return models.Blueprint{}, f.createErr
	}
	if bp.ID != "" {
		return models.Blueprint{}, fmt.Errorf("create called with id %q", bp.ID)
	}
	rec := f.newRecord(bp)
	f.records = append(f.records, rec)
	return rec.Clone(), nil
}

func (f *fakeStore) Update(ctx context.Context, id string, patch models.BlueprintPatch) (models.Blueprint, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updates = append(f.updates, id)
	if f.updateErr != nil {
		return models.Blueprint{}, f.updateErr
	}
	for i := range f.records {
		if f.records[i].ID == id {
			patch.Apply(&f.records[i])
			return f.records[i].Clone(), nil
		}
	}
	return models.Blueprint{}, fmt.Errorf("no record %s", id)
}

func (f *fakeStore) Delete(ctx context.Context, id string) error {
	if f.deleteHook != nil {
		if err := f.deleteHook(ctx, id); err != nil {
			return err
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deletes = append(f.deletes, id)
	if f.deleteErr != nil {
		return f.deleteErr
	}
	for i := range f.records {
		if f.records[i].ID == id {
			f.records = append(f.records[:i], f.records[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("no record %s", id)
}
