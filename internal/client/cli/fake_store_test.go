package cli

import (
	"context"
	"fmt"
	"sync"

	"github.com/xtbe/arcbp-editor/internal/common"
	"github.com/xtbe/arcbp-editor/internal/models"
)

// memStore is an in-memory services.Store.
type memStore struct {
	mu      sync.Mutex
	bps     []models.Blueprint
	next    int
	lists   int
	listErr error
}

func newMemStore(names ...string) *memStore {
	s := &memStore{}
	for _, n := range names {
		s.next++
		s.bps = append(s.bps, models.Blueprint{
			ID:             fmt.Sprintf("id%03d", s.next),
			Name:           n,
			Workshop:       "Workbench",
			CraftingRecipe: []models.RecipeItem{{Item: "Metal Parts", Quantity: 2}},
			Available:      s.next%2 == 1,
		})
	}
	return s
}

func (s *memStore) List(_ context.Context) ([]models.Blueprint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lists++
	if s.listErr != nil {
		return nil, s.listErr
	}
	return models.CloneAll(s.bps), nil
}

func (s *memStore) Create(_ context.Context, bp models.Blueprint) (models.Blueprint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.next++
	bp = bp.Clone()
	bp.ID = fmt.Sprintf("id%03d", s.next)
	s.bps = append(s.bps, bp)
	return bp.Clone(), nil
}

func (s *memStore) Update(_ context.Context, id string, patch models.BlueprintPatch) (models.Blueprint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.bps {
		if s.bps[i].ID == id {
			patch.Apply(&s.bps[i])
			return s.bps[i].Clone(), nil
		}
	}
	return models.Blueprint{}, common.ErrNotFound
}

func (s *memStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.bps {
		if s.bps[i].ID == id {
			s.bps = append(s.bps[:i], s.bps[i+1:]...)
			return nil
		}
	}
	return common.ErrNotFound
}

func (s *memStore) snapshot() []models.Blueprint {
	s.mu.Lock()
	defer s.mu.Unlock()
	return models.CloneAll(s.bps)
}

func (s *memStore) names() []string {
	var out []string
	for _, bp := range s.snapshot() {
		out = append(out, bp.Name)
	}
	return out
}

func (s *memStore) setListErr(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listErr = err
}

func (s *memStore) listCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lists
}
