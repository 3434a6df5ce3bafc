// Package services contains application services for the editor.
// This file defines the synchronization controller: it owns the editor
// state and keeps it in step with the record store.
package services

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/xtbe/arcbp-editor/internal/client/client"
	"github.com/xtbe/arcbp-editor/internal/client/sample"
	"github.com/xtbe/arcbp-editor/internal/client/view"
	"github.com/xtbe/arcbp-editor/internal/logging"
	"github.com/xtbe/arcbp-editor/internal/models"
	"github.com/xtbe/arcbp-editor/internal/shape"
)

var (
	ErrNotFound   = errors.New("blueprint not found")
	ErrOutOfRange = errors.New("index out of range")
)

// maxRefetch bounds how often one load restarts its fetch because a
// mutation landed while the fetch was in flight.
const maxRefetch = 3

// Store is the record store as the controller needs it.
// *client.HTTPClient satisfies it.
type Store interface {
	List(ctx context.Context) ([]models.Blueprint, error)
	Create(ctx context.Context, bp models.Blueprint) (models.Blueprint, error)
	Update(ctx context.Context, id string, patch models.BlueprintPatch) (models.Blueprint, error)
	Delete(ctx context.Context, id string) error
}

// RecipeEdit changes one recipe line. Nil fields are left alone.
type RecipeEdit struct {
	Item     *string
	Quantity *int
}

// BlueprintService owns the editor state and synchronizes it with the
// record store.
//
// Contract:
//   - Bootstrap replaces the collection with the store's. Only a newer
//     fetch supersedes a fetch; a local mutation that lands while a fetch
//     is in flight makes it fetch again. An aborted fetch is dropped
//     silently and never leaves the mode at loading.
//   - Patch applies locally first and saves in the background; a failed
//     save reloads everything from the store.
//   - Create, Delete and Duplicate are confirmed by the store before the
//     local collection changes.
//   - ReplaceAll deletes every remote record, all deletes in flight at
//     once, then recreates the input in order. The local collection changes only if all of it succeeds.
//
// Every failure becomes a Status; the error is also returned, except for
// aborted requests which are swallowed.
type BlueprintService interface {
	State() State
	Visible() view.Page
	OnStatus(fn func(Status))
	Report(kind StatusKind, text string)

	Bootstrap(ctx context.Context) error

	SetQuery(q string)
	SetAvailability(a view.Availability)
	SetPageSize(n int)
	SetPage(n int)
	Select(index int) error

	New(ctx context.Context) error
	Create(ctx context.Context, bp models.Blueprint) error
	Patch(ctx context.Context, id string, patch models.BlueprintPatch) error
	Delete(ctx context.Context, id string) error
	Duplicate(ctx context.Context, id string) error

	AddRecipeItem(ctx context.Context, id string) error
	UpdateRecipeItem(ctx context.Context, id string, i int, edit RecipeEdit) error
	RemoveRecipeItem(ctx context.Context, id string, i int) error

	ReplaceAll(ctx context.Context, bps []models.Blueprint, source string) error
	Import(ctx context.Context, data []byte, source string) error
	Reset(ctx context.Context) error
	Export() ([]byte, error)

	// Wait blocks until background saves and their reconciliations finish.
	Wait()
}

type blueprintService struct {
	store  Store
	logger logging.Logger

	mu    sync.Mutex
	state State
	// fetchGen is bumped by every load; version by every local mutation.
	fetchGen uint64
	version  uint64
	onStatus func(Status)

	wg sync.WaitGroup
}

func NewBlueprintService(store Store, logger logging.Logger) BlueprintService {
	return &blueprintService{
		store:  store,
		logger: logger.With("module", "blueprint_service"),
		state:  newState(),
	}
}

func (s *blueprintService) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.clone()
}

func (s *blueprintService) Visible() view.Page {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Visible()
}

func (s *blueprintService) OnStatus(fn func(Status)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onStatus = fn
}

// Report sets the status and notifies the OnStatus callback outside the lock.
func (s *blueprintService) Report(kind StatusKind, text string) {
	st := Status{Kind: kind, Text: text}

	s.mu.Lock()
	s.state.Status = st
	fn := s.onStatus
	s.mu.Unlock()

	if fn != nil {
		fn(st)
	}
}

// fail reports err with a prefix. Aborted requests are swallowed.
func (s *blueprintService) fail(ctx context.Context, prefix string, err error) error {
	if errors.Is(err, client.ErrAborted) {
		s.logger.Debug(ctx, "request aborted", "op", prefix)
		return nil
	}
	s.logger.Warn(ctx, prefix, "error", err)

	if errors.Is(err, client.ErrUnavailable) {
		s.Report(StatusErr, prefix+": record store unreachable.")
	} else {
		s.Report(StatusErr, fmt.Sprintf("%s: %v", prefix, err))
	}
	return err
}

func (s *blueprintService) Bootstrap(ctx context.Context) error {
	return s.load(ctx, true)
}

// load fetches the whole collection and installs it unless a newer load
// started in the meantime. If the collection was mutated locally while the
// fetch ran, the fetch is repeated so the mutation is not lost. With
// announce set the mode passes through loading and success is reported;
// reconciliation keeps the failure status that triggered it.
func (s *blueprintService) load(ctx context.Context, announce bool) error {
	s.mu.Lock()
	s.fetchGen++
	gen := s.fetchGen
	prevMode := s.state.Mode
	if prevMode == ModeLoading {
		prevMode = ModeReady
	}
	if announce {
		s.state.Mode = ModeLoading
	}
	s.mu.Unlock()

	for attempt := 0; ; attempt++ {
		s.mu.Lock()
		version := s.version
		s.mu.Unlock()

		bps, err := s.store.List(ctx)

		s.mu.Lock()
		if gen != s.fetchGen {
			// The newer load settles the mode.
			s.mu.Unlock()
			s.logger.Debug(ctx, "dropping superseded fetch", "generation", gen)
			return nil
		}
		if err != nil {
			if errors.Is(err, client.ErrAborted) {
				if s.state.Mode == ModeLoading {
					s.state.Mode = prevMode
				}
				s.mu.Unlock()
				return nil
			}
			if errors.Is(err, client.ErrUnavailable) {
				s.state.Mode = ModeUnreachable
				s.mu.Unlock()
				s.logger.Warn(ctx, "record store unreachable", "error", err)
				s.Report(StatusErr, "Record store unreachable. Use reload to retry.")
				return err
			}
			s.state.Mode = ModeReady
			s.mu.Unlock()
			return s.fail(ctx, "Could not load blueprints", err)
		}
		if version != s.version && attempt < maxRefetch {
			s.mu.Unlock()
			s.logger.Debug(ctx, "collection changed during fetch, fetching again", "generation", gen)
			continue
		}

		s.state.Blueprints = bps
		s.state.Mode = ModeReady
		if s.state.Selected >= len(bps) {
			s.state.Selected = -1
		}
		s.mu.Unlock()

		s.logger.Info(ctx, "collection loaded", "count", len(bps))
		if announce {
			s.Report(StatusInfo, fmt.Sprintf("Loaded %d blueprints from the record store.", len(bps)))
		}
		return nil
	}
}

func (s *blueprintService) SetQuery(q string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Query = q
	s.state.Page = 1
	s.state.follow()
}

func (s *blueprintService) SetAvailability(a view.Availability) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Availability = a
	s.state.Page = 1
	s.state.follow()
}

func (s *blueprintService) SetPageSize(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.PageSize = max(n, 1)
	s.state.Page = 1
}

func (s *blueprintService) SetPage(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Page = view.Paginate(s.state.Filtered(), n, s.state.PageSize).Number
}

func (s *blueprintService) Select(index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if index < -1 || index >= len(s.state.Blueprints) {
		return fmt.Errorf("%w: %d", ErrOutOfRange, index)
	}
	s.state.Selected = index
	return nil
}

func (s *blueprintService) New(ctx context.Context) error {
	return s.create(ctx, models.NewBlueprint(), "Added a new blueprint.")
}

func (s *blueprintService) Create(ctx context.Context, bp models.Blueprint) error {
	return s.create(ctx, bp, fmt.Sprintf("Created %q.", bp.Name))
}

// create is remote-first: the record appears locally with its store id,
// appended and selected.
func (s *blueprintService) create(ctx context.Context, bp models.Blueprint, okMsg string) error {
	created, err := s.store.Create(ctx, bp.WithoutID())
	if err != nil {
		return s.fail(ctx, "Create failed", err)
	}

	s.mu.Lock()
	s.version++
	s.state.Blueprints = append(s.state.Blueprints, created)
	s.state.Selected = len(s.state.Blueprints) - 1
	s.state.follow()
	s.mu.Unlock()

	s.Report(StatusOK, okMsg)
	return nil
}

// Patch is a no-op for records without an id.
func (s *blueprintService) Patch(ctx context.Context, id string, patch models.BlueprintPatch) error {
	if patch.IsEmpty() {
		return nil
	}

	s.mu.Lock()
	idx := s.state.indexOf(id)
	if idx < 0 {
		s.mu.Unlock()
		return nil
	}
	patch.Apply(&s.state.Blueprints[idx])
	s.version++
	s.mu.Unlock()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		if _, err := s.store.Update(ctx, id, patch); err != nil {
			if s.fail(ctx, "Save failed", err) == nil {
				return
			}
			_ = s.load(ctx, false)
			return
		}
		// A fetch that started before the save landed must not win.
		s.mu.Lock()
		s.version++
		s.mu.Unlock()
	}()
	return nil
}

func (s *blueprintService) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	idx := s.state.indexOf(id)
	s.mu.Unlock()
	if idx < 0 {
		return nil
	}

	if err := s.store.Delete(ctx, id); err != nil {
		return s.fail(ctx, "Delete failed", err)
	}

	s.mu.Lock()
	s.version++
	if idx = s.state.indexOf(id); idx >= 0 {
		bps := s.state.Blueprints
		s.state.Blueprints = append(bps[:idx:idx], bps[idx+1:]...)

		switch sel := s.state.Selected; {
		case sel == idx:
			s.state.Selected = min(idx, len(s.state.Blueprints)-1)
		case sel > idx:
			s.state.Selected = sel - 1
		}
	}
	s.mu.Unlock()

	s.Report(StatusOK, "Deleted.")
	return nil
}

func (s *blueprintService) Duplicate(ctx context.Context, id string) error {
	s.mu.Lock()
	idx := s.state.indexOf(id)
	if idx < 0 {
		s.mu.Unlock()
		return nil
	}
	dup := s.state.Blueprints[idx].WithoutID()
	s.mu.Unlock()

	if dup.Name != "" {
		dup.Name += " (Copy)"
	} else {
		dup.Name = "Copy"
	}

	created, err := s.store.Create(ctx, dup)
	if err != nil {
		return s.fail(ctx, "Duplicate failed", err)
	}

	s.mu.Lock()
	s.version++
	pos := len(s.state.Blueprints)
	if idx = s.state.indexOf(id); idx >= 0 {
		pos = idx + 1
	}
	s.state.Blueprints = append(s.state.Blueprints, models.Blueprint{})
	copy(s.state.Blueprints[pos+1:], s.state.Blueprints[pos:])
	s.state.Blueprints[pos] = created
	s.state.Selected = pos
	s.state.follow()
	s.mu.Unlock()

	s.Report(StatusOK, "Duplicated.")
	return nil
}

// recipe returns a copy of the recipe of id.
func (s *blueprintService) recipe(id string) ([]models.RecipeItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.state.indexOf(id)
	if idx < 0 {
		return nil, ErrNotFound
	}
	return models.CloneRecipe(s.state.Blueprints[idx].CraftingRecipe), nil
}

func (s *blueprintService) AddRecipeItem(ctx context.Context, id string) error {
	r, err := s.recipe(id)
	if err != nil {
		return err
	}
	r = append(r, models.RecipeItem{})
	return s.Patch(ctx, id, models.BlueprintPatch{CraftingRecipe: &r})
}

func (s *blueprintService) UpdateRecipeItem(ctx context.Context, id string, i int, edit RecipeEdit) error {
	r, err := s.recipe(id)
	if err != nil {
		return err
	}
	if i < 0 || i >= len(r) {
		return fmt.Errorf("%w: recipe line %d", ErrOutOfRange, i+1)
	}
	if edit.Item != nil {
		r[i].Item = *edit.Item
	}
	if edit.Quantity != nil {
		r[i].Quantity = max(*edit.Quantity, 0)
	}
	return s.Patch(ctx, id, models.BlueprintPatch{CraftingRecipe: &r})
}

func (s *blueprintService) RemoveRecipeItem(ctx context.Context, id string, i int) error {
	r, err := s.recipe(id)
	if err != nil {
		return err
	}
	if i < 0 || i >= len(r) {
		return fmt.Errorf("%w: recipe line %d", ErrOutOfRange, i+1)
	}
	r = append(r[:i], r[i+1:]...)
	return s.Patch(ctx, id, models.BlueprintPatch{CraftingRecipe: &r})
}

func (s *blueprintService) ReplaceAll(ctx context.Context, bps []models.Blueprint, source string) error {
	return s.replaceAll(ctx, bps, fmt.Sprintf("Loaded %d blueprints from %s.", len(bps), source))
}

// replaceAll deletes every remote record concurrently, then recreates bps
// one by one so the store keeps their order. A failed delete does not cancel
// the others; the first error is reported once all of them finish. There is
// no rollback: a failure part way leaves the store partially replaced and
// the local collection as it was.
func (s *blueprintService) replaceAll(ctx context.Context, bps []models.Blueprint, okMsg string) error {
	existing, err := s.store.List(ctx)
	if err != nil {
		return s.fail(ctx, "Replace failed", err)
	}

	var g errgroup.Group
	for _, bp := range existing {
		if bp.ID == "" {
			continue
		}
		id := bp.ID
		g.Go(func() error {
			return s.store.Delete(ctx, id)
		})
	}
	if err := g.Wait(); err != nil {
		return s.fail(ctx, "Replace failed", err)
	}

	created := make([]models.Blueprint, 0, len(bps))
	for _, bp := range bps {
		c, err := s.store.Create(ctx, bp.WithoutID())
		if err != nil {
			return s.fail(ctx, "Replace failed", err)
		}
		created = append(created, c)
	}

	s.mu.Lock()
	s.version++
	s.state.Blueprints = created
	s.state.Selected = -1
	s.state.Page = 1
	s.state.Mode = ModeReady
	s.mu.Unlock()

	s.logger.Info(ctx, "collection replaced", "deleted", len(existing), "created", len(created))
	s.Report(StatusOK, okMsg)
	return nil
}

func (s *blueprintService) Import(ctx context.Context, data []byte, source string) error {
	c, err := shape.Parse(data)
	if err != nil {
		s.Report(StatusErr, "Could not load JSON: "+err.Error())
		return err
	}
	return s.ReplaceAll(ctx, c.Blueprints, source)
}

func (s *blueprintService) Reset(ctx context.Context) error {
	if err := s.replaceAll(ctx, sample.Collection().Blueprints, "Reset to sample."); err != nil {
		return err
	}
	s.SetPageSize(DefaultPageSize)
	return nil
}

func (s *blueprintService) Export() ([]byte, error) {
	s.mu.Lock()
	c := models.Collection{Blueprints: models.CloneAll(s.state.Blueprints)}
	s.mu.Unlock()
	return shape.Export(c)
}

func (s *blueprintService) Wait() {
	s.wg.Wait()
}
