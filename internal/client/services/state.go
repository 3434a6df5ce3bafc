package services

import (
	"github.com/xtbe/arcbp-editor/internal/client/view"
	"github.com/xtbe/arcbp-editor/internal/models"
)

// DefaultPageSize is the page size after start-up and after a reset.
const DefaultPageSize = 10

// Mode is the connection state of the editor as seen by the last fetch.
type Mode string

const (
	ModeLoading     Mode = "loading"
	ModeReady       Mode = "ready"
	ModeUnreachable Mode = "unreachable"
)

type StatusKind string

const (
	StatusOK   StatusKind = "ok"
	StatusWarn StatusKind = "warn"
	StatusErr  StatusKind = "err"
	StatusInfo StatusKind = "info"
)

// Status is the last user-visible message.
type Status struct {
	Kind StatusKind
	Text string
}

// State is the whole application state owned by BlueprintService.
// Selected is a collection index, or -1 when nothing is selected.
type State struct {
	Blueprints   []models.Blueprint
	Selected     int
	Query        string
	Availability view.Availability
	Page         int
	PageSize     int
	Mode         Mode
	Status       Status
}

func newState() State {
	return State{
		Blueprints:   []models.Blueprint{},
		Selected:     -1,
		Availability: view.AvailabilityAll,
		Page:         1,
		PageSize:     DefaultPageSize,
		Mode:         ModeLoading,
	}
}

func (s State) clone() State {
	s.Blueprints = models.CloneAll(s.Blueprints)
	return s
}

// SelectedBlueprint returns the selected record, if any.
func (s State) SelectedBlueprint() (models.Blueprint, bool) {
	if s.Selected < 0 || s.Selected >= len(s.Blueprints) {
		return models.Blueprint{}, false
	}
	return s.Blueprints[s.Selected], true
}

// Filtered returns the collection indices that pass the current filter.
func (s State) Filtered() []int {
	return view.FilteredIndices(s.Blueprints, s.Query, s.Availability)
}

// Visible returns the page currently shown.
func (s State) Visible() view.Page {
	return view.Paginate(s.Filtered(), s.Page, s.PageSize)
}

func (s State) indexOf(id string) int {
	if id == "" {
		return -1
	}
	for i := range s.Blueprints {
		if s.Blueprints[i].ID == id {
			return i
		}
	}
	return -1
}

// follow moves the page to the one showing the selection, when the
// selection passes the current filter.
func (s *State) follow() {
	if s.Selected < 0 {
		return
	}
	if p, ok := view.PageOf(s.Filtered(), s.Selected, s.PageSize); ok {
		s.Page = p
	}
}
