// Package view derives the filtered, paged list the editor shows from the
// full blueprint collection.
//
// Everything here works on collection indices: the result of FilteredIndices
// is an ordered list of positions into the collection, and pages are slices
// of that list. The collection itself is never reordered.
package view

import (
	"fmt"
	"strings"

	"github.com/xtbe/arcbp-editor/internal/models"
)

// Availability selects records by their "available" flag.
type Availability string

const (
	AvailabilityAll         Availability = "all"
	AvailabilityAvailable   Availability = "available"
	AvailabilityUnavailable Availability = "unavailable"
)

// ParseAvailability validates s.
func ParseAvailability(s string) (Availability, error) {
	switch a := Availability(strings.ToLower(strings.TrimSpace(s))); a {
	case AvailabilityAll, AvailabilityAvailable, AvailabilityUnavailable:
		return a, nil
	}
	return "", fmt.Errorf("unknown availability filter %q", s)
}

func (a Availability) match(b models.Blueprint) bool {
	switch a {
	case AvailabilityAvailable:
		return b.Available
	case AvailabilityUnavailable:
		return !b.Available
	default:
		return true
	}
}

// FilteredIndices returns, in collection order, the indices of the records
// whose "name workshop" contains query (case-insensitive substring) and that
// satisfy the availability predicate. A blank query matches everything.
func FilteredIndices(blueprints []models.Blueprint, query string, availability Availability) []int {
	q := strings.ToLower(strings.TrimSpace(query))

	out := make([]int, 0, len(blueprints))
	for i, b := range blueprints {
		if q != "" {
			hay := strings.ToLower(b.Name + " " + b.Workshop)
			if !strings.Contains(hay, q) {
				continue
			}
		}
		if !availability.match(b) {
			continue
		}
		out = append(out, i)
	}
	return out
}
