// Package store persists blueprint records for the record store server.
//
// Records keep insertion order: listing returns them in the order they were
// created. Identifiers are assigned by the store and are 15 lowercase
// alphanumeric characters, matching the shape the editor expects from a
// PocketBase-style backend.
//
// Implementations:
//
//   - MemoryRepository: process-local, for development and tests
//   - SQLRepository: SQLite or PostgreSQL over database/sql
package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/xtbe/arcbp-editor/internal/common"
	"github.com/xtbe/arcbp-editor/internal/models"
)

// Record is a stored blueprint with its bookkeeping timestamps.
type Record struct {
	models.Blueprint
	Created time.Time `json:"created"`
	Updated time.Time `json:"updated"`
}

// Repository describes the record operations the HTTP API needs.
type Repository interface {
	// List returns records in insertion order. A non-positive limit means
	// no limit.
	List(ctx context.Context, offset, limit int) ([]Record, error)

	// Count returns the number of stored records.
	Count(ctx context.Context) (int, error)

	// Get returns one record or common.ErrNotFound.
	Get(ctx context.Context, id string) (Record, error)

	// Create validates bp, assigns a fresh id and stores it. Any id on bp is
	// ignored.
	Create(ctx context.Context, bp models.Blueprint) (Record, error)

	// Update applies patch to the record with the given id.
	Update(ctx context.Context, id string, patch models.BlueprintPatch) (Record, error)

	// Delete removes the record or returns common.ErrNotFound.
	Delete(ctx context.Context, id string) error
}

// IDLength is the length of generated record ids.
const IDLength = 15

// NewID returns a fresh record id.
func NewID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:IDLength]
}

// FieldError reports an invalid field. It wraps common.ErrValidation.
type FieldError struct {
	Field   string
	Code    string
	Message string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *FieldError) Unwrap() error {
	return common.ErrValidation
}

// Validate checks the constraints of the blueprints collection.
func Validate(bp models.Blueprint) error {
	if strings.TrimSpace(bp.Name) == "" {
		return &FieldError{Field: "name", Code: "validation_required", Message: "Cannot be blank."}
	}
	return nil
}

func normalizeRecipe(bp *models.Blueprint) {
	if bp.CraftingRecipe == nil {
		bp.CraftingRecipe = []models.RecipeItem{}
	}
}

func now() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}
