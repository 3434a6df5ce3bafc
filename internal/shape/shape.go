// Package shape turns arbitrary JSON into well-formed blueprint collections.
//
// Normalization is total below the root: any value nested inside the
// "blueprints" array is coerced into the canonical record shape, with missing
// or wrongly typed fields replaced by defaults. The only hard failure is a
// root that is not a JSON object (ErrShape).
package shape

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/xtbe/arcbp-editor/internal/models"
)

// ErrShape marks input that cannot be normalized at all.
var ErrShape = errors.New("invalid shape")

// Parse decodes data as JSON and normalizes it.
func Parse(data []byte) (models.Collection, error) {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return models.Collection{}, fmt.Errorf("%w: %v", ErrShape, err)
	}
	return Normalize(raw)
}

// Normalize coerces an already decoded JSON value into a Collection.
func Normalize(raw any) (models.Collection, error) {
	root, ok := raw.(map[string]any)
	if !ok {
		return models.Collection{}, fmt.Errorf("%w: root must be an object", ErrShape)
	}

	items, _ := root["blueprints"].([]any)

	out := models.Collection{Blueprints: make([]models.Blueprint, 0, len(items))}
	for _, item := range items {
		out.Blueprints = append(out.Blueprints, Record(item))
	}
	return out, nil
}

// Record coerces a single decoded JSON value into a Blueprint. Non-object
// values yield a record made of defaults.
func Record(raw any) models.Blueprint {
	m, _ := raw.(map[string]any)

	b := models.Blueprint{
		Name:           String(m["name"]),
		Workshop:       String(m["workshop"]),
		Image:          String(m["image"]),
		CraftingRecipe: recipe(m["crafting_recipe"]),
		Available:      Truthy(m["available"]),
		Loot:           Truthy(m["loot"]),
		HarvesterEvent: Truthy(m["harvester_event"]),
		QuestReward:    Truthy(m["quest_reward"]),
		TrialsReward:   Truthy(m["trials_reward"]),
	}
	if id, ok := m["id"]; ok && Truthy(id) {
		b.ID = String(id)
	}
	return b
}

func recipe(raw any) []models.RecipeItem {
	items, ok := raw.([]any)
	if !ok {
		return []models.RecipeItem{}
	}

	out := make([]models.RecipeItem, 0, len(items))
	for _, item := range items {
		m, _ := item.(map[string]any)
		out = append(out, models.RecipeItem{
			Item:     String(m["item"]),
			Quantity: ClampInt(m["quantity"], 0),
		})
	}
	return out
}

// Export renders c as portable, indented JSON. Record ids are stripped so the
// document can be imported into any store.
func Export(c models.Collection) ([]byte, error) {
	portable := models.Collection{Blueprints: make([]models.Blueprint, 0, len(c.Blueprints))}
	for _, b := range c.Blueprints {
		portable.Blueprints = append(portable.Blueprints, b.WithoutID())
	}
	return json.MarshalIndent(portable, "", "  ")
}
