// Package models holds the blueprint record shared by the editor and the
// record store.
package models

// RecipeItem is one ingredient line of a crafting recipe.
type RecipeItem struct {
	Item     string `json:"item"`
	Quantity int    `json:"quantity"`
}

// Blueprint is a crafting recipe record.
//
// ID is assigned by the record store and is empty for records that have not
// been persisted yet.
type Blueprint struct {
	ID             string       `json:"id,omitempty"`
	Name           string       `json:"name"`
	Workshop       string       `json:"workshop"`
	Image          string       `json:"image"`
	CraftingRecipe []RecipeItem `json:"crafting_recipe"`
	Available      bool         `json:"available"`
	Loot           bool         `json:"loot"`
	HarvesterEvent bool         `json:"harvester_event"`
	QuestReward    bool         `json:"quest_reward"`
	TrialsReward   bool         `json:"trials_reward"`
}

// Collection is the import/export document.
type Collection struct {
	Blueprints []Blueprint `json:"blueprints"`
}

// NewBlueprint returns the record the editor creates for "new".
func NewBlueprint() Blueprint {
	return Blueprint{
		Name:           "New Blueprint",
		CraftingRecipe: []RecipeItem{{Item: "", Quantity: 0}},
		Available:      true,
	}
}

// Clone returns a deep copy of b.
func (b Blueprint) Clone() Blueprint {
	out := b
	out.CraftingRecipe = CloneRecipe(b.CraftingRecipe)
	return out
}

// WithoutID returns a deep copy of b with the identity stripped.
func (b Blueprint) WithoutID() Blueprint {
	out := b.Clone()
	out.ID = ""
	return out
}

// CloneRecipe copies a recipe; a nil recipe becomes an empty one.
func CloneRecipe(r []RecipeItem) []RecipeItem {
	out := make([]RecipeItem, len(r))
	copy(out, r)
	return out
}

// CloneAll deep-copies a slice of blueprints.
func CloneAll(bps []Blueprint) []Blueprint {
	out := make([]Blueprint, len(bps))
	for i := range bps {
		out[i] = bps[i].Clone()
	}
	return out
}
