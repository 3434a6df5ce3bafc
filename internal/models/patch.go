package models

// BlueprintPatch is a partial update. Only non-nil fields are sent to the
// store and applied locally.
type BlueprintPatch struct {
	Name           *string       `json:"name,omitempty"`
	Workshop       *string       `json:"workshop,omitempty"`
	Image          *string       `json:"image,omitempty"`
	CraftingRecipe *[]RecipeItem `json:"crafting_recipe,omitempty"`
	Available      *bool         `json:"available,omitempty"`
	Loot           *bool         `json:"loot,omitempty"`
	HarvesterEvent *bool         `json:"harvester_event,omitempty"`
	QuestReward    *bool         `json:"quest_reward,omitempty"`
	TrialsReward   *bool         `json:"trials_reward,omitempty"`
}

// IsEmpty reports whether the patch changes nothing.
func (p BlueprintPatch) IsEmpty() bool {
	return p.Name == nil && p.Workshop == nil && p.Image == nil &&
		p.CraftingRecipe == nil && p.Available == nil && p.Loot == nil &&
		p.HarvesterEvent == nil && p.QuestReward == nil && p.TrialsReward == nil
}

// Apply copies the set fields of p onto b.
func (p BlueprintPatch) Apply(b *Blueprint) {
	if p.Name != nil {
		b.Name = *p.Name
	}
	if p.Workshop != nil {
		b.Workshop = *p.Workshop
	}
	if p.Image != nil {
		b.Image = *p.Image
	}
	if p.CraftingRecipe != nil {
		b.CraftingRecipe = CloneRecipe(*p.CraftingRecipe)
	}
	if p.Available != nil {
		b.Available = *p.Available
	}
	if p.Loot != nil {
		b.Loot = *p.Loot
	}
	if p.HarvesterEvent != nil {
		b.HarvesterEvent = *p.HarvesterEvent
	}
	if p.QuestReward != nil {
		b.QuestReward = *p.QuestReward
	}
	if p.TrialsReward != nil {
		b.TrialsReward = *p.TrialsReward
	}
}

// Ptr returns a pointer to v. Handy for building patches.
func Ptr[T any](v T) *T {
	return &v
}
