package models

// PrepCategory holds defrosting and prepared items, which never go on the shopping list.
const PrepCategory = "def/prep"

// Category groups items. Value is the immutable primary key items refer to.
type Category struct {
	Label string `json:"label" yaml:"label"`
	Value string `json:"value" yaml:"value"`
	Emoji string `json:"emoji" yaml:"emoji"`
}

// CategoryPatch updates the display fields of a category.
type CategoryPatch struct {
	Label *string `json:"label,omitempty"`
	Emoji *string `json:"emoji,omitempty"`
}

// DefaultCategories returns the categories a fresh installation starts with.
func DefaultCategories() []Category {
	return []Category{
		{Label: "Dry", Value: "dry", Emoji: "🟤"},
		{Label: "Fresh", Value: "fresh", Emoji: "🟢"},
		{Label: "Frozen", Value: "frozen", Emoji: "🧊"},
		{Label: "Desserts", Value: "desserts", Emoji: "🍰"},
		{Label: "Def/Prep", Value: PrepCategory, Emoji: "🚫"},
	}
}

// CloneCategories returns a copy of src.
func CloneCategories(src []Category) []Category {
	if src == nil {
		return []Category{}
	}
	out := make([]Category, len(src))
	copy(out, src)
	return out
}
