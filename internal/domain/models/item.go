package models

import (
	"encoding/json"
	"strings"
)

// StockLevel classifies how scarce an item is, derived from its quantity.
type StockLevel string

const (
	LevelFull StockLevel = "Full"
	LevelMed  StockLevel = "Med"
	LevelLow  StockLevel = "Low"
	LevelOOS  StockLevel = "OOS"
)

// Levels lists every stock level from most to least stocked.
var Levels = []StockLevel{LevelFull, LevelMed, LevelLow, LevelOOS}

// UnitType governs how an item's cost is attributed to consumable units.
type UnitType string

const (
	UnitPortion UnitType = "portion"
	UnitBag     UnitType = "bag"
)

// Valid reports whether u is a known unit type.
func (u UnitType) Valid() bool {
	return u == UnitPortion || u == UnitBag
}

// ParseUnitType normalizes user input. Empty input maps to portion, which is how
// records written before the field existed were costed.
func ParseUnitType(s string) (UnitType, bool) {
	switch UnitType(strings.ToLower(strings.TrimSpace(s))) {
	case "", UnitPortion:
		return UnitPortion, true
	case UnitBag:
		return UnitBag, true
	default:
		return "", false
	}
}

// Item is a single stocked product. The JSON layout matches the records the
// browser app kept under the "stockItems" key.
type Item struct {
	ID        int64      `json:"id"`
	Name      string     `json:"name"`
	Quantity  int        `json:"quantity"`
	Image     string     `json:"image"`
	Level     StockLevel `json:"level"`
	Expiry    string     `json:"expiry"`
	Threshold int        `json:"threshold"`
	CaseCost  float64    `json:"caseCost"`
	CaseSize  float64    `json:"caseSize"`
	Category  string     `json:"category"`
	UnitType  UnitType   `json:"unitType"`
	Pinned    bool       `json:"pinned"`
}

// UnmarshalJSON fills defaults for fields that older exports do not carry and
// normalizes the unit type the way ParseUnitType does. Unknown unit types are
// kept so validation can report them.
func (i *Item) UnmarshalJSON(data []byte) error {
	type rawItem Item
	var raw rawItem
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if u, ok := ParseUnitType(string(raw.UnitType)); ok {
		raw.UnitType = u
	}
	*i = Item(raw)
	return nil
}

// ItemDraft carries the caller-supplied fields of a new item.
type ItemDraft struct {
	Name      string   `json:"name"`
	Quantity  int      `json:"quantity"`
	Image     string   `json:"image"`
	Expiry    string   `json:"expiry"`
	Threshold int      `json:"threshold"`
	CaseCost  float64  `json:"caseCost"`
	CaseSize  float64  `json:"caseSize"`
	Category  string   `json:"category"`
	UnitType  UnitType `json:"unitType"`
}

// ItemPatch is a partial update. Nil fields are left untouched.
type ItemPatch struct {
	Name      *string   `json:"name,omitempty"`
	Quantity  *int      `json:"quantity,omitempty"`
	Image     *string   `json:"image,omitempty"`
	Expiry    *string   `json:"expiry,omitempty"`
	Threshold *int      `json:"threshold,omitempty"`
	CaseCost  *float64  `json:"caseCost,omitempty"`
	CaseSize  *float64  `json:"caseSize,omitempty"`
	Category  *string   `json:"category,omitempty"`
	UnitType  *UnitType `json:"unitType,omitempty"`
}

// IsEmpty reports whether the patch would change nothing.
func (p ItemPatch) IsEmpty() bool {
	return p.Name == nil && p.Quantity == nil && p.Image == nil && p.Expiry == nil &&
		p.Threshold == nil && p.CaseCost == nil && p.CaseSize == nil && p.Category == nil &&
		p.UnitType == nil
}

// CloneItems returns a copy of src that callers may mutate freely.
func CloneItems(src []Item) []Item {
	if src == nil {
		return []Item{}
	}
	out := make([]Item, len(src))
	copy(out, src)
	return out
}
