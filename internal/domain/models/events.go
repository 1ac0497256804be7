package models

import "time"

// ChangeKind names what happened to the inventory.
type ChangeKind string

const (
	ChangeItemAdded       ChangeKind = "item.added"
	ChangeItemEdited      ChangeKind = "item.edited"
	ChangeItemDeleted     ChangeKind = "item.deleted"
	ChangeItemPinned      ChangeKind = "item.pinned"
	ChangeItemsImported   ChangeKind = "items.imported"
	ChangeCategoryAdded   ChangeKind = "category.added"
	ChangeCategoryEdited  ChangeKind = "category.edited"
	ChangeCategoryDeleted ChangeKind = "category.deleted"
)

// ChangeEvent is published after a mutation has settled. Seq increases with
// every mutation of one store.
type ChangeEvent struct {
	Seq      uint64     `json:"seq"`
	Kind     ChangeKind `json:"kind"`
	ItemID   int64      `json:"itemId,omitempty"`
	Category string     `json:"category,omitempty"`
	By       Role       `json:"by"`
	At       time.Time  `json:"at"`
}
