// Package access decides what each role may change and which actions it may take.
package access

import (
	"fmt"

	"github.com/mamadbah2/stocktake/internal/domain/models"
)

// Field names a mutable item field.
type Field string

const (
	FieldName      Field = "name"
	FieldQuantity  Field = "quantity"
	FieldImage     Field = "image"
	FieldExpiry    Field = "expiry"
	FieldThreshold Field = "threshold"
	FieldCaseCost  Field = "caseCost"
	FieldCaseSize  Field = "caseSize"
	FieldCategory  Field = "category"
	FieldUnitType  Field = "unitType"
)

var allFields = []Field{
	FieldName, FieldQuantity, FieldImage, FieldExpiry, FieldThreshold,
	FieldCaseCost, FieldCaseSize, FieldCategory, FieldUnitType,
}

// Action names an operation or view that may be gated by role.
type Action string

const (
	ActionAddItem          Action = "item.add"
	ActionEditItem         Action = "item.edit"
	ActionDeleteItem       Action = "item.delete"
	ActionTogglePin        Action = "item.pin"
	ActionImport           Action = "items.import"
	ActionExport           Action = "items.export"
	ActionManageCategories Action = "categories.manage"
	ActionViewDashboard    Action = "view.dashboard"
	ActionViewStock        Action = "view.stock"
	ActionViewExpiry       Action = "view.expiry"
	ActionViewShopping     Action = "view.shopping"
	ActionViewPinned       Action = "view.pinned"
	ActionViewHistory      Action = "view.history"
)

var guestActions = map[Action]bool{
	ActionEditItem:      true,
	ActionTogglePin:     true,
	ActionExport:        true,
	ActionViewDashboard: true,
	ActionViewStock:     true,
	ActionViewExpiry:    true,
	ActionViewHistory:   true,
}

// FieldSet is an immutable set of fields.
type FieldSet map[Field]struct{}

// Has reports membership.
func (s FieldSet) Has(f Field) bool {
	_, ok := s[f]
	return ok
}

// List returns the fields in a stable order.
func (s FieldSet) List() []Field {
	out := make([]Field, 0, len(s))
	for _, f := range allFields {
		if s.Has(f) {
			out = append(out, f)
		}
	}
	return out
}

func newFieldSet(fields ...Field) FieldSet {
	s := make(FieldSet, len(fields))
	for _, f := range fields {
		s[f] = struct{}{}
	}
	return s
}

// AllowedFields returns the item fields role may overwrite.
func AllowedFields(role models.Role) FieldSet {
	switch role {
	case models.RoleOwner:
		return newFieldSet(allFields...)
	case models.RoleGuest:
		return newFieldSet(FieldQuantity, FieldExpiry)
	default:
		return newFieldSet()
	}
}

// Can reports whether role may perform action.
func Can(role models.Role, action Action) bool {
	switch role {
	case models.RoleOwner:
		return true
	case models.RoleGuest:
		return guestActions[action]
	default:
		return false
	}
}

// Authorize returns ErrForbidden when role may not perform action.
func Authorize(role models.Role, action Action) error {
	if Can(role, action) {
		return nil
	}
	return fmt.Errorf("%w: %s may not %s", models.ErrForbidden, roleName(role), action)
}

// Actions lists every action role may perform, for clients deciding what to render.
func Actions(role models.Role) []Action {
	all := []Action{
		ActionAddItem, ActionEditItem, ActionDeleteItem, ActionTogglePin, ActionImport,
		ActionExport, ActionManageCategories, ActionViewDashboard, ActionViewStock,
		ActionViewExpiry, ActionViewShopping, ActionViewPinned, ActionViewHistory,
	}
	out := make([]Action, 0, len(all))
	for _, a := range all {
		if Can(role, a) {
			out = append(out, a)
		}
	}
	return out
}

// Mask drops every patch field role is not allowed to change.
func Mask(role models.Role, patch models.ItemPatch) models.ItemPatch {
	allowed := AllowedFields(role)
	var out models.ItemPatch
	if allowed.Has(FieldName) {
		out.Name = patch.Name
	}
	if allowed.Has(FieldQuantity) {
		out.Quantity = patch.Quantity
	}
	if allowed.Has(FieldImage) {
		out.Image = patch.Image
	}
	if allowed.Has(FieldExpiry) {
		out.Expiry = patch.Expiry
	}
	if allowed.Has(FieldThreshold) {
		out.Threshold = patch.Threshold
	}
	if allowed.Has(FieldCaseCost) {
		out.CaseCost = patch.CaseCost
	}
	if allowed.Has(FieldCaseSize) {
		out.CaseSize = patch.CaseSize
	}
	if allowed.Has(FieldCategory) {
		out.Category = patch.Category
	}
	if allowed.Has(FieldUnitType) {
		out.UnitType = patch.UnitType
	}
	return out
}

func roleName(role models.Role) string {
	if role == "" {
		return "anonymous"
	}
	return string(role)
}
