package inventory

import (
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/mamadbah2/stocktake/internal/domain/models"
	"github.com/mamadbah2/stocktake/internal/service/access"
	"github.com/mamadbah2/stocktake/internal/service/derivation"
)

// AddItem validates draft, assigns a fresh id and appends the item.
func (s *Store) AddItem(sess models.Session, draft models.ItemDraft) (models.Item, error) {
	if err := access.Authorize(sess.Role, access.ActionAddItem); err != nil {
		return models.Item{}, err
	}
	if err := validateDraft(draft); err != nil {
		s.logger.Debug("item rejected", zap.Error(err))
		return models.Item{}, err
	}
	unitType, _ := models.ParseUnitType(string(draft.UnitType))

	s.mu.Lock()
	now := s.now()
	item := models.Item{
		ID:        s.nextID(),
		Name:      strings.TrimSpace(draft.Name),
		Quantity:  draft.Quantity,
		Image:     strings.TrimSpace(draft.Image),
		Level:     derivation.StockLevel(draft.Quantity),
		Expiry:    strings.TrimSpace(draft.Expiry),
		Threshold: draft.Threshold,
		CaseCost:  draft.CaseCost,
		CaseSize:  draft.CaseSize,
		Category:  s.resolveCategory(draft.Category),
		UnitType:  unitType,
	}

	items := append(models.CloneItems(s.items), item)
	s.items = items
	saveErr := s.persistItems(items)
	logErr := s.record(item.ID, item.Name, models.ActionAdded, now)
	seq := s.nextSeq()
	s.mu.Unlock()

	s.logger.Info("item added", zap.Int64("item_id", item.ID), zap.String("name", item.Name))
	s.publish(models.ChangeEvent{Kind: models.ChangeItemAdded, ItemID: item.ID, Category: item.Category, By: sess.Role, At: now, Seq: seq}, items)
	return item, errors.Join(saveErr, logErr)
}

// UpdateItem merges patch into the item after dropping the fields the caller's
// role may not change. The stock level follows the resulting quantity.
func (s *Store) UpdateItem(sess models.Session, id int64, patch models.ItemPatch) (models.Item, error) {
	if err := access.Authorize(sess.Role, access.ActionEditItem); err != nil {
		return models.Item{}, err
	}
	patch = access.Mask(sess.Role, patch)
	if err := validatePatch(patch); err != nil {
		s.logger.Debug("item patch rejected", zap.Int64("item_id", id), zap.Error(err))
		return models.Item{}, err
	}

	s.mu.Lock()
	idx := s.indexOf(id)
	if idx < 0 {
		s.mu.Unlock()
		return models.Item{}, fmt.Errorf("%w: item %d", models.ErrNotFound, id)
	}

	now := s.now()
	items := models.CloneItems(s.items)
	item := applyPatch(items[idx], patch)
	if patch.Category != nil {
		item.Category = s.resolveCategory(*patch.Category)
	}
	item.Level = derivation.StockLevel(item.Quantity)
	items[idx] = item

	s.items = items
	saveErr := s.persistItems(items)
	logErr := s.record(item.ID, item.Name, models.ActionEdited, now)
	seq := s.nextSeq()
	s.mu.Unlock()

	s.logger.Info("item edited", zap.Int64("item_id", id), zap.String("role", string(sess.Role)))
	s.publish(models.ChangeEvent{Kind: models.ChangeItemEdited, ItemID: id, Category: item.Category, By: sess.Role, At: now, Seq: seq}, items)
	return item, errors.Join(saveErr, logErr)
}

// DeleteItem removes the item once decision confirms it. The audit entry keeps
// the item's last known name.
func (s *Store) DeleteItem(sess models.Session, id int64, decision models.Decision) error {
	if err := access.Authorize(sess.Role, access.ActionDeleteItem); err != nil {
		return err
	}

	s.mu.Lock()
	idx := s.indexOf(id)
	if idx < 0 {
		s.mu.Unlock()
		return fmt.Errorf("%w: item %d", models.ErrNotFound, id)
	}
	if !decision.Confirmed() {
		s.mu.Unlock()
		return fmt.Errorf("%w: %s", models.ErrAborted, models.PromptDeleteItem)
	}

	now := s.now()
	removed := s.items[idx]
	items := make([]models.Item, 0, len(s.items)-1)
	items = append(items, s.items[:idx]...)
	items = append(items, s.items[idx+1:]...)

	s.items = items
	saveErr := s.persistItems(items)
	logErr := s.record(removed.ID, removed.Name, models.ActionDeleted, now)
	seq := s.nextSeq()
	s.mu.Unlock()

	s.logger.Info("item deleted", zap.Int64("item_id", id), zap.String("name", removed.Name))
	s.publish(models.ChangeEvent{Kind: models.ChangeItemDeleted, ItemID: id, Category: removed.Category, By: sess.Role, At: now, Seq: seq}, items)
	return errors.Join(saveErr, logErr)
}

// TogglePin flips the pinned flag. Pinning is not recorded in the history.
func (s *Store) TogglePin(sess models.Session, id int64) (models.Item, error) {
	if err := access.Authorize(sess.Role, access.ActionTogglePin); err != nil {
		return models.Item{}, err
	}

	s.mu.Lock()
	idx := s.indexOf(id)
	if idx < 0 {
		s.mu.Unlock()
		return models.Item{}, fmt.Errorf("%w: item %d", models.ErrNotFound, id)
	}

	items := models.CloneItems(s.items)
	items[idx].Pinned = !items[idx].Pinned
	item := items[idx]

	s.items = items
	saveErr := s.persistItems(items)
	now := s.now()
	seq := s.nextSeq()
	s.mu.Unlock()

	s.logger.Debug("item pin toggled", zap.Int64("item_id", id), zap.Bool("pinned", item.Pinned))
	s.publish(models.ChangeEvent{Kind: models.ChangeItemPinned, ItemID: id, Category: item.Category, By: sess.Role, At: now, Seq: seq}, items)
	return item, saveErr
}

func validateDraft(d models.ItemDraft) error {
	var problems []string
	if strings.TrimSpace(d.Name) == "" {
		problems = append(problems, "name is required")
	}
	if strings.TrimSpace(d.Image) == "" {
		problems = append(problems, "image is required")
	}
	if strings.TrimSpace(d.Expiry) == "" {
		problems = append(problems, "expiry is required")
	}
	problems = append(problems, rangeProblems(&d.Quantity, &d.Threshold, &d.CaseCost, &d.CaseSize)...)
	if _, ok := models.ParseUnitType(string(d.UnitType)); !ok {
		problems = append(problems, fmt.Sprintf("unknown unit type %q", d.UnitType))
	}
	return joinProblems(problems)
}

func validatePatch(p models.ItemPatch) error {
	var problems []string
	if p.Name != nil && strings.TrimSpace(*p.Name) == "" {
		problems = append(problems, "name must not be empty")
	}
	if p.Image != nil && strings.TrimSpace(*p.Image) == "" {
		problems = append(problems, "image must not be empty")
	}
	if p.Expiry != nil && strings.TrimSpace(*p.Expiry) == "" {
		problems = append(problems, "expiry must not be empty")
	}
	problems = append(problems, rangeProblems(p.Quantity, p.Threshold, p.CaseCost, p.CaseSize)...)
	if p.UnitType != nil {
		if _, ok := models.ParseUnitType(string(*p.UnitType)); !ok {
			problems = append(problems, fmt.Sprintf("unknown unit type %q", *p.UnitType))
		}
	}
	return joinProblems(problems)
}

func rangeProblems(quantity, threshold *int, caseCost, caseSize *float64) []string {
	var problems []string
	if quantity != nil && *quantity < 0 {
		problems = append(problems, "quantity must be >= 0")
	}
	if threshold != nil && *threshold < 0 {
		problems = append(problems, "threshold must be >= 0")
	}
	if caseCost != nil && *caseCost < 0 {
		problems = append(problems, "caseCost must be >= 0")
	}
	if caseSize != nil && *caseSize < 0 {
		problems = append(problems, "caseSize must be >= 0")
	}
	return problems
}

func joinProblems(problems []string) error {
	if len(problems) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %s", models.ErrValidation, strings.Join(problems, "; "))
}

func applyPatch(item models.Item, p models.ItemPatch) models.Item {
	if p.Name != nil {
		item.Name = strings.TrimSpace(*p.Name)
	}
	if p.Quantity != nil {
		item.Quantity = *p.Quantity
	}
	if p.Image != nil {
		item.Image = strings.TrimSpace(*p.Image)
	}
	if p.Expiry != nil {
		item.Expiry = strings.TrimSpace(*p.Expiry)
	}
	if p.Threshold != nil {
		item.Threshold = *p.Threshold
	}
	if p.CaseCost != nil {
		item.CaseCost = *p.CaseCost
	}
	if p.CaseSize != nil {
		item.CaseSize = *p.CaseSize
	}
	if p.UnitType != nil {
		item.UnitType, _ = models.ParseUnitType(string(*p.UnitType))
	}
	return item
}
