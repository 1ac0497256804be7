package inventory

import (
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/mamadbah2/stocktake/internal/domain/models"
	"github.com/mamadbah2/stocktake/internal/service/access"
)

// AddCategory appends a category. Values are unique and immutable.
func (s *Store) AddCategory(sess models.Session, cat models.Category) (models.Category, error) {
	if err := access.Authorize(sess.Role, access.ActionManageCategories); err != nil {
		return models.Category{}, err
	}
	cat.Label = strings.TrimSpace(cat.Label)
	cat.Value = strings.TrimSpace(cat.Value)
	cat.Emoji = strings.TrimSpace(cat.Emoji)
	if cat.Label == "" || cat.Value == "" {
		return models.Category{}, fmt.Errorf("%w: category label and value are required", models.ErrValidation)
	}

	s.mu.Lock()
	if s.hasCategory(cat.Value) {
		s.mu.Unlock()
		return models.Category{}, fmt.Errorf("%w: category %q already exists", models.ErrValidation, cat.Value)
	}
	categories := append(models.CloneCategories(s.categories), cat)
	s.categories = categories
	saveErr := s.persistCategories(categories)
	items := models.CloneItems(s.items)
	now := s.now()
	seq := s.nextSeq()
	s.mu.Unlock()

	s.logger.Info("category added", zap.String("value", cat.Value))
	s.publish(models.ChangeEvent{Kind: models.ChangeCategoryAdded, Category: cat.Value, By: sess.Role, At: now, Seq: seq}, items)
	return cat, saveErr
}

// UpdateCategory changes the label and emoji of a category.
func (s *Store) UpdateCategory(sess models.Session, value string, patch models.CategoryPatch) (models.Category, error) {
	if err := access.Authorize(sess.Role, access.ActionManageCategories); err != nil {
		return models.Category{}, err
	}
	if patch.Label != nil && strings.TrimSpace(*patch.Label) == "" {
		return models.Category{}, fmt.Errorf("%w: category label must not be empty", models.ErrValidation)
	}

	s.mu.Lock()
	idx := s.categoryIndex(value)
	if idx < 0 {
		s.mu.Unlock()
		return models.Category{}, fmt.Errorf("%w: category %q", models.ErrNotFound, value)
	}
	categories := models.CloneCategories(s.categories)
	if patch.Label != nil {
		categories[idx].Label = strings.TrimSpace(*patch.Label)
	}
	if patch.Emoji != nil {
		categories[idx].Emoji = strings.TrimSpace(*patch.Emoji)
	}
	cat := categories[idx]
	s.categories = categories
	saveErr := s.persistCategories(categories)
	items := models.CloneItems(s.items)
	now := s.now()
	seq := s.nextSeq()
	s.mu.Unlock()

	s.logger.Info("category edited", zap.String("value", value))
	s.publish(models.ChangeEvent{Kind: models.ChangeCategoryEdited, Category: value, By: sess.Role, At: now, Seq: seq}, items)
	return cat, saveErr
}

// DeleteCategory removes a category and moves its items to the default
// category. The default category itself cannot be deleted. It returns how many
// items were reassigned.
func (s *Store) DeleteCategory(sess models.Session, value string, decision models.Decision) (int, error) {
	if err := access.Authorize(sess.Role, access.ActionManageCategories); err != nil {
		return 0, err
	}
	if value == s.defaultCat {
		return 0, fmt.Errorf("%w: %q is the default category", models.ErrValidation, value)
	}

	s.mu.Lock()
	idx := s.categoryIndex(value)
	if idx < 0 {
		s.mu.Unlock()
		return 0, fmt.Errorf("%w: category %q", models.ErrNotFound, value)
	}
	if !decision.Confirmed() {
		s.mu.Unlock()
		return 0, fmt.Errorf("%w: %s", models.ErrAborted, models.PromptDeleteCategory)
	}

	categories := make([]models.Category, 0, len(s.categories)-1)
	categories = append(categories, s.categories[:idx]...)
	categories = append(categories, s.categories[idx+1:]...)

	items := models.CloneItems(s.items)
	moved := 0
	for i := range items {
		if items[i].Category == value {
			items[i].Category = s.defaultCat
			moved++
		}
	}

	s.categories = categories
	s.items = items
	catErr := s.persistCategories(categories)
	itemErr := s.persistItems(items)
	now := s.now()
	seq := s.nextSeq()
	s.mu.Unlock()

	s.logger.Info("category deleted", zap.String("value", value), zap.Int("reassigned", moved))
	s.publish(models.ChangeEvent{Kind: models.ChangeCategoryDeleted, Category: value, By: sess.Role, At: now, Seq: seq}, items)
	return moved, errors.Join(catErr, itemErr)
}
