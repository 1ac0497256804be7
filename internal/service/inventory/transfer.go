package inventory

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/mamadbah2/stocktake/internal/domain/models"
	"github.com/mamadbah2/stocktake/internal/service/access"
)

// ExportItems returns the current collection for serialization.
func (s *Store) ExportItems() []models.Item {
	return s.Items()
}

// ExportItemsJSON encodes the collection the way the browser export did.
func (s *Store) ExportItemsJSON() ([]byte, error) {
	data, err := json.MarshalIndent(s.ExportItems(), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode items: %w", err)
	}
	return data, nil
}

// ImportItems replaces the whole collection with the items encoded in data.
// Nothing changes unless data is a well-formed item array and decision
// confirms the replacement. Imports are not recorded in the history.
func (s *Store) ImportItems(sess models.Session, data []byte, decision models.Decision) (int, error) {
	if err := access.Authorize(sess.Role, access.ActionImport); err != nil {
		return 0, err
	}

	incoming, err := ParseItems(data)
	if err != nil {
		s.logger.Debug("import rejected", zap.Error(err))
		return 0, err
	}
	if !decision.Confirmed() {
		return 0, fmt.Errorf("%w: %s", models.ErrAborted, models.PromptImportItems)
	}

	s.mu.Lock()
	for i := range incoming {
		s.normalize(&incoming[i])
		if incoming[i].ID > s.lastID {
			s.lastID = incoming[i].ID
		}
	}
	items := models.CloneItems(incoming)
	s.items = items
	saveErr := s.persistItems(items)
	now := s.now()
	seq := s.nextSeq()
	s.mu.Unlock()

	s.logger.Info("items imported", zap.Int("count", len(items)))
	s.publish(models.ChangeEvent{Kind: models.ChangeItemsImported, By: sess.Role, At: now, Seq: seq}, items)
	return len(items), saveErr
}

// ParseItems decodes an exported item array. Every item needs a unique
// non-zero id, a name, non-negative numbers and a known unit type.
func ParseItems(data []byte) ([]models.Item, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: expected a JSON array of items: %v", models.ErrInvalidFormat, err)
	}
	if raw == nil {
		return nil, fmt.Errorf("%w: expected a JSON array of items", models.ErrInvalidFormat)
	}

	items := make([]models.Item, 0, len(raw))
	seen := make(map[int64]bool, len(raw))
	var problems []error
	for i, entry := range raw {
		var item models.Item
		if err := json.Unmarshal(entry, &item); err != nil {
			problems = append(problems, fmt.Errorf("entry %d: %v", i, err))
			continue
		}
		var entryProblems []string
		switch {
		case item.ID == 0:
			entryProblems = append(entryProblems, "missing id")
		case seen[item.ID]:
			entryProblems = append(entryProblems, fmt.Sprintf("duplicate id %d", item.ID))
		}
		if strings.TrimSpace(item.Name) == "" {
			entryProblems = append(entryProblems, "missing name")
		}
		entryProblems = append(entryProblems, rangeProblems(&item.Quantity, &item.Threshold, &item.CaseCost, &item.CaseSize)...)
		if !item.UnitType.Valid() {
			entryProblems = append(entryProblems, fmt.Sprintf("unknown unit type %q", item.UnitType))
		}
		if len(entryProblems) > 0 {
			problems = append(problems, fmt.Errorf("entry %d: %s", i, strings.Join(entryProblems, "; ")))
		}
		seen[item.ID] = true
		items = append(items, item)
	}
	if len(problems) > 0 {
		return nil, fmt.Errorf("%w: %w", models.ErrInvalidFormat, errors.Join(problems...))
	}
	return items, nil
}
