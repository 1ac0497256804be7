// Package inventory owns the item and category collections. Every mutation is
// checked against the caller's role, persisted as a whole record and, for
// items, appended to the audit history.
package inventory

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/stocktake/internal/domain/models"
	"github.com/mamadbah2/stocktake/internal/repository/localstore"
	"github.com/mamadbah2/stocktake/internal/service/derivation"
)

// DefaultCategory is the reassignment target when none is configured.
const DefaultCategory = "dry"

// AuditLog receives one entry per item mutation.
type AuditLog interface {
	Append(entry models.LogEntry) error
}

// Listener is notified after a mutation has settled. items is a private copy.
// Notifications may arrive out of order; ChangeEvent.Seq gives the order in
// which the mutations were applied.
type Listener interface {
	InventoryChanged(ev models.ChangeEvent, items []models.Item)
}

// ListenerFunc adapts a function to Listener.
type ListenerFunc func(ev models.ChangeEvent, items []models.Item)

// InventoryChanged implements Listener.
func (f ListenerFunc) InventoryChanged(ev models.ChangeEvent, items []models.Item) { f(ev, items) }

// Options tunes a Store.
type Options struct {
	// DefaultCategory receives the items of deleted categories and of items
	// submitted with an unknown category.
	DefaultCategory string
	// SeedCategories are used when no categories record exists yet.
	SeedCategories []models.Category
	Now            func() time.Time
}

// Store is the authoritative inventory state. Operations are serialized and
// readers only ever observe fully applied mutations.
type Store struct {
	mu         sync.Mutex
	repo       localstore.Store
	audit      AuditLog
	logger     *zap.Logger
	now        func() time.Time
	defaultCat string

	items      []models.Item
	categories []models.Category
	lastID     int64
	seq        uint64

	listenersMu sync.RWMutex
	listeners   []Listener
}

// NewStore loads the persisted records. A record that exists but cannot be
// decoded is an error; starting empty would overwrite it on the next save.
func NewStore(repo localstore.Store, audit AuditLog, opts Options, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if repo == nil {
		return nil, errors.New("inventory: record store is required")
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	defaultCat := strings.TrimSpace(opts.DefaultCategory)
	if defaultCat == "" {
		defaultCat = DefaultCategory
	}

	s := &Store{
		repo:       repo,
		audit:      audit,
		logger:     logger,
		now:        opts.Now,
		defaultCat: defaultCat,
	}

	if err := s.loadCategories(opts.SeedCategories); err != nil {
		return nil, err
	}
	if err := s.loadItems(); err != nil {
		return nil, err
	}

	logger.Info("inventory loaded",
		zap.Int("items", len(s.items)),
		zap.Int("categories", len(s.categories)),
		zap.String("default_category", s.defaultCat),
	)
	return s, nil
}

func (s *Store) loadCategories(seed []models.Category) error {
	var stored []models.Category
	found, err := s.repo.Load(localstore.KeyCategories, &stored)
	if err != nil {
		return fmt.Errorf("load categories: %w", err)
	}
	if !found {
		stored = seed
		if len(stored) == 0 {
			stored = models.DefaultCategories()
		}
	}

	seen := make(map[string]bool, len(stored))
	categories := make([]models.Category, 0, len(stored)+1)
	for _, c := range stored {
		c.Value = strings.TrimSpace(c.Value)
		if c.Value == "" || seen[c.Value] {
			s.logger.Warn("dropping invalid stored category", zap.String("value", c.Value))
			continue
		}
		seen[c.Value] = true
		categories = append(categories, c)
	}
	if !seen[s.defaultCat] {
		categories = append(categories, models.Category{Label: s.defaultCat, Value: s.defaultCat})
		s.logger.Info("default category added", zap.String("value", s.defaultCat))
	}
	s.categories = categories
	return nil
}

func (s *Store) loadItems() error {
	var stored []models.Item
	if _, err := s.repo.Load(localstore.KeyItems, &stored); err != nil {
		return fmt.Errorf("load items: %w", err)
	}

	items := make([]models.Item, 0, len(stored))
	for _, item := range stored {
		s.normalize(&item)
		if item.ID > s.lastID {
			s.lastID = item.ID
		}
		items = append(items, item)
	}
	s.items = items
	return nil
}

// normalize repairs derived and defaulted fields of a stored or imported item.
func (s *Store) normalize(item *models.Item) {
	item.Level = derivation.StockLevel(item.Quantity)
	if !item.UnitType.Valid() {
		item.UnitType = models.UnitPortion
	}
	if !s.hasCategory(item.Category) {
		item.Category = s.defaultCat
	}
}

// Items returns a snapshot of the collection in insertion order.
func (s *Store) Items() []models.Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	return models.CloneItems(s.items)
}

// Item returns the item with the given id.
func (s *Store) Item(id int64) (models.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.indexOf(id)
	if idx < 0 {
		return models.Item{}, fmt.Errorf("%w: item %d", models.ErrNotFound, id)
	}
	return s.items[idx], nil
}

// Categories returns a snapshot of the categories.
func (s *Store) Categories() []models.Category {
	s.mu.Lock()
	defer s.mu.Unlock()
	return models.CloneCategories(s.categories)
}

// DefaultCategory returns the value of the reassignment target.
func (s *Store) DefaultCategory() string { return s.defaultCat }

// Subscribe registers l for change notifications.
func (s *Store) Subscribe(l Listener) {
	if l == nil {
		return
	}
	s.listenersMu.Lock()
	defer s.listenersMu.Unlock()
	s.listeners = append(s.listeners, l)
}

func (s *Store) publish(ev models.ChangeEvent, items []models.Item) {
	s.listenersMu.RLock()
	listeners := append([]Listener(nil), s.listeners...)
	s.listenersMu.RUnlock()

	for _, l := range listeners {
		l.InventoryChanged(ev, models.CloneItems(items))
	}
}

func (s *Store) indexOf(id int64) int {
	for i := range s.items {
		if s.items[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) categoryIndex(value string) int {
	for i := range s.categories {
		if s.categories[i].Value == value {
			return i
		}
	}
	return -1
}

func (s *Store) hasCategory(value string) bool {
	return s.categoryIndex(value) >= 0
}

// resolveCategory maps empty or unknown values to the default category.
func (s *Store) resolveCategory(value string) string {
	value = strings.TrimSpace(value)
	if value == "" || !s.hasCategory(value) {
		return s.defaultCat
	}
	return value
}

// nextID is millisecond based and strictly increasing, so ids are never reused
// even when two items are created within the same millisecond.
func (s *Store) nextID() int64 {
	id := s.now().UnixMilli()
	if id <= s.lastID {
		id = s.lastID + 1
	}
	s.lastID = id
	return id
}

// nextSeq numbers a settled mutation. Must be called with mu held.
func (s *Store) nextSeq() uint64 {
	s.seq++
	return s.seq
}

func (s *Store) persistItems(items []models.Item) error {
	if err := s.repo.Save(localstore.KeyItems, items); err != nil {
		s.logger.Warn("items not persisted", zap.Error(err))
		return &models.PersistenceWarning{Record: localstore.KeyItems, Err: err}
	}
	return nil
}

func (s *Store) persistCategories(categories []models.Category) error {
	if err := s.repo.Save(localstore.KeyCategories, categories); err != nil {
		s.logger.Warn("categories not persisted", zap.Error(err))
		return &models.PersistenceWarning{Record: localstore.KeyCategories, Err: err}
	}
	return nil
}

func (s *Store) record(id int64, name string, action models.Action, at time.Time) error {
	if s.audit == nil {
		return nil
	}
	return s.audit.Append(models.LogEntry{ID: id, Name: name, Action: action, Timestamp: at})
}
