// Package query holds the read-side filters, orderings and aggregates the
// views are built from. Every function is pure over the slice it is given and
// returns a new slice.
package query

import (
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/mamadbah2/stocktake/internal/domain/models"
	"github.com/mamadbah2/stocktake/internal/service/derivation"
)

// AllCategories disables category filtering.
const AllCategories = "all"

// ExpiringSoonDays is the window of the expiring-soon banner.
const ExpiringSoonDays = 3

// SortField selects the comparator of SortBy.
type SortField string

const (
	SortByName     SortField = "name"
	SortByQuantity SortField = "quantity"
	SortByExpiry   SortField = "expiry"
)

// ParseSortField maps user input to a SortField. Empty input sorts by name.
func ParseSortField(s string) (SortField, bool) {
	switch SortField(strings.ToLower(strings.TrimSpace(s))) {
	case "", SortByName:
		return SortByName, true
	case SortByQuantity:
		return SortByQuantity, true
	case SortByExpiry:
		return SortByExpiry, true
	default:
		return "", false
	}
}

func filter(items []models.Item, keep func(models.Item) bool) []models.Item {
	out := make([]models.Item, 0, len(items))
	for _, item := range items {
		if keep(item) {
			out = append(out, item)
		}
	}
	return out
}

// ByCategory keeps the items of one category, or all of them for AllCategories.
func ByCategory(items []models.Item, value string) []models.Item {
	if value == "" || value == AllCategories {
		return filter(items, func(models.Item) bool { return true })
	}
	return filter(items, func(i models.Item) bool { return i.Category == value })
}

// BySearch keeps items whose name contains term, ignoring case.
func BySearch(items []models.Item, term string) []models.Item {
	term = strings.ToLower(strings.TrimSpace(term))
	return filter(items, func(i models.Item) bool {
		return strings.Contains(strings.ToLower(i.Name), term)
	})
}

// SortBy orders pinned items before unpinned ones and applies field within
// each group. Names use English collation; expiry strings compare as written.
func SortBy(items []models.Item, field SortField, ascending bool) []models.Item {
	out := models.CloneItems(items)
	col := collate.New(language.English, collate.IgnoreCase)

	compare := func(a, b models.Item) int {
		switch field {
		case SortByQuantity:
			return a.Quantity - b.Quantity
		case SortByExpiry:
			return strings.Compare(a.Expiry, b.Expiry)
		default:
			return col.CompareString(a.Name, b.Name)
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Pinned != b.Pinned {
			return a.Pinned
		}
		c := compare(a, b)
		if ascending {
			return c < 0
		}
		return c > 0
	})
	return out
}

// ShoppingList keeps the items at or below their reorder point, prep excluded.
func ShoppingList(items []models.Item) []models.Item {
	return filter(items, derivation.ShoppingEligible)
}

// ByExpiry keeps the items whose expiry falls in bucket relative to now.
func ByExpiry(items []models.Item, bucket models.ExpiryBucket, now time.Time) []models.Item {
	return filter(items, func(i models.Item) bool {
		return derivation.ExpiryBucket(i.Expiry, now) == bucket
	})
}

// ExpiringWithin keeps items expiring no later than days from now, past-due included.
func ExpiringWithin(items []models.Item, now time.Time, days int) []models.Item {
	return filter(items, func(i models.Item) bool {
		return derivation.ExpiresWithin(i.Expiry, now, days)
	})
}

// Pinned keeps pinned items.
func Pinned(items []models.Item) []models.Item {
	return filter(items, func(i models.Item) bool { return i.Pinned })
}

// ExcludePrep drops defrosting and prepared items, which the stock listing hides.
func ExcludePrep(items []models.Item) []models.Item {
	return filter(items, func(i models.Item) bool { return i.Category != models.PrepCategory })
}

// TotalCost sums the line cost of items.
func TotalCost(items []models.Item) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(derivation.LineCost(item))
	}
	return total
}

// CategorySummary aggregates one category.
type CategorySummary struct {
	Category models.Category `json:"category"`
	Count    int             `json:"count"`
	Cost     decimal.Decimal `json:"cost"`
}

// CategoryBreakdown counts and costs items per category, in category order.
// Categories without items are reported with zero values.
func CategoryBreakdown(items []models.Item, categories []models.Category) []CategorySummary {
	index := make(map[string]int, len(categories))
	out := make([]CategorySummary, len(categories))
	for i, c := range categories {
		index[c.Value] = i
		out[i] = CategorySummary{Category: c, Cost: decimal.Zero}
	}
	for _, item := range items {
		i, ok := index[item.Category]
		if !ok {
			continue
		}
		out[i].Count++
		out[i].Cost = out[i].Cost.Add(derivation.LineCost(item))
	}
	return out
}

// CategoryCounts returns how many items each category value holds.
func CategoryCounts(items []models.Item) map[string]int {
	counts := make(map[string]int)
	for _, item := range items {
		counts[item.Category]++
	}
	return counts
}

// Summary is the headline of the dashboard.
type Summary struct {
	TotalItems    int             `json:"totalItems"`
	OutOfStock    int             `json:"outOfStock"`
	ExpiringToday int             `json:"expiringToday"`
	ExpiringSoon  int             `json:"expiringSoon"`
	TotalCost     decimal.Decimal `json:"totalCost"`
}

// Summarize computes the dashboard headline for now.
func Summarize(items []models.Item, now time.Time) Summary {
	s := Summary{TotalItems: len(items), TotalCost: TotalCost(items)}
	for _, item := range items {
		if item.Level == models.LevelOOS {
			s.OutOfStock++
		}
		if derivation.ExpiryBucket(item.Expiry, now) == models.ExpiryToday {
			s.ExpiringToday++
		}
		if derivation.ExpiresWithin(item.Expiry, now, ExpiringSoonDays) {
			s.ExpiringSoon++
		}
	}
	return s
}

// StockView is the filtered stock listing with its per-category counts and
// the value of the listed items.
type StockView struct {
	Items     []models.Item   `json:"items"`
	Counts    map[string]int  `json:"counts"`
	TotalCost decimal.Decimal `json:"totalCost"`
}

// Stock builds the stock listing: prep items are hidden, counts cover every
// other item, then category and search filters and the ordering apply.
func Stock(items []models.Item, category, search string, field SortField, ascending bool) StockView {
	visible := ExcludePrep(items)
	listed := BySearch(ByCategory(visible, category), search)
	return StockView{
		Items:     SortBy(listed, field, ascending),
		Counts:    CategoryCounts(visible),
		TotalCost: TotalCost(listed),
	}
}

// BucketView is one expiry group and the value of its items.
type BucketView struct {
	Items     []models.Item   `json:"items"`
	TotalCost decimal.Decimal `json:"totalCost"`
}

// Expiry lists the items of bucket in expiry order with their summed line cost.
func Expiry(items []models.Item, bucket models.ExpiryBucket, now time.Time) BucketView {
	listed := ByExpiry(items, bucket, now)
	return BucketView{
		Items:     SortBy(listed, SortByExpiry, true),
		TotalCost: TotalCost(listed),
	}
}
