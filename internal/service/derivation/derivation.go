// Package derivation computes the values that are never stored independently:
// unit and line cost, stock level, expiry bucket and shopping-list eligibility.
package derivation

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mamadbah2/stocktake/internal/domain/models"
)

// Stock level boundaries.
const (
	fullAt = 10
	medAt  = 5
	lowAt  = 1
)

// expiryLayouts are tried in order. The first is what a date input produces.
var expiryLayouts = []string{
	"2006-01-02",
	"2006-01-02T15:04",
	time.RFC3339,
}

// UnitCost returns the cost of one consumable unit. Portion items split the
// case cost across the case size; a zero case size yields zero rather than a
// division error. Bag items are costed per case.
func UnitCost(item models.Item) decimal.Decimal {
	caseCost := decimal.NewFromFloat(item.CaseCost)
	if item.UnitType == models.UnitBag {
		return caseCost
	}
	if item.CaseSize <= 0 {
		return decimal.Zero
	}
	return caseCost.Div(decimal.NewFromFloat(item.CaseSize))
}

// LineCost is the value of the quantity on hand.
func LineCost(item models.Item) decimal.Decimal {
	qty := decimal.NewFromInt(int64(item.Quantity))
	if item.UnitType == models.UnitBag {
		return decimal.NewFromFloat(item.CaseCost).Mul(qty)
	}
	return UnitCost(item).Mul(qty)
}

// StockLevel classifies a quantity.
func StockLevel(quantity int) models.StockLevel {
	switch {
	case quantity >= fullAt:
		return models.LevelFull
	case quantity >= medAt:
		return models.LevelMed
	case quantity >= lowAt:
		return models.LevelLow
	default:
		return models.LevelOOS
	}
}

// StartOfDay returns local midnight of t's calendar day in t's location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// ParseExpiry reads an expiry string. Bare dates are interpreted as midnight in loc.
func ParseExpiry(s string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	s = strings.TrimSpace(s)
	var firstErr error
	for _, layout := range expiryLayouts {
		t, err := time.ParseInLocation(layout, s, loc)
		if err == nil {
			return t, nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return time.Time{}, firstErr
}

// ExpiryBucket places an expiry date relative to now's local day.
// Dates before tomorrow, past-due ones included, are "today". Strings that
// cannot be parsed are "later".
func ExpiryBucket(expiry string, now time.Time) models.ExpiryBucket {
	t, err := ParseExpiry(expiry, now.Location())
	if err != nil {
		return models.ExpiryLater
	}

	startOfTomorrow := StartOfDay(now).AddDate(0, 0, 1)
	startOfDayAfter := StartOfDay(now).AddDate(0, 0, 2)

	switch {
	case t.Before(startOfTomorrow):
		return models.ExpiryToday
	case t.Before(startOfDayAfter):
		return models.ExpiryTomorrow
	default:
		return models.ExpiryLater
	}
}

// ExpiresWithin reports whether expiry falls on or before now plus the given
// number of days. Unparseable dates never qualify.
func ExpiresWithin(expiry string, now time.Time, days int) bool {
	t, err := ParseExpiry(expiry, now.Location())
	if err != nil {
		return false
	}
	return !t.After(now.AddDate(0, 0, days))
}

// ShoppingEligible reports whether the item should be reordered.
func ShoppingEligible(item models.Item) bool {
	return item.Category != models.PrepCategory && item.Quantity <= item.Threshold
}
