package derivation

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/stocktake/internal/domain/models"
)

func TestStockLevelBoundaries(t *testing.T) {
	tests := []struct {
		quantity int
		want     models.StockLevel
	}{
		{-3, models.LevelOOS},
		{0, models.LevelOOS},
		{1, models.LevelLow},
		{4, models.LevelLow},
		{5, models.LevelMed},
		{9, models.LevelMed},
		{10, models.LevelFull},
		{250, models.LevelFull},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, StockLevel(tt.quantity), "StockLevel(%d)", tt.quantity)
	}
}

func TestUnitAndLineCost(t *testing.T) {
	tests := []struct {
		name     string
		item     models.Item
		wantUnit string
		wantLine string
	}{
		{
			name:     "portion splits the case",
			item:     models.Item{Quantity: 2, CaseCost: 10, CaseSize: 4, UnitType: models.UnitPortion},
			wantUnit: "2.5",
			wantLine: "5",
		},
		{
			name:     "portion with zero case size",
			item:     models.Item{Quantity: 7, CaseCost: 12, CaseSize: 0, UnitType: models.UnitPortion},
			wantUnit: "0",
			wantLine: "0",
		},
		{
			name:     "bag uses case cost directly",
			item:     models.Item{Quantity: 3, CaseCost: 4.5, CaseSize: 0, UnitType: models.UnitBag},
			wantUnit: "4.5",
			wantLine: "13.5",
		},
		{
			name:     "missing unit type is costed as portion",
			item:     models.Item{Quantity: 6, CaseCost: 9, CaseSize: 3},
			wantUnit: "3",
			wantLine: "18",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, decimal.RequireFromString(tt.wantUnit).Equal(UnitCost(tt.item)), "unit cost = %s", UnitCost(tt.item))
			assert.True(t, decimal.RequireFromString(tt.wantLine).Equal(LineCost(tt.item)), "line cost = %s", LineCost(tt.item))
		})
	}
}

func TestExpiryBucket(t *testing.T) {
	loc := time.FixedZone("BST", 3600)
	now := time.Date(2025, 6, 10, 15, 30, 0, 0, loc)

	tests := []struct {
		expiry string
		want   models.ExpiryBucket
	}{
		{"2025-06-10", models.ExpiryToday},
		{"2025-06-10T23:59", models.ExpiryToday},
		{"2025-06-11", models.ExpiryTomorrow},
		{"2025-06-11T22:00", models.ExpiryTomorrow},
		{"2025-06-12", models.ExpiryLater},
		{"2026-01-01", models.ExpiryLater},
		// past-due dates need attention now
		{"2025-06-01", models.ExpiryToday},
		// unparseable dates carry no urgency
		{"soon", models.ExpiryLater},
		{"", models.ExpiryLater},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ExpiryBucket(tt.expiry, now), "ExpiryBucket(%q)", tt.expiry)
	}
}

func TestParseExpiryUsesLocation(t *testing.T) {
	loc := time.FixedZone("X", -5*3600)
	got, err := ParseExpiry("2025-03-02", loc)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 3, 2, 0, 0, 0, 0, loc), got)

	_, err = ParseExpiry("02/03/2025", loc)
	assert.Error(t, err)
}

func TestExpiresWithin(t *testing.T) {
	now := time.Date(2025, 6, 10, 9, 0, 0, 0, time.UTC)

	assert.True(t, ExpiresWithin("2025-06-13", now, 3))
	assert.True(t, ExpiresWithin("2025-05-30", now, 3))
	assert.False(t, ExpiresWithin("2025-06-14", now, 3))
	assert.False(t, ExpiresWithin("garbage", now, 3))
}

func TestShoppingEligible(t *testing.T) {
	assert.True(t, ShoppingEligible(models.Item{Quantity: 2, Threshold: 5, Category: "fresh"}))
	assert.True(t, ShoppingEligible(models.Item{Quantity: 5, Threshold: 5, Category: "dry"}))
	assert.False(t, ShoppingEligible(models.Item{Quantity: 6, Threshold: 5, Category: "dry"}))
	assert.False(t, ShoppingEligible(models.Item{Quantity: 0, Threshold: 5, Category: models.PrepCategory}))
}
