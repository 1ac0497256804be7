package inventory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/stocktake/internal/domain/models"
	"github.com/mamadbah2/stocktake/internal/repository/localstore"
)

func TestAddCategory(t *testing.T) {
	f := newFixture(t)

	cat, err := f.store.AddCategory(owner, models.Category{Label: " Spices ", Value: "spices", Emoji: "🌶"})
	require.NoError(t, err)
	assert.Equal(t, "Spices", cat.Label)
	assert.Len(t, f.store.Categories(), 6)

	_, err = f.store.AddCategory(owner, models.Category{Label: "Spices again", Value: "spices"})
	assert.ErrorIs(t, err, models.ErrValidation)

	_, err = f.store.AddCategory(owner, models.Category{Label: "", Value: "blank"})
	assert.ErrorIs(t, err, models.ErrValidation)
	assert.Len(t, f.store.Categories(), 6)
}

func TestUpdateCategoryKeepsValue(t *testing.T) {
	f := newFixture(t)

	cat, err := f.store.UpdateCategory(owner, "fresh", models.CategoryPatch{Label: strPtr("Chilled"), Emoji: strPtr("❄")})
	require.NoError(t, err)
	assert.Equal(t, models.Category{Label: "Chilled", Value: "fresh", Emoji: "❄"}, cat)

	_, err = f.store.UpdateCategory(owner, "nope", models.CategoryPatch{Label: strPtr("x")})
	assert.ErrorIs(t, err, models.ErrNotFound)

	_, err = f.store.UpdateCategory(owner, "fresh", models.CategoryPatch{Label: strPtr(" ")})
	assert.ErrorIs(t, err, models.ErrValidation)
}

func TestDeleteCategoryReassignsItems(t *testing.T) {
	f := newFixture(t)
	for i := 0; i < 3; i++ {
		_, err := f.store.AddItem(owner, milkDraft())
		require.NoError(t, err)
	}
	other := milkDraft()
	other.Category = "frozen"
	_, err := f.store.AddItem(owner, other)
	require.NoError(t, err)
	historyBefore := f.log.Len()

	moved, err := f.store.DeleteCategory(owner, "fresh", models.DecisionConfirmed)
	require.NoError(t, err)
	assert.Equal(t, 3, moved)

	for _, item := range f.store.Items() {
		assert.NotEqual(t, "fresh", item.Category)
	}
	counts := map[string]int{}
	for _, item := range f.store.Items() {
		counts[item.Category]++
	}
	assert.Equal(t, map[string]int{"dry": 3, "frozen": 1}, counts)

	for _, c := range f.store.Categories() {
		assert.NotEqual(t, "fresh", c.Value)
	}
	assert.Equal(t, historyBefore, f.log.Len())

	var persisted []models.Item
	_, err = f.repo.Load(localstore.KeyItems, &persisted)
	require.NoError(t, err)
	assert.Equal(t, f.store.Items(), persisted)
}

func TestDeleteCategoryGuards(t *testing.T) {
	f := newFixture(t)

	_, err := f.store.DeleteCategory(owner, DefaultCategory, models.DecisionConfirmed)
	assert.ErrorIs(t, err, models.ErrValidation)

	_, err = f.store.DeleteCategory(owner, "missing", models.DecisionConfirmed)
	assert.ErrorIs(t, err, models.ErrNotFound)

	_, err = f.store.DeleteCategory(owner, "fresh", models.DecisionDeclined)
	assert.ErrorIs(t, err, models.ErrAborted)
	assert.Len(t, f.store.Categories(), 5)
}
