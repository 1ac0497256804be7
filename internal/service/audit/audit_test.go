package audit

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/stocktake/internal/domain/models"
	"github.com/mamadbah2/stocktake/internal/repository/localstore"
)

func entry(id int64, action models.Action) models.LogEntry {
	return models.LogEntry{
		ID:        id,
		Name:      fmt.Sprintf("item-%d", id),
		Action:    action,
		Timestamp: time.UnixMilli(1_700_000_000_000 + id*1000),
	}
}

func TestAppendIsMostRecentFirst(t *testing.T) {
	log := NewLog(localstore.NewMemory(), 0, nil)

	require.NoError(t, log.Append(entry(1, models.ActionAdded)))
	require.NoError(t, log.Append(entry(1, models.ActionEdited)))
	require.NoError(t, log.Append(entry(2, models.ActionAdded)))

	got := log.List()
	require.Len(t, got, 3)
	assert.Equal(t, int64(2), got[0].ID)
	assert.Equal(t, models.ActionEdited, got[1].Action)
	assert.Equal(t, models.ActionAdded, got[2].Action)
}

func TestCapacityEvictsOldest(t *testing.T) {
	repo := localstore.NewMemory()
	log := NewLog(repo, DefaultCapacity, nil)

	for i := int64(1); i <= 101; i++ {
		require.NoError(t, log.Append(entry(i, models.ActionAdded)))
	}

	got := log.List()
	require.Len(t, got, DefaultCapacity)
	assert.Equal(t, int64(101), got[0].ID)
	assert.Equal(t, int64(2), got[len(got)-1].ID, "entry 1 must be evicted")

	var persisted []models.LogEntry
	_, err := repo.Load(localstore.KeyHistory, &persisted)
	require.NoError(t, err)
	assert.Len(t, persisted, DefaultCapacity)
}

func TestReloadKeepsOrder(t *testing.T) {
	repo := localstore.NewMemory()
	first := NewLog(repo, 5, nil)
	for i := int64(1); i <= 3; i++ {
		require.NoError(t, first.Append(entry(i, models.ActionAdded)))
	}

	second := NewLog(repo, 5, nil)
	assert.Equal(t, first.List(), second.List())

	require.NoError(t, second.Append(entry(4, models.ActionDeleted)))
	assert.Equal(t, int64(4), second.List()[0].ID)
}

func TestReloadTruncatesToCapacity(t *testing.T) {
	repo := localstore.NewMemory()
	big := NewLog(repo, 10, nil)
	for i := int64(1); i <= 10; i++ {
		require.NoError(t, big.Append(entry(i, models.ActionAdded)))
	}

	small := NewLog(repo, 3, nil)
	got := small.List()
	require.Len(t, got, 3)
	assert.Equal(t, []int64{10, 9, 8}, []int64{got[0].ID, got[1].ID, got[2].ID})
}

func TestPersistFailureStillRecords(t *testing.T) {
	repo := localstore.NewMemory()
	repo.FailSaves(localstore.KeyHistory, errors.New("storage full"))
	log := NewLog(repo, 0, nil)

	err := log.Append(entry(7, models.ActionDeleted))
	assert.True(t, models.IsPersistenceWarning(err))
	assert.Equal(t, 1, log.Len())
}

func TestCorruptHistoryStartsEmpty(t *testing.T) {
	repo := localstore.NewMemory()
	repo.Put(localstore.KeyHistory, []byte(`{"oops":`))

	log := NewLog(repo, 0, nil)
	assert.Equal(t, 0, log.Len())
}

func TestLegacyHistoryDecodes(t *testing.T) {
	repo := localstore.NewMemory()
	repo.Put(localstore.KeyHistory, []byte(`[
		{"id": 1712000000000, "name": "Milk", "action": "deleted", "time": 1712000500000},
		{"id": 1712000000000, "name": "Milk", "action": "added", "timestamp": 1712000000000}
	]`))

	got := NewLog(repo, 0, nil).List()
	require.Len(t, got, 2)
	assert.Equal(t, models.ActionDeleted, got[0].Action)
	assert.Equal(t, int64(1712000500000), got[0].Timestamp.UnixMilli())
	assert.Equal(t, int64(1712000000000), got[1].Timestamp.UnixMilli())
}

func TestWriteCSV(t *testing.T) {
	log := NewLog(localstore.NewMemory(), 0, nil)
	require.NoError(t, log.Append(models.LogEntry{
		ID: 1, Name: "Milk, semi", Action: models.ActionAdded,
		Timestamp: time.Date(2025, 6, 1, 8, 30, 0, 0, time.UTC),
	}))
	require.NoError(t, log.Append(models.LogEntry{
		ID: 1, Name: "Milk, semi", Action: models.ActionDeleted,
		Timestamp: time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC),
	}))

	var buf bytes.Buffer
	require.NoError(t, log.WriteCSV(&buf, time.UTC))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Equal(t, []string{
		"Time,Item,Action",
		`2025-06-02 09:00:00,"Milk, semi",deleted`,
		`2025-06-01 08:30:00,"Milk, semi",added`,
	}, lines)
}
