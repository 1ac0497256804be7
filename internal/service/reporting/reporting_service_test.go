package reporting

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/stocktake/internal/domain/models"
)

type stubInventory struct {
	items      []models.Item
	categories []models.Category
}

func (s stubInventory) Items() []models.Item          { return s.items }
func (s stubInventory) Categories() []models.Category { return s.categories }

type stubHistory [][]string

func (h stubHistory) Rows(*time.Location) [][]string { return h }

type recordingReports struct {
	saved []models.DailyReport
	err   error
}

func (r *recordingReports) SaveDailyReport(_ context.Context, report models.DailyReport) error {
	r.saved = append(r.saved, report)
	return r.err
}

type recordingSheet struct {
	cleared []string
	written [][]interface{}
	err     error
}

func (s *recordingSheet) WriteRows(_ context.Context, _ string, rows [][]interface{}) error {
	s.written = append(s.written, rows...)
	return s.err
}

func (s *recordingSheet) ClearRange(_ context.Context, sheetRange string) error {
	s.cleared = append(s.cleared, sheetRange)
	return nil
}

var reportNow = time.Date(2025, 6, 10, 7, 0, 0, 0, time.UTC)

func inventoryFixture() stubInventory {
	return stubInventory{
		items: []models.Item{
			{ID: 1, Name: "Milk", Quantity: 2, Threshold: 5, Category: "fresh", CaseCost: 10, CaseSize: 4, UnitType: models.UnitPortion, Level: models.LevelLow, Expiry: "2025-06-10"},
			{ID: 2, Name: "Rice", Quantity: 0, Threshold: 1, Category: "dry", CaseCost: 3, UnitType: models.UnitBag, Level: models.LevelOOS, Expiry: "2025-06-11"},
			{ID: 3, Name: "Flour", Quantity: 10, Threshold: 2, Category: "dry", CaseCost: 8, CaseSize: 4, UnitType: models.UnitPortion, Level: models.LevelFull, Expiry: "2026-01-01"},
		},
		categories: []models.Category{
			{Label: "Dry", Value: "dry", Emoji: "🟤"},
			{Label: "Fresh", Value: "fresh", Emoji: "🟢"},
		},
	}
}

func newTestService(reports ReportRepository, sheet *recordingSheet) *Service {
	opts := Options{
		Reports:  reports,
		Currency: "GBP",
		Location: time.UTC,
		Now:      func() time.Time { return reportNow },
	}
	if sheet != nil {
		opts.Sheet = sheet
	}
	return NewService(inventoryFixture(), stubHistory{{"2025-06-10 06:00:00", "Milk", "added"}}, opts, nil)
}

func TestFormatMoney(t *testing.T) {
	assert.Equal(t, "£5.00", FormatMoney(decimal.NewFromInt(5), "GBP"))
	assert.Equal(t, "£2.50", FormatMoney(decimal.RequireFromString("2.499"), "GBP"))
	assert.Equal(t, "1.50 ZZZ", FormatMoney(decimal.RequireFromString("1.5"), "ZZZ"))
}

func TestBuildDailyReport(t *testing.T) {
	report := newTestService(nil, nil).BuildDailyReport()

	assert.Equal(t, time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC), report.Date)
	assert.Equal(t, 3, report.TotalItems)
	assert.Equal(t, 1, report.OutOfStock)
	assert.Equal(t, 25.0, report.TotalCost)
	assert.Equal(t, []string{"Milk"}, report.ExpiringToday)
	assert.Equal(t, []string{"Rice"}, report.ExpiringTomorrow)
	assert.Equal(t, []string{"Milk", "Rice"}, report.ShoppingList)
	assert.Equal(t, 13.0, report.ShoppingCost)
	assert.Equal(t, "GBP", report.Currency)
}

func TestDailyDigestArchivesAndFormats(t *testing.T) {
	reports := &recordingReports{err: errors.New("mongo down")}
	svc := newTestService(reports, nil)

	report, text := svc.DailyDigest(context.Background())
	require.Len(t, reports.saved, 1)
	assert.Equal(t, report, reports.saved[0])
	assert.Contains(t, text, "Stock digest 2025-06-10")
	assert.Contains(t, text, "Stock value: £25.00")
	assert.Contains(t, text, "Shopping list: Milk, Rice (about £13.00)")
}

func TestMarkdownIncludesBreakdown(t *testing.T) {
	svc := newTestService(nil, nil)
	md := svc.Markdown(svc.BuildDailyReport())

	assert.Contains(t, md, "# Stock report 2025-06-10")
	assert.Contains(t, md, "| 🟤 Dry | 2 | £20.00 |")
	assert.Contains(t, md, "| 🟢 Fresh | 1 | £5.00 |")
	assert.Contains(t, md, "## Shopping list\n\n- Milk\n- Rice\n")
}

func TestPushHistory(t *testing.T) {
	sheet := &recordingSheet{}
	svc := newTestService(nil, sheet)

	n, err := svc.PushHistory(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, []string{historyRange}, sheet.cleared)
	assert.Equal(t, [][]interface{}{
		{"Time", "Item", "Action"},
		{"2025-06-10 06:00:00", "Milk", "added"},
	}, sheet.written)
}

func TestPushHistoryDisabled(t *testing.T) {
	_, err := newTestService(nil, nil).PushHistory(context.Background())
	assert.ErrorIs(t, err, ErrSheetsDisabled)
}
