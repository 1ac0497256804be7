package reporting

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/mamadbah2/stocktake/internal/domain/models"
	"github.com/mamadbah2/stocktake/internal/repository/sheets"
	"github.com/mamadbah2/stocktake/internal/service/audit"
	"github.com/mamadbah2/stocktake/internal/service/derivation"
	"github.com/mamadbah2/stocktake/internal/service/query"
)

const (
	dateLayout   = "2006-01-02"
	historyRange = "History!A:C"
)

// ErrSheetsDisabled is returned by PushHistory when no spreadsheet is configured.
var ErrSheetsDisabled = errors.New("google sheets export is not configured")

// InventoryReader is the read side of the inventory store.
type InventoryReader interface {
	Items() []models.Item
	Categories() []models.Category
}

// HistoryReader renders the audit history as rows.
type HistoryReader interface {
	Rows(loc *time.Location) [][]string
}

// ReportRepository archives daily reports.
type ReportRepository interface {
	SaveDailyReport(ctx context.Context, report models.DailyReport) error
}

// Options wires the optional collaborators of a Service.
type Options struct {
	Reports  ReportRepository
	Sheet    sheets.Repository
	Currency string
	Location *time.Location
	Now      func() time.Time
}

// Service builds stock digests and exports the history.
type Service struct {
	inventory InventoryReader
	history   HistoryReader
	reports   ReportRepository
	sheet     sheets.Repository
	currency  string
	loc       *time.Location
	now       func() time.Time
	logger    *zap.Logger
}

// NewService wires a new reporting service instance.
func NewService(inventory InventoryReader, history HistoryReader, opts Options, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Currency == "" {
		opts.Currency = "GBP"
	}
	return &Service{
		inventory: inventory,
		history:   history,
		reports:   opts.Reports,
		sheet:     opts.Sheet,
		currency:  opts.Currency,
		loc:       opts.Location,
		now:       opts.Now,
		logger:    logger,
	}
}

// Currency returns the display currency code.
func (s *Service) Currency() string { return s.currency }

// Money formats amount in the service currency.
func (s *Service) Money(amount decimal.Decimal) string {
	return FormatMoney(amount, s.currency)
}

// BuildDailyReport summarizes the current inventory. ShoppingCost estimates
// reordering one case of every shopping-list item.
func (s *Service) BuildDailyReport() models.DailyReport {
	now := s.now().In(s.loc)
	items := s.inventory.Items()
	summary := query.Summarize(items, now)
	shopping := query.ShoppingList(items)

	shoppingCost := decimal.Zero
	for _, item := range shopping {
		shoppingCost = shoppingCost.Add(decimal.NewFromFloat(item.CaseCost))
	}
	totalCost, _ := summary.TotalCost.Round(2).Float64()
	restock, _ := shoppingCost.Round(2).Float64()

	return models.DailyReport{
		Date:             derivation.StartOfDay(now),
		TotalItems:       summary.TotalItems,
		TotalCost:        totalCost,
		OutOfStock:       summary.OutOfStock,
		ExpiringToday:    names(query.ByExpiry(items, models.ExpiryToday, now)),
		ExpiringTomorrow: names(query.ByExpiry(items, models.ExpiryTomorrow, now)),
		ShoppingList:     names(shopping),
		ShoppingCost:     restock,
		Currency:         s.currency,
		CreatedAt:        now,
	}
}

// FormatDigest renders report as a chat message.
func (s *Service) FormatDigest(report models.DailyReport) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Stock digest %s\n", report.Date.Format(dateLayout))
	fmt.Fprintf(&b, "Items: %d (out of stock: %d)\n", report.TotalItems, report.OutOfStock)
	fmt.Fprintf(&b, "Stock value: %s\n", s.Money(decimal.NewFromFloat(report.TotalCost)))
	fmt.Fprintf(&b, "Expiring today: %s\n", listOrNone(report.ExpiringToday))
	fmt.Fprintf(&b, "Expiring tomorrow: %s\n", listOrNone(report.ExpiringTomorrow))
	fmt.Fprintf(&b, "Shopping list: %s", listOrNone(report.ShoppingList))
	if len(report.ShoppingList) > 0 {
		fmt.Fprintf(&b, " (about %s)", s.Money(decimal.NewFromFloat(report.ShoppingCost)))
	}
	return b.String()
}

// Markdown renders report and the per-category breakdown for terminals.
func (s *Service) Markdown(report models.DailyReport) string {
	breakdown := query.CategoryBreakdown(s.inventory.Items(), s.inventory.Categories())

	var b strings.Builder
	fmt.Fprintf(&b, "# Stock report %s\n\n", report.Date.Format(dateLayout))
	fmt.Fprintf(&b, "- **Items:** %d\n", report.TotalItems)
	fmt.Fprintf(&b, "- **Out of stock:** %d\n", report.OutOfStock)
	fmt.Fprintf(&b, "- **Stock value:** %s\n\n", s.Money(decimal.NewFromFloat(report.TotalCost)))

	b.WriteString("## Categories\n\n| Category | Items | Value |\n|---|---:|---:|\n")
	for _, c := range breakdown {
		label := strings.TrimSpace(c.Category.Emoji + " " + c.Category.Label)
		fmt.Fprintf(&b, "| %s | %d | %s |\n", label, c.Count, s.Money(c.Cost))
	}

	writeSection(&b, "Expiring today", report.ExpiringToday)
	writeSection(&b, "Expiring tomorrow", report.ExpiringTomorrow)
	writeSection(&b, "Shopping list", report.ShoppingList)
	return b.String()
}

// DailyDigest builds today's report, archives it when a repository is
// configured and returns the chat message. Archive failures are logged only.
func (s *Service) DailyDigest(ctx context.Context) (models.DailyReport, string) {
	report := s.BuildDailyReport()
	if s.reports != nil {
		if err := s.reports.SaveDailyReport(ctx, report); err != nil {
			s.logger.Warn("daily report not archived", zap.Error(err))
		}
	}
	return report, s.FormatDigest(report)
}

// PushHistory replaces the History sheet with the retained audit rows.
func (s *Service) PushHistory(ctx context.Context) (int, error) {
	if s.sheet == nil {
		return 0, ErrSheetsDisabled
	}

	rows := s.history.Rows(s.loc)
	values := make([][]interface{}, 0, len(rows)+1)
	values = append(values, toValues(audit.CSVHeader))
	for _, row := range rows {
		values = append(values, toValues(row))
	}

	if err := s.sheet.ClearRange(ctx, historyRange); err != nil {
		return 0, fmt.Errorf("clear history sheet: %w", err)
	}
	if err := s.sheet.WriteRows(ctx, historyRange, values); err != nil {
		return 0, fmt.Errorf("write history sheet: %w", err)
	}

	s.logger.Info("history pushed to sheet", zap.Int("rows", len(rows)))
	return len(rows), nil
}

func names(items []models.Item) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, item.Name)
	}
	sort.Strings(out)
	return out
}

func listOrNone(values []string) string {
	if len(values) == 0 {
		return "none"
	}
	return strings.Join(values, ", ")
}

func writeSection(b *strings.Builder, title string, values []string) {
	fmt.Fprintf(b, "\n## %s\n\n", title)
	if len(values) == 0 {
		b.WriteString("_none_\n")
		return
	}
	for _, v := range values {
		fmt.Fprintf(b, "- %s\n", v)
	}
}

func toValues(row []string) []interface{} {
	out := make([]interface{}, len(row))
	for i, v := range row {
		out[i] = v
	}
	return out
}
