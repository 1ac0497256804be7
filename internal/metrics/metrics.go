// Package metrics exposes inventory gauges and mutation counters to Prometheus.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mamadbah2/stocktake/internal/domain/models"
	"github.com/mamadbah2/stocktake/internal/service/query"
)

// Collector refreshes its gauges from every inventory change it is told about.
// Snapshots older than the last one applied are ignored.
type Collector struct {
	mu      sync.Mutex
	lastSeq uint64

	registry   *prometheus.Registry
	items      prometheus.Gauge
	stockValue prometheus.Gauge
	levels     *prometheus.GaugeVec
	shopping   prometheus.Gauge
	mutations  *prometheus.CounterVec
}

// NewCollector registers the stock metrics on a private registry.
func NewCollector() *Collector {
	registry := prometheus.NewRegistry()

	c := &Collector{
		registry: registry,
		items: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "stock_items",
			Help: "Number of items in the inventory",
		}),
		stockValue: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "stock_value",
			Help: "Summed line cost of the inventory",
		}),
		levels: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "stock_items_by_level",
			Help: "Number of items per stock level",
		}, []string{"level"}),
		shopping: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "stock_shopping_list_items",
			Help: "Number of items at or below their reorder point",
		}),
		mutations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "stock_mutations_total",
			Help: "Inventory mutations by kind and role",
		}, []string{"kind", "role"}),
	}

	registry.MustRegister(c.items, c.stockValue, c.levels, c.shopping, c.mutations)
	for _, level := range models.Levels {
		c.levels.WithLabelValues(string(level)).Set(0)
	}
	return c
}

// Observe refreshes the gauges from a snapshot of the inventory.
func (c *Collector) Observe(items []models.Item) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.observe(items)
}

func (c *Collector) observe(items []models.Item) {
	c.items.Set(float64(len(items)))
	value, _ := query.TotalCost(items).Float64()
	c.stockValue.Set(value)
	c.shopping.Set(float64(len(query.ShoppingList(items))))

	counts := make(map[models.StockLevel]int, len(models.Levels))
	for _, item := range items {
		counts[item.Level]++
	}
	for _, level := range models.Levels {
		c.levels.WithLabelValues(string(level)).Set(float64(counts[level]))
	}
}

// InventoryChanged counts the mutation and refreshes the gauges unless a later
// mutation has already been observed.
func (c *Collector) InventoryChanged(ev models.ChangeEvent, items []models.Item) {
	c.mutations.WithLabelValues(string(ev.Kind), string(ev.By)).Inc()

	c.mu.Lock()
	defer c.mu.Unlock()
	if ev.Seq != 0 {
		if ev.Seq <= c.lastSeq {
			return
		}
		c.lastSeq = ev.Seq
	}
	c.observe(items)
}

// Registry exposes the underlying registry.
func (c *Collector) Registry() *prometheus.Registry { return c.registry }

// Handler serves the registry in the Prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}
