package metrics

import (
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
)

// Skip reasons for store_skipped_lines_total.
const (
	ReasonUnknownProduct  = "unknown_product"
	ReasonExpired         = "expired"
	ReasonInvalidQuantity = "invalid_quantity"
)

// Metrics keeps the sales counters on its own registry so a process can dump them
// without exposing an HTTP endpoint.
type Metrics struct {
	registry *prometheus.Registry

	SalesTotal        prometheus.Counter
	SaleFailuresTotal prometheus.Counter
	SoldUnitsTotal    *prometheus.CounterVec
	RevenueTotal      prometheus.Counter
	SkippedLinesTotal *prometheus.CounterVec
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		SalesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "store_sales_total",
			Help: "Completed sales (issued receipts)",
		}),
		SaleFailuresTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "store_sale_failures_total",
			Help: "Sales aborted because of a stock shortage or a write error",
		}),
		SoldUnitsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "store_sold_units_total",
				Help: "Units sold per category",
			},
			[]string{"category"},
		),
		RevenueTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "store_revenue_total",
			Help: "Sum of receipt totals",
		}),
		SkippedLinesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "store_skipped_lines_total",
				Help: "Requested sale lines dropped without an error",
			},
			[]string{"reason"},
		),
	}
	m.registry.MustRegister(m.SalesTotal, m.SaleFailuresTotal, m.SoldUnitsTotal, m.RevenueTotal, m.SkippedLinesTotal)
	return m
}

// ObserveSale records one issued receipt.
func (m *Metrics) ObserveSale(total decimal.Decimal, unitsByCategory map[string]int) {
	m.SalesTotal.Inc()
	m.RevenueTotal.Add(total.InexactFloat64())
	for category, units := range unitsByCategory {
		m.SoldUnitsTotal.WithLabelValues(category).Add(float64(units))
	}
}

func (m *Metrics) ObserveSkip(reason string) {
	m.SkippedLinesTotal.WithLabelValues(reason).Inc()
}

func (m *Metrics) ObserveFailure() {
	m.SaleFailuresTotal.Inc()
}

// WriteTextfile dumps every metric in the Prometheus text format, ready for the
// node_exporter textfile collector.
func (m *Metrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return errors.Wrapf(err, "write metrics to %s", path)
	}
	return nil
}
