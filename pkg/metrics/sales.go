package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// SaleMetrics records finalization outcomes and sequence contention.
type SaleMetrics struct {
	finalizeDuration    *prometheus.HistogramVec
	finalized           *prometheus.CounterVec
	insufficientStock   prometheus.Counter
	allocationConflicts *prometheus.CounterVec
}

// NewSaleMetrics registers the sale metrics on the provided registerer.
func NewSaleMetrics(reg prometheus.Registerer) *SaleMetrics {
	if reg == nil {
		return &SaleMetrics{}
	}
	finalizeDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "sale_finalize_duration_seconds",
		Help:    "Duration of sale finalization transactions in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"outcome"})
	finalized := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "sales_finalized_total",
		Help: "Finalized sales by payment method.",
	}, []string{"payment_method"})
	insufficientStock := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "sales_insufficient_stock_total",
		Help: "Sales rejected because stock would have gone negative.",
	})
	allocationConflicts := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "sequence_allocation_conflicts_total",
		Help: "Lost sequence allocation races, counted per retry attempt.",
	}, []string{"sequence"})
	reg.MustRegister(finalizeDuration, finalized, insufficientStock, allocationConflicts)
	return &SaleMetrics{
		finalizeDuration:    finalizeDuration,
		finalized:           finalized,
		insufficientStock:   insufficientStock,
		allocationConflicts: allocationConflicts,
	}
}

// ObserveFinalizeDuration records how long a finalization attempt took.
func (s *SaleMetrics) ObserveFinalizeDuration(outcome string, duration time.Duration) {
	if s == nil || s.finalizeDuration == nil {
		return
	}
	s.finalizeDuration.WithLabelValues(normalizeLabel(outcome)).Observe(duration.Seconds())
}

// IncFinalized increments the finalized sale counter for the payment method.
func (s *SaleMetrics) IncFinalized(paymentMethod string) {
	if s == nil || s.finalized == nil {
		return
	}
	s.finalized.WithLabelValues(normalizeLabel(paymentMethod)).Inc()
}

// IncInsufficientStock increments the insufficient stock rejection counter.
func (s *SaleMetrics) IncInsufficientStock() {
	if s == nil || s.insufficientStock == nil {
		return
	}
	s.insufficientStock.Inc()
}

// IncAllocationConflict increments the lost-race counter for the named sequence.
func (s *SaleMetrics) IncAllocationConflict(sequence string) {
	if s == nil || s.allocationConflicts == nil {
		return
	}
	s.allocationConflicts.WithLabelValues(normalizeLabel(sequence)).Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
