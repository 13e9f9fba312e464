package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	CyclesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "cycles_total", Help: "Decision cycles run, by result"},
		[]string{"result"},
	)
	TicksDroppedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "ticks_dropped_total", Help: "Scheduled ticks dropped because a cycle was still running"},
	)
	SymbolsEvaluatedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "symbols_evaluated_total", Help: "Candidate symbols evaluated for entry"},
	)
	SignalsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "signals_total", Help: "Buy and sell signals produced"},
		[]string{"side"},
	)
	SkipsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "skips_total", Help: "Symbols or orders skipped, by reason"},
		[]string{"reason"},
	)
	OrdersTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "orders_total", Help: "Order outcomes"},
		[]string{"side", "result"},
	)
	CycleDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "cycle_duration_seconds",
			Help:    "Wall time of a full decision cycle",
			Buckets: prometheus.ExponentialBuckets(1, 2, 10),
		},
	)
)

func init() {
	prometheus.MustRegister(CyclesTotal, TicksDroppedTotal, SymbolsEvaluatedTotal, SignalsTotal, SkipsTotal, OrdersTotal, CycleDuration)
}

func Handler() http.Handler {
	return promhttp.Handler()
}
