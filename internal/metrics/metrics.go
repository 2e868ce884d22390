package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the service counters. A nil *Metrics is valid and records nothing.
type Metrics struct {
	cartOps         *prometheus.CounterVec
	cartMerges      *prometheus.CounterVec
	cartSelfHeals   prometheus.Counter
	wishlistToggles *prometheus.CounterVec
	httpDuration    *prometheus.HistogramVec
}

// New registers the service metrics on reg. A nil registerer yields a no-op collector.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		return &Metrics{}
	}
	m := &Metrics{
		cartOps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cart_operations_total",
			Help: "Cart operations by name and outcome.",
		}, []string{"op", "outcome"}),
		cartMerges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cart_merges_total",
			Help: "Guest carts merged into customer carts.",
		}, []string{"strategy"}),
		cartSelfHeals: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "cart_self_heals_total",
			Help: "Cart writes that failed and were replaced by the durable copy.",
		}),
		wishlistToggles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "wishlist_toggles_total",
			Help: "Wishlist toggles by resulting state.",
		}, []string{"state"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
	}
	reg.MustRegister(m.cartOps, m.cartMerges, m.cartSelfHeals, m.wishlistToggles, m.httpDuration)
	return m
}

func (m *Metrics) CartOp(op string, err error) {
	if m == nil || m.cartOps == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.cartOps.WithLabelValues(normalizeLabel(op), outcome).Inc()
}

func (m *Metrics) CartMerged(strategy string) {
	if m == nil || m.cartMerges == nil {
		return
	}
	m.cartMerges.WithLabelValues(normalizeLabel(strategy)).Inc()
}

func (m *Metrics) CartSelfHealed() {
	if m == nil || m.cartSelfHeals == nil {
		return
	}
	m.cartSelfHeals.Inc()
}

func (m *Metrics) WishlistToggled(liked bool) {
	if m == nil || m.wishlistToggles == nil {
		return
	}
	state := "removed"
	if liked {
		state = "added"
	}
	m.wishlistToggles.WithLabelValues(state).Inc()
}

// ObserveHTTP records one handled request. route is the matched pattern, not the raw path.
func (m *Metrics) ObserveHTTP(method, route string, status int, d time.Duration) {
	if m == nil || m.httpDuration == nil {
		return
	}
	m.httpDuration.WithLabelValues(method, normalizeLabel(route), strconv.Itoa(status)).Observe(d.Seconds())
}

func normalizeLabel(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
