package metrics

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestCountersExported(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.CartOp("add_item", nil)
	m.CartOp("add_item", nil)
	m.CartOp("add_item", errors.New("boom"))
	m.CartMerged("sum")
	m.CartSelfHealed()
	m.WishlistToggled(true)
	m.WishlistToggled(false)
	m.ObserveHTTP("GET", "/me/cart", 200, 20*time.Millisecond)

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}

	checks := []struct {
		name   string
		labels map[string]string
		want   float64
	}{
		{"cart_operations_total", map[string]string{"op": "add_item", "outcome": "ok"}, 2},
		{"cart_operations_total", map[string]string{"op": "add_item", "outcome": "error"}, 1},
		{"cart_merges_total", map[string]string{"strategy": "sum"}, 1},
		{"cart_self_heals_total", nil, 1},
		{"wishlist_toggles_total", map[string]string{"state": "added"}, 1},
		{"wishlist_toggles_total", map[string]string{"state": "removed"}, 1},
	}
	for _, c := range checks {
		got, err := counterValue(mfs, c.name, c.labels)
		if err != nil {
			t.Fatalf("%s: %v", c.name, err)
		}
		if got != c.want {
			t.Fatalf("%s%v = %v, want %v", c.name, c.labels, got, c.want)
		}
	}

	mf := findFamily(mfs, "http_request_duration_seconds")
	if mf == nil || len(mf.GetMetric()) != 1 {
		t.Fatalf("expected one latency series, got %v", mf)
	}
	if mf.GetMetric()[0].GetHistogram().GetSampleCount() != 1 {
		t.Fatalf("expected one observation")
	}
}

func TestNilMetricsAreNoop(t *testing.T) {
	var m *Metrics
	m.CartOp("load", nil)
	m.CartMerged("")
	m.CartSelfHealed()
	m.WishlistToggled(true)
	m.ObserveHTTP("GET", "", 500, time.Second)

	New(nil).CartOp("load", nil)
}

func counterValue(mfs []*dto.MetricFamily, name string, labels map[string]string) (float64, error) {
	mf := findFamily(mfs, name)
	if mf == nil {
		return 0, fmt.Errorf("metric %q not found", name)
	}
	for _, metric := range mf.GetMetric() {
		if matchesLabels(metric.GetLabel(), labels) {
			return metric.GetCounter().GetValue(), nil
		}
	}
	return 0, fmt.Errorf("metric %q missing labels %v", name, labels)
}

func findFamily(mfs []*dto.MetricFamily, name string) *dto.MetricFamily {
	for _, mf := range mfs {
		if mf.GetName() == name {
			return mf
		}
	}
	return nil
}

func matchesLabels(pairs []*dto.LabelPair, want map[string]string) bool {
	matched := 0
	for _, p := range pairs {
		if v, ok := want[p.GetName()]; ok && v == p.GetValue() {
			matched++
		}
	}
	return matched == len(want)
}
