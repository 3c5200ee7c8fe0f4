package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNewWithRegistererRegistersMetrics(t *testing.T) {
	registry := prometheus.NewRegistry()

	m := NewWithRegisterer(registry)

	if m.ClosuresDeclared == nil || m.HTTPRequests == nil || m.LedgerReadDuration == nil {
		t.Fatalf("expected key metrics to be initialized: %+v", m)
	}

	m.ClosuresDeclared.WithLabelValues("MATCH").Inc()
	m.ClosureReplays.WithLabelValues("natural_key").Add(2)

	metricFamilies, err := registry.Gather()
	if err != nil {
		t.Fatalf("failed to gather metrics: %v", err)
	}

	if len(metricFamilies) == 0 {
		t.Fatalf("expected registered metrics, got none")
	}

	if got := testutil.ToFloat64(m.ClosureReplays.WithLabelValues("natural_key")); got != 2 {
		t.Fatalf("expected 2 natural key replays, got %v", got)
	}
}

func TestNewWithRegistererIsolated(t *testing.T) {
	// Two registries must not collide on metric names.
	NewWithRegisterer(prometheus.NewRegistry())
	NewWithRegisterer(prometheus.NewRegistry())
}
