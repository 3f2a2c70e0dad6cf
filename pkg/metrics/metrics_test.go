package metrics

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	// Link the packages that register the documented metrics. A name
	// collision between them would panic here at init.
	_ "github.com/Godevs04/taatom-admin-console/pkg/cache"
	_ "github.com/Godevs04/taatom-admin-console/pkg/client"
	_ "github.com/Godevs04/taatom-admin-console/pkg/coordinator"
	_ "github.com/Godevs04/taatom-admin-console/pkg/mutation"
)

func TestRegistry(t *testing.T) {
	if Registry == nil {
		t.Fatal("Registry should not be nil")
	}

	if Registry != prometheus.DefaultRegisterer {
		t.Error("Registry should be the default Prometheus registerer")
	}
}

func TestEngineCountersRegistered(t *testing.T) {
	families, err := prometheus.DefaultGatherer.Gather()
	if err != nil {
		t.Fatalf("Gather() error = %v", err)
	}

	found := make(map[string]bool)
	for _, family := range families {
		if strings.HasPrefix(family.GetName(), "console_") {
			found[family.GetName()] = true
		}
	}

	// Labeled vectors stay invisible until their first child is created,
	// so only the plain counters can be asserted here.
	plain := []string{
		"console_cache_misses_total",
		"console_304_responses_total",
		"console_conditional_requests_total",
		"console_cache_invalidations_total",
	}
	for _, name := range plain {
		if !found[name] {
			t.Errorf("metric %s not registered", name)
		}
	}
}
