package metrics_test

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/vnykmshr/opflow/pkg/metrics"
)

// Example_customRegistry shows how to isolate opflow metrics in a dedicated
// Prometheus registry.
func Example_customRegistry() {
	promRegistry := prometheus.NewRegistry()
	registry := metrics.NewRegistry(promRegistry)

	registry.OperationsSubmitted.WithLabelValues("ingest").Add(3)
	registry.OperationsFinished.WithLabelValues("ingest").Add(2)

	families, err := promRegistry.Gather()
	if err != nil {
		fmt.Println("gather failed:", err)
		return
	}

	for _, mf := range families {
		if mf.GetName() == "opflow_queue_operations_submitted_total" {
			fmt.Printf("%s = %v\n", mf.GetName(), mf.GetMetric()[0].GetCounter().GetValue())
		}
	}

	// Output: opflow_queue_operations_submitted_total = 3
}
