package device

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus counters shared by device implementations. Registered on the
// default registry; a host application exposes them with promhttp.
var (
	// BatchesExecuted counts device batch submissions.
	BatchesExecuted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "varq_device_batches_total",
		Help: "Total number of tape batches submitted to a device",
	})

	// CircuitsExecuted counts individual tape executions.
	CircuitsExecuted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "varq_device_circuits_total",
		Help: "Total number of individual tapes executed",
	})

	// JacobiansComputed counts device-native Jacobian computations.
	JacobiansComputed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "varq_device_jacobians_total",
		Help: "Total number of Jacobians computed by device-native gradient procedures",
	})
)
