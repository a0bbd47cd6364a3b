package metrics

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	recordsWritten = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "zinc_records_written_total",
		Help: "Committed record writes by record kind and operation.",
	}, []string{"kind", "op"})

	outboundRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "zinc_outbound_rejected_total",
		Help: "Outbound writes rejected for insufficient stock.",
	}, []string{"zinc_type", "dimension"})
)

func RecordWritten(kind, op string) {
	recordsWritten.WithLabelValues(kind, op).Inc()
}

// RecordsDeleted counts a batch delete as n deletions.
func RecordsDeleted(kind string, n int64) {
	if n > 0 {
		recordsWritten.WithLabelValues(kind, "delete").Add(float64(n))
	}
}

func OutboundRejected(zincType, dimension string) {
	outboundRejected.WithLabelValues(zincType, dimension).Inc()
}

// Handler exposes the default registry on a Fiber route.
func Handler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.Handler())
}
