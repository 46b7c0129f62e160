package middleware

import (
	"sync"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrors counts Redis command errors by command name.
	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "inkwell_redis_errors_total",
		Help: "Total number of Redis errors by command",
	}, []string{"command"})

	// AuthFailures counts rejected login attempts.
	AuthFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "inkwell_auth_failures_total",
		Help: "Total number of failed login attempts",
	})

	// UploadsRejected counts uploads rejected by the gate, by reason.
	UploadsRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "inkwell_uploads_rejected_total",
		Help: "Total number of uploads rejected by the gate",
	}, []string{"reason"})
)

var (
	promOnce     sync.Once
	promInstance *fiberprometheus.FiberPrometheus
)

// InitMetrics creates the fiberprometheus middleware for the given service
// name. The instance registers collectors in the default registry, so it is
// created once and shared.
func InitMetrics(serviceName string) *fiberprometheus.FiberPrometheus {
	promOnce.Do(func() {
		promInstance = fiberprometheus.New(serviceName)
	})
	return promInstance
}

// MetricsMiddleware returns the request-metrics handler for the given
// fiberprometheus instance.
func MetricsMiddleware(prom *fiberprometheus.FiberPrometheus) fiber.Handler {
	return prom.Middleware
}
