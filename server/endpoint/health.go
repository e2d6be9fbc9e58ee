package endpoint

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/chaincounter/observability"
	"github.com/kbukum/chaincounter/version"
)

// HealthChecker returns health status for registered components.
type HealthChecker func(ctx context.Context) []observability.Health

func collect(ctx context.Context, serviceName string, checker HealthChecker) *observability.ServiceHealth {
	sh := observability.NewServiceHealth(serviceName, version.Short())
	if checker != nil {
		for _, h := range checker(ctx) {
			sh.AddComponent(h)
		}
	}
	return sh
}

// Health reports the aggregated service health. A down component turns the
// response into a 503.
func Health(serviceName string, checker HealthChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		sh := collect(c.Request.Context(), serviceName, checker)
		status := http.StatusOK
		if sh.Status == observability.HealthStatusDown {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, sh)
	}
}
