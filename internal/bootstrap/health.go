package bootstrap

import (
	"github.com/eleven-am/inference-server/internal/health"
	"github.com/eleven-am/inference-server/internal/requestlog"
	"github.com/eleven-am/inference-server/internal/runtime"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

const version = "1.0.0"

func ProvideHealthHandler(
	model *runtime.Handle,
	redisClient *redis.Client,
	db *gorm.DB,
	records *requestlog.Store,
) *health.Handler {
	return health.NewHandler(model, redisClient, db, records, version)
}

func metricsMiddleware(h *health.Handler) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			h.IncrementRequests()
			h.IncrementInFlight()
			defer h.DecrementInFlight()
			return next(c)
		}
	}
}

func RegisterHealthRoutes(e *echo.Echo, h *health.Handler) {
	e.Use(metricsMiddleware(h))
	h.RegisterRoutes(e)
}

var HealthModule = fx.Options(
	fx.Provide(ProvideHealthHandler),
	fx.Invoke(RegisterHealthRoutes),
)
