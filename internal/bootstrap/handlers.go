package bootstrap

import (
	"log/slog"
	"os"

	"github.com/eleven-am/inference-server/internal/chat"
	"github.com/eleven-am/inference-server/internal/media"
	"github.com/eleven-am/inference-server/internal/requestlog"
	"github.com/eleven-am/inference-server/internal/runtime"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	echoSwagger "github.com/swaggo/echo-swagger"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func ProvideLogger(cfg *Config) *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.LogLevel),
	}))
}

func ProvideDecoder(cfg *Config, logger *slog.Logger) *media.Decoder {
	return media.NewDecoder(media.Config{
		FFmpegPath:  cfg.FFmpegPath,
		FFprobePath: cfg.FFprobePath,
		MaxDim:      cfg.FrameMaxDim,
	}, logger.With("component", "media"))
}

func ProvideCache(redisClient *redis.Client, cfg *Config) *chat.Cache {
	return chat.NewCache(redisClient, cfg.CacheTTL)
}

func ProvideRequestLogStore(db *gorm.DB, logger *slog.Logger) *requestlog.Store {
	store := requestlog.NewStore(db)
	if err := store.Migrate(); err != nil {
		logger.Error("request log migration failed", "error", err)
		return nil
	}
	return store
}

func ProvideChatHandler(
	model *runtime.Handle,
	decoder *media.Decoder,
	cache *chat.Cache,
	records *requestlog.Store,
	cfg *Config,
	logger *slog.Logger,
) *chat.Handler {
	return chat.NewHandler(model, decoder, cache, records, cfg.FrameMaxDim, logger.With("handler", "chat"))
}

func RegisterRoutes(e *echo.Echo, chatHandler *chat.Handler) {
	chatHandler.RegisterRoutes(e)
	e.GET("/swagger/*", echoSwagger.EchoWrapHandler())
}

var HandlersModule = fx.Options(
	fx.Provide(
		ProvideLogger,
		ProvideDecoder,
		ProvideCache,
		ProvideRequestLogStore,
		ProvideChatHandler,
	),
	fx.Invoke(RegisterRoutes),
)
