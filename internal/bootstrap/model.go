package bootstrap

import (
	"context"
	"log/slog"
	"time"

	"github.com/eleven-am/inference-server/internal/runtime"
	"go.uber.org/fx"
)

// Model weights can take a while to land on the device.
const modelLoadTimeout = 15 * time.Minute

// ProvideModelHandle performs the one-time model load before the server
// starts accepting traffic. A failed load aborts startup.
func ProvideModelHandle(client *runtime.Client, cfg *Config, logger *slog.Logger) (*runtime.Handle, error) {
	ctx, cancel := context.WithTimeout(context.Background(), modelLoadTimeout)
	defer cancel()

	logger.Info("loading model", "model", cfg.Model, "device", cfg.Device, "torch_dtype", cfg.TorchDtype)
	start := time.Now()

	handle, err := runtime.LoadHandle(ctx, client, runtime.LoadRequest{
		Model:             cfg.Model,
		TorchDtype:        cfg.TorchDtype,
		Device:            cfg.Device,
		MaxMemoryFraction: cfg.MaxMemory,
	})
	if err != nil {
		return nil, err
	}

	logger.Info("model loaded", "model", cfg.Model, "took", time.Since(start).Round(time.Millisecond))
	return handle, nil
}

var ModelModule = fx.Options(
	fx.Provide(ProvideModelHandle),
)
