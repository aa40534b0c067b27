package bootstrap

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port       int
	Model      string
	Device     string
	MaxMemory  float64
	TorchDtype string

	RuntimeAddr    string
	RuntimeTimeout time.Duration

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	CacheTTL      time.Duration

	DatabaseDSN string

	FrameMaxDim int
	FFmpegPath  string
	FFprobePath string

	LogLevel string
}

var validDtypes = map[string]bool{
	"float32":  true,
	"float16":  true,
	"bfloat16": true,
}

// ParseConfig reads the CLI flag surface and fills the rest from the
// environment.
func ParseConfig(args []string) (*Config, error) {
	fs := flag.NewFlagSet("inference-server", flag.ContinueOnError)

	cfg := &Config{}
	fs.IntVar(&cfg.Port, "port", 8000, "listen port")
	fs.StringVar(&cfg.Model, "model", "", "model identifier (required)")
	fs.StringVar(&cfg.Device, "device", "cuda", "device map for the runtime")
	fs.Float64Var(&cfg.MaxMemory, "max-memory", 0.9, "device memory fraction")
	fs.StringVar(&cfg.TorchDtype, "torch-dtype", "bfloat16", "float32, float16 or bfloat16")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if cfg.Model == "" {
		return nil, fmt.Errorf("--model is required")
	}
	if !validDtypes[cfg.TorchDtype] {
		return nil, fmt.Errorf("invalid --torch-dtype %q", cfg.TorchDtype)
	}

	cfg.RuntimeAddr = getEnv("RUNTIME_ADDR", "http://localhost:9000")
	cfg.RuntimeTimeout = getEnvDuration("RUNTIME_TIMEOUT", 5*time.Minute)

	cfg.RedisAddr = getEnv("REDIS_ADDR", "")
	cfg.RedisPassword = getEnv("REDIS_PASSWORD", "")
	cfg.RedisDB = getEnvInt("REDIS_DB", 0)
	cfg.CacheTTL = getEnvDuration("CACHE_TTL", 0)

	cfg.DatabaseDSN = getEnv("DATABASE_DSN", "")

	cfg.FrameMaxDim = getEnvInt("FRAME_MAX_DIM", 0)
	cfg.FFmpegPath = getEnv("FFMPEG_PATH", "")
	cfg.FFprobePath = getEnv("FFPROBE_PATH", "")

	cfg.LogLevel = getEnv("LOG_LEVEL", "info")

	return cfg, nil
}

func (c *Config) ServerAddr() string {
	return fmt.Sprintf(":%d", c.Port)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
