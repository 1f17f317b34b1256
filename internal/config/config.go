package config

import (
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

type Config struct {
	RedisHost string `env:"REDIS_HOST" envDefault:"localhost"`
	RedisPort uint16 `env:"REDIS_PORT" envDefault:"6379"   validate:"min=1000,max=65535"`

	// Shared secret the controller must present on join.
	AppPasskey string `env:"APP_PASSKEY" validate:"required"`

	// Every per-room key is written with this expiry horizon; TTL is the
	// only garbage collector.
	RoomTTL time.Duration `env:"ROOM_TTL" envDefault:"2h" validate:"min=1m"`

	// A controller silent for longer than this may be kicked by a new phone.
	StaleThreshold time.Duration `env:"STALE_THRESHOLD" envDefault:"45s" validate:"min=1s"`

	// Lease lastSeen refreshes are throttled to one store write per interval.
	HeartbeatInterval time.Duration `env:"HEARTBEAT_INTERVAL" envDefault:"30s" validate:"min=1s"`

	// Same throttle for the state TTL touch on controller fetches.
	StateTouchInterval time.Duration `env:"STATE_TOUCH_INTERVAL" envDefault:"60s" validate:"min=1s"`

	// Room code allocation retries before giving up.
	RoomCodeAttempts int `env:"ROOM_CODE_ATTEMPTS" envDefault:"5" validate:"min=1,max=50"`

	HttpServerPort uint16 `env:"HTTP_SERVER_PORT" envDefault:"8090" validate:"min=1000,max=65535"`
}

func LoadConfig() (*Config, error) {
	// Load environment variables from .env file
	err := godotenv.Load(".env")
	if err != nil {
		zap.L().Debug(".env file not found", zap.Error(err))
	}

	cfg := &Config{}
	// Parse config from environment variables
	if err = env.Parse(cfg); err != nil {
		zap.L().Error("config_load_failed", zap.Error(err))
		return nil, err
	}

	// Validate the config
	validate := validator.New()
	err = validate.Struct(cfg)
	if err != nil {
		zap.L().Error("config_validation_failed", zap.Error(err))
		return nil, err
	}
	return cfg, nil
}
