package util

import (
	"fmt"
	"strings"
	"time"

	"github.com/Netflix/go-env"
	"github.com/joho/godotenv"
	"github.com/samber/lo"
)

type Config struct {
	Port            int           `env:"PORT,default=5000" validate:"min=1,max=65535"`
	AllowedOrigins  string        `env:"ALLOWED_ORIGINS,default=http://localhost:5173"`
	JWTSecret       string        `env:"JWT_SECRET" validate:"required,min=16"`
	TokenTTL        time.Duration `env:"TOKEN_TTL,default=720h" validate:"gt=0"`
	ClockBudget     time.Duration `env:"CLOCK_BUDGET,default=10m" validate:"gt=0"`
	DisconnectGrace time.Duration `env:"DISCONNECT_GRACE,default=60s" validate:"gte=0"`
	RoomIDLength    int           `env:"ROOM_ID_LENGTH,default=5" validate:"min=4,max=16"`
	LogLevel        string        `env:"LOG_LEVEL,default=INFO" validate:"oneof=DEBUG INFO WARN ERROR"`
	RedisAddress    string        `env:"REDIS_ADDR" validate:"omitempty,hostname_port"`
	RedisPassword   string        `env:"REDIS_PASSWORD"`
	ArchiveTTL      time.Duration `env:"ARCHIVE_TTL,default=12h" validate:"gt=0"`
}

// Origins splits ALLOWED_ORIGINS into its non-empty entries.
func (c *Config) Origins() []string {
	parts := lo.Map(strings.Split(c.AllowedOrigins, ","), func(s string, _ int) string {
		return strings.TrimSpace(s)
	})
	return lo.Compact(parts)
}

func (c *Config) ArchiveEnabled() bool {
	return c.RedisAddress != ""
}

func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	config := &Config{}
	if _, err := env.UnmarshalFromEnviron(config); err != nil {
		return nil, fmt.Errorf("reading environment: %w", err)
	}
	config.LogLevel = strings.ToUpper(config.LogLevel)

	if err := Validate.Struct(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}
