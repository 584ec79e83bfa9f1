package util

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	InitValidator()
	os.Exit(m.Run())
}

func TestLoadConfig_Defaults(t *testing.T) {
	req := require.New(t)
	t.Setenv("JWT_SECRET", "a-very-long-test-secret")
	t.Setenv("REDIS_ADDR", "")

	config, err := LoadConfig()
	req.NoError(err)

	req.Equal(5000, config.Port)
	req.Equal([]string{"http://localhost:5173"}, config.Origins())
	req.Equal(10*time.Minute, config.ClockBudget)
	req.Equal(60*time.Second, config.DisconnectGrace)
	req.Equal(5, config.RoomIDLength)
	req.Equal("INFO", config.LogLevel)
	req.False(config.ArchiveEnabled())
}

func TestLoadConfig_Overrides(t *testing.T) {
	req := require.New(t)
	t.Setenv("JWT_SECRET", "a-very-long-test-secret")
	t.Setenv("ALLOWED_ORIGINS", "http://a.test, ,http://b.test")
	t.Setenv("CLOCK_BUDGET", "3m")
	t.Setenv("DISCONNECT_GRACE", "0s")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("REDIS_ADDR", "localhost:6379")

	config, err := LoadConfig()
	req.NoError(err)

	req.Equal([]string{"http://a.test", "http://b.test"}, config.Origins())
	req.Equal(3*time.Minute, config.ClockBudget)
	req.Equal(time.Duration(0), config.DisconnectGrace)
	req.Equal("DEBUG", config.LogLevel)
	req.True(config.ArchiveEnabled())
}

func TestLoadConfig_Invalid(t *testing.T) {
	t.Run("missing secret", func(t *testing.T) {
		t.Setenv("JWT_SECRET", "")
		_, err := LoadConfig()
		require.Error(t, err)
	})

	t.Run("short room ids", func(t *testing.T) {
		t.Setenv("JWT_SECRET", "a-very-long-test-secret")
		t.Setenv("ROOM_ID_LENGTH", "2")
		_, err := LoadConfig()
		require.Error(t, err)
	})
}
