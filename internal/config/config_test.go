package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	t.Parallel()

	cfg := Default()

	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, 8017, cfg.Server.Port)
	assert.Equal(t, 2000, cfg.Server.MaxConnections)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Empty(t, cfg.Postgres.DSN)
	assert.Equal(t, 30*time.Minute, cfg.Lobby.RoomTimeoutDuration())
	assert.Equal(t, 90*time.Second, cfg.Lobby.PresenceTTLDuration())
	assert.Equal(t, 15*time.Second, cfg.Lobby.PresenceSweepDuration())
	assert.Equal(t, 500, cfg.Lobby.MaxChatLength)
	assert.Equal(t, []string{"*"}, cfg.Security.AllowedOrigins)
	assert.Equal(t, 60*time.Second, cfg.Security.RateLimit.BanDurationTime())
	assert.Equal(t, 10*time.Second, cfg.Security.ChatLimit.CooldownDuration())
}

func TestLoad(t *testing.T) {
	t.Parallel()

	content := `
server:
  host: "127.0.0.1"
  port: 9000
redis:
  addr: "redis:6379"
  db: 2
postgres:
  dsn: "postgres://lobby:lobby@db/lobby?sslmode=disable"
lobby:
  room_timeout: 10
  max_chat_length: 200
security:
  allowed_origins:
    - "https://example.com"
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1", cfg.Server.Host)
	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, "redis:6379", cfg.Redis.Addr)
	assert.Equal(t, 2, cfg.Redis.DB)
	assert.Contains(t, cfg.Postgres.DSN, "postgres://")
	assert.Equal(t, 10*time.Minute, cfg.Lobby.RoomTimeoutDuration())
	assert.Equal(t, 200, cfg.Lobby.MaxChatLength)
	assert.Equal(t, []string{"https://example.com"}, cfg.Security.AllowedOrigins)

	// Unset fields still get defaults
	assert.Equal(t, 2000, cfg.Server.MaxConnections)
	assert.Equal(t, 90, cfg.Lobby.PresenceTTL)
}

func TestLoad_MissingFile(t *testing.T) {
	t.Parallel()

	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoad_InvalidYAML(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: [not a map"), 0o600))

	_, err := Load(path)
	assert.Error(t, err)
}
