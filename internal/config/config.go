package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config 服务端配置
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Redis    RedisConfig    `yaml:"redis"`
	Postgres PostgresConfig `yaml:"postgres"`
	Lobby    LobbyConfig    `yaml:"lobby"`
	Security SecurityConfig `yaml:"security"`
}

// ServerConfig WebSocket/HTTP 服务器配置
type ServerConfig struct {
	Host           string `yaml:"host"`
	Port           int    `yaml:"port"`
	MaxConnections int    `yaml:"max_connections"`
}

// RedisConfig Redis 配置
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// PostgresConfig 游戏记录存储配置，DSN 为空时使用内存存储
type PostgresConfig struct {
	DSN string `yaml:"dsn"`
}

// LobbyConfig 大厅配置
type LobbyConfig struct {
	RoomTimeout    int `yaml:"room_timeout"`    // 空闲大厅回收超时（分钟）
	PresenceTTL    int `yaml:"presence_ttl"`    // 在线状态 TTL（秒）
	PresenceSweep  int `yaml:"presence_sweep"`  // 死连接扫描间隔（秒）
	MaxChatLength  int `yaml:"max_chat_length"` // 聊天消息长度上限（字符）
	ShutdownDelay  int `yaml:"shutdown_delay"`  // 关闭前等待（秒）
}

// SecurityConfig 安全配置
type SecurityConfig struct {
	AllowedOrigins []string          `yaml:"allowed_origins"`
	RateLimit      RateLimitConfig   `yaml:"rate_limit"`
	MessageLimit   MessageRateConfig `yaml:"message_limit"`
	ChatLimit      ChatLimitConfig   `yaml:"chat_limit"`
}

// RateLimitConfig 连接速率限制
type RateLimitConfig struct {
	MaxPerSecond int `yaml:"max_per_second"`
	MaxPerMinute int `yaml:"max_per_minute"`
	BanDuration  int `yaml:"ban_duration"` // 秒
}

// MessageRateConfig 消息速率限制
type MessageRateConfig struct {
	MaxPerSecond int `yaml:"max_per_second"`
}

// ChatLimitConfig 聊天速率限制
type ChatLimitConfig struct {
	MaxPerSecond int `yaml:"max_per_second"`
	MaxPerMinute int `yaml:"max_per_minute"`
	Cooldown     int `yaml:"cooldown"` // 秒
}

// RoomTimeoutDuration 返回空闲大厅回收超时时长
func (c *LobbyConfig) RoomTimeoutDuration() time.Duration {
	return time.Duration(c.RoomTimeout) * time.Minute
}

// PresenceTTLDuration 返回在线状态 TTL 时长
func (c *LobbyConfig) PresenceTTLDuration() time.Duration {
	return time.Duration(c.PresenceTTL) * time.Second
}

// PresenceSweepDuration 返回死连接扫描间隔
func (c *LobbyConfig) PresenceSweepDuration() time.Duration {
	return time.Duration(c.PresenceSweep) * time.Second
}

// ShutdownDelayDuration 返回关闭前等待时长
func (c *LobbyConfig) ShutdownDelayDuration() time.Duration {
	return time.Duration(c.ShutdownDelay) * time.Second
}

// BanDurationTime 返回封禁时长
func (c *RateLimitConfig) BanDurationTime() time.Duration {
	return time.Duration(c.BanDuration) * time.Second
}

// CooldownDuration 返回聊天冷却时长
func (c *ChatLimitConfig) CooldownDuration() time.Duration {
	return time.Duration(c.Cooldown) * time.Second
}

// Load 加载配置文件
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	cfg.applyDefaults()
	return &cfg, nil
}

// Default 返回默认配置
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// applyDefaults 填充默认值
func (cfg *Config) applyDefaults() {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "0.0.0.0"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8017
	}
	if cfg.Server.MaxConnections == 0 {
		cfg.Server.MaxConnections = 2000
	}
	if cfg.Redis.Addr == "" {
		cfg.Redis.Addr = "localhost:6379"
	}
	if cfg.Lobby.RoomTimeout == 0 {
		cfg.Lobby.RoomTimeout = 30
	}
	if cfg.Lobby.PresenceTTL == 0 {
		cfg.Lobby.PresenceTTL = 90
	}
	if cfg.Lobby.PresenceSweep == 0 {
		cfg.Lobby.PresenceSweep = 15
	}
	if cfg.Lobby.MaxChatLength == 0 {
		cfg.Lobby.MaxChatLength = 500
	}
	if cfg.Lobby.ShutdownDelay == 0 {
		cfg.Lobby.ShutdownDelay = 3
	}
	if len(cfg.Security.AllowedOrigins) == 0 {
		cfg.Security.AllowedOrigins = []string{"*"}
	}
	if cfg.Security.RateLimit.MaxPerSecond == 0 {
		cfg.Security.RateLimit.MaxPerSecond = 10
	}
	if cfg.Security.RateLimit.MaxPerMinute == 0 {
		cfg.Security.RateLimit.MaxPerMinute = 60
	}
	if cfg.Security.RateLimit.BanDuration == 0 {
		cfg.Security.RateLimit.BanDuration = 60
	}
	if cfg.Security.MessageLimit.MaxPerSecond == 0 {
		cfg.Security.MessageLimit.MaxPerSecond = 30
	}
	if cfg.Security.ChatLimit.MaxPerSecond == 0 {
		cfg.Security.ChatLimit.MaxPerSecond = 2
	}
	if cfg.Security.ChatLimit.MaxPerMinute == 0 {
		cfg.Security.ChatLimit.MaxPerMinute = 40
	}
	if cfg.Security.ChatLimit.Cooldown == 0 {
		cfg.Security.ChatLimit.Cooldown = 10
	}
}
