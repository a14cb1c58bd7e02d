package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// Redis key 前缀
	roomKeyPrefix     = "room:"
	presenceKeyPrefix = "presence:"

	// 房间快照过期时间
	roomExpiration = 2 * time.Hour
)

// RoomData 房间快照（用于 Redis 序列化）
type RoomData struct {
	Code        string       `json:"code"`
	Name        string       `json:"name"`
	Language    string       `json:"language"`
	MaxPlayers  int          `json:"max_players"`
	Phase       string       `json:"phase"`
	HasPassword bool         `json:"has_password"`
	Players     []PlayerData `json:"players"`
	PlayerOrder []string     `json:"player_order"`
	CreatedAt   int64        `json:"created_at"`
	StartedAt   int64        `json:"started_at,omitempty"`
}

// PlayerData 玩家快照数据
type PlayerData struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Status        string `json:"status"`
	IsHost        bool   `json:"is_host"`
	IsReady       bool   `json:"is_ready"`
	Ping          int    `json:"ping"`
	Country       string `json:"country,omitempty"`
	CountryFlag   string `json:"country_flag,omitempty"`
	AttackTroops  int    `json:"attack_troops"`
	DefenseTroops int    `json:"defense_troops"`
}

// PresenceData 在线状态行（带 TTL，心跳刷新）
type PresenceData struct {
	PlayerID   string `json:"player_id"`
	PlayerName string `json:"player_name"`
	RoomCode   string `json:"room_code"`
	ConnID     string `json:"conn_id"`
}

// RedisStore Redis 存储
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore 创建 Redis 存储
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

// --- 房间快照 ---

// SaveRoom 保存房间快照到 Redis
func (rs *RedisStore) SaveRoom(ctx context.Context, roomCode string, data *RoomData) error {
	if data == nil {
		return nil
	}

	jsonData, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("serialize room data: %w", err)
	}

	key := roomKeyPrefix + roomCode
	return rs.client.Set(ctx, key, jsonData, roomExpiration).Err()
}

// LoadRoom 从 Redis 加载房间快照（房间不存在时返回 nil, nil）
func (rs *RedisStore) LoadRoom(ctx context.Context, code string) (*RoomData, error) {
	key := roomKeyPrefix + code
	data, err := rs.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	var roomData RoomData
	if err := json.Unmarshal(data, &roomData); err != nil {
		return nil, fmt.Errorf("deserialize room data: %w", err)
	}

	return &roomData, nil
}

// DeleteRoom 从 Redis 删除房间快照
func (rs *RedisStore) DeleteRoom(ctx context.Context, code string) error {
	key := roomKeyPrefix + code
	return rs.client.Del(ctx, key).Err()
}

// --- 在线状态 ---

// SavePresence 写入在线状态行并设置 TTL
func (rs *RedisStore) SavePresence(ctx context.Context, data *PresenceData, ttl time.Duration) error {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("serialize presence data: %w", err)
	}

	key := presenceKeyPrefix + data.PlayerID
	return rs.client.Set(ctx, key, jsonData, ttl).Err()
}

// RefreshPresence 刷新在线状态 TTL（心跳）
func (rs *RedisStore) RefreshPresence(ctx context.Context, playerID string, ttl time.Duration) error {
	key := presenceKeyPrefix + playerID
	return rs.client.Expire(ctx, key, ttl).Err()
}

// PresenceAlive 检查在线状态行是否仍然存在
func (rs *RedisStore) PresenceAlive(ctx context.Context, playerID string) (bool, error) {
	key := presenceKeyPrefix + playerID
	n, err := rs.client.Exists(ctx, key).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// LoadPresence 加载在线状态行（不存在时返回 nil, nil）
func (rs *RedisStore) LoadPresence(ctx context.Context, playerID string) (*PresenceData, error) {
	key := presenceKeyPrefix + playerID
	data, err := rs.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	var presence PresenceData
	if err := json.Unmarshal(data, &presence); err != nil {
		return nil, fmt.Errorf("deserialize presence data: %w", err)
	}

	return &presence, nil
}

// DeletePresence 删除在线状态行
func (rs *RedisStore) DeletePresence(ctx context.Context, playerID string) error {
	key := presenceKeyPrefix + playerID
	return rs.client.Del(ctx, key).Err()
}
