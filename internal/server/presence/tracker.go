package presence

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/glasnost-games/world-summit/internal/server/storage"
)

// ExpireFunc 心跳超时回调，由网关接入断线处理流程
type ExpireFunc func(playerID, roomCode string)

// entry 一条在线记录
type entry struct {
	playerID   string
	playerName string
	roomCode   string
	connID     string
	lastSeen   time.Time
}

// Tracker 在线状态跟踪器
// 每个绑定的玩家持有一条带 TTL 的 Redis 在线记录，心跳刷新 TTL，
// 清扫协程发现记录过期后触发断线回调；Redis 不可用时退化为纯内存判定
type Tracker struct {
	store *storage.RedisStore
	ttl   time.Duration
	sweep time.Duration

	entries map[string]*entry // playerID -> entry
	mu      sync.RWMutex

	// OnExpire 心跳超时回调，可为 nil
	OnExpire ExpireFunc
}

// NewTracker 创建跟踪器并启动清扫协程
func NewTracker(store *storage.RedisStore, ttl, sweepInterval time.Duration) *Tracker {
	t := &Tracker{
		store:   store,
		ttl:     ttl,
		sweep:   sweepInterval,
		entries: make(map[string]*entry),
	}

	go t.sweepLoop()

	return t
}

// Bind 登记一条在线记录（连接绑定到玩家时调用）
func (t *Tracker) Bind(playerID, playerName, roomCode, connID string) {
	t.mu.Lock()
	t.entries[playerID] = &entry{
		playerID:   playerID,
		playerName: playerName,
		roomCode:   roomCode,
		connID:     connID,
		lastSeen:   time.Now(),
	}
	t.mu.Unlock()

	if t.store != nil {
		data := &storage.PresenceData{
			PlayerID:   playerID,
			PlayerName: playerName,
			RoomCode:   roomCode,
			ConnID:     connID,
		}
		go func() {
			if err := t.store.SavePresence(context.Background(), data, t.ttl); err != nil {
				log.Printf("⚠️ 保存玩家 %s 在线记录失败: %v", playerID, err)
			}
		}()
	}
}

// Touch 心跳刷新
func (t *Tracker) Touch(playerID string) {
	t.mu.Lock()
	e, ok := t.entries[playerID]
	if ok {
		e.lastSeen = time.Now()
	}
	t.mu.Unlock()

	if ok && t.store != nil {
		go func() {
			if err := t.store.RefreshPresence(context.Background(), playerID, t.ttl); err != nil {
				log.Printf("⚠️ 刷新玩家 %s 在线记录失败: %v", playerID, err)
			}
		}()
	}
}

// Unbind 移除在线记录（显式离开、被踢或连接正常关闭时调用）
func (t *Tracker) Unbind(playerID string) {
	t.mu.Lock()
	delete(t.entries, playerID)
	t.mu.Unlock()

	if t.store != nil {
		go func() {
			_ = t.store.DeletePresence(context.Background(), playerID)
		}()
	}
}

// Lookup 查询在线记录，未登记返回 nil
func (t *Tracker) Lookup(playerID string) *storage.PresenceData {
	t.mu.RLock()
	defer t.mu.RUnlock()

	e, ok := t.entries[playerID]
	if !ok {
		return nil
	}
	return &storage.PresenceData{
		PlayerID:   e.playerID,
		PlayerName: e.playerName,
		RoomCode:   e.roomCode,
		ConnID:     e.connID,
	}
}

// Count 当前登记的在线玩家数
func (t *Tracker) Count() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.entries)
}

// sweepLoop 定期清扫过期记录
func (t *Tracker) sweepLoop() {
	ticker := time.NewTicker(t.sweep)
	defer ticker.Stop()

	for range ticker.C {
		t.Sweep()
	}
}

// Sweep 清扫一轮：TTL 过期的玩家按心跳超时处理
func (t *Tracker) Sweep() {
	t.mu.RLock()
	candidates := make([]*entry, 0, len(t.entries))
	for _, e := range t.entries {
		candidates = append(candidates, e)
	}
	t.mu.RUnlock()

	now := time.Now()
	for _, e := range candidates {
		if t.alive(e, now) {
			continue
		}

		t.mu.Lock()
		// 清扫期间可能已被重新绑定，lastSeen 变新则跳过
		cur, ok := t.entries[e.playerID]
		if !ok || cur.lastSeen.After(e.lastSeen) {
			t.mu.Unlock()
			continue
		}
		delete(t.entries, e.playerID)
		t.mu.Unlock()

		log.Printf("⏱️ 玩家 %s 心跳超时", e.playerID)

		if t.OnExpire != nil {
			t.OnExpire(e.playerID, e.roomCode)
		}
	}
}

// alive 判定记录是否仍然有效，Redis 可用时以 TTL 键为准
func (t *Tracker) alive(e *entry, now time.Time) bool {
	if t.store != nil {
		alive, err := t.store.PresenceAlive(context.Background(), e.playerID)
		if err == nil {
			return alive
		}
		log.Printf("⚠️ 查询玩家 %s 在线记录失败: %v", e.playerID, err)
	}
	return now.Sub(e.lastSeen) <= t.ttl
}
