package room

import (
	"context"
	"log"
	"math/rand/v2"
	"time"
)

const cleanupInterval = 1 * time.Minute

// generateRoomCodeLocked 生成不与现有房间冲突的房间号
// 调用方需持有 rm.roomsMu
func (rm *RoomManager) generateRoomCodeLocked() string {
	buf := make([]byte, roomCodeLength)
	for {
		for i := range buf {
			buf[i] = roomCodeChars[rand.IntN(len(roomCodeChars))]
		}
		code := string(buf)
		if _, exists := rm.rooms[code]; !exists {
			return code
		}
	}
}

// saveSnapshot 异步保存房间快照到 Redis，失败不影响内存状态
func (rm *RoomManager) saveSnapshot(room *Room) {
	if rm.redisStore == nil {
		return
	}
	go func() {
		data := room.ToRoomData()
		if err := rm.redisStore.SaveRoom(context.Background(), room.Code, data); err != nil {
			log.Printf("⚠️ 保存房间 %s 快照失败: %v", room.Code, err)
		}
	}()
}

// closeRoom 销毁房间：从注册表移除并清理快照与持久化记录
func (rm *RoomManager) closeRoom(room *Room) {
	rm.roomsMu.Lock()
	delete(rm.rooms, room.Code)
	rm.roomsMu.Unlock()

	if rm.redisStore != nil {
		go func() {
			if err := rm.redisStore.DeleteRoom(context.Background(), room.Code); err != nil {
				log.Printf("⚠️ 删除房间 %s 快照失败: %v", room.Code, err)
			}
		}()
	}
	if rm.OnRoomClosed != nil {
		rm.OnRoomClosed(room.Code)
	}

	log.Printf("🗑️ 房间 %s 已销毁", room.Code)
}

// cleanupLoop 定期清理空闲房间
func (rm *RoomManager) cleanupLoop() {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()

	for range ticker.C {
		rm.cleanup()
	}
}

// cleanup 销毁无人房间和超时无连接的大厅房间
// 断线玩家的记录会把大厅房间保留到超时，给重连留出窗口
func (rm *RoomManager) cleanup() {
	rm.roomsMu.RLock()
	candidates := make([]*Room, 0, len(rm.rooms))
	for _, room := range rm.rooms {
		candidates = append(candidates, room)
	}
	rm.roomsMu.RUnlock()

	now := time.Now()
	for _, room := range candidates {
		room.mu.RLock()
		empty := len(room.Players) == 0
		stale := room.Phase == PhaseLobby &&
			!room.hasBoundClientLocked() &&
			now.Sub(room.CreatedAt) > rm.roomTimeout
		room.mu.RUnlock()

		if empty || stale {
			log.Printf("🧹 清理空闲房间 %s", room.Code)
			rm.closeRoom(room)
		}
	}
}

// hasBoundClientLocked 房间内是否存在已绑定的连接，调用方需持有 r.mu
func (r *Room) hasBoundClientLocked() bool {
	for _, p := range r.Players {
		if p.Client != nil {
			return true
		}
	}
	return false
}
