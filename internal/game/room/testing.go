//go:build !production

package room

import (
	"time"

	"github.com/google/uuid"
)

// NewTestManager 创建不带 Redis 的房间管理器用于测试
func NewTestManager() *RoomManager {
	return &RoomManager{
		roomTimeout: time.Hour,
		maxChatLen:  500,
		rooms:       make(map[string]*Room),
	}
}

// AddRoomForTest 添加房间用于测试
func (rm *RoomManager) AddRoomForTest(room *Room) {
	rm.roomsMu.Lock()
	defer rm.roomsMu.Unlock()
	rm.rooms[room.Code] = room
}

// NewTestRoom 创建测试用的 Room
func NewTestRoom(code string) *Room {
	return &Room{
		Code:        code,
		Name:        "test room",
		Language:    "ru",
		MaxPlayers:  DefaultMaxPlayers,
		Phase:       PhaseLobby,
		CreatedAt:   time.Now(),
		Players:     make(map[string]*Player),
		PlayerOrder: make([]string, 0, DefaultMaxPlayers),
	}
}

// AddPlayerForTest 向房间直接插入玩家记录
func (r *Room) AddPlayerForTest(name string, isHost bool) *Player {
	r.mu.Lock()
	defer r.mu.Unlock()
	p := &Player{
		ID:       uuid.New().String(),
		Name:     name,
		Status:   StatusActive,
		IsHost:   isHost,
		JoinedAt: time.Now(),
	}
	r.Players[p.ID] = p
	r.PlayerOrder = append(r.PlayerOrder, p.ID)
	return p
}
