package room

import (
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"time"

	"github.com/glasnost-games/world-summit/internal/protocol"
	"github.com/glasnost-games/world-summit/internal/server/storage"
	"github.com/glasnost-games/world-summit/internal/types"
)

const (
	roomCodeLength = 6
	// 房间号字符集，排除易混淆字符 0/O/1/I/L
	roomCodeChars = "ABCDEFGHJKMNPQRSTUVWXYZ23456789"

	// MinPlayers 开始游戏所需的最少活跃玩家数
	MinPlayers = 4
	// MaxPlayers 房间容量上限
	MaxPlayers = 10

	// DefaultMaxPlayers 未指定容量时的默认值
	DefaultMaxPlayers = 8

	maxPingMs = 10000
)

// Player 房间中的玩家记录
// 连接绑定（Client）归 PresenceTracker/网关管理，断线时置 nil，记录本身保留
type Player struct {
	ID     string
	Name   string
	Status PlayerStatus

	IsHost  bool // 每个房间恰好一个 true
	IsReady bool
	Ping    int // 毫秒，客户端上报

	Country     string // 开始后分配
	CountryFlag string

	// 开始后的携带状态，大厅核心不解释
	AttackTroops  int
	DefenseTroops int

	JoinedAt time.Time

	Client types.ClientInterface // nil 表示未绑定连接
}

// Room 一个大厅实例
type Room struct {
	Code         string // 房间号，短码，创建时查重
	Name         string
	passwordHash string // 空表示无密码
	Language     string // ru/en
	MaxPlayers   int    // 创建时固定，4-10
	Phase        Phase
	CreatedAt    time.Time
	StartedAt    time.Time

	Players     map[string]*Player // playerID -> player
	PlayerOrder []string           // 按加入顺序，决定房主继任与国家分配

	mu sync.RWMutex
}

// hashPassword 计算房间密码哈希
func hashPassword(password string) string {
	sum := sha256.Sum256([]byte(password))
	return hex.EncodeToString(sum[:])
}

// HasPassword 房间是否设置了密码
func (r *Room) HasPassword() bool {
	return r.passwordHash != ""
}

// checkPassword 校验密码（无密码房间任何输入都通过）
func (r *Room) checkPassword(password string) bool {
	if r.passwordHash == "" {
		return true
	}
	return r.passwordHash == hashPassword(password)
}

// activeCountLocked 活跃玩家数（未断线，计入容量与准备门槛）
// 调用方需持有 r.mu
func (r *Room) activeCountLocked() int {
	count := 0
	for _, p := range r.Players {
		if p.Status != StatusDisconnected {
			count++
		}
	}
	return count
}

// checkAllReadyLocked 开始门槛：活跃玩家 ≥ MinPlayers 且全部已准备
// 调用方需持有 r.mu
func (r *Room) checkAllReadyLocked() bool {
	active := 0
	for _, p := range r.Players {
		if p.Status == StatusDisconnected {
			continue
		}
		if !p.IsReady {
			return false
		}
		active++
	}
	return active >= MinPlayers
}

// playerByNameLocked 按名字精确匹配（区分大小写）查找玩家
// 调用方需持有 r.mu
func (r *Room) playerByNameLocked(name string) *Player {
	for _, p := range r.Players {
		if p.Name == name {
			return p
		}
	}
	return nil
}

// hostLocked 当前房主，调用方需持有 r.mu
func (r *Room) hostLocked() *Player {
	for _, p := range r.Players {
		if p.IsHost {
			return p
		}
	}
	return nil
}

// reassignHostLocked 房主离开后按加入顺序指定最早加入的活跃玩家为新房主
// 返回新房主 ID，无人可指定时返回空串。调用方需持有 r.mu
func (r *Room) reassignHostLocked() string {
	for _, id := range r.PlayerOrder {
		p, ok := r.Players[id]
		if !ok || p.Status == StatusDisconnected {
			continue
		}
		p.IsHost = true
		return p.ID
	}
	return ""
}

// activePlayersLocked 按加入顺序返回活跃玩家，调用方需持有 r.mu
func (r *Room) activePlayersLocked() []*Player {
	players := make([]*Player, 0, len(r.PlayerOrder))
	for _, id := range r.PlayerOrder {
		if p, ok := r.Players[id]; ok && p.Status != StatusDisconnected {
			players = append(players, p)
		}
	}
	return players
}

// playerInfoLocked 构造玩家公开信息，调用方需持有 r.mu
func playerInfoLocked(p *Player) protocol.PlayerInfo {
	return protocol.PlayerInfo{
		ID:            p.ID,
		Name:          p.Name,
		Status:        string(p.Status),
		IsHost:        p.IsHost,
		IsReady:       p.IsReady,
		Ping:          p.Ping,
		Country:       p.Country,
		CountryFlag:   p.CountryFlag,
		AttackTroops:  p.AttackTroops,
		DefenseTroops: p.DefenseTroops,
	}
}

// GetPlayerInfo 获取单个玩家的公开信息
func (r *Room) GetPlayerInfo(playerID string) protocol.PlayerInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if p, ok := r.Players[playerID]; ok {
		return playerInfoLocked(p)
	}
	return protocol.PlayerInfo{}
}

// GetAllPlayersInfo 获取所有活跃玩家的公开信息（按加入顺序）
func (r *Room) GetAllPlayersInfo() []protocol.PlayerInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.allPlayersInfoLocked()
}

// allPlayersInfoLocked 调用方需持有 r.mu
func (r *Room) allPlayersInfoLocked() []protocol.PlayerInfo {
	players := r.activePlayersLocked()
	infos := make([]protocol.PlayerInfo, 0, len(players))
	for _, p := range players {
		infos = append(infos, playerInfoLocked(p))
	}
	return infos
}

// Info 构造房间公开信息
func (r *Room) Info() protocol.RoomInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.infoLocked()
}

// infoLocked 调用方需持有 r.mu
func (r *Room) infoLocked() protocol.RoomInfo {
	hostName := ""
	if host := r.hostLocked(); host != nil {
		hostName = host.Name
	}
	return protocol.RoomInfo{
		Code:           r.Code,
		Name:           r.Name,
		HostName:       hostName,
		HasPassword:    r.HasPassword(),
		Language:       r.Language,
		MaxPlayers:     r.MaxPlayers,
		CurrentPlayers: r.activeCountLocked(),
		Phase:          string(r.Phase),
		CreatedAt:      r.CreatedAt.Unix(),
	}
}

// --- 房间内广播原语 ---
// 广播只向各连接的发送队列投递，不做网络 I/O，慢连接不会阻塞房间状态

// broadcastLocked 发给房间内所有已绑定连接，调用方需持有 r.mu
func (r *Room) broadcastLocked(msg *protocol.Message) {
	for _, p := range r.Players {
		if p.Client != nil {
			p.Client.SendMessage(msg)
		}
	}
}

// broadcastExceptLocked 发给除指定玩家外的所有已绑定连接，调用方需持有 r.mu
func (r *Room) broadcastExceptLocked(excludeID string, msg *protocol.Message) {
	for id, p := range r.Players {
		if id != excludeID && p.Client != nil {
			p.Client.SendMessage(msg)
		}
	}
}

// sendToLocked 发给单个玩家的连接，调用方需持有 r.mu
func (r *Room) sendToLocked(playerID string, msg *protocol.Message) {
	if p, ok := r.Players[playerID]; ok && p.Client != nil {
		p.Client.SendMessage(msg)
	}
}

// Broadcast 发给房间内所有已绑定连接
func (r *Room) Broadcast(msg *protocol.Message) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	r.broadcastLocked(msg)
}

// BroadcastExcept 发给除指定玩家外的所有已绑定连接
func (r *Room) BroadcastExcept(excludeID string, msg *protocol.Message) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	r.broadcastExceptLocked(excludeID, msg)
}

// --- 快照 ---

// ToRoomData 将 Room 转换为可序列化的存储快照
func (r *Room) ToRoomData() *storage.RoomData {
	r.mu.RLock()
	defer r.mu.RUnlock()

	data := &storage.RoomData{
		Code:        r.Code,
		Name:        r.Name,
		Language:    r.Language,
		MaxPlayers:  r.MaxPlayers,
		Phase:       string(r.Phase),
		HasPassword: r.HasPassword(),
		Players:     make([]storage.PlayerData, 0, len(r.PlayerOrder)),
		PlayerOrder: append([]string(nil), r.PlayerOrder...),
		CreatedAt:   r.CreatedAt.Unix(),
	}
	if !r.StartedAt.IsZero() {
		data.StartedAt = r.StartedAt.Unix()
	}

	for _, id := range r.PlayerOrder {
		p, ok := r.Players[id]
		if !ok {
			continue
		}
		data.Players = append(data.Players, storage.PlayerData{
			ID:            p.ID,
			Name:          p.Name,
			Status:        string(p.Status),
			IsHost:        p.IsHost,
			IsReady:       p.IsReady,
			Ping:          p.Ping,
			Country:       p.Country,
			CountryFlag:   p.CountryFlag,
			AttackTroops:  p.AttackTroops,
			DefenseTroops: p.DefenseTroops,
		})
	}

	return data
}
