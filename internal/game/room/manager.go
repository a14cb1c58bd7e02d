package room

import (
	"log"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/glasnost-games/world-summit/internal/apperrors"
	"github.com/glasnost-games/world-summit/internal/game/country"
	"github.com/glasnost-games/world-summit/internal/protocol"
	"github.com/glasnost-games/world-summit/internal/server/storage"
	"github.com/glasnost-games/world-summit/internal/types"
)

// RoomManager 房间管理器：房间注册表 + 大厅状态机
// 不同房间的操作完全并行，同一房间的操作由该房间的互斥锁串行化
type RoomManager struct {
	redisStore  *storage.RedisStore
	roomTimeout time.Duration
	maxChatLen  int

	rooms   map[string]*Room
	roomsMu sync.RWMutex

	// OnRoomClosed 房间销毁回调（用于清理持久化的游戏记录），可为 nil
	OnRoomClosed func(code string)
}

// NewRoomManager 创建房间管理器
func NewRoomManager(rs *storage.RedisStore, roomTimeout time.Duration, maxChatLen int) *RoomManager {
	rm := &RoomManager{
		redisStore:  rs,
		roomTimeout: roomTimeout,
		maxChatLen:  maxChatLen,
		rooms:       make(map[string]*Room),
	}

	// 启动空闲房间清理协程
	go rm.cleanupLoop()

	return rm
}

// CreateConfig 创建房间参数
type CreateConfig struct {
	Name       string
	HostName   string
	Password   string
	Language   string
	MaxPlayers int
}

// CreateRoom 创建房间，创建者作为唯一玩家插入并持有房主标记
func (rm *RoomManager) CreateRoom(cfg CreateConfig) (*Room, *Player, error) {
	if strings.TrimSpace(cfg.Name) == "" || strings.TrimSpace(cfg.HostName) == "" {
		return nil, nil, apperrors.ErrInvalidConfig
	}
	if cfg.MaxPlayers == 0 {
		cfg.MaxPlayers = DefaultMaxPlayers
	}
	if cfg.MaxPlayers < MinPlayers || cfg.MaxPlayers > MaxPlayers {
		return nil, nil, apperrors.ErrInvalidConfig
	}
	if cfg.Language == "" {
		cfg.Language = "ru"
	}

	rm.roomsMu.Lock()
	defer rm.roomsMu.Unlock()

	code := rm.generateRoomCodeLocked()

	room := &Room{
		Code:        code,
		Name:        cfg.Name,
		Language:    cfg.Language,
		MaxPlayers:  cfg.MaxPlayers,
		Phase:       PhaseLobby,
		CreatedAt:   time.Now(),
		Players:     make(map[string]*Player),
		PlayerOrder: make([]string, 0, cfg.MaxPlayers),
	}
	if cfg.Password != "" {
		room.passwordHash = hashPassword(cfg.Password)
	}

	host := &Player{
		ID:       uuid.New().String(),
		Name:     cfg.HostName,
		Status:   StatusActive,
		IsHost:   true,
		JoinedAt: time.Now(),
	}
	room.Players[host.ID] = host
	room.PlayerOrder = append(room.PlayerOrder, host.ID)

	rm.rooms[code] = room
	rm.saveSnapshot(room)

	log.Printf("🏠 房间 %s (%s) 已创建，房主 %s", code, cfg.Name, cfg.HostName)

	return room, host, nil
}

// Join 加入房间
// 同名玩家处于 disconnected 状态时重新绑定到原记录，而不是创建重复记录；
// 成功时向房间内其他连接广播 player_joined（加入者通过加入响应获得权威快照）
func (rm *RoomManager) Join(code, playerName, password string) (*Room, *Player, error) {
	if strings.TrimSpace(playerName) == "" {
		return nil, nil, apperrors.ErrInvalidConfig
	}

	room := rm.GetRoom(code)
	if room == nil {
		return nil, nil, apperrors.ErrRoomNotFound
	}

	room.mu.Lock()
	defer room.mu.Unlock()

	if !room.checkPassword(password) {
		return nil, nil, apperrors.ErrWrongPassword
	}
	if room.Phase != PhaseLobby {
		return nil, nil, apperrors.ErrRoomStarted
	}

	// 同名断线玩家：恢复原记录（保留已有的玩家状态）
	if existing := room.playerByNameLocked(playerName); existing != nil {
		if existing.Status != StatusDisconnected {
			return nil, nil, apperrors.ErrDuplicateName
		}
		// 断线期间空位可能已被新玩家占用
		if room.activeCountLocked() >= room.MaxPlayers {
			return nil, nil, apperrors.ErrRoomFull
		}
		existing.Status = StatusActive

		// 其他连接的名册镜像需要知道该玩家已恢复
		room.broadcastExceptLocked(existing.ID, protocol.MustNewMessage(protocol.MsgPlayerJoined, protocol.PlayerJoinedPayload{
			Player: playerInfoLocked(existing),
		}))

		rm.saveSnapshot(room)
		log.Printf("🔄 玩家 %s 恢复加入房间 %s", playerName, code)
		return room, existing, nil
	}

	if room.activeCountLocked() >= room.MaxPlayers {
		return nil, nil, apperrors.ErrRoomFull
	}

	player := &Player{
		ID:       uuid.New().String(),
		Name:     playerName,
		Status:   StatusActive,
		JoinedAt: time.Now(),
	}
	room.Players[player.ID] = player
	room.PlayerOrder = append(room.PlayerOrder, player.ID)

	// 只通知已在房间内的连接，加入者从加入响应里拿完整快照
	room.broadcastLocked(protocol.MustNewMessage(protocol.MsgPlayerJoined, protocol.PlayerJoinedPayload{
		Player: playerInfoLocked(player),
	}))

	rm.saveSnapshot(room)

	log.Printf("👤 玩家 %s 加入房间 %s", playerName, code)

	return room, player, nil
}

// BindConnection 将一条连接绑定到房间内的玩家记录
// 同一玩家的新连接会顶替旧连接；断线后重绑会向其他玩家广播 player_joined
func (rm *RoomManager) BindConnection(code, playerID string, client types.ClientInterface) (*Room, *Player, error) {
	room := rm.GetRoom(code)
	if room == nil {
		return nil, nil, apperrors.ErrRoomNotFound
	}

	room.mu.Lock()
	defer room.mu.Unlock()

	player, ok := room.Players[playerID]
	if !ok {
		return nil, nil, apperrors.ErrPlayerNotFound
	}

	wasDisconnected := player.Status == StatusDisconnected

	// 断线玩家的空位可能已被占用，满员时不恢复为活跃
	if wasDisconnected && room.Phase == PhaseLobby && room.activeCountLocked() >= room.MaxPlayers {
		return nil, nil, apperrors.ErrRoomFull
	}

	// 顶替旧连接
	if old := player.Client; old != nil && old != client {
		old.Unbind()
		old.Close()
	}

	if wasDisconnected {
		// 开局时仍断线的玩家没有分到国家，回来后以观察者身份旁观
		if room.Phase == PhaseStarted && player.Country == "" {
			player.Status = StatusObserver
		} else {
			player.Status = StatusActive
		}
	}
	player.Client = client
	client.Bind(player.ID, player.Name, room.Code)

	// 重连场景下名册镜像需要收敛；全新加入在 Join 时已广播过，这里不再重复
	if wasDisconnected {
		room.broadcastExceptLocked(playerID, protocol.MustNewMessage(protocol.MsgPlayerJoined, protocol.PlayerJoinedPayload{
			Player: playerInfoLocked(player),
		}))
	}

	log.Printf("🔌 玩家 %s 绑定到房间 %s", player.Name, code)

	return room, player, nil
}

// Disconnect 连接断开（显式关闭或心跳超时），幂等
// 玩家记录不被删除，只标记 disconnected 并广播；房主断线时按加入顺序继任
func (rm *RoomManager) Disconnect(client types.ClientInterface) {
	code := client.GetRoom()
	if code == "" {
		return
	}

	room := rm.GetRoom(code)
	if room == nil {
		return
	}

	room.mu.Lock()
	defer room.mu.Unlock()

	player, ok := room.Players[client.GetID()]
	if !ok || player.Client != client {
		return // 已被新连接顶替或已移除
	}

	player.Client = nil
	player.Status = StatusDisconnected

	newHostID := ""
	if player.IsHost {
		player.IsHost = false
		newHostID = room.reassignHostLocked()
	}

	room.broadcastLocked(protocol.MustNewMessage(protocol.MsgPlayerDisconnected, protocol.PlayerDisconnectedPayload{
		PlayerID:   player.ID,
		PlayerName: player.Name,
		NewHostID:  newHostID,
	}))

	rm.saveSnapshot(room)

	log.Printf("📴 玩家 %s 在房间 %s 中断线", player.Name, code)
}

// Leave 显式离开房间，幂等；玩家记录被移除
func (rm *RoomManager) Leave(client types.ClientInterface) {
	code := client.GetRoom()
	if code == "" {
		return
	}

	room := rm.GetRoom(code)
	if room == nil {
		return
	}

	room.mu.Lock()

	player, ok := room.Players[client.GetID()]
	if !ok {
		room.mu.Unlock()
		return
	}

	newHostID := rm.removePlayerLocked(room, player)
	client.Unbind()

	room.broadcastLocked(protocol.MustNewMessage(protocol.MsgPlayerDisconnected, protocol.PlayerDisconnectedPayload{
		PlayerID:   player.ID,
		PlayerName: player.Name,
		NewHostID:  newHostID,
	}))

	empty := len(room.Players) == 0
	room.mu.Unlock()

	log.Printf("👋 玩家 %s 离开房间 %s", player.Name, code)

	if empty {
		rm.closeRoom(room)
	} else {
		rm.saveSnapshot(room)
	}
}

// Kick 房主将玩家踢出房间
// 被踢者收到独立的 kicked 通知（区别于断线事件），剩余玩家收到 player_kicked
func (rm *RoomManager) Kick(code, actorID, targetID string) error {
	room := rm.GetRoom(code)
	if room == nil {
		return apperrors.ErrRoomNotFound
	}

	room.mu.Lock()
	defer room.mu.Unlock()

	if room.Phase != PhaseLobby {
		return apperrors.ErrRoomStarted
	}

	actor, ok := room.Players[actorID]
	if !ok || !actor.IsHost {
		return apperrors.ErrForbidden
	}
	if targetID == actorID {
		return apperrors.ErrCannotKickSelf
	}

	target, ok := room.Players[targetID]
	if !ok {
		return apperrors.ErrPlayerNotFound
	}

	// 先单独通知被踢者，其客户端据此强制返回入口页
	if target.Client != nil {
		target.Client.SendMessage(protocol.MustNewMessage(protocol.MsgKicked, protocol.KickedPayload{
			RoomCode: room.Code,
		}))
		target.Client.Unbind()
	}

	newHostID := rm.removePlayerLocked(room, target)

	room.broadcastLocked(protocol.MustNewMessage(protocol.MsgPlayerKicked, protocol.PlayerKickedPayload{
		PlayerID:   target.ID,
		PlayerName: target.Name,
		NewHostID:  newHostID,
	}))

	rm.saveSnapshot(room)

	log.Printf("🥾 玩家 %s 被踢出房间 %s", target.Name, code)

	return nil
}

// removePlayerLocked 从名册移除玩家，必要时重新指定房主
// 返回新房主 ID（未变更时为空）。调用方需持有 room.mu
func (rm *RoomManager) removePlayerLocked(room *Room, player *Player) string {
	delete(room.Players, player.ID)
	for i, id := range room.PlayerOrder {
		if id == player.ID {
			room.PlayerOrder = append(room.PlayerOrder[:i], room.PlayerOrder[i+1:]...)
			break
		}
	}

	player.Client = nil

	if player.IsHost {
		player.IsHost = false
		return room.reassignHostLocked()
	}
	return ""
}

// SetReady 设置玩家准备状态
// 状态未变化也会广播，便于客户端幂等收敛；达到开始门槛时附加 all_players_ready
func (rm *RoomManager) SetReady(code, playerID string, ready bool) error {
	room := rm.GetRoom(code)
	if room == nil {
		return apperrors.ErrRoomNotFound
	}

	room.mu.Lock()
	defer room.mu.Unlock()

	if room.Phase != PhaseLobby {
		return apperrors.ErrRoomStarted
	}

	player, ok := room.Players[playerID]
	if !ok {
		return apperrors.ErrPlayerNotFound
	}

	player.IsReady = ready

	room.broadcastLocked(protocol.MustNewMessage(protocol.MsgPlayerReadyChanged, protocol.PlayerReadyChangedPayload{
		PlayerID: playerID,
		IsReady:  ready,
	}))

	if ready && room.checkAllReadyLocked() {
		room.broadcastLocked(protocol.MustNewMessage(protocol.MsgAllPlayersReady, protocol.AllPlayersReadyPayload{
			Message: "all players are ready, the host can start the game",
		}))
	}

	rm.saveSnapshot(room)

	return nil
}

// Start 执行唯一不可逆的 lobby → started 转换（仅房主）
// 在房间锁内完成门槛检查、国家分配与阶段切换，并发调用恰好一个成功
func (rm *RoomManager) Start(code, actorID string) error {
	room := rm.GetRoom(code)
	if room == nil {
		return apperrors.ErrRoomNotFound
	}

	room.mu.Lock()
	defer room.mu.Unlock()

	if room.Phase != PhaseLobby {
		return apperrors.ErrRoomStarted
	}

	actor, ok := room.Players[actorID]
	if !ok || !actor.IsHost {
		return apperrors.ErrForbidden
	}

	if !room.checkAllReadyLocked() {
		return apperrors.ErrNotReady
	}

	players := room.activePlayersLocked()
	countries, err := country.Assign(len(players))
	if err != nil {
		return err
	}

	for i, p := range players {
		p.Country = countries[i].Name
		p.CountryFlag = countries[i].Flag
		// 下一阶段有自己的准备环节，进入时重置
		p.IsReady = false
	}

	room.Phase = PhaseStarted
	room.StartedAt = time.Now()

	room.broadcastLocked(protocol.MustNewMessage(protocol.MsgGameStarted, protocol.GameStartedPayload{
		Phase:   string(PhaseStarted),
		Players: room.allPlayersInfoLocked(),
	}))

	rm.saveSnapshot(room)

	log.Printf("🚀 房间 %s 开始游戏，%d 名玩家", code, len(players))

	return nil
}

// UpdatePing 更新玩家延迟并广播给房间内其他玩家
// 越界值被截断而不是拒绝，本操作永不失败
func (rm *RoomManager) UpdatePing(code, playerID string, ping int) {
	if ping < 0 {
		ping = 0
	}
	if ping > maxPingMs {
		ping = maxPingMs
	}

	room := rm.GetRoom(code)
	if room == nil {
		return
	}

	room.mu.Lock()
	defer room.mu.Unlock()

	player, ok := room.Players[playerID]
	if !ok {
		return
	}

	player.Ping = ping

	room.broadcastExceptLocked(playerID, protocol.MustNewMessage(protocol.MsgPingUpdated, protocol.PingUpdatedPayload{
		PlayerID: playerID,
		Ping:     ping,
	}))
}

// SendChat 发送聊天消息
// target 非空时仅投递给发送者和目标（私聊），否则投递给整个房间；不做持久化
func (rm *RoomManager) SendChat(code, senderID, body, targetID string) error {
	body = strings.TrimSpace(body)
	if body == "" || utf8.RuneCountInString(body) > rm.maxChatLen {
		return apperrors.ErrInvalidMessage
	}

	room := rm.GetRoom(code)
	if room == nil {
		return apperrors.ErrRoomNotFound
	}

	room.mu.RLock()
	defer room.mu.RUnlock()

	sender, ok := room.Players[senderID]
	if !ok {
		return apperrors.ErrPlayerNotFound
	}

	messageType := "public"
	if targetID != "" {
		if _, ok := room.Players[targetID]; !ok {
			return apperrors.ErrPlayerNotFound
		}
		messageType = "private"
	}

	msg := protocol.MustNewMessage(protocol.MsgNewMessage, protocol.NewMessagePayload{
		ID:             uuid.New().String(),
		PlayerID:       sender.ID,
		PlayerName:     sender.Name,
		Message:        body,
		MessageType:    messageType,
		TargetPlayerID: targetID,
		CreatedAt:      time.Now().UnixMilli(),
	})

	if targetID != "" {
		room.sendToLocked(targetID, msg)
		room.sendToLocked(senderID, msg)
		return nil
	}

	room.broadcastLocked(msg)
	return nil
}

// GetRoom 获取房间
func (rm *RoomManager) GetRoom(code string) *Room {
	rm.roomsMu.RLock()
	defer rm.roomsMu.RUnlock()
	return rm.rooms[code]
}

// GetRoomList 获取可加入的房间列表（大厅阶段且未满）
func (rm *RoomManager) GetRoomList() []protocol.RoomInfo {
	rm.roomsMu.RLock()
	defer rm.roomsMu.RUnlock()

	var rooms []protocol.RoomInfo
	for _, room := range rm.rooms {
		room.mu.RLock()
		if room.Phase == PhaseLobby && room.activeCountLocked() < room.MaxPlayers {
			rooms = append(rooms, room.infoLocked())
		}
		room.mu.RUnlock()
	}
	return rooms
}

// GetStartedCount 已开始的房间数量（用于优雅关闭时等待）
func (rm *RoomManager) GetStartedCount() int {
	rm.roomsMu.RLock()
	defer rm.roomsMu.RUnlock()

	count := 0
	for _, room := range rm.rooms {
		room.mu.RLock()
		if room.Phase == PhaseStarted {
			count++
		}
		room.mu.RUnlock()
	}
	return count
}
