package protocol

// --- 客户端请求 Payloads ---

// PingPayload 心跳请求
type PingPayload struct {
	Timestamp int64 `json:"timestamp"` // 客户端时间戳（毫秒）
}

// JoinGameRoomPayload 绑定连接到房间请求
type JoinGameRoomPayload struct {
	RoomCode string `json:"room_code"`
	PlayerID string `json:"player_id"`
}

// PlayerReadyRequestPayload 切换准备状态请求
type PlayerReadyRequestPayload struct {
	IsReady bool `json:"is_ready"`
}

// KickPlayerPayload 踢人请求
type KickPlayerPayload struct {
	PlayerID string `json:"player_id"` // 被踢玩家 ID
}

// SendMessagePayload 聊天消息请求
type SendMessagePayload struct {
	Message        string `json:"message"`
	TargetPlayerID string `json:"target_player_id,omitempty"` // 私聊目标，空为公聊
}

// UpdatePingPayload 上报延迟请求
type UpdatePingPayload struct {
	Ping int `json:"ping"` // 毫秒
}

// --- 服务端响应 Payloads ---

// PongPayload 心跳响应
type PongPayload struct {
	ClientTimestamp int64 `json:"client_timestamp"` // 客户端发送的时间戳
	ServerTimestamp int64 `json:"server_timestamp"` // 服务器时间戳（毫秒）
}

// RoomJoinedPayload 绑定成功响应，携带权威房间快照
type RoomJoinedPayload struct {
	Room    RoomInfo     `json:"room"`
	Player  PlayerInfo   `json:"player"`
	Players []PlayerInfo `json:"players"` // 房间内所有活跃玩家
}

// PlayerJoinedPayload 新玩家加入通知
type PlayerJoinedPayload struct {
	Player PlayerInfo `json:"player"`
}

// PlayerDisconnectedPayload 玩家断线/离开通知
type PlayerDisconnectedPayload struct {
	PlayerID   string `json:"player_id"`
	PlayerName string `json:"player_name"`
	NewHostID  string `json:"new_host_id,omitempty"` // 房主重新指定时携带
}

// PlayerKickedPayload 玩家被踢通知（发给剩余玩家）
type PlayerKickedPayload struct {
	PlayerID   string `json:"player_id"`
	PlayerName string `json:"player_name"`
	NewHostID  string `json:"new_host_id,omitempty"`
}

// KickedPayload 被踢通知（仅发给被踢者，客户端应返回入口页）
type KickedPayload struct {
	RoomCode string `json:"room_code"`
	Reason   string `json:"reason,omitempty"`
}

// PlayerReadyChangedPayload 准备状态变更通知
type PlayerReadyChangedPayload struct {
	PlayerID string `json:"player_id"`
	IsReady  bool   `json:"is_ready"`
}

// AllPlayersReadyPayload 所有人已准备通知（提示性，无状态变更）
type AllPlayersReadyPayload struct {
	Message string `json:"message"`
}

// PingUpdatedPayload 玩家延迟更新通知
type PingUpdatedPayload struct {
	PlayerID string `json:"player_id"`
	Ping     int    `json:"ping"`
}

// NewMessagePayload 聊天消息通知
type NewMessagePayload struct {
	ID             string `json:"id"`
	PlayerID       string `json:"player_id"`
	PlayerName     string `json:"player_name"`
	Message        string `json:"message"`
	MessageType    string `json:"message_type"` // "public" / "private"
	TargetPlayerID string `json:"target_player_id,omitempty"`
	CreatedAt      int64  `json:"created_at"` // Unix 毫秒
}

// GameStartedPayload 游戏开始通知
type GameStartedPayload struct {
	Phase   string       `json:"phase"`
	Players []PlayerInfo `json:"players"` // 按加入顺序，已分配国家
}

// ErrorPayload 错误响应
type ErrorPayload struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// --- 通用数据结构 ---

// PlayerInfo 玩家公开信息
type PlayerInfo struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Status        string `json:"status"`   // active/observer/disconnected
	IsHost        bool   `json:"is_host"`  // 是否是房主
	IsReady       bool   `json:"is_ready"` // 是否准备
	Ping          int    `json:"ping"`
	Country       string `json:"country,omitempty"`
	CountryFlag   string `json:"country_flag,omitempty"`
	AttackTroops  int    `json:"attack_troops"`
	DefenseTroops int    `json:"defense_troops"`
}

// RoomInfo 房间公开信息
type RoomInfo struct {
	Code           string `json:"code"`
	Name           string `json:"name"`
	HostName       string `json:"host_name"`
	HasPassword    bool   `json:"has_password"`
	Language       string `json:"language"` // ru/en
	MaxPlayers     int    `json:"max_players"`
	CurrentPlayers int    `json:"current_players"`
	Phase          string `json:"phase"` // lobby/started
	CreatedAt      int64  `json:"created_at"` // Unix 秒
}
