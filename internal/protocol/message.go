package protocol

import "encoding/json"

// Message 基础消息结构
type Message struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// MessageType 消息类型
type MessageType string

// 客户端 → 服务端 消息类型
const (
	// 连接操作
	MsgPing         MessageType = "ping"           // 心跳 ping
	MsgJoinGameRoom MessageType = "join_game_room" // 绑定连接到房间
	MsgLeaveRoom    MessageType = "leave_room"     // 离开房间

	// 大厅操作
	MsgPlayerReady MessageType = "player_ready" // 切换准备状态
	MsgKickPlayer  MessageType = "kick_player"  // 踢出玩家（仅房主）
	MsgStartGame   MessageType = "start_game"   // 开始游戏（仅房主）
	MsgSendMessage MessageType = "send_message" // 发送聊天消息
	MsgUpdatePing  MessageType = "update_ping"  // 上报延迟
)

// 服务端 → 客户端 消息类型
const (
	// 连接相关
	MsgPong       MessageType = "pong"        // 心跳 pong
	MsgRoomJoined MessageType = "room_joined" // 绑定成功，携带完整房间快照

	// 房间名册变更
	MsgPlayerJoined       MessageType = "player_joined"        // 新玩家加入
	MsgPlayerDisconnected MessageType = "player_disconnected"  // 玩家断线/离开
	MsgPlayerKicked       MessageType = "player_kicked"        // 玩家被踢（广播给剩余玩家）
	MsgKicked             MessageType = "kicked"               // 你被踢了（仅发给被踢者）
	MsgPlayerReadyChanged MessageType = "player_ready_changed" // 准备状态变更
	MsgAllPlayersReady    MessageType = "all_players_ready"    // 所有人已准备（提示性）
	MsgPingUpdated        MessageType = "ping_updated"         // 玩家延迟更新
	MsgNewMessage         MessageType = "new_message"          // 聊天消息
	MsgGameStarted        MessageType = "game_started"         // 游戏开始（不可逆）

	// 错误
	MsgError MessageType = "error" // 错误消息
)
