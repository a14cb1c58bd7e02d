package types

import (
	"github.com/glasnost-games/world-summit/internal/protocol"
)

// ServerInterface 定义服务器接口（用于打破循环依赖）
type ServerInterface interface {
	IsMaintenanceMode() bool
	GetOnlineCount() int
	GetClientByPlayerID(playerID string) ClientInterface
}

// ClientInterface 定义一条客户端连接
// 一条连接最多绑定到一个 (房间, 玩家) 对
type ClientInterface interface {
	GetConnID() string
	GetID() string   // 绑定后的玩家 ID，未绑定为空
	GetName() string // 绑定后的玩家昵称
	GetRoom() string // 当前所在房间号
	Bind(playerID, playerName, roomCode string)
	Unbind()
	SendMessage(msg *protocol.Message)
	Close()
}

// ChatLimiter 聊天速率限制器接口
type ChatLimiter interface {
	AllowChat(clientID string) (allowed bool, reason string)
	RemoveClient(clientID string)
}
