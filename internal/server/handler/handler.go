package handler

import (
	"errors"
	"log"

	"github.com/glasnost-games/world-summit/internal/apperrors"
	"github.com/glasnost-games/world-summit/internal/game/room"
	"github.com/glasnost-games/world-summit/internal/protocol"
	"github.com/glasnost-games/world-summit/internal/server/presence"
	"github.com/glasnost-games/world-summit/internal/server/storage"
	"github.com/glasnost-games/world-summit/internal/types"
)

// Deps 处理器依赖
type Deps struct {
	Server      types.ServerInterface
	RoomManager *room.RoomManager
	Presence    *presence.Tracker
	ChatLimiter types.ChatLimiter
	GameStore   storage.GameStore
}

// Handler 消息处理器
type Handler struct {
	server      types.ServerInterface
	roomManager *room.RoomManager
	presence    *presence.Tracker
	chatLimiter types.ChatLimiter
	gameStore   storage.GameStore
	handlers    map[protocol.MessageType]handlerFunc
}

// handlerFunc 统一的处理器函数签名
type handlerFunc func(client types.ClientInterface, msg *protocol.Message)

// NewHandler 创建处理器
func NewHandler(deps Deps) *Handler {
	h := &Handler{
		server:      deps.Server,
		roomManager: deps.RoomManager,
		presence:    deps.Presence,
		chatLimiter: deps.ChatLimiter,
		gameStore:   deps.GameStore,
	}
	h.initHandlers()
	return h
}

// initHandlers 初始化消息处理器映射
func (h *Handler) initHandlers() {
	h.handlers = map[protocol.MessageType]handlerFunc{
		// 连接操作
		protocol.MsgPing:         h.handlePing,
		protocol.MsgJoinGameRoom: h.handleJoinGameRoom,

		// 房间操作
		protocol.MsgLeaveRoom:   func(c types.ClientInterface, _ *protocol.Message) { h.handleLeaveRoom(c) },
		protocol.MsgPlayerReady: h.handlePlayerReady,
		protocol.MsgKickPlayer:  h.handleKickPlayer,
		protocol.MsgStartGame:   func(c types.ClientInterface, _ *protocol.Message) { h.handleStartGame(c) },

		// 房间内消息
		protocol.MsgSendMessage: h.handleSendMessage,
		protocol.MsgUpdatePing:  h.handleUpdatePing,
	}
}

// Handle 处理消息
func (h *Handler) Handle(client types.ClientInterface, msg *protocol.Message) {
	if handler, ok := h.handlers[msg.Type]; ok {
		handler(client, msg)
		return
	}

	log.Printf("⚠️  未知消息类型: '%s' (来自玩家: %s, ID: %s)", msg.Type, client.GetName(), client.GetID())
	client.SendMessage(protocol.NewErrorMessage(protocol.ErrCodeInvalidMsg))
}

// sendError 将大厅错误转为错误消息发给客户端
func sendError(client types.ClientInterface, err error) {
	var lobbyErr *apperrors.LobbyError
	if errors.As(err, &lobbyErr) {
		client.SendMessage(protocol.NewErrorMessageWithText(lobbyErr.Code, lobbyErr.Message))
		return
	}
	client.SendMessage(protocol.NewErrorMessageWithText(protocol.ErrCodeUnknown, err.Error()))
}
