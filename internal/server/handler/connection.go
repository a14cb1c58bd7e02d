package handler

import (
	"log"
	"time"

	"github.com/glasnost-games/world-summit/internal/apperrors"
	"github.com/glasnost-games/world-summit/internal/protocol"
	"github.com/glasnost-games/world-summit/internal/types"
)

// handlePing 处理心跳，顺带刷新在线状态 TTL
func (h *Handler) handlePing(client types.ClientInterface, msg *protocol.Message) {
	var clientTS int64
	if payload, err := protocol.ParsePayload[protocol.PingPayload](msg); err == nil {
		clientTS = payload.Timestamp
	}

	if playerID := client.GetID(); playerID != "" {
		h.presence.Touch(playerID)
	}

	client.SendMessage(protocol.MustNewMessage(protocol.MsgPong, protocol.PongPayload{
		ClientTimestamp: clientTS,
		ServerTimestamp: time.Now().UnixMilli(),
	}))
}

// handleJoinGameRoom 绑定连接到已加入的房间
// 客户端先通过 REST 加入拿到 player_id，再用它绑定 WebSocket
func (h *Handler) handleJoinGameRoom(client types.ClientInterface, msg *protocol.Message) {
	// 维护模式检查
	if h.server.IsMaintenanceMode() {
		client.SendMessage(protocol.NewErrorMessageWithText(
			protocol.ErrCodeServerMaintenance, "server under maintenance"))
		return
	}

	payload, err := protocol.ParsePayload[protocol.JoinGameRoomPayload](msg)
	if err != nil || payload.RoomCode == "" || payload.PlayerID == "" {
		client.SendMessage(protocol.NewErrorMessage(protocol.ErrCodeInvalidMsg))
		return
	}

	// 同一连接不允许同时绑定两个房间
	if current := client.GetRoom(); current != "" && current != payload.RoomCode {
		sendError(client, apperrors.ErrNotInRoom)
		return
	}

	boundRoom, player, err := h.roomManager.BindConnection(payload.RoomCode, payload.PlayerID, client)
	if err != nil {
		sendError(client, err)
		return
	}

	// 同一玩家在另一条连接上已有会话时，本次绑定顶替旧会话
	if prev := h.presence.Lookup(player.ID); prev != nil && prev.ConnID != client.GetConnID() {
		log.Printf("🔁 玩家 %s 的连接 %s 顶替旧会话 %s", player.Name, client.GetConnID(), prev.ConnID)
	}
	h.presence.Bind(player.ID, player.Name, boundRoom.Code, client.GetConnID())

	client.SendMessage(protocol.MustNewMessage(protocol.MsgRoomJoined, protocol.RoomJoinedPayload{
		Room:    boundRoom.Info(),
		Player:  boundRoom.GetPlayerInfo(player.ID),
		Players: boundRoom.GetAllPlayersInfo(),
	}))
}
