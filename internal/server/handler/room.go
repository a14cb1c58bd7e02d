package handler

import (
	"context"
	"log"
	"time"

	"github.com/glasnost-games/world-summit/internal/apperrors"
	"github.com/glasnost-games/world-summit/internal/protocol"
	"github.com/glasnost-games/world-summit/internal/types"
)

// handleLeaveRoom 处理显式离开房间
func (h *Handler) handleLeaveRoom(client types.ClientInterface) {
	if playerID := client.GetID(); playerID != "" {
		h.presence.Unbind(playerID)
	}
	h.roomManager.Leave(client)
}

// handlePlayerReady 处理准备状态切换
func (h *Handler) handlePlayerReady(client types.ClientInterface, msg *protocol.Message) {
	if client.GetRoom() == "" {
		sendError(client, apperrors.ErrNotInRoom)
		return
	}

	payload, err := protocol.ParsePayload[protocol.PlayerReadyRequestPayload](msg)
	if err != nil {
		client.SendMessage(protocol.NewErrorMessage(protocol.ErrCodeInvalidMsg))
		return
	}

	if err := h.roomManager.SetReady(client.GetRoom(), client.GetID(), payload.IsReady); err != nil {
		sendError(client, err)
	}
}

// handleKickPlayer 处理踢人（仅房主）
func (h *Handler) handleKickPlayer(client types.ClientInterface, msg *protocol.Message) {
	if client.GetRoom() == "" {
		sendError(client, apperrors.ErrNotInRoom)
		return
	}

	payload, err := protocol.ParsePayload[protocol.KickPlayerPayload](msg)
	if err != nil || payload.PlayerID == "" {
		client.SendMessage(protocol.NewErrorMessage(protocol.ErrCodeInvalidMsg))
		return
	}

	if err := h.roomManager.Kick(client.GetRoom(), client.GetID(), payload.PlayerID); err != nil {
		sendError(client, err)
		return
	}

	h.presence.Unbind(payload.PlayerID)
}

// handleStartGame 处理开始游戏（仅房主），成功后标记持久化记录
func (h *Handler) handleStartGame(client types.ClientInterface) {
	roomCode := client.GetRoom()
	if roomCode == "" {
		sendError(client, apperrors.ErrNotInRoom)
		return
	}

	if err := h.roomManager.Start(roomCode, client.GetID()); err != nil {
		sendError(client, err)
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := h.gameStore.MarkStarted(ctx, roomCode); err != nil {
			log.Printf("⚠️ 标记游戏 %s 已开始失败: %v", roomCode, err)
		}
	}()
}
