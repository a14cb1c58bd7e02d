package handler

import (
	"github.com/glasnost-games/world-summit/internal/apperrors"
	"github.com/glasnost-games/world-summit/internal/protocol"
	"github.com/glasnost-games/world-summit/internal/types"
)

// handleSendMessage 处理聊天消息
func (h *Handler) handleSendMessage(client types.ClientInterface, msg *protocol.Message) {
	if client.GetRoom() == "" {
		sendError(client, apperrors.ErrNotInRoom)
		return
	}

	// 聊天速率限制
	if allowed, reason := h.chatLimiter.AllowChat(client.GetConnID()); !allowed {
		client.SendMessage(protocol.NewErrorMessageWithText(protocol.ErrCodeRateLimit, reason))
		return
	}

	payload, err := protocol.ParsePayload[protocol.SendMessagePayload](msg)
	if err != nil {
		client.SendMessage(protocol.NewErrorMessage(protocol.ErrCodeInvalidMsg))
		return
	}

	if err := h.roomManager.SendChat(client.GetRoom(), client.GetID(), payload.Message, payload.TargetPlayerID); err != nil {
		sendError(client, err)
	}
}
