package handler

import (
	"github.com/glasnost-games/world-summit/internal/apperrors"
	"github.com/glasnost-games/world-summit/internal/protocol"
	"github.com/glasnost-games/world-summit/internal/types"
)

// handleUpdatePing 处理延迟上报
// 上报本身视为心跳，刷新在线状态 TTL；越界值由管理器截断，不会失败
func (h *Handler) handleUpdatePing(client types.ClientInterface, msg *protocol.Message) {
	if client.GetRoom() == "" {
		sendError(client, apperrors.ErrNotInRoom)
		return
	}

	payload, err := protocol.ParsePayload[protocol.UpdatePingPayload](msg)
	if err != nil {
		client.SendMessage(protocol.NewErrorMessage(protocol.ErrCodeInvalidMsg))
		return
	}

	h.presence.Touch(client.GetID())
	h.roomManager.UpdatePing(client.GetRoom(), client.GetID(), payload.Ping)
}
