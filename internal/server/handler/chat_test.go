package handler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glasnost-games/world-summit/internal/game/room"
	"github.com/glasnost-games/world-summit/internal/protocol"
	"github.com/glasnost-games/world-summit/internal/server/presence"
	"github.com/glasnost-games/world-summit/internal/server/storage"
	"github.com/glasnost-games/world-summit/internal/testutil"
)

func TestHandler_SendMessage(t *testing.T) {
	t.Parallel()

	h, rm := newTestHandler(t)
	_, players, clients := boundLobby(t, h, rm, 3)

	h.Handle(clients[0], protocol.MustNewMessage(protocol.MsgSendMessage, protocol.SendMessagePayload{
		Message: "hello everyone",
	}))

	for _, c := range clients {
		msgs := c.MessagesOfType(protocol.MsgNewMessage)
		require.Len(t, msgs, 1)
		payload, err := protocol.ParsePayload[protocol.NewMessagePayload](msgs[0])
		require.NoError(t, err)
		assert.Equal(t, "hello everyone", payload.Message)
		assert.Equal(t, "public", payload.MessageType)
		assert.Equal(t, players[0].ID, payload.PlayerID)
		assert.Equal(t, "player0", payload.PlayerName)
	}
}

func TestHandler_SendMessage_Private(t *testing.T) {
	t.Parallel()

	h, rm := newTestHandler(t)
	_, players, clients := boundLobby(t, h, rm, 3)

	h.Handle(clients[0], protocol.MustNewMessage(protocol.MsgSendMessage, protocol.SendMessagePayload{
		Message:        "between us",
		TargetPlayerID: players[2].ID,
	}))

	assert.Len(t, clients[0].MessagesOfType(protocol.MsgNewMessage), 1)
	assert.Empty(t, clients[1].MessagesOfType(protocol.MsgNewMessage))
	assert.Len(t, clients[2].MessagesOfType(protocol.MsgNewMessage), 1)
}

func TestHandler_SendMessage_NotInRoom(t *testing.T) {
	t.Parallel()

	h, _ := newTestHandler(t)
	client := &testutil.SimpleClient{ConnID: "conn1"}

	h.Handle(client, protocol.MustNewMessage(protocol.MsgSendMessage, protocol.SendMessagePayload{
		Message: "hello?",
	}))
	assert.Equal(t, protocol.ErrCodeNotInRoom, lastError(t, client).Code)
}

func TestHandler_SendMessage_RateLimited(t *testing.T) {
	t.Parallel()

	srv := new(testutil.MockServer)
	srv.On("IsMaintenanceMode").Return(false).Maybe()

	limiter := new(testutil.MockChatLimiter)
	limiter.On("AllowChat", "conn0").Return(false, "sending too fast, slow down")

	rm := room.NewTestManager()
	h := NewHandler(Deps{
		Server:      srv,
		RoomManager: rm,
		Presence:    presence.NewTracker(nil, time.Hour, time.Hour),
		ChatLimiter: limiter,
		GameStore:   storage.NewMemoryGameStore(),
	})

	_, _, clients := boundLobby(t, h, rm, 2)

	h.Handle(clients[0], protocol.MustNewMessage(protocol.MsgSendMessage, protocol.SendMessagePayload{
		Message: "spam",
	}))

	errPayload := lastError(t, clients[0])
	assert.Equal(t, protocol.ErrCodeRateLimit, errPayload.Code)
	assert.Contains(t, errPayload.Message, "slow down")
	assert.Empty(t, clients[1].MessagesOfType(protocol.MsgNewMessage))
	limiter.AssertExpectations(t)
}
