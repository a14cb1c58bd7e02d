package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glasnost-games/world-summit/internal/game/room"
	"github.com/glasnost-games/world-summit/internal/protocol"
	"github.com/glasnost-games/world-summit/internal/server/storage"
)

// newAPIServer wires just the pieces the REST layer needs.
func newAPIServer(t *testing.T) (*Server, *http.ServeMux) {
	t.Helper()

	s := &Server{
		roomManager: room.NewTestManager(),
		gameStore:   storage.NewMemoryGameStore(),
	}
	s.roomManager.OnRoomClosed = func(code string) {
		_ = s.gameStore.DeleteGame(context.Background(), code)
	}

	mux := http.NewServeMux()
	s.registerAPIRoutes(mux)
	return s, mux
}

func doJSON(t *testing.T, mux *http.ServeMux, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func TestAPI_CreateGame(t *testing.T) {
	t.Parallel()

	s, mux := newAPIServer(t)

	rec := doJSON(t, mux, http.MethodPost, "/api/games", createGameRequest{
		Name:     "summit",
		HostName: "alice",
		Password: "secret",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp gameResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp.Room.Code, 6)
	assert.True(t, resp.Room.HasPassword)
	assert.Equal(t, "alice", resp.Player.Name)
	assert.True(t, resp.Player.IsHost)
	assert.Len(t, resp.Players, 1)

	// A game record is persisted alongside the live room
	record, err := s.gameStore.GetGame(context.Background(), resp.Room.Code)
	require.NoError(t, err)
	require.NotNil(t, record)
	assert.Equal(t, "summit", record.Name)
	assert.True(t, record.HasPassword)
}

func TestAPI_CreateGame_Invalid(t *testing.T) {
	t.Parallel()

	_, mux := newAPIServer(t)

	rec := doJSON(t, mux, http.MethodPost, "/api/games", createGameRequest{Name: "no host"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	req := httptest.NewRequest(http.MethodPost, "/api/games", strings.NewReader("{not json"))
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestAPI_JoinGame(t *testing.T) {
	t.Parallel()

	_, mux := newAPIServer(t)

	rec := doJSON(t, mux, http.MethodPost, "/api/games", createGameRequest{
		Name: "summit", HostName: "alice",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	var created gameResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))

	rec = doJSON(t, mux, http.MethodPost, "/api/games/"+created.Room.Code+"/join", joinGameRequest{
		PlayerName: "bob",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var joined gameResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &joined))
	assert.Equal(t, "bob", joined.Player.Name)
	assert.False(t, joined.Player.IsHost)
	assert.Len(t, joined.Players, 2)
}

func TestAPI_JoinGame_Errors(t *testing.T) {
	t.Parallel()

	_, mux := newAPIServer(t)

	rec := doJSON(t, mux, http.MethodPost, "/api/games", createGameRequest{
		Name: "summit", HostName: "alice", Password: "secret",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	var created gameResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))

	// Unknown room
	rec = doJSON(t, mux, http.MethodPost, "/api/games/ZZZZZZ/join", joinGameRequest{PlayerName: "bob"})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// Wrong password
	rec = doJSON(t, mux, http.MethodPost, "/api/games/"+created.Room.Code+"/join", joinGameRequest{
		PlayerName: "bob", Password: "nope",
	})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// Duplicate name
	rec = doJSON(t, mux, http.MethodPost, "/api/games/"+created.Room.Code+"/join", joinGameRequest{
		PlayerName: "alice", Password: "secret",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)
	var apiErr apiError
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &apiErr))
	assert.Equal(t, protocol.ErrCodeDuplicateName, apiErr.Code)
}

func TestAPI_ListGames(t *testing.T) {
	t.Parallel()

	_, mux := newAPIServer(t)

	rec := doJSON(t, mux, http.MethodGet, "/api/games", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "[]\n", rec.Body.String())

	doJSON(t, mux, http.MethodPost, "/api/games", createGameRequest{Name: "summit", HostName: "alice"})

	rec = doJSON(t, mux, http.MethodGet, "/api/games", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var rooms []protocol.RoomInfo
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rooms))
	require.Len(t, rooms, 1)
	assert.Equal(t, "alice", rooms[0].HostName)
}

func TestAPI_GetGame(t *testing.T) {
	t.Parallel()

	_, mux := newAPIServer(t)

	rec := doJSON(t, mux, http.MethodPost, "/api/games", createGameRequest{Name: "summit", HostName: "alice"})
	require.Equal(t, http.StatusCreated, rec.Code)
	var created gameResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))

	rec = doJSON(t, mux, http.MethodGet, "/api/games/"+created.Room.Code, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, mux, http.MethodGet, "/api/games/ZZZZZZ", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAPI_GetGame_FallsBackToGameRecord(t *testing.T) {
	t.Parallel()

	s, mux := newAPIServer(t)

	mr := miniredis.RunT(t)
	s.redisStore = storage.NewRedisStore(redis.NewClient(&redis.Options{Addr: mr.Addr()}))

	ctx := context.Background()

	// A started game whose room is no longer in the in-memory registry
	require.NoError(t, s.gameStore.CreateGame(ctx, &storage.GameRecord{
		Code: "ABC234", Name: "summit", HostName: "alice", Language: "ru",
		MaxPlayers: 8, CreatedAt: time.Now(),
	}))
	require.NoError(t, s.gameStore.MarkStarted(ctx, "ABC234"))

	require.NoError(t, s.redisStore.SaveRoom(ctx, "ABC234", &storage.RoomData{
		Code: "ABC234", Name: "summit", Phase: "started", MaxPlayers: 8,
		Players: []storage.PlayerData{
			{ID: "p1", Name: "alice", Status: "active", IsHost: true, Country: "Россия"},
		},
	}))

	rec := doJSON(t, mux, http.MethodGet, "/api/games/ABC234", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Room    protocol.RoomInfo     `json:"room"`
		Players []protocol.PlayerInfo `json:"players"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "summit", resp.Room.Name)
	assert.Equal(t, "started", resp.Room.Phase)
	require.Len(t, resp.Players, 1)
	assert.Equal(t, "alice", resp.Players[0].Name)
	assert.Equal(t, "Россия", resp.Players[0].Country)
}

func TestPruneStaleGameRecords(t *testing.T) {
	t.Parallel()

	store := storage.NewMemoryGameStore()
	ctx := context.Background()

	require.NoError(t, store.CreateGame(ctx, &storage.GameRecord{Code: "AAA234", Name: "left over", CreatedAt: time.Now()}))
	require.NoError(t, store.CreateGame(ctx, &storage.GameRecord{Code: "BBB234", Name: "also left", CreatedAt: time.Now()}))
	require.NoError(t, store.CreateGame(ctx, &storage.GameRecord{Code: "CCC234", Name: "history", CreatedAt: time.Now()}))
	require.NoError(t, store.MarkStarted(ctx, "CCC234"))

	assert.Equal(t, 2, pruneStaleGameRecords(ctx, store))

	gone, err := store.GetGame(ctx, "AAA234")
	require.NoError(t, err)
	assert.Nil(t, gone)

	// Started games stay as history
	kept, err := store.GetGame(ctx, "CCC234")
	require.NoError(t, err)
	require.NotNil(t, kept)
	assert.True(t, kept.Started)
}
