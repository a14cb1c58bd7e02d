package server

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/glasnost-games/world-summit/internal/apperrors"
	"github.com/glasnost-games/world-summit/internal/game/room"
	"github.com/glasnost-games/world-summit/internal/protocol"
	"github.com/glasnost-games/world-summit/internal/server/storage"
)

// registerAPIRoutes 注册 REST 路由
// 创建/加入走 REST 拿到 player_id，随后客户端用 join_game_room 绑定 WebSocket
func (s *Server) registerAPIRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/games", s.handleListGames)
	mux.HandleFunc("POST /api/games", s.handleCreateGame)
	mux.HandleFunc("GET /api/games/{code}", s.handleGetGame)
	mux.HandleFunc("POST /api/games/{code}/join", s.handleJoinGame)
}

// createGameRequest 创建房间请求
type createGameRequest struct {
	Name       string `json:"name"`
	HostName   string `json:"host_name"`
	Password   string `json:"password,omitempty"`
	Language   string `json:"language,omitempty"`
	MaxPlayers int    `json:"max_players,omitempty"`
}

// joinGameRequest 加入房间请求
type joinGameRequest struct {
	PlayerName string `json:"player_name"`
	Password   string `json:"password,omitempty"`
}

// gameResponse 创建/加入响应：房间信息 + 本人记录 + 当前名册
type gameResponse struct {
	Room    protocol.RoomInfo     `json:"room"`
	Player  protocol.PlayerInfo   `json:"player"`
	Players []protocol.PlayerInfo `json:"players"`
}

type apiError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeAPIError 将大厅错误映射为 HTTP 响应
func writeAPIError(w http.ResponseWriter, err error) {
	var lobbyErr *apperrors.LobbyError
	if !errors.As(err, &lobbyErr) {
		writeJSON(w, http.StatusInternalServerError, apiError{
			Code:    protocol.ErrCodeUnknown,
			Message: "internal error",
		})
		return
	}

	status := http.StatusBadRequest
	switch {
	case errors.Is(err, apperrors.ErrRoomNotFound):
		status = http.StatusNotFound
	case errors.Is(err, apperrors.ErrWrongPassword), errors.Is(err, apperrors.ErrForbidden):
		status = http.StatusForbidden
	case errors.Is(err, apperrors.ErrRoomFull), errors.Is(err, apperrors.ErrDuplicateName),
		errors.Is(err, apperrors.ErrRoomStarted):
		status = http.StatusConflict
	}

	writeJSON(w, status, apiError{Code: lobbyErr.Code, Message: lobbyErr.Message})
}

// handleListGames 列出可加入的房间
func (s *Server) handleListGames(w http.ResponseWriter, r *http.Request) {
	rooms := s.roomManager.GetRoomList()
	if rooms == nil {
		rooms = []protocol.RoomInfo{}
	}
	writeJSON(w, http.StatusOK, rooms)
}

// handleCreateGame 创建房间
func (s *Server) handleCreateGame(w http.ResponseWriter, r *http.Request) {
	if s.IsMaintenanceMode() {
		writeJSON(w, http.StatusServiceUnavailable, apiError{
			Code:    protocol.ErrCodeServerMaintenance,
			Message: protocol.ErrorMessages[protocol.ErrCodeServerMaintenance],
		})
		return
	}

	var req createGameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, apiError{
			Code:    protocol.ErrCodeInvalidMsg,
			Message: "invalid request body",
		})
		return
	}

	newRoom, host, err := s.roomManager.CreateRoom(room.CreateConfig{
		Name:       req.Name,
		HostName:   req.HostName,
		Password:   req.Password,
		Language:   req.Language,
		MaxPlayers: req.MaxPlayers,
	})
	if err != nil {
		writeAPIError(w, err)
		return
	}

	// 游戏记录落库失败不影响已创建的房间
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()
	info := newRoom.Info()
	if err := s.gameStore.CreateGame(ctx, &storage.GameRecord{
		Code:        info.Code,
		Name:        info.Name,
		HostName:    info.HostName,
		Language:    info.Language,
		HasPassword: info.HasPassword,
		MaxPlayers:  info.MaxPlayers,
		CreatedAt:   time.Unix(info.CreatedAt, 0),
	}); err != nil {
		log.Printf("⚠️ 保存游戏记录 %s 失败: %v", info.Code, err)
	}

	writeJSON(w, http.StatusCreated, gameResponse{
		Room:    info,
		Player:  newRoom.GetPlayerInfo(host.ID),
		Players: newRoom.GetAllPlayersInfo(),
	})
}

// handleGetGame 查询单个房间
// 不在内存注册表里的房间退回持久化记录（例如进程重启后仍被查询的历史对局）
func (s *Server) handleGetGame(w http.ResponseWriter, r *http.Request) {
	code := r.PathValue("code")

	if target := s.roomManager.GetRoom(code); target != nil {
		writeJSON(w, http.StatusOK, struct {
			Room    protocol.RoomInfo     `json:"room"`
			Players []protocol.PlayerInfo `json:"players"`
		}{
			Room:    target.Info(),
			Players: target.GetAllPlayersInfo(),
		})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	record, err := s.gameStore.GetGame(ctx, code)
	if err != nil || record == nil {
		writeAPIError(w, apperrors.ErrRoomNotFound)
		return
	}

	info := protocol.RoomInfo{
		Code:        record.Code,
		Name:        record.Name,
		HostName:    record.HostName,
		HasPassword: record.HasPassword,
		Language:    record.Language,
		MaxPlayers:  record.MaxPlayers,
		Phase:       string(room.PhaseLobby),
		CreatedAt:   record.CreatedAt.Unix(),
	}
	if record.Started {
		info.Phase = string(room.PhaseStarted)
	}

	// 名册来自最后一次 Redis 快照（可能已过期）
	players := []protocol.PlayerInfo{}
	if s.redisStore != nil {
		if snapshot, err := s.redisStore.LoadRoom(ctx, code); err == nil && snapshot != nil {
			info.Phase = snapshot.Phase
			info.CurrentPlayers = len(snapshot.Players)
			for _, p := range snapshot.Players {
				players = append(players, protocol.PlayerInfo{
					ID:            p.ID,
					Name:          p.Name,
					Status:        p.Status,
					IsHost:        p.IsHost,
					IsReady:       p.IsReady,
					Ping:          p.Ping,
					Country:       p.Country,
					CountryFlag:   p.CountryFlag,
					AttackTroops:  p.AttackTroops,
					DefenseTroops: p.DefenseTroops,
				})
			}
		}
	}

	writeJSON(w, http.StatusOK, struct {
		Room    protocol.RoomInfo     `json:"room"`
		Players []protocol.PlayerInfo `json:"players"`
	}{
		Room:    info,
		Players: players,
	})
}

// handleJoinGame 加入房间，返回的 player.id 用于后续 WebSocket 绑定
func (s *Server) handleJoinGame(w http.ResponseWriter, r *http.Request) {
	code := r.PathValue("code")

	var req joinGameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, apiError{
			Code:    protocol.ErrCodeInvalidMsg,
			Message: "invalid request body",
		})
		return
	}

	joined, player, err := s.roomManager.Join(code, req.PlayerName, req.Password)
	if err != nil {
		writeAPIError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, gameResponse{
		Room:    joined.Info(),
		Player:  joined.GetPlayerInfo(player.ID),
		Players: joined.GetAllPlayersInfo(),
	})
}
