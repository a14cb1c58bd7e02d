package apperrors

import (
	"github.com/glasnost-games/world-summit/internal/protocol"
)

// LobbyError 大厅错误（携带协议错误码）
type LobbyError struct {
	Code    int
	Message string
}

func (e *LobbyError) Error() string {
	return e.Message
}

// 预定义错误
var (
	ErrRoomNotFound          = &LobbyError{Code: protocol.ErrCodeRoomNotFound, Message: "room not found"}
	ErrRoomFull              = &LobbyError{Code: protocol.ErrCodeRoomFull, Message: "room is full"}
	ErrNotInRoom             = &LobbyError{Code: protocol.ErrCodeNotInRoom, Message: "you are not in a room"}
	ErrRoomStarted           = &LobbyError{Code: protocol.ErrCodeRoomStarted, Message: "game already started"}
	ErrWrongPassword         = &LobbyError{Code: protocol.ErrCodeWrongPassword, Message: "wrong password"}
	ErrDuplicateName         = &LobbyError{Code: protocol.ErrCodeDuplicateName, Message: "a player with this name is already in the room"}
	ErrPlayerNotFound        = &LobbyError{Code: protocol.ErrCodePlayerNotFound, Message: "player not found"}
	ErrForbidden             = &LobbyError{Code: protocol.ErrCodeForbidden, Message: "only the host can do that"}
	ErrNotReady              = &LobbyError{Code: protocol.ErrCodeNotReady, Message: "not all players are ready"}
	ErrCannotKickSelf        = &LobbyError{Code: protocol.ErrCodeCannotKickSelf, Message: "you cannot kick yourself"}
	ErrInvalidMessage        = &LobbyError{Code: protocol.ErrCodeInvalidMessage, Message: "message is empty or too long"}
	ErrInsufficientCountries = &LobbyError{Code: protocol.ErrCodeInsufficientCountries, Message: "not enough countries for all players"}
	ErrInvalidConfig         = &LobbyError{Code: protocol.ErrCodeInvalidMsg, Message: "invalid room config"}
)
