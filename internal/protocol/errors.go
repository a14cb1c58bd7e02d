package protocol

// 错误码
const (
	ErrCodeUnknown    = 1000
	ErrCodeInvalidMsg = 1001
	ErrCodeRateLimit  = 1002 // 速率限制

	ErrCodeRoomNotFound   = 2001
	ErrCodeRoomFull       = 2002
	ErrCodeNotInRoom      = 2003
	ErrCodeRoomStarted    = 2004 // 游戏已开始，大厅不再接受变更
	ErrCodeWrongPassword  = 2005
	ErrCodeDuplicateName  = 2006
	ErrCodePlayerNotFound = 2007

	ErrCodeForbidden             = 3001 // 仅房主可执行
	ErrCodeNotReady              = 3002 // 未满足开始条件
	ErrCodeCannotKickSelf        = 3003
	ErrCodeInsufficientCountries = 3004 // 国家池小于活跃玩家数

	ErrCodeInvalidMessage = 4001 // 聊天消息为空或超长

	ErrCodeServerMaintenance = 5003 // 服务器维护中
)

// ErrorMessages 错误码对应的消息
var ErrorMessages = map[int]string{
	ErrCodeUnknown:               "unknown error",
	ErrCodeInvalidMsg:            "invalid message format",
	ErrCodeRateLimit:             "too many requests",
	ErrCodeRoomNotFound:          "room not found",
	ErrCodeRoomFull:              "room is full",
	ErrCodeNotInRoom:             "you are not in a room",
	ErrCodeRoomStarted:           "game already started",
	ErrCodeWrongPassword:         "wrong password",
	ErrCodeDuplicateName:         "a player with this name is already in the room",
	ErrCodePlayerNotFound:        "player not found",
	ErrCodeForbidden:             "only the host can do that",
	ErrCodeNotReady:              "not all players are ready",
	ErrCodeCannotKickSelf:        "you cannot kick yourself",
	ErrCodeInsufficientCountries: "not enough countries for all players",
	ErrCodeInvalidMessage:        "message is empty or too long",
	ErrCodeServerMaintenance:     "server is under maintenance",
}
