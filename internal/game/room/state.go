package room

// Phase 房间阶段
type Phase string

const (
	PhaseLobby   Phase = "lobby"   // 大厅，接受加入/准备
	PhaseStarted Phase = "started" // 已开始，终态（游戏核心接管）
)

// PlayerStatus 玩家连接状态
type PlayerStatus string

const (
	StatusActive       PlayerStatus = "active"
	StatusObserver     PlayerStatus = "observer"
	StatusDisconnected PlayerStatus = "disconnected"
)
