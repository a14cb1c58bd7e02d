package server

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"runtime"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"

	"github.com/glasnost-games/world-summit/internal/config"
	"github.com/glasnost-games/world-summit/internal/game/room"
	"github.com/glasnost-games/world-summit/internal/server/handler"
	"github.com/glasnost-games/world-summit/internal/server/presence"
	"github.com/glasnost-games/world-summit/internal/server/storage"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // 来源校验在 handleWebSocket 里由 OriginChecker 完成
	},
	EnableCompression: false,
}

// Server 大厅服务器
type Server struct {
	config      *config.Config
	redis       *redis.Client
	redisStore  *storage.RedisStore
	gameStore   storage.GameStore
	roomManager *room.RoomManager
	presence    *presence.Tracker
	clients     map[string]*Client // connID -> client
	clientsMu   sync.RWMutex
	handler     *handler.Handler

	// 安全组件
	rateLimiter    *RateLimiter
	originChecker  *OriginChecker
	messageLimiter *MessageRateLimiter
	chatLimiter    *ChatRateLimiter
	ipFilter       *IPFilter

	// 连接控制
	maxConnections int
	semaphore      chan struct{} // 信号量控制并发连接数

	// 维护模式
	maintenanceMode bool
	maintenanceMu   sync.RWMutex
}

// NewServer 创建服务器实例
func NewServer(cfg *config.Config) (*Server, error) {
	// 初始化 Redis 客户端
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	// 测试 Redis 连接
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis 连接失败: %w", err)
	}

	// 游戏记录存储：配置了 Postgres 用 Postgres，否则退化为内存存储
	var gameStore storage.GameStore
	if cfg.Postgres.DSN != "" {
		pgStore, err := storage.NewPostgresGameStore(cfg.Postgres.DSN)
		if err != nil {
			return nil, fmt.Errorf("postgres 连接失败: %w", err)
		}
		gameStore = pgStore
		log.Printf("🐘 游戏记录存储: Postgres")
	} else {
		gameStore = storage.NewMemoryGameStore()
		log.Printf("💾 游戏记录存储: 内存（未配置 Postgres DSN）")
	}

	// 房间注册表只存在于内存，上个进程留下的未开始记录已无对应房间
	if n := pruneStaleGameRecords(ctx, gameStore); n > 0 {
		log.Printf("🧹 已清理 %d 条失效的游戏记录", n)
	}

	s := &Server{
		config:     cfg,
		redis:      rdb,
		redisStore: storage.NewRedisStore(rdb),
		gameStore:  gameStore,
		clients:    make(map[string]*Client),
		// 初始化安全组件
		rateLimiter: NewRateLimiter(
			cfg.Security.RateLimit.MaxPerSecond,
			cfg.Security.RateLimit.MaxPerMinute,
			cfg.Security.RateLimit.BanDurationTime(),
		),
		originChecker:  NewOriginChecker(cfg.Security.AllowedOrigins),
		messageLimiter: NewMessageRateLimiter(cfg.Security.MessageLimit.MaxPerSecond),
		chatLimiter: NewChatRateLimiter(
			cfg.Security.ChatLimit.MaxPerSecond,
			cfg.Security.ChatLimit.MaxPerMinute,
			cfg.Security.ChatLimit.CooldownDuration(),
		),
		ipFilter: NewIPFilter(),
		// 初始化连接控制
		maxConnections: cfg.Server.MaxConnections,
		semaphore:      make(chan struct{}, cfg.Server.MaxConnections),
	}

	// 初始化房间管理器
	s.roomManager = room.NewRoomManager(s.redisStore, cfg.Lobby.RoomTimeoutDuration(), cfg.Lobby.MaxChatLength)
	s.roomManager.OnRoomClosed = func(code string) {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.gameStore.DeleteGame(ctx, code); err != nil {
			log.Printf("⚠️ 删除游戏记录 %s 失败: %v", code, err)
		}
	}

	// 初始化在线状态跟踪器，心跳超时的玩家走断线流程
	s.presence = presence.NewTracker(s.redisStore, cfg.Lobby.PresenceTTLDuration(), cfg.Lobby.PresenceSweepDuration())
	s.presence.OnExpire = func(playerID, roomCode string) {
		if client := s.GetClientByPlayerID(playerID); client != nil {
			client.Close()
		}
	}

	// 初始化消息处理器
	s.handler = handler.NewHandler(handler.Deps{
		Server:      s,
		RoomManager: s.roomManager,
		Presence:    s.presence,
		ChatLimiter: s.chatLimiter,
		GameStore:   s.gameStore,
	})

	log.Printf("🔒 安全配置: 连接限制=%d/s, 消息限制=%d/s, 聊天限制=%d/s, 最大连接数=%d",
		cfg.Security.RateLimit.MaxPerSecond, cfg.Security.MessageLimit.MaxPerSecond,
		cfg.Security.ChatLimit.MaxPerSecond, cfg.Server.MaxConnections)

	return s, nil
}

// pruneStaleGameRecords 删除没有对应内存房间的未开始游戏记录，返回删除数量
// 已开始的记录保留作为历史
func pruneStaleGameRecords(ctx context.Context, store storage.GameStore) int {
	stale, err := store.ListOpenGames(ctx)
	if err != nil {
		log.Printf("⚠️ 读取游戏记录失败: %v", err)
		return 0
	}

	for _, record := range stale {
		if err := store.DeleteGame(ctx, record.Code); err != nil {
			log.Printf("⚠️ 删除游戏记录 %s 失败: %v", record.Code, err)
		}
	}
	return len(stale)
}

// Start 启动服务器
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port)

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.HandleFunc("/health", s.handleHealth)
	s.registerAPIRoutes(mux)

	// 启动监控 goroutine
	go s.monitorStats()

	log.Printf("🚀 服务器启动在 ws://%s/ws (CPU核心数: %d)", addr, runtime.NumCPU())
	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second, // 防止 Slowloris 攻击
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return server.ListenAndServe()
}
