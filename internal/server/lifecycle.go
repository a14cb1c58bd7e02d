package server

import (
	"fmt"
	"log"
	"runtime"
	"time"

	"github.com/glasnost-games/world-summit/internal/protocol"
)

// monitorStats 定期监控服务器状态
func (s *Server) monitorStats() {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for range ticker.C {
		var m runtime.MemStats
		runtime.ReadMemStats(&m)

		onlineCount := s.GetOnlineCount()
		goroutines := runtime.NumGoroutine()
		activeConns := len(s.semaphore)

		log.Printf("📊 [监控] 在线: %d | Goroutines: %d | 活跃连接: %d/%d | 内存: %.2f MB",
			onlineCount,
			goroutines,
			activeConns,
			s.maxConnections,
			float64(m.Alloc)/1024/1024)
	}
}

// EnterMaintenanceMode 进入维护模式
func (s *Server) EnterMaintenanceMode() {
	s.maintenanceMu.Lock()
	s.maintenanceMode = true
	s.maintenanceMu.Unlock()

	// 通知大厅用户服务器即将关闭
	s.BroadcastToLobby(protocol.NewErrorMessageWithText(
		protocol.ErrCodeServerMaintenance,
		"server entering maintenance, new rooms are disabled",
	))

	log.Println("🔧 进入维护模式：停止新连接和房间创建")
}

// IsMaintenanceMode 检查是否在维护模式
func (s *Server) IsMaintenanceMode() bool {
	s.maintenanceMu.RLock()
	defer s.maintenanceMu.RUnlock()
	return s.maintenanceMode
}

// GracefulShutdown 优雅关闭服务器
func (s *Server) GracefulShutdown(timeout time.Duration) {
	// 1. 进入维护模式
	s.EnterMaintenanceMode()

	// 2. 等待已开始的对局结束
	deadline := time.Now().Add(timeout)
	ticker := time.NewTicker(10 * time.Second)
	defer ticker.Stop()

	for time.Now().Before(deadline) {
		started := s.roomManager.GetStartedCount()
		if started == 0 {
			delay := int(s.config.Lobby.ShutdownDelayDuration().Seconds())
			log.Printf("✅ 所有对局已结束，将在 %ds 后关闭服务器！\n", delay)

			// 最终关闭通知发给所有连接，房间内的玩家也要收到
			s.Broadcast(protocol.NewErrorMessageWithText(
				protocol.ErrCodeServerMaintenance,
				fmt.Sprintf("server shutting down in %d seconds", delay),
			))

			break
		}
		log.Printf("⏳ 等待 %d 个对局结束...", started)
		<-ticker.C
	}

	// 3. 超时检查
	if started := s.roomManager.GetStartedCount(); started > 0 {
		log.Printf("⚠️ 超时，仍有 %d 个对局进行中，强制关闭", started)
	}

	// 4. 关闭服务器
	s.Shutdown()
}

// Shutdown 关闭服务器
func (s *Server) Shutdown() {
	time.Sleep(s.config.Lobby.ShutdownDelayDuration())

	// 关闭所有客户端连接
	s.clientsMu.Lock()
	for _, client := range s.clients {
		client.Close()
	}
	s.clientsMu.Unlock()

	// 关闭存储
	if closer, ok := s.gameStore.(interface{ Close() error }); ok {
		_ = closer.Close()
	}
	_ = s.redis.Close()

	log.Println("服务器已关闭")
}
