package server

import (
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/glasnost-games/world-summit/internal/protocol"
)

const (
	// 写入超时
	writeWait = 10 * time.Second

	// 读取超时（pong 等待时间）
	pongWait = 60 * time.Second

	// ping 发送间隔（必须小于 pongWait）
	pingPeriod = (pongWait * 9) / 10

	// 消息最大大小
	maxMessageSize = 4096
)

// Client 代表一条 WebSocket 连接
// 通过 join_game_room 绑定到 (房间, 玩家)，绑定前只能发 ping
type Client struct {
	ConnID string // 连接唯一 ID
	IP     string // 客户端 IP 地址

	playerID   string
	playerName string
	roomCode   string

	server *Server
	conn   *websocket.Conn
	send   chan []byte

	mu     sync.RWMutex
	closed bool
}

// NewClient 创建新客户端
func NewClient(s *Server, conn *websocket.Conn) *Client {
	return &Client{
		ConnID: uuid.New().String(),
		server: s,
		conn:   conn,
		send:   make(chan []byte, 256),
	}
}

// ReadPump 从 WebSocket 读取消息
func (c *Client) ReadPump() {
	defer func() {
		c.handleDisconnect()
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("读取错误: %v", err)
			}
			break
		}

		// 消息速率限制检查
		allowed, warning := c.server.messageLimiter.AllowMessage(c.ConnID)
		if !allowed {
			log.Printf("⚠️ 客户端 %s (IP: %s) 消息过于频繁", c.ConnID, c.IP)
			c.SendMessage(protocol.NewErrorMessage(protocol.ErrCodeRateLimit))
			if c.server.messageLimiter.GetWarningCount(c.ConnID) > 5 {
				log.Printf("🚫 客户端 %s 因多次超速被断开连接", c.ConnID)
				break
			}
			continue
		}
		if warning {
			c.SendMessage(protocol.NewErrorMessageWithText(protocol.ErrCodeRateLimit, "slow down"))
		}

		msg, err := protocol.Decode(message)
		if err != nil {
			log.Printf("消息解析错误: %v", err)
			c.SendMessage(protocol.NewErrorMessage(protocol.ErrCodeInvalidMsg))
			continue
		}

		c.server.handler.Handle(c, msg)
	}
}

// WritePump 向 WebSocket 写入消息
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// 通道已关闭
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			if err := w.Close(); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// SendMessage 发送消息给客户端
func (c *Client) SendMessage(msg *protocol.Message) {
	c.mu.RLock()
	if c.closed {
		c.mu.RUnlock()
		return
	}
	c.mu.RUnlock()

	data, err := msg.Encode()
	if err != nil {
		log.Printf("消息编码错误: %v", err)
		return
	}

	select {
	case c.send <- data:
	default:
		// 发送缓冲区已满，关闭连接
		log.Printf("客户端 %s 发送缓冲区已满", c.ConnID)
		c.Close()
	}
}

// handleDisconnect 处理断开连接
func (c *Client) handleDisconnect() {
	// 房间内的玩家只标记断线，记录保留给重连
	c.server.roomManager.Disconnect(c)

	if playerID := c.GetID(); playerID != "" {
		c.server.presence.Unbind(playerID)
	}

	c.server.messageLimiter.ClearRateLimit(c.ConnID)
	c.server.chatLimiter.RemoveClient(c.ConnID)
	c.server.unregisterClient(c)
}

// Close 关闭客户端连接
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

// GetConnID 获取连接 ID
func (c *Client) GetConnID() string {
	return c.ConnID
}

// GetID 获取绑定的玩家 ID，未绑定为空
func (c *Client) GetID() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.playerID
}

// GetName 获取绑定的玩家昵称
func (c *Client) GetName() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.playerName
}

// GetRoom 获取当前所在房间号
func (c *Client) GetRoom() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.roomCode
}

// Bind 绑定到 (房间, 玩家)
func (c *Client) Bind(playerID, playerName, roomCode string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.playerID = playerID
	c.playerName = playerName
	c.roomCode = roomCode
}

// Unbind 解除绑定
func (c *Client) Unbind() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.playerID = ""
	c.playerName = ""
	c.roomCode = ""
}
