//go:build !production

package testutil

import (
	"github.com/stretchr/testify/mock"

	"github.com/glasnost-games/world-summit/internal/protocol"
)

// MockClient 实现 types.ClientInterface 的 mock
type MockClient struct {
	mock.Mock
}

func (m *MockClient) GetConnID() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockClient) GetID() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockClient) GetName() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockClient) GetRoom() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockClient) Bind(playerID, playerName, roomCode string) {
	m.Called(playerID, playerName, roomCode)
}

func (m *MockClient) Unbind() {
	m.Called()
}

func (m *MockClient) SendMessage(msg *protocol.Message) {
	m.Called(msg)
}

func (m *MockClient) Close() {
	m.Called()
}

// SimpleClient 简单的 mock 客户端，不使用 testify（用于不需要断言的测试）
type SimpleClient struct {
	ConnID   string
	ID       string
	Name     string
	RoomCode string
	Messages []*protocol.Message
	Closed   bool
}

func (m *SimpleClient) GetConnID() string { return m.ConnID }
func (m *SimpleClient) GetID() string     { return m.ID }
func (m *SimpleClient) GetName() string   { return m.Name }
func (m *SimpleClient) GetRoom() string   { return m.RoomCode }

func (m *SimpleClient) Bind(playerID, playerName, roomCode string) {
	m.ID = playerID
	m.Name = playerName
	m.RoomCode = roomCode
}

func (m *SimpleClient) Unbind() {
	m.ID = ""
	m.Name = ""
	m.RoomCode = ""
}

func (m *SimpleClient) SendMessage(msg *protocol.Message) { m.Messages = append(m.Messages, msg) }
func (m *SimpleClient) Close()                            { m.Closed = true }

// MessagesOfType 按消息类型过滤已收到的消息
func (m *SimpleClient) MessagesOfType(t protocol.MessageType) []*protocol.Message {
	var out []*protocol.Message
	for _, msg := range m.Messages {
		if msg.Type == t {
			out = append(out, msg)
		}
	}
	return out
}
