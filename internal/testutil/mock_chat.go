//go:build !production

package testutil

import "github.com/stretchr/testify/mock"

// MockChatLimiter 聊天限制器 mock
type MockChatLimiter struct {
	mock.Mock
}

func (m *MockChatLimiter) AllowChat(clientID string) (allowed bool, reason string) {
	args := m.Called(clientID)
	return args.Bool(0), args.String(1)
}

func (m *MockChatLimiter) RemoveClient(clientID string) {
	m.Called(clientID)
}

// OpenChatLimiter 放行一切的聊天限制器
type OpenChatLimiter struct{}

func (OpenChatLimiter) AllowChat(string) (bool, string) { return true, "" }
func (OpenChatLimiter) RemoveClient(string)             {}
