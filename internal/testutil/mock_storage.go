//go:build !production

package testutil

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/glasnost-games/world-summit/internal/server/storage"
)

// MockGameStore 游戏记录存储 mock
type MockGameStore struct {
	mock.Mock
}

func (m *MockGameStore) CreateGame(ctx context.Context, record *storage.GameRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockGameStore) GetGame(ctx context.Context, code string) (*storage.GameRecord, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*storage.GameRecord), args.Error(1)
}

func (m *MockGameStore) ListOpenGames(ctx context.Context) ([]*storage.GameRecord, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*storage.GameRecord), args.Error(1)
}

func (m *MockGameStore) MarkStarted(ctx context.Context, code string) error {
	args := m.Called(ctx, code)
	return args.Error(0)
}

func (m *MockGameStore) DeleteGame(ctx context.Context, code string) error {
	args := m.Called(ctx, code)
	return args.Error(0)
}
