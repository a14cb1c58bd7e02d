package storage

import (
	"context"
	"sort"
	"sync"
	"time"
)

// GameRecord 持久化的游戏记录
type GameRecord struct {
	Code        string
	Name        string
	HostName    string
	Language    string
	HasPassword bool
	MaxPlayers  int
	Started     bool
	CreatedAt   time.Time
	StartedAt   *time.Time
}

// GameStore 游戏记录存储接口
// 大厅核心只消费这个接口，具体实现可以是 Postgres 或内存
type GameStore interface {
	CreateGame(ctx context.Context, record *GameRecord) error
	GetGame(ctx context.Context, code string) (*GameRecord, error)
	ListOpenGames(ctx context.Context) ([]*GameRecord, error)
	MarkStarted(ctx context.Context, code string) error
	DeleteGame(ctx context.Context, code string) error
}

// MemoryGameStore 内存实现（未配置 Postgres 时使用，也用于测试）
type MemoryGameStore struct {
	mu      sync.RWMutex
	records map[string]*GameRecord
}

// NewMemoryGameStore 创建内存游戏记录存储
func NewMemoryGameStore() *MemoryGameStore {
	return &MemoryGameStore{records: make(map[string]*GameRecord)}
}

func (s *MemoryGameStore) CreateGame(_ context.Context, record *GameRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	clone := *record
	s.records[record.Code] = &clone
	return nil
}

func (s *MemoryGameStore) GetGame(_ context.Context, code string) (*GameRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	record, ok := s.records[code]
	if !ok {
		return nil, nil
	}
	clone := *record
	return &clone, nil
}

func (s *MemoryGameStore) ListOpenGames(_ context.Context) ([]*GameRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*GameRecord
	for _, record := range s.records {
		if !record.Started {
			clone := *record
			result = append(result, &clone)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result, nil
}

func (s *MemoryGameStore) MarkStarted(_ context.Context, code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if record, ok := s.records[code]; ok {
		record.Started = true
		now := time.Now()
		record.StartedAt = &now
	}
	return nil
}

func (s *MemoryGameStore) DeleteGame(_ context.Context, code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, code)
	return nil
}
