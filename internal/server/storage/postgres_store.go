package storage

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"

	_ "github.com/lib/pq"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// PostgresGameStore Postgres 游戏记录存储
type PostgresGameStore struct {
	conn *sql.DB
}

// NewPostgresGameStore 连接 Postgres 并执行迁移
func NewPostgresGameStore(dsn string) (*PostgresGameStore, error) {
	conn, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if err := conn.Ping(); err != nil {
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	store := &PostgresGameStore{conn: conn}
	if err := store.migrate(); err != nil {
		return nil, err
	}
	return store, nil
}

// Close 关闭数据库连接
func (s *PostgresGameStore) Close() error {
	return s.conn.Close()
}

func (s *PostgresGameStore) migrate() error {
	entries, err := migrationsFS.ReadDir("migrations")
	if err != nil {
		return fmt.Errorf("reading migrations dir: %w", err)
	}

	for _, entry := range entries {
		content, err := migrationsFS.ReadFile("migrations/" + entry.Name())
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", entry.Name(), err)
		}
		if _, err := s.conn.Exec(string(content)); err != nil {
			return fmt.Errorf("running migration %s: %w", entry.Name(), err)
		}
	}
	return nil
}

func (s *PostgresGameStore) CreateGame(ctx context.Context, record *GameRecord) error {
	_, err := s.conn.ExecContext(ctx, `
		INSERT INTO games (code, name, host_name, language, has_password, max_players, started, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, false, $7)
	`, record.Code, record.Name, record.HostName, record.Language, record.HasPassword,
		record.MaxPlayers, record.CreatedAt)
	if err != nil {
		return fmt.Errorf("creating game record: %w", err)
	}
	return nil
}

func (s *PostgresGameStore) GetGame(ctx context.Context, code string) (*GameRecord, error) {
	row := s.conn.QueryRowContext(ctx, `
		SELECT code, name, host_name, language, has_password, max_players, started, created_at, started_at
		FROM games WHERE code = $1
	`, code)

	record, err := scanGameRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return record, err
}

func (s *PostgresGameStore) ListOpenGames(ctx context.Context) ([]*GameRecord, error) {
	rows, err := s.conn.QueryContext(ctx, `
		SELECT code, name, host_name, language, has_password, max_players, started, created_at, started_at
		FROM games WHERE started = false ORDER BY created_at
	`)
	if err != nil {
		return nil, fmt.Errorf("listing open games: %w", err)
	}
	defer rows.Close()

	var result []*GameRecord
	for rows.Next() {
		record, err := scanGameRecord(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, record)
	}
	return result, rows.Err()
}

func (s *PostgresGameStore) MarkStarted(ctx context.Context, code string) error {
	_, err := s.conn.ExecContext(ctx, `
		UPDATE games SET started = true, started_at = now() WHERE code = $1
	`, code)
	if err != nil {
		return fmt.Errorf("marking game started: %w", err)
	}
	return nil
}

func (s *PostgresGameStore) DeleteGame(ctx context.Context, code string) error {
	_, err := s.conn.ExecContext(ctx, `DELETE FROM games WHERE code = $1`, code)
	if err != nil {
		return fmt.Errorf("deleting game record: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanGameRecord(row rowScanner) (*GameRecord, error) {
	var record GameRecord
	var startedAt sql.NullTime
	err := row.Scan(&record.Code, &record.Name, &record.HostName, &record.Language,
		&record.HasPassword, &record.MaxPlayers, &record.Started, &record.CreatedAt, &startedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning game record: %w", err)
	}
	if startedAt.Valid {
		t := startedAt.Time
		record.StartedAt = &t
	}
	return &record, nil
}

var _ GameStore = (*PostgresGameStore)(nil)
var _ GameStore = (*MemoryGameStore)(nil)
