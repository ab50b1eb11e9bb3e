package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// コンパイル時にインターフェース実装を検証する。
var _ Store = (*SQLiteStore)(nil)

// SQLiteStore はSQLiteの kv テーブルを使ったStore実装。
// テーブルは database.RunMigrations で作成済みであること。
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore はSQLiteStoreの新しいインスタンスを生成する。
func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// Get は指定キーの値を取得する。存在しない場合は (nil, false, nil) を返す。
func (s *SQLiteStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var value []byte
	err := s.db.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to get key %s: %w", key, err)
	}
	return value, true, nil
}

// Set は指定キーの値を書き込む。既存の値は置き換える。
func (s *SQLiteStore) Set(ctx context.Context, key string, value []byte) error {
	query := `
		INSERT INTO kv (key, value, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT (key) DO UPDATE SET
			value = excluded.value,
			updated_at = excluded.updated_at`

	if _, err := s.db.ExecContext(ctx, query, key, value); err != nil {
		return fmt.Errorf("failed to set key %s: %w", key, err)
	}
	return nil
}

// Remove は指定キーを削除する。存在しない場合も成功として扱う。
func (s *SQLiteStore) Remove(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM kv WHERE key = ?`, key); err != nil {
		return fmt.Errorf("failed to remove key %s: %w", key, err)
	}
	return nil
}

// SeedIfEmpty は認証トークンの有無の確認と初期値の書き込みを1トランザクションで行う。
func (s *SQLiteStore) SeedIfEmpty(ctx context.Context, defaults map[string][]byte) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin seed transaction: %w", err)
	}
	defer tx.Rollback()

	var exists int
	err = tx.QueryRowContext(ctx, `SELECT 1 FROM kv WHERE key = ?`, KeyAuthToken).Scan(&exists)
	switch {
	case err == nil:
		return nil
	case !errors.Is(err, sql.ErrNoRows):
		return fmt.Errorf("failed to check seed sentinel: %w", err)
	}

	for k, v := range defaults {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO kv (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP) ON CONFLICT (key) DO NOTHING`,
			k, v)
		if err != nil {
			return fmt.Errorf("failed to seed key %s: %w", k, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit seed transaction: %w", err)
	}
	return nil
}
