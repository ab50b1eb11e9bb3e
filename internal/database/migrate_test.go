package database

import (
	"path/filepath"
	"testing"
)

func tableExists(t *testing.T, path, table string) bool {
	t.Helper()

	db, err := Open(path)
	if err != nil {
		t.Fatalf("データベースへの接続に失敗: %v", err)
	}
	defer db.Close()

	var name string
	err = db.QueryRow("SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?", table).Scan(&name)
	return err == nil && name == table
}

func TestRunMigrations_Up(t *testing.T) {
	path := filepath.Join(t.TempDir(), "migrate.db")

	if err := RunMigrations(path); err != nil {
		t.Fatalf("マイグレーション実行に失敗: %v", err)
	}

	if !tableExists(t, path, "kv") {
		t.Error("kv テーブルが作成されていません")
	}
}

func TestRunMigrations_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "migrate.db")

	if err := RunMigrations(path); err != nil {
		t.Fatalf("1回目のマイグレーションに失敗: %v", err)
	}
	// 最新状態での再実行はErrNoChangeを握りつぶしてnilを返す
	if err := RunMigrations(path); err != nil {
		t.Fatalf("2回目のマイグレーションに失敗: %v", err)
	}
}

func TestRollbackMigrations_DropsTable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "migrate.db")

	if err := RunMigrations(path); err != nil {
		t.Fatalf("マイグレーション実行に失敗: %v", err)
	}
	if err := RollbackMigrations(path); err != nil {
		t.Fatalf("ロールバックに失敗: %v", err)
	}

	if tableExists(t, path, "kv") {
		t.Error("ロールバック後も kv テーブルが残っています")
	}
}
