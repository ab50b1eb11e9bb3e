package database

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// Open はデバイス上のSQLiteデータベースファイルを開く。
// pathにはファイルパスを指定する（例: "salesnav.db"）。
// sql.Openは接続を試行しないため、実際の接続確認にはdb.Ping()を使用すること。
func Open(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", dsn(path))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLiteは単一ライターのため、接続を1本に絞って書き込み競合を避ける。
	db.SetMaxOpenConns(1)

	return db, nil
}

func dsn(path string) string {
	return path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
}
