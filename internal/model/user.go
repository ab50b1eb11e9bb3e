// Package model はドメインモデルを定義する。
package model

import "time"

// Role はユーザーの権限区分を表す。
type Role string

const (
	// RoleAdmin は管理者ロール。設定画面へのアクセスを持つ。
	RoleAdmin Role = "admin"
	// RoleSales は営業担当ロール。
	RoleSales Role = "sales"
)

// User はツールを利用する営業チームのメンバーを表す。
// 初回起動時にシードされ、以後は読み取り専用として扱う。
type User struct {
	ID       string `json:"id" yaml:"id"`
	Email    string `json:"email" yaml:"email"`
	Password string `json:"password,omitempty" yaml:"password"`
	Name     string `json:"name" yaml:"name"`
	Role     Role   `json:"role" yaml:"role"`
	Team     string `json:"team" yaml:"team"`
}

// Public は資格情報を取り除いたコピーを返す。
// セッションにキャッシュするユーザーや呼び出し元に返すユーザーはこの形にする。
func (u User) Public() User {
	u.Password = ""
	return u
}

// IsAdmin は管理者ロールかどうかを返す。
func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// Session はこのデバイスと認証済みユーザーの紐付けを表す。
// 同時に存在するセッションは0件または1件のみ。
type Session struct {
	UserID   string
	IssuedAt time.Time
}
