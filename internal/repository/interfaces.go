// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"

	"github.com/hitoshi/salesnav/internal/model"
)

// UserRepository は初期投入されたユーザー一覧の参照インターフェース。
// ユーザーは読み取り専用で、作成・更新は提供しない。
type UserRepository interface {
	// List は全ユーザーを保存順に返す。
	List(ctx context.Context) ([]model.User, error)

	// FindByEmail はメールアドレスが完全一致するユーザーを取得する。
	// 大文字小文字は区別する。見つからない場合はnilを返す。
	FindByEmail(ctx context.Context, email string) (*model.User, error)
}

// SessionRepository はこのデバイスのセッション（トークンとキャッシュ済みユーザー）の永続化インターフェース。
type SessionRepository interface {
	// Get はトークンとキャッシュ済みユーザーを返す。
	// それぞれ存在しない、またはデコードできない場合は空文字列・nilを返す。
	Get(ctx context.Context) (token string, user *model.User, err error)

	// Save はトークンと資格情報を除いたユーザーを保存する。
	Save(ctx context.Context, token string, user model.User) error

	// Delete はトークンとキャッシュ済みユーザーを削除する。存在しない場合も成功とする。
	Delete(ctx context.Context) error
}

// LeadRepository はリードの永続化インターフェース。
type LeadRepository interface {
	// List は全リードを作成順に返す。
	List(ctx context.Context) ([]model.Lead, error)

	// Create はIDと作成日時を採番してリードを末尾に追加し、保存後のリードを返す。
	Create(ctx context.Context, lead model.Lead) (*model.Lead, error)

	// Update は指定IDのリードにパッチをマージして保存する。
	// 見つからない場合はnilを返し、書き込みは行わない。
	Update(ctx context.Context, id string, patch model.LeadPatch) (*model.Lead, error)
}

// ClientRepository は顧客の永続化インターフェース。
type ClientRepository interface {
	List(ctx context.Context) ([]model.Client, error)
	Create(ctx context.Context, client model.Client) (*model.Client, error)
}

// EventRepository はカレンダーイベントの永続化インターフェース。
type EventRepository interface {
	List(ctx context.Context) ([]model.Event, error)
	Create(ctx context.Context, event model.Event) (*model.Event, error)
}

// ReferralRepository は紹介の永続化インターフェース。
type ReferralRepository interface {
	// List は全紹介を作成順に返す。
	List(ctx context.Context) ([]model.Referral, error)

	// Create は紹介を追加する。ステータスは常に pending で作成する。
	Create(ctx context.Context, referral model.Referral) (*model.Referral, error)

	// Update は指定IDの紹介にパッチをマージして保存する。
	// 見つからない場合はnilを返し、書き込みは行わない。
	Update(ctx context.Context, id string, patch model.ReferralPatch) (*model.Referral, error)
}
