// Package store はデバイス上に永続化されるキーバリューストアを提供する。
// 値はバイト列として保持し、エンコード形式の解釈は呼び出し側が行う。
package store

import "context"

// 論理キー。すべてのコレクション値はJSON配列として保存される。
const (
	KeyAuthToken = "vm_auth_token"
	KeyUserData  = "vm_user_data"
	KeyLeads     = "vm_leads"
	KeyClients   = "vm_clients"
	KeyEvents    = "vm_events"
	KeyReferrals = "vm_referrals"
	KeyUsers     = "vm_users"
)

// Store はキーバリューの永続化層を定義する。
// 存在しないキーのGetは (nil, false, nil) を返す。
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
	Remove(ctx context.Context, key string) error

	// SeedIfEmpty は認証トークンが存在しない場合に限り、defaults のうち
	// まだ存在しないキーだけを書き込む。既存の値は上書きしない。
	SeedIfEmpty(ctx context.Context, defaults map[string][]byte) error
}
