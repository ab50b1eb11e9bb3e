package repository

import (
	"context"

	"github.com/hitoshi/salesnav/internal/metrics"
	"github.com/hitoshi/salesnav/internal/model"
	"github.com/hitoshi/salesnav/internal/store"
)

// コンパイル時にインターフェース実装を検証する。
var _ UserRepository = (*StoreUserRepo)(nil)

// StoreUserRepo はキーバリューストアに初期投入されたユーザー一覧を参照するリポジトリ。
type StoreUserRepo struct {
	c *collection[model.User]
}

// NewStoreUserRepo はStoreUserRepoを生成する。
func NewStoreUserRepo(s store.Store, m metrics.MetricsCollector) *StoreUserRepo {
	return &StoreUserRepo{c: newCollection[model.User](s, store.KeyUsers, "users", m)}
}

// List は全ユーザーを返す。資格情報は含んだまま返す。
func (r *StoreUserRepo) List(ctx context.Context) ([]model.User, error) {
	return r.c.load(ctx)
}

// FindByEmail はメールアドレスが完全一致するユーザーを取得する。
func (r *StoreUserRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	users, err := r.c.load(ctx)
	if err != nil {
		return nil, err
	}
	for i := range users {
		if users[i].Email == email {
			u := users[i]
			return &u, nil
		}
	}
	return nil, nil
}
