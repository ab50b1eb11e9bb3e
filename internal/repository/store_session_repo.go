package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/hitoshi/salesnav/internal/metrics"
	"github.com/hitoshi/salesnav/internal/model"
	"github.com/hitoshi/salesnav/internal/store"
)

// コンパイル時にインターフェース実装を検証する。
var _ SessionRepository = (*StoreSessionRepo)(nil)

// StoreSessionRepo はトークンとキャッシュ済みユーザーをストアの2つのキーに保存するリポジトリ。
type StoreSessionRepo struct {
	store   store.Store
	metrics metrics.MetricsCollector
}

// NewStoreSessionRepo はStoreSessionRepoを生成する。
func NewStoreSessionRepo(s store.Store, m metrics.MetricsCollector) *StoreSessionRepo {
	if m == nil {
		m = metrics.NopCollector{}
	}
	return &StoreSessionRepo{store: s, metrics: m}
}

// Get はトークンとキャッシュ済みユーザーを返す。
func (r *StoreSessionRepo) Get(ctx context.Context) (string, *model.User, error) {
	var token string
	ok, err := r.decode(ctx, store.KeyAuthToken, &token)
	if err != nil {
		return "", nil, err
	}
	if !ok {
		token = ""
	}

	var user model.User
	ok, err = r.decode(ctx, store.KeyUserData, &user)
	if err != nil {
		return "", nil, err
	}
	if !ok || user.ID == "" {
		return token, nil, nil
	}
	return token, &user, nil
}

// Save はトークンと資格情報を除いたユーザーを保存する。
func (r *StoreSessionRepo) Save(ctx context.Context, token string, user model.User) error {
	tokenData, err := json.Marshal(token)
	if err != nil {
		return fmt.Errorf("failed to encode token: %w", err)
	}
	userData, err := json.Marshal(user.Public())
	if err != nil {
		return fmt.Errorf("failed to encode user: %w", err)
	}

	if err := r.store.Set(ctx, store.KeyAuthToken, tokenData); err != nil {
		return fmt.Errorf("failed to save token: %w", err)
	}
	if err := r.store.Set(ctx, store.KeyUserData, userData); err != nil {
		return fmt.Errorf("failed to save user: %w", err)
	}
	return nil
}

// Delete はトークンとキャッシュ済みユーザーを削除する。
func (r *StoreSessionRepo) Delete(ctx context.Context) error {
	if err := r.store.Remove(ctx, store.KeyAuthToken); err != nil {
		return fmt.Errorf("failed to remove token: %w", err)
	}
	if err := r.store.Remove(ctx, store.KeyUserData); err != nil {
		return fmt.Errorf("failed to remove user: %w", err)
	}
	return nil
}

// decode は指定キーの値をデコードする。存在しない、またはデコードできない場合はfalseを返す。
func (r *StoreSessionRepo) decode(ctx context.Context, key string, v any) (bool, error) {
	raw, ok, err := r.store.Get(ctx, key)
	if err != nil {
		return false, fmt.Errorf("failed to load %s: %w", key, err)
	}
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(raw, v); err != nil {
		slog.Warn("stored session value is not decodable, treating as absent",
			slog.String("key", key),
			slog.String("error", err.Error()),
		)
		r.metrics.RecordDecodeFailure(key)
		return false, nil
	}
	return true, nil
}
