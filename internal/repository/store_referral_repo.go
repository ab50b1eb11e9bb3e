package repository

import (
	"context"

	"github.com/hitoshi/salesnav/internal/metrics"
	"github.com/hitoshi/salesnav/internal/model"
	"github.com/hitoshi/salesnav/internal/store"
)

// コンパイル時にインターフェース実装を検証する。
var _ ReferralRepository = (*StoreReferralRepo)(nil)

// StoreReferralRepo はキーバリューストアを使用した紹介リポジトリ。
type StoreReferralRepo struct {
	c *collection[model.Referral]
}

// NewStoreReferralRepo はStoreReferralRepoを生成する。
func NewStoreReferralRepo(s store.Store, m metrics.MetricsCollector) *StoreReferralRepo {
	return &StoreReferralRepo{c: newCollection[model.Referral](s, store.KeyReferrals, "referrals", m)}
}

// List は全紹介を作成順に返す。
func (r *StoreReferralRepo) List(ctx context.Context) ([]model.Referral, error) {
	return r.c.load(ctx)
}

// Create は紹介を追加する。入力のステータスに関わらず pending で作成する。
func (r *StoreReferralRepo) Create(ctx context.Context, referral model.Referral) (*model.Referral, error) {
	id, createdAt, err := r.c.stamp()
	if err != nil {
		return nil, err
	}
	referral.ID = id
	referral.CreatedAt = createdAt
	referral.Status = model.ReferralStatusPending

	if err := r.c.add(ctx, referral); err != nil {
		return nil, err
	}
	return &referral, nil
}

// Update は指定IDの紹介にパッチをマージする。見つからない場合はnilを返す。
// ステータスの妥当性は呼び出し側で検証済みであること。
func (r *StoreReferralRepo) Update(ctx context.Context, id string, patch model.ReferralPatch) (*model.Referral, error) {
	updated, ok, err := r.c.update(ctx,
		func(ref model.Referral) bool { return ref.ID == id },
		patch.Apply,
	)
	if err != nil || !ok {
		return nil, err
	}
	return &updated, nil
}
