package repository

import (
	"context"

	"github.com/hitoshi/salesnav/internal/metrics"
	"github.com/hitoshi/salesnav/internal/model"
	"github.com/hitoshi/salesnav/internal/store"
)

// コンパイル時にインターフェース実装を検証する。
var _ LeadRepository = (*StoreLeadRepo)(nil)

// StoreLeadRepo はキーバリューストアを使用したリードリポジトリ。
type StoreLeadRepo struct {
	c *collection[model.Lead]
}

// NewStoreLeadRepo はStoreLeadRepoを生成する。
func NewStoreLeadRepo(s store.Store, m metrics.MetricsCollector) *StoreLeadRepo {
	return &StoreLeadRepo{c: newCollection[model.Lead](s, store.KeyLeads, "leads", m)}
}

// List は全リードを作成順に返す。
func (r *StoreLeadRepo) List(ctx context.Context) ([]model.Lead, error) {
	return r.c.load(ctx)
}

// Create はリードを追加する。入力のIDと作成日時は無視して採番し直す。
func (r *StoreLeadRepo) Create(ctx context.Context, lead model.Lead) (*model.Lead, error) {
	id, createdAt, err := r.c.stamp()
	if err != nil {
		return nil, err
	}
	lead.ID = id
	lead.CreatedAt = createdAt

	if err := r.c.add(ctx, lead); err != nil {
		return nil, err
	}
	return &lead, nil
}

// Update は指定IDのリードにパッチをマージする。見つからない場合はnilを返す。
func (r *StoreLeadRepo) Update(ctx context.Context, id string, patch model.LeadPatch) (*model.Lead, error) {
	updated, ok, err := r.c.update(ctx,
		func(l model.Lead) bool { return l.ID == id },
		patch.Apply,
	)
	if err != nil || !ok {
		return nil, err
	}
	return &updated, nil
}
