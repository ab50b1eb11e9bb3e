package repository

import (
	"context"

	"github.com/hitoshi/salesnav/internal/metrics"
	"github.com/hitoshi/salesnav/internal/model"
	"github.com/hitoshi/salesnav/internal/store"
)

// コンパイル時にインターフェース実装を検証する。
var _ ClientRepository = (*StoreClientRepo)(nil)

// StoreClientRepo はキーバリューストアを使用した顧客リポジトリ。
type StoreClientRepo struct {
	c *collection[model.Client]
}

// NewStoreClientRepo はStoreClientRepoを生成する。
func NewStoreClientRepo(s store.Store, m metrics.MetricsCollector) *StoreClientRepo {
	return &StoreClientRepo{c: newCollection[model.Client](s, store.KeyClients, "clients", m)}
}

func (r *StoreClientRepo) List(ctx context.Context) ([]model.Client, error) {
	return r.c.load(ctx)
}

func (r *StoreClientRepo) Create(ctx context.Context, client model.Client) (*model.Client, error) {
	id, createdAt, err := r.c.stamp()
	if err != nil {
		return nil, err
	}
	client.ID = id
	client.CreatedAt = createdAt

	if err := r.c.add(ctx, client); err != nil {
		return nil, err
	}
	return &client, nil
}
