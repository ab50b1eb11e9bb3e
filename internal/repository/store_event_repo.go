package repository

import (
	"context"

	"github.com/hitoshi/salesnav/internal/metrics"
	"github.com/hitoshi/salesnav/internal/model"
	"github.com/hitoshi/salesnav/internal/store"
)

// コンパイル時にインターフェース実装を検証する。
var _ EventRepository = (*StoreEventRepo)(nil)

// StoreEventRepo はキーバリューストアを使用したイベントリポジトリ。
type StoreEventRepo struct {
	c *collection[model.Event]
}

// NewStoreEventRepo はStoreEventRepoを生成する。
func NewStoreEventRepo(s store.Store, m metrics.MetricsCollector) *StoreEventRepo {
	return &StoreEventRepo{c: newCollection[model.Event](s, store.KeyEvents, "events", m)}
}

func (r *StoreEventRepo) List(ctx context.Context) ([]model.Event, error) {
	return r.c.load(ctx)
}

func (r *StoreEventRepo) Create(ctx context.Context, event model.Event) (*model.Event, error) {
	id, createdAt, err := r.c.stamp()
	if err != nil {
		return nil, err
	}
	event.ID = id
	event.CreatedAt = createdAt

	if err := r.c.add(ctx, event); err != nil {
		return nil, err
	}
	return &event, nil
}
