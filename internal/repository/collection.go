package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/salesnav/internal/metrics"
	"github.com/hitoshi/salesnav/internal/store"
)

// NewID は作成順に並ぶUUIDv7文字列を生成する。
func NewID() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("failed to generate id: %w", err)
	}
	return id.String(), nil
}

// collection は1つのストアキーにJSON配列として保存されるレコード集合。
// 書き込みは常にコレクション全体の置き換えで行う。
type collection[T any] struct {
	store   store.Store
	key     string
	name    string
	metrics metrics.MetricsCollector

	now   func() time.Time
	newID func() (string, error)
}

func newCollection[T any](s store.Store, key, name string, m metrics.MetricsCollector) *collection[T] {
	if m == nil {
		m = metrics.NopCollector{}
	}
	return &collection[T]{
		store:   s,
		key:     key,
		name:    name,
		metrics: m,
		now:     time.Now,
		newID:   NewID,
	}
}

// load はコレクション全体を読み込む。
// キーが存在しない、またはデコードできない場合は空のコレクションを返す。
func (c *collection[T]) load(ctx context.Context) ([]T, error) {
	raw, ok, err := c.store.Get(ctx, c.key)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", c.name, err)
	}
	if !ok {
		return []T{}, nil
	}

	var items []T
	if err := json.Unmarshal(raw, &items); err != nil {
		slog.Warn("stored collection is not decodable, treating as empty",
			slog.String("key", c.key),
			slog.String("error", err.Error()),
		)
		c.metrics.RecordDecodeFailure(c.key)
		return []T{}, nil
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}

func (c *collection[T]) save(ctx context.Context, items []T) error {
	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", c.name, err)
	}
	if err := c.store.Set(ctx, c.key, data); err != nil {
		return fmt.Errorf("failed to save %s: %w", c.name, err)
	}
	return nil
}

// add は採番済みのレコードを末尾に追加して保存する。
func (c *collection[T]) add(ctx context.Context, item T) error {
	items, err := c.load(ctx)
	if err != nil {
		return err
	}
	if err := c.save(ctx, append(items, item)); err != nil {
		return err
	}
	c.metrics.RecordRecordAdded(c.name)
	return nil
}

// update はmatchに一致する最初のレコードをapplyで置き換えて保存する。
// 一致しない場合は書き込みを行わずfalseを返す。
func (c *collection[T]) update(ctx context.Context, match func(T) bool, apply func(T) T) (T, bool, error) {
	var zero T

	items, err := c.load(ctx)
	if err != nil {
		return zero, false, err
	}
	for i := range items {
		if !match(items[i]) {
			continue
		}
		items[i] = apply(items[i])
		if err := c.save(ctx, items); err != nil {
			return zero, false, err
		}
		c.metrics.RecordRecordUpdated(c.name)
		return items[i], true, nil
	}
	return zero, false, nil
}

// stamp は新規レコード用のIDと作成日時を返す。
func (c *collection[T]) stamp() (string, time.Time, error) {
	id, err := c.newID()
	if err != nil {
		return "", time.Time{}, err
	}
	return id, c.now().UTC(), nil
}
