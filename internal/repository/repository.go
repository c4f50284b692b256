// Package repository adapts entities to backing store rows and keeps a
// short-lived read cache per entity.
package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"linkdesk/internal/cache"
	"linkdesk/internal/domain"
	"linkdesk/internal/metrics"
	"linkdesk/internal/storage"
)

// Entity is a record with a store-assigned id.
type Entity interface {
	EntityID() string
}

// codec converts between an entity and its row shape.
type codec[T Entity] struct {
	toRow   func(T) (storage.Row, error)
	fromRow func(storage.Row) (T, error)
}

// Repository provides cached reads and cache-invalidating writes for one table.
type Repository[T Entity] struct {
	store   storage.Store
	table   string
	orderBy string
	cache   *cache.TTL[[]T]
	codec   codec[T]
	metrics *metrics.Metrics
	log     logrus.FieldLogger
}

func newRepository[T Entity](store storage.Store, table, orderBy string, c *cache.TTL[[]T], cd codec[T], m *metrics.Metrics, logger logrus.FieldLogger) *Repository[T] {
	if c == nil {
		c = cache.New[[]T](cache.DefaultTTL)
	}
	return &Repository[T]{
		store:   store,
		table:   table,
		orderBy: orderBy,
		cache:   c,
		codec:   cd,
		metrics: m,
		log:     logger.WithFields(logrus.Fields{"component": "repository", "table": table}),
	}
}

// FetchAll returns every entity ordered by the table's sort key. A cached list
// younger than the cache TTL is returned unless forceRefresh is set. On failure
// the cache is left untouched. A list whose read overlapped a write is returned
// but not cached.
func (r *Repository[T]) FetchAll(ctx context.Context, forceRefresh bool) ([]T, error) {
	if !forceRefresh {
		if items, ok := r.cache.Get(); ok {
			r.log.Debug("Serving list from cache")
			r.metrics.CacheLookup(r.table, "hit")
			return items, nil
		}
		r.metrics.CacheLookup(r.table, "miss")
	} else {
		r.metrics.CacheLookup(r.table, "bypass")
	}

	gen := r.cache.Generation()
	rows, err := r.store.Select(ctx, r.table, r.orderBy)
	r.metrics.StoreOp(r.table, "select", err)
	if err != nil {
		r.log.WithError(err).Error("Failed to fetch rows")
		return nil, r.storeError("select", err)
	}

	items := make([]T, 0, len(rows))
	for _, row := range rows {
		item, err := r.codec.fromRow(row)
		if err != nil {
			r.log.WithError(err).WithField("id", row.ID()).Error("Failed to decode row")
			return nil, r.storeError("select", err)
		}
		items = append(items, item)
	}

	if !r.cache.SetIfGeneration(gen, items) {
		r.log.Debug("Discarding list fetched across a write")
	}
	r.log.WithField("count", len(items)).Info("Fetched rows from store")
	return items, nil
}

// Add inserts entity (its id is ignored) and returns it with the store id.
func (r *Repository[T]) Add(ctx context.Context, entity T) (T, error) {
	var zero T
	row, err := r.codec.toRow(entity)
	if err != nil {
		return zero, fmt.Errorf("encode %s row: %w", r.table, err)
	}

	inserted, err := r.store.Insert(ctx, r.table, row)
	r.metrics.StoreOp(r.table, "insert", err)
	if err != nil {
		r.log.WithError(err).Error("Failed to insert row")
		return zero, r.storeError("insert", err)
	}
	r.cache.Invalidate()

	out, err := r.codec.fromRow(inserted)
	if err != nil {
		return zero, r.storeError("insert", err)
	}
	r.log.WithField("id", out.EntityID()).Info("Row inserted")
	return out, nil
}

// Update replaces the row keyed by entity's id.
func (r *Repository[T]) Update(ctx context.Context, entity T) (T, error) {
	var zero T
	id := entity.EntityID()
	if id == "" {
		return zero, r.storeError("update", domain.ErrNotFound)
	}
	row, err := r.codec.toRow(entity)
	if err != nil {
		return zero, fmt.Errorf("encode %s row: %w", r.table, err)
	}

	updated, err := r.store.Update(ctx, r.table, id, row)
	r.metrics.StoreOp(r.table, "update", err)
	if err != nil {
		r.log.WithError(err).WithField("id", id).Error("Failed to update row")
		if errors.Is(err, storage.ErrNotFound) {
			err = domain.ErrNotFound
		}
		return zero, r.storeError("update", err)
	}
	r.cache.Invalidate()

	out, err := r.codec.fromRow(updated)
	if err != nil {
		return zero, r.storeError("update", err)
	}
	r.log.WithField("id", id).Info("Row updated")
	return out, nil
}

// Delete removes the row keyed by id. Unknown ids are not an error.
func (r *Repository[T]) Delete(ctx context.Context, id string) error {
	err := r.store.Delete(ctx, r.table, id)
	r.metrics.StoreOp(r.table, "delete", err)
	if err != nil {
		r.log.WithError(err).WithField("id", id).Error("Failed to delete row")
		return r.storeError("delete", err)
	}
	r.cache.Invalidate()
	r.log.WithField("id", id).Info("Row deleted")
	return nil
}

func (r *Repository[T]) storeError(op string, err error) error {
	return &domain.StoreError{Op: op, Table: r.table, Err: err}
}
