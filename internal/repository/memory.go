package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/OpreaAngel-Freelance/oil/pkg/domain"
)

// MemoryOilRepository is an in-memory repository used in dev mode and tests.
// Ordering matches the postgres implementation: ascending by id.
type MemoryOilRepository struct {
	mu    sync.RWMutex
	items map[uuid.UUID]domain.OilResource
}

func NewMemoryOilRepository() *MemoryOilRepository {
	return &MemoryOilRepository{items: make(map[uuid.UUID]domain.OilResource)}
}

func (r *MemoryOilRepository) Create(_ context.Context, oil *domain.OilResource) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now().UTC()
	oil.CreatedAt = now
	oil.UpdatedAt = now
	r.items[oil.ID] = *oil
	return nil
}

func (r *MemoryOilRepository) Get(_ context.Context, id uuid.UUID) (*domain.OilResource, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	oil, ok := r.items[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &oil, nil
}

func (r *MemoryOilRepository) Update(_ context.Context, id uuid.UUID, upd domain.OilUpdate) (*domain.OilResource, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	oil, ok := r.items[id]
	if !ok {
		return nil, ErrNotFound
	}
	if upd.Date != nil {
		oil.Date = *upd.Date
	}
	if upd.Price != nil {
		oil.Price = *upd.Price
	}
	if upd.Type != nil {
		oil.Type = *upd.Type
	}
	if upd.DocumentURL != nil {
		oil.DocumentURL = *upd.DocumentURL
	}
	if !upd.Empty() {
		oil.UpdatedAt = time.Now().UTC()
	}
	r.items[id] = oil
	return &oil, nil
}

func (r *MemoryOilRepository) Delete(_ context.Context, id uuid.UUID) (*domain.OilResource, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	oil, ok := r.items[id]
	if !ok {
		return nil, ErrNotFound
	}
	delete(r.items, id)
	return &oil, nil
}

func (r *MemoryOilRepository) List(_ context.Context, cursor string, limit int) (*domain.CursorPage, error) {
	if limit <= 0 {
		limit = 50
	}
	var after uuid.UUID
	haveCursor := cursor != ""
	if haveCursor {
		parsed, err := uuid.Parse(cursor)
		if err != nil {
			return nil, fmt.Errorf("invalid cursor: %w", err)
		}
		after = parsed
	}

	r.mu.RLock()
	all := make([]domain.OilResource, 0, len(r.items))
	for _, oil := range r.items {
		if haveCursor && oil.ID.String() <= after.String() {
			continue
		}
		all = append(all, oil)
	}
	r.mu.RUnlock()

	sort.Slice(all, func(i, j int) bool {
		return all[i].ID.String() < all[j].ID.String()
	})

	page := &domain.CursorPage{Limit: limit}
	if len(all) > limit {
		page.Items = all[:limit]
		page.NextCursor = all[limit-1].ID.String()
	} else {
		page.Items = all
	}
	return page, nil
}

func (r *MemoryOilRepository) Ping(context.Context) error { return nil }

func (r *MemoryOilRepository) Close() {}
