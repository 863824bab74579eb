package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/OpreaAngel-Freelance/oil/pkg/domain"
)

// ErrNotFound is returned when no oil resource exists for the given id.
var ErrNotFound = errors.New("oil resource not found")

// OilRepository persists oil resources. List uses keyset pagination: cursor
// is the id of the last item from the previous page, empty for the first.
type OilRepository interface {
	Create(ctx context.Context, oil *domain.OilResource) error
	Get(ctx context.Context, id uuid.UUID) (*domain.OilResource, error)
	Update(ctx context.Context, id uuid.UUID, upd domain.OilUpdate) (*domain.OilResource, error)
	Delete(ctx context.Context, id uuid.UUID) (*domain.OilResource, error)
	List(ctx context.Context, cursor string, limit int) (*domain.CursorPage, error)
	Ping(ctx context.Context) error
	Close()
}
