package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/OpreaAngel-Freelance/oil/pkg/domain"
)

const schema = `
CREATE TABLE IF NOT EXISTS oil (
    id               UUID PRIMARY KEY,
    date             DATE NOT NULL,
    price            DOUBLE PRECISION NOT NULL,
    type             TEXT NOT NULL,
    oil_document_url TEXT NOT NULL DEFAULT '',
    user_id          TEXT NOT NULL,
    email            TEXT NOT NULL,
    created_at       TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at       TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS oil_date_idx ON oil (date);
`

const oilColumns = `id, to_char(date, 'YYYY-MM-DD'), price, type, oil_document_url, user_id, email, created_at, updated_at`

// PostgresOilRepository stores oil resources in PostgreSQL via a pgx pool.
type PostgresOilRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresOilRepository(ctx context.Context, databaseURL string) (*PostgresOilRepository, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	return &PostgresOilRepository{pool: pool}, nil
}

// Pool exposes the underlying pool for metrics collection.
func (r *PostgresOilRepository) Pool() *pgxpool.Pool {
	return r.pool
}

// Migrate creates the oil table when it does not exist yet.
func (r *PostgresOilRepository) Migrate(ctx context.Context) error {
	_, err := r.pool.Exec(ctx, schema)
	return err
}

func (r *PostgresOilRepository) Create(ctx context.Context, oil *domain.OilResource) error {
	now := time.Now().UTC()
	oil.CreatedAt = now
	oil.UpdatedAt = now
	_, err := r.pool.Exec(ctx,
		`INSERT INTO oil (id, date, price, type, oil_document_url, user_id, email, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		oil.ID, oil.Date, oil.Price, oil.Type, oil.DocumentURL, oil.UserID, oil.Email, oil.CreatedAt, oil.UpdatedAt,
	)
	return err
}

func (r *PostgresOilRepository) Get(ctx context.Context, id uuid.UUID) (*domain.OilResource, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+oilColumns+` FROM oil WHERE id = $1`, id)
	return scanOil(row)
}

func (r *PostgresOilRepository) Update(ctx context.Context, id uuid.UUID, upd domain.OilUpdate) (*domain.OilResource, error) {
	sets := make([]string, 0, 5)
	args := make([]any, 0, 6)
	add := func(col string, v any) {
		args = append(args, v)
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
	}
	if upd.Date != nil {
		add("date", *upd.Date)
	}
	if upd.Price != nil {
		add("price", *upd.Price)
	}
	if upd.Type != nil {
		add("type", *upd.Type)
	}
	if upd.DocumentURL != nil {
		add("oil_document_url", *upd.DocumentURL)
	}
	if len(sets) == 0 {
		return r.Get(ctx, id)
	}
	add("updated_at", time.Now().UTC())
	args = append(args, id)

	query := fmt.Sprintf(`UPDATE oil SET %s WHERE id = $%d RETURNING `+oilColumns,
		strings.Join(sets, ", "), len(args))
	row := r.pool.QueryRow(ctx, query, args...)
	return scanOil(row)
}

func (r *PostgresOilRepository) Delete(ctx context.Context, id uuid.UUID) (*domain.OilResource, error) {
	row := r.pool.QueryRow(ctx, `DELETE FROM oil WHERE id = $1 RETURNING `+oilColumns, id)
	return scanOil(row)
}

func (r *PostgresOilRepository) List(ctx context.Context, cursor string, limit int) (*domain.CursorPage, error) {
	if limit <= 0 {
		limit = 50
	}

	var (
		rows pgx.Rows
		err  error
	)
	if cursor == "" {
		rows, err = r.pool.Query(ctx,
			`SELECT `+oilColumns+` FROM oil ORDER BY id LIMIT $1`, limit+1)
	} else {
		after, perr := uuid.Parse(cursor)
		if perr != nil {
			return nil, fmt.Errorf("invalid cursor: %w", perr)
		}
		rows, err = r.pool.Query(ctx,
			`SELECT `+oilColumns+` FROM oil WHERE id > $1 ORDER BY id LIMIT $2`, after, limit+1)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]domain.OilResource, 0, limit)
	for rows.Next() {
		oil, serr := scanOil(rows)
		if serr != nil {
			return nil, serr
		}
		items = append(items, *oil)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	page := &domain.CursorPage{Items: items, Limit: limit}
	if len(items) > limit {
		page.Items = items[:limit]
		page.NextCursor = items[limit-1].ID.String()
	}
	return page, nil
}

func (r *PostgresOilRepository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

func (r *PostgresOilRepository) Close() {
	r.pool.Close()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOil(row rowScanner) (*domain.OilResource, error) {
	var oil domain.OilResource
	err := row.Scan(&oil.ID, &oil.Date, &oil.Price, &oil.Type, &oil.DocumentURL,
		&oil.UserID, &oil.Email, &oil.CreatedAt, &oil.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &oil, nil
}
