package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/OpreaAngel-Freelance/oil/internal/repository"
	"github.com/OpreaAngel-Freelance/oil/internal/storage"
	"github.com/OpreaAngel-Freelance/oil/pkg/apperrors"
	"github.com/OpreaAngel-Freelance/oil/pkg/domain"
)

type OilService interface {
	Create(ctx context.Context, req domain.OilCreate, userID, email string) (*domain.OilResource, error)
	Get(ctx context.Context, id uuid.UUID) (*domain.OilResource, error)
	List(ctx context.Context, cursor string, limit int) (*domain.CursorPage, error)
	Update(ctx context.Context, id uuid.UUID, upd domain.OilUpdate) (*domain.OilResource, error)
	Delete(ctx context.Context, id uuid.UUID) error
	UploadURL(ctx context.Context, req domain.UploadURLRequest) (*domain.UploadURLResponse, error)
}

type oilService struct {
	repo         repository.OilRepository
	store        storage.Client
	logger       *slog.Logger
	defaultLimit int
	maxLimit     int
}

// NewOilService builds the oil business service. store may be nil when object
// storage is not configured; upload and document deletion become no-ops.
func NewOilService(repo repository.OilRepository, store storage.Client, logger *slog.Logger, defaultLimit, maxLimit int) OilService {
	if logger == nil {
		logger = slog.Default()
	}
	if defaultLimit <= 0 {
		defaultLimit = 50
	}
	if maxLimit <= 0 {
		maxLimit = 100
	}
	return &oilService{repo: repo, store: store, logger: logger, defaultLimit: defaultLimit, maxLimit: maxLimit}
}

func (s *oilService) Create(ctx context.Context, req domain.OilCreate, userID, email string) (*domain.OilResource, error) {
	ctx, span := otel.Tracer("oil/service").Start(ctx, "oil.create",
		trace.WithAttributes(attribute.String("oil.user_id", userID)),
	)
	defer span.End()

	if err := req.Validate(); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, apperrors.BadRequest(err.Error())
	}

	oil := &domain.OilResource{
		ID:          uuid.New(),
		Date:        req.Date,
		Price:       req.Price,
		Type:        req.Type,
		DocumentURL: req.DocumentURL,
		UserID:      userID,
		Email:       email,
	}
	if err := s.repo.Create(ctx, oil); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("create oil resource: %w", err)
	}

	s.logger.Info("created oil resource", "id", oil.ID, "date", oil.Date, "userId", userID)
	return oil, nil
}

func (s *oilService) Get(ctx context.Context, id uuid.UUID) (*domain.OilResource, error) {
	oil, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, mapRepoErr(id, err)
	}
	return oil, nil
}

func (s *oilService) List(ctx context.Context, cursor string, limit int) (*domain.CursorPage, error) {
	if limit <= 0 {
		limit = s.defaultLimit
	}
	if limit > s.maxLimit {
		limit = s.maxLimit
	}
	page, err := s.repo.List(ctx, cursor, limit)
	if err != nil {
		if strings.Contains(err.Error(), "invalid cursor") {
			return nil, apperrors.BadRequest("invalid 'cursor'")
		}
		return nil, fmt.Errorf("list oil resources: %w", err)
	}
	return page, nil
}

func (s *oilService) Update(ctx context.Context, id uuid.UUID, upd domain.OilUpdate) (*domain.OilResource, error) {
	if err := upd.Validate(); err != nil {
		return nil, apperrors.BadRequest(err.Error())
	}
	oil, err := s.repo.Update(ctx, id, upd)
	if err != nil {
		return nil, mapRepoErr(id, err)
	}
	s.logger.Info("updated oil resource", "id", id)
	return oil, nil
}

func (s *oilService) Delete(ctx context.Context, id uuid.UUID) error {
	ctx, span := otel.Tracer("oil/service").Start(ctx, "oil.delete",
		trace.WithAttributes(attribute.String("oil.id", id.String())),
	)
	defer span.End()

	oil, err := s.repo.Delete(ctx, id)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return mapRepoErr(id, err)
	}

	// Remove the associated document after the record is gone.
	if oil.DocumentURL != "" && s.store != nil {
		key, kerr := documentKey(oil.DocumentURL)
		if kerr != nil {
			s.logger.Warn("skipping document cleanup", "id", id, "err", kerr)
		} else if derr := s.store.DeleteFile(ctx, key); derr != nil {
			span.RecordError(derr)
			span.SetStatus(codes.Error, derr.Error())
			return apperrors.Internal(derr.Error())
		}
	}

	s.logger.Info("deleted oil resource", "id", id)
	return nil
}

func (s *oilService) UploadURL(ctx context.Context, req domain.UploadURLRequest) (*domain.UploadURLResponse, error) {
	if s.store == nil {
		return nil, apperrors.ServiceUnavailable("object storage is not configured")
	}
	resp, err := s.store.GetUploadURL(ctx, req.Key, req.Metadata)
	if err != nil {
		return nil, apperrors.Internal(err.Error())
	}
	s.logger.Info("generated upload url", "key", resp.Key)
	return resp, nil
}

// documentKey extracts the storage key from a public document URL: the URL
// path without its leading slash.
func documentKey(documentURL string) (string, error) {
	u, err := url.Parse(documentURL)
	if err != nil {
		return "", fmt.Errorf("parse document url: %w", err)
	}
	key := strings.TrimPrefix(u.Path, "/")
	if key == "" {
		return "", fmt.Errorf("document url %q has no key", documentURL)
	}
	return key, nil
}

func mapRepoErr(id uuid.UUID, err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return apperrors.NotFound(fmt.Sprintf("oil resource with id %s not found", id))
	}
	return err
}
