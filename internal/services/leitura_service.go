package services

import (
	"context"
	"errors"
	"fmt"

	"leituras-platform/internal/cache"
	"leituras-platform/internal/models"
	"leituras-platform/internal/repository"
	"leituras-platform/pkg/logging"
	"leituras-platform/pkg/metrics"
)

// LeituraService enforces the validation contract and delegates persistence
// to the repository. Errors cross its boundary as typed values: a
// models.ValidationError, a repository.NotFoundError, or an InternalError
// wrapping an unexpected store failure.
type LeituraService struct {
	repo    repository.LeituraRepository
	cache   *cache.QueryCache
	logger  *logging.StructuredLogger
	metrics *metrics.Collector
}

// NewLeituraService creates a new reading service
func NewLeituraService(repo repository.LeituraRepository, queryCache *cache.QueryCache, logger *logging.StructuredLogger, metricsCollector *metrics.Collector) *LeituraService {
	return &LeituraService{
		repo:    repo,
		cache:   queryCache,
		logger:  logger,
		metrics: metricsCollector,
	}
}

// cacheKey derives the query identifier for a list filter.
func cacheKey(filter repository.ListFilter) string {
	if filter.Local != nil {
		return "leituras?local=" + *filter.Local
	}
	return "leituras"
}

// List returns all readings, optionally narrowed by exact-match local.
// Results are served through the query cache; any mutation invalidates it.
func (s *LeituraService) List(ctx context.Context, filter repository.ListFilter) ([]*models.Leitura, error) {
	key := cacheKey(filter)

	if leituras, ok := s.cache.Get(key); ok {
		s.metrics.CacheHitsTotal.Inc()
		return leituras, nil
	}
	s.metrics.CacheMissesTotal.Inc()

	leituras, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, s.internal("list", err)
	}

	s.cache.Set(key, leituras)
	return leituras, nil
}

// GetByID returns the reading with that identifier, or a NotFoundError.
func (s *LeituraService) GetByID(ctx context.Context, id int64) (*models.Leitura, error) {
	leitura, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, s.classify("get", err)
	}
	return leitura, nil
}

// Create validates the payload and persists a new reading. Validation runs
// before any store call; the store assigns the identifier.
func (s *LeituraService) Create(ctx context.Context, input *models.LeituraInput) (*models.Leitura, error) {
	if err := input.Validate(); err != nil {
		s.recordValidationFailure(err)
		s.metrics.RecordOperation("create", "invalid")
		return nil, err
	}

	leitura := input.ToLeitura()
	if err := s.repo.Create(ctx, leitura); err != nil {
		s.metrics.RecordOperation("create", "error")
		return nil, s.internal("create", err)
	}

	s.cache.Invalidate()
	s.metrics.RecordOperation("create", "success")

	s.logger.Info(ctx, "[LEITURA_CREATED] Reading created", logging.Fields{
		"id":    leitura.ID,
		"local": leitura.Local,
		"tipo":  leitura.Tipo,
	})

	return leitura, nil
}

// Update replaces all fields of an existing reading. Existence is checked
// before the payload is validated, so an absent id reports NotFound even for
// an invalid body.
func (s *LeituraService) Update(ctx context.Context, id int64, input *models.LeituraInput) (*models.Leitura, error) {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		s.metrics.RecordOperation("update", "not_found")
		return nil, s.classify("update", err)
	}

	if err := input.Validate(); err != nil {
		s.recordValidationFailure(err)
		s.metrics.RecordOperation("update", "invalid")
		return nil, err
	}

	leitura := input.ToLeitura()
	leitura.ID = id
	if err := s.repo.Update(ctx, leitura); err != nil {
		s.metrics.RecordOperation("update", "error")
		return nil, s.classify("update", err)
	}

	s.cache.Invalidate()
	s.metrics.RecordOperation("update", "success")

	return leitura, nil
}

// PartialUpdate merges only the provided fields into an existing reading.
func (s *LeituraService) PartialUpdate(ctx context.Context, id int64, patch *models.LeituraPatch) (*models.Leitura, error) {
	leitura, err := s.repo.GetByID(ctx, id)
	if err != nil {
		s.metrics.RecordOperation("patch", "not_found")
		return nil, s.classify("patch", err)
	}

	if err := patch.Validate(); err != nil {
		s.recordValidationFailure(err)
		s.metrics.RecordOperation("patch", "invalid")
		return nil, err
	}

	patch.Apply(leitura)
	if err := s.repo.Update(ctx, leitura); err != nil {
		s.metrics.RecordOperation("patch", "error")
		return nil, s.classify("patch", err)
	}

	s.cache.Invalidate()
	s.metrics.RecordOperation("patch", "success")

	return leitura, nil
}

// Delete removes a reading. Deleting an absent id is NotFound, not a no-op.
func (s *LeituraService) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		s.metrics.RecordOperation("delete", "error")
		return s.classify("delete", err)
	}

	s.cache.Invalidate()
	s.metrics.RecordOperation("delete", "success")

	s.logger.Info(ctx, "[LEITURA_DELETED] Reading deleted", logging.Fields{
		"id": id,
	})

	return nil
}

// HealthCheck reports store health.
func (s *LeituraService) HealthCheck(ctx context.Context) error {
	return s.repo.HealthCheck(ctx)
}

// classify passes NotFoundError through and wraps everything else.
func (s *LeituraService) classify(op string, err error) error {
	var notFound *repository.NotFoundError
	if errors.As(err, &notFound) {
		return notFound
	}
	return s.internal(op, err)
}

func (s *LeituraService) internal(op string, err error) error {
	s.logger.Error(context.Background(), "[SERVICE_STORE_ERROR] Store operation failed", logging.Fields{
		"operation": op,
	}, err)
	return &InternalError{Op: op, Err: err}
}

func (s *LeituraService) recordValidationFailure(err error) {
	var verr *models.ValidationError
	if errors.As(err, &verr) {
		s.metrics.RecordValidationFailure(verr.Field)
	}
}

// InternalError represents an unexpected store failure, reported once and
// never retried by the service.
type InternalError struct {
	Op  string
	Err error
}

func (e *InternalError) Error() string {
	return fmt.Sprintf("internal failure during %s: %v", e.Op, e.Err)
}

func (e *InternalError) Unwrap() error {
	return e.Err
}

func (e *InternalError) IsTransient() bool {
	return true
}
