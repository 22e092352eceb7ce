package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"

	"leituras-platform/internal/models"
	"leituras-platform/pkg/database"
	"leituras-platform/pkg/logging"
	"leituras-platform/pkg/metrics"
)

// LeituraRepository provides data access for readings
type LeituraRepository interface {
	List(ctx context.Context, filter ListFilter) ([]*models.Leitura, error)
	GetByID(ctx context.Context, id int64) (*models.Leitura, error)
	Create(ctx context.Context, leitura *models.Leitura) error
	Update(ctx context.Context, leitura *models.Leitura) error
	Delete(ctx context.Context, id int64) error
	CreateBatch(ctx context.Context, leituras []*models.Leitura) error
	HealthCheck(ctx context.Context) error
}

// ListFilter defines filters for querying readings
type ListFilter struct {
	Local *string
}

// leituraRepository implements LeituraRepository
type leituraRepository struct {
	db      *database.PostgresDB
	logger  *logging.StructuredLogger
	metrics *metrics.Collector
}

// NewLeituraRepository creates a new reading repository
func NewLeituraRepository(db *database.PostgresDB, logger *logging.StructuredLogger, metricsCollector *metrics.Collector) LeituraRepository {
	return &leituraRepository{
		db:      db,
		logger:  logger,
		metrics: metricsCollector,
	}
}

// List retrieves readings, optionally narrowed by exact-match local
func (r *leituraRepository) List(ctx context.Context, filter ListFilter) ([]*models.Leitura, error) {
	query := `
		SELECT id, local, data_hora, tipo, valor, unidade
		FROM leituras
	`
	args := []interface{}{}

	if filter.Local != nil {
		query += " WHERE local = $1"
		args = append(args, *filter.Local)
	}

	query += " ORDER BY id"

	// sqlx scans into an empty non-nil slice so callers always get a sequence
	leituras := []*models.Leitura{}
	err := r.db.SelectContext(ctx, "list_leituras", &leituras, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list leituras: %w", err)
	}

	return leituras, nil
}

// GetByID retrieves a reading by identifier
func (r *leituraRepository) GetByID(ctx context.Context, id int64) (*models.Leitura, error) {
	query := `
		SELECT id, local, data_hora, tipo, valor, unidade
		FROM leituras
		WHERE id = $1
	`

	var leitura models.Leitura
	err := r.db.GetContext(ctx, "get_leitura", &leitura, query, id)

	if err == sql.ErrNoRows {
		return nil, &NotFoundError{
			Resource: "leitura",
			ID:       strconv.FormatInt(id, 10),
		}
	}

	if err != nil {
		return nil, fmt.Errorf("failed to get leitura: %w", err)
	}

	return &leitura, nil
}

// Create inserts a new reading; the store assigns the identifier
func (r *leituraRepository) Create(ctx context.Context, leitura *models.Leitura) error {
	query := `
		INSERT INTO leituras (local, data_hora, tipo, valor, unidade)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`

	err := r.db.DB().QueryRowContext(ctx, query,
		leitura.Local,
		leitura.DataHora,
		leitura.Tipo,
		leitura.Valor,
		leitura.Unidade,
	).Scan(&leitura.ID)

	if err != nil {
		r.metrics.RecordDBError("insert_error")
		return fmt.Errorf("failed to create leitura: %w", err)
	}

	r.logger.Debug(ctx, "[REPO_CREATE_LEITURA] Reading created", logging.Fields{
		"id":    leitura.ID,
		"local": leitura.Local,
		"tipo":  leitura.Tipo,
	})

	return nil
}

// Update replaces all fields of an existing reading
func (r *leituraRepository) Update(ctx context.Context, leitura *models.Leitura) error {
	query := `
		UPDATE leituras
		SET local = $1, data_hora = $2, tipo = $3, valor = $4, unidade = $5
		WHERE id = $6
	`

	result, err := r.db.ExecContext(ctx, "update_leitura", query,
		leitura.Local,
		leitura.DataHora,
		leitura.Tipo,
		leitura.Valor,
		leitura.Unidade,
		leitura.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update leitura: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if rows == 0 {
		return &NotFoundError{
			Resource: "leitura",
			ID:       strconv.FormatInt(leitura.ID, 10),
		}
	}

	return nil
}

// Delete removes a reading. Deleting an absent identifier is an error, not a
// no-op success.
func (r *leituraRepository) Delete(ctx context.Context, id int64) error {
	query := `DELETE FROM leituras WHERE id = $1`

	result, err := r.db.ExecContext(ctx, "delete_leitura", query, id)
	if err != nil {
		return fmt.Errorf("failed to delete leitura: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if rows == 0 {
		return &NotFoundError{
			Resource: "leitura",
			ID:       strconv.FormatInt(id, 10),
		}
	}

	r.logger.Debug(ctx, "[REPO_DELETE_LEITURA] Reading deleted", logging.Fields{
		"id": id,
	})

	return nil
}

// CreateBatch inserts multiple readings in a single transaction
func (r *leituraRepository) CreateBatch(ctx context.Context, leituras []*models.Leitura) error {
	if len(leituras) == 0 {
		return nil
	}

	r.metrics.SeedBatchSize.Observe(float64(len(leituras)))

	tx, err := r.db.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO leituras (local, data_hora, tipo, valor, unidade)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, leitura := range leituras {
		err := stmt.QueryRowContext(ctx,
			leitura.Local,
			leitura.DataHora,
			leitura.Tipo,
			leitura.Valor,
			leitura.Unidade,
		).Scan(&leitura.ID)
		if err != nil {
			return fmt.Errorf("failed to insert leitura: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	r.metrics.SeedRecordsTotal.Add(float64(len(leituras)))

	return nil
}

// HealthCheck performs a repository health check
func (r *leituraRepository) HealthCheck(ctx context.Context) error {
	return r.db.HealthCheck(ctx)
}

// NotFoundError represents a resource not found error
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

func (e *NotFoundError) IsTransient() bool {
	return false
}
