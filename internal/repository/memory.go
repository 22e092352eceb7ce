package repository

import (
	"context"
	"strconv"
	"sync"

	"leituras-platform/internal/models"
)

// MemoryRepository is a concurrency-safe in-memory LeituraRepository. It
// backs tests and local runs that have no PostgreSQL available, and mirrors
// the store contract: id assignment, NotFoundError on absent ids.
type MemoryRepository struct {
	mu       sync.RWMutex
	leituras map[int64]models.Leitura
	nextID   int64

	// FailWith, when set, is returned by every operation. Lets callers
	// exercise the internal-failure path.
	FailWith error
}

// NewMemoryRepository creates an empty in-memory repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		leituras: make(map[int64]models.Leitura),
		nextID:   1,
	}
}

// List returns readings ordered by id, optionally filtered by exact local.
func (m *MemoryRepository) List(ctx context.Context, filter ListFilter) ([]*models.Leitura, error) {
	if m.FailWith != nil {
		return nil, m.FailWith
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	result := []*models.Leitura{}
	for id := int64(1); id < m.nextID; id++ {
		l, ok := m.leituras[id]
		if !ok {
			continue
		}
		if filter.Local != nil && l.Local != *filter.Local {
			continue
		}
		copied := l
		result = append(result, &copied)
	}
	return result, nil
}

// GetByID returns the reading or a NotFoundError.
func (m *MemoryRepository) GetByID(ctx context.Context, id int64) (*models.Leitura, error) {
	if m.FailWith != nil {
		return nil, m.FailWith
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	l, ok := m.leituras[id]
	if !ok {
		return nil, &NotFoundError{Resource: "leitura", ID: strconv.FormatInt(id, 10)}
	}
	copied := l
	return &copied, nil
}

// Create stores the reading and assigns the next identifier.
func (m *MemoryRepository) Create(ctx context.Context, leitura *models.Leitura) error {
	if m.FailWith != nil {
		return m.FailWith
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	leitura.ID = m.nextID
	m.nextID++
	m.leituras[leitura.ID] = *leitura
	return nil
}

// Update replaces an existing reading.
func (m *MemoryRepository) Update(ctx context.Context, leitura *models.Leitura) error {
	if m.FailWith != nil {
		return m.FailWith
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.leituras[leitura.ID]; !ok {
		return &NotFoundError{Resource: "leitura", ID: strconv.FormatInt(leitura.ID, 10)}
	}
	m.leituras[leitura.ID] = *leitura
	return nil
}

// Delete removes a reading; an absent id is an error.
func (m *MemoryRepository) Delete(ctx context.Context, id int64) error {
	if m.FailWith != nil {
		return m.FailWith
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.leituras[id]; !ok {
		return &NotFoundError{Resource: "leitura", ID: strconv.FormatInt(id, 10)}
	}
	delete(m.leituras, id)
	return nil
}

// CreateBatch stores every reading, assigning ids in order.
func (m *MemoryRepository) CreateBatch(ctx context.Context, leituras []*models.Leitura) error {
	for _, l := range leituras {
		if err := m.Create(ctx, l); err != nil {
			return err
		}
	}
	return nil
}

// HealthCheck always succeeds for the in-memory store.
func (m *MemoryRepository) HealthCheck(ctx context.Context) error {
	return m.FailWith
}
