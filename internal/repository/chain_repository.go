package repository

import (
	"context"

	"basket-backend/internal/models"

	"gorm.io/gorm"
)

// ChainRepository defines write-through persistence for the chain registry.
// The registry service owns the in-memory map and its invariants; the
// repository only makes mutations durable and reloads the catalog at start.
type ChainRepository interface {
	Save(ctx context.Context, chain *models.Chain) error
	LoadAll(ctx context.Context) ([]*models.Chain, error)
}

// chainRepository implements ChainRepository on gorm.
type chainRepository struct {
	db *gorm.DB
}

// NewChainRepository creates a new ChainRepository instance.
func NewChainRepository(db *gorm.DB) ChainRepository {
	return &chainRepository{db: db}
}

// Save upserts the chain row.
func (r *chainRepository) Save(ctx context.Context, chain *models.Chain) error {
	return r.db.WithContext(ctx).Save(chain).Error
}

// LoadAll returns the full chain catalog.
func (r *chainRepository) LoadAll(ctx context.Context) ([]*models.Chain, error) {
	var chains []*models.Chain
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&chains).Error; err != nil {
		return nil, err
	}
	return chains, nil
}
