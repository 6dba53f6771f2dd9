package repository

import (
	"context"

	"basket-backend/internal/models"

	"gorm.io/gorm"
)

// MintRepository persists the single-chain mint ledger.
type MintRepository interface {
	Save(ctx context.Context, record *models.MintRecord) error
	LoadAll(ctx context.Context) ([]*models.MintRecord, error)
}

// MultiChainMintRepository persists the chain-qualified mint ledger.
type MultiChainMintRepository interface {
	Save(ctx context.Context, record *models.MultiChainMintRecord) error
	LoadAll(ctx context.Context) ([]*models.MultiChainMintRecord, error)
}

type mintRepository struct {
	db *gorm.DB
}

// NewMintRepository creates a new MintRepository instance.
func NewMintRepository(db *gorm.DB) MintRepository {
	return &mintRepository{db: db}
}

func (r *mintRepository) Save(ctx context.Context, record *models.MintRecord) error {
	return r.db.WithContext(ctx).Save(record).Error
}

func (r *mintRepository) LoadAll(ctx context.Context) ([]*models.MintRecord, error) {
	var records []*models.MintRecord
	if err := r.db.WithContext(ctx).Order("created_at ASC").Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

type multiChainMintRepository struct {
	db *gorm.DB
}

// NewMultiChainMintRepository creates a new MultiChainMintRepository instance.
func NewMultiChainMintRepository(db *gorm.DB) MultiChainMintRepository {
	return &multiChainMintRepository{db: db}
}

func (r *multiChainMintRepository) Save(ctx context.Context, record *models.MultiChainMintRecord) error {
	return r.db.WithContext(ctx).Save(record).Error
}

func (r *multiChainMintRepository) LoadAll(ctx context.Context) ([]*models.MultiChainMintRecord, error) {
	var records []*models.MultiChainMintRecord
	if err := r.db.WithContext(ctx).Order("created_at ASC").Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}
