package repository

import (
	"context"

	"basket-backend/internal/models"

	"gorm.io/gorm"
)

// AssetRepository persists single-chain asset descriptors.
type AssetRepository interface {
	Save(ctx context.Context, asset *models.Asset) error
	LoadAll(ctx context.Context) ([]*models.Asset, error)
}

// MultiChainAssetRepository persists multi-chain asset descriptors.
type MultiChainAssetRepository interface {
	Save(ctx context.Context, asset *models.MultiChainAsset) error
	LoadAll(ctx context.Context) ([]*models.MultiChainAsset, error)
}

type assetRepository struct {
	db *gorm.DB
}

// NewAssetRepository creates a new AssetRepository instance.
func NewAssetRepository(db *gorm.DB) AssetRepository {
	return &assetRepository{db: db}
}

func (r *assetRepository) Save(ctx context.Context, asset *models.Asset) error {
	return r.db.WithContext(ctx).Save(asset).Error
}

func (r *assetRepository) LoadAll(ctx context.Context) ([]*models.Asset, error) {
	var assets []*models.Asset
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&assets).Error; err != nil {
		return nil, err
	}
	return assets, nil
}

type multiChainAssetRepository struct {
	db *gorm.DB
}

// NewMultiChainAssetRepository creates a new MultiChainAssetRepository instance.
func NewMultiChainAssetRepository(db *gorm.DB) MultiChainAssetRepository {
	return &multiChainAssetRepository{db: db}
}

func (r *multiChainAssetRepository) Save(ctx context.Context, asset *models.MultiChainAsset) error {
	return r.db.WithContext(ctx).Save(asset).Error
}

func (r *multiChainAssetRepository) LoadAll(ctx context.Context) ([]*models.MultiChainAsset, error) {
	var assets []*models.MultiChainAsset
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&assets).Error; err != nil {
		return nil, err
	}
	return assets, nil
}
