package repository

import (
	"context"

	"basket-backend/internal/models"

	"gorm.io/gorm"
)

// BasketRepository persists single-chain baskets.
type BasketRepository interface {
	Save(ctx context.Context, basket *models.Basket) error
	LoadAll(ctx context.Context) ([]*models.Basket, error)
}

// MultiChainBasketRepository persists multi-chain baskets.
type MultiChainBasketRepository interface {
	Save(ctx context.Context, basket *models.MultiChainBasket) error
	LoadAll(ctx context.Context) ([]*models.MultiChainBasket, error)
}

type basketRepository struct {
	db *gorm.DB
}

// NewBasketRepository creates a new BasketRepository instance.
func NewBasketRepository(db *gorm.DB) BasketRepository {
	return &basketRepository{db: db}
}

func (r *basketRepository) Save(ctx context.Context, basket *models.Basket) error {
	return r.db.WithContext(ctx).Save(basket).Error
}

func (r *basketRepository) LoadAll(ctx context.Context) ([]*models.Basket, error) {
	var baskets []*models.Basket
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&baskets).Error; err != nil {
		return nil, err
	}
	return baskets, nil
}

type multiChainBasketRepository struct {
	db *gorm.DB
}

// NewMultiChainBasketRepository creates a new MultiChainBasketRepository instance.
func NewMultiChainBasketRepository(db *gorm.DB) MultiChainBasketRepository {
	return &multiChainBasketRepository{db: db}
}

func (r *multiChainBasketRepository) Save(ctx context.Context, basket *models.MultiChainBasket) error {
	return r.db.WithContext(ctx).Save(basket).Error
}

func (r *multiChainBasketRepository) LoadAll(ctx context.Context) ([]*models.MultiChainBasket, error) {
	var baskets []*models.MultiChainBasket
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&baskets).Error; err != nil {
		return nil, err
	}
	return baskets, nil
}
