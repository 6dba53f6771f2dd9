package repository

import (
	"context"
	"sort"
	"sync"

	"basket-backend/internal/models"
)

// In-memory repositories, selected with database.driver "memory". The
// registry services already serialize mutations, so these only need their
// own lock for the LoadAll copy.

type memoryChainRepository struct {
	mu sync.Mutex
	m  map[string]models.Chain
}

// NewMemoryChainRepository creates an in-memory ChainRepository.
func NewMemoryChainRepository() ChainRepository {
	return &memoryChainRepository{m: make(map[string]models.Chain)}
}

func (r *memoryChainRepository) Save(_ context.Context, chain *models.Chain) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.m[chain.ID] = *chain
	return nil
}

func (r *memoryChainRepository) LoadAll(_ context.Context) ([]*models.Chain, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*models.Chain, 0, len(r.m))
	for _, c := range r.m {
		c := c
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type memoryAssetRepository struct {
	mu sync.Mutex
	m  map[string]models.Asset
}

// NewMemoryAssetRepository creates an in-memory AssetRepository.
func NewMemoryAssetRepository() AssetRepository {
	return &memoryAssetRepository{m: make(map[string]models.Asset)}
}

func (r *memoryAssetRepository) Save(_ context.Context, asset *models.Asset) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.m[asset.ID] = *asset
	return nil
}

func (r *memoryAssetRepository) LoadAll(_ context.Context) ([]*models.Asset, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*models.Asset, 0, len(r.m))
	for _, a := range r.m {
		a := a
		out = append(out, &a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type memoryMultiChainAssetRepository struct {
	mu sync.Mutex
	m  map[string]models.MultiChainAsset
}

// NewMemoryMultiChainAssetRepository creates an in-memory MultiChainAssetRepository.
func NewMemoryMultiChainAssetRepository() MultiChainAssetRepository {
	return &memoryMultiChainAssetRepository{m: make(map[string]models.MultiChainAsset)}
}

func (r *memoryMultiChainAssetRepository) Save(_ context.Context, asset *models.MultiChainAsset) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.m[asset.ID] = *asset
	return nil
}

func (r *memoryMultiChainAssetRepository) LoadAll(_ context.Context) ([]*models.MultiChainAsset, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*models.MultiChainAsset, 0, len(r.m))
	for _, a := range r.m {
		a := a
		out = append(out, &a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type memoryBasketRepository struct {
	mu sync.Mutex
	m  map[string]models.Basket
}

// NewMemoryBasketRepository creates an in-memory BasketRepository.
func NewMemoryBasketRepository() BasketRepository {
	return &memoryBasketRepository{m: make(map[string]models.Basket)}
}

func (r *memoryBasketRepository) Save(_ context.Context, basket *models.Basket) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.m[basket.ID] = *basket
	return nil
}

func (r *memoryBasketRepository) LoadAll(_ context.Context) ([]*models.Basket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*models.Basket, 0, len(r.m))
	for _, b := range r.m {
		b := b
		out = append(out, &b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type memoryMultiChainBasketRepository struct {
	mu sync.Mutex
	m  map[string]models.MultiChainBasket
}

// NewMemoryMultiChainBasketRepository creates an in-memory MultiChainBasketRepository.
func NewMemoryMultiChainBasketRepository() MultiChainBasketRepository {
	return &memoryMultiChainBasketRepository{m: make(map[string]models.MultiChainBasket)}
}

func (r *memoryMultiChainBasketRepository) Save(_ context.Context, basket *models.MultiChainBasket) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.m[basket.ID] = *basket
	return nil
}

func (r *memoryMultiChainBasketRepository) LoadAll(_ context.Context) ([]*models.MultiChainBasket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*models.MultiChainBasket, 0, len(r.m))
	for _, b := range r.m {
		b := b
		out = append(out, &b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type memoryMintRepository struct {
	mu sync.Mutex
	m  map[string]models.MintRecord
}

// NewMemoryMintRepository creates an in-memory MintRepository.
func NewMemoryMintRepository() MintRepository {
	return &memoryMintRepository{m: make(map[string]models.MintRecord)}
}

func (r *memoryMintRepository) Save(_ context.Context, record *models.MintRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.m[record.ID] = *record
	return nil
}

func (r *memoryMintRepository) LoadAll(_ context.Context) ([]*models.MintRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*models.MintRecord, 0, len(r.m))
	for _, rec := range r.m {
		rec := rec
		out = append(out, &rec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

type memoryMultiChainMintRepository struct {
	mu sync.Mutex
	m  map[string]models.MultiChainMintRecord
}

// NewMemoryMultiChainMintRepository creates an in-memory MultiChainMintRepository.
func NewMemoryMultiChainMintRepository() MultiChainMintRepository {
	return &memoryMultiChainMintRepository{m: make(map[string]models.MultiChainMintRecord)}
}

func (r *memoryMultiChainMintRepository) Save(_ context.Context, record *models.MultiChainMintRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.m[record.ID] = *record
	return nil
}

func (r *memoryMultiChainMintRepository) LoadAll(_ context.Context) ([]*models.MultiChainMintRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*models.MultiChainMintRecord, 0, len(r.m))
	for _, rec := range r.m {
		rec := rec
		out = append(out, &rec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}
