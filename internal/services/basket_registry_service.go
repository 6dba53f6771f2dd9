package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"basket-backend/internal/errs"
	"basket-backend/internal/events"
	"basket-backend/internal/metrics"
	"basket-backend/internal/models"
	"basket-backend/internal/repository"
	"basket-backend/internal/utils"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// ExpandedShare is one per-asset slice of a basket expansion. Amount is
// total * weight / 100, computed in decimal arithmetic with no rounding.
type ExpandedShare struct {
	AssetID         string           `json:"asset_id"`
	Symbol          string           `json:"symbol"`
	Type            models.AssetType `json:"type"`
	Weight          int              `json:"weight"`
	Amount          decimal.Decimal  `json:"amount"`
	ContractAddress string           `json:"contract_address"`
	Decimals        *int             `json:"decimals,omitempty"`
}

// BasketRegistryService is the single-chain basket catalog. Baskets
// reference assets held by the asset registry; composition is validated
// at creation and expansion resolves the referenced assets live.
type BasketRegistryService struct {
	mu      sync.RWMutex
	baskets map[string]*models.Basket

	assets    *AssetRegistryService
	repo      repository.BasketRepository
	snapshots *SnapshotService
	events    *events.Publisher
	logger    *logrus.Logger
}

// NewBasketRegistryService creates the registry.
func NewBasketRegistryService(repo repository.BasketRepository, assets *AssetRegistryService, snapshots *SnapshotService, publisher *events.Publisher, logger *logrus.Logger) *BasketRegistryService {
	return &BasketRegistryService{
		baskets:   make(map[string]*models.Basket),
		assets:    assets,
		repo:      repo,
		snapshots: snapshots,
		events:    publisher,
		logger:    logger,
	}
}

// Load populates the catalog from the repository.
func (s *BasketRegistryService) Load(ctx context.Context) error {
	baskets, err := s.repo.LoadAll(ctx)
	if err != nil {
		return fmt.Errorf("failed to load basket catalog: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, b := range baskets {
		s.baskets[b.ID] = b
	}
	metrics.RegistrySize.WithLabelValues("baskets").Set(float64(len(s.baskets)))
	s.logger.WithField("count", len(s.baskets)).Info("basket catalog loaded")
	return nil
}

// Create adds a new basket. Weights must sum to exactly 100 and every
// referenced asset must already be registered.
func (s *BasketRegistryService) Create(ctx context.Context, basket *models.Basket) error {
	if err := validateBasketComposition(basket.ID, basket.Name, basket.Symbol, basket.Assets); err != nil {
		return err
	}
	for _, entry := range basket.Assets {
		if _, err := s.assets.Get(ctx, entry.AssetID); err != nil {
			return err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.baskets[basket.ID]; exists {
		return errs.NewConflict("basket %s already exists", basket.ID)
	}

	now := time.Now()
	basket.CreatedAt = now
	basket.UpdatedAt = now
	if basket.Status == "" {
		basket.Status = models.BasketStatusActive
	}
	for i := range basket.Assets {
		basket.Assets[i].Proportion = fmt.Sprintf("%d%%", basket.Assets[i].Weight)
	}

	if err := s.repo.Save(ctx, basket); err != nil {
		return fmt.Errorf("failed to persist basket %s: %w", basket.ID, err)
	}
	s.baskets[basket.ID] = basket

	metrics.RegistrySize.WithLabelValues("baskets").Set(float64(len(s.baskets)))
	metrics.RegistryMutations.WithLabelValues("baskets", "create").Inc()
	s.snapshots.Enqueue("baskets", s.catalogLocked())
	s.events.Publish(events.SubjectBasketCreated, events.RegistryEvent{
		Registry: "baskets", EntityID: basket.ID, Operation: "create", Timestamp: now,
	})

	s.logger.WithFields(logrus.Fields{
		"basket_id": basket.ID,
		"symbol":    basket.Symbol,
		"assets":    len(basket.Assets),
	}).Info("basket created")
	return nil
}

// Get returns the basket for id.
func (s *BasketRegistryService) Get(ctx context.Context, id string) (*models.Basket, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	basket, ok := s.baskets[id]
	if !ok {
		return nil, fmt.Errorf("basket %s: %w", id, errs.ErrNotFound)
	}
	return copyBasket(basket), nil
}

// List returns all baskets ordered by id.
func (s *BasketRegistryService) List(ctx context.Context) []*models.Basket {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.catalogLocked()
}

// SetStatus transitions the basket lifecycle status.
func (s *BasketRegistryService) SetStatus(ctx context.Context, id string, status models.BasketStatus) (*models.Basket, error) {
	switch status {
	case models.BasketStatusActive, models.BasketStatusPaused, models.BasketStatusDeprecated:
	default:
		return nil, errs.NewValidation("status", "unknown basket status %q", status)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.baskets[id]
	if !ok {
		return nil, fmt.Errorf("basket %s: %w", id, errs.ErrNotFound)
	}

	updated := copyBasket(existing)
	updated.Status = status
	updated.UpdatedAt = time.Now()

	if err := s.repo.Save(ctx, updated); err != nil {
		return nil, fmt.Errorf("failed to persist basket %s: %w", id, err)
	}
	s.baskets[id] = updated

	metrics.RegistryMutations.WithLabelValues("baskets", "set_status").Inc()
	s.snapshots.Enqueue("baskets", s.catalogLocked())

	return copyBasket(updated), nil
}

// Expand splits amount across the basket's assets by weight. Expansion is
// a pure read; failure leaves no trace anywhere. An optional asset type
// filter keeps only entries of that type, without rescaling the kept
// weights.
func (s *BasketRegistryService) Expand(ctx context.Context, id string, amount decimal.Decimal, typeFilter models.AssetType) ([]ExpandedShare, error) {
	if amount.Sign() <= 0 {
		return nil, errs.NewValidation("amount", "must be positive, got %s", amount.String())
	}
	if typeFilter != "" && !models.ValidAssetType(typeFilter) {
		return nil, errs.NewValidation("type", "unknown asset type %q", typeFilter)
	}

	basket, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	shares := make([]ExpandedShare, 0, len(basket.Assets))
	for _, entry := range basket.Assets {
		asset, err := s.assets.Get(ctx, entry.AssetID)
		if err != nil {
			return nil, err
		}
		if typeFilter != "" && asset.Type != typeFilter {
			continue
		}
		shares = append(shares, ExpandedShare{
			AssetID:         asset.ID,
			Symbol:          asset.Symbol,
			Type:            asset.Type,
			Weight:          entry.Weight,
			Amount:          utils.WeightShare(amount, entry.Weight),
			ContractAddress: asset.ContractAddress,
			Decimals:        asset.Decimals,
		})
	}
	return shares, nil
}

func (s *BasketRegistryService) catalogLocked() []*models.Basket {
	out := make([]*models.Basket, 0, len(s.baskets))
	for _, b := range s.baskets {
		out = append(out, copyBasket(b))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// validateBasketComposition checks the shared structural rules of single
// and multi-chain baskets. A weight sum other than 100 reports the
// actual sum.
func validateBasketComposition(id, name, symbol string, assets []models.BasketAsset) error {
	if strings.TrimSpace(id) == "" {
		return errs.NewValidation("id", "must not be empty")
	}
	if strings.TrimSpace(name) == "" {
		return errs.NewValidation("name", "must not be empty")
	}
	if strings.TrimSpace(symbol) == "" {
		return errs.NewValidation("symbol", "must not be empty")
	}
	if len(assets) == 0 {
		return errs.NewValidation("assets", "at least one asset is required")
	}
	sum := 0
	seen := make(map[string]bool, len(assets))
	for _, entry := range assets {
		if strings.TrimSpace(entry.AssetID) == "" {
			return errs.NewValidation("assets", "asset_id must not be empty")
		}
		if seen[entry.AssetID] {
			return errs.NewValidation("assets", "asset %s listed twice", entry.AssetID)
		}
		seen[entry.AssetID] = true
		if entry.Weight < 0 || entry.Weight > 100 {
			return errs.NewValidation("assets", "asset %s: weight must be in [0,100], got %d", entry.AssetID, entry.Weight)
		}
		sum += entry.Weight
	}
	if sum != 100 {
		return errs.NewValidation("assets", "weights must sum to 100, got %d", sum)
	}
	return nil
}

func copyBasket(b *models.Basket) *models.Basket {
	out := *b
	out.Assets = make([]models.BasketAsset, len(b.Assets))
	copy(out.Assets, b.Assets)
	return &out
}

// Snapshot queues an on-demand backup of the basket catalog.
func (s *BasketRegistryService) Snapshot() {
	s.mu.RLock()
	defer s.mu.RUnlock()
	s.snapshots.Enqueue("baskets", s.catalogLocked())
}
