package services

import (
	"context"
	"fmt"
	"sort"
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

// MultiChainBasketService is the cross-chain basket catalog. A basket's
// supported chain set is never empty and always contains the default
// chain; removing the default reassigns it to the lexicographically
// smallest remaining chain id.
type MultiChainBasketService struct {
	mu      sync.RWMutex
	baskets map[string]*models.MultiChainBasket

	chains    *ChainRegistryService
	assets    *MultiChainAssetService
	repo      repository.MultiChainBasketRepository
	snapshots *SnapshotService
	events    *events.Publisher
	logger    *logrus.Logger
}

// NewMultiChainBasketService creates the registry.
func NewMultiChainBasketService(repo repository.MultiChainBasketRepository, chains *ChainRegistryService, assets *MultiChainAssetService, snapshots *SnapshotService, publisher *events.Publisher, logger *logrus.Logger) *MultiChainBasketService {
	return &MultiChainBasketService{
		baskets:   make(map[string]*models.MultiChainBasket),
		chains:    chains,
		assets:    assets,
		repo:      repo,
		snapshots: snapshots,
		events:    publisher,
		logger:    logger,
	}
}

// Load populates the catalog from the repository.
func (s *MultiChainBasketService) Load(ctx context.Context) error {
	baskets, err := s.repo.LoadAll(ctx)
	if err != nil {
		return fmt.Errorf("failed to load multichain basket catalog: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, b := range baskets {
		s.baskets[b.ID] = b
	}
	metrics.RegistrySize.WithLabelValues("multichain_baskets").Set(float64(len(s.baskets)))
	s.logger.WithField("count", len(s.baskets)).Info("multichain basket catalog loaded")
	return nil
}

// Create adds a new multi-chain basket. Every supported chain must be
// registered, the default chain must be supported, and every referenced
// asset must be deployed on every supported chain.
func (s *MultiChainBasketService) Create(ctx context.Context, basket *models.MultiChainBasket) error {
	if err := validateBasketComposition(basket.ID, basket.Name, basket.Symbol, basket.Assets); err != nil {
		return err
	}
	if len(basket.SupportedChains) == 0 {
		return errs.NewValidation("supported_chains", "at least one chain is required")
	}
	if basket.DefaultChainID == "" {
		return errs.NewValidation("default_chain_id", "must not be empty")
	}

	seen := make(map[string]bool, len(basket.SupportedChains))
	for _, chainID := range basket.SupportedChains {
		if seen[chainID] {
			return errs.NewValidation("supported_chains", "chain %s listed twice", chainID)
		}
		seen[chainID] = true
		if !s.chains.Exists(chainID) {
			return fmt.Errorf("chain %s: %w", chainID, errs.ErrNotFound)
		}
	}
	if !seen[basket.DefaultChainID] {
		return errs.NewValidation("default_chain_id", "chain %s is not in supported_chains", basket.DefaultChainID)
	}
	for _, entry := range basket.Assets {
		asset, err := s.assets.Get(ctx, entry.AssetID)
		if err != nil {
			return err
		}
		for _, chainID := range basket.SupportedChains {
			if !asset.DeployedOn(chainID) {
				return errs.NewValidation("assets", "asset %s is not deployed on chain %s", entry.AssetID, chainID)
			}
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.baskets[basket.ID]; exists {
		return errs.NewConflict("multichain basket %s already exists", basket.ID)
	}

	now := time.Now()
	basket.CreatedAt = now
	basket.UpdatedAt = now
	basket.SupportedChains = utils.SortedChainIDs(basket.SupportedChains)
	if basket.Status == "" {
		basket.Status = models.BasketStatusActive
	}
	for i := range basket.Assets {
		basket.Assets[i].Proportion = fmt.Sprintf("%d%%", basket.Assets[i].Weight)
	}

	if err := s.repo.Save(ctx, basket); err != nil {
		return fmt.Errorf("failed to persist multichain basket %s: %w", basket.ID, err)
	}
	s.baskets[basket.ID] = basket

	metrics.RegistrySize.WithLabelValues("multichain_baskets").Set(float64(len(s.baskets)))
	metrics.RegistryMutations.WithLabelValues("multichain_baskets", "create").Inc()
	s.snapshots.Enqueue("multichain_baskets", s.catalogLocked())
	s.events.Publish(events.SubjectBasketCreated, events.RegistryEvent{
		Registry: "multichain_baskets", EntityID: basket.ID, Operation: "create", Timestamp: now,
	})

	s.logger.WithFields(logrus.Fields{
		"basket_id":     basket.ID,
		"symbol":        basket.Symbol,
		"chains":        basket.SupportedChains,
		"default_chain": basket.DefaultChainID,
	}).Info("multichain basket created")
	return nil
}

// Get returns the basket for id.
func (s *MultiChainBasketService) Get(ctx context.Context, id string) (*models.MultiChainBasket, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	basket, ok := s.baskets[id]
	if !ok {
		return nil, fmt.Errorf("multichain basket %s: %w", id, errs.ErrNotFound)
	}
	return copyMultiChainBasket(basket), nil
}

// List returns all baskets ordered by id.
func (s *MultiChainBasketService) List(ctx context.Context) []*models.MultiChainBasket {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.catalogLocked()
}

// ListByChain returns the baskets mintable on chainID.
func (s *MultiChainBasketService) ListByChain(ctx context.Context, chainID string) []*models.MultiChainBasket {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.MultiChainBasket, 0)
	for _, b := range s.baskets {
		if b.SupportsChain(chainID) {
			out = append(out, copyMultiChainBasket(b))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// AddChain extends the supported chain set. The chain must be registered
// and every basket asset must be deployed on it.
func (s *MultiChainBasketService) AddChain(ctx context.Context, id, chainID string) (*models.MultiChainBasket, error) {
	if !s.chains.Exists(chainID) {
		return nil, fmt.Errorf("chain %s: %w", chainID, errs.ErrNotFound)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.baskets[id]
	if !ok {
		return nil, fmt.Errorf("multichain basket %s: %w", id, errs.ErrNotFound)
	}
	if existing.SupportsChain(chainID) {
		return nil, errs.NewConflict("multichain basket %s already supports chain %s", id, chainID)
	}
	for _, entry := range existing.Assets {
		asset, err := s.assets.Get(ctx, entry.AssetID)
		if err != nil {
			return nil, err
		}
		if !asset.DeployedOn(chainID) {
			return nil, errs.NewValidation("chain_id", "asset %s is not deployed on chain %s", entry.AssetID, chainID)
		}
	}

	updated := copyMultiChainBasket(existing)
	updated.SupportedChains = utils.SortedChainIDs(append(updated.SupportedChains, chainID))
	updated.UpdatedAt = time.Now()

	if err := s.repo.Save(ctx, updated); err != nil {
		return nil, fmt.Errorf("failed to persist multichain basket %s: %w", id, err)
	}
	s.baskets[id] = updated

	metrics.RegistryMutations.WithLabelValues("multichain_baskets", "add_chain").Inc()
	s.snapshots.Enqueue("multichain_baskets", s.catalogLocked())

	return copyMultiChainBasket(updated), nil
}

// RemoveChain shrinks the supported chain set. Removing the last chain
// conflicts and leaves the basket unchanged; removing the default chain
// reassigns the default to the smallest remaining chain id.
func (s *MultiChainBasketService) RemoveChain(ctx context.Context, id, chainID string) (*models.MultiChainBasket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.baskets[id]
	if !ok {
		return nil, fmt.Errorf("multichain basket %s: %w", id, errs.ErrNotFound)
	}
	if !existing.SupportsChain(chainID) {
		return nil, fmt.Errorf("multichain basket %s does not support chain %s: %w", id, chainID, errs.ErrNotFound)
	}
	if len(existing.SupportedChains) == 1 {
		return nil, errs.NewConflict("cannot remove the only supported chain of multichain basket %s", id)
	}

	updated := copyMultiChainBasket(existing)
	remaining := make([]string, 0, len(updated.SupportedChains)-1)
	for _, cid := range updated.SupportedChains {
		if cid != chainID {
			remaining = append(remaining, cid)
		}
	}
	updated.SupportedChains = remaining
	if updated.DefaultChainID == chainID {
		updated.DefaultChainID = utils.FirstChainID(remaining)
	}
	updated.UpdatedAt = time.Now()

	if err := s.repo.Save(ctx, updated); err != nil {
		return nil, fmt.Errorf("failed to persist multichain basket %s: %w", id, err)
	}
	s.baskets[id] = updated

	metrics.RegistryMutations.WithLabelValues("multichain_baskets", "remove_chain").Inc()
	s.snapshots.Enqueue("multichain_baskets", s.catalogLocked())

	return copyMultiChainBasket(updated), nil
}

// Expand splits amount across the basket's assets by weight on chainID.
// An empty chainID falls back to the basket's default chain. Contract
// addresses and decimals are resolved from the asset's deployment on the
// target chain.
func (s *MultiChainBasketService) Expand(ctx context.Context, id, chainID string, amount decimal.Decimal, typeFilter models.AssetType) ([]ExpandedShare, string, error) {
	if amount.Sign() <= 0 {
		return nil, "", errs.NewValidation("amount", "must be positive, got %s", amount.String())
	}
	if typeFilter != "" && !models.ValidAssetType(typeFilter) {
		return nil, "", errs.NewValidation("type", "unknown asset type %q", typeFilter)
	}

	basket, err := s.Get(ctx, id)
	if err != nil {
		return nil, "", err
	}
	if chainID == "" {
		chainID = basket.DefaultChainID
	}
	if !basket.SupportsChain(chainID) {
		return nil, "", errs.NewValidation("chain_id", "basket %s does not support chain %s", id, chainID)
	}

	shares := make([]ExpandedShare, 0, len(basket.Assets))
	for _, entry := range basket.Assets {
		asset, err := s.assets.Get(ctx, entry.AssetID)
		if err != nil {
			return nil, "", err
		}
		if typeFilter != "" && asset.Type != typeFilter {
			continue
		}
		dep, _, err := s.assets.GetDeployment(ctx, entry.AssetID, chainID)
		if err != nil {
			return nil, "", err
		}
		decimals := dep.Decimals
		if decimals == nil {
			decimals = asset.Decimals
		}
		shares = append(shares, ExpandedShare{
			AssetID:         asset.ID,
			Symbol:          asset.Symbol,
			Type:            asset.Type,
			Weight:          entry.Weight,
			Amount:          utils.WeightShare(amount, entry.Weight),
			ContractAddress: dep.ContractAddress,
			Decimals:        decimals,
		})
	}
	return shares, chainID, nil
}

func (s *MultiChainBasketService) catalogLocked() []*models.MultiChainBasket {
	out := make([]*models.MultiChainBasket, 0, len(s.baskets))
	for _, b := range s.baskets {
		out = append(out, copyMultiChainBasket(b))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func copyMultiChainBasket(b *models.MultiChainBasket) *models.MultiChainBasket {
	out := *b
	out.Assets = make([]models.BasketAsset, len(b.Assets))
	copy(out.Assets, b.Assets)
	out.SupportedChains = make([]string, len(b.SupportedChains))
	copy(out.SupportedChains, b.SupportedChains)
	return &out
}

// Snapshot queues an on-demand backup of the multi-chain basket catalog.
func (s *MultiChainBasketService) Snapshot() {
	s.mu.RLock()
	defer s.mu.RUnlock()
	s.snapshots.Enqueue("multichain_baskets", s.catalogLocked())
}
