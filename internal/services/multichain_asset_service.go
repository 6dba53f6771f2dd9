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

	"github.com/sirupsen/logrus"
)

// MultiChainAssetService is the cross-chain asset catalog. Every asset
// carries a non-empty deployment map and a default chain that is always a
// member of that map; the two fields never diverge, even transiently.
type MultiChainAssetService struct {
	mu     sync.RWMutex
	assets map[string]*models.MultiChainAsset

	chains    *ChainRegistryService
	repo      repository.MultiChainAssetRepository
	snapshots *SnapshotService
	events    *events.Publisher
	logger    *logrus.Logger
}

// NewMultiChainAssetService creates the registry. The chain registry is
// consulted for membership validation on every deployment mutation.
func NewMultiChainAssetService(repo repository.MultiChainAssetRepository, chains *ChainRegistryService, snapshots *SnapshotService, publisher *events.Publisher, logger *logrus.Logger) *MultiChainAssetService {
	return &MultiChainAssetService{
		assets:    make(map[string]*models.MultiChainAsset),
		chains:    chains,
		repo:      repo,
		snapshots: snapshots,
		events:    publisher,
		logger:    logger,
	}
}

// Load populates the catalog from the repository.
func (s *MultiChainAssetService) Load(ctx context.Context) error {
	assets, err := s.repo.LoadAll(ctx)
	if err != nil {
		return fmt.Errorf("failed to load multichain asset catalog: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range assets {
		s.assets[a.ID] = a
	}
	metrics.RegistrySize.WithLabelValues("multichain_assets").Set(float64(len(s.assets)))
	s.logger.WithField("count", len(s.assets)).Info("multichain asset catalog loaded")
	return nil
}

// Register adds a new multi-chain asset. Every deployment chain must be
// registered and the default chain must carry a deployment.
func (s *MultiChainAssetService) Register(ctx context.Context, asset *models.MultiChainAsset) error {
	if err := s.validateMultiChainAsset(asset); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.assets[asset.ID]; exists {
		return errs.NewConflict("multichain asset %s already registered", asset.ID)
	}

	now := time.Now()
	asset.CreatedAt = now
	asset.UpdatedAt = now
	for chainID, dep := range asset.Deployments {
		dep.ContractAddress = utils.NormalizeAddress(dep.ContractAddress)
		asset.Deployments[chainID] = dep
	}

	if err := s.repo.Save(ctx, asset); err != nil {
		return fmt.Errorf("failed to persist multichain asset %s: %w", asset.ID, err)
	}
	s.assets[asset.ID] = asset

	metrics.RegistrySize.WithLabelValues("multichain_assets").Set(float64(len(s.assets)))
	metrics.RegistryMutations.WithLabelValues("multichain_assets", "register").Inc()
	s.snapshots.Enqueue("multichain_assets", s.catalogLocked())
	s.events.Publish(events.SubjectAssetRegistered, events.RegistryEvent{
		Registry: "multichain_assets", EntityID: asset.ID, Operation: "register", Timestamp: now,
	})

	s.logger.WithFields(logrus.Fields{
		"asset_id":      asset.ID,
		"symbol":        asset.Symbol,
		"chains":        utils.SortedChainIDs(asset.ChainIDs()),
		"default_chain": asset.DefaultChainID,
	}).Info("multichain asset registered")
	return nil
}

// Get returns the asset for id.
func (s *MultiChainAssetService) Get(ctx context.Context, id string) (*models.MultiChainAsset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	asset, ok := s.assets[id]
	if !ok {
		return nil, fmt.Errorf("multichain asset %s: %w", id, errs.ErrNotFound)
	}
	return copyMultiChainAsset(asset), nil
}

// GetDeployment resolves the deployment of an asset on chainID. An empty
// chainID falls back to the asset's default chain.
func (s *MultiChainAssetService) GetDeployment(ctx context.Context, id, chainID string) (*models.ChainDeployment, string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	asset, ok := s.assets[id]
	if !ok {
		return nil, "", fmt.Errorf("multichain asset %s: %w", id, errs.ErrNotFound)
	}
	if chainID == "" {
		chainID = asset.DefaultChainID
	}
	dep, ok := asset.Deployments[chainID]
	if !ok {
		return nil, "", fmt.Errorf("multichain asset %s has no deployment on chain %s: %w", id, chainID, errs.ErrNotFound)
	}
	out := dep
	return &out, chainID, nil
}

// List returns all assets ordered by id.
func (s *MultiChainAssetService) List(ctx context.Context) []*models.MultiChainAsset {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.catalogLocked()
}

// ListByChain returns the assets deployed on chainID.
func (s *MultiChainAssetService) ListByChain(ctx context.Context, chainID string) []*models.MultiChainAsset {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.MultiChainAsset, 0)
	for _, a := range s.assets {
		if a.DeployedOn(chainID) {
			out = append(out, copyMultiChainAsset(a))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// AddDeployment deploys an existing asset onto one more chain. Adding a
// chain that already carries a deployment conflicts.
func (s *MultiChainAssetService) AddDeployment(ctx context.Context, id, chainID string, dep models.ChainDeployment) (*models.MultiChainAsset, error) {
	if !s.chains.Exists(chainID) {
		return nil, fmt.Errorf("chain %s: %w", chainID, errs.ErrNotFound)
	}
	if dep.ContractAddress == "" || !utils.IsValidAddress(dep.ContractAddress) {
		return nil, errs.NewValidation("contract_address", "%s is not a valid address", dep.ContractAddress)
	}
	dep.ContractAddress = utils.NormalizeAddress(dep.ContractAddress)

	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.assets[id]
	if !ok {
		return nil, fmt.Errorf("multichain asset %s: %w", id, errs.ErrNotFound)
	}
	if existing.DeployedOn(chainID) {
		return nil, errs.NewConflict("multichain asset %s already deployed on chain %s", id, chainID)
	}

	updated := copyMultiChainAsset(existing)
	updated.Deployments[chainID] = dep
	updated.UpdatedAt = time.Now()

	if err := s.repo.Save(ctx, updated); err != nil {
		return nil, fmt.Errorf("failed to persist multichain asset %s: %w", id, err)
	}
	s.assets[id] = updated

	metrics.RegistryMutations.WithLabelValues("multichain_assets", "add_deployment").Inc()
	s.snapshots.Enqueue("multichain_assets", s.catalogLocked())
	s.events.Publish(events.SubjectAssetRegistered, events.RegistryEvent{
		Registry: "multichain_assets", EntityID: id, Operation: "add_deployment", Timestamp: updated.UpdatedAt,
	})

	return copyMultiChainAsset(updated), nil
}

// RemoveDeployment removes the deployment on chainID. Removing the last
// deployment conflicts and leaves the asset unchanged. When the default
// chain is removed, the lexicographically smallest remaining chain id
// becomes the new default.
func (s *MultiChainAssetService) RemoveDeployment(ctx context.Context, id, chainID string) (*models.MultiChainAsset, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.assets[id]
	if !ok {
		return nil, fmt.Errorf("multichain asset %s: %w", id, errs.ErrNotFound)
	}
	if !existing.DeployedOn(chainID) {
		return nil, fmt.Errorf("multichain asset %s has no deployment on chain %s: %w", id, chainID, errs.ErrNotFound)
	}
	if len(existing.Deployments) == 1 {
		return nil, errs.NewConflict("cannot remove the only deployment of multichain asset %s", id)
	}

	updated := copyMultiChainAsset(existing)
	delete(updated.Deployments, chainID)
	if updated.DefaultChainID == chainID {
		updated.DefaultChainID = utils.FirstChainID(updated.ChainIDs())
	}
	updated.UpdatedAt = time.Now()

	if err := s.repo.Save(ctx, updated); err != nil {
		return nil, fmt.Errorf("failed to persist multichain asset %s: %w", id, err)
	}
	s.assets[id] = updated

	metrics.RegistryMutations.WithLabelValues("multichain_assets", "remove_deployment").Inc()
	s.snapshots.Enqueue("multichain_assets", s.catalogLocked())

	return copyMultiChainAsset(updated), nil
}

func (s *MultiChainAssetService) catalogLocked() []*models.MultiChainAsset {
	out := make([]*models.MultiChainAsset, 0, len(s.assets))
	for _, a := range s.assets {
		out = append(out, copyMultiChainAsset(a))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *MultiChainAssetService) validateMultiChainAsset(asset *models.MultiChainAsset) error {
	if strings.TrimSpace(asset.ID) == "" {
		return errs.NewValidation("id", "must not be empty")
	}
	if !models.ValidAssetType(asset.Type) {
		return errs.NewValidation("type", "unknown asset type %q", asset.Type)
	}
	if strings.TrimSpace(asset.Name) == "" {
		return errs.NewValidation("name", "must not be empty")
	}
	if strings.TrimSpace(asset.Symbol) == "" {
		return errs.NewValidation("symbol", "must not be empty")
	}
	if len(asset.Deployments) == 0 {
		return errs.NewValidation("deployments", "at least one chain deployment is required")
	}
	if asset.DefaultChainID == "" {
		return errs.NewValidation("default_chain_id", "must not be empty")
	}
	if !asset.DeployedOn(asset.DefaultChainID) {
		return errs.NewValidation("default_chain_id", "chain %s has no deployment", asset.DefaultChainID)
	}
	for chainID, dep := range asset.Deployments {
		if !s.chains.Exists(chainID) {
			return fmt.Errorf("chain %s: %w", chainID, errs.ErrNotFound)
		}
		if dep.ContractAddress == "" || !utils.IsValidAddress(dep.ContractAddress) {
			return errs.NewValidation("deployments", "chain %s: %s is not a valid address", chainID, dep.ContractAddress)
		}
		if dep.Decimals != nil && (*dep.Decimals < 0 || *dep.Decimals > 77) {
			return errs.NewValidation("deployments", "chain %s: decimals must be in [0,77]", chainID)
		}
	}
	return nil
}

// copyMultiChainAsset deep-copies the deployment map so callers and
// snapshots never alias registry state.
func copyMultiChainAsset(a *models.MultiChainAsset) *models.MultiChainAsset {
	out := *a
	out.Deployments = make(map[string]models.ChainDeployment, len(a.Deployments))
	for k, v := range a.Deployments {
		out.Deployments[k] = v
	}
	return &out
}

// Snapshot queues an on-demand backup of the multi-chain asset catalog.
func (s *MultiChainAssetService) Snapshot() {
	s.mu.RLock()
	defer s.mu.RUnlock()
	s.snapshots.Enqueue("multichain_assets", s.catalogLocked())
}
