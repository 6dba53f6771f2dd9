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

// AssetRegistryService is the single-chain asset catalog.
type AssetRegistryService struct {
	mu     sync.RWMutex
	assets map[string]*models.Asset

	repo      repository.AssetRepository
	snapshots *SnapshotService
	events    *events.Publisher
	logger    *logrus.Logger
}

// NewAssetRegistryService creates the registry.
func NewAssetRegistryService(repo repository.AssetRepository, snapshots *SnapshotService, publisher *events.Publisher, logger *logrus.Logger) *AssetRegistryService {
	return &AssetRegistryService{
		assets:    make(map[string]*models.Asset),
		repo:      repo,
		snapshots: snapshots,
		events:    publisher,
		logger:    logger,
	}
}

// Load populates the catalog from the repository.
func (s *AssetRegistryService) Load(ctx context.Context) error {
	assets, err := s.repo.LoadAll(ctx)
	if err != nil {
		return fmt.Errorf("failed to load asset catalog: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range assets {
		s.assets[a.ID] = a
	}
	metrics.RegistrySize.WithLabelValues("assets").Set(float64(len(s.assets)))
	s.logger.WithField("count", len(s.assets)).Info("asset catalog loaded")
	return nil
}

// Register adds a new asset. Duplicate ids conflict and leave the
// existing asset untouched.
func (s *AssetRegistryService) Register(ctx context.Context, asset *models.Asset) error {
	if err := validateAsset(asset); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.assets[asset.ID]; exists {
		return errs.NewConflict("asset %s already registered", asset.ID)
	}

	asset.CreatedAt = time.Now()
	if asset.ContractAddress != "" {
		asset.ContractAddress = utils.NormalizeAddress(asset.ContractAddress)
	}

	if err := s.repo.Save(ctx, asset); err != nil {
		return fmt.Errorf("failed to persist asset %s: %w", asset.ID, err)
	}
	s.assets[asset.ID] = asset

	metrics.RegistrySize.WithLabelValues("assets").Set(float64(len(s.assets)))
	metrics.RegistryMutations.WithLabelValues("assets", "register").Inc()
	s.snapshots.Enqueue("assets", s.catalogLocked())
	s.events.Publish(events.SubjectAssetRegistered, events.RegistryEvent{
		Registry: "assets", EntityID: asset.ID, Operation: "register", Timestamp: asset.CreatedAt,
	})

	s.logger.WithFields(logrus.Fields{
		"asset_id": asset.ID,
		"symbol":   asset.Symbol,
		"type":     asset.Type,
	}).Info("asset registered")
	return nil
}

// Get returns the asset for id.
func (s *AssetRegistryService) Get(ctx context.Context, id string) (*models.Asset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	asset, ok := s.assets[id]
	if !ok {
		return nil, fmt.Errorf("asset %s: %w", id, errs.ErrNotFound)
	}
	out := *asset
	return &out, nil
}

// List returns all assets ordered by id.
func (s *AssetRegistryService) List(ctx context.Context) []*models.Asset {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.catalogLocked()
}

// ListByType filters on the asset type.
func (s *AssetRegistryService) ListByType(ctx context.Context, t models.AssetType) ([]*models.Asset, error) {
	if !models.ValidAssetType(t) {
		return nil, errs.NewValidation("type", "unknown asset type %q", t)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Asset, 0)
	for _, a := range s.assets {
		if a.Type == t {
			aa := *a
			out = append(out, &aa)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *AssetRegistryService) catalogLocked() []*models.Asset {
	out := make([]*models.Asset, 0, len(s.assets))
	for _, a := range s.assets {
		aa := *a
		out = append(out, &aa)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func validateAsset(asset *models.Asset) error {
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
	if asset.Decimals != nil && (*asset.Decimals < 0 || *asset.Decimals > 77) {
		return errs.NewValidation("decimals", "must be in [0,77], got %d", *asset.Decimals)
	}
	if asset.ContractAddress != "" && !utils.IsValidAddress(asset.ContractAddress) {
		return errs.NewValidation("contract_address", "%s is not a valid address", asset.ContractAddress)
	}
	return nil
}

// Snapshot queues an on-demand backup of the asset catalog.
func (s *AssetRegistryService) Snapshot() {
	s.mu.RLock()
	defer s.mu.RUnlock()
	s.snapshots.Enqueue("assets", s.catalogLocked())
}
