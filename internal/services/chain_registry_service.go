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

	"github.com/sirupsen/logrus"
)

// ChainRegistryService is the authoritative catalog of blockchain network
// descriptors. It owns the in-memory map; every mutation is serialized
// under the mutex and persisted before the call returns, then a snapshot
// backup is enqueued asynchronously.
type ChainRegistryService struct {
	mu     sync.RWMutex
	chains map[string]*models.Chain

	repo      repository.ChainRepository
	snapshots *SnapshotService
	events    *events.Publisher
	logger    *logrus.Logger
}

// NewChainRegistryService creates the registry.
func NewChainRegistryService(repo repository.ChainRepository, snapshots *SnapshotService, publisher *events.Publisher, logger *logrus.Logger) *ChainRegistryService {
	return &ChainRegistryService{
		chains:    make(map[string]*models.Chain),
		repo:      repo,
		snapshots: snapshots,
		events:    publisher,
		logger:    logger,
	}
}

// Load populates the in-memory catalog from the repository.
func (s *ChainRegistryService) Load(ctx context.Context) error {
	chains, err := s.repo.LoadAll(ctx)
	if err != nil {
		return fmt.Errorf("failed to load chain catalog: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range chains {
		s.chains[c.ID] = c
	}
	metrics.RegistrySize.WithLabelValues("chains").Set(float64(len(s.chains)))
	s.logger.WithField("count", len(s.chains)).Info("chain catalog loaded")
	return nil
}

// Register adds a new chain descriptor. Fails with a conflict when the id
// is already taken; the existing descriptor is left untouched.
func (s *ChainRegistryService) Register(ctx context.Context, chain *models.Chain) error {
	if err := validateChain(chain); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.chains[chain.ID]; exists {
		return errs.NewConflict("chain %s already registered", chain.ID)
	}

	now := time.Now()
	chain.CreatedAt = now
	chain.UpdatedAt = now

	if err := s.repo.Save(ctx, chain); err != nil {
		return fmt.Errorf("failed to persist chain %s: %w", chain.ID, err)
	}
	s.chains[chain.ID] = chain

	metrics.RegistrySize.WithLabelValues("chains").Set(float64(len(s.chains)))
	metrics.RegistryMutations.WithLabelValues("chains", "register").Inc()
	s.snapshots.Enqueue("chains", s.catalogLocked())
	s.events.Publish(events.SubjectChainRegistered, events.RegistryEvent{
		Registry: "chains", EntityID: chain.ID, Operation: "register", Timestamp: now,
	})

	s.logger.WithFields(logrus.Fields{
		"chain_id": chain.ID,
		"network":  chain.Network,
		"testnet":  chain.Testnet,
	}).Info("chain registered")
	return nil
}

// Get returns the descriptor for id.
func (s *ChainRegistryService) Get(ctx context.Context, id string) (*models.Chain, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	chain, ok := s.chains[id]
	if !ok {
		return nil, fmt.Errorf("chain %s: %w", id, errs.ErrNotFound)
	}
	out := *chain
	return &out, nil
}

// Exists reports whether id is registered. Used by the multi-chain
// registries for membership validation.
func (s *ChainRegistryService) Exists(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.chains[id]
	return ok
}

// List returns all chains ordered by id.
func (s *ChainRegistryService) List(ctx context.Context) []*models.Chain {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.catalogLocked()
}

// ListByNetType filters on the testnet flag.
func (s *ChainRegistryService) ListByNetType(ctx context.Context, testnet bool) []*models.Chain {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Chain, 0)
	for _, c := range s.chains {
		if c.Testnet == testnet {
			cc := *c
			out = append(out, &cc)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Update merges the non-nil fields of update into the chain and bumps the
// update timestamp.
func (s *ChainRegistryService) Update(ctx context.Context, id string, update *models.ChainUpdate) (*models.Chain, error) {
	if update.RPCEndpoint != nil && strings.TrimSpace(*update.RPCEndpoint) == "" {
		return nil, errs.NewValidation("rpc_endpoint", "must not be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.chains[id]
	if !ok {
		return nil, fmt.Errorf("chain %s: %w", id, errs.ErrNotFound)
	}

	updated := *existing
	update.Apply(&updated)

	if err := s.repo.Save(ctx, &updated); err != nil {
		return nil, fmt.Errorf("failed to persist chain %s: %w", id, err)
	}
	s.chains[id] = &updated

	metrics.RegistryMutations.WithLabelValues("chains", "update").Inc()
	s.snapshots.Enqueue("chains", s.catalogLocked())
	s.events.Publish(events.SubjectChainUpdated, events.RegistryEvent{
		Registry: "chains", EntityID: id, Operation: "update", Timestamp: updated.UpdatedAt,
	})

	out := updated
	return &out, nil
}

// catalogLocked copies the catalog ordered by id. Caller holds the lock.
func (s *ChainRegistryService) catalogLocked() []*models.Chain {
	out := make([]*models.Chain, 0, len(s.chains))
	for _, c := range s.chains {
		cc := *c
		out = append(out, &cc)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func validateChain(chain *models.Chain) error {
	if strings.TrimSpace(chain.ID) == "" {
		return errs.NewValidation("id", "must not be empty")
	}
	if strings.TrimSpace(chain.Network) == "" {
		return errs.NewValidation("network", "must not be empty")
	}
	if chain.ChainID == 0 {
		return errs.NewValidation("chain_id", "must be a positive network identifier")
	}
	if strings.TrimSpace(chain.RPCEndpoint) == "" {
		return errs.NewValidation("rpc_endpoint", "must not be empty")
	}
	if chain.NativeCurrency.Symbol == "" {
		return errs.NewValidation("native_currency.symbol", "must not be empty")
	}
	return nil
}

// Snapshot queues an on-demand backup of the chain catalog.
func (s *ChainRegistryService) Snapshot() {
	s.mu.RLock()
	defer s.mu.RUnlock()
	s.snapshots.Enqueue("chains", s.catalogLocked())
}
