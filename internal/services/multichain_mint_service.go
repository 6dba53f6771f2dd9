package services

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"basket-backend/internal/errs"
	"basket-backend/internal/metrics"
	"basket-backend/internal/models"
	"basket-backend/internal/repository"
	"basket-backend/internal/utils"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// MintTotals aggregates completed mints under one grouping key (a chain
// id or an asset id). TotalAmount is an exact decimal sum: the requested
// basket amount when grouping by chain, the per-asset share when grouping
// by asset.
type MintTotals struct {
	Mints       int    `json:"mints"`
	TotalAmount string `json:"total_amount"`
}

// BeneficiaryStats is the cross-chain mint summary of one beneficiary.
// Only completed records contribute to the totals.
type BeneficiaryStats struct {
	Beneficiary string                `json:"beneficiary"`
	Completed   int                   `json:"completed"`
	Failed      int                   `json:"failed"`
	Pending     int                   `json:"pending"`
	ByChain     map[string]MintTotals `json:"by_chain"`
	ByAsset     map[string]MintTotals `json:"by_asset"`
}

// LedgerStats is the whole-ledger mint summary across all beneficiaries.
type LedgerStats struct {
	Completed            int                   `json:"completed"`
	Failed               int                   `json:"failed"`
	Pending              int                   `json:"pending"`
	TotalCompletedAmount string                `json:"total_completed_amount"`
	ByChain              map[string]MintTotals `json:"by_chain"`
	ByAsset              map[string]MintTotals `json:"by_asset"`
}

// MultiChainMintService is the chain-qualified mint ledger with the same
// exactly-once terminal contract as the single-chain ledger.
type MultiChainMintService struct {
	mu      sync.RWMutex
	records map[string]*models.MultiChainMintRecord

	repo      repository.MultiChainMintRepository
	snapshots *SnapshotService
	logger    *logrus.Logger
}

// NewMultiChainMintService creates the ledger.
func NewMultiChainMintService(repo repository.MultiChainMintRepository, snapshots *SnapshotService, logger *logrus.Logger) *MultiChainMintService {
	return &MultiChainMintService{
		records:   make(map[string]*models.MultiChainMintRecord),
		repo:      repo,
		snapshots: snapshots,
		logger:    logger,
	}
}

// Load populates the ledger from the repository.
func (s *MultiChainMintService) Load(ctx context.Context) error {
	records, err := s.repo.LoadAll(ctx)
	if err != nil {
		return fmt.Errorf("failed to load multichain mint ledger: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range records {
		s.records[r.ID] = r
	}
	metrics.RegistrySize.WithLabelValues("multichain_mints").Set(float64(len(s.records)))
	s.logger.WithField("count", len(s.records)).Info("multichain mint ledger loaded")
	return nil
}

// CreatePending records a freshly accepted mint request.
func (s *MultiChainMintService) CreatePending(ctx context.Context, record *models.MultiChainMintRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.records[record.ID]; exists {
		return errs.NewConflict("mint record %s already exists", record.ID)
	}

	record.Status = models.MintStatusPending
	record.CreatedAt = time.Now()
	record.CompletedAt = nil

	if err := s.repo.Save(ctx, record); err != nil {
		return fmt.Errorf("failed to persist mint record %s: %w", record.ID, err)
	}
	s.records[record.ID] = record

	metrics.RegistrySize.WithLabelValues("multichain_mints").Set(float64(len(s.records)))
	s.snapshots.Enqueue("multichain_mints", s.ledgerLocked())
	return nil
}

// UpdateTerminal applies the one allowed terminal transition.
func (s *MultiChainMintService) UpdateTerminal(ctx context.Context, id string, update models.MintRecordUpdate) (*models.MultiChainMintRecord, error) {
	if !update.Status.Terminal() {
		return nil, errs.NewValidation("status", "%s is not a terminal status", update.Status)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.records[id]
	if !ok {
		return nil, fmt.Errorf("mint record %s: %w", id, errs.ErrNotFound)
	}
	if existing.Status.Terminal() {
		return nil, errs.NewConflict("mint record %s is already %s", id, existing.Status)
	}

	updated := copyMultiChainMintRecord(existing)
	updated.Status = update.Status
	updated.Error = update.Error
	if update.Assets != nil {
		updated.Assets = update.Assets
	}
	now := time.Now()
	updated.CompletedAt = &now

	if err := s.repo.Save(ctx, updated); err != nil {
		return nil, fmt.Errorf("failed to persist mint record %s: %w", id, err)
	}
	s.records[id] = updated

	s.snapshots.Enqueue("multichain_mints", s.ledgerLocked())
	s.logger.WithFields(logrus.Fields{
		"record_id": id,
		"chain_id":  updated.ChainID,
		"status":    updated.Status,
	}).Info("multichain mint record finalized")

	return copyMultiChainMintRecord(updated), nil
}

// Get returns the record for id.
func (s *MultiChainMintService) Get(ctx context.Context, id string) (*models.MultiChainMintRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	record, ok := s.records[id]
	if !ok {
		return nil, fmt.Errorf("mint record %s: %w", id, errs.ErrNotFound)
	}
	return copyMultiChainMintRecord(record), nil
}

// List returns all records, newest first.
func (s *MultiChainMintService) List(ctx context.Context) []*models.MultiChainMintRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ledgerLocked()
}

// ListByChain returns the records minted on chainID.
func (s *MultiChainMintService) ListByChain(ctx context.Context, chainID string) []*models.MultiChainMintRecord {
	return s.filter(func(r *models.MultiChainMintRecord) bool { return r.ChainID == chainID })
}

// ListByBeneficiary returns the records minted to beneficiary across all
// chains. The argument is canonicalized, so any casing of the address
// matches the stored records.
func (s *MultiChainMintService) ListByBeneficiary(ctx context.Context, beneficiary string) []*models.MultiChainMintRecord {
	beneficiary = utils.NormalizeAddress(beneficiary)
	return s.filter(func(r *models.MultiChainMintRecord) bool { return r.Beneficiary == beneficiary })
}

// ListByBasket returns the records of one basket across all chains.
func (s *MultiChainMintService) ListByBasket(ctx context.Context, basketID string) []*models.MultiChainMintRecord {
	return s.filter(func(r *models.MultiChainMintRecord) bool { return r.BasketID == basketID })
}

// ListByStatus returns the records currently in status.
func (s *MultiChainMintService) ListByStatus(ctx context.Context, status models.MintStatus) []*models.MultiChainMintRecord {
	return s.filter(func(r *models.MultiChainMintRecord) bool { return r.Status == status })
}

// mintAccumulator folds completed records into per-chain and per-asset
// decimal totals. Caller holds at least the read lock while folding.
type mintAccumulator struct {
	completed, failed, pending int
	grandTotal                 decimal.Decimal
	chainTotals                map[string]decimal.Decimal
	chainCounts                map[string]int
	assetTotals                map[string]decimal.Decimal
	assetCounts                map[string]int
}

func newMintAccumulator() *mintAccumulator {
	return &mintAccumulator{
		chainTotals: make(map[string]decimal.Decimal),
		chainCounts: make(map[string]int),
		assetTotals: make(map[string]decimal.Decimal),
		assetCounts: make(map[string]int),
	}
}

func (a *mintAccumulator) add(r *models.MultiChainMintRecord) error {
	switch r.Status {
	case models.MintStatusCompleted:
		a.completed++
		amount, err := decimal.NewFromString(r.Amount)
		if err != nil {
			return fmt.Errorf("mint record %s has unparseable amount %q: %w", r.ID, r.Amount, err)
		}
		a.grandTotal = a.grandTotal.Add(amount)
		a.chainTotals[r.ChainID] = a.chainTotals[r.ChainID].Add(amount)
		a.chainCounts[r.ChainID]++
		for _, asset := range r.Assets {
			share, err := decimal.NewFromString(asset.Amount)
			if err != nil {
				return fmt.Errorf("mint record %s asset %s has unparseable amount %q: %w", r.ID, asset.AssetID, asset.Amount, err)
			}
			a.assetTotals[asset.AssetID] = a.assetTotals[asset.AssetID].Add(share)
			a.assetCounts[asset.AssetID]++
		}
	case models.MintStatusFailed:
		a.failed++
	case models.MintStatusPending:
		a.pending++
	}
	return nil
}

func (a *mintAccumulator) byChain() map[string]MintTotals {
	out := make(map[string]MintTotals, len(a.chainTotals))
	for chainID, total := range a.chainTotals {
		out[chainID] = MintTotals{Mints: a.chainCounts[chainID], TotalAmount: total.String()}
	}
	return out
}

func (a *mintAccumulator) byAsset() map[string]MintTotals {
	out := make(map[string]MintTotals, len(a.assetTotals))
	for assetID, total := range a.assetTotals {
		out[assetID] = MintTotals{Mints: a.assetCounts[assetID], TotalAmount: total.String()}
	}
	return out
}

// StatsForBeneficiary aggregates the beneficiary's mints across chains,
// grouped by chain id and by asset id. Completed records only contribute
// to the totals; amounts are summed in decimal arithmetic. The argument
// is canonicalized before matching.
func (s *MultiChainMintService) StatsForBeneficiary(ctx context.Context, beneficiary string) (*BeneficiaryStats, error) {
	beneficiary = utils.NormalizeAddress(beneficiary)

	s.mu.RLock()
	defer s.mu.RUnlock()

	acc := newMintAccumulator()
	for _, r := range s.records {
		if r.Beneficiary != beneficiary {
			continue
		}
		if err := acc.add(r); err != nil {
			return nil, err
		}
	}
	return &BeneficiaryStats{
		Beneficiary: beneficiary,
		Completed:   acc.completed,
		Failed:      acc.failed,
		Pending:     acc.pending,
		ByChain:     acc.byChain(),
		ByAsset:     acc.byAsset(),
	}, nil
}

// Stats aggregates the whole ledger across all beneficiaries, grouped by
// chain id and by asset id.
func (s *MultiChainMintService) Stats(ctx context.Context) (*LedgerStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	acc := newMintAccumulator()
	for _, r := range s.records {
		if err := acc.add(r); err != nil {
			return nil, err
		}
	}
	return &LedgerStats{
		Completed:            acc.completed,
		Failed:               acc.failed,
		Pending:              acc.pending,
		TotalCompletedAmount: acc.grandTotal.String(),
		ByChain:              acc.byChain(),
		ByAsset:              acc.byAsset(),
	}, nil
}

func (s *MultiChainMintService) filter(keep func(*models.MultiChainMintRecord) bool) []*models.MultiChainMintRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.MultiChainMintRecord, 0)
	for _, r := range s.records {
		if keep(r) {
			out = append(out, copyMultiChainMintRecord(r))
		}
	}
	sortMultiChainMintRecords(out)
	return out
}

func (s *MultiChainMintService) ledgerLocked() []*models.MultiChainMintRecord {
	out := make([]*models.MultiChainMintRecord, 0, len(s.records))
	for _, r := range s.records {
		out = append(out, copyMultiChainMintRecord(r))
	}
	sortMultiChainMintRecords(out)
	return out
}

func sortMultiChainMintRecords(records []*models.MultiChainMintRecord) {
	sort.Slice(records, func(i, j int) bool {
		if records[i].CreatedAt.Equal(records[j].CreatedAt) {
			return records[i].ID < records[j].ID
		}
		return records[i].CreatedAt.After(records[j].CreatedAt)
	})
}

func copyMultiChainMintRecord(r *models.MultiChainMintRecord) *models.MultiChainMintRecord {
	out := *r
	out.Assets = make([]models.MintedAsset, len(r.Assets))
	copy(out.Assets, r.Assets)
	if r.CompletedAt != nil {
		t := *r.CompletedAt
		out.CompletedAt = &t
	}
	return &out
}

// Snapshot queues an on-demand backup of the multi-chain mint ledger.
func (s *MultiChainMintService) Snapshot() {
	s.mu.RLock()
	defer s.mu.RUnlock()
	s.snapshots.Enqueue("multichain_mints", s.ledgerLocked())
}
