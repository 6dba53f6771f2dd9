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

	"github.com/sirupsen/logrus"
)

// MintStateService is the single-chain mint ledger. A record enters as
// pending and transitions exactly once to completed or failed; a second
// terminal update is rejected with a conflict and the stored record keeps
// its first terminal outcome.
type MintStateService struct {
	mu      sync.RWMutex
	records map[string]*models.MintRecord

	repo      repository.MintRepository
	snapshots *SnapshotService
	logger    *logrus.Logger
}

// NewMintStateService creates the ledger.
func NewMintStateService(repo repository.MintRepository, snapshots *SnapshotService, logger *logrus.Logger) *MintStateService {
	return &MintStateService{
		records:   make(map[string]*models.MintRecord),
		repo:      repo,
		snapshots: snapshots,
		logger:    logger,
	}
}

// Load populates the ledger from the repository.
func (s *MintStateService) Load(ctx context.Context) error {
	records, err := s.repo.LoadAll(ctx)
	if err != nil {
		return fmt.Errorf("failed to load mint ledger: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range records {
		s.records[r.ID] = r
	}
	metrics.RegistrySize.WithLabelValues("mints").Set(float64(len(s.records)))
	s.logger.WithField("count", len(s.records)).Info("mint ledger loaded")
	return nil
}

// CreatePending records a freshly accepted mint request. The record is
// visible to reads the moment this returns.
func (s *MintStateService) CreatePending(ctx context.Context, record *models.MintRecord) error {
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

	metrics.RegistrySize.WithLabelValues("mints").Set(float64(len(s.records)))
	s.snapshots.Enqueue("mints", s.ledgerLocked())
	return nil
}

// UpdateTerminal applies the one allowed terminal transition. The update
// must carry a terminal status; a record already terminal is left exactly
// as it was.
func (s *MintStateService) UpdateTerminal(ctx context.Context, id string, update models.MintRecordUpdate) (*models.MintRecord, error) {
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

	updated := copyMintRecord(existing)
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

	s.snapshots.Enqueue("mints", s.ledgerLocked())
	s.logger.WithFields(logrus.Fields{
		"record_id": id,
		"status":    updated.Status,
	}).Info("mint record finalized")

	return copyMintRecord(updated), nil
}

// Get returns the record for id.
func (s *MintStateService) Get(ctx context.Context, id string) (*models.MintRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	record, ok := s.records[id]
	if !ok {
		return nil, fmt.Errorf("mint record %s: %w", id, errs.ErrNotFound)
	}
	return copyMintRecord(record), nil
}

// List returns all records, newest first.
func (s *MintStateService) List(ctx context.Context) []*models.MintRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ledgerLocked()
}

// ListByBeneficiary returns the records minted to beneficiary. The
// argument is canonicalized, so any casing of the address matches the
// stored records.
func (s *MintStateService) ListByBeneficiary(ctx context.Context, beneficiary string) []*models.MintRecord {
	beneficiary = utils.NormalizeAddress(beneficiary)
	return s.filter(func(r *models.MintRecord) bool { return r.Beneficiary == beneficiary })
}

// ListByBasket returns the records of one basket.
func (s *MintStateService) ListByBasket(ctx context.Context, basketID string) []*models.MintRecord {
	return s.filter(func(r *models.MintRecord) bool { return r.BasketID == basketID })
}

// ListByStatus returns the records in one lifecycle status.
func (s *MintStateService) ListByStatus(ctx context.Context, status models.MintStatus) []*models.MintRecord {
	return s.filter(func(r *models.MintRecord) bool { return r.Status == status })
}

func (s *MintStateService) filter(keep func(*models.MintRecord) bool) []*models.MintRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.MintRecord, 0)
	for _, r := range s.records {
		if keep(r) {
			out = append(out, copyMintRecord(r))
		}
	}
	sortMintRecords(out)
	return out
}

func (s *MintStateService) ledgerLocked() []*models.MintRecord {
	out := make([]*models.MintRecord, 0, len(s.records))
	for _, r := range s.records {
		out = append(out, copyMintRecord(r))
	}
	sortMintRecords(out)
	return out
}

func sortMintRecords(records []*models.MintRecord) {
	sort.Slice(records, func(i, j int) bool {
		if records[i].CreatedAt.Equal(records[j].CreatedAt) {
			return records[i].ID < records[j].ID
		}
		return records[i].CreatedAt.After(records[j].CreatedAt)
	})
}

func copyMintRecord(r *models.MintRecord) *models.MintRecord {
	out := *r
	out.Assets = make([]models.MintedAsset, len(r.Assets))
	copy(out.Assets, r.Assets)
	if r.CompletedAt != nil {
		t := *r.CompletedAt
		out.CompletedAt = &t
	}
	return &out
}

// Snapshot queues an on-demand backup of the mint ledger.
func (s *MintStateService) Snapshot() {
	s.mu.RLock()
	defer s.mu.RUnlock()
	s.snapshots.Enqueue("mints", s.ledgerLocked())
}
