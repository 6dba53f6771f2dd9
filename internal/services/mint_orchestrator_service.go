package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"basket-backend/internal/clients"
	"basket-backend/internal/config"
	"basket-backend/internal/errs"
	"basket-backend/internal/events"
	"basket-backend/internal/metrics"
	"basket-backend/internal/models"
	"basket-backend/internal/utils"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// MintOrchestratorService drives a mint request through its lifecycle:
// expand the basket, create a pending record, pass the proof-of-reserve
// gate, submit one transfer per asset, finalize.
//
// Ordering contract: expansion failures happen before any record exists
// and leave no trace. Once the pending record is created, every outcome
// ends in exactly one terminal update. Assets are submitted sequentially;
// the first failure marks the whole mint failed, with the tx hashes of
// the already-submitted assets preserved in the record.
type MintOrchestratorService struct {
	baskets           *BasketRegistryService
	multiChainBaskets *MultiChainBasketService
	mints             *MintStateService
	multiChainMints   *MultiChainMintService
	por               clients.PORClient
	submitter         clients.SubmissionClient
	events            *events.Publisher
	logger            *logrus.Logger

	porWindow       time.Duration
	perAssetTimeout time.Duration
	defaultDecimals int
	now             func() time.Time

	// advisory per-record locks; orchestration of one record never runs
	// concurrently with itself
	locks sync.Map
}

// NewMintOrchestratorService wires the orchestrator.
func NewMintOrchestratorService(
	cfg *config.Config,
	baskets *BasketRegistryService,
	multiChainBaskets *MultiChainBasketService,
	mints *MintStateService,
	multiChainMints *MultiChainMintService,
	por clients.PORClient,
	submitter clients.SubmissionClient,
	publisher *events.Publisher,
	logger *logrus.Logger,
) *MintOrchestratorService {
	return &MintOrchestratorService{
		baskets:           baskets,
		multiChainBaskets: multiChainBaskets,
		mints:             mints,
		multiChainMints:   multiChainMints,
		por:               por,
		submitter:         submitter,
		events:            publisher,
		logger:            logger,
		porWindow:         cfg.POR.ValidityWindow(),
		perAssetTimeout:   cfg.Submission.PerAssetTimeout(),
		defaultDecimals:   cfg.Tokens.DefaultDecimals,
		now:               time.Now,
	}
}

// RequestMint mints a single-chain basket to beneficiary. The returned
// record is terminal; err carries the gate or submission failure when the
// record is failed.
func (s *MintOrchestratorService) RequestMint(ctx context.Context, basketID, beneficiary, amountStr string) (*models.MintRecord, error) {
	amount, shares, err := s.prepare(ctx, beneficiary, amountStr, func(amount decimal.Decimal) ([]ExpandedShare, error) {
		return s.baskets.Expand(ctx, basketID, amount, "")
	})
	if err != nil {
		return nil, err
	}
	basket, err := s.baskets.Get(ctx, basketID)
	if err != nil {
		return nil, err
	}
	if basket.Status != models.BasketStatusActive {
		return nil, errs.NewConflict("basket %s is %s, minting requires active", basketID, basket.Status)
	}

	txID := uuid.NewString()
	record := &models.MintRecord{
		ID:          models.MintRecordID(txID),
		BasketID:    basketID,
		Beneficiary: utils.NormalizeAddress(beneficiary),
		Amount:      amount.String(),
		Assets:      mintedAssets(shares),
	}
	if err := s.mints.CreatePending(ctx, record); err != nil {
		return nil, err
	}
	metrics.MintsRequested.Inc()
	s.events.Publish(events.SubjectMintRequested, events.MintEvent{
		RecordID: record.ID, BasketID: basketID, Beneficiary: record.Beneficiary,
		Amount: record.Amount, Status: string(models.MintStatusPending), Timestamp: time.Now(),
	})

	unlock := s.lockRecord(record.ID)
	defer unlock()

	finalAssets, runErr := s.run(ctx, "", record.Beneficiary, amount, shares)
	update := models.MintRecordUpdate{Status: models.MintStatusCompleted, Assets: finalAssets}
	if runErr != nil {
		update.Status = models.MintStatusFailed
		update.Error = runErr.Error()
	}
	final, uerr := s.mints.UpdateTerminal(ctx, record.ID, update)
	if uerr != nil {
		return nil, uerr
	}
	s.finish(final.ID, basketID, "", final.Beneficiary, final.Amount, update, runErr)
	return final, runErr
}

// RequestMintMultiChain mints a multi-chain basket on chainID. An empty
// chainID targets the basket's default chain.
func (s *MintOrchestratorService) RequestMintMultiChain(ctx context.Context, basketID, chainID, beneficiary, amountStr string) (*models.MultiChainMintRecord, error) {
	var resolvedChain string
	amount, shares, err := s.prepare(ctx, beneficiary, amountStr, func(amount decimal.Decimal) ([]ExpandedShare, error) {
		var expandErr error
		var out []ExpandedShare
		out, resolvedChain, expandErr = s.multiChainBaskets.Expand(ctx, basketID, chainID, amount, "")
		return out, expandErr
	})
	if err != nil {
		return nil, err
	}
	basket, err := s.multiChainBaskets.Get(ctx, basketID)
	if err != nil {
		return nil, err
	}
	if basket.Status != models.BasketStatusActive {
		return nil, errs.NewConflict("multichain basket %s is %s, minting requires active", basketID, basket.Status)
	}

	txID := uuid.NewString()
	record := &models.MultiChainMintRecord{
		ID:          models.MultiChainMintRecordID(resolvedChain, txID),
		BasketID:    basketID,
		ChainID:     resolvedChain,
		Beneficiary: utils.NormalizeAddress(beneficiary),
		Amount:      amount.String(),
		Assets:      mintedAssets(shares),
	}
	if err := s.multiChainMints.CreatePending(ctx, record); err != nil {
		return nil, err
	}
	metrics.MintsRequested.Inc()
	s.events.Publish(events.SubjectMintRequested, events.MintEvent{
		RecordID: record.ID, BasketID: basketID, ChainID: resolvedChain, Beneficiary: record.Beneficiary,
		Amount: record.Amount, Status: string(models.MintStatusPending), Timestamp: time.Now(),
	})

	unlock := s.lockRecord(record.ID)
	defer unlock()

	finalAssets, runErr := s.run(ctx, resolvedChain, record.Beneficiary, amount, shares)
	update := models.MintRecordUpdate{Status: models.MintStatusCompleted, Assets: finalAssets}
	if runErr != nil {
		update.Status = models.MintStatusFailed
		update.Error = runErr.Error()
	}
	final, uerr := s.multiChainMints.UpdateTerminal(ctx, record.ID, update)
	if uerr != nil {
		return nil, uerr
	}
	s.finish(final.ID, basketID, resolvedChain, final.Beneficiary, final.Amount, update, runErr)
	return final, runErr
}

// prepare validates the request inputs and expands the basket. Everything
// here runs before a record exists; failures leave no trace.
func (s *MintOrchestratorService) prepare(ctx context.Context, beneficiary, amountStr string, expand func(decimal.Decimal) ([]ExpandedShare, error)) (decimal.Decimal, []ExpandedShare, error) {
	if !utils.IsValidAddress(beneficiary) {
		return decimal.Zero, nil, errs.NewValidation("beneficiary", "%s is not a valid address", beneficiary)
	}
	amount, err := utils.ParseAmount(amountStr)
	if err != nil {
		return decimal.Zero, nil, errs.NewValidation("amount", "%v", err)
	}
	shares, err := expand(amount)
	if err != nil {
		return decimal.Zero, nil, err
	}
	if len(shares) == 0 {
		return decimal.Zero, nil, errs.NewValidation("basket_id", "basket has no mintable assets")
	}
	return amount, shares, nil
}

// run executes the POR gate and the sequential per-asset submissions for
// an already-pending record. It returns the asset entries carrying the tx
// hashes collected so far and the first error encountered.
func (s *MintOrchestratorService) run(ctx context.Context, chainID, beneficiary string, amount decimal.Decimal, shares []ExpandedShare) ([]models.MintedAsset, error) {
	assets := mintedAssets(shares)

	if err := s.checkPOR(ctx, amount); err != nil {
		return assets, err
	}

	for i, share := range shares {
		txHash, err := s.submitAsset(ctx, chainID, beneficiary, share)
		if err != nil {
			return assets, &errs.SubmissionError{AssetID: share.AssetID, Err: err}
		}
		assets[i].TxHash = txHash
	}
	return assets, nil
}

// checkPOR enforces the proof-of-reserve gate: the attestation must be
// reachable, no older than the validity window (age equal to the window
// still passes), and the attested reserve must cover the full requested
// amount.
func (s *MintOrchestratorService) checkPOR(ctx context.Context, amount decimal.Decimal) error {
	att, err := s.por.GetAttestation(ctx)
	if err != nil {
		metrics.PORRejections.WithLabelValues(errs.PORReasonUnavailable).Inc()
		return &errs.POREligibilityError{Reason: errs.PORReasonUnavailable, Message: err.Error()}
	}
	if age := att.Age(s.now()); age > s.porWindow {
		metrics.PORRejections.WithLabelValues(errs.PORReasonStale).Inc()
		return &errs.POREligibilityError{
			Reason:  errs.PORReasonStale,
			Message: fmt.Sprintf("attestation is %s old, validity window is %s", age.Round(time.Second), s.porWindow),
		}
	}
	if att.TotalReserve.LessThan(amount) {
		metrics.PORRejections.WithLabelValues(errs.PORReasonInsufficient).Inc()
		return &errs.POREligibilityError{
			Reason:  errs.PORReasonInsufficient,
			Message: fmt.Sprintf("attested reserve %s does not cover requested %s", att.TotalReserve.String(), amount.String()),
		}
	}
	return nil
}

// submitAsset scales one share to base units and submits it under the
// bounded per-asset timeout. Per-deployment decimals win over the
// configured global default.
func (s *MintOrchestratorService) submitAsset(ctx context.Context, chainID, beneficiary string, share ExpandedShare) (string, error) {
	decimals := s.defaultDecimals
	if share.Decimals != nil {
		decimals = *share.Decimals
	}
	baseUnits := utils.ToBaseUnits(share.Amount, decimals)

	subCtx, cancel := context.WithTimeout(ctx, s.perAssetTimeout)
	defer cancel()

	start := time.Now()
	txHash, err := s.submitter.Submit(subCtx, &clients.SubmissionRequest{
		ChainID:         chainID,
		AssetID:         share.AssetID,
		Symbol:          share.Symbol,
		ContractAddress: share.ContractAddress,
		Beneficiary:     beneficiary,
		AmountBaseUnits: baseUnits,
		Amount:          baseUnits.String(),
	})
	metrics.SubmissionDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		return "", err
	}
	return txHash, nil
}

// finish emits the terminal-side metrics, events and logs.
func (s *MintOrchestratorService) finish(recordID, basketID, chainID, beneficiary, amount string, update models.MintRecordUpdate, runErr error) {
	fields := logrus.Fields{
		"record_id": recordID,
		"basket_id": basketID,
		"status":    update.Status,
	}
	if chainID != "" {
		fields["chain_id"] = chainID
	}

	event := events.MintEvent{
		RecordID: recordID, BasketID: basketID, ChainID: chainID, Beneficiary: beneficiary,
		Amount: amount, Status: string(update.Status), Error: update.Error, Timestamp: time.Now(),
	}
	if runErr == nil {
		metrics.MintsCompleted.Inc()
		s.events.Publish(events.SubjectMintCompleted, event)
		s.logger.WithFields(fields).Info("mint completed")
		return
	}
	metrics.MintsFailed.WithLabelValues(failureReason(runErr)).Inc()
	s.events.Publish(events.SubjectMintFailed, event)
	s.logger.WithFields(fields).WithError(runErr).Warn("mint failed")
}

func failureReason(err error) string {
	switch e := err.(type) {
	case *errs.POREligibilityError:
		return e.Reason
	case *errs.SubmissionError:
		return "submission"
	default:
		return "internal"
	}
}

// lockRecord takes the advisory lock for one record id. The mutex stays
// in the map for the life of the process: deleting it on unlock would let
// a waiter on the old mutex and a fresh LoadOrStore hold two different
// mutexes for the same id. One mutex per record ever minted is bounded by
// the ledger itself.
func (s *MintOrchestratorService) lockRecord(id string) func() {
	v, _ := s.locks.LoadOrStore(id, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

func mintedAssets(shares []ExpandedShare) []models.MintedAsset {
	out := make([]models.MintedAsset, len(shares))
	for i, share := range shares {
		out[i] = models.MintedAsset{
			AssetID:         share.AssetID,
			Symbol:          share.Symbol,
			Type:            share.Type,
			Amount:          share.Amount.String(),
			ContractAddress: share.ContractAddress,
		}
	}
	return out
}
