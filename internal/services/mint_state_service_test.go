package services

import (
	"context"
	"strings"
	"testing"

	"basket-backend/internal/errs"
	"basket-backend/internal/models"

	"github.com/stretchr/testify/require"
)

func pendingRecord(id string) *models.MintRecord {
	return &models.MintRecord{
		ID:          id,
		BasketID:    "stable",
		Beneficiary: testAddr,
		Amount:      "100",
		Assets:      []models.MintedAsset{{AssetID: "USDA", Symbol: "USDA", Amount: "100"}},
	}
}

func TestMintState_PendingVisibleImmediately(t *testing.T) {
	e := newEnv(t)

	require.NoError(t, e.mints.CreatePending(context.Background(), pendingRecord("mint-1")))

	record, err := e.mints.Get(context.Background(), "mint-1")
	require.NoError(t, err)
	require.Equal(t, models.MintStatusPending, record.Status)
	require.Nil(t, record.CompletedAt, "a pending record must not carry a completion time")
}

func TestMintState_TerminalTransition(t *testing.T) {
	e := newEnv(t)
	require.NoError(t, e.mints.CreatePending(context.Background(), pendingRecord("mint-1")))

	assets := []models.MintedAsset{{AssetID: "USDA", Symbol: "USDA", Amount: "100", TxHash: "0xabc"}}
	record, err := e.mints.UpdateTerminal(context.Background(), "mint-1", models.MintRecordUpdate{
		Status: models.MintStatusCompleted,
		Assets: assets,
	})
	require.NoError(t, err)
	require.Equal(t, models.MintStatusCompleted, record.Status)
	require.NotNil(t, record.CompletedAt, "a terminal record must carry a completion time")
	require.Equal(t, "0xabc", record.Assets[0].TxHash)
}

func TestMintState_SecondTerminalUpdateRejected(t *testing.T) {
	e := newEnv(t)
	require.NoError(t, e.mints.CreatePending(context.Background(), pendingRecord("mint-1")))

	_, err := e.mints.UpdateTerminal(context.Background(), "mint-1", models.MintRecordUpdate{Status: models.MintStatusFailed, Error: "gate"})
	require.NoError(t, err)

	_, err = e.mints.UpdateTerminal(context.Background(), "mint-1", models.MintRecordUpdate{Status: models.MintStatusCompleted})
	require.True(t, errs.IsConflict(err), "a second terminal update must be rejected, got %v", err)

	record, err := e.mints.Get(context.Background(), "mint-1")
	require.NoError(t, err)
	require.Equal(t, models.MintStatusFailed, record.Status, "the first terminal outcome must stand")
	require.Equal(t, "gate", record.Error)
}

func TestMintState_NonTerminalUpdateRejected(t *testing.T) {
	e := newEnv(t)
	require.NoError(t, e.mints.CreatePending(context.Background(), pendingRecord("mint-1")))

	_, err := e.mints.UpdateTerminal(context.Background(), "mint-1", models.MintRecordUpdate{Status: models.MintStatusPending})
	require.True(t, errs.IsValidation(err))
}

func TestMintState_Filters(t *testing.T) {
	e := newEnv(t)

	a := pendingRecord("mint-1")
	b := pendingRecord("mint-2")
	b.Beneficiary = testAddr2
	b.BasketID = "other"
	require.NoError(t, e.mints.CreatePending(context.Background(), a))
	require.NoError(t, e.mints.CreatePending(context.Background(), b))
	_, err := e.mints.UpdateTerminal(context.Background(), "mint-2", models.MintRecordUpdate{Status: models.MintStatusCompleted})
	require.NoError(t, err)

	require.Len(t, e.mints.List(context.Background()), 2)
	require.Len(t, e.mints.ListByBeneficiary(context.Background(), testAddr), 1)
	require.Len(t, e.mints.ListByBasket(context.Background(), "other"), 1)
	require.Len(t, e.mints.ListByStatus(context.Background(), models.MintStatusCompleted), 1)
	require.Len(t, e.mints.ListByStatus(context.Background(), models.MintStatusPending), 1)
}

func TestMintState_DuplicateCreateRejected(t *testing.T) {
	e := newEnv(t)
	require.NoError(t, e.mints.CreatePending(context.Background(), pendingRecord("mint-1")))
	err := e.mints.CreatePending(context.Background(), pendingRecord("mint-1"))
	require.True(t, errs.IsConflict(err))
}

func TestMintState_BeneficiaryQueryIgnoresCasing(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	require.NoError(t, e.mints.CreatePending(ctx, pendingRecord("mint-1")))

	records := e.mints.ListByBeneficiary(ctx, strings.ToLower(testAddr))
	require.Len(t, records, 1, "a lowercased query must match the stored checksummed address")
	require.Equal(t, "mint-1", records[0].ID)
}
