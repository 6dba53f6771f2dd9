package models

import (
	"time"
)

// MintStatus lifecycle of a mint record. A record is created pending the
// instant a mint request is accepted and transitions exactly once to a
// terminal status.
type MintStatus string

const (
	MintStatusPending   MintStatus = "pending"
	MintStatusCompleted MintStatus = "completed"
	MintStatusFailed    MintStatus = "failed"
)

// Terminal reports whether s is a terminal status.
func (s MintStatus) Terminal() bool {
	return s == MintStatusCompleted || s == MintStatusFailed
}

// MintedAsset is one per-asset entry of a mint record. TxHash is set once
// the transfer for this asset has been submitted.
type MintedAsset struct {
	AssetID         string    `json:"asset_id"`
	Symbol          string    `json:"symbol"`
	Type            AssetType `json:"type"`
	Amount          string    `json:"amount"` // decimal string, basket units
	ContractAddress string    `json:"contract_address"`
	TxHash          string    `json:"tx_hash,omitempty"`
}

// MintRecord is the single-chain mint ledger entry. The id is derived
// deterministically from the request transaction id via MintRecordID.
type MintRecord struct {
	ID          string        `json:"id" gorm:"primaryKey"`
	BasketID    string        `json:"basket_id" gorm:"not null"`
	Beneficiary string        `json:"beneficiary" gorm:"not null"`
	Amount      string        `json:"amount" gorm:"not null"` // requested total, decimal string
	Assets      []MintedAsset `json:"assets" gorm:"serializer:json"`
	Status      MintStatus    `json:"status" gorm:"not null"`
	Error       string        `json:"error,omitempty" gorm:"type:text"`
	CreatedAt   time.Time     `json:"created_at"`
	CompletedAt *time.Time    `json:"completed_at,omitempty"` // set iff Status is terminal
}

// MultiChainMintRecord is the chain-qualified variant of MintRecord.
type MultiChainMintRecord struct {
	ID          string        `json:"id" gorm:"primaryKey"`
	BasketID    string        `json:"basket_id" gorm:"not null"`
	ChainID     string        `json:"chain_id" gorm:"not null"`
	Beneficiary string        `json:"beneficiary" gorm:"not null"`
	Amount      string        `json:"amount" gorm:"not null"`
	Assets      []MintedAsset `json:"assets" gorm:"serializer:json"`
	Status      MintStatus    `json:"status" gorm:"not null"`
	Error       string        `json:"error,omitempty" gorm:"type:text"`
	CreatedAt   time.Time     `json:"created_at"`
	CompletedAt *time.Time    `json:"completed_at,omitempty"`
}

// MintRecordID derives the record id from a request transaction id.
func MintRecordID(txID string) string {
	return "mint-" + txID
}

// MultiChainMintRecordID derives the chain-qualified record id.
func MultiChainMintRecordID(chainID, txID string) string {
	return "mint-" + chainID + "-" + txID
}

// MintRecordUpdate carries the terminal transition of a mint record.
type MintRecordUpdate struct {
	Status MintStatus
	Assets []MintedAsset // replaces the entries when non-nil (carries tx hashes)
	Error  string
}
