package models

import (
	"time"
)

// AssetType classifies what an asset represents.
type AssetType string

const (
	AssetTypeMonetary AssetType = "monetary"       // fiat-backed / stablecoin style
	AssetTypeDigital  AssetType = "digital_asset"  // native crypto asset
	AssetTypeNFT      AssetType = "nft"            // non-fungible
	AssetTypePhysical AssetType = "physical_backed" // commodity / real-world backing
	AssetTypeCustom   AssetType = "custom"
)

// ValidAssetType reports whether t is one of the known asset types.
func ValidAssetType(t AssetType) bool {
	switch t {
	case AssetTypeMonetary, AssetTypeDigital, AssetTypeNFT, AssetTypePhysical, AssetTypeCustom:
		return true
	}
	return false
}

// Asset is a single-chain asset descriptor. Assets are immutable once
// registered except for the metadata the caller embeds at creation.
type Asset struct {
	ID              string            `json:"id" gorm:"primaryKey"`
	Type            AssetType         `json:"type" gorm:"not null"`
	Name            string            `json:"name" gorm:"not null"`
	Symbol          string            `json:"symbol" gorm:"not null"`
	Decimals        *int              `json:"decimals,omitempty"` // nil = use the configured global default
	ContractAddress string            `json:"contract_address"`
	Metadata        map[string]string `json:"metadata,omitempty" gorm:"serializer:json"`
	CreatedAt       time.Time         `json:"created_at"`
}

// ChainDeployment describes one asset deployment on one chain.
type ChainDeployment struct {
	ContractAddress string            `json:"contract_address"`
	Decimals        *int              `json:"decimals,omitempty"`
	Metadata        map[string]string `json:"metadata,omitempty"`
}

// MultiChainAsset is an asset deployed on one or more chains.
// Invariant: Deployments is non-empty and always contains DefaultChainID.
type MultiChainAsset struct {
	ID             string                     `json:"id" gorm:"primaryKey"`
	Type           AssetType                  `json:"type" gorm:"not null"`
	Name           string                     `json:"name" gorm:"not null"`
	Symbol         string                     `json:"symbol" gorm:"not null"`
	Decimals       *int                       `json:"decimals,omitempty"` // fallback when a deployment carries none
	Deployments    map[string]ChainDeployment `json:"deployments" gorm:"serializer:json"`
	DefaultChainID string                     `json:"default_chain_id" gorm:"not null"`
	Metadata       map[string]string          `json:"metadata,omitempty" gorm:"serializer:json"`
	CreatedAt      time.Time                  `json:"created_at"`
	UpdatedAt      time.Time                  `json:"updated_at"`
}

// DeployedOn reports whether the asset has a deployment on chainID.
func (a *MultiChainAsset) DeployedOn(chainID string) bool {
	_, ok := a.Deployments[chainID]
	return ok
}

// ChainIDs returns the ids of all chains the asset is deployed on.
func (a *MultiChainAsset) ChainIDs() []string {
	ids := make([]string, 0, len(a.Deployments))
	for id := range a.Deployments {
		ids = append(ids, id)
	}
	return ids
}
