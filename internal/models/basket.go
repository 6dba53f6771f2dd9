package models

import (
	"time"
)

// BasketStatus lifecycle of a basket.
type BasketStatus string

const (
	BasketStatusActive     BasketStatus = "active"
	BasketStatusPaused     BasketStatus = "paused"
	BasketStatusDeprecated BasketStatus = "deprecated"
)

// BasketAsset is one weighted entry of a basket. Weight is an integer
// percentage in [0,100]; the weights of a basket sum to exactly 100.
type BasketAsset struct {
	AssetID    string `json:"asset_id"`
	Weight     int    `json:"weight"`
	Proportion string `json:"proportion"` // display label, e.g. "60%"
}

// Basket is a named collection of weighted assets on a single chain.
type Basket struct {
	ID          string        `json:"id" gorm:"primaryKey"`
	Name        string        `json:"name" gorm:"not null"`
	Symbol      string        `json:"symbol" gorm:"not null"`
	Description string        `json:"description"`
	Status      BasketStatus  `json:"status" gorm:"not null"`
	Assets      []BasketAsset `json:"assets" gorm:"serializer:json"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

// MultiChainBasket is a basket mintable on a set of supported chains.
// Invariant: SupportedChains is non-empty and contains DefaultChainID.
type MultiChainBasket struct {
	ID              string        `json:"id" gorm:"primaryKey"`
	Name            string        `json:"name" gorm:"not null"`
	Symbol          string        `json:"symbol" gorm:"not null"`
	Description     string        `json:"description"`
	Status          BasketStatus  `json:"status" gorm:"not null"`
	Assets          []BasketAsset `json:"assets" gorm:"serializer:json"`
	SupportedChains []string      `json:"supported_chains" gorm:"serializer:json"`
	DefaultChainID  string        `json:"default_chain_id" gorm:"not null"`
	CreatedAt       time.Time     `json:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at"`
}

// SupportsChain reports whether chainID is in the supported list.
func (b *MultiChainBasket) SupportsChain(chainID string) bool {
	for _, id := range b.SupportedChains {
		if id == chainID {
			return true
		}
	}
	return false
}
