package models

import (
	"time"
)

// NativeCurrency describes the native token of a chain.
type NativeCurrency struct {
	Name     string `json:"name"`
	Symbol   string `json:"symbol"`
	Decimals uint8  `json:"decimals"`
}

// Chain is a registered blockchain network descriptor.
// Chains are registered once and updated in place; there is no delete.
type Chain struct {
	ID             string            `json:"id" gorm:"primaryKey"`
	Network        string            `json:"network" gorm:"not null"`      // symbolic name, e.g. "ethereum-mainnet"
	DisplayName    string            `json:"display_name"`                 // human readable name
	ChainID        uint64            `json:"chain_id" gorm:"not null"`     // numeric network identifier
	RPCEndpoint    string            `json:"rpc_endpoint" gorm:"not null"` // primary RPC endpoint
	ExplorerURL    string            `json:"explorer_url"`
	NativeCurrency NativeCurrency    `json:"native_currency" gorm:"serializer:json"`
	Testnet        bool              `json:"testnet"`
	Metadata       map[string]string `json:"metadata,omitempty" gorm:"serializer:json"`
	CreatedAt      time.Time         `json:"created_at"`
	UpdatedAt      time.Time         `json:"updated_at"`
}

// ChainUpdate carries the mutable subset of Chain for partial updates.
// Nil fields are left untouched.
type ChainUpdate struct {
	DisplayName    *string           `json:"display_name"`
	RPCEndpoint    *string           `json:"rpc_endpoint"`
	ExplorerURL    *string           `json:"explorer_url"`
	NativeCurrency *NativeCurrency   `json:"native_currency"`
	Testnet        *bool             `json:"testnet"`
	Metadata       map[string]string `json:"metadata"`
}

// Apply merges the non-nil fields into c and bumps UpdatedAt.
func (u *ChainUpdate) Apply(c *Chain) {
	if u.DisplayName != nil {
		c.DisplayName = *u.DisplayName
	}
	if u.RPCEndpoint != nil {
		c.RPCEndpoint = *u.RPCEndpoint
	}
	if u.ExplorerURL != nil {
		c.ExplorerURL = *u.ExplorerURL
	}
	if u.NativeCurrency != nil {
		c.NativeCurrency = *u.NativeCurrency
	}
	if u.Testnet != nil {
		c.Testnet = *u.Testnet
	}
	if u.Metadata != nil {
		c.Metadata = u.Metadata
	}
	c.UpdatedAt = time.Now()
}
