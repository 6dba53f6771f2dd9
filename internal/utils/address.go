package utils

import (
	"encoding/hex"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// IsValidAddress reports whether address is a well-formed 20-byte EVM
// address (with or without 0x prefix).
func IsValidAddress(address string) bool {
	if address == "" {
		return false
	}
	if !strings.HasPrefix(strings.ToLower(address), "0x") {
		address = "0x" + address
	}
	return common.IsHexAddress(address)
}

// NormalizeAddress canonicalizes an EVM address to its EIP-55
// checksummed form with the 0x prefix. Every address stored on a
// registry entry or a mint record goes through this, so stored and
// queried addresses compare equal regardless of the caller's casing.
// Non-address input is returned unchanged.
func NormalizeAddress(address string) string {
	if address == "" {
		return ""
	}
	candidate := address
	if !strings.HasPrefix(strings.ToLower(candidate), "0x") {
		candidate = "0x" + candidate
	}
	if !common.IsHexAddress(candidate) {
		return address
	}
	return common.HexToAddress(candidate).Hex()
}

// IsValidTxHash reports whether h is a 32-byte hex transaction hash
// (0x + 64 hex chars).
func IsValidTxHash(h string) bool {
	if len(h) != 66 || !strings.HasPrefix(strings.ToLower(h), "0x") {
		return false
	}
	_, err := hex.DecodeString(h[2:])
	return err == nil
}
