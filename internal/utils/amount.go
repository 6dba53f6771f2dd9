package utils

import (
	"fmt"
	"math/big"
	"sort"

	"github.com/shopspring/decimal"
)

// ParseAmount parses a positive decimal amount string.
func ParseAmount(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	if d.Sign() <= 0 {
		return decimal.Zero, fmt.Errorf("amount must be positive, got %s", d.String())
	}
	return d, nil
}

// ToBaseUnits scales a basket-unit amount to on-chain base units
// (amount * 10^decimals). A fractional remainder below the smallest unit is
// truncated toward zero.
func ToBaseUnits(amount decimal.Decimal, decimals int) *big.Int {
	return amount.Shift(int32(decimals)).Truncate(0).BigInt()
}

// WeightShare returns total * weight / 100 exactly. Division by 100 is a
// decimal exponent shift, so no binary rounding drift accumulates across
// the entries of a basket.
func WeightShare(total decimal.Decimal, weight int) decimal.Decimal {
	return total.Mul(decimal.New(int64(weight), -2))
}

// SortedChainIDs returns the chain ids in lexicographic order. Used for
// deterministic default-chain reassignment and stable list output.
func SortedChainIDs(ids []string) []string {
	out := make([]string, len(ids))
	copy(out, ids)
	sort.Strings(out)
	return out
}

// FirstChainID returns the lexicographically smallest chain id, or "" for
// an empty set. Map iteration order is not stable, so default-chain
// reassignment must not rely on insertion order.
func FirstChainID(ids []string) string {
	if len(ids) == 0 {
		return ""
	}
	first := ids[0]
	for _, id := range ids[1:] {
		if id < first {
			first = id
		}
	}
	return first
}
