package utils

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestParseAmount(t *testing.T) {
	d, err := ParseAmount("123.456")
	require.NoError(t, err)
	require.Equal(t, "123.456", d.String())

	_, err = ParseAmount("0")
	require.Error(t, err)
	_, err = ParseAmount("-1")
	require.Error(t, err)
	_, err = ParseAmount("abc")
	require.Error(t, err)
}

func TestWeightShareExact(t *testing.T) {
	total := decimal.NewFromInt(1000)
	require.Equal(t, "600", WeightShare(total, 60).String())
	require.Equal(t, "400", WeightShare(total, 40).String())

	// no binary drift on awkward decimals
	small := decimal.RequireFromString("0.01")
	require.Equal(t, "0.0033", WeightShare(small, 33).String())

	sum := WeightShare(small, 33).Add(WeightShare(small, 33)).Add(WeightShare(small, 34))
	require.True(t, sum.Equal(small), "shares of a full weight set must sum back exactly")
}

func TestToBaseUnits(t *testing.T) {
	require.Equal(t, "1500000", ToBaseUnits(decimal.RequireFromString("1.5"), 6).String())
	require.Equal(t, "600000000000000000000", ToBaseUnits(decimal.NewFromInt(600), 18).String())

	// sub-unit remainder truncates toward zero
	require.Equal(t, "0", ToBaseUnits(decimal.RequireFromString("0.0000005"), 6).String())
	require.Equal(t, "1", ToBaseUnits(decimal.RequireFromString("0.0000019"), 6).String())
}

func TestFirstChainID(t *testing.T) {
	require.Equal(t, "", FirstChainID(nil))
	require.Equal(t, "alpha", FirstChainID([]string{"gamma", "alpha", "beta"}))

	sorted := SortedChainIDs([]string{"c", "a", "b"})
	require.Equal(t, []string{"a", "b", "c"}, sorted)
}

func TestAddressValidation(t *testing.T) {
	require.True(t, IsValidAddress("0x742d35Cc6634C0532925a3b844Bc454e4438f44e"))
	require.False(t, IsValidAddress("not-an-address"))
	require.False(t, IsValidAddress("0x1234"))

	require.True(t, IsValidTxHash("0xab00000000000000000000000000000000000000000000000000000000000000"))
	require.False(t, IsValidTxHash("0x1234"))
	require.False(t, IsValidTxHash("0xzz00000000000000000000000000000000000000000000000000000000000000"))
}

func TestNormalizeAddressChecksum(t *testing.T) {
	checksummed := "0x8ba1f109551bD432803012645Ac136ddd64DBA72"

	// every casing canonicalizes to the EIP-55 form
	require.Equal(t, checksummed, NormalizeAddress(checksummed))
	require.Equal(t, checksummed, NormalizeAddress("0x8ba1f109551bd432803012645ac136ddd64dba72"))
	require.Equal(t, checksummed, NormalizeAddress("0x8BA1F109551BD432803012645AC136DDD64DBA72"))
	require.Equal(t, checksummed, NormalizeAddress("8ba1f109551bd432803012645ac136ddd64dba72"))

	// non-address input passes through untouched
	require.Equal(t, "not-an-address", NormalizeAddress("not-an-address"))
	require.Equal(t, "", NormalizeAddress(""))
}
