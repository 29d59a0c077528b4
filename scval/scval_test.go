package scval_test

import (
	"math/big"
	"testing"

	"github.com/stellar/go/xdr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stellark/stellark-go/scval"
)

const (
	testAccountAddress  = "GAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAWHF"
	testContractAddress = "CAFJZQWSED6YAWZU3GWRTOCNPPCGBN32L7QV43XX5LZLFTK6JLN34DLN"
)

func TestAddressRoundTrip(t *testing.T) {
	for _, addr := range []string{testAccountAddress, testContractAddress} {
		encoded, err := scval.Address(addr)
		require.NoError(t, err)

		decoded, err := scval.DecodeAddress(encoded)
		require.NoError(t, err)
		assert.Equal(t, addr, decoded)
	}
}

func TestAddressInvalid(t *testing.T) {
	for _, addr := range []string{"", "XABC", "G", "Gnotbase32", "C123"} {
		_, err := scval.Address(addr)
		assert.ErrorIs(t, err, scval.ErrInvalidAddress, "address %q", addr)
	}
}

func TestStringRoundTrip(t *testing.T) {
	v := scval.String("Acme Robotics")
	s, err := scval.DecodeString(v)
	require.NoError(t, err)
	assert.Equal(t, "Acme Robotics", s)

	// decoding a string as a symbol must fail, not coerce
	_, err = scval.DecodeSymbol(v)
	assert.Error(t, err)
}

func TestI128RoundTrip(t *testing.T) {
	for _, v := range []int64{0, 1, -1, 1_000_000, -5_000_000_000, 1<<62 + 7} {
		decoded, err := scval.DecodeI128ToInt64(scval.I128(v))
		require.NoError(t, err)
		assert.Equal(t, v, decoded)
	}
}

func TestAmountScaling(t *testing.T) {
	// 0.10 XLM is exactly one million base units
	v := scval.Amount(0.10)
	n, err := scval.DecodeI128ToInt64(v)
	require.NoError(t, err)
	assert.Equal(t, int64(1_000_000), n)

	// flooring, not rounding
	n, err = scval.DecodeI128ToInt64(scval.Amount(0.00000019))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestAmountScalingIdempotence(t *testing.T) {
	for _, baseUnits := range []int64{0, 1, 1_000_000, 12_500_000, 250_000_000} {
		human := float64(baseUnits) / scval.StroopScale
		n, err := scval.DecodeI128ToInt64(scval.Amount(human))
		require.NoError(t, err)
		assert.Equal(t, baseUnits, n)
	}
}

func TestDecodeI128PrecisionLoss(t *testing.T) {
	// 2^64 does not fit int64
	parts := xdr.Int128Parts{Hi: 1, Lo: 0}
	wide := xdr.ScVal{Type: xdr.ScValTypeScvI128, I128: &parts}

	_, err := scval.DecodeI128ToInt64(wide)
	assert.ErrorIs(t, err, scval.ErrPrecisionLoss)

	// the exact path still works
	b, err := scval.DecodeI128(wide)
	require.NoError(t, err)
	assert.Equal(t, new(big.Int).Lsh(big.NewInt(1), 64), b)
}

func TestI128ToBigIntNegative(t *testing.T) {
	b := scval.I128ToBigInt(xdr.Int128Parts{Hi: -1, Lo: ^xdr.Uint64(0)})
	assert.Equal(t, int64(-1), b.Int64())
}

func TestI128ToDecimalFloat(t *testing.T) {
	parts := xdr.Int128Parts{Hi: 0, Lo: 12_500_000}
	assert.InDelta(t, 1.25, scval.I128ToDecimalFloat(parts, 7), 1e-9)
}

func TestMapField(t *testing.T) {
	nameKey := xdr.ScSymbol("name")
	m := xdr.ScMap{
		{Key: xdr.ScVal{Type: xdr.ScValTypeScvSymbol, Sym: &nameKey}, Val: scval.String("Acme")},
	}

	v, ok := scval.MapField(m, "name")
	require.True(t, ok)
	s, err := scval.DecodeString(v)
	require.NoError(t, err)
	assert.Equal(t, "Acme", s)

	_, ok = scval.MapField(m, "symbol")
	assert.False(t, ok)
}
