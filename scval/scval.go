// Package scval converts native Go values to and from the Soroban
// smart-contract value representation (xdr.ScVal).
package scval

import (
	"errors"
	"fmt"
	"math"
	"math/big"

	"github.com/stellar/go/strkey"
	"github.com/stellar/go/xdr"
)

// StroopScale is the number of base units per whole XLM (10^7).
// Human-facing amounts are converted to base units before they go on-chain.
const StroopScale = 10_000_000

var (
	// ErrInvalidAddress means the string is not a valid G- or C-strkey.
	ErrInvalidAddress = errors.New("invalid address")

	// ErrPrecisionLoss means a 128-bit ledger value does not fit the
	// requested native width.
	ErrPrecisionLoss = errors.New("value exceeds native integer range")
)

// ScAddressFromString parses a strkey-encoded account (G...) or contract (C...)
// address into an xdr.ScAddress.
func ScAddressFromString(addressStr string) (xdr.ScAddress, error) {
	var scAddr xdr.ScAddress

	if len(addressStr) == 0 {
		return scAddr, fmt.Errorf("%w: empty address string", ErrInvalidAddress)
	}

	switch addressStr[0] {
	case 'G':
		rawBytes, err := strkey.Decode(strkey.VersionByteAccountID, addressStr)
		if err != nil {
			return scAddr, fmt.Errorf("%w: %v", ErrInvalidAddress, err)
		}

		var accountID xdr.AccountId
		var uint256 xdr.Uint256
		copy(uint256[:], rawBytes)
		accountID.Type = xdr.PublicKeyTypePublicKeyTypeEd25519
		accountID.Ed25519 = &uint256

		scAddr.Type = xdr.ScAddressTypeScAddressTypeAccount
		scAddr.AccountId = &accountID

	case 'C':
		rawBytes, err := strkey.Decode(strkey.VersionByteContract, addressStr)
		if err != nil {
			return scAddr, fmt.Errorf("%w: %v", ErrInvalidAddress, err)
		}

		var contractId xdr.ContractId
		copy(contractId[:], rawBytes)

		scAddr.Type = xdr.ScAddressTypeScAddressTypeContract
		scAddr.ContractId = &contractId

	default:
		return scAddr, fmt.Errorf("%w: must start with G or C", ErrInvalidAddress)
	}

	return scAddr, nil
}

// Address encodes a strkey account or contract address.
func Address(addressStr string) (xdr.ScVal, error) {
	scAddr, err := ScAddressFromString(addressStr)
	if err != nil {
		return xdr.ScVal{}, err
	}
	return xdr.ScVal{Type: xdr.ScValTypeScvAddress, Address: &scAddr}, nil
}

// String encodes a native string as an ScvString.
func String(s string) xdr.ScVal {
	str := xdr.ScString(s)
	return xdr.ScVal{Type: xdr.ScValTypeScvString, Str: &str}
}

// Symbol encodes a short identifier as an ScvSymbol.
func Symbol(s string) xdr.ScVal {
	sym := xdr.ScSymbol(s)
	return xdr.ScVal{Type: xdr.ScValTypeScvSymbol, Sym: &sym}
}

// I128 encodes an int64 as a sign-extended 128-bit integer.
func I128(v int64) xdr.ScVal {
	parts := xdr.Int128Parts{
		Hi: xdr.Int64(v >> 63),
		Lo: xdr.Uint64(uint64(v)),
	}
	return xdr.ScVal{Type: xdr.ScValTypeScvI128, I128: &parts}
}

// Amount converts a human-facing decimal amount into integer base units by
// flooring value*StroopScale, encoded as i128. Callers validate value >= 0;
// no clamp is performed here.
func Amount(value float64) xdr.ScVal {
	return I128(int64(math.Floor(value * StroopScale)))
}

// DecodeString extracts a native string from an ScvString value.
func DecodeString(v xdr.ScVal) (string, error) {
	str, ok := v.GetStr()
	if !ok {
		return "", fmt.Errorf("unexpected value type %s, want string", v.Type)
	}
	return string(str), nil
}

// DecodeSymbol extracts a native string from an ScvSymbol value.
func DecodeSymbol(v xdr.ScVal) (string, error) {
	sym, ok := v.GetSym()
	if !ok {
		return "", fmt.Errorf("unexpected value type %s, want symbol", v.Type)
	}
	return string(sym), nil
}

// DecodeAddress renders an ScvAddress value back to its strkey form.
func DecodeAddress(v xdr.ScVal) (string, error) {
	addr, ok := v.GetAddress()
	if !ok {
		return "", fmt.Errorf("unexpected value type %s, want address", v.Type)
	}
	return addr.String()
}

// DecodeI128 extracts a 128-bit integer without loss.
func DecodeI128(v xdr.ScVal) (*big.Int, error) {
	parts, ok := v.GetI128()
	if !ok {
		return nil, fmt.Errorf("unexpected value type %s, want i128", v.Type)
	}
	return I128ToBigInt(parts), nil
}

// DecodeI128ToInt64 extracts a 128-bit integer, failing with ErrPrecisionLoss
// when the value does not fit an int64 rather than truncating silently.
func DecodeI128ToInt64(v xdr.ScVal) (int64, error) {
	b, err := DecodeI128(v)
	if err != nil {
		return 0, err
	}
	if !b.IsInt64() {
		return 0, fmt.Errorf("%w: %s", ErrPrecisionLoss, b.String())
	}
	return b.Int64(), nil
}

// I128ToBigInt reassembles the hi/lo parts into a *big.Int.
func I128ToBigInt(parts xdr.Int128Parts) *big.Int {
	hi := big.NewInt(int64(parts.Hi))
	lo := new(big.Int)
	lo.SetUint64(uint64(parts.Lo))
	hi.Lsh(hi, 64)
	hi.Add(hi, lo)
	return hi
}

// I128ToDecimalFloat renders an i128 base-unit amount as a decimal float for
// display. Precision above 2^53 base units is lost; use I128ToBigInt where
// exactness matters.
func I128ToDecimalFloat(parts xdr.Int128Parts, decimals int) float64 {
	value := new(big.Float).SetInt(I128ToBigInt(parts))

	divisor := new(big.Float)
	divisor.SetInt(big.NewInt(int64(math.Pow10(decimals))))

	result, _ := new(big.Float).Quo(value, divisor).Float64()
	return result
}

// MapField looks up a symbol-keyed entry in an ScMap, as produced by
// contracttype structs.
func MapField(m xdr.ScMap, key string) (xdr.ScVal, bool) {
	for _, entry := range m {
		sym, ok := entry.Key.GetSym()
		if ok && string(sym) == key {
			return entry.Val, true
		}
	}
	return xdr.ScVal{}, false
}
