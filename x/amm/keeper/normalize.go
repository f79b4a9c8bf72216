package keeper

import (
	"cosmossdk.io/math"

	"github.com/stackmint/amm/x/amm/types"
)

// Decimal normalization between an asset's native precision and a pool's
// shared internal precision. Both directions floor; amounts smaller than one
// unit of the coarser scale vanish to zero by design.

func pow10(decimals uint8) math.Int {
	return math.NewIntWithDecimal(1, int(decimals))
}

// NormalizeAmount converts a native amount to targetDecimals precision.
func NormalizeAmount(amount uint64, srcDecimals, targetDecimals uint8) (math.Int, error) {
	v := math.NewIntFromUint64(amount)
	switch {
	case srcDecimals == targetDecimals:
		return v, nil
	case srcDecimals < targetDecimals:
		return SafeMul(v, pow10(targetDecimals-srcDecimals))
	default:
		return SafeQuo(v, pow10(srcDecimals-targetDecimals))
	}
}

// DenormalizeAmount converts a normalized amount back to dstDecimals native
// precision and narrows it to the native 64-bit width, failing with Overflow
// if the value cannot be represented.
func DenormalizeAmount(norm math.Int, dstDecimals, targetDecimals uint8) (uint64, error) {
	var (
		v   math.Int
		err error
	)
	switch {
	case dstDecimals == targetDecimals:
		v = norm
	case dstDecimals < targetDecimals:
		v, err = SafeQuo(norm, pow10(targetDecimals-dstDecimals))
	default:
		v, err = SafeMul(norm, pow10(dstDecimals-targetDecimals))
	}
	if err != nil {
		return 0, err
	}
	if !v.IsUint64() {
		return 0, types.ErrOverflow.Wrapf("normalized amount %s does not fit native width", v)
	}
	return v.Uint64(), nil
}
