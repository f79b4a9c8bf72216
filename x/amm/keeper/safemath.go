package keeper

import (
	"math/big"

	"cosmossdk.io/math"

	"github.com/stackmint/amm/x/amm/types"
)

// Overflow-checked arithmetic over math.Int. Internal pool math operates in
// the 128-bit unsigned domain; any result outside it aborts the whole
// operation with ErrOverflow.

var maxUint128 = new(big.Int).Lsh(big.NewInt(1), 128)

// SafeAdd adds two math.Int values with overflow checking.
func SafeAdd(a, b math.Int) (math.Int, error) {
	result := new(big.Int).Add(a.BigInt(), b.BigInt())
	if result.Cmp(maxUint128) >= 0 {
		return math.Int{}, types.ErrOverflow.Wrapf("addition overflow: %s + %s", a, b)
	}
	return math.NewIntFromBigInt(result), nil
}

// SafeSub subtracts b from a with underflow checking.
func SafeSub(a, b math.Int) (math.Int, error) {
	if a.LT(b) {
		return math.Int{}, types.ErrOverflow.Wrapf("underflow: cannot subtract %s from %s", b, a)
	}
	return math.NewIntFromBigInt(new(big.Int).Sub(a.BigInt(), b.BigInt())), nil
}

// SafeMul multiplies two math.Int values with overflow checking.
func SafeMul(a, b math.Int) (math.Int, error) {
	if a.IsZero() || b.IsZero() {
		return math.ZeroInt(), nil
	}
	result := new(big.Int).Mul(a.BigInt(), b.BigInt())
	if result.Cmp(maxUint128) >= 0 {
		return math.Int{}, types.ErrOverflow.Wrapf("multiplication overflow: %s * %s", a, b)
	}
	return math.NewIntFromBigInt(result), nil
}

// SafeQuo divides a by b with division-by-zero checking. Division floors.
func SafeQuo(a, b math.Int) (math.Int, error) {
	if b.IsZero() {
		return math.Int{}, types.ErrOverflow.Wrap("division by zero")
	}
	return math.NewIntFromBigInt(new(big.Int).Quo(a.BigInt(), b.BigInt())), nil
}

// SafeMulDiv performs floor((a * b) / c) with overflow protection on the
// intermediate product. This is the workhorse of bps and pro-rata math.
func SafeMulDiv(a, b, c math.Int) (math.Int, error) {
	if c.IsZero() {
		return math.Int{}, types.ErrOverflow.Wrap("division by zero")
	}
	intermediate := new(big.Int).Mul(a.BigInt(), b.BigInt())
	if intermediate.Cmp(maxUint128) >= 0 {
		return math.Int{}, types.ErrOverflow.Wrapf("multiplication overflow: %s * %s", a, b)
	}
	return math.NewIntFromBigInt(new(big.Int).Quo(intermediate, c.BigInt())), nil
}

// integerSqrt returns floor(sqrt(v)).
func integerSqrt(v math.Int) math.Int {
	return math.NewIntFromBigInt(new(big.Int).Sqrt(v.BigInt()))
}

// bpsInt converts a basis-point rate to math.Int.
func bpsInt(bps uint32) math.Int {
	return math.NewIntFromUint64(uint64(bps))
}

// bpsDenomInt is the 10000 bps denominator as math.Int.
var bpsDenomInt = math.NewIntFromUint64(uint64(types.BpsDenom))
