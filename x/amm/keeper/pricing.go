package keeper

import (
	"context"

	"cosmossdk.io/math"

	"github.com/stackmint/amm/x/amm/types"
)

// GetAmountOut computes the constant-product swap output:
// floor(amountIn * reserveOut / (reserveIn + amountIn)).
//
// The same function is reused to value fee sub-amounts in the opposite asset
// against current reserves; that use is a pure simulation and mutates nothing.
func GetAmountOut(amountIn, reserveIn, reserveOut math.Int) (math.Int, error) {
	if !reserveIn.IsPositive() || !reserveOut.IsPositive() {
		return math.ZeroInt(), types.ErrNoLiquidity.Wrap("pool reserves must be positive")
	}
	numerator, err := SafeMul(amountIn, reserveOut)
	if err != nil {
		return math.ZeroInt(), err
	}
	denominator, err := SafeAdd(reserveIn, amountIn)
	if err != nil {
		return math.ZeroInt(), err
	}
	return SafeQuo(numerator, denominator)
}

// checkOracleDeviation enforces the price-deviation guard against a
// caller-supplied oracle price. A nil price disables the guard.
//
// impliedPrice = amountOutNorm * 10^decimals / netIn, compared to the oracle
// price in basis points. netIn must be nonzero and the oracle price positive.
func checkOracleDeviation(pool *types.Pool, oraclePrice *math.Int, amountOutNorm, netIn math.Int) error {
	if oraclePrice == nil {
		return nil
	}
	if netIn.IsZero() {
		return types.ErrSlippageExceeded.Wrap("net input is zero")
	}
	if !oraclePrice.IsPositive() {
		return types.ErrOraclePriceMismatch.Wrap("oracle price must be positive")
	}

	scaled, err := SafeMul(amountOutNorm, pow10(pool.DecimalNormalizeTo))
	if err != nil {
		return err
	}
	implied, err := SafeQuo(scaled, netIn)
	if err != nil {
		return err
	}

	var diff math.Int
	if oraclePrice.GT(implied) {
		diff = oraclePrice.Sub(implied)
	} else {
		diff = implied.Sub(*oraclePrice)
	}
	pct, err := SafeMulDiv(diff, bpsDenomInt, *oraclePrice)
	if err != nil {
		return err
	}
	if pct.GT(bpsInt(pool.MaxPriceDeviationBps)) {
		return types.ErrOraclePriceMismatch.Wrapf(
			"implied price %s deviates %s bps from oracle %s, max %d",
			implied, pct, oraclePrice, pool.MaxPriceDeviationBps,
		)
	}
	return nil
}

// ViewMidPrice computes the quote-per-stack mid price from current vault
// balances, scaled to the pool's internal precision. Read-only.
func (k *Keeper) ViewMidPrice(ctx context.Context, poolID uint64) (math.Int, error) {
	pool, err := k.getPool(poolID)
	if err != nil {
		return math.ZeroInt(), err
	}

	stack, err := k.ledger.BalanceOf(ctx, pool.StackAsset, pool.StackVault)
	if err != nil {
		return math.ZeroInt(), err
	}
	quote, err := k.ledger.BalanceOf(ctx, pool.QuoteAsset, pool.QuoteVault)
	if err != nil {
		return math.ZeroInt(), err
	}
	if !stack.IsPositive() || !quote.IsPositive() {
		return math.ZeroInt(), types.ErrNoLiquidity.Wrapf("pool %d has empty reserves", poolID)
	}

	scaled, err := SafeMul(quote, pow10(pool.DecimalNormalizeTo))
	if err != nil {
		return math.ZeroInt(), err
	}
	price, err := SafeQuo(scaled, stack)
	if err != nil {
		return math.ZeroInt(), err
	}

	k.emit(types.EventTypeMidPrice, poolID, "", map[string]string{
		types.AttributeKeyPrice: price.String(),
	})
	return price, nil
}
