package keeper

import (
	"context"

	"cosmossdk.io/math"

	"github.com/stackmint/amm/x/amm/types"
)

// SwapStackToQuote swaps the pool's stack asset for its quote asset. An
// optional oracle price arms the deviation guard; an optional governance
// approval is validated and its nonce consumed before anything else, so a
// replayed approval fails even against a paused pool.
func (k *Keeper) SwapStackToQuote(ctx context.Context, trader string, poolID uint64, amountIn, minOut uint64, oraclePrice *math.Int, approval *types.GovernanceApproval) (uint64, error) {
	return k.swap(ctx, trader, poolID, types.StackToQuote, amountIn, minOut, oraclePrice, approval)
}

// SwapQuoteToStack swaps the pool's quote asset for its stack asset.
func (k *Keeper) SwapQuoteToStack(ctx context.Context, trader string, poolID uint64, amountIn, minOut uint64, oraclePrice *math.Int, approval *types.GovernanceApproval) (uint64, error) {
	return k.swap(ctx, trader, poolID, types.QuoteToStack, amountIn, minOut, oraclePrice, approval)
}

func (k *Keeper) swap(ctx context.Context, trader string, poolID uint64, dir types.SwapDirection, amountIn, minOut uint64, oraclePrice *math.Int, approval *types.GovernanceApproval) (uint64, error) {
	if amountIn == 0 {
		return 0, types.ErrInvalidAmount.Wrap("swap input must be positive")
	}

	var amountOut uint64
	err := k.withPoolLock(ctx, poolID, true, func(pool *types.Pool, global *types.GlobalConfig) error {
		now := k.clock.Now()

		// Governance approvals are checked ahead of the pause gates: a bad
		// or replayed approval must surface as a governance error even when
		// the pool is paused.
		if approval != nil {
			if err := k.validateGovernanceApproval(pool, approval, now); err != nil {
				return err
			}
		}
		if global.Paused {
			return types.ErrProtocolPaused
		}
		if pool.Paused {
			return types.ErrPoolPaused.Wrapf("pool %d", poolID)
		}
		// Circuit breaker: refuse to trade against a pool whose fee has
		// somehow escaped the configured cap.
		if maxFee := global.EffectiveMaxFeeBps(); pool.FeeBps > maxFee {
			return types.ErrInvalidFee.Wrapf("pool fee %d exceeds cap %d", pool.FeeBps, maxFee)
		}

		info, err := k.getAsset(pool.StackAsset)
		if err != nil {
			return err
		}

		inAsset, inVault := pool.StackAsset, pool.StackVault
		outAsset, outVault := pool.QuoteAsset, pool.QuoteVault
		if dir == types.QuoteToStack {
			inAsset, inVault = pool.QuoteAsset, pool.QuoteVault
			outAsset, outVault = pool.StackAsset, pool.StackVault
		}

		stackNorm, quoteNorm, err := k.normalizedReserves(ctx, pool)
		if err != nil {
			return err
		}
		reserveInNorm, reserveOutNorm := stackNorm, quoteNorm
		if dir == types.QuoteToStack {
			reserveInNorm, reserveOutNorm = quoteNorm, stackNorm
		}

		received, err := k.depositToVault(ctx, trader, inAsset, inVault, amountIn)
		if err != nil {
			return err
		}
		inDecimals, err := k.ledger.Decimals(ctx, inAsset)
		if err != nil {
			return err
		}
		if !received.IsUint64() {
			return types.ErrOverflow.Wrap("swap input exceeds native width")
		}
		amountInNorm, err := NormalizeAmount(received.Uint64(), inDecimals, pool.DecimalNormalizeTo)
		if err != nil {
			return err
		}

		grossFee, protocolFee, creatorFee, netIn, err := ComputeFees(amountInNorm, pool.FeeBps, global.ProtocolFeeBps, info.CreatorFeeBps)
		if err != nil {
			return err
		}

		amountOutNorm, err := GetAmountOut(netIn, reserveInNorm, reserveOutNorm)
		if err != nil {
			return err
		}
		if err := checkOracleDeviation(pool, oraclePrice, amountOutNorm, netIn); err != nil {
			if k.metrics != nil {
				k.metrics.OracleRejections.WithLabelValues(poolLabel(poolID)).Inc()
			}
			return err
		}

		outDecimals, err := k.ledger.Decimals(ctx, outAsset)
		if err != nil {
			return err
		}
		outNative, err := DenormalizeAmount(amountOutNorm, outDecimals, pool.DecimalNormalizeTo)
		if err != nil {
			return err
		}
		if outNative < minOut {
			return types.ErrSlippageExceeded.Wrapf("out %d below minimum %d", outNative, minOut)
		}

		auth, err := k.vaultAuthority(pool.ID)
		if err != nil {
			return err
		}
		if err := k.ledger.Transfer(ctx, outAsset, outVault, trader, math.NewIntFromUint64(outNative), auth); err != nil {
			return err
		}

		accrual, err := k.routeFeeToOutputVault(ctx, pool, dir, protocolFee, creatorFee, reserveInNorm, reserveOutNorm)
		if err != nil {
			return err
		}
		if accrual.IsPositive() {
			pool.CreatorClaimable, err = SafeAdd(pool.CreatorClaimable, accrual)
			if err != nil {
				return err
			}
			pool.CreatorLastClaimTS = now
		}

		stackAfter, quoteAfter, err := k.normalizedReserves(ctx, pool)
		if err != nil {
			return err
		}
		pool.K, err = SafeMul(stackAfter, quoteAfter)
		if err != nil {
			return err
		}

		// The output-side vault can be left holding only crumbs after a
		// large swap; forward those to the treasury.
		if err := k.sweepVaultDust(ctx, pool, global, outAsset, outVault); err != nil {
			return err
		}

		amountOut = outNative
		if k.metrics != nil {
			k.metrics.SwapsTotal.WithLabelValues(poolLabel(poolID), dir.String()).Inc()
			k.metrics.SwapVolume.WithLabelValues(poolLabel(poolID), dir.String()).Add(intGauge(amountInNorm))
			k.metrics.SwapFeesCollected.WithLabelValues(poolLabel(poolID), "gross").Add(intGauge(grossFee))
		}
		k.logger.Info("swap executed",
			"pool_id", poolID,
			"trader", trader,
			"direction", dir.String(),
			"amount_in", amountIn,
			"amount_out", outNative,
			"fee", grossFee.String(),
		)
		k.emit(types.EventTypeSwap, poolID, trader, map[string]string{
			types.AttributeKeyDirection: dir.String(),
			types.AttributeKeyAmountIn:  math.NewIntFromUint64(amountIn).String(),
			types.AttributeKeyAmountOut: math.NewIntFromUint64(outNative).String(),
			types.AttributeKeyFee:       grossFee.String(),
		})
		return nil
	})
	if err != nil {
		return 0, err
	}
	return amountOut, nil
}

// MintStackViaPool prices quoteIn through the pool as a quote->stack swap
// and mints freshly issued stack tokens to the trader instead of paying out
// of the stack vault. The quote input stays in the pool's quote vault; fees
// are routed exactly as for a quote->stack swap.
func (k *Keeper) MintStackViaPool(ctx context.Context, trader string, poolID uint64, quoteIn, minStackOut uint64) (uint64, error) {
	if quoteIn == 0 {
		return 0, types.ErrInvalidAmount.Wrap("quote input must be positive")
	}

	var stackOut uint64
	err := k.withPoolLock(ctx, poolID, false, func(pool *types.Pool, global *types.GlobalConfig) error {
		info, err := k.getAsset(pool.StackAsset)
		if err != nil {
			return err
		}

		stackNorm, quoteNorm, err := k.normalizedReserves(ctx, pool)
		if err != nil {
			return err
		}

		received, err := k.depositToVault(ctx, trader, pool.QuoteAsset, pool.QuoteVault, quoteIn)
		if err != nil {
			return err
		}
		quoteDecimals, err := k.ledger.Decimals(ctx, pool.QuoteAsset)
		if err != nil {
			return err
		}
		if !received.IsUint64() {
			return types.ErrOverflow.Wrap("quote input exceeds native width")
		}
		quoteInNorm, err := NormalizeAmount(received.Uint64(), quoteDecimals, pool.DecimalNormalizeTo)
		if err != nil {
			return err
		}

		_, protocolFee, creatorFee, netIn, err := ComputeFees(quoteInNorm, pool.FeeBps, global.ProtocolFeeBps, info.CreatorFeeBps)
		if err != nil {
			return err
		}

		amountOutNorm, err := GetAmountOut(netIn, quoteNorm, stackNorm)
		if err != nil {
			return err
		}
		stackDecimals, err := k.ledger.Decimals(ctx, pool.StackAsset)
		if err != nil {
			return err
		}
		outNative, err := DenormalizeAmount(amountOutNorm, stackDecimals, pool.DecimalNormalizeTo)
		if err != nil {
			return err
		}
		if outNative < minStackOut {
			return types.ErrSlippageExceeded.Wrapf("out %d below minimum %d", outNative, minStackOut)
		}

		accrual, err := k.routeFeeToOutputVault(ctx, pool, types.QuoteToStack, protocolFee, creatorFee, quoteNorm, stackNorm)
		if err != nil {
			return err
		}
		if accrual.IsPositive() {
			pool.CreatorClaimable, err = SafeAdd(pool.CreatorClaimable, accrual)
			if err != nil {
				return err
			}
			pool.CreatorLastClaimTS = k.clock.Now()
		}

		mintAuth, err := k.authorities.Resolve(types.AuthorityStackMint, pool.StackAsset)
		if err != nil {
			return types.ErrInvalidMintAuthority.Wrapf("resolving mint authority for %s: %v", pool.StackAsset, err)
		}
		if err := k.ledger.Mint(ctx, pool.StackAsset, trader, math.NewIntFromUint64(outNative), mintAuth); err != nil {
			return err
		}

		stackAfter, quoteAfter, err := k.normalizedReserves(ctx, pool)
		if err != nil {
			return err
		}
		pool.K, err = SafeMul(stackAfter, quoteAfter)
		if err != nil {
			return err
		}

		if err := k.sweepVaultDust(ctx, pool, global, pool.QuoteAsset, pool.QuoteVault); err != nil {
			return err
		}

		stackOut = outNative
		k.emit(types.EventTypeMintedStackViaPool, poolID, trader, map[string]string{
			types.AttributeKeyAmountIn:  math.NewIntFromUint64(quoteIn).String(),
			types.AttributeKeyAmountOut: math.NewIntFromUint64(outNative).String(),
		})
		return nil
	})
	if err != nil {
		return 0, err
	}
	return stackOut, nil
}

// RedeemStackViaPool burns stackIn from the trader and pays quote out of the
// pool priced as a stack->quote swap. The burned stack never enters the
// vault, so the stack reserve is unchanged while the quote reserve shrinks.
func (k *Keeper) RedeemStackViaPool(ctx context.Context, trader string, poolID uint64, stackIn, minQuoteOut uint64) (uint64, error) {
	if stackIn == 0 {
		return 0, types.ErrInvalidAmount.Wrap("stack input must be positive")
	}

	var quoteOut uint64
	err := k.withPoolLock(ctx, poolID, false, func(pool *types.Pool, global *types.GlobalConfig) error {
		info, err := k.getAsset(pool.StackAsset)
		if err != nil {
			return err
		}

		if err := k.ledger.Burn(ctx, pool.StackAsset, trader, math.NewIntFromUint64(stackIn), types.UserAuthority(trader)); err != nil {
			return err
		}

		stackNorm, quoteNorm, err := k.normalizedReserves(ctx, pool)
		if err != nil {
			return err
		}
		stackDecimals, err := k.ledger.Decimals(ctx, pool.StackAsset)
		if err != nil {
			return err
		}
		stackInNorm, err := NormalizeAmount(stackIn, stackDecimals, pool.DecimalNormalizeTo)
		if err != nil {
			return err
		}

		_, protocolFee, creatorFee, netIn, err := ComputeFees(stackInNorm, pool.FeeBps, global.ProtocolFeeBps, info.CreatorFeeBps)
		if err != nil {
			return err
		}

		amountOutNorm, err := GetAmountOut(netIn, stackNorm, quoteNorm)
		if err != nil {
			return err
		}
		quoteDecimals, err := k.ledger.Decimals(ctx, pool.QuoteAsset)
		if err != nil {
			return err
		}
		outNative, err := DenormalizeAmount(amountOutNorm, quoteDecimals, pool.DecimalNormalizeTo)
		if err != nil {
			return err
		}
		if outNative < minQuoteOut {
			return types.ErrSlippageExceeded.Wrapf("out %d below minimum %d", outNative, minQuoteOut)
		}

		accrual, err := k.routeFeeToOutputVault(ctx, pool, types.StackToQuote, protocolFee, creatorFee, stackNorm, quoteNorm)
		if err != nil {
			return err
		}
		if accrual.IsPositive() {
			pool.CreatorClaimable, err = SafeAdd(pool.CreatorClaimable, accrual)
			if err != nil {
				return err
			}
			pool.CreatorLastClaimTS = k.clock.Now()
		}

		auth, err := k.vaultAuthority(pool.ID)
		if err != nil {
			return err
		}
		if err := k.ledger.Transfer(ctx, pool.QuoteAsset, pool.QuoteVault, trader, math.NewIntFromUint64(outNative), auth); err != nil {
			return err
		}

		stackAfter, quoteAfter, err := k.normalizedReserves(ctx, pool)
		if err != nil {
			return err
		}
		pool.K, err = SafeMul(stackAfter, quoteAfter)
		if err != nil {
			return err
		}

		if err := k.sweepVaultDust(ctx, pool, global, pool.QuoteAsset, pool.QuoteVault); err != nil {
			return err
		}

		quoteOut = outNative
		k.emit(types.EventTypeRedeemedStackViaPool, poolID, trader, map[string]string{
			types.AttributeKeyAmountIn:  math.NewIntFromUint64(stackIn).String(),
			types.AttributeKeyAmountOut: math.NewIntFromUint64(outNative).String(),
		})
		return nil
	})
	if err != nil {
		return 0, err
	}
	return quoteOut, nil
}
