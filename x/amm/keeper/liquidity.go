package keeper

import (
	"context"

	"cosmossdk.io/math"

	"github.com/stackmint/amm/x/amm/types"
)

// depositToVault moves amount of asset from the provider into a vault and
// returns the native amount the vault actually received. Measuring the vault
// balance delta instead of trusting the requested amount keeps the books
// correct for fee-on-transfer assets.
func (k *Keeper) depositToVault(ctx context.Context, provider, asset, vault string, amount uint64) (math.Int, error) {
	before, err := k.ledger.BalanceOf(ctx, asset, vault)
	if err != nil {
		return math.ZeroInt(), err
	}
	if err := k.ledger.Transfer(ctx, asset, provider, vault, math.NewIntFromUint64(amount), types.UserAuthority(provider)); err != nil {
		return math.ZeroInt(), err
	}
	after, err := k.ledger.BalanceOf(ctx, asset, vault)
	if err != nil {
		return math.ZeroInt(), err
	}
	received, err := SafeSub(after, before)
	if err != nil {
		return math.ZeroInt(), err
	}
	if !received.IsPositive() {
		return math.ZeroInt(), types.ErrInvalidAmount.Wrapf("vault %s received nothing", vault)
	}
	return received, nil
}

// normalizedReserves reads both vault balances and scales them to the pool's
// normalization target.
func (k *Keeper) normalizedReserves(ctx context.Context, pool *types.Pool) (stackNorm, quoteNorm math.Int, err error) {
	stackBal, err := k.ledger.BalanceOf(ctx, pool.StackAsset, pool.StackVault)
	if err != nil {
		return math.ZeroInt(), math.ZeroInt(), err
	}
	quoteBal, err := k.ledger.BalanceOf(ctx, pool.QuoteAsset, pool.QuoteVault)
	if err != nil {
		return math.ZeroInt(), math.ZeroInt(), err
	}
	stackDec, err := k.ledger.Decimals(ctx, pool.StackAsset)
	if err != nil {
		return math.ZeroInt(), math.ZeroInt(), err
	}
	quoteDec, err := k.ledger.Decimals(ctx, pool.QuoteAsset)
	if err != nil {
		return math.ZeroInt(), math.ZeroInt(), err
	}
	if !stackBal.IsUint64() || !quoteBal.IsUint64() {
		return math.ZeroInt(), math.ZeroInt(), types.ErrOverflow.Wrap("vault balance exceeds native width")
	}
	stackNorm, err = NormalizeAmount(stackBal.Uint64(), stackDec, pool.DecimalNormalizeTo)
	if err != nil {
		return math.ZeroInt(), math.ZeroInt(), err
	}
	quoteNorm, err = NormalizeAmount(quoteBal.Uint64(), quoteDec, pool.DecimalNormalizeTo)
	if err != nil {
		return math.ZeroInt(), math.ZeroInt(), err
	}
	return stackNorm, quoteNorm, nil
}

// ProvideLiquidity deposits both assets into the pool's vaults and mints LP
// tokens to the provider. The first provision mints the integer square root
// of the normalized deposit product; later provisions mint pro rata against
// the pre-deposit stack reserve.
func (k *Keeper) ProvideLiquidity(ctx context.Context, provider string, poolID uint64, amountStack, amountQuote uint64) (math.Int, error) {
	if amountStack == 0 || amountQuote == 0 {
		return math.ZeroInt(), types.ErrInvalidAmount.Wrap("both deposit amounts must be positive")
	}

	lpMinted := math.ZeroInt()
	err := k.withPoolLock(ctx, poolID, false, func(pool *types.Pool, global *types.GlobalConfig) error {
		stackReserveBefore, _, err := k.normalizedReserves(ctx, pool)
		if err != nil {
			return err
		}

		receivedStack, err := k.depositToVault(ctx, provider, pool.StackAsset, pool.StackVault, amountStack)
		if err != nil {
			return err
		}
		receivedQuote, err := k.depositToVault(ctx, provider, pool.QuoteAsset, pool.QuoteVault, amountQuote)
		if err != nil {
			return err
		}

		stackDec, err := k.ledger.Decimals(ctx, pool.StackAsset)
		if err != nil {
			return err
		}
		quoteDec, err := k.ledger.Decimals(ctx, pool.QuoteAsset)
		if err != nil {
			return err
		}
		if !receivedStack.IsUint64() || !receivedQuote.IsUint64() {
			return types.ErrOverflow.Wrap("deposit exceeds native width")
		}
		normStack, err := NormalizeAmount(receivedStack.Uint64(), stackDec, pool.DecimalNormalizeTo)
		if err != nil {
			return err
		}
		normQuote, err := NormalizeAmount(receivedQuote.Uint64(), quoteDec, pool.DecimalNormalizeTo)
		if err != nil {
			return err
		}

		var lp math.Int
		if pool.TotalLPSupply.IsZero() {
			product, err := SafeMul(normStack, normQuote)
			if err != nil {
				return err
			}
			lp = integerSqrt(product)
		} else {
			if stackReserveBefore.IsZero() {
				return types.ErrNoLiquidity.Wrap("pool has LP supply but empty stack reserve")
			}
			lp, err = SafeMulDiv(normStack, pool.TotalLPSupply, stackReserveBefore)
			if err != nil {
				return err
			}
		}
		if lp.IsZero() {
			return types.ErrZeroLpMint
		}

		auth, err := k.vaultAuthority(pool.ID)
		if err != nil {
			return err
		}
		if err := k.ledger.Mint(ctx, pool.LPAsset, provider, lp, auth); err != nil {
			return err
		}
		pool.TotalLPSupply, err = SafeAdd(pool.TotalLPSupply, lp)
		if err != nil {
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

		if err := k.sweepVaultDust(ctx, pool, global, pool.StackAsset, pool.StackVault); err != nil {
			return err
		}
		if err := k.sweepVaultDust(ctx, pool, global, pool.QuoteAsset, pool.QuoteVault); err != nil {
			return err
		}

		lpMinted = lp
		if k.metrics != nil {
			k.metrics.LiquidityAdded.WithLabelValues(poolLabel(poolID)).Inc()
			k.metrics.LPTokenSupply.WithLabelValues(poolLabel(poolID)).Set(intGauge(pool.TotalLPSupply))
		}
		k.logger.Info("liquidity provided",
			"pool_id", poolID,
			"provider", provider,
			"stack_in", receivedStack.String(),
			"quote_in", receivedQuote.String(),
			"lp_minted", lp.String(),
		)
		k.emit(types.EventTypeLiquidityProvided, poolID, provider, map[string]string{
			types.AttributeKeyAmountIn: receivedStack.String(),
			types.AttributeKeyLPMinted: lp.String(),
		})
		return nil
	})
	if err != nil {
		return math.ZeroInt(), err
	}
	return lpMinted, nil
}

// RemoveLiquidity burns the provider's LP tokens and pays out both assets
// pro rata against the current native vault balances.
func (k *Keeper) RemoveLiquidity(ctx context.Context, provider string, poolID uint64, lpAmount math.Int) (stackOut, quoteOut uint64, err error) {
	err = k.withPoolLock(ctx, poolID, false, func(pool *types.Pool, global *types.GlobalConfig) error {
		out, err := k.redeemShares(ctx, provider, pool, lpAmount)
		if err != nil {
			return err
		}
		stackOut, quoteOut = out.stack, out.quote

		stackAfter, quoteAfter, err := k.normalizedReserves(ctx, pool)
		if err != nil {
			return err
		}
		pool.K, err = SafeMul(stackAfter, quoteAfter)
		if err != nil {
			return err
		}

		if err := k.sweepVaultDust(ctx, pool, global, pool.StackAsset, pool.StackVault); err != nil {
			return err
		}
		if err := k.sweepVaultDust(ctx, pool, global, pool.QuoteAsset, pool.QuoteVault); err != nil {
			return err
		}

		if k.metrics != nil {
			k.metrics.LiquidityRemoved.WithLabelValues(poolLabel(poolID)).Inc()
			k.metrics.LPTokenSupply.WithLabelValues(poolLabel(poolID)).Set(intGauge(pool.TotalLPSupply))
		}
		k.emit(types.EventTypeLiquidityRemoved, poolID, provider, map[string]string{
			types.AttributeKeyLPBurned:  lpAmount.String(),
			types.AttributeKeyAmountOut: math.NewIntFromUint64(stackOut).Add(math.NewIntFromUint64(quoteOut)).String(),
		})
		return nil
	})
	if err != nil {
		return 0, 0, err
	}
	return stackOut, quoteOut, nil
}

// EmergencyWithdraw lets a provider exit while the protocol or pool is
// paused. It bypasses the pause checks but not the reentrancy discipline,
// and applies no fees or dust handling.
func (k *Keeper) EmergencyWithdraw(ctx context.Context, provider string, poolID uint64, lpAmount math.Int) (stackOut, quoteOut uint64, err error) {
	err = k.withPoolLock(ctx, poolID, true, func(pool *types.Pool, global *types.GlobalConfig) error {
		out, err := k.redeemShares(ctx, provider, pool, lpAmount)
		if err != nil {
			return err
		}
		stackOut, quoteOut = out.stack, out.quote

		stackAfter, quoteAfter, err := k.normalizedReserves(ctx, pool)
		if err != nil {
			return err
		}
		pool.K, err = SafeMul(stackAfter, quoteAfter)
		if err != nil {
			return err
		}

		if k.metrics != nil {
			k.metrics.EmergencyWithdrawals.WithLabelValues(poolLabel(poolID)).Inc()
			k.metrics.LPTokenSupply.WithLabelValues(poolLabel(poolID)).Set(intGauge(pool.TotalLPSupply))
		}
		k.logger.Info("emergency withdrawal", "pool_id", poolID, "provider", provider, "lp_burned", lpAmount.String())
		k.emit(types.EventTypeEmergencyWithdrawal, poolID, provider, map[string]string{
			types.AttributeKeyLPBurned: lpAmount.String(),
		})
		return nil
	})
	if err != nil {
		return 0, 0, err
	}
	return stackOut, quoteOut, nil
}

type shareRedemption struct {
	stack uint64
	quote uint64
}

// redeemShares burns lpAmount of the provider's LP tokens and transfers the
// pro-rata share of both native vault balances back to them.
func (k *Keeper) redeemShares(ctx context.Context, provider string, pool *types.Pool, lpAmount math.Int) (shareRedemption, error) {
	if !lpAmount.IsPositive() {
		return shareRedemption{}, types.ErrInvalidAmount.Wrap("lp amount must be positive")
	}
	if pool.TotalLPSupply.IsZero() {
		return shareRedemption{}, types.ErrNoLiquidity
	}
	if lpAmount.GT(pool.TotalLPSupply) {
		return shareRedemption{}, types.ErrInvalidAmount.Wrapf("lp amount %s exceeds supply %s", lpAmount, pool.TotalLPSupply)
	}

	stackBal, err := k.ledger.BalanceOf(ctx, pool.StackAsset, pool.StackVault)
	if err != nil {
		return shareRedemption{}, err
	}
	quoteBal, err := k.ledger.BalanceOf(ctx, pool.QuoteAsset, pool.QuoteVault)
	if err != nil {
		return shareRedemption{}, err
	}

	stackShare, err := SafeMulDiv(stackBal, lpAmount, pool.TotalLPSupply)
	if err != nil {
		return shareRedemption{}, err
	}
	quoteShare, err := SafeMulDiv(quoteBal, lpAmount, pool.TotalLPSupply)
	if err != nil {
		return shareRedemption{}, err
	}
	if !stackShare.IsUint64() || !quoteShare.IsUint64() {
		return shareRedemption{}, types.ErrOverflow.Wrap("redemption exceeds native width")
	}

	if err := k.ledger.Burn(ctx, pool.LPAsset, provider, lpAmount, types.UserAuthority(provider)); err != nil {
		return shareRedemption{}, err
	}
	pool.TotalLPSupply, err = SafeSub(pool.TotalLPSupply, lpAmount)
	if err != nil {
		return shareRedemption{}, err
	}

	auth, err := k.vaultAuthority(pool.ID)
	if err != nil {
		return shareRedemption{}, err
	}
	if stackShare.IsPositive() {
		if err := k.ledger.Transfer(ctx, pool.StackAsset, pool.StackVault, provider, stackShare, auth); err != nil {
			return shareRedemption{}, err
		}
	}
	if quoteShare.IsPositive() {
		if err := k.ledger.Transfer(ctx, pool.QuoteAsset, pool.QuoteVault, provider, quoteShare, auth); err != nil {
			return shareRedemption{}, err
		}
	}
	return shareRedemption{stack: stackShare.Uint64(), quote: quoteShare.Uint64()}, nil
}
