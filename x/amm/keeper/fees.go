package keeper

import (
	"context"

	"cosmossdk.io/math"

	"github.com/stackmint/amm/x/amm/types"
)

// ComputeFees splits a normalized gross trade amount into the pool fee and
// its protocol/creator sub-shares. Protocol and creator rates are fractions
// of the fee, not of the traded volume; any remainder of the gross fee stays
// in the pool's reserves and accrues to LP value.
func ComputeFees(amountNorm math.Int, poolFeeBps, protocolFeeBps, creatorFeeBps uint32) (grossFee, protocolFee, creatorFee, netIn math.Int, err error) {
	grossFee, err = SafeMulDiv(amountNorm, bpsInt(poolFeeBps), bpsDenomInt)
	if err != nil {
		return
	}
	protocolFee, err = SafeMulDiv(grossFee, bpsInt(protocolFeeBps), bpsDenomInt)
	if err != nil {
		return
	}
	creatorFee, err = SafeMulDiv(grossFee, bpsInt(creatorFeeBps), bpsDenomInt)
	if err != nil {
		return
	}
	netIn, err = SafeSub(amountNorm, grossFee)
	return
}

// routeFeeToOutputVault values the protocol and creator fee sub-amounts
// (denominated in the swap's input asset, normalized) in the output asset by
// constant-product simulation against the pre-trade reserves, and moves the
// native equivalents from the output reserve vault into the fee vaults.
//
// One parameterized routine serves both swap directions; reserveInNorm and
// reserveOutNorm are oriented along the swap. The returned accrual is the
// creator fee expressed in normalized quote units, re-simulated through the
// pool when the output asset is the stack asset.
func (k *Keeper) routeFeeToOutputVault(
	ctx context.Context,
	pool *types.Pool,
	dir types.SwapDirection,
	protocolFeeNorm, creatorFeeNorm math.Int,
	reserveInNorm, reserveOutNorm math.Int,
) (math.Int, error) {
	if protocolFeeNorm.IsZero() && creatorFeeNorm.IsZero() {
		return math.ZeroInt(), nil
	}

	protocolOutNorm, err := GetAmountOut(protocolFeeNorm, reserveInNorm, reserveOutNorm)
	if err != nil {
		return math.ZeroInt(), err
	}
	creatorOutNorm, err := GetAmountOut(creatorFeeNorm, reserveInNorm, reserveOutNorm)
	if err != nil {
		return math.ZeroInt(), err
	}

	outAsset, outVault := pool.QuoteAsset, pool.QuoteVault
	if dir == types.QuoteToStack {
		outAsset, outVault = pool.StackAsset, pool.StackVault
	}
	outDecimals, err := k.ledger.Decimals(ctx, outAsset)
	if err != nil {
		return math.ZeroInt(), err
	}

	protocolNative, err := DenormalizeAmount(protocolOutNorm, outDecimals, pool.DecimalNormalizeTo)
	if err != nil {
		return math.ZeroInt(), err
	}
	creatorNative, err := DenormalizeAmount(creatorOutNorm, outDecimals, pool.DecimalNormalizeTo)
	if err != nil {
		return math.ZeroInt(), err
	}

	auth, err := k.vaultAuthority(pool.ID)
	if err != nil {
		return math.ZeroInt(), err
	}
	if protocolNative > 0 {
		if err := k.ledger.Transfer(ctx, outAsset, outVault, pool.ProtocolFeeVault, math.NewIntFromUint64(protocolNative), auth); err != nil {
			return math.ZeroInt(), err
		}
	}
	if creatorNative > 0 {
		if err := k.ledger.Transfer(ctx, outAsset, outVault, pool.CreatorFeeVault, math.NewIntFromUint64(creatorNative), auth); err != nil {
			return math.ZeroInt(), err
		}
	}

	// Creator accrual is tracked in normalized quote units, and only when
	// tokens actually landed in the fee vault: a fee that floors to zero at
	// native precision accrues nothing. For a quote->stack swap the creator
	// fee landed in the stack asset, so its quote value is simulated back
	// through the pool.
	if creatorNative == 0 {
		return math.ZeroInt(), nil
	}
	accrual := creatorOutNorm
	if dir == types.QuoteToStack {
		accrual, err = GetAmountOut(creatorOutNorm, reserveOutNorm, reserveInNorm)
		if err != nil {
			return math.ZeroInt(), err
		}
	}
	return accrual, nil
}

// sweepVaultDust forwards a vault's entire remaining balance to the treasury
// when it has dropped to or below the dust threshold. The comparison is
// against the absolute remaining balance, not the amount a transaction moved.
func (k *Keeper) sweepVaultDust(ctx context.Context, pool *types.Pool, global *types.GlobalConfig, asset, vault string) error {
	balance, err := k.ledger.BalanceOf(ctx, asset, vault)
	if err != nil {
		return err
	}
	threshold := math.NewIntFromUint64(global.EffectiveDustThreshold())
	if balance.IsZero() || balance.GT(threshold) {
		return nil
	}

	auth, err := k.vaultAuthority(pool.ID)
	if err != nil {
		return err
	}
	if err := k.ledger.Transfer(ctx, asset, vault, pool.Treasury, balance, auth); err != nil {
		return err
	}

	k.logger.Info("swept vault dust", "pool_id", pool.ID, "asset", asset, "amount", balance.String())
	if k.metrics != nil {
		k.metrics.DustSwept.WithLabelValues(poolLabel(pool.ID), asset).Inc()
	}
	k.emit(types.EventTypeDustSwept, pool.ID, "", map[string]string{
		types.AttributeKeyAsset:  asset,
		types.AttributeKeyVault:  vault,
		types.AttributeKeyAmount: balance.String(),
	})
	return nil
}

// ClaimCreatorFees pays out the accrued creator fee for a pool's stack asset
// once the claim timelock has elapsed since the last accrual, then resets the
// accrual to zero. Only the registered creator may claim. The payout is
// denominated in the quote asset and drawn from the creator fee vault.
func (k *Keeper) ClaimCreatorFees(ctx context.Context, caller string, poolID uint64) (uint64, error) {
	var claimed uint64
	err := k.withPoolLock(ctx, poolID, true, func(pool *types.Pool, global *types.GlobalConfig) error {
		info, err := k.getAsset(pool.StackAsset)
		if err != nil {
			return err
		}
		if caller != info.Creator {
			return types.ErrUnauthorized.Wrapf("caller %s is not creator of %s", caller, pool.StackAsset)
		}
		if !pool.CreatorClaimable.IsPositive() {
			return types.ErrNoFees
		}

		now := k.clock.Now()
		unlockAt := pool.CreatorLastClaimTS + global.EffectiveClaimLockSecs()
		if now < unlockAt {
			return types.ErrClaimLocked.Wrapf("claimable at %d, now %d", unlockAt, now)
		}

		quoteDecimals, err := k.ledger.Decimals(ctx, pool.QuoteAsset)
		if err != nil {
			return err
		}
		amountNative, err := DenormalizeAmount(pool.CreatorClaimable, quoteDecimals, pool.DecimalNormalizeTo)
		if err != nil {
			return err
		}
		if amountNative > 0 {
			auth, err := k.vaultAuthority(pool.ID)
			if err != nil {
				return err
			}
			if err := k.ledger.Transfer(ctx, pool.QuoteAsset, pool.CreatorFeeVault, caller, math.NewIntFromUint64(amountNative), auth); err != nil {
				return err
			}
		}
		pool.CreatorClaimable = math.ZeroInt()
		claimed = amountNative

		if k.metrics != nil {
			k.metrics.CreatorFeesClaimed.WithLabelValues(poolLabel(poolID)).Add(float64(amountNative))
		}
		k.emit(types.EventTypeCreatorClaimed, poolID, caller, map[string]string{
			types.AttributeKeyAmount: math.NewIntFromUint64(amountNative).String(),
		})
		return nil
	})
	if err != nil {
		return 0, err
	}
	return claimed, nil
}

// WithdrawProtocolFees drains the pool's protocol fee vault to the given
// receiver. Restricted to admin, fee manager or governance; an optional
// governance approval is consumed atomically with the withdrawal.
func (k *Keeper) WithdrawProtocolFees(ctx context.Context, caller string, poolID uint64, receiver string, useGovernance bool, approval *types.GovernanceApproval) (uint64, error) {
	var withdrawn uint64
	err := k.withPoolLock(ctx, poolID, true, func(pool *types.Pool, global *types.GlobalConfig) error {
		if caller != global.Admin && caller != global.FeeManager && caller != global.Governance {
			return types.ErrUnauthorized.Wrapf("caller %s may not withdraw protocol fees", caller)
		}
		if useGovernance {
			if err := k.validateGovernanceApproval(pool, approval, k.clock.Now()); err != nil {
				return err
			}
		}

		balance, err := k.ledger.BalanceOf(ctx, pool.QuoteAsset, pool.ProtocolFeeVault)
		if err != nil {
			return err
		}
		if balance.IsPositive() {
			auth, err := k.vaultAuthority(pool.ID)
			if err != nil {
				return err
			}
			if err := k.ledger.Transfer(ctx, pool.QuoteAsset, pool.ProtocolFeeVault, receiver, balance, auth); err != nil {
				return err
			}
		}
		if !balance.IsUint64() {
			return types.ErrOverflow.Wrapf("fee vault balance %s does not fit native width", balance)
		}
		withdrawn = balance.Uint64()

		if k.metrics != nil {
			k.metrics.ProtocolFeesWithdrawn.WithLabelValues(poolLabel(poolID)).Add(float64(withdrawn))
		}
		k.emit(types.EventTypeProtocolFeesWithdrawn, poolID, caller, map[string]string{
			types.AttributeKeyAmount: balance.String(),
		})
		return nil
	})
	if err != nil {
		return 0, err
	}
	return withdrawn, nil
}
