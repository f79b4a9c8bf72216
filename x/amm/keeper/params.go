package keeper

import (
	"context"

	"cosmossdk.io/math"

	"github.com/stackmint/amm/x/amm/types"
)

// InitGlobal installs the protocol-wide configuration. The caller becomes
// the admin. Runs exactly once; re-initialization is rejected so the admin
// set cannot be silently rotated.
func (k *Keeper) InitGlobal(admin string, cfg types.GlobalConfig) error {
	cfg.Version = 1
	cfg.Admin = admin
	cfg.Paused = false
	if err := cfg.Validate(); err != nil {
		return err
	}

	k.mu.Lock()
	defer k.mu.Unlock()
	if k.global != nil {
		return types.ErrGlobalAlreadyInitialized
	}
	k.global = &cfg

	k.logger.Info("global config initialized", "admin", admin, "protocol_fee_bps", cfg.ProtocolFeeBps)
	k.emit(types.EventTypeGlobalInitialized, 0, admin, nil)
	return nil
}

// SetPoolParams updates a pool's fee, constant-product anchor or oracle
// deviation bound. Restricted to admin or governance; an optional governance
// approval is consumed with the update. Nil fields are left unchanged.
func (k *Keeper) SetPoolParams(ctx context.Context, caller string, poolID uint64, newFeeBps *uint32, newK *math.Int, newMaxDeviationBps *uint32, useGovernance bool, approval *types.GovernanceApproval) error {
	return k.withPoolLock(ctx, poolID, true, func(pool *types.Pool, global *types.GlobalConfig) error {
		if caller != global.Admin && caller != global.Governance {
			return types.ErrUnauthorized.Wrapf("caller %s may not set pool params", caller)
		}
		if useGovernance {
			if err := k.validateGovernanceApproval(pool, approval, k.clock.Now()); err != nil {
				return err
			}
		}

		if newFeeBps != nil {
			if maxFee := global.EffectiveMaxFeeBps(); *newFeeBps > maxFee {
				return types.ErrInvalidFee.Wrapf("fee %d exceeds cap %d", *newFeeBps, maxFee)
			}
			pool.FeeBps = *newFeeBps
		}
		if newK != nil {
			if newK.IsNegative() {
				return types.ErrInvalidAmount.Wrap("k must be non-negative")
			}
			pool.K = *newK
		}
		if newMaxDeviationBps != nil {
			pool.MaxPriceDeviationBps = *newMaxDeviationBps
		}

		k.logger.Info("pool params updated", "pool_id", poolID, "by", caller)
		k.emit(types.EventTypePoolParamsUpdated, poolID, caller, nil)
		return nil
	})
}
