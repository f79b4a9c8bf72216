package keeper

import (
	"context"

	"github.com/stackmint/amm/x/amm/types"
)

// CheckInvariants audits every pool's book-keeping. It is intended for test
// harnesses and operational health checks; a non-nil return means state has
// been corrupted.
//
// Checked per pool: the LP supply and creator accrual are non-negative, the
// reentrancy flag is at rest, and both vault balances fit the native width.
func (k *Keeper) CheckInvariants(ctx context.Context) error {
	k.mu.RLock()
	pools := make([]types.Pool, 0, len(k.pools))
	for _, p := range k.pools {
		pools = append(pools, *p)
	}
	k.mu.RUnlock()

	for _, pool := range pools {
		if pool.TotalLPSupply.IsNegative() {
			return types.ErrOverflow.Wrapf("pool %d: negative LP supply %s", pool.ID, pool.TotalLPSupply)
		}
		if pool.CreatorClaimable.IsNegative() {
			return types.ErrOverflow.Wrapf("pool %d: negative creator accrual %s", pool.ID, pool.CreatorClaimable)
		}
		if pool.Locked {
			return types.ErrReentrancy.Wrapf("pool %d: locked flag set outside an operation", pool.ID)
		}
		for _, v := range []struct{ asset, vault string }{
			{pool.StackAsset, pool.StackVault},
			{pool.QuoteAsset, pool.QuoteVault},
		} {
			bal, err := k.ledger.BalanceOf(ctx, v.asset, v.vault)
			if err != nil {
				return err
			}
			if bal.IsNegative() || !bal.IsUint64() {
				return types.ErrOverflow.Wrapf("pool %d: vault %s balance %s out of range", pool.ID, v.vault, bal)
			}
		}
	}
	return nil
}
