package keeper

import (
	"github.com/stackmint/amm/x/amm/types"
)

// validateGovernanceApproval checks an approval against the target pool and
// consumes its nonce. Nonces must be strictly increasing per pool, which
// makes every approval single-use; callers run inside withPoolLock so a
// failing operation rolls the consumed nonce back with the rest of the pool
// state.
func (k *Keeper) validateGovernanceApproval(pool *types.Pool, approval *types.GovernanceApproval, now int64) error {
	if approval == nil {
		return types.ErrGovernanceMissing
	}
	if !approval.Approved {
		return types.ErrGovernanceNotApproved
	}
	if approval.ExpiryTS < now {
		return types.ErrGovernanceExpired.Wrapf("expired at %d, now %d", approval.ExpiryTS, now)
	}
	if approval.Target != pool.ID {
		return types.ErrGovernanceTargetMismatch.Wrapf("approval targets pool %d, not %d", approval.Target, pool.ID)
	}
	if !approval.Nonce.GT(pool.LastGovernanceNonce) {
		return types.ErrGovernanceNotApproved.Wrapf("nonce %s already consumed (last %s)", approval.Nonce, pool.LastGovernanceNonce)
	}
	pool.LastGovernanceNonce = approval.Nonce
	return nil
}
