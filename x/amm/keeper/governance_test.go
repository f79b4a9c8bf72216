package keeper_test

import (
	"testing"

	"cosmossdk.io/math"
	"github.com/stretchr/testify/require"

	"github.com/stackmint/amm/x/amm/types"
)

func approvalFor(f *fixture, poolID uint64, nonce int64) *types.GovernanceApproval {
	return &types.GovernanceApproval{
		Target:   poolID,
		Approved: true,
		ExpiryTS: f.clock.T + 3600,
		Nonce:    math.NewInt(nonce),
	}
}

// TestGovernance_NonceConsumed tests strictly increasing nonce consumption
func TestGovernance_NonceConsumed(t *testing.T) {
	f := newFixture(t)
	poolID := f.newPool(t, 100, 5000)
	f.seedPool(t, poolID, 100_000, 100_000)

	f.ledger.Fund(stackDenom, trader, 300)
	_, err := f.k.SwapStackToQuote(f.ctx, trader, poolID, 100, 1, nil, approvalFor(f, poolID, 4))
	require.NoError(t, err)

	pool, err := f.k.GetPool(poolID)
	require.NoError(t, err)
	require.Equal(t, math.NewInt(4), pool.LastGovernanceNonce)

	// a higher nonce is accepted
	_, err = f.k.SwapStackToQuote(f.ctx, trader, poolID, 100, 1, nil, approvalFor(f, poolID, 5))
	require.NoError(t, err)

	// replaying 5 fails
	_, err = f.k.SwapStackToQuote(f.ctx, trader, poolID, 100, 1, nil, approvalFor(f, poolID, 5))
	require.ErrorIs(t, err, types.ErrGovernanceNotApproved)
}

// TestGovernance_FailedOperationRestoresNonce tests that the consumed nonce
// rolls back with the rest of the operation
func TestGovernance_FailedOperationRestoresNonce(t *testing.T) {
	f := newFixture(t)
	poolID := f.newPool(t, 100, 5000)
	f.seedPool(t, poolID, 100_000, 100_000)

	f.ledger.Fund(stackDenom, trader, 200)
	_, err := f.k.SwapStackToQuote(f.ctx, trader, poolID, 100, 1_000_000, nil, approvalFor(f, poolID, 7))
	require.ErrorIs(t, err, types.ErrSlippageExceeded)

	pool, err := f.k.GetPool(poolID)
	require.NoError(t, err)
	require.True(t, pool.LastGovernanceNonce.IsZero())

	// nonce 7 is usable again after the rollback
	_, err = f.k.SwapStackToQuote(f.ctx, trader, poolID, 100, 1, nil, approvalFor(f, poolID, 7))
	require.NoError(t, err)
}

// TestGovernance_Expired tests expiry enforcement
func TestGovernance_Expired(t *testing.T) {
	f := newFixture(t)
	poolID := f.newPool(t, 100, 5000)
	f.seedPool(t, poolID, 100_000, 100_000)

	approval := approvalFor(f, poolID, 1)
	approval.ExpiryTS = f.clock.T - 1
	f.ledger.Fund(stackDenom, trader, 100)
	_, err := f.k.SwapStackToQuote(f.ctx, trader, poolID, 100, 1, nil, approval)
	require.ErrorIs(t, err, types.ErrGovernanceExpired)
}

// TestGovernance_NotApproved tests the approved flag
func TestGovernance_NotApproved(t *testing.T) {
	f := newFixture(t)
	poolID := f.newPool(t, 100, 5000)
	f.seedPool(t, poolID, 100_000, 100_000)

	approval := approvalFor(f, poolID, 1)
	approval.Approved = false
	f.ledger.Fund(stackDenom, trader, 100)
	_, err := f.k.SwapStackToQuote(f.ctx, trader, poolID, 100, 1, nil, approval)
	require.ErrorIs(t, err, types.ErrGovernanceNotApproved)
}

// TestGovernance_WrongTarget tests cross-pool approval rejection
func TestGovernance_WrongTarget(t *testing.T) {
	f := newFixture(t)
	poolID := f.newPool(t, 100, 5000)
	f.seedPool(t, poolID, 100_000, 100_000)

	approval := approvalFor(f, poolID+1, 1)
	f.ledger.Fund(stackDenom, trader, 100)
	_, err := f.k.SwapStackToQuote(f.ctx, trader, poolID, 100, 1, nil, approval)
	require.ErrorIs(t, err, types.ErrGovernanceTargetMismatch)
}

// TestGovernance_CheckedBeforePause tests that a bad approval surfaces its
// own error even on a paused pool, and that a good one is not consumed when
// the pause then rejects the swap
func TestGovernance_CheckedBeforePause(t *testing.T) {
	f := newFixture(t)
	poolID := f.newPool(t, 100, 5000)
	f.seedPool(t, poolID, 100_000, 100_000)
	require.NoError(t, f.k.PausePool(admin, poolID))

	f.ledger.Fund(stackDenom, trader, 100)

	approval := approvalFor(f, poolID, 1)
	approval.Approved = false
	_, err := f.k.SwapStackToQuote(f.ctx, trader, poolID, 100, 1, nil, approval)
	require.ErrorIs(t, err, types.ErrGovernanceNotApproved)

	_, err = f.k.SwapStackToQuote(f.ctx, trader, poolID, 100, 1, nil, approvalFor(f, poolID, 1))
	require.ErrorIs(t, err, types.ErrPoolPaused)

	pool, err := f.k.GetPool(poolID)
	require.NoError(t, err)
	require.True(t, pool.LastGovernanceNonce.IsZero())
}

// TestSetPoolParams_Governance tests the governed parameter update path
func TestSetPoolParams_Governance(t *testing.T) {
	f := newFixture(t)
	poolID := f.newPool(t, 100, 5000)
	f.seedPool(t, poolID, 100_000, 100_000)

	newFee := uint32(300)
	err := f.k.SetPoolParams(f.ctx, governance, poolID, &newFee, nil, nil, true, approvalFor(f, poolID, 1))
	require.NoError(t, err)

	pool, err := f.k.GetPool(poolID)
	require.NoError(t, err)
	require.Equal(t, uint32(300), pool.FeeBps)
	require.Equal(t, math.NewInt(1), pool.LastGovernanceNonce)

	// fee above the global cap is rejected even via governance
	tooHigh := uint32(2001)
	err = f.k.SetPoolParams(f.ctx, governance, poolID, &tooHigh, nil, nil, true, approvalFor(f, poolID, 2))
	require.ErrorIs(t, err, types.ErrInvalidFee)

	// the failed update did not consume nonce 2
	pool, err = f.k.GetPool(poolID)
	require.NoError(t, err)
	require.Equal(t, math.NewInt(1), pool.LastGovernanceNonce)
}

// TestSetPoolParams_Unauthorized tests the role gate
func TestSetPoolParams_Unauthorized(t *testing.T) {
	f := newFixture(t)
	poolID := f.newPool(t, 100, 5000)

	newFee := uint32(300)
	err := f.k.SetPoolParams(f.ctx, pauser, poolID, &newFee, nil, nil, false, nil)
	require.ErrorIs(t, err, types.ErrUnauthorized)
}
