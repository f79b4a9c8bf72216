package keeper_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/stackmint/amm/x/amm/types"
)

// TestEmergencyPause_Roles tests which roles may pause and resume
func TestEmergencyPause_Roles(t *testing.T) {
	f := newFixture(t)

	require.ErrorIs(t, f.k.EmergencyPause(trader), types.ErrUnauthorized)

	for _, caller := range []string{admin, pauser, governance} {
		require.NoError(t, f.k.EmergencyPause(caller))
		require.NoError(t, f.k.EmergencyResume(caller))
	}
}

// TestEmergencyPause_BlocksOperations tests the protocol-wide gate
func TestEmergencyPause_BlocksOperations(t *testing.T) {
	f := newFixture(t)
	poolID := f.newPool(t, 100, 5000)
	f.seedPool(t, poolID, 1000, 1000)

	require.NoError(t, f.k.EmergencyPause(pauser))

	f.ledger.Fund(stackDenom, trader, 100)
	_, err := f.k.SwapStackToQuote(f.ctx, trader, poolID, 100, 1, nil, nil)
	require.ErrorIs(t, err, types.ErrProtocolPaused)

	f.ledger.Fund(quoteDenom, trader, 100)
	_, err = f.k.ProvideLiquidity(f.ctx, trader, poolID, 100, 100)
	require.ErrorIs(t, err, types.ErrProtocolPaused)

	_, err = f.k.MintStackViaPool(f.ctx, trader, poolID, 100, 1)
	require.ErrorIs(t, err, types.ErrProtocolPaused)

	require.NoError(t, f.k.EmergencyResume(admin))
	_, err = f.k.SwapStackToQuote(f.ctx, trader, poolID, 100, 1, nil, nil)
	require.NoError(t, err)
}

// TestPausePool_Single tests that pausing one pool leaves others live
func TestPausePool_Single(t *testing.T) {
	f := newFixture(t)
	poolID := f.newPool(t, 100, 5000)
	f.seedPool(t, poolID, 1000, 1000)

	require.NoError(t, f.k.PausePool(pauser, poolID))

	f.ledger.Fund(stackDenom, trader, 100)
	_, err := f.k.SwapStackToQuote(f.ctx, trader, poolID, 100, 1, nil, nil)
	require.ErrorIs(t, err, types.ErrPoolPaused)

	require.NoError(t, f.k.ResumePool(pauser, poolID))
	_, err = f.k.SwapStackToQuote(f.ctx, trader, poolID, 100, 1, nil, nil)
	require.NoError(t, err)
}

// TestPausePool_NotFound tests pausing an unknown pool
func TestPausePool_NotFound(t *testing.T) {
	f := newFixture(t)
	require.ErrorIs(t, f.k.PausePool(admin, 42), types.ErrPoolNotFound)
}

// TestClaimCreatorFees_SurvivesPause tests that creator claims work while
// the protocol is paused
func TestClaimCreatorFees_SurvivesPause(t *testing.T) {
	f := newFixture(t)
	poolID := f.newPool(t, 100, 5000)
	f.seedPool(t, poolID, 100_000, 100_000)
	accrueCreatorFees(t, f, poolID)
	f.clock.Advance(604_800)

	require.NoError(t, f.k.EmergencyPause(pauser))

	claimed, err := f.k.ClaimCreatorFees(f.ctx, creator, poolID)
	require.NoError(t, err)
	require.Equal(t, uint64(49), claimed)
}
