package keeper

import (
	"fmt"
	"sync"

	"cosmossdk.io/log"

	"github.com/stackmint/amm/x/amm/types"
)

// Keeper orchestrates all pool accounting. Token movements, authority
// derivation, time and notifications go through the injected collaborators;
// the keeper itself holds only protocol state (global config, asset
// registrations, pools).
//
// Per-pool operations follow a single-writer discipline: the reentrancy
// guard serializes entry per pool, and each value-moving operation runs
// against a snapshot of the pool and the ledger journal that is rolled back
// wholesale on failure.
type Keeper struct {
	ledger      types.TokenLedger
	authorities types.AuthorityResolver
	clock       types.Clock
	events      types.EventSink
	logger      log.Logger
	metrics     *AMMMetrics

	mu         sync.RWMutex
	global     *types.GlobalConfig
	pools      map[uint64]*types.Pool
	assets     map[string]*types.AssetInfo
	nextPoolID uint64
	guard      *ReentrancyGuard
}

// NewKeeper creates a new AMM Keeper instance.
func NewKeeper(
	ledger types.TokenLedger,
	authorities types.AuthorityResolver,
	clock types.Clock,
	events types.EventSink,
	logger log.Logger,
) *Keeper {
	return &Keeper{
		ledger:      ledger,
		authorities: authorities,
		clock:       clock,
		events:      events,
		logger:      logger.With("module", types.ModuleName),
		metrics:     GetAMMMetrics(),
		pools:       make(map[uint64]*types.Pool),
		assets:      make(map[string]*types.AssetInfo),
		nextPoolID:  1,
		guard:       NewReentrancyGuard(),
	}
}

// Logger returns the module logger.
func (k *Keeper) Logger() log.Logger {
	return k.logger
}

// getGlobal returns a snapshot of the global config, failing if InitGlobal
// has not run. Only a copy ever leaves k.mu; the live record is read and
// written exclusively under the lock so config mutation stays independent
// of in-flight pool operations.
func (k *Keeper) getGlobal() (types.GlobalConfig, error) {
	k.mu.RLock()
	defer k.mu.RUnlock()
	if k.global == nil {
		return types.GlobalConfig{}, types.ErrGlobalNotInitialized
	}
	return *k.global, nil
}

// GetGlobal returns a copy of the global configuration.
func (k *Keeper) GetGlobal() (types.GlobalConfig, error) {
	return k.getGlobal()
}

// getPool returns a snapshot of a pool's state. As with the global config,
// the live record never escapes k.mu.
func (k *Keeper) getPool(poolID uint64) (types.Pool, error) {
	k.mu.RLock()
	defer k.mu.RUnlock()
	pool, ok := k.pools[poolID]
	if !ok {
		return types.Pool{}, types.ErrPoolNotFound.Wrapf("pool %d", poolID)
	}
	return *pool, nil
}

// GetPool returns a copy of a pool's state.
func (k *Keeper) GetPool(poolID uint64) (types.Pool, error) {
	return k.getPool(poolID)
}

// GetAsset returns a copy of an asset registration.
func (k *Keeper) GetAsset(denom string) (types.AssetInfo, error) {
	k.mu.RLock()
	defer k.mu.RUnlock()
	info, ok := k.assets[denom]
	if !ok {
		return types.AssetInfo{}, types.ErrAssetNotFound.Wrapf("asset %s", denom)
	}
	return *info, nil
}

// getAsset returns the live asset record. Registrations are insert-only and
// never mutated afterwards, so sharing the pointer outside k.mu is safe.
func (k *Keeper) getAsset(denom string) (*types.AssetInfo, error) {
	k.mu.RLock()
	defer k.mu.RUnlock()
	info, ok := k.assets[denom]
	if !ok {
		return nil, types.ErrAssetNotFound.Wrapf("asset %s", denom)
	}
	return info, nil
}

func poolLockKey(poolID uint64) string {
	return fmt.Sprintf("pool/%d", poolID)
}
