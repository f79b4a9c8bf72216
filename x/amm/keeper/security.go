package keeper

import (
	"context"
	"sync"

	"github.com/stackmint/amm/x/amm/types"
)

// ReentrancyGuard provides keyed try-locks enforcing the single-writer
// discipline per pool. A lock attempt on a held key fails instead of
// blocking.
type ReentrancyGuard struct {
	mu    sync.Mutex
	locks map[string]struct{}
}

// NewReentrancyGuard creates a new guard instance.
func NewReentrancyGuard() *ReentrancyGuard {
	return &ReentrancyGuard{locks: make(map[string]struct{})}
}

// Lock acquires a named lock or returns an error if already held.
func (g *ReentrancyGuard) Lock(key string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, exists := g.locks[key]; exists {
		return types.ErrReentrancy.Wrapf("operation in flight for %s", key)
	}
	g.locks[key] = struct{}{}
	return nil
}

// Unlock releases a named lock.
func (g *ReentrancyGuard) Unlock(key string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.locks, key)
}

// withPoolLock runs fn as one atomic pool operation:
//
//   - acquires the pool's keyed lock (Reentrancy on contention),
//   - under k.mu: checks global and pool pause state unless the path is an
//     emergency one, checks and flips the pool's locked flag, and snapshots
//     the pool and the global config,
//   - snapshots the ledger journal, then runs fn against the private copies,
//   - on failure reverts the ledger and discards the working copy, so any
//     governance nonce consumed inside fn is restored,
//   - on success publishes the working copy back under k.mu.
//
// fn never touches shared state directly: the live pool and config are read
// and written only under k.mu, which keeps pause toggles and read-side
// copies safe while an operation is in flight. A pause that lands
// mid-operation is preserved across the commit.
func (k *Keeper) withPoolLock(ctx context.Context, poolID uint64, emergency bool, fn func(pool *types.Pool, global *types.GlobalConfig) error) error {
	key := poolLockKey(poolID)
	if err := k.guard.Lock(key); err != nil {
		return err
	}
	defer k.guard.Unlock(key)

	k.mu.Lock()
	if k.global == nil {
		k.mu.Unlock()
		return types.ErrGlobalNotInitialized
	}
	live, ok := k.pools[poolID]
	if !ok {
		k.mu.Unlock()
		return types.ErrPoolNotFound.Wrapf("pool %d", poolID)
	}
	if !emergency {
		if k.global.Paused {
			k.mu.Unlock()
			return types.ErrProtocolPaused
		}
		if live.Paused {
			k.mu.Unlock()
			return types.ErrPoolPaused.Wrapf("pool %d", poolID)
		}
	}
	if live.Locked {
		k.mu.Unlock()
		return types.ErrReentrancy.Wrapf("pool %d is locked", poolID)
	}
	live.Locked = true
	work := *live
	global := *k.global
	k.mu.Unlock()

	rev := k.ledger.Snapshot()
	if err := fn(&work, &global); err != nil {
		k.ledger.RevertToSnapshot(rev)
		k.mu.Lock()
		live.Locked = false
		k.mu.Unlock()
		return err
	}

	k.mu.Lock()
	work.Locked = false
	work.Paused = live.Paused
	*live = work
	k.mu.Unlock()
	return nil
}

// vaultAuthority resolves the custodial signing capability for a pool's
// vaults.
func (k *Keeper) vaultAuthority(poolID uint64) (types.Authority, error) {
	auth, err := k.authorities.Resolve(types.AuthorityVault, poolLockKey(poolID))
	if err != nil {
		return types.Authority{}, types.ErrInvalidVault.Wrapf("resolving vault authority for pool %d: %v", poolID, err)
	}
	return auth, nil
}
