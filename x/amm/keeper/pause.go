package keeper

import (
	"github.com/stackmint/amm/x/amm/types"
)

// canPause reports whether caller holds one of the pause-capable roles.
func canPause(global *types.GlobalConfig, caller string) bool {
	return caller == global.Admin || caller == global.Pauser || caller == global.Governance
}

// EmergencyPause halts every value-moving operation protocol-wide.
// Emergency withdrawals remain available to LPs.
func (k *Keeper) EmergencyPause(caller string) error {
	k.mu.Lock()
	defer k.mu.Unlock()
	if k.global == nil {
		return types.ErrGlobalNotInitialized
	}
	if !canPause(k.global, caller) {
		return types.ErrUnauthorized.Wrapf("caller %s may not pause the protocol", caller)
	}
	k.global.Paused = true

	if k.metrics != nil {
		k.metrics.ProtocolPaused.Set(1)
	}
	k.logger.Info("protocol paused", "by", caller)
	k.emit(types.EventTypeProtocolPaused, 0, caller, nil)
	return nil
}

// EmergencyResume lifts the protocol-wide pause.
func (k *Keeper) EmergencyResume(caller string) error {
	k.mu.Lock()
	defer k.mu.Unlock()
	if k.global == nil {
		return types.ErrGlobalNotInitialized
	}
	if !canPause(k.global, caller) {
		return types.ErrUnauthorized.Wrapf("caller %s may not resume the protocol", caller)
	}
	k.global.Paused = false

	if k.metrics != nil {
		k.metrics.ProtocolPaused.Set(0)
	}
	k.logger.Info("protocol resumed", "by", caller)
	k.emit(types.EventTypeProtocolResumed, 0, caller, nil)
	return nil
}

// PausePool halts a single pool without touching the rest of the protocol.
func (k *Keeper) PausePool(caller string, poolID uint64) error {
	return k.setPoolPaused(caller, poolID, true)
}

// ResumePool lifts a single pool's pause.
func (k *Keeper) ResumePool(caller string, poolID uint64) error {
	return k.setPoolPaused(caller, poolID, false)
}

func (k *Keeper) setPoolPaused(caller string, poolID uint64, paused bool) error {
	k.mu.Lock()
	defer k.mu.Unlock()
	if k.global == nil {
		return types.ErrGlobalNotInitialized
	}
	if !canPause(k.global, caller) {
		return types.ErrUnauthorized.Wrapf("caller %s may not pause pools", caller)
	}
	pool, ok := k.pools[poolID]
	if !ok {
		return types.ErrPoolNotFound.Wrapf("pool %d", poolID)
	}
	pool.Paused = paused

	eventType := types.EventTypePoolPaused
	gauge := 1.0
	if !paused {
		eventType = types.EventTypePoolResumed
		gauge = 0
	}
	if k.metrics != nil {
		k.metrics.PoolPaused.WithLabelValues(poolLabel(poolID)).Set(gauge)
	}
	k.logger.Info("pool pause state changed", "pool_id", poolID, "paused", paused, "by", caller)
	k.emit(eventType, poolID, caller, nil)
	return nil
}
