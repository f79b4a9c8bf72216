package types

// GlobalConfig is the process-wide protocol configuration. It is created once
// at bootstrap via Keeper.InitGlobal and mutated only by role-gated calls.
type GlobalConfig struct {
	Version              uint8
	Admin                string
	Pauser               string
	FeeManager           string
	Governance           string
	ProtocolFeeBps       uint32
	MaxFeeBps            uint32
	DustThreshold        uint64
	CreatorClaimLockSecs int64
	Paused               bool
	Treasury             string
}

// DefaultGlobalConfig returns a config with the documented fallbacks filled
// in and no role identities set. Intended for tests and the config loader.
func DefaultGlobalConfig() GlobalConfig {
	return GlobalConfig{
		Version:              1,
		ProtocolFeeBps:       5000,
		MaxFeeBps:            FallbackMaxFeeBps,
		DustThreshold:        FallbackDustThreshold,
		CreatorClaimLockSecs: FallbackCreatorClaimLockSecs,
	}
}

// Validate checks the basic bounds enforced at bootstrap.
func (g GlobalConfig) Validate() error {
	if g.ProtocolFeeBps > BpsDenom {
		return ErrInvalidFee.Wrapf("protocol fee %d bps exceeds %d", g.ProtocolFeeBps, BpsDenom)
	}
	if g.MaxFeeBps > BpsDenom {
		return ErrInvalidFee.Wrapf("max fee %d bps exceeds %d", g.MaxFeeBps, BpsDenom)
	}
	if g.CreatorClaimLockSecs < 0 {
		return ErrInvalidAmount.Wrap("creator claim lock must not be negative")
	}
	return nil
}

// EffectiveMaxFeeBps returns the pool fee cap, falling back to the default
// when unset.
func (g GlobalConfig) EffectiveMaxFeeBps() uint32 {
	if g.MaxFeeBps == 0 {
		return FallbackMaxFeeBps
	}
	return g.MaxFeeBps
}

// EffectiveDustThreshold returns the vault dust-sweep threshold, falling back
// to the default when unset.
func (g GlobalConfig) EffectiveDustThreshold() uint64 {
	if g.DustThreshold == 0 {
		return FallbackDustThreshold
	}
	return g.DustThreshold
}

// EffectiveClaimLockSecs returns the creator claim timelock, falling back to
// the default when unset.
func (g GlobalConfig) EffectiveClaimLockSecs() int64 {
	if g.CreatorClaimLockSecs == 0 {
		return FallbackCreatorClaimLockSecs
	}
	return g.CreatorClaimLockSecs
}
