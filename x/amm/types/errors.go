package types

import (
	"cosmossdk.io/errors"
)

// AMM module sentinel errors
var (
	ErrInvalidFee                = errors.Register(ModuleName, 1, "invalid fee")
	ErrInvalidMintAuthority      = errors.Register(ModuleName, 2, "invalid mint authority")
	ErrPoolPaused                = errors.Register(ModuleName, 3, "pool is paused")
	ErrProtocolPaused            = errors.Register(ModuleName, 4, "protocol is paused")
	ErrOverflow                  = errors.Register(ModuleName, 5, "math overflow")
	ErrSlippageExceeded          = errors.Register(ModuleName, 6, "slippage exceeded")
	ErrUnauthorized              = errors.Register(ModuleName, 7, "unauthorized")
	ErrNoLiquidity               = errors.Register(ModuleName, 8, "no liquidity")
	ErrReentrancy                = errors.Register(ModuleName, 9, "reentrancy detected")
	ErrInvalidVault              = errors.Register(ModuleName, 10, "invalid vault account")
	ErrInvalidDecimals           = errors.Register(ModuleName, 11, "invalid decimals")
	ErrZeroLpMint                = errors.Register(ModuleName, 12, "zero LP minted")
	ErrOraclePriceMismatch       = errors.Register(ModuleName, 13, "oracle price mismatch")
	ErrNoFees                    = errors.Register(ModuleName, 14, "no fees to claim")
	ErrClaimLocked               = errors.Register(ModuleName, 15, "creator claim locked")
	ErrGovernanceMissing         = errors.Register(ModuleName, 16, "governance approval missing")
	ErrGovernanceNotApproved     = errors.Register(ModuleName, 17, "governance not approved")
	ErrGovernanceExpired         = errors.Register(ModuleName, 18, "governance approval expired")
	ErrGovernanceTargetMismatch  = errors.Register(ModuleName, 19, "governance approval target mismatch")
	ErrPoolNotFound              = errors.Register(ModuleName, 20, "pool not found")
	ErrPoolAlreadyExists         = errors.Register(ModuleName, 21, "pool already exists")
	ErrAssetNotFound             = errors.Register(ModuleName, 22, "asset not registered")
	ErrAssetAlreadyRegistered    = errors.Register(ModuleName, 23, "asset already registered")
	ErrInvalidAmount             = errors.Register(ModuleName, 24, "invalid amount")
	ErrGlobalNotInitialized      = errors.Register(ModuleName, 25, "global config not initialized")
	ErrGlobalAlreadyInitialized  = errors.Register(ModuleName, 26, "global config already initialized")
)
