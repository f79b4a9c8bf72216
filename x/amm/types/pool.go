package types

import (
	"cosmossdk.io/math"
)

// AssetInfo is the per-asset registration record for a tradable stack asset.
// The creator fee rate is immutable after registration.
type AssetInfo struct {
	Version       uint8
	Creator       string
	Asset         string
	CreatorFeeBps uint32
	RebalanceHook string // optional; empty when unset
}

// Pool is the state of one (stack, quote) constant-product pool.
//
// TotalLPSupply tracks the algebraic sum of minted minus burned LP shares and
// must never go negative. Locked must be false both before and after any
// successfully completed operation; the keeper rolls the flag back together
// with the rest of the pool state when an operation fails mid-flight.
type Pool struct {
	ID         uint64
	Version    uint8
	StackAsset string
	QuoteAsset string
	LPAsset    string

	FeeBps             uint32
	K                  math.Int
	Paused             bool
	Locked             bool
	TotalLPSupply      math.Int
	DecimalNormalizeTo uint8
	FeeOnTransfer      bool

	StackVault       string
	QuoteVault       string
	ProtocolFeeVault string
	CreatorFeeVault  string
	Treasury         string

	// CreatorClaimable is the accrued creator fee in normalized quote units.
	CreatorClaimable   math.Int
	CreatorLastClaimTS int64

	MaxPriceDeviationBps uint32

	// LastGovernanceNonce is the highest consumed approval nonce; consumption
	// is irreversible within a committed operation.
	LastGovernanceNonce math.Int
}

// GovernanceApproval is an ephemeral attestation produced by an external
// multisig flow. A given nonce value is usable at most once per pool.
type GovernanceApproval struct {
	Target   uint64
	Approved bool
	ExpiryTS int64
	Nonce    math.Int
}
