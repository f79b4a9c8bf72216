package types

const (
	// ModuleName defines the module name
	ModuleName = "amm"

	// BpsDenom is the basis-point denominator: 10000 bps = 100%
	BpsDenom = uint32(10000)

	// MaxDecimalNormalizeTo bounds the per-pool internal precision
	MaxDecimalNormalizeTo = uint8(18)

	// MaxCreatorFeeBps caps the per-asset creator fee at registration
	MaxCreatorFeeBps = uint32(5000)

	// DefaultMaxPriceDeviationBps is the allowed deviation vs a caller-supplied
	// oracle price for new pools (20%)
	DefaultMaxPriceDeviationBps = uint32(2000)

	// Fallbacks used when the corresponding global config field is zero
	FallbackMaxFeeBps            = uint32(2000)
	FallbackDustThreshold        = uint64(10)
	FallbackCreatorClaimLockSecs = int64(60 * 60 * 24 * 7)
)

// Authority purpose tags understood by the AuthorityResolver.
const (
	// AuthorityVault custodies a pool's token vaults, keyed by pool ID
	AuthorityVault = "vault_authority"

	// AuthorityStackMint controls supply of a registered stack asset, keyed by denom
	AuthorityStackMint = "stack_mint_auth"
)

// SwapDirection identifies which side of the pair is the swap input.
type SwapDirection uint8

const (
	StackToQuote SwapDirection = iota
	QuoteToStack
)

func (d SwapDirection) String() string {
	if d == StackToQuote {
		return "stack_to_quote"
	}
	return "quote_to_stack"
}
