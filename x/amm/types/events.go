package types

// Event types emitted by the AMM module, one per completed operation.
const (
	EventTypeGlobalInitialized    = "global_initialized"
	EventTypeAssetRegistered      = "asset_registered"
	EventTypePoolCreated          = "pool_created"
	EventTypeLiquidityProvided    = "liquidity_provided"
	EventTypeLiquidityRemoved     = "liquidity_removed"
	EventTypeSwap                 = "swap"
	EventTypeMintedStackViaPool   = "minted_stack_via_pool"
	EventTypeRedeemedStackViaPool = "redeemed_stack_via_pool"
	EventTypeCreatorClaimed       = "creator_fees_claimed"
	EventTypeProtocolFeesWithdrawn = "protocol_fees_withdrawn"
	EventTypeEmergencyWithdrawal  = "emergency_withdrawal"
	EventTypeMidPrice             = "mid_price"
	EventTypeProtocolPaused       = "protocol_paused"
	EventTypeProtocolResumed      = "protocol_resumed"
	EventTypePoolPaused           = "pool_paused"
	EventTypePoolResumed          = "pool_resumed"
	EventTypePoolParamsUpdated    = "pool_params_updated"
	EventTypeDustSwept            = "dust_swept"
)

// Event attribute keys
const (
	AttributeKeyPoolID    = "pool_id"
	AttributeKeyActor     = "actor"
	AttributeKeyAsset     = "asset"
	AttributeKeyAmountIn  = "amount_in"
	AttributeKeyAmountOut = "amount_out"
	AttributeKeyLPMinted  = "lp_minted"
	AttributeKeyLPBurned  = "lp_burned"
	AttributeKeyDirection = "direction"
	AttributeKeyFee       = "fee"
	AttributeKeyPrice     = "price"
	AttributeKeyAmount    = "amount"
	AttributeKeyVault     = "vault"
	AttributeKeyCreator   = "creator"
)

// Event is a structured notification delivered to the EventSink after a
// completed operation. Delivery is fire-and-forget; the core never reads the
// sink's result.
type Event struct {
	ID         string
	Type       string
	PoolID     uint64
	Actor      string
	Attributes map[string]string
}
