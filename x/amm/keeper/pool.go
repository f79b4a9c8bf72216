package keeper

import (
	"context"
	"fmt"
	"strconv"

	"cosmossdk.io/math"

	"github.com/stackmint/amm/x/amm/types"
)

// RegisterAsset records a synthetic stack asset and its creator fee terms.
// The module must hold the asset's mint authority, otherwise MintStackViaPool
// could never issue it; registration fails if the resolver cannot produce
// that capability.
func (k *Keeper) RegisterAsset(ctx context.Context, creator, asset string, creatorFeeBps uint32, rebalanceHook string) error {
	if creatorFeeBps > types.MaxCreatorFeeBps {
		return types.ErrInvalidFee.Wrapf("creator fee %d exceeds cap %d", creatorFeeBps, types.MaxCreatorFeeBps)
	}
	if _, err := k.authorities.Resolve(types.AuthorityStackMint, asset); err != nil {
		return types.ErrInvalidMintAuthority.Wrapf("no mint authority for %s: %v", asset, err)
	}
	if _, err := k.ledger.Decimals(ctx, asset); err != nil {
		return types.ErrAssetNotFound.Wrapf("asset %s unknown to ledger: %v", asset, err)
	}

	k.mu.Lock()
	defer k.mu.Unlock()
	if _, exists := k.assets[asset]; exists {
		return types.ErrAssetAlreadyRegistered.Wrapf("asset %s", asset)
	}
	k.assets[asset] = &types.AssetInfo{
		Version:       1,
		Creator:       creator,
		Asset:         asset,
		CreatorFeeBps: creatorFeeBps,
		RebalanceHook: rebalanceHook,
	}

	k.logger.Info("asset registered", "asset", asset, "creator", creator, "creator_fee_bps", creatorFeeBps)
	k.emit(types.EventTypeAssetRegistered, 0, creator, map[string]string{
		types.AttributeKeyAsset:   asset,
		types.AttributeKeyCreator: creator,
		types.AttributeKeyFee:     strconv.FormatUint(uint64(creatorFeeBps), 10),
	})
	return nil
}

// CreatePool creates a stack/quote pool with derived vault accounts and a
// fresh LP denom. The stack asset must already be registered; the fee is
// capped by the global configuration.
func (k *Keeper) CreatePool(ctx context.Context, creator, stackAsset, quoteAsset string, feeBps uint32, curveK math.Int, feeOnTransfer bool, decimalNormalizeTo uint8) (uint64, error) {
	global, err := k.getGlobal()
	if err != nil {
		return 0, err
	}
	if decimalNormalizeTo > types.MaxDecimalNormalizeTo {
		return 0, types.ErrInvalidDecimals.Wrapf("normalize target %d exceeds %d", decimalNormalizeTo, types.MaxDecimalNormalizeTo)
	}
	if maxFee := global.EffectiveMaxFeeBps(); feeBps > maxFee {
		return 0, types.ErrInvalidFee.Wrapf("fee %d exceeds cap %d", feeBps, maxFee)
	}
	if stackAsset == quoteAsset {
		return 0, types.ErrInvalidAmount.Wrapf("stack and quote asset must differ: %s", stackAsset)
	}
	if curveK.IsNil() {
		curveK = math.ZeroInt()
	}
	if curveK.IsNegative() {
		return 0, types.ErrInvalidAmount.Wrap("k must be non-negative")
	}
	if _, err := k.getAsset(stackAsset); err != nil {
		return 0, err
	}
	if _, err := k.ledger.Decimals(ctx, quoteAsset); err != nil {
		return 0, types.ErrAssetNotFound.Wrapf("quote asset %s unknown to ledger: %v", quoteAsset, err)
	}

	k.mu.Lock()
	defer k.mu.Unlock()
	for _, p := range k.pools {
		if p.StackAsset == stackAsset && p.QuoteAsset == quoteAsset {
			return 0, types.ErrPoolAlreadyExists.Wrapf("pool %d already pairs %s/%s", p.ID, stackAsset, quoteAsset)
		}
	}

	id := k.nextPoolID
	k.nextPoolID++

	pool := &types.Pool{
		ID:                   id,
		Version:              1,
		StackAsset:           stackAsset,
		QuoteAsset:           quoteAsset,
		LPAsset:              fmt.Sprintf("amm/pool/%d", id),
		FeeBps:               feeBps,
		K:                    curveK,
		TotalLPSupply:        math.ZeroInt(),
		DecimalNormalizeTo:   decimalNormalizeTo,
		FeeOnTransfer:        feeOnTransfer,
		StackVault:           fmt.Sprintf("pool/%d/stack_vault", id),
		QuoteVault:           fmt.Sprintf("pool/%d/quote_vault", id),
		ProtocolFeeVault:     fmt.Sprintf("pool/%d/protocol_fee_vault", id),
		CreatorFeeVault:      fmt.Sprintf("pool/%d/creator_fee_vault", id),
		Treasury:             global.Treasury,
		CreatorClaimable:     math.ZeroInt(),
		MaxPriceDeviationBps: types.DefaultMaxPriceDeviationBps,
		LastGovernanceNonce:  math.ZeroInt(),
	}
	k.pools[id] = pool

	if k.metrics != nil {
		k.metrics.PoolsTotal.Set(float64(len(k.pools)))
		k.metrics.PoolCreationRate.Inc()
	}
	k.logger.Info("pool created", "pool_id", id, "stack", stackAsset, "quote", quoteAsset, "fee_bps", feeBps)
	k.emit(types.EventTypePoolCreated, id, creator, map[string]string{
		types.AttributeKeyAsset: stackAsset + "/" + quoteAsset,
		types.AttributeKeyFee:   strconv.FormatUint(uint64(feeBps), 10),
	})
	return id, nil
}
