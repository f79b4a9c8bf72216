package keeper

import (
	"github.com/google/uuid"

	"github.com/stackmint/amm/x/amm/types"
)

// emit delivers a structured event to the configured sink. Events are
// best-effort notifications; a nil sink is a no-op.
func (k *Keeper) emit(eventType string, poolID uint64, actor string, attributes map[string]string) {
	if k.events == nil {
		return
	}
	k.events.Emit(types.Event{
		ID:         uuid.NewString(),
		Type:       eventType,
		PoolID:     poolID,
		Actor:      actor,
		Attributes: attributes,
	})
}
