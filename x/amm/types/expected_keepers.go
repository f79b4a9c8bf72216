package types

import (
	"context"

	"cosmossdk.io/math"
)

// Authority is an opaque signing capability returned by the AuthorityResolver
// and consumed by the TokenLedger. The core never inspects key material.
type Authority struct {
	Purpose string
	ID      string
}

// UserAuthority is the capability of an end user signing over their own
// accounts, as opposed to a derived custodial authority.
func UserAuthority(id string) Authority {
	return Authority{Purpose: "user", ID: id}
}

// AuthorityResolver maps a (purpose, identifier) pair to the signing
// capability the surrounding runtime derived for it.
type AuthorityResolver interface {
	Resolve(purpose, id string) (Authority, error)
}

// TokenLedger is the custodial ledger the core moves tokens through. Each
// call is atomic. Balance reads after a transfer reflect the actual credited
// delta, which may be less than the requested amount for fee-on-transfer
// assets.
//
// Snapshot/RevertToSnapshot expose the ledger's journal so the keeper can
// supply the all-or-nothing execution guarantee the accounting core depends
// on: every effect of a failed operation is rolled back to the snapshot taken
// at entry.
type TokenLedger interface {
	Transfer(ctx context.Context, asset, from, to string, amount math.Int, authority Authority) error
	Mint(ctx context.Context, asset, to string, amount math.Int, authority Authority) error
	Burn(ctx context.Context, asset, from string, amount math.Int, authority Authority) error
	BalanceOf(ctx context.Context, asset, account string) (math.Int, error)
	Decimals(ctx context.Context, asset string) (uint8, error)

	Snapshot() int
	RevertToSnapshot(id int)
}

// Clock supplies the single wall-clock reading an operation is allowed to
// take. Returned values are unix seconds and monotonic between operations.
type Clock interface {
	Now() int64
}

// EventSink receives one structured notification per completed operation.
// Fire-and-forget: the core does not consume the result.
type EventSink interface {
	Emit(event Event)
}
