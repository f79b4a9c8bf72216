// Package testutil provides in-memory fakes for the AMM keeper's
// collaborator interfaces.
package testutil

import (
	"context"
	"fmt"
	"sync"

	"cosmossdk.io/math"

	"github.com/stackmint/amm/x/amm/types"
)

// MemLedger is an in-memory TokenLedger with a write-ahead journal so tests
// exercise the keeper's snapshot/revert discipline for real. Assets may be
// configured with a transfer fee in basis points to simulate fee-on-transfer
// tokens: the recipient is credited the sent amount minus the fee.
type MemLedger struct {
	mu       sync.Mutex
	balances map[string]map[string]math.Int
	decimals map[string]uint8
	feeBps   map[string]uint32
	journal  []journalEntry

	// OnTransfer, when set, runs before every transfer and can inject a
	// failure mid-operation.
	OnTransfer func(asset, from, to string) error
}

type journalEntry struct {
	asset   string
	account string
	prev    math.Int
}

// NewMemLedger creates an empty ledger.
func NewMemLedger() *MemLedger {
	return &MemLedger{
		balances: make(map[string]map[string]math.Int),
		decimals: make(map[string]uint8),
		feeBps:   make(map[string]uint32),
	}
}

// RegisterAsset declares an asset and its native precision.
func (l *MemLedger) RegisterAsset(asset string, decimals uint8) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.decimals[asset] = decimals
	if _, ok := l.balances[asset]; !ok {
		l.balances[asset] = make(map[string]math.Int)
	}
}

// SetTransferFee configures a fee-on-transfer rate for an asset.
func (l *MemLedger) SetTransferFee(asset string, bps uint32) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.feeBps[asset] = bps
}

// Fund credits an account directly, outside the journal.
func (l *MemLedger) Fund(asset, account string, amount uint64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.credit(asset, account, math.NewIntFromUint64(amount))
}

func (l *MemLedger) balance(asset, account string) math.Int {
	if accounts, ok := l.balances[asset]; ok {
		if b, ok := accounts[account]; ok {
			return b
		}
	}
	return math.ZeroInt()
}

// record journals the current balance before a mutation.
func (l *MemLedger) record(asset, account string) {
	l.journal = append(l.journal, journalEntry{asset: asset, account: account, prev: l.balance(asset, account)})
}

func (l *MemLedger) credit(asset, account string, amount math.Int) {
	if _, ok := l.balances[asset]; !ok {
		l.balances[asset] = make(map[string]math.Int)
	}
	l.balances[asset][account] = l.balance(asset, account).Add(amount)
}

// Transfer implements types.TokenLedger.
func (l *MemLedger) Transfer(_ context.Context, asset, from, to string, amount math.Int, _ types.Authority) error {
	if l.OnTransfer != nil {
		if err := l.OnTransfer(asset, from, to); err != nil {
			return err
		}
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.balance(asset, from).LT(amount) {
		return fmt.Errorf("insufficient %s balance in %s", asset, from)
	}

	received := amount
	if fee, ok := l.feeBps[asset]; ok && fee > 0 {
		cut := amount.MulRaw(int64(fee)).QuoRaw(int64(types.BpsDenom))
		received = amount.Sub(cut)
	}

	l.record(asset, from)
	l.record(asset, to)
	l.balances[asset][from] = l.balance(asset, from).Sub(amount)
	l.credit(asset, to, received)
	return nil
}

// Mint implements types.TokenLedger.
func (l *MemLedger) Mint(_ context.Context, asset, to string, amount math.Int, _ types.Authority) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.record(asset, to)
	l.credit(asset, to, amount)
	return nil
}

// Burn implements types.TokenLedger.
func (l *MemLedger) Burn(_ context.Context, asset, from string, amount math.Int, _ types.Authority) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.balance(asset, from).LT(amount) {
		return fmt.Errorf("insufficient %s balance in %s to burn", asset, from)
	}
	l.record(asset, from)
	l.balances[asset][from] = l.balance(asset, from).Sub(amount)
	return nil
}

// BalanceOf implements types.TokenLedger.
func (l *MemLedger) BalanceOf(_ context.Context, asset, account string) (math.Int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.balance(asset, account), nil
}

// Decimals implements types.TokenLedger.
func (l *MemLedger) Decimals(_ context.Context, asset string) (uint8, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	d, ok := l.decimals[asset]
	if !ok {
		return 0, fmt.Errorf("asset %s not registered", asset)
	}
	return d, nil
}

// Snapshot implements types.TokenLedger.
func (l *MemLedger) Snapshot() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.journal)
}

// RevertToSnapshot implements types.TokenLedger. Journal entries past the
// snapshot are undone newest-first.
func (l *MemLedger) RevertToSnapshot(id int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i := len(l.journal) - 1; i >= id; i-- {
		e := l.journal[i]
		l.balances[e.asset][e.account] = e.prev
	}
	l.journal = l.journal[:id]
}

// ManualClock is a Clock under test control.
type ManualClock struct {
	T int64
}

// Now implements types.Clock.
func (c *ManualClock) Now() int64 { return c.T }

// Advance moves the clock forward by secs.
func (c *ManualClock) Advance(secs int64) { c.T += secs }

// RecordingSink captures emitted events in order.
type RecordingSink struct {
	mu     sync.Mutex
	Events []types.Event
}

// Emit implements types.EventSink.
func (s *RecordingSink) Emit(event types.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Events = append(s.Events, event)
}

// ByType returns the captured events of one type.
func (s *RecordingSink) ByType(eventType string) []types.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []types.Event
	for _, e := range s.Events {
		if e.Type == eventType {
			out = append(out, e)
		}
	}
	return out
}

// StaticResolver derives authorities mechanically and can be told to refuse
// specific (purpose, id) pairs.
type StaticResolver struct {
	Denied map[string]bool
}

// Deny refuses future resolutions for a (purpose, id) pair.
func (r *StaticResolver) Deny(purpose, id string) {
	if r.Denied == nil {
		r.Denied = make(map[string]bool)
	}
	r.Denied[purpose+"/"+id] = true
}

// Resolve implements types.AuthorityResolver.
func (r *StaticResolver) Resolve(purpose, id string) (types.Authority, error) {
	if r.Denied[purpose+"/"+id] {
		return types.Authority{}, fmt.Errorf("no %s authority derivable for %s", purpose, id)
	}
	return types.Authority{Purpose: purpose, ID: id}, nil
}
