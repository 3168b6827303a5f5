// Package ledger provides the asset-transfer primitive backing the bridge:
// moving value between two accounts, atomic, failing closed when the source
// balance is insufficient.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// ErrInsufficientFunds is returned when a debit would overdraw the source
// account. Nothing moves in that case.
var ErrInsufficientFunds = errors.New("insufficient funds")

// Ledger moves value between accounts. Transfer is all-or-nothing: on any
// error both balances are unchanged.
type Ledger interface {
	Transfer(ctx context.Context, from, to string, amount uint64) error
	Credit(ctx context.Context, account string, amount uint64) error
	BalanceOf(ctx context.Context, account string) (uint64, error)
}

// InMemory is a map-backed ledger safe for concurrent use.
type InMemory struct {
	mu       sync.RWMutex
	balances map[string]uint64
}

var _ Ledger = (*InMemory)(nil)

// NewInMemory creates an empty ledger.
func NewInMemory() *InMemory {
	return &InMemory{balances: make(map[string]uint64)}
}

// Transfer moves amount from one account to another.
func (l *InMemory) Transfer(_ context.Context, from, to string, amount uint64) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if amount == 0 {
		return nil
	}
	balance := l.balances[from]
	if balance < amount {
		return fmt.Errorf("transfer %d from %s: balance %d: %w", amount, from, balance, ErrInsufficientFunds)
	}
	l.balances[from] = balance - amount
	l.balances[to] += amount
	return nil
}

// Credit mints amount into an account. It exists for funding test and local
// setups; production deployments seed balances out of band.
func (l *InMemory) Credit(_ context.Context, account string, amount uint64) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.balances[account] += amount
	return nil
}

// BalanceOf returns the current balance of an account, zero if unknown.
func (l *InMemory) BalanceOf(_ context.Context, account string) (uint64, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return l.balances[account], nil
}
