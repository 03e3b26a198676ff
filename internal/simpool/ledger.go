package simpool

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"liquidityRange/internal/fixedpoint"
)

var (
	ErrInsufficientBalance   = errors.New("insufficient balance")
	ErrInsufficientAllowance = errors.New("insufficient allowance")
)

type allowanceKey struct {
	token   common.Address
	owner   common.Address
	spender common.Address
}

type balanceKey struct {
	token common.Address
	owner common.Address
}

// Ledger is an in-memory ERC20 balance and allowance book for many tokens.
type Ledger struct {
	mu         sync.Mutex
	balances   map[balanceKey]*uint256.Int
	allowances map[allowanceKey]*uint256.Int
}

func NewLedger() *Ledger {
	return &Ledger{
		balances:   make(map[balanceKey]*uint256.Int),
		allowances: make(map[allowanceKey]*uint256.Int),
	}
}

// Fund credits amount of token to owner.
func (l *Ledger) Fund(token, owner common.Address, amount *uint256.Int) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	key := balanceKey{token: token, owner: owner}
	next, err := fixedpoint.Add(l.balance(key), amount)
	if err != nil {
		return fmt.Errorf("fund %s: %w", owner.Hex(), err)
	}
	l.balances[key] = next
	return nil
}

func (l *Ledger) BalanceOf(token, owner common.Address) *uint256.Int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.balance(balanceKey{token: token, owner: owner}).Clone()
}

func (l *Ledger) Approve(token, owner, spender common.Address, amount *uint256.Int) {
	l.mu.Lock()
	l.allowances[allowanceKey{token: token, owner: owner, spender: spender}] = amount.Clone()
	l.mu.Unlock()
}

func (l *Ledger) Allowance(token, owner, spender common.Address) *uint256.Int {
	l.mu.Lock()
	defer l.mu.Unlock()
	if v, ok := l.allowances[allowanceKey{token: token, owner: owner, spender: spender}]; ok {
		return v.Clone()
	}
	return new(uint256.Int)
}

// TransferFrom moves amount from -> to on behalf of spender, consuming allowance.
func (l *Ledger) TransferFrom(token, spender, from, to common.Address, amount *uint256.Int) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	akey := allowanceKey{token: token, owner: from, spender: spender}
	allowance, ok := l.allowances[akey]
	if !ok {
		allowance = new(uint256.Int)
	}
	if allowance.Lt(amount) {
		return fmt.Errorf("transfer %s from %s by %s: %w", amount.ToBig(), from.Hex(), spender.Hex(), ErrInsufficientAllowance)
	}
	if err := l.move(token, from, to, amount); err != nil {
		return err
	}
	l.allowances[akey] = new(uint256.Int).Sub(allowance, amount)
	return nil
}

// Spender returns a transferer that acts as spender.
func (l *Ledger) Spender(spender common.Address) *Spender {
	return &Spender{ledger: l, spender: spender}
}

func (l *Ledger) move(token, from, to common.Address, amount *uint256.Int) error {
	fromKey := balanceKey{token: token, owner: from}
	balance := l.balance(fromKey)
	if balance.Lt(amount) {
		return fmt.Errorf("transfer %s from %s: %w", amount.ToBig(), from.Hex(), ErrInsufficientBalance)
	}
	toKey := balanceKey{token: token, owner: to}
	credited, err := fixedpoint.Add(l.balance(toKey), amount)
	if err != nil {
		return fmt.Errorf("transfer to %s: %w", to.Hex(), err)
	}
	l.balances[fromKey] = new(uint256.Int).Sub(balance, amount)
	l.balances[toKey] = credited
	return nil
}

func (l *Ledger) balance(key balanceKey) *uint256.Int {
	if v, ok := l.balances[key]; ok {
		return v
	}
	return new(uint256.Int)
}

type ledgerSnapshot struct {
	balances   map[balanceKey]*uint256.Int
	allowances map[allowanceKey]*uint256.Int
}

func (l *Ledger) snapshot() ledgerSnapshot {
	l.mu.Lock()
	defer l.mu.Unlock()
	snap := ledgerSnapshot{
		balances:   make(map[balanceKey]*uint256.Int, len(l.balances)),
		allowances: make(map[allowanceKey]*uint256.Int, len(l.allowances)),
	}
	for k, v := range l.balances {
		snap.balances[k] = v.Clone()
	}
	for k, v := range l.allowances {
		snap.allowances[k] = v.Clone()
	}
	return snap
}

func (l *Ledger) restore(snap ledgerSnapshot) {
	l.mu.Lock()
	l.balances = snap.balances
	l.allowances = snap.allowances
	l.mu.Unlock()
}

// Spender binds a ledger to the address that spends allowances.
type Spender struct {
	ledger  *Ledger
	spender common.Address
}

func (s *Spender) Address() common.Address { return s.spender }

func (s *Spender) TransferFrom(_ context.Context, token, from, to common.Address, amount *uint256.Int) error {
	return s.ledger.TransferFrom(token, s.spender, from, to, amount)
}
