package token

import (
	"context"
	"fmt"
	"sync"

	"collection-governance/internal/domain"
)

type allowanceKey struct {
	owner   domain.Holder
	spender domain.Holder
}

// MemoryToken is an in-memory fungible token with ERC-20 style allowances.
// Thread-safe via RWMutex.
type MemoryToken struct {
	mu         sync.RWMutex
	symbol     string
	balances   map[domain.Holder]uint64
	allowances map[allowanceKey]uint64
	supply     uint64
}

// NewMemoryToken creates an empty token.
func NewMemoryToken(symbol string) *MemoryToken {
	return &MemoryToken{
		symbol:     symbol,
		balances:   make(map[domain.Holder]uint64),
		allowances: make(map[allowanceKey]uint64),
	}
}

// Mint credits amount to holder.
func (t *MemoryToken) Mint(to domain.Holder, amount uint64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.balances[to] += amount
	t.supply += amount
}

// Approve sets the allowance of spender over owner's balance.
func (t *MemoryToken) Approve(owner, spender domain.Holder, amount uint64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.allowances[allowanceKey{owner, spender}] = amount
}

// Allowance returns the remaining allowance of spender over owner's balance.
func (t *MemoryToken) Allowance(owner, spender domain.Holder) uint64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.allowances[allowanceKey{owner, spender}]
}

// Balance returns the balance of holder.
func (t *MemoryToken) Balance(holder domain.Holder) uint64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.balances[holder]
}

// TotalSupply returns the amount minted so far.
func (t *MemoryToken) TotalSupply() uint64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.supply
}

// Move transfers amount from one holder to another without an allowance.
func (t *MemoryToken) Move(from, to domain.Holder, amount uint64) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.move(from, to, amount)
}

// Client returns a Port acting on behalf of spender.
func (t *MemoryToken) Client(spender domain.Holder) *Client {
	return &Client{token: t, spender: spender}
}

func (t *MemoryToken) move(from, to domain.Holder, amount uint64) error {
	if t.balances[from] < amount {
		return fmt.Errorf("%s has %d, needs %d: %w", from, t.balances[from], amount, ErrInsufficientBalance)
	}
	t.balances[from] -= amount
	t.balances[to] += amount
	return nil
}

// Client is a MemoryToken bound to one spender.
type Client struct {
	token   *MemoryToken
	spender domain.Holder
}

// Compile-time interface check.
var _ Port = (*Client)(nil)

// Symbol returns the token symbol.
func (c *Client) Symbol() string {
	return c.token.symbol
}

// BalanceOf returns the balance of holder.
func (c *Client) BalanceOf(ctx context.Context, holder domain.Holder) (uint64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	return c.token.Balance(holder), nil
}

// TransferFrom moves amount from payer to payee, consuming the spender's allowance.
// Balance and allowance are checked before either is changed.
func (c *Client) TransferFrom(ctx context.Context, payer, payee domain.Holder, amount uint64) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	t := c.token
	t.mu.Lock()
	defer t.mu.Unlock()

	key := allowanceKey{payer, c.spender}
	if t.allowances[key] < amount {
		return fmt.Errorf("%s allows %d, needs %d: %w", payer, t.allowances[key], amount, ErrInsufficientAllowance)
	}
	if err := t.move(payer, payee, amount); err != nil {
		return err
	}
	t.allowances[key] -= amount
	return nil
}

// Transfer moves amount out of the spender's own balance.
func (c *Client) Transfer(ctx context.Context, to domain.Holder, amount uint64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return c.token.Move(c.spender, to, amount)
}
