// Package ledger implements the allocation ledger: a fixed collection of
// uniquely numbered items sold for a fungible payment token, with a
// per-holder purchase cap.
//
// Items start out owned by the ledger's own (reserved) address. Purchases
// assign the lowest available ids in ascending order. Ownership only ever
// moves from the ledger to a buyer.
//
// A Ledger is not safe for concurrent use; callers serialize access.
package ledger

import (
	"fmt"

	"collection-governance/internal/domain"
	"collection-governance/internal/token"
)

// Options configures a new Ledger.
type Options struct {
	Config  domain.LedgerConfig
	Address domain.Holder  // reserved sentinel address of the ledger
	Payment token.Port     // payment token bound to Address as spender
	Emitter domain.Emitter // nil discards events
}

// Ledger holds item ownership and purchase counts.
type Ledger struct {
	cfg       domain.LedgerConfig
	self      domain.Holder
	payment   token.Port
	emitter   domain.Emitter
	baseURI   string
	owners    []domain.Holder // index id-1
	overrides map[domain.ItemID]string
	purchased map[domain.Holder]uint64
	free      *freeIndex
}

// New creates a ledger with every item available.
func New(opts Options) (*Ledger, error) {
	if err := opts.Config.Validate(); err != nil {
		return nil, fmt.Errorf("ledger config: %w", err)
	}
	if opts.Address.IsZero() {
		return nil, fmt.Errorf("ledger address: %w", domain.ErrInvalidReference)
	}
	if opts.Address == opts.Config.Admin || opts.Address == opts.Config.PaymentReceiver() {
		return nil, fmt.Errorf("ledger address collides with admin: %w", domain.ErrInvalidReference)
	}
	if opts.Payment == nil {
		return nil, fmt.Errorf("payment token: %w", domain.ErrInvalidReference)
	}

	emitter := opts.Emitter
	if emitter == nil {
		emitter = domain.DiscardEmitter
	}

	owners := make([]domain.Holder, opts.Config.TotalSupply)
	for i := range owners {
		owners[i] = opts.Address
	}

	return &Ledger{
		cfg:       opts.Config,
		self:      opts.Address,
		payment:   opts.Payment,
		emitter:   emitter,
		baseURI:   opts.Config.BaseURI,
		owners:    owners,
		overrides: make(map[domain.ItemID]string),
		purchased: make(map[domain.Holder]uint64),
		free:      newFreeIndex(opts.Config.TotalSupply),
	}, nil
}

// SetEmitter replaces the event emitter.
func (l *Ledger) SetEmitter(e domain.Emitter) {
	if e == nil {
		e = domain.DiscardEmitter
	}
	l.emitter = e
}

// Address returns the ledger's sentinel address.
func (l *Ledger) Address() domain.Holder {
	return l.self
}

// Config returns the ledger configuration with the current base URI.
func (l *Ledger) Config() domain.LedgerConfig {
	cfg := l.cfg
	cfg.BaseURI = l.baseURI
	return cfg
}

// Name returns the collection name.
func (l *Ledger) Name() string {
	return l.cfg.Name
}

// Symbol returns the collection symbol.
func (l *Ledger) Symbol() string {
	return l.cfg.Symbol
}

// Admin returns the administrator identity.
func (l *Ledger) Admin() domain.Holder {
	return l.cfg.Admin
}

func (l *Ledger) validID(id domain.ItemID) bool {
	return id >= 1 && uint64(id) <= l.cfg.TotalSupply
}

func (l *Ledger) assign(id domain.ItemID, buyer domain.Holder) {
	l.owners[id-1] = buyer
	l.free.take(id)
}

func (l *Ledger) checkBuyer(buyer domain.Holder) error {
	if buyer.IsZero() || buyer == l.self {
		return fmt.Errorf("buyer %q: %w", buyer, domain.ErrInvalidHolder)
	}
	return nil
}
