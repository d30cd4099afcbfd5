package domain

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// EventName identifies the kind of a state-change event.
type EventName string

const (
	EventItemAllocated             EventName = "ItemAllocated"
	EventBaseURIUpdated            EventName = "BaseURIUpdated"
	EventItemURIUpdated            EventName = "ItemURIUpdated"
	EventPaymentWithdrawn          EventName = "PaymentWithdrawn"
	EventProposalCreated           EventName = "ProposalCreated"
	EventVoteCast                  EventName = "VoteCast"
	EventProposalCancelled         EventName = "ProposalCancelled"
	EventMinProposalVotesUpdated   EventName = "MinProposalVotesUpdated"
	EventMinVotesToApproveUpdated  EventName = "MinVotesToApproveUpdated"
	EventMinTokensToApproveUpdated EventName = "MinTokensToApproveUpdated"
	EventLedgerReferenceUpdated    EventName = "LedgerReferenceUpdated"
)

// String returns the string representation of EventName.
func (n EventName) String() string {
	return string(n)
}

// Field is a single named value of an event, in emission order.
type Field struct {
	Key   string
	Value any
}

// Payload is the body of an event.
type Payload interface {
	EventName() EventName
	// Subject identifies the entity the event is about, e.g. "item:7".
	Subject() string
	// Fields lists the payload values in a stable order.
	Fields() []Field
}

// Event is a committed state change. Sequence is contiguous from 1.
type Event struct {
	ID         string // deterministic hash of (sequence, name, occurred_at)
	Sequence   uint64
	Name       EventName
	OccurredAt time.Time
	Payload    Payload
}

// ItemAllocated is emitted once per item assigned by a purchase.
type ItemAllocated struct {
	ItemID    ItemID `json:"item_id"`
	Buyer     Holder `json:"buyer"`
	UnitPrice uint64 `json:"unit_price"`
}

func (ItemAllocated) EventName() EventName { return EventItemAllocated }
func (e ItemAllocated) Subject() string    { return itemSubject(e.ItemID) }
func (e ItemAllocated) Fields() []Field {
	return []Field{{"item_id", uint64(e.ItemID)}, {"buyer", e.Buyer.String()}, {"unit_price", e.UnitPrice}}
}

// BaseURIUpdated is emitted when the collection base URI changes.
type BaseURIUpdated struct {
	URI string `json:"uri"`
}

func (BaseURIUpdated) EventName() EventName { return EventBaseURIUpdated }
func (BaseURIUpdated) Subject() string      { return "collection" }
func (e BaseURIUpdated) Fields() []Field    { return []Field{{"uri", e.URI}} }

// ItemURIUpdated is emitted when a per-item URI override is set.
type ItemURIUpdated struct {
	ItemID ItemID `json:"item_id"`
	URI    string `json:"uri"`
}

func (ItemURIUpdated) EventName() EventName { return EventItemURIUpdated }
func (e ItemURIUpdated) Subject() string    { return itemSubject(e.ItemID) }
func (e ItemURIUpdated) Fields() []Field {
	return []Field{{"item_id", uint64(e.ItemID)}, {"uri", e.URI}}
}

// PaymentWithdrawn is emitted when the ledger's payment balance is swept.
type PaymentWithdrawn struct {
	Token  string `json:"token"`
	To     Holder `json:"to"`
	Amount uint64 `json:"amount"`
}

func (PaymentWithdrawn) EventName() EventName { return EventPaymentWithdrawn }
func (PaymentWithdrawn) Subject() string      { return "collection" }
func (e PaymentWithdrawn) Fields() []Field {
	return []Field{{"token", e.Token}, {"to", e.To.String()}, {"amount", e.Amount}}
}

// ProposalCreated is emitted when a proposal is accepted.
type ProposalCreated struct {
	ProposalID  ProposalID `json:"proposal_id"`
	Proposer    Holder     `json:"proposer"`
	Username    string     `json:"username"`
	Description string     `json:"description"`
	Link        string     `json:"link,omitempty"`
	StartTime   time.Time  `json:"start_time"`
	EndTime     time.Time  `json:"end_time"`
}

func (ProposalCreated) EventName() EventName { return EventProposalCreated }
func (e ProposalCreated) Subject() string    { return proposalSubject(e.ProposalID) }
func (e ProposalCreated) Fields() []Field {
	return []Field{
		{"proposal_id", uint64(e.ProposalID)},
		{"proposer", e.Proposer.String()},
		{"description", e.Description},
		{"start_time", e.StartTime},
		{"end_time", e.EndTime},
		{"username", e.Username},
		{"link", e.Link},
	}
}

// VoteCast is emitted for every accepted vote.
type VoteCast struct {
	ProposalID ProposalID `json:"proposal_id"`
	Voter      Holder     `json:"voter"`
	Support    bool       `json:"support"`
	Weight     uint64     `json:"weight"`
}

func (VoteCast) EventName() EventName { return EventVoteCast }
func (e VoteCast) Subject() string    { return proposalSubject(e.ProposalID) }
func (e VoteCast) Fields() []Field {
	return []Field{
		{"proposal_id", uint64(e.ProposalID)},
		{"voter", e.Voter.String()},
		{"support", e.Support},
		{"weight", e.Weight},
	}
}

// ProposalCancelled is emitted when a proposer withdraws a proposal.
type ProposalCancelled struct {
	ProposalID ProposalID `json:"proposal_id"`
}

func (ProposalCancelled) EventName() EventName { return EventProposalCancelled }
func (e ProposalCancelled) Subject() string    { return proposalSubject(e.ProposalID) }
func (e ProposalCancelled) Fields() []Field {
	return []Field{{"proposal_id", uint64(e.ProposalID)}}
}

// ThresholdUpdated is emitted when a governance threshold changes.
type ThresholdUpdated struct {
	Threshold Threshold `json:"threshold"`
	Old       uint64    `json:"old"`
	New       uint64    `json:"new"`
}

func (e ThresholdUpdated) EventName() EventName {
	switch e.Threshold {
	case ThresholdMinVotesToApprove:
		return EventMinVotesToApproveUpdated
	case ThresholdMinTokensToApprove:
		return EventMinTokensToApproveUpdated
	default:
		return EventMinProposalVotesUpdated
	}
}
func (ThresholdUpdated) Subject() string { return "governance" }
func (e ThresholdUpdated) Fields() []Field {
	return []Field{{"old", e.Old}, {"new", e.New}}
}

// LedgerReferenceUpdated is emitted when governance reads voting power from another ledger.
type LedgerReferenceUpdated struct {
	Old Holder `json:"old"`
	New Holder `json:"new"`
}

func (LedgerReferenceUpdated) EventName() EventName { return EventLedgerReferenceUpdated }
func (LedgerReferenceUpdated) Subject() string      { return "governance" }
func (e LedgerReferenceUpdated) Fields() []Field {
	return []Field{{"old", e.Old.String()}, {"new", e.New.String()}}
}

// DecodePayload restores a payload from its JSON encoding.
func DecodePayload(name EventName, data []byte) (Payload, error) {
	var p Payload
	var err error
	switch name {
	case EventItemAllocated:
		p, err = decodeAs[ItemAllocated](data)
	case EventBaseURIUpdated:
		p, err = decodeAs[BaseURIUpdated](data)
	case EventItemURIUpdated:
		p, err = decodeAs[ItemURIUpdated](data)
	case EventPaymentWithdrawn:
		p, err = decodeAs[PaymentWithdrawn](data)
	case EventProposalCreated:
		p, err = decodeAs[ProposalCreated](data)
	case EventVoteCast:
		p, err = decodeAs[VoteCast](data)
	case EventProposalCancelled:
		p, err = decodeAs[ProposalCancelled](data)
	case EventMinProposalVotesUpdated, EventMinVotesToApproveUpdated, EventMinTokensToApproveUpdated:
		p, err = decodeAs[ThresholdUpdated](data)
	case EventLedgerReferenceUpdated:
		p, err = decodeAs[LedgerReferenceUpdated](data)
	default:
		return nil, fmt.Errorf("unknown event name %q", name)
	}
	if err != nil {
		return nil, fmt.Errorf("decode %s payload: %w", name, err)
	}
	if p.EventName() != name {
		return nil, fmt.Errorf("payload of %s decodes as %s", name, p.EventName())
	}
	return p, nil
}

func decodeAs[T Payload](data []byte) (Payload, error) {
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, err
	}
	return v, nil
}

func itemSubject(id ItemID) string {
	return "item:" + strconv.FormatUint(uint64(id), 10)
}

func proposalSubject(id ProposalID) string {
	return "proposal:" + strconv.FormatUint(uint64(id), 10)
}

// Emitter receives payloads as components commit state changes.
type Emitter interface {
	Emit(p Payload)
}

// EmitterFunc adapts a function to Emitter.
type EmitterFunc func(p Payload)

// Emit calls f(p).
func (f EmitterFunc) Emit(p Payload) {
	f(p)
}

// DiscardEmitter drops every payload.
var DiscardEmitter Emitter = EmitterFunc(func(Payload) {})
