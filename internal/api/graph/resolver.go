// Package graph serves the collection and governance operations over
// GraphQL. Caller identity is an explicit argument of every mutation.
package graph

import (
	"context"
	"math"
	"net/http"
	"time"

	graphql "github.com/graph-gophers/graphql-go"
	"github.com/graph-gophers/graphql-go/relay"

	"collection-governance/internal/address"
	"collection-governance/internal/core"
	"collection-governance/internal/domain"
)

// Resolver is the root resolver for queries and mutations.
type Resolver struct {
	core *core.Core
}

// NewResolver creates a root resolver over c.
func NewResolver(c *core.Core) *Resolver {
	return &Resolver{core: c}
}

// NewSchema parses the schema against a resolver over c.
func NewSchema(c *core.Core) *graphql.Schema {
	return graphql.MustParseSchema(schemaString, NewResolver(c))
}

// NewHandler returns the HTTP handler for GraphQL requests.
func NewHandler(c *core.Core) http.Handler {
	return &relay.Handler{Schema: NewSchema(c)}
}

func parseHolder(name, s string) (domain.Holder, error) {
	h, err := address.Parse(s)
	if err != nil {
		return "", invalidArg(name, err)
	}
	return h, nil
}

func parseTime(name, s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, invalidArg(name, err)
	}
	return t, nil
}

func toItemID(id int32) domain.ItemID {
	if id < 0 {
		return 0
	}
	return domain.ItemID(id)
}

func toProposalID(id int32) domain.ProposalID {
	if id < 0 {
		return domain.ProposalID(math.MaxUint64)
	}
	return domain.ProposalID(id)
}

// Queries

func (r *Resolver) Collection(ctx context.Context) (*collectionResolver, error) {
	info, err := r.core.Collection(ctx)
	if err != nil {
		return nil, wrapErr(err)
	}
	return &collectionResolver{info: info}, nil
}

func (r *Resolver) Item(args struct{ ID int32 }) (*itemResolver, error) {
	v, err := r.core.Item(toItemID(args.ID))
	if err != nil {
		return nil, wrapErr(err)
	}
	return &itemResolver{v: v}, nil
}

func (r *Resolver) Holder(args struct{ Address string }) (*holderResolver, error) {
	h, err := parseHolder("address", args.Address)
	if err != nil {
		return nil, err
	}
	return &holderResolver{v: r.core.Holder(h)}, nil
}

func (r *Resolver) Proposal(args struct{ ID int32 }) (*proposalResolver, error) {
	v, err := r.core.Proposal(toProposalID(args.ID))
	if err != nil {
		return nil, wrapErr(err)
	}
	return &proposalResolver{v: v, core: r.core}, nil
}

func (r *Resolver) Proposals() []*proposalResolver {
	views := r.core.Proposals()
	out := make([]*proposalResolver, len(views))
	for i, v := range views {
		out[i] = &proposalResolver{v: v, core: r.core}
	}
	return out
}

func (r *Resolver) Governance() *governanceResolver {
	return &governanceResolver{cfg: r.core.Governance(), ref: r.core.LedgerReference()}
}

// Mutations

func (r *Resolver) Purchase(ctx context.Context, args struct {
	Buyer    string
	Quantity int32
}) (*purchaseResolver, error) {
	buyer, err := parseHolder("buyer", args.Buyer)
	if err != nil {
		return nil, err
	}
	if args.Quantity < 0 {
		return nil, invalidArg("quantity", domain.ErrInvalidQuantity)
	}
	ids, err := r.core.Purchase(ctx, buyer, uint64(args.Quantity))
	if err != nil {
		return nil, wrapErr(err)
	}
	info, err := r.core.Collection(ctx)
	if err != nil {
		return nil, wrapErr(err)
	}
	return &purchaseResolver{ids: ids, total: uint64(len(ids)) * info.Config.PricePerItem}, nil
}

// ProposalInput is the payload of createProposal.
type ProposalInput struct {
	Username    string
	Description string
	Link        *string
	StartTime   string
	EndTime     string
}

func (r *Resolver) CreateProposal(ctx context.Context, args struct {
	Proposer string
	Input    ProposalInput
}) (*proposalResolver, error) {
	proposer, err := parseHolder("proposer", args.Proposer)
	if err != nil {
		return nil, err
	}
	start, err := parseTime("startTime", args.Input.StartTime)
	if err != nil {
		return nil, err
	}
	end, err := parseTime("endTime", args.Input.EndTime)
	if err != nil {
		return nil, err
	}
	meta := domain.ProposalMetadata{Username: args.Input.Username, Description: args.Input.Description}
	if args.Input.Link != nil {
		meta.Link = *args.Input.Link
	}

	id, err := r.core.CreateProposal(ctx, proposer, meta, start, end)
	if err != nil {
		return nil, wrapErr(err)
	}
	return r.Proposal(struct{ ID int32 }{ID: int32(id)})
}

func (r *Resolver) Vote(ctx context.Context, args struct {
	Voter      string
	ProposalID int32
	Support    bool
}) (*ballotResolver, error) {
	voter, err := parseHolder("voter", args.Voter)
	if err != nil {
		return nil, err
	}
	b, err := r.core.Vote(ctx, voter, toProposalID(args.ProposalID), args.Support)
	if err != nil {
		return nil, wrapErr(err)
	}
	return &ballotResolver{b: b}, nil
}

func (r *Resolver) CancelProposal(ctx context.Context, args struct {
	Caller     string
	ProposalID int32
}) (*proposalResolver, error) {
	caller, err := parseHolder("caller", args.Caller)
	if err != nil {
		return nil, err
	}
	if err := r.core.CancelProposal(ctx, caller, toProposalID(args.ProposalID)); err != nil {
		return nil, wrapErr(err)
	}
	return r.Proposal(struct{ ID int32 }{ID: args.ProposalID})
}

func (r *Resolver) SetBaseURI(ctx context.Context, args struct {
	Caller string
	URI    string
}) (*collectionResolver, error) {
	caller, err := parseHolder("caller", args.Caller)
	if err != nil {
		return nil, err
	}
	if err := r.core.SetBaseURI(ctx, caller, args.URI); err != nil {
		return nil, wrapErr(err)
	}
	return r.Collection(ctx)
}

func (r *Resolver) SetItemURI(ctx context.Context, args struct {
	Caller string
	ID     int32
	URI    string
}) (*itemResolver, error) {
	caller, err := parseHolder("caller", args.Caller)
	if err != nil {
		return nil, err
	}
	if err := r.core.SetItemURI(ctx, caller, toItemID(args.ID), args.URI); err != nil {
		return nil, wrapErr(err)
	}
	return r.Item(struct{ ID int32 }{ID: args.ID})
}

func (r *Resolver) UpdateThreshold(ctx context.Context, args struct {
	Caller    string
	Threshold string
	Value     int32
}) (*governanceResolver, error) {
	caller, err := parseHolder("caller", args.Caller)
	if err != nil {
		return nil, err
	}
	if args.Value < 0 {
		return nil, invalidArg("value", domain.ErrInvalidValue)
	}
	if err := r.core.UpdateThreshold(ctx, caller, domain.Threshold(args.Threshold), uint64(args.Value)); err != nil {
		return nil, wrapErr(err)
	}
	return r.Governance(), nil
}

func (r *Resolver) Withdraw(ctx context.Context, args struct{ Caller string }) (*withdrawalResolver, error) {
	caller, err := parseHolder("caller", args.Caller)
	if err != nil {
		return nil, err
	}
	amount, err := r.core.Withdraw(ctx, caller)
	if err != nil {
		return nil, wrapErr(err)
	}
	return &withdrawalResolver{to: caller, amount: amount}, nil
}
