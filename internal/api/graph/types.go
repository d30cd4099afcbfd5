package graph

import (
	"strconv"
	"time"

	"collection-governance/internal/core"
	"collection-governance/internal/domain"
)

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func formatAmount(v uint64) string {
	return strconv.FormatUint(v, 10)
}

// clamp converts a count to Int, saturating at the Int range.
func clamp(v uint64) int32 {
	if v > 1<<31-1 {
		return 1<<31 - 1
	}
	return int32(v)
}

type collectionResolver struct {
	info core.CollectionInfo
}

func (r *collectionResolver) Name() string           { return r.info.Config.Name }
func (r *collectionResolver) Symbol() string         { return r.info.Config.Symbol }
func (r *collectionResolver) Address() string        { return r.info.Address.String() }
func (r *collectionResolver) Admin() string          { return r.info.Config.Admin.String() }
func (r *collectionResolver) Beneficiary() string    { return r.info.Config.PaymentReceiver().String() }
func (r *collectionResolver) TotalSupply() int32     { return clamp(r.info.Config.TotalSupply) }
func (r *collectionResolver) Sold() int32            { return clamp(r.info.Sold) }
func (r *collectionResolver) Available() int32       { return clamp(r.info.Available) }
func (r *collectionResolver) PricePerItem() string   { return formatAmount(r.info.Config.PricePerItem) }
func (r *collectionResolver) MaxPerHolder() int32    { return clamp(r.info.Config.MaxPerHolder) }
func (r *collectionResolver) BaseURI() string        { return r.info.Config.BaseURI }
func (r *collectionResolver) Holders() int32         { return int32(r.info.Holders) }
func (r *collectionResolver) PaymentBalance() string { return formatAmount(r.info.PaymentBalance) }

type itemResolver struct {
	v core.ItemView
}

func (r *itemResolver) ID() int32       { return clamp(uint64(r.v.ID)) }
func (r *itemResolver) Owner() string   { return r.v.Owner.String() }
func (r *itemResolver) Available() bool { return r.v.Available }
func (r *itemResolver) URI() string     { return r.v.URI }

type holderResolver struct {
	v core.HolderView
}

func (r *holderResolver) Address() string       { return r.v.Holder.String() }
func (r *holderResolver) Purchased() int32      { return clamp(r.v.Purchased) }
func (r *holderResolver) RemainingQuota() int32 { return clamp(r.v.RemainingQuota) }
func (r *holderResolver) VotingPower() int32    { return clamp(r.v.VotingPower) }

func (r *holderResolver) Items() []int32 {
	out := make([]int32, len(r.v.Items))
	for i, id := range r.v.Items {
		out[i] = clamp(uint64(id))
	}
	return out
}

func (r *holderResolver) NextProposalAt() *string {
	if r.v.NextProposalAt.IsZero() {
		return nil
	}
	s := formatTime(r.v.NextProposalAt)
	return &s
}

type proposalResolver struct {
	v    core.ProposalView
	core *core.Core
}

func (r *proposalResolver) ID() int32               { return clamp(uint64(r.v.ID)) }
func (r *proposalResolver) Proposer() string        { return r.v.Proposer.String() }
func (r *proposalResolver) Username() string        { return r.v.Metadata.Username }
func (r *proposalResolver) Description() string     { return r.v.Metadata.Description }
func (r *proposalResolver) CreatedAt() string       { return formatTime(r.v.CreatedAt) }
func (r *proposalResolver) StartTime() string       { return formatTime(r.v.StartTime) }
func (r *proposalResolver) EndTime() string         { return formatTime(r.v.EndTime) }
func (r *proposalResolver) VotesFor() int32         { return clamp(r.v.VotesFor) }
func (r *proposalResolver) VotesAgainst() int32     { return clamp(r.v.VotesAgainst) }
func (r *proposalResolver) UniqueVoters() int32     { return clamp(r.v.UniqueVoters) }
func (r *proposalResolver) TotalVotingPower() int32 { return clamp(r.v.TotalVotingPower()) }
func (r *proposalResolver) Cancelled() bool         { return r.v.Cancelled }
func (r *proposalResolver) Status() string          { return r.v.Status.String() }

func (r *proposalResolver) Link() *string {
	if r.v.Metadata.Link == "" {
		return nil
	}
	link := r.v.Metadata.Link
	return &link
}

func (r *proposalResolver) Ballots() ([]*ballotResolver, error) {
	ballots, err := r.core.Ballots(r.v.ID)
	if err != nil {
		return nil, wrapErr(err)
	}
	out := make([]*ballotResolver, len(ballots))
	for i, b := range ballots {
		out[i] = &ballotResolver{b: b}
	}
	return out, nil
}

type ballotResolver struct {
	b domain.Ballot
}

func (r *ballotResolver) ProposalID() int32 { return clamp(uint64(r.b.ProposalID)) }
func (r *ballotResolver) Voter() string     { return r.b.Voter.String() }
func (r *ballotResolver) Support() bool     { return r.b.Support }
func (r *ballotResolver) Weight() int32     { return clamp(r.b.Weight) }
func (r *ballotResolver) CastAt() string    { return formatTime(r.b.CastAt) }

type governanceResolver struct {
	cfg domain.GovernanceConfig
	ref domain.Holder
}

func (r *governanceResolver) MinProposalVotes() int32   { return clamp(r.cfg.MinProposalVotes) }
func (r *governanceResolver) MinVotesToApprove() int32  { return clamp(r.cfg.MinVotesToApprove) }
func (r *governanceResolver) MinTokensToApprove() int32 { return clamp(r.cfg.MinTokensToApprove) }
func (r *governanceResolver) ProposalCooldown() string  { return r.cfg.ProposalCooldown.String() }
func (r *governanceResolver) Admin() string             { return r.cfg.Admin.String() }
func (r *governanceResolver) LedgerReference() string   { return r.ref.String() }

type purchaseResolver struct {
	ids   []domain.ItemID
	total uint64
}

func (r *purchaseResolver) Items() []int32 {
	out := make([]int32, len(r.ids))
	for i, id := range r.ids {
		out[i] = clamp(uint64(id))
	}
	return out
}

func (r *purchaseResolver) TotalPrice() string { return formatAmount(r.total) }

type withdrawalResolver struct {
	to     domain.Holder
	amount uint64
}

func (r *withdrawalResolver) To() string     { return r.to.String() }
func (r *withdrawalResolver) Amount() string { return formatAmount(r.amount) }
