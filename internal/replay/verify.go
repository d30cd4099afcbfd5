package replay

import (
	"fmt"
	"time"

	"collection-governance/internal/domain"
	"collection-governance/internal/governance"
	"collection-governance/internal/ledger"
)

// Mismatch is one difference between live and rebuilt state.
type Mismatch struct {
	Field   string
	Live    string
	Rebuilt string
}

// String formats the mismatch for reports.
func (m Mismatch) String() string {
	return fmt.Sprintf("%s: live=%s rebuilt=%s", m.Field, m.Live, m.Rebuilt)
}

type differ struct {
	out []Mismatch
}

func (d *differ) check(field string, live, rebuilt any) {
	l, r := format(live), format(rebuilt)
	if l != r {
		d.out = append(d.out, Mismatch{Field: field, Live: l, Rebuilt: r})
	}
}

func format(v any) string {
	if t, ok := v.(time.Time); ok {
		return t.UTC().Format(time.RFC3339Nano)
	}
	return fmt.Sprint(v)
}

// Verify compares rebuilt state against live state and lists every
// difference. An empty result means the event log fully explains live state.
func Verify(live, rebuilt *State) []Mismatch {
	d := &differ{}
	verifyLedger(d, live.Ledger, rebuilt.Ledger)
	verifyGovernance(d, live.Governance, rebuilt.Governance)
	return d.out
}

func verifyLedger(d *differ, live, rebuilt *ledger.Ledger) {
	d.check("ledger.base_uri", live.BaseURI(), rebuilt.BaseURI())
	d.check("ledger.total_supply", live.TotalSupply(), rebuilt.TotalSupply())
	d.check("ledger.sold", live.SoldCount(), rebuilt.SoldCount())

	n := live.TotalSupply()
	if rebuilt.TotalSupply() < n {
		n = rebuilt.TotalSupply()
	}
	for i := uint64(1); i <= n; i++ {
		id := domain.ItemID(i)
		li, _ := live.Item(id)
		ri, _ := rebuilt.Item(id)
		d.check(fmt.Sprintf("item[%d].owner", i), li.Owner, ri.Owner)
		d.check(fmt.Sprintf("item[%d].uri_override", i), li.URIOverride, ri.URIOverride)
	}

	lh, rh := live.Holders(), rebuilt.Holders()
	d.check("ledger.holders", len(lh), len(rh))
	for _, h := range lh {
		d.check(fmt.Sprintf("holder[%s].purchased", h.Holder), h.Purchased, rebuilt.Purchased(h.Holder))
	}
}

func verifyGovernance(d *differ, live, rebuilt *governance.Engine) {
	lc, rc := live.Config(), rebuilt.Config()
	d.check("governance.min_proposal_votes", lc.MinProposalVotes, rc.MinProposalVotes)
	d.check("governance.min_votes_to_approve", lc.MinVotesToApprove, rc.MinVotesToApprove)
	d.check("governance.min_tokens_to_approve", lc.MinTokensToApprove, rc.MinTokensToApprove)
	d.check("governance.ledger_reference", live.LedgerReference(), rebuilt.LedgerReference())
	d.check("governance.total_proposals", live.TotalProposals(), rebuilt.TotalProposals())

	rps := rebuilt.Proposals()
	for i, lp := range live.Proposals() {
		if i >= len(rps) {
			break
		}
		rp := rps[i]
		prefix := fmt.Sprintf("proposal[%d]", lp.ID)
		d.check(prefix+".proposer", lp.Proposer, rp.Proposer)
		d.check(prefix+".metadata", lp.Metadata, rp.Metadata)
		d.check(prefix+".created_at", lp.CreatedAt, rp.CreatedAt)
		d.check(prefix+".start_time", lp.StartTime, rp.StartTime)
		d.check(prefix+".end_time", lp.EndTime, rp.EndTime)
		d.check(prefix+".votes_for", lp.VotesFor, rp.VotesFor)
		d.check(prefix+".votes_against", lp.VotesAgainst, rp.VotesAgainst)
		d.check(prefix+".unique_voters", lp.UniqueVoters, rp.UniqueVoters)
		d.check(prefix+".cancelled", lp.Cancelled, rp.Cancelled)

		lb, _ := live.Ballots(lp.ID)
		rb, _ := rebuilt.Ballots(lp.ID)
		for j := 0; j < len(lb) && j < len(rb); j++ {
			bp := fmt.Sprintf("%s.ballot[%d]", prefix, j)
			d.check(bp+".voter", lb[j].Voter, rb[j].Voter)
			d.check(bp+".support", lb[j].Support, rb[j].Support)
			d.check(bp+".weight", lb[j].Weight, rb[j].Weight)
			d.check(bp+".cast_at", lb[j].CastAt, rb[j].CastAt)
		}
	}
}
