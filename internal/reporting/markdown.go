package reporting

import (
	"fmt"
	"strings"
	"time"

	"collection-governance/internal/domain"
)

var statusOrder = []domain.ProposalStatus{
	domain.ProposalStatusPending,
	domain.ProposalStatusVoting,
	domain.ProposalStatusApproved,
	domain.ProposalStatusRejected,
	domain.ProposalStatusCancelled,
}

// RenderMarkdown renders report as Markdown string.
func RenderMarkdown(r *Report) string {
	var sb strings.Builder

	// Header
	sb.WriteString(fmt.Sprintf("# %s Report\n\n", r.Collection.Name))
	sb.WriteString(fmt.Sprintf("Generated: %s\n\n", r.GeneratedAt.Format(time.RFC3339)))
	sb.WriteString(fmt.Sprintf("Events: %d | Last sequence: %d\n\n", r.EventCount, r.LastSequence))

	// Collection
	c := r.Collection
	sb.WriteString("## Collection\n\n")
	sb.WriteString("| Metric | Value |\n")
	sb.WriteString("|--------|-------|\n")
	sb.WriteString(fmt.Sprintf("| Symbol | %s |\n", c.Symbol))
	sb.WriteString(fmt.Sprintf("| Total Supply | %d |\n", c.TotalSupply))
	sb.WriteString(fmt.Sprintf("| Sold | %d |\n", c.Sold))
	sb.WriteString(fmt.Sprintf("| Available | %d |\n", c.Available))
	sb.WriteString(fmt.Sprintf("| Price Per Item | %d |\n", c.PricePerItem))
	sb.WriteString(fmt.Sprintf("| Max Per Holder | %d |\n", c.MaxPerHolder))
	sb.WriteString(fmt.Sprintf("| Holders | %d |\n", c.HolderCount))
	sb.WriteString(fmt.Sprintf("| Revenue | %d |\n", c.Revenue))
	sb.WriteString(fmt.Sprintf("| Withdrawn | %d |\n", c.Withdrawn))
	sb.WriteString(fmt.Sprintf("| Base URI | %s |\n", c.BaseURI))
	sb.WriteString("\n")

	// Governance
	g := r.Governance
	sb.WriteString("## Governance\n\n")
	sb.WriteString("| Setting | Value |\n")
	sb.WriteString("|---------|-------|\n")
	sb.WriteString(fmt.Sprintf("| Min Proposal Votes | %d |\n", g.MinProposalVotes))
	sb.WriteString(fmt.Sprintf("| Min Votes To Approve | %d |\n", g.MinVotesToApprove))
	sb.WriteString(fmt.Sprintf("| Min Tokens To Approve | %d |\n", g.MinTokensToApprove))
	sb.WriteString(fmt.Sprintf("| Ledger Reference | %s |\n", g.LedgerReference))
	sb.WriteString(fmt.Sprintf("| Total Proposals | %d |\n", g.TotalProposals))
	for _, s := range statusOrder {
		if n := g.ByStatus[s]; n > 0 {
			sb.WriteString(fmt.Sprintf("| %s | %d |\n", s, n))
		}
	}
	sb.WriteString("\n")

	// Holders
	sb.WriteString("## Holders\n\n")
	if len(r.Holders) > 0 {
		sb.WriteString("| Holder | Purchased | Voting Power | Remaining | Proposals | Votes |\n")
		sb.WriteString("|--------|-----------|--------------|-----------|-----------|-------|\n")
		for _, h := range r.Holders {
			sb.WriteString(fmt.Sprintf("| %s | %d | %d | %d | %d | %d |\n",
				h.Holder, h.Purchased, h.VotingPower, h.RemainingQuota, h.Proposals, h.Votes))
		}
	} else {
		sb.WriteString("No holders yet.\n")
	}
	sb.WriteString("\n")

	// Proposals
	sb.WriteString("## Proposals\n\n")
	if len(r.Proposals) > 0 {
		sb.WriteString("| ID | Proposer | Username | Window | Status | For | Against | Voters |\n")
		sb.WriteString("|----|----------|----------|--------|--------|-----|---------|--------|\n")
		for _, p := range r.Proposals {
			sb.WriteString(fmt.Sprintf("| %d | %s | %s | %s - %s | %s | %d | %d | %d |\n",
				p.ID, p.Proposer, escapePipes(p.Username),
				p.StartTime.UTC().Format(time.RFC3339), p.EndTime.UTC().Format(time.RFC3339),
				p.Status, p.VotesFor, p.VotesAgainst, p.UniqueVoters))
		}
	} else {
		sb.WriteString("No proposals yet.\n")
	}
	sb.WriteString("\n")

	// Activity
	if len(r.Activity) > 0 {
		sb.WriteString("## Activity\n\n")
		sb.WriteString("| Kind | Count | Amount | Holders |\n")
		sb.WriteString("|------|-------|--------|---------|\n")
		for _, a := range r.Activity {
			sb.WriteString(fmt.Sprintf("| %s | %d | %d | %d |\n", a.Kind, a.Count, a.Amount, a.Holders))
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

func escapePipes(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
