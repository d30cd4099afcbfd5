package reporting

import (
	"fmt"
	"strings"
	"time"
)

// RenderHoldersCSV renders holder rows as CSV string.
func RenderHoldersCSV(rows []HolderRow) string {
	var sb strings.Builder

	// Header
	sb.WriteString("holder,purchased,voting_power,remaining_quota,proposals,votes\n")

	// Rows
	for _, h := range rows {
		sb.WriteString(fmt.Sprintf("%s,%d,%d,%d,%d,%d\n",
			h.Holder,
			h.Purchased,
			h.VotingPower,
			h.RemainingQuota,
			h.Proposals,
			h.Votes,
		))
	}

	return sb.String()
}

// RenderProposalsCSV renders proposal rows as CSV string.
// Free-text fields are quoted.
func RenderProposalsCSV(rows []ProposalRow) string {
	var sb strings.Builder

	// Header
	sb.WriteString("proposal_id,proposer,username,description,start_time,end_time,status,")
	sb.WriteString("votes_for,votes_against,unique_voters\n")

	// Rows
	for _, p := range rows {
		sb.WriteString(fmt.Sprintf("%d,%s,%s,%s,%s,%s,%s,%d,%d,%d\n",
			p.ID,
			p.Proposer,
			quote(p.Username),
			quote(p.Description),
			p.StartTime.UTC().Format(time.RFC3339),
			p.EndTime.UTC().Format(time.RFC3339),
			p.Status,
			p.VotesFor,
			p.VotesAgainst,
			p.UniqueVoters,
		))
	}

	return sb.String()
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
