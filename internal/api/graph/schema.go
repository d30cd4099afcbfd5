package graph

// schemaString is the GraphQL schema served at /graphql.
// Token amounts are decimal strings because they can exceed Int.
const schemaString = `
schema {
  query: Query
  mutation: Mutation
}

enum Threshold {
  MIN_PROPOSAL_VOTES
  MIN_VOTES_TO_APPROVE
  MIN_TOKENS_TO_APPROVE
}

enum ProposalStatus {
  CANCELLED
  PENDING
  VOTING
  APPROVED
  REJECTED
}

type Collection {
  name: String!
  symbol: String!
  address: String!
  admin: String!
  beneficiary: String!
  totalSupply: Int!
  sold: Int!
  available: Int!
  pricePerItem: String!
  maxPerHolder: Int!
  baseURI: String!
  holders: Int!
  paymentBalance: String!
}

type Item {
  id: Int!
  owner: String!
  available: Boolean!
  uri: String!
}

type Holder {
  address: String!
  purchased: Int!
  remainingQuota: Int!
  votingPower: Int!
  items: [Int!]!
  # null when the holder may propose now
  nextProposalAt: String
}

type Ballot {
  proposalId: Int!
  voter: String!
  support: Boolean!
  weight: Int!
  castAt: String!
}

type Proposal {
  id: Int!
  proposer: String!
  username: String!
  description: String!
  link: String
  createdAt: String!
  startTime: String!
  endTime: String!
  votesFor: Int!
  votesAgainst: Int!
  uniqueVoters: Int!
  totalVotingPower: Int!
  cancelled: Boolean!
  status: ProposalStatus!
  ballots: [Ballot!]!
}

type Governance {
  minProposalVotes: Int!
  minVotesToApprove: Int!
  minTokensToApprove: Int!
  proposalCooldown: String!
  admin: String!
  ledgerReference: String!
}

type Purchase {
  items: [Int!]!
  totalPrice: String!
}

type Withdrawal {
  to: String!
  amount: String!
}

input ProposalInput {
  username: String!
  description: String!
  link: String
  # RFC 3339
  startTime: String!
  endTime: String!
}

type Query {
  collection: Collection!
  item(id: Int!): Item!
  holder(address: String!): Holder!
  proposal(id: Int!): Proposal!
  proposals: [Proposal!]!
  governance: Governance!
}

type Mutation {
  purchase(buyer: String!, quantity: Int!): Purchase!
  createProposal(proposer: String!, input: ProposalInput!): Proposal!
  vote(voter: String!, proposalId: Int!, support: Boolean!): Ballot!
  cancelProposal(caller: String!, proposalId: Int!): Proposal!
  setBaseURI(caller: String!, uri: String!): Collection!
  setItemURI(caller: String!, id: Int!, uri: String!): Item!
  updateThreshold(caller: String!, threshold: Threshold!, value: Int!): Governance!
  withdraw(caller: String!): Withdrawal!
}
`
