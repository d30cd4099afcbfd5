package core

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"testing"
	"time"

	"collection-governance/internal/domain"
	"collection-governance/internal/governance"
	"collection-governance/internal/idhash"
	"collection-governance/internal/ledger"
	"collection-governance/internal/sink"
	"collection-governance/internal/token"
)

const (
	admin    domain.Holder = "admin"
	sentinel domain.Holder = "ledger-sentinel"
	alice    domain.Holder = "alice"
	bob      domain.Holder = "bob"
	carol    domain.Holder = "carol"
)

var t0 = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type recordingSink struct {
	mu      sync.Mutex
	events  []*domain.Event
	err     error
	reject  bool // drop batches instead of recording them
	batches int
}

func (s *recordingSink) Publish(_ context.Context, events []*domain.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.batches++
	if s.reject {
		return s.err
	}
	s.events = append(s.events, events...)
	return s.err
}

func (s *recordingSink) sequences() []uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]uint64, len(s.events))
	for i, ev := range s.events {
		out[i] = ev.Sequence
	}
	return out
}

func (s *recordingSink) names() []domain.EventName {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.EventName, len(s.events))
	for i, ev := range s.events {
		out[i] = ev.Name
	}
	return out
}

type fixture struct {
	core  *Core
	tok   *token.MemoryToken
	clock *fakeClock
	sink  *recordingSink
	log   *recordingSink
}

func newFixture(t *testing.T, lastSeq uint64) *fixture {
	t.Helper()

	tok := token.NewMemoryToken("USDC")
	l, err := ledger.New(ledger.Options{
		Config: domain.LedgerConfig{
			Name:         "Enanos de Leyenda",
			Symbol:       "ENANOS",
			TotalSupply:  domain.DefaultTotalSupply,
			PricePerItem: domain.DefaultPricePerItem,
			MaxPerHolder: domain.DefaultMaxPerHolder,
			BaseURI:      "https://api.enanosdeleyenda.com/metadata/",
			Admin:        admin,
		},
		Address: sentinel,
		Payment: tok.Client(sentinel),
	})
	if err != nil {
		t.Fatalf("ledger.New failed: %v", err)
	}
	g, err := governance.New(governance.Options{
		Config: domain.GovernanceConfig{
			MinProposalVotes:   domain.DefaultMinProposalVotes,
			MinVotesToApprove:  domain.DefaultMinVotesToApprove,
			MinTokensToApprove: domain.DefaultMinTokensToApprove,
			ProposalCooldown:   domain.DefaultProposalCooldown,
			Admin:              admin,
		},
		Power: l,
	})
	if err != nil {
		t.Fatalf("governance.New failed: %v", err)
	}

	clock := &fakeClock{now: t0}
	rec := &recordingSink{}
	logRec := &recordingSink{}
	c, err := New(Options{
		Ledger:       l,
		Governance:   g,
		Clock:        clock,
		Log:          logRec,
		Sink:         rec,
		Logger:       log.New(&bytes.Buffer{}, "", 0),
		LastSequence: lastSeq,
	})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return &fixture{core: c, tok: tok, clock: clock, sink: rec, log: logRec}
}

func (f *fixture) fund(h domain.Holder, items uint64) {
	amount := items * domain.DefaultPricePerItem
	f.tok.Mint(h, amount)
	f.tok.Approve(h, sentinel, f.tok.Allowance(h, sentinel)+amount)
}

func TestNew_RequiresComponents(t *testing.T) {
	if _, err := New(Options{}); err == nil {
		t.Fatal("expected error without ledger")
	}
}

func TestPurchase_WalletCapScenario(t *testing.T) {
	f := newFixture(t, 0)
	ctx := context.Background()
	f.fund(alice, 11)

	if _, err := f.core.Purchase(ctx, alice, 3); err != nil {
		t.Fatalf("purchase 3 failed: %v", err)
	}
	ids, err := f.core.Purchase(ctx, alice, 7)
	if err != nil {
		t.Fatalf("purchase 7 failed: %v", err)
	}
	if ids[0] != 4 || ids[6] != 10 {
		t.Errorf("ids = %v, want 4..10", ids)
	}

	_, err = f.core.Purchase(ctx, alice, 1)
	if !errors.Is(err, domain.ErrWalletCapExceeded) {
		t.Fatalf("11th item: got %v, want ErrWalletCapExceeded", err)
	}

	if got := f.core.Holder(alice).Purchased; got != 10 {
		t.Errorf("purchased = %d, want 10", got)
	}
	if got := len(f.sink.events); got != 10 {
		t.Fatalf("published %d events, want 10", got)
	}
	if got := f.tok.Balance(alice); got != domain.DefaultPricePerItem {
		t.Errorf("alice balance = %d, want one item's price left", got)
	}
}

func TestCommit_StampsEvents(t *testing.T) {
	f := newFixture(t, 0)
	ctx := context.Background()
	f.fund(alice, 2)

	f.clock.now = t0.Add(123456789 * time.Nanosecond)
	if _, err := f.core.Purchase(ctx, alice, 2); err != nil {
		t.Fatalf("purchase failed: %v", err)
	}

	want := t0.Add(123456 * time.Microsecond)
	for i, ev := range f.sink.events {
		if ev.Sequence != uint64(i+1) {
			t.Errorf("event %d sequence = %d", i, ev.Sequence)
		}
		if !ev.OccurredAt.Equal(want) {
			t.Errorf("event %d occurred at %s, want %s", i, ev.OccurredAt, want)
		}
		wantID := idhash.ComputeEventID(ev.Sequence, ev.Name, ev.Payload.Subject(), want.UnixNano())
		if ev.ID != wantID {
			t.Errorf("event %d id = %s, want %s", i, ev.ID, wantID)
		}
	}
	if f.core.LastSequence() != 2 {
		t.Errorf("LastSequence = %d, want 2", f.core.LastSequence())
	}
}

func TestCommit_ContinuesFromLastSequence(t *testing.T) {
	f := newFixture(t, 41)

	if err := f.core.SetBaseURI(context.Background(), admin, "ipfs://new/"); err != nil {
		t.Fatalf("SetBaseURI failed: %v", err)
	}
	if got := f.sink.events[0].Sequence; got != 42 {
		t.Errorf("sequence = %d, want 42", got)
	}
}

func TestFailedOperation_PublishesNothing(t *testing.T) {
	f := newFixture(t, 0)
	ctx := context.Background()

	if _, err := f.core.Purchase(ctx, alice, 1); !errors.Is(err, domain.ErrPaymentFailed) {
		t.Fatalf("unfunded purchase: got %v, want ErrPaymentFailed", err)
	}
	if err := f.core.SetBaseURI(ctx, alice, "x"); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("SetBaseURI by non-admin: got %v, want ErrUnauthorized", err)
	}
	if len(f.sink.events) != 0 {
		t.Fatalf("published %d events after failures", len(f.sink.events))
	}
	if f.core.LastSequence() != 0 {
		t.Errorf("LastSequence = %d, want 0", f.core.LastSequence())
	}
}

func TestSinkFailure_KeepsState(t *testing.T) {
	f := newFixture(t, 0)
	var buf bytes.Buffer
	f.core.logger = log.New(&buf, "", 0)
	f.sink.err = errors.New("disk full")
	f.fund(alice, 1)

	if _, err := f.core.Purchase(context.Background(), alice, 1); err != nil {
		t.Fatalf("purchase should succeed despite sink failure: %v", err)
	}
	if got := f.core.Holder(alice).Purchased; got != 1 {
		t.Errorf("purchased = %d, want 1", got)
	}
	if !strings.Contains(buf.String(), "disk full") {
		t.Errorf("sink failure not logged: %q", buf.String())
	}
}

func TestEventLogFailure_BacklogKeepsLogContiguous(t *testing.T) {
	f := newFixture(t, 0)
	ctx := context.Background()
	var buf bytes.Buffer
	f.core.logger = log.New(&buf, "", 0)
	f.fund(alice, 2)
	f.fund(bob, 1)

	if _, err := f.core.Purchase(ctx, alice, 1); err != nil {
		t.Fatalf("purchase failed: %v", err)
	}

	f.log.reject = true
	f.log.err = errors.New("db down")
	if _, err := f.core.Purchase(ctx, alice, 1); err != nil {
		t.Fatalf("purchase should succeed while the log is down: %v", err)
	}
	if f.core.Backlog() != 1 {
		t.Fatalf("Backlog() = %d, want 1", f.core.Backlog())
	}
	if !strings.Contains(buf.String(), "db down") {
		t.Errorf("log failure not reported: %q", buf.String())
	}
	// Fan-out consumers still see the event.
	if got := len(f.sink.events); got != 2 {
		t.Errorf("sink got %d events, want 2", got)
	}

	f.log.reject = false
	f.log.err = nil
	if _, err := f.core.Purchase(ctx, bob, 1); err != nil {
		t.Fatalf("purchase failed: %v", err)
	}
	if f.core.Backlog() != 0 {
		t.Errorf("Backlog() = %d after recovery, want 0", f.core.Backlog())
	}
	got := f.log.sequences()
	if len(got) != 3 || got[0] != 1 || got[1] != 2 || got[2] != 3 {
		t.Errorf("log sequences = %v, want [1 2 3]", got)
	}
	if got := len(f.sink.events); got != 3 {
		t.Errorf("sink got %d events, want 3 without repeats", got)
	}
}

func TestFlush(t *testing.T) {
	f := newFixture(t, 0)
	ctx := context.Background()
	f.fund(alice, 1)

	if err := f.core.Flush(ctx); err != nil {
		t.Fatalf("Flush with empty backlog: %v", err)
	}
	if f.log.batches != 0 {
		t.Errorf("empty flush published %d batches", f.log.batches)
	}

	f.log.reject = true
	f.log.err = errors.New("db down")
	if _, err := f.core.Purchase(ctx, alice, 1); err != nil {
		t.Fatalf("purchase failed: %v", err)
	}
	if err := f.core.Flush(ctx); err == nil {
		t.Fatal("Flush should report the log error")
	}
	if f.core.Backlog() != 1 {
		t.Fatalf("Backlog() = %d, want 1", f.core.Backlog())
	}

	f.log.reject = false
	f.log.err = nil
	if err := f.core.Flush(ctx); err != nil {
		t.Fatalf("Flush failed: %v", err)
	}
	if f.core.Backlog() != 0 || len(f.log.sequences()) != 1 {
		t.Errorf("backlog = %d, logged = %v", f.core.Backlog(), f.log.sequences())
	}
}

func TestGovernanceFlow(t *testing.T) {
	f := newFixture(t, 0)
	ctx := context.Background()
	for _, h := range []domain.Holder{alice, bob, carol} {
		f.fund(h, 10)
		if _, err := f.core.Purchase(ctx, h, 10); err != nil {
			t.Fatalf("purchase for %s failed: %v", h, err)
		}
	}

	start := t0.Add(time.Hour)
	end := start.Add(24 * time.Hour)
	meta := domain.ProposalMetadata{Username: "alice", Description: "Fund a tavern"}
	id, err := f.core.CreateProposal(ctx, alice, meta, start, end)
	if err != nil {
		t.Fatalf("CreateProposal failed: %v", err)
	}
	if got := f.core.Status(id); got != domain.ProposalStatusPending {
		t.Errorf("status = %s, want PENDING", got)
	}

	if _, err := f.core.Vote(ctx, bob, id, true); !errors.Is(err, domain.ErrVotingNotStarted) {
		t.Fatalf("early vote: got %v, want ErrVotingNotStarted", err)
	}

	f.clock.Advance(2 * time.Hour)
	for _, h := range []domain.Holder{alice, bob, carol} {
		b, err := f.core.Vote(ctx, h, id, h != carol)
		if err != nil {
			t.Fatalf("vote by %s failed: %v", h, err)
		}
		if b.Weight != 10 {
			t.Errorf("weight = %d, want 10", b.Weight)
		}
	}
	if got := f.core.Status(id); got != domain.ProposalStatusVoting {
		t.Errorf("status = %s, want VOTING", got)
	}

	f.clock.Advance(24 * time.Hour)
	// 3 voters is below the default minimum of 10 unique voters.
	if got := f.core.Status(id); got != domain.ProposalStatusRejected {
		t.Errorf("status = %s, want REJECTED", got)
	}
	if err := f.core.UpdateThreshold(ctx, admin, domain.ThresholdMinVotesToApprove, 3); err != nil {
		t.Fatalf("UpdateThreshold failed: %v", err)
	}
	if err := f.core.UpdateThreshold(ctx, admin, domain.ThresholdMinTokensToApprove, 30); err != nil {
		t.Fatalf("UpdateThreshold failed: %v", err)
	}
	view, err := f.core.Proposal(id)
	if err != nil {
		t.Fatalf("Proposal failed: %v", err)
	}
	if view.Status != domain.ProposalStatusApproved {
		t.Errorf("status = %s, want APPROVED after lowering thresholds", view.Status)
	}
	if view.VotesFor != 20 || view.VotesAgainst != 10 {
		t.Errorf("tally = %d/%d, want 20/10", view.VotesFor, view.VotesAgainst)
	}

	names := f.sink.names()
	last := names[len(names)-1]
	if last != domain.EventMinTokensToApproveUpdated {
		t.Errorf("last event = %s", last)
	}
}

func TestCancelProposal(t *testing.T) {
	f := newFixture(t, 0)
	ctx := context.Background()
	f.fund(alice, 10)
	if _, err := f.core.Purchase(ctx, alice, 10); err != nil {
		t.Fatalf("purchase failed: %v", err)
	}

	id, err := f.core.CreateProposal(ctx, alice, domain.ProposalMetadata{Username: "a", Description: "d"},
		t0.Add(time.Hour), t0.Add(2*time.Hour))
	if err != nil {
		t.Fatalf("CreateProposal failed: %v", err)
	}
	if err := f.core.CancelProposal(ctx, bob, id); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("cancel by other: got %v, want ErrUnauthorized", err)
	}
	if err := f.core.CancelProposal(ctx, alice, id); err != nil {
		t.Fatalf("CancelProposal failed: %v", err)
	}
	if got := f.core.Status(id); got != domain.ProposalStatusCancelled {
		t.Errorf("status = %s, want CANCELLED", got)
	}
	if got := f.core.Status(id + 1); got != domain.ProposalStatusNotFound {
		t.Errorf("status of unknown = %s, want NOT_FOUND", got)
	}
}

func TestWithdraw(t *testing.T) {
	f := newFixture(t, 0)
	ctx := context.Background()

	// Purchases pay the beneficiary directly, so the ledger starts empty.
	if _, err := f.core.Withdraw(ctx, admin); !errors.Is(err, domain.ErrNothingToWithdraw) {
		t.Fatalf("empty withdraw: got %v, want ErrNothingToWithdraw", err)
	}

	f.tok.Mint(sentinel, 500)
	amount, err := f.core.Withdraw(ctx, admin)
	if err != nil {
		t.Fatalf("Withdraw failed: %v", err)
	}
	if amount != 500 || f.tok.Balance(admin) != 500 {
		t.Errorf("withdrew %d, admin balance %d", amount, f.tok.Balance(admin))
	}
	info, err := f.core.Collection(ctx)
	if err != nil {
		t.Fatalf("Collection failed: %v", err)
	}
	if info.PaymentBalance != 0 {
		t.Errorf("payment balance = %d after withdraw", info.PaymentBalance)
	}
}

func TestConcurrentPurchases(t *testing.T) {
	f := newFixture(t, 0)
	ctx := context.Background()

	const buyers = 20
	holders := make([]domain.Holder, buyers)
	for i := range holders {
		holders[i] = domain.Holder(fmt.Sprintf("buyer-%02d", i))
		f.fund(holders[i], 5)
	}

	var wg sync.WaitGroup
	for _, h := range holders {
		wg.Add(1)
		go func(h domain.Holder) {
			defer wg.Done()
			for i := 0; i < 5; i++ {
				if _, err := f.core.Purchase(ctx, h, 1); err != nil {
					t.Errorf("purchase by %s failed: %v", h, err)
				}
			}
		}(h)
	}
	wg.Wait()

	info, err := f.core.Collection(ctx)
	if err != nil {
		t.Fatalf("Collection failed: %v", err)
	}
	if info.Sold != buyers*5 {
		t.Errorf("sold = %d, want %d", info.Sold, buyers*5)
	}
	seen := make(map[domain.ItemID]bool)
	for i, ev := range f.sink.events {
		if ev.Sequence != uint64(i+1) {
			t.Fatalf("event %d has sequence %d", i, ev.Sequence)
		}
		id := ev.Payload.(domain.ItemAllocated).ItemID
		if seen[id] {
			t.Fatalf("item %d allocated twice", id)
		}
		seen[id] = true
	}
}

func TestView(t *testing.T) {
	f := newFixture(t, 0)
	var total uint64
	f.core.View(func(l *ledger.Ledger, _ *governance.Engine) {
		total = l.TotalSupply()
	})
	if total != domain.DefaultTotalSupply {
		t.Errorf("total supply = %d", total)
	}
}

var _ sink.Sink = (*recordingSink)(nil)
