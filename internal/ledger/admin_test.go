package ledger

import (
	"context"
	"errors"
	"testing"

	"collection-governance/internal/domain"
)

func TestResolveURI(t *testing.T) {
	l, _, rec := newTestLedger(t, testConfig())

	uri, err := l.ResolveURI(1)
	if err != nil {
		t.Fatalf("ResolveURI failed: %v", err)
	}
	if uri != "https://api.enanosdeleyenda.com/metadata/1.json" {
		t.Errorf("ResolveURI(1) = %s", uri)
	}

	special := "https://api.enanosdeleyenda.com/metadata/special/1.json"
	if err := l.SetItemURI(admin, 1, special); err != nil {
		t.Fatalf("SetItemURI failed: %v", err)
	}
	if uri, _ := l.ResolveURI(1); uri != special {
		t.Errorf("ResolveURI(1) = %s, want override", uri)
	}

	if err := l.SetBaseURI(admin, "https://newapi.enanosdeleyenda.com/metadata/"); err != nil {
		t.Fatalf("SetBaseURI failed: %v", err)
	}
	if uri, _ := l.ResolveURI(2); uri != "https://newapi.enanosdeleyenda.com/metadata/2.json" {
		t.Errorf("ResolveURI(2) = %s", uri)
	}
	if uri, _ := l.ResolveURI(1); uri != special {
		t.Error("base URI change must not affect overrides")
	}

	if err := l.SetItemURI(admin, 1, ""); err != nil {
		t.Fatalf("SetItemURI failed: %v", err)
	}
	if uri, _ := l.ResolveURI(1); uri != "https://newapi.enanosdeleyenda.com/metadata/1.json" {
		t.Errorf("cleared override not applied: %s", uri)
	}

	if _, err := l.ResolveURI(189); !errors.Is(err, domain.ErrItemNotFound) {
		t.Errorf("expected ErrItemNotFound, got %v", err)
	}
	if len(rec.payloads) != 3 {
		t.Errorf("expected 3 events, got %d", len(rec.payloads))
	}
}

func TestAdminOperations_Unauthorized(t *testing.T) {
	ctx := context.Background()
	l, _, rec := newTestLedger(t, testConfig())

	if err := l.SetBaseURI(buyer1, "x"); !errors.Is(err, domain.ErrUnauthorized) {
		t.Errorf("SetBaseURI: expected ErrUnauthorized, got %v", err)
	}
	if err := l.SetItemURI(buyer1, 1, "x"); !errors.Is(err, domain.ErrUnauthorized) {
		t.Errorf("SetItemURI: expected ErrUnauthorized, got %v", err)
	}
	if _, err := l.Withdraw(ctx, buyer1); !errors.Is(err, domain.ErrUnauthorized) {
		t.Errorf("Withdraw: expected ErrUnauthorized, got %v", err)
	}
	if err := l.SetItemURI(admin, 0, "x"); !errors.Is(err, domain.ErrItemNotFound) {
		t.Errorf("SetItemURI(0): expected ErrItemNotFound, got %v", err)
	}
	if len(rec.payloads) != 0 {
		t.Errorf("rejected operations emitted %d events", len(rec.payloads))
	}
}

func TestWithdraw(t *testing.T) {
	ctx := context.Background()
	l, tok, rec := newTestLedger(t, testConfig())

	if _, err := l.Withdraw(ctx, admin); !errors.Is(err, domain.ErrNothingToWithdraw) {
		t.Fatalf("expected ErrNothingToWithdraw, got %v", err)
	}

	tok.Mint(sentinel, 2*price)
	bal, err := l.PaymentBalance(ctx)
	if err != nil {
		t.Fatalf("PaymentBalance failed: %v", err)
	}
	if bal != 2*price {
		t.Errorf("PaymentBalance() = %d, want %d", bal, 2*price)
	}

	amount, err := l.Withdraw(ctx, admin)
	if err != nil {
		t.Fatalf("Withdraw failed: %v", err)
	}
	if amount != 2*price || tok.Balance(admin) != 2*price || tok.Balance(sentinel) != 0 {
		t.Errorf("unexpected balances after withdraw: amount=%d admin=%d", amount, tok.Balance(admin))
	}

	ev, ok := rec.payloads[0].(domain.PaymentWithdrawn)
	if !ok {
		t.Fatalf("expected PaymentWithdrawn, got %T", rec.payloads[0])
	}
	if ev.Token != "USDC" || ev.To != admin || ev.Amount != 2*price {
		t.Errorf("unexpected event: %+v", ev)
	}
}
