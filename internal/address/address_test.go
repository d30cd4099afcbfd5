package address

import (
	"crypto/ed25519"
	"errors"
	"testing"

	"collection-governance/internal/domain"
)

func testKey(t *testing.T, seed byte) domain.Holder {
	t.Helper()
	s := make([]byte, ed25519.SeedSize)
	s[0] = seed
	pub := ed25519.NewKeyFromSeed(s).Public().(ed25519.PublicKey)
	h, err := FromPublicKey(pub)
	if err != nil {
		t.Fatalf("FromPublicKey failed: %v", err)
	}
	return h
}

func TestParse_ValidKey(t *testing.T) {
	h := testKey(t, 1)

	got, err := Parse(h.String())
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if got != h {
		t.Errorf("Parse() = %s, want %s", got, h)
	}
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"bad alphabet", "0OIl"},
		{"short", "3mJr7AoUXx2Wqd"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.input)
			if !errors.Is(err, domain.ErrInvalidHolder) {
				t.Errorf("expected ErrInvalidHolder, got %v", err)
			}
		})
	}
}

func TestLedgerAddress(t *testing.T) {
	a1, err := LedgerAddress(DefaultProgramID, "ENANOS")
	if err != nil {
		t.Fatalf("LedgerAddress failed: %v", err)
	}
	a2, err := LedgerAddress(DefaultProgramID, "ENANOS")
	if err != nil {
		t.Fatalf("LedgerAddress failed: %v", err)
	}
	if a1 != a2 {
		t.Errorf("derivation not deterministic: %s != %s", a1, a2)
	}

	other, err := LedgerAddress(DefaultProgramID, "OTHER")
	if err != nil {
		t.Fatalf("LedgerAddress failed: %v", err)
	}
	if other == a1 {
		t.Error("different symbols derived the same address")
	}

	if !IsReserved(a1) {
		t.Error("ledger address should be off-curve")
	}
	if _, err := Parse(a1.String()); !errors.Is(err, domain.ErrInvalidHolder) {
		t.Errorf("ledger address must not parse as a holder, got %v", err)
	}
}

func TestDeriveProgramAddress_BadProgram(t *testing.T) {
	if _, _, err := DeriveProgramAddress([][]byte{[]byte("x")}, "not-base58!"); err == nil {
		t.Fatal("expected error for invalid program id")
	}
}

func TestIsReserved_Holder(t *testing.T) {
	if IsReserved(testKey(t, 9)) {
		t.Error("public key reported as reserved")
	}
}
