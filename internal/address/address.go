// Package address parses holder identifiers and derives reserved addresses.
//
// Holders are base58-encoded 32-byte ed25519 public keys. Reserved addresses
// (such as the ledger sentinel) are program-derived: a SHA256 over seeds,
// a bump byte, the program id and a fixed marker, chosen so that the result
// is NOT a valid curve point. No private key can exist for them, so they can
// never collide with a real holder.
package address

import (
	"crypto/sha256"
	"errors"
	"fmt"

	"filippo.io/edwards25519"
	"github.com/mr-tron/base58"

	"collection-governance/internal/domain"
)

// KeySize is the decoded length of a holder address.
const KeySize = 32

// DefaultProgramID is the program id used when none is configured.
const DefaultProgramID = "11111111111111111111111111111111"

const pdaMarker = "ProgramDerivedAddress"

// ErrNoViableBump is returned when every bump seed lands on the curve.
var ErrNoViableBump = errors.New("no off-curve address for seeds")

// Parse validates s as a holder address: valid base58, 32 bytes, on the ed25519 curve.
func Parse(s string) (domain.Holder, error) {
	raw, err := Decode(s)
	if err != nil {
		return "", err
	}
	if !IsOnCurve(raw) {
		return "", fmt.Errorf("address %s is off-curve: %w", s, domain.ErrInvalidHolder)
	}
	return domain.Holder(s), nil
}

// Decode decodes a base58 address and checks its length.
func Decode(s string) ([]byte, error) {
	if s == "" {
		return nil, fmt.Errorf("empty address: %w", domain.ErrInvalidHolder)
	}
	raw, err := base58.Decode(s)
	if err != nil {
		return nil, fmt.Errorf("decode address %q: %w", s, domain.ErrInvalidHolder)
	}
	if len(raw) != KeySize {
		return nil, fmt.Errorf("address %q has %d bytes: %w", s, len(raw), domain.ErrInvalidHolder)
	}
	return raw, nil
}

// FromPublicKey encodes a raw 32-byte public key as a holder.
func FromPublicKey(pub []byte) (domain.Holder, error) {
	if len(pub) != KeySize {
		return "", fmt.Errorf("public key has %d bytes: %w", len(pub), domain.ErrInvalidHolder)
	}
	return domain.Holder(base58.Encode(pub)), nil
}

// IsOnCurve reports whether b is a valid compressed ed25519 point.
func IsOnCurve(b []byte) bool {
	if len(b) != KeySize {
		return false
	}
	_, err := new(edwards25519.Point).SetBytes(b)
	return err == nil
}

// DeriveProgramAddress finds the first off-curve address for seeds under programID,
// trying bump seeds from 255 down to 1.
func DeriveProgramAddress(seeds [][]byte, programID string) (domain.Holder, uint8, error) {
	program, err := Decode(programID)
	if err != nil {
		return "", 0, fmt.Errorf("program id: %w", err)
	}

	for bump := byte(255); bump > 0; bump-- {
		data := make([]byte, 0, 64)
		for _, seed := range seeds {
			data = append(data, seed...)
		}
		data = append(data, bump)
		data = append(data, program...)
		data = append(data, pdaMarker...)

		hash := sha256.Sum256(data)
		if !IsOnCurve(hash[:]) {
			return domain.Holder(base58.Encode(hash[:])), bump, nil
		}
	}

	return "", 0, ErrNoViableBump
}

// LedgerAddress derives the sentinel address of the ledger for a collection symbol.
func LedgerAddress(programID, symbol string) (domain.Holder, error) {
	addr, _, err := DeriveProgramAddress([][]byte{[]byte("ledger"), []byte(symbol)}, programID)
	if err != nil {
		return "", fmt.Errorf("derive ledger address: %w", err)
	}
	return addr, nil
}

// IsReserved reports whether h decodes to a 32-byte value that is off the curve.
func IsReserved(h domain.Holder) bool {
	raw, err := Decode(h.String())
	if err != nil {
		return false
	}
	return !IsOnCurve(raw)
}
