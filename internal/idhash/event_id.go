package idhash

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"collection-governance/internal/domain"
)

// ComputeEventID computes a deterministic event_id using SHA256.
// Formula: SHA256(sequence|name|subject|occurred_at_unix_nano)
// Returns hex-encoded hash (64 characters).
func ComputeEventID(
	sequence uint64,
	name domain.EventName,
	subject string,
	occurredAtUnixNano int64,
) string {
	data := fmt.Sprintf("%d|%s|%s|%d",
		sequence,
		string(name),
		subject,
		occurredAtUnixNano,
	)

	hash := sha256.Sum256([]byte(data))
	return hex.EncodeToString(hash[:])
}
