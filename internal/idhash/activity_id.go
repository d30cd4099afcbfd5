package idhash

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// ComputeActivityID computes a deterministic activity_id using SHA256.
// Formula: SHA256(event_id|kind|index)
// index distinguishes several activity points derived from one event.
// Returns hex-encoded hash (64 characters).
func ComputeActivityID(
	eventID string,
	kind string,
	index int,
) string {
	data := fmt.Sprintf("%s|%s|%d",
		eventID,
		kind,
		index,
	)

	hash := sha256.Sum256([]byte(data))
	return hex.EncodeToString(hash[:])
}
