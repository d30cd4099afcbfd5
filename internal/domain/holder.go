package domain

// Holder identifies a participant by its base58-encoded 32-byte public key.
type Holder string

// String returns the string representation of Holder.
func (h Holder) String() string {
	return string(h)
}

// IsZero reports whether the holder is unset.
func (h Holder) IsZero() bool {
	return h == ""
}
