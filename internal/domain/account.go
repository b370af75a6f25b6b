package domain

import "strings"

// PrivateKey is the hex secret behind an account. It never renders its value.
type PrivateKey string

func (PrivateKey) String() string {
	return "[redacted]"
}

func (PrivateKey) GoString() string {
	return "[redacted]"
}

// Reveal returns the raw key material without a 0x prefix.
func (k PrivateKey) Reveal() string {
	return strings.TrimPrefix(strings.TrimSpace(string(k)), "0x")
}

// ShortAddress keeps the first 8 and last 4 characters of an address.
func ShortAddress(address string) string {
	if len(address) <= 12 {
		return address
	}

	return address[:8] + "..." + address[len(address)-4:]
}
