// internal/utils/wallet.go
package utils

import (
	"regexp"
	"strings"
)

var hexAddressPattern = regexp.MustCompile(`^0x[0-9a-fA-F]{40}$`)

// NormalizeWalletAddress canonicalizes a wallet address to its lowercase form,
// or returns "" if the input is not a valid address. Every storage write and
// every comparison in the system goes through this, so case-variant addresses
// are identical by construction.
func NormalizeWalletAddress(address string) string {
	trimmed := strings.TrimSpace(address)
	if !hexAddressPattern.MatchString(trimmed) {
		return ""
	}
	return strings.ToLower(trimmed)
}

// IsWalletAddress reports whether the input looks like a 20-byte hex address.
func IsWalletAddress(address string) bool {
	return hexAddressPattern.MatchString(strings.TrimSpace(address))
}
