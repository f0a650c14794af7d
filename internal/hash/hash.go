// Package hash fingerprints checkout payloads so a reused idempotency key
// can be told apart from a genuine retry.
package hash

import (
	"encoding/hex"
	"encoding/json"
	"fmt"

	"golang.org/x/crypto/blake2b"
)

// Fingerprint returns the hex blake2b-256 digest of v's JSON encoding.
// Struct fields encode in declaration order, so equal values hash equally.
func Fingerprint(v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("fingerprint: %w", err)
	}
	sum := blake2b.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

// Equal compares two fingerprints; an empty one never matches.
func Equal(a, b string) bool {
	return a != "" && a == b
}
