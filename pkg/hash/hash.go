// Package hash provides privacy-preserving one-way hashing for values that
// reach logs or rate-limit keys: client identifiers and IP addresses.
package hash

import (
	"crypto/sha256"
	"encoding/hex"
)

// SHA256Hex returns the hex-encoded SHA256 hash of the input string.
func SHA256Hex(input string) string {
	h := sha256.Sum256([]byte(input))
	return hex.EncodeToString(h[:])
}

// IteratedSHA256 applies SHA256 iteratively n times to produce a derived
// hash. Used for client ID and IP hashing (5000 iterations), raising the
// cost of a rainbow-table attack on low-entropy inputs like short client
// ids.
func IteratedSHA256(input string, iterations int) string {
	data := []byte(input)
	for range iterations {
		h := sha256.Sum256(data)
		data = h[:]
	}
	return hex.EncodeToString(data)
}

// HashClientID hashes the browser extension's locally-generated client id
// (the X-Client-ID header) with 5000 iterations of SHA256, so neither logs
// nor the per-client rate-limit keyspace ever carry the raw identifier.
func HashClientID(clientID string) string {
	return IteratedSHA256(clientID, 5000)
}

// HashIP hashes an IP address with a salt using 5000 iterations of SHA256,
// for log correlation without storing raw addresses.
func HashIP(ip, salt string) string {
	return IteratedSHA256(salt+ip, 5000)
}
