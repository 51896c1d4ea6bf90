// Package crypto provides the one cryptographic primitive this interpreter
// core uses directly: Keccak-256, for the SHA3 (KECCAK256) opcode.
package crypto

import (
	"golang.org/x/crypto/sha3"
)

// Keccak256 calculates the Keccak-256 hash of the concatenation of data.
func Keccak256(data ...[]byte) []byte {
	d := sha3.NewLegacyKeccak256()
	for _, b := range data {
		d.Write(b)
	}
	return d.Sum(nil)
}

// Keccak256Array is Keccak256 with the result packed into a fixed-size
// array, convenient for hash-cache keys and Hash-typed results.
func Keccak256Array(data ...[]byte) [32]byte {
	var out [32]byte
	copy(out[:], Keccak256(data...))
	return out
}
