// File: protocol/mask.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package protocol

import "crypto/rand"

// NewMaskKey draws a fresh 4-byte mask key from the system CSPRNG.
// Masking is not a security boundary by itself, but a predictable key
// would make client output attackable under attacker-chosen payloads,
// so a non-cryptographic generator is not acceptable here.
func NewMaskKey() ([4]byte, error) {
	var key [4]byte
	if _, err := rand.Read(key[:]); err != nil {
		return key, err
	}
	return key, nil
}

// maskBytes XORs b in place against key, starting at stream offset pos,
// and returns the offset after the last byte. XOR masking is its own
// inverse, so the same call unmasks.
func maskBytes(key [4]byte, pos int, b []byte) int {
	for i := range b {
		b[i] ^= key[(pos+i)&3]
	}
	return (pos + len(b)) & 3
}
