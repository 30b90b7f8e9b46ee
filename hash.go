package dumper

import (
	"crypto/sha256"
	"crypto/sha512"
	"encoding/hex"

	"golang.org/x/crypto/blake2b"
)

// HashAlgo names a fingerprint algorithm for `dump.hash` tags.
type HashAlgo string

const (
	HashSHA256  HashAlgo = "sha256"  // 64 hex chars
	HashSHA512  HashAlgo = "sha512"  // 128 hex chars
	HashBLAKE2b HashAlgo = "blake2b" // BLAKE2b-256, 64 hex chars
)

// Hasher fingerprints field values so dumps can be compared without revealing them.
// Fingerprints are unsalted: equal inputs give equal output.
type Hasher interface {
	// Hash returns a hex-encoded digest of plaintext.
	Hash(plaintext []byte) (string, error)
}

// digest adapts a fixed-size checksum function to Hasher.
type digest func(plaintext []byte) []byte

func (d digest) Hash(plaintext []byte) (string, error) {
	return hex.EncodeToString(d(plaintext)), nil
}

// SHA256Hasher returns a SHA-256 hasher.
func SHA256Hasher() Hasher {
	return digest(func(p []byte) []byte {
		sum := sha256.Sum256(p)
		return sum[:]
	})
}

// SHA512Hasher returns a SHA-512 hasher.
func SHA512Hasher() Hasher {
	return digest(func(p []byte) []byte {
		sum := sha512.Sum512(p)
		return sum[:]
	})
}

// BLAKE2bHasher returns an unkeyed BLAKE2b-256 hasher.
func BLAKE2bHasher() Hasher {
	return digest(func(p []byte) []byte {
		sum := blake2b.Sum256(p)
		return sum[:]
	})
}

func builtinHashers() map[HashAlgo]Hasher {
	return map[HashAlgo]Hasher{
		HashSHA256:  SHA256Hasher(),
		HashSHA512:  SHA512Hasher(),
		HashBLAKE2b: BLAKE2bHasher(),
	}
}

// IsValidHashAlgo reports whether algo has a builtin hasher.
func IsValidHashAlgo(algo HashAlgo) bool {
	_, ok := hashers[algo]
	return ok
}
