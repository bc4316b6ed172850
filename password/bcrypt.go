package password

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// DefaultCost is the bcrypt work factor used when Config.Cost is zero.
// Cost 12 is sized to resist offline brute force at current hardware speeds.
const DefaultCost = 12

// Config controls the bcrypt work factor.
type Config struct {
	Cost int
}

// Hasher hashes and verifies passwords. Construct through [NewHasher];
// a Hasher is immutable and safe for concurrent use. Hashing is CPU-bound,
// roughly 2^cost blowfish iterations per call.
type Hasher struct {
	cost int
}

// NewHasher validates cfg and returns a ready Hasher.
func NewHasher(cfg Config) (*Hasher, error) {
	cost := cfg.Cost
	if cost == 0 {
		cost = DefaultCost
	}
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return nil, errors.New("bcrypt cost outside supported range")
	}

	return &Hasher{cost: cost}, nil
}

// Hash produces a salted one-way hash of plaintext. It fails only on invalid
// input: bcrypt rejects passwords longer than 72 bytes.
func (h *Hasher) Hash(plaintext string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	if err != nil {
		return "", err
	}

	return string(hash), nil
}

// Verify reports whether plaintext matches the stored hash. The comparison
// is constant-time inside the bcrypt library. A malformed hash yields false,
// never a panic or error; callers treat it exactly like a mismatch.
func (h *Hasher) Verify(plaintext, encodedHash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(encodedHash), []byte(plaintext)) == nil
}

// NeedsRehash reports whether the stored hash was produced with a lower cost
// than currently configured. Malformed hashes report false; they will fail
// Verify anyway.
func (h *Hasher) NeedsRehash(encodedHash string) bool {
	cost, err := bcrypt.Cost([]byte(encodedHash))
	if err != nil {
		return false
	}

	return cost < h.cost
}
