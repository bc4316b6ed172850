package password

import (
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

// Cost 4 (bcrypt.MinCost) keeps the test suite fast; production cost is 12.
func newFastHasher(t *testing.T) *Hasher {
	t.Helper()
	h, err := NewHasher(Config{Cost: bcrypt.MinCost})
	if err != nil {
		t.Fatalf("new hasher: %v", err)
	}
	return h
}

func TestNewHasherDefaultsCost(t *testing.T) {
	h, err := NewHasher(Config{})
	if err != nil {
		t.Fatalf("new hasher: %v", err)
	}
	if h.cost != DefaultCost {
		t.Fatalf("cost = %d, want %d", h.cost, DefaultCost)
	}
}

func TestNewHasherRejectsOutOfRangeCost(t *testing.T) {
	if _, err := NewHasher(Config{Cost: bcrypt.MaxCost + 1}); err == nil {
		t.Fatal("expected out-of-range cost to be rejected")
	}
	if _, err := NewHasher(Config{Cost: -1}); err == nil {
		t.Fatal("expected negative cost to be rejected")
	}
}

func TestHashVerifyRoundtrip(t *testing.T) {
	h := newFastHasher(t)

	hash, err := h.Hash("correct horse battery staple")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if hash == "correct horse battery staple" {
		t.Fatal("hash must not equal plaintext")
	}

	if !h.Verify("correct horse battery staple", hash) {
		t.Fatal("verify rejected the original password")
	}
	if h.Verify("wrong password", hash) {
		t.Fatal("verify accepted a wrong password")
	}
}

func TestHashesAreSalted(t *testing.T) {
	h := newFastHasher(t)

	a, err := h.Hash("same input")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	b, err := h.Hash("same input")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if a == b {
		t.Fatal("two hashes of the same input must differ")
	}
}

func TestHashRejectsOverlongPassword(t *testing.T) {
	h := newFastHasher(t)

	if _, err := h.Hash(strings.Repeat("x", 73)); err == nil {
		t.Fatal("expected >72 byte password to be rejected")
	}
}

func TestVerifyMalformedHashIsFalse(t *testing.T) {
	h := newFastHasher(t)

	for _, bad := range []string{"", "not-a-bcrypt-hash", "$2a$garbage"} {
		if h.Verify("anything", bad) {
			t.Fatalf("verify accepted malformed hash %q", bad)
		}
	}
}

func TestNeedsRehash(t *testing.T) {
	low, err := NewHasher(Config{Cost: bcrypt.MinCost})
	if err != nil {
		t.Fatalf("new hasher: %v", err)
	}
	high, err := NewHasher(Config{Cost: bcrypt.MinCost + 2})
	if err != nil {
		t.Fatalf("new hasher: %v", err)
	}

	hash, err := low.Hash("password123")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}

	if !high.NeedsRehash(hash) {
		t.Fatal("low-cost hash should need rehash under higher cost")
	}
	if low.NeedsRehash(hash) {
		t.Fatal("hash at configured cost should not need rehash")
	}
	if high.NeedsRehash("malformed") {
		t.Fatal("malformed hash should not request rehash")
	}
}
