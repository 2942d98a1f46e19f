package security

import (
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestPasswordHasher_HashVerify(t *testing.T) {
	h := NewPasswordHasher(bcrypt.MinCost)

	digest, err := h.Hash("p1")
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	if digest == "p1" {
		t.Fatalf("digest must not be the plaintext")
	}
	if !h.Verify("p1", digest) {
		t.Fatalf("expected password to verify")
	}
	if h.Verify("p2", digest) {
		t.Fatalf("expected mismatch to be false")
	}
}

func TestPasswordHasher_SaltedDigests(t *testing.T) {
	h := NewPasswordHasher(bcrypt.MinCost)

	a, _ := h.Hash("same")
	b, _ := h.Hash("same")
	if a == b {
		t.Fatalf("expected different salts per hash")
	}
}

func TestPasswordHasher_EmptyOrCorruptDigest(t *testing.T) {
	h := NewPasswordHasher(bcrypt.MinCost)

	if h.Verify("x", "") {
		t.Fatalf("empty digest must not verify")
	}
	if h.Verify("x", "not-bcrypt") {
		t.Fatalf("corrupt digest must not verify")
	}
}

func TestNewPasswordHasher_OutOfRangeCost(t *testing.T) {
	h := NewPasswordHasher(99)
	if h.cost != DefaultBcryptCost {
		t.Fatalf("expected default cost, got %d", h.cost)
	}
}
