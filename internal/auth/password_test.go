package auth

import (
	"strings"
	"testing"
)

// Cost 4 is bcrypt's minimum — the logic is the same, the tests are fast.
func newTestPasswordService() *PasswordService {
	return NewPasswordServiceForTest(4)
}

func TestHashAndVerify(t *testing.T) {
	ps := newTestPasswordService()

	hash, err := ps.Hash("correct horse battery staple")
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}
	if hash == "correct horse battery staple" {
		t.Fatal("Hash() returned the plaintext")
	}

	if err := ps.Verify(hash, "correct horse battery staple"); err != nil {
		t.Errorf("Verify() with right password: %v", err)
	}
	if err := ps.Verify(hash, "wrong password"); err == nil {
		t.Error("Verify() accepted a wrong password")
	}
}

func TestHash_Salted(t *testing.T) {
	ps := newTestPasswordService()

	h1, err := ps.Hash("same password")
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}
	h2, err := ps.Hash("same password")
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}

	if h1 == h2 {
		t.Error("two hashes of the same password are identical — salt missing")
	}
}

func TestHash_RejectsOverlongPassword(t *testing.T) {
	ps := newTestPasswordService()

	// bcrypt silently truncates past 72 bytes; we reject instead.
	if _, err := ps.Hash(strings.Repeat("x", 73)); err == nil {
		t.Error("Hash() accepted a password longer than 72 bytes")
	}
}
