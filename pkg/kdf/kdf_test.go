package kdf_test

import (
	"bytes"
	"testing"

	"github.com/chakchat/cascadecrypt/internal/constants"
	"github.com/chakchat/cascadecrypt/pkg/kdf"
)

func fixedSecret(b byte) []byte {
	s := make([]byte, constants.HybridSharedSecretSize)
	for i := range s {
		s[i] = b
	}
	return s
}

// TestDeriveSubkeysDeterministic verifies the same session secret always
// yields the same SubkeyTriple.
func TestDeriveSubkeysDeterministic(t *testing.T) {
	secret := fixedSecret(0x42)

	t1, err := kdf.DeriveSubkeys(secret)
	if err != nil {
		t.Fatalf("DeriveSubkeys: %v", err)
	}
	t2, err := kdf.DeriveSubkeys(secret)
	if err != nil {
		t.Fatalf("DeriveSubkeys: %v", err)
	}

	if !bytes.Equal(t1.K1, t2.K1) || !bytes.Equal(t1.K2, t2.K2) || !bytes.Equal(t1.K3, t2.K3) {
		t.Error("DeriveSubkeys is not deterministic for a fixed session secret")
	}
}

// TestDeriveSubkeysAreIndependent verifies the three subkeys differ from
// each other and are each the expected width.
func TestDeriveSubkeysAreIndependent(t *testing.T) {
	triple, err := kdf.DeriveSubkeys(fixedSecret(0x01))
	if err != nil {
		t.Fatalf("DeriveSubkeys: %v", err)
	}

	for name, key := range map[string][]byte{"K1": triple.K1, "K2": triple.K2, "K3": triple.K3} {
		if len(key) != constants.SubkeySize {
			t.Errorf("%s length = %d, want %d", name, len(key), constants.SubkeySize)
		}
	}

	if bytes.Equal(triple.K1, triple.K2) {
		t.Error("K1 and K2 must differ")
	}
	if bytes.Equal(triple.K2, triple.K3) {
		t.Error("K2 and K3 must differ")
	}
	if bytes.Equal(triple.K1, triple.K3) {
		t.Error("K1 and K3 must differ")
	}
}

// TestDeriveSubkeysDifferentSecretsDiffer verifies distinct session secrets
// derive to unrelated subkey sets.
func TestDeriveSubkeysDifferentSecretsDiffer(t *testing.T) {
	a, err := kdf.DeriveSubkeys(fixedSecret(0x01))
	if err != nil {
		t.Fatalf("DeriveSubkeys: %v", err)
	}
	b, err := kdf.DeriveSubkeys(fixedSecret(0x02))
	if err != nil {
		t.Fatalf("DeriveSubkeys: %v", err)
	}
	if bytes.Equal(a.K1, b.K1) {
		t.Error("different session secrets produced the same K1")
	}
}

// TestDeriveSubkeysRejectsWrongSize verifies input validation.
func TestDeriveSubkeysRejectsWrongSize(t *testing.T) {
	if _, err := kdf.DeriveSubkeys(make([]byte, 16)); err == nil {
		t.Error("DeriveSubkeys accepted a 16-byte secret")
	}
}

// TestExtractAndExpandDeterministic exercises the one-call extract-then-expand
// HKDF path.
func TestExtractAndExpandDeterministic(t *testing.T) {
	ikm := bytes.Repeat([]byte{0xAB}, 64)
	salt := []byte("salt")

	out1, err := kdf.ExtractAndExpand(ikm, salt, constants.HybridCombinerInfo, 32)
	if err != nil {
		t.Fatalf("ExtractAndExpand: %v", err)
	}
	out2, err := kdf.ExtractAndExpand(ikm, salt, constants.HybridCombinerInfo, 32)
	if err != nil {
		t.Fatalf("ExtractAndExpand: %v", err)
	}
	if !bytes.Equal(out1, out2) {
		t.Error("ExtractAndExpand is not deterministic")
	}
	if len(out1) != 32 {
		t.Errorf("output length = %d, want 32", len(out1))
	}

	out3, err := kdf.ExtractAndExpand(ikm, salt, "different-info", 32)
	if err != nil {
		t.Fatalf("ExtractAndExpand: %v", err)
	}
	if bytes.Equal(out1, out3) {
		t.Error("different info strings produced identical output")
	}
}

// TestExpandRejectsInvalidLength verifies output length bounds.
func TestExpandRejectsInvalidLength(t *testing.T) {
	prk := bytes.Repeat([]byte{0x01}, 32)
	if _, err := kdf.Expand(prk, "info", 0); err == nil {
		t.Error("Expand accepted outputLen = 0")
	}
	if _, err := kdf.Expand(prk, "info", -1); err == nil {
		t.Error("Expand accepted negative outputLen")
	}
}
