package identity_test

import (
	"bytes"
	"testing"

	"github.com/chakchat/cascadecrypt/internal/constants"
	cerrors "github.com/chakchat/cascadecrypt/internal/errors"
	"github.com/chakchat/cascadecrypt/pkg/identity"
)

func fixedSeed(b byte) []byte {
	s := make([]byte, constants.Ed25519SeedSize)
	for i := range s {
		s[i] = b
	}
	return s
}

func TestNewIdentityFromSeedDeterministic(t *testing.T) {
	seed := fixedSeed(0x5A)

	kp1, err := identity.NewIdentityFromSeed(seed)
	if err != nil {
		t.Fatalf("NewIdentityFromSeed: %v", err)
	}
	kp2, err := identity.NewIdentityFromSeed(seed)
	if err != nil {
		t.Fatalf("NewIdentityFromSeed: %v", err)
	}

	if !bytes.Equal(kp1.PublicKeyBytes(), kp2.PublicKeyBytes()) {
		t.Error("same seed produced different X25519 public keys")
	}
	if !bytes.Equal(kp1.Ed25519Public, kp2.Ed25519Public) {
		t.Error("same seed produced different Ed25519 public keys")
	}
}

// TestX25519AndEd25519KeysAreUnrelated verifies the seed-separation fix:
// the X25519 and Ed25519 private key material must differ, since they are
// each derived through a distinct HKDF label rather than reusing the seed.
func TestX25519AndEd25519KeysAreUnrelated(t *testing.T) {
	kp, err := identity.NewIdentityFromSeed(fixedSeed(0x11))
	if err != nil {
		t.Fatalf("NewIdentityFromSeed: %v", err)
	}

	xBytes := kp.X25519Private.Bytes()
	edSeed := kp.Ed25519Private.Seed()

	if bytes.Equal(xBytes, edSeed) {
		t.Error("X25519 private key and Ed25519 seed must not be equal")
	}
}

func TestDifferentSeedsProduceDifferentIdentities(t *testing.T) {
	kp1, err := identity.NewIdentityFromSeed(fixedSeed(0x01))
	if err != nil {
		t.Fatalf("NewIdentityFromSeed: %v", err)
	}
	kp2, err := identity.NewIdentityFromSeed(fixedSeed(0x02))
	if err != nil {
		t.Fatalf("NewIdentityFromSeed: %v", err)
	}
	if bytes.Equal(kp1.PublicKeyBytes(), kp2.PublicKeyBytes()) {
		t.Error("different seeds produced the same X25519 public key")
	}
}

func TestGenerateIdentityProducesUsableKeypair(t *testing.T) {
	kp, err := identity.GenerateIdentity()
	if err != nil {
		t.Fatalf("GenerateIdentity: %v", err)
	}
	if kp.X25519Private == nil || kp.X25519Public == nil {
		t.Fatal("GenerateIdentity did not populate X25519 keys")
	}
	if len(kp.Ed25519Public) != constants.Ed25519PublicKeySize {
		t.Errorf("Ed25519Public length = %d, want %d", len(kp.Ed25519Public), constants.Ed25519PublicKeySize)
	}
}

func TestComputeSharedSecretAgrees(t *testing.T) {
	alice, err := identity.NewIdentityFromSeed(fixedSeed(0xA1))
	if err != nil {
		t.Fatalf("NewIdentityFromSeed: %v", err)
	}
	bob, err := identity.NewIdentityFromSeed(fixedSeed(0xB2))
	if err != nil {
		t.Fatalf("NewIdentityFromSeed: %v", err)
	}

	secretFromAlice, err := identity.ComputeSharedSecret(alice.X25519Private, bob.X25519Public)
	if err != nil {
		t.Fatalf("ComputeSharedSecret(alice): %v", err)
	}
	secretFromBob, err := identity.ComputeSharedSecret(bob.X25519Private, alice.X25519Public)
	if err != nil {
		t.Fatalf("ComputeSharedSecret(bob): %v", err)
	}

	if !bytes.Equal(secretFromAlice, secretFromBob) {
		t.Error("ECDH did not agree between the two parties")
	}
	if len(secretFromAlice) != constants.X25519SharedSecretSize {
		t.Errorf("shared secret length = %d, want %d", len(secretFromAlice), constants.X25519SharedSecretSize)
	}
}

func TestComputeSharedSecretRejectsNilKeys(t *testing.T) {
	kp, err := identity.NewIdentityFromSeed(fixedSeed(0x01))
	if err != nil {
		t.Fatalf("NewIdentityFromSeed: %v", err)
	}
	if _, err := identity.ComputeSharedSecret(nil, kp.X25519Public); err == nil {
		t.Error("ComputeSharedSecret accepted a nil private key")
	}
	if _, err := identity.ComputeSharedSecret(kp.X25519Private, nil); err == nil {
		t.Error("ComputeSharedSecret accepted a nil public key")
	}
}

func TestSignAndVerify(t *testing.T) {
	kp, err := identity.GenerateIdentity()
	if err != nil {
		t.Fatalf("GenerateIdentity: %v", err)
	}
	message := []byte("authenticate this handshake transcript")

	sig := kp.Sign(message)
	if len(sig) != constants.Ed25519SignatureSize {
		t.Errorf("signature length = %d, want %d", len(sig), constants.Ed25519SignatureSize)
	}

	if err := identity.Verify(kp.Ed25519Public, message, sig); err != nil {
		t.Errorf("Verify failed on a genuine signature: %v", err)
	}
}

func TestVerifyRejectsTamperedMessage(t *testing.T) {
	kp, err := identity.GenerateIdentity()
	if err != nil {
		t.Fatalf("GenerateIdentity: %v", err)
	}
	sig := kp.Sign([]byte("original message"))

	err = identity.Verify(kp.Ed25519Public, []byte("tampered message"), sig)
	if !cerrors.Is(err, cerrors.ErrSignatureVerificationFailed) {
		t.Errorf("Verify on tampered message = %v, want ErrSignatureVerificationFailed", err)
	}
}

func TestVerifyRejectsWrongKey(t *testing.T) {
	kp1, _ := identity.GenerateIdentity()
	kp2, _ := identity.GenerateIdentity()
	message := []byte("message")
	sig := kp1.Sign(message)

	if err := identity.Verify(kp2.Ed25519Public, message, sig); err == nil {
		t.Error("Verify accepted a signature under the wrong public key")
	}
}

func TestNewIdentityFromSeedRejectsWrongSize(t *testing.T) {
	if _, err := identity.NewIdentityFromSeed(make([]byte, 16)); err == nil {
		t.Error("NewIdentityFromSeed accepted a 16-byte seed")
	}
}

func TestParseX25519PublicKeyRoundTrip(t *testing.T) {
	kp, err := identity.GenerateIdentity()
	if err != nil {
		t.Fatalf("GenerateIdentity: %v", err)
	}
	encoded := kp.PublicKeyBytes()

	parsed, err := identity.ParseX25519PublicKey(encoded)
	if err != nil {
		t.Fatalf("ParseX25519PublicKey: %v", err)
	}
	if !bytes.Equal(parsed.Bytes(), encoded) {
		t.Error("parsed public key does not round-trip")
	}
}

func TestParseX25519PublicKeyRejectsWrongSize(t *testing.T) {
	if _, err := identity.ParseX25519PublicKey(make([]byte, 10)); err == nil {
		t.Error("ParseX25519PublicKey accepted a 10-byte key")
	}
}
