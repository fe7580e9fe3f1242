package primitives_test

import (
	"bytes"
	"crypto/rand"
	"testing"

	"github.com/chakchat/cascadecrypt/internal/constants"
	cerrors "github.com/chakchat/cascadecrypt/internal/errors"
	"github.com/chakchat/cascadecrypt/pkg/primitives"
)

func fixedKey(b byte) []byte {
	k := make([]byte, constants.SubkeySize)
	for i := range k {
		k[i] = b
	}
	return k
}

// TestKATRoundTrip verifies each cascade layer is deterministic and that
// Open recovers exactly what Seal produced, given fixed key/nonce/plaintext
// vectors. Mirrors the teacher's determinism-focused KAT style.
func TestKATRoundTrip(t *testing.T) {
	plaintext := []byte("the quick brown fox jumps over the lazy dog")
	aad := []byte("associated-data")

	t.Run("L1-XChaCha20Poly1305", func(t *testing.T) {
		key := fixedKey(0x11)
		nonce := bytes.Repeat([]byte{0x01}, constants.L1NonceSize)

		c, err := primitives.NewL1Cipher(key)
		if err != nil {
			t.Fatalf("NewL1Cipher: %v", err)
		}
		ct1, err := c.Seal(nonce, plaintext, aad)
		if err != nil {
			t.Fatalf("Seal: %v", err)
		}
		ct2, _ := c.Seal(nonce, plaintext, aad)
		if !bytes.Equal(ct1, ct2) {
			t.Error("Seal is not deterministic for fixed key/nonce/plaintext")
		}
		if len(ct1) != len(plaintext)+c.Overhead() {
			t.Errorf("ciphertext length = %d, want %d", len(ct1), len(plaintext)+c.Overhead())
		}
		pt, err := c.Open(nonce, ct1, aad)
		if err != nil {
			t.Fatalf("Open: %v", err)
		}
		if !bytes.Equal(pt, plaintext) {
			t.Errorf("round trip mismatch: got %q, want %q", pt, plaintext)
		}
	})

	t.Run("L2-AES256GCM", func(t *testing.T) {
		key := fixedKey(0x22)
		nonce := bytes.Repeat([]byte{0x02}, constants.L2NonceSize)

		c, err := primitives.NewL2Cipher(key)
		if err != nil {
			t.Fatalf("NewL2Cipher: %v", err)
		}
		ct, err := c.Seal(nonce, plaintext, aad)
		if err != nil {
			t.Fatalf("Seal: %v", err)
		}
		pt, err := c.Open(nonce, ct, aad)
		if err != nil {
			t.Fatalf("Open: %v", err)
		}
		if !bytes.Equal(pt, plaintext) {
			t.Errorf("round trip mismatch: got %q, want %q", pt, plaintext)
		}
	})

	t.Run("L3-ChaCha20Poly1305", func(t *testing.T) {
		key := fixedKey(0x33)
		nonce := bytes.Repeat([]byte{0x03}, constants.L3NonceSize)

		c, err := primitives.NewL3Cipher(key)
		if err != nil {
			t.Fatalf("NewL3Cipher: %v", err)
		}
		ct, err := c.Seal(nonce, plaintext, aad)
		if err != nil {
			t.Fatalf("Seal: %v", err)
		}
		pt, err := c.Open(nonce, ct, aad)
		if err != nil {
			t.Fatalf("Open: %v", err)
		}
		if !bytes.Equal(pt, plaintext) {
			t.Errorf("round trip mismatch: got %q, want %q", pt, plaintext)
		}
	})
}

// TestWrongKeySizeRejected verifies every layer validates key length.
func TestWrongKeySizeRejected(t *testing.T) {
	short := make([]byte, 16)

	if _, err := primitives.NewL1Cipher(short); err == nil {
		t.Error("NewL1Cipher accepted a 16-byte key")
	}
	if _, err := primitives.NewL2Cipher(short); err == nil {
		t.Error("NewL2Cipher accepted a 16-byte key")
	}
	if _, err := primitives.NewL3Cipher(short); err == nil {
		t.Error("NewL3Cipher accepted a 16-byte key")
	}
}

// TestWrongNonceSizeRejected verifies every layer validates nonce length.
func TestWrongNonceSizeRejected(t *testing.T) {
	plaintext := []byte("hello")
	badNonce := []byte{0x00, 0x01, 0x02}

	l1, _ := primitives.NewL1Cipher(fixedKey(0x01))
	if _, err := l1.Seal(badNonce, plaintext, nil); !cerrors.Is(err, cerrors.ErrInvalidNonce) {
		t.Errorf("L1 Seal with bad nonce = %v, want ErrInvalidNonce", err)
	}

	l2, _ := primitives.NewL2Cipher(fixedKey(0x02))
	if _, err := l2.Seal(badNonce, plaintext, nil); !cerrors.Is(err, cerrors.ErrInvalidNonce) {
		t.Errorf("L2 Seal with bad nonce = %v, want ErrInvalidNonce", err)
	}

	l3, _ := primitives.NewL3Cipher(fixedKey(0x03))
	if _, err := l3.Seal(badNonce, plaintext, nil); !cerrors.Is(err, cerrors.ErrInvalidNonce) {
		t.Errorf("L3 Seal with bad nonce = %v, want ErrInvalidNonce", err)
	}
}

// TestTamperedCiphertextFailsAuthentication verifies any bit flip in the
// ciphertext or AAD causes the L2 (AES-256-GCM) Open to fail.
func TestTamperedCiphertextFailsAuthentication(t *testing.T) {
	plaintext := []byte("secret message")
	aad := []byte("context")
	nonce := make([]byte, constants.L2NonceSize)
	rand.Read(nonce)

	c, err := primitives.NewL2Cipher(fixedKey(0x44))
	if err != nil {
		t.Fatalf("NewL2Cipher: %v", err)
	}
	ct, err := c.Seal(nonce, plaintext, aad)
	if err != nil {
		t.Fatalf("Seal: %v", err)
	}

	tampered := append([]byte(nil), ct...)
	tampered[0] ^= 0xFF
	if _, err := c.Open(nonce, tampered, aad); err == nil {
		t.Error("Open accepted tampered ciphertext")
	}

	if _, err := c.Open(nonce, ct, []byte("wrong-aad")); err == nil {
		t.Error("Open accepted mismatched AAD")
	}
}

// TestCiphertextTooShort verifies Open rejects ciphertext shorter than the
// authentication tag before attempting decryption.
func TestCiphertextTooShort(t *testing.T) {
	c, _ := primitives.NewL1Cipher(fixedKey(0x55))
	nonce := make([]byte, constants.L1NonceSize)

	_, err := c.Open(nonce, []byte{0x01, 0x02}, nil)
	if !cerrors.Is(err, cerrors.ErrCiphertextTooShort) {
		t.Errorf("Open with short ciphertext = %v, want ErrCiphertextTooShort", err)
	}
}

// TestCrossKeyDecryptionFails mirrors original_source/crypto/src/encryption.rs's
// cross-key-decrypt-failure scenario at the single-layer level.
func TestCrossKeyDecryptionFails(t *testing.T) {
	plaintext := []byte("data")
	nonce := make([]byte, constants.L3NonceSize)

	encryptor, _ := primitives.NewL3Cipher(fixedKey(0xAA))
	decryptor, _ := primitives.NewL3Cipher(fixedKey(0xBB))

	ct, err := encryptor.Seal(nonce, plaintext, nil)
	if err != nil {
		t.Fatalf("Seal: %v", err)
	}
	if _, err := decryptor.Open(nonce, ct, nil); err == nil {
		t.Error("Open succeeded with the wrong key")
	}
}
