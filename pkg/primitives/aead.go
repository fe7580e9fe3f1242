// Package primitives implements the raw authenticated-encryption building
// blocks used by the triple-cascade engine (pkg/cascade): XChaCha20-Poly1305
// for layer 1, AES-256-GCM for layer 2, and ChaCha20-Poly1305 (IETF) for
// layer 3.
//
// Each layer is a distinct, monomorphic type rather than a shared interface
// value (spec.md §9: "the three layers are monomorphic bindings behind a
// tagged selection, not a trait-object/interface dispatch"). This keeps each
// Seal/Open call inlinable and avoids a vtable indirection on the hot path;
// pkg/cascade.Engine holds one value of each concrete type and calls them
// directly, never through a shared interface value.
//
// CRITICAL: nonce uniqueness per key is the caller's responsibility. Unlike
// the teacher package this is adapted from, these types do not track an
// internal nonce counter: pkg/cascade draws a fresh, independent random nonce
// for each of the three layers of every envelope, so nonce management lives
// at the cascade level, not here.
package primitives

import (
	"crypto/aes"
	"crypto/cipher"

	"golang.org/x/crypto/chacha20poly1305"

	"github.com/chakchat/cascadecrypt/internal/constants"
	cerrors "github.com/chakchat/cascadecrypt/internal/errors"
)

// L1Cipher seals/opens the outermost cascade layer with XChaCha20-Poly1305.
// Its 24-byte extended nonce makes it safe to draw fully at random.
type L1Cipher struct {
	aead cipher.AEAD
}

// NewL1Cipher constructs the XChaCha20-Poly1305 layer from a 32-byte subkey.
func NewL1Cipher(key []byte) (*L1Cipher, error) {
	if len(key) != constants.SubkeySize {
		return nil, cerrors.NewCryptoError("primitives.NewL1Cipher", cerrors.ErrInvalidKey)
	}
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, cerrors.NewCryptoError("primitives.NewL1Cipher", err)
	}
	return &L1Cipher{aead: aead}, nil
}

// Seal encrypts plaintext under nonce (24 bytes) with aad authenticated but
// not encrypted, returning ciphertext||tag.
func (c *L1Cipher) Seal(nonce, plaintext, aad []byte) ([]byte, error) {
	if len(nonce) != constants.L1NonceSize {
		return nil, cerrors.ErrInvalidNonce
	}
	return c.aead.Seal(nil, nonce, plaintext, aad), nil
}

// Open verifies and decrypts ciphertext||tag produced by Seal.
func (c *L1Cipher) Open(nonce, ciphertext, aad []byte) ([]byte, error) {
	if len(nonce) != constants.L1NonceSize {
		return nil, cerrors.ErrInvalidNonce
	}
	if len(ciphertext) < constants.AEADTagSize {
		return nil, cerrors.ErrCiphertextTooShort
	}
	plaintext, err := c.aead.Open(nil, nonce, ciphertext, aad)
	if err != nil {
		return nil, cerrors.ErrDecryptionError
	}
	return plaintext, nil
}

// Overhead returns the authentication tag size added by Seal.
func (c *L1Cipher) Overhead() int { return c.aead.Overhead() }

// L2Cipher seals/opens the middle cascade layer with AES-256-GCM.
type L2Cipher struct {
	aead cipher.AEAD
}

// NewL2Cipher constructs the AES-256-GCM layer from a 32-byte subkey.
func NewL2Cipher(key []byte) (*L2Cipher, error) {
	if len(key) != constants.SubkeySize {
		return nil, cerrors.NewCryptoError("primitives.NewL2Cipher", cerrors.ErrInvalidKey)
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, cerrors.NewCryptoError("primitives.NewL2Cipher", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, cerrors.NewCryptoError("primitives.NewL2Cipher", err)
	}
	return &L2Cipher{aead: aead}, nil
}

// Seal encrypts plaintext under nonce (12 bytes).
func (c *L2Cipher) Seal(nonce, plaintext, aad []byte) ([]byte, error) {
	if len(nonce) != constants.L2NonceSize {
		return nil, cerrors.ErrInvalidNonce
	}
	return c.aead.Seal(nil, nonce, plaintext, aad), nil
}

// Open verifies and decrypts ciphertext||tag produced by Seal.
func (c *L2Cipher) Open(nonce, ciphertext, aad []byte) ([]byte, error) {
	if len(nonce) != constants.L2NonceSize {
		return nil, cerrors.ErrInvalidNonce
	}
	if len(ciphertext) < constants.AEADTagSize {
		return nil, cerrors.ErrCiphertextTooShort
	}
	plaintext, err := c.aead.Open(nil, nonce, ciphertext, aad)
	if err != nil {
		return nil, cerrors.ErrDecryptionError
	}
	return plaintext, nil
}

// Overhead returns the authentication tag size added by Seal.
func (c *L2Cipher) Overhead() int { return c.aead.Overhead() }

// L3Cipher seals/opens the innermost cascade layer with ChaCha20-Poly1305
// (IETF variant, 12-byte nonce).
type L3Cipher struct {
	aead cipher.AEAD
}

// NewL3Cipher constructs the ChaCha20-Poly1305 layer from a 32-byte subkey.
func NewL3Cipher(key []byte) (*L3Cipher, error) {
	if len(key) != constants.SubkeySize {
		return nil, cerrors.NewCryptoError("primitives.NewL3Cipher", cerrors.ErrInvalidKey)
	}
	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, cerrors.NewCryptoError("primitives.NewL3Cipher", err)
	}
	return &L3Cipher{aead: aead}, nil
}

// Seal encrypts plaintext under nonce (12 bytes).
func (c *L3Cipher) Seal(nonce, plaintext, aad []byte) ([]byte, error) {
	if len(nonce) != constants.L3NonceSize {
		return nil, cerrors.ErrInvalidNonce
	}
	return c.aead.Seal(nil, nonce, plaintext, aad), nil
}

// Open verifies and decrypts ciphertext||tag produced by Seal.
func (c *L3Cipher) Open(nonce, ciphertext, aad []byte) ([]byte, error) {
	if len(nonce) != constants.L3NonceSize {
		return nil, cerrors.ErrInvalidNonce
	}
	if len(ciphertext) < constants.AEADTagSize {
		return nil, cerrors.ErrCiphertextTooShort
	}
	plaintext, err := c.aead.Open(nil, nonce, ciphertext, aad)
	if err != nil {
		return nil, cerrors.ErrDecryptionError
	}
	return plaintext, nil
}

// Overhead returns the authentication tag size added by Seal.
func (c *L3Cipher) Overhead() int { return c.aead.Overhead() }
