// Package util provides small cryptographic helpers shared across the
// Cascade-Crypt packages: hashing, HMAC, password-based key derivation,
// constant-time comparison, secure randomness, and secure memory wipe.
//
// Grounded on the teacher's pkg/crypto/random.go (SecureRandom helpers) and
// on original_source/crypto/src/utils.rs, whose hash_sha256/512,
// derive_key_from_password, constant_time_compare, hmac_sha256/512, and
// secure_wipe functions this package ports into idiomatic Go.
package util

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"crypto/sha512"
	"crypto/subtle"
	"io"
	"runtime"

	"golang.org/x/crypto/scrypt"

	"github.com/chakchat/cascadecrypt/internal/constants"
	cerrors "github.com/chakchat/cascadecrypt/internal/errors"
)

// Random reads n cryptographically secure random bytes from the OS CSPRNG.
func Random(n int) ([]byte, error) {
	b := make([]byte, n)
	if _, err := io.ReadFull(rand.Reader, b); err != nil {
		return nil, cerrors.NewCryptoError("util.Random", err)
	}
	return b, nil
}

// RandomArray fills dst with cryptographically secure random bytes.
func RandomArray(dst []byte) error {
	if _, err := io.ReadFull(rand.Reader, dst); err != nil {
		return cerrors.NewCryptoError("util.RandomArray", err)
	}
	return nil
}

// HashSHA256 returns the SHA-256 digest of data.
func HashSHA256(data []byte) []byte {
	sum := sha256.Sum256(data)
	return sum[:]
}

// HashSHA512 returns the SHA-512 digest of data.
func HashSHA512(data []byte) []byte {
	sum := sha512.Sum512(data)
	return sum[:]
}

// HMACSHA256 computes HMAC-SHA-256 over data with the given key.
func HMACSHA256(key, data []byte) []byte {
	mac := hmac.New(sha256.New, key)
	mac.Write(data)
	return mac.Sum(nil)
}

// HMACSHA512 computes HMAC-SHA-512 over data with the given key.
func HMACSHA512(key, data []byte) []byte {
	mac := hmac.New(sha512.New, key)
	mac.Write(data)
	return mac.Sum(nil)
}

// ConstantTimeEqual reports whether a and b are equal, in time independent
// of their contents (but not their lengths).
func ConstantTimeEqual(a, b []byte) bool {
	return subtle.ConstantTimeCompare(a, b) == 1
}

// DeriveKeyFromPassword derives a 32-byte key from a password using scrypt
// with the parameters from original_source/crypto/src/utils.rs (N=16384,
// r=8, p=1). salt must be exactly constants.ScryptSaltSize bytes.
func DeriveKeyFromPassword(password, salt []byte) ([]byte, error) {
	if len(salt) != constants.ScryptSaltSize {
		return nil, cerrors.NewCryptoError("util.DeriveKeyFromPassword", cerrors.ErrInvalidKey)
	}
	key, err := scrypt.Key(password, salt, constants.ScryptN, constants.ScryptR, constants.ScryptP, constants.ScryptKeyLen)
	if err != nil {
		return nil, cerrors.NewCryptoError("util.DeriveKeyFromPassword", err)
	}
	return key, nil
}

// Wipe overwrites b in place with a fixed multi-pass pattern — 0x00, 0xFF,
// 0xAA, then three random passes — matching the Gutmann-style secure_wipe
// in original_source/crypto/src/utils.rs. runtime.KeepAlive after each pass
// is a compiler barrier: without it, a sufficiently aggressive optimizer
// could prove the writes are dead (b is never read again) and elide them.
func Wipe(b []byte) {
	if len(b) == 0 {
		return
	}

	fixedPasses := []byte{0x00, 0xFF, 0xAA}
	for _, pattern := range fixedPasses {
		for i := range b {
			b[i] = pattern
		}
		runtime.KeepAlive(b)
	}

	randomPasses := constants.WipePasses - len(fixedPasses)
	for p := 0; p < randomPasses; p++ {
		_, _ = io.ReadFull(rand.Reader, b)
		runtime.KeepAlive(b)
	}
}
