// Package kem wraps ML-KEM-1024 (NIST FIPS 203), the post-quantum
// component of the hybrid key-agreement scheme (C4). Adapted directly from
// the teacher's pkg/crypto/mlkem.go, which already wraps circl's
// mlkem1024 package the way spec.md requires; only the module path,
// package name, and error plumbing changed.
package kem

import (
	"github.com/cloudflare/circl/kem/mlkem/mlkem1024"

	"github.com/chakchat/cascadecrypt/internal/constants"
	cerrors "github.com/chakchat/cascadecrypt/internal/errors"
	"github.com/chakchat/cascadecrypt/pkg/util"
)

// PublicKey wraps an ML-KEM-1024 encapsulation key.
type PublicKey struct {
	key *mlkem1024.PublicKey
}

// PrivateKey wraps an ML-KEM-1024 decapsulation key.
type PrivateKey struct {
	key *mlkem1024.PrivateKey
}

// Keypair is an ML-KEM-1024 key pair for post-quantum key encapsulation.
type Keypair struct {
	EncapsulationKey *PublicKey
	DecapsulationKey *PrivateKey
}

// GenerateKeypair generates a new ML-KEM-1024 key pair from the OS CSPRNG.
func GenerateKeypair() (*Keypair, error) {
	pk, sk, err := mlkem1024.GenerateKeyPair(nil)
	if err != nil {
		return nil, cerrors.NewCryptoError("kem.GenerateKeypair", err)
	}
	return &Keypair{
		EncapsulationKey: &PublicKey{key: pk},
		DecapsulationKey: &PrivateKey{key: sk},
	}, nil
}

// Encapsulate performs ML-KEM-1024 encapsulation against a recipient's
// encapsulation key, returning the ciphertext to send and the resulting
// shared secret. The shared secret must never be used as a key directly —
// always route it through pkg/hybrid's combiner first.
func Encapsulate(ek *PublicKey) (ciphertext, sharedSecret []byte, err error) {
	if ek == nil || ek.key == nil {
		return nil, nil, cerrors.NewCryptoError("kem.Encapsulate", cerrors.ErrInvalidPublicKey)
	}

	ct := make([]byte, mlkem1024.CiphertextSize)
	ss := make([]byte, mlkem1024.SharedKeySize)

	seed, err := util.Random(mlkem1024.EncapsulationSeedSize)
	if err != nil {
		return nil, nil, cerrors.NewCryptoError("kem.Encapsulate", err)
	}
	defer util.Wipe(seed)

	ek.key.EncapsulateTo(ct, ss, seed)
	return ct, ss, nil
}

// Decapsulate recovers the shared secret from a ciphertext using the
// recipient's decapsulation key. Per FIPS 203, a malformed ciphertext does
// not cause an error; implicit rejection returns a pseudorandom value
// indistinguishable from a valid shared secret, so no oracle is given to an
// attacker probing ciphertext validity.
func Decapsulate(dk *PrivateKey, ciphertext []byte) ([]byte, error) {
	if dk == nil || dk.key == nil {
		return nil, cerrors.NewCryptoError("kem.Decapsulate", cerrors.ErrInvalidPrivateKey)
	}
	if len(ciphertext) != constants.MLKEMCiphertextSize {
		return nil, cerrors.NewCryptoError("kem.Decapsulate", cerrors.ErrInvalidCiphertext)
	}

	ss := make([]byte, mlkem1024.SharedKeySize)
	dk.key.DecapsulateTo(ss, ciphertext)
	return ss, nil
}

// Bytes returns the wire-encoded public key.
func (pk *PublicKey) Bytes() []byte {
	if pk == nil || pk.key == nil {
		return nil
	}
	buf := make([]byte, mlkem1024.PublicKeySize)
	pk.key.Pack(buf)
	return buf
}

// PublicKeyBytes returns the wire-encoded encapsulation key.
func (kp *Keypair) PublicKeyBytes() []byte {
	return kp.EncapsulationKey.Bytes()
}

// ParsePublicKey parses an ML-KEM-1024 public key from its encoded form.
func ParsePublicKey(data []byte) (*PublicKey, error) {
	if len(data) != constants.MLKEMPublicKeySize {
		return nil, cerrors.NewCryptoError("kem.ParsePublicKey", cerrors.ErrInvalidPublicKey)
	}
	pk := new(mlkem1024.PublicKey)
	if err := pk.Unpack(data); err != nil {
		return nil, cerrors.NewCryptoError("kem.ParsePublicKey", err)
	}
	return &PublicKey{key: pk}, nil
}

// Zeroize drops the private key reference. circl does not expose the raw
// key material for in-place wiping, so this only releases the handle for
// GC; callers holding the seed used to derive a deterministic keypair are
// responsible for wiping that seed themselves (see pkg/identity).
func (kp *Keypair) Zeroize() {
	kp.DecapsulationKey = nil
	kp.EncapsulationKey = nil
}
