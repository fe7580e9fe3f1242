// Package identity implements long-term peer identity keypairs (C3):
// an X25519 key for ECDH and an Ed25519 key for signatures, both derived
// from one 32-byte seed.
//
// original_source/crypto/src/key_exchange.rs's KeyPair::generate derives
// both keys from the SAME seed bytes directly — an X25519 StaticSecret and
// an Ed25519 SigningKey built from identical raw key material. spec.md §9
// flags this as an open question: reusing one secret scalar across two
// distinct algorithms is a recognized smell (a break in one primitive's key
// material handling could in principle leak into the other, and some
// signature/KEX combinations are not proven independent under key reuse).
//
// The resolution implemented here: the seed is first expanded through
// HKDF-SHA-256 into two independent, domain-separated 32-byte sub-seeds —
// one labeled for X25519, one for Ed25519 — before either algorithm ever
// sees key material. The two curve keys are then cryptographically
// unrelated even though both trace back to the same root seed, while
// GenerateIdentity/NewIdentityFromSeed keeps the teacher's single-seed
// ergonomics (one seed in, one keypair out).
package identity

import (
	"crypto/ecdh"
	"crypto/ed25519"

	"github.com/chakchat/cascadecrypt/internal/constants"
	cerrors "github.com/chakchat/cascadecrypt/internal/errors"
	"github.com/chakchat/cascadecrypt/pkg/kdf"
	"github.com/chakchat/cascadecrypt/pkg/util"
)

// Keypair is a peer's long-term identity: an X25519 keypair for ECDH and an
// Ed25519 keypair for signing, both derived from one seed.
type Keypair struct {
	X25519Private *ecdh.PrivateKey
	X25519Public  *ecdh.PublicKey

	Ed25519Private ed25519.PrivateKey
	Ed25519Public  ed25519.PublicKey
}

// GenerateIdentity creates a new identity from fresh CSPRNG output.
func GenerateIdentity() (*Keypair, error) {
	seed, err := util.Random(constants.Ed25519SeedSize)
	if err != nil {
		return nil, cerrors.NewCryptoError("identity.GenerateIdentity", err)
	}
	defer util.Wipe(seed)

	return NewIdentityFromSeed(seed)
}

// NewIdentityFromSeed deterministically derives a Keypair from a 32-byte
// seed. The same seed always yields the same X25519 and Ed25519 keys.
func NewIdentityFromSeed(seed []byte) (*Keypair, error) {
	if len(seed) != constants.Ed25519SeedSize {
		return nil, cerrors.NewCryptoError("identity.NewIdentityFromSeed", cerrors.ErrInvalidKey)
	}

	x25519Seed, err := kdf.Expand(seed, constants.IdentityX25519Label, constants.X25519PrivateKeySize)
	if err != nil {
		return nil, cerrors.NewCryptoError("identity.NewIdentityFromSeed", err)
	}
	defer util.Wipe(x25519Seed)

	ed25519Seed, err := kdf.Expand(seed, constants.IdentityEd25519Label, constants.Ed25519SeedSize)
	if err != nil {
		return nil, cerrors.NewCryptoError("identity.NewIdentityFromSeed", err)
	}
	defer util.Wipe(ed25519Seed)

	curve := ecdh.X25519()
	xPriv, err := curve.NewPrivateKey(x25519Seed)
	if err != nil {
		return nil, cerrors.NewCryptoError("identity.NewIdentityFromSeed", cerrors.ErrInvalidKey)
	}

	edPriv := ed25519.NewKeyFromSeed(ed25519Seed)

	return &Keypair{
		X25519Private:  xPriv,
		X25519Public:   xPriv.PublicKey(),
		Ed25519Private: edPriv,
		Ed25519Public:  edPriv.Public().(ed25519.PublicKey),
	}, nil
}

// ComputeSharedSecret runs X25519 ECDH between the local private key and a
// peer's public key, returning the raw 32-byte shared secret. The result
// must never be used as a key directly — it is always routed through
// pkg/hybrid's combiner before use.
func ComputeSharedSecret(private *ecdh.PrivateKey, peerPublic *ecdh.PublicKey) ([]byte, error) {
	if private == nil {
		return nil, cerrors.NewCryptoError("identity.ComputeSharedSecret", cerrors.ErrInvalidPrivateKey)
	}
	if peerPublic == nil {
		return nil, cerrors.NewCryptoError("identity.ComputeSharedSecret", cerrors.ErrInvalidPublicKey)
	}

	secret, err := private.ECDH(peerPublic)
	if err != nil {
		return nil, cerrors.NewCryptoError("identity.ComputeSharedSecret", cerrors.ErrKeyAgreementFailed)
	}
	return secret, nil
}

// Sign produces an Ed25519 signature over message using the identity's
// signing key.
func (kp *Keypair) Sign(message []byte) []byte {
	return ed25519.Sign(kp.Ed25519Private, message)
}

// Verify checks an Ed25519 signature over message against a public key.
func Verify(public ed25519.PublicKey, message, signature []byte) error {
	if len(public) != ed25519.PublicKeySize {
		return cerrors.NewCryptoError("identity.Verify", cerrors.ErrInvalidPublicKey)
	}
	if !ed25519.Verify(public, message, signature) {
		return cerrors.ErrSignatureVerificationFailed
	}
	return nil
}

// ParseX25519PublicKey parses a wire-encoded X25519 public key.
func ParseX25519PublicKey(data []byte) (*ecdh.PublicKey, error) {
	if len(data) != constants.X25519PublicKeySize {
		return nil, cerrors.NewCryptoError("identity.ParseX25519PublicKey", cerrors.ErrInvalidPublicKey)
	}
	pub, err := ecdh.X25519().NewPublicKey(data)
	if err != nil {
		return nil, cerrors.NewCryptoError("identity.ParseX25519PublicKey", cerrors.ErrInvalidPublicKey)
	}
	return pub, nil
}

// PublicKeyBytes returns the wire-encoded X25519 public key.
func (kp *Keypair) PublicKeyBytes() []byte {
	return kp.X25519Public.Bytes()
}

// Zeroize erases the private key handles. The underlying crypto/ecdh and
// crypto/ed25519 types do not expose their internal byte storage for
// wiping; dropping the references lets the GC reclaim them, and the seed
// material that produced them is wiped by the caller via defer in
// GenerateIdentity/NewIdentityFromSeed.
func (kp *Keypair) Zeroize() {
	kp.X25519Private = nil
	kp.X25519Public = nil
	kp.Ed25519Private = nil
	kp.Ed25519Public = nil
}
