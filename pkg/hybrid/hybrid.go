// Package hybrid implements the hybrid classical+post-quantum combiner
// (C5): it binds an X25519 ECDH shared secret and an ML-KEM-1024 shared
// secret into one SessionSecret that remains secure as long as either
// primitive holds.
//
// Adapted from the teacher's pkg/crypto/kdf.go DeriveCHKEMSecret, which
// combines the same two secrets (plus a transcript hash) via SHAKE-256.
// spec.md mandates HKDF-SHA-256-Expand over the concatenation
// classical||quantum with info="app_hybrid_secret" instead, so the
// combiner here calls pkg/kdf rather than a XOF, but keeps the teacher's
// split between "combine the master secret" (Combine) and "derive
// traffic/handshake subkeys from it" (DeriveHandshakeKeys/DeriveTrafficKeys).
package hybrid

import (
	"github.com/chakchat/cascadecrypt/internal/constants"
	cerrors "github.com/chakchat/cascadecrypt/internal/errors"
	"github.com/chakchat/cascadecrypt/pkg/kdf"
	"github.com/chakchat/cascadecrypt/pkg/util"
)

// Combine derives the 32-byte SessionSecret from a classical (X25519) and a
// quantum (ML-KEM-1024) shared secret: SessionSecret = HKDF-SHA-256-Expand(
// extract_key = classical||quantum, info = "app_hybrid_secret", 32).
//
// Security: IND-CCA2 if either X25519 or ML-KEM-1024 holds, since an
// attacker must break both inputs to distinguish the output from random.
func Combine(classicalSecret, quantumSecret []byte) ([]byte, error) {
	if len(classicalSecret) != constants.X25519SharedSecretSize {
		return nil, cerrors.NewCryptoError("hybrid.Combine", cerrors.ErrInvalidKey)
	}
	if len(quantumSecret) != constants.MLKEMSharedSecretSize {
		return nil, cerrors.NewCryptoError("hybrid.Combine", cerrors.ErrInvalidKey)
	}

	concat := make([]byte, 0, len(classicalSecret)+len(quantumSecret))
	concat = append(concat, classicalSecret...)
	concat = append(concat, quantumSecret...)
	defer util.Wipe(concat)

	sessionSecret, err := kdf.Expand(concat, constants.HybridCombinerInfo, constants.HybridSharedSecretSize)
	if err != nil {
		return nil, cerrors.NewCryptoError("hybrid.Combine", err)
	}
	return sessionSecret, nil
}

// DeriveHandshakeKeys derives a pair of independent AEAD keys used to
// protect handshake-phase messages (e.g. peer-directory publish/lookup
// exchanged before steady-state traffic keys exist), separate from the
// SessionSecret used by pkg/cascade.
func DeriveHandshakeKeys(sessionSecret []byte) (initiatorKey, responderKey []byte, err error) {
	if len(sessionSecret) != constants.HybridSharedSecretSize {
		return nil, nil, cerrors.NewCryptoError("hybrid.DeriveHandshakeKeys", cerrors.ErrInvalidKey)
	}

	material, err := kdf.Expand(sessionSecret, constants.HandshakeTrafficInfo, 2*constants.SubkeySize)
	if err != nil {
		return nil, nil, err
	}
	return material[:constants.SubkeySize], material[constants.SubkeySize:], nil
}

// DeriveTrafficKeys derives a pair of independent steady-state data keys
// from the SessionSecret, domain-separated from handshake keys so a
// compromise of one phase's keys does not expose the other's.
func DeriveTrafficKeys(sessionSecret []byte) (initiatorKey, responderKey []byte, err error) {
	if len(sessionSecret) != constants.HybridSharedSecretSize {
		return nil, nil, cerrors.NewCryptoError("hybrid.DeriveTrafficKeys", cerrors.ErrInvalidKey)
	}

	material, err := kdf.Expand(sessionSecret, constants.DataTrafficInfo, 2*constants.SubkeySize)
	if err != nil {
		return nil, nil, err
	}
	return material[:constants.SubkeySize], material[constants.SubkeySize:], nil
}
