// Package constants defines security parameters and wire constants for the
// Cascade-Crypt messenger core: the hybrid key-agreement layer and the
// triple-cascade authenticated-encryption engine built on top of it.
package constants

// Protocol version and domain identification.
const (
	// ProtocolVersion is the wire version byte carried in every Envelope.
	// Any change to HKDF labels, layer ordering, nonce sizes, or subkey
	// count must bump this.
	ProtocolVersion uint8 = 1

	// ProtocolName is used for domain separation and display.
	ProtocolName = "Cascade-Crypt-v1"
)

// ML-KEM-1024 parameters (NIST FIPS 203), NIST Category 5 security.
const (
	MLKEMPublicKeySize    = 1568
	MLKEMPrivateKeySize   = 3168
	MLKEMCiphertextSize   = 1568
	MLKEMSharedSecretSize = 32
)

// X25519 parameters (RFC 7748).
const (
	X25519PublicKeySize    = 32
	X25519PrivateKeySize   = 32
	X25519SharedSecretSize = 32
)

// Ed25519 parameters (RFC 8032).
const (
	Ed25519SeedSize      = 32
	Ed25519PublicKeySize = 32
	Ed25519SignatureSize = 64
)

// Cascade AEAD layer parameters.
const (
	// SubkeySize is the width of each of the three cascade subkeys (K1,K2,K3).
	SubkeySize = 32

	// L1NonceSize is the XChaCha20-Poly1305 nonce size (outer draw, inner wrap).
	L1NonceSize = 24
	// L2NonceSize is the AES-256-GCM nonce size.
	L2NonceSize = 12
	// L3NonceSize is the ChaCha20-Poly1305 (IETF) nonce size.
	L3NonceSize = 12

	// AEADTagSize is the authentication tag size common to all three layers.
	AEADTagSize = 16

	// CascadeOverhead is the total ciphertext expansion of all three layers combined.
	CascadeOverhead = 3 * AEADTagSize
)

// Key derivation domain separators. Part of the wire contract; changing
// any of these requires a ProtocolVersion bump.
const (
	// KDFLabelK1/K2/K3 are the HKDF-SHA-256 expand labels for SubkeyTriple
	// derivation (C2), 24 ASCII bytes each per spec.
	KDFLabelK1 = "app_encryption_key_1____"
	KDFLabelK2 = "app_encryption_key_2____"
	KDFLabelK3 = "app_encryption_key_3____"

	// HybridCombinerInfo is the HKDF-Expand info string for the hybrid
	// combiner (C5).
	HybridCombinerInfo = "app_hybrid_secret"

	// IdentityX25519Label and IdentityEd25519Label domain-separate the two
	// sub-seeds derived from one IdentityKeypair seed (spec.md §9 open
	// question resolution).
	IdentityX25519Label  = "identity-x25519-v1"
	IdentityEd25519Label = "identity-ed25519-v1"

	// HandshakeTrafficInfo and DataTrafficInfo separate handshake-phase
	// keys from steady-state traffic keys derived from the same hybrid
	// secret (supplements spec.md, see SPEC_FULL.md §4.5).
	HandshakeTrafficInfo = "cascade-handshake-traffic-v1"
	DataTrafficInfo      = "cascade-data-traffic-v1"
)

// Message size limits (spec.md §4.6.1).
const (
	// MinPlaintextSize is the minimum plaintext length accepted by Encrypt.
	MinPlaintextSize = 1

	// MaxPlaintextSize is the maximum plaintext length accepted by Encrypt (100 MiB).
	MaxPlaintextSize = 100 * 1024 * 1024
)

// Envelope wire layout (spec.md §6).
const (
	EnvelopeVersionSize       = 1
	EnvelopeCounterSize       = 8
	EnvelopeMessageIDSize     = 8
	EnvelopeTimestampSize     = 8
	EnvelopeCiphertextLenSize = 4

	// EnvelopeHeaderSize is every fixed-width field before the
	// variable-length ciphertext.
	EnvelopeHeaderSize = EnvelopeVersionSize + EnvelopeCounterSize + EnvelopeMessageIDSize +
		EnvelopeTimestampSize + L1NonceSize + L2NonceSize + L3NonceSize + EnvelopeCiphertextLenSize
)

// CH-KEM-style hybrid sizes (combined classical + post-quantum material).
const (
	// HybridPublicKeySize is the combined size of an X25519 public key and
	// an ML-KEM-1024 encapsulation key.
	HybridPublicKeySize = X25519PublicKeySize + MLKEMPublicKeySize

	// HybridCiphertextSize is the combined size of an X25519 ephemeral
	// public key and an ML-KEM-1024 ciphertext.
	HybridCiphertextSize = X25519PublicKeySize + MLKEMCiphertextSize

	// HybridSharedSecretSize is the size of the final derived session secret.
	HybridSharedSecretSize = 32
)

// Password KDF parameters (scrypt, C7).
const (
	ScryptN      = 1 << 14
	ScryptR      = 8
	ScryptP      = 1
	ScryptKeyLen = 32
	// ScryptSaltSize is the required caller-supplied salt size.
	ScryptSaltSize = 32
)

// Secure wipe parameters (C7). Ordering and pass count are fixed for
// determinism of tests.
const (
	WipePasses = 6 // 0x00, 0xFF, 0xAA, then 3 random passes (spec requires >= 3 random)
)

// Wire framing limits for pkg/protocol's handshake/directory message codec.
const (
	// ProtocolMaxMessageSize bounds a single framed message read from the
	// wire, preventing a hostile length field from driving an unbounded
	// allocation.
	ProtocolMaxMessageSize = 65536
)

// Peer directory parameters (C8).
const (
	// DefaultRecordTTLSeconds is the default freshness window for a PeerRecord.
	DefaultRecordTTLSeconds = 3600

	// RoutingTableBuckets is the number of distance buckets (160-bit id space).
	RoutingTableBuckets = 160

	// RoutingTableK is the maximum number of entries retained per bucket.
	RoutingTableK = 20

	// NodeIDSize is the width of a DirectoryNodeId in bytes (160 bits).
	NodeIDSize = 20
)

// CipherSuite identifies which AEAD cascade layer a given key/nonce pair
// belongs to. Used for tagged dispatch, never for runtime polymorphism
// (spec.md §9: "monomorphic bindings behind a tagged selection").
type CipherSuite uint8

const (
	SuiteXChaCha20Poly1305 CipherSuite = 1 // L1
	SuiteAES256GCM         CipherSuite = 2 // L2
	SuiteChaCha20Poly1305  CipherSuite = 3 // L3
)

// String returns a human-readable name for the cipher suite.
func (cs CipherSuite) String() string {
	switch cs {
	case SuiteXChaCha20Poly1305:
		return "XChaCha20-Poly1305"
	case SuiteAES256GCM:
		return "AES-256-GCM"
	case SuiteChaCha20Poly1305:
		return "ChaCha20-Poly1305"
	default:
		return "Unknown"
	}
}
