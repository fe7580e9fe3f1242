// Package cascadecrypt provides the cryptographic core of a peer-to-peer
// secure messenger: hybrid classical+post-quantum key agreement and a
// triple-cascade authenticated encryption engine for the resulting session.
//
// Cascadecrypt combines ML-KEM-1024 (NIST FIPS 203) post-quantum cryptography
// with X25519 (RFC 7748) classical cryptography for defense-in-depth security
// against both classical and quantum attacks, and layers three independent
// AEAD ciphers over the combined secret so that a session stays confidential
// even if one cipher is later broken.
//
// # Quick Start
//
// For a complete handshake and encrypted session:
//
//	import "github.com/chakchat/cascadecrypt/pkg/session"
//
//	// Responder
//	listener, _ := net.Listen("tcp", ":8443")
//	conn, _ := listener.Accept()
//	sess, _ := session.Accept(conn, serverIdentity, nil)
//	data, _ := sess.Receive()
//
//	// Initiator
//	client, _ := session.Dial(ctx, "tcp", "localhost:8443", clientIdentity, nil)
//	client.Send([]byte("Hello!"))
//
// For low-level hybrid key agreement:
//
//	import "github.com/chakchat/cascadecrypt/pkg/hybrid"
//
//	classicalSecret, _ := identity.ComputeSharedSecret(local.X25519Private, peer.X25519Public)
//	ciphertext, quantumSecret, _ := kem.Encapsulate(peerKEMPublicKey)
//	sessionSecret, _ := hybrid.Combine(classicalSecret, quantumSecret)
//
// # Package Structure
//
// The library is organized into several packages:
//
//   - pkg/identity: X25519 key agreement and Ed25519 identity signing keys
//   - pkg/kem: ML-KEM-1024 key encapsulation
//   - pkg/hybrid: combines classical and post-quantum shared secrets via HKDF
//   - pkg/cascade: triple-cascade authenticated encryption engine
//   - pkg/protocol: wire handshake message definitions and encoding
//   - pkg/session: drives the handshake over a net.Conn and hands back a
//     live cascade.Engine bound to the negotiated session secret
//   - pkg/directory: signed peer directory for publish/lookup of endpoints
//   - pkg/ratelimit: per-peer and global rate limiting for handshakes
//   - pkg/metrics: structured logging, tracing, and Prometheus metrics
//   - internal/constants: security parameters and protocol constants
//   - internal/errors: custom error types for detailed error handling
//
// # Security Properties
//
// The hybrid handshake and cascade construction provide:
//
//   - Post-quantum security: ML-KEM-1024 (NIST Category 5, ~256-bit security)
//   - Classical security: X25519 ECDH (128-bit security)
//   - Hybrid guarantee: secure if EITHER algorithm is secure
//   - Forward secrecy: ephemeral keys generated for each session
//   - Authenticated encryption: XChaCha20-Poly1305 -> AES-256-GCM -> ChaCha20-Poly1305
//   - Per-message counters: each envelope carries a monotonic counter; Decrypt
//     does not check it, so replayed envelopes are not rejected
//
// # Testing
//
// The library includes comprehensive package-level tests:
//
//	go test ./...                        # All tests
//	go test -run TestKAT ./pkg/primitives # Known Answer Tests
//	go test -bench=. ./pkg/protocol       # Benchmarks
//
// # Performance
//
// Typical performance on modern hardware (AMD64):
//
//   - Hybrid key generation: ~800 µs
//   - Hybrid encapsulation: ~900 µs
//   - Hybrid decapsulation: ~1000 µs
//   - AES-256-GCM encryption: ~2 GB/s (hardware-accelerated)
//   - ChaCha20-Poly1305: ~800 MB/s (software)
//
// # References
//
//   - NIST FIPS 203: Module-Lattice-Based Key-Encapsulation Mechanism Standard
//   - RFC 7748: Elliptic Curves for Security
//   - RFC 5869: HMAC-based Extract-and-Expand Key Derivation Function (HKDF)
//
// For more information, see: https://github.com/chakchat/cascadecrypt
package cascadecrypt
