// Package errors defines the error taxonomy for the Cascade-Crypt engine.
// These errors provide detailed information for debugging while maintaining
// security by not leaking sensitive plaintext or intermediate key material
// in error messages (spec.md §7: failures abort the whole operation and
// return one of a small, enumerated set of error kinds).
package errors

import (
	"errors"
	"fmt"
)

// Wire-visible error kinds (spec.md §6). Callers are only ever expected to
// handle one of these; internal detail (which layer, which HKDF call) is
// attached via CryptoError/ProtocolError wrapping and is debug-only.
var (
	// ErrEncryptionError indicates Engine.Encrypt rejected its input or a
	// layer failed to seal.
	ErrEncryptionError = errors.New("cascade: encryption error")

	// ErrDecryptionError indicates Engine.Decrypt failed authentication at
	// some layer, or the envelope failed a precondition (bad version,
	// empty ciphertext).
	ErrDecryptionError = errors.New("cascade: decryption error")

	// ErrKeyDerivationError indicates an HKDF expand call failed.
	ErrKeyDerivationError = errors.New("kdf: key derivation error")

	// ErrInvalidKey indicates malformed key bytes (wrong size, or the
	// underlying curve/KEM library rejected the encoding).
	ErrInvalidKey = errors.New("crypto: invalid key")

	// ErrInvalidNonce indicates a nonce of the wrong size was supplied.
	ErrInvalidNonce = errors.New("crypto: invalid nonce size")

	// ErrSignatureVerificationFailed indicates Ed25519 verification failed.
	ErrSignatureVerificationFailed = errors.New("identity: signature verification failed")

	// ErrKeyAgreementFailed indicates an ECDH or KEM operation could not
	// produce a shared secret.
	ErrKeyAgreementFailed = errors.New("identity: key agreement failed")
)

// Sentinel errors for cascade/AEAD operations not already covered above.
var (
	// ErrCiphertextTooShort indicates ciphertext is too short to contain a tag.
	ErrCiphertextTooShort = errors.New("cascade: ciphertext too short")

	// ErrCounterOverflow indicates the per-session send counter reached its
	// maximum; per spec.md §4.6.1 this is fatal and the session must be
	// destroyed and replaced.
	ErrCounterOverflow = errors.New("cascade: counter overflow, session must be destroyed")

	// ErrUnsupportedCipherSuite indicates an unrecognized CipherSuite tag.
	ErrUnsupportedCipherSuite = errors.New("cascade: unsupported cipher suite")
)

// Sentinel errors for the hybrid key-agreement / handshake layer.
var (
	// ErrInvalidPublicKey indicates a public key is invalid or malformed.
	ErrInvalidPublicKey = errors.New("handshake: invalid public key")

	// ErrInvalidPrivateKey indicates a private key is invalid or malformed.
	ErrInvalidPrivateKey = errors.New("handshake: invalid private key")

	// ErrInvalidCiphertext indicates a KEM ciphertext is malformed or the
	// wrong size.
	ErrInvalidCiphertext = errors.New("handshake: invalid ciphertext")

	// ErrInvalidMessage indicates a handshake wire message is malformed.
	ErrInvalidMessage = errors.New("handshake: invalid message")

	// ErrUnsupportedVersion indicates an unsupported protocol version.
	ErrUnsupportedVersion = errors.New("handshake: unsupported version")

	// ErrHandshakeFailed indicates the handshake failed.
	ErrHandshakeFailed = errors.New("handshake: failed")

	// ErrInvalidState indicates an operation was attempted in the wrong
	// session lifecycle state.
	ErrInvalidState = errors.New("handshake: invalid state")

	// ErrMessageTooLarge indicates a framed message's length field exceeds
	// ProtocolMaxMessageSize.
	ErrMessageTooLarge = errors.New("handshake: message too large")
)

// Sentinel errors for the peer directory (C8).
var (
	// ErrPeerNotFound indicates Lookup found no fresh record for a username.
	ErrPeerNotFound = errors.New("directory: peer not found")

	// ErrRecordExpired indicates a record existed but its TTL had elapsed.
	ErrRecordExpired = errors.New("directory: record expired")

	// ErrInvalidRecord indicates a PeerRecord failed validation (missing
	// fields, bad signature) before publish.
	ErrInvalidRecord = errors.New("directory: invalid record")

	// ErrDirectoryClosed indicates an operation was attempted after the
	// directory's background reaper was stopped and the store torn down.
	ErrDirectoryClosed = errors.New("directory: closed")
)

// CryptoError wraps a cryptographic error with additional context.
type CryptoError struct {
	Op  string // Operation that failed
	Err error  // Underlying error
}

func (e *CryptoError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *CryptoError) Unwrap() error {
	return e.Err
}

// NewCryptoError creates a new CryptoError.
func NewCryptoError(op string, err error) *CryptoError {
	return &CryptoError{Op: op, Err: err}
}

// ProtocolError wraps a handshake/protocol error with additional context.
type ProtocolError struct {
	Phase string // Protocol phase (e.g., "handshake", "transport")
	Err   error  // Underlying error
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("protocol %s: %v", e.Phase, e.Err)
}

func (e *ProtocolError) Unwrap() error {
	return e.Err
}

// NewProtocolError creates a new ProtocolError.
func NewProtocolError(phase string, err error) *ProtocolError {
	return &ProtocolError{Phase: phase, Err: err}
}

// Is reports whether any error in err's chain matches target.
// This is a convenience wrapper around errors.Is.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
// This is a convenience wrapper around errors.As.
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
