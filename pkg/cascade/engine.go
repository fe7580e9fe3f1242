// Package cascade implements the triple-cascade authenticated-encryption
// engine (C6): XChaCha20-Poly1305 (L1) → AES-256-GCM (L2) →
// ChaCha20-Poly1305 (L3), each under an independent HKDF-SHA-256-derived
// subkey, applied in sequence on encrypt and peeled in reverse on decrypt.
//
// Grounded on the teacher's pkg/tunnel/session.go Encrypt/Decrypt pair (its
// atomic counters and Observer hooks) and on
// original_source/crypto/src/encryption.rs's TripleLayerEncryption,
// which performs the same three-layer sequential seal/peel with a fresh
// nonce per layer per message and a monotonic send counter.
package cascade

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/chakchat/cascadecrypt/internal/constants"
	cerrors "github.com/chakchat/cascadecrypt/internal/errors"
	"github.com/chakchat/cascadecrypt/pkg/kdf"
	"github.com/chakchat/cascadecrypt/pkg/primitives"
	"github.com/chakchat/cascadecrypt/pkg/util"
)

// Engine seals and opens Envelopes under one SessionSecret. It is safe for
// concurrent use by multiple goroutines.
type Engine struct {
	l1 *primitives.L1Cipher
	l2 *primitives.L2Cipher
	l3 *primitives.L3Cipher

	counter atomic.Uint64
	closed  atomic.Bool

	mu       sync.Mutex
	k1, k2, k3 []byte // retained only so Close can wipe them

	observer Observer
}

// NewEngine derives the SubkeyTriple from sessionSecret and constructs the
// three cascade layers. sessionSecret is typically the output of
// pkg/hybrid.Combine or pkg/hybrid.DeriveTrafficKeys.
func NewEngine(sessionSecret []byte) (*Engine, error) {
	triple, err := kdf.DeriveSubkeys(sessionSecret)
	if err != nil {
		return nil, cerrors.NewCryptoError("cascade.NewEngine", err)
	}

	l1, err := primitives.NewL1Cipher(triple.K1)
	if err != nil {
		return nil, cerrors.NewCryptoError("cascade.NewEngine", err)
	}
	l2, err := primitives.NewL2Cipher(triple.K2)
	if err != nil {
		return nil, cerrors.NewCryptoError("cascade.NewEngine", err)
	}
	l3, err := primitives.NewL3Cipher(triple.K3)
	if err != nil {
		return nil, cerrors.NewCryptoError("cascade.NewEngine", err)
	}

	e := &Engine{
		l1:       l1,
		l2:       l2,
		l3:       l3,
		k1:       triple.K1,
		k2:       triple.K2,
		k3:       triple.K3,
		observer: NoOpObserver{},
	}
	return e, nil
}

// SetObserver installs lifecycle/metrics hooks. Pass nil to restore the
// no-op default.
func (e *Engine) SetObserver(observer Observer) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if observer == nil {
		observer = NoOpObserver{}
	}
	e.observer = observer
}

// Encrypt seals plaintext into a fresh Envelope. The per-message counter is
// incremented on every call that passes the closed and size checks,
// including calls that fail later, so a counter value is never reused even
// after an error. Once the counter overflows, every later call returns
// ErrCounterOverflow.
//
// No Clone method is provided: per spec.md §9 cloning an Engine would
// duplicate its counter state and risk nonce/counter reuse across the two
// clones, so each Engine is single-owner for its sessionSecret's lifetime.
func (e *Engine) Encrypt(plaintext []byte) (*Envelope, error) {
	if e.closed.Load() {
		return nil, cerrors.ErrInvalidState
	}
	if len(plaintext) < constants.MinPlaintextSize || len(plaintext) > constants.MaxPlaintextSize {
		return nil, cerrors.NewCryptoError("cascade.Encrypt", cerrors.ErrEncryptionError)
	}

	e.mu.Lock()
	observer := e.observer
	e.mu.Unlock()

	_, done := observer.OnEncrypt(context.Background(), len(plaintext))

	prev := e.counter.Add(1) - 1
	if prev == ^uint64(0) {
		e.counter.Store(^uint64(0))
		observer.OnCounterOverflow()
		done(cerrors.ErrCounterOverflow)
		return nil, cerrors.ErrCounterOverflow
	}
	counter := prev + 1

	env := &Envelope{
		Version:     constants.ProtocolVersion,
		Counter:     counter,
		TimestampMs: time.Now().UnixMilli(),
	}

	msgIDBytes, err := util.Random(8)
	if err != nil {
		done(err)
		return nil, cerrors.NewCryptoError("cascade.Encrypt", err)
	}
	for i, b := range msgIDBytes {
		env.MessageID |= uint64(b) << (8 * (7 - i))
	}

	if err := util.RandomArray(env.Nonce1[:]); err != nil {
		done(err)
		return nil, cerrors.NewCryptoError("cascade.Encrypt", err)
	}
	if err := util.RandomArray(env.Nonce2[:]); err != nil {
		done(err)
		return nil, cerrors.NewCryptoError("cascade.Encrypt", err)
	}
	if err := util.RandomArray(env.Nonce3[:]); err != nil {
		done(err)
		return nil, cerrors.NewCryptoError("cascade.Encrypt", err)
	}

	// spec.md §4.1: AAD is the empty string in the current protocol version;
	// the field is reserved for a future version that binds header fields.
	stage1, err := e.l1.Seal(env.Nonce1[:], plaintext, nil)
	if err != nil {
		done(err)
		return nil, cerrors.NewCryptoError("cascade.Encrypt", cerrors.ErrEncryptionError)
	}
	stage2, err := e.l2.Seal(env.Nonce2[:], stage1, nil)
	if err != nil {
		done(err)
		return nil, cerrors.NewCryptoError("cascade.Encrypt", cerrors.ErrEncryptionError)
	}
	stage3, err := e.l3.Seal(env.Nonce3[:], stage2, nil)
	if err != nil {
		done(err)
		return nil, cerrors.NewCryptoError("cascade.Encrypt", cerrors.ErrEncryptionError)
	}

	env.Ciphertext = stage3
	done(nil)
	return env, nil
}

// Decrypt opens an Envelope produced by Encrypt (on this Engine or any peer
// Engine sharing the same SessionSecret), peeling the three layers in
// reverse order: L3 first, then L2, then L1.
func (e *Engine) Decrypt(env *Envelope) ([]byte, error) {
	if e.closed.Load() {
		return nil, cerrors.ErrInvalidState
	}
	if env.Version != constants.ProtocolVersion {
		return nil, cerrors.NewCryptoError("cascade.Decrypt", fmt.Errorf("%w: %w", cerrors.ErrDecryptionError, cerrors.ErrUnsupportedVersion))
	}
	if len(env.Ciphertext) < constants.CascadeOverhead {
		return nil, fmt.Errorf("%w: %w", cerrors.ErrDecryptionError, cerrors.ErrCiphertextTooShort)
	}

	e.mu.Lock()
	observer := e.observer
	e.mu.Unlock()

	_, done := observer.OnDecrypt(context.Background(), len(env.Ciphertext))

	// AAD matches Encrypt: empty in the current protocol version.
	stage2, err := e.l3.Open(env.Nonce3[:], env.Ciphertext, nil)
	if err != nil {
		observer.OnAuthFailure()
		done(err)
		return nil, cerrors.ErrDecryptionError
	}
	stage1, err := e.l2.Open(env.Nonce2[:], stage2, nil)
	if err != nil {
		observer.OnAuthFailure()
		done(err)
		return nil, cerrors.ErrDecryptionError
	}
	plaintext, err := e.l1.Open(env.Nonce1[:], stage1, nil)
	if err != nil {
		observer.OnAuthFailure()
		done(err)
		return nil, cerrors.ErrDecryptionError
	}

	done(nil)
	return plaintext, nil
}

// Counter returns the number of envelopes this Engine has sealed.
func (e *Engine) Counter() uint64 {
	return e.counter.Load()
}

// Close zeroizes the three cascade subkeys and marks the Engine unusable.
// Per spec.md §4.6.1, a counter overflow or any other fatal condition
// requires the session to be destroyed; Close is that destruction step.
func (e *Engine) Close() {
	if e.closed.Swap(true) {
		return
	}
	util.Wipe(e.k1)
	util.Wipe(e.k2)
	util.Wipe(e.k3)

	e.mu.Lock()
	observer := e.observer
	e.mu.Unlock()
	observer.OnClose()
}
