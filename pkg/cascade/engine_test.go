package cascade_test

import (
	"bytes"
	"testing"

	"github.com/chakchat/cascadecrypt/internal/constants"
	cerrors "github.com/chakchat/cascadecrypt/internal/errors"
	"github.com/chakchat/cascadecrypt/pkg/cascade"
)

func fixedSecret(b byte) []byte {
	s := make([]byte, constants.HybridSharedSecretSize)
	for i := range s {
		s[i] = b
	}
	return s
}

// TestRoundTrip is scenario S1: encrypt then decrypt recovers the original
// plaintext exactly.
func TestRoundTrip(t *testing.T) {
	engine, err := cascade.NewEngine(fixedSecret(0x01))
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	defer engine.Close()

	plaintext := []byte("the quick brown fox jumps over the lazy dog")
	env, err := engine.Encrypt(plaintext)
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}

	got, err := engine.Decrypt(env)
	if err != nil {
		t.Fatalf("Decrypt: %v", err)
	}
	if !bytes.Equal(got, plaintext) {
		t.Errorf("round trip mismatch: got %q, want %q", got, plaintext)
	}
}

// TestLargeMessage mirrors original_source/crypto/src/encryption.rs's 10MB
// large-message round-trip scenario.
func TestLargeMessage(t *testing.T) {
	engine, err := cascade.NewEngine(fixedSecret(0x02))
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	defer engine.Close()

	plaintext := bytes.Repeat([]byte{0x5A}, 10*1024*1024)
	env, err := engine.Encrypt(plaintext)
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}
	got, err := engine.Decrypt(env)
	if err != nil {
		t.Fatalf("Decrypt: %v", err)
	}
	if !bytes.Equal(got, plaintext) {
		t.Error("large message round trip mismatch")
	}
}

// TestCrossEngineSameSecretInteroperate verifies two independently built
// Engines sharing a session secret (as two ends of a conversation would)
// can decrypt each other's envelopes.
func TestCrossEngineSameSecretInteroperate(t *testing.T) {
	secret := fixedSecret(0x03)
	sender, err := cascade.NewEngine(secret)
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	defer sender.Close()
	receiver, err := cascade.NewEngine(secret)
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	defer receiver.Close()

	plaintext := []byte("cross-engine message")
	env, err := sender.Encrypt(plaintext)
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}
	got, err := receiver.Decrypt(env)
	if err != nil {
		t.Fatalf("Decrypt: %v", err)
	}
	if !bytes.Equal(got, plaintext) {
		t.Error("cross-engine round trip mismatch")
	}
}

// TestCrossKeyDecryptFails mirrors original_source's cross-key-decrypt
// failure scenario: an Engine built from a different secret must not be
// able to open another Engine's envelope.
func TestCrossKeyDecryptFails(t *testing.T) {
	sender, err := cascade.NewEngine(fixedSecret(0xA1))
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	defer sender.Close()
	attacker, err := cascade.NewEngine(fixedSecret(0xB2))
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	defer attacker.Close()

	env, err := sender.Encrypt([]byte("secret data"))
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}
	if _, err := attacker.Decrypt(env); err == nil {
		t.Error("Decrypt succeeded under the wrong session secret")
	}
}

// TestCounterIncrementsPerMessage verifies each Encrypt call consumes a
// distinct, monotonically increasing counter value.
func TestCounterIncrementsPerMessage(t *testing.T) {
	engine, err := cascade.NewEngine(fixedSecret(0x04))
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	defer engine.Close()

	var prev uint64
	for i := 0; i < 5; i++ {
		env, err := engine.Encrypt([]byte("msg"))
		if err != nil {
			t.Fatalf("Encrypt: %v", err)
		}
		if i > 0 && env.Counter != prev+1 {
			t.Errorf("counter = %d, want %d", env.Counter, prev+1)
		}
		prev = env.Counter
	}
	if engine.Counter() != 5 {
		t.Errorf("Counter() = %d, want 5", engine.Counter())
	}
}

// TestEmptyPlaintextRejected verifies Encrypt enforces MinPlaintextSize.
func TestEmptyPlaintextRejected(t *testing.T) {
	engine, err := cascade.NewEngine(fixedSecret(0x05))
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	defer engine.Close()

	if _, err := engine.Encrypt(nil); !cerrors.Is(err, cerrors.ErrEncryptionError) {
		t.Errorf("Encrypt(nil) = %v, want ErrEncryptionError", err)
	}
}

// TestOversizedPlaintextRejected verifies Encrypt enforces MaxPlaintextSize.
func TestOversizedPlaintextRejected(t *testing.T) {
	engine, err := cascade.NewEngine(fixedSecret(0x06))
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	defer engine.Close()

	oversized := make([]byte, constants.MaxPlaintextSize+1)
	if _, err := engine.Encrypt(oversized); !cerrors.Is(err, cerrors.ErrEncryptionError) {
		t.Errorf("Encrypt(oversized) = %v, want ErrEncryptionError", err)
	}
}

// TestFirstEnvelopeCounterIsOne is scenario S1's counter assertion:
// spec.md §4.6.1 step 5 and §8 invariant 3 require the first envelope
// sealed by a fresh Engine to carry counter 1, and the k-th envelope to
// carry counter k, with secret = 0x2A repeated and plaintext
// "Hello, World!" as the literal S1 fixture.
func TestFirstEnvelopeCounterIsOne(t *testing.T) {
	engine, err := cascade.NewEngine(fixedSecret(0x2A))
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	defer engine.Close()

	env, err := engine.Encrypt([]byte("Hello, World!"))
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}
	if env.Counter != 1 {
		t.Errorf("first envelope Counter = %d, want 1", env.Counter)
	}

	for k := uint64(2); k <= 4; k++ {
		env, err := engine.Encrypt([]byte("Hello, World!"))
		if err != nil {
			t.Fatalf("Encrypt: %v", err)
		}
		if env.Counter != k {
			t.Errorf("envelope %d Counter = %d, want %d", k, env.Counter, k)
		}
	}
}

// TestTamperedEnvelopeHeaderFieldsDoNotFailDecryption documents current,
// intentional behavior: spec.md §4.1 fixes AAD at the empty string for this
// protocol version, so the counter, message ID and timestamp header fields
// travel unauthenticated by the cascade layers themselves (the nonces are
// inputs to the layers, so changing one does fail decryption).
func TestTamperedEnvelopeHeaderFieldsDoNotFailDecryption(t *testing.T) {
	engine, err := cascade.NewEngine(fixedSecret(0x07))
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	defer engine.Close()

	env, err := engine.Encrypt([]byte("message"))
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}
	env.Counter++

	if _, err := engine.Decrypt(env); err != nil {
		t.Errorf("Decrypt failed after only the counter field changed: %v", err)
	}
}

// TestTamperedCiphertextFailsDecryption verifies any bit flip in the final
// ciphertext is detected.
func TestTamperedCiphertextFailsDecryption(t *testing.T) {
	engine, err := cascade.NewEngine(fixedSecret(0x08))
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	defer engine.Close()

	env, err := engine.Encrypt([]byte("message"))
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}
	env.Ciphertext[0] ^= 0xFF

	if _, err := engine.Decrypt(env); err == nil {
		t.Error("Decrypt succeeded after the ciphertext was tampered with")
	}
}

// TestNoncesAreUniquePerMessage verifies Encrypt draws fresh nonces per
// call rather than reusing them.
func TestNoncesAreUniquePerMessage(t *testing.T) {
	engine, err := cascade.NewEngine(fixedSecret(0x09))
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	defer engine.Close()

	env1, err := engine.Encrypt([]byte("message one"))
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}
	env2, err := engine.Encrypt([]byte("message two"))
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}

	if env1.Nonce1 == env2.Nonce1 {
		t.Error("L1 nonce reused across messages")
	}
	if env1.Nonce2 == env2.Nonce2 {
		t.Error("L2 nonce reused across messages")
	}
	if env1.Nonce3 == env2.Nonce3 {
		t.Error("L3 nonce reused across messages")
	}
}

// TestEncryptAfterCloseFails verifies a closed Engine refuses further use
// (spec.md §4.6.1: a fatal condition destroys the session).
func TestEncryptAfterCloseFails(t *testing.T) {
	engine, err := cascade.NewEngine(fixedSecret(0x0A))
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	engine.Close()

	if _, err := engine.Encrypt([]byte("message")); !cerrors.Is(err, cerrors.ErrInvalidState) {
		t.Errorf("Encrypt after Close = %v, want ErrInvalidState", err)
	}
}

// TestDecryptAfterCloseFails verifies Decrypt is also refused post-Close.
func TestDecryptAfterCloseFails(t *testing.T) {
	engine, err := cascade.NewEngine(fixedSecret(0x0B))
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	env, err := engine.Encrypt([]byte("message"))
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}
	engine.Close()

	if _, err := engine.Decrypt(env); !cerrors.Is(err, cerrors.ErrInvalidState) {
		t.Errorf("Decrypt after Close = %v, want ErrInvalidState", err)
	}
}

// TestDecryptRejectsShortCiphertext verifies the overhead precondition.
func TestDecryptRejectsShortCiphertext(t *testing.T) {
	engine, err := cascade.NewEngine(fixedSecret(0x0C))
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	defer engine.Close()

	env := &cascade.Envelope{Version: constants.ProtocolVersion, Ciphertext: []byte{0x01, 0x02}}
	if _, err := engine.Decrypt(env); !cerrors.Is(err, cerrors.ErrCiphertextTooShort) {
		t.Errorf("Decrypt with short ciphertext = %v, want ErrCiphertextTooShort", err)
	}
}

// TestCloseIsIdempotent verifies calling Close twice does not panic.
func TestCloseIsIdempotent(t *testing.T) {
	engine, err := cascade.NewEngine(fixedSecret(0x0D))
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	engine.Close()
	engine.Close()
}
