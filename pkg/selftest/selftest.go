// Package selftest implements FIPS 140-3-style Conditional Self-Tests
// (CST) for the Cascade-Crypt key-agreement primitives: a pairwise
// consistency test on every freshly generated keypair, and a health check
// on the CSPRNG used to draw them.
//
// Grounded on the teacher's pkg/crypto/cst.go, split across the teacher's
// monolithic crypto package's pairwise tests for X25519/ML-KEM into one
// entry point per keypair type in this module's pkg/identity and pkg/kem.
package selftest

import (
	"bytes"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/chakchat/cascadecrypt/pkg/identity"
	"github.com/chakchat/cascadecrypt/pkg/kem"
	"github.com/chakchat/cascadecrypt/pkg/util"
)

// Config controls which Conditional Self-Tests run.
type Config struct {
	// EnablePairwiseTest enables pairwise consistency tests on key generation.
	EnablePairwiseTest bool

	// EnableRNGHealthCheck enables periodic health checks on RNG output.
	EnableRNGHealthCheck bool

	// RNGHealthCheckInterval is how many Random calls elapse between full
	// health checks.
	RNGHealthCheckInterval uint64
}

// DefaultConfig returns the default CST configuration: in FIPS mode every
// test is enabled; in standard mode every test is disabled, matching the
// teacher's DefaultCSTConfig.
func DefaultConfig() Config {
	return Config{
		EnablePairwiseTest:     FIPSMode(),
		EnableRNGHealthCheck:   FIPSMode(),
		RNGHealthCheckInterval: 1000,
	}
}

var (
	config     Config
	configOnce sync.Once
	rngCalls   atomic.Uint64
)

// Init sets a custom CST configuration. Must be called before any
// cryptographic operation that should observe it; if never called, the
// first CST-aware call installs DefaultConfig.
func Init(c Config) {
	configOnce.Do(func() { config = c })
}

func getConfig() Config {
	configOnce.Do(func() { config = DefaultConfig() })
	return config
}

// Result is the outcome of a single self-test.
type Result struct {
	Passed bool
	Err    error
}

// PairwiseConsistencyIdentity verifies a freshly generated identity.Keypair
// is internally consistent: X25519 ECDH agrees in both directions against
// a disposable test peer, and Ed25519 can verify its own signature.
func PairwiseConsistencyIdentity(kp *identity.Keypair) *Result {
	if kp == nil || kp.X25519Private == nil || kp.Ed25519Private == nil {
		return &Result{Err: fmt.Errorf("selftest: invalid identity keypair")}
	}

	testKP, err := identity.GenerateIdentity()
	if err != nil {
		return &Result{Err: fmt.Errorf("selftest: generating test peer: %w", err)}
	}

	secret1, err := identity.ComputeSharedSecret(kp.X25519Private, testKP.X25519Public)
	if err != nil {
		return &Result{Err: fmt.Errorf("selftest: ECDH leg 1: %w", err)}
	}
	secret2, err := identity.ComputeSharedSecret(testKP.X25519Private, kp.X25519Public)
	if err != nil {
		return &Result{Err: fmt.Errorf("selftest: ECDH leg 2: %w", err)}
	}
	if !bytes.Equal(secret1, secret2) {
		return &Result{Err: fmt.Errorf("selftest: X25519 shared secrets disagree")}
	}
	if isAllZero(secret1) {
		return &Result{Err: fmt.Errorf("selftest: X25519 shared secret is all zero")}
	}

	sig := kp.Sign([]byte("cst-pairwise-probe"))
	if err := identity.Verify(kp.Ed25519Public, []byte("cst-pairwise-probe"), sig); err != nil {
		return &Result{Err: fmt.Errorf("selftest: Ed25519 self-verify failed: %w", err)}
	}

	return &Result{Passed: true}
}

// PairwiseConsistencyKEM verifies a freshly generated kem.Keypair is
// internally consistent: encapsulating against its own public key and
// decapsulating with its own private key recovers the same shared secret.
func PairwiseConsistencyKEM(kp *kem.Keypair) *Result {
	if kp == nil || kp.EncapsulationKey == nil || kp.DecapsulationKey == nil {
		return &Result{Err: fmt.Errorf("selftest: invalid KEM keypair")}
	}

	ciphertext, secret1, err := kem.Encapsulate(kp.EncapsulationKey)
	if err != nil {
		return &Result{Err: fmt.Errorf("selftest: encapsulate: %w", err)}
	}
	secret2, err := kem.Decapsulate(kp.DecapsulationKey, ciphertext)
	if err != nil {
		return &Result{Err: fmt.Errorf("selftest: decapsulate: %w", err)}
	}
	if !bytes.Equal(secret1, secret2) {
		return &Result{Err: fmt.Errorf("selftest: ML-KEM shared secrets disagree")}
	}
	if isAllZero(secret1) {
		return &Result{Err: fmt.Errorf("selftest: ML-KEM shared secret is all zero")}
	}

	return &Result{Passed: true}
}

func isAllZero(b []byte) bool {
	for _, v := range b {
		if v != 0 {
			return false
		}
	}
	return true
}

func runPairwise(result *Result, label string) error {
	if result.Err != nil {
		if FIPSMode() {
			panic(fmt.Sprintf("FIPS self-test failed: %s: %v", label, result.Err))
		}
		return result.Err
	}
	return nil
}

// GenerateIdentityWithSelfTest generates an identity.Keypair and, if
// pairwise testing is enabled, verifies it before returning.
func GenerateIdentityWithSelfTest() (*identity.Keypair, error) {
	kp, err := identity.GenerateIdentity()
	if err != nil {
		return nil, err
	}
	if !getConfig().EnablePairwiseTest {
		return kp, nil
	}
	if err := runPairwise(PairwiseConsistencyIdentity(kp), "identity pairwise consistency"); err != nil {
		return nil, fmt.Errorf("selftest: pairwise consistency test failed: %w", err)
	}
	return kp, nil
}

// GenerateKEMKeypairWithSelfTest generates a kem.Keypair and, if pairwise
// testing is enabled, verifies it before returning.
func GenerateKEMKeypairWithSelfTest() (*kem.Keypair, error) {
	kp, err := kem.GenerateKeypair()
	if err != nil {
		return nil, err
	}
	if !getConfig().EnablePairwiseTest {
		return kp, nil
	}
	if err := runPairwise(PairwiseConsistencyKEM(kp), "ML-KEM pairwise consistency"); err != nil {
		return nil, fmt.Errorf("selftest: pairwise consistency test failed: %w", err)
	}
	return kp, nil
}

// RNGHealthCheck draws two samples from the CSPRNG and checks they are
// non-zero, non-constant, and mutually distinct.
func RNGHealthCheck() *Result {
	sample1, err := util.Random(32)
	if err != nil {
		return &Result{Err: fmt.Errorf("selftest: RNG read 1: %w", err)}
	}
	sample2, err := util.Random(32)
	if err != nil {
		return &Result{Err: fmt.Errorf("selftest: RNG read 2: %w", err)}
	}

	if isAllZero(sample1) || isAllZero(sample2) {
		return &Result{Err: fmt.Errorf("selftest: RNG produced an all-zero sample")}
	}
	if bytes.Equal(sample1, sample2) {
		return &Result{Err: fmt.Errorf("selftest: RNG produced identical consecutive samples")}
	}
	if isConstantByte(sample1) || isConstantByte(sample2) {
		return &Result{Err: fmt.Errorf("selftest: RNG sample has no byte-to-byte variation")}
	}

	return &Result{Passed: true}
}

func isConstantByte(b []byte) bool {
	for i := 1; i < len(b); i++ {
		if b[i] != b[0] {
			return false
		}
	}
	return true
}

// RandomWithSelfTest reads n cryptographically secure random bytes and, if
// periodic health checking is enabled, runs RNGHealthCheck every
// RNGHealthCheckInterval calls.
func RandomWithSelfTest(n int) ([]byte, error) {
	b, err := util.Random(n)
	if err != nil {
		return nil, err
	}

	cfg := getConfig()
	if !cfg.EnableRNGHealthCheck {
		return b, nil
	}

	count := rngCalls.Add(1)
	if count%cfg.RNGHealthCheckInterval == 0 {
		if err := runPairwise(RNGHealthCheck(), "RNG health check"); err != nil {
			return nil, err
		}
	}
	return b, nil
}

// Enabled reports whether any Conditional Self-Test is currently active.
func Enabled() bool {
	c := getConfig()
	return c.EnablePairwiseTest || c.EnableRNGHealthCheck
}
