package hybrid_test

import (
	"bytes"
	"testing"

	"github.com/chakchat/cascadecrypt/internal/constants"
	"github.com/chakchat/cascadecrypt/pkg/hybrid"
)

func fixed(n int, b byte) []byte {
	s := make([]byte, n)
	for i := range s {
		s[i] = b
	}
	return s
}

func TestCombineDeterministic(t *testing.T) {
	classical := fixed(constants.X25519SharedSecretSize, 0x01)
	quantum := fixed(constants.MLKEMSharedSecretSize, 0x02)

	s1, err := hybrid.Combine(classical, quantum)
	if err != nil {
		t.Fatalf("Combine: %v", err)
	}
	s2, err := hybrid.Combine(classical, quantum)
	if err != nil {
		t.Fatalf("Combine: %v", err)
	}
	if !bytes.Equal(s1, s2) {
		t.Error("Combine is not deterministic")
	}
	if len(s1) != constants.HybridSharedSecretSize {
		t.Errorf("len = %d, want %d", len(s1), constants.HybridSharedSecretSize)
	}
}

// TestCombineDependsOnBothInputs verifies the IND-CCA2-if-either-holds
// property at the API level: changing either input changes the output.
func TestCombineDependsOnBothInputs(t *testing.T) {
	classical := fixed(constants.X25519SharedSecretSize, 0x01)
	quantum := fixed(constants.MLKEMSharedSecretSize, 0x02)
	base, err := hybrid.Combine(classical, quantum)
	if err != nil {
		t.Fatalf("Combine: %v", err)
	}

	otherClassical := fixed(constants.X25519SharedSecretSize, 0xFF)
	changedClassical, err := hybrid.Combine(otherClassical, quantum)
	if err != nil {
		t.Fatalf("Combine: %v", err)
	}
	if bytes.Equal(base, changedClassical) {
		t.Error("changing the classical secret did not change the session secret")
	}

	otherQuantum := fixed(constants.MLKEMSharedSecretSize, 0xFF)
	changedQuantum, err := hybrid.Combine(classical, otherQuantum)
	if err != nil {
		t.Fatalf("Combine: %v", err)
	}
	if bytes.Equal(base, changedQuantum) {
		t.Error("changing the quantum secret did not change the session secret")
	}
}

func TestCombineRejectsWrongSizes(t *testing.T) {
	good := fixed(constants.X25519SharedSecretSize, 0x01)
	goodQ := fixed(constants.MLKEMSharedSecretSize, 0x02)

	if _, err := hybrid.Combine(make([]byte, 10), goodQ); err == nil {
		t.Error("Combine accepted a short classical secret")
	}
	if _, err := hybrid.Combine(good, make([]byte, 10)); err == nil {
		t.Error("Combine accepted a short quantum secret")
	}
}

func TestHandshakeAndTrafficKeysAreIndependent(t *testing.T) {
	sessionSecret := fixed(constants.HybridSharedSecretSize, 0x42)

	hsInit, hsResp, err := hybrid.DeriveHandshakeKeys(sessionSecret)
	if err != nil {
		t.Fatalf("DeriveHandshakeKeys: %v", err)
	}
	dataInit, dataResp, err := hybrid.DeriveTrafficKeys(sessionSecret)
	if err != nil {
		t.Fatalf("DeriveTrafficKeys: %v", err)
	}

	if bytes.Equal(hsInit, dataInit) {
		t.Error("handshake and traffic initiator keys must differ")
	}
	if bytes.Equal(hsInit, hsResp) {
		t.Error("handshake initiator and responder keys must differ")
	}
	if bytes.Equal(dataInit, dataResp) {
		t.Error("traffic initiator and responder keys must differ")
	}
}

func TestDeriveKeysRejectsWrongSecretSize(t *testing.T) {
	if _, _, err := hybrid.DeriveHandshakeKeys(make([]byte, 10)); err == nil {
		t.Error("DeriveHandshakeKeys accepted a short secret")
	}
	if _, _, err := hybrid.DeriveTrafficKeys(make([]byte, 10)); err == nil {
		t.Error("DeriveTrafficKeys accepted a short secret")
	}
}
