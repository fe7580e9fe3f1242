//go:build !fips
// +build !fips

// Package protocol defines the wire framing for the Cascade-Crypt handshake.
//
// This file is compiled when the "fips" build tag is NOT specified.
package protocol

import "github.com/chakchat/cascadecrypt/internal/constants"

// FIPSApprovedLayers reports which cascade layers are FIPS 140-3 approved
// primitives, for compliance display purposes. All three layers still run
// regardless of build mode; this list is informational only.
func FIPSApprovedLayers() []constants.CipherSuite {
	return []constants.CipherSuite{constants.SuiteAES256GCM}
}

// AllCascadeLayers returns every cipher suite the triple cascade runs, in
// layer order (L1, L2, L3).
func AllCascadeLayers() []constants.CipherSuite {
	return []constants.CipherSuite{
		constants.SuiteXChaCha20Poly1305,
		constants.SuiteAES256GCM,
		constants.SuiteChaCha20Poly1305,
	}
}
