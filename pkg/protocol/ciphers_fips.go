//go:build fips
// +build fips

// Package protocol defines the wire framing for the Cascade-Crypt handshake.
//
// This file is compiled when the "fips" build tag is specified. The cascade
// layer ordering is fixed (spec.md §9: "monomorphic bindings behind a tagged
// selection", never negotiated per connection), but compliance reporting
// still needs to know which of the three fixed layers is itself FIPS 140-3
// approved.
package protocol

import "github.com/chakchat/cascadecrypt/internal/constants"

// FIPSApprovedLayers returns the cascade layers that are individually
// FIPS 140-3 approved primitives. In FIPS mode only AES-256-GCM (L2)
// qualifies; XChaCha20-Poly1305 and ChaCha20-Poly1305 are not NIST-approved
// primitives, even though the cascade still runs all three layers.
func FIPSApprovedLayers() []constants.CipherSuite {
	return []constants.CipherSuite{constants.SuiteAES256GCM}
}
