//go:build fips

// Package selftest implements Conditional Self-Tests (CST) for FIPS 140-3
// compliance: pairwise consistency checks on freshly generated keys and a
// health check on the CSPRNG, grounded on the teacher's pkg/crypto/cst.go.
package selftest

// FIPSMode reports whether the binary was built with the fips build tag.
// In FIPS mode, a failed self-test panics instead of returning an error, to
// prevent use of potentially compromised key material.
func FIPSMode() bool { return true }
