//go:build !fips

package selftest

// FIPSMode reports whether the binary was built with the fips build tag.
func FIPSMode() bool { return false }
