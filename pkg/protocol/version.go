// Package protocol defines the wire framing for the Cascade-Crypt
// handshake and peer-directory bootstrap messages: the minimum
// "session establishment" framing spec.md's data-flow description
// implies (C3 produces an ephemeral public value, C4 produces a KEM
// ciphertext, C5 combines them) but leaves unspecified as wire bytes.
//
// Adapted from the teacher's pkg/protocol, which frames the same
// ClientHello/ServerHello/Finished exchange for its single-KEX CH-KEM
// handshake; generalized here to also carry the Ed25519 identity
// signature spec.md's C3 requires, which the teacher's own handshake
// never used.
package protocol

import "github.com/chakchat/cascadecrypt/internal/constants"

// Version represents the wire protocol version.
type Version struct {
	Major uint8
	Minor uint8
}

// Current is the current protocol version.
var Current = Version{Major: 1, Minor: 0}

// Bytes returns the version as a 2-byte value.
func (v Version) Bytes() []byte {
	return []byte{v.Major, v.Minor}
}

// ParseVersion parses a version from a 2-byte value.
func ParseVersion(data []byte) Version {
	if len(data) < 2 {
		return Version{}
	}
	return Version{Major: data[0], Minor: data[1]}
}

// IsCompatible returns true if this version is compatible with another
// version. Versions are compatible if they have the same major version.
func (v Version) IsCompatible(other Version) bool {
	return v.Major == other.Major
}

// String returns a string representation of the version.
func (v Version) String() string {
	return string('0'+v.Major) + "." + string('0'+v.Minor)
}

// ProtocolID is the protocol identifier used for domain separation.
const ProtocolID = constants.ProtocolName
